// Package document holds the performance description: a global scope and one scope
// per part, each with date-ordered instruction lists and style definitions.
package document

import (
	"sort"

	"github.com/google/uuid"

	"github.com/jsphweid/perfdex/model"
	"github.com/jsphweid/perfdex/util"
)

// Node is the content of one scope.
type Node struct {
	Tempo         []*Tempo             `json:"tempo,omitempty"`
	Dynamics      []*Dynamics          `json:"dynamics,omitempty"`
	Ornaments     []*Ornament          `json:"ornamentation,omitempty"`
	Articulations []*Articulation      `json:"articulation,omitempty"`
	Asynchronies  []*Asynchrony        `json:"asynchrony,omitempty"`
	Rubatos       []*Rubato            `json:"rubato,omitempty"`
	Imprecisions  []*ImprecisionTiming `json:"imprecision.timing,omitempty"`
	Definitions   []*Definition        `json:"definitions,omitempty"`
}

type Document struct {
	Global *Node         `json:"global"`
	Parts  map[int]*Node `json:"parts,omitempty"`
}

func New() *Document {
	return &Document{Global: &Node{}, Parts: make(map[int]*Node)}
}

// Node returns the node for scope, creating an empty part node on first use.
func (d *Document) Node(scope model.Scope) *Node {
	if scope.IsGlobal() {
		return d.Global
	}
	n, ok := d.Parts[scope.PartNumber()]
	if !ok {
		n = &Node{}
		d.Parts[scope.PartNumber()] = n
	}
	return n
}

// Scopes lists the global scope followed by the part scopes in ascending order.
func (d *Document) Scopes() []model.Scope {
	scopes := []model.Scope{model.Global}
	for _, p := range util.GetKeys(d.Parts) {
		scopes = append(scopes, model.Part(p))
	}
	return scopes
}

func (d *Document) lookup(scope model.Scope) *Node {
	if scope.IsGlobal() {
		return d.Global
	}
	return d.Parts[scope.PartNumber()]
}

// InsertInstructions appends to the scope and keeps every list ordered by date.
// Instructions without an id get a fresh one.
func (d *Document) InsertInstructions(scope model.Scope, instructions ...Instruction) {
	n := d.Node(scope)
	for _, ins := range instructions {
		if ins.base().ID == "" {
			ins.base().ID = uuid.New().String()
		}
		ins.insertInto(n)
	}
}

func insertSorted[T Instruction](list []T, ins T) []T {
	list = append(list, ins)
	sort.SliceStable(list, func(i, j int) bool {
		return DateOf(list[i]) < DateOf(list[j])
	})
	return list
}

func (n *Node) list(kind Kind) []Instruction {
	var res []Instruction
	switch kind {
	case KindTempo:
		for _, v := range n.Tempo {
			res = append(res, v)
		}
	case KindDynamics:
		for _, v := range n.Dynamics {
			res = append(res, v)
		}
	case KindOrnament:
		for _, v := range n.Ornaments {
			res = append(res, v)
		}
	case KindArticulation:
		for _, v := range n.Articulations {
			res = append(res, v)
		}
	case KindAsynchrony:
		for _, v := range n.Asynchronies {
			res = append(res, v)
		}
	case KindRubato:
		for _, v := range n.Rubatos {
			res = append(res, v)
		}
	case KindImprecision:
		for _, v := range n.Imprecisions {
			res = append(res, v)
		}
	}
	return res
}

// Instructions returns the scope's instructions of the given kinds (all kinds when
// none are given) as one date-ordered list.
func (d *Document) Instructions(scope model.Scope, kinds ...Kind) []Instruction {
	n := d.lookup(scope)
	if n == nil {
		return nil
	}
	if len(kinds) == 0 {
		kinds = allKinds
	}
	var res []Instruction
	for _, k := range kinds {
		res = append(res, n.list(k)...)
	}
	sort.SliceStable(res, func(i, j int) bool {
		return DateOf(res[i]) < DateOf(res[j])
	})
	return res
}

// Count is the number of instructions over all scopes.
func (d *Document) Count(kinds ...Kind) int {
	var total int
	for _, s := range d.Scopes() {
		total += len(d.Instructions(s, kinds...))
	}
	return total
}

// EffectiveAt resolves the instructions active at date. An instruction exactly at
// date always wins. Otherwise the latest earlier one applies only if its kind
// persists: tempo, dynamics, asynchrony and imprecision do; a rubato does while
// looping or inside its frame; ornaments and articulations never do.
func (d *Document) EffectiveAt(date float64, scope model.Scope, kinds ...Kind) []Instruction {
	n := d.lookup(scope)
	if n == nil {
		return nil
	}
	if len(kinds) == 0 {
		kinds = allKinds
	}
	var res []Instruction
	for _, k := range kinds {
		list := n.list(k)

		var exact []Instruction
		for _, ins := range list {
			if DateOf(ins) == date {
				exact = append(exact, ins)
			}
		}
		if len(exact) > 0 {
			res = append(res, exact...)
			continue
		}

		var latest Instruction
		for _, ins := range list {
			if DateOf(ins) < date {
				latest = ins
			}
		}
		if latest != nil && persistsUntil(latest, date) {
			res = append(res, latest)
		}
	}
	return res
}

func persistsUntil(ins Instruction, date float64) bool {
	switch v := ins.(type) {
	case *Tempo, *Dynamics, *Asynchrony, *ImprecisionTiming:
		return true
	case *Rubato:
		return v.Loop || date < v.Date+v.FrameLength
	default:
		return false
	}
}
