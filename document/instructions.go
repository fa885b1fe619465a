package document

import "fmt"

type Kind int

const (
	KindTempo Kind = iota
	KindDynamics
	KindOrnament
	KindArticulation
	KindAsynchrony
	KindRubato
	KindImprecision
)

var allKinds = []Kind{KindTempo, KindDynamics, KindOrnament, KindArticulation, KindAsynchrony, KindRubato, KindImprecision}

func (k Kind) String() string {
	switch k {
	case KindTempo:
		return "tempo"
	case KindDynamics:
		return "dynamics"
	case KindOrnament:
		return "ornament"
	case KindArticulation:
		return "articulation"
	case KindAsynchrony:
		return "asynchrony"
	case KindRubato:
		return "rubato"
	case KindImprecision:
		return "imprecision.timing"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Base holds what every instruction carries. Date is in pulses.
type Base struct {
	ID   string  `json:"id"`
	Date float64 `json:"date"`
}

func (b *Base) base() *Base { return b }

// Instruction is one of the pointer types in this file. Base does not provide
// insertInto, so the set is closed.
type Instruction interface {
	Kind() Kind
	base() *Base
	insertInto(n *Node)
}

func DateOf(i Instruction) float64 { return i.base().Date }

func IDOf(i Instruction) string { return i.base().ID }

type Tempo struct {
	Base
	BPM          float64  `json:"bpm"`
	TransitionTo *float64 `json:"transition.to,omitempty"`
	MeanTempoAt  *float64 `json:"meanTempoAt,omitempty"`
	// BeatLength is a fraction of a whole note.
	BeatLength float64 `json:"beatLength"`
}

func (*Tempo) Kind() Kind { return KindTempo }

func (i *Tempo) insertInto(n *Node) { n.Tempo = insertSorted(n.Tempo, i) }

type Dynamics struct {
	Base
	Volume       float64  `json:"volume"`
	TransitionTo *float64 `json:"transition.to,omitempty"`
}

func (*Dynamics) Kind() Kind { return KindDynamics }

func (i *Dynamics) insertInto(n *Node) { n.Dynamics = insertSorted(n.Dynamics, i) }

const UnitMillisecondsOffset = "milliseconds.offset"

// TemporalSpread describes how an ornament spreads its notes around the date.
type TemporalSpread struct {
	FrameStart  float64 `json:"frame.start"`
	FrameLength float64 `json:"frameLength"`
	Intensity   float64 `json:"intensity"`
	Unit        string  `json:"time.unit"`
}

// Ornament carries either an inline Spread or a DefinitionRef to a shared one.
// Direction is "ascending pitch", "descending pitch" or empty, in which case
// NoteOrder lists the score note ids in played order.
type Ornament struct {
	Base
	NameRef       string          `json:"name.ref"`
	Direction     string          `json:"note.order,omitempty"`
	NoteOrder     []string        `json:"note.order.ids,omitempty"`
	Spread        *TemporalSpread `json:"spread,omitempty"`
	DefinitionRef string          `json:"definition.ref,omitempty"`
}

func (*Ornament) Kind() Kind { return KindOrnament }

func (i *Ornament) insertInto(n *Node) { n.Ornaments = insertSorted(n.Ornaments, i) }

type Articulation struct {
	Base
	NoteID           string  `json:"noteid"`
	RelativeDuration float64 `json:"relativeDuration"`
}

func (*Articulation) Kind() Kind { return KindArticulation }

func (i *Articulation) insertInto(n *Node) { n.Articulations = insertSorted(n.Articulations, i) }

// Asynchrony offsets a part against the rest, in milliseconds.
type Asynchrony struct {
	Base
	Offset float64 `json:"milliseconds.offset"`
}

func (*Asynchrony) Kind() Kind { return KindAsynchrony }

func (i *Asynchrony) insertInto(n *Node) { n.Asynchronies = insertSorted(n.Asynchronies, i) }

// Rubato bends time inside frames of FrameLength pulses: a note at relative position
// s in the frame is played at s^Intensity.
type Rubato struct {
	Base
	FrameLength float64 `json:"frameLength"`
	Intensity   float64 `json:"intensity"`
	LateStart   float64 `json:"lateStart"`
	EarlyEnd    float64 `json:"earlyEnd"`
	Loop        bool    `json:"loop"`
}

func (*Rubato) Kind() Kind { return KindRubato }

func (i *Rubato) insertInto(n *Node) { n.Rubatos = insertSorted(n.Rubatos, i) }

type ImprecisionTiming struct {
	Base
	Distribution string  `json:"distribution"`
	LowerLimit   float64 `json:"lowerLimit"`
	UpperLimit   float64 `json:"upperLimit"`
}

func (*ImprecisionTiming) Kind() Kind { return KindImprecision }

func (i *ImprecisionTiming) insertInto(n *Node) { n.Imprecisions = insertSorted(n.Imprecisions, i) }
