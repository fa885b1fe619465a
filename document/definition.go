package document

import (
	"fmt"

	"github.com/jsphweid/perfdex/model"
)

// Definition is a named, reusable parameter bundle referenced by instructions.
type Definition struct {
	Name   string         `json:"name"`
	Type   string         `json:"type"`
	Spread TemporalSpread `json:"spread"`
}

func (d *Definition) sameAs(o *Definition) bool {
	return d.Type == o.Type && d.Spread == o.Spread
}

// InsertDefinition stores def in the scope unless an equal one exists, and returns
// the name to reference it by. Unnamed definitions are named "<type>.<n>".
func (d *Document) InsertDefinition(scope model.Scope, def Definition) string {
	n := d.Node(scope)
	for _, existing := range n.Definitions {
		if existing.sameAs(&def) {
			return existing.Name
		}
	}
	if def.Name == "" || n.definition(def.Name) != nil {
		def.Name = n.nextName(def.Type)
	}
	n.Definitions = append(n.Definitions, &def)
	return def.Name
}

func (d *Document) Definition(scope model.Scope, name string) (*Definition, bool) {
	n := d.lookup(scope)
	if n == nil {
		return nil, false
	}
	def := n.definition(name)
	return def, def != nil
}

func (n *Node) definition(name string) *Definition {
	for _, def := range n.Definitions {
		if def.Name == name {
			return def
		}
	}
	return nil
}

func (n *Node) nextName(prefix string) string {
	for i := len(n.Definitions) + 1; ; i++ {
		name := fmt.Sprintf("%s.%d", prefix, i)
		if n.definition(name) == nil {
			return name
		}
	}
}
