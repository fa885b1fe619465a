package pipeline

import (
	"fmt"

	"github.com/jsphweid/perfdex/document"
	"github.com/jsphweid/perfdex/model"
	"github.com/jsphweid/perfdex/util"
)

// StyleStage moves the inline spread of every ornament into a shared definition in
// the global scope. Ornaments with the same spread (at Step resolution) share one.
type StyleStage struct {
	Step float64
}

func (s *StyleStage) Name() string {
	return "styles"
}

func (s *StyleStage) Transform(c *Context) string {
	var ornaments int
	doc := c.Document
	for _, scope := range doc.Scopes() {
		for _, ins := range doc.Instructions(scope, document.KindOrnament) {
			o := ins.(*document.Ornament)
			if o.Spread == nil {
				continue
			}
			spread := *o.Spread
			spread.FrameStart = util.RoundTo(spread.FrameStart, s.Step)
			spread.FrameLength = util.RoundTo(spread.FrameLength, s.Step)
			o.DefinitionRef = doc.InsertDefinition(model.Global, document.Definition{Type: o.NameRef, Spread: spread})
			o.Spread = nil
			ornaments++
		}
	}
	return fmt.Sprintf("%s: %d definitions for %d ornaments", s.Name(), len(doc.Global.Definitions), ornaments)
}
