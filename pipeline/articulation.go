package pipeline

import (
	"fmt"
	"math"

	"github.com/jsphweid/perfdex/document"
	"github.com/jsphweid/perfdex/util"
)

// ArticulationStage records notes played noticeably shorter or longer than written.
// Only deviations are recorded; a note within Tolerance of its written length is normal.
type ArticulationStage struct {
	Scoping   Scoping
	Tolerance float64
	Precision int
}

func (s *ArticulationStage) Name() string {
	return "articulation"
}

func (s *ArticulationStage) Transform(c *Context) string {
	if len(c.Tempo) == 0 {
		c.Logger.Warn("articulation stage needs tempo estimates, forwarding unchanged")
		return skipped(s.Name(), "no tempo estimates")
	}

	var emitted int
	for _, scope := range s.Scoping.scopes(c.Merge) {
		for _, n := range c.Merge.InScope(scope) {
			est, ok := c.Tempo[n.ID]
			if !ok || est.BPM <= 0 || est.BeatLength <= 0 {
				continue
			}
			nominal := n.Duration * 60000 / (est.BPM * c.Merge.BeatTicks(est.BeatLength))
			if nominal <= 0 {
				continue
			}
			rel := util.Round(n.PerformedDuration/nominal, s.Precision)
			if math.Abs(rel-1) <= s.Tolerance {
				continue
			}
			c.Document.InsertInstructions(scope, &document.Articulation{
				Base:             document.Base{Date: n.Date},
				NoteID:           n.ID,
				RelativeDuration: rel,
			})
			n.PerformedDuration = nominal
			emitted++
		}
	}
	return fmt.Sprintf("%s: %d instructions", s.Name(), emitted)
}
