package pipeline

import (
	"fmt"

	"github.com/jsphweid/perfdex/document"
	"github.com/jsphweid/perfdex/util"
)

// DynamicsStage follows chord loudness over time. Repeated volumes are dropped. For
// three consecutive values moving strictly one way (a<b<c or a>b>c), the instruction
// at b becomes a transition to c and c gets no instruction of its own. The scan is
// greedy and resumes after c.
type DynamicsStage struct {
	Scoping Scoping
}

type volumePoint struct {
	date   float64
	volume float64
}

func (s *DynamicsStage) Name() string {
	return "dynamics"
}

func (s *DynamicsStage) Transform(c *Context) string {
	var emitted int
	for _, scope := range s.Scoping.scopes(c.Merge) {
		var points []volumePoint
		for _, ch := range c.Merge.AsChords(scope) {
			velocities := make([]int, len(ch))
			for i, n := range ch {
				velocities[i] = n.PerformedVelocity
			}
			v := util.Round(util.Mean(velocities), 0)
			if len(points) > 0 && points[len(points)-1].volume == v {
				continue
			}
			points = append(points, volumePoint{date: ch[0].Date, volume: v})
		}

		for i := 0; i < len(points); i++ {
			p := points[i]
			ins := &document.Dynamics{Base: document.Base{Date: p.date}, Volume: p.volume}
			if i > 0 && i+1 < len(points) && monotonic(points[i-1].volume, p.volume, points[i+1].volume) {
				to := points[i+1].volume
				ins.TransitionTo = &to
				i++
			}
			c.Document.InsertInstructions(scope, ins)
			emitted++
		}
	}
	return fmt.Sprintf("%s: %d instructions", s.Name(), emitted)
}

func monotonic(a, b, c float64) bool {
	return (a < b && b < c) || (a > b && b > c)
}
