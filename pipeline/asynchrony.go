package pipeline

import (
	"fmt"
	"math"

	"github.com/jsphweid/perfdex/document"
	"github.com/jsphweid/perfdex/merge"
	"github.com/jsphweid/perfdex/model"
	"github.com/jsphweid/perfdex/util"
)

// AsynchronyStage measures how far secondary parts run ahead of or behind the primary
// part. A new offset is only recorded once it departs from the last one by more than
// Tolerance milliseconds. The current offset is removed from the secondary part.
type AsynchronyStage struct {
	Primary int
	// Secondary lists the parts to compare; empty means every other part.
	Secondary []int
	Tolerance float64
}

func (s *AsynchronyStage) Name() string {
	return "asynchrony"
}

func (s *AsynchronyStage) Transform(c *Context) string {
	primary := chordOnsets(c.Merge.AsChords(model.Part(s.Primary)))
	if len(primary) == 0 {
		c.Logger.Warn("asynchrony stage found no notes in the primary part")
		return skipped(s.Name(), fmt.Sprintf("part %d is empty", s.Primary))
	}

	secondary := s.Secondary
	if len(secondary) == 0 {
		for _, p := range c.Merge.Parts() {
			if p != s.Primary {
				secondary = append(secondary, p)
			}
		}
	}

	var emitted int
	for _, part := range secondary {
		var offset float64
		for _, ch := range c.Merge.AsChords(model.Part(part)) {
			date := ch[0].Date
			if ref, ok := primary[date]; ok {
				measured := util.Round(meanOnset(ch)-ref, 1)
				if math.Abs(measured-offset) > s.Tolerance {
					offset = measured
					c.Document.InsertInstructions(model.Part(part), &document.Asynchrony{
						Base:   document.Base{Date: date},
						Offset: offset,
					})
					emitted++
				}
			}
			for _, n := range ch {
				n.PerformedOnset -= offset
			}
		}
	}
	return fmt.Sprintf("%s: %d instructions", s.Name(), emitted)
}

func meanOnset(ch []*merge.MergedNote) float64 {
	onsets := make([]float64, len(ch))
	for i, n := range ch {
		onsets[i] = n.PerformedOnset
	}
	return util.Mean(onsets)
}

func chordOnsets(chords [][]*merge.MergedNote) map[float64]float64 {
	res := make(map[float64]float64, len(chords))
	for _, ch := range chords {
		res[ch[0].Date] = meanOnset(ch)
	}
	return res
}
