package pipeline

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/jsphweid/perfdex/document"
	"github.com/jsphweid/perfdex/merge"
	"github.com/jsphweid/perfdex/util"
)

// RubatoStage looks for timing bent inside frames (one sampling interval long) that the
// tempo curve did not explain. Consecutive frames bent alike become one looping rubato.
type RubatoStage struct {
	Scoping   Scoping
	Interval  string
	Tolerance float64
}

func (s *RubatoStage) Name() string {
	return "rubato"
}

func (s *RubatoStage) Transform(c *Context) string {
	ts := c.Merge.TimeSignature
	if ts == nil || ts.Denominator <= 0 {
		c.Logger.Warn("rubato stage needs a time signature, forwarding unchanged")
		return skipped(s.Name(), "no time signature")
	}
	interval := s.Interval
	if interval == IntervalEverything {
		interval = IntervalDenominator
	}
	beatLength, _, err := beatFor(interval, *ts)
	if err != nil {
		c.Logger.Warn("rubato stage misconfigured", zap.Error(err))
		return skipped(s.Name(), err.Error())
	}
	frame := util.Round(c.Merge.BeatTicks(beatLength), 6)

	var emitted int
	for _, scope := range s.Scoping.scopes(c.Merge) {
		chords := c.Merge.AsChords(scope)
		if len(chords) == 0 {
			continue
		}
		byDate := make(map[float64][]*merge.MergedNote, len(chords))
		for _, ch := range chords {
			byDate[ch[0].Date] = ch
		}

		var prev *document.Rubato
		// stop ends a looping rubato at date so it does not stay in force over frames
		// it was never applied to.
		stop := func(date float64) {
			if prev != nil && prev.Loop {
				neutral := &document.Rubato{Base: document.Base{Date: date}, FrameLength: frame, Intensity: 1, EarlyEnd: 1}
				c.Document.InsertInstructions(scope, neutral)
				emitted++
			}
			prev = nil
		}
		first := math.Floor(chords[0][0].Date/frame) * frame
		for k := 0.0; first+k*frame < c.Merge.LastDate(); k++ {
			start, end := first+k*frame, first+(k+1)*frame
			startChord, endChord := byDate[start], byDate[end]
			if startChord == nil || endChord == nil {
				stop(start)
				continue
			}
			tStart, tEnd := s.chordTime(c, startChord), s.chordTime(c, endChord)
			frameMs := tEnd - tStart
			if frameMs <= 0 {
				stop(start)
				continue
			}

			var inner [][]*merge.MergedNote
			var exponents []float64
			for _, ch := range chords {
				date := ch[0].Date
				if date <= start || date >= end {
					continue
				}
				inner = append(inner, ch)
				pos := (date - start) / frame
				played := (s.chordTime(c, ch) - tStart) / frameMs
				if played <= 0 || played >= 1 {
					continue
				}
				exponents = append(exponents, math.Log(played)/math.Log(pos))
			}
			if len(exponents) == 0 {
				stop(start)
				continue
			}

			intensity := util.Round(util.Mean(exponents), 2)
			if math.Abs(intensity-1) <= s.Tolerance {
				stop(start)
				continue
			}

			// prev is always the rubato of the frame just before this one.
			if prev != nil && math.Abs(prev.Intensity-intensity) <= s.Tolerance {
				prev.Loop = true
				intensity = prev.Intensity
			} else {
				prev = &document.Rubato{Base: document.Base{Date: start}, FrameLength: frame, Intensity: intensity, EarlyEnd: 1}
				c.Document.InsertInstructions(scope, prev)
				emitted++
			}

			for _, ch := range inner {
				pos := (ch[0].Date - start) / frame
				shift := (math.Pow(pos, intensity) - pos) * frameMs
				for _, n := range ch {
					n.PerformedOnset -= shift
				}
			}
		}
	}
	return fmt.Sprintf("%s: %d instructions", s.Name(), emitted)
}

func (s *RubatoStage) chordTime(c *Context, ch []*merge.MergedNote) float64 {
	times := make([]float64, len(ch))
	for i, n := range ch {
		times[i] = c.PhysicalTime(n)
	}
	return util.Mean(times)
}
