package pipeline

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/jsphweid/perfdex/document"
	"github.com/jsphweid/perfdex/merge"
	"github.com/jsphweid/perfdex/model"
	"github.com/jsphweid/perfdex/util"
)

// TempoStage fits a piecewise tempo curve to the performance, stamps every note with
// its modeled tempo and subtracts the modeled time from every onset.
type TempoStage struct {
	Scoping  Scoping
	Interval string
	// Epsilon is the largest tolerated deviation from the curve, in bpm.
	Epsilon   float64
	Precision int
}

type tempoSample struct {
	date  float64
	onset float64
}

type bpmPoint struct {
	date float64
	bpm  float64
}

func (s *TempoStage) Name() string {
	return "tempo"
}

func (s *TempoStage) Transform(c *Context) string {
	ts := c.Merge.TimeSignature
	if ts == nil || ts.Denominator <= 0 {
		c.Logger.Warn("tempo stage needs a time signature, forwarding unchanged")
		return skipped(s.Name(), "no time signature")
	}
	beatLength, everyChord, err := beatFor(s.Interval, *ts)
	if err != nil {
		c.Logger.Warn("tempo stage misconfigured", zap.Error(err))
		return skipped(s.Name(), err.Error())
	}
	beatTicks := c.Merge.BeatTicks(beatLength)

	var emitted int
	for _, scope := range s.Scoping.scopes(c.Merge) {
		samples := s.sample(c.Merge, scope, everyChord, beatTicks)
		points := s.bpmSeries(samples, beatTicks)
		if len(points) == 0 {
			c.Logger.Warn("not enough tempo samples", zap.Stringer("scope", scope), zap.Int("samples", len(samples)))
			continue
		}

		var out []*document.Tempo
		s.fit(points, 0, len(points)-1, beatLength, beatTicks, &out)
		last := points[len(points)-1]
		tail := out[len(out)-1]
		if last.date > tail.Date && (tail.TransitionTo != nil || tail.BPM != last.bpm) {
			out = append(out, &document.Tempo{Base: document.Base{Date: last.date}, BPM: last.bpm, BeatLength: beatLength})
		}

		for _, t := range out {
			c.Document.InsertInstructions(scope, t)
		}
		emitted += len(out)

		tm := NewTempoMap(out, c.Merge.PPQ, samples[0].date, samples[0].onset)
		c.TempoMaps[scope] = tm
		for _, n := range c.Merge.InScope(scope) {
			bpm, bl := tm.TempoAt(n.Date)
			c.Tempo[n.ID] = TempoEstimate{BPM: bpm, BeatLength: bl}
			n.PerformedOnset -= tm.Milliseconds(n.Date)
		}
	}
	return fmt.Sprintf("%s: %d instructions", s.Name(), emitted)
}

// sample takes one (date, onset) pair per chord, or per chord on the beat grid.
func (s *TempoStage) sample(m *merge.Merge, scope model.Scope, everyChord bool, beatTicks float64) []tempoSample {
	var res []tempoSample
	for _, chord := range m.AsChords(scope) {
		date := chord[0].Date
		if !everyChord && !onGrid(date, beatTicks) {
			continue
		}
		onsets := make([]float64, len(chord))
		for i, n := range chord {
			onsets[i] = n.PerformedOnset
		}
		res = append(res, tempoSample{date: date, onset: util.Mean(onsets)})
	}
	return res
}

func onGrid(date, step float64) bool {
	r := math.Mod(date, step)
	return math.Abs(r) < 1e-6 || math.Abs(r-step) < 1e-6
}

// bpmSeries turns consecutive samples into the tempo of the span each sample opens.
func (s *TempoStage) bpmSeries(samples []tempoSample, beatTicks float64) []bpmPoint {
	var res []bpmPoint
	for i := 0; i+1 < len(samples); i++ {
		ms := samples[i+1].onset - samples[i].onset
		if ms <= 0 {
			continue
		}
		beats := (samples[i+1].date - samples[i].date) / beatTicks
		res = append(res, bpmPoint{date: samples[i].date, bpm: util.Round(beats*60000/ms, s.Precision)})
	}
	return res
}

// fit simplifies points[start..end] in the manner of Douglas-Peucker: one curve per
// interval unless some sample strays further than Epsilon, then split there.
func (s *TempoStage) fit(points []bpmPoint, start, end int, beatLength, beatTicks float64, out *[]*document.Tempo) {
	a, b := points[start], points[end]
	if a.bpm == b.bpm || b.date-a.date < beatTicks {
		*out = append(*out, &document.Tempo{Base: document.Base{Date: a.date}, BPM: a.bpm, BeatLength: beatLength})
		return
	}

	bpms := make([]float64, 0, end-start+1)
	for i := start; i <= end; i++ {
		bpms = append(bpms, points[i].bpm)
	}
	mean := util.Mean(bpms)

	meanAt := 0.5
	closest := math.Inf(1)
	for i := start + 1; i < end; i++ {
		if d := math.Abs(points[i].bpm - mean); d < closest {
			closest = d
			meanAt = (points[i].date - a.date) / (b.date - a.date)
		}
	}
	meanAt = math.Max(0.01, math.Min(0.99, util.Round(meanAt, 2)))
	exponent := curveExponent(meanAt)

	worst, deviation := -1, 0.0
	for i := start + 1; i < end; i++ {
		x := (points[i].date - a.date) / (b.date - a.date)
		modeled := a.bpm + (b.bpm-a.bpm)*math.Pow(x, exponent)
		if d := math.Abs(points[i].bpm - modeled); d > deviation {
			worst, deviation = i, d
		}
	}
	if worst >= 0 && deviation > s.Epsilon {
		s.fit(points, start, worst, beatLength, beatTicks, out)
		s.fit(points, worst, end, beatLength, beatTicks, out)
		return
	}

	to := b.bpm
	*out = append(*out, &document.Tempo{
		Base:         document.Base{Date: a.date},
		BPM:          a.bpm,
		TransitionTo: &to,
		MeanTempoAt:  &meanAt,
		BeatLength:   beatLength,
	})
}
