package pipeline

import (
	"math"

	"github.com/jsphweid/perfdex/document"
)

const simpsonSteps = 64

type tempoSegment struct {
	date       float64
	end        float64
	bpm        float64
	to         float64
	transition bool
	exponent   float64
	beatLength float64
	beatTicks  float64
}

func (s tempoSegment) tempoAt(date float64) float64 {
	if !s.transition || math.IsInf(s.end, 1) || s.end <= s.date {
		return s.bpm
	}
	x := (date - s.date) / (s.end - s.date)
	x = math.Max(0, math.Min(1, x))
	return s.bpm + (s.to-s.bpm)*math.Pow(x, s.exponent)
}

func (s tempoSegment) msPerPulse(date float64) float64 {
	return 60000 / (s.tempoAt(date) * s.beatTicks)
}

// elapsed integrates milliseconds over [a, b], a <= b.
func (s tempoSegment) elapsed(a, b float64) float64 {
	if b <= a {
		return 0
	}
	if !s.transition {
		return (b - a) * s.msPerPulse(a)
	}
	h := (b - a) / simpsonSteps
	sum := s.msPerPulse(a) + s.msPerPulse(b)
	for i := 1; i < simpsonSteps; i++ {
		w := 2.0
		if i%2 == 1 {
			w = 4
		}
		sum += w * s.msPerPulse(a+float64(i)*h)
	}
	return sum * h / 3
}

// TempoMap models physical time as a function of symbolic date, anchored so that
// anchorDate falls at anchorTime.
type TempoMap struct {
	anchorDate float64
	anchorTime float64
	segments   []tempoSegment
}

func NewTempoMap(instructions []*document.Tempo, ppq int, anchorDate, anchorTime float64) *TempoMap {
	tm := &TempoMap{anchorDate: anchorDate, anchorTime: anchorTime}
	for i, ins := range instructions {
		seg := tempoSegment{
			date:       ins.Date,
			end:        math.Inf(1),
			bpm:        ins.BPM,
			exponent:   1,
			beatLength: ins.BeatLength,
			beatTicks:  ins.BeatLength * 4 * float64(ppq),
		}
		if i+1 < len(instructions) {
			seg.end = instructions[i+1].Date
		}
		if ins.TransitionTo != nil {
			seg.transition = true
			seg.to = *ins.TransitionTo
			if ins.MeanTempoAt != nil {
				seg.exponent = curveExponent(*ins.MeanTempoAt)
			}
		}
		tm.segments = append(tm.segments, seg)
	}
	return tm
}

// curveExponent makes the curve pass its midpoint tempo at meanTempoAt.
func curveExponent(meanTempoAt float64) float64 {
	return math.Log(0.5) / math.Log(meanTempoAt)
}

// TempoAt returns the modeled bpm and beat length at date. Before the first
// segment the first tempo applies.
func (t *TempoMap) TempoAt(date float64) (float64, float64) {
	if len(t.segments) == 0 {
		return 0, 0
	}
	seg := t.segments[0]
	for _, s := range t.segments {
		if s.date <= date {
			seg = s
		}
	}
	return seg.tempoAt(date), seg.beatLength
}

// Milliseconds is the modeled physical time of date.
func (t *TempoMap) Milliseconds(date float64) float64 {
	if date >= t.anchorDate {
		return t.anchorTime + t.between(t.anchorDate, date)
	}
	return t.anchorTime - t.between(date, t.anchorDate)
}

func (t *TempoMap) between(a, b float64) float64 {
	var total float64
	for i, s := range t.segments {
		start := s.date
		if i == 0 {
			start = math.Inf(-1)
		}
		lo := math.Max(a, start)
		hi := math.Min(b, s.end)
		if hi > lo {
			total += s.elapsed(lo, hi)
		}
	}
	return total
}
