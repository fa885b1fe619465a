package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/perfdex/document"
	"github.com/jsphweid/perfdex/merge"
	"github.com/jsphweid/perfdex/model"
)

func tempoStage() *TempoStage {
	return &TempoStage{Scoping: AcrossParts, Interval: IntervalEverything, Epsilon: 2, Precision: 2}
}

func TestTempoConstant(t *testing.T) {
	assert := assert.New(t)
	var notes []*merge.MergedNote
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		notes = append(notes, note(id, 0, 60, float64(i*720), float64(i)*1875))
	}
	c := newContext(newMerge(notes...))

	status := tempoStage().Transform(c)
	assert.Equal("tempo: 1 instructions", status)

	tempos := c.Document.Global.Tempo
	require.Len(t, tempos, 1)
	assert.Equal(0.0, tempos[0].Date)
	assert.Equal(32.0, tempos[0].BPM)
	assert.Nil(tempos[0].TransitionTo)
	assert.Equal(0.25, tempos[0].BeatLength)

	for _, o := range onsets(c.Merge) {
		assert.InDelta(0, o, 1e-6)
	}
	assert.Equal(TempoEstimate{BPM: 32, BeatLength: 0.25}, c.Tempo["c"])
	require.NotNil(t, c.TempoMapFor(0))
	assert.InDelta(3750, c.PhysicalTime(c.Merge.Notes[2]), 1e-6)
}

func TestTempoAccelerando(t *testing.T) {
	assert := assert.New(t)
	var notes []*merge.MergedNote
	var onset float64
	for i, bpm := range []float64{30, 35, 40, 45, 50, 55, 60} {
		notes = append(notes, note(string(rune('a'+i)), 0, 60, float64(i*720), onset))
		onset += 60000 / bpm
	}
	notes = append(notes, note("z", 0, 60, 7*720, onset))
	c := newContext(newMerge(notes...))

	tempoStage().Transform(c)

	tempos := c.Document.Global.Tempo
	require.Len(t, tempos, 2)
	assert.Equal(0.0, tempos[0].Date)
	assert.Equal(30.0, tempos[0].BPM)
	require.NotNil(t, tempos[0].TransitionTo)
	assert.Equal(60.0, *tempos[0].TransitionTo)
	require.NotNil(t, tempos[0].MeanTempoAt)
	assert.Equal(0.5, *tempos[0].MeanTempoAt)

	assert.Equal(4320.0, tempos[1].Date)
	assert.Equal(60.0, tempos[1].BPM)
	assert.Nil(tempos[1].TransitionTo)

	bpm, _ := c.TempoMapFor(0).TempoAt(2160)
	assert.InDelta(45, bpm, 1e-9)
}

func TestTempoSplitsOnSuddenChange(t *testing.T) {
	var notes []*merge.MergedNote
	var onset float64
	for i, bpm := range []float64{60, 60, 60, 120, 120, 120} {
		notes = append(notes, note(string(rune('a'+i)), 0, 60, float64(i*720), onset))
		onset += 60000 / bpm
	}
	notes = append(notes, note("z", 0, 60, 6*720, onset))
	c := newContext(newMerge(notes...))

	tempoStage().Transform(c)

	var bpms []float64
	for _, tempo := range c.Document.Global.Tempo {
		bpms = append(bpms, tempo.BPM)
	}
	assert.Equal(t, 60.0, bpms[0])
	assert.Equal(t, 120.0, bpms[len(bpms)-1])
	assert.Greater(t, len(bpms), 1)
}

func TestTempoWithoutTimeSignature(t *testing.T) {
	m := newMerge(note("a", 0, 60, 0, 0), note("b", 0, 60, 720, 1000))
	m.TimeSignature = nil
	c := newContext(m)

	status := tempoStage().Transform(c)

	assert.Contains(t, status, "skipped")
	assert.Equal(t, 0, c.Document.Count())
	assert.Equal(t, []float64{0, 1000}, onsets(m))
	assert.Empty(t, c.Tempo)
}

func TestTempoUnknownInterval(t *testing.T) {
	c := newContext(newMerge(note("a", 0, 60, 0, 0), note("b", 0, 60, 720, 1000)))
	s := tempoStage()
	s.Interval = "fortnight"

	assert.Contains(t, s.Transform(c), "skipped")
	assert.Equal(t, 0, c.Document.Count())
}

func TestTempoPerPartKeepsSeparateMaps(t *testing.T) {
	c := newContext(newMerge(
		note("a", 0, 60, 0, 0), note("x", 1, 48, 0, 0),
		note("b", 0, 60, 720, 1000), note("y", 1, 48, 720, 500),
		note("c", 0, 60, 1440, 2000), note("w", 1, 48, 1440, 1000),
	))
	s := tempoStage()
	s.Scoping = PerPart

	s.Transform(c)

	assert.Equal(t, 60.0, c.Document.Parts[0].Tempo[0].BPM)
	assert.Equal(t, 120.0, c.Document.Parts[1].Tempo[0].BPM)
	assert.NotSame(t, c.TempoMapFor(0), c.TempoMapFor(1))
	assert.Nil(t, c.TempoMaps[model.Global])
}

func TestTempoMapMilliseconds(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(0.0, NewTempoMap(nil, 720, 0, 0).Milliseconds(1000))

	to, mean := 120.0, 0.5
	tm := NewTempoMap([]*document.Tempo{
		{Base: document.Base{Date: 0}, BPM: 60, TransitionTo: &to, MeanTempoAt: &mean, BeatLength: 0.25},
		{Base: document.Base{Date: 720}, BPM: 120, BeatLength: 0.25},
	}, 720, 0, 100)

	// A linear ramp from 60 to 120 bpm across one beat lasts 1000*ln(2) ms.
	ramp := 1000 * math.Ln2
	assert.InDelta(100+ramp, tm.Milliseconds(720), 1e-3)
	assert.InDelta(100+ramp+500, tm.Milliseconds(1440), 1e-3)
	assert.InDelta(100-1000, tm.Milliseconds(-720), 1e-6)

	bpm, beat := tm.TempoAt(360)
	assert.InDelta(90, bpm, 1e-9)
	assert.Equal(0.25, beat)
}
