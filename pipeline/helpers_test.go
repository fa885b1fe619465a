package pipeline

import (
	"github.com/jsphweid/perfdex/document"
	"github.com/jsphweid/perfdex/merge"
	"github.com/jsphweid/perfdex/model"
)

func fourFour() *model.TimeSignature {
	return &model.TimeSignature{Numerator: 4, Denominator: 4}
}

func note(id string, part, pitch int, date, onset float64) *merge.MergedNote {
	return &merge.MergedNote{
		ID:                id,
		PerformedID:       "p" + id,
		Part:              part,
		Pitch:             pitch,
		Date:              date,
		Duration:          720,
		PerformedOnset:    onset,
		PerformedDuration: 500,
		PerformedVelocity: 64,
	}
}

func newMerge(notes ...*merge.MergedNote) *merge.Merge {
	return &merge.Merge{Notes: notes, PPQ: 720, TimeSignature: fourFour()}
}

func newContext(m *merge.Merge) *Context {
	return NewContext(m, document.New(), nil)
}

func onsets(m *merge.Merge) []float64 {
	var res []float64
	for _, n := range m.Notes {
		res = append(res, n.PerformedOnset)
	}
	return res
}
