package pipeline

import (
	"fmt"
	"sort"

	"github.com/jsphweid/perfdex/chord"
	"github.com/jsphweid/perfdex/document"
	"github.com/jsphweid/perfdex/merge"
	"github.com/jsphweid/perfdex/util"
)

const arpeggio = "arpeggio"

// OrnamentStage detects spread chords, records them as arpeggios and collapses each
// chord onto its mean onset so later stages see it played together.
type OrnamentStage struct {
	Scoping      Scoping
	MinChordSize int
	// MinSpan is the spread in milliseconds a chord must exceed to count.
	MinSpan float64
}

func (s *OrnamentStage) Name() string {
	return "ornamentation"
}

func (s *OrnamentStage) Transform(c *Context) string {
	var found int
	for _, scope := range s.Scoping.scopes(c.Merge) {
		for _, notes := range c.Merge.AsChords(scope) {
			if len(notes) < s.MinChordSize || len(notes) < 2 {
				continue
			}
			ornament, ok := s.arpeggiate(notes)
			if !ok {
				continue
			}
			c.Document.InsertInstructions(scope, ornament)
			found++
		}
	}
	return fmt.Sprintf("%s: %d arpeggios", s.Name(), found)
}

func (s *OrnamentStage) arpeggiate(notes []*merge.MergedNote) (*document.Ornament, bool) {
	played := append([]*merge.MergedNote(nil), notes...)
	sort.SliceStable(played, func(i, j int) bool {
		return played[i].PerformedOnset < played[j].PerformedOnset
	})
	span := played[len(played)-1].PerformedOnset - played[0].PerformedOnset
	if span <= s.MinSpan || span <= 0 {
		return nil, false
	}

	pitches := make([]int, len(played))
	onsets := make([]float64, len(played))
	for i, n := range played {
		pitches[i] = n.Pitch
		onsets[i] = n.PerformedOnset
	}

	ornament := &document.Ornament{
		Base:    document.Base{Date: notes[0].Date},
		NameRef: arpeggio,
		Spread: &document.TemporalSpread{
			FrameStart:  -span / 2,
			FrameLength: span,
			Intensity:   1,
			Unit:        document.UnitMillisecondsOffset,
		},
	}
	if dir := chord.ClassifyOrder(pitches); dir != chord.Irregular {
		ornament.Direction = dir.String()
	} else {
		for _, n := range played {
			ornament.NoteOrder = append(ornament.NoteOrder, n.ID)
		}
	}

	mean := util.Mean(onsets)
	for _, n := range notes {
		n.PerformedOnset = mean
	}
	return ornament, true
}
