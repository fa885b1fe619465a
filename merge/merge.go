// Package merge flattens matched alignment pairs into one chronological table that
// carries both the score's symbolic attributes and the performance's physical ones.
package merge

import (
	"sort"

	"github.com/jsphweid/perfdex/model"
)

// MergedNote dates and durations are in pulses, performed values in milliseconds.
// The performed fields are rewritten by pipeline stages as they explain variance away.
type MergedNote struct {
	ID          string
	PerformedID string
	Part        int
	Pitch       int
	PitchName   string
	Octave      *int
	Date        float64
	Duration    float64

	PerformedOnset    float64
	PerformedDuration float64
	PerformedVelocity int
}

type Merge struct {
	Notes         []*MergedNote
	PPQ           int
	TimeSignature *model.TimeSignature
}

// Build keeps the matched pairs only, sorted by date, then part, then pitch.
// The merge is always rebuilt from scratch after the pair set changes.
func Build(pairs []*model.AlignmentPair, ppq int, ts *model.TimeSignature) *Merge {
	m := &Merge{PPQ: ppq, TimeSignature: ts}
	for _, p := range pairs {
		if !p.IsMatched() {
			continue
		}
		sn, pn := p.ScoreNote, p.PerformedNote
		m.Notes = append(m.Notes, &MergedNote{
			ID:                sn.ID,
			PerformedID:       pn.ID,
			Part:              sn.Part,
			Pitch:             sn.Pitch,
			PitchName:         sn.PitchName,
			Octave:            sn.Octave,
			Date:              sn.Onset.Pulses(ppq),
			Duration:          sn.Duration.Pulses(ppq),
			PerformedOnset:    pn.Onset,
			PerformedDuration: pn.Duration,
			PerformedVelocity: pn.Velocity,
		})
	}
	sort.SliceStable(m.Notes, func(i, j int) bool {
		a, b := m.Notes[i], m.Notes[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Part != b.Part {
			return a.Part < b.Part
		}
		return a.Pitch < b.Pitch
	})
	return m
}

func inScope(n *MergedNote, scope model.Scope) bool {
	return scope.IsGlobal() || n.Part == scope.PartNumber()
}

// InScope returns the notes of one part, or all notes for the global scope.
func (m *Merge) InScope(scope model.Scope) []*MergedNote {
	var res []*MergedNote
	for _, n := range m.Notes {
		if inScope(n, scope) {
			res = append(res, n)
		}
	}
	return res
}

func (m *Merge) NotesAtDate(date float64, scope model.Scope) []*MergedNote {
	var res []*MergedNote
	for _, n := range m.Notes {
		if n.Date == date && inScope(n, scope) {
			res = append(res, n)
		}
	}
	return res
}

// AsChords buckets the notes in scope by identical date, in date order.
func (m *Merge) AsChords(scope model.Scope) [][]*MergedNote {
	var chords [][]*MergedNote
	for _, n := range m.InScope(scope) {
		last := len(chords) - 1
		if last >= 0 && chords[last][0].Date == n.Date {
			chords[last] = append(chords[last], n)
			continue
		}
		chords = append(chords, []*MergedNote{n})
	}
	return chords
}

// LastDate is 0 for an empty merge.
func (m *Merge) LastDate() float64 {
	if len(m.Notes) == 0 {
		return 0
	}
	return m.Notes[len(m.Notes)-1].Date
}

func (m *Merge) Parts() []int {
	seen := make(map[int]bool)
	var parts []int
	for _, n := range m.Notes {
		if !seen[n.Part] {
			seen[n.Part] = true
			parts = append(parts, n.Part)
		}
	}
	sort.Ints(parts)
	return parts
}

// BeatTicks converts a beat length, as a fraction of a whole note, into pulses.
func (m *Merge) BeatTicks(beatLength float64) float64 {
	return beatLength * 4 * float64(m.PPQ)
}
