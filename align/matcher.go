package align

import (
	"sort"

	"github.com/jsphweid/perfdex/model"
)

// alterationRange is the widest pitch error, in semitones, still read as a wrong note
// rather than an unrelated addition.
const alterationRange = 2

type scoreChord struct {
	notes   []*model.ScoreNote
	matched []bool
}

type placement struct {
	score      *model.ScoreNote
	motivation model.Motivation
}

type unplaced struct {
	note *model.PerformedNote
	pos  int
}

// match follows the score chord by chord while walking the performance in onset order.
func (a *Aligner) match(score *model.Score, performance *model.Performance) []*model.AlignmentPair {
	chords := groupScoreChords(score)

	performed := make([]*model.PerformedNote, len(performance.Notes))
	for i := range performance.Notes {
		performed[i] = &performance.Notes[i]
	}
	sort.SliceStable(performed, func(i, j int) bool {
		if performed[i].Onset != performed[j].Onset {
			return performed[i].Onset < performed[j].Onset
		}
		return performed[i].Pitch < performed[j].Pitch
	})

	placed := make(map[*model.ScoreNote]*model.PerformedNote)
	motivations := make(map[*model.ScoreNote]model.Motivation)
	var misses []unplaced

	pos := 0
	for _, pn := range performed {
		ci, ni, ok := a.findExact(chords, pos, pn.Pitch)
		if !ok {
			misses = append(misses, unplaced{note: pn, pos: pos})
			continue
		}
		chords[ci].matched[ni] = true
		sn := chords[ci].notes[ni]
		placed[sn] = pn
		motivations[sn] = model.ExactMatch
		pos = ci
	}

	var additions []*model.PerformedNote
	for _, miss := range misses {
		ci, ni, ok := findNear(chords, miss.pos, miss.note.Pitch)
		if !ok {
			additions = append(additions, miss.note)
			continue
		}
		chords[ci].matched[ni] = true
		sn := chords[ci].notes[ni]
		placed[sn] = miss.note
		motivations[sn] = model.Alteration
	}

	var pairs []*model.AlignmentPair
	for _, c := range chords {
		for _, sn := range c.notes {
			if pn, ok := placed[sn]; ok {
				pairs = append(pairs, &model.AlignmentPair{ScoreNote: sn, PerformedNote: pn, Motivation: motivations[sn]})
			} else {
				pairs = append(pairs, &model.AlignmentPair{ScoreNote: sn, Motivation: model.Omission})
			}
		}
	}
	for _, pn := range additions {
		pairs = append(pairs, &model.AlignmentPair{PerformedNote: pn, Motivation: model.Addition})
	}
	return pairs
}

func groupScoreChords(score *model.Score) []*scoreChord {
	notes := make([]*model.ScoreNote, len(score.Notes))
	for i := range score.Notes {
		notes[i] = &score.Notes[i]
	}
	sort.SliceStable(notes, func(i, j int) bool {
		oi, oj := notes[i].Onset.Float(), notes[j].Onset.Float()
		if oi != oj {
			return oi < oj
		}
		if notes[i].Part != notes[j].Part {
			return notes[i].Part < notes[j].Part
		}
		return notes[i].Pitch < notes[j].Pitch
	})

	var chords []*scoreChord
	for i, n := range notes {
		if i == 0 || n.Onset.Float() != notes[i-1].Onset.Float() {
			chords = append(chords, &scoreChord{})
		}
		c := chords[len(chords)-1]
		c.notes = append(c.notes, n)
		c.matched = append(c.matched, false)
	}
	return chords
}

// findExact looks forward from pos through the window, then one chord back.
func (a *Aligner) findExact(chords []*scoreChord, pos int, pitch int) (int, int, bool) {
	order := make([]int, 0, a.window+2)
	for ci := pos; ci <= pos+a.window && ci < len(chords); ci++ {
		order = append(order, ci)
	}
	if pos > 0 {
		order = append(order, pos-1)
	}
	for _, ci := range order {
		for ni, n := range chords[ci].notes {
			if !chords[ci].matched[ni] && n.Pitch == pitch {
				return ci, ni, true
			}
		}
	}
	return 0, 0, false
}

func findNear(chords []*scoreChord, pos int, pitch int) (int, int, bool) {
	bestChord, bestNote, bestDist := -1, -1, alterationRange+1
	for ci := pos; ci <= pos+1 && ci < len(chords); ci++ {
		for ni, n := range chords[ci].notes {
			if chords[ci].matched[ni] {
				continue
			}
			d := n.Pitch - pitch
			if d < 0 {
				d = -d
			}
			if d < bestDist {
				bestChord, bestNote, bestDist = ci, ni, d
			}
		}
	}
	return bestChord, bestNote, bestChord >= 0
}
