package align

import (
	"go.uber.org/zap"

	"github.com/jsphweid/perfdex/logger"
	"github.com/jsphweid/perfdex/model"
)

const defaultWindow = 4

// Aligner owns the alignment pair set between one score and one performance.
// It is not safe for concurrent use; callers serialize edits.
type Aligner struct {
	pairs  []*model.AlignmentPair
	window int
	logger *zap.Logger
}

type Option func(*Aligner)

func WithLogger(l *zap.Logger) Option {
	return func(a *Aligner) {
		a.logger = l
	}
}

// WithWindow sets how many chords ahead the matcher looks for a performed note.
func WithWindow(chords int) Option {
	return func(a *Aligner) {
		if chords > 0 {
			a.window = chords
		}
	}
}

func New(opts ...Option) *Aligner {
	a := &Aligner{window: defaultWindow}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logger.OrNop(a.logger)
	return a
}

// Pairs returns the current pairs. The slice is a copy; the pairs are shared.
func (a *Aligner) Pairs() []*model.AlignmentPair {
	return append([]*model.AlignmentPair(nil), a.pairs...)
}

func (a *Aligner) SetPairs(pairs []*model.AlignmentPair) {
	a.pairs = append([]*model.AlignmentPair(nil), pairs...)
}

// Align replaces the pair set with the automatic matcher's result. It is a no-op
// while either input is missing.
func (a *Aligner) Align(score *model.Score, performance *model.Performance) []*model.AlignmentPair {
	if score == nil || performance == nil {
		a.logger.Warn("skipping automatic alignment, score or performance missing",
			zap.Bool("hasScore", score != nil),
			zap.Bool("hasPerformance", performance != nil))
		return a.Pairs()
	}
	a.pairs = a.match(score, performance)
	a.logger.Info("aligned performance to score",
		zap.Int("pairs", len(a.pairs)),
		zap.Int("scoreNotes", len(score.Notes)),
		zap.Int("performedNotes", len(performance.Notes)))
	return a.Pairs()
}

func (a *Aligner) FindByScoreNote(id string) *model.AlignmentPair {
	for _, p := range a.pairs {
		if p.ScoreNote != nil && p.ScoreNote.ID == id {
			return p
		}
	}
	return nil
}

func (a *Aligner) FindByPerformedNote(id string) *model.AlignmentPair {
	for _, p := range a.pairs {
		if p.PerformedNote != nil && p.PerformedNote.ID == id {
			return p
		}
	}
	return nil
}

// AlignNotes links a performed note with a score note. Without an explicit motivation
// (or with Uncertain) it infers ExactMatch for equal pitches and Alteration otherwise.
// Pairs that held either note are unlinked first. Notes that are not part of the
// current pair set make this a no-op.
func (a *Aligner) AlignNotes(performed *model.PerformedNote, score *model.ScoreNote, motivation ...model.Motivation) (*model.AlignmentPair, bool) {
	if performed == nil || score == nil {
		a.logger.Warn("cannot align, note missing")
		return nil, false
	}
	perfPair := a.FindByPerformedNote(performed.ID)
	scorePair := a.FindByScoreNote(score.ID)
	if perfPair == nil || scorePair == nil {
		a.logger.Warn("cannot align untracked note",
			zap.String("performedNote", performed.ID),
			zap.String("scoreNote", score.ID))
		return nil, false
	}

	override := len(motivation) > 0 && motivation[0] != model.Uncertain
	if perfPair == scorePair {
		if override {
			perfPair.Motivation = motivation[0]
		}
		return perfPair, true
	}

	pn, sn := perfPair.PerformedNote, scorePair.ScoreNote
	m := model.Alteration
	if pn.Pitch == sn.Pitch {
		m = model.ExactMatch
	}
	if override {
		m = motivation[0]
	}

	if perfPair.IsMatched() {
		a.RemoveAlignment(perfPair)
	}
	if scorePair.IsMatched() {
		a.RemoveAlignment(scorePair)
	}
	a.removeWhere(func(p *model.AlignmentPair) bool {
		return (p.IsAddition() && p.PerformedNote.ID == pn.ID) ||
			(p.IsOmission() && p.ScoreNote.ID == sn.ID)
	})

	pair := &model.AlignmentPair{ScoreNote: sn, PerformedNote: pn, Motivation: m}
	a.pairs = append(a.pairs, pair)
	return pair, true
}

// RemoveAlignment splits a matched pair into an omission and an addition, in place.
func (a *Aligner) RemoveAlignment(pair *model.AlignmentPair) bool {
	idx := a.indexOf(pair)
	if idx < 0 {
		a.logger.Warn("cannot remove untracked alignment", zap.Stringer("pair", pair))
		return false
	}
	if !pair.IsMatched() {
		return false
	}
	omission := &model.AlignmentPair{ScoreNote: pair.ScoreNote, Motivation: model.Omission}
	addition := &model.AlignmentPair{PerformedNote: pair.PerformedNote, Motivation: model.Addition}

	res := make([]*model.AlignmentPair, 0, len(a.pairs)+1)
	res = append(res, a.pairs[:idx]...)
	res = append(res, omission, addition)
	res = append(res, a.pairs[idx+1:]...)
	a.pairs = res
	return true
}

func (a *Aligner) RemoveAllAlignments() {
	for _, p := range a.Pairs() {
		if p.IsMatched() {
			a.RemoveAlignment(p)
		}
	}
}

func (a *Aligner) UpdateMotivation(pair *model.AlignmentPair, motivation model.Motivation) bool {
	if a.indexOf(pair) < 0 {
		a.logger.Warn("cannot update motivation of untracked alignment", zap.Stringer("pair", pair))
		return false
	}
	pair.Motivation = motivation
	return true
}

func (a *Aligner) indexOf(pair *model.AlignmentPair) int {
	for i, p := range a.pairs {
		if p == pair {
			return i
		}
	}
	return -1
}

func (a *Aligner) removeWhere(drop func(*model.AlignmentPair) bool) {
	kept := a.pairs[:0]
	for _, p := range a.pairs {
		if !drop(p) {
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(a.pairs); i++ {
		a.pairs[i] = nil
	}
	a.pairs = kept
}
