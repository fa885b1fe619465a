package align

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/jsphweid/perfdex/model"
)

var (
	ErrUnknownMotivation  = errors.New("unknown motivation")
	ErrDuplicateReference = errors.New("note referenced by more than one alignment")
)

// Export flattens pairs into triples, one per pair.
func Export(pairs []*model.AlignmentPair) []model.Triple {
	res := make([]model.Triple, 0, len(pairs))
	for _, p := range pairs {
		var t model.Triple
		if p.ScoreNote != nil {
			t.ScoreNoteID = p.ScoreNote.ID
		}
		if p.PerformedNote != nil {
			t.PerformedNoteID = p.PerformedNote.ID
		}
		t.Motivation = p.Motivation.String()
		res = append(res, t)
	}
	return res
}

// Import rebuilds the pair set from triples. Triples pointing at ids the score or
// performance does not know are skipped. An unknown motivation or a note claimed
// twice means the import does not belong to these inputs; the pair set is left
// untouched and an error is returned. Notes no triple mentions become orphans.
func (a *Aligner) Import(triples []model.Triple, score *model.Score, performance *model.Performance) error {
	if score == nil || performance == nil {
		a.logger.Warn("skipping alignment import, score or performance missing")
		return nil
	}

	usedScore := make(map[string]bool)
	usedPerf := make(map[string]bool)
	var pairs []*model.AlignmentPair

	for _, t := range triples {
		m, ok := model.ParseMotivation(t.Motivation)
		if !ok {
			return errors.Wrapf(ErrUnknownMotivation, "%q", t.Motivation)
		}

		var sn *model.ScoreNote
		var pn *model.PerformedNote
		if t.ScoreNoteID != "" {
			if sn, ok = score.NoteByID(t.ScoreNoteID); !ok {
				a.logger.Warn("skipping triple, score note not found", zap.String("scoreNote", t.ScoreNoteID))
				continue
			}
		}
		if t.PerformedNoteID != "" {
			if pn, ok = performance.NoteByID(t.PerformedNoteID); !ok {
				a.logger.Warn("skipping triple, performed note not found", zap.String("performedNote", t.PerformedNoteID))
				continue
			}
		}
		if sn == nil && pn == nil {
			continue
		}

		if sn != nil {
			if usedScore[sn.ID] {
				return errors.Wrapf(ErrDuplicateReference, "score note %s", sn.ID)
			}
			usedScore[sn.ID] = true
		}
		if pn != nil {
			if usedPerf[pn.ID] {
				return errors.Wrapf(ErrDuplicateReference, "performed note %s", pn.ID)
			}
			usedPerf[pn.ID] = true
		}

		switch {
		case sn == nil:
			m = model.Addition
		case pn == nil:
			m = model.Omission
		}
		pairs = append(pairs, &model.AlignmentPair{ScoreNote: sn, PerformedNote: pn, Motivation: m})
	}

	for i := range score.Notes {
		if !usedScore[score.Notes[i].ID] {
			pairs = append(pairs, &model.AlignmentPair{ScoreNote: &score.Notes[i], Motivation: model.Omission})
		}
	}
	for i := range performance.Notes {
		if !usedPerf[performance.Notes[i].ID] {
			pairs = append(pairs, &model.AlignmentPair{PerformedNote: &performance.Notes[i], Motivation: model.Addition})
		}
	}

	a.pairs = pairs
	return nil
}
