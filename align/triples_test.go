package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/perfdex/model"
)

func TestTripleRoundTrip(t *testing.T) {
	score, perf := fixtureScore(), fixturePerformance()
	a := New()
	a.Align(score, perf)
	a.UpdateMotivation(a.FindByScoreNote("s1"), model.Ornamentation)
	a.RemoveAlignment(a.FindByScoreNote("s2"))
	expected := describe(a.Pairs())

	triples := Export(a.Pairs())

	b := New()
	require.NoError(t, b.Import(triples, score, perf))
	assert.ElementsMatch(t, expected, describe(b.Pairs()))
}

func TestImportSkipsUnknownIdsAndFillsOrphans(t *testing.T) {
	score, perf := fixtureScore(), fixturePerformance()
	triples := []model.Triple{
		{ScoreNoteID: "s1", PerformedNoteID: "p2", Motivation: "exactMatch"},
		{ScoreNoteID: "ghost", PerformedNoteID: "p1", Motivation: "exactMatch"},
	}

	a := New()
	require.NoError(t, a.Import(triples, score, perf))

	assert.Equal(t, "s1 <-exactMatch-> p2", a.FindByScoreNote("s1").String())
	assert.True(t, a.FindByPerformedNote("p1").IsAddition())
	assert.True(t, a.FindByScoreNote("s4").IsOmission())
	scoreRefs, perfRefs := countRefs(a.Pairs())
	assert.Equal(t, 4, scoreRefs)
	assert.Equal(t, 5, perfRefs)
}

func TestImportRejectsCorruptInput(t *testing.T) {
	score, perf := fixtureScore(), fixturePerformance()
	a := New()
	a.Align(score, perf)
	before := describe(a.Pairs())

	err := a.Import([]model.Triple{{ScoreNoteID: "s1", PerformedNoteID: "p2", Motivation: "vibes"}}, score, perf)
	assert.ErrorIs(t, err, ErrUnknownMotivation)

	err = a.Import([]model.Triple{
		{ScoreNoteID: "s1", PerformedNoteID: "p2", Motivation: "exactMatch"},
		{ScoreNoteID: "s2", PerformedNoteID: "p2", Motivation: "alteration"},
	}, score, perf)
	assert.ErrorIs(t, err, ErrDuplicateReference)

	assert.Equal(t, before, describe(a.Pairs()))
}
