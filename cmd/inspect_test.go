package cmd

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/perfdex/db"
	"github.com/jsphweid/perfdex/model"
	"github.com/jsphweid/perfdex/project"
)

func TestInspectScore(t *testing.T) {
	t.Setenv("PERFDEX_PPQ", "")
	score := &model.Score{
		Notes: []model.ScoreNote{
			{ID: "s1", Pitch: 67, Onset: model.NewRational(0, 1)},
			{ID: "s2", Pitch: 60, Onset: model.NewRational(0, 1)},
			{ID: "s3", Pitch: 62, Onset: model.NewRational(1, 1)},
		},
		TimeSignature: &model.TimeSignature{Numerator: 3, Denominator: 4},
	}
	var out bytes.Buffer
	inspectScore(&out, "score.json", score)

	assert := assert.New(t)
	assert.Contains(out.String(), "score.json: 3 notes, parts [0], time signature 3/4")
	assert.Contains(out.String(), "       0  60-67\n")
	assert.Contains(out.String(), "     720  62\n")
}

func TestInspectPerformanceGroupsCloseOnsets(t *testing.T) {
	perf := &model.Performance{Notes: []model.PerformedNote{
		{ID: "p2", Pitch: 64, Onset: 20},
		{ID: "p1", Pitch: 60, Onset: 0},
		{ID: "p3", Pitch: 62, Onset: 500},
	}}
	var out bytes.Buffer
	inspectPerf(&out, perf)

	assert.Equal(t, "3 notes, 0 pedal events\n     0.0ms  60-64\n   500.0ms  62\n", out.String())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(errors.Wrap(project.ErrUnknownNote, "s9")))
	assert.Equal(t, http.StatusNotFound, statusFor(errors.Wrap(db.ErrNotFound, "x")))
	assert.Equal(t, http.StatusConflict, statusFor(project.ErrNotAligned))
	assert.Equal(t, http.StatusBadRequest, statusFor(errors.New("bad json")))
}
