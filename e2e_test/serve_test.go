//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/perfdex/cmd"
	"github.com/jsphweid/perfdex/constants"
	"github.com/jsphweid/perfdex/db"
	"github.com/jsphweid/perfdex/model"
	"github.com/jsphweid/perfdex/pipeline"
	"github.com/jsphweid/perfdex/project"
)

func q(num int64) model.Rational {
	return model.NewRational(num, 1)
}

func newRouter(t *testing.T) http.Handler {
	score := &model.Score{
		Notes: []model.ScoreNote{
			{ID: "s1", Pitch: 60, Onset: q(0), Duration: q(1)},
			{ID: "s2", Pitch: 64, Onset: q(0), Duration: q(1)},
			{ID: "s3", Pitch: 67, Onset: q(0), Duration: q(1)},
			{ID: "s4", Pitch: 62, Onset: q(1), Duration: q(1)},
			{ID: "s5", Pitch: 64, Onset: q(2), Duration: q(1)},
		},
		TimeSignature: &model.TimeSignature{Numerator: 4, Denominator: 4},
	}
	perf := &model.Performance{
		Notes: []model.PerformedNote{
			{ID: "p1", Pitch: 67, Onset: 0, Duration: 400, Velocity: 60},
			{ID: "p2", Pitch: 60, Onset: 10, Duration: 400, Velocity: 60},
			{ID: "p3", Pitch: 64, Onset: 20, Duration: 400, Velocity: 60},
			{ID: "p4", Pitch: 63, Onset: 500, Duration: 400, Velocity: 70},
			{ID: "p5", Pitch: 64, Onset: 1000, Duration: 200, Velocity: 80},
		},
	}
	p, err := project.New(score, perf, constants.PresetChordal, pipeline.DefaultConfig(), project.WithSettle(0))
	require.NoError(t, err)
	return cmd.NewRouter(p, db.NewMemoryStore(), nil)
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *http.Response {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, reader))
	return w.Result()
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestAlignmentEditingE2E(t *testing.T) {
	assert := assert.New(t)
	h := newRouter(t)

	var triples []model.Triple
	decode(t, do(t, h, http.MethodGet, "/alignment", nil), &triples)
	assert.Contains(triples, model.Triple{ScoreNoteID: "s4", PerformedNoteID: "p4", Motivation: "alteration"})

	resp := do(t, h, http.MethodDelete, "/alignment", model.AlignRequest{ScoreNoteID: "s4"})
	assert.Equal(http.StatusNoContent, resp.StatusCode)

	resp = do(t, h, http.MethodDelete, "/alignment", model.AlignRequest{ScoreNoteID: "s4"})
	assert.Equal(http.StatusConflict, resp.StatusCode)

	var linked model.Triple
	resp = do(t, h, http.MethodPost, "/alignment", model.AlignRequest{ScoreNoteID: "s4", PerformedNoteID: "p4", Motivation: "error"})
	assert.Equal(http.StatusOK, resp.StatusCode)
	decode(t, resp, &linked)
	assert.Equal(model.Triple{ScoreNoteID: "s4", PerformedNoteID: "p4", Motivation: "error"}, linked)

	resp = do(t, h, http.MethodPut, "/alignment/motivation", model.AlignRequest{ScoreNoteID: "s4", Motivation: "alteration"})
	assert.Equal(http.StatusNoContent, resp.StatusCode)

	var failure model.ErrorResponse
	resp = do(t, h, http.MethodPost, "/alignment", model.AlignRequest{ScoreNoteID: "s9", PerformedNoteID: "p1"})
	assert.Equal(http.StatusNotFound, resp.StatusCode)
	decode(t, resp, &failure)
	assert.Contains(failure.Error, "s9")
}

func TestDocumentE2E(t *testing.T) {
	assert := assert.New(t)
	h := newRouter(t)

	var regen model.RegenerateResponse
	decode(t, do(t, h, http.MethodPost, "/regenerate", nil), &regen)
	assert.Len(regen.Statuses, 7)

	var doc map[string]interface{}
	resp := do(t, h, http.MethodGet, "/document", nil)
	assert.Equal(http.StatusOK, resp.StatusCode)
	decode(t, resp, &doc)
	global, ok := doc["global"].(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(global["tempo"])
	assert.NotEmpty(global["ornamentation"])
	assert.NotEmpty(global["definitions"])
}

func TestSaveAndLoadE2E(t *testing.T) {
	h := newRouter(t)

	resp := do(t, h, http.MethodPost, "/alignment/save/take-1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, h, http.MethodPost, "/alignment/load/take-1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, h, http.MethodPost, "/alignment/load/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
