// Package file loads scores, performances and alignments from disk by extension.
package file

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/jsphweid/perfdex/midi"
	"github.com/jsphweid/perfdex/model"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

func isMidi(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mid", ".midi":
		return true
	}
	return false
}

func isJSON(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".json"
}

func readJSON(path string, v interface{}) error {
	dat, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	if err := json.Unmarshal(dat, v); err != nil {
		return errors.Wrapf(err, "decoding %s", path)
	}
	return nil
}

func LoadScore(path string) (*model.Score, error) {
	switch {
	case isMidi(path):
		return midi.ReadScore(path)
	case isJSON(path):
		var s model.Score
		if err := readJSON(path, &s); err != nil {
			return nil, err
		}
		return &s, nil
	}
	return nil, errors.Wrap(ErrUnsupportedFormat, path)
}

func LoadPerformance(path string) (*model.Performance, error) {
	switch {
	case isMidi(path):
		return midi.ReadPerformance(path)
	case isJSON(path):
		var p model.Performance
		if err := readJSON(path, &p); err != nil {
			return nil, err
		}
		return &p, nil
	}
	return nil, errors.Wrap(ErrUnsupportedFormat, path)
}

// LoadTriples reads a JSON list of alignment triples.
func LoadTriples(path string) ([]model.Triple, error) {
	if !isJSON(path) {
		return nil, errors.Wrap(ErrUnsupportedFormat, path)
	}
	var triples []model.Triple
	if err := readJSON(path, &triples); err != nil {
		return nil, err
	}
	return triples, nil
}

// WriteJSON writes v indented, or to stdout when path is empty or "-".
func WriteJSON(path string, v interface{}) error {
	dat, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding json")
	}
	dat = append(dat, '\n')
	if path == "" || path == "-" {
		_, err = os.Stdout.Write(dat)
		return err
	}
	return errors.Wrapf(os.WriteFile(path, dat, 0644), "writing %s", path)
}
