// Package midi reads standard MIDI files into performances and scores.
package midi

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/jsphweid/perfdex/model"
)

const sustainPedal = 64

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	var blank smf.SMF

	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r, ok := recover().(string); ok {
			s, e = &blank, errors.New(r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return &blank, errors.Wrap(err, "Error reading midi file")
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return &blank, errors.Wrap(err, "Error parsing midi file")
	}
	return res, nil
}

func ReadPerformance(filepath string) (*model.Performance, error) {
	s, err := ReadMidiFile(filepath)
	if err != nil {
		return nil, err
	}
	return ToPerformance(s), nil
}

// ReadScore treats every track with notes as one part, numbered from 0.
func ReadScore(filepath string) (*model.Score, error) {
	s, err := ReadMidiFile(filepath)
	if err != nil {
		return nil, err
	}
	return ToScore(s)
}

type sounding struct {
	tick     int64
	ms       float64
	velocity uint8
}

type rawNote struct {
	part     int
	pitch    uint8
	velocity uint8
	start    int64
	end      int64
	startMs  float64
	endMs    float64
}

// collectNotes pairs note starts with note ends per track, channel and key. Notes
// still sounding when a track ends are closed at the last event.
func collectNotes(s *smf.SMF) ([]rawNote, []model.PedalEvent) {
	var notes []rawNote
	var pedal []model.PedalEvent
	part := 0
	for _, track := range s.Tracks {
		open := make(map[[2]uint8][]sounding)
		var absTicks int64
		var found bool
		for _, ev := range track {
			absTicks += int64(ev.Delta)
			ms := float64(s.TimeAt(absTicks)) / 1000
			msg := gomidi.Message(ev.Message)
			var channel, key, velocity, controller, value uint8
			switch {
			case msg.GetNoteStart(&channel, &key, &velocity):
				k := [2]uint8{channel, key}
				open[k] = append(open[k], sounding{tick: absTicks, ms: ms, velocity: velocity})
			case msg.GetNoteEnd(&channel, &key):
				k := [2]uint8{channel, key}
				if len(open[k]) == 0 {
					continue
				}
				on := open[k][0]
				open[k] = open[k][1:]
				notes = append(notes, rawNote{part: part, pitch: key, velocity: on.velocity,
					start: on.tick, end: absTicks, startMs: on.ms, endMs: ms})
				found = true
			case msg.GetControlChange(&channel, &controller, &value):
				if controller == sustainPedal {
					pedal = append(pedal, model.PedalEvent{Onset: ms, Value: int(value)})
				}
			}
		}
		endMs := float64(s.TimeAt(absTicks)) / 1000
		for k, list := range open {
			for _, on := range list {
				notes = append(notes, rawNote{part: part, pitch: k[1], velocity: on.velocity,
					start: on.tick, end: absTicks, startMs: on.ms, endMs: endMs})
				found = true
			}
		}
		if found {
			part++
		}
	}
	sort.SliceStable(notes, func(i, j int) bool {
		a, b := notes[i], notes[j]
		if a.start != b.start {
			return a.start < b.start
		}
		if a.part != b.part {
			return a.part < b.part
		}
		return a.pitch < b.pitch
	})
	sort.SliceStable(pedal, func(i, j int) bool {
		return pedal[i].Onset < pedal[j].Onset
	})
	return notes, pedal
}

// ToPerformance numbers the notes p1, p2, ... in onset order.
func ToPerformance(s *smf.SMF) *model.Performance {
	notes, pedal := collectNotes(s)
	perf := &model.Performance{Pedal: pedal}
	for i, n := range notes {
		perf.Notes = append(perf.Notes, model.PerformedNote{
			ID:       fmt.Sprintf("p%d", i+1),
			Pitch:    int(n.pitch),
			Onset:    n.startMs,
			Duration: n.endMs - n.startMs,
			Velocity: int(n.velocity),
		})
	}
	return perf
}

// ToScore numbers the notes s1, s2, ... in (onset, part, pitch) order. The score
// takes the first time signature found, if any.
func ToScore(s *smf.SMF) (*model.Score, error) {
	tf, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, errors.New("score files need metric ticks, not timecode")
	}
	ppq := int64(tf)

	notes, _ := collectNotes(s)
	score := &model.Score{TimeSignature: timeSignature(s)}
	for i, n := range notes {
		score.Notes = append(score.Notes, model.ScoreNote{
			ID:       fmt.Sprintf("s%d", i+1),
			Part:     n.part,
			Pitch:    int(n.pitch),
			Onset:    model.NewRational(n.start, ppq),
			Duration: model.NewRational(n.end-n.start, ppq),
		})
	}
	return score, nil
}

func timeSignature(s *smf.SMF) *model.TimeSignature {
	for _, track := range s.Tracks {
		for _, ev := range track {
			var num, denom uint8
			if ev.Message.GetMetaMeter(&num, &denom) {
				return &model.TimeSignature{Numerator: int(num), Denominator: int(denom)}
			}
		}
	}
	return nil
}
