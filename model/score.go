package model

import "sort"

// Rational is a symbolic position or length measured in quarter notes.
type Rational struct {
	Num int64 `json:"num"`
	Den int64 `json:"den"`
}

func NewRational(num, den int64) Rational {
	if den == 0 {
		den = 1
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(abs(num), den)
	if g > 1 {
		num, den = num/g, den/g
	}
	return Rational{Num: num, Den: den}
}

func (r Rational) Float() float64 {
	if r.Den == 0 {
		return float64(r.Num)
	}
	return float64(r.Num) / float64(r.Den)
}

// Pulses converts the quarter-note value into pulses at the given resolution.
func (r Rational) Pulses(ppq int) float64 {
	return r.Float() * float64(ppq)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(a int64) int64 {
	if a < 0 {
		return -a
	}
	return a
}

type ScoreNote struct {
	ID        string   `json:"id"`
	Part      int      `json:"part"`
	Pitch     int      `json:"pitch"`
	Onset     Rational `json:"onset"`
	Duration  Rational `json:"duration"`
	PitchName string   `json:"pitchName,omitempty"`
	Octave    *int     `json:"octave,omitempty"`
}

type TimeSignature struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

// BarLength is the length of one bar as a fraction of a whole note.
func (ts TimeSignature) BarLength() float64 {
	if ts.Denominator == 0 {
		return 0
	}
	return float64(ts.Numerator) / float64(ts.Denominator)
}

type Score struct {
	Notes         []ScoreNote    `json:"notes"`
	TimeSignature *TimeSignature `json:"timeSignature,omitempty"`
}

func (s *Score) NoteByID(id string) (*ScoreNote, bool) {
	for i := range s.Notes {
		if s.Notes[i].ID == id {
			return &s.Notes[i], true
		}
	}
	return nil, false
}

// Parts returns the distinct part numbers in ascending order.
func (s *Score) Parts() []int {
	seen := make(map[int]bool)
	var parts []int
	for _, n := range s.Notes {
		if !seen[n.Part] {
			seen[n.Part] = true
			parts = append(parts, n.Part)
		}
	}
	sort.Ints(parts)
	return parts
}
