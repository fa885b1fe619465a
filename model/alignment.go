package model

import "fmt"

type Motivation int

const (
	ExactMatch Motivation = iota
	Alteration
	Ornamentation
	OctaveAddition
	Error
	Uncertain
	// Omission and Addition are carried by orphan pairs only.
	Omission
	Addition
)

var motivationNames = map[Motivation]string{
	ExactMatch:     "exactMatch",
	Alteration:     "alteration",
	Ornamentation:  "ornamentation",
	OctaveAddition: "octaveAddition",
	Error:          "error",
	Uncertain:      "uncertain",
	Omission:       "omission",
	Addition:       "addition",
}

func (m Motivation) String() string {
	if name, ok := motivationNames[m]; ok {
		return name
	}
	return fmt.Sprintf("motivation(%d)", int(m))
}

func ParseMotivation(s string) (Motivation, bool) {
	for m, name := range motivationNames {
		if name == s {
			return m, true
		}
	}
	return Uncertain, false
}

func (m Motivation) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Motivation) UnmarshalText(text []byte) error {
	parsed, ok := ParseMotivation(string(text))
	if !ok {
		return fmt.Errorf("unknown motivation %q", string(text))
	}
	*m = parsed
	return nil
}

// AlignmentPair links a score note and a performed note. At least one side is set:
// score only is an omission, performance only is an addition.
type AlignmentPair struct {
	ScoreNote     *ScoreNote
	PerformedNote *PerformedNote
	Motivation    Motivation
}

func (p *AlignmentPair) IsMatched() bool {
	return p.ScoreNote != nil && p.PerformedNote != nil
}

func (p *AlignmentPair) IsOmission() bool {
	return p.ScoreNote != nil && p.PerformedNote == nil
}

func (p *AlignmentPair) IsAddition() bool {
	return p.ScoreNote == nil && p.PerformedNote != nil
}

func (p *AlignmentPair) String() string {
	score, perf := "-", "-"
	if p.ScoreNote != nil {
		score = p.ScoreNote.ID
	}
	if p.PerformedNote != nil {
		perf = p.PerformedNote.ID
	}
	return fmt.Sprintf("%s <-%s-> %s", score, p.Motivation, perf)
}

// Triple is the flat, store-friendly form of an AlignmentPair.
type Triple struct {
	ScoreNoteID     string `json:"scoreNoteId,omitempty"`
	PerformedNoteID string `json:"performedNoteId,omitempty"`
	Motivation      string `json:"motivation"`
}
