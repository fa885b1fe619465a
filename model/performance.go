package model

// PerformedNote times are in milliseconds.
type PerformedNote struct {
	ID       string  `json:"id"`
	Pitch    int     `json:"pitch"`
	Onset    float64 `json:"onset"`
	Duration float64 `json:"duration"`
	Velocity int     `json:"velocity"`
}

// PedalEvent is a sustain pedal change; Value follows MIDI CC64 (0-127).
type PedalEvent struct {
	Onset float64 `json:"onset"`
	Value int     `json:"value"`
}

type Performance struct {
	Notes []PerformedNote `json:"notes"`
	Pedal []PedalEvent    `json:"pedal,omitempty"`
}

func (p *Performance) NoteByID(id string) (*PerformedNote, bool) {
	for i := range p.Notes {
		if p.Notes[i].ID == id {
			return &p.Notes[i], true
		}
	}
	return nil, false
}
