package model

type AlignRequest struct {
	ScoreNoteID     string `json:"scoreNoteId"`
	PerformedNoteID string `json:"performedNoteId"`
	Motivation      string `json:"motivation,omitempty"`
}

type RegenerateResponse struct {
	Statuses []string `json:"statuses"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
