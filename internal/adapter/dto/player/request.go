package player

// OpenSessionRequest represents the request to open a playback session
type OpenSessionRequest struct {
	AnalysisID string `json:"analysis_id" validate:"required,uuid"`
}

// TimeUpdateRequest represents a playhead position report
type TimeUpdateRequest struct {
	Time float64 `json:"time" validate:"min=0"`
}

// SeekRequest represents a seek to an absolute playhead time
type SeekRequest struct {
	Time float64 `json:"time" validate:"min=0"`
}

// SetKindRequest represents switching the annotation kind driving the overlay
type SetKindRequest struct {
	Kind string `json:"kind" validate:"required,oneof=label object face text speech"`
}

// SetModeRequest represents switching the box estimation mode
type SetModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=nearest interpolated"`
}

// FocusRequest represents a window focus transition from the client
type FocusRequest struct {
	Focused bool `json:"focused"`
}
