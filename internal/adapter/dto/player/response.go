package player

import (
	analysisDTO "github.com/call-manager-team/call-manager/internal/adapter/dto/analysis"
)

// SessionResponse represents the playback session state returned after
// every session operation
type SessionResponse struct {
	ID                string                           `json:"id"`
	AnalysisID        string                           `json:"analysis_id"`
	CurrentTime       float64                          `json:"current_time"`
	Playing           bool                             `json:"playing"`
	Kind              string                           `json:"kind"`
	Boxes             []analysisDTO.OverlayBoxResponse `json:"boxes"`
	FocusViolations   int                              `json:"focus_violations"`
	FocusLimitReached bool                             `json:"focus_limit_reached"`
}
