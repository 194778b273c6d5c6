package analysis

import (
	"time"

	"github.com/call-manager-team/call-manager/internal/annotation"
)

// AnalysisResponse represents an analysis in responses
type AnalysisResponse struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"user_id"`
	RecordingID         *string    `json:"recording_id,omitempty"`
	Status              string     `json:"status"`
	Source              string     `json:"source"`
	VideoObjectKey      string     `json:"video_object_key"`
	VideoWidth          int        `json:"video_width"`
	VideoHeight         int        `json:"video_height"`
	VideoDuration       float64    `json:"video_duration"`
	ExternalJobID       *string    `json:"external_job_id,omitempty"`
	AnnotationObjectKey *string    `json:"annotation_object_key,omitempty"`
	Misaligned          bool       `json:"misaligned"`
	LastError           *string    `json:"last_error,omitempty"`
	StartedAt           *time.Time `json:"started_at,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// AnalysisListResponse represents a list of analyses
type AnalysisListResponse struct {
	Analyses []*AnalysisResponse `json:"analyses"`
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}

// ViewListResponse represents one kind's entities as a seekable list
type ViewListResponse struct {
	Kind  string                `json:"kind"`
	Items []annotation.ViewItem `json:"items"`
	Total int                   `json:"total"`
}

// TimelineResponse represents coalesced display segments per kind
type TimelineResponse struct {
	Strategy string                                 `json:"strategy"`
	Tracks   map[string][]annotation.DisplaySegment `json:"tracks"`
}

// OverlayBoxResponse represents one pixel-space box at the playhead
type OverlayBoxResponse struct {
	Description string              `json:"description"`
	Confidence  float64             `json:"confidence"`
	Box         annotation.PixelBox `json:"box"`
}

// OverlayResponse represents the overlay snapshot at one playhead time
type OverlayResponse struct {
	Time  float64              `json:"time"`
	Kind  string               `json:"kind"`
	Mode  string               `json:"mode"`
	Boxes []OverlayBoxResponse `json:"boxes"`
}
