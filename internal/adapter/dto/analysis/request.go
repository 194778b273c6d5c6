package analysis

// RegisterAnalysisRequest represents the request to register a stored
// video for annotation
type RegisterAnalysisRequest struct {
	VideoObjectKey string  `json:"video_object_key" validate:"required"`
	RecordingID    *string `json:"recording_id,omitempty" validate:"omitempty,uuid"`
	VideoWidth     int     `json:"video_width" validate:"omitempty,min=0"`
	VideoHeight    int     `json:"video_height" validate:"omitempty,min=0"`
	VideoDuration  float64 `json:"video_duration" validate:"omitempty,min=0"`
}

// StartTranscriptionRequest represents the request to synthesize an
// annotation document from a recording's speech transcript
type StartTranscriptionRequest struct {
	RecordingID string `json:"recording_id" validate:"required,uuid"`
}

// ListAnalysesRequest represents query parameters for listing analyses
type ListAnalysesRequest struct {
	Page     int `query:"page" validate:"omitempty,min=1"`
	PageSize int `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ViewRequest represents query parameters for a kind's view list
type ViewRequest struct {
	Search        string  `query:"q"`
	MinConfidence float64 `query:"min_confidence" validate:"omitempty,min=0,max=1"`
	SortBy        string  `query:"sort" validate:"omitempty,oneof=time confidence"`
}

// TimelineRequest represents query parameters for the timeline summary
type TimelineRequest struct {
	Strategy string `query:"strategy" validate:"omitempty,oneof=greedy sorted"`
}

// OverlayRequest represents query parameters for an overlay snapshot
type OverlayRequest struct {
	Time float64 `query:"t" validate:"min=0"`
	Kind string  `query:"kind"`
	Mode string  `query:"mode" validate:"omitempty,oneof=nearest interpolated"`
}
