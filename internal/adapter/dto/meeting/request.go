package meeting

import (
	"time"
)

// CreateMeetingRequest represents the request to create a meeting
type CreateMeetingRequest struct {
	Name               string                 `json:"name" validate:"required,min=1,max=255"`
	Description        *string                `json:"description,omitempty"`
	Type               string                 `json:"type" validate:"required,oneof=public private scheduled"`
	MaxParticipants    int                    `json:"max_participants" validate:"required,min=2,max=100"`
	Settings           map[string]interface{} `json:"settings,omitempty"`
	ScheduledStartTime *time.Time             `json:"scheduled_start_time,omitempty"`
	ScheduledEndTime   *time.Time             `json:"scheduled_end_time,omitempty"`
}

// ListMeetingsRequest represents query parameters for listing meetings
type ListMeetingsRequest struct {
	Type     *string `query:"type" validate:"omitempty,oneof=public private scheduled"`
	Status   *string `query:"status" validate:"omitempty,oneof=scheduled active ended cancelled"`
	Search   string  `query:"search"`
	Page     int     `query:"page" validate:"omitempty,min=1"`
	PageSize int     `query:"page_size" validate:"omitempty,min=1,max=100"`
}
