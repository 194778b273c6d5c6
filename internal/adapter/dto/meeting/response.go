package meeting

import (
	"time"

	"github.com/call-manager-team/call-manager/internal/adapter/dto/auth"
)

// MeetingResponse represents a meeting in responses
type MeetingResponse struct {
	ID                  string                 `json:"id"`
	Name                string                 `json:"name"`
	Description         *string                `json:"description,omitempty"`
	Slug                *string                `json:"slug,omitempty"`
	HostID              string                 `json:"host_id"`
	Host                *auth.UserResponse     `json:"host,omitempty"`
	Type                string                 `json:"type"`
	Status              string                 `json:"status"`
	LivekitRoomName     string                 `json:"livekit_room_name"`
	MaxParticipants     int                    `json:"max_participants"`
	CurrentParticipants int                    `json:"current_participants"`
	Settings            map[string]interface{} `json:"settings"`
	ScheduledStartTime  *time.Time             `json:"scheduled_start_time,omitempty"`
	ScheduledEndTime    *time.Time             `json:"scheduled_end_time,omitempty"`
	StartedAt           *time.Time             `json:"started_at,omitempty"`
	EndedAt             *time.Time             `json:"ended_at,omitempty"`
	Duration            *int                   `json:"duration,omitempty"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

// ParticipantResponse represents a participant in responses
type ParticipantResponse struct {
	ID        string             `json:"id"`
	MeetingID string             `json:"meeting_id"`
	UserID    string             `json:"user_id,omitempty"`
	User      *auth.UserResponse `json:"user,omitempty"`
	Role      string             `json:"role"`
	Status    string             `json:"status"`
	JoinedAt  *time.Time         `json:"joined_at,omitempty"`
	LeftAt    *time.Time         `json:"left_at,omitempty"`
	Duration  *int               `json:"duration,omitempty"`
	CanRecord bool               `json:"can_record"`
	CreatedAt time.Time          `json:"created_at"`
}

// JoinMeetingResponse represents the response after joining a meeting
type JoinMeetingResponse struct {
	Meeting      *MeetingResponse     `json:"meeting"`
	Participant  *ParticipantResponse `json:"participant"`
	LivekitToken string               `json:"livekit_token"`
	LivekitURL   string               `json:"livekit_url"`
}

// MeetingListResponse represents a paginated list of meetings
type MeetingListResponse struct {
	Meetings   []*MeetingResponse `json:"meetings"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

// ParticipantListResponse represents a list of participants
type ParticipantListResponse struct {
	Participants []*ParticipantResponse `json:"participants"`
	Total        int                    `json:"total"`
}

// RecordingResponse represents a recording in responses
type RecordingResponse struct {
	ID          string     `json:"id"`
	MeetingID   string     `json:"meeting_id"`
	Status      string     `json:"status"`
	FileURL     *string    `json:"file_url,omitempty"`
	ObjectKey   *string    `json:"object_key,omitempty"`
	FileSize    *int64     `json:"file_size,omitempty"`
	Duration    *int       `json:"duration,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// RecordingListResponse represents a list of recordings
type RecordingListResponse struct {
	Recordings []*RecordingResponse `json:"recordings"`
	Total      int                  `json:"total"`
}
