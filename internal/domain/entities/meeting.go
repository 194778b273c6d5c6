package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MeetingType represents the type of meeting
type MeetingType string

const (
	MeetingTypePublic    MeetingType = "public"
	MeetingTypePrivate   MeetingType = "private"
	MeetingTypeScheduled MeetingType = "scheduled"
)

// MeetingStatus represents the current status of a meeting
type MeetingStatus string

const (
	MeetingStatusScheduled MeetingStatus = "scheduled"
	MeetingStatusActive    MeetingStatus = "active"
	MeetingStatusEnded     MeetingStatus = "ended"
	MeetingStatusCancelled MeetingStatus = "cancelled"
)

// Meeting represents a brokered conferencing session
type Meeting struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name                string         `gorm:"type:varchar(255);not null" json:"name"`
	Description         *string        `gorm:"type:text" json:"description,omitempty"`
	Slug                *string        `gorm:"type:varchar(100);unique" json:"slug,omitempty"`
	HostID              uuid.UUID      `gorm:"type:uuid;not null;index" json:"host_id"`
	Host                *User          `gorm:"foreignKey:HostID" json:"host,omitempty"`
	Type                MeetingType    `gorm:"type:varchar(20);not null;default:'public';index" json:"type"`
	Status              MeetingStatus  `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	LivekitRoomName     string         `gorm:"type:varchar(255);unique;not null" json:"livekit_room_name"`
	LivekitRoomID       *string        `gorm:"type:varchar(255)" json:"livekit_room_id,omitempty"`
	MaxParticipants     int            `gorm:"default:10;check:max_participants >= 2 AND max_participants <= 100" json:"max_participants"`
	CurrentParticipants int            `gorm:"default:0" json:"current_participants"`
	Settings            datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"settings"`
	ScheduledStartTime  *time.Time     `gorm:"index" json:"scheduled_start_time,omitempty"`
	ScheduledEndTime    *time.Time     `json:"scheduled_end_time,omitempty"`
	StartedAt           *time.Time     `json:"started_at,omitempty"`
	EndedAt             *time.Time     `json:"ended_at,omitempty"`
	Duration            *int           `json:"duration,omitempty"` // seconds
	Metadata            datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"metadata,omitempty"`
	CreatedAt           time.Time      `gorm:"default:now()" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for Meeting
func (Meeting) TableName() string {
	return "meetings"
}

// DefaultMeetingSettings returns default meeting settings
func DefaultMeetingSettings() map[string]interface{} {
	return map[string]interface{}{
		"enable_recording":    true,
		"enable_chat":         true,
		"enable_screen_share": true,
		"require_approval":    false,
		"allow_guests":        false,
		"mute_on_join":        false,
		"auto_record":         false,
		"enable_analysis":     true,
	}
}

// IsActive checks if the meeting is currently active
func (m *Meeting) IsActive() bool {
	return m.Status == MeetingStatusActive
}

// IsEnded checks if the meeting has ended
func (m *Meeting) IsEnded() bool {
	return m.Status == MeetingStatusEnded
}

// IsFull checks if the meeting has reached max capacity
func (m *Meeting) IsFull() bool {
	return m.CurrentParticipants >= m.MaxParticipants
}

// CanJoin checks if a user can join this meeting
func (m *Meeting) CanJoin() bool {
	return m.IsActive() && !m.IsFull()
}

// Start marks the meeting as active
func (m *Meeting) Start() {
	now := time.Now()
	m.Status = MeetingStatusActive
	m.StartedAt = &now
}

// End marks the meeting as ended and calculates duration
func (m *Meeting) End() {
	now := time.Now()
	m.Status = MeetingStatusEnded
	m.EndedAt = &now

	if m.StartedAt != nil {
		duration := int(now.Sub(*m.StartedAt).Seconds())
		m.Duration = &duration
	}
}

// IncrementParticipants increases the participant count
func (m *Meeting) IncrementParticipants() {
	m.CurrentParticipants++
}

// DecrementParticipants decreases the participant count
func (m *Meeting) DecrementParticipants() {
	if m.CurrentParticipants > 0 {
		m.CurrentParticipants--
	}
}
