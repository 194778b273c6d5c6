package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/call-manager-team/call-manager/internal/domain/entities"
)

// MeetingRepository defines the interface for meeting data access
type MeetingRepository interface {
	// Create creates a new meeting
	Create(ctx context.Context, meeting *entities.Meeting) error

	// FindByID retrieves a meeting by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)

	// FindBySlug retrieves a meeting by its slug
	FindBySlug(ctx context.Context, slug string) (*entities.Meeting, error)

	// FindByLivekitName retrieves a meeting by its LiveKit room name
	FindByLivekitName(ctx context.Context, livekitName string) (*entities.Meeting, error)

	// Update updates an existing meeting
	Update(ctx context.Context, meeting *entities.Meeting) error

	// Delete soft deletes a meeting
	Delete(ctx context.Context, id uuid.UUID) error

	// List retrieves meetings with filters and pagination
	List(ctx context.Context, filters MeetingFilters) ([]*entities.Meeting, int64, error)

	// FindByHostID retrieves all meetings hosted by a user
	FindByHostID(ctx context.Context, hostID uuid.UUID, limit, offset int) ([]*entities.Meeting, error)

	// FindActiveMeetings retrieves all currently active meetings
	FindActiveMeetings(ctx context.Context) ([]*entities.Meeting, error)

	// IncrementParticipantCount increases the participant count
	IncrementParticipantCount(ctx context.Context, meetingID uuid.UUID) error

	// DecrementParticipantCount decreases the participant count
	DecrementParticipantCount(ctx context.Context, meetingID uuid.UUID) error

	// UpdateStatus updates the meeting status
	UpdateStatus(ctx context.Context, meetingID uuid.UUID, status entities.MeetingStatus) error

	// EndMeeting marks a meeting as ended and calculates duration
	EndMeeting(ctx context.Context, meetingID uuid.UUID) error
}

// MeetingFilters represents filter options for listing meetings
type MeetingFilters struct {
	Type      *entities.MeetingType
	Status    *entities.MeetingStatus
	HostID    *uuid.UUID
	Search    string // Search in name, description
	Limit     int
	Offset    int
	SortBy    string // "created_at", "started_at", "name"
	SortOrder string // "asc", "desc"
}
