package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/call-manager-team/call-manager/internal/domain/entities"
)

// ParticipantRepository defines the interface for participant data access
type ParticipantRepository interface {
	// Create creates a new participant record
	Create(ctx context.Context, participant *entities.Participant) error

	// FindByID retrieves a participant by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Participant, error)

	// FindByMeetingAndUser retrieves a participant by meeting and user ID
	FindByMeetingAndUser(ctx context.Context, meetingID, userID uuid.UUID) (*entities.Participant, error)

	// Update updates an existing participant
	Update(ctx context.Context, participant *entities.Participant) error

	// FindByMeetingID retrieves all participants in a meeting
	FindByMeetingID(ctx context.Context, meetingID uuid.UUID) ([]*entities.Participant, error)

	// FindActiveByMeetingID retrieves all active participants in a meeting
	FindActiveByMeetingID(ctx context.Context, meetingID uuid.UUID) ([]*entities.Participant, error)

	// CountActiveByMeetingID counts active participants in a meeting
	CountActiveByMeetingID(ctx context.Context, meetingID uuid.UUID) (int64, error)

	// IsUserInMeeting checks if a user is currently in a meeting
	IsUserInMeeting(ctx context.Context, meetingID, userID uuid.UUID) (bool, error)

	// MarkAsJoined marks a participant as joined
	MarkAsJoined(ctx context.Context, participantID uuid.UUID) error

	// MarkAsLeft marks a participant as left
	MarkAsLeft(ctx context.Context, participantID uuid.UUID) error

	// Remove marks a participant as removed
	Remove(ctx context.Context, participantID, removedBy uuid.UUID, reason string) error
}
