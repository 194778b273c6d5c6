package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/call-manager-team/call-manager/internal/domain/entities"
)

// RecordingRepository defines the interface for recording data access
type RecordingRepository interface {
	// Create creates a new recording
	Create(ctx context.Context, recording *entities.Recording) error

	// FindByID retrieves a recording by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Recording, error)

	// FindByEgressID retrieves a recording by its LiveKit egress ID
	FindByEgressID(ctx context.Context, egressID string) (*entities.Recording, error)

	// FindByMeetingID retrieves all recordings of a meeting
	FindByMeetingID(ctx context.Context, meetingID uuid.UUID) ([]*entities.Recording, error)

	// FindActiveByMeetingID retrieves the in-progress recording of a meeting, if any
	FindActiveByMeetingID(ctx context.Context, meetingID uuid.UUID) (*entities.Recording, error)

	// Update updates an existing recording
	Update(ctx context.Context, recording *entities.Recording) error

	// UpdateStatus updates the recording status
	UpdateStatus(ctx context.Context, recordingID uuid.UUID, status entities.RecordingStatus) error
}
