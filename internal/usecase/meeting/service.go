package meeting

import (
	"context"

	"github.com/google/uuid"

	"github.com/call-manager-team/call-manager/internal/domain/entities"
	"github.com/call-manager-team/call-manager/internal/domain/repositories"
)

// Service defines the interface for the meeting use case
type Service interface {
	// CreateMeeting creates a new meeting and its backing conference room
	CreateMeeting(ctx context.Context, input CreateMeetingInput) (*entities.Meeting, error)

	// GetMeeting retrieves a meeting by ID
	GetMeeting(ctx context.Context, meetingID uuid.UUID) (*entities.Meeting, error)

	// GetMeetingByLivekitName retrieves a meeting by LiveKit room name (for webhooks)
	GetMeetingByLivekitName(ctx context.Context, livekitName string) (*entities.Meeting, error)

	// ListMeetings retrieves meetings with filters
	ListMeetings(ctx context.Context, filters repositories.MeetingFilters) ([]*entities.Meeting, int64, error)

	// JoinMeeting adds a user to a meeting and returns a signed join token
	JoinMeeting(ctx context.Context, meetingID, userID uuid.UUID, userName string) (*JoinMeetingOutput, error)

	// LeaveMeeting marks a user as having left a meeting
	LeaveMeeting(ctx context.Context, meetingID, userID uuid.UUID) error

	// EndMeeting ends a meeting (host only)
	EndMeeting(ctx context.Context, meetingID, userID uuid.UUID) error

	// DeleteMeeting soft deletes an ended meeting (host only)
	DeleteMeeting(ctx context.Context, meetingID, userID uuid.UUID) error

	// GetParticipants retrieves all participants in a meeting
	GetParticipants(ctx context.Context, meetingID uuid.UUID) ([]*entities.Participant, error)

	// StartRecording starts a room composite recording (host only)
	StartRecording(ctx context.Context, meetingID, userID uuid.UUID) (*entities.Recording, error)

	// StopRecording stops a recording (host only)
	StopRecording(ctx context.Context, recordingID, userID uuid.UUID) (*entities.Recording, error)

	// CompleteRecording finalizes a recording from an egress webhook
	CompleteRecording(ctx context.Context, egressID string, fileSize int64, durationSeconds int) (*entities.Recording, error)

	// FailRecording marks a recording as failed from an egress webhook
	FailRecording(ctx context.Context, egressID, reason string) error

	// GetRecordings lists the recordings of a meeting
	GetRecordings(ctx context.Context, meetingID uuid.UUID) ([]*entities.Recording, error)

	// HandleParticipantLeft reconciles state from a LiveKit webhook event
	HandleParticipantLeft(ctx context.Context, livekitRoomName, identity string) error

	// HandleRoomFinished ends the meeting when LiveKit reports the room closed
	HandleRoomFinished(ctx context.Context, livekitRoomName string) error
}

// Ensure MeetingService implements Service interface
var _ Service = (*MeetingService)(nil)
