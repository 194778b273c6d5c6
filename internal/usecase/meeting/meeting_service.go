package meeting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/call-manager-team/call-manager/internal/domain/entities"
	"github.com/call-manager-team/call-manager/internal/domain/repositories"
	"github.com/call-manager-team/call-manager/internal/infrastructure/external/livekit"
	usecaseErrors "github.com/call-manager-team/call-manager/internal/usecase/errors"
	"github.com/call-manager-team/call-manager/pkg/config"
)

// MeetingService handles meeting business logic
type MeetingService struct {
	meetingRepo     repositories.MeetingRepository
	participantRepo repositories.ParticipantRepository
	recordingRepo   repositories.RecordingRepository
	lkClient        livekit.Client
	cfg             *config.Config
	logger          *zap.Logger
}

// NewMeetingService creates a new meeting service
func NewMeetingService(
	meetingRepo repositories.MeetingRepository,
	participantRepo repositories.ParticipantRepository,
	recordingRepo repositories.RecordingRepository,
	lkClient livekit.Client,
	cfg *config.Config,
	logger *zap.Logger,
) *MeetingService {
	return &MeetingService{
		meetingRepo:     meetingRepo,
		participantRepo: participantRepo,
		recordingRepo:   recordingRepo,
		lkClient:        lkClient,
		cfg:             cfg,
		logger:          logger,
	}
}

// CreateMeetingInput represents input for creating a meeting
type CreateMeetingInput struct {
	Name               string
	Description        *string
	HostID             uuid.UUID
	Type               entities.MeetingType
	MaxParticipants    int
	Settings           map[string]interface{}
	ScheduledStartTime *time.Time
	ScheduledEndTime   *time.Time
}

// CreateMeeting creates a new meeting and its backing LiveKit room
func (s *MeetingService) CreateMeeting(ctx context.Context, input CreateMeetingInput) (*entities.Meeting, error) {
	if input.MaxParticipants < 2 || input.MaxParticipants > 100 {
		return nil, usecaseErrors.ErrInvalidMaxParticipants
	}
	if input.Type == "" {
		input.Type = entities.MeetingTypePublic
	}

	// Defaults apply for any setting the caller leaves out
	settings := entities.DefaultMeetingSettings()
	for key, value := range input.Settings {
		settings[key] = value
	}
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode meeting settings: %w", err)
	}

	livekitRoomName := fmt.Sprintf("meeting-%s", uuid.New().String())

	roomInfo, err := s.lkClient.CreateRoom(ctx, livekitRoomName, &livekit.CreateRoomOptions{
		MaxParticipants:  int32(input.MaxParticipants),
		EmptyTimeout:     300,
		DepartureTimeout: 30,
	})
	if err != nil {
		s.logger.Error("failed to create livekit room", zap.String("room", livekitRoomName), zap.Error(err))
		return nil, usecaseErrors.ErrLivekitRoom
	}

	meeting := &entities.Meeting{
		Name:                input.Name,
		Description:         input.Description,
		HostID:              input.HostID,
		Type:                input.Type,
		Status:              entities.MeetingStatusScheduled,
		LivekitRoomName:     livekitRoomName,
		LivekitRoomID:       &roomInfo.SID,
		MaxParticipants:     input.MaxParticipants,
		CurrentParticipants: 0,
		Settings:            settingsJSON,
		ScheduledStartTime:  input.ScheduledStartTime,
		ScheduledEndTime:    input.ScheduledEndTime,
	}

	if err := s.meetingRepo.Create(ctx, meeting); err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	// Add host as first participant
	now := time.Now()
	hostID := input.HostID
	participant := &entities.Participant{
		MeetingID: meeting.ID,
		UserID:    &hostID,
		Role:      entities.ParticipantRoleHost,
		Status:    entities.ParticipantStatusInvited,
		InvitedAt: &now,
		CanRecord: true,
	}

	if err := s.participantRepo.Create(ctx, participant); err != nil {
		return nil, fmt.Errorf("failed to add host as participant: %w", err)
	}

	return meeting, nil
}

// GetMeeting retrieves a meeting by ID
func (s *MeetingService) GetMeeting(ctx context.Context, meetingID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecaseErrors.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	return meeting, nil
}

// GetMeetingByLivekitName retrieves a meeting by LiveKit room name (for webhooks)
func (s *MeetingService) GetMeetingByLivekitName(ctx context.Context, livekitName string) (*entities.Meeting, error) {
	meeting, err := s.meetingRepo.FindByLivekitName(ctx, livekitName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecaseErrors.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	return meeting, nil
}

// ListMeetings retrieves meetings with filters
func (s *MeetingService) ListMeetings(ctx context.Context, filters repositories.MeetingFilters) ([]*entities.Meeting, int64, error) {
	meetings, total, err := s.meetingRepo.List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list meetings: %w", err)
	}
	return meetings, total, nil
}

// JoinMeetingOutput carries everything a client needs to connect
type JoinMeetingOutput struct {
	Meeting     *entities.Meeting
	Participant *entities.Participant
	Token       string
	LivekitURL  string
}

// JoinMeeting adds a user to a meeting and returns a signed join token
func (s *MeetingService) JoinMeeting(ctx context.Context, meetingID, userID uuid.UUID, userName string) (*JoinMeetingOutput, error) {
	meeting, err := s.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	if meeting.IsEnded() {
		return nil, usecaseErrors.ErrMeetingEnded
	}
	if meeting.IsFull() {
		return nil, usecaseErrors.ErrMeetingFull
	}

	isInMeeting, err := s.participantRepo.IsUserInMeeting(ctx, meetingID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user participation: %w", err)
	}
	if isInMeeting {
		return nil, usecaseErrors.ErrAlreadyInMeeting
	}

	participant, err := s.participantRepo.FindByMeetingAndUser(ctx, meetingID, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	if participant == nil {
		uid := userID
		participant = &entities.Participant{
			MeetingID: meetingID,
			UserID:    &uid,
			Role:      entities.ParticipantRoleParticipant,
			Status:    entities.ParticipantStatusInvited,
		}
		if err := s.participantRepo.Create(ctx, participant); err != nil {
			return nil, fmt.Errorf("failed to create participant: %w", err)
		}
	}

	participant.Join()
	if err := s.participantRepo.Update(ctx, participant); err != nil {
		return nil, fmt.Errorf("failed to update participant: %w", err)
	}

	if err := s.meetingRepo.IncrementParticipantCount(ctx, meetingID); err != nil {
		return nil, fmt.Errorf("failed to increment participant count: %w", err)
	}

	// Start meeting on first join
	if meeting.Status == entities.MeetingStatusScheduled {
		meeting.Start()
		if err := s.meetingRepo.Update(ctx, meeting); err != nil {
			return nil, fmt.Errorf("failed to start meeting: %w", err)
		}
	}

	token, err := s.lkClient.GenerateToken(userID.String(), meeting.LivekitRoomName, userName, &livekit.TokenOptions{
		ValidFor:       24 * time.Hour,
		CanPublish:     true,
		CanSubscribe:   true,
		CanPublishData: true,
		RoomJoin:       true,
		RoomAdmin:      participant.IsHost(),
	})
	if err != nil {
		s.logger.Error("failed to generate join token", zap.String("meeting_id", meetingID.String()), zap.Error(err))
		return nil, usecaseErrors.ErrLivekitToken
	}

	return &JoinMeetingOutput{
		Meeting:     meeting,
		Participant: participant,
		Token:       token,
		LivekitURL:  s.cfg.LiveKit.URL,
	}, nil
}

// LeaveMeeting marks a user as having left a meeting
func (s *MeetingService) LeaveMeeting(ctx context.Context, meetingID, userID uuid.UUID) error {
	participant, err := s.participantRepo.FindByMeetingAndUser(ctx, meetingID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usecaseErrors.ErrNotParticipant
		}
		return fmt.Errorf("failed to get participant: %w", err)
	}

	participant.Leave()
	if err := s.participantRepo.Update(ctx, participant); err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}

	if err := s.meetingRepo.DecrementParticipantCount(ctx, meetingID); err != nil {
		return fmt.Errorf("failed to decrement participant count: %w", err)
	}

	activeCount, err := s.participantRepo.CountActiveByMeetingID(ctx, meetingID)
	if err != nil {
		return fmt.Errorf("failed to count active participants: %w", err)
	}

	if activeCount == 0 {
		if err := s.meetingRepo.EndMeeting(ctx, meetingID); err != nil {
			return fmt.Errorf("failed to end meeting: %w", err)
		}
	}

	return nil
}

// EndMeeting ends a meeting (host only)
func (s *MeetingService) EndMeeting(ctx context.Context, meetingID, userID uuid.UUID) error {
	meeting, err := s.GetMeeting(ctx, meetingID)
	if err != nil {
		return err
	}

	if meeting.HostID != userID {
		return usecaseErrors.ErrNotHost
	}

	meeting.End()
	if err := s.meetingRepo.Update(ctx, meeting); err != nil {
		return fmt.Errorf("failed to end meeting: %w", err)
	}

	// Stop any running recording before tearing the room down
	if active, err := s.recordingRepo.FindActiveByMeetingID(ctx, meetingID); err == nil && active != nil {
		if active.LivekitEgressID != nil {
			if err := s.lkClient.StopRecording(ctx, *active.LivekitEgressID); err != nil {
				s.logger.Warn("failed to stop recording on meeting end",
					zap.String("recording_id", active.ID.String()), zap.Error(err))
			}
		}
		active.MarkAsProcessing()
		if err := s.recordingRepo.Update(ctx, active); err != nil {
			s.logger.Warn("failed to update recording", zap.Error(err))
		}
	}

	if err := s.lkClient.DeleteRoom(ctx, meeting.LivekitRoomName); err != nil {
		s.logger.Warn("failed to delete livekit room",
			zap.String("room", meeting.LivekitRoomName), zap.Error(err))
	}

	// Mark all active participants as left
	participants, err := s.participantRepo.FindActiveByMeetingID(ctx, meetingID)
	if err != nil {
		return fmt.Errorf("failed to get active participants: %w", err)
	}
	for _, p := range participants {
		p.Leave()
		if err := s.participantRepo.Update(ctx, p); err != nil {
			return fmt.Errorf("failed to update participant: %w", err)
		}
	}

	return nil
}

// DeleteMeeting soft deletes an ended meeting (host only)
func (s *MeetingService) DeleteMeeting(ctx context.Context, meetingID, userID uuid.UUID) error {
	meeting, err := s.GetMeeting(ctx, meetingID)
	if err != nil {
		return err
	}

	if meeting.HostID != userID {
		return usecaseErrors.ErrNotHost
	}

	if !meeting.IsEnded() {
		if err := s.EndMeeting(ctx, meetingID, userID); err != nil {
			return err
		}
	}

	return s.meetingRepo.Delete(ctx, meetingID)
}

// GetParticipants retrieves all participants in a meeting
func (s *MeetingService) GetParticipants(ctx context.Context, meetingID uuid.UUID) ([]*entities.Participant, error) {
	participants, err := s.participantRepo.FindByMeetingID(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	return participants, nil
}

// StartRecording starts a room composite recording (host only)
func (s *MeetingService) StartRecording(ctx context.Context, meetingID, userID uuid.UUID) (*entities.Recording, error) {
	meeting, err := s.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	if meeting.HostID != userID {
		return nil, usecaseErrors.ErrNotHost
	}
	if !meeting.IsActive() {
		return nil, usecaseErrors.ErrMeetingEnded
	}

	active, err := s.recordingRepo.FindActiveByMeetingID(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to check active recording: %w", err)
	}
	if active != nil {
		return nil, usecaseErrors.ErrRecordingInProgress
	}

	objectKey := fmt.Sprintf("recordings/%s/%s.mp4", meetingID.String(), uuid.New().String())
	egressID, err := s.lkClient.StartRecording(ctx, meeting.LivekitRoomName, &livekit.RecordingOutput{
		Endpoint:  s.cfg.Storage.Endpoint,
		AccessKey: s.cfg.Storage.AccessKeyID,
		SecretKey: s.cfg.Storage.SecretAccessKey,
		Bucket:    s.cfg.Storage.BucketName,
		ObjectKey: objectKey,
		UseSSL:    s.cfg.Storage.UseSSL,
	})
	if err != nil {
		s.logger.Error("failed to start egress", zap.String("meeting_id", meetingID.String()), zap.Error(err))
		return nil, usecaseErrors.ErrLivekitRoom
	}

	recording := &entities.Recording{
		MeetingID:       meetingID,
		StartedBy:       &userID,
		LivekitEgressID: &egressID,
		Status:          entities.RecordingStatusRecording,
		ObjectKey:       &objectKey,
		FileFormat:      "mp4",
		StartedAt:       time.Now(),
	}
	if err := s.recordingRepo.Create(ctx, recording); err != nil {
		return nil, fmt.Errorf("failed to create recording: %w", err)
	}

	s.logger.Info("recording started",
		zap.String("meeting_id", meetingID.String()),
		zap.String("egress_id", egressID))

	return recording, nil
}

// StopRecording stops a recording (host only)
func (s *MeetingService) StopRecording(ctx context.Context, recordingID, userID uuid.UUID) (*entities.Recording, error) {
	recording, err := s.recordingRepo.FindByID(ctx, recordingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recording: %w", err)
	}
	if recording == nil {
		return nil, usecaseErrors.ErrRecordingNotFound
	}

	meeting, err := s.GetMeeting(ctx, recording.MeetingID)
	if err != nil {
		return nil, err
	}
	if meeting.HostID != userID {
		return nil, usecaseErrors.ErrNotHost
	}

	if recording.Status != entities.RecordingStatusRecording {
		return nil, usecaseErrors.ErrRecordingNotStarted
	}

	if recording.LivekitEgressID != nil {
		if err := s.lkClient.StopRecording(ctx, *recording.LivekitEgressID); err != nil {
			s.logger.Error("failed to stop egress",
				zap.String("recording_id", recordingID.String()), zap.Error(err))
			return nil, usecaseErrors.ErrLivekitRoom
		}
	}

	recording.MarkAsProcessing()
	if err := s.recordingRepo.Update(ctx, recording); err != nil {
		return nil, fmt.Errorf("failed to update recording: %w", err)
	}

	return recording, nil
}

// CompleteRecording finalizes a recording after the egress worker reports
// the upload finished. Called from the LiveKit webhook handler.
func (s *MeetingService) CompleteRecording(ctx context.Context, egressID string, fileSize int64, durationSeconds int) (*entities.Recording, error) {
	recording, err := s.recordingRepo.FindByEgressID(ctx, egressID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recording: %w", err)
	}
	if recording == nil {
		return nil, usecaseErrors.ErrRecordingNotFound
	}

	recording.MarkAsCompleted()
	if fileSize > 0 {
		recording.FileSize = &fileSize
	}
	if durationSeconds > 0 {
		recording.Duration = &durationSeconds
	}
	if err := s.recordingRepo.Update(ctx, recording); err != nil {
		return nil, fmt.Errorf("failed to update recording: %w", err)
	}

	s.logger.Info("recording completed",
		zap.String("recording_id", recording.ID.String()),
		zap.String("egress_id", egressID))

	return recording, nil
}

// FailRecording marks a recording as failed (egress error webhook)
func (s *MeetingService) FailRecording(ctx context.Context, egressID, reason string) error {
	recording, err := s.recordingRepo.FindByEgressID(ctx, egressID)
	if err != nil {
		return fmt.Errorf("failed to get recording: %w", err)
	}
	if recording == nil {
		return usecaseErrors.ErrRecordingNotFound
	}

	recording.MarkAsFailed(reason)
	return s.recordingRepo.Update(ctx, recording)
}

// GetRecordings lists the recordings of a meeting
func (s *MeetingService) GetRecordings(ctx context.Context, meetingID uuid.UUID) ([]*entities.Recording, error) {
	recordings, err := s.recordingRepo.FindByMeetingID(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recordings: %w", err)
	}
	return recordings, nil
}

// HandleParticipantLeft reconciles state from a LiveKit webhook event
func (s *MeetingService) HandleParticipantLeft(ctx context.Context, livekitRoomName, identity string) error {
	meeting, err := s.GetMeetingByLivekitName(ctx, livekitRoomName)
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(identity)
	if err != nil {
		// Guests use non-UUID identities; nothing to reconcile
		return nil
	}

	return s.LeaveMeeting(ctx, meeting.ID, userID)
}

// HandleRoomFinished ends the meeting when LiveKit reports the room closed
func (s *MeetingService) HandleRoomFinished(ctx context.Context, livekitRoomName string) error {
	meeting, err := s.GetMeetingByLivekitName(ctx, livekitRoomName)
	if err != nil {
		return err
	}

	if meeting.IsEnded() {
		return nil
	}

	meeting.End()
	if err := s.meetingRepo.Update(ctx, meeting); err != nil {
		return fmt.Errorf("failed to end meeting: %w", err)
	}

	participants, err := s.participantRepo.FindActiveByMeetingID(ctx, meeting.ID)
	if err != nil {
		return fmt.Errorf("failed to get active participants: %w", err)
	}
	for _, p := range participants {
		p.Leave()
		if err := s.participantRepo.Update(ctx, p); err != nil {
			return fmt.Errorf("failed to update participant: %w", err)
		}
	}

	return nil
}
