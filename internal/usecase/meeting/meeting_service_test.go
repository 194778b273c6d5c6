package meeting

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/call-manager-team/call-manager/internal/domain/entities"
	"github.com/call-manager-team/call-manager/internal/domain/repositories"
	"github.com/call-manager-team/call-manager/internal/infrastructure/external/livekit"
	usecaseErrors "github.com/call-manager-team/call-manager/internal/usecase/errors"
	"github.com/call-manager-team/call-manager/pkg/config"
)

type fakeMeetingRepo struct {
	byID map[uuid.UUID]*entities.Meeting
}

func newFakeMeetingRepo() *fakeMeetingRepo {
	return &fakeMeetingRepo{byID: make(map[uuid.UUID]*entities.Meeting)}
}

func (r *fakeMeetingRepo) Create(_ context.Context, m *entities.Meeting) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.byID[m.ID] = m
	return nil
}

func (r *fakeMeetingRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Meeting, error) {
	m, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (r *fakeMeetingRepo) FindBySlug(_ context.Context, slug string) (*entities.Meeting, error) {
	for _, m := range r.byID {
		if m.Slug != nil && *m.Slug == slug {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMeetingRepo) FindByLivekitName(_ context.Context, livekitName string) (*entities.Meeting, error) {
	for _, m := range r.byID {
		if m.LivekitRoomName == livekitName {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMeetingRepo) Update(_ context.Context, m *entities.Meeting) error {
	r.byID[m.ID] = m
	return nil
}

func (r *fakeMeetingRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

func (r *fakeMeetingRepo) List(_ context.Context, _ repositories.MeetingFilters) ([]*entities.Meeting, int64, error) {
	var out []*entities.Meeting
	for _, m := range r.byID {
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *fakeMeetingRepo) FindByHostID(_ context.Context, hostID uuid.UUID, _, _ int) ([]*entities.Meeting, error) {
	var out []*entities.Meeting
	for _, m := range r.byID {
		if m.HostID == hostID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMeetingRepo) FindActiveMeetings(_ context.Context) ([]*entities.Meeting, error) {
	var out []*entities.Meeting
	for _, m := range r.byID {
		if m.IsActive() {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMeetingRepo) IncrementParticipantCount(_ context.Context, meetingID uuid.UUID) error {
	m, ok := r.byID[meetingID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.IncrementParticipants()
	return nil
}

func (r *fakeMeetingRepo) DecrementParticipantCount(_ context.Context, meetingID uuid.UUID) error {
	m, ok := r.byID[meetingID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.DecrementParticipants()
	return nil
}

func (r *fakeMeetingRepo) UpdateStatus(_ context.Context, meetingID uuid.UUID, status entities.MeetingStatus) error {
	m, ok := r.byID[meetingID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.Status = status
	return nil
}

func (r *fakeMeetingRepo) EndMeeting(_ context.Context, meetingID uuid.UUID) error {
	m, ok := r.byID[meetingID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.End()
	return nil
}

type fakeParticipantRepo struct {
	byID map[uuid.UUID]*entities.Participant
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{byID: make(map[uuid.UUID]*entities.Participant)}
}

func (r *fakeParticipantRepo) Create(_ context.Context, p *entities.Participant) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.byID[p.ID] = p
	return nil
}

func (r *fakeParticipantRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Participant, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *fakeParticipantRepo) FindByMeetingAndUser(_ context.Context, meetingID, userID uuid.UUID) (*entities.Participant, error) {
	for _, p := range r.byID {
		if p.MeetingID == meetingID && p.UserID != nil && *p.UserID == userID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeParticipantRepo) Update(_ context.Context, p *entities.Participant) error {
	r.byID[p.ID] = p
	return nil
}

func (r *fakeParticipantRepo) FindByMeetingID(_ context.Context, meetingID uuid.UUID) ([]*entities.Participant, error) {
	var out []*entities.Participant
	for _, p := range r.byID {
		if p.MeetingID == meetingID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeParticipantRepo) FindActiveByMeetingID(_ context.Context, meetingID uuid.UUID) ([]*entities.Participant, error) {
	var out []*entities.Participant
	for _, p := range r.byID {
		if p.MeetingID == meetingID && p.IsActive() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeParticipantRepo) CountActiveByMeetingID(_ context.Context, meetingID uuid.UUID) (int64, error) {
	var count int64
	for _, p := range r.byID {
		if p.MeetingID == meetingID && p.IsActive() {
			count++
		}
	}
	return count, nil
}

func (r *fakeParticipantRepo) IsUserInMeeting(_ context.Context, meetingID, userID uuid.UUID) (bool, error) {
	for _, p := range r.byID {
		if p.MeetingID == meetingID && p.UserID != nil && *p.UserID == userID && p.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeParticipantRepo) MarkAsJoined(_ context.Context, participantID uuid.UUID) error {
	p, ok := r.byID[participantID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Join()
	return nil
}

func (r *fakeParticipantRepo) MarkAsLeft(_ context.Context, participantID uuid.UUID) error {
	p, ok := r.byID[participantID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Leave()
	return nil
}

func (r *fakeParticipantRepo) Remove(_ context.Context, participantID, removedBy uuid.UUID, reason string) error {
	p, ok := r.byID[participantID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Remove(removedBy, reason)
	return nil
}

type fakeRecordingRepo struct {
	byID map[uuid.UUID]*entities.Recording
}

func newFakeRecordingRepo() *fakeRecordingRepo {
	return &fakeRecordingRepo{byID: make(map[uuid.UUID]*entities.Recording)}
}

func (r *fakeRecordingRepo) Create(_ context.Context, rec *entities.Recording) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *fakeRecordingRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Recording, error) {
	return r.byID[id], nil
}

func (r *fakeRecordingRepo) FindByEgressID(_ context.Context, egressID string) (*entities.Recording, error) {
	for _, rec := range r.byID {
		if rec.LivekitEgressID != nil && *rec.LivekitEgressID == egressID {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *fakeRecordingRepo) FindByMeetingID(_ context.Context, meetingID uuid.UUID) ([]*entities.Recording, error) {
	var out []*entities.Recording
	for _, rec := range r.byID {
		if rec.MeetingID == meetingID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeRecordingRepo) FindActiveByMeetingID(_ context.Context, meetingID uuid.UUID) (*entities.Recording, error) {
	for _, rec := range r.byID {
		if rec.MeetingID == meetingID && rec.Status == entities.RecordingStatusRecording {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *fakeRecordingRepo) Update(_ context.Context, rec *entities.Recording) error {
	r.byID[rec.ID] = rec
	return nil
}

func (r *fakeRecordingRepo) UpdateStatus(_ context.Context, recordingID uuid.UUID, status entities.RecordingStatus) error {
	rec, ok := r.byID[recordingID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rec.Status = status
	return nil
}

func newTestService() (*MeetingService, *fakeMeetingRepo, *fakeParticipantRepo, *fakeRecordingRepo) {
	meetingRepo := newFakeMeetingRepo()
	participantRepo := newFakeParticipantRepo()
	recordingRepo := newFakeRecordingRepo()
	cfg := &config.Config{
		LiveKit: config.LiveKitConfig{URL: "wss://livekit.test"},
		Storage: config.StorageConfig{
			Endpoint:   "minio.test:9000",
			BucketName: "recordings",
		},
	}
	lkClient := livekit.NewClient(cfg.LiveKit.URL, "test-key", "test-secret", true)
	svc := NewMeetingService(meetingRepo, participantRepo, recordingRepo, lkClient, cfg, zap.NewNop())
	return svc, meetingRepo, participantRepo, recordingRepo
}

func TestCreateMeetingValidatesMaxParticipants(t *testing.T) {
	svc, _, _, _ := newTestService()

	for _, max := range []int{0, 1, 101} {
		_, err := svc.CreateMeeting(context.Background(), CreateMeetingInput{
			Name:            "standup",
			HostID:          uuid.New(),
			MaxParticipants: max,
		})
		if !errors.Is(err, usecaseErrors.ErrInvalidMaxParticipants) {
			t.Fatalf("max=%d: expected ErrInvalidMaxParticipants, got %v", max, err)
		}
	}
}

func TestCreateMeetingMergesSettings(t *testing.T) {
	svc, _, participantRepo, _ := newTestService()
	hostID := uuid.New()

	meeting, err := svc.CreateMeeting(context.Background(), CreateMeetingInput{
		Name:            "standup",
		HostID:          hostID,
		MaxParticipants: 5,
		Settings:        map[string]interface{}{"mute_on_join": true},
	})
	if err != nil {
		t.Fatalf("CreateMeeting: %v", err)
	}
	if meeting.Type != entities.MeetingTypePublic {
		t.Fatalf("expected default public type, got %s", meeting.Type)
	}
	if meeting.LivekitRoomName == "" {
		t.Fatal("expected a livekit room name")
	}

	var settings map[string]interface{}
	if err := json.Unmarshal(meeting.Settings, &settings); err != nil {
		t.Fatalf("unmarshal settings: %v", err)
	}
	if settings["mute_on_join"] != true {
		t.Fatal("expected mute_on_join override to be kept")
	}
	if settings["enable_chat"] != true {
		t.Fatal("expected default enable_chat to be filled in")
	}

	// Host must be registered as the first participant
	p, err := participantRepo.FindByMeetingAndUser(context.Background(), meeting.ID, hostID)
	if err != nil {
		t.Fatalf("host participant missing: %v", err)
	}
	if p.Role != entities.ParticipantRoleHost || !p.CanRecord {
		t.Fatalf("host participant has role %s, can_record %v", p.Role, p.CanRecord)
	}
}

func TestJoinMeetingLifecycle(t *testing.T) {
	svc, meetingRepo, _, _ := newTestService()
	hostID := uuid.New()

	meeting, err := svc.CreateMeeting(context.Background(), CreateMeetingInput{
		Name:            "standup",
		HostID:          hostID,
		MaxParticipants: 2,
	})
	if err != nil {
		t.Fatalf("CreateMeeting: %v", err)
	}

	out, err := svc.JoinMeeting(context.Background(), meeting.ID, hostID, "Host")
	if err != nil {
		t.Fatalf("JoinMeeting host: %v", err)
	}
	if out.Token == "" {
		t.Fatal("expected a join token")
	}
	if out.LivekitURL != "wss://livekit.test" {
		t.Fatalf("unexpected livekit url %q", out.LivekitURL)
	}
	if out.Meeting.Status != entities.MeetingStatusActive {
		t.Fatalf("expected meeting to start on first join, got %s", out.Meeting.Status)
	}

	// Rejoining while already in the meeting is rejected
	if _, err := svc.JoinMeeting(context.Background(), meeting.ID, hostID, "Host"); !errors.Is(err, usecaseErrors.ErrAlreadyInMeeting) {
		t.Fatalf("expected ErrAlreadyInMeeting, got %v", err)
	}

	// Fill the room, then the next user bounces
	guestID := uuid.New()
	if _, err := svc.JoinMeeting(context.Background(), meeting.ID, guestID, "Guest"); err != nil {
		t.Fatalf("JoinMeeting guest: %v", err)
	}
	if _, err := svc.JoinMeeting(context.Background(), meeting.ID, uuid.New(), "Late"); !errors.Is(err, usecaseErrors.ErrMeetingFull) {
		t.Fatalf("expected ErrMeetingFull, got %v", err)
	}

	// Last participant leaving ends the meeting
	if err := svc.LeaveMeeting(context.Background(), meeting.ID, guestID); err != nil {
		t.Fatalf("LeaveMeeting guest: %v", err)
	}
	if err := svc.LeaveMeeting(context.Background(), meeting.ID, hostID); err != nil {
		t.Fatalf("LeaveMeeting host: %v", err)
	}
	stored, err := meetingRepo.FindByID(context.Background(), meeting.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !stored.IsEnded() {
		t.Fatalf("expected meeting ended after last leave, got %s", stored.Status)
	}

	if _, err := svc.JoinMeeting(context.Background(), meeting.ID, uuid.New(), "Straggler"); !errors.Is(err, usecaseErrors.ErrMeetingEnded) {
		t.Fatalf("expected ErrMeetingEnded, got %v", err)
	}
}

func TestJoinMeetingNotFound(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.JoinMeeting(context.Background(), uuid.New(), uuid.New(), "Nobody")
	if !errors.Is(err, usecaseErrors.ErrMeetingNotFound) {
		t.Fatalf("expected ErrMeetingNotFound, got %v", err)
	}
}

func TestEndMeetingHostOnly(t *testing.T) {
	svc, _, _, _ := newTestService()
	hostID := uuid.New()

	meeting, err := svc.CreateMeeting(context.Background(), CreateMeetingInput{
		Name:            "standup",
		HostID:          hostID,
		MaxParticipants: 5,
	})
	if err != nil {
		t.Fatalf("CreateMeeting: %v", err)
	}

	if err := svc.EndMeeting(context.Background(), meeting.ID, uuid.New()); !errors.Is(err, usecaseErrors.ErrNotHost) {
		t.Fatalf("expected ErrNotHost, got %v", err)
	}
	if err := svc.EndMeeting(context.Background(), meeting.ID, hostID); err != nil {
		t.Fatalf("EndMeeting host: %v", err)
	}
	if !meeting.IsEnded() {
		t.Fatalf("expected meeting ended, got %s", meeting.Status)
	}
}

func TestRecordingLifecycle(t *testing.T) {
	svc, _, _, _ := newTestService()
	hostID := uuid.New()

	meeting, err := svc.CreateMeeting(context.Background(), CreateMeetingInput{
		Name:            "standup",
		HostID:          hostID,
		MaxParticipants: 5,
	})
	if err != nil {
		t.Fatalf("CreateMeeting: %v", err)
	}
	if _, err := svc.JoinMeeting(context.Background(), meeting.ID, hostID, "Host"); err != nil {
		t.Fatalf("JoinMeeting: %v", err)
	}

	if _, err := svc.StartRecording(context.Background(), meeting.ID, uuid.New()); !errors.Is(err, usecaseErrors.ErrNotHost) {
		t.Fatalf("expected ErrNotHost, got %v", err)
	}

	recording, err := svc.StartRecording(context.Background(), meeting.ID, hostID)
	if err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	if recording.LivekitEgressID == nil || *recording.LivekitEgressID == "" {
		t.Fatal("expected an egress id")
	}
	if recording.ObjectKey == nil {
		t.Fatal("expected a storage object key")
	}

	// Only one recording at a time
	if _, err := svc.StartRecording(context.Background(), meeting.ID, hostID); !errors.Is(err, usecaseErrors.ErrRecordingInProgress) {
		t.Fatalf("expected ErrRecordingInProgress, got %v", err)
	}

	stopped, err := svc.StopRecording(context.Background(), recording.ID, hostID)
	if err != nil {
		t.Fatalf("StopRecording: %v", err)
	}
	if stopped.Status != entities.RecordingStatusProcessing {
		t.Fatalf("expected processing after stop, got %s", stopped.Status)
	}

	// Stopping again is rejected
	if _, err := svc.StopRecording(context.Background(), recording.ID, hostID); !errors.Is(err, usecaseErrors.ErrRecordingNotStarted) {
		t.Fatalf("expected ErrRecordingNotStarted, got %v", err)
	}

	// Egress webhook finalizes the file
	completed, err := svc.CompleteRecording(context.Background(), *recording.LivekitEgressID, 2048, 90)
	if err != nil {
		t.Fatalf("CompleteRecording: %v", err)
	}
	if !completed.IsCompleted() {
		t.Fatalf("expected completed, got %s", completed.Status)
	}
	if completed.FileSize == nil || *completed.FileSize != 2048 {
		t.Fatalf("file size not recorded: %v", completed.FileSize)
	}
	if completed.Duration == nil || *completed.Duration != 90 {
		t.Fatalf("duration not recorded: %v", completed.Duration)
	}
}

func TestFailRecordingUnknownEgress(t *testing.T) {
	svc, _, _, _ := newTestService()

	err := svc.FailRecording(context.Background(), "EG_missing", "upload failed")
	if !errors.Is(err, usecaseErrors.ErrRecordingNotFound) {
		t.Fatalf("expected ErrRecordingNotFound, got %v", err)
	}
}

func TestHandleRoomFinished(t *testing.T) {
	svc, meetingRepo, participantRepo, _ := newTestService()
	hostID := uuid.New()

	meeting, err := svc.CreateMeeting(context.Background(), CreateMeetingInput{
		Name:            "standup",
		HostID:          hostID,
		MaxParticipants: 5,
	})
	if err != nil {
		t.Fatalf("CreateMeeting: %v", err)
	}
	if _, err := svc.JoinMeeting(context.Background(), meeting.ID, hostID, "Host"); err != nil {
		t.Fatalf("JoinMeeting: %v", err)
	}

	if err := svc.HandleRoomFinished(context.Background(), meeting.LivekitRoomName); err != nil {
		t.Fatalf("HandleRoomFinished: %v", err)
	}

	stored, err := meetingRepo.FindByID(context.Background(), meeting.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !stored.IsEnded() {
		t.Fatalf("expected meeting ended, got %s", stored.Status)
	}
	active, err := participantRepo.FindActiveByMeetingID(context.Background(), meeting.ID)
	if err != nil {
		t.Fatalf("FindActiveByMeetingID: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active participants, got %d", len(active))
	}

	// Idempotent on replayed webhooks
	if err := svc.HandleRoomFinished(context.Background(), meeting.LivekitRoomName); err != nil {
		t.Fatalf("HandleRoomFinished replay: %v", err)
	}
}

func TestHandleParticipantLeftIgnoresNonUUIDIdentity(t *testing.T) {
	svc, _, _, _ := newTestService()
	hostID := uuid.New()

	meeting, err := svc.CreateMeeting(context.Background(), CreateMeetingInput{
		Name:            "standup",
		HostID:          hostID,
		MaxParticipants: 5,
	})
	if err != nil {
		t.Fatalf("CreateMeeting: %v", err)
	}

	if err := svc.HandleParticipantLeft(context.Background(), meeting.LivekitRoomName, "EG_egress_worker"); err != nil {
		t.Fatalf("expected non-uuid identity to be ignored, got %v", err)
	}
}
