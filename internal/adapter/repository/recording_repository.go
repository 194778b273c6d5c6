package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/call-manager-team/call-manager/internal/domain/entities"
	"github.com/call-manager-team/call-manager/internal/domain/repositories"
)

// recordingRepository implements the RecordingRepository interface
type recordingRepository struct {
	db *gorm.DB
}

// NewRecordingRepository creates a new recording repository
func NewRecordingRepository(db *gorm.DB) repositories.RecordingRepository {
	return &recordingRepository{db: db}
}

// Create creates a new recording
func (r *recordingRepository) Create(ctx context.Context, recording *entities.Recording) error {
	if recording == nil {
		return errors.New("recording cannot be nil")
	}
	return r.db.WithContext(ctx).Create(recording).Error
}

// FindByID retrieves a recording by ID
func (r *recordingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Recording, error) {
	var recording entities.Recording
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&recording).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &recording, nil
}

// FindByEgressID retrieves a recording by LiveKit egress ID
func (r *recordingRepository) FindByEgressID(ctx context.Context, egressID string) (*entities.Recording, error) {
	var recording entities.Recording
	if err := r.db.WithContext(ctx).
		Where("livekit_egress_id = ?", egressID).
		First(&recording).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &recording, nil
}

// FindByMeetingID retrieves all recordings for a meeting
func (r *recordingRepository) FindByMeetingID(ctx context.Context, meetingID uuid.UUID) ([]*entities.Recording, error) {
	var recordings []*entities.Recording
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("started_at DESC").
		Find(&recordings).Error; err != nil {
		return nil, err
	}
	return recordings, nil
}

// FindActiveByMeetingID retrieves the in-progress recording of a meeting, if any
func (r *recordingRepository) FindActiveByMeetingID(ctx context.Context, meetingID uuid.UUID) (*entities.Recording, error) {
	var recording entities.Recording
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ? AND status = ?", meetingID, entities.RecordingStatusRecording).
		Order("started_at DESC").
		First(&recording).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &recording, nil
}

// Update updates a recording
func (r *recordingRepository) Update(ctx context.Context, recording *entities.Recording) error {
	if recording == nil {
		return errors.New("recording cannot be nil")
	}
	return r.db.WithContext(ctx).Save(recording).Error
}

// UpdateStatus updates recording status
func (r *recordingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.RecordingStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.Recording{}).
		Where("id = ?", id).
		Update("status", status).Error
}
