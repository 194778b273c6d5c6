package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/call-manager-team/call-manager/internal/domain/entities"
	"github.com/call-manager-team/call-manager/internal/domain/repositories"
)

// participantRepository implements the ParticipantRepository interface
type participantRepository struct {
	db *gorm.DB
}

// NewParticipantRepository creates a new participant repository
func NewParticipantRepository(db *gorm.DB) repositories.ParticipantRepository {
	return &participantRepository{db: db}
}

// Create creates a new participant record
func (r *participantRepository) Create(ctx context.Context, participant *entities.Participant) error {
	return r.db.WithContext(ctx).Create(participant).Error
}

// FindByID retrieves a participant by ID
func (r *participantRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Participant, error) {
	var participant entities.Participant
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Meeting").
		Where("id = ?", id).
		First(&participant).Error

	if err != nil {
		return nil, err
	}
	return &participant, nil
}

// FindByMeetingAndUser retrieves a participant by meeting and user ID
func (r *participantRepository) FindByMeetingAndUser(ctx context.Context, meetingID, userID uuid.UUID) (*entities.Participant, error) {
	var participant entities.Participant
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Meeting").
		Where("meeting_id = ? AND user_id = ?", meetingID, userID).
		First(&participant).Error

	if err != nil {
		return nil, err
	}
	return &participant, nil
}

// Update updates an existing participant
func (r *participantRepository) Update(ctx context.Context, participant *entities.Participant) error {
	return r.db.WithContext(ctx).Save(participant).Error
}

// FindByMeetingID retrieves all participants in a meeting
func (r *participantRepository) FindByMeetingID(ctx context.Context, meetingID uuid.UUID) ([]*entities.Participant, error) {
	var participants []*entities.Participant
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("meeting_id = ?", meetingID).
		Order("joined_at ASC").
		Find(&participants).Error
	return participants, err
}

// FindActiveByMeetingID retrieves all active participants in a meeting
func (r *participantRepository) FindActiveByMeetingID(ctx context.Context, meetingID uuid.UUID) ([]*entities.Participant, error) {
	var participants []*entities.Participant
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("meeting_id = ? AND status = ? AND left_at IS NULL", meetingID, entities.ParticipantStatusJoined).
		Order("joined_at ASC").
		Find(&participants).Error
	return participants, err
}

// CountActiveByMeetingID counts active participants in a meeting
func (r *participantRepository) CountActiveByMeetingID(ctx context.Context, meetingID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Participant{}).
		Where("meeting_id = ? AND status = ? AND left_at IS NULL", meetingID, entities.ParticipantStatusJoined).
		Count(&count).Error
	return count, err
}

// IsUserInMeeting checks if a user is currently in a meeting
func (r *participantRepository) IsUserInMeeting(ctx context.Context, meetingID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.Participant{}).
		Where("meeting_id = ? AND user_id = ? AND status = ? AND left_at IS NULL", meetingID, userID, entities.ParticipantStatusJoined).
		Count(&count).Error
	return count > 0, err
}

// MarkAsJoined marks a participant as joined
func (r *participantRepository) MarkAsJoined(ctx context.Context, participantID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entities.Participant{}).
		Where("id = ?", participantID).
		Updates(map[string]interface{}{
			"status":    entities.ParticipantStatusJoined,
			"joined_at": gorm.Expr("NOW()"),
		}).
		Error
}

// MarkAsLeft marks a participant as left
func (r *participantRepository) MarkAsLeft(ctx context.Context, participantID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entities.Participant{}).
		Where("id = ?", participantID).
		Updates(map[string]interface{}{
			"status":  entities.ParticipantStatusLeft,
			"left_at": gorm.Expr("NOW()"),
		}).
		Error
}

// Remove marks a participant as removed
func (r *participantRepository) Remove(ctx context.Context, participantID, removedBy uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Participant{}).
		Where("id = ?", participantID).
		Updates(map[string]interface{}{
			"status":         entities.ParticipantStatusRemoved,
			"is_removed":     true,
			"removed_by":     removedBy,
			"removal_reason": reason,
			"left_at":        gorm.Expr("NOW()"),
		}).
		Error
}
