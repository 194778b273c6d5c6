package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/call-manager-team/call-manager/internal/domain/entities"
	"github.com/call-manager-team/call-manager/internal/domain/repositories"
)

// analysisRepository implements the AnalysisRepository interface
type analysisRepository struct {
	db *gorm.DB
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *gorm.DB) repositories.AnalysisRepository {
	return &analysisRepository{db: db}
}

// Create creates a new analysis job
func (r *analysisRepository) Create(ctx context.Context, analysis *entities.Analysis) error {
	if analysis == nil {
		return errors.New("analysis cannot be nil")
	}
	return r.db.WithContext(ctx).Create(analysis).Error
}

// FindByID retrieves an analysis by ID
func (r *analysisRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Analysis, error) {
	var analysis entities.Analysis
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&analysis).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &analysis, nil
}

// FindByExternalJobID retrieves an analysis by the annotation service's job ID
func (r *analysisRepository) FindByExternalJobID(ctx context.Context, externalJobID string) (*entities.Analysis, error) {
	var analysis entities.Analysis
	if err := r.db.WithContext(ctx).
		Where("external_job_id = ?", externalJobID).
		First(&analysis).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &analysis, nil
}

// FindByRecordingID retrieves the analyses of a recording
func (r *analysisRepository) FindByRecordingID(ctx context.Context, recordingID uuid.UUID) ([]*entities.Analysis, error) {
	var analyses []*entities.Analysis
	if err := r.db.WithContext(ctx).
		Where("recording_id = ?", recordingID).
		Order("created_at DESC").
		Find(&analyses).Error; err != nil {
		return nil, err
	}
	return analyses, nil
}

// FindByUserID retrieves a user's analyses, newest first
func (r *analysisRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Analysis, error) {
	var analyses []*entities.Analysis
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&analyses).Error; err != nil {
		return nil, err
	}
	return analyses, nil
}

// FindPending retrieves submitted analyses awaiting results, oldest first
func (r *analysisRepository) FindPending(ctx context.Context, limit int) ([]*entities.Analysis, error) {
	var analyses []*entities.Analysis
	query := r.db.WithContext(ctx).
		Where("status = ?", entities.AnalysisStatusSubmitted).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&analyses).Error; err != nil {
		return nil, err
	}
	return analyses, nil
}

// ClaimForProcessing atomically transitions a submitted analysis to
// processing. Returns false when another worker already claimed it.
func (r *analysisRepository) ClaimForProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Analysis{}).
		Where("id = ? AND status = ?", id, entities.AnalysisStatusSubmitted).
		Updates(map[string]interface{}{
			"status":     entities.AnalysisStatusProcessing,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Update updates an existing analysis
func (r *analysisRepository) Update(ctx context.Context, analysis *entities.Analysis) error {
	if analysis == nil {
		return errors.New("analysis cannot be nil")
	}
	return r.db.WithContext(ctx).Save(analysis).Error
}
