package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/call-manager-team/call-manager/internal/domain/entities"
)

// AnalysisRepository defines persistence operations for analysis jobs
// and their ingested annotation documents.
type AnalysisRepository interface {
	// Create creates a new analysis job
	Create(ctx context.Context, analysis *entities.Analysis) error

	// FindByID retrieves an analysis by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Analysis, error)

	// FindByExternalJobID retrieves an analysis by the annotation
	// service's job ID
	FindByExternalJobID(ctx context.Context, externalJobID string) (*entities.Analysis, error)

	// FindByRecordingID retrieves the analyses of a recording
	FindByRecordingID(ctx context.Context, recordingID uuid.UUID) ([]*entities.Analysis, error)

	// FindByUserID retrieves a user's analyses, newest first
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Analysis, error)

	// FindPending retrieves submitted analyses awaiting results
	FindPending(ctx context.Context, limit int) ([]*entities.Analysis, error)

	// ClaimForProcessing atomically moves a submitted analysis to
	// processing; false means another worker claimed it first
	ClaimForProcessing(ctx context.Context, id uuid.UUID) (bool, error)

	// Update updates an existing analysis
	Update(ctx context.Context, analysis *entities.Analysis) error
}
