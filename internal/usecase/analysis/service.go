package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/call-manager-team/call-manager/internal/annotation"
	"github.com/call-manager-team/call-manager/internal/domain/entities"
	"github.com/call-manager-team/call-manager/internal/infrastructure/storage"
	"github.com/call-manager-team/call-manager/pkg/videointel"
)

// ObjectStore is the slice of object storage the analysis pipeline
// needs: size checks before submission, archiving raw annotation
// payloads, and presigning video URLs for external services.
type ObjectStore interface {
	StatFile(ctx context.Context, objectName string) (*storage.ObjectInfo, error)
	UploadBytes(ctx context.Context, objectName string, content []byte, contentType string) error
	GetFileURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// DocumentCache caches normalized annotation documents between reads.
type DocumentCache interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	SetBytes(ctx context.Context, key string, value []byte, expiration time.Duration) error
	DeleteKeys(ctx context.Context, keys ...string) error
}

// AnnotationJobs is the external video-intelligence service surface
// used by the pipeline.
type AnnotationJobs interface {
	SubmitVideo(ctx context.Context, inputURI, webhookURL string) (string, error)
	GetJob(ctx context.Context, jobID string) (*videointel.JobResponse, error)
	FetchResult(ctx context.Context, jobID string) ([]byte, error)
}

// RegisterAnalysisInput carries what the caller knows about the video
// being registered. Width, height and duration are optional until the
// client's metadata resolves; a zero value simply disables the overlay
// until they arrive.
type RegisterAnalysisInput struct {
	UserID         uuid.UUID
	VideoObjectKey string
	RecordingID    *uuid.UUID
	VideoWidth     int
	VideoHeight    int
	VideoDuration  float64
}

// Service orchestrates the annotation pipeline: registering videos,
// ingesting annotation documents, and answering timeline, view and
// overlay queries against the normalized document.
type Service interface {
	// RegisterAnalysis registers a stored video and submits it to the
	// annotation service
	RegisterAnalysis(ctx context.Context, input RegisterAnalysisInput) (*entities.Analysis, error)

	// StartTranscription creates an analysis whose document is
	// synthesized from a speech transcript of a completed recording
	StartTranscription(ctx context.Context, userID, recordingID uuid.UUID) (*entities.Analysis, error)

	// IngestAnnotations ingests a directly uploaded annotation JSON
	// payload into an existing analysis
	IngestAnnotations(ctx context.Context, userID, analysisID uuid.UUID, payload []byte) (*entities.Analysis, error)

	// ProcessJobUpdate reconciles an external job status change, fetching
	// and ingesting the result document on success
	ProcessJobUpdate(ctx context.Context, externalJobID, status, errMsg string) error

	// GetAnalysis retrieves an analysis owned by the user
	GetAnalysis(ctx context.Context, userID, analysisID uuid.UUID) (*entities.Analysis, error)

	// ListAnalyses retrieves the user's analyses, newest first
	ListAnalyses(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Analysis, error)

	// GetDocument retrieves the normalized annotation document
	GetDocument(ctx context.Context, userID, analysisID uuid.UUID) (*annotation.Document, error)

	// Views renders one kind's entities as a filtered, seekable list
	Views(ctx context.Context, userID, analysisID uuid.UUID, kind string, filter annotation.ViewFilter) ([]annotation.ViewItem, error)

	// Timeline coalesces each detected kind into summary display segments
	Timeline(ctx context.Context, userID, analysisID uuid.UUID, strategy string) (map[annotation.Kind][]annotation.DisplaySegment, error)

	// Overlay computes the boxes of one kind at an arbitrary playhead
	Overlay(ctx context.Context, userID, analysisID uuid.UUID, seconds float64, kind, mode string) ([]annotation.OverlayBox, error)

	// StartWorkerPool starts background workers polling external jobs
	StartWorkerPool(ctx context.Context, workerCount int) error

	// StopWorkerPool gracefully stops the worker pool
	StopWorkerPool() error
}
