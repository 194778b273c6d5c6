package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AnalysisStatus represents the status of a video analysis job
type AnalysisStatus string

const (
	AnalysisStatusQueued     AnalysisStatus = "queued"     // Waiting for annotations
	AnalysisStatusSubmitted  AnalysisStatus = "submitted"  // Submitted to the annotation service
	AnalysisStatusProcessing AnalysisStatus = "processing" // Normalizing an annotation document
	AnalysisStatusCompleted  AnalysisStatus = "completed"  // Document ingested and ready
	AnalysisStatusFailed     AnalysisStatus = "failed"
)

// AnalysisSource tells where the annotation document comes from
type AnalysisSource string

const (
	AnalysisSourceUpload        AnalysisSource = "upload"        // JSON uploaded directly
	AnalysisSourceWebhook       AnalysisSource = "webhook"       // Delivered by the annotation service
	AnalysisSourceTranscription AnalysisSource = "transcription" // Synthesized from an in-app recording
)

// Analysis represents one video's annotation ingestion and the
// normalized document derived from it.
type Analysis struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID      uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	RecordingID *uuid.UUID     `json:"recording_id,omitempty" gorm:"type:uuid;index"`
	Status      AnalysisStatus `json:"status" gorm:"type:varchar(50);not null;index;default:'queued'"`
	Source      AnalysisSource `json:"source" gorm:"type:varchar(50);not null;default:'upload'"`

	// Video under analysis
	VideoObjectKey string  `json:"video_object_key" gorm:"type:text;not null"`
	VideoWidth     int     `json:"video_width" gorm:"default:0"`
	VideoHeight    int     `json:"video_height" gorm:"default:0"`
	VideoDuration  float64 `json:"video_duration" gorm:"default:0"`
	VideoSizeBytes int64   `json:"video_size_bytes" gorm:"default:0"`

	// Annotation side
	AnnotationObjectKey *string        `json:"annotation_object_key,omitempty" gorm:"type:text"`
	ExternalJobID       *string        `json:"external_job_id,omitempty" gorm:"type:varchar(255);index"`
	Document            datatypes.JSON `json:"-" gorm:"type:jsonb"` // normalized document, replaced wholesale on re-ingest
	Misaligned          bool           `json:"misaligned" gorm:"default:false"`

	// Processing details
	StartedAt   *time.Time `json:"started_at,omitempty" gorm:"type:timestamp"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"type:timestamp"`
	RetryCount  int        `json:"retry_count" gorm:"type:integer;default:0"`
	MaxRetries  int        `json:"max_retries" gorm:"type:integer;default:3"`
	LastError   *string    `json:"last_error,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Analysis) TableName() string {
	return "analyses"
}

// NewAnalysis creates a queued analysis for a stored video
func NewAnalysis(userID uuid.UUID, videoObjectKey string, source AnalysisSource) *Analysis {
	return &Analysis{
		ID:             uuid.New(),
		UserID:         userID,
		Status:         AnalysisStatusQueued,
		Source:         source,
		VideoObjectKey: videoObjectKey,
		RetryCount:     0,
		MaxRetries:     3,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
}

// HasDocument reports whether a normalized document has been ingested
func (a *Analysis) HasDocument() bool {
	return len(a.Document) > 0
}

// IsRetryable checks if the job can be retried
func (a *Analysis) IsRetryable() bool {
	return a.RetryCount < a.MaxRetries && a.Status == AnalysisStatusFailed
}

// MarkAsSubmitted marks the job as submitted to the annotation service
func (a *Analysis) MarkAsSubmitted(externalJobID string) {
	a.Status = AnalysisStatusSubmitted
	a.ExternalJobID = &externalJobID
	now := time.Now()
	a.StartedAt = &now
	a.UpdatedAt = now
}

// MarkAsProcessing marks the job as normalizing a document
func (a *Analysis) MarkAsProcessing() {
	a.Status = AnalysisStatusProcessing
	a.UpdatedAt = time.Now()
}

// MarkAsCompleted stores the normalized document and completes the job.
// The previous document, if any, is replaced wholesale.
func (a *Analysis) MarkAsCompleted(document []byte, misaligned bool) {
	a.Status = AnalysisStatusCompleted
	a.Document = datatypes.JSON(document)
	a.Misaligned = misaligned
	now := time.Now()
	a.CompletedAt = &now
	a.UpdatedAt = now
	a.LastError = nil
}

// MarkAsFailed records the failure. An already ingested document is
// kept so consumers never observe a partial overwrite.
func (a *Analysis) MarkAsFailed(errMsg string) {
	a.Status = AnalysisStatusFailed
	a.LastError = &errMsg
	a.RetryCount++
	a.UpdatedAt = time.Now()
}

// SetVideoInfo records the video's intrinsic metadata once known
func (a *Analysis) SetVideoInfo(width, height int, duration float64) {
	a.VideoWidth = width
	a.VideoHeight = height
	a.VideoDuration = duration
	a.UpdatedAt = time.Now()
}
