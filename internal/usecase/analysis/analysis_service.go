package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/call-manager-team/call-manager/internal/annotation"
	"github.com/call-manager-team/call-manager/internal/domain/entities"
	"github.com/call-manager-team/call-manager/internal/domain/repositories"
	usecaseErrors "github.com/call-manager-team/call-manager/internal/usecase/errors"
	"github.com/call-manager-team/call-manager/pkg/config"
	"github.com/call-manager-team/call-manager/pkg/videointel"
)

const presignedVideoExpiry = time.Hour

type analysisService struct {
	analysisRepo  repositories.AnalysisRepository
	recordingRepo repositories.RecordingRepository
	store         ObjectStore
	cache         DocumentCache
	jobs          AnnotationJobs
	asmClient     *aai.Client
	cfg           *config.Config
	logger        *zap.Logger

	workerStopChan      chan struct{}
	workerWg            sync.WaitGroup
	isWorkerPoolRunning bool
	workerMutex         sync.Mutex
}

// NewAnalysisService constructs the annotation pipeline service.
func NewAnalysisService(
	analysisRepo repositories.AnalysisRepository,
	recordingRepo repositories.RecordingRepository,
	store ObjectStore,
	cache DocumentCache,
	jobs AnnotationJobs,
	cfg *config.Config,
	logger *zap.Logger,
) Service {
	var asmClient *aai.Client
	if cfg.Assembly.APIKey != "" {
		asmClient = aai.NewClient(cfg.Assembly.APIKey)
	}

	return &analysisService{
		analysisRepo:   analysisRepo,
		recordingRepo:  recordingRepo,
		store:          store,
		cache:          cache,
		jobs:           jobs,
		asmClient:      asmClient,
		cfg:            cfg,
		logger:         logger,
		workerStopChan: make(chan struct{}),
	}
}

// RegisterAnalysis registers a stored video, checks it against the size
// limit and submits it to the annotation service. When the submission
// fails the analysis is kept in failed state so the caller can retry.
func (s *analysisService) RegisterAnalysis(ctx context.Context, input RegisterAnalysisInput) (*entities.Analysis, error) {
	objectKey := input.VideoObjectKey
	source := entities.AnalysisSourceWebhook

	if input.RecordingID != nil {
		recording, err := s.recordingRepo.FindByID(ctx, *input.RecordingID)
		if err != nil {
			return nil, fmt.Errorf("failed to find recording: %w", err)
		}
		if recording == nil {
			return nil, usecaseErrors.ErrRecordingNotFound
		}
		if recording.Status != entities.RecordingStatusCompleted || recording.ObjectKey == nil {
			return nil, usecaseErrors.ErrRecordingNotReady
		}
		objectKey = *recording.ObjectKey
	}

	if objectKey == "" {
		return nil, usecaseErrors.ErrInvalidInput
	}

	info, err := s.store.StatFile(ctx, objectKey)
	if err != nil {
		return nil, fmt.Errorf("failed to stat video object: %w", err)
	}
	if info.Size > s.cfg.Analysis.MaxVideoBytes {
		return nil, usecaseErrors.ErrOversizedVideo
	}

	a := entities.NewAnalysis(input.UserID, objectKey, source)
	a.RecordingID = input.RecordingID
	a.VideoSizeBytes = info.Size
	if input.VideoWidth > 0 || input.VideoHeight > 0 || input.VideoDuration > 0 {
		a.SetVideoInfo(input.VideoWidth, input.VideoHeight, input.VideoDuration)
	}

	if err := s.analysisRepo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create analysis: %w", err)
	}

	videoURL, err := s.store.GetFileURL(ctx, objectKey, presignedVideoExpiry)
	if err != nil {
		a.MarkAsFailed(fmt.Sprintf("failed to presign video URL: %v", err))
		_ = s.analysisRepo.Update(ctx, a)
		return nil, fmt.Errorf("failed to presign video URL: %w", err)
	}

	jobID, err := s.jobs.SubmitVideo(ctx, videoURL, s.webhookURL())
	if err != nil {
		a.MarkAsFailed(fmt.Sprintf("failed to submit video: %v", err))
		_ = s.analysisRepo.Update(ctx, a)
		return nil, fmt.Errorf("failed to submit video: %w", err)
	}

	a.MarkAsSubmitted(jobID)
	if err := s.analysisRepo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to update analysis: %w", err)
	}

	s.logger.Info("✅ Analysis submitted",
		zap.String("analysis_id", a.ID.String()),
		zap.String("external_job_id", jobID),
		zap.Int64("video_size_bytes", info.Size),
	)
	return a, nil
}

// IngestAnnotations ingests a directly uploaded annotation JSON payload.
// On an unparsable payload a previously ingested document is retained.
func (s *analysisService) IngestAnnotations(ctx context.Context, userID, analysisID uuid.UUID, payload []byte) (*entities.Analysis, error) {
	a, err := s.getOwned(ctx, userID, analysisID)
	if err != nil {
		return nil, err
	}

	a.Source = entities.AnalysisSourceUpload
	if err := s.ingest(ctx, a, payload); err != nil {
		return nil, err
	}
	return a, nil
}

// ProcessJobUpdate reconciles an external job status change. Shared by
// the webhook handler and the poll workers.
func (s *analysisService) ProcessJobUpdate(ctx context.Context, externalJobID, status, errMsg string) error {
	a, err := s.analysisRepo.FindByExternalJobID(ctx, externalJobID)
	if err != nil {
		return fmt.Errorf("failed to find analysis: %w", err)
	}
	if a == nil {
		return usecaseErrors.ErrAnalysisNotFound
	}
	if a.Status == entities.AnalysisStatusCompleted {
		// Webhook and poller can race on the same result.
		return nil
	}

	switch status {
	case videointel.JobStatusSucceeded:
		payload, err := s.jobs.FetchResult(ctx, externalJobID)
		if err != nil {
			return fmt.Errorf("failed to fetch annotation result: %w", err)
		}
		return s.ingest(ctx, a, payload)

	case videointel.JobStatusFailed:
		if errMsg == "" {
			errMsg = "annotation job failed"
		}
		a.MarkAsFailed(errMsg)
		if err := s.analysisRepo.Update(ctx, a); err != nil {
			return fmt.Errorf("failed to update analysis: %w", err)
		}
		s.logger.Warn("❌ Annotation job failed",
			zap.String("analysis_id", a.ID.String()),
			zap.String("reason", errMsg),
		)
		return nil

	default:
		// Still pending remotely, nothing to reconcile.
		return nil
	}
}

// GetAnalysis retrieves an analysis owned by the user. A uuid.Nil user
// skips the ownership check for internal callers.
func (s *analysisService) GetAnalysis(ctx context.Context, userID, analysisID uuid.UUID) (*entities.Analysis, error) {
	return s.getOwned(ctx, userID, analysisID)
}

// ListAnalyses retrieves the user's analyses, newest first.
func (s *analysisService) ListAnalyses(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Analysis, error) {
	return s.analysisRepo.FindByUserID(ctx, userID, limit, offset)
}

// GetDocument retrieves the normalized annotation document, consulting
// the cache before the database.
func (s *analysisService) GetDocument(ctx context.Context, userID, analysisID uuid.UUID) (*annotation.Document, error) {
	a, err := s.getOwned(ctx, userID, analysisID)
	if err != nil {
		return nil, err
	}
	return s.documentOf(ctx, a)
}

// Views renders one kind's entities as a filtered, seekable list.
func (s *analysisService) Views(ctx context.Context, userID, analysisID uuid.UUID, kind string, filter annotation.ViewFilter) ([]annotation.ViewItem, error) {
	k := annotation.Kind(kind)
	if !k.IsValid() {
		return nil, usecaseErrors.ErrUnknownKind
	}

	a, err := s.getOwned(ctx, userID, analysisID)
	if err != nil {
		return nil, err
	}
	doc, err := s.documentOf(ctx, a)
	if err != nil {
		return nil, err
	}
	return annotation.View(doc, k, filter), nil
}

// Timeline coalesces each detected kind into summary display segments.
// An empty strategy defaults to greedy.
func (s *analysisService) Timeline(ctx context.Context, userID, analysisID uuid.UUID, strategy string) (map[annotation.Kind][]annotation.DisplaySegment, error) {
	st := annotation.StrategyGreedy
	if strategy != "" {
		st = annotation.CoalesceStrategy(strategy)
		if !st.IsValid() {
			return nil, usecaseErrors.ErrUnknownStrategy
		}
	}

	a, err := s.getOwned(ctx, userID, analysisID)
	if err != nil {
		return nil, err
	}
	doc, err := s.documentOf(ctx, a)
	if err != nil {
		return nil, err
	}

	timeline := make(map[annotation.Kind][]annotation.DisplaySegment)
	for _, k := range doc.DetectedKinds() {
		timeline[k] = annotation.CoalesceWith(doc.EntitiesOf(k), st)
	}
	return timeline, nil
}

// Overlay computes the boxes of one kind at an arbitrary playhead. An
// empty kind defaults to object tracking, an empty mode to nearest.
func (s *analysisService) Overlay(ctx context.Context, userID, analysisID uuid.UUID, seconds float64, kind, mode string) ([]annotation.OverlayBox, error) {
	k := annotation.KindObject
	if kind != "" {
		k = annotation.Kind(kind)
		if !k.IsValid() {
			return nil, usecaseErrors.ErrUnknownKind
		}
	}
	m, err := parseInterpolationMode(mode)
	if err != nil {
		return nil, err
	}

	a, err := s.getOwned(ctx, userID, analysisID)
	if err != nil {
		return nil, err
	}
	doc, err := s.documentOf(ctx, a)
	if err != nil {
		return nil, err
	}

	info := annotation.VideoInfo{
		Width:    a.VideoWidth,
		Height:   a.VideoHeight,
		Duration: a.VideoDuration,
	}
	return annotation.OverlayAt(doc, info, k, seconds, m), nil
}

// ingest parses, normalizes and stores an annotation payload. The raw
// payload is archived to object storage; the normalized document
// replaces any previous one wholesale and invalidates the cache.
func (s *analysisService) ingest(ctx context.Context, a *entities.Analysis, payload []byte) error {
	doc, err := annotation.Parse(payload)
	if err != nil {
		a.MarkAsFailed(err.Error())
		if updateErr := s.analysisRepo.Update(ctx, a); updateErr != nil {
			s.logger.Error("failed to record ingest failure",
				zap.String("analysis_id", a.ID.String()),
				zap.Error(updateErr),
			)
		}
		return fmt.Errorf("%w: %v", usecaseErrors.ErrUnparsableAnnotations, err)
	}

	misaligned := annotation.Misaligned(doc, annotation.VideoInfo{
		Width:    a.VideoWidth,
		Height:   a.VideoHeight,
		Duration: a.VideoDuration,
	}, s.cfg.Analysis.MisalignTolerance)

	rawKey := fmt.Sprintf("annotations/%s.json", a.ID)
	if err := s.store.UploadBytes(ctx, rawKey, payload, "application/json"); err != nil {
		// Archive is best effort, the normalized document is the source
		// of truth once ingested.
		s.logger.Warn("failed to archive raw annotation payload",
			zap.String("analysis_id", a.ID.String()),
			zap.Error(err),
		)
	} else {
		a.AnnotationObjectKey = &rawKey
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	a.MarkAsCompleted(encoded, misaligned)
	if err := s.analysisRepo.Update(ctx, a); err != nil {
		return fmt.Errorf("failed to update analysis: %w", err)
	}

	if err := s.cache.DeleteKeys(ctx, documentCacheKey(a.ID)); err != nil {
		s.logger.Warn("failed to invalidate document cache",
			zap.String("analysis_id", a.ID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("✅ Annotation document ingested",
		zap.String("analysis_id", a.ID.String()),
		zap.Int("payload_bytes", len(payload)),
		zap.Bool("misaligned", misaligned),
	)
	return nil
}

func (s *analysisService) getOwned(ctx context.Context, userID, analysisID uuid.UUID) (*entities.Analysis, error) {
	a, err := s.analysisRepo.FindByID(ctx, analysisID)
	if err != nil {
		return nil, fmt.Errorf("failed to find analysis: %w", err)
	}
	if a == nil {
		return nil, usecaseErrors.ErrAnalysisNotFound
	}
	if userID != uuid.Nil && a.UserID != userID {
		return nil, usecaseErrors.ErrForbidden
	}
	return a, nil
}

// documentOf decodes the analysis's normalized document, caching the
// JSON bytes. A cache miss or a stale entry falls back to the database
// copy.
func (s *analysisService) documentOf(ctx context.Context, a *entities.Analysis) (*annotation.Document, error) {
	key := documentCacheKey(a.ID)

	if cached, err := s.cache.GetBytes(ctx, key); err == nil && cached != nil {
		var doc annotation.Document
		if err := json.Unmarshal(cached, &doc); err == nil {
			return &doc, nil
		}
		_ = s.cache.DeleteKeys(ctx, key)
	}

	if !a.HasDocument() {
		return nil, usecaseErrors.ErrNoDocument
	}

	var doc annotation.Document
	if err := json.Unmarshal(a.Document, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}

	if err := s.cache.SetBytes(ctx, key, a.Document, s.cfg.Analysis.DocumentCacheTTL); err != nil {
		s.logger.Warn("failed to cache document",
			zap.String("analysis_id", a.ID.String()),
			zap.Error(err),
		)
	}
	return &doc, nil
}

func (s *analysisService) webhookURL() string {
	if s.cfg.VideoIntel.WebhookBaseURL == "" {
		return ""
	}
	return s.cfg.VideoIntel.WebhookBaseURL + "/v1/webhooks/videointel"
}

func documentCacheKey(analysisID uuid.UUID) string {
	return "analysis:document:" + analysisID.String()
}

func parseInterpolationMode(mode string) (annotation.InterpolationMode, error) {
	switch mode {
	case "", "nearest":
		return annotation.Nearest, nil
	case "interpolated":
		return annotation.Interpolated, nil
	default:
		return annotation.Nearest, usecaseErrors.ErrInvalidInput
	}
}
