package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/call-manager-team/call-manager/internal/annotation"
	"github.com/call-manager-team/call-manager/internal/domain/entities"
	usecaseErrors "github.com/call-manager-team/call-manager/internal/usecase/errors"
	"github.com/call-manager-team/call-manager/internal/infrastructure/storage"
	"github.com/call-manager-team/call-manager/pkg/config"
	"github.com/call-manager-team/call-manager/pkg/videointel"
)

type fakeAnalysisRepo struct {
	byID map[uuid.UUID]*entities.Analysis
}

func newFakeAnalysisRepo() *fakeAnalysisRepo {
	return &fakeAnalysisRepo{byID: make(map[uuid.UUID]*entities.Analysis)}
}

func (r *fakeAnalysisRepo) Create(_ context.Context, a *entities.Analysis) error {
	r.byID[a.ID] = a
	return nil
}

func (r *fakeAnalysisRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Analysis, error) {
	return r.byID[id], nil
}

func (r *fakeAnalysisRepo) FindByExternalJobID(_ context.Context, externalJobID string) (*entities.Analysis, error) {
	for _, a := range r.byID {
		if a.ExternalJobID != nil && *a.ExternalJobID == externalJobID {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAnalysisRepo) FindByRecordingID(_ context.Context, recordingID uuid.UUID) ([]*entities.Analysis, error) {
	var out []*entities.Analysis
	for _, a := range r.byID {
		if a.RecordingID != nil && *a.RecordingID == recordingID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAnalysisRepo) FindByUserID(_ context.Context, userID uuid.UUID, _, _ int) ([]*entities.Analysis, error) {
	var out []*entities.Analysis
	for _, a := range r.byID {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAnalysisRepo) FindPending(_ context.Context, _ int) ([]*entities.Analysis, error) {
	var out []*entities.Analysis
	for _, a := range r.byID {
		if a.Status == entities.AnalysisStatusSubmitted {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAnalysisRepo) ClaimForProcessing(_ context.Context, id uuid.UUID) (bool, error) {
	a, ok := r.byID[id]
	if !ok || a.Status != entities.AnalysisStatusSubmitted {
		return false, nil
	}
	a.Status = entities.AnalysisStatusProcessing
	return true, nil
}

func (r *fakeAnalysisRepo) Update(_ context.Context, a *entities.Analysis) error {
	r.byID[a.ID] = a
	return nil
}

type fakeRecordingRepo struct {
	byID map[uuid.UUID]*entities.Recording
}

func newFakeRecordingRepo() *fakeRecordingRepo {
	return &fakeRecordingRepo{byID: make(map[uuid.UUID]*entities.Recording)}
}

func (r *fakeRecordingRepo) Create(_ context.Context, rec *entities.Recording) error {
	r.byID[rec.ID] = rec
	return nil
}

func (r *fakeRecordingRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Recording, error) {
	return r.byID[id], nil
}

func (r *fakeRecordingRepo) FindByEgressID(_ context.Context, _ string) (*entities.Recording, error) {
	return nil, nil
}

func (r *fakeRecordingRepo) FindByMeetingID(_ context.Context, _ uuid.UUID) ([]*entities.Recording, error) {
	return nil, nil
}

func (r *fakeRecordingRepo) FindActiveByMeetingID(_ context.Context, _ uuid.UUID) (*entities.Recording, error) {
	return nil, nil
}

func (r *fakeRecordingRepo) Update(_ context.Context, rec *entities.Recording) error {
	r.byID[rec.ID] = rec
	return nil
}

func (r *fakeRecordingRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ entities.RecordingStatus) error {
	return nil
}

type fakeStore struct {
	sizes   map[string]int64
	uploads map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{sizes: make(map[string]int64), uploads: make(map[string][]byte)}
}

func (s *fakeStore) StatFile(_ context.Context, objectName string) (*storage.ObjectInfo, error) {
	size, ok := s.sizes[objectName]
	if !ok {
		return nil, fmt.Errorf("object %s not found", objectName)
	}
	return &storage.ObjectInfo{Key: objectName, Size: size}, nil
}

func (s *fakeStore) UploadBytes(_ context.Context, objectName string, content []byte, _ string) error {
	s.uploads[objectName] = content
	return nil
}

func (s *fakeStore) GetFileURL(_ context.Context, objectName string, _ time.Duration) (string, error) {
	return "http://storage.local/" + objectName, nil
}

type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) GetBytes(_ context.Context, key string) ([]byte, error) {
	return c.data[key], nil
}

func (c *fakeCache) SetBytes(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.data[key] = value
	return nil
}

func (c *fakeCache) DeleteKeys(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

type fakeJobs struct {
	submitErr error
	jobID     string
	status    string
	jobErr    string
	result    []byte
	submitted []string
}

func (j *fakeJobs) SubmitVideo(_ context.Context, inputURI, _ string) (string, error) {
	if j.submitErr != nil {
		return "", j.submitErr
	}
	j.submitted = append(j.submitted, inputURI)
	return j.jobID, nil
}

func (j *fakeJobs) GetJob(_ context.Context, jobID string) (*videointel.JobResponse, error) {
	return &videointel.JobResponse{ID: jobID, Status: j.status, Error: j.jobErr}, nil
}

func (j *fakeJobs) FetchResult(_ context.Context, _ string) ([]byte, error) {
	return j.result, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Analysis: config.AnalysisConfig{
			MaxVideoBytes:     1000,
			MisalignTolerance: 2.0,
			Workers:           1,
			PollInterval:      time.Millisecond,
			PollTimeout:       10 * time.Minute,
			DocumentCacheTTL:  time.Minute,
		},
	}
}

func newTestService(repo *fakeAnalysisRepo, recordings *fakeRecordingRepo, store *fakeStore, cache *fakeCache, jobs *fakeJobs) Service {
	return NewAnalysisService(repo, recordings, store, cache, jobs, testConfig(), zap.NewNop())
}

const validPayload = `{
	"annotation_results": [{
		"segment": {"end_time_offset": {"seconds": 30}},
		"shot_label_annotations": [{
			"entity": {"description": "whiteboard"},
			"segments": [{"segment": {"start_time_offset": {"seconds": 1}, "end_time_offset": {"seconds": 4}}, "confidence": 0.9}]
		}],
		"object_annotations": [{
			"entity": {"description": "laptop"},
			"confidence": 0.8,
			"frames": [
				{"time_offset": {"seconds": 2}, "normalized_bounding_box": {"left": 0.1, "top": 0.1, "width": 0.2, "height": 0.2}},
				{"time_offset": {"seconds": 4}, "normalized_bounding_box": {"left": 0.3, "top": 0.3, "width": 0.2, "height": 0.2}}
			]
		}]
	}]
}`

func TestRegisterAnalysis(t *testing.T) {
	repo := newFakeAnalysisRepo()
	store := newFakeStore()
	store.sizes["videos/demo.mp4"] = 500
	jobs := &fakeJobs{jobID: "job-1"}
	svc := newTestService(repo, newFakeRecordingRepo(), store, newFakeCache(), jobs)

	userID := uuid.New()
	a, err := svc.RegisterAnalysis(context.Background(), RegisterAnalysisInput{
		UserID:         userID,
		VideoObjectKey: "videos/demo.mp4",
		VideoWidth:     1280,
		VideoHeight:    720,
		VideoDuration:  30,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if a.Status != entities.AnalysisStatusSubmitted {
		t.Fatalf("expected submitted, got %s", a.Status)
	}
	if a.ExternalJobID == nil || *a.ExternalJobID != "job-1" {
		t.Fatalf("expected external job ID job-1, got %v", a.ExternalJobID)
	}
	if a.VideoSizeBytes != 500 || a.VideoWidth != 1280 {
		t.Fatalf("video metadata not recorded: %+v", a)
	}
	if len(jobs.submitted) != 1 {
		t.Fatalf("expected one submission, got %d", len(jobs.submitted))
	}
}

func TestRegisterAnalysis_OversizedVideo(t *testing.T) {
	repo := newFakeAnalysisRepo()
	store := newFakeStore()
	store.sizes["videos/big.mp4"] = 5000
	svc := newTestService(repo, newFakeRecordingRepo(), store, newFakeCache(), &fakeJobs{})

	_, err := svc.RegisterAnalysis(context.Background(), RegisterAnalysisInput{
		UserID:         uuid.New(),
		VideoObjectKey: "videos/big.mp4",
	})
	if !errors.Is(err, usecaseErrors.ErrOversizedVideo) {
		t.Fatalf("expected ErrOversizedVideo, got %v", err)
	}
	if len(repo.byID) != 0 {
		t.Fatal("oversized video must not leave an analysis behind")
	}
}

func TestRegisterAnalysis_SubmitFailureKeepsFailedAnalysis(t *testing.T) {
	repo := newFakeAnalysisRepo()
	store := newFakeStore()
	store.sizes["videos/demo.mp4"] = 500
	jobs := &fakeJobs{submitErr: errors.New("service unavailable")}
	svc := newTestService(repo, newFakeRecordingRepo(), store, newFakeCache(), jobs)

	_, err := svc.RegisterAnalysis(context.Background(), RegisterAnalysisInput{
		UserID:         uuid.New(),
		VideoObjectKey: "videos/demo.mp4",
	})
	if err == nil {
		t.Fatal("expected submission error")
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected the failed analysis to persist, got %d", len(repo.byID))
	}
	for _, a := range repo.byID {
		if a.Status != entities.AnalysisStatusFailed {
			t.Fatalf("expected failed status, got %s", a.Status)
		}
	}
}

func TestRegisterAnalysis_RecordingNotReady(t *testing.T) {
	recordings := newFakeRecordingRepo()
	rec := &entities.Recording{ID: uuid.New(), Status: entities.RecordingStatusRecording}
	recordings.byID[rec.ID] = rec
	svc := newTestService(newFakeAnalysisRepo(), recordings, newFakeStore(), newFakeCache(), &fakeJobs{})

	_, err := svc.RegisterAnalysis(context.Background(), RegisterAnalysisInput{
		UserID:      uuid.New(),
		RecordingID: &rec.ID,
	})
	if !errors.Is(err, usecaseErrors.ErrRecordingNotReady) {
		t.Fatalf("expected ErrRecordingNotReady, got %v", err)
	}
}

func TestIngestAnnotations(t *testing.T) {
	repo := newFakeAnalysisRepo()
	store := newFakeStore()
	cache := newFakeCache()
	svc := newTestService(repo, newFakeRecordingRepo(), store, cache, &fakeJobs{})

	userID := uuid.New()
	a := entities.NewAnalysis(userID, "videos/demo.mp4", entities.AnalysisSourceUpload)
	a.SetVideoInfo(1280, 720, 30)
	repo.byID[a.ID] = a

	got, err := svc.IngestAnnotations(context.Background(), userID, a.ID, []byte(validPayload))
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if got.Status != entities.AnalysisStatusCompleted || !got.HasDocument() {
		t.Fatalf("expected completed with document, got %s", got.Status)
	}
	if got.Misaligned {
		t.Fatal("30s document against 30s video must not be misaligned")
	}
	if got.AnnotationObjectKey == nil {
		t.Fatal("raw payload should be archived")
	}
	if _, ok := store.uploads[*got.AnnotationObjectKey]; !ok {
		t.Fatal("archived payload missing from storage")
	}

	doc, err := svc.GetDocument(context.Background(), userID, a.ID)
	if err != nil {
		t.Fatalf("get document failed: %v", err)
	}
	if len(doc.EntitiesOf(annotation.KindLabel)) != 1 || len(doc.EntitiesOf(annotation.KindObject)) != 1 {
		t.Fatalf("unexpected document contents: %v", doc.DetectedKinds())
	}
}

func TestIngestAnnotations_UnparsableKeepsPreviousDocument(t *testing.T) {
	repo := newFakeAnalysisRepo()
	svc := newTestService(repo, newFakeRecordingRepo(), newFakeStore(), newFakeCache(), &fakeJobs{})

	userID := uuid.New()
	a := entities.NewAnalysis(userID, "videos/demo.mp4", entities.AnalysisSourceUpload)
	a.SetVideoInfo(1280, 720, 30)
	repo.byID[a.ID] = a

	if _, err := svc.IngestAnnotations(context.Background(), userID, a.ID, []byte(validPayload)); err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}

	_, err := svc.IngestAnnotations(context.Background(), userID, a.ID, []byte("{broken"))
	if !errors.Is(err, usecaseErrors.ErrUnparsableAnnotations) {
		t.Fatalf("expected ErrUnparsableAnnotations, got %v", err)
	}

	// The earlier document must survive the failed re-ingest.
	doc, err := svc.GetDocument(context.Background(), userID, a.ID)
	if err != nil {
		t.Fatalf("document lost after failed ingest: %v", err)
	}
	if len(doc.EntitiesOf(annotation.KindLabel)) != 1 {
		t.Fatal("previous document content missing")
	}
}

func TestIngestAnnotations_Misaligned(t *testing.T) {
	repo := newFakeAnalysisRepo()
	svc := newTestService(repo, newFakeRecordingRepo(), newFakeStore(), newFakeCache(), &fakeJobs{})

	userID := uuid.New()
	a := entities.NewAnalysis(userID, "videos/demo.mp4", entities.AnalysisSourceUpload)
	a.SetVideoInfo(1280, 720, 60) // document reports 30s
	repo.byID[a.ID] = a

	got, err := svc.IngestAnnotations(context.Background(), userID, a.ID, []byte(validPayload))
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if !got.Misaligned {
		t.Fatal("expected the misalignment flag")
	}
}

func TestIngestAnnotations_Ownership(t *testing.T) {
	repo := newFakeAnalysisRepo()
	svc := newTestService(repo, newFakeRecordingRepo(), newFakeStore(), newFakeCache(), &fakeJobs{})

	a := entities.NewAnalysis(uuid.New(), "videos/demo.mp4", entities.AnalysisSourceUpload)
	repo.byID[a.ID] = a

	_, err := svc.IngestAnnotations(context.Background(), uuid.New(), a.ID, []byte(validPayload))
	if !errors.Is(err, usecaseErrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestProcessJobUpdate_Succeeded(t *testing.T) {
	repo := newFakeAnalysisRepo()
	jobs := &fakeJobs{result: []byte(validPayload)}
	svc := newTestService(repo, newFakeRecordingRepo(), newFakeStore(), newFakeCache(), jobs)

	a := entities.NewAnalysis(uuid.New(), "videos/demo.mp4", entities.AnalysisSourceWebhook)
	a.MarkAsSubmitted("job-7")
	repo.byID[a.ID] = a

	if err := svc.ProcessJobUpdate(context.Background(), "job-7", videointel.JobStatusSucceeded, ""); err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if repo.byID[a.ID].Status != entities.AnalysisStatusCompleted {
		t.Fatalf("expected completed, got %s", repo.byID[a.ID].Status)
	}
}

func TestProcessJobUpdate_Failed(t *testing.T) {
	repo := newFakeAnalysisRepo()
	svc := newTestService(repo, newFakeRecordingRepo(), newFakeStore(), newFakeCache(), &fakeJobs{})

	a := entities.NewAnalysis(uuid.New(), "videos/demo.mp4", entities.AnalysisSourceWebhook)
	a.MarkAsSubmitted("job-8")
	repo.byID[a.ID] = a

	if err := svc.ProcessJobUpdate(context.Background(), "job-8", videointel.JobStatusFailed, "decode error"); err != nil {
		t.Fatalf("process failed: %v", err)
	}
	got := repo.byID[a.ID]
	if got.Status != entities.AnalysisStatusFailed || got.LastError == nil || *got.LastError != "decode error" {
		t.Fatalf("failure not recorded: %+v", got)
	}
}

func TestProcessJobUpdate_UnknownJob(t *testing.T) {
	svc := newTestService(newFakeAnalysisRepo(), newFakeRecordingRepo(), newFakeStore(), newFakeCache(), &fakeJobs{})
	err := svc.ProcessJobUpdate(context.Background(), "missing", videointel.JobStatusSucceeded, "")
	if !errors.Is(err, usecaseErrors.ErrAnalysisNotFound) {
		t.Fatalf("expected ErrAnalysisNotFound, got %v", err)
	}
}

func ingestedAnalysis(t *testing.T, repo *fakeAnalysisRepo, svc Service) (uuid.UUID, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	a := entities.NewAnalysis(userID, "videos/demo.mp4", entities.AnalysisSourceUpload)
	a.SetVideoInfo(1280, 720, 30)
	repo.byID[a.ID] = a
	if _, err := svc.IngestAnnotations(context.Background(), userID, a.ID, []byte(validPayload)); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	return userID, a.ID
}

func TestViews(t *testing.T) {
	repo := newFakeAnalysisRepo()
	svc := newTestService(repo, newFakeRecordingRepo(), newFakeStore(), newFakeCache(), &fakeJobs{})
	userID, analysisID := ingestedAnalysis(t, repo, svc)

	items, err := svc.Views(context.Background(), userID, analysisID, "label", annotation.ViewFilter{})
	if err != nil {
		t.Fatalf("views failed: %v", err)
	}
	if len(items) != 1 || items[0].Description != "whiteboard" {
		t.Fatalf("unexpected items: %+v", items)
	}

	if _, err := svc.Views(context.Background(), userID, analysisID, "weather", annotation.ViewFilter{}); !errors.Is(err, usecaseErrors.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestTimeline(t *testing.T) {
	repo := newFakeAnalysisRepo()
	svc := newTestService(repo, newFakeRecordingRepo(), newFakeStore(), newFakeCache(), &fakeJobs{})
	userID, analysisID := ingestedAnalysis(t, repo, svc)

	timeline, err := svc.Timeline(context.Background(), userID, analysisID, "")
	if err != nil {
		t.Fatalf("timeline failed: %v", err)
	}
	if len(timeline[annotation.KindLabel]) != 1 {
		t.Fatalf("expected one label segment, got %+v", timeline[annotation.KindLabel])
	}

	if _, err := svc.Timeline(context.Background(), userID, analysisID, "clever"); !errors.Is(err, usecaseErrors.ErrUnknownStrategy) {
		t.Fatalf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestOverlay(t *testing.T) {
	repo := newFakeAnalysisRepo()
	svc := newTestService(repo, newFakeRecordingRepo(), newFakeStore(), newFakeCache(), &fakeJobs{})
	userID, analysisID := ingestedAnalysis(t, repo, svc)

	boxes, err := svc.Overlay(context.Background(), userID, analysisID, 3.0, "", "interpolated")
	if err != nil {
		t.Fatalf("overlay failed: %v", err)
	}
	if len(boxes) != 1 || boxes[0].Description != "laptop" {
		t.Fatalf("unexpected boxes: %+v", boxes)
	}
	// Midway between the 2s and 4s samples the box blends halfway.
	if math.Abs(boxes[0].Box.X-256) > 1e-6 {
		t.Fatalf("expected interpolated x near 256, got %v", boxes[0].Box.X)
	}

	if _, err := svc.Overlay(context.Background(), userID, analysisID, 3.0, "object", "sideways"); !errors.Is(err, usecaseErrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGetDocument_NoDocument(t *testing.T) {
	repo := newFakeAnalysisRepo()
	svc := newTestService(repo, newFakeRecordingRepo(), newFakeStore(), newFakeCache(), &fakeJobs{})

	userID := uuid.New()
	a := entities.NewAnalysis(userID, "videos/demo.mp4", entities.AnalysisSourceUpload)
	repo.byID[a.ID] = a

	if _, err := svc.GetDocument(context.Background(), userID, a.ID); !errors.Is(err, usecaseErrors.ErrNoDocument) {
		t.Fatalf("expected ErrNoDocument, got %v", err)
	}
}

func TestGetDocument_CachesBytes(t *testing.T) {
	repo := newFakeAnalysisRepo()
	cache := newFakeCache()
	svc := newTestService(repo, newFakeRecordingRepo(), newFakeStore(), cache, &fakeJobs{})
	userID, analysisID := ingestedAnalysis(t, repo, svc)

	if _, err := svc.GetDocument(context.Background(), userID, analysisID); err != nil {
		t.Fatalf("get document failed: %v", err)
	}
	if _, ok := cache.data[documentCacheKey(analysisID)]; !ok {
		t.Fatal("document bytes not cached")
	}

	// A cached copy must answer even after the row's document is cleared.
	repo.byID[analysisID].Document = nil
	doc, err := svc.GetDocument(context.Background(), userID, analysisID)
	if err != nil {
		t.Fatalf("cached read failed: %v", err)
	}
	if len(doc.EntitiesOf(annotation.KindLabel)) != 1 {
		t.Fatal("cached document incomplete")
	}
}
