package player

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/call-manager-team/call-manager/internal/annotation"
	"github.com/call-manager-team/call-manager/internal/domain/entities"
	usecaseErrors "github.com/call-manager-team/call-manager/internal/usecase/errors"
	"github.com/call-manager-team/call-manager/pkg/config"
)

// fakeAnalyses serves one canned analysis and document.
type fakeAnalyses struct {
	analysis *entities.Analysis
	doc      *annotation.Document
}

func (f *fakeAnalyses) GetAnalysis(_ context.Context, userID, analysisID uuid.UUID) (*entities.Analysis, error) {
	if f.analysis == nil || f.analysis.ID != analysisID {
		return nil, usecaseErrors.ErrAnalysisNotFound
	}
	if userID != uuid.Nil && f.analysis.UserID != userID {
		return nil, usecaseErrors.ErrForbidden
	}
	return f.analysis, nil
}

func (f *fakeAnalyses) GetDocument(_ context.Context, _, _ uuid.UUID) (*annotation.Document, error) {
	if f.doc == nil {
		return nil, usecaseErrors.ErrNoDocument
	}
	return f.doc, nil
}

func testDocument(t *testing.T) *annotation.Document {
	t.Helper()
	doc, err := annotation.Parse([]byte(`{
		"annotation_results": [{
			"segment": {"end_time_offset": {"seconds": 30}},
			"object_annotations": [{
				"entity": {"description": "laptop"},
				"confidence": 0.8,
				"frames": [
					{"time_offset": {"seconds": 2}, "normalized_bounding_box": {"left": 0.1, "top": 0.1, "width": 0.2, "height": 0.2}},
					{"time_offset": {"seconds": 6}, "normalized_bounding_box": {"left": 0.3, "top": 0.3, "width": 0.2, "height": 0.2}}
				]
			}]
		}]
	}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return doc
}

func newTestService(t *testing.T) (Service, *playerService, uuid.UUID, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	a := entities.NewAnalysis(userID, "videos/demo.mp4", entities.AnalysisSourceUpload)
	a.SetVideoInfo(1280, 720, 30)

	cfg := &config.Config{
		Analysis: config.AnalysisConfig{
			PlayerSessionTTL:     time.Hour,
			FocusViolationLimit:  2,
			FocusDebounceSeconds: 1.0,
		},
	}
	fakes := &fakeAnalyses{analysis: a, doc: testDocument(t)}
	svc := NewPlayerService(fakes, cfg, zap.NewNop())
	return svc, svc.(*playerService), userID, a.ID
}

func TestOpenAndUpdateTime(t *testing.T) {
	svc, _, userID, analysisID := newTestService(t)

	state, err := svc.Open(context.Background(), userID, analysisID)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if state.Playing || state.CurrentTime != 0 {
		t.Fatalf("fresh session should be paused at zero: %+v", state)
	}
	if state.Kind != annotation.KindObject {
		t.Fatalf("expected default kind object, got %s", state.Kind)
	}

	state, err = svc.UpdateTime(context.Background(), userID, state.ID, 3.0)
	if err != nil {
		t.Fatalf("update time failed: %v", err)
	}
	if state.CurrentTime != 3.0 {
		t.Fatalf("expected playhead at 3.0, got %v", state.CurrentTime)
	}
	if len(state.Boxes) != 1 || state.Boxes[0].Description != "laptop" {
		t.Fatalf("expected the laptop box, got %+v", state.Boxes)
	}
}

func TestSeekResumesAndClamps(t *testing.T) {
	svc, _, userID, analysisID := newTestService(t)
	opened, _ := svc.Open(context.Background(), userID, analysisID)

	state, err := svc.Seek(context.Background(), userID, opened.ID, 120)
	if err != nil {
		t.Fatalf("seek failed: %v", err)
	}
	if !state.Playing {
		t.Fatal("seek must resume playback")
	}
	if state.CurrentTime != 30 {
		t.Fatalf("seek past the end should clamp to duration, got %v", state.CurrentTime)
	}

	// Seeking also resumes a paused session.
	if _, err := svc.Pause(context.Background(), userID, opened.ID); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	state, err = svc.Seek(context.Background(), userID, opened.ID, 4)
	if err != nil {
		t.Fatalf("second seek failed: %v", err)
	}
	if !state.Playing {
		t.Fatal("seek after pause must resume playback")
	}
}

func TestSetKindClearsStaleBoxes(t *testing.T) {
	svc, _, userID, analysisID := newTestService(t)
	opened, _ := svc.Open(context.Background(), userID, analysisID)

	state, _ := svc.UpdateTime(context.Background(), userID, opened.ID, 3.0)
	if len(state.Boxes) == 0 {
		t.Fatal("expected boxes before the kind switch")
	}

	state, err := svc.SetKind(context.Background(), userID, opened.ID, "face")
	if err != nil {
		t.Fatalf("set kind failed: %v", err)
	}
	if len(state.Boxes) != 0 {
		t.Fatalf("boxes of the previous kind must not survive the switch: %+v", state.Boxes)
	}

	if _, err := svc.SetKind(context.Background(), userID, opened.ID, "weather"); !errors.Is(err, usecaseErrors.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestFocusDebounce(t *testing.T) {
	svc, impl, userID, analysisID := newTestService(t)
	opened, _ := svc.Open(context.Background(), userID, analysisID)

	base := time.Now()
	current := base
	impl.now = func() time.Time { return current }

	// A quick flip inside the debounce window is not a violation.
	if _, err := svc.RecordFocus(context.Background(), userID, opened.ID, false); err != nil {
		t.Fatalf("blur failed: %v", err)
	}
	current = base.Add(200 * time.Millisecond)
	state, err := svc.RecordFocus(context.Background(), userID, opened.ID, true)
	if err != nil {
		t.Fatalf("refocus failed: %v", err)
	}
	if state.FocusViolations != 0 {
		t.Fatalf("quick flip must not count, got %d violations", state.FocusViolations)
	}

	// Staying away past the debounce counts.
	current = base.Add(time.Second)
	svc.RecordFocus(context.Background(), userID, opened.ID, false)
	current = base.Add(3 * time.Second)
	state, err = svc.RecordFocus(context.Background(), userID, opened.ID, true)
	if err != nil {
		t.Fatalf("refocus failed: %v", err)
	}
	if state.FocusViolations != 1 {
		t.Fatalf("expected 1 violation, got %d", state.FocusViolations)
	}
}

func TestFocusLimitTerminatesSession(t *testing.T) {
	svc, impl, userID, analysisID := newTestService(t)
	opened, _ := svc.Open(context.Background(), userID, analysisID)

	base := time.Now()
	current := base
	impl.now = func() time.Time { return current }

	var lastErr error
	for i := 0; i < 2; i++ {
		svc.RecordFocus(context.Background(), userID, opened.ID, false)
		current = current.Add(5 * time.Second)
		_, lastErr = svc.RecordFocus(context.Background(), userID, opened.ID, true)
		current = current.Add(5 * time.Second)
	}
	if !errors.Is(lastErr, usecaseErrors.ErrFocusLimitExceeded) {
		t.Fatalf("expected ErrFocusLimitExceeded at the limit, got %v", lastErr)
	}

	// A violated session accepts no further playback operations.
	if _, err := svc.UpdateTime(context.Background(), userID, opened.ID, 1.0); !errors.Is(err, usecaseErrors.ErrFocusLimitExceeded) {
		t.Fatalf("expected ErrFocusLimitExceeded, got %v", err)
	}
}

func TestCloseAndOwnership(t *testing.T) {
	svc, _, userID, analysisID := newTestService(t)
	opened, _ := svc.Open(context.Background(), userID, analysisID)

	if _, err := svc.UpdateTime(context.Background(), uuid.New(), opened.ID, 1.0); !errors.Is(err, usecaseErrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for another user, got %v", err)
	}

	if err := svc.Close(context.Background(), userID, opened.ID); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if _, err := svc.UpdateTime(context.Background(), userID, opened.ID, 1.0); !errors.Is(err, usecaseErrors.ErrPlayerSessionNotFound) {
		t.Fatalf("expected ErrPlayerSessionNotFound after close, got %v", err)
	}
}

func TestReaperDropsIdleSessions(t *testing.T) {
	svc, impl, userID, analysisID := newTestService(t)
	opened, _ := svc.Open(context.Background(), userID, analysisID)

	impl.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	impl.reapExpired()

	if _, err := svc.UpdateTime(context.Background(), userID, opened.ID, 1.0); !errors.Is(err, usecaseErrors.ErrPlayerSessionNotFound) {
		t.Fatalf("expected the idle session gone, got %v", err)
	}
}
