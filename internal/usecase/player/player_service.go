package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/call-manager-team/call-manager/internal/annotation"
	usecaseErrors "github.com/call-manager-team/call-manager/internal/usecase/errors"
	"github.com/call-manager-team/call-manager/pkg/config"
)

const reaperInterval = time.Minute

type playerService struct {
	analyses AnalysisReader
	cfg      *config.Config
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session

	reaperStopChan  chan struct{}
	reaperWg        sync.WaitGroup
	isReaperRunning bool
	reaperMutex     sync.Mutex
}

// NewPlayerService constructs the playback session service.
func NewPlayerService(analyses AnalysisReader, cfg *config.Config, logger *zap.Logger) Service {
	return &playerService{
		analyses:       analyses,
		cfg:            cfg,
		logger:         logger,
		now:            time.Now,
		sessions:       make(map[uuid.UUID]*session),
		reaperStopChan: make(chan struct{}),
	}
}

// Open creates a playback session over an ingested analysis. The
// document is loaded once; re-ingesting the analysis requires a fresh
// session to observe the new document.
func (s *playerService) Open(ctx context.Context, userID, analysisID uuid.UUID) (*SessionState, error) {
	a, err := s.analyses.GetAnalysis(ctx, userID, analysisID)
	if err != nil {
		return nil, err
	}
	doc, err := s.analyses.GetDocument(ctx, userID, analysisID)
	if err != nil {
		return nil, err
	}

	sess := newSession(userID, analysisID, doc, annotation.VideoInfo{
		Width:    a.VideoWidth,
		Height:   a.VideoHeight,
		Duration: a.VideoDuration,
	}, s.now())

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.logger.Info("▶️ Player session opened",
		zap.String("session_id", sess.id.String()),
		zap.String("analysis_id", analysisID.String()),
	)
	return s.stateOf(sess), nil
}

// UpdateTime records a playhead position report from the client and
// recomputes the overlay.
func (s *playerService) UpdateTime(ctx context.Context, userID, sessionID uuid.UUID, seconds float64) (*SessionState, error) {
	sess, err := s.activeSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	sess.playback.SetCurrentTime(seconds)
	sess.sync.OnTimeUpdate(seconds)
	return s.stateOf(sess), nil
}

// Seek moves the playhead and resumes playback, clamping into the video
// duration. Resuming even when paused matches list-item click behavior.
func (s *playerService) Seek(ctx context.Context, userID, sessionID uuid.UUID, seconds float64) (*SessionState, error) {
	sess, err := s.activeSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	sess.sync.SeekTo(seconds)
	return s.stateOf(sess), nil
}

// SetKind switches the annotation kind driving the overlay.
func (s *playerService) SetKind(ctx context.Context, userID, sessionID uuid.UUID, kind string) (*SessionState, error) {
	k := annotation.Kind(kind)
	if !k.IsValid() {
		return nil, usecaseErrors.ErrUnknownKind
	}
	sess, err := s.activeSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	sess.sync.SetCurrentKind(k)
	return s.stateOf(sess), nil
}

// SetMode switches how boxes are estimated between samples.
func (s *playerService) SetMode(ctx context.Context, userID, sessionID uuid.UUID, mode string) (*SessionState, error) {
	var m annotation.InterpolationMode
	switch mode {
	case "", "nearest":
		m = annotation.Nearest
	case "interpolated":
		m = annotation.Interpolated
	default:
		return nil, usecaseErrors.ErrInvalidInput
	}
	sess, err := s.activeSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	sess.sync.SetInterpolationMode(m)
	return s.stateOf(sess), nil
}

// Pause stops playback without moving the playhead.
func (s *playerService) Pause(ctx context.Context, userID, sessionID uuid.UUID) (*SessionState, error) {
	sess, err := s.activeSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	sess.playback.Pause()
	return s.stateOf(sess), nil
}

// RecordFocus applies a window focus transition. Once the violation
// limit is reached the session turns terminal: the state is still
// readable but every further operation fails.
func (s *playerService) RecordFocus(ctx context.Context, userID, sessionID uuid.UUID, focused bool) (*SessionState, error) {
	sess, err := s.ownedSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	debounce := time.Duration(s.cfg.Analysis.FocusDebounceSeconds * float64(time.Second))
	violations, violated := sess.recordFocus(focused, s.now(), debounce, s.cfg.Analysis.FocusViolationLimit)
	sess.touch(s.now())

	state := s.stateOf(sess)
	if violated {
		s.logger.Warn("🚫 Focus violation limit reached",
			zap.String("session_id", sessionID.String()),
			zap.Int("violations", violations),
		)
		return state, usecaseErrors.ErrFocusLimitExceeded
	}
	return state, nil
}

// Close discards a session. Closing twice is not an error.
func (s *playerService) Close(ctx context.Context, userID, sessionID uuid.UUID) error {
	sess, err := s.ownedSession(userID, sessionID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	sess.closed = true
	sess.mu.Unlock()

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	s.logger.Info("⏹️ Player session closed",
		zap.String("session_id", sessionID.String()),
	)
	return nil
}

// StartReaper starts the background sweep of idle sessions.
func (s *playerService) StartReaper(ctx context.Context) error {
	s.reaperMutex.Lock()
	defer s.reaperMutex.Unlock()

	if s.isReaperRunning {
		return fmt.Errorf("session reaper already running")
	}
	s.isReaperRunning = true
	s.reaperStopChan = make(chan struct{})

	s.reaperWg.Add(1)
	go s.reapLoop(ctx)
	return nil
}

// StopReaper stops the background sweep.
func (s *playerService) StopReaper() error {
	s.reaperMutex.Lock()
	defer s.reaperMutex.Unlock()

	if !s.isReaperRunning {
		return fmt.Errorf("session reaper not running")
	}
	close(s.reaperStopChan)
	s.reaperWg.Wait()
	s.isReaperRunning = false
	return nil
}

func (s *playerService) reapLoop(ctx context.Context) {
	defer s.reaperWg.Done()

	ticker := time.NewTicker(reaperInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.reaperStopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.reapExpired()
		}
	}
}

func (s *playerService) reapExpired() {
	ttl := s.cfg.Analysis.PlayerSessionTTL
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.expired(now, ttl) {
			delete(s.sessions, id)
			s.logger.Info("🧹 Reaped idle player session",
				zap.String("session_id", id.String()),
			)
		}
	}
}

// activeSession resolves a session that can still accept playback
// operations: owned by the user, not closed, not focus-violated.
func (s *playerService) activeSession(userID, sessionID uuid.UUID) (*session, error) {
	sess, err := s.ownedSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	violated := sess.violated
	sess.mu.Unlock()
	if violated {
		return nil, usecaseErrors.ErrFocusLimitExceeded
	}

	sess.touch(s.now())
	return sess, nil
}

func (s *playerService) ownedSession(userID, sessionID uuid.UUID) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, usecaseErrors.ErrPlayerSessionNotFound
	}
	if userID != uuid.Nil && sess.userID != userID {
		return nil, usecaseErrors.ErrForbidden
	}

	sess.mu.Lock()
	closed := sess.closed
	sess.mu.Unlock()
	if closed {
		return nil, usecaseErrors.ErrPlayerSessionClosed
	}
	return sess, nil
}

func (s *playerService) stateOf(sess *session) *SessionState {
	sess.mu.Lock()
	violations := sess.focusViolations
	violated := sess.violated
	sess.mu.Unlock()

	return &SessionState{
		ID:                sess.id,
		AnalysisID:        sess.analysisID,
		CurrentTime:       sess.sync.CurrentTime(),
		Playing:           sess.playback.IsPlaying(),
		Kind:              sess.sync.CurrentKind(),
		Boxes:             sess.overlay.Boxes(),
		FocusViolations:   violations,
		FocusLimitReached: violated,
	}
}
