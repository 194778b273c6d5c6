package player

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/call-manager-team/call-manager/internal/annotation"
)

// playbackState is the server-side stand-in for the client's video
// element. The synchronizer drives it through the PlaybackTransport
// interface; handlers read it back to echo the authoritative state.
type playbackState struct {
	mu          sync.Mutex
	currentTime float64
	playing     bool
}

func (p *playbackState) SetCurrentTime(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currentTime = seconds
}

func (p *playbackState) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = true
}

func (p *playbackState) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
}

func (p *playbackState) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *playbackState) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentTime
}

// overlayBuffer retains the last batched redraw so handlers can return
// the visible boxes without recomputing.
type overlayBuffer struct {
	mu    sync.Mutex
	boxes []annotation.OverlayBox
}

func (o *overlayBuffer) Draw(boxes []annotation.OverlayBox) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.boxes = boxes
}

func (o *overlayBuffer) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.boxes = nil
}

func (o *overlayBuffer) Boxes() []annotation.OverlayBox {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.boxes
}

// session is one user's playback session over one analysis. All focus
// bookkeeping is guarded by mu; playback and overlay state have their
// own locks because the synchronizer calls back into them.
type session struct {
	id         uuid.UUID
	userID     uuid.UUID
	analysisID uuid.UUID

	playback *playbackState
	overlay  *overlayBuffer
	sync     *annotation.Synchronizer

	mu              sync.Mutex
	closed          bool
	violated        bool
	focusViolations int
	blurredAt       *time.Time
	lastActive      time.Time
}

func newSession(userID, analysisID uuid.UUID, doc *annotation.Document, info annotation.VideoInfo, now time.Time) *session {
	playback := &playbackState{}
	overlay := &overlayBuffer{}
	synchronizer := annotation.NewSynchronizer(playback, overlay)
	synchronizer.SetDocument(doc)
	synchronizer.SetVideoInfo(info)

	return &session{
		id:         uuid.New(),
		userID:     userID,
		analysisID: analysisID,
		playback:   playback,
		overlay:    overlay,
		sync:       synchronizer,
		lastActive: now,
	}
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = now
}

func (s *session) expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActive) > ttl
}

// recordFocus applies one focus transition. A blur only becomes a
// violation when the user stays away past the debounce window; rapid
// blur/focus flips (tab switches, notifications) never count.
func (s *session) recordFocus(focused bool, now time.Time, debounce time.Duration, limit int) (violations int, violated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if focused {
		if s.blurredAt != nil && now.Sub(*s.blurredAt) >= debounce {
			s.focusViolations++
		}
		s.blurredAt = nil
	} else if s.blurredAt == nil {
		at := now
		s.blurredAt = &at
	}

	if limit > 0 && s.focusViolations >= limit {
		s.violated = true
	}
	return s.focusViolations, s.violated
}
