package annotation

import "sync"

// PlaybackTransport is the synchronizer's handle on the underlying
// player: it can move the playhead and resume playback. Implementations
// wrap whatever actually plays the video (a session record, a test
// fake).
type PlaybackTransport interface {
	SetCurrentTime(seconds float64)
	Play()
	IsPlaying() bool
}

// Overlay receives batched redraws. Draw replaces the full set of
// visible boxes in one call; Clear removes everything.
type Overlay interface {
	Draw(boxes []OverlayBox)
	Clear()
}

// OverlayBox is one entity's box at the current playhead, ready to
// paint.
type OverlayBox struct {
	Description string
	Confidence  float64
	Box         PixelBox
}

// Synchronizer binds a document to a playback transport and an overlay.
// On every time update it recomputes, from scratch, the boxes of the
// current kind's entities and emits a single batched redraw. Each tick
// is computed independently against the full track data, so seeks and
// out-of-order updates need no special casing.
type Synchronizer struct {
	mu sync.Mutex

	doc   *Document
	info  VideoInfo
	kind  Kind
	mode  InterpolationMode
	now   float64
	trans PlaybackTransport
	over  Overlay
}

// NewSynchronizer starts with an empty document and a zero VideoInfo;
// both can arrive later, in either order, via SetDocument and
// SetVideoInfo.
func NewSynchronizer(trans PlaybackTransport, over Overlay) *Synchronizer {
	return &Synchronizer{
		doc:   EmptyDocument(),
		kind:  KindObject,
		mode:  Nearest,
		trans: trans,
		over:  over,
	}
}

// SetDocument atomically replaces the document. The next redraw reads
// the new entities; nothing computed against the old document survives.
func (s *Synchronizer) SetDocument(doc *Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc == nil {
		doc = EmptyDocument()
	}
	s.doc = doc
	s.redrawLocked()
}

func (s *Synchronizer) SetVideoInfo(info VideoInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info = info
	s.redrawLocked()
}

func (s *Synchronizer) SetInterpolationMode(mode InterpolationMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
	s.redrawLocked()
}

// SetCurrentKind switches the visible annotation kind. The overlay is
// cleared before the new kind draws so no boxes from the previous kind
// bleed through, then recomputed at the current playhead.
func (s *Synchronizer) SetCurrentKind(kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kind = kind
	s.over.Clear()
	s.redrawLocked()
}

// OnTimeUpdate records the new playhead position and redraws. Calls
// are independent; the playhead may jump backwards across seeks.
func (s *Synchronizer) OnTimeUpdate(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = seconds
	s.redrawLocked()
}

// SeekTo clamps the target into [0, duration], moves the playhead and
// resumes playback. Resuming even when paused matches how list-item
// clicks are expected to behave.
func (s *Synchronizer) SeekTo(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seconds < 0 {
		seconds = 0
	}
	if s.info.Duration > 0 && seconds > s.info.Duration {
		seconds = s.info.Duration
	}
	s.now = seconds
	s.trans.SetCurrentTime(seconds)
	s.trans.Play()
	s.redrawLocked()
}

// CurrentTime returns the last playhead position the synchronizer saw.
func (s *Synchronizer) CurrentTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// CurrentKind returns the kind currently driving the overlay.
func (s *Synchronizer) CurrentKind() Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind
}

// VisibleBoxes computes the overlay boxes at the current playhead
// without emitting a redraw. Handlers use it to answer overlay queries.
func (s *Synchronizer) VisibleBoxes() []OverlayBox {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.computeLocked()
}

func (s *Synchronizer) redrawLocked() {
	s.over.Draw(s.computeLocked())
}

func (s *Synchronizer) computeLocked() []OverlayBox {
	return OverlayAt(s.doc, s.info, s.kind, s.now, s.mode)
}

// OverlayAt computes the overlay boxes of one kind at an arbitrary
// playhead position. A zero VideoInfo yields no boxes: without pixel
// dimensions there is nothing to scale into.
func OverlayAt(doc *Document, info VideoInfo, kind Kind, seconds float64, mode InterpolationMode) []OverlayBox {
	entities := doc.EntitiesOf(kind)
	boxes := make([]OverlayBox, 0, len(entities))
	if !info.Valid() {
		return boxes
	}
	for i := range entities {
		e := &entities[i]
		if !e.HasSpatialTracks() {
			continue
		}
		for t := range e.Tracks {
			box := CurrentBox(&e.Tracks[t], seconds, mode, info)
			if box == nil {
				continue
			}
			boxes = append(boxes, OverlayBox{
				Description: e.Description,
				Confidence:  e.Confidence,
				Box:         *box,
			})
		}
	}
	return boxes
}
