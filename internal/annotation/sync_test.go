package annotation

import "testing"

type fakeTransport struct {
	currentTime float64
	playing     bool
	playCalls   int
}

func (f *fakeTransport) SetCurrentTime(seconds float64) { f.currentTime = seconds }
func (f *fakeTransport) Play()                          { f.playing = true; f.playCalls++ }
func (f *fakeTransport) IsPlaying() bool                { return f.playing }

type fakeOverlay struct {
	draws  [][]OverlayBox
	clears int
}

func (f *fakeOverlay) Draw(boxes []OverlayBox) { f.draws = append(f.draws, boxes) }
func (f *fakeOverlay) Clear()                  { f.clears++ }

func (f *fakeOverlay) lastDraw() []OverlayBox {
	if len(f.draws) == 0 {
		return nil
	}
	return f.draws[len(f.draws)-1]
}

func syncDocument() *Document {
	doc := EmptyDocument()
	doc.Entities[KindObject] = []Entity{{
		Kind:        KindObject,
		Description: "laptop",
		Confidence:  0.9,
		Tracks: []Track{{
			StartTime: 0,
			EndTime:   10,
			Frames: []FrameSample{
				{Time: 0, Box: NormalizedBox{Left: 0.1, Top: 0.1, Width: 0.2, Height: 0.2}},
				{Time: 10, Box: NormalizedBox{Left: 0.5, Top: 0.5, Width: 0.2, Height: 0.2}},
			},
		}},
	}}
	doc.Entities[KindFace] = []Entity{{
		Kind:        KindFace,
		Description: "Face 1",
		Tracks: []Track{{
			StartTime: 0,
			EndTime:   10,
			Frames: []FrameSample{
				{Time: 0, Box: NormalizedBox{Left: 0.3, Top: 0.3, Width: 0.1, Height: 0.1}},
				{Time: 10, Box: NormalizedBox{Left: 0.4, Top: 0.4, Width: 0.1, Height: 0.1}},
			},
		}},
	}}
	return doc
}

func TestSynchronizer_OnTimeUpdateBatchesOneDraw(t *testing.T) {
	trans := &fakeTransport{}
	over := &fakeOverlay{}
	s := NewSynchronizer(trans, over)
	s.SetVideoInfo(testInfo)
	s.SetDocument(syncDocument())

	before := len(over.draws)
	s.OnTimeUpdate(5)
	if len(over.draws) != before+1 {
		t.Fatalf("expected exactly one draw per tick, got %d new draws", len(over.draws)-before)
	}
	boxes := over.lastDraw()
	if len(boxes) != 1 {
		t.Fatalf("expected 1 visible box got %d", len(boxes))
	}
	if boxes[0].Description != "laptop" {
		t.Fatalf("unexpected box %+v", boxes[0])
	}
}

func TestSynchronizer_NoBoxesOutsideBrackets(t *testing.T) {
	trans := &fakeTransport{}
	over := &fakeOverlay{}
	s := NewSynchronizer(trans, over)
	s.SetVideoInfo(testInfo)
	s.SetDocument(syncDocument())

	s.OnTimeUpdate(30)
	if got := over.lastDraw(); len(got) != 0 {
		t.Fatalf("past last sample: expected empty draw got %+v", got)
	}
}

func TestSynchronizer_SeekClamps(t *testing.T) {
	trans := &fakeTransport{}
	over := &fakeOverlay{}
	s := NewSynchronizer(trans, over)
	s.SetVideoInfo(testInfo)
	s.SetDocument(syncDocument())

	s.SeekTo(-5)
	if trans.currentTime != 0 {
		t.Fatalf("negative seek should clamp to 0, got %v", trans.currentTime)
	}
	s.SeekTo(testInfo.Duration + 100)
	if trans.currentTime != testInfo.Duration {
		t.Fatalf("overlong seek should clamp to duration, got %v", trans.currentTime)
	}
	if trans.playCalls != 2 {
		t.Fatalf("every seek should resume playback, got %d play calls", trans.playCalls)
	}
}

func TestSynchronizer_KindSwitchClearsOverlay(t *testing.T) {
	trans := &fakeTransport{}
	over := &fakeOverlay{}
	s := NewSynchronizer(trans, over)
	s.SetVideoInfo(testInfo)
	s.SetDocument(syncDocument())
	s.OnTimeUpdate(5)

	clearsBefore := over.clears
	s.SetCurrentKind(KindFace)
	if over.clears != clearsBefore+1 {
		t.Fatal("switching kind must clear the overlay")
	}
	boxes := over.lastDraw()
	if len(boxes) != 1 || boxes[0].Description != "Face 1" {
		t.Fatalf("expected only the new kind's boxes after switch, got %+v", boxes)
	}
}

func TestSynchronizer_DocumentReplacementIsWholesale(t *testing.T) {
	trans := &fakeTransport{}
	over := &fakeOverlay{}
	s := NewSynchronizer(trans, over)
	s.SetVideoInfo(testInfo)
	s.SetDocument(syncDocument())
	s.OnTimeUpdate(5)

	s.SetDocument(EmptyDocument())
	if got := over.lastDraw(); len(got) != 0 {
		t.Fatalf("replaced document must not leave stale boxes: %+v", got)
	}

	s.SetDocument(nil)
	s.OnTimeUpdate(5)
	if got := over.lastDraw(); len(got) != 0 {
		t.Fatalf("nil document should behave as empty: %+v", got)
	}
}

func TestSynchronizer_ToleratesUnresolvedVideoInfo(t *testing.T) {
	trans := &fakeTransport{}
	over := &fakeOverlay{}
	s := NewSynchronizer(trans, over)
	s.SetDocument(syncDocument())

	// Metadata has not resolved: draws stay empty, nothing panics.
	s.OnTimeUpdate(5)
	if got := over.lastDraw(); len(got) != 0 {
		t.Fatalf("placeholder VideoInfo must draw nothing, got %+v", got)
	}
}
