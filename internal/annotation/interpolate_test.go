package annotation

import "testing"

// 100x100 video so normalized coordinates map 1:1 onto percentages.
var testInfo = VideoInfo{Width: 100, Height: 100, Duration: 60}

func testTrack() *Track {
	return &Track{
		StartTime: 0,
		EndTime:   4,
		Frames: []FrameSample{
			{Time: 0, Box: NormalizedBox{Left: 0.0, Top: 0.0, Width: 0.1, Height: 0.1}},
			{Time: 2, Box: NormalizedBox{Left: 0.1, Top: 0.1, Width: 0.2, Height: 0.2}},
			{Time: 4, Box: NormalizedBox{Left: 0.2, Top: 0.2, Width: 0.3, Height: 0.3}},
		},
	}
}

func TestCurrentBox_OutsideBrackets(t *testing.T) {
	track := testTrack()
	if box := CurrentBox(track, -1, Nearest, testInfo); box != nil {
		t.Fatalf("before first sample: expected nil got %+v", box)
	}
	if box := CurrentBox(track, 5, Nearest, testInfo); box != nil {
		t.Fatalf("after last sample: expected nil got %+v", box)
	}
	if box := CurrentBox(track, 4, Interpolated, testInfo); box != nil {
		t.Fatalf("at last sample: expected nil got %+v", box)
	}
}

func TestCurrentBox_ExactSampleHit(t *testing.T) {
	track := testTrack()
	box := CurrentBox(track, 2, Interpolated, testInfo)
	if box == nil {
		t.Fatal("expected a box at an exact sample time")
	}
	want := PixelBox{X: 10, Y: 10, Width: 20, Height: 20}
	if *box != want {
		t.Fatalf("exact hit drifted: expected %+v got %+v", want, *box)
	}
}

func TestCurrentBox_Nearest(t *testing.T) {
	track := testTrack()
	box := CurrentBox(track, 1.5, Nearest, testInfo)
	if box == nil {
		t.Fatal("expected a box between samples")
	}
	want := PixelBox{X: 0, Y: 0, Width: 10, Height: 10}
	if *box != want {
		t.Fatalf("nearest should hold the previous sample: expected %+v got %+v", want, *box)
	}
}

func TestCurrentBox_Midpoint(t *testing.T) {
	track := &Track{
		Frames: []FrameSample{
			{Time: 0, Box: NormalizedBox{Left: 0.0, Top: 0.0, Width: 0.1, Height: 0.1}},
			{Time: 2, Box: NormalizedBox{Left: 0.1, Top: 0.1, Width: 0.2, Height: 0.2}},
		},
	}
	box := CurrentBox(track, 1, Interpolated, testInfo)
	if box == nil {
		t.Fatal("expected a box at the midpoint")
	}
	want := PixelBox{X: 5, Y: 5, Width: 15, Height: 15}
	if *box != want {
		t.Fatalf("midpoint interpolation: expected %+v got %+v", want, *box)
	}
}

func TestCurrentBox_ZeroGapFallsBackToNearest(t *testing.T) {
	track := &Track{
		Frames: []FrameSample{
			{Time: 1, Box: NormalizedBox{Left: 0.1, Top: 0.1, Width: 0.1, Height: 0.1}},
			{Time: 1, Box: NormalizedBox{Left: 0.5, Top: 0.5, Width: 0.2, Height: 0.2}},
			{Time: 2, Box: NormalizedBox{Left: 0.9, Top: 0.9, Width: 0.1, Height: 0.1}},
		},
	}
	// Between the two simultaneous samples nothing may divide by zero.
	box := CurrentBox(track, 1, Interpolated, testInfo)
	if box == nil {
		t.Fatal("expected a box at the duplicated timestamp")
	}
	want := PixelBox{X: 10, Y: 10, Width: 10, Height: 10}
	if *box != want {
		t.Fatalf("zero-gap bracket: expected nearest fallback %+v got %+v", want, *box)
	}
}

func TestHasSampleNear(t *testing.T) {
	track := testTrack()
	if !HasSampleNear(track, 2.3, 0.5) {
		t.Fatal("expected a sample within 0.5s of 2.3")
	}
	if HasSampleNear(track, 3.0, 0.1) {
		t.Fatal("expected no sample within 0.1s of 3.0")
	}
}
