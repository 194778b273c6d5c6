package annotation

import (
	"math"
	"sort"
)

// InterpolationMode selects how CurrentBox estimates a box between
// samples: Nearest holds the previous sample (step function), Interpolated
// blends linearly between the two bracketing samples.
type InterpolationMode int

const (
	Nearest InterpolationMode = iota
	Interpolated
)

// CurrentBox computes the pixel-space bounding box of a track at an
// arbitrary query time. It returns nil when the query falls outside the
// track's sample brackets: an entity is never drawn before its first
// detection, and queryTime at or past the last sample leaves no
// strictly-later bracket.
//
// Frames must be sorted ascending by time, which the normalizer
// guarantees.
func CurrentBox(track *Track, queryTime float64, mode InterpolationMode, info VideoInfo) *PixelBox {
	frames := track.Frames
	// First frame strictly later than the query time.
	i := sort.Search(len(frames), func(n int) bool { return frames[n].Time > queryTime })
	if i == len(frames) || i == 0 {
		return nil
	}

	prev := frames[i-1]
	if mode == Nearest {
		box := prev.Box.ToPixels(info)
		return &box
	}

	next := frames[i]
	span := next.Time - prev.Time
	if span <= 0 {
		// Simultaneous samples leave nothing to interpolate over.
		box := prev.Box.ToPixels(info)
		return &box
	}

	ratio := (queryTime - prev.Time) / span
	a := prev.Box.ToPixels(info)
	b := next.Box.ToPixels(info)
	box := PixelBox{
		X:      lerp(a.X, b.X, ratio),
		Y:      lerp(a.Y, b.Y, ratio),
		Width:  lerp(a.Width, b.Width, ratio),
		Height: lerp(a.Height, b.Height, ratio),
	}
	return &box
}

// HasSampleNear reports whether any frame sample lies within tolerance
// seconds of the query time. Callers choose the tolerance per kind; the
// overlay uses it to skip entities with no detection near the playhead.
func HasSampleNear(track *Track, queryTime, tolerance float64) bool {
	for i := range track.Frames {
		if math.Abs(track.Frames[i].Time-queryTime) < tolerance {
			return true
		}
	}
	return false
}

func lerp(a, b, ratio float64) float64 {
	return a + (b-a)*ratio
}
