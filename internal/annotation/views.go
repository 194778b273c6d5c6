package annotation

import (
	"sort"
	"strings"
)

// ViewItem is one row in a per-kind annotation list: what was seen,
// how confident the detector was, and where to seek to.
type ViewItem struct {
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	StartTime   float64 `json:"start_time"`
	EndTime     float64 `json:"end_time"`
	SpeakerTag  int     `json:"speaker_tag,omitempty"`
	Thumbnail   string  `json:"thumbnail,omitempty"`
}

// ViewFilter narrows and orders a kind's list. Zero value means no
// filtering, sorted by start time.
type ViewFilter struct {
	Search        string
	MinConfidence float64
	SortBy        ViewSort
}

type ViewSort string

const (
	SortByTime       ViewSort = "time"
	SortByConfidence ViewSort = "confidence"
)

// View renders one kind's entities as a flat, seekable list. Entities
// whose time range cannot be determined are dropped, matching the
// empty-state behavior of the overlay.
func View(doc *Document, kind Kind, filter ViewFilter) []ViewItem {
	entities := doc.EntitiesOf(kind)
	items := make([]ViewItem, 0, len(entities))
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	for i := range entities {
		e := &entities[i]
		if e.Confidence < filter.MinConfidence {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(e.Description), search) {
			continue
		}
		start, end, ok := e.TimeRange()
		if !ok {
			continue
		}
		item := ViewItem{
			Description: e.Description,
			Confidence:  e.Confidence,
			StartTime:   start,
			EndTime:     end,
			Thumbnail:   e.Thumbnail,
		}
		if e.Speech != nil {
			item.SpeakerTag = e.Speech.SpeakerTag
		}
		items = append(items, item)
	}

	switch filter.SortBy {
	case SortByConfidence:
		sort.SliceStable(items, func(a, b int) bool { return items[a].Confidence > items[b].Confidence })
	default:
		sort.SliceStable(items, func(a, b int) bool { return items[a].StartTime < items[b].StartTime })
	}
	return items
}

// Misaligned reports whether the video duration and the document's
// overall segment end differ by more than tolerance seconds. Surfaced
// to the user as a warning, never an error.
func Misaligned(doc *Document, info VideoInfo, tolerance float64) bool {
	if doc.SegmentEnd <= 0 || info.Duration <= 0 {
		return false
	}
	diff := doc.SegmentEnd - info.Duration
	if diff < 0 {
		diff = -diff
	}
	return diff > tolerance
}
