package annotation

import "testing"

func viewsDocument() *Document {
	doc := EmptyDocument()
	doc.Entities[KindLabel] = []Entity{
		{Kind: KindLabel, Description: "whiteboard", Confidence: 0.9, Tracks: []Track{{StartTime: 4, EndTime: 6}}},
		{Kind: KindLabel, Description: "laptop", Confidence: 0.4, Tracks: []Track{{StartTime: 1, EndTime: 2}}},
		{Kind: KindLabel, Description: "desk lamp", Confidence: 0.7, Tracks: []Track{{StartTime: 8, EndTime: 9}}},
		{Kind: KindLabel, Description: "trackless", Confidence: 0.99},
	}
	doc.SegmentEnd = 60
	return doc
}

func TestView_SortsByStartTime(t *testing.T) {
	items := View(viewsDocument(), KindLabel, ViewFilter{})
	if len(items) != 3 {
		t.Fatalf("expected 3 items got %d", len(items))
	}
	if items[0].Description != "laptop" || items[2].Description != "desk lamp" {
		t.Fatalf("items not sorted by start time: %+v", items)
	}
}

func TestView_MinConfidenceAndSearch(t *testing.T) {
	items := View(viewsDocument(), KindLabel, ViewFilter{MinConfidence: 0.5})
	if len(items) != 2 {
		t.Fatalf("confidence filter: expected 2 items got %d", len(items))
	}
	items = View(viewsDocument(), KindLabel, ViewFilter{Search: "LAMP"})
	if len(items) != 1 || items[0].Description != "desk lamp" {
		t.Fatalf("search should be case-insensitive: %+v", items)
	}
}

func TestView_SortByConfidence(t *testing.T) {
	items := View(viewsDocument(), KindLabel, ViewFilter{SortBy: SortByConfidence})
	if items[0].Description != "whiteboard" {
		t.Fatalf("expected highest confidence first, got %+v", items[0])
	}
}

func TestView_EmptyKind(t *testing.T) {
	items := View(viewsDocument(), KindText, ViewFilter{})
	if len(items) != 0 {
		t.Fatalf("empty kind should yield an empty list, got %+v", items)
	}
}

func TestMisaligned(t *testing.T) {
	doc := viewsDocument()
	if Misaligned(doc, VideoInfo{Width: 100, Height: 100, Duration: 59}, 2.0) {
		t.Fatal("1s difference within tolerance flagged as misaligned")
	}
	if !Misaligned(doc, VideoInfo{Width: 100, Height: 100, Duration: 55}, 2.0) {
		t.Fatal("5s difference should be misaligned")
	}
	if Misaligned(doc, VideoInfo{}, 2.0) {
		t.Fatal("unresolved metadata must not warn")
	}
}
