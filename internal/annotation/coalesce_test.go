package annotation

import "testing"

func rangeEntity(start, end float64) Entity {
	return Entity{
		Kind:   KindLabel,
		Tracks: []Track{{StartTime: start, EndTime: end}},
	}
}

func TestCoalesce_OverlappingRanges(t *testing.T) {
	entities := []Entity{
		rangeEntity(0, 5),
		rangeEntity(3, 8),
		rangeEntity(10, 12),
	}
	segments := Coalesce(entities)
	want := []DisplaySegment{{StartTime: 0, EndTime: 8}, {StartTime: 10, EndTime: 12}}
	if len(segments) != len(want) {
		t.Fatalf("expected %d segments got %d: %+v", len(want), len(segments), segments)
	}
	for i := range want {
		if segments[i] != want[i] {
			t.Fatalf("segment %d: expected %+v got %+v", i, want[i], segments[i])
		}
	}
}

func TestCoalesce_SkipsEntitiesWithoutTracks(t *testing.T) {
	entities := []Entity{
		{Kind: KindObject},
		rangeEntity(1, 2),
	}
	segments := Coalesce(entities)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment got %d", len(segments))
	}
	if segments[0] != (DisplaySegment{StartTime: 1, EndTime: 2}) {
		t.Fatalf("unexpected segment %+v", segments[0])
	}
}

func TestCoalesce_OrderDependence(t *testing.T) {
	// The greedy merge keeps the out-of-order result; the sorted merge
	// collapses the same input into one minimal segment.
	entities := []Entity{
		rangeEntity(5, 6),
		rangeEntity(0, 10),
	}
	greedy := Coalesce(entities)
	if len(greedy) != 2 {
		t.Fatalf("greedy: expected 2 segments got %d: %+v", len(greedy), greedy)
	}
	sorted := CoalesceSorted(entities)
	if len(sorted) != 1 {
		t.Fatalf("sorted: expected 1 segment got %d: %+v", len(sorted), sorted)
	}
	if sorted[0] != (DisplaySegment{StartTime: 0, EndTime: 10}) {
		t.Fatalf("sorted: unexpected segment %+v", sorted[0])
	}
}

func TestCoalesceWith_DispatchesOnStrategy(t *testing.T) {
	entities := []Entity{
		rangeEntity(5, 6),
		rangeEntity(0, 10),
	}
	if got := CoalesceWith(entities, StrategySorted); len(got) != 1 {
		t.Fatalf("sorted strategy: expected 1 segment got %d", len(got))
	}
	if got := CoalesceWith(entities, StrategyGreedy); len(got) != 2 {
		t.Fatalf("greedy strategy: expected 2 segments got %d", len(got))
	}
	// Unknown strategies fall back to greedy.
	if got := CoalesceWith(entities, CoalesceStrategy("bogus")); len(got) != 2 {
		t.Fatalf("unknown strategy: expected greedy result, got %d segments", len(got))
	}
}
