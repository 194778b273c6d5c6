package annotation

import "sort"

// CoalesceStrategy picks how entity time ranges merge into display
// segments for the summary strip.
type CoalesceStrategy string

const (
	// StrategyGreedy processes entities in input order and forward-merges
	// each range into the first open segment whose end extends past the
	// range's start. The result depends on input order and is not
	// guaranteed minimal when entities arrive out of time order. This is
	// the default because it preserves the grouping behavior downstream
	// consumers already render.
	StrategyGreedy CoalesceStrategy = "greedy"

	// StrategySorted sorts ranges by start time first and produces the
	// minimal set of non-overlapping segments.
	StrategySorted CoalesceStrategy = "sorted"
)

func (s CoalesceStrategy) IsValid() bool {
	return s == StrategyGreedy || s == StrategySorted
}

// Coalesce merges entity time ranges into display segments using the
// greedy forward-merge. Entities without a usable time range are skipped.
func Coalesce(entities []Entity) []DisplaySegment {
	segments := make([]DisplaySegment, 0, len(entities))
	for i := range entities {
		start, end, ok := entities[i].TimeRange()
		if !ok {
			continue
		}
		merged := false
		for j := range segments {
			if segments[j].EndTime > start {
				if end > segments[j].EndTime {
					segments[j].EndTime = end
				}
				merged = true
				break
			}
		}
		if !merged {
			segments = append(segments, DisplaySegment{StartTime: start, EndTime: end})
		}
	}
	return segments
}

// CoalesceSorted merges entity time ranges into the minimal set of
// non-overlapping segments, independent of input order.
func CoalesceSorted(entities []Entity) []DisplaySegment {
	ranges := make([]DisplaySegment, 0, len(entities))
	for i := range entities {
		start, end, ok := entities[i].TimeRange()
		if !ok {
			continue
		}
		ranges = append(ranges, DisplaySegment{StartTime: start, EndTime: end})
	}
	sort.Slice(ranges, func(a, b int) bool { return ranges[a].StartTime < ranges[b].StartTime })

	segments := make([]DisplaySegment, 0, len(ranges))
	for _, r := range ranges {
		n := len(segments)
		if n > 0 && segments[n-1].EndTime >= r.StartTime {
			if r.EndTime > segments[n-1].EndTime {
				segments[n-1].EndTime = r.EndTime
			}
			continue
		}
		segments = append(segments, r)
	}
	return segments
}

// CoalesceWith dispatches on strategy, defaulting to greedy for any
// unrecognized value.
func CoalesceWith(entities []Entity, strategy CoalesceStrategy) []DisplaySegment {
	if strategy == StrategySorted {
		return CoalesceSorted(entities)
	}
	return Coalesce(entities)
}
