package annotation

import "testing"

func TestToSeconds(t *testing.T) {
	if got := ToSeconds(nil); got != 0.0 {
		t.Fatalf("nil offset: expected 0.0 got %v", got)
	}
	if got := ToSeconds(&TimeOffset{Seconds: 5}); got != 5.0 {
		t.Fatalf("seconds only: expected 5.0 got %v", got)
	}
	if got := ToSeconds(&TimeOffset{Seconds: 5, Nanos: 500_000_000}); got != 5.5 {
		t.Fatalf("seconds+nanos: expected 5.5 got %v", got)
	}
	if got := ToSeconds(&TimeOffset{Nanos: 250_000_000}); got != 0.25 {
		t.Fatalf("nanos only: expected 0.25 got %v", got)
	}
	if got := ToSeconds(&TimeOffset{}); got != 0.0 {
		t.Fatalf("zero offset: expected 0.0 got %v", got)
	}
}
