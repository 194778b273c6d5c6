package annotation

// TimeOffset mirrors the wire representation of a point in time in the
// annotation JSON: whole seconds plus a fractional part in nanoseconds.
// Both fields are optional on the wire, so the zero value is meaningful.
type TimeOffset struct {
	Seconds int64 `json:"seconds,omitempty"`
	Nanos   int64 `json:"nanos,omitempty"`
}

// ToSeconds converts a TimeOffset to a single float64 seconds value.
// It is total: a nil offset or missing fields canonicalize to 0 rather
// than producing an error.
func ToSeconds(offset *TimeOffset) float64 {
	if offset == nil {
		return 0
	}
	return float64(offset.Seconds) + float64(offset.Nanos)/1e9
}
