package annotation

// Kind identifies one family of video-intelligence annotations.
type Kind string

const (
	KindLabel  Kind = "label"
	KindObject Kind = "object"
	KindFace   Kind = "face"
	KindText   Kind = "text"
	KindSpeech Kind = "speech"
)

// Kinds lists all annotation kinds in display order.
var Kinds = []Kind{KindLabel, KindObject, KindFace, KindText, KindSpeech}

// IsValid reports whether k is a known annotation kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindLabel, KindObject, KindFace, KindText, KindSpeech:
		return true
	}
	return false
}

// NormalizedBox is a bounding box expressed as fractions of the frame
// dimensions, all values in [0, 1].
type NormalizedBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PixelBox is a bounding box in pixel space, scaled against the video's
// intrinsic dimensions (not the display dimensions, which may differ).
type PixelBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ToPixels scales a normalized box against the video's intrinsic size.
func (b NormalizedBox) ToPixels(info VideoInfo) PixelBox {
	return PixelBox{
		X:      b.Left * float64(info.Width),
		Y:      b.Top * float64(info.Height),
		Width:  b.Width * float64(info.Width),
		Height: b.Height * float64(info.Height),
	}
}

// FrameSample is one observed detection at one instant within a track.
type FrameSample struct {
	Time       float64            `json:"time"`
	Box        NormalizedBox      `json:"box"`
	Attributes map[string]float64 `json:"attributes,omitempty"`
}

// Track is a time-bounded sequence of frame samples for one entity
// instance. Frames are sorted by time ascending; ties are permitted and
// treated as simultaneous samples. When frames are present, StartTime and
// EndTime equal the first and last frame times.
type Track struct {
	StartTime  float64       `json:"start_time"`
	EndTime    float64       `json:"end_time"`
	Confidence float64       `json:"confidence"`
	Frames     []FrameSample `json:"frames,omitempty"`
}

// HasFrames reports whether the track carries any spatial samples.
func (t *Track) HasFrames() bool {
	return len(t.Frames) > 0
}

// Word is a single transcribed word with timing and speaker metadata.
type Word struct {
	Word       string  `json:"word"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	Confidence float64 `json:"confidence"`
	SpeakerTag int     `json:"speaker_tag,omitempty"`
}

// SpeechChunk carries the speech-only payload of an entity: the grouped
// sentence text, its words, and the speaker tag the group belongs to.
type SpeechChunk struct {
	Text       string `json:"text"`
	SpeakerTag int    `json:"speaker_tag"`
	Words      []Word `json:"words,omitempty"`
}

// Entity is a detected thing: a label, a tracked object, a face, a text
// occurrence, or a speech segment. An entity owns its tracks exclusively;
// tracks own their frame samples exclusively.
type Entity struct {
	Kind        Kind         `json:"kind"`
	Description string       `json:"description"`
	Confidence  float64      `json:"confidence"`
	Tracks      []Track      `json:"tracks"`
	Speech      *SpeechChunk `json:"speech,omitempty"`
	Thumbnail   string       `json:"thumbnail,omitempty"`
}

// TimeRange returns the aggregate [start, end] across the entity's tracks
// (min start, max end). ok is false when the entity has no tracks.
func (e *Entity) TimeRange() (start, end float64, ok bool) {
	if len(e.Tracks) == 0 {
		return 0, 0, false
	}
	start = e.Tracks[0].StartTime
	end = e.Tracks[0].EndTime
	for _, tr := range e.Tracks[1:] {
		if tr.StartTime < start {
			start = tr.StartTime
		}
		if tr.EndTime > end {
			end = tr.EndTime
		}
	}
	return start, end, true
}

// HasSpatialTracks reports whether any track carries bounding boxes.
func (e *Entity) HasSpatialTracks() bool {
	for i := range e.Tracks {
		if e.Tracks[i].HasFrames() {
			return true
		}
	}
	return false
}

// Document is the normalized annotation document: per-kind flat entity
// collections plus the overall segment bounds reported by the analysis.
// A Document is immutable after construction; re-loading an annotation
// file produces a fresh Document that replaces the old one wholesale.
type Document struct {
	Entities     map[Kind][]Entity `json:"entities"`
	SegmentStart float64           `json:"segment_start"`
	SegmentEnd   float64           `json:"segment_end"`
}

// EmptyDocument returns a document with every kind present and empty.
func EmptyDocument() *Document {
	entities := make(map[Kind][]Entity, len(Kinds))
	for _, k := range Kinds {
		entities[k] = nil
	}
	return &Document{Entities: entities}
}

// EntitiesOf returns the entities of one kind. Missing kinds yield an
// empty slice, never an error: an empty kind is an empty-state render.
func (d *Document) EntitiesOf(kind Kind) []Entity {
	if d == nil {
		return nil
	}
	return d.Entities[kind]
}

// DetectedKinds returns the kinds for which at least one entity exists.
func (d *Document) DetectedKinds() []Kind {
	var detected []Kind
	for _, k := range Kinds {
		if len(d.Entities[k]) > 0 {
			detected = append(detected, k)
		}
	}
	return detected
}

// VideoInfo holds the intrinsic pixel dimensions and duration of the
// loaded video, populated once its metadata resolves. The zero value is a
// valid placeholder; consumers must tolerate it until metadata loads.
type VideoInfo struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Duration float64 `json:"duration_seconds"`
}

// Valid reports whether the metadata has resolved to usable dimensions.
func (v VideoInfo) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

// DisplaySegment is a coalesced time range for the summary timeline
// strip. It carries no confidence or identity information.
type DisplaySegment struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}
