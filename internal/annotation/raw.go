package annotation

// Wire types for the video-intelligence output JSON. Every nested field
// is optional on the wire; pointers mark the ones whose absence matters.

// RawDocument is the top-level container of an annotation output file.
// AnnotationResults stays nil when the key is absent from the JSON, which
// lets the parse boundary distinguish "missing key" from "empty results".
type RawDocument struct {
	AnnotationResults *[]RawResult `json:"annotation_results"`
}

// RawResult is one annotation-results grouping.
type RawResult struct {
	Segment                  *RawSegment              `json:"segment,omitempty"`
	ShotLabelAnnotations     []RawLabelAnnotation     `json:"shot_label_annotations,omitempty"`
	SegmentLabelAnnotations  []RawLabelAnnotation     `json:"segment_label_annotations,omitempty"`
	LabelAnnotations         []RawLabelAnnotation     `json:"label_annotations,omitempty"`
	ObjectAnnotations        []RawObjectAnnotation    `json:"object_annotations,omitempty"`
	FaceDetectionAnnotations []RawFaceAnnotation      `json:"face_detection_annotations,omitempty"`
	TextAnnotations          []RawTextAnnotation      `json:"text_annotations,omitempty"`
	SpeechTranscriptions     []RawSpeechTranscription `json:"speech_transcriptions,omitempty"`
}

// RawSegment is a time range on the wire.
type RawSegment struct {
	StartTimeOffset *TimeOffset `json:"start_time_offset,omitempty"`
	EndTimeOffset   *TimeOffset `json:"end_time_offset,omitempty"`
}

// RawEntity names a detected entity.
type RawEntity struct {
	Description string `json:"description,omitempty"`
}

// RawLabelSegment is one occurrence of a label.
type RawLabelSegment struct {
	Segment    *RawSegment `json:"segment,omitempty"`
	Confidence float64     `json:"confidence,omitempty"`
}

// RawLabelAnnotation is a label with its occurrences.
type RawLabelAnnotation struct {
	Entity   *RawEntity        `json:"entity,omitempty"`
	Segments []RawLabelSegment `json:"segments,omitempty"`
}

// RawBox is a normalized bounding box on the wire. Some producers emit
// left/top/width/height, others left/top/right/bottom; pointers let the
// normalizer tell which form was present.
type RawBox struct {
	Left   *float64 `json:"left,omitempty"`
	Top    *float64 `json:"top,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
	Right  *float64 `json:"right,omitempty"`
	Bottom *float64 `json:"bottom,omitempty"`
}

// RawObjectFrame is one timestamped detection of a tracked object.
type RawObjectFrame struct {
	TimeOffset            *TimeOffset `json:"time_offset,omitempty"`
	NormalizedBoundingBox *RawBox     `json:"normalized_bounding_box,omitempty"`
}

// RawObjectAnnotation is one tracked object.
type RawObjectAnnotation struct {
	Entity     *RawEntity       `json:"entity,omitempty"`
	Confidence float64          `json:"confidence,omitempty"`
	Segment    *RawSegment      `json:"segment,omitempty"`
	Frames     []RawObjectFrame `json:"frames,omitempty"`
}

// RawAttribute is a named attribute with a confidence (e.g. "smiling").
type RawAttribute struct {
	Name       string  `json:"name,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// RawTimestampedObject is one timestamped detection within a face track.
type RawTimestampedObject struct {
	TimeOffset            *TimeOffset    `json:"time_offset,omitempty"`
	NormalizedBoundingBox *RawBox        `json:"normalized_bounding_box,omitempty"`
	Attributes            []RawAttribute `json:"attributes,omitempty"`
}

// RawFaceTrack is one contiguous appearance of a face.
type RawFaceTrack struct {
	Segment            *RawSegment            `json:"segment,omitempty"`
	Confidence         float64                `json:"confidence,omitempty"`
	Attributes         []RawAttribute         `json:"attributes,omitempty"`
	TimestampedObjects []RawTimestampedObject `json:"timestamped_objects,omitempty"`
}

// RawFaceAnnotation is one detected face with its tracks.
type RawFaceAnnotation struct {
	Tracks    []RawFaceTrack `json:"tracks,omitempty"`
	Thumbnail string         `json:"thumbnail,omitempty"`
}

// RawTextSegment is one occurrence of detected text.
type RawTextSegment struct {
	Segment    *RawSegment `json:"segment,omitempty"`
	Confidence float64     `json:"confidence,omitempty"`
}

// RawTextAnnotation is one piece of detected text with its occurrences.
type RawTextAnnotation struct {
	Text     string           `json:"text,omitempty"`
	Segments []RawTextSegment `json:"segments,omitempty"`
}

// RawWord is one transcribed word with timing.
type RawWord struct {
	Word       string      `json:"word,omitempty"`
	StartTime  *TimeOffset `json:"start_time,omitempty"`
	EndTime    *TimeOffset `json:"end_time,omitempty"`
	SpeakerTag int         `json:"speaker_tag,omitempty"`
}

// RawAlternative is one transcription hypothesis.
type RawAlternative struct {
	Transcript string    `json:"transcript,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	Words      []RawWord `json:"words,omitempty"`
}

// RawSpeechTranscription is one transcribed speech segment.
type RawSpeechTranscription struct {
	Alternatives []RawAlternative `json:"alternatives,omitempty"`
	Segment      *RawSegment      `json:"segment,omitempty"`
}
