package annotation

import (
	"reflect"
	"testing"
)

func TestParse_RejectsInvalidInput(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if _, err := Parse([]byte(`{"something_else": []}`)); err == nil {
		t.Fatal("expected error for missing annotation_results")
	}
	doc, err := Parse([]byte(`{"annotation_results": []}`))
	if err != nil {
		t.Fatalf("empty results should parse: %v", err)
	}
	if len(doc.DetectedKinds()) != 0 {
		t.Fatalf("expected no detected kinds, got %v", doc.DetectedKinds())
	}
}

func TestNormalize_NilInput(t *testing.T) {
	doc := Normalize(nil)
	if doc == nil {
		t.Fatal("expected an empty document, not nil")
	}
	for _, k := range Kinds {
		if len(doc.EntitiesOf(k)) != 0 {
			t.Fatalf("kind %s: expected empty, got %d entities", k, len(doc.EntitiesOf(k)))
		}
	}
}

func TestNormalize_Labels(t *testing.T) {
	data := []byte(`{
		"annotation_results": [{
			"segment": {"end_time_offset": {"seconds": 30}},
			"shot_label_annotations": [{
				"entity": {"description": "whiteboard"},
				"segments": [
					{"segment": {"start_time_offset": {"seconds": 1}, "end_time_offset": {"seconds": 4}}, "confidence": 0.9},
					{"segment": {"start_time_offset": {"seconds": 10}, "end_time_offset": {"seconds": 12}}, "confidence": 0.8}
				]
			}],
			"segment_label_annotations": [{
				"segments": [{"confidence": 0.5}]
			}]
		}]
	}`)
	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	labels := doc.EntitiesOf(KindLabel)
	if len(labels) != 3 {
		t.Fatalf("expected 3 label entities got %d", len(labels))
	}
	if labels[0].Description != "whiteboard" || labels[0].Confidence != 0.9 {
		t.Fatalf("unexpected first label: %+v", labels[0])
	}
	start, end, ok := labels[1].TimeRange()
	if !ok || start != 10 || end != 12 {
		t.Fatalf("unexpected second label range: %v %v %v", start, end, ok)
	}
	if labels[2].Description != "Unknown" {
		t.Fatalf("missing entity should fall back to Unknown, got %q", labels[2].Description)
	}
	if doc.SegmentEnd != 30 {
		t.Fatalf("expected segment end 30 got %v", doc.SegmentEnd)
	}
}

func TestNormalize_ObjectWithoutFrames(t *testing.T) {
	data := []byte(`{
		"annotation_results": [{
			"object_annotations": [{"entity": {"description": "laptop"}, "confidence": 0.7}]
		}]
	}`)
	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	objects := doc.EntitiesOf(KindObject)
	if len(objects) != 1 {
		t.Fatalf("expected 1 object entity got %d", len(objects))
	}
	if len(objects[0].Tracks) != 0 {
		t.Fatalf("frameless object should have no tracks, got %d", len(objects[0].Tracks))
	}
	if objects[0].HasSpatialTracks() {
		t.Fatal("frameless object must not report spatial tracks")
	}
}

func TestNormalize_ObjectFramesSortedAndConverted(t *testing.T) {
	data := []byte(`{
		"annotation_results": [{
			"object_annotations": [{
				"entity": {"description": "cup"},
				"confidence": 0.85,
				"frames": [
					{"time_offset": {"seconds": 2}, "normalized_bounding_box": {"left": 0.2, "top": 0.2, "right": 0.4, "bottom": 0.5}},
					{"time_offset": {"seconds": 1}, "normalized_bounding_box": {"left": 0.1, "top": 0.1, "width": 0.2, "height": 0.3}}
				]
			}]
		}]
	}`)
	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	obj := doc.EntitiesOf(KindObject)[0]
	if len(obj.Tracks) != 1 {
		t.Fatalf("expected 1 track got %d", len(obj.Tracks))
	}
	track := obj.Tracks[0]
	if track.StartTime != 1 || track.EndTime != 2 {
		t.Fatalf("track bounds should come from sorted frames: %+v", track)
	}
	if track.Frames[0].Time != 1 {
		t.Fatalf("frames not sorted: %+v", track.Frames)
	}
	// right/bottom box converts to width/height.
	second := track.Frames[1].Box
	if second.Width != 0.2 || !floatNear(second.Height, 0.3) {
		t.Fatalf("right/bottom conversion wrong: %+v", second)
	}
}

func TestNormalize_FacesNamedByIndex(t *testing.T) {
	data := []byte(`{
		"annotation_results": [{
			"face_detection_annotations": [
				{"tracks": [{
					"segment": {"start_time_offset": {"seconds": 1}, "end_time_offset": {"seconds": 3}},
					"confidence": 0.95,
					"timestamped_objects": [
						{"time_offset": {"seconds": 1}, "normalized_bounding_box": {"left": 0.3, "top": 0.3, "width": 0.1, "height": 0.1}, "attributes": [{"name": "glasses", "confidence": 0.8}]}
					]
				}]},
				{"tracks": [{"segment": {"start_time_offset": {"seconds": 5}, "end_time_offset": {"seconds": 6}}, "confidence": 0.6}]}
			]
		}]
	}`)
	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	faces := doc.EntitiesOf(KindFace)
	if len(faces) != 2 {
		t.Fatalf("expected 2 faces got %d", len(faces))
	}
	if faces[0].Description != "Face 1" || faces[1].Description != "Face 2" {
		t.Fatalf("faces not named by index: %q %q", faces[0].Description, faces[1].Description)
	}
	if faces[0].Confidence != 0.95 {
		t.Fatalf("face confidence should be the max track confidence, got %v", faces[0].Confidence)
	}
	if got := faces[0].Tracks[0].Frames[0].Attributes["glasses"]; got != 0.8 {
		t.Fatalf("attributes not carried: got %v", got)
	}
	// Second face has no frames but a segment: track bounds from segment.
	if faces[1].Tracks[0].StartTime != 5 || faces[1].Tracks[0].EndTime != 6 {
		t.Fatalf("segment-only face track bounds wrong: %+v", faces[1].Tracks[0])
	}
}

func TestGroupWords_PauseSplitsChunks(t *testing.T) {
	words := []Word{
		{Word: "hello", StartTime: 0.0, EndTime: 0.5, SpeakerTag: 1},
		{Word: "there", StartTime: 0.6, EndTime: 1.0, SpeakerTag: 1},
		{Word: "later", StartTime: 2.5, EndTime: 3.0, SpeakerTag: 1},
	}
	chunks := GroupWords(words)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks got %d: %+v", len(chunks), chunks)
	}
	if chunks[0].Speech.Text != "hello there" {
		t.Fatalf("first chunk text %q", chunks[0].Speech.Text)
	}
	if chunks[1].Speech.Text != "later" {
		t.Fatalf("second chunk text %q", chunks[1].Speech.Text)
	}
}

func TestGroupWords_SpeakerChangeSplitsChunks(t *testing.T) {
	words := []Word{
		{Word: "hi", StartTime: 0.0, EndTime: 0.4, SpeakerTag: 1, Confidence: 0.8},
		{Word: "all", StartTime: 0.5, EndTime: 0.9, SpeakerTag: 1, Confidence: 0.6},
		{Word: "hey", StartTime: 1.0, EndTime: 1.4, SpeakerTag: 2, Confidence: 0.9},
	}
	chunks := GroupWords(words)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks got %d", len(chunks))
	}
	if chunks[0].Speech.SpeakerTag != 1 || chunks[1].Speech.SpeakerTag != 2 {
		t.Fatalf("speaker tags wrong: %d %d", chunks[0].Speech.SpeakerTag, chunks[1].Speech.SpeakerTag)
	}
	if !floatNear(chunks[0].Confidence, 0.7) {
		t.Fatalf("chunk confidence should average word confidences, got %v", chunks[0].Confidence)
	}
}

func TestNormalize_SpeechTranscriptFallback(t *testing.T) {
	data := []byte(`{
		"annotation_results": [{
			"speech_transcriptions": [{
				"segment": {"start_time_offset": {"seconds": 2}, "end_time_offset": {"seconds": 8}},
				"alternatives": [{"transcript": "full transcript without word timing", "confidence": 0.9}]
			}]
		}]
	}`)
	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	speech := doc.EntitiesOf(KindSpeech)
	if len(speech) != 1 {
		t.Fatalf("expected 1 speech entity got %d", len(speech))
	}
	if speech[0].Speech.Text != "full transcript without word timing" {
		t.Fatalf("unexpected text %q", speech[0].Speech.Text)
	}
	start, end, _ := speech[0].TimeRange()
	if start != 2 || end != 8 {
		t.Fatalf("pseudo-word should span the transcript segment: %v %v", start, end)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	data := []byte(`{
		"annotation_results": [{
			"segment": {"end_time_offset": {"seconds": 20}},
			"object_annotations": [{
				"entity": {"description": "chair"},
				"confidence": 0.6,
				"frames": [{"time_offset": {"seconds": 3}, "normalized_bounding_box": {"left": 0.1, "top": 0.1, "width": 0.1, "height": 0.1}}]
			}],
			"speech_transcriptions": [{
				"alternatives": [{"confidence": 0.9, "words": [
					{"word": "ok", "start_time": {"seconds": 1}, "end_time": {"nanos": 1500000000}, "speaker_tag": 1}
				]}]
			}]
		}]
	}`)
	first, err := Parse(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	second, err := Parse(data)
	if err != nil {
		t.Fatalf("second parse failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("normalize is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func floatNear(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
