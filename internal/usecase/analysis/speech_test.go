package analysis

import (
	"encoding/json"
	"testing"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/call-manager-team/call-manager/internal/annotation"
)

func strPtr(s string) *string   { return &s }
func i64Ptr(v int64) *int64     { return &v }
func f64Ptr(v float64) *float64 { return &v }

func TestMsOffset(t *testing.T) {
	if msOffset(nil) != nil {
		t.Fatal("nil milliseconds should stay nil")
	}
	off := msOffset(i64Ptr(2500))
	if off.Seconds != 2 || off.Nanos != 500_000_000 {
		t.Fatalf("2500ms: got seconds=%d nanos=%d", off.Seconds, off.Nanos)
	}
	if got := annotation.ToSeconds(off); got != 2.5 {
		t.Fatalf("round trip: expected 2.5 got %v", got)
	}
}

func TestSecondsOffset(t *testing.T) {
	off := secondsOffset(61.25)
	if off.Seconds != 61 || off.Nanos != 250_000_000 {
		t.Fatalf("61.25s: got seconds=%d nanos=%d", off.Seconds, off.Nanos)
	}
}

func TestTranscriptToRaw_Utterances(t *testing.T) {
	transcript := &aai.Transcript{
		AudioDuration: f64Ptr(30),
		Utterances: []aai.TranscriptUtterance{
			{
				Text:       strPtr("hello there"),
				Confidence: f64Ptr(0.95),
				Start:      i64Ptr(1000),
				End:        i64Ptr(2000),
				Words: []aai.TranscriptWord{
					{Text: strPtr("hello"), Start: i64Ptr(1000), End: i64Ptr(1400), Speaker: strPtr("B")},
					{Text: strPtr("there"), Start: i64Ptr(1500), End: i64Ptr(2000), Speaker: strPtr("B")},
				},
			},
			{
				Text:  strPtr("hi"),
				Start: i64Ptr(3000),
				End:   i64Ptr(3500),
				Words: []aai.TranscriptWord{
					{Text: strPtr("hi"), Start: i64Ptr(3000), End: i64Ptr(3500), Speaker: strPtr("A")},
				},
			},
		},
	}

	raw := transcriptToRaw(transcript)
	if raw.AnnotationResults == nil || len(*raw.AnnotationResults) != 1 {
		t.Fatal("expected one annotation result")
	}
	result := (*raw.AnnotationResults)[0]
	if len(result.SpeechTranscriptions) != 2 {
		t.Fatalf("expected 2 transcriptions got %d", len(result.SpeechTranscriptions))
	}
	if result.Segment == nil || annotation.ToSeconds(result.Segment.EndTimeOffset) != 30 {
		t.Fatal("expected overall segment from audio duration")
	}

	first := result.SpeechTranscriptions[0].Alternatives[0]
	if first.Transcript != "hello there" || first.Confidence != 0.95 {
		t.Fatalf("unexpected alternative: %+v", first)
	}
	// Speaker tags assigned in order of first appearance, not letter order.
	if first.Words[0].SpeakerTag != 1 {
		t.Fatalf("speaker B should get tag 1, got %d", first.Words[0].SpeakerTag)
	}
	second := result.SpeechTranscriptions[1].Alternatives[0]
	if second.Words[0].SpeakerTag != 2 {
		t.Fatalf("speaker A should get tag 2, got %d", second.Words[0].SpeakerTag)
	}
}

func TestTranscriptToRaw_WordsOnly(t *testing.T) {
	transcript := &aai.Transcript{
		Text:       strPtr("one two"),
		Confidence: f64Ptr(0.8),
		Words: []aai.TranscriptWord{
			{Text: strPtr("one"), Start: i64Ptr(0), End: i64Ptr(400)},
			{Text: strPtr("two"), Start: i64Ptr(500), End: i64Ptr(900)},
		},
	}

	raw := transcriptToRaw(transcript)
	result := (*raw.AnnotationResults)[0]
	if len(result.SpeechTranscriptions) != 1 {
		t.Fatalf("expected a single transcription got %d", len(result.SpeechTranscriptions))
	}
	words := result.SpeechTranscriptions[0].Alternatives[0].Words
	if len(words) != 2 || words[0].Word != "one" || words[0].SpeakerTag != 0 {
		t.Fatalf("unexpected words: %+v", words)
	}
}

// The synthesized payload must survive the same parse path as uploaded
// annotation JSON and come out as speech entities.
func TestTranscriptToRaw_ParsesIntoDocument(t *testing.T) {
	transcript := &aai.Transcript{
		Utterances: []aai.TranscriptUtterance{
			{
				Text:  strPtr("status update from the team"),
				Start: i64Ptr(0),
				End:   i64Ptr(4000),
				Words: []aai.TranscriptWord{
					{Text: strPtr("status"), Start: i64Ptr(0), End: i64Ptr(800), Speaker: strPtr("A")},
					{Text: strPtr("update"), Start: i64Ptr(900), End: i64Ptr(1600), Speaker: strPtr("A")},
					{Text: strPtr("from"), Start: i64Ptr(1700), End: i64Ptr(2100), Speaker: strPtr("A")},
					{Text: strPtr("the"), Start: i64Ptr(2200), End: i64Ptr(2500), Speaker: strPtr("A")},
					{Text: strPtr("team"), Start: i64Ptr(2600), End: i64Ptr(3200), Speaker: strPtr("A")},
				},
			},
		},
	}

	payload, err := json.Marshal(transcriptToRaw(transcript))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	doc, err := annotation.Parse(payload)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	speech := doc.EntitiesOf(annotation.KindSpeech)
	if len(speech) == 0 {
		t.Fatal("expected speech entities")
	}
	if speech[0].Speech == nil || speech[0].Speech.SpeakerTag != 1 {
		t.Fatalf("expected speaker tag 1, got %+v", speech[0].Speech)
	}
	start, end, ok := speech[0].TimeRange()
	if !ok || start != 0 || end != 3.2 {
		t.Fatalf("unexpected time range: %v..%v ok=%v", start, end, ok)
	}
}
