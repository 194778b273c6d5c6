package annotation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Fallback descriptions for annotations that arrive without one.
const (
	fallbackLabel  = "Unknown"
	fallbackObject = "Unknown Object"
	fallbackText   = "Unknown Text"
)

// Speech word grouping thresholds: a new chunk starts when the speaker
// changes, when the silence since the previous word exceeds the pause
// threshold, or when the accumulated chunk text grows past the length
// threshold.
const (
	speechPauseSeconds   = 1.0
	speechMaxChunkLength = 150
)

// Parse decodes an annotation output file and normalizes it into a
// Document. It fails only at the boundary: invalid JSON, or a document
// that lacks the top-level annotation_results key entirely.
func Parse(data []byte) (*Document, error) {
	var raw RawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid annotation JSON: %w", err)
	}
	if raw.AnnotationResults == nil {
		return nil, fmt.Errorf("annotation JSON missing annotation_results key")
	}
	return Normalize(&raw), nil
}

// Normalize walks a raw annotation document and produces the canonical
// Document. It is total: missing nested structures yield entities with
// empty track lists, and a nil input yields an empty document.
func Normalize(raw *RawDocument) *Document {
	doc := EmptyDocument()
	if raw == nil || raw.AnnotationResults == nil {
		return doc
	}

	var words []Word
	segmentSeen := false
	for _, result := range *raw.AnnotationResults {
		if result.Segment != nil {
			start := ToSeconds(result.Segment.StartTimeOffset)
			end := ToSeconds(result.Segment.EndTimeOffset)
			if !segmentSeen || start < doc.SegmentStart {
				doc.SegmentStart = start
			}
			if end > doc.SegmentEnd {
				doc.SegmentEnd = end
			}
			segmentSeen = true
		}

		doc.Entities[KindLabel] = append(doc.Entities[KindLabel], normalizeLabels(result.ShotLabelAnnotations)...)
		doc.Entities[KindLabel] = append(doc.Entities[KindLabel], normalizeLabels(result.SegmentLabelAnnotations)...)
		doc.Entities[KindLabel] = append(doc.Entities[KindLabel], normalizeLabels(result.LabelAnnotations)...)

		for _, obj := range result.ObjectAnnotations {
			doc.Entities[KindObject] = append(doc.Entities[KindObject], normalizeObject(obj))
		}
		for _, face := range result.FaceDetectionAnnotations {
			index := len(doc.Entities[KindFace]) + 1
			doc.Entities[KindFace] = append(doc.Entities[KindFace], normalizeFace(face, index))
		}
		for _, text := range result.TextAnnotations {
			doc.Entities[KindText] = append(doc.Entities[KindText], normalizeText(text)...)
		}
		words = append(words, collectWords(result.SpeechTranscriptions)...)
	}

	sort.SliceStable(words, func(i, j int) bool { return words[i].StartTime < words[j].StartTime })
	doc.Entities[KindSpeech] = GroupWords(words)

	return doc
}

// normalizeLabels flattens label annotations into one entity per
// (label, occurrence) pair, the granularity the views and the timeline
// strip operate on.
func normalizeLabels(labels []RawLabelAnnotation) []Entity {
	var out []Entity
	for _, label := range labels {
		description := fallbackLabel
		if label.Entity != nil && label.Entity.Description != "" {
			description = label.Entity.Description
		}
		for _, seg := range label.Segments {
			var start, end float64
			if seg.Segment != nil {
				start = ToSeconds(seg.Segment.StartTimeOffset)
				end = ToSeconds(seg.Segment.EndTimeOffset)
			}
			out = append(out, Entity{
				Kind:        KindLabel,
				Description: description,
				Confidence:  seg.Confidence,
				Tracks: []Track{{
					StartTime:  start,
					EndTime:    end,
					Confidence: seg.Confidence,
				}},
			})
		}
	}
	return out
}

// normalizeObject builds one entity per tracked object. An annotation
// with no frames yields an entity with an empty track list rather than
// an error.
func normalizeObject(obj RawObjectAnnotation) Entity {
	description := fallbackObject
	if obj.Entity != nil && obj.Entity.Description != "" {
		description = obj.Entity.Description
	}
	entity := Entity{
		Kind:        KindObject,
		Description: description,
		Confidence:  obj.Confidence,
	}

	frames := make([]FrameSample, 0, len(obj.Frames))
	for _, frame := range obj.Frames {
		frames = append(frames, FrameSample{
			Time: ToSeconds(frame.TimeOffset),
			Box:  normalizeBox(frame.NormalizedBoundingBox),
		})
	}
	if track, ok := buildTrack(frames, obj.Segment, obj.Confidence); ok {
		entity.Tracks = []Track{track}
	}
	return entity
}

// normalizeFace builds one entity per detected face, keeping one track
// per raw track. Faces carry no wire description, so they are named by
// their position in the document.
func normalizeFace(face RawFaceAnnotation, index int) Entity {
	entity := Entity{
		Kind:        KindFace,
		Description: fmt.Sprintf("Face %d", index),
		Thumbnail:   face.Thumbnail,
	}
	for _, raw := range face.Tracks {
		frames := make([]FrameSample, 0, len(raw.TimestampedObjects))
		for _, obj := range raw.TimestampedObjects {
			frames = append(frames, FrameSample{
				Time:       ToSeconds(obj.TimeOffset),
				Box:        normalizeBox(obj.NormalizedBoundingBox),
				Attributes: attributeMap(obj.Attributes),
			})
		}
		track, ok := buildTrack(frames, raw.Segment, raw.Confidence)
		if !ok && raw.Segment == nil {
			continue
		}
		entity.Tracks = append(entity.Tracks, track)
		if raw.Confidence > entity.Confidence {
			entity.Confidence = raw.Confidence
		}
	}
	return entity
}

// normalizeText flattens text annotations into one entity per occurrence.
func normalizeText(text RawTextAnnotation) []Entity {
	description := text.Text
	if description == "" {
		description = fallbackText
	}
	var out []Entity
	for _, seg := range text.Segments {
		var start, end float64
		if seg.Segment != nil {
			start = ToSeconds(seg.Segment.StartTimeOffset)
			end = ToSeconds(seg.Segment.EndTimeOffset)
		}
		out = append(out, Entity{
			Kind:        KindText,
			Description: description,
			Confidence:  seg.Confidence,
			Tracks: []Track{{
				StartTime:  start,
				EndTime:    end,
				Confidence: seg.Confidence,
			}},
		})
	}
	return out
}

// collectWords gathers word-level timings from the first alternative of
// each transcription. A transcription with no word timing degrades to a
// single pseudo-word spanning the whole transcript segment.
func collectWords(transcriptions []RawSpeechTranscription) []Word {
	var words []Word
	for _, tr := range transcriptions {
		if len(tr.Alternatives) == 0 {
			continue
		}
		// First alternative is the most likely hypothesis.
		alt := tr.Alternatives[0]
		if len(alt.Words) > 0 {
			for _, w := range alt.Words {
				words = append(words, Word{
					Word:       w.Word,
					StartTime:  ToSeconds(w.StartTime),
					EndTime:    ToSeconds(w.EndTime),
					Confidence: alt.Confidence,
					SpeakerTag: w.SpeakerTag,
				})
			}
			continue
		}
		if alt.Transcript == "" {
			continue
		}
		var start, end float64
		if tr.Segment != nil {
			start = ToSeconds(tr.Segment.StartTimeOffset)
			end = ToSeconds(tr.Segment.EndTimeOffset)
		}
		words = append(words, Word{
			Word:       alt.Transcript,
			StartTime:  start,
			EndTime:    end,
			Confidence: alt.Confidence,
		})
	}
	return words
}

// GroupWords groups time-sorted words into sentence-like speech entities.
// A new chunk starts when the speaker tag changes, when the gap since the
// previous word's end exceeds speechPauseSeconds, or when the accumulated
// chunk text exceeds speechMaxChunkLength characters.
func GroupWords(words []Word) []Entity {
	if len(words) == 0 {
		return nil
	}

	var entities []Entity
	var current []Word
	var text strings.Builder

	flush := func() {
		if len(current) == 0 {
			return
		}
		sum := 0.0
		for _, w := range current {
			sum += w.Confidence
		}
		chunkWords := make([]Word, len(current))
		copy(chunkWords, current)
		entities = append(entities, Entity{
			Kind:        KindSpeech,
			Description: text.String(),
			Confidence:  sum / float64(len(current)),
			Tracks: []Track{{
				StartTime:  current[0].StartTime,
				EndTime:    current[len(current)-1].EndTime,
				Confidence: sum / float64(len(current)),
			}},
			Speech: &SpeechChunk{
				Text:       text.String(),
				SpeakerTag: current[0].SpeakerTag,
				Words:      chunkWords,
			},
		})
		current = current[:0]
		text.Reset()
	}

	for _, w := range words {
		if len(current) > 0 {
			prev := current[len(current)-1]
			newSpeaker := w.SpeakerTag != current[0].SpeakerTag
			pause := w.StartTime-prev.EndTime > speechPauseSeconds
			if newSpeaker || pause || text.Len() > speechMaxChunkLength {
				flush()
			}
		}
		if text.Len() > 0 {
			text.WriteByte(' ')
		}
		text.WriteString(w.Word)
		current = append(current, w)
	}
	flush()

	return entities
}

// normalizeBox converts a wire box into the canonical left/top/width/
// height form. Absent fields default to 0; a right/bottom box is
// converted to width/height.
func normalizeBox(raw *RawBox) NormalizedBox {
	if raw == nil {
		return NormalizedBox{}
	}
	box := NormalizedBox{}
	if raw.Left != nil {
		box.Left = *raw.Left
	}
	if raw.Top != nil {
		box.Top = *raw.Top
	}
	switch {
	case raw.Width != nil:
		box.Width = *raw.Width
	case raw.Right != nil:
		box.Width = *raw.Right - box.Left
	}
	switch {
	case raw.Height != nil:
		box.Height = *raw.Height
	case raw.Bottom != nil:
		box.Height = *raw.Bottom - box.Top
	}
	return box
}

// buildTrack assembles a track from frames, sorting them by time and
// deriving start/end from the first and last sample. When no frames are
// present the wire segment bounds are used instead; ok is false when
// neither frames nor a segment exist.
func buildTrack(frames []FrameSample, segment *RawSegment, confidence float64) (Track, bool) {
	if len(frames) == 0 {
		if segment == nil {
			return Track{}, false
		}
		return Track{
			StartTime:  ToSeconds(segment.StartTimeOffset),
			EndTime:    ToSeconds(segment.EndTimeOffset),
			Confidence: confidence,
		}, true
	}
	sort.SliceStable(frames, func(i, j int) bool { return frames[i].Time < frames[j].Time })
	return Track{
		StartTime:  frames[0].Time,
		EndTime:    frames[len(frames)-1].Time,
		Confidence: confidence,
		Frames:     frames,
	}, true
}

// attributeMap flattens wire attributes into a name→confidence map.
func attributeMap(attrs []RawAttribute) map[string]float64 {
	if len(attrs) == 0 {
		return nil
	}
	m := make(map[string]float64, len(attrs))
	for _, a := range attrs {
		m[a.Name] = a.Confidence
	}
	return m
}
