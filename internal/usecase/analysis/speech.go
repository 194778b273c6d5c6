package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/call-manager-team/call-manager/internal/annotation"
	"github.com/call-manager-team/call-manager/internal/domain/entities"
	usecaseErrors "github.com/call-manager-team/call-manager/internal/usecase/errors"
)

// StartTranscription creates an analysis whose annotation document will
// be synthesized from a speech transcript of a completed recording. The
// transcript is submitted immediately; the poll workers ingest it once
// it completes.
func (s *analysisService) StartTranscription(ctx context.Context, userID, recordingID uuid.UUID) (*entities.Analysis, error) {
	if s.asmClient == nil {
		return nil, fmt.Errorf("transcription client not configured")
	}

	recording, err := s.recordingRepo.FindByID(ctx, recordingID)
	if err != nil {
		return nil, fmt.Errorf("failed to find recording: %w", err)
	}
	if recording == nil {
		return nil, usecaseErrors.ErrRecordingNotFound
	}
	if recording.Status != entities.RecordingStatusCompleted || recording.ObjectKey == nil {
		return nil, usecaseErrors.ErrRecordingNotReady
	}

	info, err := s.store.StatFile(ctx, *recording.ObjectKey)
	if err != nil {
		return nil, fmt.Errorf("failed to stat recording object: %w", err)
	}
	if info.Size > s.cfg.Analysis.MaxVideoBytes {
		return nil, usecaseErrors.ErrOversizedVideo
	}

	a := entities.NewAnalysis(userID, *recording.ObjectKey, entities.AnalysisSourceTranscription)
	a.RecordingID = &recordingID
	a.VideoSizeBytes = info.Size
	if recording.Duration != nil {
		a.VideoDuration = float64(*recording.Duration)
	}
	if recording.VideoWidth != nil && recording.VideoHeight != nil {
		a.VideoWidth = *recording.VideoWidth
		a.VideoHeight = *recording.VideoHeight
	}

	if err := s.analysisRepo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create analysis: %w", err)
	}

	audioURL, err := s.store.GetFileURL(ctx, *recording.ObjectKey, presignedVideoExpiry)
	if err != nil {
		a.MarkAsFailed(fmt.Sprintf("failed to presign recording URL: %v", err))
		_ = s.analysisRepo.Update(ctx, a)
		return nil, fmt.Errorf("failed to presign recording URL: %w", err)
	}

	params := &aai.TranscriptOptionalParams{
		SpeakerLabels: aai.Bool(true),
	}
	transcript, err := s.asmClient.Transcripts.TranscribeFromURL(ctx, audioURL, params)
	if err != nil {
		a.MarkAsFailed(fmt.Sprintf("failed to submit transcription: %v", err))
		_ = s.analysisRepo.Update(ctx, a)
		return nil, fmt.Errorf("failed to submit transcription: %w", err)
	}
	if transcript.ID == nil {
		a.MarkAsFailed("transcription submitted without an ID")
		_ = s.analysisRepo.Update(ctx, a)
		return nil, fmt.Errorf("transcription submitted without an ID")
	}

	a.MarkAsSubmitted(*transcript.ID)
	if err := s.analysisRepo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to update analysis: %w", err)
	}

	s.logger.Info("🎙️ Transcription submitted",
		zap.String("analysis_id", a.ID.String()),
		zap.String("transcript_id", *transcript.ID),
	)
	return a, nil
}

// ingestTranscript converts a completed transcript into an annotation
// payload and runs it through the normal ingest path so the raw archive,
// cache invalidation and document replacement behave identically.
func (s *analysisService) ingestTranscript(ctx context.Context, a *entities.Analysis, transcript *aai.Transcript) error {
	raw := transcriptToRaw(transcript)
	payload, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to encode transcript payload: %w", err)
	}
	return s.ingest(ctx, a, payload)
}

// transcriptToRaw synthesizes an annotation document containing only
// speech transcriptions from a transcript. Utterances become one
// transcription each; without utterances the word list becomes a single
// transcription. Speaker letters map to numeric tags in order of first
// appearance.
func transcriptToRaw(transcript *aai.Transcript) *annotation.RawDocument {
	tags := make(map[string]int)
	var transcriptions []annotation.RawSpeechTranscription

	if len(transcript.Utterances) > 0 {
		for _, utt := range transcript.Utterances {
			alt := annotation.RawAlternative{
				Words: wordsToRaw(utt.Words, tags),
			}
			if utt.Text != nil {
				alt.Transcript = *utt.Text
			}
			if utt.Confidence != nil {
				alt.Confidence = *utt.Confidence
			}
			transcriptions = append(transcriptions, annotation.RawSpeechTranscription{
				Alternatives: []annotation.RawAlternative{alt},
				Segment: &annotation.RawSegment{
					StartTimeOffset: msOffset(utt.Start),
					EndTimeOffset:   msOffset(utt.End),
				},
			})
		}
	} else if len(transcript.Words) > 0 {
		alt := annotation.RawAlternative{
			Words: wordsToRaw(transcript.Words, tags),
		}
		if transcript.Text != nil {
			alt.Transcript = *transcript.Text
		}
		if transcript.Confidence != nil {
			alt.Confidence = *transcript.Confidence
		}
		transcriptions = append(transcriptions, annotation.RawSpeechTranscription{
			Alternatives: []annotation.RawAlternative{alt},
		})
	}

	result := annotation.RawResult{SpeechTranscriptions: transcriptions}
	if transcript.AudioDuration != nil && *transcript.AudioDuration > 0 {
		result.Segment = &annotation.RawSegment{
			StartTimeOffset: &annotation.TimeOffset{},
			EndTimeOffset:   secondsOffset(*transcript.AudioDuration),
		}
	}

	results := []annotation.RawResult{result}
	return &annotation.RawDocument{AnnotationResults: &results}
}

func wordsToRaw(words []aai.TranscriptWord, tags map[string]int) []annotation.RawWord {
	raw := make([]annotation.RawWord, 0, len(words))
	for _, w := range words {
		raw = append(raw, rawWord(w.Text, w.Start, w.End, w.Speaker, tags))
	}
	return raw
}

func rawWord(text *string, start, end *int64, speaker *string, tags map[string]int) annotation.RawWord {
	w := annotation.RawWord{
		StartTime: msOffset(start),
		EndTime:   msOffset(end),
	}
	if text != nil {
		w.Word = *text
	}
	if speaker != nil && *speaker != "" {
		tag, ok := tags[*speaker]
		if !ok {
			tag = len(tags) + 1
			tags[*speaker] = tag
		}
		w.SpeakerTag = tag
	}
	return w
}

// msOffset converts transcript milliseconds to the wire time format.
func msOffset(ms *int64) *annotation.TimeOffset {
	if ms == nil {
		return nil
	}
	return &annotation.TimeOffset{
		Seconds: *ms / 1000,
		Nanos:   (*ms % 1000) * 1e6,
	}
}

func secondsOffset(seconds float64) *annotation.TimeOffset {
	whole, frac := math.Modf(seconds)
	return &annotation.TimeOffset{
		Seconds: int64(whole),
		Nanos:   int64(math.Round(frac * 1e9)),
	}
}
