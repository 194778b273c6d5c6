package analysis

import (
	"context"
	"fmt"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"go.uber.org/zap"

	"github.com/call-manager-team/call-manager/internal/domain/entities"
	"github.com/call-manager-team/call-manager/pkg/jobcontext"
	"github.com/call-manager-team/call-manager/pkg/videointel"
)

const pendingBatchSize = 10

// StartWorkerPool starts background workers that poll the external
// annotation and transcription services for submitted jobs.
func (s *analysisService) StartWorkerPool(ctx context.Context, workerCount int) error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool already running")
	}

	s.isWorkerPoolRunning = true
	s.workerStopChan = make(chan struct{})

	s.logger.Info("🚀 Starting analysis worker pool",
		zap.Int("worker_count", workerCount),
		zap.Duration("poll_interval", s.cfg.Analysis.PollInterval),
	)

	for i := 0; i < workerCount; i++ {
		s.workerWg.Add(1)
		go s.pollWorker(ctx, i)
	}

	return nil
}

// StopWorkerPool gracefully stops all worker goroutines.
func (s *analysisService) StopWorkerPool() error {
	s.workerMutex.Lock()
	defer s.workerMutex.Unlock()

	if !s.isWorkerPoolRunning {
		return fmt.Errorf("worker pool not running")
	}

	s.logger.Info("🛑 Stopping analysis worker pool...")

	close(s.workerStopChan)
	s.workerWg.Wait()
	s.isWorkerPoolRunning = false

	s.logger.Info("✅ Analysis worker pool stopped")
	return nil
}

// pollWorker polls for submitted analyses and reconciles them against
// the external service. Claiming is atomic so concurrent workers never
// process the same analysis twice.
func (s *analysisService) pollWorker(parentCtx context.Context, workerID int) {
	defer s.workerWg.Done()

	ticker := time.NewTicker(s.cfg.Analysis.PollInterval)
	defer ticker.Stop()

	s.logger.Info("👷 Analysis worker started", zap.Int("worker_id", workerID))

	for {
		select {
		case <-s.workerStopChan:
			s.logger.Info("👷 Analysis worker stopping", zap.Int("worker_id", workerID))
			return

		case <-ticker.C:
			pending, err := s.analysisRepo.FindPending(parentCtx, pendingBatchSize)
			if err != nil {
				s.logger.Error("❌ Failed to poll pending analyses",
					zap.Int("worker_id", workerID),
					zap.Error(err),
				)
				continue
			}

			for _, a := range pending {
				claimed, err := s.analysisRepo.ClaimForProcessing(parentCtx, a.ID)
				if err != nil {
					s.logger.Error("❌ Failed to claim analysis",
						zap.String("analysis_id", a.ID.String()),
						zap.Error(err),
					)
					continue
				}
				if !claimed {
					continue
				}

				s.processClaimed(parentCtx, a, workerID)
				// One job per tick keeps a slow external service from
				// starving the stop signal.
				break
			}
		}
	}
}

func (s *analysisService) processClaimed(parentCtx context.Context, a *entities.Analysis, workerID int) {
	jobCtx, cancel := jobcontext.JobBegin(parentCtx, a.ID, string(a.Source), workerID)
	defer cancel()

	err := jobcontext.JobEnd(jobCtx, func(ctx context.Context) error {
		return s.checkRemoteJob(ctx, a)
	})
	if err != nil {
		s.logger.Error("❌ Analysis reconciliation failed",
			zap.Int("worker_id", workerID),
			zap.String("analysis_id", a.ID.String()),
			zap.Error(err),
		)
		a.MarkAsFailed(err.Error())
		if updateErr := s.analysisRepo.Update(parentCtx, a); updateErr != nil {
			s.logger.Error("failed to record analysis failure",
				zap.String("analysis_id", a.ID.String()),
				zap.Error(updateErr),
			)
		}
	}
}

// checkRemoteJob asks the external service about one claimed analysis.
// A still-pending job is released back to submitted for the next tick;
// a job submitted longer ago than the poll timeout is failed.
func (s *analysisService) checkRemoteJob(ctx context.Context, a *entities.Analysis) error {
	if a.ExternalJobID == nil {
		return fmt.Errorf("analysis has no external job ID")
	}

	if a.StartedAt != nil && time.Since(*a.StartedAt) > s.cfg.Analysis.PollTimeout {
		a.MarkAsFailed(fmt.Sprintf("no result after %s", s.cfg.Analysis.PollTimeout))
		return s.analysisRepo.Update(ctx, a)
	}

	if a.Source == entities.AnalysisSourceTranscription {
		return s.checkTranscript(ctx, a)
	}
	return s.checkAnnotationJob(ctx, a)
}

func (s *analysisService) checkAnnotationJob(ctx context.Context, a *entities.Analysis) error {
	job, err := s.jobs.GetJob(ctx, *a.ExternalJobID)
	if err != nil {
		return fmt.Errorf("failed to get job status: %w", err)
	}

	switch job.Status {
	case videointel.JobStatusSucceeded:
		payload, err := s.jobs.FetchResult(ctx, *a.ExternalJobID)
		if err != nil {
			return fmt.Errorf("failed to fetch annotation result: %w", err)
		}
		return s.ingest(ctx, a, payload)

	case videointel.JobStatusFailed:
		reason := job.Error
		if reason == "" {
			reason = "annotation job failed"
		}
		a.MarkAsFailed(reason)
		return s.analysisRepo.Update(ctx, a)

	default:
		return s.release(ctx, a)
	}
}

func (s *analysisService) checkTranscript(ctx context.Context, a *entities.Analysis) error {
	if s.asmClient == nil {
		return fmt.Errorf("transcription client not configured")
	}

	transcript, err := s.asmClient.Transcripts.Get(ctx, *a.ExternalJobID)
	if err != nil {
		return fmt.Errorf("failed to get transcript: %w", err)
	}

	switch transcript.Status {
	case aai.TranscriptStatusCompleted:
		return s.ingestTranscript(ctx, a, &transcript)

	case aai.TranscriptStatusError:
		reason := "transcription failed"
		if transcript.Error != nil {
			reason = *transcript.Error
		}
		a.MarkAsFailed(reason)
		return s.analysisRepo.Update(ctx, a)

	default:
		return s.release(ctx, a)
	}
}

// release returns a claimed analysis to submitted so a later tick polls
// it again.
func (s *analysisService) release(ctx context.Context, a *entities.Analysis) error {
	a.Status = entities.AnalysisStatusSubmitted
	a.UpdatedAt = time.Now()
	return s.analysisRepo.Update(ctx, a)
}
