package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/assistant"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/metrics"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/queue"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/transcript"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/webhook"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/youtube"
	"github.com/therealutkarshpriyadarshi/studynotes/pkg/models"
)

// jobLockTTL bounds how long a crashed worker can block redelivery of a job
const jobLockTTL = 15 * time.Minute

// JobPublisher enqueues note jobs
type JobPublisher interface {
	PublishJob(ctx context.Context, job *models.Job) error
}

// Notifier delivers job callbacks
type Notifier interface {
	NotifyNoteCompleted(ctx context.Context, job *models.Job, note *models.Note) error
	NotifyNoteFailed(ctx context.Context, job *models.Job) error
}

// SubmitJob validates the request and queues it for a worker
func (s *Service) SubmitJob(ctx context.Context, userID, videoRef, callbackURL string) (*models.Job, error) {
	if s.Publisher == nil || s.Cache == nil {
		return nil, ErrAsyncDisabled
	}
	if _, err := youtube.ExtractVideoID(videoRef); err != nil {
		return nil, err
	}
	if callbackURL != "" {
		if err := webhook.ValidateURL(callbackURL); err != nil {
			return nil, err
		}
	}

	job := &models.Job{
		ID:          uuid.New().String(),
		UserID:      userID,
		VideoURL:    videoRef,
		CallbackURL: callbackURL,
		Status:      models.JobStatusQueued,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.Cache.SetJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to store job: %w", err)
	}
	if err := s.Publisher.PublishJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	s.Logger.LogJobEvent(job.ID, "submitted", job.Status, map[string]interface{}{
		"user_id": userID,
	})
	return job, nil
}

// GetJob returns the state of one of the user's jobs
func (s *Service) GetJob(ctx context.Context, userID, jobID string) (*models.Job, error) {
	if s.Cache == nil {
		return nil, ErrAsyncDisabled
	}

	job, err := s.Cache.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil || job.UserID != userID {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// ProcessJob runs one delivered job. Failures that retrying cannot fix are
// returned wrapped in queue.ErrPermanent; other failures are returned as is
// so the queue can schedule a retry.
func (s *Service) ProcessJob(ctx context.Context, job *models.Job) error {
	if s.Cache != nil {
		locked, err := s.Cache.AcquireLock(ctx, "job:"+job.ID, jobLockTTL)
		if err != nil {
			s.Logger.WithJobID(job.ID).WithError(err).Warn("Job lock unavailable, processing anyway")
		} else if !locked {
			s.Logger.LogJobEvent(job.ID, "duplicate_delivery", job.Status, nil)
			return nil
		} else {
			defer s.Cache.ReleaseLock(context.Background(), "job:"+job.ID)
		}

		// A redelivered job that already finished must not run twice
		if stored, err := s.Cache.GetJob(ctx, job.ID); err == nil && stored != nil && stored.IsFinished() {
			return nil
		}
	}

	start := time.Now()
	metrics.JobsInProgress.Inc()
	defer metrics.JobsInProgress.Dec()

	now := time.Now().UTC()
	job.Status = models.JobStatusProcessing
	job.StartedAt = &now
	s.saveJob(ctx, job)

	note, err := s.generate(ctx, job.UserID, job.VideoURL)
	if err == nil {
		finished := time.Now().UTC()
		job.Status = models.JobStatusCompleted
		job.NoteID = note.ID
		job.ErrorMsg = ""
		job.CompletedAt = &finished
		s.saveJob(ctx, job)

		metrics.RecordNoteCreated("async")
		metrics.RecordJobCompleted(job.Status, time.Since(start).Seconds())
		s.notify(ctx, job, note)
		return nil
	}

	job.ErrorMsg = err.Error()
	permanent := isPermanent(err)
	if permanent || job.RetryCount >= models.MaxJobRetries {
		finished := time.Now().UTC()
		job.Status = models.JobStatusFailed
		job.CompletedAt = &finished
		s.saveJob(ctx, job)

		metrics.RecordJobCompleted(job.Status, time.Since(start).Seconds())
		s.notify(ctx, job, nil)
	} else {
		job.Status = models.JobStatusQueued
		s.saveJob(ctx, job)
	}

	s.Logger.LogJobEvent(job.ID, "failed", job.Status, map[string]interface{}{
		"error":       err.Error(),
		"retry_count": job.RetryCount,
		"permanent":   permanent,
	})

	if permanent {
		return fmt.Errorf("%w: %w", queue.ErrPermanent, err)
	}
	return err
}

func (s *Service) saveJob(ctx context.Context, job *models.Job) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.SetJob(ctx, job); err != nil {
		s.Logger.WithJobID(job.ID).WithError(err).Warn("Failed to update job state")
	}
}

func (s *Service) notify(ctx context.Context, job *models.Job, note *models.Note) {
	if s.Notifier == nil || job.CallbackURL == "" {
		return
	}

	var err error
	if note != nil {
		err = s.Notifier.NotifyNoteCompleted(ctx, job, note)
	} else {
		err = s.Notifier.NotifyNoteFailed(ctx, job)
	}
	if err != nil {
		s.Logger.WithJobID(job.ID).WithError(err).Warn("Job callback failed")
	}
}

// isPermanent reports failures that the same input will always reproduce
func isPermanent(err error) bool {
	return errors.Is(err, youtube.ErrInvalidReference) ||
		errors.Is(err, transcript.ErrTranscriptUnavailable) ||
		errors.Is(err, assistant.ErrEmptyTranscript)
}
