package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/therealutkarshpriyadarshi/studynotes/pkg/models"
)

const (
	DeadLetterQueueName    = "note_jobs_dlq"
	DeadLetterExchangeName = "studynotes_dlq"
	RetryQueueName         = "note_jobs_retry"
)

// ErrPermanent marks a job failure that retrying cannot fix
var ErrPermanent = errors.New("permanent job failure")

type action int

const (
	actionRetry action = iota
	actionDeadLetter
)

// decide picks what happens to a job whose handler failed
func decide(job *models.Job, err error) action {
	if errors.Is(err, ErrPermanent) {
		return actionDeadLetter
	}
	if job.RetryCount >= models.MaxJobRetries {
		return actionDeadLetter
	}
	return actionRetry
}

// SetupDeadLetterQueue sets up the dead letter queue infrastructure
func (q *Queue) SetupDeadLetterQueue() error {
	// Declare dead letter exchange
	err := q.channel.ExchangeDeclare(
		DeadLetterExchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare DLQ exchange: %w", err)
	}

	// Declare dead letter queue
	_, err = q.channel.QueueDeclare(
		DeadLetterQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare DLQ: %w", err)
	}

	// Bind DLQ to exchange
	err = q.channel.QueueBind(
		DeadLetterQueueName,
		DeadLetterQueueName,
		DeadLetterExchangeName,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to bind DLQ: %w", err)
	}

	// Expired retry messages flow back into the job queue
	retryArgs := amqp.Table{
		"x-dead-letter-exchange":    ExchangeName,
		"x-dead-letter-routing-key": NoteQueueName,
	}

	_, err = q.channel.QueueDeclare(
		RetryQueueName,
		true,
		false,
		false,
		false,
		retryArgs,
	)
	if err != nil {
		return fmt.Errorf("failed to declare retry queue: %w", err)
	}

	q.logger.Debug("Dead letter queue infrastructure set up")
	return nil
}

// PublishToRetryQueue parks a job in the retry queue until its backoff
// expires, then it is redelivered with RetryCount incremented.
func (q *Queue) PublishToRetryQueue(ctx context.Context, job *models.Job) error {
	delay := calculateBackoffDelay(job.RetryCount)

	retry := *job
	retry.RetryCount++
	retry.Status = models.JobStatusQueued

	body, err := json.Marshal(&retry)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = q.channel.PublishWithContext(ctx,
		"",
		RetryQueueName,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    retry.ID,
			Body:         body,
			Timestamp:    time.Now(),
			Headers: amqp.Table{
				"x-retry-count": int32(retry.RetryCount),
			},
			Expiration: fmt.Sprintf("%d", delay.Milliseconds()),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to retry queue: %w", err)
	}

	q.logger.LogJobEvent(job.ID, "retry_scheduled", retry.Status, map[string]interface{}{
		"retry_count": retry.RetryCount,
		"delay_ms":    delay.Milliseconds(),
	})
	return nil
}

// PublishToDeadLetterQueue publishes a failed job to the dead letter queue
func (q *Queue) PublishToDeadLetterQueue(ctx context.Context, job *models.Job, reason string) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	headers := amqp.Table{
		"x-failure-reason": reason,
		"x-failed-at":      time.Now().Format(time.RFC3339),
	}

	err = q.channel.PublishWithContext(ctx,
		DeadLetterExchangeName,
		DeadLetterQueueName,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    job.ID,
			Body:         body,
			Timestamp:    time.Now(),
			Headers:      headers,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to DLQ: %w", err)
	}

	q.logger.LogJobEvent(job.ID, "dead_lettered", job.Status, map[string]interface{}{
		"reason": reason,
	})
	return nil
}

// RetryFromDLQ resubmits a dead-lettered job with a fresh retry budget
func (q *Queue) RetryFromDLQ(ctx context.Context, job *models.Job) error {
	fresh := *job
	fresh.RetryCount = 0
	fresh.Status = models.JobStatusQueued
	fresh.ErrorMsg = ""
	return q.PublishJob(ctx, &fresh)
}

// calculateBackoffDelay calculates exponential backoff delay
func calculateBackoffDelay(retryCount int) time.Duration {
	// Exponential backoff: 15s, 30s, 1m, 2m, ...
	baseDelay := 15 * time.Second
	delay := baseDelay * (1 << retryCount) // 2^retryCount

	// Cap at 10 minutes
	if delay > 10*time.Minute || delay <= 0 {
		delay = 10 * time.Minute
	}

	return delay
}

// GetDLQDepth returns the number of messages in the dead letter queue
func (q *Queue) GetDLQDepth() (int, error) {
	info, err := q.channel.QueueInspect(DeadLetterQueueName)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect DLQ: %w", err)
	}

	return info.Messages, nil
}
