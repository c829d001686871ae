package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/config"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/metrics"
	"github.com/therealutkarshpriyadarshi/studynotes/pkg/models"
)

// ErrInvalidURL is returned for callback URLs that are not absolute http(s) URLs
var ErrInvalidURL = errors.New("callback url must be an absolute http or https url")

// Service delivers job callbacks
type Service struct {
	client      *http.Client
	secret      string
	maxAttempts int
	retryDelay  time.Duration
	logger      *logging.Logger
}

// NewService creates a new webhook service
func NewService(cfg config.WebhookConfig, logger *logging.Logger) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	if logger == nil {
		logger = logging.Nop()
	}

	return &Service{
		client: &http.Client{
			Timeout: timeout,
		},
		secret:      cfg.Secret,
		maxAttempts: attempts,
		retryDelay:  cfg.RetryDelay,
		logger:      logger,
	}
}

// ValidateURL checks a callback URL before a job is accepted
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidURL
	}
	return nil
}

// NotifyNoteCompleted tells the job's callback URL that its note is ready
func (s *Service) NotifyNoteCompleted(ctx context.Context, job *models.Job, note *models.Note) error {
	return s.Notify(ctx, job.CallbackURL, models.WebhookEventNoteCompleted, map[string]interface{}{
		"job":  job,
		"note": note,
	})
}

// NotifyNoteFailed tells the job's callback URL that the job gave up
func (s *Service) NotifyNoteFailed(ctx context.Context, job *models.Job) error {
	return s.Notify(ctx, job.CallbackURL, models.WebhookEventNoteFailed, map[string]interface{}{
		"job": job,
	})
}

// Notify posts an event to target, retrying failed deliveries with a linear
// backoff. An empty target is a no-op.
func (s *Service) Notify(ctx context.Context, target, event string, data interface{}) error {
	if target == "" {
		return nil
	}

	payload, err := json.Marshal(models.WebhookEvent{
		Event:     event,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	deliveryID := uuid.New().String()
	logger := s.logger.WithFields(map[string]interface{}{
		"event":       event,
		"delivery_id": deliveryID,
	})

	for attempt := 1; ; attempt++ {
		err = s.deliver(ctx, target, event, deliveryID, payload)
		if err == nil {
			metrics.RecordWebhookDelivery("delivered")
			logger.Infof("Webhook delivered on attempt %d", attempt)
			return nil
		}

		logger.WithError(err).Warnf("Webhook attempt %d failed", attempt)
		if attempt >= s.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			metrics.RecordWebhookDelivery("failed")
			return ctx.Err()
		case <-time.After(s.retryDelay * time.Duration(attempt)):
		}
	}

	metrics.RecordWebhookDelivery("failed")
	return fmt.Errorf("webhook %s not delivered after %d attempts: %w", event, s.maxAttempts, err)
}

// deliver performs one POST and treats any non-2xx status as a failure
func (s *Service) deliver(ctx context.Context, target, event, deliveryID string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "StudyNotes-Webhook/1.0")
	req.Header.Set("X-Webhook-Event", event)
	req.Header.Set("X-Webhook-Delivery", deliveryID)

	// Add HMAC signature if secret is configured
	if s.secret != "" {
		req.Header.Set("X-Webhook-Signature", Sign(payload, s.secret))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("callback returned HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

// Sign returns the HMAC-SHA256 signature header value for payload
func Sign(payload []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return "sha256=" + hex.EncodeToString(h.Sum(nil))
}

// Verify reports whether signature matches payload under secret
func Verify(payload []byte, secret, signature string) bool {
	return hmac.Equal([]byte(Sign(payload, secret)), []byte(signature))
}
