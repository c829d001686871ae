package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/config"
	"github.com/therealutkarshpriyadarshi/studynotes/pkg/models"
)

func TestNotifyNoteCompleted(t *testing.T) {
	var received atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, models.WebhookEventNoteCompleted, r.Header.Get("X-Webhook-Event"))
		assert.NotEmpty(t, r.Header.Get("X-Webhook-Delivery"))
		assert.True(t, Verify(body, "s3cret", r.Header.Get("X-Webhook-Signature")))
		received.Store(body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	service := NewService(config.WebhookConfig{Secret: "s3cret", MaxAttempts: 1}, nil)

	job := &models.Job{ID: "job-1", CallbackURL: server.URL, Status: models.JobStatusCompleted}
	note := &models.Note{ID: "note-1", VideoTitle: "Lecture"}

	err := service.NotifyNoteCompleted(context.Background(), job, note)
	require.NoError(t, err)

	body, ok := received.Load().([]byte)
	require.True(t, ok)

	var event struct {
		Event string `json:"event"`
		Data  struct {
			Job  models.Job  `json:"job"`
			Note models.Note `json:"note"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &event))
	assert.Equal(t, models.WebhookEventNoteCompleted, event.Event)
	assert.Equal(t, "job-1", event.Data.Job.ID)
	assert.Equal(t, "note-1", event.Data.Note.ID)
}

func TestNotify_RetriesUntilDelivered(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	service := NewService(config.WebhookConfig{MaxAttempts: 3, RetryDelay: time.Millisecond}, nil)

	err := service.NotifyNoteFailed(context.Background(), &models.Job{ID: "job-2", CallbackURL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestNotify_GivesUp(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	service := NewService(config.WebhookConfig{MaxAttempts: 2, RetryDelay: time.Millisecond}, nil)

	err := service.Notify(context.Background(), server.URL, models.WebhookEventNoteFailed, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestNotify_NoSignatureWithoutSecret(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("X-Webhook-Signature"))
	}))
	defer server.Close()

	service := NewService(config.WebhookConfig{}, nil)
	assert.NoError(t, service.Notify(context.Background(), server.URL, "test", nil))
}

func TestNotify_EmptyTarget(t *testing.T) {
	service := NewService(config.WebhookConfig{}, nil)
	assert.NoError(t, service.Notify(context.Background(), "", models.WebhookEventNoteCompleted, nil))
}

func TestWebhookSignature(t *testing.T) {
	payload := []byte(`{"event":"test"}`)

	signature := Sign(payload, "test-secret")
	assert.Contains(t, signature, "sha256=")
	assert.Len(t, signature, len("sha256=")+64)
	assert.True(t, Verify(payload, "test-secret", signature))
	assert.False(t, Verify(payload, "other-secret", signature))
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("https://example.com/hook"))
	assert.NoError(t, ValidateURL("http://localhost:8000/cb"))
	assert.ErrorIs(t, ValidateURL("ftp://example.com"), ErrInvalidURL)
	assert.ErrorIs(t, ValidateURL("/relative"), ErrInvalidURL)
	assert.ErrorIs(t, ValidateURL("::"), ErrInvalidURL)
}
