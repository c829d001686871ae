package models

import (
	"time"
)

// WebhookEvent represents the payload sent to a job callback URL
type WebhookEvent struct {
	Event     string      `json:"event"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Webhook event types
const (
	WebhookEventNoteCompleted = "note.completed"
	WebhookEventNoteFailed    = "note.failed"
)
