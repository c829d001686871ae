package models

import (
	"time"
)

// Job represents an asynchronous note generation request
type Job struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	VideoURL    string     `json:"video_url"`
	CallbackURL string     `json:"callback_url,omitempty"`
	Status      string     `json:"status"`
	NoteID      string     `json:"note_id,omitempty"`
	ErrorMsg    string     `json:"error_msg,omitempty"`
	RetryCount  int        `json:"retry_count"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsFinished reports whether the job reached a terminal status
func (j *Job) IsFinished() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// JobStatus constants
const (
	JobStatusQueued     = "queued"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// MaxJobRetries bounds how many times a failed job is redelivered
const MaxJobRetries = 2
