package models

import "time"

// Note is a set of study notes generated from one video for one user
type Note struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	VideoID      string    `json:"video_id" db:"video_id"`
	VideoURL     string    `json:"video_url" db:"video_url"`
	VideoTitle   string    `json:"video_title" db:"video_title"`
	ThumbnailURL string    `json:"thumbnail_url" db:"thumbnail_url"`
	Summary      string    `json:"summary" db:"summary"`
	Transcript   string    `json:"transcript,omitempty" db:"transcript"`
	Strategy     string    `json:"strategy,omitempty" db:"strategy"`
	ExportKey    string    `json:"-" db:"export_key"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// NoteSummary is the lightweight row returned by the history listing
type NoteSummary struct {
	ID           string    `json:"id" db:"id"`
	VideoTitle   string    `json:"video_title" db:"video_title"`
	ThumbnailURL string    `json:"thumbnail_url" db:"thumbnail_url"`
	Summary      string    `json:"summary" db:"summary"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ChatReply is the assistant answer to a question about a note's video
type ChatReply struct {
	NoteID  string `json:"note_id"`
	Message string `json:"message"`
}
