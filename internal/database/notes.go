package database

import (
	"context"
	"fmt"
	"time"

	"github.com/therealutkarshpriyadarshi/studynotes/pkg/models"
)

// CreateNote inserts a note; ID and CreatedAt are filled from the database
func (r *Repository) CreateNote(ctx context.Context, note *models.Note) (err error) {
	defer func(start time.Time) { observe("create_note", start, err) }(time.Now())

	query := `
		INSERT INTO notes (user_id, video_id, video_url, video_title, thumbnail_url, summary, transcript, strategy)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err = r.db.Pool.QueryRow(ctx, query,
		note.UserID, note.VideoID, note.VideoURL, note.VideoTitle,
		note.ThumbnailURL, note.Summary, note.Transcript, note.Strategy,
	).Scan(&note.ID, &note.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", translate(err))
	}
	return nil
}

// GetNote retrieves a note owned by userID
func (r *Repository) GetNote(ctx context.Context, id, userID string) (note *models.Note, err error) {
	defer func(start time.Time) { observe("get_note", start, err) }(time.Now())

	query := `
		SELECT id, user_id, video_id, video_url, video_title, thumbnail_url,
		       summary, transcript, strategy, export_key, created_at
		FROM notes
		WHERE id = $1 AND user_id = $2
	`

	var n models.Note
	err = r.db.Pool.QueryRow(ctx, query, id, userID).Scan(
		&n.ID, &n.UserID, &n.VideoID, &n.VideoURL, &n.VideoTitle, &n.ThumbnailURL,
		&n.Summary, &n.Transcript, &n.Strategy, &n.ExportKey, &n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", translate(err))
	}
	return &n, nil
}

// ListNotes returns the history of a user, newest first
func (r *Repository) ListNotes(ctx context.Context, userID string, limit, offset int) (notes []*models.NoteSummary, err error) {
	defer func(start time.Time) { observe("list_notes", start, err) }(time.Now())

	query := `
		SELECT id, video_title, thumbnail_url, summary, created_at
		FROM notes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes = []*models.NoteSummary{}
	for rows.Next() {
		var n models.NoteSummary
		if err := rows.Scan(&n.ID, &n.VideoTitle, &n.ThumbnailURL, &n.Summary, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}

// DeleteNote removes a note owned by userID
func (r *Repository) DeleteNote(ctx context.Context, id, userID string) (err error) {
	defer func(start time.Time) { observe("delete_note", start, err) }(time.Now())

	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetNoteExportKey records the object key of the exported markdown
func (r *Repository) SetNoteExportKey(ctx context.Context, id, key string) (err error) {
	defer func(start time.Time) { observe("set_note_export_key", start, err) }(time.Now())

	tag, err := r.db.Pool.Exec(ctx, `UPDATE notes SET export_key = $2 WHERE id = $1`, id, key)
	if err != nil {
		return fmt.Errorf("failed to set export key: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
