package database

import (
	"context"
	"fmt"
	"time"

	"github.com/therealutkarshpriyadarshi/studynotes/pkg/models"
)

// GetStats returns the global counters for admins and the caller's own note
// count for everyone else.
func (r *Repository) GetStats(ctx context.Context, user models.SessionUser) (stats *models.Stats, err error) {
	defer func(start time.Time) { observe("get_stats", start, err) }(time.Now())

	if user.Role != models.UserRoleAdmin {
		var yours int64
		if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM notes WHERE user_id = $1`, user.ID).Scan(&yours); err != nil {
			return nil, fmt.Errorf("failed to count notes: %w", err)
		}
		return &models.Stats{YourNotes: &yours}, nil
	}

	query := `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM notes),
			(SELECT COUNT(*) FROM users WHERE role <> 'admin' AND NOT is_approved)
	`

	var users, notes, pending int64
	if err := r.db.Pool.QueryRow(ctx, query).Scan(&users, &notes, &pending); err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}
	return &models.Stats{
		TotalUsers:       &users,
		TotalNotes:       &notes,
		PendingApprovals: &pending,
	}, nil
}
