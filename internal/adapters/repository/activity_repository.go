package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/listkeeper/core/internal/domain/entities"
	"github.com/listkeeper/core/internal/ports"
)

// ActivityRepositoryImpl implements the ActivityRepository interface.
type ActivityRepositoryImpl struct {
	db        *sqlx.DB
	retention time.Duration
}

// NewActivityRepository creates a new activity repository with the given
// retention window.
func NewActivityRepository(db *sqlx.DB, retentionDays int) ports.ActivityRepository {
	return &ActivityRepositoryImpl{
		db:        db,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

// Append inserts an entry and prunes anything older than the retention
// window. Pruning rides along with every insert so the log stays bounded
// without a background job.
func (r *ActivityRepositoryImpl) Append(ctx context.Context, level entities.ActivityLevel, message string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activity_log (level, message) VALUES ($1, $2)`,
		level, message)
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}

	cutoff := time.Now().Add(-r.retention)
	_, err = r.db.ExecContext(ctx,
		`DELETE FROM activity_log WHERE created_at < $1`,
		cutoff)
	if err != nil {
		return fmt.Errorf("prune activity: %w", err)
	}

	return nil
}

func (r *ActivityRepositoryImpl) List(ctx context.Context, since time.Time) ([]entities.ActivityEntry, error) {
	query := `
		SELECT id, level, message, created_at
		FROM activity_log
		WHERE created_at >= $1
		ORDER BY created_at DESC`

	var entries []entities.ActivityEntry
	err := r.db.SelectContext(ctx, &entries, query, since)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}

	return entries, nil
}
