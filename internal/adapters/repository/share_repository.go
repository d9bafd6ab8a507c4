package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/listkeeper/core/internal/ports"
)

// ShareRepositoryImpl implements the ShareRepository interface.
type ShareRepositoryImpl struct {
	db *sqlx.DB
}

// NewShareRepository creates a new share repository.
func NewShareRepository(db *sqlx.DB) ports.ShareRepository {
	return &ShareRepositoryImpl{db: db}
}

// Grant inserts a share row; an already-existing grant is ignored rather than
// treated as an error, which makes recursive share fan-out idempotent.
func (r *ShareRepositoryImpl) Grant(ctx context.Context, listID int64, userID uuid.UUID) error {
	query := `
		INSERT INTO list_shares (list_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (list_id, user_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, listID, userID)
	if err != nil {
		return fmt.Errorf("grant share: %w", err)
	}

	return nil
}

// Revoke removes a share row. Revoking a grant that does not exist is a
// no-op, mirroring Grant.
func (r *ShareRepositoryImpl) Revoke(ctx context.Context, listID int64, userID uuid.UUID) error {
	query := `DELETE FROM list_shares WHERE list_id = $1 AND user_id = $2`

	_, err := r.db.ExecContext(ctx, query, listID, userID)
	if err != nil {
		return fmt.Errorf("revoke share: %w", err)
	}

	return nil
}

func (r *ShareRepositoryImpl) Exists(ctx context.Context, listID int64, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM list_shares WHERE list_id = $1 AND user_id = $2)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, listID, userID)
	if err != nil {
		return false, fmt.Errorf("check share: %w", err)
	}

	return exists, nil
}

func (r *ShareRepositoryImpl) ListUsers(ctx context.Context, listID int64) ([]uuid.UUID, error) {
	query := `SELECT user_id FROM list_shares WHERE list_id = $1 ORDER BY created_at`

	var users []uuid.UUID
	err := r.db.SelectContext(ctx, &users, query, listID)
	if err != nil {
		return nil, fmt.Errorf("list shared users: %w", err)
	}

	return users, nil
}
