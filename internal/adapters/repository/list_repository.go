package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/listkeeper/core/internal/domain/entities"
	"github.com/listkeeper/core/internal/infrastructure/database"
	"github.com/listkeeper/core/internal/ports"
)

// ListRepositoryImpl implements the ListRepository interface. It holds the
// database wrapper rather than the bare connection because MergeInto needs
// the transaction helper.
type ListRepositoryImpl struct {
	db *database.DB
}

// NewListRepository creates a new list repository.
func NewListRepository(db *database.DB) ports.ListRepository {
	return &ListRepositoryImpl{db: db}
}

func (r *ListRepositoryImpl) Create(ctx context.Context, list *entities.List) error {
	query := `
		INSERT INTO lists (title, description, owner_id, parent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.DB.QueryRowContext(ctx, query,
		list.Title, list.Description, list.OwnerID, list.ParentID,
	).Scan(&list.ID, &list.CreatedAt, &list.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create list: %w", err)
	}

	return nil
}

func (r *ListRepositoryImpl) GetByID(ctx context.Context, id int64) (*entities.List, error) {
	query := `
		SELECT id, title, description, owner_id, parent_id, created_at, updated_at
		FROM lists
		WHERE id = $1`

	var list entities.List
	err := r.db.DB.GetContext(ctx, &list, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrListNotFound
		}
		return nil, fmt.Errorf("get list by id: %w", err)
	}

	return &list, nil
}

func (r *ListRepositoryImpl) Update(ctx context.Context, list *entities.List) error {
	query := `
		UPDATE lists
		SET title = $2, description = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.DB.QueryRowContext(ctx, query,
		list.ID, list.Title, list.Description,
	).Scan(&list.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.ErrListNotFound
		}
		return fmt.Errorf("update list: %w", err)
	}

	return nil
}

func (r *ListRepositoryImpl) SetParent(ctx context.Context, id int64, parentID *int64) error {
	query := `
		UPDATE lists
		SET parent_id = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, id, parentID)
	if err != nil {
		return fmt.Errorf("set list parent: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrListNotFound
	}

	return nil
}

func (r *ListRepositoryImpl) Delete(ctx context.Context, id int64) error {
	// Child lists, tasks, and shares cascade at the schema level.
	query := `DELETE FROM lists WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrListNotFound
	}

	return nil
}

func (r *ListRepositoryImpl) DeleteOwnedBy(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	query := `DELETE FROM lists WHERE owner_id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete owned lists: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	return rowsAffected, nil
}

func (r *ListRepositoryImpl) GetChildren(ctx context.Context, parentID int64) ([]*entities.List, error) {
	query := `
		SELECT id, title, description, owner_id, parent_id, created_at, updated_at
		FROM lists
		WHERE parent_id = $1
		ORDER BY created_at`

	var lists []*entities.List
	err := r.db.DB.SelectContext(ctx, &lists, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("get children: %w", err)
	}

	return lists, nil
}

func (r *ListRepositoryImpl) CountChildren(ctx context.Context, parentID int64) (int, error) {
	query := `SELECT COUNT(*) FROM lists WHERE parent_id = $1`

	var count int
	err := r.db.DB.GetContext(ctx, &count, query, parentID)
	if err != nil {
		return 0, fmt.Errorf("count children: %w", err)
	}

	return count, nil
}

func (r *ListRepositoryImpl) ListAccessible(ctx context.Context, userID uuid.UUID) ([]*entities.List, error) {
	query := `
		SELECT DISTINCT l.id, l.title, l.description, l.owner_id, l.parent_id,
			l.created_at, l.updated_at
		FROM lists l
		LEFT JOIN list_shares s ON s.list_id = l.id
		WHERE l.owner_id = $1 OR s.user_id = $1
		ORDER BY l.created_at`

	var lists []*entities.List
	err := r.db.DB.SelectContext(ctx, &lists, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list accessible lists: %w", err)
	}

	return lists, nil
}

// MergeInto reassigns every task of the source list to the target list and
// then deletes the source, inside a single transaction. The source's share
// rows go with it via cascade.
func (r *ListRepositoryImpl) MergeInto(ctx context.Context, sourceID, targetID int64) error {
	return r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE tasks SET list_id = $2, updated_at = CURRENT_TIMESTAMP WHERE list_id = $1`,
			sourceID, targetID)
		if err != nil {
			return fmt.Errorf("reassign tasks: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM lists WHERE id = $1`, sourceID)
		if err != nil {
			return fmt.Errorf("delete source list: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return entities.ErrListNotFound
		}

		return nil
	})
}
