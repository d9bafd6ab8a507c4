package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/listkeeper/core/internal/domain/entities"
	"github.com/listkeeper/core/internal/ports"
)

// TaskRepositoryImpl implements the TaskRepository interface.
type TaskRepositoryImpl struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new task repository.
func NewTaskRepository(db *sqlx.DB) ports.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entities.Task) error {
	query := `
		INSERT INTO tasks (list_id, description, completed, due_date, importance, depends_on, pinned)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		task.ListID, task.Description, task.Completed, task.DueDate,
		task.Importance, task.DependsOn, task.Pinned,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

func (r *TaskRepositoryImpl) CreateBatch(ctx context.Context, tasks []*entities.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	query := `
		INSERT INTO tasks (list_id, description, completed, due_date, importance, depends_on, pinned, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, CURRENT_TIMESTAMP))
		RETURNING id, created_at, updated_at`

	for _, task := range tasks {
		var createdAt interface{}
		if !task.CreatedAt.IsZero() {
			createdAt = task.CreatedAt
		}

		err := r.db.QueryRowContext(ctx, query,
			task.ListID, task.Description, task.Completed, task.DueDate,
			task.Importance, task.DependsOn, task.Pinned, createdAt,
		).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)

		if err != nil {
			return fmt.Errorf("create task batch: %w", err)
		}
	}

	return nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id int64) (*entities.Task, error) {
	query := `
		SELECT id, list_id, description, completed, due_date, importance, depends_on, pinned,
			created_at, updated_at
		FROM tasks
		WHERE id = $1`

	var task entities.Task
	err := r.db.GetContext(ctx, &task, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}

	return &task, nil
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, task *entities.Task) error {
	query := `
		UPDATE tasks
		SET description = $2, completed = $3, due_date = $4, importance = $5,
			depends_on = $6, pinned = $7, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.Description, task.Completed, task.DueDate,
		task.Importance, task.DependsOn, task.Pinned,
	).Scan(&task.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.ErrTaskNotFound
		}
		return fmt.Errorf("update task: %w", err)
	}

	return nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id int64) error {
	// No dependents cleanup: tasks that depended on this one keep their
	// depends_on pointer dangling.
	query := `DELETE FROM tasks WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return entities.ErrTaskNotFound
	}

	return nil
}

func (r *TaskRepositoryImpl) ListByList(ctx context.Context, listID int64) ([]entities.Task, error) {
	query := `
		SELECT id, list_id, description, completed, due_date, importance, depends_on, pinned,
			created_at, updated_at
		FROM tasks
		WHERE list_id = $1
		ORDER BY pinned DESC, importance DESC, created_at`

	var tasks []entities.Task
	err := r.db.SelectContext(ctx, &tasks, query, listID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepositoryImpl) CountByList(ctx context.Context, listID int64) (int, error) {
	query := `SELECT COUNT(*) FROM tasks WHERE list_id = $1`

	var count int
	err := r.db.GetContext(ctx, &count, query, listID)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}

	return count, nil
}
