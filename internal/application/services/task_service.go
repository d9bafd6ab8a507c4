package services

import (
	"context"
	"fmt"

	"github.com/listkeeper/core/internal/domain/dependency"
	"github.com/listkeeper/core/internal/domain/entities"
	"github.com/listkeeper/core/internal/domain/hierarchy"
	"github.com/listkeeper/core/internal/infrastructure/logger"
	"github.com/listkeeper/core/internal/ports"
)

// TaskService orchestrates task operations: creation and import are gated by
// the container rule, updates by the dependency gate.
type TaskService struct {
	taskRepo  ports.TaskRepository
	listRepo  ports.ListRepository
	shareRepo ports.ShareRepository
	logger    *logger.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(taskRepo ports.TaskRepository, listRepo ports.ListRepository, shareRepo ports.ShareRepository, logger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		listRepo:  listRepo,
		shareRepo: shareRepo,
		logger:    logger,
	}
}

// accessList loads a list and rejects callers who neither own it nor hold a
// share grant. Task-level access is uniform across update and delete.
func (s *TaskService) accessList(ctx context.Context, caller ports.Caller, listID int64) (*entities.List, error) {
	list, err := s.listRepo.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list.OwnerID == caller.UserID {
		return list, nil
	}
	shared, err := s.shareRepo.Exists(ctx, listID, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("check share: %w", err)
	}
	if !shared {
		return nil, entities.AccessDenied("you do not have access to this list")
	}
	return list, nil
}

// guardNotContainer re-reads the list's structural state and rejects task
// writes into a container.
func (s *TaskService) guardNotContainer(ctx context.Context, list *entities.List) error {
	childCount, err := s.listRepo.CountChildren(ctx, list.ID)
	if err != nil {
		return fmt.Errorf("count children: %w", err)
	}
	return hierarchy.CanHoldTasks(hierarchy.Snapshot{List: *list, ChildCount: childCount})
}

// ListTasks returns the tasks of a list the caller can access.
func (s *TaskService) ListTasks(ctx context.Context, caller ports.Caller, listID int64) ([]entities.Task, error) {
	if _, err := s.accessList(ctx, caller, listID); err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.ListByList(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// CreateTask creates a task in a list that is not a container.
func (s *TaskService) CreateTask(ctx context.Context, caller ports.Caller, listID int64, req ports.CreateTaskRequest) (*entities.Task, error) {
	list, err := s.accessList(ctx, caller, listID)
	if err != nil {
		return nil, err
	}
	if err := s.guardNotContainer(ctx, list); err != nil {
		return nil, err
	}

	if req.DependsOn != nil {
		siblings, err := s.taskRepo.ListByList(ctx, listID)
		if err != nil {
			return nil, fmt.Errorf("load list tasks: %w", err)
		}
		// A task being created has no id yet; zero can never self-match.
		if err := dependency.ValidateAssignment(0, *req.DependsOn, siblings); err != nil {
			return nil, err
		}
	}

	task := &entities.Task{
		ListID:      listID,
		Description: req.Description,
		DueDate:     req.DueDate,
		Importance:  req.Importance,
		Pinned:      req.Pinned,
		DependsOn:   req.DependsOn,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.logger.Infow("task created", "task_id", task.ID, "list_id", listID)
	return task, nil
}

// ImportTasks bulk-inserts pre-parsed drafts into a list. The only gate is
// the container rule; parsing happened upstream.
func (s *TaskService) ImportTasks(ctx context.Context, caller ports.Caller, listID int64, drafts []entities.TaskDraft) ([]*entities.Task, error) {
	list, err := s.accessList(ctx, caller, listID)
	if err != nil {
		return nil, err
	}
	if err := s.guardNotContainer(ctx, list); err != nil {
		return nil, err
	}

	tasks := make([]*entities.Task, 0, len(drafts))
	for _, draft := range drafts {
		if draft.Description == "" {
			return nil, entities.ValidationFailed("draft description must not be empty")
		}
		task := &entities.Task{
			ListID:      listID,
			Description: draft.Description,
			Completed:   draft.Completed,
			DueDate:     draft.DueDate,
			Importance:  draft.Importance,
		}
		if draft.CreatedAt != nil {
			task.CreatedAt = *draft.CreatedAt
		}
		tasks = append(tasks, task)
	}

	if err := s.taskRepo.CreateBatch(ctx, tasks); err != nil {
		return nil, fmt.Errorf("import tasks: %w", err)
	}

	s.logger.Infow("tasks imported", "list_id", listID, "count", len(tasks))
	return tasks, nil
}

// UpdateTask applies a partial update. A depends_on change is validated
// against the current tasks of the list, and any completion — requested now
// or already set while the dependency changes — is re-evaluated against the
// effective post-update dependency.
func (s *TaskService) UpdateTask(ctx context.Context, caller ports.Caller, taskID int64, req ports.UpdateTaskRequest) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.accessList(ctx, caller, task.ListID); err != nil {
		return nil, err
	}

	// Effective dependency after this update.
	effectiveDep := task.DependsOn
	depChanged := false
	switch {
	case req.ClearDep:
		effectiveDep = nil
		depChanged = true
	case req.DependsOn != nil:
		effectiveDep = req.DependsOn
		depChanged = true
	}

	var siblings []entities.Task
	if depChanged && effectiveDep != nil {
		siblings, err = s.taskRepo.ListByList(ctx, task.ListID)
		if err != nil {
			return nil, fmt.Errorf("load list tasks: %w", err)
		}
		if err := dependency.ValidateAssignment(taskID, *effectiveDep, siblings); err != nil {
			return nil, err
		}
	}

	// Effective completion state after this update.
	effectiveCompleted := task.Completed
	if req.Completed != nil {
		effectiveCompleted = *req.Completed
	}

	if effectiveCompleted && (req.Completed != nil || depChanged) {
		var resolved *entities.Task
		if effectiveDep != nil {
			if siblings == nil {
				siblings, err = s.taskRepo.ListByList(ctx, task.ListID)
				if err != nil {
					return nil, fmt.Errorf("load list tasks: %w", err)
				}
			}
			// A dangling pointer resolves to nothing and does not block.
			for i := range siblings {
				if siblings[i].ID == *effectiveDep {
					resolved = &siblings[i]
					break
				}
			}
		}
		if err := dependency.CanComplete(*task, resolved); err != nil {
			return nil, err
		}
	}

	if req.Description != nil {
		if *req.Description == "" {
			return nil, entities.ValidationFailed("description must not be empty")
		}
		task.Description = *req.Description
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}
	if req.ClearDue {
		task.DueDate = nil
	} else if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Importance != nil {
		task.Importance = *req.Importance
	}
	if req.Pinned != nil {
		task.Pinned = *req.Pinned
	}
	task.DependsOn = effectiveDep

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	s.logger.Infow("task updated", "task_id", taskID, "list_id", task.ListID)
	return task, nil
}

// DeleteTask removes a task after the access check. Dependents are not
// cleaned up; their depends_on pointers are left dangling.
func (s *TaskService) DeleteTask(ctx context.Context, caller ports.Caller, taskID int64) error {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if _, err := s.accessList(ctx, caller, task.ListID); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.logger.Infow("task deleted", "task_id", taskID, "list_id", task.ListID)
	return nil
}
