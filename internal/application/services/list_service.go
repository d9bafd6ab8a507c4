package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/listkeeper/core/internal/domain/entities"
	"github.com/listkeeper/core/internal/domain/hierarchy"
	"github.com/listkeeper/core/internal/infrastructure/logger"
	"github.com/listkeeper/core/internal/ports"
)

// ListService orchestrates structural list operations. Every operation loads
// authoritative state, asks the hierarchy package for a verdict, and writes
// only on an allowed verdict.
type ListService struct {
	listRepo     ports.ListRepository
	taskRepo     ports.TaskRepository
	shareRepo    ports.ShareRepository
	userRepo     ports.UserRepository
	activityRepo ports.ActivityRepository
	logger       *logger.Logger
}

// NewListService creates a new list service.
func NewListService(
	listRepo ports.ListRepository,
	taskRepo ports.TaskRepository,
	shareRepo ports.ShareRepository,
	userRepo ports.UserRepository,
	activityRepo ports.ActivityRepository,
	logger *logger.Logger,
) *ListService {
	return &ListService{
		listRepo:     listRepo,
		taskRepo:     taskRepo,
		shareRepo:    shareRepo,
		userRepo:     userRepo,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

// snapshot loads the structural counts for a list, immediately before the
// decision that needs them.
func (s *ListService) snapshot(ctx context.Context, list *entities.List) (hierarchy.Snapshot, error) {
	taskCount, err := s.taskRepo.CountByList(ctx, list.ID)
	if err != nil {
		return hierarchy.Snapshot{}, fmt.Errorf("count tasks: %w", err)
	}
	childCount, err := s.listRepo.CountChildren(ctx, list.ID)
	if err != nil {
		return hierarchy.Snapshot{}, fmt.Errorf("count children: %w", err)
	}
	return hierarchy.Snapshot{List: *list, TaskCount: taskCount, ChildCount: childCount}, nil
}

// canAccess reports whether the caller owns the list or holds a share grant.
func (s *ListService) canAccess(ctx context.Context, caller ports.Caller, list *entities.List) (bool, error) {
	if list.OwnerID == caller.UserID {
		return true, nil
	}
	shared, err := s.shareRepo.Exists(ctx, list.ID, caller.UserID)
	if err != nil {
		return false, fmt.Errorf("check share: %w", err)
	}
	return shared, nil
}

// requireOwner rejects callers without ownership. Structural operations
// (delete, merge, share, reparent) go through here; a share grant is not
// structural authority.
func requireOwner(caller ports.Caller, list *entities.List) error {
	if list.OwnerID != caller.UserID {
		return entities.AccessDenied("only the list owner may perform this operation")
	}
	return nil
}

// record appends to the activity log fire-and-forget: a sink failure is
// logged and never fails the primary operation.
func (s *ListService) record(ctx context.Context, level entities.ActivityLevel, format string, args ...interface{}) {
	if err := s.activityRepo.Append(ctx, level, fmt.Sprintf(format, args...)); err != nil {
		s.logger.Warnw("activity append failed", "error", err)
	}
}

// CreateList creates a list, optionally as a sublist of an existing one.
func (s *ListService) CreateList(ctx context.Context, caller ports.Caller, req ports.CreateListRequest) (*entities.List, error) {
	if req.ParentID != nil {
		parent, err := s.listRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("load parent: %w", err)
		}
		if err := requireOwner(caller, parent); err != nil {
			return nil, err
		}
		parentSnap, err := s.snapshot(ctx, parent)
		if err != nil {
			return nil, err
		}
		if err := hierarchy.CanAcceptChild(parentSnap); err != nil {
			return nil, err
		}
	}

	list := &entities.List{
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     caller.UserID,
		ParentID:    req.ParentID,
	}
	if err := s.listRepo.Create(ctx, list); err != nil {
		return nil, fmt.Errorf("create list: %w", err)
	}

	s.logger.Infow("list created", "list_id", list.ID, "owner_id", list.OwnerID, "parent_id", list.ParentID)
	return list, nil
}

// GetList returns a list with its children, tasks, and share grants.
func (s *ListService) GetList(ctx context.Context, caller ports.Caller, id int64) (*ports.ListDetail, error) {
	list, err := s.listRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ok, err := s.canAccess(ctx, caller, list)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, entities.AccessDenied("you do not have access to this list")
	}

	children, err := s.listRepo.GetChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.ListByList(ctx, id)
	if err != nil {
		return nil, err
	}
	shared, err := s.shareRepo.ListUsers(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ports.ListDetail{List: *list, Children: children, Tasks: tasks, Shared: shared}, nil
}

// ListAccessible returns all lists the caller owns or has been granted.
func (s *ListService) ListAccessible(ctx context.Context, caller ports.Caller) ([]*entities.List, error) {
	lists, err := s.listRepo.ListAccessible(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("list accessible: %w", err)
	}
	return lists, nil
}

// UpdateList renames a list or changes its description. Shared users may
// edit; only structure requires ownership.
func (s *ListService) UpdateList(ctx context.Context, caller ports.Caller, id int64, req ports.UpdateListRequest) (*entities.List, error) {
	list, err := s.listRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ok, err := s.canAccess(ctx, caller, list)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, entities.AccessDenied("you do not have access to this list")
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, entities.ValidationFailed("title must not be empty")
		}
		list.Title = *req.Title
	}
	if req.Description != nil {
		list.Description = *req.Description
	}

	if err := s.listRepo.Update(ctx, list); err != nil {
		return nil, fmt.Errorf("update list: %w", err)
	}

	return list, nil
}

// MoveList reparents a list. A nil parent moves the list to the top level
// unconditionally; everything else runs the full reparent verdict.
func (s *ListService) MoveList(ctx context.Context, caller ports.Caller, id int64, newParentID *int64) (*entities.List, error) {
	list, err := s.listRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(caller, list); err != nil {
		return nil, err
	}

	if newParentID != nil {
		parent, err := s.listRepo.GetByID(ctx, *newParentID)
		if err != nil {
			return nil, fmt.Errorf("load new parent: %w", err)
		}
		candidateSnap, err := s.snapshot(ctx, list)
		if err != nil {
			return nil, err
		}
		parentSnap, err := s.snapshot(ctx, parent)
		if err != nil {
			return nil, err
		}
		if err := hierarchy.CanMoveIntoParent(candidateSnap, parentSnap, caller.UserID); err != nil {
			return nil, err
		}
	}

	if err := s.listRepo.SetParent(ctx, id, newParentID); err != nil {
		return nil, fmt.Errorf("move list: %w", err)
	}

	list.ParentID = newParentID
	s.logger.Infow("list moved", "list_id", id, "parent_id", newParentID)
	return list, nil
}

// MergeLists migrates every task of the source list into the target and
// deletes the source, atomically.
func (s *ListService) MergeLists(ctx context.Context, caller ports.Caller, sourceID, targetID int64) error {
	source, err := s.listRepo.GetByID(ctx, sourceID)
	if err != nil {
		return err
	}
	if err := requireOwner(caller, source); err != nil {
		return err
	}

	target, err := s.listRepo.GetByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("load target: %w", err)
	}

	sourceSnap, err := s.snapshot(ctx, source)
	if err != nil {
		return err
	}
	targetSnap, err := s.snapshot(ctx, target)
	if err != nil {
		return err
	}
	if err := hierarchy.CanMergeSourceIntoTarget(sourceSnap, targetSnap, caller.UserID); err != nil {
		return err
	}

	if err := s.listRepo.MergeInto(ctx, sourceID, targetID); err != nil {
		return fmt.Errorf("merge lists: %w", err)
	}

	s.record(ctx, entities.ActivityInfo, "list %q merged into %q (%d tasks)", source.Title, target.Title, sourceSnap.TaskCount)
	s.logger.Infow("lists merged", "source_id", sourceID, "target_id", targetID, "tasks", sourceSnap.TaskCount)
	return nil
}

// DeleteList removes a list. Children, tasks, and shares cascade at the
// storage layer; container deletion needs no per-child logic here.
func (s *ListService) DeleteList(ctx context.Context, caller ports.Caller, id int64) error {
	list, err := s.listRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwner(caller, list); err != nil {
		return err
	}

	if err := s.listRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}

	s.logger.Infow("list deleted", "list_id", id, "owner_id", caller.UserID)
	return nil
}

// PurgeLists deletes every list the caller owns.
func (s *ListService) PurgeLists(ctx context.Context, caller ports.Caller) (int64, error) {
	deleted, err := s.listRepo.DeleteOwnedBy(ctx, caller.UserID)
	if err != nil {
		return 0, fmt.Errorf("purge lists: %w", err)
	}

	s.record(ctx, entities.ActivityWarning, "user %s purged %d lists", caller.UserID, deleted)
	s.logger.Infow("lists purged", "owner_id", caller.UserID, "deleted", deleted)
	return deleted, nil
}

// ShareList grants a user access to a list and, at this moment, to its
// direct children. Lists created under the subtree afterwards are not
// retroactively shared.
func (s *ListService) ShareList(ctx context.Context, caller ports.Caller, listID int64, userID uuid.UUID) error {
	list, err := s.listRepo.GetByID(ctx, listID)
	if err != nil {
		return err
	}
	if err := requireOwner(caller, list); err != nil {
		return err
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return fmt.Errorf("load grantee: %w", err)
	}

	// A share row for the owner is meaningless; suppress it.
	if userID == list.OwnerID {
		return nil
	}

	if err := s.shareRecursive(ctx, listID, userID); err != nil {
		return err
	}

	s.logger.Infow("list shared", "list_id", listID, "user_id", userID)
	return nil
}

// UnshareList revokes a user's access to a list and its direct children.
func (s *ListService) UnshareList(ctx context.Context, caller ports.Caller, listID int64, userID uuid.UUID) error {
	list, err := s.listRepo.GetByID(ctx, listID)
	if err != nil {
		return err
	}
	if err := requireOwner(caller, list); err != nil {
		return err
	}

	if err := s.unshareRecursive(ctx, listID, userID); err != nil {
		return err
	}

	s.logger.Infow("list unshared", "list_id", listID, "user_id", userID)
	return nil
}

// shareRecursive walks the subtree depth-first, parent before children. The
// hierarchy is capped at two tiers today, but the walk is written over
// "children of this node" so a relaxed cap needs no restructuring. The
// fan-out is deliberately not one transaction; a mid-walk failure leaves a
// partially shared subtree.
func (s *ListService) shareRecursive(ctx context.Context, listID int64, userID uuid.UUID) error {
	if err := s.shareRepo.Grant(ctx, listID, userID); err != nil {
		return fmt.Errorf("grant share on list %d: %w", listID, err)
	}

	children, err := s.listRepo.GetChildren(ctx, listID)
	if err != nil {
		return fmt.Errorf("load children of list %d: %w", listID, err)
	}
	for _, child := range children {
		if err := s.shareRecursive(ctx, child.ID, userID); err != nil {
			return err
		}
	}
	return nil
}

// unshareRecursive is the structural mirror of shareRecursive.
func (s *ListService) unshareRecursive(ctx context.Context, listID int64, userID uuid.UUID) error {
	if err := s.shareRepo.Revoke(ctx, listID, userID); err != nil {
		return fmt.Errorf("revoke share on list %d: %w", listID, err)
	}

	children, err := s.listRepo.GetChildren(ctx, listID)
	if err != nil {
		return fmt.Errorf("load children of list %d: %w", listID, err)
	}
	for _, child := range children {
		if err := s.unshareRecursive(ctx, child.ID, userID); err != nil {
			return err
		}
	}
	return nil
}
