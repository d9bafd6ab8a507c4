// Package hierarchy holds the pure decision logic for the two-tier list
// hierarchy. Every check takes an explicit snapshot loaded by the caller and
// returns a typed domain error on rejection; nothing here touches storage.
package hierarchy

import (
	"github.com/google/uuid"

	"github.com/listkeeper/core/internal/domain/entities"
)

// Snapshot captures the state of one list immediately before a structural
// decision: the list row plus the counts that drive every hierarchy rule.
type Snapshot struct {
	List       entities.List
	TaskCount  int
	ChildCount int
}

// IsContainer reports whether the list currently has child lists.
func (s Snapshot) IsContainer() bool {
	return s.ChildCount > 0
}

// HoldsTasks reports whether the list currently has tasks.
func (s Snapshot) HoldsTasks() bool {
	return s.TaskCount > 0
}

// CanHoldTasks rejects task creation or import into a container list.
func CanHoldTasks(list Snapshot) error {
	if list.IsContainer() {
		return entities.StructuralConflict("list contains sublists and cannot hold tasks")
	}
	return nil
}

// CanAcceptChild rejects a list as a prospective parent when it is itself a
// sublist (depth cap) or when it already holds tasks.
func CanAcceptChild(parent Snapshot) error {
	if parent.List.IsSublist() {
		return entities.StructuralConflict("sublists cannot have sublists of their own")
	}
	if parent.HoldsTasks() {
		return entities.StructuralConflict("list contains tasks and cannot have sublists")
	}
	return nil
}

// CanBecomeChild decides whether candidate may be placed under parent.
// The caller must own the prospective parent, and the candidate must belong
// to the same owner; sharing never grants structural authority.
func CanBecomeChild(candidate, parent Snapshot, callerID uuid.UUID) error {
	if candidate.List.ID == parent.List.ID {
		return entities.StructuralConflict("a list cannot become its own parent")
	}
	if parent.List.OwnerID != callerID {
		return entities.AccessDenied("only the owner of the parent list may nest lists under it")
	}
	if candidate.List.OwnerID != parent.List.OwnerID {
		return entities.AccessDenied("a sublist must belong to the same owner as its parent")
	}
	return CanAcceptChild(parent)
}

// CanMoveIntoParent decides a reparent request. On top of CanBecomeChild, a
// list that has children of its own is barred from acquiring any parent; it
// stays at the top level until emptied.
func CanMoveIntoParent(candidate, parent Snapshot, callerID uuid.UUID) error {
	if candidate.IsContainer() {
		return entities.StructuralConflict("list contains sublists and must stay at the top level")
	}
	return CanBecomeChild(candidate, parent, callerID)
}

// CanMergeSourceIntoTarget decides whether source's tasks may be migrated
// into target before source is deleted. Containers are never merge sources,
// and the target must be able to accept tasks.
func CanMergeSourceIntoTarget(source, target Snapshot, callerID uuid.UUID) error {
	if source.List.ID == target.List.ID {
		return entities.StructuralConflict("a list cannot be merged into itself")
	}
	if source.IsContainer() {
		return entities.StructuralConflict("source list contains sublists and cannot be merged")
	}
	if target.List.OwnerID != callerID {
		return entities.AccessDenied("only the owner of the target list may merge into it")
	}
	if target.IsContainer() {
		return entities.StructuralConflict("target list contains sublists; cannot merge tasks into it")
	}
	return nil
}
