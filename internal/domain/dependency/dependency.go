// Package dependency holds the pure gating rules for task dependencies: a
// task may point at one other task in the same list, and cannot be completed
// while that task is incomplete.
package dependency

import (
	"github.com/listkeeper/core/internal/domain/entities"
)

// ValidateAssignment checks a proposed depends_on value for a task. The
// caller supplies the current tasks of the task's list; the proposed target
// must resolve within them and must not be the task itself.
func ValidateAssignment(taskID, proposedDependsOn int64, sameListTasks []entities.Task) error {
	if proposedDependsOn == taskID {
		return entities.StructuralConflict("a task cannot depend on itself")
	}
	for i := range sameListTasks {
		if sameListTasks[i].ID == proposedDependsOn {
			return nil
		}
	}
	return entities.StructuralConflict("dependency must reference a task in the same list")
}

// CanComplete decides whether task may be marked completed given its resolved
// dependency, or nil when the task has none (including a dangling pointer
// whose target was deleted).
func CanComplete(task entities.Task, resolvedDependency *entities.Task) error {
	if resolvedDependency == nil {
		return nil
	}
	if !resolvedDependency.Completed {
		return entities.DependencyBlocked("task depends on an incomplete task")
	}
	return nil
}
