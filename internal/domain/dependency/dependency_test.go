package dependency

import (
	"errors"
	"testing"

	"github.com/listkeeper/core/internal/domain/entities"
)

func wantKind(t *testing.T, err error, kind entities.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	var de *entities.DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected DomainError, got %T: %v", err, err)
	}
	if de.Kind != kind {
		t.Fatalf("expected kind %s, got %s (%v)", kind, de.Kind, err)
	}
}

func TestValidateAssignment(t *testing.T) {
	siblings := []entities.Task{
		{ID: 1, ListID: 10},
		{ID: 2, ListID: 10},
		{ID: 3, ListID: 10},
	}

	cases := []struct {
		name      string
		taskID    int64
		dependsOn int64
		kind      entities.ErrorKind
	}{
		{name: "valid sibling", taskID: 2, dependsOn: 1},
		{name: "self dependency", taskID: 2, dependsOn: 2, kind: entities.KindStructuralConflict},
		{name: "target outside list", taskID: 2, dependsOn: 99, kind: entities.KindStructuralConflict},
		{name: "new task may depend on sibling", taskID: 0, dependsOn: 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateAssignment(tc.taskID, tc.dependsOn, siblings)
			if tc.kind == "" {
				if err != nil {
					t.Fatalf("expected allowed, got %v", err)
				}
				return
			}
			wantKind(t, err, tc.kind)
		})
	}
}

func TestCanComplete(t *testing.T) {
	dep := int64(1)
	task := entities.Task{ID: 2, ListID: 10, DependsOn: &dep}

	t.Run("incomplete dependency blocks", func(t *testing.T) {
		wantKind(t, CanComplete(task, &entities.Task{ID: 1, Completed: false}), entities.KindDependencyBlocked)
	})

	t.Run("completed dependency allows", func(t *testing.T) {
		if err := CanComplete(task, &entities.Task{ID: 1, Completed: true}); err != nil {
			t.Fatalf("expected allowed, got %v", err)
		}
	})

	t.Run("dangling dependency allows", func(t *testing.T) {
		// The dependency target was deleted; the pointer no longer resolves
		// and the gate does not apply.
		if err := CanComplete(task, nil); err != nil {
			t.Fatalf("expected allowed, got %v", err)
		}
	})

	t.Run("no dependency allows", func(t *testing.T) {
		if err := CanComplete(entities.Task{ID: 3, ListID: 10}, nil); err != nil {
			t.Fatalf("expected allowed, got %v", err)
		}
	})
}
