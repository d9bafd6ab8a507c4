package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/listkeeper/core/internal/domain/entities"
	"github.com/listkeeper/core/internal/infrastructure/logger"
	"github.com/listkeeper/core/internal/ports"
)

func newListService(s *memStore) *ListService {
	return NewListService(
		&fakeListRepo{s: s},
		&fakeTaskRepo{s: s},
		&fakeShareRepo{s: s},
		&fakeUserRepo{s: s},
		&fakeActivityRepo{s: s},
		logger.NewNop(),
	)
}

func asCaller(id uuid.UUID) ports.Caller {
	return ports.Caller{UserID: id, Role: entities.RoleUser}
}

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

func int64ptr(v int64) *int64 { return &v }

func TestCreateList(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	svc := newListService(s)
	owner := s.addUser(entities.RoleUser)

	top, err := svc.CreateList(ctx, asCaller(owner), ports.CreateListRequest{Title: "Groceries"})
	if err != nil {
		t.Fatalf("create top-level list: %v", err)
	}
	if top.ParentID != nil {
		t.Fatalf("top-level list must have nil parent, got %v", *top.ParentID)
	}

	child, err := svc.CreateList(ctx, asCaller(owner), ports.CreateListRequest{Title: "Produce", ParentID: &top.ID})
	if err != nil {
		t.Fatalf("create sublist: %v", err)
	}

	t.Run("sublist cannot have a sublist", func(t *testing.T) {
		_, err := svc.CreateList(ctx, asCaller(owner), ports.CreateListRequest{Title: "Fruit", ParentID: &child.ID})
		wantKind(t, err, entities.KindStructuralConflict)
	})

	t.Run("task-holding list cannot have a sublist", func(t *testing.T) {
		leaf := s.addList(owner, nil, "Errands")
		s.addTask(leaf, "post office", false, nil)
		_, err := svc.CreateList(ctx, asCaller(owner), ports.CreateListRequest{Title: "More", ParentID: &leaf})
		wantKind(t, err, entities.KindStructuralConflict)
	})

	t.Run("only the parent owner may nest", func(t *testing.T) {
		other := s.addUser(entities.RoleUser)
		_, err := svc.CreateList(ctx, asCaller(other), ports.CreateListRequest{Title: "Sneaky", ParentID: &top.ID})
		wantKind(t, err, entities.KindAccessDenied)
	})

	t.Run("missing parent", func(t *testing.T) {
		_, err := svc.CreateList(ctx, asCaller(owner), ports.CreateListRequest{Title: "Orphan", ParentID: int64ptr(9999)})
		wantKind(t, err, entities.KindNotFound)
	})
}

func TestGetListAccess(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	svc := newListService(s)
	owner := s.addUser(entities.RoleUser)
	guest := s.addUser(entities.RoleUser)
	stranger := s.addUser(entities.RoleUser)

	listID := s.addList(owner, nil, "Chores")
	s.addTask(listID, "laundry", false, nil)
	s.shares[shareKey(listID, guest)] = true

	if _, err := svc.GetList(ctx, asCaller(owner), listID); err != nil {
		t.Fatalf("owner access: %v", err)
	}
	detail, err := svc.GetList(ctx, asCaller(guest), listID)
	if err != nil {
		t.Fatalf("shared access: %v", err)
	}
	if len(detail.Tasks) != 1 {
		t.Fatalf("expected 1 task in detail, got %d", len(detail.Tasks))
	}
	_, err = svc.GetList(ctx, asCaller(stranger), listID)
	wantKind(t, err, entities.KindAccessDenied)
}

func TestUpdateList(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	svc := newListService(s)
	owner := s.addUser(entities.RoleUser)
	guest := s.addUser(entities.RoleUser)

	listID := s.addList(owner, nil, "Reading")
	s.shares[shareKey(listID, guest)] = true

	title := "Reading 2026"
	updated, err := svc.UpdateList(ctx, asCaller(guest), listID, ports.UpdateListRequest{Title: &title})
	if err != nil {
		t.Fatalf("shared user should be able to rename: %v", err)
	}
	if updated.Title != title {
		t.Fatalf("title not applied: %q", updated.Title)
	}

	empty := ""
	_, err = svc.UpdateList(ctx, asCaller(owner), listID, ports.UpdateListRequest{Title: &empty})
	wantKind(t, err, entities.KindValidationFailed)
}

func TestMoveList(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	svc := newListService(s)
	owner := s.addUser(entities.RoleUser)

	parent := s.addList(owner, nil, "Projects")
	loose := s.addList(owner, nil, "Garden")

	moved, err := svc.MoveList(ctx, asCaller(owner), loose, &parent)
	if err != nil {
		t.Fatalf("valid move: %v", err)
	}
	if moved.ParentID == nil || *moved.ParentID != parent {
		t.Fatalf("parent not applied: %v", moved.ParentID)
	}

	t.Run("container cannot acquire a parent", func(t *testing.T) {
		other := s.addList(owner, nil, "Other")
		_, err := svc.MoveList(ctx, asCaller(owner), parent, &other)
		wantKind(t, err, entities.KindStructuralConflict)
	})

	t.Run("nil parent moves to top level unconditionally", func(t *testing.T) {
		out, err := svc.MoveList(ctx, asCaller(owner), loose, nil)
		if err != nil {
			t.Fatalf("move to top level: %v", err)
		}
		if out.ParentID != nil {
			t.Fatalf("expected nil parent, got %v", *out.ParentID)
		}
	})

	t.Run("self parenting", func(t *testing.T) {
		_, err := svc.MoveList(ctx, asCaller(owner), loose, &loose)
		wantKind(t, err, entities.KindStructuralConflict)
	})

	t.Run("move into task-holding list", func(t *testing.T) {
		full := s.addList(owner, nil, "Full")
		s.addTask(full, "something", false, nil)
		_, err := svc.MoveList(ctx, asCaller(owner), loose, &full)
		wantKind(t, err, entities.KindStructuralConflict)
	})

	t.Run("non-owner cannot move", func(t *testing.T) {
		other := s.addUser(entities.RoleUser)
		_, err := svc.MoveList(ctx, asCaller(other), loose, &parent)
		wantKind(t, err, entities.KindAccessDenied)
	})
}

func TestMergeLists(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	svc := newListService(s)
	owner := s.addUser(entities.RoleUser)

	source := s.addList(owner, nil, "Weekend")
	target := s.addList(owner, nil, "Backlog")
	s.addTask(source, "wash car", false, nil)
	s.addTask(source, "mow lawn", true, nil)
	s.addTask(source, "tidy shed", false, nil)
	s.addTask(target, "pay bills", false, nil)

	if err := svc.MergeLists(ctx, asCaller(owner), source, target); err != nil {
		t.Fatalf("merge: %v", err)
	}

	if _, ok := s.lists[source]; ok {
		t.Fatal("source list should be deleted after merge")
	}
	if got := len(s.tasksOf(target)); got != 4 {
		t.Fatalf("expected 4 tasks on target, got %d", got)
	}
	if len(s.activity) != 1 || s.activity[0].Level != entities.ActivityInfo {
		t.Fatalf("expected one info activity entry, got %+v", s.activity)
	}
}

func TestMergeListsRejections(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	svc := newListService(s)
	owner := s.addUser(entities.RoleUser)
	other := s.addUser(entities.RoleUser)

	source := s.addList(owner, nil, "Source")
	s.addTask(source, "task", false, nil)

	t.Run("merge into itself", func(t *testing.T) {
		wantKind(t, svc.MergeLists(ctx, asCaller(owner), source, source), entities.KindStructuralConflict)
	})

	t.Run("container source", func(t *testing.T) {
		container := s.addList(owner, nil, "Container")
		s.addList(owner, &container, "Child")
		target := s.addList(owner, nil, "Target")
		wantKind(t, svc.MergeLists(ctx, asCaller(owner), container, target), entities.KindStructuralConflict)
	})

	t.Run("container target", func(t *testing.T) {
		container := s.addList(owner, nil, "Container2")
		s.addList(owner, &container, "Child2")
		wantKind(t, svc.MergeLists(ctx, asCaller(owner), source, container), entities.KindStructuralConflict)
	})

	t.Run("foreign target", func(t *testing.T) {
		foreign := s.addList(other, nil, "Foreign")
		wantKind(t, svc.MergeLists(ctx, asCaller(owner), source, foreign), entities.KindAccessDenied)
	})

	t.Run("non-owner source", func(t *testing.T) {
		target := s.addList(owner, nil, "Target2")
		wantKind(t, svc.MergeLists(ctx, asCaller(other), source, target), entities.KindAccessDenied)
	})
}

func TestMergeListsAtomicity(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	svc := newListService(s)
	owner := s.addUser(entities.RoleUser)

	source := s.addList(owner, nil, "Source")
	target := s.addList(owner, nil, "Target")
	s.addTask(source, "a", false, nil)
	s.addTask(source, "b", false, nil)
	s.mergeErr = errors.New("storage down")

	if err := svc.MergeLists(ctx, asCaller(owner), source, target); err == nil {
		t.Fatal("expected merge failure")
	}

	// A failed merge must leave both lists exactly as they were.
	if _, ok := s.lists[source]; !ok {
		t.Fatal("source list must survive a failed merge")
	}
	if got := len(s.tasksOf(source)); got != 2 {
		t.Fatalf("expected 2 tasks still on source, got %d", got)
	}
	if got := len(s.tasksOf(target)); got != 0 {
		t.Fatalf("expected 0 tasks on target, got %d", got)
	}
}

func TestShareList(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	svc := newListService(s)
	owner := s.addUser(entities.RoleUser)
	guest := s.addUser(entities.RoleUser)

	parent := s.addList(owner, nil, "Household")
	childA := s.addList(owner, &parent, "Kitchen")
	childB := s.addList(owner, &parent, "Bathroom")

	if err := svc.ShareList(ctx, asCaller(owner), parent, guest); err != nil {
		t.Fatalf("share: %v", err)
	}

	for _, id := range []int64{parent, childA, childB} {
		if !s.shares[shareKey(id, guest)] {
			t.Fatalf("list %d not shared with guest", id)
		}
	}

	t.Run("idempotent", func(t *testing.T) {
		before := len(s.shares)
		if err := svc.ShareList(ctx, asCaller(owner), parent, guest); err != nil {
			t.Fatalf("repeat share: %v", err)
		}
		if len(s.shares) != before {
			t.Fatalf("repeat share changed grant count: %d != %d", len(s.shares), before)
		}
	})

	t.Run("no retroactive grant for later children", func(t *testing.T) {
		late := s.addList(owner, &parent, "Garage")
		if s.shares[shareKey(late, guest)] {
			t.Fatal("child created after the share must not inherit it")
		}
	})

	t.Run("sharing with the owner is a no-op", func(t *testing.T) {
		if err := svc.ShareList(ctx, asCaller(owner), parent, owner); err != nil {
			t.Fatalf("owner share: %v", err)
		}
		if s.shares[shareKey(parent, owner)] {
			t.Fatal("no share row may exist for the owner")
		}
	})

	t.Run("unknown grantee", func(t *testing.T) {
		wantKind(t, svc.ShareList(ctx, asCaller(owner), parent, uuid.New()), entities.KindNotFound)
	})

	t.Run("shared user cannot share onward", func(t *testing.T) {
		wantKind(t, svc.ShareList(ctx, asCaller(guest), parent, s.addUser(entities.RoleUser)), entities.KindAccessDenied)
	})

	t.Run("unshare walks the subtree", func(t *testing.T) {
		if err := svc.UnshareList(ctx, asCaller(owner), parent, guest); err != nil {
			t.Fatalf("unshare: %v", err)
		}
		for _, id := range []int64{parent, childA, childB} {
			if s.shares[shareKey(id, guest)] {
				t.Fatalf("list %d still shared after unshare", id)
			}
		}
	})
}

func TestShareListPartialFailure(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	svc := newListService(s)
	owner := s.addUser(entities.RoleUser)
	guest := s.addUser(entities.RoleUser)

	parent := s.addList(owner, nil, "Household")
	child := s.addList(owner, &parent, "Kitchen")
	s.grantErrOn = child

	if err := svc.ShareList(ctx, asCaller(owner), parent, guest); err == nil {
		t.Fatal("expected share failure on child grant")
	}

	// The fan-out is not transactional: the parent grant survives.
	if !s.shares[shareKey(parent, guest)] {
		t.Fatal("parent grant should persist after a child grant failure")
	}
	if s.shares[shareKey(child, guest)] {
		t.Fatal("child grant must not exist after the failure")
	}
}

func TestDeleteList(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	svc := newListService(s)
	owner := s.addUser(entities.RoleUser)
	guest := s.addUser(entities.RoleUser)

	parent := s.addList(owner, nil, "Parent")
	child := s.addList(owner, &parent, "Child")
	taskID := s.addTask(child, "deep task", false, nil)
	s.shares[shareKey(parent, guest)] = true

	t.Run("shared user cannot delete", func(t *testing.T) {
		wantKind(t, svc.DeleteList(ctx, asCaller(guest), parent), entities.KindAccessDenied)
	})

	if err := svc.DeleteList(ctx, asCaller(owner), parent); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := s.lists[child]; ok {
		t.Fatal("child list should cascade")
	}
	if _, ok := s.tasks[taskID]; ok {
		t.Fatal("nested task should cascade")
	}
	if s.shares[shareKey(parent, guest)] {
		t.Fatal("share rows should cascade")
	}
}

func TestPurgeLists(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	svc := newListService(s)
	owner := s.addUser(entities.RoleUser)
	other := s.addUser(entities.RoleUser)

	s.addList(owner, nil, "A")
	s.addList(owner, nil, "B")
	kept := s.addList(other, nil, "Keep")

	deleted, err := svc.PurgeLists(ctx, asCaller(owner))
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d", deleted)
	}
	if _, ok := s.lists[kept]; !ok {
		t.Fatal("other user's list must survive a purge")
	}
	if len(s.activity) != 1 || s.activity[0].Level != entities.ActivityWarning {
		t.Fatalf("expected one warning activity entry, got %+v", s.activity)
	}
}

func TestActivityFailureDoesNotFailOperation(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	svc := newListService(s)
	owner := s.addUser(entities.RoleUser)

	s.addList(owner, nil, "A")
	s.activityErr = errors.New("sink down")

	if _, err := svc.PurgeLists(ctx, asCaller(owner)); err != nil {
		t.Fatalf("purge must succeed despite activity sink failure: %v", err)
	}
}
