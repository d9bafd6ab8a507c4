package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/listkeeper/core/internal/domain/entities"
	"github.com/listkeeper/core/internal/ports"
)

// memStore is a shared in-memory backing store for the fake repositories. The
// fakes honor the same contracts the sqlx adapters do, including cascade
// behavior on delete and the all-or-nothing merge.
type memStore struct {
	users    map[uuid.UUID]entities.User
	lists    map[int64]entities.List
	tasks    map[int64]entities.Task
	shares   map[string]bool
	activity []entities.ActivityEntry

	nextListID int64
	nextTaskID int64

	// failure injection
	mergeErr    error
	grantErrOn  int64
	activityErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[uuid.UUID]entities.User),
		lists:  make(map[int64]entities.List),
		tasks:  make(map[int64]entities.Task),
		shares: make(map[string]bool),
	}
}

func shareKey(listID int64, userID uuid.UUID) string {
	return fmt.Sprintf("%d/%s", listID, userID)
}

func (m *memStore) addUser(role entities.UserRole) uuid.UUID {
	id := uuid.New()
	m.users[id] = entities.User{ID: id, Email: id.String() + "@example.com", Username: id.String()[:8], Role: role}
	return id
}

func (m *memStore) addList(owner uuid.UUID, parentID *int64, title string) int64 {
	m.nextListID++
	m.lists[m.nextListID] = entities.List{ID: m.nextListID, Title: title, OwnerID: owner, ParentID: parentID}
	return m.nextListID
}

func (m *memStore) addTask(listID int64, description string, completed bool, dependsOn *int64) int64 {
	m.nextTaskID++
	m.tasks[m.nextTaskID] = entities.Task{ID: m.nextTaskID, ListID: listID, Description: description, Completed: completed, DependsOn: dependsOn}
	return m.nextTaskID
}

func (m *memStore) tasksOf(listID int64) []entities.Task {
	var out []entities.Task
	for _, t := range m.tasks {
		if t.ListID == listID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) childrenOf(parentID int64) []*entities.List {
	var out []*entities.List
	for id := range m.lists {
		l := m.lists[id]
		if l.ParentID != nil && *l.ParentID == parentID {
			c := l
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// deleteListCascade removes a list, its children, their tasks, and all share
// rows, mirroring the ON DELETE CASCADE constraints.
func (m *memStore) deleteListCascade(id int64) {
	for _, child := range m.childrenOf(id) {
		m.deleteListCascade(child.ID)
	}
	for tid, t := range m.tasks {
		if t.ListID == id {
			delete(m.tasks, tid)
		}
	}
	for key := range m.shares {
		if hasListPrefix(key, id) {
			delete(m.shares, key)
		}
	}
	delete(m.lists, id)
}

func hasListPrefix(key string, listID int64) bool {
	prefix := fmt.Sprintf("%d/", listID)
	return len(key) > len(prefix) && key[:len(prefix)] == prefix
}

// fakeUserRepo implements ports.UserRepository over memStore.
type fakeUserRepo struct{ s *memStore }

func (r *fakeUserRepo) Create(_ context.Context, user *entities.User) error {
	r.s.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			c := u
			return &c, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*entities.User, error) {
	for _, u := range r.s.users {
		if u.Username == username {
			c := u
			return &c, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *fakeUserRepo) List(_ context.Context) ([]*entities.User, error) {
	var out []*entities.User
	for id := range r.s.users {
		u := r.s.users[id]
		out = append(out, &u)
	}
	return out, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.s.users[id]; !ok {
		return entities.ErrUserNotFound
	}
	delete(r.s.users, id)
	return nil
}

// fakeListRepo implements ports.ListRepository over memStore.
type fakeListRepo struct{ s *memStore }

func (r *fakeListRepo) Create(_ context.Context, list *entities.List) error {
	r.s.nextListID++
	list.ID = r.s.nextListID
	list.CreatedAt = time.Now()
	list.UpdatedAt = list.CreatedAt
	r.s.lists[list.ID] = *list
	return nil
}

func (r *fakeListRepo) GetByID(_ context.Context, id int64) (*entities.List, error) {
	l, ok := r.s.lists[id]
	if !ok {
		return nil, entities.ErrListNotFound
	}
	return &l, nil
}

func (r *fakeListRepo) Update(_ context.Context, list *entities.List) error {
	if _, ok := r.s.lists[list.ID]; !ok {
		return entities.ErrListNotFound
	}
	r.s.lists[list.ID] = *list
	return nil
}

func (r *fakeListRepo) SetParent(_ context.Context, id int64, parentID *int64) error {
	l, ok := r.s.lists[id]
	if !ok {
		return entities.ErrListNotFound
	}
	l.ParentID = parentID
	r.s.lists[id] = l
	return nil
}

func (r *fakeListRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.lists[id]; !ok {
		return entities.ErrListNotFound
	}
	r.s.deleteListCascade(id)
	return nil
}

func (r *fakeListRepo) DeleteOwnedBy(_ context.Context, ownerID uuid.UUID) (int64, error) {
	var doomed []int64
	for id, l := range r.s.lists {
		if l.OwnerID == ownerID {
			doomed = append(doomed, id)
		}
	}
	var deleted int64
	for _, id := range doomed {
		if _, ok := r.s.lists[id]; ok {
			r.s.deleteListCascade(id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeListRepo) GetChildren(_ context.Context, parentID int64) ([]*entities.List, error) {
	return r.s.childrenOf(parentID), nil
}

func (r *fakeListRepo) CountChildren(_ context.Context, parentID int64) (int, error) {
	return len(r.s.childrenOf(parentID)), nil
}

func (r *fakeListRepo) ListAccessible(_ context.Context, userID uuid.UUID) ([]*entities.List, error) {
	var out []*entities.List
	for id := range r.s.lists {
		l := r.s.lists[id]
		if l.OwnerID == userID || r.s.shares[shareKey(l.ID, userID)] {
			c := l
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeListRepo) MergeInto(_ context.Context, sourceID, targetID int64) error {
	// All-or-nothing: an injected failure leaves the store untouched.
	if r.s.mergeErr != nil {
		return r.s.mergeErr
	}
	if _, ok := r.s.lists[sourceID]; !ok {
		return entities.ErrListNotFound
	}
	for id, t := range r.s.tasks {
		if t.ListID == sourceID {
			t.ListID = targetID
			r.s.tasks[id] = t
		}
	}
	r.s.deleteListCascade(sourceID)
	return nil
}

// fakeTaskRepo implements ports.TaskRepository over memStore.
type fakeTaskRepo struct{ s *memStore }

func (r *fakeTaskRepo) Create(_ context.Context, task *entities.Task) error {
	r.s.nextTaskID++
	task.ID = r.s.nextTaskID
	// The adapter coalesces a supplied created_at with CURRENT_TIMESTAMP.
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	task.UpdatedAt = time.Now()
	r.s.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) CreateBatch(ctx context.Context, tasks []*entities.Task) error {
	for _, t := range tasks {
		if err := r.Create(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id int64) (*entities.Task, error) {
	t, ok := r.s.tasks[id]
	if !ok {
		return nil, entities.ErrTaskNotFound
	}
	return &t, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task *entities.Task) error {
	if _, ok := r.s.tasks[task.ID]; !ok {
		return entities.ErrTaskNotFound
	}
	r.s.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.tasks[id]; !ok {
		return entities.ErrTaskNotFound
	}
	delete(r.s.tasks, id)
	return nil
}

func (r *fakeTaskRepo) ListByList(_ context.Context, listID int64) ([]entities.Task, error) {
	return r.s.tasksOf(listID), nil
}

func (r *fakeTaskRepo) CountByList(_ context.Context, listID int64) (int, error) {
	return len(r.s.tasksOf(listID)), nil
}

// fakeShareRepo implements ports.ShareRepository over memStore.
type fakeShareRepo struct{ s *memStore }

func (r *fakeShareRepo) Grant(_ context.Context, listID int64, userID uuid.UUID) error {
	if r.s.grantErrOn == listID {
		return errors.New("grant failed")
	}
	r.s.shares[shareKey(listID, userID)] = true
	return nil
}

func (r *fakeShareRepo) Revoke(_ context.Context, listID int64, userID uuid.UUID) error {
	delete(r.s.shares, shareKey(listID, userID))
	return nil
}

func (r *fakeShareRepo) Exists(_ context.Context, listID int64, userID uuid.UUID) (bool, error) {
	return r.s.shares[shareKey(listID, userID)], nil
}

func (r *fakeShareRepo) ListUsers(_ context.Context, listID int64) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for key, ok := range r.s.shares {
		if ok && hasListPrefix(key, listID) {
			id, err := uuid.Parse(key[len(fmt.Sprintf("%d/", listID)):])
			if err != nil {
				return nil, err
			}
			out = append(out, id)
		}
	}
	return out, nil
}

// fakeActivityRepo implements ports.ActivityRepository over memStore.
type fakeActivityRepo struct{ s *memStore }

func (r *fakeActivityRepo) Append(_ context.Context, level entities.ActivityLevel, message string) error {
	if r.s.activityErr != nil {
		return r.s.activityErr
	}
	r.s.activity = append(r.s.activity, entities.ActivityEntry{
		ID:        int64(len(r.s.activity) + 1),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	})
	return nil
}

func (r *fakeActivityRepo) List(_ context.Context, since time.Time) ([]entities.ActivityEntry, error) {
	var out []entities.ActivityEntry
	for _, e := range r.s.activity {
		if e.CreatedAt.After(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

var _ ports.UserRepository = (*fakeUserRepo)(nil)
var _ ports.ListRepository = (*fakeListRepo)(nil)
var _ ports.TaskRepository = (*fakeTaskRepo)(nil)
var _ ports.ShareRepository = (*fakeShareRepo)(nil)
var _ ports.ActivityRepository = (*fakeActivityRepo)(nil)
