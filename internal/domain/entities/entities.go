package entities

import (
	"time"

	"github.com/google/uuid"
)

// UserRole is a closed enum; authorization code must handle every value.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// ActivityLevel classifies activity log entries.
type ActivityLevel string

const (
	ActivityInfo    ActivityLevel = "info"
	ActivityWarning ActivityLevel = "warning"
)

// User represents an account that owns lists and may be granted shares.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// List is a task list. A list with a nil ParentID is a master list; a list
// with a non-nil ParentID is a sublist. Hierarchy depth is capped at two
// tiers, and a list holds either tasks or child lists, never both.
type List struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	OwnerID     uuid.UUID `json:"owner_id" db:"owner_id"`
	ParentID    *int64    `json:"parent_id" db:"parent_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// IsSublist reports whether the list sits below a master list.
func (l *List) IsSublist() bool {
	return l.ParentID != nil
}

// Task belongs to exactly one list. DependsOn, when set, points at another
// task in the same list; the pointed-at task must be completed before this
// one may be. A deleted dependency leaves the pointer dangling on purpose.
type Task struct {
	ID          int64      `json:"id" db:"id"`
	ListID      int64      `json:"list_id" db:"list_id"`
	Description string     `json:"description" db:"description"`
	Completed   bool       `json:"completed" db:"completed"`
	DueDate     *time.Time `json:"due_date" db:"due_date"`
	Importance  int        `json:"importance" db:"importance"`
	DependsOn   *int64     `json:"depends_on" db:"depends_on"`
	Pinned      bool       `json:"pinned" db:"pinned"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// HasDependency reports whether the task carries a dependency pointer.
func (t *Task) HasDependency() bool {
	return t.DependsOn != nil
}

// ListShare grants a non-owner user read/write access to a list. A share row
// is never created for the list's owner.
type ListShare struct {
	ListID    int64     `json:"list_id" db:"list_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ActivityEntry is an append-only log record kept for a rolling 30 days.
type ActivityEntry struct {
	ID        int64         `json:"id" db:"id"`
	Level     ActivityLevel `json:"level" db:"level"`
	Message   string        `json:"message" db:"message"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

// TaskDraft is a pre-parsed task handed in by an import collaborator. The
// orchestrator only gates and inserts drafts; it never parses file formats.
type TaskDraft struct {
	Description string     `json:"description" validate:"required"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"due_date"`
	Importance  int        `json:"importance"`
	CreatedAt   *time.Time `json:"created_at"`
}
