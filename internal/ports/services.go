package ports

import (
	"time"

	"github.com/google/uuid"

	"github.com/listkeeper/core/internal/domain/entities"
)

// Caller is the authenticated identity resolved by the auth layer before any
// orchestrator operation runs.
type Caller struct {
	UserID uuid.UUID
	Role   entities.UserRole
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == entities.RoleAdmin
}

// Auth request/response types.

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int64          `json:"expires_in"`
	User         *entities.User `json:"user"`
}

// List request types.

type CreateListRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	ParentID    *int64 `json:"parent_id"`
}

type UpdateListRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type MoveListRequest struct {
	ParentID *int64 `json:"parent_id"`
}

type MergeListsRequest struct {
	TargetID int64 `json:"target_id" validate:"required"`
}

type ShareListRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// ListDetail is a list together with its loaded relations.
type ListDetail struct {
	entities.List
	Children []*entities.List `json:"children"`
	Tasks    []entities.Task  `json:"tasks"`
	Shared   []uuid.UUID      `json:"shared_with"`
}

// Task request types.

type CreateTaskRequest struct {
	Description string     `json:"description" validate:"required,max=2000"`
	DueDate     *time.Time `json:"due_date"`
	Importance  int        `json:"importance" validate:"min=0,max=3"`
	Pinned      bool       `json:"pinned"`
	DependsOn   *int64     `json:"depends_on"`
}

type UpdateTaskRequest struct {
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	Completed   *bool      `json:"completed"`
	DueDate     *time.Time `json:"due_date"`
	ClearDue    bool       `json:"clear_due_date"`
	Importance  *int       `json:"importance" validate:"omitempty,min=0,max=3"`
	Pinned      *bool      `json:"pinned"`
	DependsOn   *int64     `json:"depends_on"`
	ClearDep    bool       `json:"clear_depends_on"`
}

type ImportTasksRequest struct {
	Drafts []entities.TaskDraft `json:"drafts" validate:"required,min=1,dive"`
}
