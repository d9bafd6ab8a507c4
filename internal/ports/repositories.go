package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/listkeeper/core/internal/domain/entities"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	List(ctx context.Context) ([]*entities.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ListRepository defines the interface for list data operations. Structural
// state (task and child counts) is always re-read from the store immediately
// before a decision; no caller caches it across operations.
type ListRepository interface {
	Create(ctx context.Context, list *entities.List) error
	GetByID(ctx context.Context, id int64) (*entities.List, error)
	Update(ctx context.Context, list *entities.List) error
	// SetParent reparents a list; a nil parentID moves it to the top level.
	SetParent(ctx context.Context, id int64, parentID *int64) error
	Delete(ctx context.Context, id int64) error
	DeleteOwnedBy(ctx context.Context, ownerID uuid.UUID) (int64, error)
	GetChildren(ctx context.Context, parentID int64) ([]*entities.List, error)
	CountChildren(ctx context.Context, parentID int64) (int, error)
	// ListAccessible returns lists the user owns plus lists shared with them.
	ListAccessible(ctx context.Context, userID uuid.UUID) ([]*entities.List, error)
	// MergeInto reassigns every task of sourceID to targetID and deletes the
	// source list, atomically: both steps commit together or neither does.
	MergeInto(ctx context.Context, sourceID, targetID int64) error
}

// TaskRepository defines the interface for task data operations.
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error
	CreateBatch(ctx context.Context, tasks []*entities.Task) error
	GetByID(ctx context.Context, id int64) (*entities.Task, error)
	Update(ctx context.Context, task *entities.Task) error
	Delete(ctx context.Context, id int64) error
	ListByList(ctx context.Context, listID int64) ([]entities.Task, error)
	CountByList(ctx context.Context, listID int64) (int, error)
}

// ShareRepository defines the interface for share grants.
type ShareRepository interface {
	// Grant is idempotent: granting an existing share is a no-op, not an error.
	Grant(ctx context.Context, listID int64, userID uuid.UUID) error
	Revoke(ctx context.Context, listID int64, userID uuid.UUID) error
	Exists(ctx context.Context, listID int64, userID uuid.UUID) (bool, error)
	ListUsers(ctx context.Context, listID int64) ([]uuid.UUID, error)
}

// ActivityRepository is the append-only activity log sink. Append prunes
// entries older than the retention window as part of each insert.
type ActivityRepository interface {
	Append(ctx context.Context, level entities.ActivityLevel, message string) error
	List(ctx context.Context, since time.Time) ([]entities.ActivityEntry, error)
}

// AuthRepository defines the interface for refresh token persistence.
type AuthRepository interface {
	CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// RefreshToken represents a refresh token record.
type RefreshToken struct {
	ID        int64      `db:"id"`
	UserID    uuid.UUID  `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	CreatedAt time.Time  `db:"created_at"`
	RevokedAt *time.Time `db:"revoked_at"`
}

// IsValid reports whether the token is neither expired nor revoked.
func (rt *RefreshToken) IsValid() bool {
	return rt.RevokedAt == nil && time.Now().Before(rt.ExpiresAt)
}
