package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/listkeeper/core/internal/domain/entities"
	"github.com/listkeeper/core/internal/infrastructure/logger"
	"github.com/listkeeper/core/internal/ports"
)

// UserService handles user administration.
type UserService struct {
	userRepo ports.UserRepository
	logger   *logger.Logger
}

// NewUserService creates a new user service.
func NewUserService(userRepo ports.UserRepository, logger *logger.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

// ListUsers returns all users. Admin-only at the transport boundary.
func (s *UserService) ListUsers(ctx context.Context) ([]*entities.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for _, u := range users {
		u.PasswordHash = ""
	}
	return users, nil
}

// DeleteUser removes a user; owned lists cascade at the storage layer.
func (s *UserService) DeleteUser(ctx context.Context, caller ports.Caller, id uuid.UUID) error {
	if !caller.IsAdmin() {
		return entities.AccessDenied("only administrators may delete users")
	}
	if caller.UserID == id {
		return entities.ValidationFailed("administrators cannot delete themselves")
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Infow("user deleted", "user_id", id, "deleted_by", caller.UserID)
	return nil
}

// ActivityService exposes the activity log to administrators.
type ActivityService struct {
	activityRepo ports.ActivityRepository
}

// NewActivityService creates a new activity service.
func NewActivityService(activityRepo ports.ActivityRepository) *ActivityService {
	return &ActivityService{activityRepo: activityRepo}
}

// List returns activity entries from the last `days` days.
func (s *ActivityService) List(ctx context.Context, caller ports.Caller, days int) ([]entities.ActivityEntry, error) {
	if !caller.IsAdmin() {
		return nil, entities.AccessDenied("only administrators may read the activity log")
	}
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)
	return s.activityRepo.List(ctx, since)
}
