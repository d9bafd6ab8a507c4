package http

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/listkeeper/core/internal/application/services"
	"github.com/listkeeper/core/internal/infrastructure/logger"
	"github.com/listkeeper/core/internal/ports"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	authService *services.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService *services.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// Register handles account creation.
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("register failed", "error", err, "email", req.Email)
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, response)
}

// Login handles user login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		h.logger.Warnw("login failed", "email", req.Email)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	return c.JSON(http.StatusOK, response)
}

// RefreshTokenRequest carries the refresh token for rotation.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh handles token rotation.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	response, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}

	return c.JSON(http.StatusOK, response)
}

// Logout revokes the caller's refresh tokens.
func (h *AuthHandler) Logout(c echo.Context) error {
	caller := callerFromContext(c)

	if err := h.authService.Logout(c.Request().Context(), caller.UserID); err != nil {
		h.logger.Errorw("logout failed", "error", err, "user_id", caller.UserID)
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "logged out"})
}

// UserHandler handles user administration requests.
type UserHandler struct {
	userService *services.UserService
	logger      *logger.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService *services.UserService, logger *logger.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// GetCurrentUser returns the caller's own user record.
func (h *UserHandler) GetCurrentUser(c echo.Context) error {
	caller := callerFromContext(c)

	user, err := h.userService.GetUser(c.Request().Context(), caller.UserID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

// GetUser returns a user by ID.
func (h *UserHandler) GetUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user ID")
	}

	user, err := h.userService.GetUser(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

// ListUsers returns all users.
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context())
	if err != nil {
		h.logger.Errorw("list users failed", "error", err)
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, users)
}

// DeleteUser removes a user.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	caller := callerFromContext(c)

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user ID")
	}

	if err := h.userService.DeleteUser(c.Request().Context(), caller, userID); err != nil {
		return respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ActivityHandler exposes the activity log.
type ActivityHandler struct {
	activityService *services.ActivityService
}

// NewActivityHandler creates a new activity handler.
func NewActivityHandler(activityService *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// List returns recent activity entries.
func (h *ActivityHandler) List(c echo.Context) error {
	caller := callerFromContext(c)

	days := 30
	if daysStr := c.QueryParam("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid days parameter")
		}
		days = parsed
	}

	entries, err := h.activityService.List(c.Request().Context(), caller, days)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, entries)
}
