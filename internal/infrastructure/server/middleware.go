package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/listkeeper/core/internal/application/services"
	"github.com/listkeeper/core/internal/ports"
)

// authMiddleware validates the bearer token and places the resolved caller
// identity in the request context.
func (s *Server) authMiddleware(authService *services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
			}

			claims, err := authService.ValidateToken(tokenString)
			if err != nil {
				s.logger.Warnw("invalid token", "error", err, "ip", c.RealIP())
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
			}

			c.Set("caller", ports.Caller{UserID: userID, Role: claims.Role})

			return next(c)
		}
	}
}

// requireAdmin rejects non-admin callers. The role enum is closed, so
// anything that is not admin is a regular user.
func (s *Server) requireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, ok := c.Get("caller").(ports.Caller)
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "caller identity not found")
			}

			if !caller.IsAdmin() {
				s.logger.Warnw("insufficient permissions",
					"user_id", caller.UserID,
					"endpoint", c.Request().URL.Path,
				)
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}

			return next(c)
		}
	}
}
