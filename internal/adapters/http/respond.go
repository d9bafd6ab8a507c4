package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/listkeeper/core/internal/domain/entities"
	"github.com/listkeeper/core/internal/ports"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// MessageResponse carries a simple confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// statusFor maps the domain error taxonomy to HTTP status codes.
func statusFor(kind entities.ErrorKind) int {
	switch kind {
	case entities.KindNotFound:
		return http.StatusNotFound
	case entities.KindAccessDenied:
		return http.StatusForbidden
	case entities.KindStructuralConflict, entities.KindDependencyBlocked:
		return http.StatusConflict
	case entities.KindValidationFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError turns any service error into the right HTTP response. The
// caller sees the kind and the human-readable reason, never a raw storage
// error.
func respondError(c echo.Context, err error) error {
	var de *entities.DomainError
	if errors.As(err, &de) {
		return c.JSON(statusFor(de.Kind), ErrorResponse{
			Error:  string(de.Kind),
			Reason: de.Reason,
		})
	}
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:  string(entities.KindStorageFailure),
		Reason: "internal error",
	})
}

// callerFromContext reads the identity placed by the auth middleware.
func callerFromContext(c echo.Context) ports.Caller {
	caller, _ := c.Get("caller").(ports.Caller)
	return caller
}
