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

// ListHandler handles list-related requests.
type ListHandler struct {
	listService *services.ListService
	logger      *logger.Logger
}

// NewListHandler creates a new list handler.
func NewListHandler(listService *services.ListService, logger *logger.Logger) *ListHandler {
	return &ListHandler{listService: listService, logger: logger}
}

func listIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid list ID")
	}
	return id, nil
}

// ListLists returns the lists the caller owns or has been granted.
func (h *ListHandler) ListLists(c echo.Context) error {
	caller := callerFromContext(c)

	lists, err := h.listService.ListAccessible(c.Request().Context(), caller)
	if err != nil {
		h.logger.Errorw("list lists failed", "error", err, "user_id", caller.UserID)
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, lists)
}

// CreateList creates a list, optionally under a parent.
func (h *ListHandler) CreateList(c echo.Context) error {
	caller := callerFromContext(c)

	var req ports.CreateListRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	list, err := h.listService.CreateList(c.Request().Context(), caller, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, list)
}

// GetList returns a list with children, tasks, and shares.
func (h *ListHandler) GetList(c echo.Context) error {
	caller := callerFromContext(c)

	id, err := listIDParam(c)
	if err != nil {
		return err
	}

	detail, err := h.listService.GetList(c.Request().Context(), caller, id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, detail)
}

// UpdateList renames a list or changes its description.
func (h *ListHandler) UpdateList(c echo.Context) error {
	caller := callerFromContext(c)

	id, err := listIDParam(c)
	if err != nil {
		return err
	}

	var req ports.UpdateListRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	list, err := h.listService.UpdateList(c.Request().Context(), caller, id, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, list)
}

// DeleteList removes a list and everything under it.
func (h *ListHandler) DeleteList(c echo.Context) error {
	caller := callerFromContext(c)

	id, err := listIDParam(c)
	if err != nil {
		return err
	}

	if err := h.listService.DeleteList(c.Request().Context(), caller, id); err != nil {
		return respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// PurgeLists removes every list the caller owns.
func (h *ListHandler) PurgeLists(c echo.Context) error {
	caller := callerFromContext(c)

	deleted, err := h.listService.PurgeLists(c.Request().Context(), caller)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]int64{"deleted": deleted})
}

// MoveList reparents a list; a null parent_id moves it to the top level.
func (h *ListHandler) MoveList(c echo.Context) error {
	caller := callerFromContext(c)

	id, err := listIDParam(c)
	if err != nil {
		return err
	}

	var req ports.MoveListRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	list, err := h.listService.MoveList(c.Request().Context(), caller, id, req.ParentID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, list)
}

// MergeList merges this list's tasks into a target list and deletes it.
func (h *ListHandler) MergeList(c echo.Context) error {
	caller := callerFromContext(c)

	id, err := listIDParam(c)
	if err != nil {
		return err
	}

	var req ports.MergeListsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.listService.MergeLists(c.Request().Context(), caller, id, req.TargetID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "lists merged"})
}

// ShareList grants a user access to the list and its direct children.
func (h *ListHandler) ShareList(c echo.Context) error {
	caller := callerFromContext(c)

	id, err := listIDParam(c)
	if err != nil {
		return err
	}

	var req ports.ShareListRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.listService.ShareList(c.Request().Context(), caller, id, req.UserID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "list shared"})
}

// UnshareList revokes a user's access to the list and its direct children.
func (h *ListHandler) UnshareList(c echo.Context) error {
	caller := callerFromContext(c)

	id, err := listIDParam(c)
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user ID")
	}

	if err := h.listService.UnshareList(c.Request().Context(), caller, id, userID); err != nil {
		return respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
