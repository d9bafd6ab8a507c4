package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/listkeeper/core/internal/application/services"
	"github.com/listkeeper/core/internal/infrastructure/logger"
	"github.com/listkeeper/core/internal/ports"
)

// TaskHandler handles task-related requests.
type TaskHandler struct {
	taskService *services.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(taskService *services.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{taskService: taskService, logger: logger}
}

func taskIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid task ID")
	}
	return id, nil
}

// ListTasks returns the tasks of a list.
func (h *TaskHandler) ListTasks(c echo.Context) error {
	caller := callerFromContext(c)

	listID, err := listIDParam(c)
	if err != nil {
		return err
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), caller, listID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, tasks)
}

// CreateTask creates a task in a list.
func (h *TaskHandler) CreateTask(c echo.Context) error {
	caller := callerFromContext(c)

	listID, err := listIDParam(c)
	if err != nil {
		return err
	}

	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), caller, listID, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, task)
}

// ImportTasks bulk-inserts pre-parsed task drafts into a list.
func (h *TaskHandler) ImportTasks(c echo.Context) error {
	caller := callerFromContext(c)

	listID, err := listIDParam(c)
	if err != nil {
		return err
	}

	var req ports.ImportTasksRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tasks, err := h.taskService.ImportTasks(c.Request().Context(), caller, listID, req.Drafts)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, tasks)
}

// UpdateTask applies a partial update to a task.
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	caller := callerFromContext(c)

	id, err := taskIDParam(c)
	if err != nil {
		return err
	}

	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), caller, id, req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, task)
}

// DeleteTask removes a task.
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	caller := callerFromContext(c)

	id, err := taskIDParam(c)
	if err != nil {
		return err
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), caller, id); err != nil {
		return respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
