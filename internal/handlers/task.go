package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard/internal/dto"
	apierrors "github.com/yukikurage/taskboard/internal/errors"
	"github.com/yukikurage/taskboard/internal/middleware"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/services"
	"github.com/yukikurage/taskboard/internal/utils"
	"github.com/yukikurage/taskboard/internal/validation"
)

type TaskHandler struct {
	taskService *services.TaskService
	aiService   *services.AIService
	logger      *slog.Logger
}

func NewTaskHandler(taskService *services.TaskService, aiService *services.AIService, logger *slog.Logger) *TaskHandler {
	validation.Register()
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		taskService: taskService,
		aiService:   aiService,
		logger:      logger,
	}
}

// ListTasks returns the caller's tasks filtered, sorted and paginated
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), utils.GetTaskQueryParams(c, userID))
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.List(dto.ToTaskDTOs(tasks)))
}

// GetTask returns a single task owned by the caller
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, taskID, ok := h.identify(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), taskID, userID)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.ToTaskDTO(*task)))
}

// CreateTask creates a new task for the caller
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, validation.FieldErrors(err))
		return
	}

	input := services.CreateTaskInput{Title: req.Title}
	if req.Description != nil {
		input.Description = *req.Description
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		input.Priority = &priority
	}
	if req.DueDate != nil && strings.TrimSpace(*req.DueDate) != "" {
		due, err := validation.ParseDueDate(*req.DueDate)
		if err != nil {
			apierrors.ValidationFailed(c, []apierrors.FieldError{{Field: "due_date", Message: "Invalid date format for due_date"}})
			return
		}
		input.DueDate = &due
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), userID, input)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.OK(dto.ToTaskDTO(*task)))
}

// UpdateTask applies a partial update. Only whitelisted keys present in the
// body are considered; anything else is ignored.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, taskID, ok := h.identify(c)
	if !ok {
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]json.RawMessage
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.ValidationFailed(c, validation.FieldErrors(err))
		return
	}

	input, fieldErrs := parseUpdateInput(rawReq)
	if len(fieldErrs) > 0 {
		apierrors.ValidationFailed(c, fieldErrs)
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), taskID, userID, input)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.ToTaskDTO(*task)))
}

// DeleteTask removes a task owned by the caller
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, taskID, ok := h.identify(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), taskID, userID); err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.Message("Task removed successfully"))
}

// GetStats returns the caller's aggregate task counts
func (h *TaskHandler) GetStats(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	stats, err := h.taskService.Stats(c.Request.Context(), userID)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.ToTaskStats(*stats)))
}

// GenerateTasks drafts task suggestions from free text
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	if _, exists := middleware.GetUserID(c); !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req dto.GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, validation.FieldErrors(err))
		return
	}

	drafts, err := h.aiService.DraftTasks(c.Request.Context(), req.Text)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.List(drafts))
}

func (h *TaskHandler) identify(c *gin.Context) (userID, taskID uint64, ok bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, 0, false
	}
	taskID, exists = middleware.GetTaskID(c)
	if !exists {
		apierrors.NotFound(c, "Task not found")
		return 0, 0, false
	}
	return userID, taskID, true
}

func (h *TaskHandler) respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrTaskForbidden):
		apierrors.Forbidden(c, "Not authorized to access this task")
	case errors.Is(err, services.ErrNoFieldsToUpdate):
		apierrors.NoFieldsToUpdate(c)
	case errors.Is(err, services.ErrTitleRequired):
		apierrors.ValidationFailed(c, []apierrors.FieldError{{Field: "title", Message: "Title is required"}})
	case errors.Is(err, services.ErrInvalidStatus):
		apierrors.ValidationFailed(c, []apierrors.FieldError{{Field: "status", Message: "Invalid status value"}})
	case errors.Is(err, services.ErrInvalidPriority):
		apierrors.ValidationFailed(c, []apierrors.FieldError{{Field: "priority", Message: "Invalid priority value"}})
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
	case errors.Is(err, services.ErrAINoTasksGenerated), errors.Is(err, services.ErrAITooManyTasks):
		apierrors.BadRequest(c, err.Error())
	default:
		if apierrors.Respond(c, err) {
			return
		}
		h.logger.Error("task request failed",
			"error", err,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"request_id", c.GetString("request_id"),
		)
		apierrors.InternalError(c, "", err)
	}
}
