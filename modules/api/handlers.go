package api

import (
	"errors"
	"strconv"

	domain "github.com/NathanHodgkiss447/smart-tasks/domain/task"
	"github.com/NathanHodgkiss447/smart-tasks/domain/user"
	"github.com/NathanHodgkiss447/smart-tasks/domain/validation"
	"github.com/NathanHodgkiss447/smart-tasks/modules/activity"
	"github.com/NathanHodgkiss447/smart-tasks/modules/auth"
	"github.com/NathanHodgkiss447/smart-tasks/modules/reminder"
	"github.com/NathanHodgkiss447/smart-tasks/modules/task"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	auth      auth.AuthPort
	tasks     task.TaskPort
	reminders reminder.ReminderPort
	activity  activity.ActivityPort
	logger    *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	authPort auth.AuthPort,
	taskPort task.TaskPort,
	reminderPort reminder.ReminderPort,
	activityPort activity.ActivityPort,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		auth:      authPort,
		tasks:     taskPort,
		reminders: reminderPort,
		activity:  activityPort,
		logger:    logger,
	}
}

// Signup handles POST /auth/signup.
func (h *Handlers) Signup(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return h.handleError(c, validation.Field("body", "must be a JSON object"))
	}

	resp, err := h.auth.Signup(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(TokenResponse{Token: resp.Token})
}

// Login handles POST /auth/login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return h.handleError(c, validation.Field("body", "must be a JSON object"))
	}

	resp, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(TokenResponse{Token: resp.Token})
}

// CreateTask handles POST /tasks.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	claims, ok := claimsFrom(c)
	if !ok {
		return unauthorized(c, "User not authenticated")
	}

	draft, err := domain.DecodeDraft(c.Body())
	if err != nil {
		return h.handleError(c, err)
	}

	t, err := h.tasks.CreateTask(c.UserContext(), claims.UserID, draft)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

// ListTasks handles GET /tasks?status=.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	claims, ok := claimsFrom(c)
	if !ok {
		return unauthorized(c, "User not authenticated")
	}

	status, err := domain.ParseStatusFilter(c.Query("status"))
	if err != nil {
		return h.handleError(c, err)
	}

	tasks, err := h.tasks.ListTasks(c.UserContext(), claims.UserID, status)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(tasks)
}

// GetTask handles GET /tasks/:id.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	claims, ok := claimsFrom(c)
	if !ok {
		return unauthorized(c, "User not authenticated")
	}

	t, err := h.tasks.GetTask(c.UserContext(), c.Params("id"), claims.UserID)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(t)
}

// UpdateTask handles PATCH /tasks/:id.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	claims, ok := claimsFrom(c)
	if !ok {
		return unauthorized(c, "User not authenticated")
	}

	patch, err := domain.DecodePatch(c.Body())
	if err != nil {
		return h.handleError(c, err)
	}

	t, err := h.tasks.UpdateTask(c.UserContext(), c.Params("id"), claims.UserID, patch)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(t)
}

// DeleteTask handles DELETE /tasks/:id.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	claims, ok := claimsFrom(c)
	if !ok {
		return unauthorized(c, "User not authenticated")
	}

	if err := h.tasks.DeleteTask(c.UserContext(), c.Params("id"), claims.UserID); err != nil {
		return h.handleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(SuccessResponse{Success: true})
}

// ReminderSummary handles GET /reminders/summary.
func (h *Handlers) ReminderSummary(c *fiber.Ctx) error {
	claims, ok := claimsFrom(c)
	if !ok {
		return unauthorized(c, "User not authenticated")
	}

	summary, err := h.reminders.Summary(c.UserContext(), claims.UserID)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(summary)
}

// Activity handles GET /activity?limit=.
func (h *Handlers) Activity(c *fiber.Ctx) error {
	claims, ok := claimsFrom(c)
	if !ok {
		return unauthorized(c, "User not authenticated")
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return h.handleError(c, validation.Field("limit", "must be a non-negative integer"))
		}
		limit = n
	}

	entries, err := h.activity.Recent(c.UserContext(), claims.UserID, limit)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(entries)
}

// handleError maps domain errors to status codes. Unexpected errors are
// logged and never reach the client.
func (h *Handlers) handleError(c *fiber.Ctx, err error) error {
	if ve, ok := validation.As(err); ok {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: ve.Error(),
			Fields:  ve.Fields,
		})
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return unauthorized(c, "Invalid credentials")
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Not found",
		})
	case errors.Is(err, user.ErrEmailTaken):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: "Email already in use",
		})
	default:
		h.logger.Error("internal error",
			zap.String("requestID", requestID(c)),
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}
