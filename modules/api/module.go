package api

import (
	"context"
	"fmt"

	"github.com/NathanHodgkiss447/smart-tasks/modules/activity"
	"github.com/NathanHodgkiss447/smart-tasks/modules/auth"
	"github.com/NathanHodgkiss447/smart-tasks/modules/reminder"
	"github.com/NathanHodgkiss447/smart-tasks/modules/task"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HealthCheck reports one module's health for /health.
type HealthCheck func(ctx context.Context) mono.HealthStatus

// Config configures the HTTP server.
type Config struct {
	Port         int
	ClientOrigin string
}

// APIModule is the HTTP API module.
type APIModule struct {
	config    Config
	app       *fiber.App
	rateLimit fiber.Handler
	checks    map[string]HealthCheck
	logger    *zap.Logger

	authPort     auth.AuthPort
	taskPort     task.TaskPort
	reminderPort reminder.ReminderPort
	activityPort activity.ActivityPort
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule(config Config, logger *zap.Logger) *APIModule {
	if config.ClientOrigin == "" {
		config.ClientOrigin = "*"
	}
	return &APIModule{
		config: config,
		checks: make(map[string]HealthCheck),
		logger: logger.Named("api"),
	}
}

// WithRateLimit guards the /auth routes with h.
func (m *APIModule) WithRateLimit(h fiber.Handler) *APIModule {
	m.rateLimit = h
	return m
}

// WithHealthCheck adds a module to the /health report.
func (m *APIModule) WithHealthCheck(name string, check HealthCheck) *APIModule {
	m.checks[name] = check
	return m
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth", "task", "reminder", "activity"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authPort = auth.NewAuthAdapter(container)
	case "task":
		m.taskPort = task.NewTaskAdapter(container)
	case "reminder":
		m.reminderPort = reminder.NewReminderAdapter(container)
	case "activity":
		m.activityPort = activity.NewActivityAdapter(container)
	}
}

// Start builds the Fiber app and starts listening.
func (m *APIModule) Start(_ context.Context) error {
	if m.authPort == nil || m.taskPort == nil || m.reminderPort == nil || m.activityPort == nil {
		return fmt.Errorf("api dependencies not set")
	}

	handlers := NewHandlers(m.authPort, m.taskPort, m.reminderPort, m.activityPort, m.logger)
	m.app = m.newApp(handlers)

	addr := fmt.Sprintf(":%d", m.config.Port)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			m.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	m.logger.Info("HTTP server started", zap.String("addr", addr))
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("shutting down HTTP server")
	return m.app.ShutdownWithContext(ctx)
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.config.Port,
		},
	}
}

func (m *APIModule) newApp(h *Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(RequestLogger(m.logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: m.config.ClientOrigin,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
	}))

	app.Get("/health", m.health)

	authRoutes := app.Group("/auth")
	if m.rateLimit != nil {
		authRoutes.Use(m.rateLimit)
	}
	authRoutes.Post("/signup", h.Signup)
	authRoutes.Post("/login", h.Login)

	protected := app.Group("", AuthMiddleware(h.auth))
	protected.Post("/tasks", h.CreateTask)
	protected.Get("/tasks", h.ListTasks)
	protected.Get("/tasks/:id", h.GetTask)
	protected.Patch("/tasks/:id", h.UpdateTask)
	protected.Delete("/tasks/:id", h.DeleteTask)
	protected.Get("/reminders/summary", h.ReminderSummary)
	protected.Get("/activity", h.Activity)

	return app
}

// health reports ok only when every registered check passes.
func (m *APIModule) health(c *fiber.Ctx) error {
	resp := HealthResponse{OK: true}
	if len(m.checks) > 0 {
		resp.Modules = make(map[string]ModuleHealth, len(m.checks))
		for name, check := range m.checks {
			st := check(c.UserContext())
			resp.Modules[name] = ModuleHealth{Healthy: st.Healthy, Message: st.Message}
			resp.OK = resp.OK && st.Healthy
		}
	}

	status := fiber.StatusOK
	if !resp.OK {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(resp)
}

// customErrorHandler handles Fiber errors such as unknown routes.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	kind := "server_error"
	if code == fiber.StatusNotFound {
		kind = "not_found"
	}
	return c.Status(code).JSON(ErrorResponse{
		Error:   kind,
		Message: message,
	})
}
