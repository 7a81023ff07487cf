package main

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/NathanHodgkiss447/smart-tasks/domain/task"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

// fakeServer keeps tasks in memory behind the real route shapes.
type fakeServer struct {
	mu    sync.Mutex
	tasks map[string]*task.Task
	order []string
}

func startFakeServer(t *testing.T) string {
	t.Helper()
	s := &fakeServer{tasks: map[string]*task.Task{}}
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Post("/auth/login", func(c *fiber.Ctx) error {
		var body map[string]string
		if err := c.BodyParser(&body); err != nil {
			return err
		}
		if body["password"] != "correct-horse" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid credentials"})
		}
		return c.JSON(fiber.Map{"token": "jwt-1"})
	})

	authed := app.Group("", func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) != "Bearer jwt-1" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		return c.Next()
	})
	authed.Get("/tasks", func(c *fiber.Ctx) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		status := task.StatusFilter(c.Query("status", "all"))
		day := task.DayBoundsAt(fixedNow, time.UTC)
		out := []task.Task{}
		for _, id := range s.order {
			if tk, ok := s.tasks[id]; ok && status.Matches(tk, fixedNow, day) {
				out = append(out, *tk)
			}
		}
		return c.JSON(out)
	})
	authed.Post("/tasks", func(c *fiber.Ctx) error {
		d, err := task.DecodeDraft(c.Body())
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": err.Error()})
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		id := fmt.Sprintf("t%d", len(s.order)+1)
		tk := &task.Task{ID: id, Title: d.Title, Description: d.Description, DueAt: d.DueAt, Priority: d.Priority, CreatedAt: fixedNow, UpdatedAt: fixedNow}
		s.tasks[id] = tk
		s.order = append(s.order, id)
		return c.Status(fiber.StatusCreated).JSON(tk)
	})
	authed.Get("/tasks/:id", func(c *fiber.Ctx) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		tk, ok := s.tasks[c.Params("id")]
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Not found"})
		}
		return c.JSON(tk)
	})
	authed.Patch("/tasks/:id", func(c *fiber.Ctx) error {
		p, err := task.DecodePatch(c.Body())
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_error", "message": err.Error()})
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		tk, ok := s.tasks[c.Params("id")]
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Not found"})
		}
		p.Apply(tk, fixedNow)
		return c.JSON(tk)
	})
	authed.Delete("/tasks/:id", func(c *fiber.Ctx) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.tasks[c.Params("id")]; !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Not found"})
		}
		delete(s.tasks, c.Params("id"))
		return c.JSON(fiber.Map{"success": true})
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return "http://" + ln.Addr().String()
}

func run(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(&cli{now: func() time.Time { return fixedNow }})
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--server", server, "--tz", "UTC", "--timeout", "2s"}, args...))
	err := root.Execute()
	return buf.String(), err
}

func TestTaskctl_Session(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TASKCTL_CONFIG_DIR", dir)
	server := startFakeServer(t)

	_, err := run(t, server, "ls")
	require.ErrorContains(t, err, "not logged in")

	_, err = run(t, server, "login", "ann@example.com", "-p", "wrong")
	require.Error(t, err)

	got, err := run(t, server, "login", "ann@example.com", "-p", "correct-horse")
	require.NoError(t, err)
	assert.Contains(t, got, "Logged in as ann@example.com")
	creds, err := loadCredentials(filepath.Join(dir, "credentials.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "jwt-1", creds.Token)
	assert.Equal(t, server, creds.Server)

	got, err = run(t, server, "add", "Pay", "rent", "--priority", "high", "--due", "2025-03-13")
	require.NoError(t, err)
	assert.Contains(t, got, "Created #t1 Pay rent")
	_, err = run(t, server, "add", "Buy milk", "-p", "low")
	require.NoError(t, err)

	got, err = run(t, server, "ls", "--mode", "kanban")
	require.NoError(t, err)
	assert.Contains(t, got, "In Progress (1)")
	assert.Contains(t, got, "To Do (1)")

	got, err = run(t, server, "ls", "--search", "milk", "--density", "compact")
	require.NoError(t, err)
	assert.Contains(t, got, "Buy milk")
	assert.NotContains(t, got, "Pay rent")
	assert.Contains(t, got, "1 of 2 shown")

	got, err = run(t, server, "move", "t2", "in-progress")
	require.NoError(t, err)
	assert.Contains(t, got, "Moved #t2 to in-progress")

	got, err = run(t, server, "done", "t1", "t9")
	require.Error(t, err)
	assert.Contains(t, got, "done: 1 succeeded, 1 failed")

	got, err = run(t, server, "stats")
	require.NoError(t, err)
	assert.Contains(t, got, "50%")

	got, err = run(t, server, "edit", "t2", "--clear-due", "--title", "Buy oat milk")
	require.NoError(t, err)
	assert.Contains(t, got, "Buy oat milk")

	got, err = run(t, server, "bulk", "delete", "--all")
	require.NoError(t, err)
	assert.Contains(t, got, "delete: 2 succeeded, 0 failed")

	_, err = run(t, server, "logout")
	require.NoError(t, err)
	_, err = run(t, server, "ls")
	assert.ErrorContains(t, err, "not logged in")
}

func TestCredentials_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.yaml")

	empty, err := loadCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, credentials{}, empty)

	want := credentials{Server: "http://x", Email: "a@b.c", Token: "tok"}
	require.NoError(t, saveCredentials(path, want))
	got, err := loadCredentials(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestParseDue(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-03-20T15:00:00Z", time.Date(2025, 3, 20, 15, 0, 0, 0, time.UTC)},
		{"2025-03-20 15:30", time.Date(2025, 3, 20, 15, 30, 0, 0, time.UTC)},
		{"2025-03-20", time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC)},
		{"tomorrow", time.Date(2025, 3, 13, 9, 0, 0, 0, time.UTC)},
		{"nbd", time.Date(2025, 3, 13, 9, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDue(tt.in, fixedNow, time.UTC)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, err := parseDue("someday", fixedNow, time.UTC)
	assert.Error(t, err)
}

func TestParseDue_SpringForwardDay(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Midnight to 09:00 on 2025-03-09 is only eight elapsed hours.
	got, err := parseDue("2025-03-09", fixedNow, ny)
	require.NoError(t, err)
	want := time.Date(2025, 3, 9, 9, 0, 0, 0, ny)
	assert.True(t, want.Equal(got), "got %s", got)
	assert.Equal(t, 9, got.In(ny).Hour())
}
