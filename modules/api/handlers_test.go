package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/NathanHodgkiss447/smart-tasks/domain/activity"
	"github.com/NathanHodgkiss447/smart-tasks/domain/reminder"
	domain "github.com/NathanHodgkiss447/smart-tasks/domain/task"
	"github.com/NathanHodgkiss447/smart-tasks/domain/user"
	"github.com/NathanHodgkiss447/smart-tasks/domain/validation"
	"github.com/NathanHodgkiss447/smart-tasks/modules/auth"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockAuthPort implements auth.AuthPort for testing.
type mockAuthPort struct {
	signupFunc func(email, password string) (*auth.TokenResponse, error)
	loginFunc  func(email, password string) (*auth.TokenResponse, error)
}

func (m *mockAuthPort) Signup(_ context.Context, email, password string) (*auth.TokenResponse, error) {
	if m.signupFunc != nil {
		return m.signupFunc(email, password)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthPort) Login(_ context.Context, email, password string) (*auth.TokenResponse, error) {
	if m.loginFunc != nil {
		return m.loginFunc(email, password)
	}
	return nil, errors.New("not implemented")
}

// ValidateToken accepts "token-<user>".
func (m *mockAuthPort) ValidateToken(_ context.Context, token string) (*user.Claims, error) {
	owner, ok := strings.CutPrefix(token, "token-")
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return &user.Claims{UserID: owner, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

// mockTaskPort keeps tasks in a map and records the last call's arguments.
type mockTaskPort struct {
	tasks      map[string]domain.Task
	lastOwner  string
	lastStatus domain.StatusFilter
	lastPatch  domain.Patch
	failWith   error
}

func newMockTaskPort() *mockTaskPort {
	return &mockTaskPort{tasks: map[string]domain.Task{}}
}

func (m *mockTaskPort) CreateTask(_ context.Context, owner string, d domain.Draft) (*domain.Task, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	t := domain.Task{ID: fmt.Sprintf("t%d", len(m.tasks)+1), UserID: owner, Title: d.Title, Priority: d.Priority, DueAt: d.DueAt}
	m.tasks[t.ID] = t
	return &t, nil
}

func (m *mockTaskPort) ListTasks(_ context.Context, owner string, status domain.StatusFilter) ([]domain.Task, error) {
	m.lastOwner, m.lastStatus = owner, status
	out := []domain.Task{}
	for _, t := range m.tasks {
		if t.UserID == owner {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTaskPort) GetTask(_ context.Context, id, owner string) (*domain.Task, error) {
	t, ok := m.tasks[id]
	if !ok || t.UserID != owner {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (m *mockTaskPort) UpdateTask(_ context.Context, id, owner string, patch domain.Patch) (*domain.Task, error) {
	m.lastPatch = patch
	t, ok := m.tasks[id]
	if !ok || t.UserID != owner {
		return nil, domain.ErrNotFound
	}
	patch.Apply(&t, time.Now())
	m.tasks[id] = t
	return &t, nil
}

func (m *mockTaskPort) DeleteTask(_ context.Context, id, owner string) error {
	t, ok := m.tasks[id]
	if !ok || t.UserID != owner {
		return domain.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

type mockReminderPort struct{ summary reminder.Summary }

func (m *mockReminderPort) Summary(context.Context, string) (*reminder.Summary, error) {
	return &m.summary, nil
}

type mockActivityPort struct{ lastLimit int }

func (m *mockActivityPort) Recent(_ context.Context, _ string, limit int) ([]activity.Entry, error) {
	m.lastLimit = limit
	return []activity.Entry{{TaskID: "t1", Type: "task_created"}}, nil
}

type fixture struct {
	app       *fiber.App
	auth      *mockAuthPort
	tasks     *mockTaskPort
	reminders *mockReminderPort
	activity  *mockActivityPort
}

func newFixture() *fixture {
	f := &fixture{
		auth:      &mockAuthPort{},
		tasks:     newMockTaskPort(),
		reminders: &mockReminderPort{},
		activity:  &mockActivityPort{},
	}
	m := NewModule(Config{Port: 4000}, zap.NewNop())
	f.app = m.newApp(NewHandlers(f.auth, f.tasks, f.reminders, f.activity, zap.NewNop()))
	return f
}

func (f *fixture) do(t *testing.T, method, path, token, body string) (int, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func TestSignup(t *testing.T) {
	f := newFixture()
	f.auth.signupFunc = func(email, _ string) (*auth.TokenResponse, error) {
		switch email {
		case "taken@example.com":
			return nil, user.ErrEmailTaken
		case "bad":
			return nil, validation.Field("email", "must be a valid email address")
		}
		return &auth.TokenResponse{Token: "jwt", UserID: "u1"}, nil
	}

	status, body := f.do(t, "POST", "/auth/signup", "", `{"email":"ann@example.com","password":"correct-horse"}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.JSONEq(t, `{"token":"jwt"}`, body)

	status, body = f.do(t, "POST", "/auth/signup", "", `{"email":"taken@example.com","password":"correct-horse"}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body, "Email already in use")

	status, body = f.do(t, "POST", "/auth/signup", "", `{"email":"bad","password":"correct-horse"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, "validation_error", resp.Error)
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "email", resp.Fields[0].Field)
}

func TestLogin_SameBodyForUnknownEmailAndWrongPassword(t *testing.T) {
	f := newFixture()
	f.auth.loginFunc = func(string, string) (*auth.TokenResponse, error) {
		return nil, auth.ErrInvalidCredentials
	}

	s1, unknown := f.do(t, "POST", "/auth/login", "", `{"email":"nobody@example.com","password":"whatever1"}`)
	s2, wrong := f.do(t, "POST", "/auth/login", "", `{"email":"ann@example.com","password":"wrong-pass"}`)

	assert.Equal(t, http.StatusUnauthorized, s1)
	assert.Equal(t, s1, s2)
	assert.Equal(t, unknown, wrong)
	assert.JSONEq(t, `{"error":"unauthorized","message":"Invalid credentials"}`, unknown)
}

func TestRateLimitGuardsAuthRoutesOnly(t *testing.T) {
	f := &fixture{auth: &mockAuthPort{}, tasks: newMockTaskPort(), reminders: &mockReminderPort{}, activity: &mockActivityPort{}}
	m := NewModule(Config{}, zap.NewNop()).WithRateLimit(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusTooManyRequests)
	})
	f.app = m.newApp(NewHandlers(f.auth, f.tasks, f.reminders, f.activity, zap.NewNop()))

	status, _ := f.do(t, "POST", "/auth/login", "", `{"email":"a@b.co","password":"x"}`)
	assert.Equal(t, http.StatusTooManyRequests, status)

	status, _ = f.do(t, "GET", "/tasks", "token-alice", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"missing header", "", http.StatusUnauthorized, "Authorization header is required"},
		{"not bearer", "Basic abc", http.StatusUnauthorized, "Invalid authorization header format"},
		{"bad token", "Bearer junk", http.StatusUnauthorized, "Invalid or expired token"},
		{"valid token", "Bearer token-alice", http.StatusOK, "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := httptest.NewRequest("GET", "/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := f.app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Contains(t, string(body), tt.wantBody)
		})
	}
}

func TestTaskRoutes(t *testing.T) {
	f := newFixture()

	status, body := f.do(t, "POST", "/tasks", "token-alice", `{"title":"Pay rent","priority":"high","dueAt":"2025-03-14T09:00:00Z"}`)
	require.Equal(t, http.StatusCreated, status, body)
	var created domain.Task
	require.NoError(t, json.Unmarshal([]byte(body), &created))
	assert.Equal(t, "alice", created.UserID)
	assert.Equal(t, domain.PriorityHigh, created.Priority)
	assert.Contains(t, body, `"_id"`)

	status, body = f.do(t, "POST", "/tasks", "token-alice", `{"priority":"urgent"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, "validation_error")

	status, _ = f.do(t, "GET", "/tasks?status=overdue", "token-alice", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, domain.StatusOverdue, f.tasks.lastStatus)
	assert.Equal(t, "alice", f.tasks.lastOwner)

	status, _ = f.do(t, "GET", "/tasks?status=soon", "token-alice", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = f.do(t, "GET", "/tasks", "token-bob", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, body)

	status, body = f.do(t, "GET", "/tasks/"+created.ID, "token-bob", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"error":"not_found","message":"Not found"}`, body)

	status, body = f.do(t, "PATCH", "/tasks/"+created.ID, "token-alice", `{"dueAt":null,"extra":1}`)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, f.tasks.lastPatch.ClearDueAt)
	assert.Contains(t, body, `"dueAt":null`)

	status, body = f.do(t, "DELETE", "/tasks/"+created.ID, "token-alice", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"success":true}`, body)

	status, _ = f.do(t, "DELETE", "/tasks/"+created.ID, "token-alice", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	f := newFixture()
	f.tasks.failWith = errors.New("mongo: connection pool exhausted")

	status, body := f.do(t, "POST", "/tasks", "token-alice", `{"title":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotContains(t, body, "mongo")
	assert.Contains(t, body, "internal_error")
}

func TestReminderSummaryShape(t *testing.T) {
	f := newFixture()
	at := time.Date(2025, 3, 13, 9, 0, 0, 0, time.UTC)
	f.reminders.summary = reminder.Summary{
		OverdueCount: 2,
		DueToday:     []domain.Task{},
		Suggested:    []reminder.Suggestion{{TaskID: "t1", SuggestedDueAt: at}},
	}

	status, body := f.do(t, "GET", "/reminders/summary", "token-alice", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t,
		`{"overdueCount":2,"dueToday":[],"suggested":[{"taskId":"t1","suggestedDueAt":"2025-03-13T09:00:00Z"}]}`,
		body)
}

func TestActivityLimit(t *testing.T) {
	f := newFixture()

	status, _ := f.do(t, "GET", "/activity?limit=5", "token-alice", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 5, f.activity.lastLimit)

	status, _ = f.do(t, "GET", "/activity?limit=-1", "token-alice", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHealth(t *testing.T) {
	f := newFixture()
	status, body := f.do(t, "GET", "/health", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"ok":true}`, body)

	m := NewModule(Config{}, zap.NewNop()).
		WithHealthCheck("task", func(context.Context) mono.HealthStatus {
			return mono.HealthStatus{Healthy: false, Message: "store ping failed"}
		})
	f.app = m.newApp(NewHandlers(f.auth, f.tasks, f.reminders, f.activity, zap.NewNop()))

	status, body = f.do(t, "GET", "/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.JSONEq(t, `{"ok":false,"modules":{"task":{"healthy":false,"message":"store ping failed"}}}`, body)
}
