// Package client talks to the task REST API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/NathanHodgkiss447/smart-tasks/domain/activity"
	"github.com/NathanHodgkiss447/smart-tasks/domain/reminder"
	"github.com/NathanHodgkiss447/smart-tasks/domain/task"
	"github.com/gofiber/fiber/v2"
)

// DefaultTimeout bounds each request.
const DefaultTimeout = 10 * time.Second

// Client is a REST client for one user session. It is safe for concurrent
// use.
type Client struct {
	baseURL string
	timeout time.Duration

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithToken starts the client with an existing bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a client for the API at baseURL, e.g. http://localhost:4000.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenBody struct {
	Token string `json:"token"`
}

// Signup registers a user and keeps the returned token.
func (c *Client) Signup(ctx context.Context, email, password string) (string, error) {
	var out tokenBody
	if err := c.do(ctx, fiber.MethodPost, "/auth/signup", credentials{email, password}, &out); err != nil {
		return "", err
	}
	c.SetToken(out.Token)
	return out.Token, nil
}

// Login authenticates and keeps the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out tokenBody
	if err := c.do(ctx, fiber.MethodPost, "/auth/login", credentials{email, password}, &out); err != nil {
		return "", err
	}
	c.SetToken(out.Token)
	return out.Token, nil
}

// ListTasks fetches the caller's tasks for status.
func (c *Client) ListTasks(ctx context.Context, status task.StatusFilter) ([]task.Task, error) {
	path := "/tasks"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	out := []task.Task{}
	if err := c.do(ctx, fiber.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTask fetches one task.
func (c *Client) GetTask(ctx context.Context, id string) (*task.Task, error) {
	var out task.Task
	if err := c.do(ctx, fiber.MethodGet, "/tasks/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTask creates a task from d.
func (c *Client) CreateTask(ctx context.Context, d task.Draft) (*task.Task, error) {
	var out task.Task
	if err := c.do(ctx, fiber.MethodPost, "/tasks", d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTask sends patch and returns the stored task.
func (c *Client) UpdateTask(ctx context.Context, id string, patch task.Patch) (*task.Task, error) {
	var out task.Task
	if err := c.do(ctx, fiber.MethodPatch, "/tasks/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTask deletes one task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	var out struct {
		Success bool `json:"success"`
	}
	if err := c.do(ctx, fiber.MethodDelete, "/tasks/"+url.PathEscape(id), nil, &out); err != nil {
		return err
	}
	if !out.Success {
		return errors.New("delete not acknowledged")
	}
	return nil
}

// Summary fetches the reminder summary.
func (c *Client) Summary(ctx context.Context) (*reminder.Summary, error) {
	var out reminder.Summary
	if err := c.do(ctx, fiber.MethodGet, "/reminders/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Activity fetches up to limit recent feed entries; zero means all.
func (c *Client) Activity(ctx context.Context, limit int) ([]activity.Entry, error) {
	path := "/activity"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	out := []activity.Entry{}
	if err := c.do(ctx, fiber.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do sends one request and decodes a 2xx body into out. Non-2xx responses
// become *APIError. The Agent cannot be interrupted once sent, so ctx is
// checked up front and the request is bounded by the client timeout.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	a.Timeout(c.timeout)
	if token := c.Token(); token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	if in != nil {
		a.JSON(in)
	}
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	// Bytes releases the agent.
	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%s %s: %w", method, path, errors.Join(errs...))
	}

	if code < 200 || code > 299 {
		apiErr := &APIError{Status: code}
		_ = json.Unmarshal(body, apiErr)
		return apiErr
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
