// Package client talks to the taskboard REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yukikurage/taskboard/internal/dto"
)

const (
	DefaultBaseURL = "http://localhost:5000/api"
	DefaultTimeout = 10 * time.Second
)

// ErrUnauthorized is matched by every 401 response. Stored credentials have
// already been cleared when it is returned.
var ErrUnauthorized = errors.New("not authorized, please log in again")

// Credentials supplies the bearer token and forgets it after a 401.
type Credentials interface {
	Token() string
	ClearAuth() error
}

// FieldError is one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Errors     []FieldError
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Message
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

type Client struct {
	baseURL string
	http    *http.Client
	creds   Credentials
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which times out after 10s.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func New(baseURL string, creds Credentials, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		creds:   creds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the success body; error bodies share success/message.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Count   int             `json:"count"`
	Data    json.RawMessage `json:"data"`
	Errors  []FieldError    `json:"errors"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil {
		if token := c.creds.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Code:       env.Code,
			Message:    env.Message,
			Errors:     env.Errors,
		}
		if apiErr.Message == "" {
			apiErr.Message = "Something went wrong"
		}
		if resp.StatusCode == http.StatusUnauthorized && c.creds != nil {
			if err := c.creds.ClearAuth(); err != nil {
				return nil, errors.Join(apiErr, err)
			}
		}
		return nil, apiErr
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return &env, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*dto.AuthDTO, error) {
	var auth dto.AuthDTO
	_, err := c.do(ctx, http.MethodPost, "/auth/register", nil, map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &auth)
	if err != nil {
		return nil, err
	}
	return &auth, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*dto.AuthDTO, error) {
	var auth dto.AuthDTO
	_, err := c.do(ctx, http.MethodPost, "/auth/login", nil, map[string]string{
		"email":    email,
		"password": password,
	}, &auth)
	if err != nil {
		return nil, err
	}
	return &auth, nil
}

func (c *Client) Profile(ctx context.Context) (*dto.UserDTO, error) {
	var user dto.UserDTO
	if _, err := c.do(ctx, http.MethodGet, "/auth/profile", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListParams mirrors the list query string. Zero values are omitted.
type ListParams struct {
	Status   string
	Priority string
	Search   string
	SortBy   string
	Order    string
	Limit    int
	Offset   int
}

func (p ListParams) Values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("status", p.Status)
	set("priority", p.Priority)
	set("search", p.Search)
	set("sortBy", p.SortBy)
	set("order", p.Order)
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		v.Set("offset", strconv.Itoa(p.Offset))
	}
	return v
}

func (c *Client) ListTasks(ctx context.Context, params ListParams) ([]dto.TaskDTO, error) {
	tasks := []dto.TaskDTO{}
	if _, err := c.do(ctx, http.MethodGet, "/tasks", params.Values(), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, id uint64) (*dto.TaskDTO, error) {
	var task dto.TaskDTO
	if _, err := c.do(ctx, http.MethodGet, taskPath(id), nil, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) CreateTask(ctx context.Context, in TaskInput) (*dto.TaskDTO, error) {
	var task dto.TaskDTO
	if _, err := c.do(ctx, http.MethodPost, "/tasks", nil, in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id uint64, in TaskInput) (*dto.TaskDTO, error) {
	var task dto.TaskDTO
	if _, err := c.do(ctx, http.MethodPut, taskPath(id), nil, in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id uint64) error {
	_, err := c.do(ctx, http.MethodDelete, taskPath(id), nil, nil, nil)
	return err
}

func (c *Client) Stats(ctx context.Context) (*dto.TaskStats, error) {
	var stats dto.TaskStats
	if _, err := c.do(ctx, http.MethodGet, "/tasks/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Draft is a suggested task returned by GenerateTasks.
type Draft struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

func (c *Client) GenerateTasks(ctx context.Context, text string) ([]Draft, error) {
	var drafts []Draft
	if _, err := c.do(ctx, http.MethodPost, "/tasks/generate", nil, map[string]string{"text": text}, &drafts); err != nil {
		return nil, err
	}
	return drafts, nil
}

func taskPath(id uint64) string {
	return "/tasks/" + strconv.FormatUint(id, 10)
}
