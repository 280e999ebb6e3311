// Package client is an HTTP client for the luminher API: the callables and the
// API-key endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/luminher/luminher-api/internal/models"
)

// CallError is a failure reported by the server.
type CallError struct {
	HTTPStatus int
	Status     string
	Message    string
}

func (e *CallError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("%s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("request failed (status %d): %s", e.HTTPStatus, e.Message)
}

// Client represents an HTTP client for the luminher API.
type Client struct {
	baseURL    string
	apiKey     string
	token      func() string
	httpClient *http.Client
}

// New creates a new API client. token supplies the ID token for callables and may
// return "" for anonymous calls.
func New(baseURL, apiKey string, token func() string) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetHTTPClient sets a custom HTTP client.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// Call invokes the named callable with data and decodes its result into out.
func (c *Client) Call(ctx context.Context, name string, data, out interface{}) error {
	if data == nil {
		data = struct{}{}
	}
	jsonData, err := json.Marshal(map[string]interface{}{"data": data})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/callable/"+name, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var env struct {
			Error struct {
				Status  string `json:"status"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &env) == nil && env.Error.Status != "" {
			return &CallError{HTTPStatus: resp.StatusCode, Status: env.Error.Status, Message: env.Error.Message}
		}
		return &CallError{HTTPStatus: resp.StatusCode, Message: string(body)}
	}

	var env struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}
	return nil
}

// get performs an API-key GET and decodes the {ok:...} envelope into out.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var env struct {
			Error string `json:"error"`
		}
		msg := string(body)
		if json.Unmarshal(body, &env) == nil && env.Error != "" {
			msg = env.Error
		}
		return &CallError{HTTPStatus: resp.StatusCode, Message: msg}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// EnsureAdminClaim asks the server to apply the admin email policy to the caller.
func (c *Client) EnsureAdminClaim(ctx context.Context) (*models.EnsureAdminResult, error) {
	var out models.EnsureAdminResult
	if err := c.Call(ctx, "ensureAdminClaim", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListUsers(ctx context.Context, req models.ListUsersRequest) (*models.UserPage, error) {
	var out models.UserPage
	if err := c.Call(ctx, "listUsers", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateUser(ctx context.Context, req models.CreateUserRequest) (string, error) {
	var out struct {
		UID string `json:"uid"`
	}
	if err := c.Call(ctx, "createUser", req, &out); err != nil {
		return "", err
	}
	return out.UID, nil
}

func (c *Client) DeleteUser(ctx context.Context, uid string) error {
	return c.Call(ctx, "deleteUser", models.DeleteUserRequest{UID: uid}, nil)
}

func (c *Client) SetUserRole(ctx context.Context, uid string, admin bool) error {
	return c.Call(ctx, "setUserRole", models.SetUserRoleRequest{UID: uid, Admin: &admin}, nil)
}

func (c *Client) GenerateResetLink(ctx context.Context, email string) (string, error) {
	var out struct {
		Link string `json:"link"`
	}
	if err := c.Call(ctx, "generateResetLink", models.ResetLinkRequest{Email: email}, &out); err != nil {
		return "", err
	}
	return out.Link, nil
}

func (c *Client) SharePlan(ctx context.Context, req models.SharePlanRequest) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.Call(ctx, "sharePlan", req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// PlanSummary is a shared plan as listed by the server.
type PlanSummary struct {
	ID        string    `json:"id"`
	OwnerName string    `json:"ownerName"`
	Title     string    `json:"title"`
	Average   float64   `json:"avg"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *Client) ListSharedPlans(ctx context.Context) ([]PlanSummary, error) {
	var out struct {
		Plans []PlanSummary `json:"plans"`
	}
	if err := c.Call(ctx, "listSharedPlans", nil, &out); err != nil {
		return nil, err
	}
	return out.Plans, nil
}

// RatePlan rates a plan and returns its new average and rating count.
func (c *Client) RatePlan(ctx context.Context, planID string, value float64) (float64, int, error) {
	var out struct {
		Average float64 `json:"avg"`
		Count   int     `json:"count"`
	}
	if err := c.Call(ctx, "ratePlan", models.RatePlanRequest{PlanID: planID, Value: &value}, &out); err != nil {
		return 0, 0, err
	}
	return out.Average, out.Count, nil
}

func (c *Client) RemovePlan(ctx context.Context, planID string) error {
	return c.Call(ctx, "removePlan", models.RemovePlanRequest{PlanID: planID}, nil)
}

func (c *Client) Metrics(ctx context.Context) (*models.UserMetrics, error) {
	var out struct {
		Metrics models.UserMetrics `json:"metrics"`
	}
	if err := c.get(ctx, "/apiMetrics", &out); err != nil {
		return nil, err
	}
	return &out.Metrics, nil
}

func (c *Client) DailySignups(ctx context.Context) (*models.DailySignups, error) {
	var out models.DailySignups
	if err := c.get(ctx, "/apiDailySignups", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
