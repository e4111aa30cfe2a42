package rollbar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperr "github.com/aevon-lab/rollbar-metrics/internal/core/errors"
	"github.com/aevon-lab/rollbar-metrics/internal/core/metrics"
)

const (
	// DefaultBaseURL is the public Rollbar API.
	DefaultBaseURL = "https://api.rollbar.com"
	// DefaultTimeout bounds every request; there are no retries.
	DefaultTimeout = 30 * time.Second

	headerAccessToken = "X-Rollbar-Access-Token"
	maxErrorBodyBytes = 512
)

// Client talks to the Rollbar REST API. Every call is a single synchronous
// request; a failure is reported to the caller and never retried.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL. A non-positive timeout falls back
// to DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

// ListProjects returns every project of the account, whatever its status.
func (c *Client) ListProjects(ctx context.Context, accountToken string) ([]ProjectInfo, error) {
	var out []ProjectInfo
	err := c.do(ctx, apperr.OpListProjects, "", http.MethodGet, "/api/1/projects", accountToken, nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListAccessTokens returns the access tokens of one project.
func (c *Client) ListAccessTokens(ctx context.Context, accountToken string, project ProjectInfo) ([]AccessToken, error) {
	var out []AccessToken
	path := fmt.Sprintf("/api/1/project/%d/access_tokens", project.ID)
	err := c.do(ctx, apperr.OpListAccessTokens, project.Name, http.MethodGet, path, accountToken, nil, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// OccurrenceMetrics sends spec with the project's token and returns the
// decoded result object.
func (c *Client) OccurrenceMetrics(ctx context.Context, project Project, spec metrics.QuerySpec) (*metrics.RawMetricsResult, error) {
	body, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	var out metrics.RawMetricsResult
	err = c.do(ctx, apperr.OpOccurrenceMetrics, project.Name, http.MethodPost, "/api/1/metrics/occurrences", project.Token, body, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetItem fetches the detail of one item.
func (c *Client) GetItem(ctx context.Context, project Project, itemID int64) (*ItemDetail, error) {
	var out ItemDetail
	path := fmt.Sprintf("/api/1/item/%d", itemID)
	err := c.do(ctx, apperr.OpGetItem, project.Name, http.MethodGet, path, project.Token, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// do performs one request and decodes envelope.result into out.
func (c *Client) do(ctx context.Context, op, project, method, path, token string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(headerAccessToken, token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &apperr.TransportError{Op: op, Project: project, Err: err}
	}
	defer resp.Body.Close()

	slog.Info("[Rollbar] Response",
		"method", method,
		"path", path,
		"project", project,
		"status", resp.StatusCode,
	)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apperr.TransportError{Op: op, Project: project, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &apperr.TransportError{
			Op:         op,
			Project:    project,
			StatusCode: resp.StatusCode,
			Message:    truncate(string(data), maxErrorBodyBytes),
		}
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return &apperr.DecodeError{Op: op, Project: project, Err: err}
	}
	if env.Err != 0 {
		return &apperr.TransportError{
			Op:         op,
			Project:    project,
			StatusCode: resp.StatusCode,
			Message:    env.Message,
		}
	}
	if len(env.Result) == 0 || string(env.Result) == "null" {
		return &apperr.DecodeError{Op: op, Project: project, Path: "result", Err: fmt.Errorf("result is missing")}
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return &apperr.DecodeError{Op: op, Project: project, Path: "result", Err: err}
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
