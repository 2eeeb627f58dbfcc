package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/banshee-data/coverage.planner/internal/httputil"
	"github.com/banshee-data/coverage.planner/internal/store"
)

// Client calls a remote plan server.
type Client struct {
	baseURL string
	http    httputil.HTTPClient
}

// NewClient returns a Client for the server at baseURL. A nil hc uses
// http.DefaultClient.
func NewClient(baseURL string, hc httputil.HTTPClient) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Submit posts req and returns the stored plan.
func (c *Client) Submit(ctx context.Context, req *PlanRequest) (*store.Plan, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal plan request: %w", err)
	}
	var plan store.Plan
	if err := c.do(ctx, http.MethodPost, "/api/plans", body, http.StatusCreated, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Get fetches a stored plan by ID.
func (c *Client) Get(ctx context.Context, id string) (*store.Plan, error) {
	var plan store.Plan
	if err := c.do(ctx, http.MethodGet, "/api/plans/"+id, nil, http.StatusOK, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, want int, out interface{}) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %d: %s", method, path, resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
