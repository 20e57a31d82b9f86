package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/appetiteclub/apt"
)

const maxResponseBytes = 1 << 20

// TokenSource provides the current bearer token, or "" when signed out.
// session.Store satisfies this.
type TokenSource interface {
	Token() string
}

// Client is a typed client for the brewbar REST API. Every data-bearing
// operation in the application goes through it; it owns error mapping and
// auth headers, nothing else.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     apt.Logger
}

// NewClient creates a client from configuration.
// Returns an error if the API base URL is not configured.
func NewClient(config *apt.Config, tokens TokenSource, logger apt.Logger) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	baseURL, _ := config.GetString("api.url")
	if baseURL == "" {
		return nil, fmt.Errorf("api.url is required")
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		tokens:     tokens,
		logger:     logger,
	}, nil
}

// do issues a request and decodes the response body into out when out is
// non-nil. Transport failures map to NetworkError, 403/409 to ConflictError,
// any other non-2xx to ServerError with the payload's message.
func (c *Client) do(ctx context.Context, method, path string, payload any, out any) error {
	url := path
	if !strings.HasPrefix(path, "http") {
		url = c.baseURL + path
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Token "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func errorFromResponse(status int, raw []byte) error {
	message := bestMessage(raw)
	switch status {
	case http.StatusForbidden, http.StatusConflict:
		if message == "" {
			message = "action not permitted in current order state"
		}
		return &ConflictError{Message: message}
	}
	if message == "" {
		message = "request failed"
	}
	return &ServerError{StatusCode: status, Message: message}
}

// bestMessage pulls the most useful human-readable message out of an error
// payload, checking the field names the backend actually uses.
func bestMessage(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}

	for _, key := range []string{"detail", "error", "message"} {
		if v, ok := payload[key].(string); ok && v != "" {
			return v
		}
	}

	// Field-error maps: {"name": ["This field may not be blank."]}
	for field, v := range payload {
		if list, ok := v.([]any); ok && len(list) > 0 {
			if msg, ok := list[0].(string); ok {
				return fmt.Sprintf("%s: %s", field, msg)
			}
		}
	}
	return ""
}

// page is the paginated collection envelope used by list endpoints.
type page[T any] struct {
	Count   int     `json:"count"`
	Next    *string `json:"next"`
	Results []T     `json:"results"`
}

// listAll collects a paginated collection, following next links until
// exhausted. Next links are absolute URLs and pass through do unchanged.
func listAll[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var items []T
	for path != "" {
		var p page[T]
		if err := c.do(ctx, http.MethodGet, path, nil, &p); err != nil {
			return nil, err
		}
		items = append(items, p.Results...)

		path = ""
		if p.Next != nil && *p.Next != "" {
			path = *p.Next
		}
	}
	return items, nil
}
