// Package client calls the record API over HTTP.
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
	"strings"
	"time"

	"people-crud/internal/store"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithHeaders assigns default headers added to every request.
func WithHeaders(h http.Header) Option {
	return func(c *Client) {
		for k, values := range h {
			for _, v := range values {
				c.headers.Add(k, v)
			}
		}
	}
}

// Client is a record API client. Requests are never retried.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	headers    http.Header
}

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: unexpected status %d", e.StatusCode)
	}
	if e.Detail == "" {
		return fmt.Sprintf("client: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("client: %d %s: %s", e.StatusCode, e.Message, e.Detail)
}

// New creates a Client for the provided base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("client: base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("client: invalid base URL: %w", err)
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListRecords fetches every stored record.
func (c *Client) ListRecords(ctx context.Context) ([]store.Record, error) {
	var recs []store.Record
	if err := c.do(ctx, http.MethodGet, "/getUsers", nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// CreateRecord stores a new record and returns it with its assigned identifier.
func (c *Client) CreateRecord(ctx context.Context, in store.RecordInput) (*store.Record, error) {
	var rec store.Record
	if err := c.do(ctx, http.MethodPost, "/addUser", in, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateRecord applies in to the record with the given id. It returns
// (nil, nil) when the server has no such record.
func (c *Client) UpdateRecord(ctx context.Context, id string, in store.RecordInput) (*store.Record, error) {
	var rec *store.Record
	if err := c.do(ctx, http.MethodPut, "/updateUser/"+url.PathEscape(id), in, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// DeleteRecord removes the record with the given id and returns the server's confirmation.
func (c *Client) DeleteRecord(ctx context.Context, id string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodDelete, "/deleteUser/"+url.PathEscape(id), nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), reader)
	if err != nil {
		return err
	}
	req.Header = c.headers.Clone()
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{StatusCode: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(data, &payload) == nil {
			httpErr.Message = payload.Message
			httpErr.Detail = payload.Error
		}
		return httpErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

// buildURL joins path onto the base URL. path is already escaped.
func (c *Client) buildURL(path string) string {
	return strings.TrimSuffix(c.baseURL.String(), "/") + path
}
