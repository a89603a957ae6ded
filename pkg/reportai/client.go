// Package reportai provides the public Go SDK for the report API.
package reportai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client is the public SDK client for the report API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientConfig holds client configuration.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewClient creates a new report API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8085"
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 90 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: hc,
	}, nil
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"error"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("report api %d: %s (%s)", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("report api %d: %s", e.StatusCode, e.Message)
}

// Health checks the service health.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Lumina fetches and normalizes an order by its 24-character hex id.
func (c *Client) Lumina(ctx context.Context, orderID string) (*Campaign, error) {
	var out Campaign
	if err := c.do(ctx, http.MethodPost, "/lumina", map[string]string{"orderId": orderID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Tactics groups line items into tactics.
func (c *Client) Tactics(ctx context.Context, lineItems []map[string]interface{}) ([]Tactic, error) {
	var out struct {
		Tactics []Tactic `json:"tactics"`
	}
	body := map[string]interface{}{"lineItems": lineItems}
	if err := c.do(ctx, http.MethodPost, "/tactics", body, &out); err != nil {
		return nil, err
	}
	return out.Tactics, nil
}

// Analyze runs a report generation.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	var out AnalyzeResponse
	if err := c.do(ctx, http.MethodPost, "/analyze", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAnalysis loads a stored analysis.
func (c *Client) GetAnalysis(ctx context.Context, id string) (*StoredAnalysis, error) {
	var out StoredAnalysis
	if err := c.do(ctx, http.MethodGet, "/analyses/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalysisHTML returns a stored analysis rendered as an HTML document.
func (c *Client) AnalysisHTML(ctx context.Context, id string) (string, error) {
	resp, err := c.send(ctx, http.MethodGet, "/analyses/"+url.PathEscape(id)+"/html", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return string(data), nil
}

// Models lists the AI models and whether each is configured.
func (c *Client) Models(ctx context.Context) (*ModelsResponse, error) {
	var out ModelsResponse
	if err := c.do(ctx, http.MethodGet, "/models.php", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TestModel sends a raw prompt to one model. Provider failures come back
// as a response with Success false rather than an error.
func (c *Client) TestModel(ctx context.Context, req ModelTestRequest) (*ModelTestResponse, error) {
	resp, err := c.raw(ctx, http.MethodPost, "/ai-test.php", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out ModelTestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !out.Success && out.Error == "" {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return &out, nil
}

// ExportSchema downloads the configuration tree.
func (c *Client) ExportSchema(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/schema/export", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ImportSchema uploads a snapshot. With clearExisting the current tree is
// replaced.
func (c *Client) ImportSchema(ctx context.Context, snapshot json.RawMessage, clearExisting bool) (*ImportResult, error) {
	path := "/api/schema/import"
	if clearExisting {
		path += "?clear=true"
	}
	var out ImportResult
	if err := c.do(ctx, http.MethodPost, path, snapshot, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveVersion snapshots the configuration tree.
func (c *Client) SaveVersion(ctx context.Context, description, createdBy string) (*Version, error) {
	body := map[string]string{"description": description, "created_by": createdBy}
	var out Version
	if err := c.do(ctx, http.MethodPost, "/api/schema/versions", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListVersions returns saved versions, newest first.
func (c *Client) ListVersions(ctx context.Context, limit int) ([]Version, error) {
	path := "/api/schema/versions"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []Version
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RestoreVersion replaces the configuration tree with a saved version.
func (c *Client) RestoreVersion(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/schema/versions/%d/restore", id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// send performs the request and converts non-2xx responses to *APIError.
func (c *Client) send(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	resp, err := c.raw(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return nil, apiErr
}

func (c *Client) raw(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case json.RawMessage:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}
