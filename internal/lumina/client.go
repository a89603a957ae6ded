// Package lumina fetches campaign orders from the Lumina order API and
// reduces them to the campaign shape the report pipeline uses.
package lumina

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
)

var orderIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// ValidateOrderID checks that id is exactly 24 hex characters.
func ValidateOrderID(id string) error {
	if !orderIDPattern.MatchString(id) {
		return domain.ValidationError("orderId must be exactly 24 hexadecimal characters", nil)
	}
	return nil
}

// Config holds Lumina client configuration.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration // Default: 30s
}

// Client fetches raw orders.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a new Lumina client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("lumina base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
	}, nil
}

// FetchOrder returns the decoded order document and its raw bytes.
func (c *Client) FetchOrder(ctx context.Context, orderID string) (map[string]interface{}, []byte, error) {
	if err := ValidateOrderID(orderID); err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/orders/"+url.PathEscape(orderID), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, domain.ProviderError("lumina: send request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, domain.ProviderError("lumina: read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil, domain.NotFoundError(fmt.Sprintf("order %s not found", orderID), nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, nil, domain.ProviderError(
			fmt.Sprintf("lumina: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	order, err := unwrapOrder(body)
	if err != nil {
		return nil, nil, domain.ProviderError("lumina: malformed order", err)
	}
	return order, body, nil
}

// orderKeys identify an order document; a wrapper is only peeled off when
// its payload carries one of them.
var orderKeys = []string{"_id", "id", "orderId", "orderNumber", "order_number", "lineItems"}

func isOrder(v interface{}) bool {
	m, ok := v.(map[string]interface{})
	if !ok {
		return false
	}
	for _, k := range orderKeys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// wrapsOrder reports whether v is an order, a non-empty list led by one, or
// a further "order"/"data" wrapper around either.
func wrapsOrder(v interface{}) bool {
	switch t := v.(type) {
	case []interface{}:
		return len(t) > 0 && wrapsOrder(t[0])
	case map[string]interface{}:
		if isOrder(t) {
			return true
		}
		for _, k := range []string{"order", "data"} {
			if inner, ok := t[k]; ok && wrapsOrder(inner) {
				return true
			}
		}
	}
	return false
}

// unwrapOrder accepts a bare order object, an object wrapping an order under
// "order" or "data", or an array whose first element is the order. A
// document that already carries order identity fields is returned as is,
// so an order with its own "data" field is never replaced by it.
func unwrapOrder(body []byte) (map[string]interface{}, error) {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	for i := 0; i < 3; i++ {
		switch v := doc.(type) {
		case []interface{}:
			if len(v) == 0 {
				return nil, fmt.Errorf("empty order list")
			}
			doc = v[0]
		case map[string]interface{}:
			if isOrder(v) {
				return v, nil
			}
			if inner, ok := v["order"]; ok && wrapsOrder(inner) {
				doc = inner
				continue
			}
			if inner, ok := v["data"]; ok && wrapsOrder(inner) {
				doc = inner
				continue
			}
			return v, nil
		default:
			return nil, fmt.Errorf("unexpected order document %T", doc)
		}
	}
	if m, ok := doc.(map[string]interface{}); ok {
		return m, nil
	}
	return nil, fmt.Errorf("unexpected order document %T", doc)
}
