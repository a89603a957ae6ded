package llm

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

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
)

// Request is one completion call.
type Request struct {
	Model       string
	Prompt      string
	Temperature float64
	MaxTokens   int
	APIKey      string
}

// Provider sends a prompt to one vendor's API and returns the reply text.
type Provider interface {
	Name() ProviderID
	Call(ctx context.Context, req Request) (string, error)
}

// AnthropicProvider calls the Messages API.
type AnthropicProvider struct {
	httpClient *http.Client
	endpoint   string
}

// NewAnthropicProvider creates an Anthropic adapter.
func NewAnthropicProvider(httpClient *http.Client, endpoint string) *AnthropicProvider {
	if endpoint == "" {
		endpoint = "https://api.anthropic.com/v1/messages"
	}
	return &AnthropicProvider{httpClient: httpClient, endpoint: endpoint}
}

// Name returns the provider id.
func (p *AnthropicProvider) Name() ProviderID { return ProviderAnthropic }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

// Call sends the prompt as a single user message.
func (p *AnthropicProvider) Call(ctx context.Context, req Request) (string, error) {
	body := anthropicRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
	}
	headers := map[string]string{
		"x-api-key":         req.APIKey,
		"anthropic-version": "2023-06-01",
	}
	data, err := post(ctx, p.httpClient, ProviderAnthropic, p.endpoint, headers, body)
	if err != nil {
		return "", err
	}
	return textAt(ProviderAnthropic, data, "content", 0, "text")
}

// GoogleProvider calls the Gemini generateContent API.
type GoogleProvider struct {
	httpClient *http.Client
	endpoint   string
}

// NewGoogleProvider creates a Google adapter. endpoint is the models base
// URL; the model id and method are appended.
func NewGoogleProvider(httpClient *http.Client, endpoint string) *GoogleProvider {
	if endpoint == "" {
		endpoint = "https://generativelanguage.googleapis.com/v1beta/models"
	}
	return &GoogleProvider{httpClient: httpClient, endpoint: strings.TrimRight(endpoint, "/")}
}

// Name returns the provider id.
func (p *GoogleProvider) Name() ProviderID { return ProviderGoogle }

type googlePart struct {
	Text string `json:"text"`
}

type googleContent struct {
	Parts []googlePart `json:"parts"`
}

type googleGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type googleRequest struct {
	Contents         []googleContent        `json:"contents"`
	GenerationConfig googleGenerationConfig `json:"generationConfig"`
}

// Call sends the prompt as one content part. The key travels in the
// x-goog-api-key header so it never appears in a request URL.
func (p *GoogleProvider) Call(ctx context.Context, req Request) (string, error) {
	body := googleRequest{
		Contents: []googleContent{{Parts: []googlePart{{Text: req.Prompt}}}},
		GenerationConfig: googleGenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}
	endpoint := fmt.Sprintf("%s/%s:generateContent", p.endpoint, url.PathEscape(req.Model))
	headers := map[string]string{"x-goog-api-key": req.APIKey}
	data, err := post(ctx, p.httpClient, ProviderGoogle, endpoint, headers, body)
	if err != nil {
		return "", err
	}
	return textAt(ProviderGoogle, data, "candidates", 0, "content", "parts", 0, "text")
}

// OpenAIProvider calls the Chat Completions API.
type OpenAIProvider struct {
	httpClient *http.Client
	endpoint   string
}

// NewOpenAIProvider creates an OpenAI adapter.
func NewOpenAIProvider(httpClient *http.Client, endpoint string) *OpenAIProvider {
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1/chat/completions"
	}
	return &OpenAIProvider{httpClient: httpClient, endpoint: endpoint}
}

// Name returns the provider id.
func (p *OpenAIProvider) Name() ProviderID { return ProviderOpenAI }

type openAIRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// Call sends the prompt as a single user message.
func (p *OpenAIProvider) Call(ctx context.Context, req Request) (string, error) {
	body := openAIRequest{
		Model:       req.Model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	headers := map[string]string{"Authorization": "Bearer " + req.APIKey}
	data, err := post(ctx, p.httpClient, ProviderOpenAI, p.endpoint, headers, body)
	if err != nil {
		return "", err
	}
	return textAt(ProviderOpenAI, data, "choices", 0, "message", "content")
}

// providerErrorBody covers the error envelope shared by all three vendors.
type providerErrorBody struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Status  string `json:"status"`
	} `json:"error"`
}

func post(ctx context.Context, httpClient *http.Client, provider ProviderID, endpoint string, headers map[string]string, payload interface{}) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		// *url.Error repeats the request URL; keep only the transport cause.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, domain.ProviderError(fmt.Sprintf("%s: send request", provider), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.ProviderError(fmt.Sprintf("%s: read response", provider), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp providerErrorBody
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != nil && errResp.Error.Message != "" {
			return nil, domain.ProviderError(
				fmt.Sprintf("%s: %s (status %d)", provider, errResp.Error.Message, resp.StatusCode), nil)
		}
		return nil, domain.ProviderError(
			fmt.Sprintf("%s: status %d: %s", provider, resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	return body, nil
}

// textAt walks a decoded JSON document by object keys and array indexes.
// A missing step yields "" without error; only undecodable JSON fails.
func textAt(provider ProviderID, body []byte, path ...interface{}) (string, error) {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", domain.ProviderError(fmt.Sprintf("%s: malformed response", provider), err)
	}

	cur := doc
	for _, step := range path {
		switch s := step.(type) {
		case string:
			obj, ok := cur.(map[string]interface{})
			if !ok {
				return "", nil
			}
			cur = obj[s]
		case int:
			arr, ok := cur.([]interface{})
			if !ok || s >= len(arr) {
				return "", nil
			}
			cur = arr[s]
		}
	}
	text, _ := cur.(string)
	return text, nil
}
