package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/observability"
)

// Config holds client configuration.
type Config struct {
	DefaultModel      string
	Timeout           time.Duration // Default: 60s
	RequestsPerMinute int           // 0 disables limiting
	AnthropicEndpoint string
	GoogleEndpoint    string
	OpenAIEndpoint    string
}

// Client resolves a model to its provider and key, then makes one call.
type Client struct {
	registry     *Registry
	providers    map[ProviderID]Provider
	limiter      *rate.Limiter
	defaultModel string
	logger       *observability.Logger
}

// NewClient creates a client with the three built-in providers.
func NewClient(cfg Config, registry *Registry, logger *observability.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	return NewClientWithProviders(cfg, registry, logger,
		NewAnthropicProvider(httpClient, cfg.AnthropicEndpoint),
		NewGoogleProvider(httpClient, cfg.GoogleEndpoint),
		NewOpenAIProvider(httpClient, cfg.OpenAIEndpoint),
	)
}

// NewClientWithProviders creates a client over explicit providers.
func NewClientWithProviders(cfg Config, registry *Registry, logger *observability.Logger, providers ...Provider) *Client {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if registry == nil {
		registry = NewRegistry(DefaultModels(), nil)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), cfg.RequestsPerMinute)
	}

	c := &Client{
		registry:     registry,
		providers:    make(map[ProviderID]Provider, len(providers)),
		limiter:      limiter,
		defaultModel: cfg.DefaultModel,
		logger:       logger,
	}
	for _, p := range providers {
		c.providers[p.Name()] = p
	}
	return c
}

// DefaultModel returns the environment-wide default model id.
func (c *Client) DefaultModel() string {
	return c.defaultModel
}

// Registry returns the model registry.
func (c *Client) Registry() *Registry {
	return c.registry
}

// Call sends prompt to modelID, or to the default model when modelID is
// empty. maxTokens <= 0 uses the model's default.
func (c *Client) Call(ctx context.Context, modelID, prompt string, temperature float64, maxTokens int) (string, error) {
	if modelID == "" {
		modelID = c.defaultModel
	}
	model, ok := c.registry.Get(modelID)
	if !ok {
		return "", domain.ConfigurationError(fmt.Sprintf("unknown model %q", modelID), nil)
	}
	key, err := c.registry.APIKey(modelID)
	if err != nil {
		return "", err
	}
	provider, ok := c.providers[model.Provider]
	if !ok {
		return "", domain.ConfigurationError(fmt.Sprintf("no provider registered for %s", model.Provider), nil)
	}
	if maxTokens <= 0 {
		maxTokens = model.MaxTokens
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", domain.ProviderError("rate limiter", err)
	}

	start := time.Now()
	text, err := provider.Call(ctx, Request{
		Model:       model.ID,
		Prompt:      prompt,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		APIKey:      key,
	})
	if err != nil {
		c.logger.Warn().
			Str("model", model.ID).
			Str("provider", string(model.Provider)).
			Dur("duration", time.Since(start)).
			Err(err).
			Msg("model call failed")
		return "", err
	}

	c.logger.Info().
		Str("model", model.ID).
		Str("provider", string(model.Provider)).
		Int("prompt_chars", len(prompt)).
		Int("response_chars", len(text)).
		Dur("duration", time.Since(start)).
		Msg("model call completed")
	return text, nil
}
