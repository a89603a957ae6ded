// Package llm calls hosted language models through one interface with an
// adapter per provider.
package llm

import (
	"fmt"
	"os"
	"strings"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
)

// ProviderID names a model provider.
type ProviderID string

const (
	ProviderAnthropic ProviderID = "anthropic"
	ProviderGoogle    ProviderID = "google"
	ProviderOpenAI    ProviderID = "openai"
)

// Environment variables holding provider keys.
const (
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvGoogleKey    = "GOOGLE_AI_API_KEY"
	EnvOpenAIKey    = "OPENAI_API_KEY"
)

// ModelInfo describes one selectable model.
type ModelInfo struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Provider  ProviderID `json:"provider"`
	EnvKey    string     `json:"envKey"`
	MaxTokens int        `json:"maxTokens"`
}

// ModelStatus is a model plus whether its key is usable.
type ModelStatus struct {
	ModelInfo
	Configured bool `json:"configured"`
}

// DefaultModels returns the built-in model list.
func DefaultModels() []ModelInfo {
	return []ModelInfo{
		{ID: "claude-sonnet-4-20250514", Name: "Claude Sonnet 4", Provider: ProviderAnthropic, EnvKey: EnvAnthropicKey, MaxTokens: 4000},
		{ID: "claude-3-5-haiku-20241022", Name: "Claude 3.5 Haiku", Provider: ProviderAnthropic, EnvKey: EnvAnthropicKey, MaxTokens: 4000},
		{ID: "gemini-1.5-pro", Name: "Gemini 1.5 Pro", Provider: ProviderGoogle, EnvKey: EnvGoogleKey, MaxTokens: 4000},
		{ID: "gemini-1.5-flash", Name: "Gemini 1.5 Flash", Provider: ProviderGoogle, EnvKey: EnvGoogleKey, MaxTokens: 4000},
		{ID: "gpt-4o", Name: "GPT-4o", Provider: ProviderOpenAI, EnvKey: EnvOpenAIKey, MaxTokens: 4000},
		{ID: "gpt-4o-mini", Name: "GPT-4o mini", Provider: ProviderOpenAI, EnvKey: EnvOpenAIKey, MaxTokens: 4000},
	}
}

// LookupFunc reads an environment variable.
type LookupFunc func(key string) (string, bool)

// Registry maps model ids to providers and API keys.
type Registry struct {
	models []ModelInfo
	byID   map[string]ModelInfo
	lookup LookupFunc
}

// NewRegistry creates a registry. A nil lookup reads the process environment.
func NewRegistry(models []ModelInfo, lookup LookupFunc) *Registry {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	r := &Registry{models: models, byID: make(map[string]ModelInfo, len(models)), lookup: lookup}
	for _, m := range models {
		r.byID[m.ID] = m
	}
	return r
}

// Get returns the model with the given id.
func (r *Registry) Get(id string) (ModelInfo, bool) {
	m, ok := r.byID[id]
	return m, ok
}

// Models returns every registered model in registration order.
func (r *Registry) Models() []ModelInfo {
	out := make([]ModelInfo, len(r.models))
	copy(out, r.models)
	return out
}

// Statuses reports every model with its configured flag.
func (r *Registry) Statuses() []ModelStatus {
	out := make([]ModelStatus, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, ModelStatus{ModelInfo: m, Configured: r.Configured(m.ID)})
	}
	return out
}

// Configured reports whether the model exists and its key is set to a real
// value.
func (r *Registry) Configured(id string) bool {
	_, err := r.APIKey(id)
	return err == nil
}

// APIKey returns the key for a model. Unknown models and missing or
// placeholder keys yield a ConfigurationError naming the variable.
func (r *Registry) APIKey(id string) (string, error) {
	m, ok := r.byID[id]
	if !ok {
		return "", domain.ConfigurationError(fmt.Sprintf("unknown model %q", id), nil)
	}
	key, _ := r.lookup(m.EnvKey)
	key = strings.TrimSpace(key)
	if IsPlaceholder(key) {
		return "", domain.ConfigurationError(fmt.Sprintf("%s is not set for model %s", m.EnvKey, m.ID), nil)
	}
	return key, nil
}

// vendorPrefixes are stripped before a key is compared against template
// forms, so "sk-your-key-here" is caught while "sk-ant-api03-...-xxx..." is not.
var vendorPrefixes = []string{"sk-ant-", "sk-proj-", "sk-", "aiza"}

var placeholderPrefixes = []string{"your", "placeholder", "changeme", "insert", "api_key_here", "<"}

// IsPlaceholder reports whether a key is empty or an obvious template value.
// Template words only count at the start of the key (after any vendor
// prefix); a key made only of x's and separators is also a template.
func IsPlaceholder(key string) bool {
	body := strings.ToLower(strings.TrimSpace(key))
	for _, p := range vendorPrefixes {
		if strings.HasPrefix(body, p) {
			body = body[len(p):]
			break
		}
	}
	if strings.Trim(body, "x-_.") == "" {
		return true
	}
	for _, p := range placeholderPrefixes {
		if strings.HasPrefix(body, p) {
			return true
		}
	}
	return false
}
