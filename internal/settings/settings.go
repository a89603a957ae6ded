// Package settings serves AI global settings grouped by category, cached
// until the next write.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/edwinlov3tt/report-ai-sub000/internal/cache"
	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/observability"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
)

// GroupedKey is the cache key holding the grouped settings map.
var GroupedKey = cache.Key("settings", "grouped")

// Well-known settings.
const (
	CategoryPrompts    = "prompts"
	CategoryGeneration = "generation"
	KeyMasterPrompt    = "analysis_master_prompt"
	KeyDefaultTone     = "default_tone"
	KeyDefaultTemp     = "default_temperature"
	KeyDefaultMaxToken = "default_max_tokens"
)

// Grouped maps category -> key -> typed value.
type Grouped map[string]map[string]interface{}

// String returns the value at (category, key) rendered as a string.
func (g Grouped) String(category, key string) (string, bool) {
	v, ok := g[category][key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(data), true
	}
}

// Float returns a numeric value at (category, key).
func (g Grouped) Float(category, key string) (float64, bool) {
	v, ok := g[category][key].(float64)
	return v, ok
}

// Service reads and writes settings.
type Service struct {
	repo   *storage.SettingRepository
	cache  cache.Client
	ttl    time.Duration
	logger *observability.Logger
}

// NewService creates a settings service. cache may be nil to disable caching.
func NewService(repo *storage.SettingRepository, c cache.Client, ttl time.Duration, logger *observability.Logger) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{repo: repo, cache: c, ttl: ttl, logger: logger}
}

// List returns every setting.
func (s *Service) List(ctx context.Context) ([]*storage.AIGlobalSetting, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, domain.PersistenceError("failed to list settings", err)
	}
	if out == nil {
		out = []*storage.AIGlobalSetting{}
	}
	return out, nil
}

// Get returns the setting with key.
func (s *Service) Get(ctx context.Context, key string) (*storage.AIGlobalSetting, error) {
	setting, err := s.repo.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, domain.NotFoundError(fmt.Sprintf("setting %q not found", key), nil)
	}
	if err != nil {
		return nil, domain.PersistenceError("failed to load setting", err)
	}
	return setting, nil
}

// Upsert validates the value against its declared type and saves it.
func (s *Service) Upsert(ctx context.Context, setting *storage.AIGlobalSetting) error {
	if setting.Category == "" {
		setting.Category = "general"
	}
	if setting.SettingType == "" {
		setting.SettingType = storage.SettingString
	}
	if err := storage.Validate(setting); err != nil {
		return domain.ValidationError("invalid setting", err)
	}
	if _, err := Decode(setting); err != nil {
		return domain.ValidationError(fmt.Sprintf("setting %q", setting.SettingKey), err)
	}

	if err := s.repo.Upsert(ctx, setting); err != nil {
		return domain.PersistenceError("failed to save setting", err)
	}
	s.invalidate(ctx)
	return nil
}

// Delete removes the setting with key.
func (s *Service) Delete(ctx context.Context, key string) error {
	err := s.repo.Delete(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.NotFoundError(fmt.Sprintf("setting %q not found", key), nil)
	}
	if err != nil {
		return domain.PersistenceError("failed to delete setting", err)
	}
	s.invalidate(ctx)
	return nil
}

// Grouped returns all settings as typed values grouped by category. The
// result is served from cache until a write invalidates it.
func (s *Service) Grouped(ctx context.Context) (Grouped, error) {
	if s.cache != nil {
		var cached Grouped
		err := cache.GetJSON(ctx, s.cache, GroupedKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn().Err(err).Str("key", GroupedKey).Msg("Settings cache read failed")
		}
	}

	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	grouped := Grouped{}
	for _, setting := range all {
		v, err := Decode(setting)
		if err != nil {
			s.logger.Warn().Err(err).Str("setting_key", setting.SettingKey).Msg("Skipping malformed setting")
			continue
		}
		if grouped[setting.Category] == nil {
			grouped[setting.Category] = map[string]interface{}{}
		}
		grouped[setting.Category][setting.SettingKey] = v
	}

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, GroupedKey, grouped, s.ttl); err != nil {
			s.logger.Warn().Err(err).Str("key", GroupedKey).Msg("Settings cache write failed")
		}
	}
	return grouped, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, GroupedKey); err != nil {
		s.logger.Warn().Err(err).Str("key", GroupedKey).Msg("Settings cache invalidation failed")
	}
}

// Decode converts a stored value to its declared type: string, float64,
// bool, or the decoded JSON value.
func Decode(setting *storage.AIGlobalSetting) (interface{}, error) {
	raw := setting.SettingValue
	switch setting.SettingType {
	case storage.SettingString, "":
		return raw, nil
	case storage.SettingNumber:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("value %q is not a number", raw)
		}
		return f, nil
	case storage.SettingBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("value %q is not a boolean", raw)
		}
		return b, nil
	case storage.SettingJSON:
		var v interface{}
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("value is not valid JSON: %w", err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown setting type %q", setting.SettingType)
	}
}
