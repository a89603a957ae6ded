package settings_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edwinlov3tt/report-ai-sub000/internal/cache"
	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/settings"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage/storagetest"
)

func newService(t *testing.T) (*settings.Service, *storage.Store, *cache.MemoryClient) {
	t.Helper()
	store := storagetest.NewStore(t)
	mem := cache.NewMemoryClient(100, time.Minute)
	t.Cleanup(func() { _ = mem.Close() })
	return settings.NewService(store.Settings, mem, time.Minute, nil), store, mem
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		typ     storage.SettingType
		value   string
		want    interface{}
		wantErr bool
	}{
		{name: "string", typ: storage.SettingString, value: "hello", want: "hello"},
		{name: "number", typ: storage.SettingNumber, value: " 0.7 ", want: 0.7},
		{name: "bad number", typ: storage.SettingNumber, value: "warm", wantErr: true},
		{name: "boolean", typ: storage.SettingBoolean, value: "true", want: true},
		{name: "bad boolean", typ: storage.SettingBoolean, value: "yes please", wantErr: true},
		{name: "json", typ: storage.SettingJSON, value: `{"a":[1,2]}`, want: map[string]interface{}{"a": []interface{}{1.0, 2.0}}},
		{name: "bad json", typ: storage.SettingJSON, value: `{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := settings.Decode(&storage.AIGlobalSetting{SettingType: tt.typ, SettingValue: tt.value})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGrouped_CachedAndInvalidatedOnWrite(t *testing.T) {
	svc, store, mem := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Upsert(ctx, &storage.AIGlobalSetting{
		SettingKey: settings.KeyMasterPrompt, SettingValue: "You are a senior analyst.", Category: settings.CategoryPrompts,
	}))
	require.NoError(t, svc.Upsert(ctx, &storage.AIGlobalSetting{
		SettingKey: settings.KeyDefaultTemp, SettingValue: "0.4", SettingType: storage.SettingNumber, Category: "models",
	}))

	grouped, err := svc.Grouped(ctx)
	require.NoError(t, err)
	prompt, ok := grouped.String(settings.CategoryPrompts, settings.KeyMasterPrompt)
	require.True(t, ok)
	assert.Equal(t, "You are a senior analyst.", prompt)
	temp, ok := grouped.Float("models", settings.KeyDefaultTemp)
	require.True(t, ok)
	assert.InDelta(t, 0.4, temp, 1e-9)

	_, err = mem.Get(ctx, settings.GroupedKey)
	require.NoError(t, err, "grouped settings are cached")

	// A write that bypasses the service is not visible until invalidation.
	require.NoError(t, store.Settings.Upsert(ctx, &storage.AIGlobalSetting{
		SettingKey: settings.KeyMasterPrompt, SettingValue: "stale?", SettingType: storage.SettingString, Category: settings.CategoryPrompts,
	}))
	grouped, err = svc.Grouped(ctx)
	require.NoError(t, err)
	prompt, _ = grouped.String(settings.CategoryPrompts, settings.KeyMasterPrompt)
	assert.Equal(t, "You are a senior analyst.", prompt)

	require.NoError(t, svc.Upsert(ctx, &storage.AIGlobalSetting{
		SettingKey: settings.KeyDefaultTone, SettingValue: "concise", Category: settings.CategoryPrompts,
	}))
	_, err = mem.Get(ctx, settings.GroupedKey)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	grouped, err = svc.Grouped(ctx)
	require.NoError(t, err)
	prompt, _ = grouped.String(settings.CategoryPrompts, settings.KeyMasterPrompt)
	assert.Equal(t, "stale?", prompt)
}

func TestUpsert_RejectsValueNotMatchingType(t *testing.T) {
	svc, _, _ := newService(t)

	err := svc.Upsert(context.Background(), &storage.AIGlobalSetting{
		SettingKey: "default_temperature", SettingValue: "hot", SettingType: storage.SettingNumber, Category: "models",
	})
	assert.True(t, domain.Is(err, domain.ErrorTypeValidation))

	err = svc.Upsert(context.Background(), &storage.AIGlobalSetting{SettingKey: "Bad Key", SettingValue: "x"})
	assert.True(t, domain.Is(err, domain.ErrorTypeValidation))
}

func TestDelete(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Upsert(ctx, &storage.AIGlobalSetting{SettingKey: "x", SettingValue: "1"}))
	require.NoError(t, svc.Delete(ctx, "x"))
	assert.True(t, domain.Is(svc.Delete(ctx, "x"), domain.ErrorTypeNotFound))

	_, err := svc.Get(ctx, "x")
	assert.True(t, domain.Is(err, domain.ErrorTypeNotFound))
}
