package resolver_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edwinlov3tt/report-ai-sub000/internal/cache"
	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/resolver"
	"github.com/edwinlov3tt/report-ai-sub000/internal/sections"
	"github.com/edwinlov3tt/report-ai-sub000/internal/settings"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage/storagetest"
)

type fixture struct {
	store    *storage.Store
	resolver *resolver.Resolver
	product  *storage.Product
	sub      *storage.Subproduct
	summary  *storage.ReportSection
	perf     *storage.ReportSection
	recs     *storage.ReportSection
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func newFixture(t *testing.T, productGuidelines, subGuidelines string, inherit bool) *fixture {
	t.Helper()
	ctx := context.Background()
	store := storagetest.NewStore(t)

	f := &fixture{store: store}
	f.product = &storage.Product{Name: "Meta", Slug: "meta", Platforms: storage.StringList{"facebook"}, AIGuidelines: productGuidelines}
	require.NoError(t, store.Products.Create(ctx, f.product))
	f.sub = &storage.Subproduct{ProductID: f.product.ID, Name: "Link Click", Slug: "link-click", AIGuidelines: subGuidelines, InheritFromProduct: inherit}
	require.NoError(t, store.Subproducts.Create(ctx, f.sub))

	f.summary = &storage.ReportSection{SectionKey: "executive_summary", SectionName: "Executive Summary", DisplayOrder: 1, IsEnabled: true, DefaultInstructions: "Summarize."}
	f.perf = &storage.ReportSection{SectionKey: "tactic_performance", SectionName: "Performance", DisplayOrder: 2, IsEnabled: true, DefaultInstructions: "Analyze.", MaxLength: intPtr(500)}
	f.recs = &storage.ReportSection{SectionKey: "recommendations", SectionName: "Recommendations", DisplayOrder: 3, IsEnabled: true, DefaultInstructions: "Recommend."}
	for _, s := range []*storage.ReportSection{f.summary, f.perf, f.recs} {
		require.NoError(t, store.Sections.Create(ctx, s))
	}

	mem := cache.NewMemoryClient(10, time.Minute)
	t.Cleanup(func() { _ = mem.Close() })
	settingsSvc := settings.NewService(store.Settings, mem, time.Minute, nil)
	require.NoError(t, settingsSvc.Upsert(ctx, &storage.AIGlobalSetting{
		SettingKey: settings.KeyMasterPrompt, SettingValue: "Master.", Category: settings.CategoryPrompts,
	}))

	f.resolver = resolver.New(sections.NewDBStore(store), settingsSvc, store)
	return f
}

func TestResolve_GlobalOnly(t *testing.T) {
	f := newFixture(t, "", "", true)

	cfg, err := f.resolver.Resolve(context.Background(), nil, nil)
	require.NoError(t, err)

	require.Len(t, cfg.Sections, 3)
	for i, want := range []string{"executive_summary", "tactic_performance", "recommendations"} {
		assert.Equal(t, want, cfg.Sections[i].SectionKey)
		assert.Equal(t, resolver.SourceGlobal, cfg.Sections[i].Source)
	}
	assert.Equal(t, "Summarize.", cfg.Sections[0].Instructions)
	assert.Nil(t, cfg.ProductConfig)
	assert.Nil(t, cfg.SubproductConfig)

	prompt, ok := cfg.AISettings.String(settings.CategoryPrompts, settings.KeyMasterPrompt)
	require.True(t, ok)
	assert.Equal(t, "Master.", prompt)
}

func TestResolve_OverridesMergePerField(t *testing.T) {
	f := newFixture(t, "Product rules.", "", true)
	ctx := context.Background()

	require.NoError(t, f.store.ProductOverrides.Upsert(ctx, &storage.SectionOverride{
		OwnerID: f.product.ID, SectionID: f.perf.ID, CustomInstructions: strPtr("Product perf."), DisplayOrder: intPtr(10),
	}))
	require.NoError(t, f.store.ProductOverrides.Upsert(ctx, &storage.SectionOverride{
		OwnerID: f.product.ID, SectionID: f.recs.ID, IsEnabled: boolPtr(false),
	}))
	require.NoError(t, f.store.SubproductOverrides.Upsert(ctx, &storage.SectionOverride{
		OwnerID: f.sub.ID, SectionID: f.perf.ID, CustomMaxLength: intPtr(900),
	}))

	cfg, err := f.resolver.Resolve(ctx, &f.product.ID, &f.sub.ID)
	require.NoError(t, err)
	require.Len(t, cfg.Sections, 3)

	assert.Equal(t, "executive_summary", cfg.Sections[0].SectionKey)
	assert.Equal(t, resolver.SourceGlobal, cfg.Sections[0].Source)

	recs := cfg.Sections[1]
	assert.Equal(t, "recommendations", recs.SectionKey)
	assert.False(t, recs.IsEnabled)
	assert.Equal(t, "Recommend.", recs.Instructions, "unset override fields keep the global value")
	assert.Equal(t, resolver.SourceProduct, recs.Source)

	perf := cfg.Sections[2]
	assert.Equal(t, "tactic_performance", perf.SectionKey, "moved last by the product display_order")
	assert.Equal(t, 10, perf.DisplayOrder)
	assert.Equal(t, "Product perf.", perf.Instructions, "product value survives a subproduct override of other fields")
	require.NotNil(t, perf.MaxLength)
	assert.Equal(t, 900, *perf.MaxLength)
	assert.Equal(t, resolver.SourceSubproduct, perf.Source)

	enabled := cfg.EnabledSections()
	require.Len(t, enabled, 2)
	assert.Equal(t, "executive_summary", enabled[0].SectionKey)
	assert.Equal(t, "tactic_performance", enabled[1].SectionKey)
}

func TestResolve_InheritanceRule(t *testing.T) {
	tests := []struct {
		name           string
		product, sub   string
		inherit        bool
		wantGuidelines string
		wantPlatforms  storage.StringList
	}{
		{name: "inherit with empty own guidelines", product: "Focus on reach.", sub: "", inherit: true,
			wantGuidelines: "Focus on reach.", wantPlatforms: storage.StringList{"facebook"}},
		{name: "inherit concatenates product first", product: "Focus on reach.", sub: "Highlight CPC.", inherit: true,
			wantGuidelines: "Focus on reach.\n\nHighlight CPC.", wantPlatforms: storage.StringList{"facebook"}},
		{name: "no inheritance keeps own values", product: "Focus on reach.", sub: "Highlight CPC.", inherit: false,
			wantGuidelines: "Highlight CPC.", wantPlatforms: storage.StringList{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.product, tt.sub, tt.inherit)

			cfg, err := f.resolver.Resolve(context.Background(), nil, &f.sub.ID)
			require.NoError(t, err)
			require.NotNil(t, cfg.ProductConfig, "product derived from subproduct")
			require.NotNil(t, cfg.SubproductConfig)

			assert.Equal(t, tt.wantGuidelines, cfg.SubproductConfig.AIGuidelines)
			assert.Equal(t, tt.wantPlatforms, cfg.SubproductConfig.Platforms)
			assert.Equal(t, tt.sub, cfg.SubproductConfig.OwnAIGuidelines)
		})
	}
}

func TestResolve_OwnPlatformsWinOverProduct(t *testing.T) {
	f := newFixture(t, "", "", true)
	ctx := context.Background()

	f.sub.Platforms = storage.StringList{"instagram"}
	require.NoError(t, f.store.Subproducts.Update(ctx, f.sub))

	cfg, err := f.resolver.Resolve(ctx, &f.product.ID, &f.sub.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.StringList{"instagram"}, cfg.SubproductConfig.Platforms)
}

func TestResolve_IsRepeatable(t *testing.T) {
	f := newFixture(t, "A", "B", true)
	ctx := context.Background()

	first, err := f.resolver.Resolve(ctx, &f.product.ID, &f.sub.ID)
	require.NoError(t, err)
	second, err := f.resolver.Resolve(ctx, &f.product.ID, &f.sub.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolve_Errors(t *testing.T) {
	f := newFixture(t, "", "", true)
	ctx := context.Background()

	missing := int64(999)
	_, err := f.resolver.Resolve(ctx, &missing, nil)
	assert.True(t, domain.Is(err, domain.ErrorTypeNotFound))

	_, err = f.resolver.Resolve(ctx, nil, &missing)
	assert.True(t, domain.Is(err, domain.ErrorTypeNotFound))

	other := &storage.Product{Name: "TikTok", Slug: "tiktok"}
	require.NoError(t, f.store.Products.Create(ctx, other))
	_, err = f.resolver.Resolve(ctx, &other.ID, &f.sub.ID)
	assert.True(t, domain.Is(err, domain.ErrorTypeValidation))

	noDB := resolver.New(sections.NewFileStore(t.TempDir()+"/s.json"), nil, nil)
	_, err = noDB.Resolve(ctx, &f.product.ID, nil)
	assert.True(t, domain.Is(err, domain.ErrorTypeConfiguration))
}

func TestEffectiveGuidelines(t *testing.T) {
	cfg := &resolver.EffectiveConfig{}
	assert.Empty(t, cfg.EffectiveGuidelines())

	cfg.ProductConfig = &resolver.ProductConfig{AIGuidelines: "product"}
	assert.Equal(t, "product", cfg.EffectiveGuidelines())

	cfg.SubproductConfig = &resolver.SubproductConfig{AIGuidelines: "product\n\nsub"}
	assert.Equal(t, "product\n\nsub", cfg.EffectiveGuidelines())
}
