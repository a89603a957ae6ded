package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage/storagetest"
)

func seedTree(t *testing.T, store *storage.Store) (*storage.Product, *storage.Subproduct, *storage.TacticType) {
	t.Helper()
	ctx := context.Background()

	p := &storage.Product{Name: "Meta", Slug: "meta", Platforms: storage.StringList{"facebook", "instagram"}, AIGuidelines: "Focus on reach."}
	require.NoError(t, store.Products.Create(ctx, p))

	s := &storage.Subproduct{ProductID: p.ID, Name: "Link Click", Slug: "link-click", InheritFromProduct: true}
	require.NoError(t, store.Subproducts.Create(ctx, s))

	tt := &storage.TacticType{
		SubproductID:      s.ID,
		Name:              "Campaign Performance",
		Slug:              "campaign-performance",
		ExpectedFilenames: storage.StringList{"report-meta-facebook-link-click-campaign.csv"},
		Headers:           storage.StringList{"Impressions", "Clicks"},
	}
	require.NoError(t, store.TacticTypes.Create(ctx, tt))
	return p, s, tt
}

func TestMigrator_UpIsIdempotent(t *testing.T) {
	store := storagetest.NewStore(t)
	ctx := context.Background()

	status, err := storage.NewMigrator(store).Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.UpToDate)
	assert.Len(t, status.Applied, status.Total)

	again, err := storage.NewMigrator(store).Up(ctx)
	require.NoError(t, err)
	assert.True(t, again.UpToDate)
}

func TestProductRepository_CRUD(t *testing.T) {
	store := storagetest.NewStore(t)
	ctx := context.Background()
	p, _, _ := seedTree(t, store)

	got, err := store.Products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meta", got.Name)
	assert.Equal(t, storage.StringList{"facebook", "instagram"}, got.Platforms)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)

	got.Notes = "updated"
	require.NoError(t, store.Products.Update(ctx, got))
	again, err := store.Products.GetByName(ctx, "Meta")
	require.NoError(t, err)
	assert.Equal(t, "updated", again.Notes)

	_, err = store.Products.Get(ctx, 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, store.Products.Delete(ctx, 9999), storage.ErrNotFound)
}

func TestProductRepository_DuplicateNameConflicts(t *testing.T) {
	store := storagetest.NewStore(t)
	ctx := context.Background()

	require.NoError(t, store.Products.Create(ctx, &storage.Product{Name: "Meta"}))
	err := store.Products.Create(ctx, &storage.Product{Name: "Meta"})
	assert.ErrorIs(t, err, storage.ErrConflict)
}

func TestProductRepository_DeleteCascades(t *testing.T) {
	store := storagetest.NewStore(t)
	ctx := context.Background()
	p, s, tt := seedTree(t, store)

	require.NoError(t, store.Benchmarks.Create(ctx, &storage.Benchmark{
		ProductID: p.ID, MetricName: "ctr", GoalValue: 1.2, Unit: storage.UnitPercentage, Direction: storage.HigherBetter,
	}))

	require.NoError(t, store.Products.Delete(ctx, p.ID))

	_, err := store.Subproducts.Get(ctx, s.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.TacticTypes.Get(ctx, tt.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	benchmarks, err := store.Benchmarks.ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, benchmarks)
}

func TestSubproductRepository_UnknownProductIsInvalidReference(t *testing.T) {
	store := storagetest.NewStore(t)
	err := store.Subproducts.Create(context.Background(), &storage.Subproduct{ProductID: 42, Name: "x", Slug: "x"})
	assert.ErrorIs(t, err, storage.ErrInvalidReference)
}

func TestExtractorRepository_PredicateRoundTrip(t *testing.T) {
	store := storagetest.NewStore(t)
	ctx := context.Background()
	p, _, _ := seedTree(t, store)

	e := &storage.LuminaExtractor{
		ProductID:      p.ID,
		Name:           "meta_spend",
		Path:           "lineItems[].budget",
		WhenConditions: storage.Predicate{"product": {Eq: "Meta"}},
		AggregateType:  storage.AggregateSum,
	}
	require.NoError(t, store.Extractors.Create(ctx, e))

	got, err := store.Extractors.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meta", got.WhenConditions["product"].Eq)
	assert.Equal(t, storage.AggregateSum, got.AggregateType)
}

func TestOverrideRepository_UpsertKeepsSingleRow(t *testing.T) {
	store := storagetest.NewStore(t)
	ctx := context.Background()
	p, _, _ := seedTree(t, store)

	section := &storage.ReportSection{SectionKey: "executive_summary", SectionName: "Executive Summary", DisplayOrder: 1, IsEnabled: true}
	require.NoError(t, store.Sections.Create(ctx, section))

	first := "Lead with reach."
	require.NoError(t, store.WithTx(ctx, func(r *storage.Repositories) error {
		return r.ProductOverrides.Upsert(ctx, &storage.SectionOverride{OwnerID: p.ID, SectionID: section.ID, CustomInstructions: &first})
	}))

	second := "Lead with conversions."
	disabled := false
	require.NoError(t, store.WithTx(ctx, func(r *storage.Repositories) error {
		return r.ProductOverrides.Upsert(ctx, &storage.SectionOverride{OwnerID: p.ID, SectionID: section.ID, CustomInstructions: &second, IsEnabled: &disabled})
	}))

	rows, err := store.ProductOverrides.ListByOwner(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Lead with conversions.", *rows[0].CustomInstructions)
	require.NotNil(t, rows[0].IsEnabled)
	assert.False(t, *rows[0].IsEnabled)
	assert.Nil(t, rows[0].DisplayOrder)
}

func TestVersionRepository_SingleActiveEnforced(t *testing.T) {
	store := storagetest.NewStore(t)
	ctx := context.Background()

	v1 := &storage.SchemaVersion{VersionNumber: "1", SchemaData: storage.JSONDoc(`{}`), IsActive: true}
	require.NoError(t, store.Versions.Create(ctx, v1))

	v2 := &storage.SchemaVersion{VersionNumber: "2", SchemaData: storage.JSONDoc(`{}`), IsActive: true}
	assert.ErrorIs(t, store.Versions.Create(ctx, v2), storage.ErrConflict)

	require.NoError(t, store.Versions.DeactivateAll(ctx))
	require.NoError(t, store.Versions.Create(ctx, v2))

	active, err := store.Versions.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, active.ID)

	n, err := store.Versions.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSettingRepository_UpsertByKey(t *testing.T) {
	store := storagetest.NewStore(t)
	ctx := context.Background()

	s := &storage.AIGlobalSetting{SettingKey: "default_tone", SettingValue: "concise", SettingType: storage.SettingString, Category: "prompts"}
	require.NoError(t, store.Settings.Upsert(ctx, s))
	s2 := &storage.AIGlobalSetting{SettingKey: "default_tone", SettingValue: "analytical", SettingType: storage.SettingString, Category: "prompts"}
	require.NoError(t, store.Settings.Upsert(ctx, s2))

	all, err := store.Settings.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "analytical", all[0].SettingValue)
	assert.Equal(t, s.ID, s2.ID)
}

func TestCampaignAndAnalysisRepositories(t *testing.T) {
	store := storagetest.NewStore(t)
	ctx := context.Background()

	c := &storage.Campaign{OrderID: "64b7f1c2a9e4d3b2c1a0f9e8", Name: "Q1", Status: "ongoing", RawData: storage.JSONDoc(`{"name":"Q1"}`)}
	require.NoError(t, store.Campaigns.Upsert(ctx, c))
	c.Name = "Q1 Refresh"
	require.NoError(t, store.Campaigns.Upsert(ctx, c))

	got, err := store.Campaigns.GetByOrderID(ctx, c.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "Q1 Refresh", got.Name)

	a := &storage.Analysis{ID: "a-1", CampaignID: &c.ID, CampaignName: "Q1", Model: "gpt-4o", IsMock: true, Result: storage.JSONDoc(`{"executiveSummary":"x"}`)}
	require.NoError(t, store.Analyses.Create(ctx, a))

	loaded, err := store.Analyses.Get(ctx, "a-1")
	require.NoError(t, err)
	assert.True(t, loaded.IsMock)
	assert.JSONEq(t, `{"executiveSummary":"x"}`, string(loaded.Result))
}
