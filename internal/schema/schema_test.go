package schema_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/schema"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage/storagetest"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func newService(t *testing.T) (*schema.Service, *storage.Store) {
	t.Helper()
	store := storagetest.NewStore(t)
	return schema.NewService(store, nil), store
}

func fixtureSnapshot() *schema.Snapshot {
	return &schema.Snapshot{
		Version: schema.SnapshotVersion,
		Products: []schema.ProductDoc{
			{
				Name:         "Meta",
				Slug:         "meta",
				Platforms:    storage.StringList{"facebook", "instagram"},
				AIGuidelines: "Focus on reach and frequency.",
				Subproducts: []schema.SubproductDoc{
					{
						Name:               "Link Click",
						Slug:               "link-click",
						Platforms:          storage.StringList{},
						AIGuidelines:       "Highlight CPC.",
						InheritFromProduct: boolPtr(true),
						TacticTypes: []schema.TacticTypeDoc{
							{
								Name:              "Campaign Performance",
								Slug:              "campaign-performance",
								ExpectedFilenames: storage.StringList{"report-meta-facebook-link-click-campaign.csv"},
								Aliases:           storage.StringList{"fb-campaign"},
								Headers:           storage.StringList{"Impressions", "Clicks", "Amount Spent"},
							},
						},
						SectionOverrides: []schema.OverrideDoc{
							{SectionKey: "executive_summary", CustomInstructions: strPtr("Mention link clicks.")},
						},
					},
				},
				Extractors: []schema.ExtractorDoc{
					{
						Name:           "meta_budget",
						Path:           "lineItems[].budget",
						WhenConditions: storage.Predicate{"product": {Eq: "Meta"}},
						AggregateType:  storage.AggregateSum,
					},
				},
				Benchmarks: []schema.BenchmarkDoc{
					{MetricName: "ctr", GoalValue: 1.2, WarningThreshold: 0.8, Unit: storage.UnitPercentage, Direction: storage.HigherBetter},
				},
				SectionOverrides: []schema.OverrideDoc{
					{SectionKey: "executive_summary", IsEnabled: boolPtr(true), DisplayOrder: intPtr(5)},
				},
			},
			{
				Name:        "Search",
				Slug:        "sem",
				Platforms:   storage.StringList{"google"},
				Subproducts: []schema.SubproductDoc{},
			},
		},
	}
}

func seedSections(t *testing.T, store *storage.Store) {
	t.Helper()
	require.NoError(t, store.Sections.Create(context.Background(), &storage.ReportSection{
		SectionKey: "executive_summary", SectionName: "Executive Summary", DisplayOrder: 1, IsEnabled: true,
	}))
}

func TestSnapshot_RoundTripIsIdempotent(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	seedSections(t, store)

	_, err := svc.ImportSnapshot(ctx, fixtureSnapshot(), true)
	require.NoError(t, err)

	first, err := svc.ExportSnapshot(ctx)
	require.NoError(t, err)

	_, err = svc.ImportSnapshot(ctx, first, true)
	require.NoError(t, err)

	second, err := svc.ExportSnapshot(ctx)
	require.NoError(t, err)

	ignoreTimestamp := cmpopts.IgnoreFields(schema.Snapshot{}, "GeneratedAt")
	if diff := cmp.Diff(first, second, ignoreTimestamp); diff != "" {
		t.Fatalf("snapshot changed across round trip (-first +second):\n%s", diff)
	}

	assert.Equal(t, "2.0", second.Version)
	require.Len(t, second.Products, 2)
	assert.Equal(t, "Meta", second.Products[0].Name)
	require.Len(t, second.Products[0].SectionOverrides, 1)
	assert.Equal(t, "executive_summary", second.Products[0].SectionOverrides[0].SectionKey)
}

func TestSnapshot_ExportSurvivesJSON(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	seedSections(t, store)

	_, err := svc.ImportSnapshot(ctx, fixtureSnapshot(), false)
	require.NoError(t, err)

	exported, err := svc.ExportSnapshot(ctx)
	require.NoError(t, err)

	data, err := json.Marshal(exported)
	require.NoError(t, err)
	parsed, err := schema.ParseSnapshot(data)
	require.NoError(t, err)

	if diff := cmp.Diff(exported, parsed, cmpopts.EquateApproxTime(time.Second)); diff != "" {
		t.Fatalf("JSON round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestImportSnapshot_TwiceWithClearDoesNotDuplicate(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := svc.ImportSnapshot(ctx, fixtureSnapshot(), true)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Products)
		assert.Equal(t, 1, res.TacticTypes)
		assert.Equal(t, 2, res.SkippedOverrides, "no sections exist, overrides are skipped")
	}

	products, err := store.Products.Count(ctx)
	require.NoError(t, err)
	subproducts, err := store.Subproducts.Count(ctx)
	require.NoError(t, err)
	tactics, err := store.TacticTypes.Count(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, products)
	assert.Equal(t, 1, subproducts)
	assert.Equal(t, 1, tactics)
}

func TestImportSnapshot_FailureLeavesStoreUnchanged(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	_, err := svc.ImportSnapshot(ctx, fixtureSnapshot(), true)
	require.NoError(t, err)
	before, err := svc.ExportSnapshot(ctx)
	require.NoError(t, err)

	bad := fixtureSnapshot()
	bad.Products[1].Benchmarks = []schema.BenchmarkDoc{
		{MetricName: "Cost Per Click", Unit: storage.UnitUSD, Direction: storage.LowerBetter},
	}
	_, err = svc.ImportSnapshot(ctx, bad, true)
	require.Error(t, err)
	assert.True(t, domain.Is(err, domain.ErrorTypeValidation))
	assert.Contains(t, err.Error(), "metric_name must match")

	after, err := svc.ExportSnapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(before, after, cmpopts.IgnoreFields(schema.Snapshot{}, "GeneratedAt")))

	n, err := store.Products.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestImportSnapshot_ConflictWithoutClearRollsBack(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	require.NoError(t, store.Products.Create(ctx, &storage.Product{Name: "Search", Slug: "sem"}))

	_, err := svc.ImportSnapshot(ctx, fixtureSnapshot(), false)
	require.Error(t, err)
	assert.True(t, domain.Is(err, domain.ErrorTypeValidation))

	n, err := store.Products.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "Meta must not survive the failed import")
}

func TestImportSnapshot_RejectsDuplicateSlugs(t *testing.T) {
	svc, _ := newService(t)

	snap := fixtureSnapshot()
	sub := snap.Products[0].Subproducts[0]
	snap.Products[0].Subproducts = append(snap.Products[0].Subproducts, sub)

	_, err := svc.ImportSnapshot(context.Background(), snap, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate subproduct slug")
}

func TestImportSnapshot_DerivesMissingSlugs(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	snap := &schema.Snapshot{Version: "2.0", Products: []schema.ProductDoc{{Name: "Streaming TV", Subproducts: []schema.SubproductDoc{
		{Name: "CTV Plus", TacticTypes: []schema.TacticTypeDoc{{Name: "Daily Delivery"}}},
	}}}}
	_, err := svc.ImportSnapshot(ctx, snap, false)
	require.NoError(t, err)

	p, err := store.Products.GetByName(ctx, "Streaming TV")
	require.NoError(t, err)
	assert.Equal(t, "streaming-tv", p.Slug)

	subs, err := store.Subproducts.ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "ctv-plus", subs[0].Slug)
	assert.True(t, subs[0].InheritFromProduct, "inherit_from_product defaults to true")
}

func TestParseSnapshot(t *testing.T) {
	_, err := schema.ParseSnapshot([]byte(`not json`))
	assert.True(t, domain.Is(err, domain.ErrorTypeValidation))

	_, err = schema.ParseSnapshot([]byte(`{"products":[]}`))
	assert.ErrorContains(t, err, "missing version")

	_, err = schema.ParseSnapshot([]byte(`{"version":"2.0"}`))
	assert.ErrorContains(t, err, "missing products")

	snap, err := schema.ParseSnapshot([]byte(`{"version":"2.0","products":[{"name":"Meta","subproducts":[]}]}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"products": 1, "subproducts": 0, "tactic_types": 0, "extractors": 0, "benchmarks": 0,
	}, snap.Counts())
}
