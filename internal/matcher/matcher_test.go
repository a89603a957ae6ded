package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edwinlov3tt/report-ai-sub000/internal/schema"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
)

const metaFile = "report-meta-facebook-link-click-campaign.csv"

func metaProducts(filenames ...string) []ProductTables {
	return []ProductTables{
		{
			ProductName: "Meta",
			ProductSlug: "meta",
			Tables: []Table{
				{TableSlug: "campaign-performance", Name: "Campaign Performance", Filenames: filenames, Aliases: []string{"fb-campaign"}},
			},
		},
	}
}

func TestMatchFilename_Scores(t *testing.T) {
	t.Run("exact filename scores 100", func(t *testing.T) {
		matches := MatchFilename(metaFile, metaProducts(metaFile))
		require.Len(t, matches, 1)
		assert.Equal(t, ScoreExact, matches[0].Score)
		assert.Equal(t, MatchExact, matches[0].MatchType)
	})

	t.Run("pattern match scores 90", func(t *testing.T) {
		matches := MatchFilename(metaFile, metaProducts())
		require.Len(t, matches, 1)
		assert.Equal(t, ScorePattern, matches[0].Score)
		assert.Equal(t, MatchPattern, matches[0].MatchType)
	})

	t.Run("alias match scores 80", func(t *testing.T) {
		matches := MatchFilename("Export_FB-Campaign_Jan.csv", metaProducts())
		require.Len(t, matches, 1)
		assert.Equal(t, ScoreAlias, matches[0].Score)
		assert.Equal(t, MatchAlias, matches[0].MatchType)
	})

	t.Run("no match is excluded", func(t *testing.T) {
		assert.Empty(t, MatchFilename("unrelated.csv", metaProducts()))
	})

	t.Run("empty filename yields no matches", func(t *testing.T) {
		matches := MatchFilename("", metaProducts(metaFile))
		assert.NotNil(t, matches)
		assert.Empty(t, matches)
	})
}

func TestMatchFilename_Pattern(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		product  string
		table    string
		want     bool
	}{
		{name: "table slug follows product", filename: "report-meta-facebook-2024.csv", product: "meta", table: "facebook", want: true},
		{name: "leading table segment later in name", filename: metaFile, product: "meta", table: "campaign-performance", want: true},
		{name: "case insensitive", filename: "Report-META-Campaign.CSV", product: "meta", table: "campaign-performance", want: true},
		{name: "other product", filename: metaFile, product: "tiktok", table: "campaign-performance", want: false},
		{name: "table segment absent", filename: metaFile, product: "meta", table: "video-completion", want: false},
		{name: "no report prefix", filename: "meta-campaign.csv", product: "meta", table: "campaign", want: false},
		{name: "segment inside a longer word", filename: "report-meta-advantage-audience.csv", product: "meta", table: "ad-set-performance", want: false},
		{name: "segment inside a compound token", filename: "report-meta-campaigns.csv", product: "meta", table: "campaign-performance", want: false},
		{name: "underscore separated name", filename: "report-meta-fb_ad_set.csv", product: "meta", table: "ad-set-performance", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := []ProductTables{{ProductName: "P", ProductSlug: tt.product, Tables: []Table{{TableSlug: tt.table}}}}
			matches := MatchFilename(tt.filename, products)
			if !tt.want {
				assert.Empty(t, matches)
				return
			}
			require.Len(t, matches, 1)
			assert.Equal(t, ScorePattern, matches[0].Score)
		})
	}
}

func TestMatchFilename_WholeSlugOutranksLeadingSegment(t *testing.T) {
	products := []ProductTables{{
		ProductName: "Meta",
		ProductSlug: "meta",
		Tables: []Table{
			{TableSlug: "campaign-performance"},
			{TableSlug: "campaign-geo"},
			{TableSlug: "ad-set-performance"},
		},
	}}

	tests := []struct {
		filename string
		want     []string
	}{
		{"report-meta-facebook-campaign-geo.csv", []string{"campaign-geo", "campaign-performance"}},
		{"report-meta-facebook-campaign-performance.csv", []string{"campaign-performance", "campaign-geo"}},
		{"report-meta-ad-set-performance-2024.csv", []string{"ad-set-performance"}},
		{"report-meta-advantage-audience.csv", nil},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			matches := MatchFilename(tt.filename, products)
			var got []string
			for _, m := range matches {
				assert.Equal(t, ScorePattern, m.Score)
				got = append(got, m.Table.TableSlug)
			}
			assert.Equal(t, tt.want, got)

			best, ok := Best(matches)
			if tt.want == nil {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want[0], best.Table.TableSlug)
		})
	}
}

func TestMatchFilename_SortedAndStable(t *testing.T) {
	products := []ProductTables{
		{ProductName: "First", ProductSlug: "first", Tables: []Table{{TableSlug: "a", Aliases: []string{"campaign"}}}},
		{ProductName: "Second", ProductSlug: "second", Tables: []Table{{TableSlug: "b", Aliases: []string{"campaign"}}}},
		{ProductName: "Meta", ProductSlug: "meta", Tables: []Table{{TableSlug: "c", Filenames: []string{metaFile}}}},
	}

	matches := MatchFilename(metaFile, products)
	require.Len(t, matches, 3)
	assert.Equal(t, "Meta", matches[0].Product)
	assert.Equal(t, "First", matches[1].Product, "ties keep enumeration order")
	assert.Equal(t, "Second", matches[2].Product)

	best, ok := Best(matches)
	require.True(t, ok)
	assert.Equal(t, "c", best.Table.TableSlug)
}

func TestSimilarity_Properties(t *testing.T) {
	h := []string{"Impressions", "Clicks", "Spend"}
	tb := []string{"impressions", " clicks ", "CTR", "Conversions"}

	assert.InDelta(t, 2.0/5.0, Similarity(h, tb), 1e-9)
	assert.Equal(t, Similarity(h, tb), Similarity(tb, h), "symmetric")
	assert.Equal(t, 1.0, Similarity(h, []string{"spend", "CLICKS", "impressions"}), "equal sets")
	assert.Equal(t, 0.0, Similarity(h, []string{"Date", "DMA"}), "disjoint")
	assert.Equal(t, 0.0, Similarity(nil, nil))
}

func TestMatchHeaders(t *testing.T) {
	products := []ProductTables{
		{ProductName: "Meta", ProductSlug: "meta", Tables: []Table{
			{TableSlug: "partial", Headers: []string{"Impressions", "Clicks", "Reach", "Frequency"}},
			{TableSlug: "exact", Headers: []string{"Impressions", "Clicks"}},
			{TableSlug: "none", Headers: []string{"Views"}},
			{TableSlug: "unconfigured"},
		}},
	}

	matches := MatchHeaders([]string{" impressions", "CLICKS"}, products)
	require.Len(t, matches, 2)

	assert.Equal(t, "exact", matches[0].Table.TableSlug)
	assert.Equal(t, 1.0, matches[0].Similarity)
	assert.Equal(t, 100, matches[0].Percent)
	assert.Empty(t, matches[0].MissingHeaders)

	assert.Equal(t, "partial", matches[1].Table.TableSlug)
	assert.Equal(t, 50, matches[1].Percent)
	assert.Equal(t, []string{"Impressions", "Clicks"}, matches[1].MatchingHeaders)
	assert.Equal(t, []string{"Reach", "Frequency"}, matches[1].MissingHeaders)

	assert.Empty(t, MatchHeaders(nil, products))
}

func TestTablesFromTree(t *testing.T) {
	tree := []schema.ProductNode{{
		Product: &storage.Product{Name: "Meta", Slug: "meta"},
		Subproducts: []schema.SubproductNode{{
			Subproduct: &storage.Subproduct{Name: "Link Click", Slug: "link-click"},
			TacticTypes: []*storage.TacticType{{
				ID:                7,
				Name:              "Campaign Performance",
				Slug:              "campaign-performance",
				FilenameStem:      "meta_campaign",
				ExpectedFilenames: storage.StringList{metaFile},
				Headers:           storage.StringList{"Impressions"},
			}},
		}},
	}}

	tables := TablesFromTree(tree)
	require.Len(t, tables, 1)
	assert.Equal(t, "meta", tables[0].ProductSlug)
	require.Len(t, tables[0].Tables, 1)
	table := tables[0].Tables[0]
	assert.Equal(t, int64(7), table.TacticTypeID)
	assert.Equal(t, []string{metaFile, "meta_campaign.csv"}, table.Filenames)

	matches := MatchFilename("meta_campaign.csv", tables)
	require.Len(t, matches, 1)
	assert.Equal(t, ScoreExact, matches[0].Score)
}
