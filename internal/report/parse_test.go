package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_NewMarkers(t *testing.T) {
	text := "EXECUTIVE_SUMMARY:\nA\nTACTIC_PERFORMANCE:\nB\nTACTIC_TRENDS:\nC\nTACTIC_RECOMMENDATIONS:\nD\n"

	a := Parse(text)
	assert.Equal(t, "A", a.ExecutiveSummary)
	assert.Equal(t, "B", a.TacticPerformance)
	assert.Equal(t, "C", a.TacticTrends)
	assert.Equal(t, "D", a.TacticRecommendations)
	assert.Equal(t, "B", a.PerformanceAnalysis)
	assert.Equal(t, "C", a.TrendAnalysis)
	assert.Equal(t, "D", a.Recommendations)
}

func TestParse_CaseInsensitive(t *testing.T) {
	a := Parse("Executive_Summary: one tactic_performance: two Tactic_Trends: three TACTIC_recommendations: four")
	assert.Equal(t, "one", a.ExecutiveSummary)
	assert.Equal(t, "four", a.TacticRecommendations)
}

func TestParse_LegacyMarkers(t *testing.T) {
	text := "Intro\nEXECUTIVE_SUMMARY: sum\nPERFORMANCE_ANALYSIS: perf\nTREND_ANALYSIS: trend\nRECOMMENDATIONS: recs"

	a := Parse(text)
	assert.Equal(t, Analysis{
		ExecutiveSummary:      "sum",
		TacticPerformance:     "perf",
		TacticTrends:          "trend",
		TacticRecommendations: "recs",
		PerformanceAnalysis:   "perf",
		TrendAnalysis:         "trend",
		Recommendations:       "recs",
	}, a)
}

func TestParse_Fallback(t *testing.T) {
	t.Run("no markers", func(t *testing.T) {
		a := Parse("  The campaign did well.\n")
		assert.Equal(t, Analysis{ExecutiveSummary: "The campaign did well."}, a)
	})

	t.Run("incomplete new markers", func(t *testing.T) {
		text := "EXECUTIVE_SUMMARY: A TACTIC_PERFORMANCE: B"
		a := Parse(text)
		assert.Equal(t, text, a.ExecutiveSummary)
		assert.Empty(t, a.TacticPerformance)
		assert.Empty(t, a.TacticTrends)
		assert.Empty(t, a.TacticRecommendations)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, Analysis{}, Parse(""))
	})
}

func TestRenderHTML(t *testing.T) {
	out, err := RenderHTML(Analysis{
		ExecutiveSummary:  "Strong **quarter**.",
		TacticPerformance: "| Tactic | CTR |\n|---|---|\n| Meta | 2% |\n",
	})
	require.NoError(t, err)

	assert.Contains(t, out, `<section id="executive_summary">`)
	assert.Contains(t, out, "<strong>quarter</strong>")
	assert.Contains(t, out, "<table>")
	assert.NotContains(t, out, "tactic_trends")
	assert.Equal(t, 2, strings.Count(out, "<section"))
}
