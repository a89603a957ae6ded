// Package report turns uploaded campaign data into an AI-written analysis:
// it aggregates metrics, builds the prompt, calls the model and parses the
// reply into sections.
package report

import (
	"regexp"
	"strings"

	"github.com/edwinlov3tt/report-ai-sub000/internal/prompt"
)

// Legacy section markers still produced by older prompt templates.
const (
	legacyPerformance     = "PERFORMANCE_ANALYSIS:"
	legacyTrends          = "TREND_ANALYSIS:"
	legacyRecommendations = "RECOMMENDATIONS:"
)

// Analysis is the parsed model reply. The legacy fields mirror the tactic
// fields.
type Analysis struct {
	ExecutiveSummary      string `json:"executiveSummary"`
	TacticPerformance     string `json:"tacticPerformance"`
	TacticTrends          string `json:"tacticTrends"`
	TacticRecommendations string `json:"tacticRecommendations"`

	PerformanceAnalysis string `json:"performanceAnalysis"`
	TrendAnalysis       string `json:"trendAnalysis"`
	Recommendations     string `json:"recommendations"`
}

var (
	detectNew   = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(prompt.MarkerTacticPerformance))
	splitNew    = markerPattern(prompt.Markers...)
	splitLegacy = markerPattern(prompt.MarkerExecutiveSummary, legacyPerformance, legacyTrends, legacyRecommendations)
)

func markerPattern(markers ...string) *regexp.Regexp {
	quoted := make([]string, len(markers))
	for i, m := range markers {
		quoted[i] = regexp.QuoteMeta(m)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(quoted, "|"))
}

// Parse splits a model reply on the section markers. Text without a usable
// set of markers becomes the executive summary; Parse never fails.
func Parse(text string) Analysis {
	pattern := splitLegacy
	if detectNew.MatchString(text) {
		pattern = splitNew
	}

	segments := pattern.Split(text, -1)
	if len(segments) < 5 {
		return Analysis{ExecutiveSummary: strings.TrimSpace(text)}
	}

	a := Analysis{
		ExecutiveSummary:      strings.TrimSpace(segments[1]),
		TacticPerformance:     strings.TrimSpace(segments[2]),
		TacticTrends:          strings.TrimSpace(segments[3]),
		TacticRecommendations: strings.TrimSpace(segments[4]),
	}
	a.mirrorLegacy()
	return a
}

func (a *Analysis) mirrorLegacy() {
	a.PerformanceAnalysis = a.TacticPerformance
	a.TrendAnalysis = a.TacticTrends
	a.Recommendations = a.TacticRecommendations
}

// Sections returns the titled sections in display order.
func (a Analysis) Sections() []Section {
	return []Section{
		{Key: "executive_summary", Title: "Executive Summary", Body: a.ExecutiveSummary},
		{Key: "tactic_performance", Title: "Tactic Performance", Body: a.TacticPerformance},
		{Key: "tactic_trends", Title: "Trends", Body: a.TacticTrends},
		{Key: "tactic_recommendations", Title: "Recommendations", Body: a.TacticRecommendations},
	}
}

// Section is one titled block of an analysis.
type Section struct {
	Key   string
	Title string
	Body  string
}
