package prompt

import "strings"

// Section markers the model is told to emit. The report parser splits on
// these exact strings.
const (
	MarkerExecutiveSummary      = "EXECUTIVE_SUMMARY:"
	MarkerTacticPerformance     = "TACTIC_PERFORMANCE:"
	MarkerTacticTrends          = "TACTIC_TRENDS:"
	MarkerTacticRecommendations = "TACTIC_RECOMMENDATIONS:"
)

// Markers lists the section markers in output order.
var Markers = []string{
	MarkerExecutiveSummary,
	MarkerTacticPerformance,
	MarkerTacticTrends,
	MarkerTacticRecommendations,
}

// DefaultTone is used for empty or unknown tones.
const DefaultTone = "professional"

var tones = map[string]string{
	"concise":        "Write in a concise, direct style. Use short sentences and lead with the numbers that matter.",
	"professional":   "Write in a professional, polished business tone suitable for client-facing reports.",
	"conversational": "Write in a friendly, conversational tone while keeping the analysis grounded in the data.",
	"encouraging":    "Write in an encouraging tone that highlights wins and frames gaps as opportunities.",
	"analytical":     "Write in a rigorous, analytical tone. Explain the reasoning behind each conclusion and quantify claims.",
	"casual":         "Write in a relaxed, casual tone that a non-marketer can follow easily.",
}

// ToneInstruction returns the normalized tone and its instruction text.
func ToneInstruction(tone string) (string, string) {
	key := strings.ToLower(strings.TrimSpace(tone))
	if text, ok := tones[key]; ok {
		return key, text
	}
	return DefaultTone, tones[DefaultTone]
}

// KPISet is the platform-specific KPI vocabulary for one tactic.
type KPISet struct {
	Primary   string
	Secondary []string
}

type kpiRule struct {
	needles []string
	set     KPISet
}

var kpiRules = []kpiRule{
	{[]string{"sem", "search"}, KPISet{"Cost per Call", []string{"Quality Score", "Search Impression Share", "CTR"}}},
	{[]string{"meta", "facebook"}, KPISet{"Cost per Result", []string{"Reach", "Frequency", "Engagement Rate"}}},
	{[]string{"youtube", "video"}, KPISet{"View Rate", []string{"Cost per View", "Completion Rate", "Watch Time"}}},
	{[]string{"display"}, KPISet{"Viewability Rate", []string{"CTR", "CPM", "Reach"}}},
}

var defaultKPIs = KPISet{"Cost per Acquisition", []string{"ROAS", "Conversion Rate"}}

// KPIsFor looks up KPIs by case-insensitive substring of the tactic id. The
// first matching rule wins.
func KPIsFor(tacticID string) KPISet {
	id := strings.ToLower(tacticID)
	for _, rule := range kpiRules {
		for _, needle := range rule.needles {
			if strings.Contains(id, needle) {
				return rule.set
			}
		}
	}
	return defaultKPIs
}

var constraints = []string{
	"Never combine or merge metrics across different tactics; each tactic has its own data source.",
	"Analyze each tactic independently before drawing any campaign-level conclusion.",
	"Tie the executive summary directly to the stated marketing objectives.",
	"Organize recommendations tactic by tactic first, then give overall campaign recommendations.",
}

const outputFormat = `Respond using exactly the following four sections, each starting with its label on its own line:

` + MarkerExecutiveSummary + `
A short overview (2-3 paragraphs) of campaign performance measured against the marketing objectives.

` + MarkerTacticPerformance + `
For each tactic, a subsection titled with the tactic name covering its key metrics, its primary KPI and how it compares to expectations.

` + MarkerTacticTrends + `
For each tactic, notable trends, geographic patterns and changes over time visible in its data.

` + MarkerTacticRecommendations + `
Recommendations grouped by tactic, followed by overall campaign recommendations. Make each recommendation specific and actionable.`
