package report

import (
	"fmt"
	"strings"

	"github.com/edwinlov3tt/report-ai-sub000/internal/metrics"
	"github.com/edwinlov3tt/report-ai-sub000/internal/prompt"
)

// MockAnalysis builds a templated analysis from the aggregated data alone.
// The output is deterministic for a given input.
func MockAnalysis(campaign prompt.Campaign, objectives string, tactics []metrics.TacticData) Analysis {
	name := campaign.Name
	if name == "" {
		name = "This campaign"
	}

	names := make([]string, 0, len(tactics))
	var total metrics.KeyMetrics
	for _, t := range tactics {
		names = append(names, tacticLabel(t))
		total = total.Add(t.Metrics)
	}

	var summary strings.Builder
	fmt.Fprintf(&summary, "%s ran %d tactic(s): %s.", name, len(tactics), joinOrNone(names))
	if strings.TrimSpace(objectives) != "" {
		fmt.Fprintf(&summary, " Results are reviewed against the stated objectives: %s.", strings.TrimSpace(objectives))
	}
	fmt.Fprintf(&summary, " Across all tactics the campaign delivered %.0f impressions, %.0f clicks and %.0f conversions on $%.2f of spend.",
		total.Impressions, total.Clicks, total.Conversions, total.Spend)

	var perf, trends, recs strings.Builder
	for _, t := range tactics {
		label := tacticLabel(t)
		fmt.Fprintf(&perf, "### %s\n- Impressions: %.0f\n- Clicks: %.0f\n- Conversions: %.0f\n- Spend: $%.2f\n- CTR: %.2f%%\n- CPC: $%.2f\n- CPM: $%.2f\n\n",
			label, t.Metrics.Impressions, t.Metrics.Clicks, t.Metrics.Conversions, t.Metrics.Spend,
			t.Derived.CTR, t.Derived.CPC, t.Derived.CPM)

		fmt.Fprintf(&trends, "### %s\n", label)
		if len(t.Geo) > 0 {
			fmt.Fprintf(&trends, "- Strongest location: %s with %.0f impressions.\n\n", t.Geo[0].Location, t.Geo[0].Impressions)
		} else {
			trends.WriteString("- No geographic breakdown was available.\n\n")
		}

		kpis := prompt.KPIsFor(t.TacticID)
		fmt.Fprintf(&recs, "### %s\n- Track %s alongside %s.\n\n", label, kpis.Primary, strings.Join(kpis.Secondary, ", "))
	}
	recs.WriteString("### Overall\n- Shift budget toward the tactics with the strongest conversion rate and review results weekly.")

	a := Analysis{
		ExecutiveSummary:      summary.String(),
		TacticPerformance:     strings.TrimSpace(perf.String()),
		TacticTrends:          strings.TrimSpace(trends.String()),
		TacticRecommendations: recs.String(),
	}
	a.mirrorLegacy()
	return a
}

func tacticLabel(t metrics.TacticData) string {
	if t.TacticName != "" {
		return t.TacticName
	}
	return t.TacticID
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
