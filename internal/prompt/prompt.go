// Package prompt assembles the analysis prompt sent to the language model.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/edwinlov3tt/report-ai-sub000/internal/metrics"
	"github.com/edwinlov3tt/report-ai-sub000/internal/resolver"
	"github.com/edwinlov3tt/report-ai-sub000/internal/settings"
)

// Campaign is the campaign metadata shown to the model.
type Campaign struct {
	Name          string `json:"name"`
	Status        string `json:"status"`
	StartDate     string `json:"startDate,omitempty"`
	EndDate       string `json:"endDate,omitempty"`
	DaysElapsed   int    `json:"daysElapsed,omitempty"`
	DaysRemaining int    `json:"daysRemaining,omitempty"`
}

// Input carries everything Build needs.
type Input struct {
	Campaign           Campaign
	Objectives         string
	CompanyInfo        string
	Tactics            []metrics.TacticData
	Config             *resolver.EffectiveConfig
	Tone               string
	CustomInstructions string
}

// Build renders the prompt. Blocks appear in a fixed order: role and tone,
// custom instructions, constraints, campaign, objectives, company, tactics
// and the output format.
func Build(in Input) string {
	var b strings.Builder

	tone := in.Tone
	if tone == "" && in.Config != nil {
		tone, _ = in.Config.AISettings.String(settings.CategoryGeneration, settings.KeyDefaultTone)
	}
	_, toneText := ToneInstruction(tone)

	if master := masterPrompt(in.Config); master != "" {
		b.WriteString(master)
		b.WriteString("\n\n")
	}
	b.WriteString("You are an expert digital marketing analyst preparing a campaign performance report.\n")
	b.WriteString(toneText)
	b.WriteString("\n\n")

	if custom := customBlock(in); custom != "" {
		b.WriteString("CUSTOM INSTRUCTIONS:\n")
		b.WriteString(custom)
		b.WriteString("\n\n")
	}

	b.WriteString("IMPORTANT CONSTRAINTS:\n")
	for _, c := range constraints {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("\n")

	writeCampaign(&b, in.Campaign)

	b.WriteString("MARKETING OBJECTIVES:\n")
	b.WriteString(orNone(in.Objectives))
	b.WriteString("\n\n")

	b.WriteString("COMPANY CONTEXT:\n")
	b.WriteString(orNone(in.CompanyInfo))
	b.WriteString("\n\n")

	b.WriteString("TACTIC DATA:\n")
	if len(in.Tactics) == 0 {
		b.WriteString("No tactic data was provided.\n")
	}
	for i, t := range in.Tactics {
		writeTactic(&b, i+1, t)
	}
	b.WriteString("\n")

	b.WriteString(outputFormat)
	b.WriteString("\n")
	return b.String()
}

func masterPrompt(cfg *resolver.EffectiveConfig) string {
	if cfg == nil {
		return ""
	}
	text, _ := cfg.AISettings.String(settings.CategoryPrompts, settings.KeyMasterPrompt)
	return strings.TrimSpace(text)
}

func customBlock(in Input) string {
	var parts []string
	if s := strings.TrimSpace(in.CustomInstructions); s != "" {
		parts = append(parts, s)
	}
	if in.Config == nil {
		return strings.Join(parts, "\n\n")
	}

	if g := strings.TrimSpace(in.Config.EffectiveGuidelines()); g != "" {
		parts = append(parts, "Product guidelines:\n"+g)
	}
	if pc := in.Config.ProductConfig; pc != nil && strings.TrimSpace(pc.AIPrompt) != "" {
		parts = append(parts, strings.TrimSpace(pc.AIPrompt))
	}

	var sections []string
	for _, s := range in.Config.EnabledSections() {
		line := "- " + s.SectionName
		if instr := strings.TrimSpace(s.Instructions); instr != "" {
			line += ": " + instr
		}
		if bounds := lengthBounds(s.MinLength, s.MaxLength); bounds != "" {
			line += " (" + bounds + ")"
		}
		sections = append(sections, line)
	}
	if len(sections) > 0 {
		parts = append(parts, "Report sections:\n"+strings.Join(sections, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

func lengthBounds(lo, hi *int) string {
	switch {
	case lo != nil && hi != nil:
		return fmt.Sprintf("%d-%d words", *lo, *hi)
	case lo != nil:
		return fmt.Sprintf("at least %d words", *lo)
	case hi != nil:
		return fmt.Sprintf("at most %d words", *hi)
	}
	return ""
}

func writeCampaign(b *strings.Builder, c Campaign) {
	b.WriteString("CAMPAIGN:\n")
	fmt.Fprintf(b, "Name: %s\n", orNone(c.Name))
	fmt.Fprintf(b, "Status: %s\n", orNone(c.Status))
	if c.StartDate != "" || c.EndDate != "" {
		fmt.Fprintf(b, "Flight: %s to %s\n", orNone(c.StartDate), orNone(c.EndDate))
	}
	fmt.Fprintf(b, "Duration: %d days elapsed, %d days remaining\n\n", c.DaysElapsed, c.DaysRemaining)
}

func writeTactic(b *strings.Builder, n int, t metrics.TacticData) {
	name := t.TacticName
	if name == "" {
		name = t.TacticID
	}
	kpis := KPIsFor(t.TacticID)

	fmt.Fprintf(b, "\nTactic %d: %s\n", n, name)
	fmt.Fprintf(b, "Files: %d, rows: %d\n", t.FileCount, t.RowCount)
	fmt.Fprintf(b, "Impressions: %.0f\n", t.Metrics.Impressions)
	fmt.Fprintf(b, "Clicks: %.0f\n", t.Metrics.Clicks)
	fmt.Fprintf(b, "Conversions: %.0f\n", t.Metrics.Conversions)
	fmt.Fprintf(b, "Spend: $%.2f\n", t.Metrics.Spend)
	fmt.Fprintf(b, "CTR: %.2f%%\n", t.Derived.CTR)
	fmt.Fprintf(b, "Conversion rate: %.2f%%\n", t.Derived.ConversionRate)
	fmt.Fprintf(b, "CPC: $%.2f\n", t.Derived.CPC)
	fmt.Fprintf(b, "CPM: $%.2f\n", t.Derived.CPM)
	if len(t.Geo) > 0 {
		if data, err := json.Marshal(t.Geo); err == nil {
			fmt.Fprintf(b, "Top geographic performance: %s\n", data)
		}
	}
	fmt.Fprintf(b, "Primary KPI: %s\n", kpis.Primary)
	fmt.Fprintf(b, "Secondary KPIs: %s\n", strings.Join(kpis.Secondary, ", "))
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not provided"
	}
	return s
}
