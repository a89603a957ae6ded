package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/report"
)

type analyzeOptions struct {
	name         string
	orderID      string
	objectives   string
	companyInfo  string
	startDate    string
	endDate      string
	model        string
	tone         string
	instructions string
	temperature  float64
	maxTokens    int
	productID    int64
	subproductID int64
	tactics      []string
	htmlOut      string
}

func newAnalyzeCmd(g *globals) *cobra.Command {
	o := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Generate a campaign report from CSV exports",
		Long: `Generate a campaign report from CSV exports.

Each --tactic takes either id=path/to/file.csv or a bare path. Bare paths are
assigned to a tactic by filename and header matching against the configured
tactic tables.`,
		Example: `  reportai analyze --name "Spring Push" --objectives "Drive store visits" \
    --tactic meta=exports/meta_campaign.csv --tactic exports/sem_keywords.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(o.name) == "" {
				return domain.ValidationError("--name is required", nil)
			}
			if len(o.tactics) == 0 {
				return domain.ValidationError("at least one --tactic file is required", nil)
			}

			files, err := readTacticFiles(g, o.tactics)
			if err != nil {
				return err
			}
			req := o.request(cmd, files)

			a, err := g.openApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.Close()

			spin := g.ui.NewSpinner(fmt.Sprintf("Generating analysis for %s", o.name))
			spin.Start()
			result, err := a.Pipeline.Generate(cmd.Context(), req)
			spin.Stop()
			if err != nil {
				return err
			}

			if o.htmlOut != "" {
				html, err := report.RenderHTML(result.Analysis)
				if err != nil {
					return err
				}
				if err := os.WriteFile(o.htmlOut, []byte(html), 0o644); err != nil {
					return err
				}
			}

			if g.ui.JSONMode() {
				return g.ui.JSON(result)
			}

			if result.IsMock {
				g.ui.Warning("No AI model was available, showing a placeholder analysis")
			} else {
				g.ui.Success("Analysis %s generated with %s", result.AnalysisID, result.Model)
			}
			for _, s := range result.Analysis.Sections() {
				if strings.TrimSpace(s.Body) == "" {
					continue
				}
				g.ui.Heading(s.Title, s.Body)
			}
			if o.htmlOut != "" {
				g.ui.Info("HTML written to %s", o.htmlOut)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.name, "name", "", "campaign name")
	f.StringVar(&o.orderID, "order-id", "", "Lumina order id")
	f.StringVar(&o.objectives, "objectives", "", "campaign objectives")
	f.StringVar(&o.companyInfo, "company-info", "", "advertiser background")
	f.StringVar(&o.startDate, "start", "", "campaign start date")
	f.StringVar(&o.endDate, "end", "", "campaign end date")
	f.StringVar(&o.model, "model", "", "AI model id (default from settings)")
	f.StringVar(&o.tone, "tone", "", "report tone")
	f.StringVar(&o.instructions, "instructions", "", "custom instructions for the model")
	f.Float64Var(&o.temperature, "temperature", 0.7, "sampling temperature")
	f.IntVar(&o.maxTokens, "max-tokens", 0, "response token limit")
	f.Int64Var(&o.productID, "product-id", 0, "product whose configuration applies")
	f.Int64Var(&o.subproductID, "subproduct-id", 0, "subproduct whose configuration applies")
	f.StringArrayVar(&o.tactics, "tactic", nil, "CSV upload as id=file.csv or file.csv (repeatable)")
	f.StringVar(&o.htmlOut, "html", "", "also write the report as HTML to this file")
	return cmd
}

func (o *analyzeOptions) request(cmd *cobra.Command, files []report.UploadedFile) report.AnalyzeRequest {
	req := report.AnalyzeRequest{
		CampaignData: report.CampaignData{
			OrderID:    o.orderID,
			Name:       o.name,
			StartDate:  o.startDate,
			EndDate:    o.endDate,
			Objectives: report.FreeText(o.objectives),
		},
		UploadedFiles: files,
		CompanyInfo:   report.FreeText(o.companyInfo),
		AIConfig: report.AIConfig{
			Model:              o.model,
			Tone:               o.tone,
			MaxTokens:          o.maxTokens,
			CustomInstructions: o.instructions,
		},
	}

	flags := cmd.Flags()
	if flags.Changed("temperature") {
		t := o.temperature
		req.AIConfig.Temperature = &t
	}
	if flags.Changed("product-id") {
		id := o.productID
		req.AIConfig.ProductID = &id
	}
	if flags.Changed("subproduct-id") {
		id := o.subproductID
		req.AIConfig.SubproductID = &id
	}

	seen := map[string]bool{}
	for _, f := range files {
		if f.TacticID != "" && !seen[f.TacticID] {
			seen[f.TacticID] = true
			req.Tactics = append(req.Tactics, report.TacticRef{ID: f.TacticID})
		}
	}
	return req
}

// readTacticFiles loads every --tactic argument.
func readTacticFiles(g *globals, specs []string) ([]report.UploadedFile, error) {
	bar := g.ui.NewProgressBar(len(specs), "Reading CSV files")
	defer bar.Finish()

	files := make([]report.UploadedFile, 0, len(specs))
	for _, spec := range specs {
		tacticID, path := splitTacticSpec(spec)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, domain.ValidationError(fmt.Sprintf("read %s", path), err)
		}
		files = append(files, report.UploadedFile{
			Filename: filepath.Base(path),
			TacticID: tacticID,
			Content:  string(data),
		})
		bar.Add(1)
	}
	return files, nil
}

// splitTacticSpec splits "id=path" into its parts. Paths without a tactic
// id, including ones whose directory contains '=', are returned whole.
func splitTacticSpec(spec string) (string, string) {
	id, path, ok := strings.Cut(spec, "=")
	if !ok || id == "" || strings.ContainsAny(id, `/\`) {
		return "", spec
	}
	return strings.TrimSpace(id), path
}
