package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/matcher"
	"github.com/edwinlov3tt/report-ai-sub000/internal/metrics"
	"github.com/edwinlov3tt/report-ai-sub000/internal/observability"
	"github.com/edwinlov3tt/report-ai-sub000/internal/prompt"
	"github.com/edwinlov3tt/report-ai-sub000/internal/resolver"
	"github.com/edwinlov3tt/report-ai-sub000/internal/settings"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
)

// MockModel is recorded as the model of a templated analysis.
const MockModel = "mock"

// headerMatchThreshold is the minimum header similarity used to assign a
// file to a tactic when its filename matched nothing.
const headerMatchThreshold = 0.5

// Caller makes one model call.
type Caller interface {
	Call(ctx context.Context, modelID, prompt string, temperature float64, maxTokens int) (string, error)
	DefaultModel() string
}

// ConfigResolver returns the effective configuration for a product context.
type ConfigResolver interface {
	Resolve(ctx context.Context, productID, subproductID *int64) (*resolver.EffectiveConfig, error)
}

// TableSource lists the configured tactic tables for file matching.
type TableSource func(ctx context.Context) ([]matcher.ProductTables, error)

// Defaults are used when neither the request nor the stored AI settings
// specify a value.
type Defaults struct {
	Tone        string
	Temperature float64
	MaxTokens   int
}

// Options configures a Pipeline. Only LLM is required.
type Options struct {
	LLM      Caller
	Resolver ConfigResolver
	Tables   TableSource
	Store    *storage.Store
	Defaults Defaults
	Logger   *observability.Logger
}

// Pipeline generates analyses.
type Pipeline struct {
	llm      Caller
	resolver ConfigResolver
	tables   TableSource
	store    *storage.Store
	defaults Defaults
	logger   *observability.Logger
	newID    func() string
	now      func() time.Time
}

// NewPipeline creates a pipeline.
func NewPipeline(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Pipeline{
		llm:      opts.LLM,
		resolver: opts.Resolver,
		tables:   opts.Tables,
		store:    opts.Store,
		defaults: opts.Defaults,
		logger:   logger,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// Result is what callers receive. Whether the analysis is a mock is kept
// out of the JSON.
type Result struct {
	Analysis   Analysis `json:"analysis"`
	AnalysisID string   `json:"analysisId"`
	Model      string   `json:"-"`
	IsMock     bool     `json:"-"`
}

// prepared is a fully assembled model request.
type prepared struct {
	input       prompt.Input
	text        string
	temperature float64
	maxTokens   int
}

// Generate runs the full pipeline. Provider and configuration failures
// degrade to a mock analysis; only bad input and persistence failures
// surface as errors.
func (p *Pipeline) Generate(ctx context.Context, req AnalyzeRequest) (*Result, error) {
	start := p.now()
	log := p.logger.WithContext(ctx).With().
		Str("operation", "analyze").
		Str("campaign", req.CampaignData.Name).
		Str("order_id", req.CampaignData.OrderID).
		Int("files", len(req.UploadedFiles)).
		Logger()

	prep, err := p.prepare(ctx, req, nil)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	text, model, err := p.callWithFallback(ctx, log, req.AIConfig.Model, prep)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("model unavailable, using mock analysis")
		result.Analysis = MockAnalysis(prep.input.Campaign, prep.input.Objectives, prep.input.Tactics)
		result.Model, result.IsMock = MockModel, true
	case strings.TrimSpace(text) == "":
		log.Warn().Str("model", model).Msg("model returned empty text, using mock analysis")
		result.Analysis = MockAnalysis(prep.input.Campaign, prep.input.Objectives, prep.input.Tactics)
		result.Model, result.IsMock = MockModel, true
	default:
		result.Analysis = Parse(text)
		result.Model = model
	}

	result.AnalysisID = p.newID()
	if err := p.persist(ctx, log, req, prep, text, result); err != nil {
		return nil, err
	}

	log.Info().
		Str("analysis_id", result.AnalysisID).
		Str("model", result.Model).
		Bool("is_mock", result.IsMock).
		Int("tactics", len(prep.input.Tactics)).
		Dur("duration", p.now().Sub(start)).
		Msg("analysis generated")
	return result, nil
}

// callWithFallback calls the requested model and, if that fails and it is
// not the default model, retries once against the default.
func (p *Pipeline) callWithFallback(ctx context.Context, log *observability.Logger, model string, prep *prepared) (string, string, error) {
	if p.llm == nil {
		return "", "", domain.ConfigurationError("no model client configured", nil)
	}
	defaultModel := p.llm.DefaultModel()
	if model == "" {
		model = defaultModel
	}

	text, err := p.llm.Call(ctx, model, prep.text, prep.temperature, prep.maxTokens)
	if err == nil {
		return text, model, nil
	}
	if defaultModel == "" || model == defaultModel {
		return "", model, err
	}

	log.Warn().Err(err).Str("model", model).Str("fallback", defaultModel).Msg("retrying with default model")
	text, retryErr := p.llm.Call(ctx, defaultModel, prep.text, prep.temperature, prep.maxTokens)
	if retryErr != nil {
		return "", defaultModel, errors.Join(err, retryErr)
	}
	return text, defaultModel, nil
}

// prepare groups files, aggregates metrics, resolves configuration and
// builds the prompt. enabled, when non-empty, limits the enabled sections
// to those keys.
func (p *Pipeline) prepare(ctx context.Context, req AnalyzeRequest, enabled []string) (*prepared, error) {
	groups, err := p.group(ctx, req)
	if err != nil {
		return nil, err
	}
	data := make([]metrics.TacticData, 0, len(groups))
	for _, g := range groups {
		data = append(data, metrics.Aggregate(g.id, g.name, g.tables))
	}

	var cfg *resolver.EffectiveConfig
	if p.resolver != nil {
		cfg, err = p.resolver.Resolve(ctx, req.AIConfig.ProductID, req.AIConfig.SubproductID)
		if err != nil {
			return nil, err
		}
		restrictSections(cfg, enabled)
	}

	prep := &prepared{
		temperature: p.defaults.Temperature,
		maxTokens:   p.defaults.MaxTokens,
	}
	tone := req.AIConfig.Tone
	if cfg != nil {
		if tone == "" {
			tone, _ = cfg.AISettings.String(settings.CategoryGeneration, settings.KeyDefaultTone)
		}
		if v, ok := cfg.AISettings.Float(settings.CategoryGeneration, settings.KeyDefaultTemp); ok {
			prep.temperature = v
		}
		if v, ok := cfg.AISettings.Float(settings.CategoryGeneration, settings.KeyDefaultMaxToken); ok {
			prep.maxTokens = int(v)
		}
	}
	if tone == "" {
		tone = p.defaults.Tone
	}
	if req.AIConfig.Temperature != nil {
		prep.temperature = *req.AIConfig.Temperature
	}
	if req.AIConfig.MaxTokens > 0 {
		prep.maxTokens = req.AIConfig.MaxTokens
	}

	prep.input = prompt.Input{
		Campaign:           req.CampaignData.promptCampaign(),
		Objectives:         req.CampaignData.Objectives.String(),
		CompanyInfo:        req.CompanyInfo.String(),
		Tactics:            data,
		Config:             cfg,
		Tone:               tone,
		CustomInstructions: req.AIConfig.CustomInstructions,
	}
	prep.text = prompt.Build(prep.input)
	return prep, nil
}

func restrictSections(cfg *resolver.EffectiveConfig, enabled []string) {
	if cfg == nil || len(enabled) == 0 {
		return
	}
	keep := make(map[string]bool, len(enabled))
	for _, k := range enabled {
		keep[k] = true
	}
	for i := range cfg.Sections {
		if !keep[cfg.Sections[i].SectionKey] {
			cfg.Sections[i].IsEnabled = false
		}
	}
}

type tacticGroup struct {
	id     string
	name   string
	tables []*metrics.Table
}

// group assigns every upload to a tactic. Declared tactics come first in
// request order; tactics discovered from files follow in upload order.
func (p *Pipeline) group(ctx context.Context, req AnalyzeRequest) ([]*tacticGroup, error) {
	var groups []*tacticGroup
	byID := map[string]*tacticGroup{}
	get := func(id, name string) *tacticGroup {
		key := strings.ToLower(id)
		if g, ok := byID[key]; ok {
			if g.name == "" {
				g.name = name
			}
			return g
		}
		g := &tacticGroup{id: id, name: name}
		byID[key] = g
		groups = append(groups, g)
		return g
	}

	for _, t := range req.Tactics {
		if strings.TrimSpace(t.ID) == "" && strings.TrimSpace(t.Name) == "" {
			continue
		}
		id := t.ID
		if id == "" {
			id = t.Name
		}
		get(id, t.Name)
	}

	var tables []matcher.ProductTables
	tablesLoaded := false
	for i, f := range req.UploadedFiles {
		table, err := f.table()
		if err != nil {
			return nil, domain.ValidationError(fmt.Sprintf("uploadedFiles[%d] %s", i, f.Filename), err)
		}

		id, name := f.TacticID, ""
		if id == "" {
			if !tablesLoaded && p.tables != nil {
				tables, err = p.tables(ctx)
				if err != nil {
					return nil, err
				}
				tablesLoaded = true
			}
			id, name = assign(f.Filename, table.Headers, tables)
		}
		g := get(id, name)
		g.tables = append(g.tables, table)
	}
	return groups, nil
}

// assign picks a tactic for a file by filename first, then by headers.
func assign(filename string, headers []string, tables []matcher.ProductTables) (string, string) {
	if best, ok := matcher.Best(matcher.MatchFilename(filename, tables)); ok {
		return best.Table.TableSlug, best.Table.Name
	}
	if hm := matcher.MatchHeaders(headers, tables); len(hm) > 0 && hm[0].Similarity >= headerMatchThreshold {
		return hm[0].Table.TableSlug, hm[0].Table.Name
	}
	return "unassigned", "Unassigned Files"
}

func (f UploadedFile) table() (*metrics.Table, error) {
	if f.Content != "" {
		return metrics.ParseCSVString(f.Filename, f.Content)
	}
	rows := make([]metrics.Row, 0, len(f.Rows))
	for _, r := range f.Rows {
		rows = append(rows, metrics.Row(r))
	}
	return &metrics.Table{Filename: f.Filename, Headers: f.Headers, Rows: rows}, nil
}

func (p *Pipeline) persist(ctx context.Context, log *observability.Logger, req AnalyzeRequest, prep *prepared, responseText string, result *Result) error {
	if p.store == nil {
		return nil
	}

	rec := &storage.Analysis{
		ID:           result.AnalysisID,
		CampaignName: req.CampaignData.Name,
		Model:        result.Model,
		IsMock:       result.IsMock,
		Prompt:       prep.text,
		ResponseText: responseText,
		Result:       storage.MustJSONDoc(result.Analysis),
	}
	if req.CampaignData.OrderID != "" {
		c, err := p.store.Campaigns.GetByOrderID(ctx, req.CampaignData.OrderID)
		switch {
		case err == nil:
			rec.CampaignID = &c.ID
		case !errors.Is(err, storage.ErrNotFound):
			log.Warn().Err(err).Msg("campaign lookup failed")
		}
	}

	if err := p.store.Analyses.Create(ctx, rec); err != nil {
		log.Error().Err(err).Str("analysis_id", rec.ID).Msg("failed to store analysis")
		return domain.PersistenceError("failed to store analysis", err)
	}
	return nil
}

// Get loads a stored analysis.
func (p *Pipeline) Get(ctx context.Context, id string) (*storage.Analysis, Analysis, error) {
	if p.store == nil {
		return nil, Analysis{}, domain.NotFoundError("analysis storage is not configured", nil)
	}
	rec, err := p.store.Analyses.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, Analysis{}, domain.NotFoundError("analysis not found", nil)
	}
	if err != nil {
		return nil, Analysis{}, domain.PersistenceError("failed to load analysis", err)
	}
	var a Analysis
	if err := rec.Result.Decode(&a); err != nil {
		return nil, Analysis{}, domain.PersistenceError("stored analysis is corrupt", err)
	}
	return rec, a, nil
}
