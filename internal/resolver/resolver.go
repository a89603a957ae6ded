// Package resolver merges global, product and subproduct configuration into
// the effective configuration used for one report.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/sections"
	"github.com/edwinlov3tt/report-ai-sub000/internal/settings"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
)

// Source identifies the most specific level that changed a section.
type Source string

const (
	SourceGlobal     Source = "global"
	SourceProduct    Source = "product"
	SourceSubproduct Source = "subproduct"
)

// EffectiveSection is a report section with overrides applied field by field.
type EffectiveSection struct {
	SectionID    int64           `json:"section_id"`
	SectionKey   string          `json:"section_key"`
	SectionName  string          `json:"section_name"`
	DisplayOrder int             `json:"display_order"`
	IsEnabled    bool            `json:"is_enabled"`
	IsRequired   bool            `json:"is_required"`
	Instructions string          `json:"instructions"`
	DataSources  storage.JSONDoc `json:"data_sources"`
	OutputFormat string          `json:"output_format"`
	MinLength    *int            `json:"min_length"`
	MaxLength    *int            `json:"max_length"`
	Source       Source          `json:"source"`
}

// ProductConfig is the product part of an effective configuration.
type ProductConfig struct {
	ID           int64              `json:"id"`
	Name         string             `json:"name"`
	Slug         string             `json:"slug"`
	Platforms    storage.StringList `json:"platforms"`
	Notes        string             `json:"notes"`
	AIGuidelines string             `json:"ai_guidelines"`
	AIPrompt     string             `json:"ai_prompt"`
}

// SubproductConfig is the subproduct part of an effective configuration.
// AIGuidelines and Platforms already have the inheritance rule applied.
type SubproductConfig struct {
	ID                 int64              `json:"id"`
	ProductID          int64              `json:"product_id"`
	Name               string             `json:"name"`
	Slug               string             `json:"slug"`
	Platforms          storage.StringList `json:"platforms"`
	Notes              string             `json:"notes"`
	AIGuidelines       string             `json:"ai_guidelines"`
	OwnAIGuidelines    string             `json:"own_ai_guidelines"`
	InheritFromProduct bool               `json:"inherit_from_product"`
}

// EffectiveConfig is the merged configuration for one product/subproduct pair.
type EffectiveConfig struct {
	AISettings       settings.Grouped   `json:"aiSettings"`
	Sections         []EffectiveSection `json:"sections"`
	ProductConfig    *ProductConfig     `json:"productConfig,omitempty"`
	SubproductConfig *SubproductConfig  `json:"subproductConfig,omitempty"`
}

// EffectiveGuidelines returns the most specific AI guidelines available.
func (c *EffectiveConfig) EffectiveGuidelines() string {
	if c.SubproductConfig != nil && c.SubproductConfig.AIGuidelines != "" {
		return c.SubproductConfig.AIGuidelines
	}
	if c.ProductConfig != nil {
		return c.ProductConfig.AIGuidelines
	}
	return ""
}

// EnabledSections returns the enabled sections in display order.
func (c *EffectiveConfig) EnabledSections() []EffectiveSection {
	out := make([]EffectiveSection, 0, len(c.Sections))
	for _, s := range c.Sections {
		if s.IsEnabled {
			out = append(out, s)
		}
	}
	return out
}

// SettingsSource supplies grouped AI settings.
type SettingsSource interface {
	Grouped(ctx context.Context) (settings.Grouped, error)
}

// Resolver computes effective configurations. It only reads.
type Resolver struct {
	sections sections.Store
	settings SettingsSource
	store    *storage.Store
}

// New creates a resolver. settingsSrc and store may be nil: without a store
// only global sections resolve.
func New(sectionStore sections.Store, settingsSrc SettingsSource, store *storage.Store) *Resolver {
	return &Resolver{sections: sectionStore, settings: settingsSrc, store: store}
}

// Resolve merges configuration for the given ids. Either may be nil. When
// only subproductID is set its product is used.
func (r *Resolver) Resolve(ctx context.Context, productID, subproductID *int64) (*EffectiveConfig, error) {
	cfg := &EffectiveConfig{AISettings: settings.Grouped{}}

	if r.settings != nil {
		grouped, err := r.settings.Grouped(ctx)
		if err != nil {
			return nil, err
		}
		cfg.AISettings = grouped
	}

	globals, err := r.sections.List(ctx)
	if err != nil {
		return nil, err
	}
	merged := make([]EffectiveSection, 0, len(globals))
	for _, s := range globals {
		merged = append(merged, fromGlobal(s))
	}

	if productID == nil && subproductID == nil {
		cfg.Sections = sortSections(merged)
		return cfg, nil
	}
	if r.store == nil {
		return nil, domain.ConfigurationError("product configuration requires a database", nil)
	}

	var sub *storage.Subproduct
	if subproductID != nil {
		sub, err = r.store.Subproducts.Get(ctx, *subproductID)
		if err != nil {
			return nil, lookupError(err, "subproduct", *subproductID)
		}
		if productID != nil && *productID != sub.ProductID {
			return nil, domain.ValidationError(
				fmt.Sprintf("subproduct %d does not belong to product %d", sub.ID, *productID), nil)
		}
		productID = &sub.ProductID
	}

	product, err := r.store.Products.Get(ctx, *productID)
	if err != nil {
		return nil, lookupError(err, "product", *productID)
	}
	cfg.ProductConfig = productConfig(product)

	if err := r.overlay(ctx, merged, storage.ScopeProduct, product.ID); err != nil {
		return nil, err
	}
	if sub != nil {
		cfg.SubproductConfig = subproductConfig(sub, product)
		if err := r.overlay(ctx, merged, storage.ScopeSubproduct, sub.ID); err != nil {
			return nil, err
		}
	}

	cfg.Sections = sortSections(merged)
	return cfg, nil
}

func (r *Resolver) overlay(ctx context.Context, merged []EffectiveSection, scope storage.OverrideScope, ownerID int64) error {
	rows, err := r.store.Overrides(scope).ListByOwner(ctx, ownerID)
	if err != nil {
		return domain.PersistenceError("failed to load section overrides", err)
	}
	byID := make(map[int64]*storage.SectionOverride, len(rows))
	for _, o := range rows {
		byID[o.SectionID] = o
	}

	source := SourceProduct
	if scope == storage.ScopeSubproduct {
		source = SourceSubproduct
	}
	for i := range merged {
		if o, ok := byID[merged[i].SectionID]; ok {
			apply(&merged[i], o, source)
		}
	}
	return nil
}

func fromGlobal(s *storage.ReportSection) EffectiveSection {
	return EffectiveSection{
		SectionID:    s.ID,
		SectionKey:   s.SectionKey,
		SectionName:  s.SectionName,
		DisplayOrder: s.DisplayOrder,
		IsEnabled:    s.IsEnabled,
		IsRequired:   s.IsRequired,
		Instructions: s.DefaultInstructions,
		DataSources:  s.DataSources,
		OutputFormat: s.OutputFormat,
		MinLength:    s.MinLength,
		MaxLength:    s.MaxLength,
		Source:       SourceGlobal,
	}
}

// apply overlays the non-nil override fields onto s.
func apply(s *EffectiveSection, o *storage.SectionOverride, source Source) {
	if o.IsEnabled != nil {
		s.IsEnabled = *o.IsEnabled
	}
	if o.CustomInstructions != nil {
		s.Instructions = *o.CustomInstructions
	}
	if o.CustomDataSources != nil {
		s.DataSources = *o.CustomDataSources
	}
	if o.CustomMinLength != nil {
		s.MinLength = o.CustomMinLength
	}
	if o.CustomMaxLength != nil {
		s.MaxLength = o.CustomMaxLength
	}
	if o.DisplayOrder != nil {
		s.DisplayOrder = *o.DisplayOrder
	}
	s.Source = source
}

func sortSections(s []EffectiveSection) []EffectiveSection {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].DisplayOrder != s[j].DisplayOrder {
			return s[i].DisplayOrder < s[j].DisplayOrder
		}
		return s[i].SectionID < s[j].SectionID
	})
	return s
}

func productConfig(p *storage.Product) *ProductConfig {
	return &ProductConfig{
		ID:           p.ID,
		Name:         p.Name,
		Slug:         p.Slug,
		Platforms:    p.Platforms.Normalized(),
		Notes:        p.Notes,
		AIGuidelines: p.AIGuidelines,
		AIPrompt:     p.AIPrompt,
	}
}

// subproductConfig applies the inheritance rule: with inherit_from_product
// the product's guidelines come first, blank-line separated, and empty
// platforms fall back to the product's.
func subproductConfig(sp *storage.Subproduct, p *storage.Product) *SubproductConfig {
	cfg := &SubproductConfig{
		ID:                 sp.ID,
		ProductID:          sp.ProductID,
		Name:               sp.Name,
		Slug:               sp.Slug,
		Platforms:          sp.Platforms.Normalized(),
		Notes:              sp.Notes,
		AIGuidelines:       sp.AIGuidelines,
		OwnAIGuidelines:    sp.AIGuidelines,
		InheritFromProduct: sp.InheritFromProduct,
	}
	if !sp.InheritFromProduct {
		return cfg
	}

	cfg.AIGuidelines = MergeGuidelines(p.AIGuidelines, sp.AIGuidelines)
	if len(cfg.Platforms) == 0 {
		cfg.Platforms = p.Platforms.Normalized()
	}
	return cfg
}

// MergeGuidelines concatenates product and subproduct guidelines with a
// blank line, dropping whichever is empty.
func MergeGuidelines(product, subproduct string) string {
	switch {
	case subproduct == "":
		return product
	case product == "":
		return subproduct
	default:
		return product + "\n\n" + subproduct
	}
}

func lookupError(err error, what string, id int64) error {
	if errors.Is(err, storage.ErrNotFound) {
		return domain.NotFoundError(fmt.Sprintf("%s %d not found", what, id), nil)
	}
	return domain.PersistenceError(fmt.Sprintf("failed to load %s", what), err)
}
