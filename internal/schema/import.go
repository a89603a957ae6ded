package schema

import (
	"context"
	"fmt"

	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
)

// ImportResult counts what an import wrote.
type ImportResult struct {
	Cleared          int64 `json:"cleared"`
	Products         int   `json:"products"`
	Subproducts      int   `json:"subproducts"`
	TacticTypes      int   `json:"tactic_types"`
	Extractors       int   `json:"extractors"`
	Benchmarks       int   `json:"benchmarks"`
	Overrides        int   `json:"overrides"`
	SkippedOverrides int   `json:"skipped_overrides"`
}

// ImportSnapshot recreates the tree from snap in a single transaction. With
// clearExisting every product is deleted first and children cascade. Any
// failure rolls the whole import back.
func (s *Service) ImportSnapshot(ctx context.Context, snap *Snapshot, clearExisting bool) (*ImportResult, error) {
	if err := snap.check(); err != nil {
		return nil, err
	}

	var result *ImportResult
	err := s.store.WithTx(ctx, func(repos *storage.Repositories) error {
		var err error
		result, err = importTree(ctx, repos, snap, clearExisting)
		return err
	})
	if err != nil {
		s.logger.Warn().Err(err).Bool("clear_existing", clearExisting).Msg("Snapshot import rolled back")
		return nil, translate(err, "snapshot")
	}

	s.logger.Info().
		Int("products", result.Products).
		Int("subproducts", result.Subproducts).
		Int("tactic_types", result.TacticTypes).
		Int64("cleared", result.Cleared).
		Msg("Snapshot imported")
	return result, nil
}

func importTree(ctx context.Context, repos *storage.Repositories, snap *Snapshot, clearExisting bool) (*ImportResult, error) {
	result := &ImportResult{}
	if clearExisting {
		n, err := repos.Products.DeleteAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("clear products: %w", err)
		}
		result.Cleared = n
	}

	sections, err := repos.Sections.List(ctx)
	if err != nil {
		return nil, err
	}
	sectionIDs := make(map[string]int64, len(sections))
	for _, sec := range sections {
		sectionIDs[sec.SectionKey] = sec.ID
	}

	for _, pd := range snap.Products {
		p := &storage.Product{
			Name:         pd.Name,
			Slug:         pd.Slug,
			Platforms:    pd.Platforms.Normalized(),
			Notes:        pd.Notes,
			AIGuidelines: pd.AIGuidelines,
			AIPrompt:     pd.AIPrompt,
		}
		if err := repos.Products.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("product %q: %w", pd.Name, err)
		}
		result.Products++

		for _, sd := range pd.Subproducts {
			if err := importSubproduct(ctx, repos, p.ID, sd, sectionIDs, result); err != nil {
				return nil, fmt.Errorf("product %q: %w", pd.Name, err)
			}
		}

		for _, ed := range pd.Extractors {
			e := &storage.LuminaExtractor{
				ProductID:      p.ID,
				Name:           ed.Name,
				Path:           ed.Path,
				WhenConditions: ed.WhenConditions,
				AggregateType:  ed.AggregateType,
			}
			if err := repos.Extractors.Create(ctx, e); err != nil {
				return nil, fmt.Errorf("extractor %q: %w", ed.Name, err)
			}
			result.Extractors++
		}

		for _, bd := range pd.Benchmarks {
			b := &storage.Benchmark{
				ProductID:        p.ID,
				MetricName:       bd.MetricName,
				GoalValue:        bd.GoalValue,
				WarningThreshold: bd.WarningThreshold,
				Unit:             bd.Unit,
				Direction:        bd.Direction,
			}
			if err := repos.Benchmarks.Create(ctx, b); err != nil {
				return nil, fmt.Errorf("benchmark %q: %w", bd.MetricName, err)
			}
			result.Benchmarks++
		}

		if err := importOverrides(ctx, repos.ProductOverrides, p.ID, pd.SectionOverrides, sectionIDs, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func importSubproduct(ctx context.Context, repos *storage.Repositories, productID int64, sd SubproductDoc, sectionIDs map[string]int64, result *ImportResult) error {
	inherit := true
	if sd.InheritFromProduct != nil {
		inherit = *sd.InheritFromProduct
	}
	sp := &storage.Subproduct{
		ProductID:          productID,
		Name:               sd.Name,
		Slug:               sd.Slug,
		Platforms:          sd.Platforms.Normalized(),
		Notes:              sd.Notes,
		AIGuidelines:       sd.AIGuidelines,
		InheritFromProduct: inherit,
	}
	if err := repos.Subproducts.Create(ctx, sp); err != nil {
		return fmt.Errorf("subproduct %q: %w", sd.Slug, err)
	}
	result.Subproducts++

	for _, td := range sd.TacticTypes {
		t := &storage.TacticType{
			SubproductID:      sp.ID,
			Name:              td.Name,
			Slug:              td.Slug,
			DataValue:         td.DataValue,
			FilenameStem:      td.FilenameStem,
			ExpectedFilenames: td.ExpectedFilenames.Normalized(),
			Aliases:           td.Aliases.Normalized(),
			Headers:           td.Headers.Normalized(),
		}
		if err := repos.TacticTypes.Create(ctx, t); err != nil {
			return fmt.Errorf("tactic type %q: %w", td.Slug, err)
		}
		result.TacticTypes++
	}

	return importOverrides(ctx, repos.SubproductOverrides, sp.ID, sd.SectionOverrides, sectionIDs, result)
}

// importOverrides writes overrides whose section_key exists; the rest are
// counted as skipped.
func importOverrides(ctx context.Context, repo *storage.OverrideRepository, ownerID int64, docs []OverrideDoc, sectionIDs map[string]int64, result *ImportResult) error {
	for _, od := range docs {
		sectionID, ok := sectionIDs[od.SectionKey]
		if !ok {
			result.SkippedOverrides++
			continue
		}
		o := &storage.SectionOverride{
			OwnerID:            ownerID,
			SectionID:          sectionID,
			IsEnabled:          od.IsEnabled,
			CustomInstructions: od.CustomInstructions,
			CustomDataSources:  od.CustomDataSources,
			CustomMinLength:    od.CustomMinLength,
			CustomMaxLength:    od.CustomMaxLength,
			DisplayOrder:       od.DisplayOrder,
		}
		if err := repo.Upsert(ctx, o); err != nil {
			return fmt.Errorf("%s override %q: %w", repo.Scope(), od.SectionKey, err)
		}
		result.Overrides++
	}
	return nil
}
