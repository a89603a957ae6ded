package schema

import (
	"context"

	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
)

// ExportSnapshot serializes the whole configuration tree.
func (s *Service) ExportSnapshot(ctx context.Context) (*Snapshot, error) {
	snap, err := exportTree(ctx, s.store.Repositories)
	if err != nil {
		return nil, translate(err, "snapshot")
	}
	snap.GeneratedAt = s.now()
	return snap, nil
}

// exportTree reads the tree through repos so it can run inside a transaction.
// Ordering follows the repositories (names, metric names, section IDs), so
// two exports of the same data are identical apart from generated_at.
func exportTree(ctx context.Context, repos *storage.Repositories) (*Snapshot, error) {
	sectionKeys, err := sectionKeysByID(ctx, repos)
	if err != nil {
		return nil, err
	}

	products, err := repos.Products.List(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Version: SnapshotVersion, Products: make([]ProductDoc, 0, len(products))}
	for _, p := range products {
		doc := ProductDoc{
			Name:         p.Name,
			Slug:         p.Slug,
			Platforms:    p.Platforms.Normalized(),
			Notes:        p.Notes,
			AIGuidelines: p.AIGuidelines,
			AIPrompt:     p.AIPrompt,
			Subproducts:  []SubproductDoc{},
		}

		subs, err := repos.Subproducts.ListByProduct(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		for _, sp := range subs {
			subDoc, err := exportSubproduct(ctx, repos, sp, sectionKeys)
			if err != nil {
				return nil, err
			}
			doc.Subproducts = append(doc.Subproducts, subDoc)
		}

		extractors, err := repos.Extractors.ListByProduct(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		for _, e := range extractors {
			doc.Extractors = append(doc.Extractors, ExtractorDoc{
				Name:           e.Name,
				Path:           e.Path,
				WhenConditions: e.WhenConditions,
				AggregateType:  e.AggregateType,
			})
		}

		benchmarks, err := repos.Benchmarks.ListByProduct(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		for _, b := range benchmarks {
			doc.Benchmarks = append(doc.Benchmarks, BenchmarkDoc{
				MetricName:       b.MetricName,
				GoalValue:        b.GoalValue,
				WarningThreshold: b.WarningThreshold,
				Unit:             b.Unit,
				Direction:        b.Direction,
			})
		}

		doc.SectionOverrides, err = exportOverrides(ctx, repos.ProductOverrides, p.ID, sectionKeys)
		if err != nil {
			return nil, err
		}

		snap.Products = append(snap.Products, doc)
	}
	return snap, nil
}

func exportSubproduct(ctx context.Context, repos *storage.Repositories, sp *storage.Subproduct, sectionKeys map[int64]string) (SubproductDoc, error) {
	inherit := sp.InheritFromProduct
	doc := SubproductDoc{
		Name:               sp.Name,
		Slug:               sp.Slug,
		Platforms:          sp.Platforms.Normalized(),
		Notes:              sp.Notes,
		AIGuidelines:       sp.AIGuidelines,
		InheritFromProduct: &inherit,
		TacticTypes:        []TacticTypeDoc{},
	}

	tactics, err := repos.TacticTypes.ListBySubproduct(ctx, sp.ID)
	if err != nil {
		return doc, err
	}
	for _, t := range tactics {
		doc.TacticTypes = append(doc.TacticTypes, TacticTypeDoc{
			Name:              t.Name,
			Slug:              t.Slug,
			DataValue:         t.DataValue,
			FilenameStem:      t.FilenameStem,
			ExpectedFilenames: t.ExpectedFilenames.Normalized(),
			Aliases:           t.Aliases.Normalized(),
			Headers:           t.Headers.Normalized(),
		})
	}

	doc.SectionOverrides, err = exportOverrides(ctx, repos.SubproductOverrides, sp.ID, sectionKeys)
	return doc, err
}

func exportOverrides(ctx context.Context, repo *storage.OverrideRepository, ownerID int64, sectionKeys map[int64]string) ([]OverrideDoc, error) {
	rows, err := repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	var out []OverrideDoc
	for _, o := range rows {
		out = append(out, OverrideDoc{
			SectionKey:         sectionKeys[o.SectionID],
			IsEnabled:          o.IsEnabled,
			CustomInstructions: o.CustomInstructions,
			CustomDataSources:  o.CustomDataSources,
			CustomMinLength:    o.CustomMinLength,
			CustomMaxLength:    o.CustomMaxLength,
			DisplayOrder:       o.DisplayOrder,
		})
	}
	return out, nil
}

func sectionKeysByID(ctx context.Context, repos *storage.Repositories) (map[int64]string, error) {
	sections, err := repos.Sections.List(ctx)
	if err != nil {
		return nil, err
	}
	keys := make(map[int64]string, len(sections))
	for _, sec := range sections {
		keys[sec.ID] = sec.SectionKey
	}
	return keys, nil
}
