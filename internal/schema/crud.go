package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
)

// ListProducts returns every product ordered by name.
func (s *Service) ListProducts(ctx context.Context) ([]*storage.Product, error) {
	products, err := s.store.Products.List(ctx)
	if err != nil {
		return nil, translate(err, "products")
	}
	if products == nil {
		products = []*storage.Product{}
	}
	return products, nil
}

// GetProduct returns one product.
func (s *Service) GetProduct(ctx context.Context, id int64) (*storage.Product, error) {
	p, err := s.store.Products.Get(ctx, id)
	return p, translate(err, "product")
}

// CreateProduct validates and inserts a product. An empty slug is derived
// from the name.
func (s *Service) CreateProduct(ctx context.Context, p *storage.Product) error {
	if p.Slug == "" {
		p.Slug = storage.Slugify(p.Name)
	}
	p.Platforms = p.Platforms.Normalized()
	if err := storage.Validate(p); err != nil {
		return invalid(err, "product")
	}
	if _, err := s.store.Products.GetByName(ctx, p.Name); err == nil {
		return domain.ValidationError(fmt.Sprintf("product name %q already exists", p.Name), nil)
	}
	return translate(s.store.Products.Create(ctx, p), "product")
}

// UpdateProduct validates and saves p.
func (s *Service) UpdateProduct(ctx context.Context, p *storage.Product) error {
	if p.Slug == "" {
		p.Slug = storage.Slugify(p.Name)
	}
	p.Platforms = p.Platforms.Normalized()
	if err := storage.Validate(p); err != nil {
		return invalid(err, "product")
	}
	if existing, err := s.store.Products.GetByName(ctx, p.Name); err == nil && existing.ID != p.ID {
		return domain.ValidationError(fmt.Sprintf("product name %q already exists", p.Name), nil)
	}
	return translate(s.store.Products.Update(ctx, p), "product")
}

// DeleteProduct deletes a product and everything it owns.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return translate(s.store.Products.Delete(ctx, id), "product")
}

// ListSubproducts lists a product's subproducts.
func (s *Service) ListSubproducts(ctx context.Context, productID int64) ([]*storage.Subproduct, error) {
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	subs, err := s.store.Subproducts.ListByProduct(ctx, productID)
	if err != nil {
		return nil, translate(err, "subproducts")
	}
	if subs == nil {
		subs = []*storage.Subproduct{}
	}
	return subs, nil
}

// GetSubproduct returns one subproduct.
func (s *Service) GetSubproduct(ctx context.Context, id int64) (*storage.Subproduct, error) {
	sp, err := s.store.Subproducts.Get(ctx, id)
	return sp, translate(err, "subproduct")
}

// CreateSubproduct validates and inserts a subproduct under its product.
func (s *Service) CreateSubproduct(ctx context.Context, sp *storage.Subproduct) error {
	if sp.Slug == "" {
		sp.Slug = storage.Slugify(sp.Name)
	}
	sp.Platforms = sp.Platforms.Normalized()
	if err := storage.Validate(sp); err != nil {
		return invalid(err, "subproduct")
	}
	if _, err := s.GetProduct(ctx, sp.ProductID); err != nil {
		return err
	}
	return translate(s.store.Subproducts.Create(ctx, sp), fmt.Sprintf("subproduct %q", sp.Slug))
}

// UpdateSubproduct validates and saves sp.
func (s *Service) UpdateSubproduct(ctx context.Context, sp *storage.Subproduct) error {
	if sp.Slug == "" {
		sp.Slug = storage.Slugify(sp.Name)
	}
	sp.Platforms = sp.Platforms.Normalized()
	if err := storage.Validate(sp); err != nil {
		return invalid(err, "subproduct")
	}
	return translate(s.store.Subproducts.Update(ctx, sp), fmt.Sprintf("subproduct %q", sp.Slug))
}

// DeleteSubproduct deletes a subproduct and its tactic types.
func (s *Service) DeleteSubproduct(ctx context.Context, id int64) error {
	return translate(s.store.Subproducts.Delete(ctx, id), "subproduct")
}

// ListTacticTypes lists a subproduct's tactic types.
func (s *Service) ListTacticTypes(ctx context.Context, subproductID int64) ([]*storage.TacticType, error) {
	if _, err := s.GetSubproduct(ctx, subproductID); err != nil {
		return nil, err
	}
	tactics, err := s.store.TacticTypes.ListBySubproduct(ctx, subproductID)
	if err != nil {
		return nil, translate(err, "tactic types")
	}
	if tactics == nil {
		tactics = []*storage.TacticType{}
	}
	return tactics, nil
}

// GetTacticType returns one tactic type.
func (s *Service) GetTacticType(ctx context.Context, id int64) (*storage.TacticType, error) {
	t, err := s.store.TacticTypes.Get(ctx, id)
	return t, translate(err, "tactic type")
}

// CreateTacticType validates and inserts a tactic type.
func (s *Service) CreateTacticType(ctx context.Context, t *storage.TacticType) error {
	normalizeTactic(t)
	if err := storage.Validate(t); err != nil {
		return invalid(err, "tactic type")
	}
	if _, err := s.GetSubproduct(ctx, t.SubproductID); err != nil {
		return err
	}
	return translate(s.store.TacticTypes.Create(ctx, t), fmt.Sprintf("tactic type %q", t.Slug))
}

// UpdateTacticType validates and saves t.
func (s *Service) UpdateTacticType(ctx context.Context, t *storage.TacticType) error {
	normalizeTactic(t)
	if err := storage.Validate(t); err != nil {
		return invalid(err, "tactic type")
	}
	return translate(s.store.TacticTypes.Update(ctx, t), fmt.Sprintf("tactic type %q", t.Slug))
}

// DeleteTacticType deletes a tactic type.
func (s *Service) DeleteTacticType(ctx context.Context, id int64) error {
	return translate(s.store.TacticTypes.Delete(ctx, id), "tactic type")
}

func normalizeTactic(t *storage.TacticType) {
	if t.Slug == "" {
		t.Slug = storage.Slugify(t.Name)
	}
	t.ExpectedFilenames = t.ExpectedFilenames.Normalized()
	t.Aliases = t.Aliases.Normalized()
	t.Headers = t.Headers.Normalized()
}

// ListExtractors lists a product's extractors.
func (s *Service) ListExtractors(ctx context.Context, productID int64) ([]*storage.LuminaExtractor, error) {
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	out, err := s.store.Extractors.ListByProduct(ctx, productID)
	if err != nil {
		return nil, translate(err, "extractors")
	}
	if out == nil {
		out = []*storage.LuminaExtractor{}
	}
	return out, nil
}

// GetExtractor returns one extractor.
func (s *Service) GetExtractor(ctx context.Context, id int64) (*storage.LuminaExtractor, error) {
	e, err := s.store.Extractors.Get(ctx, id)
	return e, translate(err, "extractor")
}

// CreateExtractor validates and inserts an extractor.
func (s *Service) CreateExtractor(ctx context.Context, e *storage.LuminaExtractor) error {
	if err := storage.Validate(e); err != nil {
		return invalid(err, "extractor")
	}
	if _, err := s.GetProduct(ctx, e.ProductID); err != nil {
		return err
	}
	return translate(s.store.Extractors.Create(ctx, e), "extractor")
}

// UpdateExtractor validates and saves e.
func (s *Service) UpdateExtractor(ctx context.Context, e *storage.LuminaExtractor) error {
	if err := storage.Validate(e); err != nil {
		return invalid(err, "extractor")
	}
	return translate(s.store.Extractors.Update(ctx, e), "extractor")
}

// DeleteExtractor deletes an extractor.
func (s *Service) DeleteExtractor(ctx context.Context, id int64) error {
	return translate(s.store.Extractors.Delete(ctx, id), "extractor")
}

// ListBenchmarks lists a product's benchmarks.
func (s *Service) ListBenchmarks(ctx context.Context, productID int64) ([]*storage.Benchmark, error) {
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	out, err := s.store.Benchmarks.ListByProduct(ctx, productID)
	if err != nil {
		return nil, translate(err, "benchmarks")
	}
	if out == nil {
		out = []*storage.Benchmark{}
	}
	return out, nil
}

// GetBenchmark returns one benchmark.
func (s *Service) GetBenchmark(ctx context.Context, id int64) (*storage.Benchmark, error) {
	b, err := s.store.Benchmarks.Get(ctx, id)
	return b, translate(err, "benchmark")
}

// CreateBenchmark validates and inserts a benchmark. metric_name must be
// unique per product.
func (s *Service) CreateBenchmark(ctx context.Context, b *storage.Benchmark) error {
	if err := storage.Validate(b); err != nil {
		return invalid(err, "benchmark")
	}
	if _, err := s.GetProduct(ctx, b.ProductID); err != nil {
		return err
	}
	if _, err := s.store.Benchmarks.GetByMetric(ctx, b.ProductID, b.MetricName); err == nil {
		return domain.ValidationError(fmt.Sprintf("metric_name %q already has a benchmark for this product", b.MetricName), nil)
	}
	return translate(s.store.Benchmarks.Create(ctx, b), fmt.Sprintf("benchmark %q", b.MetricName))
}

// UpdateBenchmark validates and saves b.
func (s *Service) UpdateBenchmark(ctx context.Context, b *storage.Benchmark) error {
	if err := storage.Validate(b); err != nil {
		return invalid(err, "benchmark")
	}
	existing, err := s.store.Benchmarks.GetByMetric(ctx, b.ProductID, b.MetricName)
	if err == nil && existing.ID != b.ID {
		return domain.ValidationError(fmt.Sprintf("metric_name %q already has a benchmark for this product", b.MetricName), nil)
	}
	return translate(s.store.Benchmarks.Update(ctx, b), fmt.Sprintf("benchmark %q", b.MetricName))
}

// DeleteBenchmark deletes a benchmark.
func (s *Service) DeleteBenchmark(ctx context.Context, id int64) error {
	return translate(s.store.Benchmarks.Delete(ctx, id), "benchmark")
}

// ListOverrides lists the section overrides of one product or subproduct.
func (s *Service) ListOverrides(ctx context.Context, scope storage.OverrideScope, ownerID int64) ([]*storage.SectionOverride, error) {
	if err := s.ownerExists(ctx, s.store.Repositories, scope, ownerID); err != nil {
		return nil, err
	}
	out, err := s.store.Overrides(scope).ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, translate(err, "section overrides")
	}
	if out == nil {
		out = []*storage.SectionOverride{}
	}
	return out, nil
}

// UpsertOverride writes the override for (owner, section). The existence
// check and the write run in one transaction so concurrent saves cannot
// create a second row.
func (s *Service) UpsertOverride(ctx context.Context, scope storage.OverrideScope, o *storage.SectionOverride) error {
	if err := storage.Validate(o); err != nil {
		return invalid(err, "section override")
	}
	if o.CustomDataSources != nil {
		if err := o.CustomDataSources.Validate(); err != nil {
			return domain.ValidationError("invalid custom_data_sources", err)
		}
	}

	err := s.store.WithTx(ctx, func(repos *storage.Repositories) error {
		if err := s.ownerExists(ctx, repos, scope, o.OwnerID); err != nil {
			return err
		}
		if _, err := repos.Sections.Get(ctx, o.SectionID); err != nil {
			return translate(err, "report section")
		}
		return repos.Overrides(scope).Upsert(ctx, o)
	})
	return translate(err, string(scope)+" section override")
}

// DeleteOverride removes the override for (owner, section).
func (s *Service) DeleteOverride(ctx context.Context, scope storage.OverrideScope, ownerID, sectionID int64) error {
	return translate(s.store.Overrides(scope).Delete(ctx, ownerID, sectionID), string(scope)+" section override")
}

func (s *Service) ownerExists(ctx context.Context, repos *storage.Repositories, scope storage.OverrideScope, ownerID int64) error {
	var err error
	if scope == storage.ScopeSubproduct {
		_, err = repos.Subproducts.Get(ctx, ownerID)
	} else {
		_, err = repos.Products.Get(ctx, ownerID)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return domain.NotFoundError(fmt.Sprintf("%s %d not found", scope, ownerID), nil)
	}
	return translate(err, string(scope))
}
