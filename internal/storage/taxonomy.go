package storage

import (
	"context"
)

const productColumns = `id, name, slug, platforms, notes, ai_guidelines, ai_prompt, created_at, updated_at`

// ProductRepository handles product CRUD operations.
type ProductRepository struct {
	db DB
}

// Create creates a new product and sets its ID.
func (r *ProductRepository) Create(ctx context.Context, p *Product) error {
	p.CreatedAt, p.UpdatedAt = now(), now()
	if p.Platforms == nil {
		p.Platforms = StringList{}
	}
	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO products (name, slug, platforms, notes, ai_guidelines, ai_prompt, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Slug, p.Platforms, p.Notes, p.AIGuidelines, p.AIPrompt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// Get retrieves a product by ID.
func (r *ProductRepository) Get(ctx context.Context, id int64) (*Product, error) {
	p := &Product{}
	if err := getOne(ctx, r.db, p, `SELECT `+productColumns+` FROM products WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByName retrieves a product by its unique name.
func (r *ProductRepository) GetByName(ctx context.Context, name string) (*Product, error) {
	p := &Product{}
	if err := getOne(ctx, r.db, p, `SELECT `+productColumns+` FROM products WHERE name = ?`, name); err != nil {
		return nil, err
	}
	return p, nil
}

// List lists all products ordered by name.
func (r *ProductRepository) List(ctx context.Context) ([]*Product, error) {
	var out []*Product
	if err := selectAll(ctx, r.db, &out, `SELECT `+productColumns+` FROM products ORDER BY name, id`); err != nil {
		return nil, err
	}
	return out, nil
}

// Update updates a product in place.
func (r *ProductRepository) Update(ctx context.Context, p *Product) error {
	p.UpdatedAt = now()
	return execOne(ctx, r.db, `
		UPDATE products SET name = ?, slug = ?, platforms = ?, notes = ?, ai_guidelines = ?, ai_prompt = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, p.Slug, p.Platforms, p.Notes, p.AIGuidelines, p.AIPrompt, p.UpdatedAt, p.ID,
	)
}

// Delete deletes a product; children cascade.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, `DELETE FROM products WHERE id = ?`, id)
}

// DeleteAll deletes every product and returns how many were removed.
func (r *ProductRepository) DeleteAll(ctx context.Context) (int64, error) {
	return execCount(ctx, r.db, `DELETE FROM products`)
}

// Count returns the number of products.
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := getOne(ctx, r.db, &n, `SELECT COUNT(*) FROM products`)
	return n, err
}

const subproductColumns = `id, product_id, name, slug, platforms, notes, ai_guidelines, inherit_from_product, created_at, updated_at`

// SubproductRepository handles subproduct CRUD operations.
type SubproductRepository struct {
	db DB
}

// Create creates a new subproduct and sets its ID.
func (r *SubproductRepository) Create(ctx context.Context, s *Subproduct) error {
	s.CreatedAt, s.UpdatedAt = now(), now()
	if s.Platforms == nil {
		s.Platforms = StringList{}
	}
	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO subproducts (product_id, name, slug, platforms, notes, ai_guidelines, inherit_from_product, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ProductID, s.Name, s.Slug, s.Platforms, s.Notes, s.AIGuidelines, s.InheritFromProduct, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

// Get retrieves a subproduct by ID.
func (r *SubproductRepository) Get(ctx context.Context, id int64) (*Subproduct, error) {
	s := &Subproduct{}
	if err := getOne(ctx, r.db, s, `SELECT `+subproductColumns+` FROM subproducts WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return s, nil
}

// ListByProduct lists a product's subproducts ordered by name.
func (r *SubproductRepository) ListByProduct(ctx context.Context, productID int64) ([]*Subproduct, error) {
	var out []*Subproduct
	err := selectAll(ctx, r.db, &out,
		`SELECT `+subproductColumns+` FROM subproducts WHERE product_id = ? ORDER BY name, id`, productID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update updates a subproduct in place. The owning product cannot change.
func (r *SubproductRepository) Update(ctx context.Context, s *Subproduct) error {
	s.UpdatedAt = now()
	return execOne(ctx, r.db, `
		UPDATE subproducts SET name = ?, slug = ?, platforms = ?, notes = ?, ai_guidelines = ?, inherit_from_product = ?, updated_at = ?
		WHERE id = ?`,
		s.Name, s.Slug, s.Platforms, s.Notes, s.AIGuidelines, s.InheritFromProduct, s.UpdatedAt, s.ID,
	)
}

// Delete deletes a subproduct; tactic types cascade.
func (r *SubproductRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, `DELETE FROM subproducts WHERE id = ?`, id)
}

// Count returns the number of subproducts.
func (r *SubproductRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := getOne(ctx, r.db, &n, `SELECT COUNT(*) FROM subproducts`)
	return n, err
}

const tacticColumns = `id, subproduct_id, name, slug, data_value, filename_stem, expected_filenames, aliases, headers, created_at, updated_at`

// TacticTypeRepository handles tactic type CRUD operations.
type TacticTypeRepository struct {
	db DB
}

// Create creates a new tactic type and sets its ID.
func (r *TacticTypeRepository) Create(ctx context.Context, t *TacticType) error {
	t.CreatedAt, t.UpdatedAt = now(), now()
	for _, l := range []*StringList{&t.ExpectedFilenames, &t.Aliases, &t.Headers} {
		if *l == nil {
			*l = StringList{}
		}
	}
	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO tactic_types (subproduct_id, name, slug, data_value, filename_stem, expected_filenames, aliases, headers, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.SubproductID, t.Name, t.Slug, t.DataValue, t.FilenameStem, t.ExpectedFilenames, t.Aliases, t.Headers, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

// Get retrieves a tactic type by ID.
func (r *TacticTypeRepository) Get(ctx context.Context, id int64) (*TacticType, error) {
	t := &TacticType{}
	if err := getOne(ctx, r.db, t, `SELECT `+tacticColumns+` FROM tactic_types WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return t, nil
}

// ListBySubproduct lists a subproduct's tactic types ordered by name.
func (r *TacticTypeRepository) ListBySubproduct(ctx context.Context, subproductID int64) ([]*TacticType, error) {
	var out []*TacticType
	err := selectAll(ctx, r.db, &out,
		`SELECT `+tacticColumns+` FROM tactic_types WHERE subproduct_id = ? ORDER BY name, id`, subproductID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update updates a tactic type in place.
func (r *TacticTypeRepository) Update(ctx context.Context, t *TacticType) error {
	t.UpdatedAt = now()
	return execOne(ctx, r.db, `
		UPDATE tactic_types SET name = ?, slug = ?, data_value = ?, filename_stem = ?, expected_filenames = ?, aliases = ?, headers = ?, updated_at = ?
		WHERE id = ?`,
		t.Name, t.Slug, t.DataValue, t.FilenameStem, t.ExpectedFilenames, t.Aliases, t.Headers, t.UpdatedAt, t.ID,
	)
}

// Delete deletes a tactic type.
func (r *TacticTypeRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, `DELETE FROM tactic_types WHERE id = ?`, id)
}

// Count returns the number of tactic types.
func (r *TacticTypeRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := getOne(ctx, r.db, &n, `SELECT COUNT(*) FROM tactic_types`)
	return n, err
}

const extractorColumns = `id, product_id, name, path, when_conditions, aggregate_type, created_at, updated_at`

// ExtractorRepository handles LuminaExtractor CRUD operations.
type ExtractorRepository struct {
	db DB
}

// Create creates a new extractor and sets its ID.
func (r *ExtractorRepository) Create(ctx context.Context, e *LuminaExtractor) error {
	e.CreatedAt, e.UpdatedAt = now(), now()
	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO lumina_extractors (product_id, name, path, when_conditions, aggregate_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ProductID, e.Name, e.Path, e.WhenConditions, string(e.AggregateType), e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// Get retrieves an extractor by ID.
func (r *ExtractorRepository) Get(ctx context.Context, id int64) (*LuminaExtractor, error) {
	e := &LuminaExtractor{}
	if err := getOne(ctx, r.db, e, `SELECT `+extractorColumns+` FROM lumina_extractors WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return e, nil
}

// ListByProduct lists a product's extractors ordered by name.
func (r *ExtractorRepository) ListByProduct(ctx context.Context, productID int64) ([]*LuminaExtractor, error) {
	var out []*LuminaExtractor
	err := selectAll(ctx, r.db, &out,
		`SELECT `+extractorColumns+` FROM lumina_extractors WHERE product_id = ? ORDER BY name, id`, productID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update updates an extractor in place.
func (r *ExtractorRepository) Update(ctx context.Context, e *LuminaExtractor) error {
	e.UpdatedAt = now()
	return execOne(ctx, r.db, `
		UPDATE lumina_extractors SET name = ?, path = ?, when_conditions = ?, aggregate_type = ?, updated_at = ?
		WHERE id = ?`,
		e.Name, e.Path, e.WhenConditions, string(e.AggregateType), e.UpdatedAt, e.ID,
	)
}

// Delete deletes an extractor.
func (r *ExtractorRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, `DELETE FROM lumina_extractors WHERE id = ?`, id)
}

const benchmarkColumns = `id, product_id, metric_name, goal_value, warning_threshold, unit, direction, created_at, updated_at`

// BenchmarkRepository handles Benchmark CRUD operations.
type BenchmarkRepository struct {
	db DB
}

// Create creates a new benchmark and sets its ID.
func (r *BenchmarkRepository) Create(ctx context.Context, b *Benchmark) error {
	b.CreatedAt, b.UpdatedAt = now(), now()
	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO benchmarks (product_id, metric_name, goal_value, warning_threshold, unit, direction, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ProductID, b.MetricName, b.GoalValue, b.WarningThreshold, string(b.Unit), string(b.Direction), b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

// Get retrieves a benchmark by ID.
func (r *BenchmarkRepository) Get(ctx context.Context, id int64) (*Benchmark, error) {
	b := &Benchmark{}
	if err := getOne(ctx, r.db, b, `SELECT `+benchmarkColumns+` FROM benchmarks WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return b, nil
}

// GetByMetric retrieves a product's benchmark for metricName.
func (r *BenchmarkRepository) GetByMetric(ctx context.Context, productID int64, metricName string) (*Benchmark, error) {
	b := &Benchmark{}
	err := getOne(ctx, r.db, b,
		`SELECT `+benchmarkColumns+` FROM benchmarks WHERE product_id = ? AND metric_name = ?`, productID, metricName)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListByProduct lists a product's benchmarks ordered by metric name.
func (r *BenchmarkRepository) ListByProduct(ctx context.Context, productID int64) ([]*Benchmark, error) {
	var out []*Benchmark
	err := selectAll(ctx, r.db, &out,
		`SELECT `+benchmarkColumns+` FROM benchmarks WHERE product_id = ? ORDER BY metric_name, id`, productID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update updates a benchmark in place.
func (r *BenchmarkRepository) Update(ctx context.Context, b *Benchmark) error {
	b.UpdatedAt = now()
	return execOne(ctx, r.db, `
		UPDATE benchmarks SET metric_name = ?, goal_value = ?, warning_threshold = ?, unit = ?, direction = ?, updated_at = ?
		WHERE id = ?`,
		b.MetricName, b.GoalValue, b.WarningThreshold, string(b.Unit), string(b.Direction), b.UpdatedAt, b.ID,
	)
}

// Delete deletes a benchmark.
func (r *BenchmarkRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, `DELETE FROM benchmarks WHERE id = ?`, id)
}
