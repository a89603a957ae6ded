package storage

import (
	"context"
	"errors"
)

const sectionColumns = `id, section_key, section_name, display_order, is_enabled, is_required, default_instructions,
	data_sources, output_format, min_length, max_length, created_at, updated_at`

// SectionRepository handles ReportSection CRUD operations.
type SectionRepository struct {
	db DB
}

// Create creates a new report section and sets its ID.
func (r *SectionRepository) Create(ctx context.Context, s *ReportSection) error {
	s.CreatedAt, s.UpdatedAt = now(), now()
	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO report_sections (section_key, section_name, display_order, is_enabled, is_required,
			default_instructions, data_sources, output_format, min_length, max_length, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.SectionKey, s.SectionName, s.DisplayOrder, s.IsEnabled, s.IsRequired,
		s.DefaultInstructions, s.DataSources, s.OutputFormat, s.MinLength, s.MaxLength, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

// Get retrieves a report section by ID.
func (r *SectionRepository) Get(ctx context.Context, id int64) (*ReportSection, error) {
	s := &ReportSection{}
	if err := getOne(ctx, r.db, s, `SELECT `+sectionColumns+` FROM report_sections WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return s, nil
}

// GetByKey retrieves a report section by its unique key.
func (r *SectionRepository) GetByKey(ctx context.Context, key string) (*ReportSection, error) {
	s := &ReportSection{}
	if err := getOne(ctx, r.db, s, `SELECT `+sectionColumns+` FROM report_sections WHERE section_key = ?`, key); err != nil {
		return nil, err
	}
	return s, nil
}

// List lists all report sections in display order.
func (r *SectionRepository) List(ctx context.Context) ([]*ReportSection, error) {
	var out []*ReportSection
	if err := selectAll(ctx, r.db, &out, `SELECT `+sectionColumns+` FROM report_sections ORDER BY display_order, id`); err != nil {
		return nil, err
	}
	return out, nil
}

// Update updates a report section in place.
func (r *SectionRepository) Update(ctx context.Context, s *ReportSection) error {
	s.UpdatedAt = now()
	return execOne(ctx, r.db, `
		UPDATE report_sections SET section_key = ?, section_name = ?, display_order = ?, is_enabled = ?, is_required = ?,
			default_instructions = ?, data_sources = ?, output_format = ?, min_length = ?, max_length = ?, updated_at = ?
		WHERE id = ?`,
		s.SectionKey, s.SectionName, s.DisplayOrder, s.IsEnabled, s.IsRequired,
		s.DefaultInstructions, s.DataSources, s.OutputFormat, s.MinLength, s.MaxLength, s.UpdatedAt, s.ID,
	)
}

// Delete deletes a report section; overrides cascade.
func (r *SectionRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, `DELETE FROM report_sections WHERE id = ?`, id)
}

// OverrideRepository handles one override table. Product and subproduct
// overrides share a shape and differ only in table and owner column.
type OverrideRepository struct {
	db       DB
	scope    OverrideScope
	table    string
	ownerCol string
}

func newOverrideRepository(db DB, scope OverrideScope) *OverrideRepository {
	r := &OverrideRepository{db: db, scope: scope, table: "product_report_sections", ownerCol: "product_id"}
	if scope == ScopeSubproduct {
		r.table, r.ownerCol = "subproduct_report_sections", "subproduct_id"
	}
	return r
}

// Scope returns the scope this repository serves.
func (r *OverrideRepository) Scope() OverrideScope {
	return r.scope
}

func (r *OverrideRepository) columns() string {
	return `id, ` + r.ownerCol + ` AS owner_id, section_id, is_enabled, custom_instructions, custom_data_sources,
		custom_min_length, custom_max_length, display_order, updated_at`
}

// Get retrieves the override for (ownerID, sectionID).
func (r *OverrideRepository) Get(ctx context.Context, ownerID, sectionID int64) (*SectionOverride, error) {
	o := &SectionOverride{}
	err := getOne(ctx, r.db, o,
		`SELECT `+r.columns()+` FROM `+r.table+` WHERE `+r.ownerCol+` = ? AND section_id = ?`, ownerID, sectionID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// ListByOwner lists all overrides for one product or subproduct.
func (r *OverrideRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*SectionOverride, error) {
	var out []*SectionOverride
	err := selectAll(ctx, r.db, &out,
		`SELECT `+r.columns()+` FROM `+r.table+` WHERE `+r.ownerCol+` = ? ORDER BY section_id`, ownerID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert checks for an existing row for (owner, section) and updates it,
// inserting otherwise. Callers run it inside a transaction so the check and
// the write are atomic.
func (r *OverrideRepository) Upsert(ctx context.Context, o *SectionOverride) error {
	o.UpdatedAt = now()

	existing, err := r.Get(ctx, o.OwnerID, o.SectionID)
	switch {
	case errors.Is(err, ErrNotFound):
		id, err := insertReturningID(ctx, r.db, `
			INSERT INTO `+r.table+` (`+r.ownerCol+`, section_id, is_enabled, custom_instructions, custom_data_sources,
				custom_min_length, custom_max_length, display_order, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			o.OwnerID, o.SectionID, o.IsEnabled, o.CustomInstructions, o.CustomDataSources,
			o.CustomMinLength, o.CustomMaxLength, o.DisplayOrder, o.UpdatedAt,
		)
		if err != nil {
			return err
		}
		o.ID = id
		return nil
	case err != nil:
		return err
	}

	o.ID = existing.ID
	return execOne(ctx, r.db, `
		UPDATE `+r.table+` SET is_enabled = ?, custom_instructions = ?, custom_data_sources = ?,
			custom_min_length = ?, custom_max_length = ?, display_order = ?, updated_at = ?
		WHERE id = ?`,
		o.IsEnabled, o.CustomInstructions, o.CustomDataSources,
		o.CustomMinLength, o.CustomMaxLength, o.DisplayOrder, o.UpdatedAt, o.ID,
	)
}

// Delete removes the override for (ownerID, sectionID).
func (r *OverrideRepository) Delete(ctx context.Context, ownerID, sectionID int64) error {
	return execOne(ctx, r.db, `DELETE FROM `+r.table+` WHERE `+r.ownerCol+` = ? AND section_id = ?`, ownerID, sectionID)
}
