package sections

import (
	"context"
	"errors"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
)

// DBStore keeps sections in the report_sections table.
type DBStore struct {
	repo *storage.SectionRepository
}

// NewDBStore creates a database-backed section store.
func NewDBStore(store *storage.Store) *DBStore {
	return &DBStore{repo: store.Sections}
}

// List returns all sections in display order.
func (d *DBStore) List(ctx context.Context) ([]*storage.ReportSection, error) {
	out, err := d.repo.List(ctx)
	if err != nil {
		return nil, domain.PersistenceError("failed to list report sections", err)
	}
	if out == nil {
		out = []*storage.ReportSection{}
	}
	return out, nil
}

// Get returns one section.
func (d *DBStore) Get(ctx context.Context, id int64) (*storage.ReportSection, error) {
	s, err := d.repo.Get(ctx, id)
	if err != nil {
		return nil, d.wrap(err, id)
	}
	return s, nil
}

// Create validates and inserts s.
func (d *DBStore) Create(ctx context.Context, s *storage.ReportSection) error {
	if err := Validate(s); err != nil {
		return err
	}
	if _, err := d.repo.GetByKey(ctx, s.SectionKey); err == nil {
		return duplicateKey(s.SectionKey)
	}
	if err := d.repo.Create(ctx, s); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return duplicateKey(s.SectionKey)
		}
		return domain.PersistenceError("failed to create report section", err)
	}
	return nil
}

// Update validates and saves s.
func (d *DBStore) Update(ctx context.Context, s *storage.ReportSection) error {
	if err := Validate(s); err != nil {
		return err
	}
	if existing, err := d.repo.GetByKey(ctx, s.SectionKey); err == nil && existing.ID != s.ID {
		return duplicateKey(s.SectionKey)
	}
	if err := d.repo.Update(ctx, s); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return duplicateKey(s.SectionKey)
		}
		return d.wrap(err, s.ID)
	}
	return nil
}

// Delete removes a section; its overrides cascade.
func (d *DBStore) Delete(ctx context.Context, id int64) error {
	if err := d.repo.Delete(ctx, id); err != nil {
		return d.wrap(err, id)
	}
	return nil
}

func (d *DBStore) wrap(err error, id int64) error {
	if errors.Is(err, storage.ErrNotFound) {
		return notFound(id)
	}
	return domain.PersistenceError("report section storage failed", err)
}
