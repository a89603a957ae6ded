// Package sections manages global report section templates. The database
// store is used when a database is configured; otherwise sections live in a
// JSON file with the same validation and uniqueness rules.
package sections

import (
	"context"
	"fmt"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
)

// Store is the section CRUD contract shared by both backends.
type Store interface {
	List(ctx context.Context) ([]*storage.ReportSection, error)
	Get(ctx context.Context, id int64) (*storage.ReportSection, error)
	Create(ctx context.Context, s *storage.ReportSection) error
	Update(ctx context.Context, s *storage.ReportSection) error
	Delete(ctx context.Context, id int64) error
}

// Validate applies the field rules every backend enforces.
func Validate(s *storage.ReportSection) error {
	if err := storage.Validate(s); err != nil {
		return domain.ValidationError("invalid report section", err)
	}
	if err := s.DataSources.Validate(); err != nil {
		return domain.ValidationError("invalid data_sources", err)
	}
	if s.MinLength != nil && s.MaxLength != nil && *s.MinLength > *s.MaxLength {
		return domain.ValidationError(
			fmt.Sprintf("min_length (%d) must not exceed max_length (%d)", *s.MinLength, *s.MaxLength), nil)
	}
	return nil
}

func duplicateKey(key string) error {
	return domain.ValidationError(fmt.Sprintf("section_key %q already exists", key), nil)
}

func notFound(id int64) error {
	return domain.NotFoundError(fmt.Sprintf("report section %d not found", id), nil)
}
