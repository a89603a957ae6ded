// Package schema implements the configuration store's composite operations:
// validated CRUD over the product taxonomy, snapshot export and import, and
// schema versioning.
package schema

import (
	"errors"
	"fmt"
	"time"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/observability"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
)

// Service exposes the configuration store to handlers and the CLI.
type Service struct {
	store  *storage.Store
	logger *observability.Logger
	now    func() time.Time
}

// NewService creates a schema service over store.
func NewService(store *storage.Store, logger *observability.Logger) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// translate converts a storage error into the domain taxonomy. what names
// the entity for the caller-facing message.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case domain.TypeOf(err) != "":
		return err
	case errors.Is(err, storage.ErrNotFound):
		return domain.NotFoundError(what+" not found", nil)
	case errors.Is(err, storage.ErrConflict):
		return domain.ValidationError(what+" conflicts with an existing record", err)
	case errors.Is(err, storage.ErrInvalidReference):
		return domain.ValidationError(what+" references a missing parent", err)
	default:
		return domain.PersistenceError(fmt.Sprintf("failed to persist %s", what), err)
	}
}

// invalid wraps a storage.Validate failure.
func invalid(err error, what string) error {
	if err == nil {
		return nil
	}
	return domain.ValidationError("invalid "+what, err)
}
