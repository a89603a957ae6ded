package lumina

import (
	"context"
	"strings"
	"time"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/observability"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
)

// Fetcher retrieves a raw order.
type Fetcher interface {
	FetchOrder(ctx context.Context, orderID string) (map[string]interface{}, []byte, error)
}

// Service fetches, normalizes, enriches and stores orders.
type Service struct {
	fetcher Fetcher
	store   *storage.Store
	logger  *observability.Logger
	now     func() time.Time
}

// NewService creates a service. store may be nil, in which case extractors
// are not applied and nothing is persisted.
func NewService(fetcher Fetcher, store *storage.Store, logger *observability.Logger) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Service{fetcher: fetcher, store: store, logger: logger, now: time.Now}
}

// Lookup returns the normalized campaign for an order.
func (s *Service) Lookup(ctx context.Context, orderID string) (*Campaign, error) {
	orderID = strings.TrimSpace(orderID)
	if err := ValidateOrderID(orderID); err != nil {
		return nil, err
	}

	raw, body, err := s.fetcher.FetchOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	c := Normalize(raw, s.now())
	if c.ID == "" {
		c.ID = orderID
	}
	if s.store == nil {
		return c, nil
	}

	if err := s.derive(ctx, c, raw); err != nil {
		return nil, err
	}

	rec := &storage.Campaign{
		OrderID:     orderID,
		OrderNumber: c.OrderNumber,
		Name:        c.Name,
		Status:      c.Status,
		RawData:     storage.JSONDoc(body),
		Normalized:  storage.MustJSONDoc(c),
	}
	if err := rec.RawData.Validate(); err != nil {
		rec.RawData = storage.MustJSONDoc(raw)
	}
	if err := s.store.Campaigns.Upsert(ctx, rec); err != nil {
		return nil, domain.PersistenceError("failed to store campaign", err)
	}
	s.logger.Info().
		Str("order_id", orderID).
		Int("line_items", len(c.LineItems)).
		Int("derived", len(c.Derived)).
		Msg("campaign stored")
	return c, nil
}

// derive evaluates the extractors of every product named in the campaign's
// line items.
func (s *Service) derive(ctx context.Context, c *Campaign, raw map[string]interface{}) error {
	if len(c.Products) == 0 {
		return nil
	}
	named := make(map[string]bool, len(c.Products))
	for _, p := range c.Products {
		named[strings.ToLower(p)] = true
	}

	products, err := s.store.Products.List(ctx)
	if err != nil {
		return domain.PersistenceError("failed to load products", err)
	}
	for _, p := range products {
		if !named[strings.ToLower(p.Name)] {
			continue
		}
		extractors, err := s.store.Extractors.ListByProduct(ctx, p.ID)
		if err != nil {
			return domain.PersistenceError("failed to load extractors", err)
		}
		for _, e := range extractors {
			v, ok, err := Evaluate(e, raw)
			if err != nil {
				s.logger.Warn().Err(err).Str("extractor", e.Name).Msg("skipping extractor with invalid path")
				continue
			}
			if !ok {
				continue
			}
			if c.Derived == nil {
				c.Derived = map[string]interface{}{}
			}
			c.Derived[e.Name] = v
		}
	}
	return nil
}
