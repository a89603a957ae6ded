package schema

import (
	"context"
	"time"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
)

// ListTestConfigs returns all saved AI test harness configs.
func (s *Service) ListTestConfigs(ctx context.Context) ([]*storage.AITestConfig, error) {
	out, err := s.store.TestConfigs.List(ctx)
	if err != nil {
		return nil, translate(err, "test configs")
	}
	if out == nil {
		out = []*storage.AITestConfig{}
	}
	return out, nil
}

// GetTestConfig returns one test config.
func (s *Service) GetTestConfig(ctx context.Context, id int64) (*storage.AITestConfig, error) {
	c, err := s.store.TestConfigs.Get(ctx, id)
	return c, translate(err, "test config")
}

// CreateTestConfig validates and inserts a test config.
func (s *Service) CreateTestConfig(ctx context.Context, c *storage.AITestConfig) error {
	if err := s.checkTestConfig(ctx, c); err != nil {
		return err
	}
	return translate(s.store.TestConfigs.Create(ctx, c), "test config")
}

// UpdateTestConfig validates and saves c.
func (s *Service) UpdateTestConfig(ctx context.Context, c *storage.AITestConfig) error {
	if err := s.checkTestConfig(ctx, c); err != nil {
		return err
	}
	return translate(s.store.TestConfigs.Update(ctx, c), "test config")
}

// DeleteTestConfig deletes a test config.
func (s *Service) DeleteTestConfig(ctx context.Context, id int64) error {
	return translate(s.store.TestConfigs.Delete(ctx, id), "test config")
}

// RecordTestResult stores the outcome of a harness run.
func (s *Service) RecordTestResult(ctx context.Context, id int64, result interface{}, at time.Time) error {
	return translate(s.store.TestConfigs.RecordResult(ctx, id, storage.MustJSONDoc(result), at), "test config")
}

func (s *Service) checkTestConfig(ctx context.Context, c *storage.AITestConfig) error {
	c.EnabledSections = c.EnabledSections.Normalized()
	if err := storage.Validate(c); err != nil {
		return invalid(err, "test config")
	}
	if len(c.TestData) > 0 {
		if err := c.TestData.Validate(); err != nil {
			return domain.ValidationError("invalid test_data", err)
		}
	}
	if c.ProductID != nil {
		if _, err := s.GetProduct(ctx, *c.ProductID); err != nil {
			return err
		}
	}
	if c.SubproductID != nil {
		sp, err := s.GetSubproduct(ctx, *c.SubproductID)
		if err != nil {
			return err
		}
		if c.ProductID != nil && sp.ProductID != *c.ProductID {
			return domain.ValidationError("subproduct does not belong to product", nil)
		}
	}
	return nil
}
