package storage

import (
	"context"
	"errors"
)

const campaignColumns = `id, order_id, order_number, name, status, raw_data, normalized, fetched_at`

// CampaignRepository stores fetched Lumina orders.
type CampaignRepository struct {
	db DB
}

// Upsert inserts the campaign or refreshes the row with the same order ID.
func (r *CampaignRepository) Upsert(ctx context.Context, c *Campaign) error {
	c.FetchedAt = now()

	existing, err := r.GetByOrderID(ctx, c.OrderID)
	if errors.Is(err, ErrNotFound) {
		id, err := insertReturningID(ctx, r.db, `
			INSERT INTO campaigns (order_id, order_number, name, status, raw_data, normalized, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.OrderID, c.OrderNumber, c.Name, c.Status, c.RawData, c.Normalized, c.FetchedAt,
		)
		if err != nil {
			return err
		}
		c.ID = id
		return nil
	}
	if err != nil {
		return err
	}

	c.ID = existing.ID
	return execOne(ctx, r.db, `
		UPDATE campaigns SET order_number = ?, name = ?, status = ?, raw_data = ?, normalized = ?, fetched_at = ?
		WHERE id = ?`,
		c.OrderNumber, c.Name, c.Status, c.RawData, c.Normalized, c.FetchedAt, c.ID,
	)
}

// GetByOrderID retrieves a campaign by its Lumina order ID.
func (r *CampaignRepository) GetByOrderID(ctx context.Context, orderID string) (*Campaign, error) {
	c := &Campaign{}
	if err := getOne(ctx, r.db, c, `SELECT `+campaignColumns+` FROM campaigns WHERE order_id = ?`, orderID); err != nil {
		return nil, err
	}
	return c, nil
}

const analysisColumns = `id, campaign_id, campaign_name, model, is_mock, prompt, response_text, result, created_at`

// AnalysisRepository stores generated analyses.
type AnalysisRepository struct {
	db DB
}

// Create inserts an analysis. The caller assigns the ID.
func (r *AnalysisRepository) Create(ctx context.Context, a *Analysis) error {
	a.CreatedAt = now()
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO analyses (id, campaign_id, campaign_name, model, is_mock, prompt, response_text, result, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		a.ID, a.CampaignID, a.CampaignName, a.Model, a.IsMock, a.Prompt, a.ResponseText, a.Result, a.CreatedAt,
	)
	return classify(err)
}

// Get retrieves an analysis by ID.
func (r *AnalysisRepository) Get(ctx context.Context, id string) (*Analysis, error) {
	a := &Analysis{}
	if err := getOne(ctx, r.db, a, `SELECT `+analysisColumns+` FROM analyses WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return a, nil
}

// ListRecent returns the most recent analyses.
func (r *AnalysisRepository) ListRecent(ctx context.Context, limit int) ([]*Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []*Analysis
	if err := selectAll(ctx, r.db, &out, `SELECT `+analysisColumns+` FROM analyses ORDER BY created_at DESC LIMIT ?`, limit); err != nil {
		return nil, err
	}
	return out, nil
}
