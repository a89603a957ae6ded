package storage

import (
	"context"
	"errors"
	"time"
)

const settingColumns = `id, setting_key, setting_value, setting_type, category, description, updated_at`

// SettingRepository handles AIGlobalSetting operations.
type SettingRepository struct {
	db DB
}

// List lists all settings ordered by category then key.
func (r *SettingRepository) List(ctx context.Context) ([]*AIGlobalSetting, error) {
	var out []*AIGlobalSetting
	if err := selectAll(ctx, r.db, &out, `SELECT `+settingColumns+` FROM ai_global_settings ORDER BY category, setting_key`); err != nil {
		return nil, err
	}
	return out, nil
}

// Get retrieves a setting by key.
func (r *SettingRepository) Get(ctx context.Context, key string) (*AIGlobalSetting, error) {
	s := &AIGlobalSetting{}
	if err := getOne(ctx, r.db, s, `SELECT `+settingColumns+` FROM ai_global_settings WHERE setting_key = ?`, key); err != nil {
		return nil, err
	}
	return s, nil
}

// Upsert inserts the setting or updates the row with the same key.
func (r *SettingRepository) Upsert(ctx context.Context, s *AIGlobalSetting) error {
	s.UpdatedAt = now()

	existing, err := r.Get(ctx, s.SettingKey)
	if errors.Is(err, ErrNotFound) {
		id, err := insertReturningID(ctx, r.db, `
			INSERT INTO ai_global_settings (setting_key, setting_value, setting_type, category, description, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			s.SettingKey, s.SettingValue, string(s.SettingType), s.Category, s.Description, s.UpdatedAt,
		)
		if err != nil {
			return err
		}
		s.ID = id
		return nil
	}
	if err != nil {
		return err
	}

	s.ID = existing.ID
	return execOne(ctx, r.db, `
		UPDATE ai_global_settings SET setting_value = ?, setting_type = ?, category = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		s.SettingValue, string(s.SettingType), s.Category, s.Description, s.UpdatedAt, s.ID,
	)
}

// Delete deletes a setting by key.
func (r *SettingRepository) Delete(ctx context.Context, key string) error {
	return execOne(ctx, r.db, `DELETE FROM ai_global_settings WHERE setting_key = ?`, key)
}

const testConfigColumns = `id, config_name, test_scenario, product_id, subproduct_id, test_data, ai_model, temperature, tone,
	custom_instructions, enabled_sections, last_test_result, last_test_at, created_at, updated_at`

// TestConfigRepository handles AITestConfig CRUD operations.
type TestConfigRepository struct {
	db DB
}

// Create creates a new test config and sets its ID.
func (r *TestConfigRepository) Create(ctx context.Context, c *AITestConfig) error {
	c.CreatedAt, c.UpdatedAt = now(), now()
	if c.EnabledSections == nil {
		c.EnabledSections = StringList{}
	}
	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO ai_test_configs (config_name, test_scenario, product_id, subproduct_id, test_data, ai_model,
			temperature, tone, custom_instructions, enabled_sections, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ConfigName, c.TestScenario, c.ProductID, c.SubproductID, c.TestData, c.AIModel,
		c.Temperature, c.Tone, c.CustomInstructions, c.EnabledSections, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

// Get retrieves a test config by ID.
func (r *TestConfigRepository) Get(ctx context.Context, id int64) (*AITestConfig, error) {
	c := &AITestConfig{}
	if err := getOne(ctx, r.db, c, `SELECT `+testConfigColumns+` FROM ai_test_configs WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return c, nil
}

// List lists all test configs, most recently updated first.
func (r *TestConfigRepository) List(ctx context.Context) ([]*AITestConfig, error) {
	var out []*AITestConfig
	if err := selectAll(ctx, r.db, &out, `SELECT `+testConfigColumns+` FROM ai_test_configs ORDER BY updated_at DESC, id DESC`); err != nil {
		return nil, err
	}
	return out, nil
}

// Update updates a test config's editable fields.
func (r *TestConfigRepository) Update(ctx context.Context, c *AITestConfig) error {
	c.UpdatedAt = now()
	return execOne(ctx, r.db, `
		UPDATE ai_test_configs SET config_name = ?, test_scenario = ?, product_id = ?, subproduct_id = ?, test_data = ?,
			ai_model = ?, temperature = ?, tone = ?, custom_instructions = ?, enabled_sections = ?, updated_at = ?
		WHERE id = ?`,
		c.ConfigName, c.TestScenario, c.ProductID, c.SubproductID, c.TestData,
		c.AIModel, c.Temperature, c.Tone, c.CustomInstructions, c.EnabledSections, c.UpdatedAt, c.ID,
	)
}

// RecordResult stores the outcome of a harness run.
func (r *TestConfigRepository) RecordResult(ctx context.Context, id int64, result JSONDoc, at time.Time) error {
	return execOne(ctx, r.db, `UPDATE ai_test_configs SET last_test_result = ?, last_test_at = ? WHERE id = ?`, result, at.UTC(), id)
}

// Delete deletes a test config.
func (r *TestConfigRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, `DELETE FROM ai_test_configs WHERE id = ?`, id)
}
