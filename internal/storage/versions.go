package storage

import (
	"context"
)

const versionSummaryColumns = `id, version_number, description, is_active, created_by, created_at`

// VersionRepository handles SchemaVersion operations. Versions are never
// deleted; activation is exclusive.
type VersionRepository struct {
	db DB
}

// Create inserts a new version row and sets its ID.
func (r *VersionRepository) Create(ctx context.Context, v *SchemaVersion) error {
	v.CreatedAt = now()
	id, err := insertReturningID(ctx, r.db, `
		INSERT INTO schema_versions (version_number, description, schema_data, is_active, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		v.VersionNumber, v.Description, v.SchemaData, v.IsActive, v.CreatedBy, v.CreatedAt,
	)
	if err != nil {
		return err
	}
	v.ID = id
	return nil
}

// Get retrieves a version including its snapshot.
func (r *VersionRepository) Get(ctx context.Context, id int64) (*SchemaVersion, error) {
	v := &SchemaVersion{}
	err := getOne(ctx, r.db, v, `SELECT `+versionSummaryColumns+`, schema_data FROM schema_versions WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// List returns the most recent versions without their snapshots.
func (r *VersionRepository) List(ctx context.Context, limit int) ([]*SchemaVersion, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []*SchemaVersion
	err := selectAll(ctx, r.db, &out,
		`SELECT `+versionSummaryColumns+` FROM schema_versions ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Active returns the active version, or ErrNotFound when none is active.
func (r *VersionRepository) Active(ctx context.Context) (*SchemaVersion, error) {
	v := &SchemaVersion{}
	if err := getOne(ctx, r.db, v, `SELECT `+versionSummaryColumns+` FROM schema_versions WHERE is_active = ?`, true); err != nil {
		return nil, err
	}
	return v, nil
}

// DeactivateAll clears the active flag on every version.
func (r *VersionRepository) DeactivateAll(ctx context.Context) error {
	_, err := execCount(ctx, r.db, `UPDATE schema_versions SET is_active = ? WHERE is_active = ?`, false, true)
	return err
}

// Activate marks one version active. Call DeactivateAll first in the same
// transaction.
func (r *VersionRepository) Activate(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, `UPDATE schema_versions SET is_active = ? WHERE id = ?`, true, id)
}

// CountActive returns the number of active versions.
func (r *VersionRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	err := getOne(ctx, r.db, &n, `SELECT COUNT(*) FROM schema_versions WHERE is_active = ?`, true)
	return n, err
}
