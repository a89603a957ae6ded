package schema

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/edwinlov3tt/report-ai-sub000/internal/domain"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
)

// VersionNumberLayout formats version numbers from the UTC save time.
const VersionNumberLayout = "20060102.150405.000"

// SaveVersion snapshots the current tree into a new active version. The
// export, deactivation and insert share one transaction, so exactly one
// version is active afterwards.
func (s *Service) SaveVersion(ctx context.Context, description, createdBy string) (*storage.SchemaVersion, error) {
	at := s.now()
	var version *storage.SchemaVersion

	err := s.store.WithTx(ctx, func(repos *storage.Repositories) error {
		snap, err := exportTree(ctx, repos)
		if err != nil {
			return err
		}
		snap.GeneratedAt = at

		data, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		if err := repos.Versions.DeactivateAll(ctx); err != nil {
			return err
		}

		version = &storage.SchemaVersion{
			VersionNumber: at.Format(VersionNumberLayout),
			Description:   description,
			SchemaData:    storage.JSONDoc(data),
			IsActive:      true,
			CreatedBy:     createdBy,
		}
		return repos.Versions.Create(ctx, version)
	})
	if err != nil {
		return nil, translate(err, "schema version")
	}

	s.logger.Info().
		Int64("version_id", version.ID).
		Str("version_number", version.VersionNumber).
		Msg("Schema version saved")
	return version, nil
}

// RestoreResult describes a completed restore.
type RestoreResult struct {
	Version *storage.SchemaVersion `json:"version"`
	Import  *ImportResult          `json:"import"`
}

// RestoreVersion replaces the tree with the snapshot stored in version id
// and marks that version active. Delete, reimport and activation run in one
// transaction; on failure nothing changes.
func (s *Service) RestoreVersion(ctx context.Context, id int64) (*RestoreResult, error) {
	result := &RestoreResult{}

	err := s.store.WithTx(ctx, func(repos *storage.Repositories) error {
		version, err := repos.Versions.Get(ctx, id)
		if err != nil {
			return err
		}

		snap, err := ParseSnapshot(version.SchemaData)
		if err != nil {
			return domain.ValidationError(fmt.Sprintf("version %d holds an unreadable snapshot", id), err)
		}
		if err := snap.check(); err != nil {
			return err
		}

		result.Import, err = importTree(ctx, repos, snap, true)
		if err != nil {
			return err
		}
		if err := repos.Versions.DeactivateAll(ctx); err != nil {
			return err
		}
		if err := repos.Versions.Activate(ctx, id); err != nil {
			return err
		}

		version.IsActive = true
		version.SchemaData = nil
		result.Version = version
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("version_id", id).Msg("Schema version restore rolled back")
		return nil, translate(err, "schema version")
	}

	s.logger.Info().
		Int64("version_id", id).
		Int("products", result.Import.Products).
		Msg("Schema version restored")
	return result, nil
}

// ListVersions returns the most recent versions, newest first.
func (s *Service) ListVersions(ctx context.Context, limit int) ([]*storage.SchemaVersion, error) {
	versions, err := s.store.Versions.List(ctx, limit)
	if err != nil {
		return nil, translate(err, "schema versions")
	}
	if versions == nil {
		versions = []*storage.SchemaVersion{}
	}
	return versions, nil
}

// GetVersion returns one version including its snapshot.
func (s *Service) GetVersion(ctx context.Context, id int64) (*storage.SchemaVersion, error) {
	v, err := s.store.Versions.Get(ctx, id)
	return v, translate(err, "schema version")
}
