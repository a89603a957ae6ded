package storage

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// MigrationStatus represents the status of migrations.
type MigrationStatus struct {
	UpToDate bool
	Applied  []string
	Pending  []string
	Total    int
}

// Migrator applies the embedded schema migrations. Each file is rendered for
// the target driver ({{pk}} and {{ts}} placeholders) and applied in its own
// transaction; applied versions are recorded in schema_migrations.
type Migrator struct {
	store *Store
}

// NewMigrator creates a migrator for the store.
func NewMigrator(store *Store) *Migrator {
	return &Migrator{store: store}
}

// Status reports which migrations have been applied.
func (m *Migrator) Status(ctx context.Context) (*MigrationStatus, error) {
	if err := m.ensureSchemaMigrationsTable(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	files, err := listMigrations()
	if err != nil {
		return nil, err
	}

	var applied []string
	if err := m.store.db.SelectContext(ctx, &applied, "SELECT version FROM schema_migrations ORDER BY version"); err != nil {
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	status := &MigrationStatus{Applied: applied, Pending: []string{}, Total: len(files)}
	for _, f := range files {
		if !done[f] {
			status.Pending = append(status.Pending, f)
		}
	}
	status.UpToDate = len(status.Pending) == 0
	return status, nil
}

// Up applies every pending migration in filename order.
func (m *Migrator) Up(ctx context.Context) (*MigrationStatus, error) {
	status, err := m.Status(ctx)
	if err != nil {
		return nil, err
	}

	for _, name := range status.Pending {
		if err := m.apply(ctx, name); err != nil {
			return nil, fmt.Errorf("run migration %s: %w", name, err)
		}
		status.Applied = append(status.Applied, name)
	}
	status.Pending = []string{}
	status.UpToDate = true
	return status, nil
}

func (m *Migrator) apply(ctx context.Context, name string) error {
	data, err := migrationFS.ReadFile("migrations/" + name)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	ddl := renderDDL(string(data), m.store.driver)

	tx, err := m.store.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)"), name, now()); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}

func (m *Migrator) ensureSchemaMigrationsTable(ctx context.Context) error {
	query := renderDDL(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id {{pk}},
			version TEXT UNIQUE NOT NULL,
			applied_at {{ts}} NOT NULL
		)`, m.store.driver)
	_, err := m.store.db.ExecContext(ctx, query)
	return err
}

func listMigrations() ([]string, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migration directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func renderDDL(ddl, driver string) string {
	pk, ts := "INTEGER PRIMARY KEY AUTOINCREMENT", "TIMESTAMP"
	if driver == "postgres" {
		pk, ts = "BIGSERIAL PRIMARY KEY", "TIMESTAMPTZ"
	}
	return strings.NewReplacer("{{pk}}", pk, "{{ts}}", ts).Replace(ddl)
}
