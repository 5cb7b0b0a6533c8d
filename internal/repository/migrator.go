package repository

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/oldgate-museum/booking-widget/pkg/database"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration is one embedded schema migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// MigrationStatus pairs a migration with whether it has been applied
type MigrationStatus struct {
	Migration
	Applied bool
}

// Migrator applies embedded SQL migrations to the catalog database,
// tracking progress in a schema_migrations table
type Migrator struct {
	db *database.PostgresDB
}

// NewMigrator creates a new Migrator
func NewMigrator(db *database.PostgresDB) *Migrator {
	return &Migrator{db: db}
}

func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	return m.db.Exec(ctx, query)
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[int]bool, error) {
	applied := make(map[int]bool)

	rows, err := m.db.Query(ctx, `SELECT version FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// LoadMigrations reads all embedded migration files, sorted by version.
// File names follow NNN_description.sql; anything else is skipped.
func (m *Migrator) LoadMigrations() ([]Migration, error) {
	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		versionText, rest, found := strings.Cut(entry.Name(), "_")
		if !found {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(versionText, "%d", &version); err != nil {
			continue
		}

		content, err := migrationFiles.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    strings.TrimSuffix(rest, ".sql"),
			SQL:     string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// Up applies all pending migrations, each in its own transaction, and
// returns the migrations that ran
func (m *Migrator) Up(ctx context.Context) ([]Migration, error) {
	if err := m.createMigrationsTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	migrations, err := m.LoadMigrations()
	if err != nil {
		return nil, err
	}

	var ran []Migration
	for _, migration := range migrations {
		if applied[migration.Version] {
			continue
		}

		tx, err := m.db.BeginTx(ctx)
		if err != nil {
			return ran, fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec(ctx, migration.SQL); err != nil {
			_ = tx.Rollback(ctx)
			return ran, fmt.Errorf("failed to execute migration %d (%s): %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`,
			migration.Version, migration.Name,
		); err != nil {
			_ = tx.Rollback(ctx)
			return ran, fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(ctx); err != nil {
			return ran, fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		ran = append(ran, migration)
	}

	return ran, nil
}

// Status reports every known migration and whether it has been applied
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	if err := m.createMigrationsTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	migrations, err := m.LoadMigrations()
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, 0, len(migrations))
	for _, migration := range migrations {
		statuses = append(statuses, MigrationStatus{
			Migration: migration,
			Applied:   applied[migration.Version],
		})
	}
	return statuses, nil
}
