package schema

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"crm-pharma-core/internal/infrastructure/database/postgres"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const createMigrationsTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// Migration fichier SQL embarqué, nommé NNNN_nom.sql
type Migration struct {
	Version string
	Name    string
	SQL     string
}

// MigrationStatus état d'une migration
type MigrationStatus struct {
	Version   string     `json:"version"`
	Name      string     `json:"name"`
	Applied   bool       `json:"applied"`
	AppliedAt *time.Time `json:"applied_at,omitempty"`
}

// Report synthèse exposée par /system/schema et la CLI
type Report struct {
	CurrentVersion string            `json:"current_version"`
	LatestVersion  string            `json:"latest_version"`
	Pending        int               `json:"pending"`
	UpToDate       bool              `json:"up_to_date"`
	Migrations     []MigrationStatus `json:"migrations"`
}

// Migrator applique les migrations embarquées dans l'ordre des versions
type Migrator struct {
	db         *postgres.Client
	txManager  *postgres.TransactionManager
	migrations []Migration
}

func NewMigrator(db *postgres.Client, txManager *postgres.TransactionManager) (*Migrator, error) {
	migrations, err := Load(migrationFiles)
	if err != nil {
		return nil, err
	}
	return &Migrator{db: db, txManager: txManager, migrations: migrations}, nil
}

// Load lit et trie les migrations d'un système de fichiers
func Load(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.Glob(fsys, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("lecture migrations: %w", err)
	}

	migrations := make([]Migration, 0, len(entries))
	seen := map[string]bool{}
	for _, file := range entries {
		version, name, err := parseFileName(path.Base(file))
		if err != nil {
			return nil, err
		}
		if seen[version] {
			return nil, fmt.Errorf("%w: version %s dupliquée", ErrInvalidVersion, version)
		}
		seen[version] = true

		content, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("lecture %s: %w", file, err)
		}
		migrations = append(migrations, Migration{Version: version, Name: name, SQL: string(content)})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

func parseFileName(file string) (string, string, error) {
	base := strings.TrimSuffix(file, ".sql")
	version, name, ok := strings.Cut(base, "_")
	if !ok || len(version) != 4 || strings.Trim(version, "0123456789") != "" {
		return "", "", fmt.Errorf("%w: %s (attendu NNNN_nom.sql)", ErrInvalidVersion, file)
	}
	return version, name, nil
}

func (m *Migrator) Migrations() []Migration {
	return m.migrations
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	if err := m.db.Exec(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("création table schema_migrations: %w", err)
	}
	return nil
}

func (m *Migrator) applied(ctx context.Context) (map[string]time.Time, error) {
	rows, err := m.db.Query(ctx, `SELECT version, applied_at FROM schema_migrations`)
	if err != nil {
		if postgres.IsUndefinedTable(err) {
			return map[string]time.Time{}, nil
		}
		return nil, fmt.Errorf("lecture schema_migrations: %w", err)
	}
	defer rows.Close()

	out := map[string]time.Time{}
	for rows.Next() {
		var version string
		var at time.Time
		if err := rows.Scan(&version, &at); err != nil {
			return nil, err
		}
		out[version] = at
	}
	return out, rows.Err()
}

// Status état de chaque migration embarquée
func (m *Migrator) Status(ctx context.Context) (*Report, error) {
	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	return BuildReport(m.migrations, applied), nil
}

// BuildReport calcule le rapport à partir des versions appliquées
func BuildReport(migrations []Migration, applied map[string]time.Time) *Report {
	report := &Report{Migrations: make([]MigrationStatus, 0, len(migrations))}
	for _, mig := range migrations {
		st := MigrationStatus{Version: mig.Version, Name: mig.Name}
		if at, ok := applied[mig.Version]; ok {
			at := at
			st.Applied = true
			st.AppliedAt = &at
			report.CurrentVersion = mig.Version
		} else {
			report.Pending++
		}
		report.LatestVersion = mig.Version
		report.Migrations = append(report.Migrations, st)
	}
	report.UpToDate = report.Pending == 0
	return report
}

// Check retourne ErrMigrationRequired si des migrations sont en attente
func (m *Migrator) Check(ctx context.Context) error {
	report, err := m.Status(ctx)
	if err != nil {
		return err
	}
	if !report.UpToDate {
		return fmt.Errorf("%w: %d migration(s) en attente", ErrMigrationRequired, report.Pending)
	}
	return nil
}

// Apply applique les migrations en attente, chacune dans sa transaction
func (m *Migrator) Apply(ctx context.Context) (int, error) {
	if err := m.ensureTable(ctx); err != nil {
		return 0, err
	}

	applied, err := m.applied(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, mig := range m.migrations {
		if _, ok := applied[mig.Version]; ok {
			continue
		}

		fmt.Printf("[MIGRATIONS] 🔄 Application %s_%s\n", mig.Version, mig.Name)
		err := m.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
			if err := tx.Exec(ctx, mig.SQL); err != nil {
				return err
			}
			return tx.Exec(ctx,
				`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`,
				mig.Version, mig.Name)
		})
		if err != nil {
			return count, &MigrationError{Version: mig.Version, Name: mig.Name, Err: err}
		}
		count++
	}

	return count, nil
}
