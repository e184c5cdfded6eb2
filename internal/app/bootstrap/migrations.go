package bootstrap

import (
	"context"
	"fmt"

	"crm-pharma-core/internal/infrastructure/database/schema"
)

// Statuts de migration
const (
	MigrationPending  = "PENDING"
	MigrationUpToDate = "UP_TO_DATE"
)

// MigrationStatus synthèse affichée au démarrage
type MigrationStatus struct {
	Status               string `json:"status"`
	CurrentVersion       string `json:"current_version"`
	ExecutedFiles        int    `json:"executed_files"`
	PendingFiles         int    `json:"pending_files"`
	HasPendingMigrations bool   `json:"has_pending_migrations"`
}

// MigrationManager applique ou vérifie les migrations embarquées
type MigrationManager struct {
	migrator    *schema.Migrator
	autoMigrate bool
}

func NewMigrationManager(migrator *schema.Migrator, autoMigrate bool) *MigrationManager {
	return &MigrationManager{migrator: migrator, autoMigrate: autoMigrate}
}

// EnsureMigrationsApplied : sans auto-migration, un schéma en retard est signalé sans bloquer
// le démarrage. Les routes concernées répondent alors SCHEMA_MIGRATION_REQUIRED.
func (mm *MigrationManager) EnsureMigrationsApplied(ctx context.Context) (*MigrationStatus, error) {
	status, err := mm.status(ctx)
	if err != nil {
		return nil, err
	}

	fmt.Printf("[MIGRATIONS] 📊 Statut: %s, Version: %s, Pending: %d, Executed: %d\n",
		status.Status, status.CurrentVersion, status.PendingFiles, status.ExecutedFiles)

	if !status.HasPendingMigrations {
		return status, nil
	}

	if !mm.autoMigrate {
		fmt.Printf("[MIGRATIONS] ⚠️  %d migration(s) en attente - lancer `crm-scripts migrate`\n", status.PendingFiles)
		return status, nil
	}

	applied, err := mm.migrator.Apply(ctx)
	if err != nil {
		return nil, err
	}
	fmt.Printf("[MIGRATIONS] ✅ %d migration(s) appliquée(s)\n", applied)

	return mm.status(ctx)
}

func (mm *MigrationManager) status(ctx context.Context) (*MigrationStatus, error) {
	report, err := mm.migrator.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("statut migrations: %w", err)
	}
	return summarize(report), nil
}

func summarize(report *schema.Report) *MigrationStatus {
	status := &MigrationStatus{
		Status:               MigrationUpToDate,
		CurrentVersion:       report.CurrentVersion,
		ExecutedFiles:        len(report.Migrations) - report.Pending,
		PendingFiles:         report.Pending,
		HasPendingMigrations: report.Pending > 0,
	}
	if status.HasPendingMigrations {
		status.Status = MigrationPending
	}
	return status
}
