package bootstrap

import (
	"context"
	"fmt"
	"time"

	"crm-pharma-core/internal/app/config"
	"crm-pharma-core/internal/infrastructure/database/postgres"
	"crm-pharma-core/internal/infrastructure/database/schema"
	"crm-pharma-core/internal/infrastructure/database/seeds"

	"go.uber.org/fx"
)

// BootstrapSystem trois phases séquentielles : extensions, migrations, seeding
type BootstrapSystem struct {
	extensionManager *ExtensionManager
	migrationManager *MigrationManager
	seedingManager   *SeedingManager
	timeout          time.Duration
}

type BootstrapResult struct {
	Success         bool             `json:"success"`
	TotalDuration   time.Duration    `json:"total_duration"`
	PhasesExecuted  []PhaseResult    `json:"phases_executed"`
	MigrationStatus *MigrationStatus `json:"migration_status,omitempty"`
	ErrorMessage    string           `json:"error_message,omitempty"`
}

type PhaseResult struct {
	Phase       string        `json:"phase"`
	Success     bool          `json:"success"`
	Skipped     bool          `json:"skipped,omitempty"`
	Duration    time.Duration `json:"duration"`
	Description string        `json:"description"`
	Error       string        `json:"error,omitempty"`
}

func NewBootstrapSystem(
	extensionManager *ExtensionManager,
	migrationManager *MigrationManager,
	seedingManager *SeedingManager,
	cfg *config.Config,
) *BootstrapSystem {
	timeout := cfg.Schema.MigrationTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &BootstrapSystem{
		extensionManager: extensionManager,
		migrationManager: migrationManager,
		seedingManager:   seedingManager,
		timeout:          timeout,
	}
}

type phase struct {
	name        string
	description string
	run         func(ctx context.Context, result *BootstrapResult) (skipped bool, err error)
}

func (bs *BootstrapSystem) phases() []phase {
	return []phase{
		{
			name:        "Phase 0: Extensions PostgreSQL",
			description: "pgcrypto et pg_trgm",
			run: func(ctx context.Context, _ *BootstrapResult) (bool, error) {
				return false, bs.extensionManager.EnsureRequiredExtensions(ctx)
			},
		},
		{
			name:        "Phase 1: Migrations",
			description: "migrations SQL embarquées",
			run: func(ctx context.Context, result *BootstrapResult) (bool, error) {
				status, err := bs.migrationManager.EnsureMigrationsApplied(ctx)
				result.MigrationStatus = status
				return false, err
			},
		},
		{
			name:        "Phase 2: Seeding données",
			description: "wilayas, catalogue applications, super admin",
			run: func(ctx context.Context, result *BootstrapResult) (bool, error) {
				if result.MigrationStatus != nil && result.MigrationStatus.HasPendingMigrations {
					fmt.Printf("[BOOTSTRAP] ⏭️  Seeding ignoré: schéma en retard\n")
					return true, nil
				}
				status, err := bs.seedingManager.CheckSeedDataExists(ctx)
				if err != nil {
					return false, err
				}
				return false, bs.seedingManager.ApplySeeding(ctx, status)
			},
		},
	}
}

// Execute lance les phases ; la première erreur interrompt le démarrage
func (bs *BootstrapSystem) Execute(ctx context.Context) (*BootstrapResult, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, bs.timeout)
	defer cancel()

	fmt.Printf("[BOOTSTRAP] Démarrage BootstrapSystem (timeout: %v)\n", bs.timeout)

	result := &BootstrapResult{Success: true}
	for _, p := range bs.phases() {
		phaseStart := time.Now()
		skipped, err := p.run(ctx, result)
		pr := PhaseResult{
			Phase:       p.name,
			Success:     err == nil,
			Skipped:     skipped,
			Duration:    time.Since(phaseStart),
			Description: p.description,
		}
		if err != nil {
			pr.Error = err.Error()
		}
		result.PhasesExecuted = append(result.PhasesExecuted, pr)

		if err != nil {
			fmt.Printf("[BOOTSTRAP] ❌ %s échouée en %v: %v\n", p.name, pr.Duration, err)
			result.Success = false
			result.ErrorMessage = fmt.Sprintf("%s échouée: %v", p.name, err)
			result.TotalDuration = time.Since(start)
			return result, fmt.Errorf("bootstrap échoué (%s): %w", p.name, err)
		}
		fmt.Printf("[BOOTSTRAP] ✅ %s terminée en %v\n", p.name, pr.Duration)
	}

	result.TotalDuration = time.Since(start)
	fmt.Printf("[BOOTSTRAP] ✅ BootstrapSystem terminé avec succès en %v\n", result.TotalDuration)
	return result, nil
}

func NewBootstrapExtensionManager(pgClient *postgres.Client) *ExtensionManager {
	return NewExtensionManager(pgClient)
}

func NewBootstrapMigrationManager(migrator *schema.Migrator, cfg *config.Config) *MigrationManager {
	return NewMigrationManager(migrator, cfg.Schema.AutoMigrate)
}

func NewBootstrapSeedingManager(pgClient *postgres.Client, txManager *postgres.TransactionManager, cfg *config.Config) *SeedingManager {
	return NewSeedingManager(seeds.NewSeedingService(pgClient, txManager, seeds.Options{
		SuperAdminEmail:    cfg.Seed.SuperAdminEmail,
		SuperAdminPassword: cfg.Seed.SuperAdminPassword,
		Pepper:             cfg.Session.SecretPepper,
	}))
}

// RegisterBootstrapLifecycle exécute le bootstrap avant le serveur HTTP
func RegisterBootstrapLifecycle(lc fx.Lifecycle, bootstrap *BootstrapSystem) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			result, err := bootstrap.Execute(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("[LIFECYCLE] ✅ Bootstrap terminé en %v\n", result.TotalDuration)
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(
		NewBootstrapExtensionManager,
		NewBootstrapMigrationManager,
		NewBootstrapSeedingManager,
		NewBootstrapSystem,
	),
	fx.Invoke(RegisterBootstrapLifecycle),
)
