package bootstrap

import (
	"context"
	"fmt"

	"crm-pharma-core/internal/infrastructure/database/postgres"
)

// RequiredExtensions gen_random_uuid et index trigramme sur raison_sociale
var RequiredExtensions = []string{"pgcrypto", "pg_trgm"}

// ExtensionManager crée les extensions PostgreSQL requises
type ExtensionManager struct {
	pgClient *postgres.Client
}

func NewExtensionManager(pgClient *postgres.Client) *ExtensionManager {
	return &ExtensionManager{pgClient: pgClient}
}

func (em *ExtensionManager) EnsureRequiredExtensions(ctx context.Context) error {
	for _, name := range RequiredExtensions {
		if err := em.ensureExtension(ctx, name); err != nil {
			return fmt.Errorf("extension %s: %w", name, err)
		}
	}

	fmt.Printf("[EXTENSIONS] ✅ Toutes les extensions requises sont installées\n")
	return nil
}

func (em *ExtensionManager) ensureExtension(ctx context.Context, name string) error {
	exists, err := em.checkExtensionExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	fmt.Printf("[EXTENSIONS] 🔧 Création extension %s...\n", name)
	if err := em.pgClient.Exec(ctx, fmt.Sprintf(`CREATE EXTENSION IF NOT EXISTS "%s"`, name)); err != nil {
		return err
	}

	exists, err = em.checkExtensionExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("extension %s absente après création", name)
	}
	return nil
}

func (em *ExtensionManager) checkExtensionExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := em.pgClient.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM pg_extension WHERE extname = $1)`, name,
	).Scan(&exists)
	return exists, err
}
