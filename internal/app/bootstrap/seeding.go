package bootstrap

import (
	"context"
	"fmt"

	"crm-pharma-core/internal/infrastructure/database/seeds"
)

// SeedingManager applique uniquement les seeds manquants
type SeedingManager struct {
	seedService seeds.SeedingService
}

func NewSeedingManager(seedService seeds.SeedingService) *SeedingManager {
	return &SeedingManager{seedService: seedService}
}

func (sm *SeedingManager) CheckSeedDataExists(ctx context.Context) (*seeds.SeedDataStatus, error) {
	status, err := sm.seedService.CheckSeedDataExists(ctx)
	if err != nil {
		return nil, fmt.Errorf("erreur vérification données seeding: %w", err)
	}

	fmt.Printf("[SEEDING] État données: wilayas=%t, applications=%t, super_admin=%t\n",
		status.WilayasExist, status.ApplicationsExist, status.SuperAdminExist)
	return status, nil
}

func (sm *SeedingManager) ApplySeeding(ctx context.Context, status *seeds.SeedDataStatus) error {
	if status.AllDataExists {
		fmt.Printf("[SEEDING] ✅ Données de référence déjà présentes\n")
		return nil
	}

	steps := []struct {
		done bool
		name string
		run  func(context.Context) error
	}{
		{status.WilayasExist, "wilayas", sm.seedService.SeedWilayas},
		{status.ApplicationsExist, "applications", sm.seedService.SeedApplications},
		{status.SuperAdminExist, "super admin", sm.seedService.SeedSuperAdmin},
	}

	for _, step := range steps {
		if step.done {
			continue
		}
		if err := step.run(ctx); err != nil {
			return fmt.Errorf("échec seeding %s: %w", step.name, err)
		}
	}

	fmt.Printf("[SEEDING] ✅ Seeding terminé avec succès\n")
	return nil
}
