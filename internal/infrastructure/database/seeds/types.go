package seeds

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// SeedDataStatus état des données de référence
type SeedDataStatus struct {
	WilayasExist      bool `json:"wilayas_exist"`
	ApplicationsExist bool `json:"applications_exist"`
	SuperAdminExist   bool `json:"super_admin_exist"`
	AllDataExists     bool `json:"all_data_exists"`
}

// ApplicationSeed entrée du catalogue embarqué
type ApplicationSeed struct {
	Nom         string `yaml:"nom"`
	Description string `yaml:"description"`
	Prix        string `yaml:"prix"`
}

// Price prix décimal, jamais négatif
func (a ApplicationSeed) Price() (decimal.Decimal, error) {
	prix, err := decimal.NewFromString(a.Prix)
	if err != nil {
		return decimal.Zero, fmt.Errorf("prix invalide pour %s: %w", a.Nom, err)
	}
	if prix.IsNegative() {
		return decimal.Zero, fmt.Errorf("prix négatif pour %s", a.Nom)
	}
	return prix, nil
}

// ApplicationCatalog structure de applications.yaml
type ApplicationCatalog struct {
	Applications []ApplicationSeed `yaml:"applications"`
}

// SeedingService données initiales idempotentes (INSERT uniquement)
type SeedingService interface {
	CheckSeedDataExists(ctx context.Context) (*SeedDataStatus, error)
	SeedWilayas(ctx context.Context) error
	SeedApplications(ctx context.Context) error
	SeedSuperAdmin(ctx context.Context) error
}

// GetMissingSeeds liste des seeds manquants
func (s *SeedDataStatus) GetMissingSeeds() []string {
	var missing []string
	if !s.WilayasExist {
		missing = append(missing, "wilayas")
	}
	if !s.ApplicationsExist {
		missing = append(missing, "applications")
	}
	if !s.SuperAdminExist {
		missing = append(missing, "super_admin")
	}
	return missing
}
