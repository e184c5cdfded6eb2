package seeds

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"crm-pharma-core/internal/domain/wilaya"
	"crm-pharma-core/internal/infrastructure/database/postgres"
	"crm-pharma-core/internal/shared/utils"

	"gopkg.in/yaml.v3"
)

//go:embed applications.yaml
var applicationsYAML []byte

// Options paramètres du compte super admin initial
type Options struct {
	SuperAdminEmail    string
	SuperAdminPassword string
	Pepper             string
}

type seedingService struct {
	pgClient  *postgres.Client
	txManager *postgres.TransactionManager
	opts      Options
}

func NewSeedingService(pgClient *postgres.Client, txManager *postgres.TransactionManager, opts Options) SeedingService {
	return &seedingService{
		pgClient:  pgClient,
		txManager: txManager,
		opts:      opts,
	}
}

func (s *seedingService) CheckSeedDataExists(ctx context.Context) (*SeedDataStatus, error) {
	status := &SeedDataStatus{}
	var err error

	if status.WilayasExist, err = s.count(ctx, `SELECT COUNT(*) FROM wilayas`, len(wilaya.All())); err != nil {
		return nil, fmt.Errorf("erreur vérification wilayas: %w", err)
	}
	if status.ApplicationsExist, err = s.count(ctx, `SELECT COUNT(*) FROM applications`, 1); err != nil {
		return nil, fmt.Errorf("erreur vérification applications: %w", err)
	}
	if status.SuperAdminExist, err = s.count(ctx, `SELECT COUNT(*) FROM users WHERE role = 'super_admin'`, 1); err != nil {
		return nil, fmt.Errorf("erreur vérification super admin: %w", err)
	}

	status.AllDataExists = status.WilayasExist && status.ApplicationsExist && status.SuperAdminExist
	return status, nil
}

func (s *seedingService) count(ctx context.Context, query string, min int) (bool, error) {
	var n int
	if err := s.pgClient.QueryRow(ctx, query).Scan(&n); err != nil {
		return false, err
	}
	return n >= min, nil
}

// SeedWilayas insère les 58 wilayas, les codes existants sont ignorés
func (s *seedingService) SeedWilayas(ctx context.Context) error {
	return s.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		for _, w := range wilaya.All() {
			err := tx.Exec(ctx,
				`INSERT INTO wilayas (code, nom) VALUES ($1, $2) ON CONFLICT (code) DO NOTHING`,
				w.Code, w.Nom)
			if err != nil {
				return ErrDatabaseOperation("insertion wilaya "+w.Code, err)
			}
		}
		fmt.Printf("[SEEDING] ✅ %d wilayas présentes\n", len(wilaya.All()))
		return nil
	})
}

// LoadCatalog lit le catalogue d'applications embarqué
func LoadCatalog(data []byte) (*ApplicationCatalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, ErrCatalogLoad("applications.yaml", err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, ErrCatalogLoad("applications.yaml", errors.New("document YAML attendu sous forme de table"))
	}

	var catalog ApplicationCatalog
	if err := doc.Content[0].Decode(&catalog); err != nil {
		return nil, ErrCatalogLoad("applications.yaml", err)
	}
	if len(catalog.Applications) == 0 {
		return nil, ErrCatalogLoad("applications.yaml", errors.New("aucune application"))
	}
	for i, app := range catalog.Applications {
		if strings.TrimSpace(app.Nom) == "" {
			return nil, ErrValidation(fmt.Sprintf("application %d sans nom", i))
		}
		if _, err := app.Price(); err != nil {
			return nil, ErrValidation(err.Error())
		}
	}
	return &catalog, nil
}

func (s *seedingService) SeedApplications(ctx context.Context) error {
	catalog, err := LoadCatalog(applicationsYAML)
	if err != nil {
		return err
	}

	return s.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		for _, app := range catalog.Applications {
			prix, _ := app.Price()
			err := tx.Exec(ctx, `
				INSERT INTO applications (nom, description, prix)
				VALUES ($1, $2, $3)
				ON CONFLICT (nom) DO NOTHING
			`, app.Nom, app.Description, prix)
			if err != nil {
				return ErrDatabaseOperation("insertion application "+app.Nom, err)
			}
			fmt.Printf("[SEEDING]   ➕ Application %s\n", app.Nom)
		}
		return nil
	})
}

// SeedSuperAdmin crée le compte initial si aucun super admin n'existe
func (s *seedingService) SeedSuperAdmin(ctx context.Context) error {
	if s.opts.SuperAdminPassword == "" {
		fmt.Printf("[SEEDING] ⚠️  SEED_SUPER_ADMIN_PASSWORD vide - super admin non créé\n")
		return nil
	}
	if !strings.Contains(s.opts.SuperAdminEmail, "@") {
		return ErrValidation("email super admin invalide: " + s.opts.SuperAdminEmail)
	}

	hash, err := utils.HashPassword(s.opts.SuperAdminPassword, s.opts.Pepper)
	if err != nil {
		return ErrValidation(err.Error())
	}

	err = s.pgClient.Exec(ctx, `
		INSERT INTO users (email, nom, prenoms, role, password_hash)
		VALUES ($1, 'Administrateur', 'Système', 'super_admin', $2)
		ON CONFLICT (email) DO NOTHING
	`, strings.ToLower(s.opts.SuperAdminEmail), hash)
	if err != nil {
		return ErrDatabaseOperation("insertion super admin", err)
	}

	fmt.Printf("[SEEDING] ✅ Super admin %s créé\n", s.opts.SuperAdminEmail)
	return nil
}
