package services

import (
	"context"
	"fmt"
	"time"

	"crm-pharma-core/internal/app/config"
	"crm-pharma-core/internal/infrastructure/database/mongodb"
	"crm-pharma-core/internal/infrastructure/database/postgres"
	"crm-pharma-core/internal/infrastructure/database/redis"
	"crm-pharma-core/internal/infrastructure/database/schema"
	"crm-pharma-core/internal/infrastructure/textgen"
	"crm-pharma-core/internal/modules/system/dto"
	"crm-pharma-core/internal/modules/system/queries"
	"crm-pharma-core/internal/shared/response"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Version surchargée au build par -ldflags
var Version = "0.1.0"

type SchemaReporter interface {
	Status(ctx context.Context) (*schema.Report, error)
}

// PreferenceStore sous-ensemble du client Redis
type PreferenceStore interface {
	GetWithPattern(ctx context.Context, patternName string, identifier ...string) (string, error)
	SetWithPattern(ctx context.Context, patternName string, value interface{}, identifier ...string) error
	DelWithPattern(ctx context.Context, patternName string, identifier ...string) error
}

type healthCheck struct {
	name     string
	optional bool
	check    func(ctx context.Context) error
}

type SystemService struct {
	db          postgres.Querier
	migrator    SchemaReporter
	prefs       PreferenceStore
	checks      []healthCheck
	environment string
	log         *zap.Logger
	now         func() time.Time
}

func NewSystemService(
	db *postgres.Client,
	migrator *schema.Migrator,
	cache *redis.Client,
	mongo *mongodb.Client,
	gen textgen.Generator,
	cfg *config.Config,
	log *zap.Logger,
) *SystemService {
	brokers := cfg.Kafka.Brokers
	checks := []healthCheck{
		{name: "postgres", check: db.HealthCheck},
		{name: "redis", check: cache.HealthCheck},
		{name: "mongodb", optional: true, check: mongo.HealthCheck},
		{name: "kafka", optional: true, check: func(context.Context) error {
			if len(brokers) == 0 {
				return fmt.Errorf("KAFKA_BROKERS non défini, alertes journalisées uniquement")
			}
			return nil
		}},
		{name: "genai", optional: true, check: func(context.Context) error {
			if !gen.Enabled() {
				return textgen.ErrDisabled
			}
			return nil
		}},
	}

	return &SystemService{
		db:          db,
		migrator:    migrator,
		prefs:       cache,
		checks:      checks,
		environment: cfg.Environment,
		log:         log.Named("system"),
		now:         time.Now,
	}
}

// GetSystemInfo état des dépendances, du schéma et volumétrie
func (s *SystemService) GetSystemInfo(ctx context.Context) (*dto.SystemInfoResponse, error) {
	info := &dto.SystemInfoResponse{
		Application:   "crm-pharma-core",
		Version:       Version,
		Environnement: s.environment,
		Services:      s.checkServices(ctx),
		GenereLe:      s.now(),
	}

	report, err := s.migrator.Status(ctx)
	if err != nil {
		s.log.Warn("statut des migrations indisponible", zap.Error(err))
	} else {
		info.Schema = report
	}

	var o dto.Overview
	err = s.db.QueryRow(ctx, queries.SystemQueries.Overview).Scan(
		&o.Utilisateurs, &o.Prospects, &o.Clients, &o.Missions, &o.Installations,
	)
	if err != nil {
		// schéma en retard : la volumétrie est simplement omise
		s.log.Warn("volumétrie indisponible", zap.Error(err))
	} else {
		info.Volumetrie = &o
	}

	info.Alertes = GenerateAlertes(info)
	return info, nil
}

func (s *SystemService) checkServices(ctx context.Context) []dto.ServiceStatus {
	out := make([]dto.ServiceStatus, 0, len(s.checks))
	for _, hc := range s.checks {
		cctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := hc.check(cctx)
		cancel()

		st := dto.ServiceStatus{Nom: hc.name, Disponible: err == nil, Optionnel: hc.optional}
		if err != nil {
			st.Detail = err.Error()
		}
		out = append(out, st)
	}
	return out
}

// GenerateAlertes alertes d'en-tête dérivées de l'état système
func GenerateAlertes(info *dto.SystemInfoResponse) []dto.Alerte {
	alertes := []dto.Alerte{}

	for _, svc := range info.Services {
		if svc.Disponible {
			continue
		}
		if svc.Optionnel {
			alertes = append(alertes, dto.Alerte{
				Type:    "info",
				Code:    "SERVICE_DEGRADED",
				Message: fmt.Sprintf("%s indisponible: fonctionnalités associées désactivées", svc.Nom),
			})
			continue
		}
		alertes = append(alertes, dto.Alerte{
			Type:    "critical",
			Code:    "SERVICE_DOWN",
			Message: fmt.Sprintf("%s indisponible", svc.Nom),
		})
	}

	switch {
	case info.Schema == nil:
		alertes = append(alertes, dto.Alerte{
			Type:    "warning",
			Code:    "SCHEMA_UNKNOWN",
			Message: "Impossible de lire l'état des migrations",
		})
	case !info.Schema.UpToDate:
		alertes = append(alertes, dto.Alerte{
			Type:    "warning",
			Code:    "SCHEMA_MIGRATION_REQUIRED",
			Message: fmt.Sprintf("%d migration(s) en attente (version %s)", info.Schema.Pending, info.Schema.LatestVersion),
		})
	}

	return alertes
}

// Schema rapport des migrations ; la bannière reste masquée tant qu'aucune version plus récente n'apparaît
func (s *SystemService) Schema(ctx context.Context, userID string) (*dto.SchemaStatus, error) {
	report, err := s.migrator.Status(ctx)
	if err != nil {
		return nil, err
	}

	pref, err := s.Banner(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.SchemaStatus{
		Report:           report,
		AfficherBanniere: !report.UpToDate && pref.VersionMasquee != report.LatestVersion,
	}, nil
}

func (s *SystemService) Banner(ctx context.Context, userID string) (*dto.BannerPreference, error) {
	version, err := s.prefs.GetWithPattern(ctx, redis.PatternMigrationBanner, userID)
	if redis.IsNil(err) {
		return &dto.BannerPreference{}, nil
	}
	if err != nil {
		return nil, response.NewInternal("Lecture de la préférence impossible", err)
	}
	return &dto.BannerPreference{Masquee: true, VersionMasquee: version}, nil
}

// SetBanner masque la bannière pour la dernière version connue, ou la réaffiche
func (s *SystemService) SetBanner(ctx context.Context, userID string, masquee bool) (*dto.BannerPreference, error) {
	if !masquee {
		if err := s.prefs.DelWithPattern(ctx, redis.PatternMigrationBanner, userID); err != nil {
			return nil, response.NewInternal("Enregistrement de la préférence impossible", err)
		}
		return &dto.BannerPreference{}, nil
	}

	report, err := s.migrator.Status(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.prefs.SetWithPattern(ctx, redis.PatternMigrationBanner, report.LatestVersion, userID); err != nil {
		return nil, response.NewInternal("Enregistrement de la préférence impossible", err)
	}
	return &dto.BannerPreference{Masquee: true, VersionMasquee: report.LatestVersion}, nil
}

// CheckTables existence et nombre de lignes des tables requises
func CheckTables(ctx context.Context, q postgres.Querier) ([]dto.TableStatus, error) {
	out := make([]dto.TableStatus, 0, len(queries.RequiredTables))
	for _, table := range queries.RequiredTables {
		st := dto.TableStatus{Table: table}
		if err := q.QueryRow(ctx, queries.SystemQueries.TableExists, table).Scan(&st.Existe); err != nil {
			return nil, fmt.Errorf("vérification table %s: %w", table, err)
		}
		if st.Existe {
			sql := fmt.Sprintf(queries.SystemQueries.CountRows, pgx.Identifier{table}.Sanitize())
			if err := q.QueryRow(ctx, sql).Scan(&st.Lignes); err != nil {
				return nil, fmt.Errorf("comptage table %s: %w", table, err)
			}
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *SystemService) Tables(ctx context.Context) ([]dto.TableStatus, error) {
	return CheckTables(ctx, s.db)
}
