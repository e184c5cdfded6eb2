package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"crm-pharma-core/internal/domain/analysis"
	"crm-pharma-core/internal/domain/billing"
	"crm-pharma-core/internal/domain/mission"
	"crm-pharma-core/internal/domain/prospect"
	"crm-pharma-core/internal/infrastructure/database/postgres"
	"crm-pharma-core/internal/infrastructure/database/redis"
	"crm-pharma-core/internal/infrastructure/textgen"
	"crm-pharma-core/internal/modules/analysis/dto"
	billingServices "crm-pharma-core/internal/modules/billing/services"
	missionServices "crm-pharma-core/internal/modules/missions/services"
	prospectQueries "crm-pharma-core/internal/modules/prospects/queries"
	prospectServices "crm-pharma-core/internal/modules/prospects/services"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DashboardCache sous-ensemble du client Redis
type DashboardCache interface {
	GetWithPattern(ctx context.Context, patternName string, identifier ...string) (string, error)
	SetWithPattern(ctx context.Context, patternName string, value interface{}, identifier ...string) error
}

type AnalysisService struct {
	db    postgres.Querier
	cache DashboardCache
	gen   textgen.Generator
	log   *zap.Logger
	now   func() time.Time
}

func NewAnalysisService(db *postgres.Client, cache *redis.Client, gen textgen.Generator, log *zap.Logger) *AnalysisService {
	return &AnalysisService{
		db:    db,
		cache: cache,
		gen:   gen,
		log:   log.Named("analysis"),
		now:   time.Now,
	}
}

// Missions analyse heuristique des missions visibles par l'acteur
func (s *AnalysisService) Missions(ctx context.Context, actor permissions.Actor) (analysis.Insights, error) {
	list, err := missionServices.LoadMissions(ctx, s.db, actor.IsAdmin(), actor.UserID)
	if err != nil {
		return analysis.Insights{}, err
	}
	return analysis.Generate(list, s.now()), nil
}

func (s *AnalysisService) Mission(ctx context.Context, actor permissions.Actor, id string) (*analysis.MissionReport, error) {
	m, err := missionServices.LoadMission(ctx, s.db, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, response.NewNotFound("MISSION_NOT_FOUND", "Mission introuvable")
	}
	if err != nil {
		return nil, err
	}
	if err := permissions.Check(actor, m, permissions.ActionView); err != nil {
		return nil, err
	}
	report := analysis.Report(m, s.now())
	return &report, nil
}

// Insights analyse heuristique complétée par le modèle de langage quand il est configuré.
// Un échec du modèle devient une notification, jamais une erreur.
func (s *AnalysisService) Insights(ctx context.Context, actor permissions.Actor) (*dto.MissionInsights, error) {
	insights, err := s.Missions(ctx, actor)
	if err != nil {
		return nil, err
	}

	result := &dto.MissionInsights{Insights: insights}
	if s.gen == nil || !s.gen.Enabled() {
		result.Notification = "Insights IA indisponibles: génération de texte non configurée"
		return result, nil
	}

	text, err := s.gen.Generate(ctx, analysis.MissionsPrompt(insights.Performance))
	if err == nil {
		result.AIInsights, err = analysis.ParseAIInsights(text)
	}
	if err != nil {
		s.log.Warn("insights IA indisponibles", zap.Error(err))
		result.Notification = "Insights IA indisponibles: " + err.Error()
	}
	return result, nil
}

// ProspectSummary résumé rédigé d'un prospect et de son historique fusionné
func (s *AnalysisService) ProspectSummary(ctx context.Context, actor permissions.Actor, id string) (*dto.ProspectSummary, error) {
	if !permissions.CanManageProspects(actor) {
		return nil, response.NewForbidden("CANNOT_MANAGE_PROSPECTS", "Vous n'avez pas accès aux résumés de prospects")
	}

	p, err := prospectServices.LoadProspect(ctx, s.db, prospectQueries.ProspectQueries.Get, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, response.NewNotFound("PROSPECT_NOT_FOUND", "Prospect introuvable")
	}
	if err != nil {
		return nil, err
	}

	result := &dto.ProspectSummary{ProspectID: id}
	if s.gen == nil || !s.gen.Enabled() {
		result.Notification = "Résumé IA indisponible: génération de texte non configurée"
		return result, nil
	}

	table, err := prospectServices.ListHistory(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	history := prospect.Merge(id, table, p.HistoriqueActions)

	text, err := s.gen.Generate(ctx, analysis.ProspectPrompt(p, history))
	if err != nil {
		s.log.Warn("résumé IA indisponible", zap.String("prospect_id", id), zap.Error(err))
		result.Notification = "Résumé IA indisponible: " + err.Error()
		return result, nil
	}
	result.Resume = text
	return result, nil
}

// Dashboard agrégats du tableau de bord, mis en cache 60 s par périmètre de visibilité
func (s *AnalysisService) Dashboard(ctx context.Context, actor permissions.Actor) (*dto.Dashboard, error) {
	scope := actor.UserID
	if actor.IsAdmin() {
		scope = "admin"
	}

	if cached, ok := s.cached(ctx, scope); ok {
		return cached, nil
	}

	var (
		missions      []mission.Mission
		prospects     []prospect.Prospect
		installations []billing.Installation
		payments      []billing.Payment
		subs          []billing.Subscription
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		missions, err = missionServices.LoadMissions(gctx, s.db, actor.IsAdmin(), actor.UserID)
		return err
	})
	g.Go(func() (err error) {
		prospects, err = prospectServices.LoadProspects(gctx, s.db, "")
		return err
	})
	g.Go(func() (err error) {
		installations, err = billingServices.LoadInstallations(gctx, s.db, "")
		return err
	})
	g.Go(func() (err error) {
		payments, err = billingServices.LoadPayments(gctx, s.db, "")
		return err
	})
	g.Go(func() (err error) {
		subs, err = billingServices.LoadSubscriptions(gctx, s.db, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now()
	alertes := []billing.Subscription{}
	for i := range subs {
		subs[i].Refresh(now)
		if subs[i].Statut == billing.SubscriptionEnAlerte {
			alertes = append(alertes, subs[i])
		}
	}

	dashboard := &dto.Dashboard{
		Missions:            analysis.Summarize(missions, now),
		Resume:              analysis.Generate(missions, now).Summary,
		Prospects:           prospect.ComputeStats(prospects),
		Installations:       billing.ComputeInstallationStats(installations),
		Paiements:           billing.ComputePaymentStats(payments),
		Abonnements:         billing.ComputeSubscriptionStats(subs),
		AbonnementsEnAlerte: alertes,
		GenereLe:            now,
	}
	s.store(ctx, scope, dashboard)
	return dashboard, nil
}

func (s *AnalysisService) cached(ctx context.Context, scope string) (*dto.Dashboard, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.GetWithPattern(ctx, redis.PatternDashboard, scope)
	if err != nil {
		if !redis.IsNil(err) {
			s.log.Warn("lecture cache dashboard", zap.Error(err))
		}
		return nil, false
	}

	var d dto.Dashboard
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, false
	}
	d.Cache = true
	return &d, true
}

func (s *AnalysisService) store(ctx context.Context, scope string, d *dto.Dashboard) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(d)
	if err != nil {
		return
	}
	if err := s.cache.SetWithPattern(ctx, redis.PatternDashboard, payload, scope); err != nil {
		s.log.Warn("écriture cache dashboard", zap.Error(err))
	}
}
