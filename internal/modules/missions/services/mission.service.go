package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crm-pharma-core/internal/domain/mission"
	"crm-pharma-core/internal/infrastructure/database/mongodb"
	"crm-pharma-core/internal/infrastructure/database/postgres"
	"crm-pharma-core/internal/infrastructure/events"
	"crm-pharma-core/internal/modules/missions/dto"
	"crm-pharma-core/internal/modules/missions/queries"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var errNotFound = response.NewNotFound("MISSION_NOT_FOUND", "Mission introuvable")

type MissionService struct {
	db        postgres.Querier
	txManager postgres.TxRunner
	journal   *mongodb.Journal
	publisher events.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewMissionService(
	db postgres.Querier,
	txManager postgres.TxRunner,
	journal *mongodb.Journal,
	publisher events.Publisher,
	log *zap.Logger,
) *MissionService {
	return &MissionService{
		db:        db,
		txManager: txManager,
		journal:   journal,
		publisher: publisher,
		log:       log.Named("missions"),
		now:       time.Now,
	}
}

// List missions visibles par l'acteur, filtrées par statut et recherche texte
func (s *MissionService) List(ctx context.Context, actor permissions.Actor, filters dto.ListFilters) ([]dto.MissionView, error) {
	list, err := LoadMissions(ctx, s.db, actor.IsAdmin(), actor.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := []dto.MissionView{}
	for i := range list {
		m := &list[i]
		if !m.Statut.MatchesFilter(filters.Statut) || !matches(m, filters.Query) {
			continue
		}
		views = append(views, dto.NewMissionView(m, now))
	}
	return views, nil
}

// Delayed échéance dépassée, mission non clôturée
func (s *MissionService) Delayed(ctx context.Context, actor permissions.Actor) ([]dto.MissionView, error) {
	list, err := LoadMissions(ctx, s.db, actor.IsAdmin(), actor.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := []dto.MissionView{}
	for i := range list {
		if mission.IsDelayed(&list[i], now) {
			views = append(views, dto.NewMissionView(&list[i], now))
		}
	}
	return views, nil
}

// Get détail ; refus sans aucune donnée de mission si l'acteur n'y a pas accès
func (s *MissionService) Get(ctx context.Context, actor permissions.Actor, id string) (*dto.MissionDetail, error) {
	m, err := s.visible(ctx, actor, id, permissions.ActionView)
	if err != nil {
		return nil, err
	}
	return &dto.MissionDetail{
		MissionView: dto.NewMissionView(m, s.now()),
		Actions:     permissions.AvailableActions(actor, m),
	}, nil
}

func (s *MissionService) Actions(ctx context.Context, actor permissions.Actor, id string) (*dto.ActionsResponse, error) {
	m, err := s.visible(ctx, actor, id, permissions.ActionView)
	if err != nil {
		return nil, err
	}
	return &dto.ActionsResponse{MissionID: m.ID, Actions: permissions.AvailableActions(actor, m)}, nil
}

// Create les erreurs de saisie sont retournées avant tout accès base
func (s *MissionService) Create(ctx context.Context, actor permissions.Actor, req dto.CreateMissionRequest) (*dto.MissionDetail, error) {
	if err := permissions.Check(actor, &mission.Mission{}, permissions.ActionCreate); err != nil {
		return nil, err
	}
	if errs := mission.ValidateDraft(req.Draft()); errs != nil {
		return nil, response.NewValidation(errs)
	}

	now := s.now()
	m := &mission.Mission{
		Titre:              strings.TrimSpace(req.Titre),
		Description:        strings.TrimSpace(req.Description),
		ClientID:           req.ClientID,
		Type:               mission.Type(req.Type),
		Wilaya:             strings.TrimSpace(req.Wilaya),
		DateDebut:          *req.DateDebut,
		DateFinPrevue:      *req.DateFinPrevue,
		Priorite:           mission.Priority(req.Priorite),
		BudgetAlloue:       req.BudgetAlloue,
		Statut:             mission.StatusCreee,
		ChefMissionID:      req.ChefMissionID,
		AccompagnateursIDs: dedupe(req.AccompagnateursIDs),
		CreatedBy:          actor.UserID,
	}
	if m.Priorite == "" {
		m.Priorite = mission.PriorityMoyenne
	}
	if req.Planifiee {
		if err := m.Plan(now); err != nil {
			return nil, err
		}
	}

	err := s.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		if err := s.checkReferences(ctx, tx, m); err != nil {
			return err
		}
		return tx.QueryRow(ctx, queries.MissionQueries.Create,
			m.Titre, m.Description, m.ClientID, string(m.Type), m.Wilaya, m.DateDebut, m.DateFinPrevue,
			string(m.Priorite), m.BudgetAlloue, string(m.Statut), m.ChefMissionID, m.AccompagnateursIDs, m.CreatedBy,
		).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.Get(ctx, actor, m.ID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, nil, &created.Mission)
	s.record(ctx, actor, m.ID, "mission_created", map[string]interface{}{"titre": m.Titre})
	return created, nil
}

// Update chef et accompagnateurs sont immuables après la création
func (s *MissionService) Update(ctx context.Context, actor permissions.Actor, id string, req dto.UpdateMissionRequest) (*dto.MissionDetail, error) {
	errs := map[string]string{}
	if req.ChefMissionID != nil {
		errs["chef_mission_id"] = "Le Chef de Mission ne peut pas être modifié"
	}
	if req.AccompagnateursIDs != nil {
		errs["accompagnateurs_ids"] = "Les accompagnateurs ne peuvent pas être modifiés"
	}
	for k, v := range mission.ValidateSchedule(req.DateDebut, req.DateFinPrevue) {
		errs[k] = v
	}
	if !req.BudgetAlloue.IsPositive() {
		errs["budget_alloue"] = "Le budget doit être supérieur à 0"
	}
	if !mission.Type(req.Type).IsValid() {
		errs["type_mission"] = "Type de mission invalide"
	}
	if req.Priorite != "" && !mission.Priority(req.Priorite).IsValid() {
		errs["priorite"] = "Priorité invalide"
	}
	if len(errs) > 0 {
		return nil, response.NewValidation(errs)
	}

	prev, cur, err := s.mutate(ctx, actor, id, permissions.ActionEdit, func(tx *postgres.Transaction, m *mission.Mission, now time.Time) error {
		m.Titre = strings.TrimSpace(req.Titre)
		m.Description = strings.TrimSpace(req.Description)
		m.Type = mission.Type(req.Type)
		m.Wilaya = strings.TrimSpace(req.Wilaya)
		m.DateDebut = req.DateDebut
		m.DateFinPrevue = req.DateFinPrevue
		if req.Priorite != "" {
			m.Priorite = mission.Priority(req.Priorite)
		}
		m.BudgetAlloue = req.BudgetAlloue
		if req.Avancement != nil {
			m.Avancement = mission.ClampAdvancement(*req.Avancement)
		}
		if req.Planifiee != nil && m.Statut.NotStarted() {
			target := mission.StatusCreee
			if *req.Planifiee {
				target = mission.StatusPlanifiee
			}
			if target != m.Statut {
				if !mission.CanTransition(m.Statut, target) {
					return &mission.TransitionError{From: m.Statut, To: target}
				}
				m.Statut = target
			}
		}

		return tx.QueryRow(ctx, queries.MissionQueries.Update, id,
			m.Titre, m.Description, string(m.Type), m.Wilaya, m.DateDebut, m.DateFinPrevue,
			string(m.Priorite), m.BudgetAlloue, m.Avancement, string(m.Statut),
		).Scan(&m.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, prev, cur, mission.AlertModified)
	s.record(ctx, actor, id, "mission_updated", nil)
	return s.detail(actor, cur), nil
}

// Delete admin ou créateur, mission non clôturée
func (s *MissionService) Delete(ctx context.Context, actor permissions.Actor, id string) error {
	m, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := permissions.Check(actor, m, permissions.ActionDelete); err != nil {
		return err
	}
	if err := s.db.Exec(ctx, queries.MissionQueries.Delete, id); err != nil {
		return fmt.Errorf("suppression mission: %w", err)
	}
	s.record(ctx, actor, id, "mission_deleted", map[string]interface{}{"titre": m.Titre})
	return nil
}

func (s *MissionService) UpdateTechnical(ctx context.Context, actor permissions.Actor, id string, req dto.TechnicalRequest) (*dto.MissionDetail, error) {
	_, cur, err := s.mutate(ctx, actor, id, permissions.ActionEditTechnical, func(tx *postgres.Transaction, m *mission.Mission, _ time.Time) error {
		m.Technique = req.Details()
		t := m.Technique
		return tx.QueryRow(ctx, queries.MissionQueries.UpdateTechnical, id,
			t.RapportTechnique, t.ActionsRealisees, t.LogicielsMateriels, t.ProblemesResolutions, t.CommentairesTechniques,
		).Scan(&m.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, id, "mission_technical_updated", nil)
	return s.detail(actor, cur), nil
}

// UpdateFinancial commentaires financiers, mêmes droits que les dépenses
func (s *MissionService) UpdateFinancial(ctx context.Context, actor permissions.Actor, id string, req dto.FinancialRequest) (*dto.MissionDetail, error) {
	_, cur, err := s.mutate(ctx, actor, id, permissions.ActionEditExpenses, func(tx *postgres.Transaction, m *mission.Mission, _ time.Time) error {
		m.CommentairesFinanciers = strings.TrimSpace(req.CommentairesFinanciers)
		return tx.QueryRow(ctx, queries.MissionQueries.UpdateFinancial, id, m.CommentairesFinanciers).Scan(&m.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, id, "mission_financial_updated", nil)
	return s.detail(actor, cur), nil
}

func (s *MissionService) Journal(ctx context.Context, actor permissions.Actor, id string) (*dto.JournalResponse, error) {
	if !permissions.CanReadJournal(actor) {
		return nil, response.NewForbidden("CANNOT_READ_JOURNAL", "Seul un Administrateur peut consulter le journal")
	}

	entries, err := s.journal.List(ctx, mongodb.KindMission, id, 200)
	if errors.Is(err, mongodb.ErrJournalUnavailable) {
		return &dto.JournalResponse{Disponible: false, Entries: []mongodb.Entry{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return &dto.JournalResponse{Disponible: true, Entries: entries}, nil
}

// mutateFunc modifie la mission verrouillée et la persiste dans la transaction
type mutateFunc func(tx *postgres.Transaction, m *mission.Mission, now time.Time) error

// mutate verrouille la mission, vérifie l'action puis applique fn ; retourne l'état avant/après
func (s *MissionService) mutate(ctx context.Context, actor permissions.Actor, id string, action permissions.Action, fn mutateFunc) (*mission.Mission, *mission.Mission, error) {
	now := s.now()
	var prev, cur *mission.Mission

	err := s.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		m, err := loadMission(ctx, tx, queries.MissionQueries.GetForUpdate, id)
		if errors.Is(err, pgx.ErrNoRows) {
			return errNotFound
		}
		if err != nil {
			return err
		}
		if err := permissions.Check(actor, m, action); err != nil {
			return err
		}

		before := *m
		if err := fn(tx, m, now); err != nil {
			return lifecycleError(err)
		}
		prev, cur = &before, m
		return nil
	})
	return prev, cur, err
}

func (s *MissionService) load(ctx context.Context, id string) (*mission.Mission, error) {
	m, err := loadMission(ctx, s.db, queries.MissionQueries.Get, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errNotFound
	}
	return m, err
}

// visible charge la mission et vérifie l'action demandée
func (s *MissionService) visible(ctx context.Context, actor permissions.Actor, id string, action permissions.Action) (*mission.Mission, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := permissions.Check(actor, m, action); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MissionService) detail(actor permissions.Actor, m *mission.Mission) *dto.MissionDetail {
	return &dto.MissionDetail{
		MissionView: dto.NewMissionView(m, s.now()),
		Actions:     permissions.AvailableActions(actor, m),
	}
}

func (s *MissionService) checkReferences(ctx context.Context, q postgres.Querier, m *mission.Mission) error {
	errs := map[string]string{}

	var exists bool
	if err := q.QueryRow(ctx, queries.MissionQueries.ClientExists, m.ClientID).Scan(&exists); err != nil {
		return fmt.Errorf("vérification client: %w", err)
	}
	if !exists {
		errs["client_id"] = "Client introuvable"
	}

	for _, id := range append([]string{m.ChefMissionID}, m.AccompagnateursIDs...) {
		if err := q.QueryRow(ctx, queries.MissionQueries.ActiveUser, id).Scan(&exists); err != nil {
			return fmt.Errorf("vérification utilisateur: %w", err)
		}
		if !exists {
			field := "accompagnateurs_ids"
			if id == m.ChefMissionID {
				field = "chef_mission_id"
			}
			errs[field] = "Utilisateur introuvable ou inactif"
		}
	}

	if len(errs) > 0 {
		return response.NewValidation(errs)
	}
	return nil
}

// lifecycleError traduit les erreurs du cycle de vie en erreurs de service
func lifecycleError(err error) error {
	var transErr *mission.TransitionError
	switch {
	case errors.As(err, &transErr):
		return &response.ServiceError{
			Type:    response.TypeConflict,
			Code:    "INVALID_TRANSITION",
			Message: "Transition de statut non autorisée",
			Details: map[string]interface{}{"from": string(transErr.From), "to": string(transErr.To)},
			Err:     err,
		}
	case errors.Is(err, mission.ErrClosureCommentMissing):
		return response.NewValidation(map[string]string{"commentaire": "Un commentaire de clôture est requis"})
	case errors.Is(err, mission.ErrConfirmationMissing):
		return response.NewInvalid("CONFIRMATION_REQUIRED", err)
	case errors.Is(err, mission.ErrNotClosedByChef):
		return response.NewConflict("NOT_CLOSED_BY_CHEF", err)
	case errors.Is(err, mission.ErrAlreadyFinal):
		return response.NewConflict("ALREADY_VALIDATED", err)
	}
	return err
}

func matches(m *mission.Mission, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, field := range []string{m.Titre, m.ClientNom, m.Wilaya, m.Description} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := map[string]bool{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
