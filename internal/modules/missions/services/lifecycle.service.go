package services

import (
	"context"
	"strings"
	"time"

	"crm-pharma-core/internal/domain/mission"
	"crm-pharma-core/internal/infrastructure/database/mongodb"
	"crm-pharma-core/internal/infrastructure/database/postgres"
	"crm-pharma-core/internal/infrastructure/events"
	"crm-pharma-core/internal/modules/missions/dto"
	"crm-pharma-core/internal/modules/missions/queries"
	"crm-pharma-core/internal/shared/permissions"

	"go.uber.org/zap"
)

// Start démarrage par le chef de mission
func (s *MissionService) Start(ctx context.Context, actor permissions.Actor, id string) (*dto.MissionDetail, error) {
	return s.lifecycle(ctx, actor, id, permissions.ActionStart, "mission_started", func(m *mission.Mission, now time.Time) error {
		return m.Start(now)
	})
}

// Close clôture côté chef ; le commentaire est obligatoire
func (s *MissionService) Close(ctx context.Context, actor permissions.Actor, id string, req dto.CloseRequest) (*dto.MissionDetail, error) {
	if err := requireComment(req.Commentaire); err != nil {
		return nil, lifecycleError(err)
	}
	return s.lifecycle(ctx, actor, id, permissions.ActionClose, "mission_closed", func(m *mission.Mission, now time.Time) error {
		return m.CloseByChef(req.Commentaire, req.Avancement, now)
	})
}

// Validate clôture définitive par un administrateur, irréversible
func (s *MissionService) Validate(ctx context.Context, actor permissions.Actor, id string, req dto.ValidateRequest) (*dto.MissionDetail, error) {
	if !actor.IsAdmin() {
		return nil, permissions.Check(actor, &mission.Mission{}, permissions.ActionValidate)
	}
	if err := requireComment(req.Commentaire); err != nil {
		return nil, lifecycleError(err)
	}
	if !req.Confirm {
		return nil, lifecycleError(mission.ErrConfirmationMissing)
	}
	// pour un admin, les refus liés à l'état de clôture remontent en 409
	return s.lifecycle(ctx, actor, id, permissions.ActionView, "mission_validated", func(m *mission.Mission, now time.Time) error {
		return m.ValidateByAdmin(actor.UserID, req.Commentaire, req.Confirm, now)
	})
}

func (s *MissionService) lifecycle(ctx context.Context, actor permissions.Actor, id string, action permissions.Action, event string, op func(*mission.Mission, time.Time) error) (*dto.MissionDetail, error) {
	prev, cur, err := s.mutate(ctx, actor, id, action, func(tx *postgres.Transaction, m *mission.Mission, now time.Time) error {
		if err := op(m, now); err != nil {
			return err
		}
		return tx.QueryRow(ctx, queries.MissionQueries.UpdateLifecycle, id,
			string(m.Statut), m.Avancement, m.DateDemarrage,
			m.ClotureeParChef, m.DateClotChef, m.CommentaireClotChef,
			m.ClotureeDefinitive, m.DateClotDefinitive, m.CommentaireClotAdmin,
			m.ValideePar,
		).Scan(&m.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, prev, cur)
	s.record(ctx, actor, id, event, map[string]interface{}{
		"from": string(prev.Statut),
		"to":   string(cur.Statut),
	})
	return s.detail(actor, cur), nil
}

func requireComment(comment string) error {
	if strings.TrimSpace(comment) == "" {
		return mission.ErrClosureCommentMissing
	}
	return nil
}

// notify publie les alertes issues du changement d'état ; extra force des alertes supplémentaires
func (s *MissionService) notify(ctx context.Context, prev, cur *mission.Mission, extra ...mission.AlertType) {
	if s.publisher == nil {
		return
	}

	admins, err := adminIDs(ctx, s.db)
	if err != nil {
		s.log.Warn("liste des administrateurs indisponible", zap.Error(err))
	}

	now := s.now()
	alerts := mission.AlertsFor(prev, cur, admins, now)
	for _, t := range extra {
		alerts = append(alerts, mission.NewAlert(t, cur, admins, now))
	}
	if len(alerts) == 0 {
		return
	}

	batch := make([]events.Event, 0, len(alerts))
	for _, a := range alerts {
		batch = append(batch, events.Event{Type: string(a.Type), Key: cur.ID, Payload: a, OccurredAt: a.CreatedAt})
	}
	if err := s.publisher.Publish(ctx, batch...); err != nil {
		s.log.Warn("alertes mission non publiées", zap.String("mission_id", cur.ID), zap.Error(err))
	}
}

func (s *MissionService) record(ctx context.Context, actor permissions.Actor, id, event string, details map[string]interface{}) {
	err := s.journal.Record(ctx, mongodb.KindMission, mongodb.Entry{
		EntityID:  id,
		Event:     event,
		ActorID:   actor.UserID,
		ActorRole: string(actor.Role),
		Details:   details,
	})
	if err != nil {
		s.log.Warn("journal mission non écrit", zap.String("mission_id", id), zap.String("event", event), zap.Error(err))
	}
}
