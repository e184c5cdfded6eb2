package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crm-pharma-core/internal/domain/prospect"
	"crm-pharma-core/internal/domain/wilaya"
	"crm-pharma-core/internal/infrastructure/database/mongodb"
	"crm-pharma-core/internal/infrastructure/database/postgres"
	"crm-pharma-core/internal/modules/prospects/dto"
	"crm-pharma-core/internal/modules/prospects/queries"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var errNotFound = response.NewNotFound("PROSPECT_NOT_FOUND", "Prospect introuvable")

type ProspectService struct {
	db        postgres.Querier
	txManager postgres.TxRunner
	journal   *mongodb.Journal
	log       *zap.Logger
	now       func() time.Time
}

func NewProspectService(
	db postgres.Querier,
	txManager postgres.TxRunner,
	journal *mongodb.Journal,
	log *zap.Logger,
) *ProspectService {
	return &ProspectService{
		db:        db,
		txManager: txManager,
		journal:   journal,
		log:       log.Named("prospects"),
		now:       time.Now,
	}
}

// List le filtre statut est appliqué en base, la recherche texte en mémoire
func (s *ProspectService) List(ctx context.Context, filters dto.ListFilters) ([]prospect.Prospect, error) {
	list, err := LoadProspects(ctx, s.db, filters.Statut)
	if err != nil {
		return nil, err
	}
	return prospect.Search(list, filters.Filter()), nil
}

func (s *ProspectService) Stats(ctx context.Context) (prospect.Stats, error) {
	list, err := s.List(ctx, dto.ListFilters{})
	if err != nil {
		return prospect.Stats{}, err
	}
	return prospect.ComputeStats(list), nil
}

func (s *ProspectService) Get(ctx context.Context, id string) (*prospect.Prospect, error) {
	p, err := LoadProspect(ctx, s.db, queries.ProspectQueries.Get, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errNotFound
	}
	return p, err
}

func (s *ProspectService) Create(ctx context.Context, actor permissions.Actor, req dto.ProspectRequest) (*prospect.Prospect, error) {
	if !permissions.CanManageProspects(actor) {
		return nil, response.NewForbidden("CANNOT_MANAGE_PROSPECTS", "Vous n'avez pas la permission de créer un prospect")
	}

	p := fromRequest(req)
	p.Statut = prospect.StatusProspect
	if p.Temperature == "" {
		p.Temperature = prospect.TemperatureFroid
	}
	if errs := validate(p); errs != nil {
		return nil, response.NewValidation(errs)
	}

	now := s.now()
	err := s.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		err := tx.QueryRow(ctx, queries.ProspectQueries.Create,
			p.RaisonSociale, p.Secteur, p.Contact, p.Telephone, p.Email, p.Wilaya, p.Adresse,
			string(p.Statut), string(p.Temperature), p.CommercialAssigne, p.Notes, actor.UserID,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("création prospect: %w", err)
		}
		p.CreatedBy = actor.UserID

		entry := prospect.HistoryEntry{
			ProspectID:  p.ID,
			Action:      prospect.ActionCreation,
			Description: "Prospect créé",
			CreatedBy:   actorLabel(actor),
			CreatedAt:   now,
		}
		return InsertHistory(ctx, tx, &entry)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, actor, p.ID, "prospect_created", map[string]interface{}{"raison_sociale": p.RaisonSociale})
	return p, nil
}

// Update PUT complet ; le statut passe par ChangeStatus
func (s *ProspectService) Update(ctx context.Context, actor permissions.Actor, id string, req dto.ProspectRequest) (*prospect.Prospect, error) {
	if !permissions.CanManageProspects(actor) {
		return nil, response.NewForbidden("CANNOT_MANAGE_PROSPECTS", "Vous n'avez pas la permission de modifier ce prospect")
	}

	candidate := fromRequest(req)
	if errs := validate(candidate); errs != nil {
		return nil, response.NewValidation(errs)
	}

	now := s.now()
	var updated *prospect.Prospect
	var statusChanged bool
	err := s.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		p, err := LoadProspect(ctx, tx, queries.ProspectQueries.GetForUpdate, id)
		if errors.Is(err, pgx.ErrNoRows) {
			return errNotFound
		}
		if err != nil {
			return err
		}

		previous := p.Statut
		if req.Statut != "" {
			if err := p.ChangeStatus(prospect.Status(req.Statut), permissions.CanChangeClientStatus(actor), now); err != nil {
				return statusError(err)
			}
		}
		statusChanged = previous != p.Statut

		candidate.ID = p.ID
		candidate.Statut = p.Statut
		candidate.HistoriqueActions = p.HistoriqueActions
		candidate.CreatedBy = p.CreatedBy
		candidate.CreatedAt = p.CreatedAt
		if candidate.Temperature == "" {
			candidate.Temperature = p.Temperature
		}

		err = tx.QueryRow(ctx, queries.ProspectQueries.Update, id,
			candidate.RaisonSociale, candidate.Secteur, candidate.Contact, candidate.Telephone,
			candidate.Email, candidate.Wilaya, candidate.Adresse, string(candidate.Statut),
			string(candidate.Temperature), candidate.CommercialAssigne, candidate.Notes,
		).Scan(&candidate.UpdatedAt)
		if err != nil {
			return fmt.Errorf("modification prospect: %w", err)
		}

		entry := prospect.HistoryEntry{
			ProspectID:  id,
			Action:      prospect.ActionModification,
			Description: "Fiche modifiée",
			CreatedBy:   actorLabel(actor),
			CreatedAt:   now,
		}
		updated = candidate
		if prospect.Record(candidate, entry, now).Skipped {
			return nil
		}
		return InsertHistory(ctx, tx, &entry)
	})
	if err != nil {
		return nil, err
	}

	details := map[string]interface{}{}
	if statusChanged {
		details["statut"] = string(updated.Statut)
	}
	s.record(ctx, actor, id, "prospect_updated", details)
	return updated, nil
}

// Delete suppression définitive, administrateurs uniquement
func (s *ProspectService) Delete(ctx context.Context, actor permissions.Actor, id string) error {
	if !permissions.CanDeleteProspect(actor) {
		return response.NewForbidden("CANNOT_DELETE_PROSPECT", "Seul un Administrateur peut supprimer un prospect")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.db.Exec(ctx, queries.ProspectQueries.Delete, id); err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return response.NewConflict("PROSPECT_HAS_MISSIONS", errors.New("ce prospect est rattaché à des missions"))
		}
		return fmt.Errorf("suppression prospect: %w", err)
	}

	s.record(ctx, actor, id, "prospect_deleted", nil)
	return nil
}

// Convert prospect -> client actif ; l'historique existant est conservé
func (s *ProspectService) Convert(ctx context.Context, actor permissions.Actor, id string, req dto.ConvertRequest) (*dto.ConvertResponse, error) {
	if !permissions.CanManageProspects(actor) {
		return nil, response.NewForbidden("CANNOT_CONVERT_PROSPECT", "Vous n'avez pas la permission de convertir ce prospect")
	}
	if !req.Confirm {
		return nil, response.NewInvalid("CONFIRMATION_REQUIRED", prospect.ErrConfirmationMissing)
	}

	now := s.now()
	var result dto.ConvertResponse
	err := s.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		p, err := LoadProspect(ctx, tx, queries.ProspectQueries.GetForUpdate, id)
		if errors.Is(err, pgx.ErrNoRows) {
			return errNotFound
		}
		if err != nil {
			return err
		}

		if err := p.Convert(req.Confirm, now); err != nil {
			return statusError(err)
		}
		if err := tx.Exec(ctx, queries.ProspectQueries.UpdateStatus, id, string(p.Statut), string(p.Temperature)); err != nil {
			return fmt.Errorf("conversion prospect: %w", err)
		}

		entry := prospect.ConversionEntry(id, actorLabel(actor), now)
		if err := InsertHistory(ctx, tx, &entry); err != nil {
			return err
		}
		result = dto.ConvertResponse{Prospect: p, Entry: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, actor, id, "prospect_converted", nil)
	return &result, nil
}

func (s *ProspectService) Journal(ctx context.Context, actor permissions.Actor, id string) (*dto.JournalResponse, error) {
	if !permissions.CanReadJournal(actor) {
		return nil, response.NewForbidden("CANNOT_READ_JOURNAL", "Seul un Administrateur peut consulter le journal")
	}

	entries, err := s.journal.List(ctx, mongodb.KindProspect, id, 200)
	if errors.Is(err, mongodb.ErrJournalUnavailable) {
		return &dto.JournalResponse{Disponible: false, Entries: []mongodb.Entry{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return &dto.JournalResponse{Disponible: true, Entries: entries}, nil
}

// record écriture best-effort du journal d'audit
func (s *ProspectService) record(ctx context.Context, actor permissions.Actor, id, event string, details map[string]interface{}) {
	err := s.journal.Record(ctx, mongodb.KindProspect, mongodb.Entry{
		EntityID:  id,
		Event:     event,
		ActorID:   actor.UserID,
		ActorRole: string(actor.Role),
		Details:   details,
	})
	if err != nil {
		s.log.Warn("journal prospect non écrit", zap.String("prospect_id", id), zap.String("event", event), zap.Error(err))
	}
}

func fromRequest(req dto.ProspectRequest) *prospect.Prospect {
	return &prospect.Prospect{
		RaisonSociale:     strings.TrimSpace(req.RaisonSociale),
		Secteur:           prospect.NormalizeSecteur(req.Secteur),
		Contact:           strings.TrimSpace(req.Contact),
		Telephone:         prospect.NormalizePhone(req.Telephone),
		Email:             strings.ToLower(strings.TrimSpace(req.Email)),
		Wilaya:            wilaya.Normalize(req.Wilaya),
		Adresse:           strings.TrimSpace(req.Adresse),
		Temperature:       prospect.Temperature(req.Temperature),
		CommercialAssigne: strings.TrimSpace(req.CommercialAssigne),
		Notes:             req.Notes,
	}
}

func validate(p *prospect.Prospect) map[string]string {
	errs := map[string]string{}
	for k, v := range prospect.Validate(p) {
		errs[k] = v
	}
	if p.Wilaya != "" && !wilaya.IsValid(p.Wilaya) {
		errs["wilaya"] = "Wilaya inconnue"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func statusError(err error) error {
	switch {
	case errors.Is(err, prospect.ErrConfirmationMissing):
		return response.NewInvalid("CONFIRMATION_REQUIRED", err)
	case errors.Is(err, prospect.ErrAlreadyClient):
		return response.NewConflict("ALREADY_CLIENT", err)
	case errors.Is(err, prospect.ErrAdminRequired):
		return response.NewForbidden("CANNOT_CHANGE_CLIENT_STATUS", "Seul un Administrateur peut modifier le statut d'un client")
	case errors.Is(err, prospect.ErrStatusChange):
		return response.NewInvalid("INVALID_STATUS_CHANGE", err)
	}
	return err
}

func actorLabel(a permissions.Actor) string {
	if a.Nom != "" {
		return a.Nom
	}
	return a.Email
}
