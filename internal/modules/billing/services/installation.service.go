package services

import (
	"context"
	"fmt"
	"time"

	"crm-pharma-core/internal/domain/billing"
	"crm-pharma-core/internal/domain/prospect"
	"crm-pharma-core/internal/infrastructure/database/postgres"
	"crm-pharma-core/internal/modules/billing/dto"
	"crm-pharma-core/internal/modules/billing/queries"
	prospectServices "crm-pharma-core/internal/modules/prospects/services"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"

	"go.uber.org/zap"
)

type InstallationService struct {
	db        postgres.Querier
	txManager postgres.TxRunner
	log       *zap.Logger
	now       func() time.Time
}

func NewInstallationService(db postgres.Querier, txManager postgres.TxRunner, log *zap.Logger) *InstallationService {
	return &InstallationService{
		db:        db,
		txManager: txManager,
		log:       log.Named("installations"),
		now:       time.Now,
	}
}

func (s *InstallationService) List(ctx context.Context, filters dto.ListFilters) ([]billing.Installation, error) {
	return LoadInstallations(ctx, s.db, filters.ClientID)
}

func (s *InstallationService) Stats(ctx context.Context) (billing.InstallationStats, error) {
	list, err := LoadInstallations(ctx, s.db, "")
	if err != nil {
		return billing.InstallationStats{}, err
	}
	return billing.ComputeInstallationStats(list), nil
}

// Get installation, ses paiements, ses abonnements et le reste à payer
func (s *InstallationService) Get(ctx context.Context, id string) (*dto.InstallationDetail, error) {
	inst, err := loadInstallation(ctx, s.db, queries.InstallationQueries.Get, id)
	if err != nil {
		return nil, err
	}

	payments, err := LoadPayments(ctx, s.db, inst.ClientID)
	if err != nil {
		return nil, err
	}
	own := []billing.Payment{}
	for _, p := range payments {
		if p.InstallationID == id {
			own = append(own, p)
		}
	}

	subs, err := LoadSubscriptions(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	today := s.now()
	for i := range subs {
		subs[i].Refresh(today)
	}

	return &dto.InstallationDetail{
		Installation: inst,
		ResteAPayer:  billing.Remaining(inst, own),
		Paiements:    own,
		Abonnements:  subs,
	}, nil
}

// Create enregistre l'installation, son abonnement éventuel et l'historique du client
// dans une seule transaction ; un prospect devient client actif.
func (s *InstallationService) Create(ctx context.Context, actor permissions.Actor, req dto.InstallationRequest) (*dto.InstallationResponse, error) {
	if !permissions.CanManageBilling(actor) {
		return nil, errBillingForbidden
	}
	inst := req.Installation(actor.UserID)
	if errs := billing.ValidateInstallation(inst); errs != nil {
		return nil, response.NewValidation(errs)
	}

	now := s.now()
	result := &dto.InstallationResponse{Installation: inst}

	err := s.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		day := inst.DateInstallation
		entry := prospect.HistoryEntry{
			ProspectID:  inst.ClientID,
			Action:      prospect.ActionInstallation,
			Description: fmt.Sprintf("Installation %s (%s)", inst.ApplicationInstallee, inst.Type),
			Application: inst.ApplicationInstallee,
			ChefMission: actorLabel(actor),
			DateDebut:   &day,
			DateFin:     &day,
			CreatedBy:   actorLabel(actor),
			CreatedAt:   now,
		}
		outcome, err := prospectServices.RecordHistory(ctx, tx, &entry, now)
		if err != nil {
			return err
		}
		result.ClientConverti = outcome.Converted
		if !outcome.Skipped {
			result.Historique = &entry
		}

		err = tx.QueryRow(ctx, queries.InstallationQueries.Create,
			inst.ClientID, inst.ApplicationID, inst.ApplicationInstallee, string(inst.Type), inst.Montant,
			inst.MontantAbonnement, inst.DateInstallation, string(inst.Statut), inst.MissionID, inst.CreatedBy,
		).Scan(&inst.ID, &inst.CreatedAt, &inst.UpdatedAt)
		if err != nil {
			return fmt.Errorf("création installation: %w", err)
		}

		if inst.Type != billing.TypeAbonnement {
			return nil
		}
		sub, err := billing.ForInstallation(inst, nil, now)
		if err != nil {
			return response.NewConflict("SUBSCRIPTION_EXISTS", err)
		}
		if err := insertSubscription(ctx, tx, &sub); err != nil {
			return err
		}
		result.Abonnement = &sub

		acq := prospect.HistoryEntry{
			ProspectID:  inst.ClientID,
			Action:      prospect.ActionAbonnementAcquisition,
			Description: fmt.Sprintf("Abonnement %s jusqu'au %s", inst.ApplicationInstallee, sub.DateFin.Format("02/01/2006")),
			Application: inst.ApplicationInstallee,
			CreatedBy:   actorLabel(actor),
			CreatedAt:   now,
		}
		_, err = prospectServices.RecordHistory(ctx, tx, &acq, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("installation créée",
		zap.String("installation_id", inst.ID),
		zap.String("client_id", inst.ClientID),
		zap.Bool("client_converti", result.ClientConverti),
	)
	return result, nil
}

// Update le client d'une installation ne change pas
func (s *InstallationService) Update(ctx context.Context, actor permissions.Actor, id string, req dto.InstallationRequest) (*billing.Installation, error) {
	if !permissions.CanManageBilling(actor) {
		return nil, errBillingForbidden
	}
	next := req.Installation(actor.UserID)
	errs := billing.ValidateInstallation(next)
	delete(errs, "client_id")
	if len(errs) > 0 {
		return nil, response.NewValidation(errs)
	}

	var inst *billing.Installation
	err := s.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		current, err := loadInstallation(ctx, tx, queries.InstallationQueries.GetForUpdate, id)
		if err != nil {
			return err
		}
		next.ID = current.ID
		next.ClientID = current.ClientID
		next.ClientNom = current.ClientNom
		next.CreatedBy = current.CreatedBy
		next.CreatedAt = current.CreatedAt

		err = tx.QueryRow(ctx, queries.InstallationQueries.Update, id,
			next.ApplicationID, next.ApplicationInstallee, string(next.Type), next.Montant,
			next.MontantAbonnement, next.DateInstallation, string(next.Statut), next.MissionID,
		).Scan(&next.UpdatedAt)
		if err != nil {
			return fmt.Errorf("modification installation: %w", err)
		}
		inst = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inst, nil
}

// Delete supprime aussi abonnements et paiements de l'installation
func (s *InstallationService) Delete(ctx context.Context, actor permissions.Actor, id string) error {
	if !permissions.CanManageBilling(actor) {
		return errBillingForbidden
	}
	if _, err := loadInstallation(ctx, s.db, queries.InstallationQueries.Get, id); err != nil {
		return err
	}
	if err := s.db.Exec(ctx, queries.InstallationQueries.Delete, id); err != nil {
		return fmt.Errorf("suppression installation: %w", err)
	}
	s.log.Info("installation supprimée", zap.String("installation_id", id), zap.String("by", actor.UserID))
	return nil
}

func actorLabel(a permissions.Actor) string {
	if a.Nom != "" {
		return a.Nom
	}
	return a.Email
}
