package services

import (
	"context"
	"errors"
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

type SubscriptionService struct {
	db        postgres.Querier
	txManager postgres.TxRunner
	log       *zap.Logger
	now       func() time.Time
}

func NewSubscriptionService(db postgres.Querier, txManager postgres.TxRunner, log *zap.Logger) *SubscriptionService {
	return &SubscriptionService{
		db:        db,
		txManager: txManager,
		log:       log.Named("abonnements"),
		now:       time.Now,
	}
}

// List recalcule le statut de chaque abonnement à partir de sa date de fin
func (s *SubscriptionService) List(ctx context.Context) ([]billing.Subscription, error) {
	subs, err := LoadSubscriptions(ctx, s.db, "")
	if err != nil {
		return nil, err
	}

	today := s.now()
	for i := range subs {
		if !subs[i].Refresh(today) {
			continue
		}
		if err := s.db.Exec(ctx, queries.SubscriptionQueries.UpdateStatus, subs[i].ID, string(subs[i].Statut)); err != nil {
			s.log.Warn("statut abonnement non persisté", zap.String("abonnement_id", subs[i].ID), zap.Error(err))
		}
	}
	return subs, nil
}

// Alerts abonnements arrivant à échéance sous 30 jours
func (s *SubscriptionService) Alerts(ctx context.Context) ([]billing.Subscription, error) {
	subs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	alerts := []billing.Subscription{}
	for _, sub := range subs {
		if sub.Statut == billing.SubscriptionEnAlerte {
			alerts = append(alerts, sub)
		}
	}
	return alerts, nil
}

func (s *SubscriptionService) Stats(ctx context.Context) (billing.SubscriptionStats, error) {
	subs, err := s.List(ctx)
	if err != nil {
		return billing.SubscriptionStats{}, err
	}
	return billing.ComputeSubscriptionStats(subs), nil
}

// RunRenewals déclenchement manuel réservé aux administrateurs
func (s *SubscriptionService) RunRenewals(ctx context.Context, actor permissions.Actor) (*dto.RenewalReport, error) {
	if !permissions.CanRunRenewals(actor) {
		return nil, response.NewForbidden("CANNOT_RUN_RENEWALS", "Seul un Administrateur peut lancer les renouvellements")
	}
	return s.Renew(ctx, actorLabel(actor))
}

// Extend renouvelle manuellement le dernier abonnement d'une installation : le suivant
// débute à sa date de fin, pour un an, au même montant
func (s *SubscriptionService) Extend(ctx context.Context, actor permissions.Actor, installationID string) (*billing.Subscription, error) {
	if !permissions.CanRunRenewals(actor) {
		return nil, response.NewForbidden("CANNOT_RUN_RENEWALS", "Seul un Administrateur peut renouveler un abonnement")
	}

	today := s.now()
	var next billing.Subscription
	err := s.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		inst, err := loadInstallation(ctx, tx, queries.InstallationQueries.GetForUpdate, installationID)
		if err != nil {
			return err
		}
		subs, err := LoadSubscriptions(ctx, tx, installationID)
		if err != nil {
			return err
		}
		if len(subs) == 0 {
			return response.NewConflict("NO_SUBSCRIPTION", errors.New("aucun abonnement à renouveler pour cette installation"))
		}

		// trié par date de fin croissante
		latest := subs[len(subs)-1]
		next, err = billing.Renew(&latest, subs, today)
		if errors.Is(err, billing.ErrLiveSubscription) {
			return response.NewConflict("SUBSCRIPTION_EXISTS", err)
		}
		if err != nil {
			return err
		}
		next.Source = billing.SourceRenewal
		if err := insertSubscription(ctx, tx, &next); err != nil {
			return err
		}

		entry := prospect.HistoryEntry{
			ProspectID:  inst.ClientID,
			Action:      prospect.ActionAbonnementAcquisition,
			Description: fmt.Sprintf("Renouvellement %s du %s au %s", inst.ApplicationInstallee, next.DateDebut.Format("02/01/2006"), next.DateFin.Format("02/01/2006")),
			Application: inst.ApplicationInstallee,
			CreatedBy:   actorLabel(actor),
			CreatedAt:   today,
		}
		if _, err := prospectServices.RecordHistory(ctx, tx, &entry, today); err != nil {
			return err
		}
		next.Installation = inst
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("abonnement renouvelé",
		zap.String("installation_id", installationID),
		zap.String("abonnement_id", next.ID),
		zap.Time("date_fin", next.DateFin),
	)
	return &next, nil
}

// Renew crée un abonnement pour chaque acquisition arrivée à anniversaire sans abonnement vivant.
// Chaque installation est traitée dans sa propre transaction : un échec n'arrête pas le passage.
func (s *SubscriptionService) Renew(ctx context.Context, by string) (*dto.RenewalReport, error) {
	installations, err := LoadInstallations(ctx, s.db, "")
	if err != nil {
		return nil, err
	}
	subs, err := LoadSubscriptions(ctx, s.db, "")
	if err != nil {
		return nil, err
	}

	today := s.now()
	byInstallation := groupByInstallation(subs)
	report := &dto.RenewalReport{Abonnements: []billing.Subscription{}}

	for i := range installations {
		inst := &installations[i]
		if inst.Type != billing.TypeAcquisition {
			continue
		}
		report.Examinees++
		if !billing.RenewalDue(inst, byInstallation[inst.ID], today) {
			continue
		}

		sub, err := s.renewOne(ctx, inst, by, today)
		if err != nil {
			s.log.Error("renouvellement échoué", zap.String("installation_id", inst.ID), zap.Error(err))
			report.Erreurs = append(report.Erreurs, fmt.Sprintf("%s: %v", inst.ID, err))
			continue
		}
		report.Renouvelees++
		report.Abonnements = append(report.Abonnements, *sub)
	}

	s.log.Info("renouvellement des abonnements terminé",
		zap.Int("examinees", report.Examinees),
		zap.Int("renouvelees", report.Renouvelees),
		zap.Int("erreurs", len(report.Erreurs)),
	)
	return report, nil
}

func (s *SubscriptionService) renewOne(ctx context.Context, inst *billing.Installation, by string, today time.Time) (*billing.Subscription, error) {
	sub := billing.AutoRenewal(inst, today)
	err := s.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		// relecture sous verrou : un autre passage a pu renouveler entre-temps
		if _, err := loadInstallation(ctx, tx, queries.InstallationQueries.GetForUpdate, inst.ID); err != nil {
			return err
		}
		existing, err := LoadSubscriptions(ctx, tx, inst.ID)
		if err != nil {
			return err
		}
		if billing.HasLive(existing, today) {
			return response.NewConflict("SUBSCRIPTION_EXISTS", billing.ErrLiveSubscription)
		}

		if err := insertSubscription(ctx, tx, &sub); err != nil {
			return err
		}

		entry := prospect.HistoryEntry{
			ProspectID:  inst.ClientID,
			Action:      prospect.ActionAbonnementAutoRenew,
			Description: fmt.Sprintf("Renouvellement automatique %s jusqu'au %s", inst.ApplicationInstallee, sub.DateFin.Format("02/01/2006")),
			Application: inst.ApplicationInstallee,
			CreatedBy:   by,
			CreatedAt:   today,
		}
		_, err = prospectServices.RecordHistory(ctx, tx, &entry, today)
		return err
	})
	if err != nil {
		return nil, err
	}
	sub.Installation = inst
	return &sub, nil
}
