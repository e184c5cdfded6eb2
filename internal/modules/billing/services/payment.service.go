package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm-pharma-core/internal/domain/billing"
	"crm-pharma-core/internal/infrastructure/database/postgres"
	"crm-pharma-core/internal/modules/billing/dto"
	"crm-pharma-core/internal/modules/billing/queries"
	prospectQueries "crm-pharma-core/internal/modules/prospects/queries"
	prospectServices "crm-pharma-core/internal/modules/prospects/services"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var errClientNotFound = response.NewNotFound("CLIENT_NOT_FOUND", "Client introuvable")

type PaymentService struct {
	db        postgres.Querier
	txManager postgres.TxRunner
	log       *zap.Logger
	now       func() time.Time
}

func NewPaymentService(db postgres.Querier, txManager postgres.TxRunner, log *zap.Logger) *PaymentService {
	return &PaymentService{
		db:        db,
		txManager: txManager,
		log:       log.Named("paiements"),
		now:       time.Now,
	}
}

// List paiements annotés du reste à payer de leur installation
func (s *PaymentService) List(ctx context.Context, filters dto.ListFilters) (*dto.PaymentList, error) {
	payments, err := s.annotated(ctx, filters.ClientID)
	if err != nil {
		return nil, err
	}
	return &dto.PaymentList{Paiements: payments, Stats: billing.ComputePaymentStats(payments)}, nil
}

func (s *PaymentService) ClientPayments(ctx context.Context, clientID string) (*dto.ClientPayments, error) {
	if err := s.clientExists(ctx, clientID); err != nil {
		return nil, err
	}
	payments, err := s.annotated(ctx, clientID)
	if err != nil {
		return nil, err
	}
	installations, err := LoadInstallations(ctx, s.db, clientID)
	if err != nil {
		return nil, err
	}
	return &dto.ClientPayments{
		ClientID:  clientID,
		Paiements: payments,
		Balance:   billing.ClientBalance(installations, payments),
	}, nil
}

// Balance reste à payer d'un client, jamais négatif
func (s *PaymentService) Balance(ctx context.Context, clientID string) (billing.Balance, error) {
	if err := s.clientExists(ctx, clientID); err != nil {
		return billing.Balance{}, err
	}
	installations, err := LoadInstallations(ctx, s.db, clientID)
	if err != nil {
		return billing.Balance{}, err
	}
	payments, err := LoadPayments(ctx, s.db, clientID)
	if err != nil {
		return billing.Balance{}, err
	}
	return billing.ClientBalance(installations, payments), nil
}

// Create le paiement doit viser une installation du même client
func (s *PaymentService) Create(ctx context.Context, actor permissions.Actor, req dto.PaymentRequest) (*billing.Payment, error) {
	if !permissions.CanManageBilling(actor) {
		return nil, errBillingForbidden
	}
	p := req.Payment()
	if errs := billing.ValidatePayment(p); errs != nil {
		return nil, response.NewValidation(errs)
	}

	err := s.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		inst, err := loadInstallation(ctx, tx, queries.InstallationQueries.GetForUpdate, p.InstallationID)
		if err != nil {
			return err
		}
		if inst.ClientID != p.ClientID {
			return response.NewValidation(map[string]string{"installation_id": "L'installation n'appartient pas à ce client"})
		}
		p.ClientNom = inst.ClientNom

		err = tx.QueryRow(ctx, queries.PaymentQueries.Create,
			p.ClientID, p.InstallationID, string(p.Type), p.Montant, string(p.ModePaiement), p.DatePaiement, actor.UserID,
		).Scan(&p.ID, &p.CreatedAt)
		if err != nil {
			return fmt.Errorf("création paiement: %w", err)
		}

		payments, err := LoadPayments(ctx, tx, p.ClientID)
		if err != nil {
			return err
		}
		p.ResteAPayer = billing.Remaining(inst, payments)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("paiement enregistré",
		zap.String("paiement_id", p.ID),
		zap.String("installation_id", p.InstallationID),
		zap.String("montant", p.Montant.String()),
	)
	return p, nil
}

// Update client et installation d'un paiement ne changent pas
func (s *PaymentService) Update(ctx context.Context, actor permissions.Actor, id string, req dto.PaymentRequest) (*billing.Payment, error) {
	if !permissions.CanManageBilling(actor) {
		return nil, errBillingForbidden
	}
	next := req.Payment()
	errs := billing.ValidatePayment(next)
	delete(errs, "client_id")
	delete(errs, "installation_id")
	if len(errs) > 0 {
		return nil, response.NewValidation(errs)
	}

	var p *billing.Payment
	err := s.txManager.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		current, err := loadPayment(ctx, tx, id)
		if err != nil {
			return err
		}
		current.Type = next.Type
		current.Montant = next.Montant
		current.ModePaiement = next.ModePaiement
		current.DatePaiement = next.DatePaiement

		err = tx.Exec(ctx, queries.PaymentQueries.Update, id,
			string(current.Type), current.Montant, string(current.ModePaiement), current.DatePaiement)
		if err != nil {
			return fmt.Errorf("modification paiement: %w", err)
		}

		inst, err := loadInstallation(ctx, tx, queries.InstallationQueries.Get, current.InstallationID)
		if err != nil {
			return err
		}
		payments, err := LoadPayments(ctx, tx, current.ClientID)
		if err != nil {
			return err
		}
		current.ResteAPayer = billing.Remaining(inst, payments)
		p = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PaymentService) Delete(ctx context.Context, actor permissions.Actor, id string) error {
	if !permissions.CanManageBilling(actor) {
		return errBillingForbidden
	}
	if _, err := loadPayment(ctx, s.db, id); err != nil {
		return err
	}
	if err := s.db.Exec(ctx, queries.PaymentQueries.Delete, id); err != nil {
		return fmt.Errorf("suppression paiement: %w", err)
	}
	return nil
}

func (s *PaymentService) annotated(ctx context.Context, clientID string) ([]billing.Payment, error) {
	payments, err := LoadPayments(ctx, s.db, clientID)
	if err != nil {
		return nil, err
	}
	installations, err := LoadInstallations(ctx, s.db, clientID)
	if err != nil {
		return nil, err
	}

	index := make(map[string]*billing.Installation, len(installations))
	for i := range installations {
		index[installations[i].ID] = &installations[i]
	}
	billing.AnnotateRemaining(payments, index)
	return payments, nil
}

func (s *PaymentService) clientExists(ctx context.Context, clientID string) error {
	_, err := prospectServices.LoadProspect(ctx, s.db, prospectQueries.ProspectQueries.Get, clientID)
	if errors.Is(err, pgx.ErrNoRows) {
		return errClientNotFound
	}
	return err
}
