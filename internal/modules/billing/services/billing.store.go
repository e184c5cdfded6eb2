package services

import (
	"context"
	"errors"
	"fmt"

	"crm-pharma-core/internal/domain/billing"
	"crm-pharma-core/internal/infrastructure/database/postgres"
	"crm-pharma-core/internal/modules/billing/queries"
	"crm-pharma-core/internal/shared/response"

	"github.com/jackc/pgx/v5"
)

var (
	errInstallationNotFound = response.NewNotFound("INSTALLATION_NOT_FOUND", "Installation introuvable")
	errPaymentNotFound      = response.NewNotFound("PAYMENT_NOT_FOUND", "Paiement introuvable")
	errBillingForbidden     = response.NewForbidden("CANNOT_MANAGE_BILLING", "Vous n'avez pas la permission de gérer la facturation")
)

// LoadInstallations installations d'un client, ou toutes si clientID est vide
func LoadInstallations(ctx context.Context, q postgres.Querier, clientID string) ([]billing.Installation, error) {
	rows, err := q.Query(ctx, queries.InstallationQueries.List, clientID)
	if err != nil {
		return nil, fmt.Errorf("liste installations: %w", err)
	}
	defer rows.Close()

	list := []billing.Installation{}
	for rows.Next() {
		i, err := scanInstallation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *i)
	}
	return list, rows.Err()
}

func loadInstallation(ctx context.Context, q postgres.Querier, query, id string) (*billing.Installation, error) {
	i, err := scanInstallation(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errInstallationNotFound
	}
	return i, err
}

func scanInstallation(row pgx.Row) (*billing.Installation, error) {
	var (
		i           billing.Installation
		typ, statut string
	)
	err := row.Scan(
		&i.ID, &i.ClientID, &i.ClientNom, &i.ApplicationID, &i.ApplicationInstallee, &typ,
		&i.Montant, &i.MontantAbonnement, &i.DateInstallation, &statut, &i.MissionID,
		&i.CreatedBy, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	i.Type = billing.InstallationType(typ)
	i.Statut = billing.InstallationStatus(statut)
	return &i, nil
}

// LoadPayments paiements d'un client, ou tous si clientID est vide
func LoadPayments(ctx context.Context, q postgres.Querier, clientID string) ([]billing.Payment, error) {
	rows, err := q.Query(ctx, queries.PaymentQueries.List, clientID)
	if err != nil {
		return nil, fmt.Errorf("liste paiements: %w", err)
	}
	defer rows.Close()

	list := []billing.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

func loadPayment(ctx context.Context, q postgres.Querier, id string) (*billing.Payment, error) {
	p, err := scanPayment(q.QueryRow(ctx, queries.PaymentQueries.Get, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errPaymentNotFound
	}
	return p, err
}

func scanPayment(row pgx.Row) (*billing.Payment, error) {
	var (
		p         billing.Payment
		typ, mode string
	)
	err := row.Scan(&p.ID, &p.ClientID, &p.ClientNom, &p.InstallationID, &typ, &p.Montant, &mode, &p.DatePaiement, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Type = billing.InstallationType(typ)
	p.ModePaiement = billing.PaymentMode(mode)
	return &p, nil
}

// LoadSubscriptions abonnements d'une installation, ou tous si installationID est vide
func LoadSubscriptions(ctx context.Context, q postgres.Querier, installationID string) ([]billing.Subscription, error) {
	rows, err := q.Query(ctx, queries.SubscriptionQueries.List, installationID)
	if err != nil {
		return nil, fmt.Errorf("liste abonnements: %w", err)
	}
	defer rows.Close()

	list := []billing.Subscription{}
	for rows.Next() {
		var (
			s           billing.Subscription
			inst        billing.Installation
			statut, typ string
		)
		err := rows.Scan(
			&s.ID, &s.InstallationID, &s.DateDebut, &s.DateFin, &s.Montant, &statut,
			&s.Source, &s.AutoGenerated, &s.CreatedAt,
			&inst.ClientID, &inst.ClientNom, &inst.ApplicationInstallee, &typ,
		)
		if err != nil {
			return nil, err
		}
		s.Statut = billing.SubscriptionStatus(statut)
		inst.ID = s.InstallationID
		inst.Type = billing.InstallationType(typ)
		s.Installation = &inst
		list = append(list, s)
	}
	return list, rows.Err()
}

func insertSubscription(ctx context.Context, q postgres.Querier, s *billing.Subscription) error {
	err := q.QueryRow(ctx, queries.SubscriptionQueries.Insert,
		s.InstallationID, s.DateDebut, s.DateFin, s.Montant, string(s.Statut), s.Source, s.AutoGenerated,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("création abonnement: %w", err)
	}
	return nil
}

// groupByInstallation index des abonnements par installation
func groupByInstallation(subs []billing.Subscription) map[string][]billing.Subscription {
	out := make(map[string][]billing.Subscription, len(subs))
	for _, s := range subs {
		out[s.InstallationID] = append(out[s.InstallationID], s)
	}
	return out
}
