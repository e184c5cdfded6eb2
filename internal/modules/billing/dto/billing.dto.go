package dto

import (
	"strings"
	"time"

	"crm-pharma-core/internal/domain/billing"
	"crm-pharma-core/internal/domain/prospect"

	"github.com/shopspring/decimal"
)

// InstallationRequest création et modification ; client_id est ignoré en modification
type InstallationRequest struct {
	ClientID             string          `json:"client_id" validate:"omitempty,uuid"`
	ApplicationID        string          `json:"application_id" validate:"omitempty,uuid"`
	ApplicationInstallee string          `json:"application_installee" validate:"max=200"`
	Type                 string          `json:"type"`
	Montant              decimal.Decimal `json:"montant"`
	MontantAbonnement    decimal.Decimal `json:"montant_abonnement"`
	DateInstallation     time.Time       `json:"date_installation"`
	Statut               string          `json:"statut"`
	MissionID            string          `json:"mission_id" validate:"omitempty,uuid"`
}

func (r InstallationRequest) Installation(createdBy string) *billing.Installation {
	statut := billing.InstallationStatus(r.Statut)
	if statut == "" {
		statut = billing.InstallationEnCours
	}
	return &billing.Installation{
		ClientID:             r.ClientID,
		ApplicationID:        r.ApplicationID,
		ApplicationInstallee: strings.TrimSpace(r.ApplicationInstallee),
		Type:                 billing.InstallationType(r.Type),
		Montant:              r.Montant,
		MontantAbonnement:    r.MontantAbonnement,
		DateInstallation:     r.DateInstallation,
		Statut:               statut,
		MissionID:            r.MissionID,
		CreatedBy:            createdBy,
	}
}

type PaymentRequest struct {
	ClientID       string          `json:"client_id" validate:"omitempty,uuid"`
	InstallationID string          `json:"installation_id" validate:"omitempty,uuid"`
	Type           string          `json:"type"`
	Montant        decimal.Decimal `json:"montant"`
	ModePaiement   string          `json:"mode_paiement"`
	DatePaiement   time.Time       `json:"date_paiement"`
}

func (r PaymentRequest) Payment() *billing.Payment {
	return &billing.Payment{
		ClientID:       r.ClientID,
		InstallationID: r.InstallationID,
		Type:           billing.InstallationType(r.Type),
		Montant:        r.Montant,
		ModePaiement:   billing.PaymentMode(r.ModePaiement),
		DatePaiement:   r.DatePaiement,
	}
}

// ListFilters ?client_id=
type ListFilters struct {
	ClientID string `form:"client_id" binding:"omitempty,uuid"`
}

type InstallationResponse struct {
	Installation   *billing.Installation  `json:"installation"`
	Abonnement     *billing.Subscription  `json:"abonnement,omitempty"`
	Historique     *prospect.HistoryEntry `json:"historique,omitempty"`
	ClientConverti bool                   `json:"client_converti"`
}

type InstallationDetail struct {
	*billing.Installation
	ResteAPayer decimal.Decimal        `json:"reste_a_payer"`
	Paiements   []billing.Payment      `json:"paiements"`
	Abonnements []billing.Subscription `json:"abonnements"`
}

type PaymentList struct {
	Paiements []billing.Payment    `json:"paiements"`
	Stats     billing.PaymentStats `json:"stats"`
}

type ClientPayments struct {
	ClientID  string            `json:"client_id"`
	Paiements []billing.Payment `json:"paiements"`
	Balance   billing.Balance   `json:"solde"`
}

// RenewalReport résultat d'un passage de renouvellement automatique
type RenewalReport struct {
	Examinees   int                    `json:"examinees"`
	Renouvelees int                    `json:"renouvelees"`
	Abonnements []billing.Subscription `json:"abonnements"`
	Erreurs     []string               `json:"erreurs,omitempty"`
}
