package billing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InstallationType mode de commercialisation d'une installation
type InstallationType string

const (
	TypeAcquisition InstallationType = "acquisition"
	TypeAbonnement  InstallationType = "abonnement"
)

func (t InstallationType) IsValid() bool {
	return t == TypeAcquisition || t == TypeAbonnement
}

// InstallationStatus avancement d'une installation
type InstallationStatus string

const (
	InstallationEnCours  InstallationStatus = "en_cours"
	InstallationTerminee InstallationStatus = "terminee"
)

func (s InstallationStatus) IsValid() bool {
	return s == InstallationEnCours || s == InstallationTerminee
}

// PaymentMode mode de règlement
type PaymentMode string

const (
	ModeEspeces  PaymentMode = "especes"
	ModeVirement PaymentMode = "virement"
	ModeCheque   PaymentMode = "cheque"
	ModeAutre    PaymentMode = "autre"
)

func (m PaymentMode) IsValid() bool {
	switch m {
	case ModeEspeces, ModeVirement, ModeCheque, ModeAutre:
		return true
	}
	return false
}

// Application logiciel du catalogue
type Application struct {
	ID          string          `json:"id"`
	Nom         string          `json:"nom"`
	Description string          `json:"description,omitempty"`
	Prix        decimal.Decimal `json:"prix"`
	Actif       bool            `json:"actif"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Installation logiciel installé chez un client
type Installation struct {
	ID                   string             `json:"id"`
	ClientID             string             `json:"client_id"`
	ClientNom            string             `json:"client_nom,omitempty"`
	ApplicationID        string             `json:"application_id,omitempty"`
	ApplicationInstallee string             `json:"application_installee"`
	Type                 InstallationType   `json:"type"`
	Montant              decimal.Decimal    `json:"montant"`
	MontantAbonnement    decimal.Decimal    `json:"montant_abonnement"`
	DateInstallation     time.Time          `json:"date_installation"`
	Statut               InstallationStatus `json:"statut"`
	MissionID            string             `json:"mission_id,omitempty"`
	CreatedBy            string             `json:"created_by,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// Payment paiement rattaché à une installation
type Payment struct {
	ID             string           `json:"id"`
	ClientID       string           `json:"client_id"`
	ClientNom      string           `json:"client_nom,omitempty"`
	InstallationID string           `json:"installation_id"`
	Type           InstallationType `json:"type"`
	Montant        decimal.Decimal  `json:"montant"`
	ModePaiement   PaymentMode      `json:"mode_paiement"`
	DatePaiement   time.Time        `json:"date_paiement"`
	ResteAPayer    decimal.Decimal  `json:"reste_a_payer"`
	CreatedAt      time.Time        `json:"created_at"`
}

// FieldErrors erreurs de validation par champ
type FieldErrors map[string]string

func orNil(errs FieldErrors) FieldErrors {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateInstallation contrôle une installation avant enregistrement
func ValidateInstallation(i *Installation) FieldErrors {
	errs := FieldErrors{}
	if i.ClientID == "" {
		errs["client_id"] = "Le client est obligatoire"
	}
	if strings.TrimSpace(i.ApplicationInstallee) == "" {
		errs["application_installee"] = "L'application est obligatoire"
	}
	if !i.Montant.IsPositive() {
		errs["montant"] = "Le montant doit être supérieur à 0"
	}
	if i.DateInstallation.IsZero() {
		errs["date_installation"] = "La date d'installation est obligatoire"
	}
	if !i.Type.IsValid() {
		errs["type"] = "Type d'installation invalide (acquisition, abonnement)"
	}
	if i.Statut != "" && !i.Statut.IsValid() {
		errs["statut"] = "Statut d'installation invalide"
	}
	if i.MontantAbonnement.IsNegative() {
		errs["montant_abonnement"] = "Le montant d'abonnement ne peut pas être négatif"
	}
	return orNil(errs)
}

// ValidatePayment contrôle un paiement avant enregistrement
func ValidatePayment(p *Payment) FieldErrors {
	errs := FieldErrors{}
	if p.ClientID == "" {
		errs["client_id"] = "Le client est obligatoire"
	}
	if p.InstallationID == "" {
		errs["installation_id"] = "L'installation est obligatoire"
	}
	if p.Type == "" {
		errs["type"] = "Le type de paiement est obligatoire"
	} else if !p.Type.IsValid() {
		errs["type"] = "Type de paiement invalide"
	}
	if !p.Montant.IsPositive() {
		errs["montant"] = "Le montant doit être supérieur à 0"
	}
	if p.ModePaiement == "" {
		errs["mode_paiement"] = "Le mode de paiement est obligatoire"
	} else if !p.ModePaiement.IsValid() {
		errs["mode_paiement"] = "Mode de paiement invalide"
	}
	if p.DatePaiement.IsZero() {
		errs["date_paiement"] = "La date de paiement est obligatoire"
	}
	return orNil(errs)
}

// ValidateApplication contrôle une entrée du catalogue
func ValidateApplication(a *Application) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(a.Nom) == "" {
		errs["nom"] = "Le nom de l'application est obligatoire"
	}
	if !a.Prix.IsPositive() {
		errs["prix"] = "Le prix doit être supérieur à 0"
	}
	return orNil(errs)
}
