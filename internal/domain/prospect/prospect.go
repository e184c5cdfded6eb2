package prospect

import (
	"errors"
	"regexp"
	"slices"
	"strings"
	"time"
)

// Status statut commercial
type Status string

const (
	StatusProspect Status = "prospect"
	StatusActif    Status = "actif"
	StatusInactif  Status = "inactif"
)

// IsValid indique si le statut est connu
func (s Status) IsValid() bool {
	return s == StatusProspect || s == StatusActif || s == StatusInactif
}

// IsClient vrai pour un client (actif ou inactif)
func (s Status) IsClient() bool {
	return s == StatusActif || s == StatusInactif
}

// Temperature niveau d'intérêt du prospect
type Temperature string

const (
	TemperatureFroid   Temperature = "froid"
	TemperatureTiede   Temperature = "tiede"
	TemperatureChaud   Temperature = "chaud"
	TemperatureBrulant Temperature = "brulant"
	TemperatureAcquis  Temperature = "acquis"
)

var temperatures = []Temperature{TemperatureFroid, TemperatureTiede, TemperatureChaud, TemperatureBrulant, TemperatureAcquis}

func (t Temperature) IsValid() bool { return slices.Contains(temperatures, t) }

// Secteurs d'activité reconnus; toute autre valeur devient AUTRE
const SecteurAutre = "AUTRE"

var Secteurs = []string{"GROSSISTE PHARM", "GROSSISTE PARA", "PARA SUPER GROS", "LABO PROD", SecteurAutre}

// NormalizeSecteur ramène un secteur inconnu ou vide à AUTRE
func NormalizeSecteur(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if slices.Contains(Secteurs, s) {
		return s
	}
	return SecteurAutre
}

// Prospect prospect ou client
type Prospect struct {
	ID                string        `json:"id"`
	RaisonSociale     string        `json:"raison_sociale"`
	Secteur           string        `json:"secteur"`
	Contact           string        `json:"contact"`
	Telephone         string        `json:"telephone"`
	Email             string        `json:"email,omitempty"`
	Wilaya            string        `json:"wilaya"`
	Adresse           string        `json:"adresse,omitempty"`
	Statut            Status        `json:"statut"`
	Temperature       Temperature   `json:"temperature,omitempty"`
	CommercialAssigne string        `json:"commercial_assigne,omitempty"`
	Notes             string        `json:"notes,omitempty"`
	HistoriqueActions []LegacyEntry `json:"-"`
	CreatedBy         string        `json:"created_by,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

var (
	ErrConfirmationMissing = errors.New("la confirmation de conversion est requise")
	ErrAlreadyClient       = errors.New("ce prospect est déjà client")
	ErrStatusChange        = errors.New("changement de statut non autorisé")
	ErrAdminRequired       = errors.New("seul un administrateur peut modifier le statut d'un client")
)

// Convert passe un prospect en client actif. L'historique existant n'est jamais modifié:
// l'appelant enregistre l'entrée retournée par ConversionEntry.
func (p *Prospect) Convert(confirmed bool, now time.Time) error {
	if !confirmed {
		return ErrConfirmationMissing
	}
	if p.Statut.IsClient() {
		return ErrAlreadyClient
	}
	p.Statut = StatusActif
	p.Temperature = TemperatureAcquis
	p.UpdatedAt = now
	return nil
}

// ChangeStatus applique un changement de statut demandé via l'API.
// prospect -> actif passe par Convert; actif <-> inactif réservé aux admins; jamais de retour à prospect.
func (p *Prospect) ChangeStatus(to Status, admin bool, now time.Time) error {
	if to == p.Statut {
		return nil
	}
	switch {
	case !to.IsValid(), to == StatusProspect:
		return ErrStatusChange
	case p.Statut == StatusProspect:
		return ErrStatusChange
	case !admin:
		return ErrAdminRequired
	}
	p.Statut = to
	p.UpdatedAt = now
	return nil
}

// FieldErrors erreurs de validation par champ
type FieldErrors map[string]string

var (
	phonePattern = regexp.MustCompile(`^(0)(5|6|7)[0-9]{8}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// NormalizePhone supprime les espaces d'un numéro
func NormalizePhone(tel string) string {
	return strings.Join(strings.Fields(tel), "")
}

// ValidPhone numéro mobile algérien (ex: 0555123456)
func ValidPhone(tel string) bool {
	return phonePattern.MatchString(NormalizePhone(tel))
}

// Validate contrôle les champs saisis d'un prospect
func Validate(p *Prospect) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(p.RaisonSociale) == "" {
		errs["raison_sociale"] = "La raison sociale est obligatoire"
	}
	if strings.TrimSpace(p.Contact) == "" {
		errs["contact"] = "Le contact est obligatoire"
	}
	if strings.TrimSpace(p.Telephone) == "" {
		errs["telephone"] = "Le téléphone est obligatoire"
	} else if !ValidPhone(p.Telephone) {
		errs["telephone"] = "Format de téléphone invalide (ex: 0555123456)"
	}
	if p.Email != "" && !emailPattern.MatchString(p.Email) {
		errs["email"] = "Format d'email invalide"
	}
	if p.Temperature != "" && !p.Temperature.IsValid() {
		errs["temperature"] = "Température invalide"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
