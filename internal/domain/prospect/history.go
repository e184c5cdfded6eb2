package prospect

import (
	"slices"
	"sort"
	"strings"
	"time"
)

// ActionType type d'entrée d'historique
type ActionType string

const (
	ActionAppel                 ActionType = "appel"
	ActionRelance               ActionType = "relance"
	ActionEmail                 ActionType = "email"
	ActionRDV                   ActionType = "rdv"
	ActionDemo                  ActionType = "demo"
	ActionNegociation           ActionType = "negociation"
	ActionOffreEnvoyee          ActionType = "offre_envoyee"
	ActionContratSigne          ActionType = "contrat_signe"
	ActionCreation              ActionType = "creation"
	ActionModification          ActionType = "modification"
	ActionConversion            ActionType = "conversion"
	ActionInstallation          ActionType = "installation"
	ActionAbonnementAcquisition ActionType = "abonnement_acquisition"
	ActionAbonnementAutoRenew   ActionType = "abonnement_auto_renew"
)

var actionTypes = []ActionType{
	ActionAppel, ActionRelance, ActionEmail, ActionRDV, ActionDemo, ActionNegociation,
	ActionOffreEnvoyee, ActionContratSigne, ActionCreation, ActionModification,
	ActionConversion, ActionInstallation, ActionAbonnementAcquisition, ActionAbonnementAutoRenew,
}

// clientActions seules actions enregistrées pour un client actif
var clientActions = []ActionType{
	ActionAbonnementAcquisition, ActionAbonnementAutoRenew, ActionInstallation, ActionConversion,
}

func (a ActionType) IsValid() bool { return slices.Contains(actionTypes, a) }

// AllowedFor indique si l'action est enregistrée pour ce statut
func (a ActionType) AllowedFor(s Status) bool {
	if s != StatusActif {
		return true
	}
	return slices.Contains(clientActions, a)
}

// HistoryEntry entrée de la table prospect_history
type HistoryEntry struct {
	ID               string     `json:"id,omitempty"`
	ProspectID       string     `json:"prospect_id"`
	Action           ActionType `json:"action"`
	Description      string     `json:"description"`
	Application      string     `json:"application,omitempty"`
	ChefMission      string     `json:"chef_mission,omitempty"`
	DateDebut        *time.Time `json:"date_debut,omitempty"`
	DateFin          *time.Time `json:"date_fin,omitempty"`
	Conversion       string     `json:"conversion,omitempty"`
	AnciensLogiciels []string   `json:"anciens_logiciels,omitempty"`
	CreatedBy        string     `json:"created_by,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	Legacy           bool       `json:"legacy,omitempty"`
}

// LegacyEntry entrée du tableau JSON historique_actions
type LegacyEntry struct {
	Action      string     `json:"action"`
	Details     string     `json:"details,omitempty"`
	Description string     `json:"description,omitempty"`
	Application string     `json:"application,omitempty"`
	ChefMission string     `json:"chef_mission,omitempty"`
	DateDebut   *time.Time `json:"date_debut,omitempty"`
	DateFin     *time.Time `json:"date_fin,omitempty"`
	CreatedBy   string     `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (l LegacyEntry) text() string {
	if l.Details != "" {
		return l.Details
	}
	return l.Description
}

// ValidateEntry contrôle les champs conditionnels d'une entrée
func ValidateEntry(e HistoryEntry) FieldErrors {
	errs := FieldErrors{}
	if !e.Action.IsValid() {
		errs["action"] = "Type d'action invalide"
	}
	if e.Conversion != "" && e.Conversion != "oui" && e.Conversion != "non" {
		errs["conversion"] = "La conversion doit valoir oui ou non"
	}
	if e.Action == ActionInstallation {
		if e.DateDebut == nil {
			errs["date_debut"] = "La date de début est requise pour une installation"
		}
		if e.DateFin == nil {
			errs["date_fin"] = "La date de fin est requise pour une installation"
		} else if e.DateDebut != nil && e.DateFin.Before(*e.DateDebut) {
			errs["date_fin"] = "La date de fin doit être après la date de début"
		}
		if strings.TrimSpace(e.Application) == "" {
			errs["application"] = "L'application est requise pour une installation"
		}
		if strings.TrimSpace(e.ChefMission) == "" {
			errs["chef_mission"] = "Le chef de mission est requis pour une installation"
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Outcome effet d'un enregistrement d'historique
type Outcome struct {
	Skipped   bool `json:"skipped"`
	Converted bool `json:"converted"`
}

// Record décide de l'enregistrement d'une entrée: ignorée pour un client actif hors actions
// d'abonnement/installation, conversion automatique d'un prospect sur installation.
func Record(p *Prospect, e HistoryEntry, now time.Time) Outcome {
	if !e.Action.AllowedFor(p.Statut) {
		return Outcome{Skipped: true}
	}
	if e.Action == ActionInstallation && p.Statut == StatusProspect {
		p.Statut = StatusActif
		p.UpdatedAt = now
		return Outcome{Converted: true}
	}
	return Outcome{}
}

// ConversionEntry entrée ajoutée lors d'une conversion
func ConversionEntry(prospectID, by string, now time.Time) HistoryEntry {
	return HistoryEntry{
		ProspectID:  prospectID,
		Action:      ActionConversion,
		Description: "Converti en client actif",
		Conversion:  "oui",
		CreatedBy:   by,
		CreatedAt:   now,
	}
}

const (
	mergeTolerance  = 30 * time.Second
	removeTolerance = 10 * time.Second
)

func within(a, b time.Time, tol time.Duration) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d < tol
}

func sameEntry(t HistoryEntry, l LegacyEntry, tol time.Duration) bool {
	if string(t.Action) != l.Action {
		return false
	}
	text := l.text()
	return within(t.CreatedAt, l.CreatedAt, tol) || (text != "" && t.Description == text)
}

// Merge fusionne la table et le JSON historique: les entrées de la table priment,
// une entrée JSON est ignorée si une entrée de même action existe à moins de 30 s
// ou avec la même description. Résultat trié du plus récent au plus ancien.
func Merge(prospectID string, table []HistoryEntry, legacy []LegacyEntry) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(table)+len(legacy))
	out = append(out, table...)

	for _, l := range legacy {
		dup := slices.ContainsFunc(table, func(t HistoryEntry) bool {
			return sameEntry(t, l, mergeTolerance)
		})
		if dup {
			continue
		}
		out = append(out, HistoryEntry{
			ProspectID:  prospectID,
			Action:      ActionType(l.Action),
			Description: l.text(),
			Application: l.Application,
			ChefMission: l.ChefMission,
			DateDebut:   l.DateDebut,
			DateFin:     l.DateFin,
			CreatedBy:   l.CreatedBy,
			CreatedAt:   l.CreatedAt,
			Legacy:      true,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// RemoveLegacy retire du JSON historique les entrées correspondant à item
func RemoveLegacy(legacy []LegacyEntry, item HistoryEntry) ([]LegacyEntry, int) {
	kept := make([]LegacyEntry, 0, len(legacy))
	for _, l := range legacy {
		if sameEntry(item, l, removeTolerance) {
			continue
		}
		kept = append(kept, l)
	}
	return kept, len(legacy) - len(kept)
}

// HasInstallation vrai si une installation figure dans l'une des deux sources
func HasInstallation(table []HistoryEntry, legacy []LegacyEntry) bool {
	for _, t := range table {
		if t.Action == ActionInstallation {
			return true
		}
	}
	for _, l := range legacy {
		if l.Action == string(ActionInstallation) {
			return true
		}
	}
	return false
}
