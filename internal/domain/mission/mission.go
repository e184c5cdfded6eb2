package mission

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Type type de mission
type Type string

const (
	TypeInstallation Type = "Installation"
	TypeFormation    Type = "Formation"
	TypeSupport      Type = "Support"
	TypeMaintenance  Type = "Maintenance"
	TypeAudit        Type = "Audit"
)

var validTypes = []Type{TypeInstallation, TypeFormation, TypeSupport, TypeMaintenance, TypeAudit}

// IsValid indique si le type est connu
func (t Type) IsValid() bool { return slices.Contains(validTypes, t) }

// Priority priorité d'une mission
type Priority string

const (
	PriorityFaible   Priority = "faible"
	PriorityMoyenne  Priority = "moyenne"
	PriorityHaute    Priority = "haute"
	PriorityCritique Priority = "critique"
)

// IsValid indique si la priorité est connue
func (p Priority) IsValid() bool {
	switch p {
	case PriorityFaible, PriorityMoyenne, PriorityHaute, PriorityCritique:
		return true
	}
	return false
}

// TechnicalDetails section technique renseignée pendant la mission
type TechnicalDetails struct {
	RapportTechnique       string `json:"rapport_technique"`
	ActionsRealisees       string `json:"actions_realisees"`
	LogicielsMateriels     string `json:"logiciels_materiels"`
	ProblemesResolutions   string `json:"problemes_resolutions"`
	CommentairesTechniques string `json:"commentaires_techniques"`
}

// Mission engagement terrain rattaché à un client
type Mission struct {
	ID                 string          `json:"id"`
	Titre              string          `json:"titre"`
	Description        string          `json:"description"`
	ClientID           string          `json:"client_id"`
	ClientNom          string          `json:"client_nom,omitempty"`
	Type               Type            `json:"type_mission"`
	Wilaya             string          `json:"wilaya"`
	DateDebut          time.Time       `json:"date_debut"`
	DateFinPrevue      time.Time       `json:"date_fin_prevue"`
	Priorite           Priority        `json:"priorite"`
	BudgetAlloue       decimal.Decimal `json:"budget_alloue"`
	BudgetDepense      decimal.Decimal `json:"budget_depense"`
	Avancement         int             `json:"avancement"`
	Statut             Status          `json:"statut"`
	ChefMissionID      string          `json:"chef_mission_id"`
	AccompagnateursIDs []string        `json:"accompagnateurs_ids"`
	CreatedBy          string          `json:"created_by"`
	DateDemarrage      *time.Time      `json:"date_demarrage,omitempty"`

	ClotureeParChef     bool       `json:"cloturee_par_chef"`
	DateClotChef        *time.Time `json:"date_clot_chef,omitempty"`
	CommentaireClotChef string     `json:"commentaire_clot_chef,omitempty"`

	ClotureeDefinitive   bool       `json:"cloturee_definitive"`
	DateClotDefinitive   *time.Time `json:"date_clot_definitive,omitempty"`
	CommentaireClotAdmin string     `json:"commentaire_clot_admin,omitempty"`
	ValideePar           string     `json:"validee_par,omitempty"`

	Technique              TechnicalDetails `json:"technique"`
	CommentairesFinanciers string           `json:"commentaires_financiers,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsChef indique si l'utilisateur est le chef de mission
func (m *Mission) IsChef(userID string) bool {
	return userID != "" && m.ChefMissionID == userID
}

// IsAccompagnateur indique si l'utilisateur fait partie des accompagnateurs
func (m *Mission) IsAccompagnateur(userID string) bool {
	return userID != "" && slices.Contains(m.AccompagnateursIDs, userID)
}

// Participants chef puis accompagnateurs, sans doublon
func (m *Mission) Participants() []string {
	out := make([]string, 0, len(m.AccompagnateursIDs)+1)
	if m.ChefMissionID != "" {
		out = append(out, m.ChefMissionID)
	}
	for _, id := range m.AccompagnateursIDs {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// ExpenseType catégorie de dépense
type ExpenseType string

const (
	ExpenseTransport   ExpenseType = "transport"
	ExpenseHebergement ExpenseType = "hebergement"
	ExpenseRepas       ExpenseType = "repas"
	ExpenseDivers      ExpenseType = "divers"
)

// IsValid indique si la catégorie est connue
func (t ExpenseType) IsValid() bool {
	switch t {
	case ExpenseTransport, ExpenseHebergement, ExpenseRepas, ExpenseDivers:
		return true
	}
	return false
}

// Expense dépense rattachée à une mission
type Expense struct {
	ID              string          `json:"id"`
	MissionID       string          `json:"mission_id"`
	Type            ExpenseType     `json:"type_depense"`
	Montant         decimal.Decimal `json:"montant"`
	Description     string          `json:"description"`
	JustificatifURL string          `json:"justificatif_url,omitempty"`
	CreatedBy       string          `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TotalExpenses somme des montants
func TotalExpenses(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Montant)
	}
	return total
}
