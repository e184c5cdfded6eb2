package dto

import (
	"time"

	"crm-pharma-core/internal/domain/analysis"
	"crm-pharma-core/internal/domain/mission"
	"crm-pharma-core/internal/infrastructure/database/mongodb"
	"crm-pharma-core/internal/shared/permissions"

	"github.com/shopspring/decimal"
)

// CreateMissionRequest création (administrateurs)
type CreateMissionRequest struct {
	Titre              string          `json:"titre" validate:"max=200"`
	Description        string          `json:"description" validate:"max=5000"`
	ClientID           string          `json:"client_id" validate:"omitempty,uuid"`
	Type               string          `json:"type_mission"`
	Wilaya             string          `json:"wilaya" validate:"max=50"`
	DateDebut          *time.Time      `json:"date_debut"`
	DateFinPrevue      *time.Time      `json:"date_fin_prevue"`
	Priorite           string          `json:"priorite"`
	BudgetAlloue       decimal.Decimal `json:"budget_alloue"`
	ChefMissionID      string          `json:"chef_mission_id" validate:"omitempty,uuid"`
	AccompagnateursIDs []string        `json:"accompagnateurs_ids" validate:"dive,uuid"`
	Planifiee          bool            `json:"planifiee"`
}

func (r CreateMissionRequest) Draft() mission.Draft {
	return mission.Draft{
		Titre:              r.Titre,
		Description:        r.Description,
		ClientID:           r.ClientID,
		Type:               r.Type,
		Wilaya:             r.Wilaya,
		DateDebut:          r.DateDebut,
		DateFinPrevue:      r.DateFinPrevue,
		Priorite:           r.Priorite,
		BudgetAlloue:       r.BudgetAlloue,
		ChefMissionID:      r.ChefMissionID,
		AccompagnateursIDs: r.AccompagnateursIDs,
	}
}

// UpdateMissionRequest chef et accompagnateurs ne sont jamais modifiables
type UpdateMissionRequest struct {
	Titre              string          `json:"titre" validate:"required,max=200"`
	Description        string          `json:"description" validate:"max=5000"`
	Type               string          `json:"type_mission" validate:"required"`
	Wilaya             string          `json:"wilaya" validate:"max=50"`
	DateDebut          time.Time       `json:"date_debut" validate:"required"`
	DateFinPrevue      time.Time       `json:"date_fin_prevue" validate:"required"`
	Priorite           string          `json:"priorite"`
	BudgetAlloue       decimal.Decimal `json:"budget_alloue"`
	Avancement         *int            `json:"avancement,omitempty"`
	Planifiee          *bool           `json:"planifiee,omitempty"`
	ChefMissionID      *string         `json:"chef_mission_id,omitempty"`
	AccompagnateursIDs *[]string       `json:"accompagnateurs_ids,omitempty"`
}

type CloseRequest struct {
	Commentaire string `json:"commentaire" validate:"max=5000"`
	Avancement  int    `json:"avancement"`
}

type ValidateRequest struct {
	Commentaire string `json:"commentaire" validate:"max=5000"`
	Confirm     bool   `json:"confirm"`
}

type TechnicalRequest struct {
	RapportTechnique       string `json:"rapport_technique" validate:"max=20000"`
	ActionsRealisees       string `json:"actions_realisees" validate:"max=20000"`
	LogicielsMateriels     string `json:"logiciels_materiels" validate:"max=5000"`
	ProblemesResolutions   string `json:"problemes_resolutions" validate:"max=20000"`
	CommentairesTechniques string `json:"commentaires_techniques" validate:"max=20000"`
}

func (r TechnicalRequest) Details() mission.TechnicalDetails {
	return mission.TechnicalDetails(r)
}

type FinancialRequest struct {
	CommentairesFinanciers string `json:"commentaires_financiers" validate:"max=20000"`
}

type ExpenseRequest struct {
	Type            string          `json:"type_depense"`
	Montant         decimal.Decimal `json:"montant"`
	Description     string          `json:"description" validate:"max=2000"`
	JustificatifURL string          `json:"justificatif_url" validate:"omitempty,url,max=1000"`
}

// ListFilters GET /missions?q=&statut=
type ListFilters struct {
	Query  string `form:"q"`
	Statut string `form:"statut"`
}

// MissionView mission et indicateurs calculés
type MissionView struct {
	mission.Mission
	StatutLabel string                 `json:"statut_label"`
	Retard      mission.DelayIndicator `json:"retard"`
	Budget      mission.BudgetUsage    `json:"budget"`
}

func NewMissionView(m *mission.Mission, now time.Time) MissionView {
	return MissionView{
		Mission:     *m,
		StatutLabel: m.Statut.Label(),
		Retard:      mission.Delay(m, now),
		Budget:      mission.Budget(m.BudgetAlloue, m.BudgetDepense),
	}
}

// MissionDetail vue unique du détail d'une mission
type MissionDetail struct {
	MissionView
	Actions []permissions.Action `json:"actions"`
}

type ActionsResponse struct {
	MissionID string               `json:"mission_id"`
	Actions   []permissions.Action `json:"actions"`
}

type ExpenseResponse struct {
	Expense *mission.Expense    `json:"depense,omitempty"`
	Budget  mission.BudgetUsage `json:"budget"`
}

type ExpensesResponse struct {
	Expenses []mission.Expense   `json:"depenses"`
	Total    decimal.Decimal     `json:"total"`
	Budget   mission.BudgetUsage `json:"budget"`
}

// ClosureReport rapport de clôture exporté
type ClosureReport struct {
	Mission      MissionView              `json:"mission"`
	Analyse      analysis.MissionReport   `json:"analyse"`
	Technique    mission.TechnicalDetails `json:"technique"`
	Depenses     []mission.Expense        `json:"depenses,omitempty"`
	TotalDepense decimal.Decimal          `json:"total_depenses"`
	Cloture      ClosureSection           `json:"cloture"`
	GenereLe     time.Time                `json:"genere_le"`
}

type ClosureSection struct {
	ClotureeParChef      bool       `json:"cloturee_par_chef"`
	DateClotChef         *time.Time `json:"date_clot_chef,omitempty"`
	CommentaireClotChef  string     `json:"commentaire_clot_chef,omitempty"`
	ClotureeDefinitive   bool       `json:"cloturee_definitive"`
	DateClotDefinitive   *time.Time `json:"date_clot_definitive,omitempty"`
	CommentaireClotAdmin string     `json:"commentaire_clot_admin,omitempty"`
	ValideePar           string     `json:"validee_par,omitempty"`
}

type JournalResponse struct {
	Disponible bool            `json:"disponible"`
	Entries    []mongodb.Entry `json:"entries"`
}
