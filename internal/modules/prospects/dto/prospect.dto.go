package dto

import (
	"time"

	"crm-pharma-core/internal/domain/prospect"
	"crm-pharma-core/internal/infrastructure/database/mongodb"
)

// ProspectRequest création et modification
type ProspectRequest struct {
	RaisonSociale     string `json:"raison_sociale" validate:"max=200"`
	Secteur           string `json:"secteur" validate:"max=50"`
	Contact           string `json:"contact" validate:"max=150"`
	Telephone         string `json:"telephone" validate:"max=20"`
	Email             string `json:"email" validate:"max=150"`
	Wilaya            string `json:"wilaya" validate:"max=50"`
	Adresse           string `json:"adresse" validate:"max=500"`
	Statut            string `json:"statut,omitempty"`
	Temperature       string `json:"temperature,omitempty"`
	CommercialAssigne string `json:"commercial_assigne" validate:"max=150"`
	Notes             string `json:"notes" validate:"max=5000"`
}

// ListFilters GET /prospects
type ListFilters struct {
	Query       string `form:"q"`
	Statut      string `form:"statut"`
	Secteur     string `form:"secteur"`
	Wilaya      string `form:"wilaya"`
	Temperature string `form:"temperature"`
}

func (f ListFilters) Filter() prospect.Filter {
	return prospect.Filter{
		Query:       f.Query,
		Statut:      f.Statut,
		Secteur:     f.Secteur,
		Wilaya:      f.Wilaya,
		Temperature: f.Temperature,
	}
}

// ConvertRequest la confirmation explicite est obligatoire
type ConvertRequest struct {
	Confirm bool `json:"confirm"`
}

type HistoryRequest struct {
	Action           string     `json:"action" validate:"required"`
	Description      string     `json:"description" validate:"max=2000"`
	Application      string     `json:"application" validate:"max=150"`
	ChefMission      string     `json:"chef_mission" validate:"max=150"`
	DateDebut        *time.Time `json:"date_debut,omitempty"`
	DateFin          *time.Time `json:"date_fin,omitempty"`
	Conversion       string     `json:"conversion,omitempty"`
	AnciensLogiciels []string   `json:"anciens_logiciels,omitempty"`
}

func (r HistoryRequest) Entry(prospectID, by string, now time.Time) prospect.HistoryEntry {
	return prospect.HistoryEntry{
		ProspectID:       prospectID,
		Action:           prospect.ActionType(r.Action),
		Description:      r.Description,
		Application:      r.Application,
		ChefMission:      r.ChefMission,
		DateDebut:        r.DateDebut,
		DateFin:          r.DateFin,
		Conversion:       r.Conversion,
		AnciensLogiciels: r.AnciensLogiciels,
		CreatedBy:        by,
		CreatedAt:        now,
	}
}

// HistoryResponse résultat d'un ajout d'historique
type HistoryResponse struct {
	Entry     *prospect.HistoryEntry `json:"entry,omitempty"`
	Skipped   bool                   `json:"skipped"`
	Converted bool                   `json:"converted"`
}

type ConvertResponse struct {
	Prospect *prospect.Prospect    `json:"prospect"`
	Entry    prospect.HistoryEntry `json:"entry"`
}

type JournalResponse struct {
	Disponible bool            `json:"disponible"`
	Entries    []mongodb.Entry `json:"entries"`
}
