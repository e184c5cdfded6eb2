package mission

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldErrors erreurs de validation par champ (clé = nom JSON)
type FieldErrors map[string]string

// Draft données saisies à la création d'une mission
type Draft struct {
	Titre              string
	Description        string
	ClientID           string
	Type               string
	Wilaya             string
	DateDebut          *time.Time
	DateFinPrevue      *time.Time
	Priorite           string
	BudgetAlloue       decimal.Decimal
	ChefMissionID      string
	AccompagnateursIDs []string
}

// ValidateDraft contrôle les champs obligatoires avant tout accès base
func ValidateDraft(d Draft) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(d.Titre) == "" {
		errs["titre"] = "Le titre est requis"
	}
	if strings.TrimSpace(d.ClientID) == "" {
		errs["client_id"] = "Le client est requis"
	}
	if strings.TrimSpace(d.ChefMissionID) == "" {
		errs["chef_mission_id"] = "Le Chef de Mission est requis"
	}
	if d.DateDebut == nil || d.DateDebut.IsZero() {
		errs["date_debut"] = "La date de début est requise"
	}
	switch {
	case d.DateFinPrevue == nil || d.DateFinPrevue.IsZero():
		errs["date_fin_prevue"] = "La date de fin est requise"
	case d.DateDebut != nil && !d.DateDebut.IsZero() && d.DateFinPrevue.Before(*d.DateDebut):
		errs["date_fin_prevue"] = "La date de fin doit être après la date de début"
	}
	if !d.BudgetAlloue.IsPositive() {
		errs["budget_alloue"] = "Le budget doit être supérieur à 0"
	}
	if strings.TrimSpace(d.Type) == "" {
		errs["type_mission"] = "Le type de mission est requis"
	} else if !Type(d.Type).IsValid() {
		errs["type_mission"] = "Type de mission invalide"
	}
	if d.Priorite != "" && !Priority(d.Priorite).IsValid() {
		errs["priorite"] = "Priorité invalide"
	}
	for _, id := range d.AccompagnateursIDs {
		if id == d.ChefMissionID && id != "" {
			errs["accompagnateurs_ids"] = "Le Chef de Mission ne peut pas être accompagnateur"
			break
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateSchedule contrôle la cohérence des dates lors d'une modification
func ValidateSchedule(debut, fin time.Time) FieldErrors {
	if !debut.IsZero() && !fin.IsZero() && fin.Before(debut) {
		return FieldErrors{"date_fin_prevue": "La date de fin doit être après la date de début"}
	}
	return nil
}

// ValidateExpense contrôle une dépense avant enregistrement
func ValidateExpense(t string, montant decimal.Decimal) FieldErrors {
	errs := FieldErrors{}
	if !ExpenseType(t).IsValid() {
		errs["type_depense"] = "Type de dépense invalide (transport, hebergement, repas, divers)"
	}
	if !montant.IsPositive() {
		errs["montant"] = "Le montant doit être supérieur à 0"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
