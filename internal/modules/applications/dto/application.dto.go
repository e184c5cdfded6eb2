package dto

import "github.com/shopspring/decimal"

// ApplicationRequest création et modification d'une application du catalogue
type ApplicationRequest struct {
	Nom         string          `json:"nom" validate:"required,max=150"`
	Description string          `json:"description" validate:"max=2000"`
	Prix        decimal.Decimal `json:"prix"`
	Actif       *bool           `json:"actif,omitempty"`
}

type ListFilters struct {
	All bool `form:"all"`
}
