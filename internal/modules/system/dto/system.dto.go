package dto

import (
	"time"

	"crm-pharma-core/internal/infrastructure/database/schema"
)

// ServiceStatus état d'une dépendance externe
type ServiceStatus struct {
	Nom        string `json:"nom"`
	Disponible bool   `json:"disponible"`
	Optionnel  bool   `json:"optionnel"`
	Detail     string `json:"detail,omitempty"`
}

type Overview struct {
	Utilisateurs  int64 `json:"utilisateurs"`
	Prospects     int64 `json:"prospects"`
	Clients       int64 `json:"clients"`
	Missions      int64 `json:"missions"`
	Installations int64 `json:"installations"`
}

// SystemInfoResponse réponse de /api/v1/system/info
type SystemInfoResponse struct {
	Application   string          `json:"application"`
	Version       string          `json:"version"`
	Environnement string          `json:"environnement"`
	Services      []ServiceStatus `json:"services"`
	Schema        *schema.Report  `json:"schema,omitempty"`
	Volumetrie    *Overview       `json:"volumetrie,omitempty"`
	Alertes       []Alerte        `json:"alertes"`
	GenereLe      time.Time       `json:"genere_le"`
}

// Alerte message affiché dans l'en-tête de l'interface
type Alerte struct {
	Type    string `json:"type"` // info, warning, critical
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SchemaStatus rapport de migrations et affichage de la bannière pour l'utilisateur courant
type SchemaStatus struct {
	*schema.Report
	AfficherBanniere bool `json:"afficher_banniere"`
}

type BannerPreference struct {
	Masquee        bool   `json:"masquee"`
	VersionMasquee string `json:"version_masquee,omitempty"`
}

type BannerRequest struct {
	Masquee *bool `json:"masquee" validate:"required"`
}

// TableStatus existence et volumétrie d'une table (check-tables)
type TableStatus struct {
	Table  string `json:"table"`
	Existe bool   `json:"existe"`
	Lignes int64  `json:"lignes"`
}
