package dto

import (
	"time"

	"crm-pharma-core/internal/domain/analysis"
	"crm-pharma-core/internal/domain/billing"
	"crm-pharma-core/internal/domain/prospect"
)

// Dashboard agrégats chargés en parallèle puis mis en cache
type Dashboard struct {
	Missions            analysis.Performance      `json:"missions"`
	Resume              analysis.Summary          `json:"resume"`
	Prospects           prospect.Stats            `json:"prospects"`
	Installations       billing.InstallationStats `json:"installations"`
	Paiements           billing.PaymentStats      `json:"paiements"`
	Abonnements         billing.SubscriptionStats `json:"abonnements"`
	AbonnementsEnAlerte []billing.Subscription    `json:"abonnements_en_alerte"`
	GenereLe            time.Time                 `json:"genere_le"`
	Cache               bool                      `json:"cache"`
}

// MissionInsights analyse heuristique et, si disponible, insights rédigés
type MissionInsights struct {
	analysis.Insights
	AIInsights   []analysis.AIInsight `json:"insights_ia,omitempty"`
	Notification string               `json:"notification,omitempty"`
}

type ProspectSummary struct {
	ProspectID   string `json:"prospect_id"`
	Resume       string `json:"resume,omitempty"`
	Notification string `json:"notification,omitempty"`
}
