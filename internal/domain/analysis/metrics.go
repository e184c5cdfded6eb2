package analysis

import (
	"math"
	"time"

	"crm-pharma-core/internal/domain/mission"

	"github.com/shopspring/decimal"
)

// Metrics indicateurs calculés pour une mission
type Metrics struct {
	ID               string          `json:"id"`
	Titre            string          `json:"titre"`
	Statut           mission.Status  `json:"statut"`
	AvancementActuel int             `json:"avancement_actuel"`
	AvancementPrevu  int             `json:"avancement_prevu"`
	EcartAvancement  int             `json:"ecart_avancement"`
	BudgetPercent    int             `json:"budget_percent"`
	Budget           decimal.Decimal `json:"budget"`
	Depenses         decimal.Decimal `json:"depenses"`
	BudgetRemaining  decimal.Decimal `json:"budget_restant"`
	DaysLeft         int             `json:"jours_restants"`
	DaysElapsed      int             `json:"jours_ecoules"`
	TotalDuration    int             `json:"duree_totale"`
	Type             mission.Type    `json:"type_mission"`
	Priorite         string          `json:"priorite"`
	ChefMission      string          `json:"chef_mission"`
	RiskScore        int             `json:"score_risque"`
	RiskLevel        Level           `json:"niveau_risque"`
}

// raw valeurs non arrondies servant au score
type raw struct {
	daysLeft      int
	daysElapsed   int
	totalDuration int
	budgetPercent float64
	planned       float64
	gap           float64
}

const dayHours = 24.0

var hundred = decimal.NewFromInt(100)

func ceilDays(d time.Duration) int {
	return int(math.Ceil(d.Hours() / dayHours))
}

func measure(m *mission.Mission, now time.Time) raw {
	r := raw{
		daysLeft:      ceilDays(m.DateFinPrevue.Sub(now)),
		daysElapsed:   ceilDays(now.Sub(m.DateDebut)),
		totalDuration: ceilDays(m.DateFinPrevue.Sub(m.DateDebut)),
	}
	if m.BudgetAlloue.IsPositive() {
		r.budgetPercent = m.BudgetDepense.Div(m.BudgetAlloue).Mul(hundred).InexactFloat64()
	}
	if r.totalDuration > 0 {
		r.planned = float64(r.daysElapsed) / float64(r.totalDuration) * 100
	}
	r.gap = float64(m.Avancement) - r.planned
	return r
}

// RiskScore score de risque 0-100, non nul uniquement pour les missions en cours
func RiskScore(m *mission.Mission, now time.Time) int {
	if m.Statut != mission.StatusEnCours {
		return 0
	}
	return score(measure(m, now))
}

func score(r raw) int {
	s := 0

	switch {
	case r.daysLeft < 1:
		s += 40
	case r.daysLeft < 3:
		s += 30
	case r.daysLeft < 7:
		s += 20
	case r.daysLeft < 14:
		s += 10
	}

	switch {
	case r.budgetPercent > 120:
		s += 35
	case r.budgetPercent > 100:
		s += 25
	case r.budgetPercent > 85:
		s += 15
	}

	switch {
	case r.gap < -30:
		s += 30
	case r.gap < -15:
		s += 20
	case r.gap < -5:
		s += 10
	}

	return max(0, min(100, s))
}

// Analyze calcule les indicateurs d'une mission
func Analyze(m *mission.Mission, now time.Time) Metrics {
	r := measure(m, now)

	risk := 0
	if m.Statut == mission.StatusEnCours {
		risk = score(r)
	}

	chef := m.ChefMissionID
	if chef == "" {
		chef = "Non assigné"
	}
	priorite := string(m.Priorite)
	if priorite == "" {
		priorite = string(mission.PriorityMoyenne)
	}

	return Metrics{
		ID:               m.ID,
		Titre:            m.Titre,
		Statut:           m.Statut,
		AvancementActuel: m.Avancement,
		AvancementPrevu:  int(math.Round(r.planned)),
		EcartAvancement:  int(math.Round(r.gap)),
		BudgetPercent:    int(math.Round(r.budgetPercent)),
		Budget:           m.BudgetAlloue,
		Depenses:         m.BudgetDepense,
		BudgetRemaining:  m.BudgetAlloue.Sub(m.BudgetDepense),
		DaysLeft:         r.daysLeft,
		DaysElapsed:      r.daysElapsed,
		TotalDuration:    r.totalDuration,
		Type:             m.Type,
		Priorite:         priorite,
		ChefMission:      chef,
		RiskScore:        risk,
		RiskLevel:        LevelFor(risk),
	}
}

// AnalyzeAll calcule les indicateurs de toute une collection
func AnalyzeAll(missions []mission.Mission, now time.Time) []Metrics {
	out := make([]Metrics, 0, len(missions))
	for i := range missions {
		out = append(out, Analyze(&missions[i], now))
	}
	return out
}
