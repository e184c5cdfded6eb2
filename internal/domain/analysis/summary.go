package analysis

import (
	"math"
	"time"

	"crm-pharma-core/internal/domain/mission"

	"github.com/shopspring/decimal"
)

// Performance agrégats du portefeuille de missions
type Performance struct {
	MissionCount     int                    `json:"total"`
	ParStatut        map[mission.Status]int `json:"par_statut"`
	EnCours          int                    `json:"en_cours"`
	Validees         int                    `json:"validees"`
	EnRetard         int                    `json:"en_retard"`
	TauxCompletion   int                    `json:"taux_completion"`
	TauxRetard       int                    `json:"taux_retard"`
	BudgetTotal      decimal.Decimal        `json:"budget_total"`
	DepensesTotal    decimal.Decimal        `json:"depenses_total"`
	BudgetEfficiency int                    `json:"efficacite_budget"`
	AverageProgress  int                    `json:"avancement_moyen"`
	ChefCount        int                    `json:"nombre_chefs"`
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// Summarize calcule les agrégats: taux de complétion (validées), taux de retard,
// efficacité budgétaire (dépensé / alloué), avancement moyen des missions en cours.
func Summarize(missions []mission.Mission, now time.Time) Performance {
	p := Performance{
		MissionCount:  len(missions),
		ParStatut:     map[mission.Status]int{},
		BudgetTotal:   decimal.Zero,
		DepensesTotal: decimal.Zero,
	}
	for _, st := range mission.AllStatuses {
		p.ParStatut[st] = 0
	}

	chefs := map[string]struct{}{}
	progress := 0
	for i := range missions {
		m := &missions[i]
		p.ParStatut[m.Statut]++
		p.BudgetTotal = p.BudgetTotal.Add(m.BudgetAlloue)
		p.DepensesTotal = p.DepensesTotal.Add(m.BudgetDepense)
		if m.ChefMissionID != "" {
			chefs[m.ChefMissionID] = struct{}{}
		}
		switch m.Statut {
		case mission.StatusEnCours:
			p.EnCours++
			progress += m.Avancement
		case mission.StatusValidee:
			p.Validees++
		}
		if mission.IsDelayed(m, now) {
			p.EnRetard++
		}
	}

	p.TauxCompletion = percent(p.Validees, p.MissionCount)
	p.TauxRetard = percent(p.EnRetard, p.MissionCount)
	if p.BudgetTotal.IsPositive() {
		p.BudgetEfficiency = int(p.DepensesTotal.Div(p.BudgetTotal).Mul(hundred).Round(0).IntPart())
	}
	if p.EnCours > 0 {
		p.AverageProgress = int(math.Round(float64(progress) / float64(p.EnCours)))
	}
	p.ChefCount = len(chefs)
	return p
}
