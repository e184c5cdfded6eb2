package analysis

import (
	"math"

	"crm-pharma-core/internal/domain/mission"
)

// TrendCard carte de tendance avec libellé qualitatif
type TrendCard struct {
	Status string  `json:"statut"`
	Value  float64 `json:"valeur"`
	Icon   string  `json:"icone"`
}

// Trends les quatre cartes du tableau de bord
type Trends struct {
	Velocity TrendCard `json:"velocite"`
	Budget   TrendCard `json:"budget"`
	Deadline TrendCard `json:"delais"`
	TeamLoad TrendCard `json:"charge_equipe"`
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

// ComputeTrends dérive les cartes à partir de ratios simples et de seuils fixes
func ComputeTrends(metrics []Metrics, perf Performance) Trends {
	n := float64(max(len(metrics), 1))

	completed, withinBudget, onTime, running, daysLeftSum := 0, 0, 0, 0, 0
	for _, m := range metrics {
		if m.Statut.IsClosed() {
			completed++
		}
		if m.BudgetPercent <= 100 {
			withinBudget++
		}
		isRunning := m.Statut == mission.StatusEnCours
		if m.DaysLeft >= 7 || !isRunning {
			onTime++
		}
		if isRunning {
			running++
			daysLeftSum += max(0, m.DaysLeft)
		}
	}

	completionRate := float64(completed) / n
	efficiency := float64(withinBudget) / n * 100
	onTimeRate := float64(onTime) / n
	avgDaysLeft := float64(daysLeftSum) / float64(max(running, 1))
	loadPerChef := float64(perf.MissionCount) / float64(max(perf.ChefCount, 1))

	var t Trends

	switch {
	case completionRate > 0.4:
		t.Velocity = TrendCard{Status: "improving", Icon: "📈"}
	case completionRate > 0.2:
		t.Velocity = TrendCard{Status: "stable", Icon: "➡️"}
	default:
		t.Velocity = TrendCard{Status: "declining", Icon: "📉"}
	}
	t.Velocity.Value = round1(completionRate)

	switch {
	case efficiency > 70:
		t.Budget = TrendCard{Status: "sain", Icon: "✅"}
	case efficiency > 50:
		t.Budget = TrendCard{Status: "moyen", Icon: "⚠️"}
	default:
		t.Budget = TrendCard{Status: "critique", Icon: "🔴"}
	}
	t.Budget.Value = math.Round(efficiency)

	if onTimeRate > 0.7 {
		t.Deadline = TrendCard{Status: "contrôlée", Icon: "✅"}
	} else {
		t.Deadline = TrendCard{Status: "serrée", Icon: "⏰"}
	}
	t.Deadline.Value = math.Round(avgDaysLeft)

	if loadPerChef > 5 {
		t.TeamLoad = TrendCard{Status: "élevée", Icon: "👥⚠️"}
	} else {
		t.TeamLoad = TrendCard{Status: "normale", Icon: "👥✅"}
	}
	t.TeamLoad.Value = round1(loadPerChef)

	return t
}
