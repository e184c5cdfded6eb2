package analysis

import (
	"fmt"
	"strings"
)

// Recommendation message généré à partir des seuils
type Recommendation struct {
	Priority    string `json:"priorite"`
	Severity    string `json:"severite"`
	Icon        string `json:"icone"`
	Title       string `json:"titre"`
	Description string `json:"description"`
	Action      string `json:"action"`
}

// Recommend vérifie chaque seuil tour à tour et ajoute le message correspondant
func Recommend(metrics []Metrics, levels RiskLevels, anomalies []Anomaly, perf Performance) []Recommendation {
	recs := []Recommendation{}

	if n := len(levels.Critique); n > 0 {
		titles := make([]string, 0, 2)
		for _, m := range levels.Critique[:min(n, 2)] {
			titles = append(titles, m.Titre)
		}
		suffix := ""
		if n > 2 {
			suffix = "..."
		}
		recs = append(recs, Recommendation{
			Priority:    "urgent",
			Severity:    "critique",
			Icon:        "🔴",
			Title:       fmt.Sprintf("INTERVENTION IMMÉDIATE: %d Mission(s) Critique(s)", n),
			Description: fmt.Sprintf("Les missions suivantes nécessitent une action immédiate: %s%s", strings.Join(titles, ", "), suffix),
			Action:      "Réunion de crise, allouer des ressources supplémentaires",
		})
	}

	var critical []Anomaly
	for _, a := range anomalies {
		if a.Severity == SeverityCritique {
			critical = append(critical, a)
		}
	}
	if len(critical) > 0 {
		recs = append(recs, Recommendation{
			Priority:    "urgent",
			Severity:    "critique",
			Icon:        "⚠️",
			Title:       fmt.Sprintf("%d Anomalie(s) Critique(s)", len(critical)),
			Description: critical[0].Description,
			Action:      critical[0].Action,
		})
	}

	if perf.TauxCompletion < 60 {
		recs = append(recs, Recommendation{
			Priority:    "haute",
			Severity:    "avertissement",
			Icon:        "📉",
			Title:       "Taux de Complétion Faible",
			Description: fmt.Sprintf("%d%% de complétion (objectif: 80%%+). Revoir la planification ou augmenter les ressources.", perf.TauxCompletion),
			Action:      "Analyser les goulots d'étranglement et les blocages",
		})
	}

	overBudget := 0
	for _, m := range metrics {
		if m.BudgetPercent > 100 {
			overBudget++
		}
	}
	if float64(overBudget) > float64(len(metrics))*0.3 {
		recs = append(recs, Recommendation{
			Priority:    "haute",
			Severity:    "avertissement",
			Icon:        "💰",
			Title:       "Dépassements Budgétaires Récurrents",
			Description: fmt.Sprintf("%d mission(s) en dépassement. Plus de 30%% du portefeuille affecté.", overBudget),
			Action:      "Revoir le modèle d'estimation et les marges de sécurité",
		})
	}

	if perf.TauxCompletion > 0 && perf.TauxCompletion < 30 {
		recs = append(recs, Recommendation{
			Priority:    "moyenne",
			Severity:    "info",
			Icon:        "📊",
			Title:       "Vélocité à Optimiser",
			Description: "La cadence actuelle laisse peu de marge. Considérer une augmentation de capacité.",
			Action:      "Évaluer les ressources disponibles et la charge de travail",
		})
	}

	if perf.TauxCompletion > 70 && len(levels.Critique) == 0 {
		recs = append(recs, Recommendation{
			Priority:    "info",
			Severity:    "success",
			Icon:        "🎯",
			Title:       "Excellent Taux de Complétion",
			Description: fmt.Sprintf("Performance de %d%%, équipe en excellente trajectoire.", perf.TauxCompletion),
			Action:      "Maintenir la dynamique actuelle",
		})
	}

	return recs
}
