package analysis

import (
	"time"

	"crm-pharma-core/internal/domain/mission"
)

// Summary résumé chiffré des insights
type Summary struct {
	TotalMissions     int `json:"total_missions"`
	CriticalMissions  int `json:"missions_critiques"`
	WarningMissions   int `json:"missions_avertissement"`
	NormalMissions    int `json:"missions_normales"`
	DetectedAnomalies int `json:"anomalies_detectees"`
	CompletionRate    int `json:"taux_completion"`
	BudgetHealth      int `json:"sante_budget"`
}

// Insights analyse complète d'un portefeuille de missions
type Insights struct {
	Metrics         []Metrics        `json:"missions"`
	RiskLevels      RiskLevels       `json:"niveaux_risque"`
	Anomalies       []Anomaly        `json:"anomalies"`
	Performance     Performance      `json:"performance"`
	Trends          Trends           `json:"tendances"`
	Recommendations []Recommendation `json:"recommandations"`
	Summary         Summary          `json:"resume"`
	GeneratedAt     time.Time        `json:"genere_le"`
}

// Generate enchaîne indicateurs, classement, anomalies, agrégats, tendances et recommandations
func Generate(missions []mission.Mission, now time.Time) Insights {
	metrics := AnalyzeAll(missions, now)
	levels := Classify(metrics)
	anomalies := DetectAnomalies(metrics)
	perf := Summarize(missions, now)

	return Insights{
		Metrics:         metrics,
		RiskLevels:      levels,
		Anomalies:       anomalies,
		Performance:     perf,
		Trends:          ComputeTrends(metrics, perf),
		Recommendations: Recommend(metrics, levels, anomalies, perf),
		Summary: Summary{
			TotalMissions:     len(missions),
			CriticalMissions:  len(levels.Critique),
			WarningMissions:   len(levels.Avertissement),
			NormalMissions:    len(levels.Normal),
			DetectedAnomalies: len(anomalies),
			CompletionRate:    perf.TauxCompletion,
			BudgetHealth:      perf.BudgetEfficiency,
		},
		GeneratedAt: now,
	}
}

// MissionReport analyse détaillée d'une seule mission
type MissionReport struct {
	Metrics   Metrics                `json:"indicateurs"`
	Delay     mission.DelayIndicator `json:"retard"`
	Budget    mission.BudgetUsage    `json:"budget"`
	Anomalies []Anomaly              `json:"anomalies"`
}

func Report(m *mission.Mission, now time.Time) MissionReport {
	metrics := Analyze(m, now)
	return MissionReport{
		Metrics:   metrics,
		Delay:     mission.Delay(m, now),
		Budget:    mission.Budget(m.BudgetAlloue, m.BudgetDepense),
		Anomalies: DetectAnomalies([]Metrics{metrics}),
	}
}
