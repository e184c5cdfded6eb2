package analysis

import (
	"testing"
	"time"

	"crm-pharma-core/internal/domain/mission"
	"crm-pharma-core/internal/domain/prospect"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

func running(debut, fin time.Duration, avancement int, budget, depense int64) *mission.Mission {
	return &mission.Mission{
		ID:            "m",
		Titre:         "Mission",
		Statut:        mission.StatusEnCours,
		DateDebut:     now.Add(debut),
		DateFinPrevue: now.Add(fin),
		Avancement:    avancement,
		BudgetAlloue:  decimal.NewFromInt(budget),
		BudgetDepense: decimal.NewFromInt(depense),
	}
}

func TestRiskScore(t *testing.T) {
	critical := running(-10*day, 2*day, 20, 100, 130)
	assert.Equal(t, 95, RiskScore(critical, now))
	assert.Equal(t, LevelCritique, LevelFor(RiskScore(critical, now)))

	warning := running(-10*day, 10*day, 30, 100, 90)
	assert.Equal(t, 45, RiskScore(warning, now))
	assert.Equal(t, LevelAvertissement, LevelFor(45))

	normal := running(-10*day, 30*day, 25, 100, 0)
	assert.Equal(t, 0, RiskScore(normal, now))
	assert.Equal(t, LevelNormal, LevelFor(0))

	clamped := running(-10*day, -day, 0, 100, 200)
	assert.Equal(t, 100, RiskScore(clamped, now))

	closed := running(-10*day, -day, 0, 100, 200)
	closed.Statut = mission.StatusCloturee
	assert.Equal(t, 0, RiskScore(closed, now), "seules les missions en cours sont notées")
}

func TestAnalyze(t *testing.T) {
	m := running(-10*day, 10*day, 30, 100, 90)
	got := Analyze(m, now)
	assert.Equal(t, 10, got.DaysLeft)
	assert.Equal(t, 10, got.DaysElapsed)
	assert.Equal(t, 20, got.TotalDuration)
	assert.Equal(t, 50, got.AvancementPrevu)
	assert.Equal(t, -20, got.EcartAvancement)
	assert.Equal(t, 90, got.BudgetPercent)
	assert.True(t, got.BudgetRemaining.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "Non assigné", got.ChefMission)
	assert.Equal(t, LevelAvertissement, got.RiskLevel)
}

func TestClassify(t *testing.T) {
	levels := Classify([]Metrics{{RiskScore: 70}, {RiskScore: 69}, {RiskScore: 40}, {RiskScore: 39}})
	assert.Len(t, levels.Critique, 1)
	assert.Len(t, levels.Avertissement, 2)
	assert.Len(t, levels.Normal, 1)
}

func TestDetectAnomalies(t *testing.T) {
	metrics := []Metrics{
		{ID: "m1", Titre: "Retard", Statut: mission.StatusEnCours, EcartAvancement: -20, DaysLeft: 10, AvancementActuel: 50},
		{ID: "m2", Titre: "Budget", Statut: mission.StatusValidee, BudgetPercent: 160, Budget: decimal.NewFromInt(100), Depenses: decimal.NewFromInt(160), DaysLeft: -5, AvancementActuel: 100},
		{ID: "m3", Titre: "Rapide", Statut: mission.StatusEnCours, EcartAvancement: 25, DaysLeft: 1, AvancementActuel: 50},
	}

	anomalies := DetectAnomalies(metrics)
	require.Len(t, anomalies, 4)

	types := []AnomalyType{}
	for _, a := range anomalies {
		types = append(types, a.Type)
	}
	assert.Equal(t, []AnomalyType{
		AnomalyDepassementBudget,
		AnomalyUrgenceInachevement,
		AnomalyRetardChronologique,
		AnomalyQualiteSuspecte,
	}, types)
	assert.Equal(t, SeverityCritique, anomalies[0].Severity)
	assert.Equal(t, "Dépassement de 60% (160 DA / 100 DA)", anomalies[0].Description)
	assert.Equal(t, "20% en retard sur le calendrier prévu", anomalies[2].Description)
}

func TestSummarize(t *testing.T) {
	missions := []mission.Mission{
		{Statut: mission.StatusEnCours, Avancement: 40, BudgetAlloue: decimal.NewFromInt(100), BudgetDepense: decimal.NewFromInt(50), ChefMissionID: "c1", DateFinPrevue: now.Add(5 * day)},
		{Statut: mission.StatusEnCours, Avancement: 60, BudgetAlloue: decimal.NewFromInt(100), BudgetDepense: decimal.NewFromInt(30), ChefMissionID: "c2", DateFinPrevue: now.Add(-5 * day)},
		{Statut: mission.StatusValidee, BudgetAlloue: decimal.NewFromInt(200), BudgetDepense: decimal.NewFromInt(120), ChefMissionID: "c1", DateFinPrevue: now.Add(-20 * day)},
		{Statut: mission.StatusCreee, BudgetAlloue: decimal.NewFromInt(100), BudgetDepense: decimal.Zero, ChefMissionID: "c3", DateFinPrevue: now.Add(20 * day)},
	}

	p := Summarize(missions, now)
	assert.Equal(t, 4, p.MissionCount)
	assert.Equal(t, 2, p.ParStatut[mission.StatusEnCours])
	assert.Equal(t, 0, p.ParStatut[mission.StatusCloturee])
	assert.Equal(t, 25, p.TauxCompletion)
	assert.Equal(t, 25, p.TauxRetard)
	assert.Equal(t, 40, p.BudgetEfficiency)
	assert.Equal(t, 50, p.AverageProgress)
	assert.Equal(t, 3, p.ChefCount)

	empty := Summarize(nil, now)
	assert.Zero(t, empty.TauxCompletion)
	assert.Zero(t, empty.BudgetEfficiency)
}

func TestComputeTrends(t *testing.T) {
	metrics := []Metrics{
		{Statut: mission.StatusValidee, BudgetPercent: 90, DaysLeft: -3},
		{Statut: mission.StatusEnCours, BudgetPercent: 130, DaysLeft: 2},
		{Statut: mission.StatusCloturee, BudgetPercent: 50},
		{Statut: mission.StatusEnCours, BudgetPercent: 80, DaysLeft: 10},
	}
	tr := ComputeTrends(metrics, Performance{MissionCount: 12, ChefCount: 2})

	assert.Equal(t, TrendCard{Status: "improving", Value: 0.5, Icon: "📈"}, tr.Velocity)
	assert.Equal(t, TrendCard{Status: "sain", Value: 75, Icon: "✅"}, tr.Budget)
	assert.Equal(t, TrendCard{Status: "contrôlée", Value: 6, Icon: "✅"}, tr.Deadline)
	assert.Equal(t, TrendCard{Status: "élevée", Value: 6, Icon: "👥⚠️"}, tr.TeamLoad)

	empty := ComputeTrends(nil, Performance{})
	assert.Equal(t, "declining", empty.Velocity.Status)
	assert.Equal(t, "critique", empty.Budget.Status)
}

func TestRecommend(t *testing.T) {
	levels := RiskLevels{Critique: []Metrics{{Titre: "A"}, {Titre: "B"}, {Titre: "C"}}}
	recs := Recommend(nil, levels, nil, Performance{TauxCompletion: 20})
	require.Len(t, recs, 3)
	assert.Equal(t, "INTERVENTION IMMÉDIATE: 3 Mission(s) Critique(s)", recs[0].Title)
	assert.Equal(t, "Les missions suivantes nécessitent une action immédiate: A, B...", recs[0].Description)
	assert.Equal(t, "Taux de Complétion Faible", recs[1].Title)
	assert.Equal(t, "Vélocité à Optimiser", recs[2].Title)

	recs = Recommend(nil, RiskLevels{}, nil, Performance{TauxCompletion: 80})
	require.Len(t, recs, 1)
	assert.Equal(t, "success", recs[0].Severity)

	over := []Metrics{{BudgetPercent: 110}, {BudgetPercent: 50}}
	anomalies := []Anomaly{{Severity: SeverityCritique, Description: "d", Action: "a"}}
	recs = Recommend(over, RiskLevels{}, anomalies, Performance{TauxCompletion: 65})
	require.Len(t, recs, 2)
	assert.Equal(t, "1 Anomalie(s) Critique(s)", recs[0].Title)
	assert.Equal(t, "Dépassements Budgétaires Récurrents", recs[1].Title)
}

func TestGenerate(t *testing.T) {
	missions := []mission.Mission{
		*running(-10*day, 2*day, 20, 100, 130),
		*running(-10*day, 30*day, 25, 100, 0),
	}
	ins := Generate(missions, now)
	assert.Equal(t, 2, ins.Summary.TotalMissions)
	assert.Equal(t, 1, ins.Summary.CriticalMissions)
	assert.Equal(t, 1, ins.Summary.NormalMissions)
	assert.Equal(t, len(ins.Anomalies), ins.Summary.DetectedAnomalies)
	assert.Equal(t, now, ins.GeneratedAt)
}

func TestReport(t *testing.T) {
	m := running(-10*day, 2*day, 90, 100, 90)
	r := Report(m, now)
	assert.Equal(t, mission.DelayARisque, r.Delay.Level)
	assert.True(t, r.Budget.RisqueDepassement)
	assert.Equal(t, 2, r.Metrics.DaysLeft)
}

func TestParseAIInsights(t *testing.T) {
	text := "```json\n[{\"type\":\"risque\",\"title\":\"Budget\",\"message\":\"Surveiller\"}]\n```"
	got, err := ParseAIInsights(text)
	require.NoError(t, err)
	assert.Equal(t, []AIInsight{{Type: "risque", Title: "Budget", Message: "Surveiller"}}, got)

	_, err = ParseAIInsights("désolé, je ne peux pas")
	assert.Error(t, err)
	_, err = ParseAIInsights("[]")
	assert.Error(t, err)
}

func TestPrompts(t *testing.T) {
	p := MissionsPrompt(Performance{MissionCount: 7, BudgetTotal: decimal.NewFromInt(1500), DepensesTotal: decimal.Zero})
	assert.Contains(t, p, "- Total missions: 7")
	assert.Contains(t, p, "- Budget total: 1500 DA")

	pr := &prospect.Prospect{RaisonSociale: "Pharma Est", Secteur: "AUTRE", Statut: prospect.StatusProspect}
	text := ProspectPrompt(pr, nil)
	assert.Contains(t, text, "Raison sociale: Pharma Est")
	assert.Contains(t, text, "aucune action enregistrée")
}
