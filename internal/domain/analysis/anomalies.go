package analysis

import (
	"fmt"
	"sort"

	"crm-pharma-core/internal/domain/mission"
)

// AnomalyType catégorie d'anomalie détectée
type AnomalyType string

const (
	AnomalyRetardChronologique AnomalyType = "retard_chronologique"
	AnomalyDepassementBudget   AnomalyType = "depassement_budget"
	AnomalyQualiteSuspecte     AnomalyType = "qualite_suspecte"
	AnomalyUrgenceInachevement AnomalyType = "urgence_inachevement"
)

// Severity gravité d'une anomalie
type Severity string

const (
	SeverityCritique Severity = "critique"
	SeverityHaute    Severity = "haute"
	SeverityMoyenne  Severity = "moyenne"
)

var severityRank = map[Severity]int{SeverityCritique: 3, SeverityHaute: 2, SeverityMoyenne: 1}

type Anomaly struct {
	Type        AnomalyType `json:"type"`
	MissionID   string      `json:"mission_id"`
	Severity    Severity    `json:"severite"`
	Title       string      `json:"titre"`
	Description string      `json:"description"`
	Action      string      `json:"action"`
}

// DetectAnomalies parcourt les indicateurs et retourne les anomalies, les plus graves d'abord
func DetectAnomalies(metrics []Metrics) []Anomaly {
	anomalies := []Anomaly{}

	for _, m := range metrics {
		running := m.Statut == mission.StatusEnCours

		if running && m.EcartAvancement < -15 {
			anomalies = append(anomalies, Anomaly{
				Type:        AnomalyRetardChronologique,
				MissionID:   m.ID,
				Severity:    SeverityHaute,
				Title:       fmt.Sprintf("⏰ Retard Chronologique: %s", m.Titre),
				Description: fmt.Sprintf("%d%% en retard sur le calendrier prévu", -m.EcartAvancement),
				Action:      "Accélérer l'exécution ou reprogrammer",
			})
		}

		if m.BudgetPercent > 120 {
			severity := SeverityHaute
			if m.BudgetPercent > 150 {
				severity = SeverityCritique
			}
			desc := fmt.Sprintf("Dépassement de %d%% (%s DA / %s DA)",
				m.BudgetPercent-100, m.Depenses.StringFixed(0), m.Budget.StringFixed(0))
			anomalies = append(anomalies, Anomaly{
				Type:        AnomalyDepassementBudget,
				MissionID:   m.ID,
				Severity:    severity,
				Title:       fmt.Sprintf("💰 Dépassement Budget: %s", m.Titre),
				Description: desc,
				Action:      "Revoir le budget ou demander des crédits supplémentaires",
			})
		}

		if running && m.EcartAvancement > 20 {
			anomalies = append(anomalies, Anomaly{
				Type:        AnomalyQualiteSuspecte,
				MissionID:   m.ID,
				Severity:    SeverityMoyenne,
				Title:       fmt.Sprintf("⚡ Progression Rapide: %s", m.Titre),
				Description: fmt.Sprintf("%d%% d'avance sur le calendrier, vérifier la qualité", m.EcartAvancement),
				Action:      "Audit qualité pour confirmer la conformité",
			})
		}

		if !m.Statut.IsClosed() && m.DaysLeft < 3 && m.AvancementActuel < 80 {
			anomalies = append(anomalies, Anomaly{
				Type:        AnomalyUrgenceInachevement,
				MissionID:   m.ID,
				Severity:    SeverityCritique,
				Title:       fmt.Sprintf("🔴 CRITIQUE: %s", m.Titre),
				Description: fmt.Sprintf("%d jour(s) restant(s), seulement %d%% complété", m.DaysLeft, m.AvancementActuel),
				Action:      "Intervention immédiate requise",
			})
		}
	}

	sort.SliceStable(anomalies, func(i, j int) bool {
		return severityRank[anomalies[i].Severity] > severityRank[anomalies[j].Severity]
	})
	return anomalies
}
