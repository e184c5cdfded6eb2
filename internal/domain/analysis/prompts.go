package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"crm-pharma-core/internal/domain/prospect"
)

// AIInsight insight rédigé par le service de génération de texte
type AIInsight struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// MissionsPrompt gabarit envoyé au modèle pour les insights du portefeuille de missions
func MissionsPrompt(perf Performance) string {
	var b strings.Builder
	b.WriteString("Tu es un expert en gestion de projets et missions.\n\n")
	b.WriteString("Analyse ces données de missions et fournis EXACTEMENT 4 insights en français, courts et directs (max 40 mots par insight).\n\n")
	b.WriteString("DONNÉES MISSIONS:\n")
	fmt.Fprintf(&b, "- Total missions: %d\n", perf.MissionCount)
	fmt.Fprintf(&b, "- En cours: %d\n", perf.EnCours)
	fmt.Fprintf(&b, "- Validées: %d\n", perf.Validees)
	fmt.Fprintf(&b, "- Retardées: %d\n", perf.EnRetard)
	fmt.Fprintf(&b, "- Budget total: %s DA\n", perf.BudgetTotal.StringFixed(0))
	fmt.Fprintf(&b, "- Dépenses: %s DA\n", perf.DepensesTotal.StringFixed(0))
	fmt.Fprintf(&b, "- Taux utilisation budget: %d%%\n", perf.BudgetEfficiency)
	fmt.Fprintf(&b, "- Avancement moyen: %d%%\n\n", perf.AverageProgress)
	b.WriteString("Catégories: risque, opportunite, action, tendance.\n")
	b.WriteString(`FORMAT JSON STRICT (RÉPONDS UNIQUEMENT CECI): [{"type": "risque", "title": "Titre court", "message": "Insight"}, ...]`)
	return b.String()
}

// ProspectPrompt gabarit de résumé d'un prospect et de son historique
func ProspectPrompt(p *prospect.Prospect, history []prospect.HistoryEntry) string {
	var b strings.Builder
	b.WriteString("Tu es un assistant commercial pour un éditeur de logiciels pharmaceutiques en Algérie.\n")
	b.WriteString("Rédige un résumé court (max 80 mots) de la relation avec ce prospect et propose la prochaine action.\n\n")
	fmt.Fprintf(&b, "Raison sociale: %s\n", p.RaisonSociale)
	fmt.Fprintf(&b, "Secteur: %s\n", p.Secteur)
	fmt.Fprintf(&b, "Statut: %s\n", p.Statut)
	if p.Temperature != "" {
		fmt.Fprintf(&b, "Température: %s\n", p.Temperature)
	}
	if p.Wilaya != "" {
		fmt.Fprintf(&b, "Wilaya: %s\n", p.Wilaya)
	}
	b.WriteString("\nHISTORIQUE (du plus récent au plus ancien):\n")
	for i, h := range history {
		if i == 10 {
			break
		}
		fmt.Fprintf(&b, "- %s %s: %s\n", h.CreatedAt.Format("2006-01-02"), h.Action, h.Description)
	}
	if len(history) == 0 {
		b.WriteString("- aucune action enregistrée\n")
	}
	return b.String()
}

// ParseAIInsights extrait le tableau JSON d'une réponse, blocs markdown retirés
func ParseAIInsights(text string) ([]AIInsight, error) {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var insights []AIInsight
	if err := json.Unmarshal([]byte(clean), &insights); err != nil {
		return nil, fmt.Errorf("réponse du modèle illisible: %w", err)
	}
	if len(insights) == 0 {
		return nil, fmt.Errorf("réponse du modèle vide")
	}
	return insights, nil
}
