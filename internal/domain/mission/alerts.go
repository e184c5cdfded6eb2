package mission

import (
	"fmt"
	"slices"
	"time"
)

// AlertType type d'événement d'alerte mission
type AlertType string

const (
	AlertCreated       AlertType = "mission_created"
	AlertStarted       AlertType = "mission_started"
	AlertClosed        AlertType = "mission_closed"
	AlertValidated     AlertType = "mission_validated"
	AlertDelayed       AlertType = "mission_delayed"
	AlertBudgetWarning AlertType = "mission_budget_warning"
	AlertModified      AlertType = "mission_modified"
)

// Alert notification à destination des participants
type Alert struct {
	Type       AlertType `json:"type"`
	MissionID  string    `json:"mission_id"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Recipients []string  `json:"recipients"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAlert construit une alerte avec le gabarit de son type
func NewAlert(t AlertType, m *Mission, adminIDs []string, now time.Time) Alert {
	subject, body := template(t, m)
	return Alert{
		Type:       t,
		MissionID:  m.ID,
		Subject:    subject,
		Body:       body,
		Recipients: recipients(t, m, adminIDs),
		CreatedAt:  now,
	}
}

// AlertsFor compare l'état précédent et l'état courant et retourne les alertes à émettre.
// prev vaut nil à la création.
func AlertsFor(prev, cur *Mission, adminIDs []string, now time.Time) []Alert {
	var alerts []Alert

	if prev == nil {
		alerts = append(alerts, NewAlert(AlertCreated, cur, adminIDs, now))
	} else if prev.Statut != cur.Statut {
		switch cur.Statut {
		case StatusEnCours:
			alerts = append(alerts, NewAlert(AlertStarted, cur, adminIDs, now))
		case StatusCloturee:
			alerts = append(alerts, NewAlert(AlertClosed, cur, adminIDs, now))
		case StatusValidee:
			alerts = append(alerts, NewAlert(AlertValidated, cur, adminIDs, now))
		}
	}

	if cur.BudgetAlloue.IsPositive() {
		pct := cur.BudgetDepense.Div(cur.BudgetAlloue).Mul(hundred)
		if pct.GreaterThan(budgetAlertThresh) {
			alerts = append(alerts, NewAlert(AlertBudgetWarning, cur, adminIDs, now))
		}
	}

	if IsDelayed(cur, now) {
		alerts = append(alerts, NewAlert(AlertDelayed, cur, adminIDs, now))
	}

	return alerts
}

func template(t AlertType, m *Mission) (string, string) {
	switch t {
	case AlertCreated:
		return fmt.Sprintf("🎯 Nouvelle mission: %s", m.Titre),
			fmt.Sprintf("Une nouvelle mission a été créée pour %s", m.ClientNom)
	case AlertStarted:
		return fmt.Sprintf("⏱️ Mission en cours: %s", m.Titre),
			fmt.Sprintf("La mission %s a démarré", m.Titre)
	case AlertDelayed:
		return fmt.Sprintf("⚠️ RETARD - %s", m.Titre),
			fmt.Sprintf("La mission %s est en retard", m.Titre)
	case AlertBudgetWarning:
		return fmt.Sprintf("💰 ALERTE BUDGET - %s", m.Titre),
			fmt.Sprintf("Le budget de la mission %s approche de sa limite", m.Titre)
	case AlertClosed:
		return fmt.Sprintf("🔴 Clôture en attente de validation: %s", m.Titre),
			fmt.Sprintf("La mission %s a été clôturée par le chef. En attente de validation admin.", m.Titre)
	case AlertValidated:
		return fmt.Sprintf("✅ Mission validée: %s", m.Titre),
			fmt.Sprintf("La mission %s a été validée définitivement", m.Titre)
	case AlertModified:
		return fmt.Sprintf("✏️ Mission modifiée: %s", m.Titre),
			fmt.Sprintf("La mission %s a été modifiée", m.Titre)
	}
	return "Alerte Mission", "Nouvelle alerte"
}

// recipients participants, plus les admins pour retard, budget et clôture (dédupliqués)
func recipients(t AlertType, m *Mission, adminIDs []string) []string {
	out := m.Participants()
	if t == AlertDelayed || t == AlertBudgetWarning || t == AlertClosed {
		for _, id := range adminIDs {
			if id != "" && !slices.Contains(out, id) {
				out = append(out, id)
			}
		}
	}
	return out
}
