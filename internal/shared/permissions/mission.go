package permissions

import "crm-pharma-core/internal/domain/mission"

// Matrice des droits sur une mission. Chaque prédicat est pur et réévalué à chaque requête.

func isChef(a Actor, m *mission.Mission) bool { return m.IsChef(a.UserID) }

// CanCreateMission création réservée aux administrateurs
func CanCreateMission(a Actor) bool {
	return a.IsAdmin()
}

// CanEditMission admin tant que la clôture n'est pas définitive; chef tant qu'il n'a pas clôturé.
// Un chef également admin n'est pas gelé par sa propre clôture.
func CanEditMission(a Actor, m *mission.Mission) bool {
	if a.IsAdmin() {
		return !m.ClotureeDefinitive
	}
	return isChef(a, m) && !m.ClotureeParChef
}

// CanDeleteMission admin ou créateur, tant que la mission n'est pas clôturée
func CanDeleteMission(a Actor, m *mission.Mission) bool {
	if m.Statut.IsClosed() || m.ClotureeParChef {
		return false
	}
	return a.IsAdmin() || (a.UserID != "" && m.CreatedBy == a.UserID)
}

// CanStartMission chef assigné, mission non démarrée
func CanStartMission(a Actor, m *mission.Mission) bool {
	return isChef(a, m) && m.Statut.NotStarted()
}

// CanCloseMission chef assigné, mission en cours
func CanCloseMission(a Actor, m *mission.Mission) bool {
	return isChef(a, m) && m.Statut == mission.StatusEnCours && !m.ClotureeParChef
}

// CanValidateMission admin, après clôture du chef et avant clôture définitive
func CanValidateMission(a Actor, m *mission.Mission) bool {
	return a.IsAdmin() && m.ClotureeParChef && !m.ClotureeDefinitive
}

// CanViewMission chef, accompagnateurs ou administrateurs
func CanViewMission(a Actor, m *mission.Mission) bool {
	return a.IsAdmin() || isChef(a, m) || m.IsAccompagnateur(a.UserID)
}

// CanViewExpenses administrateurs, comptabilité et chef assigné
func CanViewExpenses(a Actor, m *mission.Mission) bool {
	return a.IsAdmin() || a.Role == RoleComptabilite || isChef(a, m)
}

// CanAddExpenses mêmes acteurs que la consultation, gelé comme la modification
func CanAddExpenses(a Actor, m *mission.Mission) bool {
	return CanEditExpenses(a, m)
}

// CanEditExpenses chef et comptabilité avant la clôture du chef; seul un admin modifie
// ensuite, jusqu'à la clôture définitive
func CanEditExpenses(a Actor, m *mission.Mission) bool {
	if a.IsAdmin() {
		return !m.ClotureeDefinitive
	}
	if isChef(a, m) || a.Role == RoleComptabilite {
		return !m.ClotureeParChef
	}
	return false
}

// CanEditTechnicalDetails chef ou technicien accompagnateur avant la clôture du chef;
// administrateurs avant la clôture définitive
func CanEditTechnicalDetails(a Actor, m *mission.Mission) bool {
	if a.IsAdmin() {
		return !m.ClotureeDefinitive
	}
	if isChef(a, m) || (a.Role == RoleTechnicien && m.IsAccompagnateur(a.UserID)) {
		return !m.ClotureeParChef
	}
	return false
}

// CanDownloadJustificatifs administrateurs, comptabilité et chef assigné
func CanDownloadJustificatifs(a Actor, m *mission.Mission) bool {
	return a.IsAdmin() || a.Role == RoleComptabilite || isChef(a, m)
}
