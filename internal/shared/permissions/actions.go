package permissions

import (
	"fmt"

	"crm-pharma-core/internal/domain/mission"
)

// Action action contrôlée sur une mission
type Action string

const (
	ActionCreate                Action = "create"
	ActionView                  Action = "view"
	ActionEdit                  Action = "edit"
	ActionDelete                Action = "delete"
	ActionStart                 Action = "start"
	ActionClose                 Action = "close"
	ActionValidate              Action = "validate"
	ActionViewExpenses          Action = "viewExpenses"
	ActionAddExpenses           Action = "addExpenses"
	ActionEditExpenses          Action = "editExpenses"
	ActionEditTechnical         Action = "editTechnical"
	ActionDownloadJustificatifs Action = "downloadJustificatifs"
)

type rule struct {
	action  Action
	allowed func(Actor, *mission.Mission) bool
	code    string
	message string
}

// rules ordre d'affichage des actions disponibles
var rules = []rule{
	{ActionView, CanViewMission, "ACCESS_DENIED", "Vous n'avez pas accès à cette mission"},
	{ActionEdit, CanEditMission, "CANNOT_EDIT_MISSION", "Vous n'avez pas la permission de modifier cette mission"},
	{ActionDelete, CanDeleteMission, "CANNOT_DELETE_MISSION", "Vous n'avez pas la permission de supprimer cette mission"},
	{ActionStart, CanStartMission, "CANNOT_START_MISSION", "Seul le Chef de Mission peut démarrer cette mission"},
	{ActionClose, CanCloseMission, "CANNOT_CLOSE_MISSION", "Seul le Chef de Mission peut clôturer cette mission"},
	{ActionValidate, CanValidateMission, "CANNOT_VALIDATE_MISSION", "Seul un Administrateur peut valider la clôture"},
	{ActionViewExpenses, CanViewExpenses, "CANNOT_VIEW_EXPENSES", "Vous n'avez pas accès aux dépenses de cette mission"},
	{ActionAddExpenses, CanAddExpenses, "CANNOT_ADD_EXPENSES", "Vous n'avez pas la permission d'ajouter des dépenses"},
	{ActionEditExpenses, CanEditExpenses, "CANNOT_EDIT_EXPENSES", "Vous n'avez pas la permission de modifier les dépenses"},
	{ActionEditTechnical, CanEditTechnicalDetails, "CANNOT_EDIT_TECHNICAL", "Vous n'avez pas la permission de modifier les détails techniques"},
	{ActionDownloadJustificatifs, CanDownloadJustificatifs, "CANNOT_DOWNLOAD_JUSTIFICATIFS", "Vous n'avez pas accès aux justificatifs"},
}

var createRule = rule{
	action:  ActionCreate,
	allowed: func(a Actor, _ *mission.Mission) bool { return CanCreateMission(a) },
	code:    "CANNOT_CREATE_MISSION",
	message: "Seul un Administrateur peut créer une mission",
}

func lookup(action Action) (rule, bool) {
	if action == ActionCreate {
		return createRule, true
	}
	for _, r := range rules {
		if r.action == action {
			return r, true
		}
	}
	return rule{}, false
}

// Message texte de refus d'une action
func Message(action Action) string {
	if r, ok := lookup(action); ok {
		return r.message
	}
	return "Accès refusé"
}

// Code code d'erreur retourné au client pour un refus
func Code(action Action) string {
	if r, ok := lookup(action); ok {
		return r.code
	}
	return "ACCESS_DENIED"
}

// Allowed évalue une action
func Allowed(a Actor, m *mission.Mission, action Action) bool {
	r, ok := lookup(action)
	if !ok {
		return false
	}
	return r.allowed(a, m)
}

// AvailableActions actions permises pour cet acteur sur cette mission
func AvailableActions(a Actor, m *mission.Mission) []Action {
	actions := []Action{}
	if CanCreateMission(a) {
		actions = append(actions, ActionCreate)
	}
	for _, r := range rules {
		if r.allowed(a, m) {
			actions = append(actions, r.action)
		}
	}
	return actions
}

// DeniedError refus d'une action par la matrice
type DeniedError struct {
	Action  Action
	Code    string
	Message string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Action)
}

// Check retourne un *DeniedError si l'action est refusée
func Check(a Actor, m *mission.Mission, action Action) error {
	if Allowed(a, m, action) {
		return nil
	}
	return &DeniedError{Action: action, Code: Code(action), Message: Message(action)}
}
