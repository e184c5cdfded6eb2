package permissions

import (
	"testing"
	"time"

	"crm-pharma-core/internal/domain/mission"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin      = Actor{UserID: "admin", Role: RoleAdmin}
	superAdmin = Actor{UserID: "root", Role: RoleSuperAdmin}
	chef       = Actor{UserID: "chef", Role: RoleChefMission}
	chefAdmin  = Actor{UserID: "chef", Role: RoleAdmin}
	tech       = Actor{UserID: "tech", Role: RoleTechnicien}
	compta     = Actor{UserID: "compta", Role: RoleComptabilite}
	outsider   = Actor{UserID: "y", Role: RoleCommercial}
)

func newMission(st mission.Status) *mission.Mission {
	return &mission.Mission{
		ID:                 "m-1",
		Statut:             st,
		ChefMissionID:      "chef",
		AccompagnateursIDs: []string{"tech"},
		CreatedBy:          "creator",
		DateFinPrevue:      time.Now().Add(48 * time.Hour),
	}
}

func chefClosed() *mission.Mission {
	m := newMission(mission.StatusCloturee)
	m.ClotureeParChef = true
	return m
}

func validated() *mission.Mission {
	m := chefClosed()
	m.Statut = mission.StatusValidee
	m.ClotureeDefinitive = true
	return m
}

func TestCanEditMission_Property(t *testing.T) {
	states := []*mission.Mission{newMission(mission.StatusCreee), newMission(mission.StatusEnCours), chefClosed(), validated()}
	actors := []Actor{admin, superAdmin, chef, chefAdmin, tech, compta, outsider, {UserID: "c", Role: RoleClient}}

	for _, m := range states {
		for _, a := range actors {
			got := CanEditMission(a, m)
			want := (a.IsAdmin() && !m.ClotureeDefinitive) ||
				(m.IsChef(a.UserID) && !m.ClotureeParChef)
			assert.Equal(t, want, got, "role=%s user=%s statut=%s", a.Role, a.UserID, m.Statut)
			if m.ClotureeParChef && !a.IsAdmin() {
				assert.False(t, got, "gel après clôture du chef pour %s", a.UserID)
			}
		}
	}
}

func TestChefAdminBypassesFreeze(t *testing.T) {
	m := chefClosed()
	assert.False(t, CanEditMission(chef, m))
	assert.True(t, CanEditMission(chefAdmin, m))
	assert.True(t, CanEditTechnicalDetails(chefAdmin, m))
}

func TestCanViewMission(t *testing.T) {
	m := newMission(mission.StatusEnCours)
	assert.True(t, CanViewMission(chef, m))
	assert.True(t, CanViewMission(tech, m))
	assert.True(t, CanViewMission(admin, m))
	assert.False(t, CanViewMission(outsider, m))
	assert.False(t, CanViewMission(compta, m))

	err := Check(outsider, m, ActionView)
	var denied *DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "ACCESS_DENIED", denied.Code)
}

func TestLifecyclePredicates(t *testing.T) {
	creee := newMission(mission.StatusCreee)
	assert.True(t, CanStartMission(chef, creee))
	assert.False(t, CanStartMission(admin, creee))
	assert.True(t, CanStartMission(chef, newMission(mission.StatusPlanifiee)))

	running := newMission(mission.StatusEnCours)
	assert.False(t, CanStartMission(chef, running))
	assert.True(t, CanCloseMission(chef, running))
	assert.False(t, CanCloseMission(admin, running))
	assert.False(t, CanCloseMission(tech, running))
	assert.False(t, CanValidateMission(admin, running))

	closed := chefClosed()
	assert.False(t, CanCloseMission(chef, closed))
	assert.True(t, CanValidateMission(admin, closed))
	assert.True(t, CanValidateMission(superAdmin, closed))
	assert.False(t, CanValidateMission(chef, closed))

	assert.False(t, CanValidateMission(admin, validated()))
	assert.True(t, CanCreateMission(admin))
	assert.False(t, CanCreateMission(chef))
	assert.False(t, CanCreateMission(outsider))
}

func TestCanDeleteMission(t *testing.T) {
	creator := Actor{UserID: "creator", Role: RoleCommercial}
	m := newMission(mission.StatusEnCours)
	assert.True(t, CanDeleteMission(admin, m))
	assert.True(t, CanDeleteMission(creator, m))
	assert.False(t, CanDeleteMission(chef, m))

	assert.False(t, CanDeleteMission(admin, chefClosed()))
	assert.False(t, CanDeleteMission(creator, validated()))
}

func TestExpensesMatrix(t *testing.T) {
	running := newMission(mission.StatusEnCours)
	assert.True(t, CanViewExpenses(chef, running))
	assert.True(t, CanViewExpenses(compta, running))
	assert.False(t, CanViewExpenses(tech, running))
	assert.True(t, CanAddExpenses(chef, running))
	assert.True(t, CanDownloadJustificatifs(compta, running))
	assert.False(t, CanDownloadJustificatifs(tech, running))

	closed := chefClosed()
	assert.False(t, CanEditExpenses(chef, closed))
	assert.False(t, CanAddExpenses(chef, closed))
	assert.False(t, CanEditExpenses(compta, closed))
	assert.False(t, CanAddExpenses(compta, closed))
	assert.True(t, CanEditExpenses(admin, closed))
	assert.True(t, CanEditExpenses(compta, running))
	assert.True(t, CanViewExpenses(chef, closed))

	final := validated()
	assert.False(t, CanEditExpenses(admin, final))
	assert.False(t, CanEditExpenses(compta, final))
}

// Après la clôture du chef, aucun non-admin ne touche aux dépenses
func TestExpensesFrozenAfterChefClosure_Property(t *testing.T) {
	actors := []Actor{admin, superAdmin, chef, chefAdmin, tech, compta, outsider, {UserID: "c", Role: RoleClient}}
	for _, m := range []*mission.Mission{chefClosed(), validated()} {
		for _, a := range actors {
			if a.IsAdmin() {
				continue
			}
			assert.False(t, CanEditExpenses(a, m), "role=%s statut=%s", a.Role, m.Statut)
			assert.False(t, CanAddExpenses(a, m), "role=%s statut=%s", a.Role, m.Statut)
		}
	}
}

func TestTechnicalMatrix(t *testing.T) {
	running := newMission(mission.StatusEnCours)
	assert.True(t, CanEditTechnicalDetails(tech, running))
	assert.False(t, CanEditTechnicalDetails(Actor{UserID: "other-tech", Role: RoleTechnicien}, running))
	assert.False(t, CanEditTechnicalDetails(tech, chefClosed()))
	assert.True(t, CanEditTechnicalDetails(admin, chefClosed()))
	assert.False(t, CanEditTechnicalDetails(admin, validated()))
}

func TestClosureScenario(t *testing.T) {
	now := time.Now()
	m := newMission(mission.StatusCreee)

	require.NoError(t, Check(chef, m, ActionStart))
	require.NoError(t, m.Start(now))

	require.NoError(t, Check(chef, m, ActionClose))
	require.NoError(t, m.CloseByChef("Done", 100, now))

	for _, a := range []Actor{chef, compta, tech} {
		err := Check(a, m, ActionEditExpenses)
		var denied *DeniedError
		require.ErrorAs(t, err, &denied, "role=%s", a.Role)
		assert.Equal(t, "CANNOT_EDIT_EXPENSES", denied.Code)
		assert.Error(t, Check(a, m, ActionAddExpenses), "role=%s", a.Role)
	}
	require.NoError(t, Check(admin, m, ActionEditExpenses))

	require.NoError(t, Check(admin, m, ActionValidate))
	require.NoError(t, m.ValidateByAdmin(admin.UserID, "OK", true, now))
	assert.Equal(t, mission.StatusValidee, m.Statut)

	assert.Error(t, Check(chef, m, ActionEdit))
	assert.Error(t, Check(chef, m, ActionDelete))
	assert.Error(t, Check(admin, m, ActionValidate))
}

func TestAvailableActions(t *testing.T) {
	running := newMission(mission.StatusEnCours)
	assert.Equal(t, []Action{
		ActionView, ActionEdit, ActionClose, ActionViewExpenses, ActionAddExpenses,
		ActionEditExpenses, ActionEditTechnical, ActionDownloadJustificatifs,
	}, AvailableActions(chef, running))

	assert.Equal(t, []Action{}, AvailableActions(outsider, running))

	got := AvailableActions(admin, chefClosed())
	assert.Contains(t, got, ActionCreate)
	assert.Contains(t, got, ActionValidate)
	assert.NotContains(t, got, ActionDelete)
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "Vous n'avez pas la permission de modifier cette mission", Message(ActionEdit))
	assert.Equal(t, "Seul le Chef de Mission peut clôturer cette mission", Message(ActionClose))
	assert.Equal(t, "Seul un Administrateur peut valider la clôture", Message(ActionValidate))
	assert.Equal(t, "Vous n'avez pas accès aux dépenses de cette mission", Message(ActionViewExpenses))
	assert.Equal(t, "Accès refusé", Message("inconnue"))
	assert.Equal(t, "CANNOT_CLOSE_MISSION", Code(ActionClose))
}

func TestRoles(t *testing.T) {
	assert.True(t, RoleSuperAdmin.IsAdmin())
	assert.False(t, RoleComptabilite.IsAdmin())
	assert.False(t, Role("support").IsValid())
	assert.True(t, chef.IsAuthenticated())
	assert.False(t, Actor{Role: RoleAdmin}.IsAuthenticated())
	assert.True(t, CanManageBilling(compta))
	assert.False(t, CanManageBilling(Actor{UserID: "c", Role: RoleClient}))
}
