package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"crm-pharma-core/internal/domain/mission"
	"crm-pharma-core/internal/modules/missions/dto"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	admin      = permissions.Actor{UserID: "u-adm", Role: permissions.RoleAdmin}
	chef       = permissions.Actor{UserID: "u-chef", Role: permissions.RoleChefMission}
	commercial = permissions.Actor{UserID: "u-com", Role: permissions.RoleCommercial}
)

func newService() *MissionService {
	return &MissionService{log: zap.NewNop(), now: time.Now}
}

func serviceError(t *testing.T, err error) *response.ServiceError {
	t.Helper()
	var svcErr *response.ServiceError
	require.True(t, errors.As(err, &svcErr), "erreur inattendue: %v", err)
	return svcErr
}

func champs(t *testing.T, err error) map[string]string {
	t.Helper()
	svcErr := serviceError(t, err)
	require.Equal(t, response.TypeValidation, svcErr.Type)
	return svcErr.Details["champs"].(map[string]string)
}

func TestCreate_AdminOnly(t *testing.T) {
	_, err := newService().Create(context.Background(), commercial, dto.CreateMissionRequest{})

	var denied *permissions.DeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, "CANNOT_CREATE_MISSION", denied.Code)
}

func TestCreate_ValidationBeforeDatabase(t *testing.T) {
	debut := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	fin := debut.AddDate(0, 0, -1)

	_, err := newService().Create(context.Background(), admin, dto.CreateMissionRequest{
		Titre:              "Installation officine",
		Type:               "Installation",
		DateDebut:          &debut,
		DateFinPrevue:      &fin,
		ChefMissionID:      "u-chef",
		AccompagnateursIDs: []string{"u-chef"},
	})
	c := champs(t, err)
	assert.Contains(t, c, "client_id")
	assert.Contains(t, c, "date_fin_prevue")
	assert.Contains(t, c, "budget_alloue")
	assert.Contains(t, c, "accompagnateurs_ids")
	assert.NotContains(t, c, "titre")
}

func TestUpdate_TeamIsImmutable(t *testing.T) {
	other := "u-other"
	team := []string{"u-x"}
	debut := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := newService().Update(context.Background(), admin, "m-1", dto.UpdateMissionRequest{
		Titre:              "Support",
		Type:               "Support",
		DateDebut:          debut,
		DateFinPrevue:      debut.AddDate(0, 0, 5),
		BudgetAlloue:       decimal.NewFromInt(1000),
		ChefMissionID:      &other,
		AccompagnateursIDs: &team,
	})
	c := champs(t, err)
	assert.Contains(t, c, "chef_mission_id")
	assert.Contains(t, c, "accompagnateurs_ids")
	assert.Len(t, c, 2)
}

func TestClose_CommentRequired(t *testing.T) {
	_, err := newService().Close(context.Background(), chef, "m-1", dto.CloseRequest{Commentaire: "   ", Avancement: 100})
	assert.Contains(t, champs(t, err), "commentaire")
}

func TestValidate_Checks(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Validate(ctx, chef, "m-1", dto.ValidateRequest{Commentaire: "OK", Confirm: true})
	var denied *permissions.DeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, permissions.ActionValidate, denied.Action)

	_, err = svc.Validate(ctx, admin, "m-1", dto.ValidateRequest{Commentaire: ""})
	assert.Contains(t, champs(t, err), "commentaire")

	_, err = svc.Validate(ctx, admin, "m-1", dto.ValidateRequest{Commentaire: "OK"})
	assert.Equal(t, "CONFIRMATION_REQUIRED", serviceError(t, err).Code)
	assert.ErrorIs(t, err, mission.ErrConfirmationMissing)
}

func TestAddExpense_ValidationBeforeDatabase(t *testing.T) {
	_, err := newService().AddExpense(context.Background(), chef, "m-1", dto.ExpenseRequest{Type: "luxe", Montant: decimal.Zero})
	c := champs(t, err)
	assert.Contains(t, c, "type_depense")
	assert.Contains(t, c, "montant")
}

func TestJournal(t *testing.T) {
	svc := newService()

	_, err := svc.Journal(context.Background(), chef, "m-1")
	assert.Equal(t, "CANNOT_READ_JOURNAL", serviceError(t, err).Code)

	result, err := svc.Journal(context.Background(), admin, "m-1")
	require.NoError(t, err)
	assert.False(t, result.Disponible)
	assert.Empty(t, result.Entries)
}

func TestLifecycleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		typ  string
	}{
		{"transition", &mission.TransitionError{From: mission.StatusCreee, To: mission.StatusCloturee}, "INVALID_TRANSITION", response.TypeConflict},
		{"commentaire", mission.ErrClosureCommentMissing, "VALIDATION_ERROR", response.TypeValidation},
		{"confirmation", mission.ErrConfirmationMissing, "CONFIRMATION_REQUIRED", response.TypeValidation},
		{"non clôturée", mission.ErrNotClosedByChef, "NOT_CLOSED_BY_CHEF", response.TypeConflict},
		{"définitive", mission.ErrAlreadyFinal, "ALREADY_VALIDATED", response.TypeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svcErr := serviceError(t, lifecycleError(tt.err))
			assert.Equal(t, tt.code, svcErr.Code)
			assert.Equal(t, tt.typ, svcErr.Type)
		})
	}

	other := errors.New("boom")
	assert.Equal(t, other, lifecycleError(other))
}

func TestMatches(t *testing.T) {
	m := &mission.Mission{Titre: "Installation logiciel", ClientNom: "Pharmacie El Amel", Wilaya: "16"}

	assert.True(t, matches(m, ""))
	assert.True(t, matches(m, "el amel"))
	assert.True(t, matches(m, "INSTALL"))
	assert.False(t, matches(m, "oran"))
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, dedupe([]string{"a", " b ", "a", ""}))
	assert.Empty(t, dedupe(nil))
}
