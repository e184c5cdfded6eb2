package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"crm-pharma-core/internal/domain/billing"
	"crm-pharma-core/internal/modules/billing/dto"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	commercial = permissions.Actor{UserID: "u-com", Nom: "Amine", Role: permissions.RoleCommercial}
	chef       = permissions.Actor{UserID: "u-chef", Role: permissions.RoleChefMission}
)

func serviceError(t *testing.T, err error) *response.ServiceError {
	t.Helper()
	var svcErr *response.ServiceError
	require.True(t, errors.As(err, &svcErr), "erreur inattendue: %v", err)
	return svcErr
}

func TestInstallation_PermissionAndValidation(t *testing.T) {
	svc := &InstallationService{log: zap.NewNop(), now: time.Now}
	ctx := context.Background()

	_, err := svc.Create(ctx, chef, dto.InstallationRequest{})
	assert.Equal(t, "CANNOT_MANAGE_BILLING", serviceError(t, err).Code)

	_, err = svc.Create(ctx, commercial, dto.InstallationRequest{Type: "location"})
	champs := serviceError(t, err).Details["champs"].(map[string]string)
	assert.Contains(t, champs, "client_id")
	assert.Contains(t, champs, "application_installee")
	assert.Contains(t, champs, "montant")
	assert.Contains(t, champs, "date_installation")
	assert.Contains(t, champs, "type")
}

func TestInstallation_UpdateIgnoresClient(t *testing.T) {
	svc := &InstallationService{log: zap.NewNop(), now: time.Now}

	_, err := svc.Update(context.Background(), commercial, "i-1", dto.InstallationRequest{Type: "acquisition"})
	champs := serviceError(t, err).Details["champs"].(map[string]string)
	assert.NotContains(t, champs, "client_id")
	assert.Contains(t, champs, "montant")
}

func TestPayment_PermissionAndValidation(t *testing.T) {
	svc := &PaymentService{log: zap.NewNop(), now: time.Now}
	ctx := context.Background()

	_, err := svc.Create(ctx, chef, dto.PaymentRequest{})
	assert.Equal(t, response.TypeForbidden, serviceError(t, err).Type)

	_, err = svc.Create(ctx, commercial, dto.PaymentRequest{
		ClientID:     "c-1",
		Montant:      decimal.NewFromInt(-5),
		ModePaiement: "carte",
	})
	champs := serviceError(t, err).Details["champs"].(map[string]string)
	assert.Contains(t, champs, "installation_id")
	assert.Contains(t, champs, "montant")
	assert.Contains(t, champs, "mode_paiement")
	assert.Contains(t, champs, "type")
	assert.Contains(t, champs, "date_paiement")

	_, err = svc.Update(ctx, commercial, "p-1", dto.PaymentRequest{Type: "acquisition", ModePaiement: "especes"})
	champs = serviceError(t, err).Details["champs"].(map[string]string)
	assert.NotContains(t, champs, "client_id")
	assert.NotContains(t, champs, "installation_id")
	assert.Contains(t, champs, "montant")
}

func TestRunRenewals_AdminOnly(t *testing.T) {
	svc := &SubscriptionService{log: zap.NewNop(), now: time.Now}
	_, err := svc.RunRenewals(context.Background(), commercial)
	assert.Equal(t, "CANNOT_RUN_RENEWALS", serviceError(t, err).Code)
}

func TestGroupByInstallation(t *testing.T) {
	groups := groupByInstallation([]billing.Subscription{
		{ID: "a", InstallationID: "i-1"},
		{ID: "b", InstallationID: "i-2"},
		{ID: "c", InstallationID: "i-1"},
	})
	assert.Len(t, groups, 2)
	assert.Len(t, groups["i-1"], 2)
	assert.Empty(t, groups["i-3"])
}

func TestInstallationRequest_DefaultStatus(t *testing.T) {
	inst := dto.InstallationRequest{ApplicationInstallee: "  PharmaSoft ", Type: "abonnement"}.Installation("u-1")
	assert.Equal(t, billing.InstallationEnCours, inst.Statut)
	assert.Equal(t, "PharmaSoft", inst.ApplicationInstallee)
	assert.Equal(t, "u-1", inst.CreatedBy)
}
