package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRemaining(t *testing.T) {
	inst := &Installation{ID: "i-1", Montant: dec(100000)}
	payments := []Payment{
		{InstallationID: "i-1", Montant: dec(30000)},
		{InstallationID: "i-1", Montant: dec(20000)},
		{InstallationID: "i-2", Montant: dec(99999)},
	}
	assert.True(t, Remaining(inst, payments).Equal(dec(50000)))

	payments = append(payments, Payment{InstallationID: "i-1", Montant: dec(80000)})
	assert.True(t, Remaining(inst, payments).IsZero(), "jamais négatif")
}

func TestClientBalance(t *testing.T) {
	insts := []Installation{{ID: "a", Montant: dec(1000)}, {ID: "b", Montant: dec(500)}}
	b := ClientBalance(insts, []Payment{{Montant: dec(600)}})
	assert.True(t, b.TotalInstallations.Equal(dec(1500)))
	assert.True(t, b.TotalPaye.Equal(dec(600)))
	assert.True(t, b.ResteAPayer.Equal(dec(900)))

	b = ClientBalance(insts, []Payment{{Montant: dec(2000)}})
	assert.True(t, b.ResteAPayer.IsZero())
}

func TestAnnotateRemaining(t *testing.T) {
	insts := map[string]*Installation{"i-1": {ID: "i-1", Montant: dec(300)}}
	payments := []Payment{
		{InstallationID: "i-1", Montant: dec(100)},
		{InstallationID: "i-1", Montant: dec(50)},
		{InstallationID: "inconnue", Montant: dec(10)},
	}
	AnnotateRemaining(payments, insts)
	assert.True(t, payments[0].ResteAPayer.Equal(dec(150)))
	assert.True(t, payments[1].ResteAPayer.Equal(dec(150)))
	assert.True(t, payments[2].ResteAPayer.IsZero())
}

func TestStatusAt(t *testing.T) {
	assert.Equal(t, SubscriptionExpire, StatusAt(date(2025, 6, 14), today))
	assert.Equal(t, SubscriptionEnAlerte, StatusAt(date(2025, 6, 15), today))
	assert.Equal(t, SubscriptionEnAlerte, StatusAt(date(2025, 7, 15), today))
	assert.Equal(t, SubscriptionActif, StatusAt(date(2025, 7, 16), today))
}

func TestSubscription_Refresh(t *testing.T) {
	s := &Subscription{DateFin: date(2025, 7, 1), Statut: SubscriptionActif}
	assert.True(t, s.Refresh(today))
	assert.Equal(t, SubscriptionEnAlerte, s.Statut)
	assert.False(t, s.Refresh(today))
}

func TestForInstallation(t *testing.T) {
	inst := &Installation{ID: "i-1", DateInstallation: date(2025, 1, 10), MontantAbonnement: dec(12000)}
	sub, err := ForInstallation(inst, nil, today)
	require.NoError(t, err)
	assert.Equal(t, date(2025, 1, 10), sub.DateDebut)
	assert.Equal(t, date(2026, 1, 10), sub.DateFin)
	assert.Equal(t, SubscriptionActif, sub.Statut)
	assert.True(t, sub.Montant.Equal(dec(12000)))

	_, err = ForInstallation(inst, []Subscription{sub}, today)
	assert.ErrorIs(t, err, ErrLiveSubscription)

	expired := Subscription{DateFin: date(2024, 1, 1), Statut: SubscriptionExpire}
	_, err = ForInstallation(inst, []Subscription{expired}, today)
	assert.NoError(t, err)
}

func TestRenew(t *testing.T) {
	cur := &Subscription{InstallationID: "i-1", DateDebut: date(2024, 6, 1), DateFin: date(2025, 6, 1)}
	next, err := Renew(cur, nil, today)
	require.NoError(t, err)
	assert.Equal(t, date(2025, 6, 1), next.DateDebut)
	assert.Equal(t, date(2026, 6, 1), next.DateFin)
	assert.Equal(t, SubscriptionActif, next.Statut)

	_, err = Renew(cur, []Subscription{{DateFin: date(2025, 12, 1)}}, today)
	assert.ErrorIs(t, err, ErrLiveSubscription)
}

func TestRenewalDue(t *testing.T) {
	acq := &Installation{ID: "i-1", Type: TypeAcquisition, DateInstallation: date(2024, 6, 15)}
	assert.True(t, RenewalDue(acq, nil, today), "anniversaire atteint aujourd'hui")

	young := &Installation{ID: "i-2", Type: TypeAcquisition, DateInstallation: date(2024, 6, 16)}
	assert.False(t, RenewalDue(young, nil, today))

	abo := &Installation{ID: "i-3", Type: TypeAbonnement, DateInstallation: date(2020, 1, 1)}
	assert.False(t, RenewalDue(abo, nil, today))

	live := []Subscription{{DateFin: date(2026, 1, 1)}}
	assert.False(t, RenewalDue(acq, live, today))

	renewed := AutoRenewal(acq, today)
	assert.Equal(t, date(2025, 6, 15), renewed.DateDebut)
	assert.Equal(t, date(2026, 6, 15), renewed.DateFin)
	assert.True(t, renewed.AutoGenerated)
	assert.Equal(t, SourceAutoRenew, renewed.Source)
}

func TestValidation(t *testing.T) {
	errs := ValidateInstallation(&Installation{})
	assert.Contains(t, errs, "client_id")
	assert.Contains(t, errs, "application_installee")
	assert.Contains(t, errs, "montant")
	assert.Contains(t, errs, "date_installation")
	assert.Contains(t, errs, "type")

	assert.Nil(t, ValidateInstallation(&Installation{
		ClientID: "c", ApplicationInstallee: "PharmaPro", Montant: dec(1),
		DateInstallation: today, Type: TypeAcquisition,
	}))

	errs = ValidatePayment(&Payment{ClientID: "c", InstallationID: "i", Type: "don", Montant: dec(-5), ModePaiement: "carte", DatePaiement: today})
	assert.Equal(t, FieldErrors{
		"type":          "Type de paiement invalide",
		"montant":       "Le montant doit être supérieur à 0",
		"mode_paiement": "Mode de paiement invalide",
	}, errs)

	assert.Contains(t, ValidateApplication(&Application{Nom: "X"}), "prix")
}

func TestStats(t *testing.T) {
	is := ComputeInstallationStats([]Installation{
		{Statut: InstallationEnCours, Montant: dec(10)},
		{Statut: InstallationTerminee, Montant: dec(20)},
		{Statut: InstallationTerminee, Montant: dec(5)},
	})
	assert.Equal(t, 3, is.Total)
	assert.Equal(t, 1, is.EnCours)
	assert.Equal(t, 2, is.Terminees)
	assert.True(t, is.RevenuTotal.Equal(dec(35)))

	ss := ComputeSubscriptionStats([]Subscription{{Statut: SubscriptionActif}, {Statut: SubscriptionExpire}, {Statut: SubscriptionExpire}})
	assert.Equal(t, SubscriptionStats{Total: 3, Actifs: 1, Expires: 2}, ss)

	ps := ComputePaymentStats([]Payment{
		{Type: TypeAcquisition, ModePaiement: ModeCheque, Montant: dec(100)},
		{Type: TypeAbonnement, ModePaiement: ModeCheque, Montant: dec(50)},
	})
	assert.Equal(t, 2, ps.ParMode[ModeCheque])
	assert.Equal(t, 0, ps.ParMode[ModeEspeces])
	assert.True(t, ps.RevenuTotal.Equal(dec(150)))
}
