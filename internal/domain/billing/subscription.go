package billing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionStatus état d'un abonnement, déduit de sa date de fin
type SubscriptionStatus string

const (
	SubscriptionActif    SubscriptionStatus = "actif"
	SubscriptionEnAlerte SubscriptionStatus = "en_alerte"
	SubscriptionExpire   SubscriptionStatus = "expire"
)

// Live vrai pour actif et en_alerte
func (s SubscriptionStatus) Live() bool {
	return s == SubscriptionActif || s == SubscriptionEnAlerte
}

const (
	alertWindowDays = 30
	SourceAutoRenew = "ABONNEMENT (ACQUISITION)"
	SourceRenewal   = "RENOUVELLEMENT"
)

var ErrLiveSubscription = errors.New("un abonnement actif ou en alerte existe déjà pour cette installation")

// Subscription abonnement annuel d'une installation
type Subscription struct {
	ID             string             `json:"id"`
	InstallationID string             `json:"installation_id"`
	DateDebut      time.Time          `json:"date_debut"`
	DateFin        time.Time          `json:"date_fin"`
	Montant        decimal.Decimal    `json:"montant"`
	Statut         SubscriptionStatus `json:"statut"`
	Source         string             `json:"source,omitempty"`
	AutoGenerated  bool               `json:"auto_generated"`
	CreatedAt      time.Time          `json:"created_at"`

	Installation *Installation `json:"installation,omitempty"`
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StatusAt statut d'un abonnement à la date today
func StatusAt(dateFin, today time.Time) SubscriptionStatus {
	fin := day(dateFin.In(today.Location()))
	t := day(today)
	switch {
	case fin.Before(t):
		return SubscriptionExpire
	case !fin.After(t.AddDate(0, 0, alertWindowDays)):
		return SubscriptionEnAlerte
	default:
		return SubscriptionActif
	}
}

// Refresh recalcule le statut; retourne vrai s'il a changé
func (s *Subscription) Refresh(today time.Time) bool {
	next := StatusAt(s.DateFin, today)
	if next == s.Statut {
		return false
	}
	s.Statut = next
	return true
}

// HasLive vrai si l'une des souscriptions est encore active ou en alerte
func HasLive(subs []Subscription, today time.Time) bool {
	for _, s := range subs {
		if StatusAt(s.DateFin, today).Live() {
			return true
		}
	}
	return false
}

// ForInstallation abonnement d'un an débutant à la date d'installation
func ForInstallation(inst *Installation, existing []Subscription, today time.Time) (Subscription, error) {
	if HasLive(existing, today) {
		return Subscription{}, ErrLiveSubscription
	}
	debut := day(inst.DateInstallation)
	fin := debut.AddDate(1, 0, 0)
	return Subscription{
		InstallationID: inst.ID,
		DateDebut:      debut,
		DateFin:        fin,
		Montant:        inst.MontantAbonnement,
		Statut:         StatusAt(fin, today),
	}, nil
}

// Renew abonnement suivant: débute à la fin du précédent, pour un an
func Renew(current *Subscription, others []Subscription, today time.Time) (Subscription, error) {
	if HasLive(others, today) {
		return Subscription{}, ErrLiveSubscription
	}
	debut := current.DateFin
	fin := debut.AddDate(1, 0, 0)
	return Subscription{
		InstallationID: current.InstallationID,
		DateDebut:      debut,
		DateFin:        fin,
		Montant:        current.Montant,
		Statut:         StatusAt(fin, today),
	}, nil
}

// RenewalDue vrai pour une acquisition dont l'anniversaire est atteint et sans abonnement vivant
func RenewalDue(inst *Installation, subs []Subscription, today time.Time) bool {
	if inst.Type != TypeAcquisition {
		return false
	}
	anniversary := day(inst.DateInstallation).AddDate(1, 0, 0)
	if day(today).Before(anniversary) {
		return false
	}
	return !HasLive(subs, today)
}

// AutoRenewal abonnement généré automatiquement pour une acquisition
func AutoRenewal(inst *Installation, today time.Time) Subscription {
	debut := day(today)
	return Subscription{
		InstallationID: inst.ID,
		DateDebut:      debut,
		DateFin:        debut.AddDate(1, 0, 0),
		Montant:        inst.MontantAbonnement,
		Statut:         SubscriptionActif,
		Source:         SourceAutoRenew,
		AutoGenerated:  true,
	}
}
