package billing

import "github.com/shopspring/decimal"

// InstallationStats répartition des installations
type InstallationStats struct {
	Total       int             `json:"total"`
	EnCours     int             `json:"en_cours"`
	Terminees   int             `json:"terminees"`
	RevenuTotal decimal.Decimal `json:"revenu_total"`
}

func ComputeInstallationStats(list []Installation) InstallationStats {
	s := InstallationStats{Total: len(list), RevenuTotal: decimal.Zero}
	for _, i := range list {
		switch i.Statut {
		case InstallationEnCours:
			s.EnCours++
		case InstallationTerminee:
			s.Terminees++
		}
		s.RevenuTotal = s.RevenuTotal.Add(i.Montant)
	}
	return s
}

// SubscriptionStats répartition des abonnements par statut
type SubscriptionStats struct {
	Total    int `json:"total"`
	Actifs   int `json:"actifs"`
	EnAlerte int `json:"en_alerte"`
	Expires  int `json:"expires"`
}

func ComputeSubscriptionStats(list []Subscription) SubscriptionStats {
	s := SubscriptionStats{Total: len(list)}
	for _, a := range list {
		switch a.Statut {
		case SubscriptionActif:
			s.Actifs++
		case SubscriptionEnAlerte:
			s.EnAlerte++
		case SubscriptionExpire:
			s.Expires++
		}
	}
	return s
}

// PaymentStats totaux des paiements
type PaymentStats struct {
	Total        int                 `json:"total"`
	RevenuTotal  decimal.Decimal     `json:"revenu_total"`
	Acquisitions int                 `json:"acquisitions"`
	Abonnements  int                 `json:"abonnements"`
	ParMode      map[PaymentMode]int `json:"par_mode"`
}

func ComputePaymentStats(list []Payment) PaymentStats {
	s := PaymentStats{
		Total:       len(list),
		RevenuTotal: Sum(list),
		ParMode:     map[PaymentMode]int{ModeEspeces: 0, ModeVirement: 0, ModeCheque: 0, ModeAutre: 0},
	}
	for _, p := range list {
		switch p.Type {
		case TypeAcquisition:
			s.Acquisitions++
		case TypeAbonnement:
			s.Abonnements++
		}
		if _, ok := s.ParMode[p.ModePaiement]; ok {
			s.ParMode[p.ModePaiement]++
		}
	}
	return s
}
