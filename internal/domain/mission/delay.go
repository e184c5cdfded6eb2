package mission

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DelayLevel classification de l'échéance
type DelayLevel string

const (
	DelayRetard   DelayLevel = "Retard"
	DelayARisque  DelayLevel = "À risque"
	DelayConforme DelayLevel = "Conforme"
)

// DelayIndicator indicateur de retard affiché sur les missions
type DelayIndicator struct {
	Level    DelayLevel `json:"niveau"`
	Color    string     `json:"couleur"`
	DaysLeft int        `json:"jours_restants"`
}

const atRiskDays = 3

// DaysLeft nombre de jours calendaires entre aujourd'hui et l'échéance
func DaysLeft(deadline, now time.Time) int {
	d := truncateDay(deadline.In(now.Location()))
	today := truncateDay(now)
	return int(math.Round(d.Sub(today).Hours() / 24))
}

// Delay classe une mission: Retard si l'échéance est passée et la mission non clôturée,
// À risque si 0 <= jours restants <= 3, Conforme sinon
func Delay(m *Mission, now time.Time) DelayIndicator {
	days := DaysLeft(m.DateFinPrevue, now)
	switch {
	case m.Statut.IsClosed():
		return DelayIndicator{Level: DelayConforme, Color: "green", DaysLeft: days}
	case days < 0:
		return DelayIndicator{Level: DelayRetard, Color: "red", DaysLeft: days}
	case days <= atRiskDays:
		return DelayIndicator{Level: DelayARisque, Color: "amber", DaysLeft: days}
	default:
		return DelayIndicator{Level: DelayConforme, Color: "green", DaysLeft: days}
	}
}

// IsDelayed échéance dépassée pour une mission non démarrée ou en cours
func IsDelayed(m *Mission, now time.Time) bool {
	return !m.Statut.IsClosed() && DaysLeft(m.DateFinPrevue, now) < 0
}

// BudgetUsage utilisation du budget
type BudgetUsage struct {
	Alloue            decimal.Decimal `json:"budget_alloue"`
	Depense           decimal.Decimal `json:"budget_depense"`
	Restant           decimal.Decimal `json:"budget_restant"`
	Pourcentage       decimal.Decimal `json:"pourcentage"`
	RisqueDepassement bool            `json:"risque_depassement"`
	Depassement       bool            `json:"depassement"`
}

var (
	hundred           = decimal.NewFromInt(100)
	riskThreshold     = decimal.NewFromInt(80)
	budgetAlertThresh = decimal.NewFromInt(90)
)

// Budget calcule le pourcentage consommé; le dépassement est signalé, jamais bloqué
func Budget(alloue, depense decimal.Decimal) BudgetUsage {
	usage := BudgetUsage{
		Alloue:      alloue,
		Depense:     depense,
		Restant:     alloue.Sub(depense),
		Pourcentage: decimal.Zero,
	}
	if alloue.IsPositive() {
		usage.Pourcentage = depense.Div(alloue).Mul(hundred).Round(1)
	}
	usage.RisqueDepassement = usage.Pourcentage.GreaterThan(riskThreshold)
	usage.Depassement = depense.GreaterThan(alloue)
	return usage
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
