package billing

import "github.com/shopspring/decimal"

// Balance situation financière d'un client
type Balance struct {
	TotalInstallations decimal.Decimal `json:"total_installations"`
	TotalPaye          decimal.Decimal `json:"total_paye"`
	ResteAPayer        decimal.Decimal `json:"reste_a_payer"`
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Sum additionne les montants des paiements
func Sum(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Montant)
	}
	return total
}

// Remaining reste à payer d'une installation, jamais négatif
func Remaining(inst *Installation, payments []Payment) decimal.Decimal {
	paid := decimal.Zero
	for _, p := range payments {
		if p.InstallationID == inst.ID {
			paid = paid.Add(p.Montant)
		}
	}
	return nonNegative(inst.Montant.Sub(paid))
}

// ClientBalance totaux et reste à payer d'un client, jamais négatif
func ClientBalance(installations []Installation, payments []Payment) Balance {
	total := decimal.Zero
	for _, i := range installations {
		total = total.Add(i.Montant)
	}
	paid := Sum(payments)
	return Balance{
		TotalInstallations: total,
		TotalPaye:          paid,
		ResteAPayer:        nonNegative(total.Sub(paid)),
	}
}

// AnnotateRemaining renseigne ResteAPayer sur chaque paiement à partir de son installation
func AnnotateRemaining(payments []Payment, installations map[string]*Installation) {
	for i := range payments {
		inst, ok := installations[payments[i].InstallationID]
		if !ok {
			payments[i].ResteAPayer = decimal.Zero
			continue
		}
		payments[i].ResteAPayer = Remaining(inst, payments)
	}
}
