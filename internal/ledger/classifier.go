package ledger

import (
	ledgerDatamodel "github.com/frahmantamala/revolv-ledger/internal/core/datamodel/ledger"
	"github.com/shopspring/decimal"
)

// IsOrganic reports whether the payer entered p personally and p is not a
// reinvestment credit.
func IsOrganic(p *Payment) bool {
	return p.EntrantID == p.PayerID && p.Kind != ledgerDatamodel.KindReinvestment
}

func IsReinvestment(p *Payment) bool {
	return p.Kind == ledgerDatamodel.KindReinvestment
}

// IsAdminOriginated reports whether p was produced by an admin action rather
// than by the payer.
func IsAdminOriginated(p *Payment) bool {
	return p.AdminReinvestmentID != nil || p.EntrantID != p.PayerID
}

// ContributionsByPayer totals the organic payments in ps per payer. Other
// payments are ignored.
func ContributionsByPayer(ps []*Payment) map[int64]decimal.Decimal {
	totals := make(map[int64]decimal.Decimal)
	for _, p := range ps {
		if !IsOrganic(p) {
			continue
		}
		totals[p.PayerID] = totals[p.PayerID].Add(p.Amount)
	}
	return totals
}

func SumPayments(ps []*Payment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range ps {
		sum = sum.Add(p.Amount)
	}
	return sum
}

func SumRepayments(rs []*Repayment) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range rs {
		sum = sum.Add(r.Amount)
	}
	return sum
}
