package balance

import (
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/types"
)

// DefaultCreditMultiplier is how many times its deposits a shop may owe.
const DefaultCreditMultiplier = 5

// Policy configures the admission gate.
type Policy struct {
	// CreditMultiplier scales total deposits into the credit limit.
	CreditMultiplier int64
	// EnforceBillLimit refuses new bills once a shop holds BillLimit bills.
	// Off by default; the credit limit is the only default gate.
	EnforceBillLimit bool
}

// DefaultPolicy returns the 5x credit rule with no bill-count cap.
func DefaultPolicy() Policy {
	return Policy{CreditMultiplier: DefaultCreditMultiplier}
}

// Pending is what the shop still owes: bills minus payments. It can be
// negative when a shop has overpaid.
func Pending(t Totals) types.Money {
	return t.Bills.Sub(t.Payments)
}

// CreditLimit is deposits times the multiplier.
func (p Policy) CreditLimit(deposits types.Money) types.Money {
	return deposits.MulInt(p.multiplier())
}

// CanCreateBill reports pending < credit limit. A shop with no deposits has
// a zero limit and can never bill.
func (p Policy) CanCreateBill(t Totals) bool {
	return Pending(t).LessThan(p.CreditLimit(t.Deposits))
}

// Summarize builds the shop's credit position.
func (p Policy) Summarize(shopID id.ShopID, t Totals, billLimit int) Summary {
	pending := Pending(t)
	limit := p.CreditLimit(t.Deposits)
	return Summary{
		ShopID:        shopID,
		TotalDeposits: t.Deposits,
		TotalBills:    t.Bills,
		TotalPayments: t.Payments,
		Pending:       pending,
		CreditLimit:   limit,
		Headroom:      limit.Sub(pending),
		BillCount:     t.BillCount,
		BillLimit:     billLimit,
		CanCreateBill: pending.LessThan(limit),
	}
}

// Decide runs the admission gate over a summary. The credit rule is checked
// first; the bill-count rule only applies when enforced.
func (p Policy) Decide(s Summary) Decision {
	d := Decision{
		Allowed:     true,
		Pending:     s.Pending,
		CreditLimit: s.CreditLimit,
		BillCount:   s.BillCount,
		BillLimit:   s.BillLimit,
	}
	switch {
	case !s.Pending.LessThan(s.CreditLimit):
		d.Allowed = false
		d.Reason = ReasonCreditLimit
	case p.EnforceBillLimit && s.BillLimit > 0 && s.BillCount >= s.BillLimit:
		d.Allowed = false
		d.Reason = ReasonBillLimitReached
	}
	return d
}

func (p Policy) multiplier() int64 {
	if p.CreditMultiplier <= 0 {
		return DefaultCreditMultiplier
	}
	return p.CreditMultiplier
}
