package balance_test

import (
	"testing"

	"github.com/xraph/khata/balance"
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/types"
)

func money(s string) types.Money { return types.MustParseMoney(s) }

func TestCanCreateBill(t *testing.T) {
	policy := balance.DefaultPolicy()

	tests := []struct {
		name   string
		totals balance.Totals
		want   bool
	}{
		{"no deposits never bills", balance.Totals{}, false},
		{"no deposits even when overpaid", balance.Totals{Payments: money("100")}, false},
		{"fresh shop", balance.Totals{Deposits: money("1000")}, true},
		{"just under limit", balance.Totals{Deposits: money("1000"), Bills: money("4999.99")}, true},
		{"at limit", balance.Totals{Deposits: money("1000"), Bills: money("5000.00")}, false},
		{"over limit", balance.Totals{Deposits: money("1000"), Bills: money("6000")}, false},
		{"payments restore headroom", balance.Totals{
			Deposits: money("1000"), Bills: money("6000"), Payments: money("1000.01"),
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.CanCreateBill(tt.totals); got != tt.want {
				t.Errorf("CanCreateBill = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	shopID := id.NewShopID()
	s := balance.DefaultPolicy().Summarize(shopID, balance.Totals{
		Deposits:  money("1000"),
		Bills:     money("2030"),
		Payments:  money("30"),
		BillCount: 1,
	}, 5)

	checks := map[string]struct {
		got  types.Money
		want string
	}{
		"TotalDeposits": {s.TotalDeposits, "1000.00"},
		"TotalBills":    {s.TotalBills, "2030.00"},
		"TotalPayments": {s.TotalPayments, "30.00"},
		"Pending":       {s.Pending, "2000.00"},
		"CreditLimit":   {s.CreditLimit, "5000.00"},
		"Headroom":      {s.Headroom, "3000.00"},
	}
	for name, c := range checks {
		if c.got.String() != c.want {
			t.Errorf("%s = %s, want %s", name, c.got, c.want)
		}
	}
	if !s.CanCreateBill {
		t.Error("expected CanCreateBill")
	}
	if s.ShopID.String() != shopID.String() || s.BillCount != 1 || s.BillLimit != 5 {
		t.Errorf("unexpected identity fields: %+v", s)
	}
}

func TestCreditMultiplier(t *testing.T) {
	p := balance.Policy{CreditMultiplier: 2}
	if got := p.CreditLimit(money("1000")); got.String() != "2000.00" {
		t.Errorf("CreditLimit = %s", got)
	}

	// Non-positive multipliers fall back to the default.
	p = balance.Policy{}
	if got := p.CreditLimit(money("1000")); got.String() != "5000.00" {
		t.Errorf("default CreditLimit = %s", got)
	}
}

func TestDecide(t *testing.T) {
	under := balance.Summary{Pending: money("10"), CreditLimit: money("5000"), BillCount: 5, BillLimit: 5}
	over := balance.Summary{Pending: money("5000"), CreditLimit: money("5000"), BillCount: 0, BillLimit: 5}

	tests := []struct {
		name       string
		policy     balance.Policy
		summary    balance.Summary
		wantOK     bool
		wantReason balance.Reason
	}{
		{"bill limit ignored by default", balance.DefaultPolicy(), under, true, balance.ReasonNone},
		{"bill limit enforced", balance.Policy{EnforceBillLimit: true}, under, false, balance.ReasonBillLimitReached},
		{"credit limit", balance.DefaultPolicy(), over, false, balance.ReasonCreditLimit},
		{"credit checked before bill count", balance.Policy{EnforceBillLimit: true},
			balance.Summary{Pending: money("5000"), CreditLimit: money("5000"), BillCount: 9, BillLimit: 5},
			false, balance.ReasonCreditLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.policy.Decide(tt.summary)
			if d.Allowed != tt.wantOK || d.Reason != tt.wantReason {
				t.Errorf("Decide = %v/%q, want %v/%q", d.Allowed, d.Reason, tt.wantOK, tt.wantReason)
			}
		})
	}
}
