package khata

import (
	"context"

	"github.com/xraph/khata/balance"
	"github.com/xraph/khata/bill"
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/store"
	"github.com/xraph/khata/types"
)

// ──────────────────────────────────────────────────
// Balances
// ──────────────────────────────────────────────────

// Balance returns a shop's credit position, read fresh from the store.
func (k *Khata) Balance(ctx context.Context, shopID id.ShopID) (balance.Summary, error) {
	s, err := k.store.GetShop(ctx, shopID)
	if err != nil {
		return balance.Summary{}, err
	}

	t, err := totalsIn(ctx, k.store, shopID)
	if err != nil {
		return balance.Summary{}, err
	}

	return k.policy.Summarize(shopID, t, s.BillLimit), nil
}

// Admission runs the bill admission gate without creating a bill.
func (k *Khata) Admission(ctx context.Context, shopID id.ShopID) (balance.Decision, error) {
	sum, err := k.Balance(ctx, shopID)
	if err != nil {
		return balance.Decision{}, err
	}
	return k.policy.Decide(sum), nil
}

// TotalDeposits sums all deposits of a shop.
func (k *Khata) TotalDeposits(ctx context.Context, shopID id.ShopID) (types.Money, error) {
	sum, err := k.Balance(ctx, shopID)
	return sum.TotalDeposits, err
}

// TotalBills sums the totals of all bills of a shop.
func (k *Khata) TotalBills(ctx context.Context, shopID id.ShopID) (types.Money, error) {
	sum, err := k.Balance(ctx, shopID)
	return sum.TotalBills, err
}

// TotalPayments sums all payments of a shop.
func (k *Khata) TotalPayments(ctx context.Context, shopID id.ShopID) (types.Money, error) {
	sum, err := k.Balance(ctx, shopID)
	return sum.TotalPayments, err
}

// PendingAmount is total bills minus total payments.
func (k *Khata) PendingAmount(ctx context.Context, shopID id.ShopID) (types.Money, error) {
	sum, err := k.Balance(ctx, shopID)
	return sum.Pending, err
}

// CreditLimit is total deposits times the credit multiplier.
func (k *Khata) CreditLimit(ctx context.Context, shopID id.ShopID) (types.Money, error) {
	sum, err := k.Balance(ctx, shopID)
	return sum.CreditLimit, err
}

// CanCreateBill reports whether a new bill would be admitted.
func (k *Khata) CanCreateBill(ctx context.Context, shopID id.ShopID) (bool, error) {
	d, err := k.Admission(ctx, shopID)
	return d.Allowed, err
}

// DailyTotal sums the bills of a shop dated exactly day.
func (k *Khata) DailyTotal(ctx context.Context, shopID id.ShopID, day types.Date) (types.Money, error) {
	t, err := k.store.SummarizeBills(ctx, bill.Query{ShopID: shopID, From: day, To: day})
	if err != nil {
		return types.Zero(), err
	}
	return t.Amount, nil
}

// CumulativeBills sums the bills of a shop dated on or before day.
func (k *Khata) CumulativeBills(ctx context.Context, shopID id.ShopID, day types.Date) (types.Money, error) {
	t, err := k.store.SummarizeBills(ctx, bill.Query{ShopID: shopID, To: day})
	if err != nil {
		return types.Zero(), err
	}
	return t.Amount, nil
}

// NetAmountUpTo is bills minus payments, both dated on or before day.
func (k *Khata) NetAmountUpTo(ctx context.Context, shopID id.ShopID, day types.Date) (types.Money, error) {
	return netUpTo(ctx, k.store, shopID, day)
}

// BalanceUpTo is the shop's balance as of the end of day. It equals
// NetAmountUpTo.
func (k *Khata) BalanceUpTo(ctx context.Context, shopID id.ShopID, day types.Date) (types.Money, error) {
	return netUpTo(ctx, k.store, shopID, day)
}

func netUpTo(ctx context.Context, s store.Store, shopID id.ShopID, day types.Date) (types.Money, error) {
	bills, err := s.SummarizeBills(ctx, bill.Query{ShopID: shopID, To: day})
	if err != nil {
		return types.Zero(), err
	}
	paid, err := s.PaymentTotal(ctx, shopID, day)
	if err != nil {
		return types.Zero(), err
	}
	return bills.Amount.Sub(paid), nil
}

// totalsIn reads a shop's all-time aggregates from s.
func totalsIn(ctx context.Context, s store.Store, shopID id.ShopID) (balance.Totals, error) {
	deposits, err := s.DepositTotal(ctx, shopID)
	if err != nil {
		return balance.Totals{}, err
	}
	bills, err := s.SummarizeBills(ctx, bill.Query{ShopID: shopID})
	if err != nil {
		return balance.Totals{}, err
	}
	payments, err := s.PaymentTotal(ctx, shopID, types.Date{})
	if err != nil {
		return balance.Totals{}, err
	}

	return balance.Totals{
		Deposits:  deposits,
		Bills:     bills.Amount,
		Payments:  payments,
		BillCount: bills.Count,
	}, nil
}
