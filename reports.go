package khata

import (
	"context"
	"fmt"
	"io"

	"github.com/xraph/khata/bill"
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/payment"
	"github.com/xraph/khata/report"
	"github.com/xraph/khata/shop"
	"github.com/xraph/khata/types"
)

// DefaultDayWiseDays is how far back a shop's day-wise view reaches when no
// start date is given.
const DefaultDayWiseDays = 30

// RecentBillsLimit caps the dashboard's recent bills list.
const RecentBillsLimit = 10

// DayWiseOpts selects the cross-shop day-wise view. A nil ShopID covers
// every active shop; zero dates default to the current month.
type DayWiseOpts struct {
	ShopID id.ShopID
	From   types.Date
	To     types.Date
}

// ──────────────────────────────────────────────────
// Day-wise Ledgers
// ──────────────────────────────────────────────────

// DayWise returns one row per day of [from, to] for a shop, oldest first.
// Zero dates default to the last 30 days.
func (k *Khata) DayWise(ctx context.Context, shopID id.ShopID, from, to types.Date) ([]report.Day, error) {
	if to.IsZero() {
		to = k.Today()
	}
	if from.IsZero() {
		from = to.AddDays(-DefaultDayWiseDays)
	}
	if err := validateReportRange(from, to); err != nil {
		return nil, err
	}

	if _, err := k.store.GetShop(ctx, shopID); err != nil {
		return nil, err
	}

	bills, err := k.store.ListBills(ctx, bill.ListOpts{Query: bill.Query{ShopID: shopID, From: from, To: to}})
	if err != nil {
		return nil, err
	}
	payments, err := k.store.ListPayments(ctx, shopID, payment.ListOpts{From: from, To: to})
	if err != nil {
		return nil, err
	}
	net, err := netUpTo(ctx, k.store, shopID, from.AddDays(-1))
	if err != nil {
		return nil, err
	}

	billsByDay := groupBills(bills)
	paidByDay := make(map[types.Date]types.Money)
	for _, p := range payments {
		paidByDay[p.PaymentDate] = paidByDay[p.PaymentDate].Add(p.Amount)
	}

	days := types.DaysBetween(from, to)
	out := make([]report.Day, 0, len(days))
	for _, day := range days {
		dayBills := billsByDay[day]
		dayTotal := billTotal(dayBills)
		dayPaid := paidByDay[day]
		net = net.Add(dayTotal).Sub(dayPaid)

		out = append(out, report.Day{
			Date:        day,
			Bills:       nonNil(dayBills),
			BillCount:   len(dayBills),
			DayTotal:    dayTotal,
			DayPayments: dayPaid,
			NetUpTo:     net,
			HasActivity: len(dayBills) > 0 || !dayPaid.IsZero(),
		})
	}
	return out, nil
}

// DayWiseAll returns, for every day of the range, each selected shop's bills,
// day total and balance up to that day.
func (k *Khata) DayWiseAll(ctx context.Context, opts DayWiseOpts) ([]report.DayGroup, error) {
	from, to := k.monthToDate(opts.From, opts.To)
	if err := validateReportRange(from, to); err != nil {
		return nil, err
	}

	var shops []*shop.Shop
	if !opts.ShopID.IsNil() {
		s, err := k.store.GetShop(ctx, opts.ShopID)
		if err != nil {
			return nil, err
		}
		shops = []*shop.Shop{s}
	} else {
		var err error
		shops, err = k.store.ListShops(ctx, shop.ListOpts{ActiveOnly: true})
		if err != nil {
			return nil, err
		}
	}

	type ledger struct {
		net   types.Money
		bills map[types.Date][]*bill.Bill
		paid  map[types.Date]types.Money
	}
	ledgers := make([]ledger, len(shops))
	for i, s := range shops {
		bills, err := k.store.ListBills(ctx, bill.ListOpts{Query: bill.Query{ShopID: s.ID, From: from, To: to}})
		if err != nil {
			return nil, err
		}
		payments, err := k.store.ListPayments(ctx, s.ID, payment.ListOpts{From: from, To: to})
		if err != nil {
			return nil, err
		}
		net, err := netUpTo(ctx, k.store, s.ID, from.AddDays(-1))
		if err != nil {
			return nil, err
		}

		l := ledger{net: net, bills: groupBills(bills), paid: make(map[types.Date]types.Money)}
		for _, p := range payments {
			l.paid[p.PaymentDate] = l.paid[p.PaymentDate].Add(p.Amount)
		}
		ledgers[i] = l
	}

	days := types.DaysBetween(from, to)
	out := make([]report.DayGroup, 0, len(days))
	for _, day := range days {
		group := report.DayGroup{Date: day, Shops: make([]report.ShopDay, 0, len(shops))}
		for i, s := range shops {
			l := &ledgers[i]
			dayBills := l.bills[day]
			dayTotal := billTotal(dayBills)
			l.net = l.net.Add(dayTotal).Sub(l.paid[day])

			group.Shops = append(group.Shops, report.ShopDay{
				Shop:        s,
				Bills:       nonNil(dayBills),
				BillCount:   len(dayBills),
				DayTotal:    dayTotal,
				BalanceUpTo: l.net,
			})
		}
		out = append(out, group)
	}
	return out, nil
}

// ──────────────────────────────────────────────────
// Statistics & Dashboard
// ──────────────────────────────────────────────────

// Statistics aggregates bills dated within [from, to] across active shops.
// Zero dates default to the current month up to today.
func (k *Khata) Statistics(ctx context.Context, from, to types.Date) (*report.Statistics, error) {
	from, to = k.monthToDate(from, to)
	if err := validateReportRange(from, to); err != nil {
		return nil, err
	}

	q := bill.Query{From: from, To: to}
	totals, err := k.store.SummarizeBills(ctx, q)
	if err != nil {
		return nil, err
	}
	bills, err := k.store.ListBills(ctx, bill.ListOpts{Query: q})
	if err != nil {
		return nil, err
	}
	shops, err := k.store.ListShops(ctx, shop.ListOpts{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	stats := &report.Statistics{
		From:           from,
		To:             to,
		BillCount:      totals.Count,
		TotalAmount:    totals.Amount,
		TotalGunnyCost: totals.GunnyBagCost,
		Shops:          make([]report.ShopStat, 0, len(shops)),
	}

	byShop := make(map[string]*report.ShopStat, len(shops))
	for _, s := range shops {
		stats.Shops = append(stats.Shops, report.ShopStat{Shop: s, TotalAmount: types.Zero()})
	}
	for i := range stats.Shops {
		byShop[stats.Shops[i].Shop.ID.String()] = &stats.Shops[i]
	}

	byDay := groupBills(bills)
	for _, b := range bills {
		if st, ok := byShop[b.ShopID.String()]; ok {
			st.BillCount++
			st.TotalAmount = st.TotalAmount.Add(b.TotalAmount)
		}
	}
	for _, day := range types.DaysBetween(from, to) {
		dayBills := byDay[day]
		stats.Daily = append(stats.Daily, report.DailyStat{
			Date:        day,
			BillCount:   len(dayBills),
			TotalAmount: billTotal(dayBills),
		})
	}
	return stats, nil
}

// Dashboard builds the ledger overview as of today.
func (k *Khata) Dashboard(ctx context.Context) (*report.Dashboard, error) {
	today := k.Today()

	shops, err := k.store.ListShops(ctx, shop.ListOpts{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	deposits, err := k.store.DepositTotal(ctx, id.Nil)
	if err != nil {
		return nil, err
	}
	all, err := k.store.SummarizeBills(ctx, bill.Query{})
	if err != nil {
		return nil, err
	}
	todays, err := k.store.ListBills(ctx, bill.ListOpts{Query: bill.Query{From: today, To: today}})
	if err != nil {
		return nil, err
	}
	recent, err := k.store.ListBills(ctx, bill.ListOpts{Limit: RecentBillsLimit})
	if err != nil {
		return nil, err
	}

	dash := &report.Dashboard{
		Today:            today,
		ActiveShops:      len(shops),
		TotalDeposits:    deposits,
		TotalBills:       all.Amount,
		TotalAmountOwed:  all.Amount.Sub(deposits),
		Shops:            make([]report.ShopPosition, 0, len(shops)),
		TodaysBills:      nonNil(todays),
		TodaysBillsTotal: billTotal(todays),
		RecentBills:      nonNil(recent),
	}
	for _, s := range shops {
		t, err := totalsIn(ctx, k.store, s.ID)
		if err != nil {
			return nil, fmt.Errorf("balance for shop %s: %w", s.ID, err)
		}
		dash.Shops = append(dash.Shops, report.ShopPosition{
			Shop:    s,
			Balance: k.policy.Summarize(s.ID, t, s.BillLimit),
		})
	}
	return dash, nil
}

// ──────────────────────────────────────────────────
// Document Export
// ──────────────────────────────────────────────────

// ExportBill renders a bill with the formatter registered for format and
// returns the document's content type.
func (k *Khata) ExportBill(ctx context.Context, billID id.BillID, format string, w io.Writer) (string, error) {
	f := k.plugins.BillFormatter(format)
	if f == nil {
		return "", fmt.Errorf("%w: %q", ErrExportUnavailable, format)
	}

	b, err := k.store.GetBill(ctx, billID)
	if err != nil {
		return "", err
	}
	s, err := k.store.GetShop(ctx, b.ShopID)
	if err != nil {
		return "", err
	}

	if err := f.RenderBill(ctx, &report.BillDocument{Bill: b, Shop: s}, w); err != nil {
		return "", fmt.Errorf("render bill %s as %s: %w", b.Number, format, err)
	}
	return f.ContentType(), nil
}

// ExportStatistics renders the statistics for [from, to] with the formatter
// registered for format and returns the document's content type.
func (k *Khata) ExportStatistics(ctx context.Context, from, to types.Date, format string, w io.Writer) (string, error) {
	f := k.plugins.StatisticsFormatter(format)
	if f == nil {
		return "", fmt.Errorf("%w: %q", ErrExportUnavailable, format)
	}

	stats, err := k.Statistics(ctx, from, to)
	if err != nil {
		return "", err
	}

	if err := f.RenderStatistics(ctx, stats, w); err != nil {
		return "", fmt.Errorf("render statistics as %s: %w", format, err)
	}
	return f.ContentType(), nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func (k *Khata) monthToDate(from, to types.Date) (types.Date, types.Date) {
	today := k.Today()
	if to.IsZero() {
		to = today
	}
	if from.IsZero() {
		from = today.FirstOfMonth()
	}
	return from, to
}

func groupBills(bills []*bill.Bill) map[types.Date][]*bill.Bill {
	out := make(map[types.Date][]*bill.Bill)
	for _, b := range bills {
		out[b.BillDate] = append(out[b.BillDate], b)
	}
	return out
}

func billTotal(bills []*bill.Bill) types.Money {
	total := types.Zero()
	for _, b := range bills {
		total = total.Add(b.TotalAmount)
	}
	return total
}

func nonNil(bills []*bill.Bill) []*bill.Bill {
	if bills == nil {
		return []*bill.Bill{}
	}
	return bills
}
