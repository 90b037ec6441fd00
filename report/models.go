// Package report defines the read models behind the ledger's day-wise,
// statistics and dashboard views.
package report

import (
	"github.com/xraph/khata/balance"
	"github.com/xraph/khata/bill"
	"github.com/xraph/khata/shop"
	"github.com/xraph/khata/types"
)

// Day is one row of a single shop's day-wise ledger.
type Day struct {
	Date        types.Date   `json:"date"`
	Bills       []*bill.Bill `json:"bills"`
	BillCount   int          `json:"bill_count"`
	DayTotal    types.Money  `json:"day_total"`
	DayPayments types.Money  `json:"day_payments_total"`
	// NetUpTo is bills minus payments dated on or before Date.
	NetUpTo     types.Money `json:"net_amount_up_to_date"`
	HasActivity bool        `json:"has_activity"`
}

// ShopDay is one shop's activity on one day, as listed across shops.
type ShopDay struct {
	Shop        *shop.Shop   `json:"shop"`
	Bills       []*bill.Bill `json:"bills"`
	BillCount   int          `json:"bill_count"`
	DayTotal    types.Money  `json:"day_total"`
	BalanceUpTo types.Money  `json:"balance_up_to_date"`
}

// DayGroup is one day of the cross-shop day-wise view.
type DayGroup struct {
	Date  types.Date `json:"date"`
	Shops []ShopDay  `json:"shops"`
}

// ShopStat is a shop's share of a statistics range.
type ShopStat struct {
	Shop        *shop.Shop  `json:"shop"`
	BillCount   int         `json:"bill_count"`
	TotalAmount types.Money `json:"total_amount"`
}

// DailyStat is one point of the statistics series.
type DailyStat struct {
	Date        types.Date  `json:"date"`
	BillCount   int         `json:"bill_count"`
	TotalAmount types.Money `json:"amount"`
}

// Statistics aggregates bills dated within [From, To].
type Statistics struct {
	From           types.Date  `json:"start_date"`
	To             types.Date  `json:"end_date"`
	BillCount      int         `json:"total_bills"`
	TotalAmount    types.Money `json:"total_amount"`
	TotalGunnyCost types.Money `json:"total_gunny_cost"`
	Shops          []ShopStat  `json:"shop_stats"`
	Daily          []DailyStat `json:"daily_stats"`
}

// ShopsWithBills returns only the shop rows that have at least one bill.
func (s *Statistics) ShopsWithBills() []ShopStat {
	out := make([]ShopStat, 0, len(s.Shops))
	for _, st := range s.Shops {
		if st.BillCount > 0 {
			out = append(out, st)
		}
	}
	return out
}

// ShopPosition pairs a shop with its credit summary.
type ShopPosition struct {
	Shop    *shop.Shop      `json:"shop"`
	Balance balance.Summary `json:"balance"`
}

// Dashboard is the ledger overview.
type Dashboard struct {
	Today            types.Date     `json:"today"`
	ActiveShops      int            `json:"total_shops"`
	TotalDeposits    types.Money    `json:"total_deposits"`
	TotalBills       types.Money    `json:"total_bills"`
	TotalAmountOwed  types.Money    `json:"total_amount_owed"`
	Shops            []ShopPosition `json:"shops"`
	TodaysBills      []*bill.Bill   `json:"todays_bills"`
	TodaysBillsTotal types.Money    `json:"todays_total"`
	RecentBills      []*bill.Bill   `json:"recent_bills"`
}

// BillDocument is everything a formatter needs to print one bill.
type BillDocument struct {
	Bill *bill.Bill `json:"bill"`
	Shop *shop.Shop `json:"shop"`
}
