// Package bill defines bills, their line items, and the pure routines that
// price items, total bills and assign bill numbers.
package bill

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/khata/id"
	"github.com/xraph/khata/types"
)

// Bill is goods sold to a shop on credit. Subtotal, GunnyBagCost and
// TotalAmount are derived from Items and never set by callers.
type Bill struct {
	types.Entity
	ID           id.BillID   `json:"id"`
	ShopID       id.ShopID   `json:"shop_id"`
	Number       string      `json:"bill_number"`
	BillDate     types.Date  `json:"bill_date"`
	Subtotal     types.Money `json:"subtotal"`
	GunnyBagCost types.Money `json:"gunny_bag_cost"`
	TotalAmount  types.Money `json:"total_amount"`
	Notes        string      `json:"notes,omitempty"`
	Items        []Item      `json:"items,omitempty"`
}

// Item is one line of a bill. TotalPrice and GunnyCost are derived.
type Item struct {
	ID           id.BillItemID   `json:"id"`
	BillID       id.BillID       `json:"bill_id"`
	Line         int             `json:"line"`
	NumberOfBags int             `json:"number_of_bags"`
	WeightKg     decimal.Decimal `json:"weight_kg"`
	RatePerKg    types.Money     `json:"rate_per_kg"`
	TotalPrice   types.Money     `json:"total_price"`
	GunnyCost    types.Money     `json:"gunny_cost"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Totals is an aggregate over a set of bills.
type Totals struct {
	Count        int         `json:"count"`
	Amount       types.Money `json:"amount"`
	GunnyBagCost types.Money `json:"gunny_bag_cost"`
}
