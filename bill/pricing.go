package bill

import "github.com/xraph/khata/types"

// PriceItem derives an item's TotalPrice and GunnyCost. TotalPrice is the
// exact product of weight and rate; GunnyCost uses the per-bag cost in force
// when the item is written and is not revisited if the setting changes.
func PriceItem(it *Item, gunnyBagCost types.Money) {
	it.TotalPrice = it.RatePerKg.Mul(it.WeightKg)
	it.GunnyCost = gunnyBagCost.MulInt(int64(it.NumberOfBags))
}

// Recompute sets the bill's derived totals from items and attaches them.
// It is idempotent.
func Recompute(b *Bill, items []Item) {
	subtotal := types.Zero()
	gunny := types.Zero()
	for _, it := range items {
		subtotal = subtotal.Add(it.TotalPrice)
		gunny = gunny.Add(it.GunnyCost)
	}
	b.Subtotal = subtotal
	b.GunnyBagCost = gunny
	b.TotalAmount = subtotal.Add(gunny)
	b.Items = items
}

// NextLine returns the line number for an item appended to items.
func NextLine(items []Item) int {
	next := 1
	for _, it := range items {
		if it.Line >= next {
			next = it.Line + 1
		}
	}
	return next
}
