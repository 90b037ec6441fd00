package bill

import (
	"context"

	"github.com/xraph/khata/id"
	"github.com/xraph/khata/types"
)

// Store persists bills and their items.
type Store interface {
	// Create inserts the bill header. A duplicate Number is a conflict.
	Create(ctx context.Context, b *Bill) error
	// Get and GetByNumber return the bill with Items loaded in line order.
	Get(ctx context.Context, billID id.BillID) (*Bill, error)
	GetByNumber(ctx context.Context, number string) (*Bill, error)
	// List returns bill headers without items, newest bill date first.
	List(ctx context.Context, opts ListOpts) ([]*Bill, error)
	// Update rewrites header fields (notes, totals, timestamps).
	Update(ctx context.Context, b *Bill) error
	// Delete removes the bill and its items.
	Delete(ctx context.Context, billID id.BillID) error
	// LatestNumber returns the greatest number starting with prefix, or ""
	// when none exists.
	LatestNumber(ctx context.Context, prefix string) (string, error)
	// Summarize aggregates bills matching q.
	Summarize(ctx context.Context, q Query) (Totals, error)

	CreateItem(ctx context.Context, it *Item) error
	GetItem(ctx context.Context, itemID id.BillItemID) (*Item, error)
	ListItems(ctx context.Context, billID id.BillID) ([]Item, error)
	UpdateItem(ctx context.Context, it *Item) error
	DeleteItem(ctx context.Context, itemID id.BillItemID) error
	DeleteItems(ctx context.Context, billID id.BillID) error
}

// Query selects bills by shop and inclusive bill-date range. Zero fields
// do not filter.
type Query struct {
	ShopID id.ShopID
	From   types.Date
	To     types.Date
}

// ListOpts filters bill listings.
type ListOpts struct {
	Query
	Limit  int
	Offset int
}
