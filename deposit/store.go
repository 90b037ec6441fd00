package deposit

import (
	"context"

	"github.com/xraph/khata/id"
	"github.com/xraph/khata/types"
)

// Store persists deposits.
type Store interface {
	Create(ctx context.Context, d *Deposit) error
	List(ctx context.Context, shopID id.ShopID, opts ListOpts) ([]*Deposit, error)
	// Total sums deposits for shopID, or across all shops for id.Nil.
	Total(ctx context.Context, shopID id.ShopID) (types.Money, error)
}

// ListOpts filters deposit listings. Results are newest first.
type ListOpts struct {
	From   types.Date
	To     types.Date
	Limit  int
	Offset int
}
