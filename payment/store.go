package payment

import (
	"context"

	"github.com/xraph/khata/id"
	"github.com/xraph/khata/types"
)

// Store persists payments.
type Store interface {
	Create(ctx context.Context, p *Payment) error
	List(ctx context.Context, shopID id.ShopID, opts ListOpts) ([]*Payment, error)
	// Total sums payments for shopID dated on or before upTo. A zero upTo
	// means no upper bound.
	Total(ctx context.Context, shopID id.ShopID, upTo types.Date) (types.Money, error)
}

// ListOpts filters payment listings. Results are newest first.
type ListOpts struct {
	From   types.Date
	To     types.Date
	Limit  int
	Offset int
}
