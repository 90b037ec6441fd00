package shop

import (
	"context"

	"github.com/xraph/khata/id"
)

// Store persists shops. Delete cascades to the shop's deposits, payments,
// bills and bill items.
type Store interface {
	Create(ctx context.Context, s *Shop) error
	Get(ctx context.Context, shopID id.ShopID) (*Shop, error)
	GetByName(ctx context.Context, name string) (*Shop, error)
	// Lock reads the shop and holds it against concurrent writers for the
	// rest of the surrounding transaction.
	Lock(ctx context.Context, shopID id.ShopID) (*Shop, error)
	List(ctx context.Context, opts ListOpts) ([]*Shop, error)
	Update(ctx context.Context, s *Shop) error
	Delete(ctx context.Context, shopID id.ShopID) error
}

// ListOpts filters shop listings. Results are newest first.
type ListOpts struct {
	ActiveOnly bool
	Limit      int
	Offset     int
}
