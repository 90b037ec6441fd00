// Package store defines the unified persistence contract for Khata.
package store

import (
	"context"

	"github.com/xraph/khata/bill"
	"github.com/xraph/khata/deposit"
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/payment"
	"github.com/xraph/khata/settings"
	"github.com/xraph/khata/shop"
	"github.com/xraph/khata/types"
)

// Store is the unified storage interface for all Khata entities.
// Instead of embedding the per-entity interfaces, we explicitly declare all
// methods to avoid naming conflicts.
//
// Implementations map missing records to the khata not-found sentinels and
// unique violations to khata.ErrShopNameTaken / khata.ErrBillNumberConflict.
type Store interface {
	// Settings methods
	GetSettings(ctx context.Context) (*settings.Settings, error)
	SaveSettings(ctx context.Context, s *settings.Settings) error

	// Shop methods
	CreateShop(ctx context.Context, s *shop.Shop) error
	GetShop(ctx context.Context, shopID id.ShopID) (*shop.Shop, error)
	GetShopByName(ctx context.Context, name string) (*shop.Shop, error)
	LockShop(ctx context.Context, shopID id.ShopID) (*shop.Shop, error)
	ListShops(ctx context.Context, opts shop.ListOpts) ([]*shop.Shop, error)
	UpdateShop(ctx context.Context, s *shop.Shop) error
	DeleteShop(ctx context.Context, shopID id.ShopID) error

	// Deposit methods
	CreateDeposit(ctx context.Context, d *deposit.Deposit) error
	ListDeposits(ctx context.Context, shopID id.ShopID, opts deposit.ListOpts) ([]*deposit.Deposit, error)
	DepositTotal(ctx context.Context, shopID id.ShopID) (types.Money, error)

	// Payment methods
	CreatePayment(ctx context.Context, p *payment.Payment) error
	ListPayments(ctx context.Context, shopID id.ShopID, opts payment.ListOpts) ([]*payment.Payment, error)
	PaymentTotal(ctx context.Context, shopID id.ShopID, upTo types.Date) (types.Money, error)

	// Bill methods
	CreateBill(ctx context.Context, b *bill.Bill) error
	GetBill(ctx context.Context, billID id.BillID) (*bill.Bill, error)
	GetBillByNumber(ctx context.Context, number string) (*bill.Bill, error)
	ListBills(ctx context.Context, opts bill.ListOpts) ([]*bill.Bill, error)
	UpdateBill(ctx context.Context, b *bill.Bill) error
	DeleteBill(ctx context.Context, billID id.BillID) error
	LatestBillNumber(ctx context.Context, prefix string) (string, error)
	SummarizeBills(ctx context.Context, q bill.Query) (bill.Totals, error)

	// Bill item methods
	CreateBillItem(ctx context.Context, it *bill.Item) error
	GetBillItem(ctx context.Context, itemID id.BillItemID) (*bill.Item, error)
	ListBillItems(ctx context.Context, billID id.BillID) ([]bill.Item, error)
	UpdateBillItem(ctx context.Context, it *bill.Item) error
	DeleteBillItem(ctx context.Context, itemID id.BillItemID) error
	DeleteBillItems(ctx context.Context, billID id.BillID) error

	// RunInTx runs fn against a transactional view of the store. Changes
	// made through tx commit together when fn returns nil and are discarded
	// otherwise. Calling RunInTx on a transactional view runs fn inline.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
