// Package plugin provides an extensible plugin system for Khata.
// Plugins hook into ledger lifecycle events and supply document formatters.
package plugin

import (
	"context"
	"io"

	"github.com/xraph/khata/balance"
	"github.com/xraph/khata/bill"
	"github.com/xraph/khata/deposit"
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/payment"
	"github.com/xraph/khata/report"
	"github.com/xraph/khata/settings"
	"github.com/xraph/khata/shop"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the engine starts. k is the *khata.Khata engine.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, k any) error
}

// OnShutdown is called when the engine stops.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Shop hooks
// ──────────────────────────────────────────────────

// OnShopCreated is called after a shop (and its initial deposit) is stored.
type OnShopCreated interface {
	Plugin
	OnShopCreated(ctx context.Context, s *shop.Shop) error
}

// OnShopUpdated is called after a shop's details change.
type OnShopUpdated interface {
	Plugin
	OnShopUpdated(ctx context.Context, s *shop.Shop) error
}

// OnShopDeleted is called after a shop and its records are removed.
type OnShopDeleted interface {
	Plugin
	OnShopDeleted(ctx context.Context, shopID id.ShopID) error
}

// ──────────────────────────────────────────────────
// Money movement hooks
// ──────────────────────────────────────────────────

// OnDepositRecorded is called after credit is issued to a shop.
type OnDepositRecorded interface {
	Plugin
	OnDepositRecorded(ctx context.Context, d *deposit.Deposit) error
}

// OnPaymentRecorded is called after a shop repays credit.
type OnPaymentRecorded interface {
	Plugin
	OnPaymentRecorded(ctx context.Context, p *payment.Payment) error
}

// ──────────────────────────────────────────────────
// Bill hooks
// ──────────────────────────────────────────────────

// OnBillCreated is called after a bill and its items are committed.
type OnBillCreated interface {
	Plugin
	OnBillCreated(ctx context.Context, b *bill.Bill) error
}

// OnBillUpdated is called after a bill's items or notes change.
type OnBillUpdated interface {
	Plugin
	OnBillUpdated(ctx context.Context, b *bill.Bill) error
}

// OnBillDeleted is called after a bill is removed.
type OnBillDeleted interface {
	Plugin
	OnBillDeleted(ctx context.Context, b *bill.Bill) error
}

// OnCreditLimitExceeded is called when the admission gate refuses a bill.
type OnCreditLimitExceeded interface {
	Plugin
	OnCreditLimitExceeded(ctx context.Context, shopID id.ShopID, d balance.Decision) error
}

// ──────────────────────────────────────────────────
// Settings hooks
// ──────────────────────────────────────────────────

// OnSettingsUpdated is called after the gunny bag cost changes.
type OnSettingsUpdated interface {
	Plugin
	OnSettingsUpdated(ctx context.Context, old, updated *settings.Settings) error
}

// ──────────────────────────────────────────────────
// Document formatters
// ──────────────────────────────────────────────────

// BillFormatter renders a single bill for export.
type BillFormatter interface {
	Plugin
	Format() string      // "pdf", "xlsx", ...
	ContentType() string // MIME type of the rendered document
	RenderBill(ctx context.Context, doc *report.BillDocument, w io.Writer) error
}

// StatisticsFormatter renders a statistics report for export.
type StatisticsFormatter interface {
	Plugin
	Format() string
	ContentType() string
	RenderStatistics(ctx context.Context, stats *report.Statistics, w io.Writer) error
}
