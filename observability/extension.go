// Package observability provides a metrics extension for Khata that records
// lifecycle event counts through a MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/khata/balance"
	"github.com/xraph/khata/bill"
	"github.com/xraph/khata/deposit"
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/payment"
	"github.com/xraph/khata/plugin"
	"github.com/xraph/khata/settings"
	"github.com/xraph/khata/shop"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                = (*MetricsExtension)(nil)
	_ plugin.OnShopCreated         = (*MetricsExtension)(nil)
	_ plugin.OnShopUpdated         = (*MetricsExtension)(nil)
	_ plugin.OnShopDeleted         = (*MetricsExtension)(nil)
	_ plugin.OnDepositRecorded     = (*MetricsExtension)(nil)
	_ plugin.OnPaymentRecorded     = (*MetricsExtension)(nil)
	_ plugin.OnBillCreated         = (*MetricsExtension)(nil)
	_ plugin.OnBillUpdated         = (*MetricsExtension)(nil)
	_ plugin.OnBillDeleted         = (*MetricsExtension)(nil)
	_ plugin.OnCreditLimitExceeded = (*MetricsExtension)(nil)
	_ plugin.OnSettingsUpdated     = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Khata plugin to track ledger activity.
type MetricsExtension struct {
	// Shop metrics
	ShopCreated Counter
	ShopUpdated Counter
	ShopDeleted Counter

	// Money movement metrics
	DepositRecorded Counter
	DepositAmount   Histogram
	PaymentRecorded Counter
	PaymentAmount   Histogram

	// Bill metrics
	BillCreated   Counter
	BillUpdated   Counter
	BillDeleted   Counter
	BillTotal     Histogram
	BillItems     Histogram
	CreditRefused Counter
	LimitRefused  Counter

	// Settings metrics
	SettingsUpdated Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		ShopCreated: factory.Counter("khata.shop.created"),
		ShopUpdated: factory.Counter("khata.shop.updated"),
		ShopDeleted: factory.Counter("khata.shop.deleted"),

		DepositRecorded: factory.Counter("khata.deposit.recorded"),
		DepositAmount:   factory.Histogram("khata.deposit.amount"),
		PaymentRecorded: factory.Counter("khata.payment.recorded"),
		PaymentAmount:   factory.Histogram("khata.payment.amount"),

		BillCreated:   factory.Counter("khata.bill.created"),
		BillUpdated:   factory.Counter("khata.bill.updated"),
		BillDeleted:   factory.Counter("khata.bill.deleted"),
		BillTotal:     factory.Histogram("khata.bill.total_amount"),
		BillItems:     factory.Histogram("khata.bill.items"),
		CreditRefused: factory.Counter("khata.bill.refused.credit_limit"),
		LimitRefused:  factory.Counter("khata.bill.refused.bill_limit"),

		SettingsUpdated: factory.Counter("khata.settings.updated"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// ──────────────────────────────────────────────────
// Shop lifecycle hooks
// ──────────────────────────────────────────────────

// OnShopCreated implements plugin.OnShopCreated.
func (m *MetricsExtension) OnShopCreated(_ context.Context, _ *shop.Shop) error {
	m.ShopCreated.Inc()
	return nil
}

// OnShopUpdated implements plugin.OnShopUpdated.
func (m *MetricsExtension) OnShopUpdated(_ context.Context, _ *shop.Shop) error {
	m.ShopUpdated.Inc()
	return nil
}

// OnShopDeleted implements plugin.OnShopDeleted.
func (m *MetricsExtension) OnShopDeleted(_ context.Context, _ id.ShopID) error {
	m.ShopDeleted.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Money movement hooks
// ──────────────────────────────────────────────────

// OnDepositRecorded implements plugin.OnDepositRecorded.
func (m *MetricsExtension) OnDepositRecorded(_ context.Context, d *deposit.Deposit) error {
	m.DepositRecorded.Inc()
	m.DepositAmount.Observe(d.Amount.Decimal().InexactFloat64())
	return nil
}

// OnPaymentRecorded implements plugin.OnPaymentRecorded.
func (m *MetricsExtension) OnPaymentRecorded(_ context.Context, p *payment.Payment) error {
	m.PaymentRecorded.Inc()
	m.PaymentAmount.Observe(p.Amount.Decimal().InexactFloat64())
	return nil
}

// ──────────────────────────────────────────────────
// Bill lifecycle hooks
// ──────────────────────────────────────────────────

// OnBillCreated implements plugin.OnBillCreated.
func (m *MetricsExtension) OnBillCreated(_ context.Context, b *bill.Bill) error {
	m.BillCreated.Inc()
	m.BillTotal.Observe(b.TotalAmount.Decimal().InexactFloat64())
	m.BillItems.Observe(float64(len(b.Items)))
	return nil
}

// OnBillUpdated implements plugin.OnBillUpdated.
func (m *MetricsExtension) OnBillUpdated(_ context.Context, _ *bill.Bill) error {
	m.BillUpdated.Inc()
	return nil
}

// OnBillDeleted implements plugin.OnBillDeleted.
func (m *MetricsExtension) OnBillDeleted(_ context.Context, _ *bill.Bill) error {
	m.BillDeleted.Inc()
	return nil
}

// OnCreditLimitExceeded implements plugin.OnCreditLimitExceeded.
func (m *MetricsExtension) OnCreditLimitExceeded(_ context.Context, _ id.ShopID, d balance.Decision) error {
	if d.Reason == balance.ReasonBillLimitReached {
		m.LimitRefused.Inc()
	} else {
		m.CreditRefused.Inc()
	}
	return nil
}

// ──────────────────────────────────────────────────
// Settings hooks
// ──────────────────────────────────────────────────

// OnSettingsUpdated implements plugin.OnSettingsUpdated.
func (m *MetricsExtension) OnSettingsUpdated(_ context.Context, _, _ *settings.Settings) error {
	m.SettingsUpdated.Inc()
	return nil
}
