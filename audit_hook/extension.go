// Package audithook bridges Khata lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not depend on any
// particular audit store. Callers inject a RecorderFunc adapter at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/khata/balance"
	"github.com/xraph/khata/bill"
	"github.com/xraph/khata/deposit"
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/payment"
	"github.com/xraph/khata/plugin"
	"github.com/xraph/khata/settings"
	"github.com/xraph/khata/shop"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                = (*Extension)(nil)
	_ plugin.OnShopCreated         = (*Extension)(nil)
	_ plugin.OnShopUpdated         = (*Extension)(nil)
	_ plugin.OnShopDeleted         = (*Extension)(nil)
	_ plugin.OnDepositRecorded     = (*Extension)(nil)
	_ plugin.OnPaymentRecorded     = (*Extension)(nil)
	_ plugin.OnBillCreated         = (*Extension)(nil)
	_ plugin.OnBillUpdated         = (*Extension)(nil)
	_ plugin.OnBillDeleted         = (*Extension)(nil)
	_ plugin.OnCreditLimitExceeded = (*Extension)(nil)
	_ plugin.OnSettingsUpdated     = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is one entry of the audit trail.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Khata lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Shop lifecycle hooks
// ──────────────────────────────────────────────────

// OnShopCreated implements plugin.OnShopCreated.
func (e *Extension) OnShopCreated(ctx context.Context, s *shop.Shop) error {
	return e.record(ctx, ActionShopCreated, SeverityInfo, OutcomeSuccess,
		ResourceShop, s.ID.String(), CategoryAccount, "",
		"name", s.Name,
		"initial_deposit", s.InitialDeposit.String(),
	)
}

// OnShopUpdated implements plugin.OnShopUpdated.
func (e *Extension) OnShopUpdated(ctx context.Context, s *shop.Shop) error {
	return e.record(ctx, ActionShopUpdated, SeverityInfo, OutcomeSuccess,
		ResourceShop, s.ID.String(), CategoryAccount, "",
		"name", s.Name,
		"is_active", s.IsActive,
	)
}

// OnShopDeleted implements plugin.OnShopDeleted.
func (e *Extension) OnShopDeleted(ctx context.Context, shopID id.ShopID) error {
	return e.record(ctx, ActionShopDeleted, SeverityWarning, OutcomeSuccess,
		ResourceShop, shopID.String(), CategoryAccount, "",
	)
}

// ──────────────────────────────────────────────────
// Money movement hooks
// ──────────────────────────────────────────────────

// OnDepositRecorded implements plugin.OnDepositRecorded.
func (e *Extension) OnDepositRecorded(ctx context.Context, d *deposit.Deposit) error {
	return e.record(ctx, ActionDepositRecorded, SeverityInfo, OutcomeSuccess,
		ResourceDeposit, d.ID.String(), CategoryCredit, "",
		"shop_id", d.ShopID.String(),
		"amount", d.Amount.String(),
		"date", d.DepositDate.String(),
	)
}

// OnPaymentRecorded implements plugin.OnPaymentRecorded.
func (e *Extension) OnPaymentRecorded(ctx context.Context, p *payment.Payment) error {
	return e.record(ctx, ActionPaymentRecorded, SeverityInfo, OutcomeSuccess,
		ResourcePayment, p.ID.String(), CategoryCredit, "",
		"shop_id", p.ShopID.String(),
		"amount", p.Amount.String(),
		"date", p.PaymentDate.String(),
	)
}

// ──────────────────────────────────────────────────
// Bill lifecycle hooks
// ──────────────────────────────────────────────────

// OnBillCreated implements plugin.OnBillCreated.
func (e *Extension) OnBillCreated(ctx context.Context, b *bill.Bill) error {
	return e.record(ctx, ActionBillCreated, SeverityInfo, OutcomeSuccess,
		ResourceBill, b.ID.String(), CategoryBilling, "",
		billMeta(b)...,
	)
}

// OnBillUpdated implements plugin.OnBillUpdated.
func (e *Extension) OnBillUpdated(ctx context.Context, b *bill.Bill) error {
	return e.record(ctx, ActionBillUpdated, SeverityInfo, OutcomeSuccess,
		ResourceBill, b.ID.String(), CategoryBilling, "",
		billMeta(b)...,
	)
}

// OnBillDeleted implements plugin.OnBillDeleted.
func (e *Extension) OnBillDeleted(ctx context.Context, b *bill.Bill) error {
	return e.record(ctx, ActionBillDeleted, SeverityWarning, OutcomeSuccess,
		ResourceBill, b.ID.String(), CategoryBilling, "",
		billMeta(b)...,
	)
}

// OnCreditLimitExceeded implements plugin.OnCreditLimitExceeded.
func (e *Extension) OnCreditLimitExceeded(ctx context.Context, shopID id.ShopID, d balance.Decision) error {
	return e.record(ctx, ActionBillRefused, SeverityWarning, OutcomeFailure,
		ResourceShop, shopID.String(), CategoryCredit, string(d.Reason),
		"pending_amount", d.Pending.String(),
		"credit_limit", d.CreditLimit.String(),
		"bill_count", d.BillCount,
		"bill_limit", d.BillLimit,
	)
}

// ──────────────────────────────────────────────────
// Settings hooks
// ──────────────────────────────────────────────────

// OnSettingsUpdated implements plugin.OnSettingsUpdated.
func (e *Extension) OnSettingsUpdated(ctx context.Context, old, updated *settings.Settings) error {
	return e.record(ctx, ActionSettingsUpdated, SeverityInfo, OutcomeSuccess,
		ResourceSettings, "", CategoryConfig, "",
		"old_gunny_bag_cost", old.GunnyBagCost.String(),
		"gunny_bag_cost", updated.GunnyBagCost.String(),
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

func billMeta(b *bill.Bill) []any {
	return []any{
		"shop_id", b.ShopID.String(),
		"bill_number", b.Number,
		"bill_date", b.BillDate.String(),
		"total_amount", b.TotalAmount.String(),
		"items", len(b.Items),
	}
}

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	reason string,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
