package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/xraph/khata/balance"
	"github.com/xraph/khata/bill"
	"github.com/xraph/khata/deposit"
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/payment"
	"github.com/xraph/khata/settings"
	"github.com/xraph/khata/shop"
)

// DefaultHookTimeout bounds how long a single hook may run.
const DefaultHookTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// Hook implementations are discovered once at registration and cached per
// interface, so emitting an event never type-asserts.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit                []OnInit
	onShutdown            []OnShutdown
	onShopCreated         []OnShopCreated
	onShopUpdated         []OnShopUpdated
	onShopDeleted         []OnShopDeleted
	onDepositRecorded     []OnDepositRecorded
	onPaymentRecorded     []OnPaymentRecorded
	onBillCreated         []OnBillCreated
	onBillUpdated         []OnBillUpdated
	onBillDeleted         []OnBillDeleted
	onCreditLimitExceeded []OnCreditLimitExceeded
	onSettingsUpdated     []OnSettingsUpdated
	billFormatters        map[string]BillFormatter
	statisticsFormatters  map[string]StatisticsFormatter
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:               slog.Default(),
		timeout:              DefaultHookTimeout,
		billFormatters:       make(map[string]BillFormatter),
		statisticsFormatters: make(map[string]StatisticsFormatter),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-hook timeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	var hooks []string
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
		hooks = append(hooks, "OnInit")
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
		hooks = append(hooks, "OnShutdown")
	}
	if v, ok := p.(OnShopCreated); ok {
		r.onShopCreated = append(r.onShopCreated, v)
		hooks = append(hooks, "OnShopCreated")
	}
	if v, ok := p.(OnShopUpdated); ok {
		r.onShopUpdated = append(r.onShopUpdated, v)
		hooks = append(hooks, "OnShopUpdated")
	}
	if v, ok := p.(OnShopDeleted); ok {
		r.onShopDeleted = append(r.onShopDeleted, v)
		hooks = append(hooks, "OnShopDeleted")
	}
	if v, ok := p.(OnDepositRecorded); ok {
		r.onDepositRecorded = append(r.onDepositRecorded, v)
		hooks = append(hooks, "OnDepositRecorded")
	}
	if v, ok := p.(OnPaymentRecorded); ok {
		r.onPaymentRecorded = append(r.onPaymentRecorded, v)
		hooks = append(hooks, "OnPaymentRecorded")
	}
	if v, ok := p.(OnBillCreated); ok {
		r.onBillCreated = append(r.onBillCreated, v)
		hooks = append(hooks, "OnBillCreated")
	}
	if v, ok := p.(OnBillUpdated); ok {
		r.onBillUpdated = append(r.onBillUpdated, v)
		hooks = append(hooks, "OnBillUpdated")
	}
	if v, ok := p.(OnBillDeleted); ok {
		r.onBillDeleted = append(r.onBillDeleted, v)
		hooks = append(hooks, "OnBillDeleted")
	}
	if v, ok := p.(OnCreditLimitExceeded); ok {
		r.onCreditLimitExceeded = append(r.onCreditLimitExceeded, v)
		hooks = append(hooks, "OnCreditLimitExceeded")
	}
	if v, ok := p.(OnSettingsUpdated); ok {
		r.onSettingsUpdated = append(r.onSettingsUpdated, v)
		hooks = append(hooks, "OnSettingsUpdated")
	}
	if v, ok := p.(BillFormatter); ok {
		r.billFormatters[v.Format()] = v
		hooks = append(hooks, "BillFormatter")
	}
	if v, ok := p.(StatisticsFormatter); ok {
		r.statisticsFormatters[v.Format()] = v
		hooks = append(hooks, "StatisticsFormatter")
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", hooks,
	)

	return nil
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// BillFormatter returns the formatter registered for format, or nil.
func (r *Registry) BillFormatter(format string) BillFormatter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.billFormatters[format]
}

// StatisticsFormatter returns the formatter registered for format, or nil.
func (r *Registry) StatisticsFormatter(format string) StatisticsFormatter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.statisticsFormatters[format]
}

// Formats lists the registered export formats, sorted.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for f := range r.billFormatters {
		seen[f] = true
	}
	for f := range r.statisticsFormatters {
		seen[f] = true
	}
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, k any) {
	emit(ctx, r, "OnInit", snapshot(r, &r.onInit), func(p OnInit) error {
		return p.OnInit(ctx, k)
	})
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	emit(ctx, r, "OnShutdown", snapshot(r, &r.onShutdown), func(p OnShutdown) error {
		return p.OnShutdown(ctx)
	})
}

// EmitShopCreated emits a shop created event.
func (r *Registry) EmitShopCreated(ctx context.Context, s *shop.Shop) {
	emit(ctx, r, "OnShopCreated", snapshot(r, &r.onShopCreated), func(p OnShopCreated) error {
		return p.OnShopCreated(ctx, s)
	})
}

// EmitShopUpdated emits a shop updated event.
func (r *Registry) EmitShopUpdated(ctx context.Context, s *shop.Shop) {
	emit(ctx, r, "OnShopUpdated", snapshot(r, &r.onShopUpdated), func(p OnShopUpdated) error {
		return p.OnShopUpdated(ctx, s)
	})
}

// EmitShopDeleted emits a shop deleted event.
func (r *Registry) EmitShopDeleted(ctx context.Context, shopID id.ShopID) {
	emit(ctx, r, "OnShopDeleted", snapshot(r, &r.onShopDeleted), func(p OnShopDeleted) error {
		return p.OnShopDeleted(ctx, shopID)
	})
}

// EmitDepositRecorded emits a deposit recorded event.
func (r *Registry) EmitDepositRecorded(ctx context.Context, d *deposit.Deposit) {
	emit(ctx, r, "OnDepositRecorded", snapshot(r, &r.onDepositRecorded), func(p OnDepositRecorded) error {
		return p.OnDepositRecorded(ctx, d)
	})
}

// EmitPaymentRecorded emits a payment recorded event.
func (r *Registry) EmitPaymentRecorded(ctx context.Context, pay *payment.Payment) {
	emit(ctx, r, "OnPaymentRecorded", snapshot(r, &r.onPaymentRecorded), func(p OnPaymentRecorded) error {
		return p.OnPaymentRecorded(ctx, pay)
	})
}

// EmitBillCreated emits a bill created event.
func (r *Registry) EmitBillCreated(ctx context.Context, b *bill.Bill) {
	emit(ctx, r, "OnBillCreated", snapshot(r, &r.onBillCreated), func(p OnBillCreated) error {
		return p.OnBillCreated(ctx, b)
	})
}

// EmitBillUpdated emits a bill updated event.
func (r *Registry) EmitBillUpdated(ctx context.Context, b *bill.Bill) {
	emit(ctx, r, "OnBillUpdated", snapshot(r, &r.onBillUpdated), func(p OnBillUpdated) error {
		return p.OnBillUpdated(ctx, b)
	})
}

// EmitBillDeleted emits a bill deleted event.
func (r *Registry) EmitBillDeleted(ctx context.Context, b *bill.Bill) {
	emit(ctx, r, "OnBillDeleted", snapshot(r, &r.onBillDeleted), func(p OnBillDeleted) error {
		return p.OnBillDeleted(ctx, b)
	})
}

// EmitCreditLimitExceeded emits a refused-bill event.
func (r *Registry) EmitCreditLimitExceeded(ctx context.Context, shopID id.ShopID, d balance.Decision) {
	emit(ctx, r, "OnCreditLimitExceeded", snapshot(r, &r.onCreditLimitExceeded), func(p OnCreditLimitExceeded) error {
		return p.OnCreditLimitExceeded(ctx, shopID, d)
	})
}

// EmitSettingsUpdated emits a settings updated event.
func (r *Registry) EmitSettingsUpdated(ctx context.Context, old, updated *settings.Settings) {
	emit(ctx, r, "OnSettingsUpdated", snapshot(r, &r.onSettingsUpdated), func(p OnSettingsUpdated) error {
		return p.OnSettingsUpdated(ctx, old, updated)
	})
}

// snapshot copies a cached hook list under the read lock.
func snapshot[T any](r *Registry, list *[]T) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]T(nil), *list...)
}

// emit runs fn for every plugin, logging failures. Hook errors never reach
// the caller: a committed ledger write stays committed.
func emit[T Plugin](ctx context.Context, r *Registry, hook string, plugins []T, fn func(T) error) {
	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error { return fn(p) }); err != nil {
			r.logger.Warn("plugin hook failed",
				"hook", hook,
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
