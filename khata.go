package khata

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/khata/balance"
	"github.com/xraph/khata/plugin"
	"github.com/xraph/khata/settings"
	"github.com/xraph/khata/store"
	"github.com/xraph/khata/types"
)

// DefaultNumberAttempts is how many times bill creation is retried after a
// bill number collision.
const DefaultNumberAttempts = 5

// Khata is the credit ledger engine.
type Khata struct {
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger

	// Configuration
	policy         balance.Policy
	now            func() time.Time
	loc            *time.Location
	numberAttempts int
	autoMigrate    bool
}

// New creates a new Khata instance.
func New(s store.Store, opts ...Option) *Khata {
	k := &Khata{
		store:          s,
		plugins:        plugin.NewRegistry(),
		logger:         slog.Default(),
		policy:         balance.DefaultPolicy(),
		now:            time.Now,
		loc:            time.Local,
		numberAttempts: DefaultNumberAttempts,
		autoMigrate:    true,
	}

	for _, opt := range opts {
		opt(k)
	}

	return k
}

// Option configures a Khata instance.
type Option func(*Khata)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(k *Khata) {
		k.logger = logger
		k.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(k *Khata) {
		_ = k.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithCreditMultiplier sets how many times its deposits a shop may owe.
func WithCreditMultiplier(n int64) Option {
	return func(k *Khata) {
		if n > 0 {
			k.policy.CreditMultiplier = n
		}
	}
}

// WithBillLimitPolicy turns the per-shop bill count cap on or off.
func WithBillLimitPolicy(enforce bool) Option {
	return func(k *Khata) {
		k.policy.EnforceBillLimit = enforce
	}
}

// WithClock replaces the wall clock. Bill numbers, "today" and record
// timestamps all read it.
func WithClock(now func() time.Time) Option {
	return func(k *Khata) {
		if now != nil {
			k.now = now
		}
	}
}

// WithLocation sets the time zone calendar dates are taken in.
func WithLocation(loc *time.Location) Option {
	return func(k *Khata) {
		if loc != nil {
			k.loc = loc
		}
	}
}

// WithNumberAttempts bounds bill creation retries on a number collision.
func WithNumberAttempts(n int) Option {
	return func(k *Khata) {
		if n > 0 {
			k.numberAttempts = n
		}
	}
}

// WithAutoMigrate controls whether Start migrates the store. Defaults to true.
func WithAutoMigrate(enabled bool) Option {
	return func(k *Khata) {
		k.autoMigrate = enabled
	}
}

// Start migrates the store, seeds the settings record and initializes
// plugins.
func (k *Khata) Start(ctx context.Context) error {
	if k.autoMigrate {
		if err := k.store.Migrate(ctx); err != nil {
			return err
		}
	}

	if _, err := k.Settings(ctx); err != nil {
		return fmt.Errorf("khata: load settings: %w", err)
	}

	// Initialize plugins
	k.plugins.EmitInit(ctx, k)

	k.logger.Info("khata started",
		"credit_multiplier", k.policy.CreditMultiplier,
		"enforce_bill_limit", k.policy.EnforceBillLimit,
		"location", k.loc.String(),
		"plugins", k.plugins.Count(),
	)

	return nil
}

// Stop shuts down the engine and closes the store.
func (k *Khata) Stop() error {
	ctx := context.Background()
	k.plugins.EmitShutdown(ctx)

	return k.store.Close()
}

// Store returns the underlying store.
func (k *Khata) Store() store.Store { return k.store }

// Plugins returns the plugin registry.
func (k *Khata) Plugins() *plugin.Registry { return k.plugins }

// Policy returns the admission policy in force.
func (k *Khata) Policy() balance.Policy { return k.policy }

// Today returns the engine's current calendar date.
func (k *Khata) Today() types.Date {
	return types.DateOf(k.clock())
}

func (k *Khata) clock() time.Time {
	return k.now().In(k.loc)
}

// ──────────────────────────────────────────────────
// Settings
// ──────────────────────────────────────────────────

// Settings returns the settings record, creating it with a zero gunny bag
// cost on first access.
func (k *Khata) Settings(ctx context.Context) (*settings.Settings, error) {
	return k.settingsIn(ctx, k.store)
}

// UpdateGunnyBagCost sets the per-bag surcharge applied to items written
// from now on. Existing items keep the cost they were priced with.
func (k *Khata) UpdateGunnyBagCost(ctx context.Context, cost types.Money) (*settings.Settings, error) {
	if err := validateNonNegative("gunny_bag_cost", cost); err != nil {
		return nil, err
	}

	var old, updated *settings.Settings
	err := k.store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		cur, err := k.settingsIn(ctx, tx)
		if err != nil {
			return err
		}
		prev := *cur
		old = &prev

		cur.GunnyBagCost = cost
		cur.UpdatedAt = k.clock()
		if err := tx.SaveSettings(ctx, cur); err != nil {
			return err
		}
		updated = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	k.logger.Info("gunny bag cost updated",
		"old", old.GunnyBagCost.String(),
		"new", updated.GunnyBagCost.String(),
	)
	k.plugins.EmitSettingsUpdated(ctx, old, updated)
	return updated, nil
}

func (k *Khata) settingsIn(ctx context.Context, s store.Store) (*settings.Settings, error) {
	cur, err := s.GetSettings(ctx)
	if err == nil {
		return cur, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	cur = settings.Default()
	cur.UpdatedAt = k.clock()
	if err := s.SaveSettings(ctx, cur); err != nil {
		return nil, err
	}
	return cur, nil
}
