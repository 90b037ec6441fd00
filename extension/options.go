package extension

import (
	"github.com/xraph/khata"
	"github.com/xraph/khata/plugin"
	"github.com/xraph/khata/store"
	"github.com/xraph/khata/store/backend"
)

// Option configures the Khata Forge extension.
type Option func(*Extension)

// WithStore sets the store for the khata engine. It takes precedence over
// the configured backend.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithBackend selects the store backend by driver and DSN.
func WithBackend(cfg backend.Config) Option {
	return func(e *Extension) { e.config.Store = cfg }
}

// WithKhataOption passes a khata.Option through to the underlying engine.
func WithKhataOption(opt khata.Option) Option {
	return func(e *Extension) {
		e.khataOpts = append(e.khataOpts, opt)
	}
}

// WithPlugin registers a khata plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.khataOpts = append(e.khataOpts, khata.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableRoutes prevents HTTP handler registration.
func WithDisableRoutes() Option {
	return func(e *Extension) { e.config.DisableRoutes = true }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithBasePath sets the URL prefix for khata routes.
func WithBasePath(path string) Option {
	return func(e *Extension) { e.config.BasePath = path }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithCreditMultiplier sets how many times its deposits a shop may owe.
func WithCreditMultiplier(n int64) Option {
	return func(e *Extension) { e.config.CreditMultiplier = n }
}

// WithEnforceBillLimit turns on the per-shop bill count cap.
func WithEnforceBillLimit() Option {
	return func(e *Extension) { e.config.EnforceBillLimit = true }
}

// WithTimezone sets the IANA zone calendar dates are taken in.
func WithTimezone(name string) Option {
	return func(e *Extension) { e.config.Timezone = name }
}
