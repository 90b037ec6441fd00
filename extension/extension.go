// Package extension provides the Forge extension adapter for Khata.
//
// It implements the forge.Extension interface to integrate Khata
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.khata" or "khata" keys.
package extension

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/khata"
	"github.com/xraph/khata/api"
	"github.com/xraph/khata/store"
	"github.com/xraph/khata/store/backend"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "khata"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Shop credit ledger with deposit-backed billing"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Khata as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config    Config
	engine    *khata.Khata
	handler   *api.Handler
	router    http.Handler
	store     store.Store
	khataOpts []khata.Option
}

// New creates a new Khata Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Khata instance.
// This is nil until Register is called.
func (e *Extension) Engine() *khata.Khata { return e.engine }

// Handler returns the HTTP API handler, or nil when routes are disabled.
func (e *Extension) Handler() *api.Handler { return e.handler }

// Router returns an http.Handler serving the API under the configured base
// path, or nil when routes are disabled.
func (e *Extension) Router() http.Handler { return e.router }

// Register implements [forge.Extension]. It loads configuration, opens the
// store, initializes the engine and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if e.store == nil {
		s, err := backend.Open(e.config.Store)
		if err != nil {
			return fmt.Errorf("khata: open store: %w", err)
		}
		e.store = s
	}

	opts, err := e.buildKhataOpts()
	if err != nil {
		return err
	}
	e.engine = khata.New(e.store, opts...)

	if err := vessel.Provide(fapp.Container(), func() (*khata.Khata, error) {
		return e.engine, nil
	}); err != nil {
		return err
	}

	if e.config.DisableRoutes {
		return nil
	}
	e.handler = api.New(e.engine)
	e.router = e.handler.Router(e.config.BasePath)
	return vessel.Provide(fapp.Container(), func() (*api.Handler, error) {
		return e.handler, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("khata: extension not initialized")
	}

	if err := e.engine.Start(ctx); err != nil {
		return err
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("khata: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildKhataOpts constructs khata.Option values from the resolved config.
func (e *Extension) buildKhataOpts() ([]khata.Option, error) {
	opts := make([]khata.Option, 0, len(e.khataOpts)+5)

	opts = append(opts,
		khata.WithCreditMultiplier(e.config.CreditMultiplier),
		khata.WithBillLimitPolicy(e.config.EnforceBillLimit),
		khata.WithNumberAttempts(e.config.NumberAttempts),
		khata.WithAutoMigrate(!e.config.DisableMigrate),
	)

	if e.config.Timezone != "" {
		loc, err := time.LoadLocation(e.config.Timezone)
		if err != nil {
			return nil, fmt.Errorf("khata: timezone: %w", err)
		}
		opts = append(opts, khata.WithLocation(loc))
	}

	// Append any pass-through khata options.
	opts = append(opts, e.khataOpts...)

	return opts, nil
}

// --- Config Loading ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("khata: configuration is required but not found in config files; " +
				"ensure 'extensions.khata' or 'khata' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("khata: configuration loaded",
		forge.F("disable_routes", e.config.DisableRoutes),
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("base_path", e.config.BasePath),
		forge.F("store_driver", string(e.config.Store.Driver)),
		forge.F("credit_multiplier", e.config.CreditMultiplier),
		forge.F("enforce_bill_limit", e.config.EnforceBillLimit),
		forge.F("number_attempts", e.config.NumberAttempts),
		forge.F("timezone", e.config.Timezone),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.khata" first (namespaced pattern).
	if cm.IsSet("extensions.khata") {
		if err := cm.Bind("extensions.khata", &cfg); err == nil {
			e.Logger().Debug("khata: loaded config from file",
				forge.F("key", "extensions.khata"),
			)
			return cfg, true
		}
		e.Logger().Warn("khata: failed to bind extensions.khata config",
			forge.F("error", "bind failed"),
		)
	}

	// Try top-level "khata" key.
	if cm.IsSet("khata") {
		if err := cm.Bind("khata", &cfg); err == nil {
			e.Logger().Debug("khata: loaded config from file",
				forge.F("key", "khata"),
			)
			return cfg, true
		}
		e.Logger().Warn("khata: failed to bind khata config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.BasePath == "" {
		cfg.BasePath = defaults.BasePath
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = defaults.Store.Driver
	}
	if cfg.CreditMultiplier <= 0 {
		cfg.CreditMultiplier = defaults.CreditMultiplier
	}
	if cfg.NumberAttempts <= 0 {
		cfg.NumberAttempts = defaults.NumberAttempts
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic values fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableRoutes {
		yamlConfig.DisableRoutes = true
	}
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if programmaticConfig.EnforceBillLimit {
		yamlConfig.EnforceBillLimit = true
	}

	// String fields: YAML takes precedence.
	if yamlConfig.BasePath == "" && programmaticConfig.BasePath != "" {
		yamlConfig.BasePath = programmaticConfig.BasePath
	}
	if yamlConfig.Timezone == "" && programmaticConfig.Timezone != "" {
		yamlConfig.Timezone = programmaticConfig.Timezone
	}
	if yamlConfig.Store.Driver == "" && programmaticConfig.Store.Driver != "" {
		yamlConfig.Store = programmaticConfig.Store
	}

	// Numeric fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.CreditMultiplier == 0 && programmaticConfig.CreditMultiplier != 0 {
		yamlConfig.CreditMultiplier = programmaticConfig.CreditMultiplier
	}
	if yamlConfig.NumberAttempts == 0 && programmaticConfig.NumberAttempts != 0 {
		yamlConfig.NumberAttempts = programmaticConfig.NumberAttempts
	}

	// Fill remaining zeros with defaults.
	return mergeWithDefaults(yamlConfig)
}
