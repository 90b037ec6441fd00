package extension

import (
	"github.com/xraph/khata"
	"github.com/xraph/khata/api"
	"github.com/xraph/khata/balance"
	"github.com/xraph/khata/store/backend"
)

// Config holds the Khata extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.khata" or "khata" keys).
type Config struct {
	// DisableRoutes prevents the HTTP handler from being built and provided.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BasePath is the URL prefix for khata routes (default: "/khata").
	BasePath string `json:"base_path" mapstructure:"base_path" yaml:"base_path"`

	// Store selects the backend when no store was given with WithStore
	// (default: memory).
	Store backend.Config `json:"store" mapstructure:"store" yaml:"store"`

	// CreditMultiplier is how many times its deposits a shop may owe
	// (default: 5).
	CreditMultiplier int64 `json:"credit_multiplier" mapstructure:"credit_multiplier" yaml:"credit_multiplier"`

	// EnforceBillLimit turns on the per-shop bill count cap.
	EnforceBillLimit bool `json:"enforce_bill_limit" mapstructure:"enforce_bill_limit" yaml:"enforce_bill_limit"`

	// NumberAttempts bounds bill creation retries on a number collision
	// (default: 5).
	NumberAttempts int `json:"number_attempts" mapstructure:"number_attempts" yaml:"number_attempts"`

	// Timezone is the IANA zone calendar dates are taken in (default: local).
	Timezone string `json:"timezone" mapstructure:"timezone" yaml:"timezone"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BasePath:         api.DefaultBasePath,
		Store:            backend.Config{Driver: backend.Memory},
		CreditMultiplier: balance.DefaultPolicy().CreditMultiplier,
		NumberAttempts:   khata.DefaultNumberAttempts,
	}
}
