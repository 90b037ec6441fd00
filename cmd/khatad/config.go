package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/xraph/khata/api"
	"github.com/xraph/khata/store/backend"
)

// Config is the khatad runtime configuration. Every key can be set as a
// KHATA_-prefixed environment variable or in a .env file.
type Config struct {
	Addr             string
	BasePath         string
	Store            backend.Config
	CreditMultiplier int64
	EnforceBillLimit bool
	NumberAttempts   int
	Timezone         string
	LogLevel         slog.Level
	LogFormat        string
	Metrics          bool
	CORSOrigins      []string
	PDFTitle         string
}

func loadConfig(v *viper.Viper) (Config, error) {
	v.SetEnvPrefix("KHATA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// DATABASE_URL is honoured when KHATA_STORE_DSN is unset.
	_ = v.BindEnv("store.dsn", "KHATA_STORE_DSN", "DATABASE_URL") //nolint:errcheck // key is non-empty

	v.SetDefault("addr", ":8080")
	v.SetDefault("base_path", api.DefaultBasePath)
	v.SetDefault("store.driver", string(backend.Memory))
	v.SetDefault("store.database", backend.DefaultMongoDatabase)
	v.SetDefault("credit_multiplier", 5)
	v.SetDefault("number_attempts", 5)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("metrics", true)
	v.SetDefault("pdf_title", "Khata")

	driver, err := backend.ParseDriver(v.GetString("store.driver"))
	if err != nil {
		return Config{}, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("log.level"))); err != nil {
		return Config{}, fmt.Errorf("log level: %w", err)
	}

	cfg := Config{
		Addr:     v.GetString("addr"),
		BasePath: v.GetString("base_path"),
		Store: backend.Config{
			Driver:   driver,
			DSN:      v.GetString("store.dsn"),
			Database: v.GetString("store.database"),
		},
		CreditMultiplier: v.GetInt64("credit_multiplier"),
		EnforceBillLimit: v.GetBool("enforce_bill_limit"),
		NumberAttempts:   v.GetInt("number_attempts"),
		Timezone:         v.GetString("timezone"),
		LogLevel:         level,
		LogFormat:        v.GetString("log.format"),
		Metrics:          v.GetBool("metrics"),
		CORSOrigins:      splitList(v.GetString("cors_origins")),
		PDFTitle:         v.GetString("pdf_title"),
	}
	if cfg.CreditMultiplier <= 0 {
		return Config{}, fmt.Errorf("credit_multiplier must be positive, got %d", cfg.CreditMultiplier)
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
