package extension

import (
	"testing"

	"github.com/xraph/khata/store/backend"
)

func TestMergeWithDefaults(t *testing.T) {
	got := mergeWithDefaults(Config{})
	want := DefaultConfig()
	if got.BasePath != want.BasePath || got.Store.Driver != backend.Memory ||
		got.CreditMultiplier != 5 || got.NumberAttempts != want.NumberAttempts {
		t.Errorf("mergeWithDefaults = %+v", got)
	}

	kept := mergeWithDefaults(Config{BasePath: "/credit", CreditMultiplier: 3})
	if kept.BasePath != "/credit" || kept.CreditMultiplier != 3 {
		t.Errorf("explicit values overwritten: %+v", kept)
	}
}

func TestMergeConfigurations(t *testing.T) {
	tests := []struct {
		name       string
		yaml, prog Config
		check      func(Config) bool
	}{
		{
			name:  "yaml wins for strings",
			yaml:  Config{BasePath: "/yaml"},
			prog:  Config{BasePath: "/prog", Timezone: "Asia/Kolkata"},
			check: func(c Config) bool { return c.BasePath == "/yaml" && c.Timezone == "Asia/Kolkata" },
		},
		{
			name:  "programmatic flags override",
			yaml:  Config{},
			prog:  Config{DisableRoutes: true, DisableMigrate: true, EnforceBillLimit: true},
			check: func(c Config) bool { return c.DisableRoutes && c.DisableMigrate && c.EnforceBillLimit },
		},
		{
			name: "programmatic store fills gap",
			yaml: Config{},
			prog: Config{Store: backend.Config{Driver: backend.SQLite, DSN: "khata.db"}},
			check: func(c Config) bool {
				return c.Store.Driver == backend.SQLite && c.Store.DSN == "khata.db"
			},
		},
		{
			name:  "numbers fall back to defaults",
			yaml:  Config{CreditMultiplier: 7},
			prog:  Config{},
			check: func(c Config) bool { return c.CreditMultiplier == 7 && c.NumberAttempts == DefaultConfig().NumberAttempts },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mergeConfigurations(tt.yaml, tt.prog); !tt.check(got) {
				t.Errorf("merged = %+v", got)
			}
		})
	}
}

func TestBuildKhataOptsRejectsUnknownTimezone(t *testing.T) {
	e := New(WithConfig(Config{Timezone: "Mars/Olympus"}))
	if _, err := e.buildKhataOpts(); err == nil {
		t.Error("want error for unknown timezone")
	}

	e = New(WithTimezone("UTC"), WithCreditMultiplier(3))
	e.config = mergeWithDefaults(e.config)
	opts, err := e.buildKhataOpts()
	if err != nil {
		t.Fatal(err)
	}
	if len(opts) != 5 {
		t.Errorf("options = %d, want 5", len(opts))
	}
}
