package backend_test

import (
	"context"
	"testing"

	"github.com/xraph/khata/store/backend"
	"github.com/xraph/khata/store/memory"
	"github.com/xraph/khata/store/sqlite"
)

func TestParseDriver(t *testing.T) {
	tests := []struct {
		in      string
		want    backend.Driver
		wantErr bool
	}{
		{"", backend.Memory, false},
		{"PostgreSQL", backend.Postgres, false},
		{"pg", backend.Postgres, false},
		{" sqlite3 ", backend.SQLite, false},
		{"mongodb", backend.Mongo, false},
		{"oracle", "", true},
	}
	for _, tt := range tests {
		got, err := backend.ParseDriver(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDriver(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDriver(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOpen(t *testing.T) {
	s, err := backend.Open(backend.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*memory.Store); !ok {
		t.Errorf("default store = %T", s)
	}

	s, err = backend.Open(backend.Config{Driver: backend.SQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok := s.(*sqlite.Store); !ok {
		t.Errorf("sqlite store = %T", s)
	}
	if err = s.Migrate(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, err = backend.Open(backend.Config{Driver: backend.Postgres}); err == nil {
		t.Error("postgres without dsn should fail")
	}
}
