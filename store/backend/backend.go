// Package backend opens a Khata store by driver name.
package backend

import (
	"fmt"
	"strings"

	"github.com/xraph/khata/store"
	"github.com/xraph/khata/store/memory"
	"github.com/xraph/khata/store/mongo"
	"github.com/xraph/khata/store/postgres"
	"github.com/xraph/khata/store/sqlite"
)

// Driver names a store implementation.
type Driver string

const (
	Memory   Driver = "memory"
	Postgres Driver = "postgres"
	SQLite   Driver = "sqlite"
	Mongo    Driver = "mongo"
)

// DefaultMongoDatabase is used when Config.Database is empty.
const DefaultMongoDatabase = "khata"

// Config selects and addresses a store.
type Config struct {
	Driver Driver `json:"driver" mapstructure:"driver" yaml:"driver"`

	// DSN is the connection string: a PostgreSQL DSN, a SQLite file path
	// (or ":memory:") or a MongoDB URI. Ignored by the memory driver.
	DSN string `json:"dsn" mapstructure:"dsn" yaml:"dsn"`

	// Database names the MongoDB database.
	Database string `json:"database" mapstructure:"database" yaml:"database"`
}

// ParseDriver normalizes a driver name. "" selects Memory.
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "memory", "mem":
		return Memory, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "mongo", "mongodb":
		return Mongo, nil
	default:
		return "", fmt.Errorf("khata/backend: unknown driver %q", s)
	}
}

// Open returns the store cfg describes. The store is not migrated.
func Open(cfg Config) (store.Store, error) {
	driver, err := ParseDriver(string(cfg.Driver))
	if err != nil {
		return nil, err
	}
	if driver != Memory && cfg.DSN == "" {
		return nil, fmt.Errorf("khata/backend: %s driver needs a dsn", driver)
	}

	var (
		s    store.Store
		oerr error
	)
	switch driver {
	case Postgres:
		s, oerr = asStore(postgres.Open(cfg.DSN))
	case SQLite:
		s, oerr = asStore(sqlite.Open(cfg.DSN))
	case Mongo:
		name := cfg.Database
		if name == "" {
			name = DefaultMongoDatabase
		}
		s, oerr = asStore(mongo.Open(cfg.DSN, name))
	default:
		s = memory.New()
	}
	if oerr != nil {
		return nil, oerr
	}
	return s, nil
}

// asStore drops the typed nil a failed constructor returns.
func asStore[S store.Store](s S, err error) (store.Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
