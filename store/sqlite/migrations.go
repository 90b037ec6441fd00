package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Khata store (SQLite).
// Amounts are TEXT holding exact decimals; dates are TEXT "YYYY-MM-DD".
var Migrations = migrate.NewGroup("khata")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_khata_settings",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS khata_settings (
    id             INTEGER PRIMARY KEY CHECK (id = 1),
    gunny_bag_cost TEXT NOT NULL DEFAULT '0',
    updated_at     TEXT NOT NULL DEFAULT ''
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS khata_settings`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_khata_shops",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS khata_shops (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    address         TEXT NOT NULL DEFAULT '',
    contact_number  TEXT NOT NULL DEFAULT '',
    initial_deposit TEXT NOT NULL DEFAULT '0',
    bill_limit      INTEGER NOT NULL DEFAULT 5 CHECK (bill_limit >= 1),
    is_active       INTEGER NOT NULL DEFAULT 1,
    created_at      TEXT NOT NULL,
    updated_at      TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_khata_shops_name ON khata_shops (name);
CREATE INDEX IF NOT EXISTS idx_khata_shops_active ON khata_shops (is_active, created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS khata_shops`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_khata_deposits",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS khata_deposits (
    id           TEXT PRIMARY KEY,
    shop_id      TEXT NOT NULL REFERENCES khata_shops (id) ON DELETE CASCADE,
    amount       TEXT NOT NULL,
    deposit_date TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    created_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_khata_deposits_shop_date ON khata_deposits (shop_id, deposit_date);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS khata_deposits`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_khata_payments",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS khata_payments (
    id           TEXT PRIMARY KEY,
    shop_id      TEXT NOT NULL REFERENCES khata_shops (id) ON DELETE CASCADE,
    amount       TEXT NOT NULL,
    payment_date TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    created_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_khata_payments_shop_date ON khata_payments (shop_id, payment_date);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS khata_payments`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_khata_bills",
			Version: "20240101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS khata_bills (
    id             TEXT PRIMARY KEY,
    shop_id        TEXT NOT NULL REFERENCES khata_shops (id) ON DELETE CASCADE,
    number         TEXT NOT NULL,
    bill_date      TEXT NOT NULL,
    subtotal       TEXT NOT NULL DEFAULT '0',
    gunny_bag_cost TEXT NOT NULL DEFAULT '0',
    total_amount   TEXT NOT NULL DEFAULT '0',
    notes          TEXT NOT NULL DEFAULT '',
    created_at     TEXT NOT NULL,
    updated_at     TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_khata_bills_number ON khata_bills (number);
CREATE INDEX IF NOT EXISTS idx_khata_bills_shop_date ON khata_bills (shop_id, bill_date);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS khata_bills`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_khata_bill_items",
			Version: "20240101000006",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS khata_bill_items (
    id             TEXT PRIMARY KEY,
    bill_id        TEXT NOT NULL REFERENCES khata_bills (id) ON DELETE CASCADE,
    line           INTEGER NOT NULL,
    number_of_bags INTEGER NOT NULL CHECK (number_of_bags >= 1),
    weight_kg      TEXT NOT NULL,
    rate_per_kg    TEXT NOT NULL,
    total_price    TEXT NOT NULL,
    gunny_cost     TEXT NOT NULL DEFAULT '0',
    created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_khata_bill_items_bill ON khata_bill_items (bill_id, line);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS khata_bill_items`)
				return err
			},
		},
	)
}
