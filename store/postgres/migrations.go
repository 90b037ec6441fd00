package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Khata store (PostgreSQL).
var Migrations = migrate.NewGroup("khata")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_khata_settings",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS khata_settings (
    id             INT PRIMARY KEY CHECK (id = 1),
    gunny_bag_cost NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (gunny_bag_cost >= 0),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
    name            VARCHAR(200) NOT NULL,
    address         TEXT NOT NULL DEFAULT '',
    contact_number  VARCHAR(15) NOT NULL DEFAULT '',
    initial_deposit NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (initial_deposit >= 0),
    bill_limit      INT NOT NULL DEFAULT 5 CHECK (bill_limit >= 1),
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_khata_shops_name ON khata_shops (name);
CREATE INDEX IF NOT EXISTS idx_khata_shops_active ON khata_shops (is_active, created_at DESC);
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
    amount       NUMERIC(12,2) NOT NULL CHECK (amount >= 0.01),
    deposit_date DATE NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_khata_deposits_shop_date ON khata_deposits (shop_id, deposit_date DESC);
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
    amount       NUMERIC(12,2) NOT NULL CHECK (amount >= 0.01),
    payment_date DATE NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_khata_payments_shop_date ON khata_payments (shop_id, payment_date DESC);
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
    number         VARCHAR(50) NOT NULL,
    bill_date      DATE NOT NULL,
    subtotal       NUMERIC(16,4) NOT NULL DEFAULT 0,
    gunny_bag_cost NUMERIC(16,4) NOT NULL DEFAULT 0,
    total_amount   NUMERIC(16,4) NOT NULL DEFAULT 0,
    notes          TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_khata_bills_number ON khata_bills (number);
CREATE INDEX IF NOT EXISTS idx_khata_bills_shop_date ON khata_bills (shop_id, bill_date DESC);
CREATE INDEX IF NOT EXISTS idx_khata_bills_date ON khata_bills (bill_date DESC);
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
    line           INT NOT NULL,
    number_of_bags INT NOT NULL CHECK (number_of_bags >= 1),
    weight_kg      NUMERIC(10,2) NOT NULL CHECK (weight_kg >= 0.01),
    rate_per_kg    NUMERIC(10,2) NOT NULL CHECK (rate_per_kg >= 0.01),
    total_price    NUMERIC(16,4) NOT NULL,
    gunny_cost     NUMERIC(12,2) NOT NULL DEFAULT 0,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
