package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/xraph/khata"
	"github.com/xraph/khata/bill"
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/shop"
	"github.com/xraph/khata/types"
)

func TestClassify(t *testing.T) {
	other := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"shop name", &pgconn.PgError{Code: "23505", TableName: "khata_shops"}, khata.ErrShopNameTaken},
		{"bill number", &pgconn.PgError{Code: "23505", TableName: "khata_bills"}, khata.ErrBillNumberConflict},
		{"wrapped bill number", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", TableName: "khata_bills"}), khata.ErrBillNumberConflict},
		{"missing shop", &pgconn.PgError{Code: "23503", TableName: "khata_deposits"}, khata.ErrShopNotFound},
		{"missing bill", &pgconn.PgError{Code: "23503", TableName: "khata_bill_items"}, khata.ErrBillNotFound},
		{"serialization", &pgconn.PgError{Code: "40001"}, khata.ErrTransactionFailed},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, khata.ErrTransactionFailed},
		{"other", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if tt.want == nil {
				if got != nil {
					t.Errorf("classify = %v, want nil", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("classify = %v, want %v", got, tt.want)
			}
		})
	}

	if !khata.IsRetryable(classify(&pgconn.PgError{Code: "23505", TableName: "khata_bills"})) {
		t.Error("bill number conflicts should be retryable")
	}
}

func TestIsNoRows(t *testing.T) {
	if !isNoRows(fmt.Errorf("first: %w", gorm.ErrRecordNotFound)) {
		t.Error("wrapped ErrRecordNotFound not recognised")
	}
	if isNoRows(errors.New("other")) {
		t.Error("unrelated error treated as no rows")
	}
}

func TestShopModelRoundTrip(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	sh := &shop.Shop{
		Entity:         types.NewEntity(now),
		ID:             id.NewShopID(),
		Name:           "Sharma Traders",
		ContactNumber:  "9876543210",
		InitialDeposit: types.Units(1000),
		BillLimit:      5,
		IsActive:       true,
	}

	got, err := fromShopModel(toShopModel(sh))
	if err != nil {
		t.Fatal(err)
	}
	if got.ID.String() != sh.ID.String() || got.Name != sh.Name || !got.InitialDeposit.Equal(sh.InitialDeposit) {
		t.Errorf("round trip = %+v", got)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v", got.CreatedAt)
	}
}

func TestBillItemModelKeepsExactPrice(t *testing.T) {
	it := &bill.Item{
		ID:           id.NewBillItemID(),
		BillID:       id.NewBillID(),
		Line:         1,
		NumberOfBags: 3,
		WeightKg:     decimal.RequireFromString("12.25"),
		RatePerKg:    types.MustParseMoney("3.45"),
	}
	bill.PriceItem(it, types.Units(10))

	got, err := fromBillItemModel(toBillItemModel(it))
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalPrice.String() != "42.2625" {
		t.Errorf("TotalPrice = %s, want 42.2625", got.TotalPrice)
	}
	if got.GunnyCost.String() != "30.00" {
		t.Errorf("GunnyCost = %s, want 30.00", got.GunnyCost)
	}
}

func TestFromModelRejectsBadIDs(t *testing.T) {
	if _, err := fromBillModel(&billModel{ID: "not-an-id"}); err == nil {
		t.Error("fromBillModel accepted a malformed id")
	}
	if _, err := fromDepositModel(&depositModel{ID: id.NewDepositID().String(), ShopID: "bad"}); err == nil {
		t.Error("fromDepositModel accepted a malformed shop id")
	}
}

func TestMigrationsAreOrdered(t *testing.T) {
	ms := Migrations.Migrations()
	if len(ms) != 6 {
		t.Fatalf("got %d migrations, want 6", len(ms))
	}
	prev := ""
	for _, m := range ms {
		if m.Version <= prev {
			t.Errorf("migration %s out of order", m.Name)
		}
		prev = m.Version
		if m.Group != "khata" {
			t.Errorf("migration %s in group %q", m.Name, m.Group)
		}
		if m.Up == nil || m.Down == nil {
			t.Errorf("migration %s is missing up or down", m.Name)
		}
	}
}

func TestMigrateWithoutGroveConnection(t *testing.T) {
	s := New(nil, nil)
	if err := s.Migrate(context.Background()); !errors.Is(err, khata.ErrMigrationFailed) {
		t.Fatalf("Migrate = %v, want ErrMigrationFailed", err)
	}
}
