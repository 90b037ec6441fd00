package mongo

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/xraph/khata"
	"github.com/xraph/khata/bill"
	"github.com/xraph/khata/deposit"
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/types"
)

func TestClassify(t *testing.T) {
	dupKey := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	transient := mongo.CommandError{Code: 112, Labels: []string{"TransientTransactionError"}}
	other := errors.New("socket closed")

	tests := []struct {
		name string
		err  error
		dup  error
		want error
	}{
		{"nil", nil, khata.ErrShopNameTaken, nil},
		{"duplicate shop", dupKey, khata.ErrShopNameTaken, khata.ErrShopNameTaken},
		{"duplicate bill", dupKey, khata.ErrBillNumberConflict, khata.ErrBillNumberConflict},
		{"transient", transient, nil, khata.ErrTransactionFailed},
		{"other", other, khata.ErrShopNameTaken, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err, tt.dup)
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
}

func TestBillFilter(t *testing.T) {
	shopID := id.NewShopID()
	from := types.NewDate(2024, time.January, 1)
	to := types.NewDate(2024, time.January, 31)

	f := billFilter(bill.Query{ShopID: shopID, From: from, To: to})
	if f["shop_id"] != shopID.String() {
		t.Errorf("shop_id = %v", f["shop_id"])
	}
	r, ok := f["bill_date"].(bson.M)
	if !ok || r["$gte"] != "2024-01-01" || r["$lte"] != "2024-01-31" {
		t.Errorf("bill_date = %v", f["bill_date"])
	}

	if empty := billFilter(bill.Query{}); len(empty) != 0 {
		t.Errorf("empty query filter = %v", empty)
	}
}

func TestRegexQuote(t *testing.T) {
	tests := map[string]string{
		"BILL-20240101-": "BILL-20240101-",
		"a.b*c":          `a\.b\*c`,
		"(x)":            `\(x\)`,
	}
	for in, want := range tests {
		if got := regexQuote(in); got != want {
			t.Errorf("regexQuote(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDepositModelRoundTrip(t *testing.T) {
	d := &deposit.Deposit{
		ID:          id.NewDepositID(),
		ShopID:      id.NewShopID(),
		Amount:      types.MustParseMoney("4999.99"),
		DepositDate: types.NewDate(2024, time.March, 5),
		Description: "top up",
		CreatedAt:   time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC),
	}

	m, err := toDepositModel(d)
	if err != nil {
		t.Fatal(err)
	}
	if m.Date != "2024-03-05" {
		t.Errorf("stored date = %q", m.Date)
	}

	got, err := fromDepositModel(m)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Amount.Equal(d.Amount) || got.DepositDate != d.DepositDate || got.ShopID.String() != d.ShopID.String() {
		t.Errorf("round trip = %+v", got)
	}
}

func TestBillItemModelKeepsExactValues(t *testing.T) {
	it := &bill.Item{
		ID:           id.NewBillItemID(),
		BillID:       id.NewBillID(),
		Line:         2,
		NumberOfBags: 3,
		WeightKg:     decimal.RequireFromString("12.25"),
		RatePerKg:    types.MustParseMoney("3.45"),
	}
	bill.PriceItem(it, types.Units(10))

	m, err := toBillItemModel(it)
	if err != nil {
		t.Fatal(err)
	}
	got, err := fromBillItemModel(m)
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalPrice.String() != "42.2625" {
		t.Errorf("TotalPrice = %s", got.TotalPrice)
	}
	if !got.WeightKg.Equal(it.WeightKg) || !got.GunnyCost.Equal(types.Units(30)) || got.Line != 2 {
		t.Errorf("round trip = %+v", got)
	}
}

func TestMigrationIndexesAreUnique(t *testing.T) {
	idx := migrationIndexes()
	for _, col := range []string{colShops, colBills} {
		if len(idx[col]) == 0 || idx[col][0].Options == nil {
			t.Errorf("%s has no unique index", col)
		}
	}
}
