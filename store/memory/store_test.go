package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/khata"
	"github.com/xraph/khata/bill"
	"github.com/xraph/khata/deposit"
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/settings"
	"github.com/xraph/khata/shop"
	"github.com/xraph/khata/store"
	"github.com/xraph/khata/store/memory"
	"github.com/xraph/khata/types"
)

var base = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func newShop(t *testing.T, s *memory.Store, name string, createdAt time.Time) *shop.Shop {
	t.Helper()
	sh := &shop.Shop{
		Entity:    types.NewEntity(createdAt),
		ID:        id.NewShopID(),
		Name:      name,
		BillLimit: shop.DefaultBillLimit,
		IsActive:  true,
	}
	if err := s.CreateShop(context.Background(), sh); err != nil {
		t.Fatalf("CreateShop(%s): %v", name, err)
	}
	return sh
}

func newBill(t *testing.T, s store.Store, shopID id.ShopID, number string, day types.Date, total types.Money) *bill.Bill {
	t.Helper()
	b := &bill.Bill{
		Entity:       types.NewEntity(base),
		ID:           id.NewBillID(),
		ShopID:       shopID,
		Number:       number,
		BillDate:     day,
		Subtotal:     total,
		GunnyBagCost: types.Zero(),
		TotalAmount:  total,
	}
	if err := s.CreateBill(context.Background(), b); err != nil {
		t.Fatalf("CreateBill(%s): %v", number, err)
	}
	return b
}

func TestUniqueness(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	sh := newShop(t, s, "Sharma Traders", base)

	dup := &shop.Shop{ID: id.NewShopID(), Name: "Sharma Traders"}
	if err := s.CreateShop(ctx, dup); !errors.Is(err, khata.ErrShopNameTaken) {
		t.Errorf("duplicate shop name: got %v", err)
	}

	day := types.NewDate(2024, time.January, 1)
	newBill(t, s, sh.ID, "BILL-20240101-0001", day, types.Units(10))
	again := &bill.Bill{ID: id.NewBillID(), ShopID: sh.ID, Number: "BILL-20240101-0001", BillDate: day}
	if err := s.CreateBill(ctx, again); !errors.Is(err, khata.ErrBillNumberConflict) {
		t.Errorf("duplicate bill number: got %v", err)
	}
}

func TestRunInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	sh := newShop(t, s, "Gupta Stores", base)

	boom := errors.New("boom")
	err := s.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		dep := &deposit.Deposit{ID: id.NewDepositID(), ShopID: sh.ID, Amount: types.Units(500)}
		if err := tx.CreateDeposit(ctx, dep); err != nil {
			return err
		}
		// The write is visible inside the transaction only.
		total, err := tx.DepositTotal(ctx, sh.ID)
		if err != nil {
			return err
		}
		if !total.Equal(types.Units(500)) {
			t.Errorf("in-tx total = %s, want 500.00", total)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("RunInTx error = %v", err)
	}

	total, err := s.DepositTotal(ctx, sh.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !total.IsZero() {
		t.Errorf("total after rollback = %s, want 0.00", total)
	}
}

func TestRunInTxCommits(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	sh := newShop(t, s, "Verma & Sons", base)

	err := s.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		// Nested calls run inline on the same view.
		return tx.RunInTx(ctx, func(ctx context.Context, inner store.Store) error {
			return inner.CreateDeposit(ctx, &deposit.Deposit{ID: id.NewDepositID(), ShopID: sh.ID, Amount: types.Cents(125)})
		})
	})
	if err != nil {
		t.Fatal(err)
	}

	total, err := s.DepositTotal(ctx, sh.ID)
	if err != nil {
		t.Fatal(err)
	}
	if total.String() != "1.25" {
		t.Errorf("total = %s, want 1.25", total)
	}
}

func TestDeleteShopCascades(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	keep := newShop(t, s, "Keep", base)
	drop := newShop(t, s, "Drop", base.Add(time.Minute))

	day := types.NewDate(2024, time.January, 1)
	b := newBill(t, s, drop.ID, "BILL-20240101-0001", day, types.Units(10))
	it := &bill.Item{ID: id.NewBillItemID(), BillID: b.ID, Line: 1, NumberOfBags: 1}
	if err := s.CreateBillItem(ctx, it); err != nil {
		t.Fatal(err)
	}
	newBill(t, s, keep.ID, "BILL-20240101-0002", day, types.Units(20))

	if err := s.DeleteShop(ctx, drop.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := s.GetBill(ctx, b.ID); !errors.Is(err, khata.ErrBillNotFound) {
		t.Errorf("bill survived shop deletion: %v", err)
	}
	if _, err := s.GetBillItem(ctx, it.ID); !errors.Is(err, khata.ErrBillItemNotFound) {
		t.Errorf("item survived shop deletion: %v", err)
	}
	totals, err := s.SummarizeBills(ctx, bill.Query{})
	if err != nil {
		t.Fatal(err)
	}
	if totals.Count != 1 || !totals.Amount.Equal(types.Units(20)) {
		t.Errorf("remaining totals = %+v", totals)
	}
}

func TestOrdering(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	older := newShop(t, s, "Older", base)
	newer := newShop(t, s, "Newer", base.Add(time.Hour))

	shops, err := s.ListShops(ctx, shop.ListOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(shops) != 2 || shops[0].ID.String() != newer.ID.String() || shops[1].ID.String() != older.ID.String() {
		t.Errorf("shops not newest first")
	}

	d1 := types.NewDate(2024, time.January, 1)
	d2 := types.NewDate(2024, time.January, 2)
	newBill(t, s, older.ID, "BILL-20240101-0001", d1, types.Units(1))
	newBill(t, s, older.ID, "BILL-20240101-0002", d2, types.Units(2))

	bills, err := s.ListBills(ctx, bill.ListOpts{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(bills) != 1 || bills[0].BillDate != d2 {
		t.Errorf("ListBills did not return the newest bill date first")
	}

	latest, err := s.LatestBillNumber(ctx, "BILL-20240101-")
	if err != nil {
		t.Fatal(err)
	}
	if latest != "BILL-20240101-0002" {
		t.Errorf("LatestBillNumber = %q", latest)
	}
}

func TestItemsLoadInLineOrder(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	sh := newShop(t, s, "Lines", base)
	b := newBill(t, s, sh.ID, "BILL-20240101-0001", types.NewDate(2024, time.January, 1), types.Zero())

	for _, line := range []int{3, 1, 2} {
		it := &bill.Item{ID: id.NewBillItemID(), BillID: b.ID, Line: line, NumberOfBags: line}
		if err := s.CreateBillItem(ctx, it); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.GetBill(ctx, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	for i, it := range got.Items {
		if it.Line != i+1 {
			t.Errorf("item %d has line %d", i, it.Line)
		}
	}
}

func TestSettingsAndClose(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	if _, err := s.GetSettings(ctx); !errors.Is(err, khata.ErrNotFound) {
		t.Errorf("GetSettings on empty store: %v", err)
	}
	if err := s.SaveSettings(ctx, &settings.Settings{GunnyBagCost: types.Units(10)}); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.GunnyBagCost.String() != "10.00" {
		t.Errorf("GunnyBagCost = %s", got.GunnyBagCost)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Ping(ctx); !errors.Is(err, khata.ErrStoreClosed) {
		t.Errorf("Ping after Close: %v", err)
	}
}
