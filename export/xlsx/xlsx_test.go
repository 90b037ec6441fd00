package xlsx_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/xraph/khata/bill"
	"github.com/xraph/khata/export/xlsx"
	"github.com/xraph/khata/report"
	"github.com/xraph/khata/shop"
	"github.com/xraph/khata/types"
)

func sampleBill() *report.BillDocument {
	b := &bill.Bill{
		Number:   "BILL-20240101-0001",
		BillDate: types.NewDate(2024, 1, 1),
	}
	items := []bill.Item{{
		Line:         1,
		NumberOfBags: 3,
		WeightKg:     decimal.NewFromInt(100),
		RatePerKg:    types.Units(20),
	}}
	bill.PriceItem(&items[0], types.Units(10))
	bill.Recompute(b, items)

	return &report.BillDocument{Bill: b, Shop: &shop.Shop{Name: "Sharma Traders"}}
}

func TestRenderBill(t *testing.T) {
	var buf bytes.Buffer
	if err := xlsx.New().RenderBill(context.Background(), sampleBill(), &buf); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	checks := map[string]string{
		"B1": "BILL-20240101-0001",
		"B2": "2024-01-01",
		"B3": "Sharma Traders",
		"A5": "#",
		"E6": "2000",
		"F6": "30",
	}
	for cell, want := range checks {
		got, err := f.GetCellValue("Bill", cell)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}

	rows, err := f.GetRows("Bill")
	if err != nil {
		t.Fatal(err)
	}
	last := rows[len(rows)-1]
	if last[0] != "Total Amount" {
		t.Errorf("last row = %v", last)
	}
}

func TestRenderStatistics(t *testing.T) {
	sharma := &shop.Shop{Name: "Sharma Traders"}
	idle := &shop.Shop{Name: "Idle"}
	stats := &report.Statistics{
		From:           types.NewDate(2024, 1, 1),
		To:             types.NewDate(2024, 1, 2),
		BillCount:      2,
		TotalAmount:    types.Units(300),
		TotalGunnyCost: types.Zero(),
		Shops: []report.ShopStat{
			{Shop: sharma, BillCount: 2, TotalAmount: types.Units(300)},
			{Shop: idle, TotalAmount: types.Zero()},
		},
		Daily: []report.DailyStat{
			{Date: types.NewDate(2024, 1, 1), BillCount: 1, TotalAmount: types.Units(100)},
			{Date: types.NewDate(2024, 1, 2), BillCount: 1, TotalAmount: types.Units(200)},
		},
	}

	var buf bytes.Buffer
	if err := xlsx.New().RenderStatistics(context.Background(), stats, &buf); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 3 || got[0] != "Summary" || got[1] != "Shops" || got[2] != "Daily" {
		t.Errorf("sheets = %v", got)
	}

	shops, err := f.GetRows("Shops")
	if err != nil {
		t.Fatal(err)
	}
	if len(shops) != 2 || shops[1][0] != "Sharma Traders" {
		t.Errorf("shop rows = %v, want header plus shops with bills", shops)
	}

	daily, err := f.GetRows("Daily")
	if err != nil {
		t.Fatal(err)
	}
	if len(daily) != 3 || daily[2][0] != "2024-01-02" || daily[2][2] != "200" {
		t.Errorf("daily rows = %v", daily)
	}
}

func TestFormatterIdentity(t *testing.T) {
	f := xlsx.New()
	if f.Format() != "xlsx" || f.ContentType() != xlsx.ContentType || f.Name() == "" {
		t.Errorf("identity = %s %s %s", f.Name(), f.Format(), f.ContentType())
	}
}
