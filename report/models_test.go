package report_test

import (
	"testing"

	"github.com/xraph/khata/report"
	"github.com/xraph/khata/shop"
)

func TestShopsWithBills(t *testing.T) {
	stats := report.Statistics{Shops: []report.ShopStat{
		{Shop: &shop.Shop{Name: "A"}, BillCount: 2},
		{Shop: &shop.Shop{Name: "B"}},
		{Shop: &shop.Shop{Name: "C"}, BillCount: 1},
	}}

	got := stats.ShopsWithBills()
	if len(got) != 2 || got[0].Shop.Name != "A" || got[1].Shop.Name != "C" {
		t.Errorf("unexpected shops: %+v", got)
	}
}
