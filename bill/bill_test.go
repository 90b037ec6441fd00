package bill_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/xraph/khata/bill"
	"github.com/xraph/khata/types"
)

func item(bags int, weight, rate string) bill.Item {
	return bill.Item{
		NumberOfBags: bags,
		WeightKg:     decimal.RequireFromString(weight),
		RatePerKg:    types.MustParseMoney(rate),
	}
}

func TestPriceItem(t *testing.T) {
	tests := []struct {
		name      string
		item      bill.Item
		gunny     string
		wantPrice string
		wantGunny string
	}{
		{"whole numbers", item(3, "100", "20"), "10", "2000.00", "30.00"},
		{"fractional weight", item(1, "12.5", "4.40"), "0", "55.00", "0.00"},
		{"exact four places", item(2, "0.01", "0.01"), "1.25", "0.0001", "2.50"},
		{"odd product", item(1, "33.33", "3.33"), "0", "110.9889", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := tt.item
			bill.PriceItem(&it, types.MustParseMoney(tt.gunny))
			if !it.TotalPrice.Equal(types.MustParseMoney(tt.wantPrice)) {
				t.Errorf("TotalPrice = %s, want %s", it.TotalPrice, tt.wantPrice)
			}
			if !it.GunnyCost.Equal(types.MustParseMoney(tt.wantGunny)) {
				t.Errorf("GunnyCost = %s, want %s", it.GunnyCost, tt.wantGunny)
			}
		})
	}
}

func TestRecompute(t *testing.T) {
	gunny := types.MustParseMoney("10")
	a := item(3, "100", "20")
	b := item(2, "50", "10")
	bill.PriceItem(&a, gunny)
	bill.PriceItem(&b, gunny)

	var bl bill.Bill
	bill.Recompute(&bl, []bill.Item{a, b})

	if bl.Subtotal.String() != "2500.00" {
		t.Errorf("Subtotal = %s", bl.Subtotal)
	}
	if bl.GunnyBagCost.String() != "50.00" {
		t.Errorf("GunnyBagCost = %s", bl.GunnyBagCost)
	}
	if bl.TotalAmount.String() != "2550.00" {
		t.Errorf("TotalAmount = %s", bl.TotalAmount)
	}

	// Idempotent.
	bill.Recompute(&bl, bl.Items)
	if bl.TotalAmount.String() != "2550.00" {
		t.Errorf("second Recompute changed total to %s", bl.TotalAmount)
	}

	// Removing items drives totals back to zero.
	bill.Recompute(&bl, nil)
	for name, m := range map[string]types.Money{
		"Subtotal": bl.Subtotal, "GunnyBagCost": bl.GunnyBagCost, "TotalAmount": bl.TotalAmount,
	} {
		if m.String() != "0.00" {
			t.Errorf("%s = %s, want 0.00", name, m)
		}
	}
}

func TestGunnyCostNotRetroactive(t *testing.T) {
	it := item(3, "100", "20")
	bill.PriceItem(&it, types.MustParseMoney("10"))
	var bl bill.Bill
	bill.Recompute(&bl, []bill.Item{it})

	// A later cost change only reaches items priced afterwards.
	later := item(1, "10", "1")
	bill.PriceItem(&later, types.MustParseMoney("99"))
	bill.Recompute(&bl, []bill.Item{it, later})

	if bl.GunnyBagCost.String() != "129.00" {
		t.Errorf("GunnyBagCost = %s, want 129.00", bl.GunnyBagCost)
	}
}

func TestNextLine(t *testing.T) {
	if got := bill.NextLine(nil); got != 1 {
		t.Errorf("empty = %d", got)
	}
	if got := bill.NextLine([]bill.Item{{Line: 1}, {Line: 4}, {Line: 2}}); got != 5 {
		t.Errorf("got %d, want 5", got)
	}
}

func TestNumbering(t *testing.T) {
	day := types.MustParseDate("2024-01-01")

	if got := bill.DayPrefix(day); got != "BILL-20240101-" {
		t.Errorf("DayPrefix = %s", got)
	}

	first, err := bill.NextNumber(day, "")
	if err != nil {
		t.Fatal(err)
	}
	if first != "BILL-20240101-0001" {
		t.Errorf("first = %s", first)
	}

	second, err := bill.NextNumber(day, first)
	if err != nil {
		t.Fatal(err)
	}
	if second != "BILL-20240101-0002" {
		t.Errorf("second = %s", second)
	}

	if _, err := bill.NextNumber(day, "BILL-20240101-9999"); !errors.Is(err, bill.ErrSequenceExhausted) {
		t.Errorf("expected ErrSequenceExhausted, got %v", err)
	}
	if _, err := bill.NextNumber(day, "BILL-20231231-0004"); err == nil {
		t.Error("expected error for number from another day")
	}
}

func TestParseNumber(t *testing.T) {
	day, seq, err := bill.ParseNumber("BILL-20240229-0042")
	if err != nil {
		t.Fatal(err)
	}
	if day.String() != "2024-02-29" || seq != 42 {
		t.Errorf("got %s #%d", day, seq)
	}

	for _, bad := range []string{
		"",
		"INV-20240101-0001",
		"BILL-2024011-0001",
		"BILL-20240101-001",
		"BILL-20240101-abcd",
		"BILL-20241301-0001",
		"BILL-20240101-0000",
	} {
		t.Run(bad, func(t *testing.T) {
			if _, _, err := bill.ParseNumber(bad); err == nil {
				t.Errorf("expected error for %q", bad)
			}
		})
	}
}
