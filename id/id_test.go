package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/khata/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"ShopID", id.NewShopID, "shop_"},
		{"DepositID", id.NewDepositID, "dep_"},
		{"PaymentID", id.NewPaymentID, "pay_"},
		{"BillID", id.NewBillID, "bill_"},
		{"BillItemID", id.NewBillItemID, "bitem_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"ShopID", id.NewShopID, id.ParseShopID},
		{"DepositID", id.NewDepositID, id.ParseDepositID},
		{"PaymentID", id.NewPaymentID, id.ParsePaymentID},
		{"BillID", id.NewBillID, id.ParseBillID},
		{"BillItemID", id.NewBillItemID, id.ParseBillItemID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.newFn()
			parsed, err := tt.parseFn(original.String())
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if parsed.String() != original.String() {
				t.Errorf("round-trip mismatch: %q != %q", parsed.String(), original.String())
			}
		})
	}
}

func TestCrossTypeRejection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		parseFn func(string) (id.ID, error)
	}{
		{"ParseShopID rejects bill_", id.NewBillID().String(), id.ParseShopID},
		{"ParseBillID rejects bitem_", id.NewBillItemID().String(), id.ParseBillID},
		{"ParseBillItemID rejects dep_", id.NewDepositID().String(), id.ParseBillItemID},
		{"ParseDepositID rejects pay_", id.NewPaymentID().String(), id.ParseDepositID},
		{"ParsePaymentID rejects shop_", id.NewShopID().String(), id.ParsePaymentID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.parseFn(tt.input); err == nil {
				t.Errorf("expected error for cross-type parse of %q, got nil", tt.input)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := id.Parse(""); err == nil {
		t.Error("expected error for empty string")
	}
}

func TestNilID(t *testing.T) {
	var i id.ID
	if !i.IsNil() {
		t.Error("zero-value ID should be nil")
	}
	if i.String() != "" {
		t.Errorf("expected empty string, got %q", i.String())
	}
	v, err := i.Value()
	if err != nil || v != nil {
		t.Errorf("Nil Value = %v, %v; want nil", v, err)
	}
}

func TestScan(t *testing.T) {
	original := id.NewShopID()

	var fromString id.ID
	if err := fromString.Scan(original.String()); err != nil {
		t.Fatal(err)
	}
	if fromString.String() != original.String() {
		t.Errorf("string scan mismatch")
	}

	var fromNil id.ID
	if err := fromNil.Scan(nil); err != nil || !fromNil.IsNil() {
		t.Errorf("nil scan: %v", err)
	}

	var bad id.ID
	if err := bad.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
}

func TestMarshalUnmarshalText(t *testing.T) {
	original := id.NewBillID()
	data, err := original.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}

	var restored id.ID
	if err := restored.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if restored.String() != original.String() {
		t.Errorf("mismatch: %q != %q", restored.String(), original.String())
	}

	var restored2 id.ID
	if err := restored2.UnmarshalText(nil); err != nil {
		t.Fatalf("UnmarshalText(nil) failed: %v", err)
	}
	if !restored2.IsNil() {
		t.Error("expected nil after round-trip of nil ID")
	}
}
