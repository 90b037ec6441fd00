// Package id defines TypeID-based identity types for all Khata entities.
//
// Every record carries a single ID struct whose prefix names its kind
// ("shop_…", "bill_…"). IDs are K-sortable (UUIDv7-based), globally unique
// and URL-safe in the format "prefix_suffix".
package id

import (
	"database/sql/driver"
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the entity type encoded in a TypeID.
type Prefix string

// Prefix constants for all Khata entity types.
const (
	PrefixShop     Prefix = "shop"  // Customer shop
	PrefixDeposit  Prefix = "dep"   // Credit issued to a shop
	PrefixPayment  Prefix = "pay"   // Credit repaid by a shop
	PrefixBill     Prefix = "bill"  // Bill header
	PrefixBillItem Prefix = "bitem" // Bill line item
)

// ID is the primary identifier type for all Khata entities.
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// New generates a new globally unique ID with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}

	return ID{inner: tid, valid: true}
}

// Parse parses a TypeID string (e.g., "shop_01h2xcejqtf2nbrexx3vqjhp41").
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}

	return ID{inner: tid, valid: true}, nil
}

// ParseWithPrefix parses a TypeID string and checks its prefix.
func ParseWithPrefix(s string, expected Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}

	if parsed.Prefix() != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}

	return parsed, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}

	return parsed
}

// ──────────────────────────────────────────────────
// Type aliases
// ──────────────────────────────────────────────────

// ShopID identifies a shop (prefix: "shop").
type ShopID = ID

// DepositID identifies a deposit (prefix: "dep").
type DepositID = ID

// PaymentID identifies a payment (prefix: "pay").
type PaymentID = ID

// BillID identifies a bill (prefix: "bill").
type BillID = ID

// BillItemID identifies a bill item (prefix: "bitem").
type BillItemID = ID

// ──────────────────────────────────────────────────
// Convenience constructors and parsers
// ──────────────────────────────────────────────────

// NewShopID generates a new shop ID.
func NewShopID() ID { return New(PrefixShop) }

// NewDepositID generates a new deposit ID.
func NewDepositID() ID { return New(PrefixDeposit) }

// NewPaymentID generates a new payment ID.
func NewPaymentID() ID { return New(PrefixPayment) }

// NewBillID generates a new bill ID.
func NewBillID() ID { return New(PrefixBill) }

// NewBillItemID generates a new bill item ID.
func NewBillItemID() ID { return New(PrefixBillItem) }

// ParseShopID parses a string and validates the "shop" prefix.
func ParseShopID(s string) (ID, error) { return ParseWithPrefix(s, PrefixShop) }

// ParseDepositID parses a string and validates the "dep" prefix.
func ParseDepositID(s string) (ID, error) { return ParseWithPrefix(s, PrefixDeposit) }

// ParsePaymentID parses a string and validates the "pay" prefix.
func ParsePaymentID(s string) (ID, error) { return ParseWithPrefix(s, PrefixPayment) }

// ParseBillID parses a string and validates the "bill" prefix.
func ParseBillID(s string) (ID, error) { return ParseWithPrefix(s, PrefixBill) }

// ParseBillItemID parses a string and validates the "bitem" prefix.
func ParseBillItemID(s string) (ID, error) { return ParseWithPrefix(s, PrefixBillItem) }

// ──────────────────────────────────────────────────
// ID methods
// ──────────────────────────────────────────────────

// String returns the full TypeID string, or "" for the Nil ID.
func (i ID) String() string {
	if !i.valid {
		return ""
	}

	return i.inner.String()
}

// Prefix returns the prefix component of this ID.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}

	return Prefix(i.inner.Prefix())
}

// IsNil reports whether this ID is the zero value.
func (i ID) IsNil() bool {
	return !i.valid
}

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}

	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil

		return nil
	}

	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}

	*i = parsed

	return nil
}

// Value implements driver.Valuer. The Nil ID is stored as NULL.
func (i ID) Value() (driver.Value, error) {
	if !i.valid {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}

	return i.inner.String(), nil
}

// Scan implements sql.Scanner.
func (i *ID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*i = Nil
		return nil
	case string:
		return i.UnmarshalText([]byte(v))
	case []byte:
		return i.UnmarshalText(v)
	default:
		return fmt.Errorf("id: cannot scan %T into ID", src)
	}
}
