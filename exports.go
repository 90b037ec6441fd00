package khata

import "github.com/xraph/khata/types"

// Re-export common types so callers don't have to import the types package.

// Money is re-exported from types package.
type Money = types.Money

// Date is re-exported from types package.
type Date = types.Date

// Re-export constructors
var (
	Cents          = types.Cents
	Units          = types.Units
	ParseMoney     = types.ParseMoney
	MustParseMoney = types.MustParseMoney
	ParseDate      = types.ParseDate
	MustParseDate  = types.MustParseDate
	DateOf         = types.DateOf
)
