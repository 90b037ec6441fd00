// Package shop defines the customer shops that buy on credit.
package shop

import (
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/types"
)

// DefaultBillLimit is the bill_limit given to shops that do not set one.
const DefaultBillLimit = 5

// MaxContactLength bounds ContactNumber.
const MaxContactLength = 15

// Shop is a customer account. Deposits, payments and bills hang off it and
// are removed with it.
type Shop struct {
	types.Entity
	ID             id.ShopID   `json:"id"`
	Name           string      `json:"name"`
	Address        string      `json:"address,omitempty"`
	ContactNumber  string      `json:"contact_number,omitempty"`
	InitialDeposit types.Money `json:"initial_deposit"`
	BillLimit      int         `json:"bill_limit"`
	IsActive       bool        `json:"is_active"`
}
