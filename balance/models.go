// Package balance computes a shop's credit position and decides whether a
// new bill may be admitted. Everything here is a pure function of a Totals
// snapshot read from the store; nothing is cached.
package balance

import (
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/types"
)

// Totals is a snapshot of a shop's all-time aggregates.
type Totals struct {
	Deposits  types.Money
	Bills     types.Money
	Payments  types.Money
	BillCount int
}

// Summary is a shop's full credit position.
type Summary struct {
	ShopID        id.ShopID   `json:"shop_id"`
	TotalDeposits types.Money `json:"total_deposits"`
	TotalBills    types.Money `json:"total_bills"`
	TotalPayments types.Money `json:"total_payments"`
	Pending       types.Money `json:"pending_amount"`
	CreditLimit   types.Money `json:"credit_limit"`
	Headroom      types.Money `json:"headroom"`
	BillCount     int         `json:"bill_count"`
	BillLimit     int         `json:"bill_limit"`
	CanCreateBill bool        `json:"can_create_bill"`
}

// Reason explains a refused Decision.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonCreditLimit      Reason = "credit_limit_exceeded"
	ReasonBillLimitReached Reason = "bill_limit_reached"
)

// Decision is the outcome of the admission gate for a new bill.
type Decision struct {
	Allowed     bool        `json:"allowed"`
	Reason      Reason      `json:"reason,omitempty"`
	Pending     types.Money `json:"pending_amount"`
	CreditLimit types.Money `json:"credit_limit"`
	BillCount   int         `json:"bill_count"`
	BillLimit   int         `json:"bill_limit"`
}
