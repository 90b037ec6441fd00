// Package payment records credit repaid by a shop.
package payment

import (
	"time"

	"github.com/xraph/khata/id"
	"github.com/xraph/khata/types"
)

// Payment is money a shop paid back against its bills.
type Payment struct {
	ID          id.PaymentID `json:"id"`
	ShopID      id.ShopID    `json:"shop_id"`
	Amount      types.Money  `json:"amount"`
	PaymentDate types.Date   `json:"payment_date"`
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
