// Package deposit records credit issued to a shop.
package deposit

import (
	"time"

	"github.com/xraph/khata/id"
	"github.com/xraph/khata/types"
)

// InitialDescription labels the deposit written when a shop is opened.
const InitialDescription = "Initial deposit"

// Deposit is credit extended to a shop. Deposits are never edited.
type Deposit struct {
	ID          id.DepositID `json:"id"`
	ShopID      id.ShopID    `json:"shop_id"`
	Amount      types.Money  `json:"amount"`
	DepositDate types.Date   `json:"deposit_date"`
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
