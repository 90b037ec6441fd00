// Package settings holds the ledger-wide configuration singleton.
package settings

import (
	"time"

	"github.com/xraph/khata/types"
)

// Settings is the single configuration record. It is created with a zero
// gunny bag cost on first access and never deleted.
type Settings struct {
	GunnyBagCost types.Money `json:"gunny_bag_cost"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Default returns the settings used when none are stored yet.
func Default() *Settings {
	return &Settings{GunnyBagCost: types.Zero()}
}
