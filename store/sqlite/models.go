package sqlite

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/xraph/grove"

	"github.com/xraph/khata/bill"
	"github.com/xraph/khata/deposit"
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/payment"
	"github.com/xraph/khata/settings"
	"github.com/xraph/khata/shop"
	"github.com/xraph/khata/types"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ==================== Settings models ====================

type settingsModel struct {
	grove.BaseModel `grove:"table:khata_settings"`

	ID           int         `grove:"id,pk"`
	GunnyBagCost types.Money `grove:"gunny_bag_cost"`
	UpdatedAt    string      `grove:"updated_at"`
}

func toSettingsModel(set *settings.Settings) *settingsModel {
	return &settingsModel{
		ID:           1,
		GunnyBagCost: set.GunnyBagCost,
		UpdatedAt:    formatTime(set.UpdatedAt),
	}
}

func fromSettingsModel(m *settingsModel) (*settings.Settings, error) {
	updated, err := parseTime(m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &settings.Settings{GunnyBagCost: m.GunnyBagCost, UpdatedAt: updated}, nil
}

// ==================== Shop models ====================

type shopModel struct {
	grove.BaseModel `grove:"table:khata_shops"`

	ID             string      `grove:"id,pk"`
	Name           string      `grove:"name"`
	Address        string      `grove:"address"`
	ContactNumber  string      `grove:"contact_number"`
	InitialDeposit types.Money `grove:"initial_deposit"`
	BillLimit      int         `grove:"bill_limit"`
	IsActive       bool        `grove:"is_active"`
	CreatedAt      string      `grove:"created_at"`
	UpdatedAt      string      `grove:"updated_at"`
}

func toShopModel(sh *shop.Shop) *shopModel {
	return &shopModel{
		ID:             sh.ID.String(),
		Name:           sh.Name,
		Address:        sh.Address,
		ContactNumber:  sh.ContactNumber,
		InitialDeposit: sh.InitialDeposit,
		BillLimit:      sh.BillLimit,
		IsActive:       sh.IsActive,
		CreatedAt:      formatTime(sh.CreatedAt),
		UpdatedAt:      formatTime(sh.UpdatedAt),
	}
}

func fromShopModel(m *shopModel) (*shop.Shop, error) {
	shopID, err := id.ParseShopID(m.ID)
	if err != nil {
		return nil, err
	}
	entity, err := parseEntity(m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &shop.Shop{
		Entity:         entity,
		ID:             shopID,
		Name:           m.Name,
		Address:        m.Address,
		ContactNumber:  m.ContactNumber,
		InitialDeposit: m.InitialDeposit,
		BillLimit:      m.BillLimit,
		IsActive:       m.IsActive,
	}, nil
}

// ==================== Deposit & Payment models ====================

type depositModel struct {
	grove.BaseModel `grove:"table:khata_deposits"`

	ID          string      `grove:"id,pk"`
	ShopID      string      `grove:"shop_id"`
	Amount      types.Money `grove:"amount"`
	DepositDate types.Date  `grove:"deposit_date"`
	Description string      `grove:"description"`
	CreatedAt   string      `grove:"created_at"`
}

func toDepositModel(d *deposit.Deposit) *depositModel {
	return &depositModel{
		ID:          d.ID.String(),
		ShopID:      d.ShopID.String(),
		Amount:      d.Amount,
		DepositDate: d.DepositDate,
		Description: d.Description,
		CreatedAt:   formatTime(d.CreatedAt),
	}
}

func fromDepositModel(m *depositModel) (*deposit.Deposit, error) {
	depID, err := id.ParseDepositID(m.ID)
	if err != nil {
		return nil, err
	}
	shopID, err := id.ParseShopID(m.ShopID)
	if err != nil {
		return nil, err
	}
	created, err := parseTime(m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &deposit.Deposit{
		ID:          depID,
		ShopID:      shopID,
		Amount:      m.Amount,
		DepositDate: m.DepositDate,
		Description: m.Description,
		CreatedAt:   created,
	}, nil
}

type paymentModel struct {
	grove.BaseModel `grove:"table:khata_payments"`

	ID          string      `grove:"id,pk"`
	ShopID      string      `grove:"shop_id"`
	Amount      types.Money `grove:"amount"`
	PaymentDate types.Date  `grove:"payment_date"`
	Description string      `grove:"description"`
	CreatedAt   string      `grove:"created_at"`
}

func toPaymentModel(p *payment.Payment) *paymentModel {
	return &paymentModel{
		ID:          p.ID.String(),
		ShopID:      p.ShopID.String(),
		Amount:      p.Amount,
		PaymentDate: p.PaymentDate,
		Description: p.Description,
		CreatedAt:   formatTime(p.CreatedAt),
	}
}

func fromPaymentModel(m *paymentModel) (*payment.Payment, error) {
	payID, err := id.ParsePaymentID(m.ID)
	if err != nil {
		return nil, err
	}
	shopID, err := id.ParseShopID(m.ShopID)
	if err != nil {
		return nil, err
	}
	created, err := parseTime(m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &payment.Payment{
		ID:          payID,
		ShopID:      shopID,
		Amount:      m.Amount,
		PaymentDate: m.PaymentDate,
		Description: m.Description,
		CreatedAt:   created,
	}, nil
}

// ==================== Bill models ====================

type billModel struct {
	grove.BaseModel `grove:"table:khata_bills"`

	ID           string      `grove:"id,pk"`
	ShopID       string      `grove:"shop_id"`
	Number       string      `grove:"number"`
	BillDate     types.Date  `grove:"bill_date"`
	Subtotal     types.Money `grove:"subtotal"`
	GunnyBagCost types.Money `grove:"gunny_bag_cost"`
	TotalAmount  types.Money `grove:"total_amount"`
	Notes        string      `grove:"notes"`
	CreatedAt    string      `grove:"created_at"`
	UpdatedAt    string      `grove:"updated_at"`
}

func toBillModel(b *bill.Bill) *billModel {
	return &billModel{
		ID:           b.ID.String(),
		ShopID:       b.ShopID.String(),
		Number:       b.Number,
		BillDate:     b.BillDate,
		Subtotal:     b.Subtotal,
		GunnyBagCost: b.GunnyBagCost,
		TotalAmount:  b.TotalAmount,
		Notes:        b.Notes,
		CreatedAt:    formatTime(b.CreatedAt),
		UpdatedAt:    formatTime(b.UpdatedAt),
	}
}

func fromBillModel(m *billModel) (*bill.Bill, error) {
	billID, err := id.ParseBillID(m.ID)
	if err != nil {
		return nil, err
	}
	shopID, err := id.ParseShopID(m.ShopID)
	if err != nil {
		return nil, err
	}
	entity, err := parseEntity(m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &bill.Bill{
		Entity:       entity,
		ID:           billID,
		ShopID:       shopID,
		Number:       m.Number,
		BillDate:     m.BillDate,
		Subtotal:     m.Subtotal,
		GunnyBagCost: m.GunnyBagCost,
		TotalAmount:  m.TotalAmount,
		Notes:        m.Notes,
	}, nil
}

type billItemModel struct {
	grove.BaseModel `grove:"table:khata_bill_items"`

	ID           string          `grove:"id,pk"`
	BillID       string          `grove:"bill_id"`
	Line         int             `grove:"line"`
	NumberOfBags int             `grove:"number_of_bags"`
	WeightKg     decimal.Decimal `grove:"weight_kg"`
	RatePerKg    types.Money     `grove:"rate_per_kg"`
	TotalPrice   types.Money     `grove:"total_price"`
	GunnyCost    types.Money     `grove:"gunny_cost"`
	CreatedAt    string          `grove:"created_at"`
}

func toBillItemModel(it *bill.Item) *billItemModel {
	return &billItemModel{
		ID:           it.ID.String(),
		BillID:       it.BillID.String(),
		Line:         it.Line,
		NumberOfBags: it.NumberOfBags,
		WeightKg:     it.WeightKg,
		RatePerKg:    it.RatePerKg,
		TotalPrice:   it.TotalPrice,
		GunnyCost:    it.GunnyCost,
		CreatedAt:    formatTime(it.CreatedAt),
	}
}

func fromBillItemModel(m *billItemModel) (*bill.Item, error) {
	itemID, err := id.ParseBillItemID(m.ID)
	if err != nil {
		return nil, err
	}
	billID, err := id.ParseBillID(m.BillID)
	if err != nil {
		return nil, err
	}
	created, err := parseTime(m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &bill.Item{
		ID:           itemID,
		BillID:       billID,
		Line:         m.Line,
		NumberOfBags: m.NumberOfBags,
		WeightKg:     m.WeightKg,
		RatePerKg:    m.RatePerKg,
		TotalPrice:   m.TotalPrice,
		GunnyCost:    m.GunnyCost,
		CreatedAt:    created,
	}, nil
}

// ==================== Timestamps ====================

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

func parseEntity(created, updated string) (types.Entity, error) {
	var (
		e   types.Entity
		err error
	)
	if e.CreatedAt, err = parseTime(created); err != nil {
		return e, err
	}
	if e.UpdatedAt, err = parseTime(updated); err != nil {
		return e, err
	}
	return e, nil
}
