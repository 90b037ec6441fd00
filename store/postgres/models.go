package postgres

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xraph/khata/bill"
	"github.com/xraph/khata/deposit"
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/payment"
	"github.com/xraph/khata/settings"
	"github.com/xraph/khata/shop"
	"github.com/xraph/khata/types"
)

// settingsRowID is the primary key of the single settings row.
const settingsRowID = 1

// ==================== Settings models ====================

type settingsModel struct {
	ID           int         `gorm:"column:id;primaryKey;autoIncrement:false"`
	GunnyBagCost types.Money `gorm:"column:gunny_bag_cost"`
	UpdatedAt    time.Time   `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (settingsModel) TableName() string { return "khata_settings" }

func toSettingsModel(s *settings.Settings) *settingsModel {
	return &settingsModel{
		ID:           settingsRowID,
		GunnyBagCost: s.GunnyBagCost,
		UpdatedAt:    s.UpdatedAt,
	}
}

func fromSettingsModel(m *settingsModel) *settings.Settings {
	return &settings.Settings{
		GunnyBagCost: m.GunnyBagCost,
		UpdatedAt:    m.UpdatedAt,
	}
}

// ==================== Shop models ====================

type shopModel struct {
	ID             string      `gorm:"column:id;primaryKey"`
	Name           string      `gorm:"column:name"`
	Address        string      `gorm:"column:address"`
	ContactNumber  string      `gorm:"column:contact_number"`
	InitialDeposit types.Money `gorm:"column:initial_deposit"`
	BillLimit      int         `gorm:"column:bill_limit"`
	IsActive       bool        `gorm:"column:is_active"`
	CreatedAt      time.Time   `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt      time.Time   `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (shopModel) TableName() string { return "khata_shops" }

func toShopModel(s *shop.Shop) *shopModel {
	return &shopModel{
		ID:             s.ID.String(),
		Name:           s.Name,
		Address:        s.Address,
		ContactNumber:  s.ContactNumber,
		InitialDeposit: s.InitialDeposit,
		BillLimit:      s.BillLimit,
		IsActive:       s.IsActive,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func fromShopModel(m *shopModel) (*shop.Shop, error) {
	shopID, err := id.ParseShopID(m.ID)
	if err != nil {
		return nil, err
	}

	return &shop.Shop{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:             shopID,
		Name:           m.Name,
		Address:        m.Address,
		ContactNumber:  m.ContactNumber,
		InitialDeposit: m.InitialDeposit,
		BillLimit:      m.BillLimit,
		IsActive:       m.IsActive,
	}, nil
}

// ==================== Deposit models ====================

type depositModel struct {
	ID          string      `gorm:"column:id;primaryKey"`
	ShopID      string      `gorm:"column:shop_id"`
	Amount      types.Money `gorm:"column:amount"`
	DepositDate types.Date  `gorm:"column:deposit_date"`
	Description string      `gorm:"column:description"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime:false"`
}

func (depositModel) TableName() string { return "khata_deposits" }

func toDepositModel(d *deposit.Deposit) *depositModel {
	return &depositModel{
		ID:          d.ID.String(),
		ShopID:      d.ShopID.String(),
		Amount:      d.Amount,
		DepositDate: d.DepositDate,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
	}
}

func fromDepositModel(m *depositModel) (*deposit.Deposit, error) {
	depositID, err := id.ParseDepositID(m.ID)
	if err != nil {
		return nil, err
	}
	shopID, err := id.ParseShopID(m.ShopID)
	if err != nil {
		return nil, err
	}

	return &deposit.Deposit{
		ID:          depositID,
		ShopID:      shopID,
		Amount:      m.Amount,
		DepositDate: m.DepositDate,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}, nil
}

// ==================== Payment models ====================

type paymentModel struct {
	ID          string      `gorm:"column:id;primaryKey"`
	ShopID      string      `gorm:"column:shop_id"`
	Amount      types.Money `gorm:"column:amount"`
	PaymentDate types.Date  `gorm:"column:payment_date"`
	Description string      `gorm:"column:description"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime:false"`
}

func (paymentModel) TableName() string { return "khata_payments" }

func toPaymentModel(p *payment.Payment) *paymentModel {
	return &paymentModel{
		ID:          p.ID.String(),
		ShopID:      p.ShopID.String(),
		Amount:      p.Amount,
		PaymentDate: p.PaymentDate,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

func fromPaymentModel(m *paymentModel) (*payment.Payment, error) {
	paymentID, err := id.ParsePaymentID(m.ID)
	if err != nil {
		return nil, err
	}
	shopID, err := id.ParseShopID(m.ShopID)
	if err != nil {
		return nil, err
	}

	return &payment.Payment{
		ID:          paymentID,
		ShopID:      shopID,
		Amount:      m.Amount,
		PaymentDate: m.PaymentDate,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}, nil
}

// ==================== Bill models ====================

type billModel struct {
	ID           string      `gorm:"column:id;primaryKey"`
	ShopID       string      `gorm:"column:shop_id"`
	Number       string      `gorm:"column:number"`
	BillDate     types.Date  `gorm:"column:bill_date"`
	Subtotal     types.Money `gorm:"column:subtotal"`
	GunnyBagCost types.Money `gorm:"column:gunny_bag_cost"`
	TotalAmount  types.Money `gorm:"column:total_amount"`
	Notes        string      `gorm:"column:notes"`
	CreatedAt    time.Time   `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt    time.Time   `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (billModel) TableName() string { return "khata_bills" }

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
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
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

	return &bill.Bill{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
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

// ==================== Bill item models ====================

type billItemModel struct {
	ID           string          `gorm:"column:id;primaryKey"`
	BillID       string          `gorm:"column:bill_id"`
	Line         int             `gorm:"column:line"`
	NumberOfBags int             `gorm:"column:number_of_bags"`
	WeightKg     decimal.Decimal `gorm:"column:weight_kg"`
	RatePerKg    types.Money     `gorm:"column:rate_per_kg"`
	TotalPrice   types.Money     `gorm:"column:total_price"`
	GunnyCost    types.Money     `gorm:"column:gunny_cost"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime:false"`
}

func (billItemModel) TableName() string { return "khata_bill_items" }

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
		CreatedAt:    it.CreatedAt,
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

	return &bill.Item{
		ID:           itemID,
		BillID:       billID,
		Line:         m.Line,
		NumberOfBags: m.NumberOfBags,
		WeightKg:     m.WeightKg,
		RatePerKg:    m.RatePerKg,
		TotalPrice:   m.TotalPrice,
		GunnyCost:    m.GunnyCost,
		CreatedAt:    m.CreatedAt,
	}, nil
}
