package mongo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/xraph/khata/bill"
	"github.com/xraph/khata/deposit"
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/payment"
	"github.com/xraph/khata/settings"
	"github.com/xraph/khata/shop"
	"github.com/xraph/khata/types"
)

// settingsDocID is the _id of the single settings document.
const settingsDocID = "settings"

// ==================== Settings models ====================

type settingsModel struct {
	ID           string          `bson:"_id"`
	GunnyBagCost bson.Decimal128 `bson:"gunny_bag_cost"`
	UpdatedAt    time.Time       `bson:"updated_at"`
}

func toSettingsModel(s *settings.Settings) (*settingsModel, error) {
	cost, err := toDecimal128(s.GunnyBagCost.Decimal())
	if err != nil {
		return nil, err
	}
	return &settingsModel{ID: settingsDocID, GunnyBagCost: cost, UpdatedAt: s.UpdatedAt}, nil
}

func fromSettingsModel(m *settingsModel) (*settings.Settings, error) {
	cost, err := toMoney(m.GunnyBagCost)
	if err != nil {
		return nil, err
	}
	return &settings.Settings{GunnyBagCost: cost, UpdatedAt: m.UpdatedAt}, nil
}

// ==================== Shop models ====================

type shopModel struct {
	ID             string          `bson:"_id"`
	Name           string          `bson:"name"`
	Address        string          `bson:"address"`
	ContactNumber  string          `bson:"contact_number"`
	InitialDeposit bson.Decimal128 `bson:"initial_deposit"`
	BillLimit      int             `bson:"bill_limit"`
	IsActive       bool            `bson:"is_active"`
	LockVersion    int64           `bson:"lock_version"`
	CreatedAt      time.Time       `bson:"created_at"`
	UpdatedAt      time.Time       `bson:"updated_at"`
}

func toShopModel(s *shop.Shop) (*shopModel, error) {
	initial, err := toDecimal128(s.InitialDeposit.Decimal())
	if err != nil {
		return nil, err
	}
	return &shopModel{
		ID:             s.ID.String(),
		Name:           s.Name,
		Address:        s.Address,
		ContactNumber:  s.ContactNumber,
		InitialDeposit: initial,
		BillLimit:      s.BillLimit,
		IsActive:       s.IsActive,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}, nil
}

func fromShopModel(m *shopModel) (*shop.Shop, error) {
	shopID, err := id.ParseShopID(m.ID)
	if err != nil {
		return nil, err
	}
	initial, err := toMoney(m.InitialDeposit)
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
		InitialDeposit: initial,
		BillLimit:      m.BillLimit,
		IsActive:       m.IsActive,
	}, nil
}

// ==================== Ledger entry models ====================

// entryModel is shared by deposits and payments, which differ only in
// collection and date field name.
type entryModel struct {
	ID          string          `bson:"_id"`
	ShopID      string          `bson:"shop_id"`
	Amount      bson.Decimal128 `bson:"amount"`
	Date        string          `bson:"date"`
	Description string          `bson:"description"`
	CreatedAt   time.Time       `bson:"created_at"`
}

func toDepositModel(d *deposit.Deposit) (*entryModel, error) {
	amount, err := toDecimal128(d.Amount.Decimal())
	if err != nil {
		return nil, err
	}
	return &entryModel{
		ID:          d.ID.String(),
		ShopID:      d.ShopID.String(),
		Amount:      amount,
		Date:        d.DepositDate.String(),
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
	}, nil
}

func fromDepositModel(m *entryModel) (*deposit.Deposit, error) {
	depositID, err := id.ParseDepositID(m.ID)
	if err != nil {
		return nil, err
	}
	shopID, amount, day, err := entryFields(m)
	if err != nil {
		return nil, err
	}
	return &deposit.Deposit{
		ID:          depositID,
		ShopID:      shopID,
		Amount:      amount,
		DepositDate: day,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}, nil
}

func toPaymentModel(p *payment.Payment) (*entryModel, error) {
	amount, err := toDecimal128(p.Amount.Decimal())
	if err != nil {
		return nil, err
	}
	return &entryModel{
		ID:          p.ID.String(),
		ShopID:      p.ShopID.String(),
		Amount:      amount,
		Date:        p.PaymentDate.String(),
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}, nil
}

func fromPaymentModel(m *entryModel) (*payment.Payment, error) {
	paymentID, err := id.ParsePaymentID(m.ID)
	if err != nil {
		return nil, err
	}
	shopID, amount, day, err := entryFields(m)
	if err != nil {
		return nil, err
	}
	return &payment.Payment{
		ID:          paymentID,
		ShopID:      shopID,
		Amount:      amount,
		PaymentDate: day,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}, nil
}

func entryFields(m *entryModel) (id.ShopID, types.Money, types.Date, error) {
	shopID, err := id.ParseShopID(m.ShopID)
	if err != nil {
		return id.ShopID{}, types.Money{}, types.Date{}, err
	}
	amount, err := toMoney(m.Amount)
	if err != nil {
		return id.ShopID{}, types.Money{}, types.Date{}, err
	}
	day, err := types.ParseDate(m.Date)
	if err != nil {
		return id.ShopID{}, types.Money{}, types.Date{}, err
	}
	return shopID, amount, day, nil
}

// ==================== Bill models ====================

type billModel struct {
	ID           string          `bson:"_id"`
	ShopID       string          `bson:"shop_id"`
	Number       string          `bson:"number"`
	BillDate     string          `bson:"bill_date"`
	Subtotal     bson.Decimal128 `bson:"subtotal"`
	GunnyBagCost bson.Decimal128 `bson:"gunny_bag_cost"`
	TotalAmount  bson.Decimal128 `bson:"total_amount"`
	Notes        string          `bson:"notes"`
	CreatedAt    time.Time       `bson:"created_at"`
	UpdatedAt    time.Time       `bson:"updated_at"`
}

func toBillModel(b *bill.Bill) (*billModel, error) {
	amounts, err := toDecimal128s(b.Subtotal.Decimal(), b.GunnyBagCost.Decimal(), b.TotalAmount.Decimal())
	if err != nil {
		return nil, err
	}
	return &billModel{
		ID:           b.ID.String(),
		ShopID:       b.ShopID.String(),
		Number:       b.Number,
		BillDate:     b.BillDate.String(),
		Subtotal:     amounts[0],
		GunnyBagCost: amounts[1],
		TotalAmount:  amounts[2],
		Notes:        b.Notes,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}, nil
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
	day, err := types.ParseDate(m.BillDate)
	if err != nil {
		return nil, err
	}
	amounts, err := toMonies(m.Subtotal, m.GunnyBagCost, m.TotalAmount)
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
		BillDate:     day,
		Subtotal:     amounts[0],
		GunnyBagCost: amounts[1],
		TotalAmount:  amounts[2],
		Notes:        m.Notes,
	}, nil
}

// ==================== Bill item models ====================

type billItemModel struct {
	ID           string          `bson:"_id"`
	BillID       string          `bson:"bill_id"`
	Line         int             `bson:"line"`
	NumberOfBags int             `bson:"number_of_bags"`
	WeightKg     bson.Decimal128 `bson:"weight_kg"`
	RatePerKg    bson.Decimal128 `bson:"rate_per_kg"`
	TotalPrice   bson.Decimal128 `bson:"total_price"`
	GunnyCost    bson.Decimal128 `bson:"gunny_cost"`
	CreatedAt    time.Time       `bson:"created_at"`
}

func toBillItemModel(it *bill.Item) (*billItemModel, error) {
	values, err := toDecimal128s(it.WeightKg, it.RatePerKg.Decimal(), it.TotalPrice.Decimal(), it.GunnyCost.Decimal())
	if err != nil {
		return nil, err
	}
	return &billItemModel{
		ID:           it.ID.String(),
		BillID:       it.BillID.String(),
		Line:         it.Line,
		NumberOfBags: it.NumberOfBags,
		WeightKg:     values[0],
		RatePerKg:    values[1],
		TotalPrice:   values[2],
		GunnyCost:    values[3],
		CreatedAt:    it.CreatedAt,
	}, nil
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
	weight, err := decimal.NewFromString(m.WeightKg.String())
	if err != nil {
		return nil, fmt.Errorf("weight_kg: %w", err)
	}
	amounts, err := toMonies(m.RatePerKg, m.TotalPrice, m.GunnyCost)
	if err != nil {
		return nil, err
	}

	return &bill.Item{
		ID:           itemID,
		BillID:       billID,
		Line:         m.Line,
		NumberOfBags: m.NumberOfBags,
		WeightKg:     weight,
		RatePerKg:    amounts[0],
		TotalPrice:   amounts[1],
		GunnyCost:    amounts[2],
		CreatedAt:    m.CreatedAt,
	}, nil
}

// ==================== Decimal helpers ====================

func toDecimal128(d decimal.Decimal) (bson.Decimal128, error) {
	v, err := bson.ParseDecimal128(d.String())
	if err != nil {
		return bson.Decimal128{}, fmt.Errorf("decimal %s: %w", d, err)
	}
	return v, nil
}

func toDecimal128s(ds ...decimal.Decimal) ([]bson.Decimal128, error) {
	out := make([]bson.Decimal128, len(ds))
	for i, d := range ds {
		v, err := toDecimal128(d)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func toMoney(v bson.Decimal128) (types.Money, error) {
	return types.ParseMoney(v.String())
}

func toMonies(vs ...bson.Decimal128) ([]types.Money, error) {
	out := make([]types.Money, len(vs))
	for i, v := range vs {
		m, err := toMoney(v)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}
