package khata

import (
	"context"
	"strings"

	"github.com/xraph/khata/deposit"
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/payment"
	"github.com/xraph/khata/shop"
	"github.com/xraph/khata/store"
	"github.com/xraph/khata/types"
)

// ShopInput describes a new shop.
type ShopInput struct {
	Name           string      `json:"name"`
	Address        string      `json:"address"`
	ContactNumber  string      `json:"contact_number"`
	InitialDeposit types.Money `json:"initial_deposit"`
	// BillLimit defaults to shop.DefaultBillLimit when zero.
	BillLimit int `json:"bill_limit"`
}

// ShopUpdate changes the non-nil fields of a shop.
type ShopUpdate struct {
	Name          *string `json:"name,omitempty"`
	Address       *string `json:"address,omitempty"`
	ContactNumber *string `json:"contact_number,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
	BillLimit     *int    `json:"bill_limit,omitempty"`
}

// EntryInput describes a deposit or payment. A zero Date means today.
type EntryInput struct {
	Amount      types.Money `json:"amount"`
	Date        types.Date  `json:"date"`
	Description string      `json:"description"`
}

// ──────────────────────────────────────────────────
// Shop Management
// ──────────────────────────────────────────────────

// CreateShop opens a shop. A positive InitialDeposit is recorded as the
// shop's first deposit, dated today, in the same transaction.
func (k *Khata) CreateShop(ctx context.Context, in ShopInput) (*shop.Shop, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.BillLimit == 0 {
		in.BillLimit = shop.DefaultBillLimit
	}

	var errs MultiError
	errs.Add(validateShopName(in.Name))
	errs.Add(validateContact(in.ContactNumber))
	errs.Add(validateNonNegative("initial_deposit", in.InitialDeposit))
	errs.Add(validateBillLimit(in.BillLimit))
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	now := k.clock()
	s := &shop.Shop{
		Entity:         types.NewEntity(now),
		ID:             id.NewShopID(),
		Name:           in.Name,
		Address:        in.Address,
		ContactNumber:  in.ContactNumber,
		InitialDeposit: in.InitialDeposit,
		BillLimit:      in.BillLimit,
		IsActive:       true,
	}

	var initial *deposit.Deposit
	err := k.store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := ensureNameFree(ctx, tx, s.Name, id.Nil); err != nil {
			return err
		}
		if err := tx.CreateShop(ctx, s); err != nil {
			return err
		}
		if !in.InitialDeposit.IsPositive() {
			return nil
		}
		initial = &deposit.Deposit{
			ID:          id.NewDepositID(),
			ShopID:      s.ID,
			Amount:      in.InitialDeposit,
			DepositDate: types.DateOf(now),
			Description: deposit.InitialDescription,
			CreatedAt:   now,
		}
		return tx.CreateDeposit(ctx, initial)
	})
	if err != nil {
		return nil, err
	}

	k.logger.Info("shop created",
		"shop_id", s.ID.String(),
		"name", s.Name,
		"initial_deposit", s.InitialDeposit.String(),
	)
	k.plugins.EmitShopCreated(ctx, s)
	if initial != nil {
		k.plugins.EmitDepositRecorded(ctx, initial)
	}
	return s, nil
}

// GetShop retrieves a shop by ID.
func (k *Khata) GetShop(ctx context.Context, shopID id.ShopID) (*shop.Shop, error) {
	return k.store.GetShop(ctx, shopID)
}

// ListShops lists shops, newest first.
func (k *Khata) ListShops(ctx context.Context, opts shop.ListOpts) ([]*shop.Shop, error) {
	return k.store.ListShops(ctx, opts)
}

// UpdateShop applies upd to a shop. InitialDeposit is fixed at creation.
func (k *Khata) UpdateShop(ctx context.Context, shopID id.ShopID, upd ShopUpdate) (*shop.Shop, error) {
	if upd.Name != nil {
		trimmed := strings.TrimSpace(*upd.Name)
		upd.Name = &trimmed
	}

	var errs MultiError
	if upd.Name != nil {
		errs.Add(validateShopName(*upd.Name))
	}
	if upd.ContactNumber != nil {
		errs.Add(validateContact(*upd.ContactNumber))
	}
	if upd.BillLimit != nil {
		errs.Add(validateBillLimit(*upd.BillLimit))
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	var updated *shop.Shop
	err := k.store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		s, err := tx.GetShop(ctx, shopID)
		if err != nil {
			return err
		}
		if upd.Name != nil && *upd.Name != s.Name {
			if err := ensureNameFree(ctx, tx, *upd.Name, s.ID); err != nil {
				return err
			}
			s.Name = *upd.Name
		}
		if upd.Address != nil {
			s.Address = *upd.Address
		}
		if upd.ContactNumber != nil {
			s.ContactNumber = *upd.ContactNumber
		}
		if upd.IsActive != nil {
			s.IsActive = *upd.IsActive
		}
		if upd.BillLimit != nil {
			s.BillLimit = *upd.BillLimit
		}
		s.Touch(k.clock())

		if err := tx.UpdateShop(ctx, s); err != nil {
			return err
		}
		updated = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	k.plugins.EmitShopUpdated(ctx, updated)
	return updated, nil
}

// DeleteShop removes a shop with all of its deposits, payments and bills.
func (k *Khata) DeleteShop(ctx context.Context, shopID id.ShopID) error {
	err := k.store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		if _, err := tx.GetShop(ctx, shopID); err != nil {
			return err
		}
		return tx.DeleteShop(ctx, shopID)
	})
	if err != nil {
		return err
	}

	k.logger.Info("shop deleted", "shop_id", shopID.String())
	k.plugins.EmitShopDeleted(ctx, shopID)
	return nil
}

func ensureNameFree(ctx context.Context, s store.Store, name string, self id.ShopID) error {
	existing, err := s.GetShopByName(ctx, name)
	switch {
	case err == nil && existing.ID.String() != self.String():
		return ErrShopNameTaken
	case err == nil, IsNotFound(err):
		return nil
	default:
		return err
	}
}

// ──────────────────────────────────────────────────
// Deposits & Payments
// ──────────────────────────────────────────────────

// RecordDeposit issues credit to a shop.
func (k *Khata) RecordDeposit(ctx context.Context, shopID id.ShopID, in EntryInput) (*deposit.Deposit, error) {
	if err := validateAmount("amount", in.Amount); err != nil {
		return nil, err
	}

	now := k.clock()
	d := &deposit.Deposit{
		ID:          id.NewDepositID(),
		ShopID:      shopID,
		Amount:      in.Amount,
		DepositDate: k.dateOrToday(in.Date),
		Description: in.Description,
		CreatedAt:   now,
	}

	err := k.store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		if _, err := tx.GetShop(ctx, shopID); err != nil {
			return err
		}
		return tx.CreateDeposit(ctx, d)
	})
	if err != nil {
		return nil, err
	}

	k.logger.Info("deposit recorded",
		"shop_id", shopID.String(),
		"amount", d.Amount.String(),
		"date", d.DepositDate.String(),
	)
	k.plugins.EmitDepositRecorded(ctx, d)
	return d, nil
}

// ListDeposits lists a shop's deposits, newest first.
func (k *Khata) ListDeposits(ctx context.Context, shopID id.ShopID, opts deposit.ListOpts) ([]*deposit.Deposit, error) {
	if _, err := k.store.GetShop(ctx, shopID); err != nil {
		return nil, err
	}
	return k.store.ListDeposits(ctx, shopID, opts)
}

// RecordPayment records credit repaid by a shop.
func (k *Khata) RecordPayment(ctx context.Context, shopID id.ShopID, in EntryInput) (*payment.Payment, error) {
	if err := validateAmount("amount", in.Amount); err != nil {
		return nil, err
	}

	now := k.clock()
	p := &payment.Payment{
		ID:          id.NewPaymentID(),
		ShopID:      shopID,
		Amount:      in.Amount,
		PaymentDate: k.dateOrToday(in.Date),
		Description: in.Description,
		CreatedAt:   now,
	}

	err := k.store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		if _, err := tx.GetShop(ctx, shopID); err != nil {
			return err
		}
		return tx.CreatePayment(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	k.logger.Info("payment recorded",
		"shop_id", shopID.String(),
		"amount", p.Amount.String(),
		"date", p.PaymentDate.String(),
	)
	k.plugins.EmitPaymentRecorded(ctx, p)
	return p, nil
}

// ListPayments lists a shop's payments, newest first.
func (k *Khata) ListPayments(ctx context.Context, shopID id.ShopID, opts payment.ListOpts) ([]*payment.Payment, error) {
	if _, err := k.store.GetShop(ctx, shopID); err != nil {
		return nil, err
	}
	return k.store.ListPayments(ctx, shopID, opts)
}

func (k *Khata) dateOrToday(d types.Date) types.Date {
	if d.IsZero() {
		return k.Today()
	}
	return d
}
