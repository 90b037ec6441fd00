package khata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/khata/balance"
	"github.com/xraph/khata/bill"
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/store"
	"github.com/xraph/khata/types"
)

// BillDraft describes a new bill. A zero BillDate means today.
type BillDraft struct {
	BillDate types.Date  `json:"bill_date"`
	Notes    string      `json:"notes"`
	Items    []ItemInput `json:"items"`
}

// BillEdit replaces a bill's notes and its whole item set.
type BillEdit struct {
	Notes string      `json:"notes"`
	Items []ItemInput `json:"items"`
}

// ──────────────────────────────────────────────────
// Bill Creation
// ──────────────────────────────────────────────────

// CreateBill admits, numbers and stores a bill with its items. The credit
// check, number assignment and writes share one transaction; a number
// collision with a concurrent writer retries the whole transaction.
func (k *Khata) CreateBill(ctx context.Context, shopID id.ShopID, draft BillDraft) (*bill.Bill, error) {
	if err := validateItems(draft.Items); err != nil {
		return nil, err
	}
	draft.BillDate = k.dateOrToday(draft.BillDate)

	var lastErr error
	for attempt := 1; attempt <= k.numberAttempts; attempt++ {
		b, refused, err := k.createBill(ctx, shopID, draft)
		if refused != nil {
			k.logger.Info("bill refused",
				"shop_id", shopID.String(),
				"reason", string(refused.Reason),
				"pending", refused.Pending.String(),
				"credit_limit", refused.CreditLimit.String(),
			)
			k.plugins.EmitCreditLimitExceeded(ctx, shopID, *refused)
		}
		if err == nil {
			k.logger.Info("bill created",
				"bill_id", b.ID.String(),
				"number", b.Number,
				"shop_id", shopID.String(),
				"total", b.TotalAmount.String(),
			)
			k.plugins.EmitBillCreated(ctx, b)
			return b, nil
		}
		if !IsRetryable(err) {
			return nil, err
		}

		lastErr = err
		k.logger.Warn("bill number collision, retrying",
			"shop_id", shopID.String(),
			"attempt", attempt,
			"error", err,
		)
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrBillNumberAttemptsUsed, k.numberAttempts, lastErr)
}

func (k *Khata) createBill(ctx context.Context, shopID id.ShopID, draft BillDraft) (*bill.Bill, *balance.Decision, error) {
	var (
		created *bill.Bill
		refused *balance.Decision
	)

	err := k.store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		s, err := tx.LockShop(ctx, shopID)
		if err != nil {
			return err
		}

		t, err := totalsIn(ctx, tx, shopID)
		if err != nil {
			return err
		}
		d := k.policy.Decide(k.policy.Summarize(shopID, t, s.BillLimit))
		if !d.Allowed {
			refused = &d
			return refusal(d)
		}

		set, err := k.settingsIn(ctx, tx)
		if err != nil {
			return err
		}

		now := k.clock()
		day := types.DateOf(now)
		latest, err := tx.LatestBillNumber(ctx, bill.DayPrefix(day))
		if err != nil {
			return err
		}
		number, err := bill.NextNumber(day, latest)
		if err != nil {
			return err
		}

		b := &bill.Bill{
			Entity:   types.NewEntity(now),
			ID:       id.NewBillID(),
			ShopID:   shopID,
			Number:   number,
			BillDate: draft.BillDate,
			Notes:    draft.Notes,
		}
		items := make([]bill.Item, len(draft.Items))
		for i, in := range draft.Items {
			items[i] = newItem(b.ID, i+1, in, now)
			bill.PriceItem(&items[i], set.GunnyBagCost)
		}
		bill.Recompute(b, items)

		if err := tx.CreateBill(ctx, b); err != nil {
			return err
		}
		for i := range items {
			if err := tx.CreateBillItem(ctx, &items[i]); err != nil {
				return err
			}
		}

		created = b
		return nil
	})
	if err != nil {
		return nil, refused, err
	}
	return created, nil, nil
}

func refusal(d balance.Decision) error {
	if d.Reason == balance.ReasonBillLimitReached {
		return fmt.Errorf("%w: %d of %d bills", ErrBillLimitReached, d.BillCount, d.BillLimit)
	}
	return &CreditLimitError{Pending: d.Pending, CreditLimit: d.CreditLimit}
}

func newItem(billID id.BillID, line int, in ItemInput, now time.Time) bill.Item {
	return bill.Item{
		ID:           id.NewBillItemID(),
		BillID:       billID,
		Line:         line,
		NumberOfBags: in.NumberOfBags,
		WeightKg:     in.WeightKg,
		RatePerKg:    in.RatePerKg,
		CreatedAt:    now,
	}
}

// ──────────────────────────────────────────────────
// Bill Queries
// ──────────────────────────────────────────────────

// GetBill retrieves a bill with its items.
func (k *Khata) GetBill(ctx context.Context, billID id.BillID) (*bill.Bill, error) {
	return k.store.GetBill(ctx, billID)
}

// GetBillByNumber retrieves a bill by its BILL-YYYYMMDD-NNNN number.
func (k *Khata) GetBillByNumber(ctx context.Context, number string) (*bill.Bill, error) {
	return k.store.GetBillByNumber(ctx, number)
}

// ListBills lists bill headers, newest bill date first.
func (k *Khata) ListBills(ctx context.Context, opts bill.ListOpts) ([]*bill.Bill, error) {
	if !opts.From.IsZero() && !opts.To.IsZero() {
		if err := validateRange(opts.From, opts.To); err != nil {
			return nil, err
		}
	}
	return k.store.ListBills(ctx, opts)
}

// TodaysBills lists bills dated today, for one shop or for all shops when
// shopID is id.Nil.
func (k *Khata) TodaysBills(ctx context.Context, shopID id.ShopID) ([]*bill.Bill, error) {
	today := k.Today()
	return k.store.ListBills(ctx, bill.ListOpts{
		Query: bill.Query{ShopID: shopID, From: today, To: today},
	})
}

// ──────────────────────────────────────────────────
// Bill Changes
// ──────────────────────────────────────────────────

// EditBill replaces a bill's notes and items. Only bills dated today can be
// edited.
func (k *Khata) EditBill(ctx context.Context, billID id.BillID, edit BillEdit) (*bill.Bill, error) {
	if err := validateItems(edit.Items); err != nil {
		return nil, err
	}

	return k.changeBill(ctx, billID, func(ctx context.Context, tx store.Store, b *bill.Bill, now time.Time) error {
		if b.BillDate != types.DateOf(now) {
			return fmt.Errorf("%w: %s is dated %s", ErrBillLocked, b.Number, b.BillDate)
		}

		set, err := k.settingsIn(ctx, tx)
		if err != nil {
			return err
		}
		if err := tx.DeleteBillItems(ctx, b.ID); err != nil {
			return err
		}

		items := make([]bill.Item, len(edit.Items))
		for i, in := range edit.Items {
			items[i] = newItem(b.ID, i+1, in, now)
			bill.PriceItem(&items[i], set.GunnyBagCost)
			if err := tx.CreateBillItem(ctx, &items[i]); err != nil {
				return err
			}
		}

		b.Notes = edit.Notes
		bill.Recompute(b, items)
		return nil
	})
}

// AddBillItem appends an item to a bill and returns the recomputed bill.
func (k *Khata) AddBillItem(ctx context.Context, billID id.BillID, in ItemInput) (*bill.Bill, error) {
	if err := validateItem("item", in); err != nil {
		return nil, err
	}

	return k.changeBill(ctx, billID, func(ctx context.Context, tx store.Store, b *bill.Bill, now time.Time) error {
		set, err := k.settingsIn(ctx, tx)
		if err != nil {
			return err
		}

		it := newItem(b.ID, bill.NextLine(b.Items), in, now)
		bill.PriceItem(&it, set.GunnyBagCost)
		if err := tx.CreateBillItem(ctx, &it); err != nil {
			return err
		}

		bill.Recompute(b, append(b.Items, it))
		return nil
	})
}

// UpdateBillItem rewrites an item, repricing it with the current gunny bag
// cost, and returns the recomputed bill.
func (k *Khata) UpdateBillItem(ctx context.Context, itemID id.BillItemID, in ItemInput) (*bill.Bill, error) {
	if err := validateItem("item", in); err != nil {
		return nil, err
	}

	billID, err := k.billOf(ctx, itemID)
	if err != nil {
		return nil, err
	}

	return k.changeBill(ctx, billID, func(ctx context.Context, tx store.Store, b *bill.Bill, _ time.Time) error {
		set, err := k.settingsIn(ctx, tx)
		if err != nil {
			return err
		}

		items := b.Items
		idx := indexOf(items, itemID)
		if idx < 0 {
			return ErrBillItemNotFound
		}
		it := &items[idx]
		it.NumberOfBags = in.NumberOfBags
		it.WeightKg = in.WeightKg
		it.RatePerKg = in.RatePerKg
		bill.PriceItem(it, set.GunnyBagCost)
		if err := tx.UpdateBillItem(ctx, it); err != nil {
			return err
		}

		bill.Recompute(b, items)
		return nil
	})
}

// RemoveBillItem deletes an item and returns the recomputed bill.
func (k *Khata) RemoveBillItem(ctx context.Context, itemID id.BillItemID) (*bill.Bill, error) {
	billID, err := k.billOf(ctx, itemID)
	if err != nil {
		return nil, err
	}

	return k.changeBill(ctx, billID, func(ctx context.Context, tx store.Store, b *bill.Bill, _ time.Time) error {
		idx := indexOf(b.Items, itemID)
		if idx < 0 {
			return ErrBillItemNotFound
		}
		if err := tx.DeleteBillItem(ctx, itemID); err != nil {
			return err
		}

		items := make([]bill.Item, 0, len(b.Items)-1)
		items = append(items, b.Items[:idx]...)
		items = append(items, b.Items[idx+1:]...)
		bill.Recompute(b, items)
		return nil
	})
}

// RecomputeBill recalculates a bill's totals from its stored items.
func (k *Khata) RecomputeBill(ctx context.Context, billID id.BillID) (*bill.Bill, error) {
	return k.changeBill(ctx, billID, func(ctx context.Context, tx store.Store, b *bill.Bill, _ time.Time) error {
		items, err := tx.ListBillItems(ctx, b.ID)
		if err != nil {
			return err
		}
		bill.Recompute(b, items)
		return nil
	})
}

// DeleteBill removes a bill and its items.
func (k *Khata) DeleteBill(ctx context.Context, billID id.BillID) error {
	var deleted *bill.Bill
	err := k.store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		b, err := tx.GetBill(ctx, billID)
		if err != nil {
			return err
		}
		if err := tx.DeleteBill(ctx, billID); err != nil {
			return err
		}
		deleted = b
		return nil
	})
	if err != nil {
		return err
	}

	k.logger.Info("bill deleted",
		"bill_id", billID.String(),
		"number", deleted.Number,
	)
	k.plugins.EmitBillDeleted(ctx, deleted)
	return nil
}

// changeBill loads a bill, lets fn change its items, and stores the
// recomputed header, all in one transaction.
func (k *Khata) changeBill(
	ctx context.Context,
	billID id.BillID,
	fn func(ctx context.Context, tx store.Store, b *bill.Bill, now time.Time) error,
) (*bill.Bill, error) {
	var updated *bill.Bill
	err := k.store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		b, err := tx.GetBill(ctx, billID)
		if err != nil {
			return err
		}

		now := k.clock()
		if err := fn(ctx, tx, b, now); err != nil {
			return err
		}

		b.Touch(now)
		if err := tx.UpdateBill(ctx, b); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	k.plugins.EmitBillUpdated(ctx, updated)
	return updated, nil
}

func (k *Khata) billOf(ctx context.Context, itemID id.BillItemID) (id.BillID, error) {
	it, err := k.store.GetBillItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return id.Nil, ErrBillItemNotFound
		}
		return id.Nil, err
	}
	return it.BillID, nil
}

func indexOf(items []bill.Item, itemID id.BillItemID) int {
	for i := range items {
		if items[i].ID.String() == itemID.String() {
			return i
		}
	}
	return -1
}
