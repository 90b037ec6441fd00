// Package memory provides an in-memory implementation of store.Store for
// tests and development. Transactions work on a private copy of the data and
// swap it in on commit; writers are serialised store-wide.
package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/xraph/khata"
	"github.com/xraph/khata/bill"
	"github.com/xraph/khata/deposit"
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/payment"
	"github.com/xraph/khata/settings"
	"github.com/xraph/khata/shop"
	"github.com/xraph/khata/store"
	"github.com/xraph/khata/types"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

type data struct {
	settings *settings.Settings
	shops    map[string]shop.Shop
	deposits map[string]deposit.Deposit
	payments map[string]payment.Payment
	bills    map[string]bill.Bill
	items    map[string]bill.Item
}

func newData() *data {
	return &data{
		shops:    make(map[string]shop.Shop),
		deposits: make(map[string]deposit.Deposit),
		payments: make(map[string]payment.Payment),
		bills:    make(map[string]bill.Bill),
		items:    make(map[string]bill.Item),
	}
}

func (d *data) clone() *data {
	c := &data{
		shops:    maps.Clone(d.shops),
		deposits: maps.Clone(d.deposits),
		payments: maps.Clone(d.payments),
		bills:    maps.Clone(d.bills),
		items:    maps.Clone(d.items),
	}
	if d.settings != nil {
		cp := *d.settings
		c.settings = &cp
	}
	return c
}

// Store is an in-memory store.Store.
type Store struct {
	mu     sync.RWMutex
	txMu   *sync.Mutex
	data   *data
	inTx   bool
	closed bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		txMu: &sync.Mutex{},
		data: newData(),
	}
}

// read runs fn under the read lock.
func (s *Store) read(fn func(d *data) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return khata.ErrStoreClosed
	}
	return fn(s.data)
}

// write runs fn under the write lock. Outside a transaction it also takes
// the transaction lock so a concurrent commit cannot overwrite it.
func (s *Store) write(fn func(d *data) error) error {
	if !s.inTx {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return khata.ErrStoreClosed
	}
	return fn(s.data)
}

// ==================== Transactions ====================

// RunInTx runs fn against a copy of the data and commits it if fn succeeds.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return khata.ErrStoreClosed
	}
	tx := &Store{txMu: s.txMu, data: s.data.clone(), inTx: true}
	s.mu.RUnlock()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = tx.data
	s.mu.Unlock()
	return nil
}

// ==================== Settings Store ====================

func (s *Store) GetSettings(_ context.Context) (*settings.Settings, error) {
	var out *settings.Settings
	err := s.read(func(d *data) error {
		if d.settings == nil {
			return khata.ErrNotFound
		}
		cp := *d.settings
		out = &cp
		return nil
	})
	return out, err
}

func (s *Store) SaveSettings(_ context.Context, set *settings.Settings) error {
	return s.write(func(d *data) error {
		cp := *set
		d.settings = &cp
		return nil
	})
}

// ==================== Shop Store ====================

func (s *Store) CreateShop(_ context.Context, sh *shop.Shop) error {
	return s.write(func(d *data) error {
		for _, existing := range d.shops {
			if existing.Name == sh.Name {
				return khata.ErrShopNameTaken
			}
		}
		d.shops[sh.ID.String()] = *sh
		return nil
	})
}

func (s *Store) GetShop(_ context.Context, shopID id.ShopID) (*shop.Shop, error) {
	var out *shop.Shop
	err := s.read(func(d *data) error {
		sh, ok := d.shops[shopID.String()]
		if !ok {
			return khata.ErrShopNotFound
		}
		out = &sh
		return nil
	})
	return out, err
}

func (s *Store) GetShopByName(_ context.Context, name string) (*shop.Shop, error) {
	var out *shop.Shop
	err := s.read(func(d *data) error {
		for _, sh := range d.shops {
			if sh.Name == name {
				out = &sh
				return nil
			}
		}
		return khata.ErrShopNotFound
	})
	return out, err
}

// LockShop reads the shop. Transactions are already serialised, so no
// extra locking is needed.
func (s *Store) LockShop(ctx context.Context, shopID id.ShopID) (*shop.Shop, error) {
	return s.GetShop(ctx, shopID)
}

func (s *Store) ListShops(_ context.Context, opts shop.ListOpts) ([]*shop.Shop, error) {
	var out []*shop.Shop
	err := s.read(func(d *data) error {
		for _, sh := range d.shops {
			if opts.ActiveOnly && !sh.IsActive {
				continue
			}
			out = append(out, &sh)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b *shop.Shop) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID.String(), a.ID.String())
	})
	return page(out, opts.Limit, opts.Offset), nil
}

func (s *Store) UpdateShop(_ context.Context, sh *shop.Shop) error {
	return s.write(func(d *data) error {
		key := sh.ID.String()
		if _, ok := d.shops[key]; !ok {
			return khata.ErrShopNotFound
		}
		for k, existing := range d.shops {
			if k != key && existing.Name == sh.Name {
				return khata.ErrShopNameTaken
			}
		}
		d.shops[key] = *sh
		return nil
	})
}

func (s *Store) DeleteShop(_ context.Context, shopID id.ShopID) error {
	return s.write(func(d *data) error {
		key := shopID.String()
		if _, ok := d.shops[key]; !ok {
			return khata.ErrShopNotFound
		}
		delete(d.shops, key)

		for k, dep := range d.deposits {
			if dep.ShopID.String() == key {
				delete(d.deposits, k)
			}
		}
		for k, p := range d.payments {
			if p.ShopID.String() == key {
				delete(d.payments, k)
			}
		}
		for k, b := range d.bills {
			if b.ShopID.String() == key {
				deleteBill(d, k)
			}
		}
		return nil
	})
}

// ==================== Deposit Store ====================

func (s *Store) CreateDeposit(_ context.Context, dep *deposit.Deposit) error {
	return s.write(func(d *data) error {
		if _, ok := d.shops[dep.ShopID.String()]; !ok {
			return khata.ErrShopNotFound
		}
		d.deposits[dep.ID.String()] = *dep
		return nil
	})
}

func (s *Store) ListDeposits(_ context.Context, shopID id.ShopID, opts deposit.ListOpts) ([]*deposit.Deposit, error) {
	var out []*deposit.Deposit
	err := s.read(func(d *data) error {
		for _, dep := range d.deposits {
			if dep.ShopID.String() == shopID.String() && inRange(dep.DepositDate, opts.From, opts.To) {
				out = append(out, &dep)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b *deposit.Deposit) int {
		if c := b.DepositDate.Compare(a.DepositDate); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return page(out, opts.Limit, opts.Offset), nil
}

func (s *Store) DepositTotal(_ context.Context, shopID id.ShopID) (types.Money, error) {
	total := types.Zero()
	err := s.read(func(d *data) error {
		for _, dep := range d.deposits {
			if shopID.IsNil() || dep.ShopID.String() == shopID.String() {
				total = total.Add(dep.Amount)
			}
		}
		return nil
	})
	return total, err
}

// ==================== Payment Store ====================

func (s *Store) CreatePayment(_ context.Context, p *payment.Payment) error {
	return s.write(func(d *data) error {
		if _, ok := d.shops[p.ShopID.String()]; !ok {
			return khata.ErrShopNotFound
		}
		d.payments[p.ID.String()] = *p
		return nil
	})
}

func (s *Store) ListPayments(_ context.Context, shopID id.ShopID, opts payment.ListOpts) ([]*payment.Payment, error) {
	var out []*payment.Payment
	err := s.read(func(d *data) error {
		for _, p := range d.payments {
			if p.ShopID.String() == shopID.String() && inRange(p.PaymentDate, opts.From, opts.To) {
				out = append(out, &p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b *payment.Payment) int {
		if c := b.PaymentDate.Compare(a.PaymentDate); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return page(out, opts.Limit, opts.Offset), nil
}

func (s *Store) PaymentTotal(_ context.Context, shopID id.ShopID, upTo types.Date) (types.Money, error) {
	total := types.Zero()
	err := s.read(func(d *data) error {
		for _, p := range d.payments {
			if p.ShopID.String() == shopID.String() && inRange(p.PaymentDate, types.Date{}, upTo) {
				total = total.Add(p.Amount)
			}
		}
		return nil
	})
	return total, err
}

// ==================== Bill Store ====================

func (s *Store) CreateBill(_ context.Context, b *bill.Bill) error {
	return s.write(func(d *data) error {
		if _, ok := d.shops[b.ShopID.String()]; !ok {
			return khata.ErrShopNotFound
		}
		for _, existing := range d.bills {
			if existing.Number == b.Number {
				return khata.ErrBillNumberConflict
			}
		}
		d.bills[b.ID.String()] = header(b)
		return nil
	})
}

func (s *Store) GetBill(_ context.Context, billID id.BillID) (*bill.Bill, error) {
	var out *bill.Bill
	err := s.read(func(d *data) error {
		b, ok := d.bills[billID.String()]
		if !ok {
			return khata.ErrBillNotFound
		}
		b.Items = itemsOf(d, b.ID)
		out = &b
		return nil
	})
	return out, err
}

func (s *Store) GetBillByNumber(_ context.Context, number string) (*bill.Bill, error) {
	var out *bill.Bill
	err := s.read(func(d *data) error {
		for _, b := range d.bills {
			if b.Number == number {
				b.Items = itemsOf(d, b.ID)
				out = &b
				return nil
			}
		}
		return khata.ErrBillNotFound
	})
	return out, err
}

func (s *Store) ListBills(_ context.Context, opts bill.ListOpts) ([]*bill.Bill, error) {
	var out []*bill.Bill
	err := s.read(func(d *data) error {
		for _, b := range d.bills {
			if matches(b, opts.Query) {
				out = append(out, &b)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b *bill.Bill) int {
		if c := b.BillDate.Compare(a.BillDate); c != 0 {
			return c
		}
		return strings.Compare(b.Number, a.Number)
	})
	return page(out, opts.Limit, opts.Offset), nil
}

func (s *Store) UpdateBill(_ context.Context, b *bill.Bill) error {
	return s.write(func(d *data) error {
		key := b.ID.String()
		if _, ok := d.bills[key]; !ok {
			return khata.ErrBillNotFound
		}
		d.bills[key] = header(b)
		return nil
	})
}

func (s *Store) DeleteBill(_ context.Context, billID id.BillID) error {
	return s.write(func(d *data) error {
		key := billID.String()
		if _, ok := d.bills[key]; !ok {
			return khata.ErrBillNotFound
		}
		deleteBill(d, key)
		return nil
	})
}

func (s *Store) LatestBillNumber(_ context.Context, prefix string) (string, error) {
	var latest string
	err := s.read(func(d *data) error {
		for _, b := range d.bills {
			if strings.HasPrefix(b.Number, prefix) && b.Number > latest {
				latest = b.Number
			}
		}
		return nil
	})
	return latest, err
}

func (s *Store) SummarizeBills(_ context.Context, q bill.Query) (bill.Totals, error) {
	t := bill.Totals{Amount: types.Zero(), GunnyBagCost: types.Zero()}
	err := s.read(func(d *data) error {
		for _, b := range d.bills {
			if matches(b, q) {
				t.Count++
				t.Amount = t.Amount.Add(b.TotalAmount)
				t.GunnyBagCost = t.GunnyBagCost.Add(b.GunnyBagCost)
			}
		}
		return nil
	})
	return t, err
}

// ==================== Bill Item Store ====================

func (s *Store) CreateBillItem(_ context.Context, it *bill.Item) error {
	return s.write(func(d *data) error {
		if _, ok := d.bills[it.BillID.String()]; !ok {
			return khata.ErrBillNotFound
		}
		d.items[it.ID.String()] = *it
		return nil
	})
}

func (s *Store) GetBillItem(_ context.Context, itemID id.BillItemID) (*bill.Item, error) {
	var out *bill.Item
	err := s.read(func(d *data) error {
		it, ok := d.items[itemID.String()]
		if !ok {
			return khata.ErrBillItemNotFound
		}
		out = &it
		return nil
	})
	return out, err
}

func (s *Store) ListBillItems(_ context.Context, billID id.BillID) ([]bill.Item, error) {
	var out []bill.Item
	err := s.read(func(d *data) error {
		out = itemsOf(d, billID)
		return nil
	})
	return out, err
}

func (s *Store) UpdateBillItem(_ context.Context, it *bill.Item) error {
	return s.write(func(d *data) error {
		key := it.ID.String()
		if _, ok := d.items[key]; !ok {
			return khata.ErrBillItemNotFound
		}
		d.items[key] = *it
		return nil
	})
}

func (s *Store) DeleteBillItem(_ context.Context, itemID id.BillItemID) error {
	return s.write(func(d *data) error {
		key := itemID.String()
		if _, ok := d.items[key]; !ok {
			return khata.ErrBillItemNotFound
		}
		delete(d.items, key)
		return nil
	})
}

func (s *Store) DeleteBillItems(_ context.Context, billID id.BillID) error {
	return s.write(func(d *data) error {
		for k, it := range d.items {
			if it.BillID.String() == billID.String() {
				delete(d.items, k)
			}
		}
		return nil
	})
}

// ==================== Core ====================

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping reports whether the store is open.
func (s *Store) Ping(_ context.Context) error {
	return s.read(func(*data) error { return nil })
}

// Close marks the store closed. Later calls fail with khata.ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// ==================== Helpers ====================

func header(b *bill.Bill) bill.Bill {
	h := *b
	h.Items = nil
	return h
}

func itemsOf(d *data, billID id.BillID) []bill.Item {
	out := make([]bill.Item, 0)
	for _, it := range d.items {
		if it.BillID.String() == billID.String() {
			out = append(out, it)
		}
	}
	slices.SortFunc(out, func(a, b bill.Item) int {
		return cmp.Compare(a.Line, b.Line)
	})
	return out
}

func deleteBill(d *data, key string) {
	delete(d.bills, key)
	for k, it := range d.items {
		if it.BillID.String() == key {
			delete(d.items, k)
		}
	}
}

func matches(b bill.Bill, q bill.Query) bool {
	if !q.ShopID.IsNil() && b.ShopID.String() != q.ShopID.String() {
		return false
	}
	return inRange(b.BillDate, q.From, q.To)
}

// inRange reports from <= day <= to, treating zero bounds as open.
func inRange(day, from, to types.Date) bool {
	if !from.IsZero() && day.Before(from) {
		return false
	}
	if !to.IsZero() && day.After(to) {
		return false
	}
	return true
}

func page[T any](items []T, limit, offset int) []T {
	if items == nil {
		items = []T{}
	}
	start := min(offset, len(items))
	end := len(items)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	return items[start:end]
}
