// Package sqlite implements store.Store on SQLite via Grove ORM and the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/xraph/grove"
	"github.com/xraph/grove/driver"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/drivers/sqlitedriver/sqlitemigrate"
	"github.com/xraph/grove/migrate"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/xraph/khata"
	"github.com/xraph/khata/bill"
	"github.com/xraph/khata/deposit"
	"github.com/xraph/khata/id"
	"github.com/xraph/khata/payment"
	"github.com/xraph/khata/settings"
	"github.com/xraph/khata/shop"
	khatastore "github.com/xraph/khata/store"
	"github.com/xraph/khata/types"
)

// compile-time interface check
var _ khatastore.Store = (*Store)(nil)

// builder is satisfied by both *sqlitedriver.SqliteDB and
// *sqlitedriver.SqliteTx.
type builder interface {
	NewSelect(model ...any) *sqlitedriver.SelectQuery
	NewInsert(model any) *sqlitedriver.InsertQuery
	NewUpdate(model any) *sqlitedriver.UpdateQuery
	NewDelete(model any) *sqlitedriver.DeleteQuery
}

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db   *grove.DB
	sdb  *sqlitedriver.SqliteDB
	q    builder
	inTx bool
}

// New creates a new SQLite store backed by Grove ORM. The database must
// have foreign keys enabled for deletes to cascade; Open configures this.
func New(db *grove.DB) *Store {
	sdb := sqlitedriver.Unwrap(db)
	return &Store{db: db, sdb: sdb, q: sdb}
}

// Open opens the database file at path (or ":memory:"). All work shares a
// single connection, so transactions are serialized.
func Open(path string) (*Store, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"

	sdb := sqlitedriver.New()
	if err := sdb.Open(context.Background(), dsn, driver.WithPoolSize(1)); err != nil {
		return nil, fmt.Errorf("khata/sqlite: open: %w", err)
	}
	db, err := grove.Open(sdb)
	if err != nil {
		_ = sdb.Close()
		return nil, fmt.Errorf("khata/sqlite: open: %w", err)
	}
	return New(db), nil
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	orch := migrate.NewOrchestrator(sqlitemigrate.New(s.sdb), Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: khata/sqlite: %w", khata.ErrMigrationFailed, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.inTx {
		return nil
	}
	return s.db.Close()
}

// RunInTx runs fn in a database transaction. Every query made through the
// store handed to fn runs on the transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx khatastore.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	tx, err := s.sdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return classify(err)
	}
	if err := fn(ctx, &Store{db: s.db, sdb: s.sdb, q: tx, inTx: true}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return classify(tx.Commit())
}

// ==================== Settings Store ====================

func (s *Store) GetSettings(ctx context.Context) (*settings.Settings, error) {
	m := new(settingsModel)
	err := s.q.NewSelect(m).Where("id = ?", 1).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, khata.ErrNotFound
		}
		return nil, err
	}
	return fromSettingsModel(m)
}

func (s *Store) SaveSettings(ctx context.Context, set *settings.Settings) error {
	_, err := s.q.NewInsert(toSettingsModel(set)).
		OnConflict("(id) DO UPDATE").
		Set("gunny_bag_cost = excluded.gunny_bag_cost").
		Set("updated_at = excluded.updated_at").
		Exec(ctx)
	return classify(err)
}

// ==================== Shop Store ====================

func (s *Store) CreateShop(ctx context.Context, sh *shop.Shop) error {
	_, err := s.q.NewInsert(toShopModel(sh)).Exec(ctx)
	return classify(err)
}

func (s *Store) GetShop(ctx context.Context, shopID id.ShopID) (*shop.Shop, error) {
	return s.findShop(ctx, "id = ?", shopID.String())
}

func (s *Store) GetShopByName(ctx context.Context, name string) (*shop.Shop, error) {
	return s.findShop(ctx, "name = ?", name)
}

// LockShop reads the shop. Transactions hold the only connection, so no
// other writer can touch the shop until this one finishes.
func (s *Store) LockShop(ctx context.Context, shopID id.ShopID) (*shop.Shop, error) {
	return s.GetShop(ctx, shopID)
}

func (s *Store) findShop(ctx context.Context, where string, arg any) (*shop.Shop, error) {
	m := new(shopModel)
	if err := s.q.NewSelect(m).Where(where, arg).Scan(ctx); err != nil {
		if isNoRows(err) {
			return nil, khata.ErrShopNotFound
		}
		return nil, err
	}
	return fromShopModel(m)
}

func (s *Store) ListShops(ctx context.Context, opts shop.ListOpts) ([]*shop.Shop, error) {
	var models []shopModel
	q := s.q.NewSelect(&models)
	if opts.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	q = paginate(q.OrderExpr("created_at DESC, id DESC"), opts.Limit, opts.Offset)

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*shop.Shop, len(models))
	for i := range models {
		sh, err := fromShopModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = sh
	}
	return result, nil
}

func (s *Store) UpdateShop(ctx context.Context, sh *shop.Shop) error {
	res, err := s.q.NewUpdate(toShopModel(sh)).
		Column("name", "address", "contact_number", "bill_limit", "is_active", "updated_at").
		WherePK().
		Exec(ctx)
	return affected(res, classify(err), khata.ErrShopNotFound)
}

// DeleteShop removes the shop; foreign keys cascade to its records.
func (s *Store) DeleteShop(ctx context.Context, shopID id.ShopID) error {
	res, err := s.q.NewDelete((*shopModel)(nil)).
		Where("id = ?", shopID.String()).
		Exec(ctx)
	return affected(res, err, khata.ErrShopNotFound)
}

// ==================== Deposit Store ====================

func (s *Store) CreateDeposit(ctx context.Context, d *deposit.Deposit) error {
	_, err := s.q.NewInsert(toDepositModel(d)).Exec(ctx)
	return classify(err)
}

func (s *Store) ListDeposits(ctx context.Context, shopID id.ShopID, opts deposit.ListOpts) ([]*deposit.Deposit, error) {
	var models []depositModel
	q := s.q.NewSelect(&models).Where("shop_id = ?", shopID.String())
	q = dateRange(q, "deposit_date", opts.From, opts.To)
	q = paginate(q.OrderExpr("deposit_date DESC, created_at DESC"), opts.Limit, opts.Offset)

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*deposit.Deposit, len(models))
	for i := range models {
		d, err := fromDepositModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = d
	}
	return result, nil
}

// DepositTotal sums amounts in Go; they are TEXT and SUM would go through REAL.
func (s *Store) DepositTotal(ctx context.Context, shopID id.ShopID) (types.Money, error) {
	var models []depositModel
	q := s.q.NewSelect(&models).Column("amount")
	if !shopID.IsNil() {
		q = q.Where("shop_id = ?", shopID.String())
	}
	if err := q.Scan(ctx); err != nil {
		return types.Zero(), err
	}

	total := types.Zero()
	for i := range models {
		total = total.Add(models[i].Amount)
	}
	return total, nil
}

// ==================== Payment Store ====================

func (s *Store) CreatePayment(ctx context.Context, p *payment.Payment) error {
	_, err := s.q.NewInsert(toPaymentModel(p)).Exec(ctx)
	return classify(err)
}

func (s *Store) ListPayments(ctx context.Context, shopID id.ShopID, opts payment.ListOpts) ([]*payment.Payment, error) {
	var models []paymentModel
	q := s.q.NewSelect(&models).Where("shop_id = ?", shopID.String())
	q = dateRange(q, "payment_date", opts.From, opts.To)
	q = paginate(q.OrderExpr("payment_date DESC, created_at DESC"), opts.Limit, opts.Offset)

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*payment.Payment, len(models))
	for i := range models {
		p, err := fromPaymentModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = p
	}
	return result, nil
}

func (s *Store) PaymentTotal(ctx context.Context, shopID id.ShopID, upTo types.Date) (types.Money, error) {
	var models []paymentModel
	q := s.q.NewSelect(&models).Column("amount").Where("shop_id = ?", shopID.String())
	q = dateRange(q, "payment_date", types.Date{}, upTo)
	if err := q.Scan(ctx); err != nil {
		return types.Zero(), err
	}

	total := types.Zero()
	for i := range models {
		total = total.Add(models[i].Amount)
	}
	return total, nil
}

// ==================== Bill Store ====================

func (s *Store) CreateBill(ctx context.Context, b *bill.Bill) error {
	_, err := s.q.NewInsert(toBillModel(b)).Exec(ctx)
	return classify(err)
}

func (s *Store) GetBill(ctx context.Context, billID id.BillID) (*bill.Bill, error) {
	return s.findBill(ctx, "id = ?", billID.String())
}

func (s *Store) GetBillByNumber(ctx context.Context, number string) (*bill.Bill, error) {
	return s.findBill(ctx, "number = ?", number)
}

func (s *Store) findBill(ctx context.Context, where string, arg any) (*bill.Bill, error) {
	m := new(billModel)
	if err := s.q.NewSelect(m).Where(where, arg).Scan(ctx); err != nil {
		if isNoRows(err) {
			return nil, khata.ErrBillNotFound
		}
		return nil, err
	}
	b, err := fromBillModel(m)
	if err != nil {
		return nil, err
	}
	if b.Items, err = s.ListBillItems(ctx, b.ID); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) ListBills(ctx context.Context, opts bill.ListOpts) ([]*bill.Bill, error) {
	var models []billModel
	q := billQuery(s.q.NewSelect(&models), opts.Query)
	q = paginate(q.OrderExpr("bill_date DESC, number DESC"), opts.Limit, opts.Offset)

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*bill.Bill, len(models))
	for i := range models {
		b, err := fromBillModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = b
	}
	return result, nil
}

func (s *Store) UpdateBill(ctx context.Context, b *bill.Bill) error {
	res, err := s.q.NewUpdate(toBillModel(b)).
		Column("bill_date", "subtotal", "gunny_bag_cost", "total_amount", "notes", "updated_at").
		WherePK().
		Exec(ctx)
	return affected(res, err, khata.ErrBillNotFound)
}

// DeleteBill removes the bill; its items cascade.
func (s *Store) DeleteBill(ctx context.Context, billID id.BillID) error {
	res, err := s.q.NewDelete((*billModel)(nil)).
		Where("id = ?", billID.String()).
		Exec(ctx)
	return affected(res, err, khata.ErrBillNotFound)
}

func (s *Store) LatestBillNumber(ctx context.Context, prefix string) (string, error) {
	var models []billModel
	err := s.q.NewSelect(&models).
		Column("number").
		Where("number LIKE ?", prefix+"%").
		OrderExpr("number DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return "", err
	}
	if len(models) == 0 {
		return "", nil
	}
	return models[0].Number, nil
}

func (s *Store) SummarizeBills(ctx context.Context, q bill.Query) (bill.Totals, error) {
	var models []billModel
	if err := billQuery(s.q.NewSelect(&models).Column("total_amount", "gunny_bag_cost"), q).Scan(ctx); err != nil {
		return bill.Totals{}, err
	}

	t := bill.Totals{Amount: types.Zero(), GunnyBagCost: types.Zero()}
	for i := range models {
		t.Count++
		t.Amount = t.Amount.Add(models[i].TotalAmount)
		t.GunnyBagCost = t.GunnyBagCost.Add(models[i].GunnyBagCost)
	}
	return t, nil
}

// ==================== Bill Item Store ====================

func (s *Store) CreateBillItem(ctx context.Context, it *bill.Item) error {
	_, err := s.q.NewInsert(toBillItemModel(it)).Exec(ctx)
	return classify(err)
}

func (s *Store) GetBillItem(ctx context.Context, itemID id.BillItemID) (*bill.Item, error) {
	m := new(billItemModel)
	if err := s.q.NewSelect(m).Where("id = ?", itemID.String()).Scan(ctx); err != nil {
		if isNoRows(err) {
			return nil, khata.ErrBillItemNotFound
		}
		return nil, err
	}
	return fromBillItemModel(m)
}

func (s *Store) ListBillItems(ctx context.Context, billID id.BillID) ([]bill.Item, error) {
	var models []billItemModel
	err := s.q.NewSelect(&models).
		Where("bill_id = ?", billID.String()).
		OrderExpr("line ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]bill.Item, len(models))
	for i := range models {
		it, err := fromBillItemModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = *it
	}
	return result, nil
}

func (s *Store) UpdateBillItem(ctx context.Context, it *bill.Item) error {
	res, err := s.q.NewUpdate(toBillItemModel(it)).
		Column("number_of_bags", "weight_kg", "rate_per_kg", "total_price", "gunny_cost").
		WherePK().
		Exec(ctx)
	return affected(res, err, khata.ErrBillItemNotFound)
}

func (s *Store) DeleteBillItem(ctx context.Context, itemID id.BillItemID) error {
	res, err := s.q.NewDelete((*billItemModel)(nil)).
		Where("id = ?", itemID.String()).
		Exec(ctx)
	return affected(res, err, khata.ErrBillItemNotFound)
}

func (s *Store) DeleteBillItems(ctx context.Context, billID id.BillID) error {
	_, err := s.q.NewDelete((*billItemModel)(nil)).
		Where("bill_id = ?", billID.String()).
		Exec(ctx)
	return err
}

// ==================== Helpers ====================

func dateRange(q *sqlitedriver.SelectQuery, column string, from, to types.Date) *sqlitedriver.SelectQuery {
	if !from.IsZero() {
		q = q.Where(column+" >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where(column+" <= ?", to)
	}
	return q
}

func billQuery(q *sqlitedriver.SelectQuery, f bill.Query) *sqlitedriver.SelectQuery {
	if !f.ShopID.IsNil() {
		q = q.Where("shop_id = ?", f.ShopID.String())
	}
	return dateRange(q, "bill_date", f.From, f.To)
}

// paginate applies LIMIT/OFFSET. SQLite only accepts OFFSET after a LIMIT.
func paginate(q *sqlitedriver.SelectQuery, limit, offset int) *sqlitedriver.SelectQuery {
	switch {
	case limit > 0:
		q = q.Limit(limit)
	case offset > 0:
		q = q.Limit(math.MaxInt32)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	return q
}

func affected(res driver.Result, err, notFound error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// classify maps SQLite errors onto khata sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var sqlErr *msqlite.Error
	if !errors.As(err, &sqlErr) {
		return err
	}

	msg := sqlErr.Error()
	switch sqlErr.Code() & 0xff {
	case sqlite3.SQLITE_CONSTRAINT:
		switch {
		case strings.Contains(msg, "khata_shops.name"):
			return fmt.Errorf("%w: %s", khata.ErrShopNameTaken, msg)
		case strings.Contains(msg, "khata_bills.number"):
			return fmt.Errorf("%w: %s", khata.ErrBillNumberConflict, msg)
		case strings.Contains(msg, "FOREIGN KEY"):
			return fmt.Errorf("%w: %s", khata.ErrNotFound, msg)
		}
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return fmt.Errorf("%w: %w", khata.ErrTransactionFailed, err)
	}
	return err
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
