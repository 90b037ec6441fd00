// Package postgres implements store.Store on PostgreSQL. Records go
// through GORM; schema migrations run on a grove pgdriver connection.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xraph/grove"
	"github.com/xraph/grove/driver"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/drivers/pgdriver/pgmigrate"
	"github.com/xraph/grove/migrate"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

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

// Store implements store.Store using PostgreSQL via GORM.
type Store struct {
	db   *gorm.DB
	gdb  *grove.DB
	inTx bool
}

// New creates a new PostgreSQL store on an open GORM connection. gdb is
// the grove handle migrations run on; it may be nil when the schema is
// managed elsewhere.
func New(db *gorm.DB, gdb *grove.DB) *Store {
	return &Store{db: db, gdb: gdb}
}

// Open connects to dsn and returns a store.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(gormpg.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("khata/postgres: open: %w", err)
	}

	pg := pgdriver.New()
	if err := pg.Open(context.Background(), dsn, driver.WithPoolSize(2)); err != nil {
		if sqlDB, derr := db.DB(); derr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("khata/postgres: open grove: %w", err)
	}
	gdb, err := grove.Open(pg)
	if err != nil {
		_ = pg.Close()
		return nil, fmt.Errorf("khata/postgres: open grove: %w", err)
	}
	return New(db, gdb), nil
}

// DB returns the underlying GORM handle for direct access.
func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Grove returns the grove handle used for migrations, or nil.
func (s *Store) Grove() *grove.DB { return s.gdb }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	if s.gdb == nil {
		return fmt.Errorf("%w: khata/postgres: no grove connection", khata.ErrMigrationFailed)
	}
	orch := migrate.NewOrchestrator(pgmigrate.New(pgdriver.Unwrap(s.gdb)), Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: khata/postgres: %w", khata.ErrMigrationFailed, err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.inTx {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	err = sqlDB.Close()
	if s.gdb != nil {
		err = errors.Join(err, s.gdb.Close())
	}
	return err
}

// RunInTx runs fn in a database transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx khatastore.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &Store{db: tx, gdb: s.gdb, inTx: true})
	})
	return classify(err)
}

// ==================== Settings Store ====================

func (s *Store) GetSettings(ctx context.Context) (*settings.Settings, error) {
	m := new(settingsModel)
	err := s.conn(ctx).Where("id = ?", settingsRowID).First(m).Error
	if err != nil {
		if isNoRows(err) {
			return nil, khata.ErrNotFound
		}
		return nil, err
	}
	return fromSettingsModel(m), nil
}

func (s *Store) SaveSettings(ctx context.Context, set *settings.Settings) error {
	m := toSettingsModel(set)
	return s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"gunny_bag_cost", "updated_at"}),
	}).Create(m).Error
}

// ==================== Shop Store ====================

func (s *Store) CreateShop(ctx context.Context, sh *shop.Shop) error {
	return classify(s.conn(ctx).Create(toShopModel(sh)).Error)
}

func (s *Store) GetShop(ctx context.Context, shopID id.ShopID) (*shop.Shop, error) {
	return s.findShop(s.conn(ctx).Where("id = ?", shopID.String()))
}

func (s *Store) GetShopByName(ctx context.Context, name string) (*shop.Shop, error) {
	return s.findShop(s.conn(ctx).Where("name = ?", name))
}

// LockShop reads the shop with SELECT ... FOR UPDATE. Outside a transaction
// the lock is released as soon as the statement completes.
func (s *Store) LockShop(ctx context.Context, shopID id.ShopID) (*shop.Shop, error) {
	return s.findShop(s.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", shopID.String()))
}

func (s *Store) findShop(q *gorm.DB) (*shop.Shop, error) {
	m := new(shopModel)
	if err := q.First(m).Error; err != nil {
		if isNoRows(err) {
			return nil, khata.ErrShopNotFound
		}
		return nil, err
	}
	return fromShopModel(m)
}

func (s *Store) ListShops(ctx context.Context, opts shop.ListOpts) ([]*shop.Shop, error) {
	var models []shopModel
	q := s.conn(ctx).Model(&shopModel{})
	if opts.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	q = paginate(q.Order("created_at DESC").Order("id DESC"), opts.Limit, opts.Offset)

	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}

	result := make([]*shop.Shop, 0, len(models))
	for i := range models {
		sh, err := fromShopModel(&models[i])
		if err != nil {
			return nil, err
		}
		result = append(result, sh)
	}
	return result, nil
}

func (s *Store) UpdateShop(ctx context.Context, sh *shop.Shop) error {
	res := s.conn(ctx).Model(&shopModel{ID: sh.ID.String()}).
		Select("name", "address", "contact_number", "bill_limit", "is_active", "updated_at").
		Updates(toShopModel(sh))
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return khata.ErrShopNotFound
	}
	return nil
}

// DeleteShop removes the shop; foreign keys cascade to its records.
func (s *Store) DeleteShop(ctx context.Context, shopID id.ShopID) error {
	res := s.conn(ctx).Where("id = ?", shopID.String()).Delete(&shopModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return khata.ErrShopNotFound
	}
	return nil
}

// ==================== Deposit Store ====================

func (s *Store) CreateDeposit(ctx context.Context, d *deposit.Deposit) error {
	return classify(s.conn(ctx).Create(toDepositModel(d)).Error)
}

func (s *Store) ListDeposits(ctx context.Context, shopID id.ShopID, opts deposit.ListOpts) ([]*deposit.Deposit, error) {
	var models []depositModel
	q := s.conn(ctx).Model(&depositModel{}).Where("shop_id = ?", shopID.String())
	q = dateRange(q, "deposit_date", opts.From, opts.To)
	q = paginate(q.Order("deposit_date DESC").Order("created_at DESC"), opts.Limit, opts.Offset)

	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}

	result := make([]*deposit.Deposit, 0, len(models))
	for i := range models {
		d, err := fromDepositModel(&models[i])
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, nil
}

func (s *Store) DepositTotal(ctx context.Context, shopID id.ShopID) (types.Money, error) {
	q := s.conn(ctx).Model(&depositModel{}).Select("COALESCE(SUM(amount), 0)")
	if !shopID.IsNil() {
		q = q.Where("shop_id = ?", shopID.String())
	}
	return sumOf(q)
}

// ==================== Payment Store ====================

func (s *Store) CreatePayment(ctx context.Context, p *payment.Payment) error {
	return classify(s.conn(ctx).Create(toPaymentModel(p)).Error)
}

func (s *Store) ListPayments(ctx context.Context, shopID id.ShopID, opts payment.ListOpts) ([]*payment.Payment, error) {
	var models []paymentModel
	q := s.conn(ctx).Model(&paymentModel{}).Where("shop_id = ?", shopID.String())
	q = dateRange(q, "payment_date", opts.From, opts.To)
	q = paginate(q.Order("payment_date DESC").Order("created_at DESC"), opts.Limit, opts.Offset)

	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}

	result := make([]*payment.Payment, 0, len(models))
	for i := range models {
		p, err := fromPaymentModel(&models[i])
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}

func (s *Store) PaymentTotal(ctx context.Context, shopID id.ShopID, upTo types.Date) (types.Money, error) {
	q := s.conn(ctx).Model(&paymentModel{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("shop_id = ?", shopID.String())
	q = dateRange(q, "payment_date", types.Date{}, upTo)
	return sumOf(q)
}

// ==================== Bill Store ====================

func (s *Store) CreateBill(ctx context.Context, b *bill.Bill) error {
	return classify(s.conn(ctx).Create(toBillModel(b)).Error)
}

func (s *Store) GetBill(ctx context.Context, billID id.BillID) (*bill.Bill, error) {
	return s.findBill(ctx, s.conn(ctx).Where("id = ?", billID.String()))
}

func (s *Store) GetBillByNumber(ctx context.Context, number string) (*bill.Bill, error) {
	return s.findBill(ctx, s.conn(ctx).Where("number = ?", number))
}

func (s *Store) findBill(ctx context.Context, q *gorm.DB) (*bill.Bill, error) {
	m := new(billModel)
	if err := q.First(m).Error; err != nil {
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
	q := billQuery(s.conn(ctx).Model(&billModel{}), opts.Query)
	q = paginate(q.Order("bill_date DESC").Order("number DESC"), opts.Limit, opts.Offset)

	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}

	result := make([]*bill.Bill, 0, len(models))
	for i := range models {
		b, err := fromBillModel(&models[i])
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, nil
}

func (s *Store) UpdateBill(ctx context.Context, b *bill.Bill) error {
	res := s.conn(ctx).Model(&billModel{ID: b.ID.String()}).
		Select("bill_date", "subtotal", "gunny_bag_cost", "total_amount", "notes", "updated_at").
		Updates(toBillModel(b))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return khata.ErrBillNotFound
	}
	return nil
}

// DeleteBill removes the bill; its items cascade.
func (s *Store) DeleteBill(ctx context.Context, billID id.BillID) error {
	res := s.conn(ctx).Where("id = ?", billID.String()).Delete(&billModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return khata.ErrBillNotFound
	}
	return nil
}

func (s *Store) LatestBillNumber(ctx context.Context, prefix string) (string, error) {
	var numbers []string
	err := s.conn(ctx).Model(&billModel{}).
		Where("number LIKE ?", prefix+"%").
		Order("number DESC").
		Limit(1).
		Pluck("number", &numbers).Error
	if err != nil {
		return "", err
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}

func (s *Store) SummarizeBills(ctx context.Context, q bill.Query) (bill.Totals, error) {
	t := bill.Totals{Amount: types.Zero(), GunnyBagCost: types.Zero()}
	row := billQuery(s.conn(ctx).Model(&billModel{}), q).
		Select("COUNT(*), COALESCE(SUM(total_amount), 0), COALESCE(SUM(gunny_bag_cost), 0)").
		Row()
	if err := row.Scan(&t.Count, &t.Amount, &t.GunnyBagCost); err != nil {
		return bill.Totals{}, err
	}
	return t, nil
}

// ==================== Bill Item Store ====================

func (s *Store) CreateBillItem(ctx context.Context, it *bill.Item) error {
	return classify(s.conn(ctx).Create(toBillItemModel(it)).Error)
}

func (s *Store) GetBillItem(ctx context.Context, itemID id.BillItemID) (*bill.Item, error) {
	m := new(billItemModel)
	err := s.conn(ctx).Where("id = ?", itemID.String()).First(m).Error
	if err != nil {
		if isNoRows(err) {
			return nil, khata.ErrBillItemNotFound
		}
		return nil, err
	}
	return fromBillItemModel(m)
}

func (s *Store) ListBillItems(ctx context.Context, billID id.BillID) ([]bill.Item, error) {
	var models []billItemModel
	err := s.conn(ctx).
		Where("bill_id = ?", billID.String()).
		Order("line ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	result := make([]bill.Item, 0, len(models))
	for i := range models {
		it, err := fromBillItemModel(&models[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *it)
	}
	return result, nil
}

func (s *Store) UpdateBillItem(ctx context.Context, it *bill.Item) error {
	res := s.conn(ctx).Model(&billItemModel{ID: it.ID.String()}).
		Select("number_of_bags", "weight_kg", "rate_per_kg", "total_price", "gunny_cost").
		Updates(toBillItemModel(it))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return khata.ErrBillItemNotFound
	}
	return nil
}

func (s *Store) DeleteBillItem(ctx context.Context, itemID id.BillItemID) error {
	res := s.conn(ctx).Where("id = ?", itemID.String()).Delete(&billItemModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return khata.ErrBillItemNotFound
	}
	return nil
}

func (s *Store) DeleteBillItems(ctx context.Context, billID id.BillID) error {
	return s.conn(ctx).Where("bill_id = ?", billID.String()).Delete(&billItemModel{}).Error
}

// ==================== Helpers ====================

func billQuery(q *gorm.DB, bq bill.Query) *gorm.DB {
	if !bq.ShopID.IsNil() {
		q = q.Where("shop_id = ?", bq.ShopID.String())
	}
	return dateRange(q, "bill_date", bq.From, bq.To)
}

func dateRange(q *gorm.DB, column string, from, to types.Date) *gorm.DB {
	if !from.IsZero() {
		q = q.Where(column+" >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where(column+" <= ?", to)
	}
	return q
}

func paginate(q *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	return q
}

func sumOf(q *gorm.DB) (types.Money, error) {
	total := types.Zero()
	if err := q.Row().Scan(&total); err != nil {
		return types.Zero(), err
	}
	return total, nil
}

// classify maps PostgreSQL errors onto khata sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case "23505": // unique_violation
		switch pgErr.TableName {
		case "khata_shops":
			return fmt.Errorf("%w: %s", khata.ErrShopNameTaken, pgErr.Detail)
		case "khata_bills":
			return fmt.Errorf("%w: %s", khata.ErrBillNumberConflict, pgErr.Detail)
		}
	case "23503": // foreign_key_violation
		if pgErr.TableName == "khata_bill_items" {
			return khata.ErrBillNotFound
		}
		return khata.ErrShopNotFound
	case "40001", "40P01": // serialization_failure, deadlock_detected
		return fmt.Errorf("%w: %w", khata.ErrTransactionFailed, err)
	}
	return err
}

func isNoRows(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
