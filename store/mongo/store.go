// Package mongo implements store.Store on MongoDB. Transactions need a
// replica set or sharded cluster.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

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

// Collection name constants.
const (
	colSettings  = "khata_settings"
	colShops     = "khata_shops"
	colDeposits  = "khata_deposits"
	colPayments  = "khata_payments"
	colBills     = "khata_bills"
	colBillItems = "khata_bill_items"
)

// compile-time interface check
var _ khatastore.Store = (*Store)(nil)

// Store implements store.Store using the MongoDB Go driver.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	inTx   bool
}

// New creates a store on database name of client.
func New(client *mongo.Client, name string) *Store {
	return &Store{client: client, db: client.Database(name)}
}

// Open connects to uri and returns a store on database name.
func Open(uri, name string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("khata/mongo: connect: %w", err)
	}
	return New(client, name), nil
}

// DB returns the underlying database for direct access.
func (s *Store) DB() *mongo.Database { return s.db }

func (s *Store) col(name string) *mongo.Collection { return s.db.Collection(name) }

// Migrate creates indexes for all khata collections.
func (s *Store) Migrate(ctx context.Context) error {
	for col, models := range migrationIndexes() {
		if _, err := s.col(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("%w: khata/mongo: %s indexes: %w", khata.ErrMigrationFailed, col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close() error {
	if s.inTx {
		return nil
	}
	return s.client.Disconnect(context.Background())
}

// RunInTx runs fn in a multi-document transaction. The driver retries fn on
// transient transaction errors, so fn may run more than once.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx khatastore.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("khata/mongo: start session: %w", err)
	}
	defer sess.EndSession(ctx)

	tx := &Store{client: s.client, db: s.db, inTx: true}
	_, err = sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx, tx)
	})
	return classify(err, nil)
}

// ==================== Settings Store ====================

func (s *Store) GetSettings(ctx context.Context) (*settings.Settings, error) {
	var m settingsModel
	err := s.col(colSettings).FindOne(ctx, bson.M{"_id": settingsDocID}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, khata.ErrNotFound
		}
		return nil, fmt.Errorf("khata/mongo: get settings: %w", err)
	}
	return fromSettingsModel(&m)
}

func (s *Store) SaveSettings(ctx context.Context, set *settings.Settings) error {
	m, err := toSettingsModel(set)
	if err != nil {
		return err
	}
	_, err = s.col(colSettings).ReplaceOne(ctx, bson.M{"_id": settingsDocID}, m, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("khata/mongo: save settings: %w", err)
	}
	return nil
}

// ==================== Shop Store ====================

func (s *Store) CreateShop(ctx context.Context, sh *shop.Shop) error {
	m, err := toShopModel(sh)
	if err != nil {
		return err
	}
	if _, err := s.col(colShops).InsertOne(ctx, m); err != nil {
		return classify(err, khata.ErrShopNameTaken)
	}
	return nil
}

func (s *Store) GetShop(ctx context.Context, shopID id.ShopID) (*shop.Shop, error) {
	return s.findShop(ctx, bson.M{"_id": shopID.String()})
}

func (s *Store) GetShopByName(ctx context.Context, name string) (*shop.Shop, error) {
	return s.findShop(ctx, bson.M{"name": name})
}

// LockShop bumps the shop's lock_version inside the transaction, so a
// concurrent transaction touching the same shop hits a write conflict and
// is retried. Outside a transaction it is a plain read.
func (s *Store) LockShop(ctx context.Context, shopID id.ShopID) (*shop.Shop, error) {
	if !s.inTx {
		return s.GetShop(ctx, shopID)
	}

	var m shopModel
	err := s.col(colShops).FindOneAndUpdate(ctx,
		bson.M{"_id": shopID.String()},
		bson.M{"$inc": bson.M{"lock_version": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, khata.ErrShopNotFound
		}
		return nil, classify(err, nil)
	}
	return fromShopModel(&m)
}

func (s *Store) findShop(ctx context.Context, filter bson.M) (*shop.Shop, error) {
	var m shopModel
	if err := s.col(colShops).FindOne(ctx, filter).Decode(&m); err != nil {
		if isNoDocuments(err) {
			return nil, khata.ErrShopNotFound
		}
		return nil, fmt.Errorf("khata/mongo: get shop: %w", err)
	}
	return fromShopModel(&m)
}

func (s *Store) ListShops(ctx context.Context, opts shop.ListOpts) ([]*shop.Shop, error) {
	filter := bson.M{}
	if opts.ActiveOnly {
		filter["is_active"] = true
	}

	var models []shopModel
	findOpts := paged(options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}), opts.Limit, opts.Offset)
	if err := s.findAll(ctx, colShops, filter, findOpts, &models); err != nil {
		return nil, fmt.Errorf("khata/mongo: list shops: %w", err)
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
	res, err := s.col(colShops).UpdateOne(ctx, bson.M{"_id": sh.ID.String()}, bson.M{"$set": bson.M{
		"name":           sh.Name,
		"address":        sh.Address,
		"contact_number": sh.ContactNumber,
		"bill_limit":     sh.BillLimit,
		"is_active":      sh.IsActive,
		"updated_at":     sh.UpdatedAt,
	}})
	if err != nil {
		return classify(err, khata.ErrShopNameTaken)
	}
	if res.MatchedCount == 0 {
		return khata.ErrShopNotFound
	}
	return nil
}

// DeleteShop removes the shop with its deposits, payments, bills and items.
// Run it inside RunInTx for an atomic cascade.
func (s *Store) DeleteShop(ctx context.Context, shopID id.ShopID) error {
	res, err := s.col(colShops).DeleteOne(ctx, bson.M{"_id": shopID.String()})
	if err != nil {
		return fmt.Errorf("khata/mongo: delete shop: %w", err)
	}
	if res.DeletedCount == 0 {
		return khata.ErrShopNotFound
	}

	byShop := bson.M{"shop_id": shopID.String()}
	billIDs, err := s.billIDs(ctx, byShop)
	if err != nil {
		return err
	}
	if len(billIDs) > 0 {
		if _, err := s.col(colBillItems).DeleteMany(ctx, bson.M{"bill_id": bson.M{"$in": billIDs}}); err != nil {
			return fmt.Errorf("khata/mongo: delete shop items: %w", err)
		}
	}
	for _, col := range []string{colBills, colDeposits, colPayments} {
		if _, err := s.col(col).DeleteMany(ctx, byShop); err != nil {
			return fmt.Errorf("khata/mongo: delete shop %s: %w", col, err)
		}
	}
	return nil
}

// ==================== Deposit Store ====================

func (s *Store) CreateDeposit(ctx context.Context, d *deposit.Deposit) error {
	m, err := toDepositModel(d)
	if err != nil {
		return err
	}
	if _, err := s.col(colDeposits).InsertOne(ctx, m); err != nil {
		return fmt.Errorf("khata/mongo: create deposit: %w", err)
	}
	return nil
}

func (s *Store) ListDeposits(ctx context.Context, shopID id.ShopID, opts deposit.ListOpts) ([]*deposit.Deposit, error) {
	models, err := s.listEntries(ctx, colDeposits, shopID, opts.From, opts.To, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("khata/mongo: list deposits: %w", err)
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
	filter := bson.M{}
	if !shopID.IsNil() {
		filter["shop_id"] = shopID.String()
	}
	return s.sum(ctx, colDeposits, filter)
}

// ==================== Payment Store ====================

func (s *Store) CreatePayment(ctx context.Context, p *payment.Payment) error {
	m, err := toPaymentModel(p)
	if err != nil {
		return err
	}
	if _, err := s.col(colPayments).InsertOne(ctx, m); err != nil {
		return fmt.Errorf("khata/mongo: create payment: %w", err)
	}
	return nil
}

func (s *Store) ListPayments(ctx context.Context, shopID id.ShopID, opts payment.ListOpts) ([]*payment.Payment, error) {
	models, err := s.listEntries(ctx, colPayments, shopID, opts.From, opts.To, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("khata/mongo: list payments: %w", err)
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
	filter := bson.M{"shop_id": shopID.String()}
	addDateRange(filter, "date", types.Date{}, upTo)
	return s.sum(ctx, colPayments, filter)
}

func (s *Store) listEntries(ctx context.Context, col string, shopID id.ShopID, from, to types.Date, limit, offset int) ([]entryModel, error) {
	filter := bson.M{"shop_id": shopID.String()}
	addDateRange(filter, "date", from, to)

	var models []entryModel
	findOpts := paged(options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}}), limit, offset)
	if err := s.findAll(ctx, col, filter, findOpts, &models); err != nil {
		return nil, err
	}
	return models, nil
}

// ==================== Bill Store ====================

func (s *Store) CreateBill(ctx context.Context, b *bill.Bill) error {
	m, err := toBillModel(b)
	if err != nil {
		return err
	}
	if _, err := s.col(colBills).InsertOne(ctx, m); err != nil {
		return classify(err, khata.ErrBillNumberConflict)
	}
	return nil
}

func (s *Store) GetBill(ctx context.Context, billID id.BillID) (*bill.Bill, error) {
	return s.findBill(ctx, bson.M{"_id": billID.String()})
}

func (s *Store) GetBillByNumber(ctx context.Context, number string) (*bill.Bill, error) {
	return s.findBill(ctx, bson.M{"number": number})
}

func (s *Store) findBill(ctx context.Context, filter bson.M) (*bill.Bill, error) {
	var m billModel
	if err := s.col(colBills).FindOne(ctx, filter).Decode(&m); err != nil {
		if isNoDocuments(err) {
			return nil, khata.ErrBillNotFound
		}
		return nil, fmt.Errorf("khata/mongo: get bill: %w", err)
	}

	b, err := fromBillModel(&m)
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
	findOpts := paged(options.Find().SetSort(bson.D{{Key: "bill_date", Value: -1}, {Key: "number", Value: -1}}), opts.Limit, opts.Offset)
	if err := s.findAll(ctx, colBills, billFilter(opts.Query), findOpts, &models); err != nil {
		return nil, fmt.Errorf("khata/mongo: list bills: %w", err)
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
	m, err := toBillModel(b)
	if err != nil {
		return err
	}
	res, err := s.col(colBills).UpdateOne(ctx, bson.M{"_id": m.ID}, bson.M{"$set": bson.M{
		"bill_date":      m.BillDate,
		"subtotal":       m.Subtotal,
		"gunny_bag_cost": m.GunnyBagCost,
		"total_amount":   m.TotalAmount,
		"notes":          m.Notes,
		"updated_at":     m.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("khata/mongo: update bill: %w", err)
	}
	if res.MatchedCount == 0 {
		return khata.ErrBillNotFound
	}
	return nil
}

func (s *Store) DeleteBill(ctx context.Context, billID id.BillID) error {
	res, err := s.col(colBills).DeleteOne(ctx, bson.M{"_id": billID.String()})
	if err != nil {
		return fmt.Errorf("khata/mongo: delete bill: %w", err)
	}
	if res.DeletedCount == 0 {
		return khata.ErrBillNotFound
	}
	return s.DeleteBillItems(ctx, billID)
}

func (s *Store) LatestBillNumber(ctx context.Context, prefix string) (string, error) {
	var m billModel
	err := s.col(colBills).FindOne(ctx,
		bson.M{"number": bson.M{"$regex": "^" + regexQuote(prefix)}},
		options.FindOne().SetSort(bson.D{{Key: "number", Value: -1}}).SetProjection(bson.M{"number": 1}),
	).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return "", nil
		}
		return "", fmt.Errorf("khata/mongo: latest bill number: %w", err)
	}
	return m.Number, nil
}

func (s *Store) SummarizeBills(ctx context.Context, q bill.Query) (bill.Totals, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: billFilter(q)}},
		{{Key: "$group", Value: bson.M{
			"_id":    nil,
			"count":  bson.M{"$sum": 1},
			"amount": bson.M{"$sum": "$total_amount"},
			"gunny":  bson.M{"$sum": "$gunny_bag_cost"},
		}}},
	}

	var rows []struct {
		Count  int             `bson:"count"`
		Amount bson.Decimal128 `bson:"amount"`
		Gunny  bson.Decimal128 `bson:"gunny"`
	}
	cur, err := s.col(colBills).Aggregate(ctx, pipeline)
	if err != nil {
		return bill.Totals{}, fmt.Errorf("khata/mongo: summarize bills: %w", err)
	}
	if err := cur.All(ctx, &rows); err != nil {
		return bill.Totals{}, fmt.Errorf("khata/mongo: summarize bills: %w", err)
	}

	t := bill.Totals{Amount: types.Zero(), GunnyBagCost: types.Zero()}
	if len(rows) == 0 {
		return t, nil
	}
	amounts, err := toMonies(rows[0].Amount, rows[0].Gunny)
	if err != nil {
		return bill.Totals{}, err
	}
	t.Count = rows[0].Count
	t.Amount = amounts[0]
	t.GunnyBagCost = amounts[1]
	return t, nil
}

func (s *Store) billIDs(ctx context.Context, filter bson.M) ([]string, error) {
	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := s.findAll(ctx, colBills, filter, options.Find().SetProjection(bson.M{"_id": 1}), &rows); err != nil {
		return nil, fmt.Errorf("khata/mongo: list bill ids: %w", err)
	}
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids, nil
}

// ==================== Bill Item Store ====================

func (s *Store) CreateBillItem(ctx context.Context, it *bill.Item) error {
	m, err := toBillItemModel(it)
	if err != nil {
		return err
	}
	if _, err := s.col(colBillItems).InsertOne(ctx, m); err != nil {
		return fmt.Errorf("khata/mongo: create bill item: %w", err)
	}
	return nil
}

func (s *Store) GetBillItem(ctx context.Context, itemID id.BillItemID) (*bill.Item, error) {
	var m billItemModel
	if err := s.col(colBillItems).FindOne(ctx, bson.M{"_id": itemID.String()}).Decode(&m); err != nil {
		if isNoDocuments(err) {
			return nil, khata.ErrBillItemNotFound
		}
		return nil, fmt.Errorf("khata/mongo: get bill item: %w", err)
	}
	return fromBillItemModel(&m)
}

func (s *Store) ListBillItems(ctx context.Context, billID id.BillID) ([]bill.Item, error) {
	var models []billItemModel
	findOpts := options.Find().SetSort(bson.D{{Key: "line", Value: 1}})
	if err := s.findAll(ctx, colBillItems, bson.M{"bill_id": billID.String()}, findOpts, &models); err != nil {
		return nil, fmt.Errorf("khata/mongo: list bill items: %w", err)
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
	m, err := toBillItemModel(it)
	if err != nil {
		return err
	}
	res, err := s.col(colBillItems).UpdateOne(ctx, bson.M{"_id": m.ID}, bson.M{"$set": bson.M{
		"number_of_bags": m.NumberOfBags,
		"weight_kg":      m.WeightKg,
		"rate_per_kg":    m.RatePerKg,
		"total_price":    m.TotalPrice,
		"gunny_cost":     m.GunnyCost,
	}})
	if err != nil {
		return fmt.Errorf("khata/mongo: update bill item: %w", err)
	}
	if res.MatchedCount == 0 {
		return khata.ErrBillItemNotFound
	}
	return nil
}

func (s *Store) DeleteBillItem(ctx context.Context, itemID id.BillItemID) error {
	res, err := s.col(colBillItems).DeleteOne(ctx, bson.M{"_id": itemID.String()})
	if err != nil {
		return fmt.Errorf("khata/mongo: delete bill item: %w", err)
	}
	if res.DeletedCount == 0 {
		return khata.ErrBillItemNotFound
	}
	return nil
}

func (s *Store) DeleteBillItems(ctx context.Context, billID id.BillID) error {
	if _, err := s.col(colBillItems).DeleteMany(ctx, bson.M{"bill_id": billID.String()}); err != nil {
		return fmt.Errorf("khata/mongo: delete bill items: %w", err)
	}
	return nil
}

// ==================== Helpers ====================

func (s *Store) findAll(ctx context.Context, col string, filter any, opts *options.FindOptionsBuilder, out any) error {
	cur, err := s.col(col).Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

// sum totals the Decimal128 amount field of matching documents server side.
func (s *Store) sum(ctx context.Context, col string, filter bson.M) (types.Money, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}}},
	}

	cur, err := s.col(col).Aggregate(ctx, pipeline)
	if err != nil {
		return types.Zero(), fmt.Errorf("khata/mongo: sum %s: %w", col, err)
	}
	var rows []struct {
		Total bson.Decimal128 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return types.Zero(), fmt.Errorf("khata/mongo: sum %s: %w", col, err)
	}
	if len(rows) == 0 {
		return types.Zero(), nil
	}
	return toMoney(rows[0].Total)
}

func billFilter(q bill.Query) bson.M {
	filter := bson.M{}
	if !q.ShopID.IsNil() {
		filter["shop_id"] = q.ShopID.String()
	}
	addDateRange(filter, "bill_date", q.From, q.To)
	return filter
}

// addDateRange filters field, which holds "YYYY-MM-DD" strings, to [from, to].
func addDateRange(filter bson.M, field string, from, to types.Date) {
	r := bson.M{}
	if !from.IsZero() {
		r["$gte"] = from.String()
	}
	if !to.IsZero() {
		r["$lte"] = to.String()
	}
	if len(r) > 0 {
		filter[field] = r
	}
}

func paged(opts *options.FindOptionsBuilder, limit, offset int) *options.FindOptionsBuilder {
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts = opts.SetSkip(int64(offset))
	}
	return opts
}

// regexQuote escapes the regex metacharacters that can appear in a bill
// number prefix.
func regexQuote(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '.', '+', '*', '?', '(', ')', '[', ']', '{', '}', '|', '^', '$', '\\':
			out = append(out, '\\', c)
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

// classify maps driver errors onto khata sentinels. dup is returned for
// duplicate key errors; nil leaves them unmapped.
func classify(err, dup error) error {
	if err == nil {
		return nil
	}
	if dup != nil && mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %w", dup, err)
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.HasErrorLabel("TransientTransactionError") {
		return fmt.Errorf("%w: %w", khata.ErrTransactionFailed, err)
	}
	return err
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all khata collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colShops: {
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colDeposits: {
			{Keys: bson.D{{Key: "shop_id", Value: 1}, {Key: "date", Value: -1}}},
		},
		colPayments: {
			{Keys: bson.D{{Key: "shop_id", Value: 1}, {Key: "date", Value: -1}}},
		},
		colBills: {
			{
				Keys:    bson.D{{Key: "number", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "shop_id", Value: 1}, {Key: "bill_date", Value: -1}}},
			{Keys: bson.D{{Key: "bill_date", Value: -1}}},
		},
		colBillItems: {
			{Keys: bson.D{{Key: "bill_id", Value: 1}, {Key: "line", Value: 1}}},
		},
	}
}
