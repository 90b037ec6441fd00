// Package khata provides a credit ledger and billing engine for traders who
// sell to shops on credit.
//
// Khata is designed as a library, not a service. Import it directly into your
// Go application, or mount the api package on a gin router. It provides:
//
//   - Shops with deposits (credit issued) and payments (credit repaid)
//   - Bills made of line items priced per kg plus a per-bag gunny surcharge
//   - A credit-limit gate: a shop may owe up to five times its deposits
//   - Sequential daily bill numbers of the form BILL-YYYYMMDD-NNNN
//   - Day-wise ledgers, statistics and a dashboard overview
//   - PDF and XLSX bill and statistics exports via formatter plugins
//
// # Quick Start
//
// Create a khata instance with your preferred store:
//
//	import (
//	    "github.com/xraph/khata"
//	    "github.com/xraph/khata/store/postgres"
//	)
//
//	store, err := postgres.Open(databaseURL)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	k := khata.New(store)
//	if err := k.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer k.Stop()
//
// # Core Concepts
//
// A shop is opened with an initial deposit, which is recorded as its first
// deposit:
//
//	s, err := k.CreateShop(ctx, khata.ShopInput{
//	    Name:           "Sharma Traders",
//	    InitialDeposit: khata.Units(1000),
//	})
//
// Bills are admitted while the shop's pending amount (bills minus payments)
// is below its credit limit (deposits times five):
//
//	b, err := k.CreateBill(ctx, s.ID, khata.BillDraft{
//	    Items: []khata.ItemInput{
//	        {NumberOfBags: 3, WeightKg: decimal.NewFromInt(100), RatePerKg: khata.Units(20)},
//	    },
//	})
//	if errors.Is(err, khata.ErrCreditLimitExceeded) {
//	    // record a payment or a deposit first
//	}
//
// Item totals are exact: weight times rate, plus the number of bags times
// the gunny bag cost in force when the item was written. Every item change
// recomputes the bill in the same transaction.
//
// # Money
//
// All monetary values are exact decimals (types.Money). Sums over no rows are
// 0.00, never null.
//
// # TypeID
//
// All entities use TypeID for globally unique, type-safe identifiers:
//
//	shop_01h2xcejqtf2nbrexx3vqjhp41  // Shop ID
//	bill_01h2xcejqtf2nbrexx3vqjhp41  // Bill ID
//	dep_01h455vb4pex5vsknk084sn02q   // Deposit ID
package khata
