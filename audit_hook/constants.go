package audithook

// Action constants for audit events.
const (
	// Shop actions
	ActionShopCreated = "shop.created"
	ActionShopUpdated = "shop.updated"
	ActionShopDeleted = "shop.deleted"

	// Money movement actions
	ActionDepositRecorded = "deposit.recorded"
	ActionPaymentRecorded = "payment.recorded"

	// Bill actions
	ActionBillCreated = "bill.created"
	ActionBillUpdated = "bill.updated"
	ActionBillDeleted = "bill.deleted"
	ActionBillRefused = "bill.refused"

	// Settings actions
	ActionSettingsUpdated = "settings.updated"
)

// Resource constants for audit events.
const (
	ResourceShop     = "shop"
	ResourceDeposit  = "deposit"
	ResourcePayment  = "payment"
	ResourceBill     = "bill"
	ResourceSettings = "settings"
)

// Category constants for audit events.
const (
	CategoryAccount = "account"
	CategoryCredit  = "credit"
	CategoryBilling = "billing"
	CategoryConfig  = "config"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
