package khata

import (
	"errors"
	"fmt"

	"github.com/xraph/khata/bill"
	"github.com/xraph/khata/types"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound     = errors.New("khata: not found")
	ErrInvalidInput = errors.New("khata: invalid input")

	// Shop errors
	ErrShopNotFound  = errors.New("khata: shop not found")
	ErrShopNameTaken = errors.New("khata: shop name already taken")

	// Bill errors
	ErrBillNotFound           = errors.New("khata: bill not found")
	ErrBillItemNotFound       = errors.New("khata: bill item not found")
	ErrBillNumberConflict     = errors.New("khata: bill number already issued")
	ErrBillSequenceExhausted  = bill.ErrSequenceExhausted
	ErrBillLocked             = errors.New("khata: bill can only be edited on its bill date")
	ErrBillNumberAttemptsUsed = errors.New("khata: could not assign a unique bill number")

	// Credit errors
	ErrCreditLimitExceeded = errors.New("khata: credit limit exceeded")
	ErrBillLimitReached    = errors.New("khata: bill limit reached")

	// Export errors
	ErrExportUnavailable = errors.New("khata: export format unavailable")

	// Store errors
	ErrStoreClosed       = errors.New("khata: store is closed")
	ErrTransactionFailed = errors.New("khata: transaction failed")
	ErrMigrationFailed   = errors.New("khata: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("khata: validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrInvalidInput) match any validation failure.
func (e ValidationError) Unwrap() error { return ErrInvalidInput }

// CreditLimitError carries the numbers behind a refused bill.
type CreditLimitError struct {
	Pending     types.Money
	CreditLimit types.Money
}

func (e *CreditLimitError) Error() string {
	return fmt.Sprintf("khata: credit limit exceeded: pending %s, limit %s", e.Pending, e.CreditLimit)
}

// Unwrap returns ErrCreditLimitExceeded.
func (e *CreditLimitError) Unwrap() error { return ErrCreditLimitExceeded }

// MultiError collects several validation failures.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "khata: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("khata: %d errors occurred (first: %v)", len(e.Errors), e.Errors[0])
}

// Unwrap exposes the collected errors to errors.Is / errors.As.
func (e MultiError) Unwrap() []error { return e.Errors }

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// ErrorOrNil returns nil when nothing was collected.
func (e MultiError) ErrorOrNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrShopNotFound) ||
		errors.Is(err, ErrBillNotFound) ||
		errors.Is(err, ErrBillItemNotFound)
}

// IsConflict returns true if the error reports a uniqueness or state conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrShopNameTaken) ||
		errors.Is(err, ErrBillNumberConflict) ||
		errors.Is(err, ErrBillLocked) ||
		errors.Is(err, ErrBillNumberAttemptsUsed) ||
		errors.Is(err, ErrBillSequenceExhausted)
}

// IsCreditError returns true if the error is an admission-gate refusal.
func IsCreditError(err error) bool {
	return errors.Is(err, ErrCreditLimitExceeded) ||
		errors.Is(err, ErrBillLimitReached)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrBillNumberConflict) ||
		errors.Is(err, ErrTransactionFailed)
}
