package khata

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xraph/khata/shop"
	"github.com/xraph/khata/types"
)

var minAmount = types.Cents(1)

// MaxReportDays bounds the day span of day-wise and statistics reports.
const MaxReportDays = 366

// ItemInput is the caller-supplied part of a bill item.
type ItemInput struct {
	NumberOfBags int             `json:"number_of_bags"`
	WeightKg     decimal.Decimal `json:"weight_kg"`
	RatePerKg    types.Money     `json:"rate_per_kg"`
}

func validateItem(field string, in ItemInput) error {
	var errs MultiError
	if in.NumberOfBags < 1 {
		errs.Add(ValidationError{Field: field + ".number_of_bags", Message: "must be at least 1"})
	}
	if in.WeightKg.LessThan(decimal.New(1, -2)) {
		errs.Add(ValidationError{Field: field + ".weight_kg", Message: "must be at least 0.01"})
	} else if !in.WeightKg.Equal(in.WeightKg.Truncate(2)) {
		errs.Add(ValidationError{Field: field + ".weight_kg", Message: "at most 2 decimal places"})
	}
	errs.Add(validateAmount(field+".rate_per_kg", in.RatePerKg))
	return errs.ErrorOrNil()
}

func validateItems(items []ItemInput) error {
	var errs MultiError
	for i, it := range items {
		errs.Add(validateItem("items["+strconv.Itoa(i)+"]", it))
	}
	return errs.ErrorOrNil()
}

// validateAmount checks a deposit, payment or rate: >= 0.01 with 2 places.
func validateAmount(field string, m types.Money) error {
	if m.LessThan(minAmount) {
		return ValidationError{Field: field, Message: "must be at least 0.01"}
	}
	if !m.HasScale(types.Scale) {
		return ValidationError{Field: field, Message: "at most 2 decimal places"}
	}
	return nil
}

// validateNonNegative checks the gunny bag cost and a shop's initial deposit.
func validateNonNegative(field string, m types.Money) error {
	if m.IsNegative() {
		return ValidationError{Field: field, Message: "must not be negative"}
	}
	if !m.HasScale(types.Scale) {
		return ValidationError{Field: field, Message: "at most 2 decimal places"}
	}
	return nil
}

func validateShopName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ValidationError{Field: "name", Message: "is required"}
	}
	if len(name) > 200 {
		return ValidationError{Field: "name", Message: "at most 200 characters"}
	}
	return nil
}

func validateContact(contact string) error {
	if len(contact) > shop.MaxContactLength {
		return ValidationError{Field: "contact_number", Message: "at most 15 characters"}
	}
	return nil
}

func validateBillLimit(limit int) error {
	if limit < 1 {
		return ValidationError{Field: "bill_limit", Message: "must be at least 1"}
	}
	return nil
}

func validateRange(from, to types.Date) error {
	if from.After(to) {
		return ValidationError{Field: "start_date", Message: "must not be after end_date"}
	}
	return nil
}

// validateReportRange is validateRange plus the MaxReportDays cap, for
// reports that build one row per day.
func validateReportRange(from, to types.Date) error {
	if err := validateRange(from, to); err != nil {
		return err
	}
	if to.After(from.AddDays(MaxReportDays - 1)) {
		return ValidationError{Field: "end_date", Message: "range must not exceed " + strconv.Itoa(MaxReportDays) + " days"}
	}
	return nil
}
