package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Money columns are numeric(10,2); booking hours are numeric(6,2).
const amountScale = 2

var (
	MaxAmount = decimal.RequireFromString("99999999.99")
	MaxHours  = decimal.RequireFromString("9999.99")
)

// checkAmount rejects values the money columns cannot hold exactly.
func checkAmount(field string, amount decimal.Decimal) error {
	if !amount.Equal(amount.Truncate(amountScale)) {
		return NewValidationError(field, "must have at most 2 decimal places", ErrInvalidAmount)
	}
	if amount.GreaterThan(MaxAmount) {
		return NewValidationError(field, "must not exceed "+MaxAmount.StringFixed(amountScale), ErrInvalidAmount)
	}
	return nil
}

// timestamp is the current UTC time at the microsecond precision Postgres keeps.
func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
