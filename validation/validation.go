// Package validation collects field violations for request payloads.
package validation

import (
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/diewo77/giardino/internal/apperr"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Err returns nil when there are no violations, otherwise a validation
// error carrying them.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return apperr.Validation("validation failed", v)
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func MaxLen(field, value string, max int, v Violations) {
	if len([]rune(value)) > max {
		v[field] = "too_long"
	}
}

// Email accepts an empty value; pair with Required when mandatory.
func Email(field, value string, v Violations) {
	if value == "" {
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		v[field] = "invalid_email"
	}
}

func PositiveDecimal(field string, val decimal.Decimal, v Violations) {
	if !val.IsPositive() {
		v[field] = "must_be_positive"
	}
}

func NonNegativeDecimal(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v[field] = "must_not_be_negative"
	}
}

// OneOf requires ok; enum types pass their Valid() result.
func OneOf(field string, ok bool, v Violations) {
	if !ok {
		v[field] = "invalid_value"
	}
}
