// Package fixtures provides test data builders and helpers.
package fixtures

import (
	"time"

	"github.com/kevin07696/subs-tracker/pkg/timeutil"
	"github.com/shopspring/decimal"
)

// StringPtr returns a pointer to the given string.
func StringPtr(s string) *string {
	return &s
}

// BoolPtr returns a pointer to the given bool.
func BoolPtr(b bool) *bool {
	return &b
}

// TimePtr returns a pointer to the given time.Time.
func TimePtr(t time.Time) *time.Time {
	return &t
}

// DecimalPtr parses s and returns a pointer to it.
func DecimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// Day is a calendar date at UTC midnight.
func Day(year int, month time.Month, day int) time.Time {
	return timeutil.Date(year, month, day)
}
