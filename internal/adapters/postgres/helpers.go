package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kevin07696/subs-tracker/internal/domain"
	"github.com/kevin07696/subs-tracker/internal/domain/ports"
	"github.com/kevin07696/subs-tracker/pkg/timeutil"
	"github.com/shopspring/decimal"
)

// nullText creates a pgtype.Text with empty string handling
func nullText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// dateValue converts a calendar date to pgtype.Date, zero time is NULL
func dateValue(t time.Time) pgtype.Date {
	if t.IsZero() {
		return pgtype.Date{Valid: false}
	}
	return pgtype.Date{Time: timeutil.StartOfDay(t), Valid: true}
}

// nullDate converts an optional calendar date
func nullDate(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{Valid: false}
	}
	return dateValue(*t)
}

// fromDate converts pgtype.Date to a calendar date, zero when NULL
func fromDate(d pgtype.Date) time.Time {
	if !d.Valid {
		return time.Time{}
	}
	return timeutil.StartOfDay(d.Time)
}

// fromNullDate converts pgtype.Date to an optional calendar date
func fromNullDate(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := timeutil.StartOfDay(d.Time)
	return &t
}

// decimalToNumeric converts decimal.Decimal to pgtype.Numeric
func decimalToNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	n := pgtype.Numeric{}
	if err := n.Scan(d.String()); err != nil {
		return n, fmt.Errorf("convert amount: %w", err)
	}
	return n, nil
}

// pgNumericToDecimal converts pgtype.Numeric to decimal.Decimal
func pgNumericToDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Zero, nil
	}
	var dec decimal.Decimal
	str, err := n.MarshalJSON()
	if err != nil {
		return dec, fmt.Errorf("marshal numeric: %w", err)
	}
	// Remove quotes from JSON string
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}
	return decimal.NewFromString(string(str))
}

// parseID validates an opaque id before it reaches the database
func parseID(field, id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, domain.ErrValidationFailed.WithDetail(field, id)
	}
	return parsed, nil
}

// executor picks the caller's transaction when given, the pool otherwise
func (b base) executor(db ports.DBTX) ports.DBTX {
	if db != nil {
		return db
	}
	return b.pool
}

// base is embedded by every repository
type base struct {
	pool ports.DBTX
}

// notFound maps pgx.ErrNoRows to the given domain error
func notFound(err error, target *domain.DomainError, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return target.WithDetail("id", id)
	}
	return domain.WrapError(domain.ErrorCodeDatabaseError, "query failed", err)
}
