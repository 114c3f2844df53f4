package domain

import (
	"strings"
	"time"

	"github.com/kevin07696/subs-tracker/pkg/timeutil"
	"github.com/shopspring/decimal"
)

// Cycle is the billing periodicity of a subscription
type Cycle string

const (
	CycleMonthly   Cycle = "monthly"
	CycleQuarterly Cycle = "quarterly"
	CycleYearly    Cycle = "yearly"
)

// Cycles lists every supported billing cycle
var Cycles = []Cycle{CycleMonthly, CycleQuarterly, CycleYearly}

// ParseCycle accepts the canonical names in any case, plus the legacy
// MENSUAL/TRIMESTRAL/ANUAL values found in imported data. It is meant for
// caller input, so a bad value is a validation error.
func ParseCycle(s string) (Cycle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monthly", "mensual":
		return CycleMonthly, nil
	case "quarterly", "trimestral":
		return CycleQuarterly, nil
	case "yearly", "annual", "anual":
		return CycleYearly, nil
	}
	return "", InvalidCycleInput(s)
}

// Validate returns ErrUnknownCycle for anything but the three known cycles
func (c Cycle) Validate() error {
	_, err := c.months()
	return err
}

func (c Cycle) months() (int, error) {
	switch c {
	case CycleMonthly:
		return 1, nil
	case CycleQuarterly:
		return 3, nil
	case CycleYearly:
		return 12, nil
	}
	return 0, ErrUnknownCycle.WithDetail("cycle", string(c))
}

// AddPeriods moves date forward by n billing periods. Month arithmetic is
// calendar-correct: a day that does not exist in the target month is clamped
// to that month's last day (Jan 31 + 1 month = Feb 28/29).
func (c Cycle) AddPeriods(date time.Time, n int) (time.Time, error) {
	months, err := c.months()
	if err != nil {
		return time.Time{}, err
	}
	return addMonthsClamped(timeutil.CalendarDate(date), months*n), nil
}

// ElapsedPeriods counts whole billing periods completed between from and to.
// A month is complete once to's day-of-month reaches from's. Returns 0 when
// to is before from.
func (c Cycle) ElapsedPeriods(from, to time.Time) (int, error) {
	months, err := c.months()
	if err != nil {
		return 0, err
	}
	from, to = timeutil.CalendarDate(from), timeutil.CalendarDate(to)
	if to.Before(from) {
		return 0, nil
	}
	return monthsBetween(from, to) / months, nil
}

// MonthlyEquivalent normalises a per-cycle price to a per-month figure.
// The result is not rounded, but quarterly and yearly prices are divided at
// decimal.DivisionPrecision digits, so 10/3 multiplied back by 3 gives
// 9.9999999999999999. Round before presenting or comparing totals.
func (c Cycle) MonthlyEquivalent(price decimal.Decimal) (decimal.Decimal, error) {
	months, err := c.months()
	if err != nil {
		return decimal.Zero, err
	}
	if months == 1 {
		return price, nil
	}
	return price.Div(decimal.NewFromInt(int64(months))), nil
}

// addMonthsClamped adds months without time.AddDate's overflow into the next month
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	target := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, time.UTC)

	lastDay := timeutil.DaysInMonth(target.Year(), target.Month())
	if day > lastDay {
		day = lastDay
	}
	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, time.UTC)
}

// monthsBetween assumes from <= to
func monthsBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()

	months := (ty-fy)*12 + int(tm-fm)
	if td < fd {
		months--
	}
	return months
}
