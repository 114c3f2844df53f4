package billing

import (
	"time"

	"github.com/kevin07696/subs-tracker/internal/domain"
	"github.com/kevin07696/subs-tracker/pkg/timeutil"
)

// AdvanceRenewal returns a copy of sub whose next renewal date has moved
// forward by periodsPaid billing periods. It trusts the caller's period count
// and does not look at whether the date is stale.
func AdvanceRenewal(sub domain.Subscription, periodsPaid int) (domain.Subscription, error) {
	if periodsPaid < 1 {
		return sub, domain.ErrValidationFailed.WithDetail("periods_covered", periodsPaid)
	}

	next, err := sub.Cycle.AddPeriods(sub.NextRenewalDate, periodsPaid)
	if err != nil {
		return sub, err
	}
	return sub.WithNextRenewal(next), nil
}

// CatchUp advances renewal one period at a time while it is strictly before
// today. Running it on an already current date returns that date unchanged.
func CatchUp(renewal time.Time, cycle domain.Cycle, today time.Time) (time.Time, error) {
	if today.IsZero() {
		return time.Time{}, domain.ErrInvalidReferenceDate
	}
	if err := cycle.Validate(); err != nil {
		return time.Time{}, err
	}

	today = timeutil.CalendarDate(today)
	current := timeutil.CalendarDate(renewal)
	for current.Before(today) {
		next, err := cycle.AddPeriods(current, 1)
		if err != nil {
			return time.Time{}, err
		}
		current = next
	}
	return current, nil
}

// InitialRenewalDate computes the renewal date stored when a subscription is
// created: the first payment date, caught up so it is not in the past.
func InitialRenewalDate(firstPayment time.Time, cycle domain.Cycle, today time.Time) (time.Time, error) {
	if firstPayment.IsZero() {
		return time.Time{}, domain.ErrValidationMissingField.WithDetail("field", "first_payment_date")
	}
	return CatchUp(firstPayment, cycle, today)
}

// IsStale reports whether the subscription's renewal date is before today,
// meaning a charge is due and has not been recorded yet.
func IsStale(sub domain.Subscription, today time.Time) bool {
	return timeutil.CalendarDate(sub.NextRenewalDate).Before(timeutil.CalendarDate(today))
}

// RenewalState is how urgent a subscription's next renewal is
type RenewalState string

const (
	RenewalFirstPaymentPending RenewalState = "first_payment_pending"
	RenewalOverdue             RenewalState = "overdue"
	RenewalDueToday            RenewalState = "due_today"
	RenewalDueSoon             RenewalState = "due_soon"
	RenewalScheduled           RenewalState = "scheduled"
)

// DueSoonDays is the window, in days, in which a renewal counts as due soon
const DueSoonDays = 7

// RenewalOutlook is the renewal urgency of one subscription as of a date
type RenewalOutlook struct {
	State RenewalState
	// DaysUntil is negative when the renewal date has passed
	DaysUntil int
}

// ClassifyRenewal reports how far away the next renewal is. A renewal still
// sitting on the activation date that has arrived means the very first
// payment has not been recorded yet.
func ClassifyRenewal(sub domain.Subscription, today time.Time) (RenewalOutlook, error) {
	if today.IsZero() {
		return RenewalOutlook{}, domain.ErrInvalidReferenceDate
	}

	today = timeutil.CalendarDate(today)
	renewal := timeutil.CalendarDate(sub.NextRenewalDate)
	activation := timeutil.CalendarDate(sub.ActivationDate)
	days := daysBetween(today, renewal)

	var state RenewalState
	switch {
	case renewal.Equal(activation) && !renewal.After(today):
		state = RenewalFirstPaymentPending
	case days < 0:
		state = RenewalOverdue
	case days == 0:
		state = RenewalDueToday
	case days <= DueSoonDays:
		state = RenewalDueSoon
	default:
		state = RenewalScheduled
	}
	return RenewalOutlook{State: state, DaysUntil: days}, nil
}

// daysBetween counts calendar days from a to b; both are UTC midnights
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
