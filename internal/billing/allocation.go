package billing

import (
	"time"

	"github.com/kevin07696/subs-tracker/internal/domain"
	"github.com/kevin07696/subs-tracker/pkg/timeutil"
	"github.com/shopspring/decimal"
)

// Financials is the historical cost picture of one subscription as of a date
type Financials struct {
	GrossHistorical decimal.Decimal `json:"gross_historical"`
	TotalReceived   decimal.Decimal `json:"total_received"`
	NetHistorical   decimal.Decimal `json:"net_historical"`
	ElapsedPeriods  int             `json:"elapsed_periods"`
}

// IsBenefit reports whether contributors have paid more than the charges so far
func (f Financials) IsBenefit() bool {
	return f.NetHistorical.IsNegative()
}

// ComputeFinancials works out gross, received and net cost of a subscription
// from its activation date up to referenceDate.
//
// The first charge falls on the activation date itself, so a subscription
// activated on referenceDate has one elapsed period. Net cost is not floored:
// a negative value means contributors are ahead of the owner's charges.
func ComputeFinancials(sub domain.Subscription, contributions []domain.Contribution, referenceDate time.Time) (Financials, error) {
	if err := validateForComputation(sub, referenceDate); err != nil {
		return Financials{}, err
	}
	if !sub.IsComplete() {
		// Only reachable for inactive subscriptions; there is nothing to compute.
		return zeroFinancials(), nil
	}

	ref := timeutil.CalendarDate(referenceDate)
	activation := timeutil.CalendarDate(sub.ActivationDate)
	if ref.Before(activation) {
		return zeroFinancials(), nil
	}

	elapsed, err := sub.Cycle.ElapsedPeriods(activation, ref)
	if err != nil {
		return Financials{}, err
	}
	elapsed++

	gross := sub.Price.Mul(decimal.NewFromInt(int64(elapsed)))
	received := TotalReceived(contributions)

	return Financials{
		ElapsedPeriods:  elapsed,
		GrossHistorical: gross,
		TotalReceived:   received,
		NetHistorical:   gross.Sub(received),
	}, nil
}

// TotalReceived sums amount times periods covered over paid contributions
func TotalReceived(contributions []domain.Contribution) decimal.Decimal {
	total := decimal.Zero
	for _, c := range contributions {
		total = total.Add(c.Received())
	}
	return total
}

// validateForComputation checks the inputs shared by every per-subscription
// computation. An inactive record with missing fields is not an error.
func validateForComputation(sub domain.Subscription, referenceDate time.Time) error {
	if referenceDate.IsZero() {
		return domain.ErrInvalidReferenceDate
	}
	if err := sub.Cycle.Validate(); err != nil {
		return domain.ErrUnknownCycle.
			WithDetail("subscription_id", sub.ID).
			WithDetail("cycle", string(sub.Cycle))
	}
	if sub.Active && !sub.IsComplete() {
		return domain.ErrIncompleteSubscription.WithDetail("subscription_id", sub.ID)
	}
	return nil
}

func zeroFinancials() Financials {
	return Financials{
		GrossHistorical: decimal.Zero,
		TotalReceived:   decimal.Zero,
		NetHistorical:   decimal.Zero,
	}
}
