package billing

import (
	"cmp"
	"slices"
	"strings"

	"github.com/kevin07696/subs-tracker/internal/domain"
	"github.com/shopspring/decimal"
)

// TopSubscriptionsLimit is how many subscriptions the ranking keeps
const TopSubscriptionsLimit = 3

var monthsPerYear = decimal.NewFromInt(12)

// SubscriptionWithContributions is one subscription and everything that
// co-funds it, as loaded from the store.
type SubscriptionWithContributions struct {
	Subscription  domain.Subscription
	Contributions []domain.Contribution
}

// MonthlyBreakdown is the current per-month obligation of one subscription
type MonthlyBreakdown struct {
	ServiceMonthly      decimal.Decimal `json:"service_monthly"`
	ContributorsMonthly decimal.Decimal `json:"contributors_monthly"`
	OwnerNetMonthly     decimal.Decimal `json:"owner_net_monthly"`
	SubscriptionID      string          `json:"subscription_id"`
	Name                string          `json:"name"`
	Category            domain.Category `json:"category"`
}

// SkippedSubscription records a subscription the report could not fold in
type SkippedSubscription struct {
	Err            error
	SubscriptionID string
	Name           string
}

// AggregateReport is the owner's cross-subscription rollup
type AggregateReport struct {
	CategoryTotals      map[domain.Category]decimal.Decimal
	TotalMonthlySpend   decimal.Decimal
	TotalMonthlySavings decimal.Decimal
	AnnualProjection    decimal.Decimal
	Top                 []MonthlyBreakdown
	Skipped             []SkippedSubscription
	Included            int
}

// ComputeMonthlyBreakdown normalises a subscription and its contributions to
// monthly figures. The owner's share is floored at zero: contributors paying
// more than the service costs never lowers the owner's other obligations.
func ComputeMonthlyBreakdown(sub domain.Subscription, contributions []domain.Contribution) (MonthlyBreakdown, error) {
	if err := sub.Cycle.Validate(); err != nil {
		return MonthlyBreakdown{}, domain.ErrUnknownCycle.
			WithDetail("subscription_id", sub.ID).
			WithDetail("cycle", string(sub.Cycle))
	}
	if !sub.IsComplete() {
		return MonthlyBreakdown{}, domain.ErrIncompleteSubscription.WithDetail("subscription_id", sub.ID)
	}

	service, err := sub.Cycle.MonthlyEquivalent(sub.Price)
	if err != nil {
		return MonthlyBreakdown{}, err
	}

	contributors := decimal.Zero
	for _, c := range contributions {
		monthly, err := sub.Cycle.MonthlyEquivalent(c.Amount)
		if err != nil {
			return MonthlyBreakdown{}, err
		}
		contributors = contributors.Add(monthly)
	}

	return MonthlyBreakdown{
		SubscriptionID:      sub.ID,
		Name:                sub.Name,
		Category:            sub.Category,
		ServiceMonthly:      service,
		ContributorsMonthly: contributors,
		OwnerNetMonthly:     decimal.Max(decimal.Zero, service.Sub(contributors)),
	}, nil
}

// ComputeAggregateReport folds every active subscription into monthly totals,
// per-category totals and a top-3 ranking. A subscription that fails
// validation is recorded in Skipped and the fold carries on with the rest.
// Subscriptions without a category count toward the totals only.
func ComputeAggregateReport(items []SubscriptionWithContributions) AggregateReport {
	report := AggregateReport{
		CategoryTotals:      make(map[domain.Category]decimal.Decimal),
		TotalMonthlySpend:   decimal.Zero,
		TotalMonthlySavings: decimal.Zero,
	}

	ranked := make([]MonthlyBreakdown, 0, len(items))
	for _, item := range items {
		sub := item.Subscription
		if !sub.Active {
			continue
		}

		breakdown, err := ComputeMonthlyBreakdown(sub, item.Contributions)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedSubscription{
				SubscriptionID: sub.ID,
				Name:           sub.Name,
				Err:            err,
			})
			continue
		}

		report.Included++
		report.TotalMonthlySpend = report.TotalMonthlySpend.Add(breakdown.OwnerNetMonthly)
		report.TotalMonthlySavings = report.TotalMonthlySavings.Add(breakdown.ContributorsMonthly)
		if sub.HasCategory() {
			current, ok := report.CategoryTotals[sub.Category]
			if !ok {
				current = decimal.Zero
			}
			report.CategoryTotals[sub.Category] = current.Add(breakdown.OwnerNetMonthly)
		}
		ranked = append(ranked, breakdown)
	}

	report.AnnualProjection = report.TotalMonthlySpend.Mul(monthsPerYear)
	report.Top = rankByOwnerNet(ranked, TopSubscriptionsLimit)
	return report
}

// rankByOwnerNet orders by owner net monthly cost descending, then by name.
// The sort is stable so identical keys keep their input order.
func rankByOwnerNet(rows []MonthlyBreakdown, limit int) []MonthlyBreakdown {
	slices.SortStableFunc(rows, func(a, b MonthlyBreakdown) int {
		if c := b.OwnerNetMonthly.Cmp(a.OwnerNetMonthly); c != 0 {
			return c
		}
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
