package billing

import (
	"errors"
	"testing"
	"time"

	"github.com/kevin07696/subs-tracker/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func monthlySub(price string, activation time.Time) domain.Subscription {
	return domain.Subscription{
		ID:             "sub-1",
		Name:           "Streaming",
		Price:          dec(price),
		Cycle:          domain.CycleMonthly,
		Active:         true,
		ActivationDate: activation,
	}
}

func paidContribution(amount string, paidOn time.Time, periods int) domain.Contribution {
	return domain.Contribution{
		Contributor:    domain.GuestContributor("Ana"),
		Amount:         dec(amount),
		PaidOn:         &paidOn,
		PeriodsCovered: periods,
	}
}

func assertDecimal(t *testing.T, expected string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(expected).Equal(got), "expected %s, got %s", expected, got)
}

func TestComputeFinancials_ElapsedAndGross(t *testing.T) {
	sub := monthlySub("18.00", day(2024, 1, 15))

	f, err := ComputeFinancials(sub, nil, day(2024, 4, 15))
	require.NoError(t, err)

	assert.Equal(t, 4, f.ElapsedPeriods)
	assertDecimal(t, "72.00", f.GrossHistorical)
	assertDecimal(t, "0", f.TotalReceived)
	assertDecimal(t, "72.00", f.NetHistorical)
	assert.False(t, f.IsBenefit())
}

func TestComputeFinancials_ContributionsReduceNet(t *testing.T) {
	sub := monthlySub("18.00", day(2024, 1, 15))
	contributions := []domain.Contribution{
		paidContribution("9.00", day(2024, 1, 15), 3),
	}

	f, err := ComputeFinancials(sub, contributions, day(2024, 4, 15))
	require.NoError(t, err)

	assertDecimal(t, "27.00", f.TotalReceived)
	assertDecimal(t, "45.00", f.NetHistorical)
}

func TestComputeFinancials_UnpaidPledgesIgnored(t *testing.T) {
	sub := monthlySub("18.00", day(2024, 1, 15))
	contributions := []domain.Contribution{
		{Contributor: domain.GuestContributor("Luis"), Amount: dec("9.00")},
		paidContribution("4.50", day(2024, 2, 1), 2),
	}

	f, err := ComputeFinancials(sub, contributions, day(2024, 4, 15))
	require.NoError(t, err)

	assertDecimal(t, "9.00", f.TotalReceived)
	assertDecimal(t, "63.00", f.NetHistorical)
}

func TestComputeFinancials_ActivatedToday(t *testing.T) {
	sub := monthlySub("18.00", day(2024, 4, 15))

	f, err := ComputeFinancials(sub, nil, day(2024, 4, 15))
	require.NoError(t, err)

	assert.Equal(t, 1, f.ElapsedPeriods)
	assertDecimal(t, "18.00", f.GrossHistorical)
}

func TestComputeFinancials_NonUTCDates(t *testing.T) {
	east := time.FixedZone("UTC+5", 5*60*60)
	west := time.FixedZone("UTC-8", -8*60*60)

	tests := []struct {
		name       string
		activation time.Time
		ref        time.Time
		elapsed    int
		gross      string
	}{
		{"activation day east of utc", day(2024, 1, 15), time.Date(2024, 1, 15, 1, 0, 0, 0, east), 1, "18.00"},
		{"local activation east of utc", time.Date(2024, 1, 15, 0, 0, 0, 0, east), day(2024, 4, 15), 4, "72.00"},
		{"late evening west of utc", day(2024, 1, 15), time.Date(2024, 4, 14, 23, 0, 0, 0, west), 3, "54.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ComputeFinancials(monthlySub("18.00", tt.activation), nil, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.elapsed, f.ElapsedPeriods)
			assertDecimal(t, tt.gross, f.GrossHistorical)
		})
	}
}

func TestComputeFinancials_ReferenceBeforeActivation(t *testing.T) {
	sub := monthlySub("18.00", day(2024, 4, 15))
	contributions := []domain.Contribution{paidContribution("9.00", day(2024, 4, 15), 3)}

	f, err := ComputeFinancials(sub, contributions, day(2024, 4, 14))
	require.NoError(t, err)

	assert.Equal(t, 0, f.ElapsedPeriods)
	assert.True(t, f.GrossHistorical.IsZero())
	assert.True(t, f.TotalReceived.IsZero())
	assert.True(t, f.NetHistorical.IsZero())
}

func TestComputeFinancials_NegativeNetIsBenefit(t *testing.T) {
	sub := monthlySub("10.00", day(2024, 1, 1))
	contributions := []domain.Contribution{
		paidContribution("8.00", day(2024, 1, 1), 12),
	}

	f, err := ComputeFinancials(sub, contributions, day(2024, 2, 1))
	require.NoError(t, err)

	assert.Equal(t, 2, f.ElapsedPeriods)
	assertDecimal(t, "-76.00", f.NetHistorical)
	assert.True(t, f.IsBenefit())
}

func TestComputeFinancials_OtherCycles(t *testing.T) {
	tests := []struct {
		name     string
		cycle    domain.Cycle
		ref      time.Time
		elapsed  int
		expected string
	}{
		{"quarterly mid period", domain.CycleQuarterly, day(2024, 5, 1), 2, "60.00"},
		{"quarterly just before second", domain.CycleQuarterly, day(2024, 4, 14), 1, "30.00"},
		{"yearly after two years", domain.CycleYearly, day(2026, 1, 15), 3, "90.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := monthlySub("30.00", day(2024, 1, 15))
			sub.Cycle = tt.cycle

			f, err := ComputeFinancials(sub, nil, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.elapsed, f.ElapsedPeriods)
			assertDecimal(t, tt.expected, f.GrossHistorical)
		})
	}
}

func TestComputeFinancials_NetMonotonicInReceived(t *testing.T) {
	sub := monthlySub("18.00", day(2024, 1, 15))
	ref := day(2024, 12, 1)

	previous, err := ComputeFinancials(sub, nil, ref)
	require.NoError(t, err)

	var contributions []domain.Contribution
	for i, amount := range []string{"0", "0.01", "3.33", "9.00", "25.00"} {
		contributions = append(contributions, paidContribution(amount, day(2024, 1, 15), i+1))

		current, err := ComputeFinancials(sub, contributions, ref)
		require.NoError(t, err)
		assert.True(t, current.TotalReceived.GreaterThanOrEqual(previous.TotalReceived))
		assert.True(t, current.NetHistorical.LessThanOrEqual(previous.NetHistorical),
			"net %s should not exceed %s", current.NetHistorical, previous.NetHistorical)
		previous = current
	}
}

func TestComputeFinancials_Errors(t *testing.T) {
	t.Run("unknown cycle", func(t *testing.T) {
		sub := monthlySub("18.00", day(2024, 1, 15))
		sub.Cycle = "weekly"

		_, err := ComputeFinancials(sub, nil, day(2024, 4, 15))
		assert.True(t, errors.Is(err, domain.ErrUnknownCycle))
	})

	t.Run("active without price", func(t *testing.T) {
		sub := monthlySub("0", day(2024, 1, 15))

		_, err := ComputeFinancials(sub, nil, day(2024, 4, 15))
		assert.True(t, errors.Is(err, domain.ErrIncompleteSubscription))
	})

	t.Run("active without activation date", func(t *testing.T) {
		sub := monthlySub("18.00", time.Time{})

		_, err := ComputeFinancials(sub, nil, day(2024, 4, 15))
		assert.True(t, errors.Is(err, domain.ErrIncompleteSubscription))
	})

	t.Run("inactive incomplete yields zero", func(t *testing.T) {
		sub := monthlySub("18.00", time.Time{})
		sub.Active = false

		f, err := ComputeFinancials(sub, nil, day(2024, 4, 15))
		require.NoError(t, err)
		assert.True(t, f.GrossHistorical.IsZero())
	})

	t.Run("missing reference date", func(t *testing.T) {
		sub := monthlySub("18.00", day(2024, 1, 15))

		_, err := ComputeFinancials(sub, nil, time.Time{})
		assert.True(t, errors.Is(err, domain.ErrInvalidReferenceDate))
	})
}
