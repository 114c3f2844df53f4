package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/kevin07696/subs-tracker/pkg/timeutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return timeutil.Date(y, m, d)
}

func TestParseCycle(t *testing.T) {
	tests := []struct {
		input    string
		expected Cycle
	}{
		{"monthly", CycleMonthly},
		{"MONTHLY", CycleMonthly},
		{"MENSUAL", CycleMonthly},
		{"quarterly", CycleQuarterly},
		{"TRIMESTRAL", CycleQuarterly},
		{" yearly ", CycleYearly},
		{"ANUAL", CycleYearly},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := ParseCycle(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c)
		})
	}

	_, err := ParseCycle("weekly")
	assert.True(t, errors.Is(err, ErrUnknownCycle))
}

func TestCycle_AddPeriods(t *testing.T) {
	tests := []struct {
		name     string
		cycle    Cycle
		start    time.Time
		n        int
		expected time.Time
	}{
		{"monthly one period", CycleMonthly, date(2024, 1, 15), 1, date(2024, 2, 15)},
		{"monthly three periods", CycleMonthly, date(2024, 1, 15), 3, date(2024, 4, 15)},
		{"monthly crosses year", CycleMonthly, date(2024, 11, 30), 2, date(2025, 1, 30)},
		{"monthly clamps to leap february", CycleMonthly, date(2024, 1, 31), 1, date(2024, 2, 29)},
		{"monthly clamps to february", CycleMonthly, date(2023, 1, 31), 1, date(2023, 2, 28)},
		{"monthly clamps to thirty day month", CycleMonthly, date(2024, 3, 31), 1, date(2024, 4, 30)},
		{"quarterly one period", CycleQuarterly, date(2024, 1, 15), 1, date(2024, 4, 15)},
		{"quarterly four periods", CycleQuarterly, date(2024, 1, 15), 4, date(2025, 1, 15)},
		{"quarterly clamps", CycleQuarterly, date(2023, 11, 30), 1, date(2024, 2, 29)},
		{"yearly one period", CycleYearly, date(2024, 1, 15), 1, date(2025, 1, 15)},
		{"yearly from leap day", CycleYearly, date(2024, 2, 29), 1, date(2025, 2, 28)},
		{"yearly to leap day", CycleYearly, date(2024, 2, 29), 4, date(2028, 2, 29)},
		{"zero periods", CycleQuarterly, date(2024, 5, 31), 0, date(2024, 5, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cycle.AddPeriods(tt.start, tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCycle_AddPeriods_DropsTimeOfDay(t *testing.T) {
	start := time.Date(2024, 1, 15, 17, 45, 0, 0, time.UTC)

	got, err := CycleMonthly.AddPeriods(start, 1)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 2, 15), got)
}

func TestCycle_AddPeriods_Identity(t *testing.T) {
	for _, c := range Cycles {
		for d := date(2023, 1, 1); d.Before(date(2025, 1, 1)); d = d.AddDate(0, 0, 1) {
			got, err := c.AddPeriods(d, 0)
			require.NoError(t, err)
			assert.Equal(t, d, got, "%s %s", c, d)
		}
	}
}

func TestCycle_AddPeriods_Composes(t *testing.T) {
	// Clamping makes days 29-31 lossy, so the law is checked on days 1-28.
	for _, c := range Cycles {
		for _, start := range []time.Time{date(2023, 1, 1), date(2023, 6, 28), date(2024, 2, 15), date(2024, 12, 10)} {
			for n := 0; n <= 14; n++ {
				for m := 0; m <= 14; m++ {
					first, err := c.AddPeriods(start, n)
					require.NoError(t, err)
					chained, err := c.AddPeriods(first, m)
					require.NoError(t, err)
					direct, err := c.AddPeriods(start, n+m)
					require.NoError(t, err)
					assert.Equal(t, direct, chained, "%s start=%s n=%d m=%d", c, start, n, m)
				}
			}
		}
	}
}

func TestCycle_ElapsedPeriods(t *testing.T) {
	tests := []struct {
		name     string
		cycle    Cycle
		from     time.Time
		to       time.Time
		expected int
	}{
		{"same day", CycleMonthly, date(2024, 1, 15), date(2024, 1, 15), 0},
		{"one day short of a month", CycleMonthly, date(2024, 1, 15), date(2024, 2, 14), 0},
		{"exactly one month", CycleMonthly, date(2024, 1, 15), date(2024, 2, 15), 1},
		{"three months", CycleMonthly, date(2024, 1, 15), date(2024, 4, 15), 3},
		{"month end start", CycleMonthly, date(2024, 1, 31), date(2024, 2, 29), 0},
		{"month end start next full month", CycleMonthly, date(2024, 1, 31), date(2024, 3, 31), 2},
		{"quarterly truncates", CycleQuarterly, date(2024, 1, 15), date(2024, 6, 20), 1},
		{"quarterly two", CycleQuarterly, date(2024, 1, 15), date(2024, 7, 15), 2},
		{"yearly under a year", CycleYearly, date(2023, 3, 1), date(2024, 2, 29), 0},
		{"yearly two", CycleYearly, date(2022, 3, 1), date(2024, 3, 1), 2},
		{"reversed range", CycleMonthly, date(2024, 4, 15), date(2024, 1, 15), 0},
		{"reversed range yearly", CycleYearly, date(2030, 1, 1), date(2024, 1, 1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cycle.ElapsedPeriods(tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCycle_ElapsedPeriods_SameDayIsZero(t *testing.T) {
	for _, c := range Cycles {
		for _, d := range []time.Time{date(2024, 2, 29), date(2023, 12, 31), date(2000, 1, 1)} {
			got, err := c.ElapsedPeriods(d, d)
			require.NoError(t, err)
			assert.Zero(t, got)
		}
	}
}

func TestCycle_ElapsedPeriods_ReadsDatesInTheirOwnZone(t *testing.T) {
	east := time.FixedZone("UTC+5", 5*60*60)
	west := time.FixedZone("UTC-8", -8*60*60)

	tests := []struct {
		name     string
		from     time.Time
		to       time.Time
		expected int
	}{
		{"local midnight east of utc", time.Date(2024, 1, 15, 0, 0, 0, 0, east), time.Date(2024, 2, 15, 0, 0, 0, 0, east), 1},
		{"early morning east of utc", date(2024, 1, 15), time.Date(2024, 2, 15, 1, 0, 0, 0, east), 1},
		{"late evening west of utc", date(2024, 1, 15), time.Date(2024, 2, 14, 23, 0, 0, 0, west), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CycleMonthly.ElapsedPeriods(tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCycle_AddPeriods_KeepsLocalDay(t *testing.T) {
	start := time.Date(2024, 1, 15, 0, 30, 0, 0, time.FixedZone("UTC+2", 2*60*60))

	got, err := CycleMonthly.AddPeriods(start, 1)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 2, 15), got)
}

func TestCycle_MonthlyEquivalent(t *testing.T) {
	tests := []struct {
		name     string
		cycle    Cycle
		price    string
		expected string
	}{
		{"monthly unchanged", CycleMonthly, "18.00", "18"},
		{"quarterly divided by three", CycleQuarterly, "30.00", "10"},
		{"yearly divided by twelve", CycleYearly, "120.00", "10"},
		{"yearly with remainder", CycleYearly, "99.99", "8.3325"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cycle.MonthlyEquivalent(decimal.RequireFromString(tt.price))
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(got), "got %s", got)
		})
	}
}

func TestCycle_UnknownCycle(t *testing.T) {
	bogus := Cycle("weekly")

	assert.True(t, errors.Is(bogus.Validate(), ErrUnknownCycle))

	_, err := bogus.AddPeriods(date(2024, 1, 1), 1)
	assert.True(t, errors.Is(err, ErrUnknownCycle))

	_, err = bogus.ElapsedPeriods(date(2024, 1, 1), date(2024, 5, 1))
	assert.True(t, errors.Is(err, ErrUnknownCycle))

	_, err = bogus.MonthlyEquivalent(decimal.NewFromInt(10))
	assert.True(t, IsDomainError(err, ErrorCodeUnknownCycle))
}

func TestCycle_MonthlyEquivalent_RoundsBackToPrice(t *testing.T) {
	price := decimal.RequireFromString("10.00")

	monthly, err := CycleQuarterly.MonthlyEquivalent(price)
	require.NoError(t, err)

	tripled := monthly.Mul(decimal.NewFromInt(3))
	assert.False(t, tripled.Equal(price), "division is truncated at DivisionPrecision")
	assert.True(t, tripled.Round(2).Equal(price))
}
