package billing

import (
	"errors"
	"testing"
	"time"

	"github.com/kevin07696/subs-tracker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyContribution(t *testing.T) {
	tests := []struct {
		name     string
		cycle    domain.Cycle
		paidOn   *time.Time
		periods  int
		ref      time.Time
		expected ContributionStatus
	}{
		{"lapsed monthly payment", domain.CycleMonthly, ptr(day(2024, 1, 1)), 1, day(2024, 2, 15), StatusPending},
		{"covering monthly payment", domain.CycleMonthly, ptr(day(2024, 1, 1)), 1, day(2024, 1, 20), StatusUpToDate},
		{"coverage ends on reference date", domain.CycleMonthly, ptr(day(2024, 1, 1)), 1, day(2024, 2, 1), StatusUpToDate},
		{"coverage ended the day before", domain.CycleMonthly, ptr(day(2024, 1, 1)), 1, day(2024, 2, 2), StatusPending},
		{"several periods covered", domain.CycleMonthly, ptr(day(2024, 1, 1)), 3, day(2024, 3, 31), StatusUpToDate},
		{"quarterly covers three months", domain.CycleQuarterly, ptr(day(2024, 1, 1)), 1, day(2024, 3, 20), StatusUpToDate},
		{"yearly covers the year", domain.CycleYearly, ptr(day(2024, 1, 1)), 1, day(2024, 12, 31), StatusUpToDate},
		{"never paid", domain.CycleMonthly, nil, 0, day(2024, 1, 1), StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := domain.Contribution{PaidOn: tt.paidOn, PeriodsCovered: tt.periods}

			got, err := ClassifyContribution(c, tt.cycle, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestClassifyContribution_NonUTCDates(t *testing.T) {
	east := time.FixedZone("UTC+9", 9*60*60)
	paidOn := time.Date(2024, 1, 1, 0, 0, 0, 0, east)
	c := domain.Contribution{PaidOn: &paidOn, PeriodsCovered: 1}

	got, err := ClassifyContribution(c, domain.CycleMonthly, time.Date(2024, 2, 1, 8, 0, 0, 0, east))
	require.NoError(t, err)
	assert.Equal(t, StatusUpToDate, got)

	got, err = ClassifyContribution(c, domain.CycleMonthly, time.Date(2024, 2, 2, 0, 30, 0, 0, east))
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got)
}

func TestClassifyContribution_Errors(t *testing.T) {
	c := domain.Contribution{PaidOn: ptr(day(2024, 1, 1)), PeriodsCovered: 1}

	_, err := ClassifyContribution(c, domain.CycleMonthly, time.Time{})
	assert.True(t, errors.Is(err, domain.ErrInvalidReferenceDate))

	_, err = ClassifyContribution(c, "biweekly", day(2024, 1, 1))
	assert.True(t, errors.Is(err, domain.ErrUnknownCycle))
}

func TestClassifyContributions(t *testing.T) {
	contributions := []domain.Contribution{
		{ID: "paid", PaidOn: ptr(day(2024, 1, 1)), PeriodsCovered: 2},
		{ID: "lapsed", PaidOn: ptr(day(2023, 11, 1)), PeriodsCovered: 1},
		{ID: "pledge"},
	}

	statuses, err := ClassifyContributions(contributions, domain.CycleMonthly, day(2024, 2, 10))
	require.NoError(t, err)
	require.Len(t, statuses, 3)

	assert.Equal(t, StatusUpToDate, statuses[0].Status)
	assert.Equal(t, day(2024, 3, 1), *statuses[0].CoveredUntil)
	assert.Equal(t, StatusPending, statuses[1].Status)
	assert.Equal(t, day(2023, 12, 1), *statuses[1].CoveredUntil)
	assert.Equal(t, StatusPending, statuses[2].Status)
	assert.Nil(t, statuses[2].CoveredUntil)
	assert.Equal(t, 2, CountPending(statuses))
}

func ptr(t time.Time) *time.Time {
	return &t
}
