package billing

import (
	"time"

	"github.com/kevin07696/subs-tracker/internal/domain"
	"github.com/kevin07696/subs-tracker/pkg/timeutil"
)

// ContributionStatus says whether a contributor's last payment still covers a date
type ContributionStatus string

const (
	StatusUpToDate ContributionStatus = "up_to_date"
	StatusPending  ContributionStatus = "pending"
)

// ContributorStatus pairs a contribution with its classification
type ContributorStatus struct {
	// CoveredUntil is nil when the contribution has never been paid
	CoveredUntil *time.Time
	Status       ContributionStatus
	Contribution domain.Contribution
}

// ClassifyContribution returns StatusUpToDate when the contribution has been
// paid and its payment date advanced by the periods it covers is not before
// referenceDate. Everything else, including never-paid pledges, is pending.
func ClassifyContribution(c domain.Contribution, cycle domain.Cycle, referenceDate time.Time) (ContributionStatus, error) {
	status, _, err := classify(c, cycle, referenceDate)
	return status, err
}

// ClassifyContributions classifies every contribution of one subscription
func ClassifyContributions(contributions []domain.Contribution, cycle domain.Cycle, referenceDate time.Time) ([]ContributorStatus, error) {
	statuses := make([]ContributorStatus, 0, len(contributions))
	for _, c := range contributions {
		status, coveredUntil, err := classify(c, cycle, referenceDate)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, ContributorStatus{
			Contribution: c,
			Status:       status,
			CoveredUntil: coveredUntil,
		})
	}
	return statuses, nil
}

// CountPending returns how many statuses are pending
func CountPending(statuses []ContributorStatus) int {
	n := 0
	for _, s := range statuses {
		if s.Status == StatusPending {
			n++
		}
	}
	return n
}

func classify(c domain.Contribution, cycle domain.Cycle, referenceDate time.Time) (ContributionStatus, *time.Time, error) {
	if referenceDate.IsZero() {
		return "", nil, domain.ErrInvalidReferenceDate
	}
	if err := cycle.Validate(); err != nil {
		return "", nil, err
	}
	if !c.IsPaid() {
		return StatusPending, nil, nil
	}

	coveredUntil, err := cycle.AddPeriods(*c.PaidOn, c.PeriodsCovered)
	if err != nil {
		return "", nil, err
	}
	if coveredUntil.Before(timeutil.CalendarDate(referenceDate)) {
		return StatusPending, &coveredUntil, nil
	}
	return StatusUpToDate, &coveredUntil, nil
}
