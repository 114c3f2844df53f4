package fixtures

import (
	"time"

	"github.com/google/uuid"
	"github.com/kevin07696/subs-tracker/internal/domain"
	"github.com/shopspring/decimal"
)

// ContributionBuilder provides fluent API for building test contributions.
type ContributionBuilder struct {
	contribution *domain.Contribution
}

// NewContribution creates an unpaid 5.00 guest contribution to subscriptionID.
func NewContribution(subscriptionID string) *ContributionBuilder {
	return &ContributionBuilder{
		contribution: &domain.Contribution{
			ID:             uuid.New().String(),
			SubscriptionID: subscriptionID,
			Contributor:    domain.GuestContributor("Guest"),
			Amount:         decimal.RequireFromString("5.00"),
			Method:         domain.PaymentMethodOther,
		},
	}
}

func (b *ContributionBuilder) WithID(id string) *ContributionBuilder {
	b.contribution.ID = id
	return b
}

func (b *ContributionBuilder) WithGuest(name string) *ContributionBuilder {
	b.contribution.Contributor = domain.GuestContributor(name)
	return b
}

func (b *ContributionBuilder) WithUser(userID string) *ContributionBuilder {
	b.contribution.Contributor = domain.RegisteredContributor(userID)
	return b
}

func (b *ContributionBuilder) WithAmount(amount string) *ContributionBuilder {
	b.contribution.Amount = decimal.RequireFromString(amount)
	return b
}

// PaidOn marks the contribution paid on date for the given periods.
func (b *ContributionBuilder) PaidOn(date time.Time, periods int) *ContributionBuilder {
	b.contribution.PaidOn = &date
	b.contribution.PeriodsCovered = periods
	return b
}

func (b *ContributionBuilder) Build() *domain.Contribution {
	c := *b.contribution
	return &c
}

// NewCharge creates a one-period card charge on chargedOn.
func NewCharge(subscriptionID string, chargedOn time.Time) *domain.Charge {
	return &domain.Charge{
		ID:             uuid.New().String(),
		SubscriptionID: subscriptionID,
		ChargedOn:      chargedOn,
		PeriodsCovered: 1,
		Method:         domain.PaymentMethodCard,
		CreatedAt:      time.Now().UTC(),
	}
}
