package fixtures

import (
	"time"

	"github.com/google/uuid"
	"github.com/kevin07696/subs-tracker/internal/domain"
	"github.com/shopspring/decimal"
)

// SubscriptionBuilder provides fluent API for building test subscriptions.
type SubscriptionBuilder struct {
	subscription *domain.Subscription
}

// NewSubscription creates a new subscription builder with sensible defaults:
// an active 12.99 monthly leisure subscription activated on 2024-01-15.
func NewSubscription() *SubscriptionBuilder {
	now := time.Now().UTC()
	return &SubscriptionBuilder{
		subscription: &domain.Subscription{
			ID:              uuid.New().String(),
			OwnerID:         "owner-1",
			Name:            "Streaming",
			Price:           decimal.RequireFromString("12.99"),
			Cycle:           domain.CycleMonthly,
			Category:        domain.CategoryLeisure,
			ActivationDate:  Day(2024, 1, 15),
			NextRenewalDate: Day(2024, 2, 15),
			Active:          true,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
	}
}

func (b *SubscriptionBuilder) WithID(id string) *SubscriptionBuilder {
	b.subscription.ID = id
	return b
}

func (b *SubscriptionBuilder) WithOwner(ownerID string) *SubscriptionBuilder {
	b.subscription.OwnerID = ownerID
	return b
}

func (b *SubscriptionBuilder) WithName(name string) *SubscriptionBuilder {
	b.subscription.Name = name
	return b
}

func (b *SubscriptionBuilder) WithPrice(price string) *SubscriptionBuilder {
	b.subscription.Price = decimal.RequireFromString(price)
	return b
}

func (b *SubscriptionBuilder) WithCycle(cycle domain.Cycle) *SubscriptionBuilder {
	b.subscription.Cycle = cycle
	return b
}

func (b *SubscriptionBuilder) WithCategory(category domain.Category) *SubscriptionBuilder {
	b.subscription.Category = category
	return b
}

func (b *SubscriptionBuilder) WithActivation(date time.Time) *SubscriptionBuilder {
	b.subscription.ActivationDate = date
	return b
}

func (b *SubscriptionBuilder) WithNextRenewal(date time.Time) *SubscriptionBuilder {
	b.subscription.NextRenewalDate = date
	return b
}

func (b *SubscriptionBuilder) Inactive() *SubscriptionBuilder {
	b.subscription.Active = false
	return b
}

func (b *SubscriptionBuilder) Build() *domain.Subscription {
	sub := *b.subscription
	return &sub
}
