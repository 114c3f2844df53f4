package ports

import (
	"context"

	"github.com/kevin07696/subs-tracker/internal/domain"
)

// SubscriptionRepository defines the interface for subscription persistence
type SubscriptionRepository interface {
	// Create inserts a new subscription
	Create(ctx context.Context, tx DBTX, sub *domain.Subscription) error

	// GetByID retrieves a subscription by its ID
	GetByID(ctx context.Context, db DBTX, id string) (*domain.Subscription, error)

	// Update overwrites the mutable subscription fields
	Update(ctx context.Context, tx DBTX, sub *domain.Subscription) error

	// Delete removes a subscription; dependents must already be gone
	Delete(ctx context.Context, tx DBTX, id string) error

	// ListByOwner lists every subscription owned by a user, active or not
	ListByOwner(ctx context.Context, db DBTX, ownerID string) ([]*domain.Subscription, error)

	// ListActive lists active subscriptions across all owners
	ListActive(ctx context.Context, db DBTX) ([]*domain.Subscription, error)
}

// ContributionRepository defines the interface for contribution persistence
type ContributionRepository interface {
	Create(ctx context.Context, tx DBTX, c *domain.Contribution) error
	GetByID(ctx context.Context, db DBTX, id string) (*domain.Contribution, error)
	Update(ctx context.Context, tx DBTX, c *domain.Contribution) error
	Delete(ctx context.Context, tx DBTX, id string) error
	ListBySubscription(ctx context.Context, db DBTX, subscriptionID string) ([]*domain.Contribution, error)
	DeleteBySubscription(ctx context.Context, tx DBTX, subscriptionID string) error
}

// ChargeRepository defines the interface for the append-only charge history
type ChargeRepository interface {
	Create(ctx context.Context, tx DBTX, c *domain.Charge) error
	ListBySubscription(ctx context.Context, db DBTX, subscriptionID string) ([]*domain.Charge, error)
	DeleteBySubscription(ctx context.Context, tx DBTX, subscriptionID string) error
}
