package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kevin07696/subs-tracker/internal/domain"
	"github.com/kevin07696/subs-tracker/internal/domain/ports"
)

var _ ports.SubscriptionRepository = (*SubscriptionRepository)(nil)

const subscriptionColumns = `id::text, owner_id, name, price, cycle, category,
	activation_date, next_renewal_date, active, created_at, updated_at`

// SubscriptionRepository implements ports.SubscriptionRepository with pgx
type SubscriptionRepository struct {
	base
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db ports.DBPort) *SubscriptionRepository {
	return &SubscriptionRepository{base: base{pool: db.GetDB()}}
}

// Create inserts a new subscription
func (r *SubscriptionRepository) Create(ctx context.Context, tx ports.DBTX, sub *domain.Subscription) error {
	id, err := parseID("subscription_id", sub.ID)
	if err != nil {
		return err
	}
	price, err := decimalToNumeric(sub.Price)
	if err != nil {
		return err
	}

	row := r.executor(tx).QueryRow(ctx, `
		INSERT INTO subscriptions (id, owner_id, name, price, cycle, category,
			activation_date, next_renewal_date, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		id, sub.OwnerID, sub.Name, price, string(sub.Cycle), nullText(string(sub.Category)),
		dateValue(sub.ActivationDate), dateValue(sub.NextRenewalDate), sub.Active,
	)
	if err := row.Scan(&sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}

// GetByID retrieves a subscription by its ID
func (r *SubscriptionRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*domain.Subscription, error) {
	subID, err := parseID("subscription_id", id)
	if err != nil {
		return nil, err
	}

	row := r.executor(db).QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, subID)
	sub, err := scanSubscription(row)
	if err != nil {
		return nil, notFound(err, domain.ErrSubscriptionNotFound, id)
	}
	return sub, nil
}

// Update overwrites the mutable subscription fields
func (r *SubscriptionRepository) Update(ctx context.Context, tx ports.DBTX, sub *domain.Subscription) error {
	id, err := parseID("subscription_id", sub.ID)
	if err != nil {
		return err
	}
	price, err := decimalToNumeric(sub.Price)
	if err != nil {
		return err
	}

	row := r.executor(tx).QueryRow(ctx, `
		UPDATE subscriptions
		SET name = $2, price = $3, cycle = $4, category = $5,
			activation_date = $6, next_renewal_date = $7, active = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		id, sub.Name, price, string(sub.Cycle), nullText(string(sub.Category)),
		dateValue(sub.ActivationDate), dateValue(sub.NextRenewalDate), sub.Active,
	)
	if err := row.Scan(&sub.UpdatedAt); err != nil {
		return notFound(err, domain.ErrSubscriptionNotFound, sub.ID)
	}
	return nil
}

// Delete removes a subscription; contributions and charges must be removed first
func (r *SubscriptionRepository) Delete(ctx context.Context, tx ports.DBTX, id string) error {
	subID, err := parseID("subscription_id", id)
	if err != nil {
		return err
	}

	tag, err := r.executor(tx).Exec(ctx, `DELETE FROM subscriptions WHERE id = $1`, subID)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubscriptionNotFound.WithDetail("id", id)
	}
	return nil
}

// ListByOwner lists every subscription of an owner ordered by name
func (r *SubscriptionRepository) ListByOwner(ctx context.Context, db ports.DBTX, ownerID string) ([]*domain.Subscription, error) {
	rows, err := r.executor(db).Query(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE owner_id = $1
		ORDER BY lower(name), created_at`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions by owner: %w", err)
	}
	return collectSubscriptions(rows)
}

// ListActive lists active subscriptions across all owners
func (r *SubscriptionRepository) ListActive(ctx context.Context, db ports.DBTX) ([]*domain.Subscription, error) {
	rows, err := r.executor(db).Query(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE active
		ORDER BY next_renewal_date NULLS LAST, id`)
	if err != nil {
		return nil, fmt.Errorf("list active subscriptions: %w", err)
	}
	return collectSubscriptions(rows)
}

func collectSubscriptions(rows pgx.Rows) ([]*domain.Subscription, error) {
	defer rows.Close()

	var subs []*domain.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return subs, nil
}

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var (
		sub        domain.Subscription
		price      pgtype.Numeric
		cycle      string
		category   pgtype.Text
		activation pgtype.Date
		renewal    pgtype.Date
	)
	err := row.Scan(&sub.ID, &sub.OwnerID, &sub.Name, &price, &cycle, &category,
		&activation, &renewal, &sub.Active, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if sub.Price, err = pgNumericToDecimal(price); err != nil {
		return nil, err
	}
	// Cycle is not validated on read; the billing engine reports unknown cycles per row.
	sub.Cycle = domain.Cycle(cycle)
	if category.Valid {
		sub.Category = domain.Category(category.String)
	}
	sub.ActivationDate = fromDate(activation)
	sub.NextRenewalDate = fromDate(renewal)
	return &sub, nil
}
