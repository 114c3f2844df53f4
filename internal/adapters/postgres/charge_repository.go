package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kevin07696/subs-tracker/internal/domain"
	"github.com/kevin07696/subs-tracker/internal/domain/ports"
)

var _ ports.ChargeRepository = (*ChargeRepository)(nil)

// ChargeRepository implements ports.ChargeRepository with pgx
type ChargeRepository struct {
	base
}

// NewChargeRepository creates a new charge repository
func NewChargeRepository(db ports.DBPort) *ChargeRepository {
	return &ChargeRepository{base: base{pool: db.GetDB()}}
}

// Create appends a charge to the history
func (r *ChargeRepository) Create(ctx context.Context, tx ports.DBTX, c *domain.Charge) error {
	id, err := parseID("charge_id", c.ID)
	if err != nil {
		return err
	}
	subID, err := parseID("subscription_id", c.SubscriptionID)
	if err != nil {
		return err
	}

	row := r.executor(tx).QueryRow(ctx, `
		INSERT INTO charges (id, subscription_id, charged_on, periods_covered, method, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		id, subID, dateValue(c.ChargedOn), int32(c.PeriodsCovered), string(methodOrOther(c.Method)), nullText(c.Note),
	)
	if err := row.Scan(&c.CreatedAt); err != nil {
		return fmt.Errorf("create charge: %w", err)
	}
	return nil
}

// ListBySubscription lists charges newest first
func (r *ChargeRepository) ListBySubscription(ctx context.Context, db ports.DBTX, subscriptionID string) ([]*domain.Charge, error) {
	subID, err := parseID("subscription_id", subscriptionID)
	if err != nil {
		return nil, err
	}

	rows, err := r.executor(db).Query(ctx, `
		SELECT id::text, subscription_id::text, charged_on, periods_covered, method, note, created_at
		FROM charges
		WHERE subscription_id = $1
		ORDER BY charged_on DESC, created_at DESC`, subID)
	if err != nil {
		return nil, fmt.Errorf("list charges: %w", err)
	}
	defer rows.Close()

	var charges []*domain.Charge
	for rows.Next() {
		var (
			c         domain.Charge
			chargedOn pgtype.Date
			periods   int32
			method    string
			note      pgtype.Text
		)
		if err := rows.Scan(&c.ID, &c.SubscriptionID, &chargedOn, &periods, &method, &note, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan charge: %w", err)
		}
		c.ChargedOn = fromDate(chargedOn)
		c.PeriodsCovered = int(periods)
		c.Method = domain.ParsePaymentMethod(method)
		c.Note = note.String
		charges = append(charges, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate charges: %w", err)
	}
	return charges, nil
}

// DeleteBySubscription removes the charge history of a subscription
func (r *ChargeRepository) DeleteBySubscription(ctx context.Context, tx ports.DBTX, subscriptionID string) error {
	subID, err := parseID("subscription_id", subscriptionID)
	if err != nil {
		return err
	}

	if _, err := r.executor(tx).Exec(ctx, `DELETE FROM charges WHERE subscription_id = $1`, subID); err != nil {
		return fmt.Errorf("delete charges: %w", err)
	}
	return nil
}
