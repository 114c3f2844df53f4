package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kevin07696/subs-tracker/internal/domain"
	"github.com/kevin07696/subs-tracker/internal/domain/ports"
)

var _ ports.ContributionRepository = (*ContributionRepository)(nil)

const contributionColumns = `id::text, subscription_id::text, contributor_user_id, guest_name,
	amount, paid_on, periods_covered, method, note`

// ContributionRepository implements ports.ContributionRepository with pgx
type ContributionRepository struct {
	base
}

// NewContributionRepository creates a new contribution repository
func NewContributionRepository(db ports.DBPort) *ContributionRepository {
	return &ContributionRepository{base: base{pool: db.GetDB()}}
}

// Create inserts a new contribution
func (r *ContributionRepository) Create(ctx context.Context, tx ports.DBTX, c *domain.Contribution) error {
	id, err := parseID("contribution_id", c.ID)
	if err != nil {
		return err
	}
	subID, err := parseID("subscription_id", c.SubscriptionID)
	if err != nil {
		return err
	}
	amount, err := decimalToNumeric(c.Amount)
	if err != nil {
		return err
	}

	_, err = r.executor(tx).Exec(ctx, `
		INSERT INTO contributions (id, subscription_id, contributor_user_id, guest_name,
			amount, paid_on, periods_covered, method, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, subID,
		nullText(c.Contributor.UserID()), nullText(c.Contributor.GuestName()),
		amount, nullDate(c.PaidOn), int32(c.PeriodsCovered), string(methodOrOther(c.Method)), nullText(c.Note),
	)
	if err != nil {
		return fmt.Errorf("create contribution: %w", err)
	}
	return nil
}

// GetByID retrieves a contribution by its ID
func (r *ContributionRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*domain.Contribution, error) {
	contributionID, err := parseID("contribution_id", id)
	if err != nil {
		return nil, err
	}

	row := r.executor(db).QueryRow(ctx,
		`SELECT `+contributionColumns+` FROM contributions WHERE id = $1`, contributionID)
	c, err := scanContribution(row)
	if err != nil {
		return nil, notFound(err, domain.ErrContributionNotFound, id)
	}
	return c, nil
}

// Update overwrites amount and payment state; the contributor identity is fixed
func (r *ContributionRepository) Update(ctx context.Context, tx ports.DBTX, c *domain.Contribution) error {
	id, err := parseID("contribution_id", c.ID)
	if err != nil {
		return err
	}
	amount, err := decimalToNumeric(c.Amount)
	if err != nil {
		return err
	}

	tag, err := r.executor(tx).Exec(ctx, `
		UPDATE contributions
		SET amount = $2, paid_on = $3, periods_covered = $4, method = $5, note = $6, updated_at = NOW()
		WHERE id = $1`,
		id, amount, nullDate(c.PaidOn), int32(c.PeriodsCovered), string(methodOrOther(c.Method)), nullText(c.Note),
	)
	if err != nil {
		return fmt.Errorf("update contribution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContributionNotFound.WithDetail("id", c.ID)
	}
	return nil
}

// Delete removes a single contribution
func (r *ContributionRepository) Delete(ctx context.Context, tx ports.DBTX, id string) error {
	contributionID, err := parseID("contribution_id", id)
	if err != nil {
		return err
	}

	tag, err := r.executor(tx).Exec(ctx, `DELETE FROM contributions WHERE id = $1`, contributionID)
	if err != nil {
		return fmt.Errorf("delete contribution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContributionNotFound.WithDetail("id", id)
	}
	return nil
}

// ListBySubscription lists contributions in creation order
func (r *ContributionRepository) ListBySubscription(ctx context.Context, db ports.DBTX, subscriptionID string) ([]*domain.Contribution, error) {
	subID, err := parseID("subscription_id", subscriptionID)
	if err != nil {
		return nil, err
	}

	rows, err := r.executor(db).Query(ctx,
		`SELECT `+contributionColumns+` FROM contributions
		WHERE subscription_id = $1
		ORDER BY created_at, id`, subID)
	if err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}
	defer rows.Close()

	var contributions []*domain.Contribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contribution: %w", err)
		}
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contributions: %w", err)
	}
	return contributions, nil
}

// DeleteBySubscription removes every contribution of a subscription
func (r *ContributionRepository) DeleteBySubscription(ctx context.Context, tx ports.DBTX, subscriptionID string) error {
	subID, err := parseID("subscription_id", subscriptionID)
	if err != nil {
		return err
	}

	if _, err := r.executor(tx).Exec(ctx, `DELETE FROM contributions WHERE subscription_id = $1`, subID); err != nil {
		return fmt.Errorf("delete contributions: %w", err)
	}
	return nil
}

func scanContribution(row pgx.Row) (*domain.Contribution, error) {
	var (
		c       domain.Contribution
		userID  pgtype.Text
		guest   pgtype.Text
		amount  pgtype.Numeric
		paidOn  pgtype.Date
		periods int32
		method  string
		note    pgtype.Text
	)
	err := row.Scan(&c.ID, &c.SubscriptionID, &userID, &guest, &amount, &paidOn, &periods, &method, &note)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		c.Contributor = domain.RegisteredContributor(userID.String)
	} else {
		c.Contributor = domain.GuestContributor(guest.String)
	}
	if c.Amount, err = pgNumericToDecimal(amount); err != nil {
		return nil, err
	}
	c.PaidOn = fromNullDate(paidOn)
	c.PeriodsCovered = int(periods)
	c.Method = domain.ParsePaymentMethod(method)
	c.Note = note.String
	return &c, nil
}

func methodOrOther(m domain.PaymentMethod) domain.PaymentMethod {
	if m == "" {
		return domain.PaymentMethodOther
	}
	return m
}
