package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/kevin07696/subs-tracker/internal/adapters/postgres"
	"github.com/kevin07696/subs-tracker/internal/domain"
	"github.com/kevin07696/subs-tracker/pkg/timeutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContributionRepository_Lifecycle(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	db := postgres.NewDBExecutor(pool)
	subs := postgres.NewSubscriptionRepository(db)
	repo := postgres.NewContributionRepository(db)

	sub := newSubscription("owner-1", "Family plan")
	require.NoError(t, subs.Create(ctx, nil, sub))

	guest := &domain.Contribution{
		ID:             uuid.New().String(),
		SubscriptionID: sub.ID,
		Contributor:    domain.GuestContributor("Luis"),
		Amount:         decimal.RequireFromString("4.50"),
	}
	member := &domain.Contribution{
		ID:             uuid.New().String(),
		SubscriptionID: sub.ID,
		Contributor:    domain.RegisteredContributor("user-42"),
		Amount:         decimal.RequireFromString("4.50"),
	}
	require.NoError(t, repo.Create(ctx, nil, guest))
	require.NoError(t, repo.Create(ctx, nil, member))

	paid := guest.WithPayment(timeutil.Date(2024, 2, 1), 2, domain.PaymentMethodBizum, "feb+mar")
	require.NoError(t, repo.Update(ctx, nil, &paid))

	got, err := repo.GetByID(ctx, nil, guest.ID)
	require.NoError(t, err)
	assert.True(t, got.Contributor.IsGuest())
	assert.Equal(t, "Luis", got.Contributor.GuestName())
	require.NotNil(t, got.PaidOn)
	assert.Equal(t, timeutil.Date(2024, 2, 1), *got.PaidOn)
	assert.Equal(t, 2, got.PeriodsCovered)
	assert.Equal(t, domain.PaymentMethodBizum, got.Method)
	assert.Equal(t, "feb+mar", got.Note)

	list, err := repo.ListBySubscription(ctx, nil, sub.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[1].Contributor.IsRegistered())
	assert.Equal(t, "user-42", list[1].Contributor.UserID())
	assert.False(t, list[1].IsPaid())

	require.NoError(t, repo.Delete(ctx, nil, member.ID))
	_, err = repo.GetByID(ctx, nil, member.ID)
	assert.True(t, errors.Is(err, domain.ErrContributionNotFound))
	assert.True(t, errors.Is(repo.Delete(ctx, nil, member.ID), domain.ErrContributionNotFound))
}

func TestChargeRepository_History(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	db := postgres.NewDBExecutor(pool)
	subs := postgres.NewSubscriptionRepository(db)
	repo := postgres.NewChargeRepository(db)

	sub := newSubscription("owner-1", "Cloud")
	require.NoError(t, subs.Create(ctx, nil, sub))

	for _, d := range []int{1, 3, 2} {
		require.NoError(t, repo.Create(ctx, nil, &domain.Charge{
			ID:             uuid.New().String(),
			SubscriptionID: sub.ID,
			ChargedOn:      timeutil.Date(2024, 1, d),
			PeriodsCovered: 1,
			Method:         domain.PaymentMethodCard,
		}))
	}

	charges, err := repo.ListBySubscription(ctx, nil, sub.ID)
	require.NoError(t, err)
	require.Len(t, charges, 3)
	assert.Equal(t, timeutil.Date(2024, 1, 3), charges[0].ChargedOn)
	assert.Equal(t, timeutil.Date(2024, 1, 1), charges[2].ChargedOn)

	require.NoError(t, repo.DeleteBySubscription(ctx, nil, sub.ID))
	charges, err = repo.ListBySubscription(ctx, nil, sub.ID)
	require.NoError(t, err)
	assert.Empty(t, charges)
}
