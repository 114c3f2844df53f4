// Package mocks provides shared testify mocks for the persistence ports.
package mocks

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kevin07696/subs-tracker/internal/domain"
	"github.com/kevin07696/subs-tracker/internal/domain/ports"
	"github.com/stretchr/testify/mock"
)

// MockDBPort runs transaction callbacks with a nil tx so repository mocks
// receive a nil DBTX. Set BeginErr to simulate a failed BEGIN.
type MockDBPort struct {
	mock.Mock
	BeginErr error
}

func (m *MockDBPort) GetDB() *pgxpool.Pool {
	return nil
}

func (m *MockDBPort) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	if m.BeginErr != nil {
		return m.BeginErr
	}
	return fn(ctx, nil)
}

func (m *MockDBPort) WithReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	if m.BeginErr != nil {
		return m.BeginErr
	}
	return fn(ctx, nil)
}

// MockSubscriptionRepository mocks ports.SubscriptionRepository
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, tx ports.DBTX, sub *domain.Subscription) error {
	args := m.Called(ctx, tx, sub)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*domain.Subscription, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// Hand out a copy so the service can mutate it freely
	sub := *args.Get(0).(*domain.Subscription)
	return &sub, args.Error(1)
}

func (m *MockSubscriptionRepository) Update(ctx context.Context, tx ports.DBTX, sub *domain.Subscription) error {
	args := m.Called(ctx, tx, sub)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) Delete(ctx context.Context, tx ports.DBTX, id string) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) ListByOwner(ctx context.Context, db ports.DBTX, ownerID string) ([]*domain.Subscription, error) {
	args := m.Called(ctx, db, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) ListActive(ctx context.Context, db ports.DBTX) ([]*domain.Subscription, error) {
	args := m.Called(ctx, db)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Subscription), args.Error(1)
}

// MockContributionRepository mocks ports.ContributionRepository
type MockContributionRepository struct {
	mock.Mock
}

func (m *MockContributionRepository) Create(ctx context.Context, tx ports.DBTX, c *domain.Contribution) error {
	args := m.Called(ctx, tx, c)
	return args.Error(0)
}

func (m *MockContributionRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*domain.Contribution, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	c := *args.Get(0).(*domain.Contribution)
	return &c, args.Error(1)
}

func (m *MockContributionRepository) Update(ctx context.Context, tx ports.DBTX, c *domain.Contribution) error {
	args := m.Called(ctx, tx, c)
	return args.Error(0)
}

func (m *MockContributionRepository) Delete(ctx context.Context, tx ports.DBTX, id string) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockContributionRepository) ListBySubscription(ctx context.Context, db ports.DBTX, subscriptionID string) ([]*domain.Contribution, error) {
	args := m.Called(ctx, db, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Contribution), args.Error(1)
}

func (m *MockContributionRepository) DeleteBySubscription(ctx context.Context, tx ports.DBTX, subscriptionID string) error {
	args := m.Called(ctx, tx, subscriptionID)
	return args.Error(0)
}

// MockChargeRepository mocks ports.ChargeRepository
type MockChargeRepository struct {
	mock.Mock
}

func (m *MockChargeRepository) Create(ctx context.Context, tx ports.DBTX, c *domain.Charge) error {
	args := m.Called(ctx, tx, c)
	return args.Error(0)
}

func (m *MockChargeRepository) ListBySubscription(ctx context.Context, db ports.DBTX, subscriptionID string) ([]*domain.Charge, error) {
	args := m.Called(ctx, db, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Charge), args.Error(1)
}

func (m *MockChargeRepository) DeleteBySubscription(ctx context.Context, tx ports.DBTX, subscriptionID string) error {
	args := m.Called(ctx, tx, subscriptionID)
	return args.Error(0)
}
