package ports

import (
	"context"
	"time"

	"github.com/kevin07696/subs-tracker/internal/billing"
	"github.com/kevin07696/subs-tracker/internal/domain"
	"github.com/shopspring/decimal"
)

// CreateSubscriptionRequest contains parameters for creating a subscription
type CreateSubscriptionRequest struct {
	OwnerID        string
	Name           string
	Price          decimal.Decimal
	Cycle          domain.Cycle
	Category       domain.Category
	ActivationDate time.Time
	// FirstPaymentDate defaults to ActivationDate and must not precede it
	FirstPaymentDate time.Time
}

// UpdateSubscriptionRequest carries the fields to change; nil leaves a field as is
type UpdateSubscriptionRequest struct {
	SubscriptionID string
	Name           *string
	Price          *decimal.Decimal
	Cycle          *domain.Cycle
	Category       *domain.Category
	ActivationDate *time.Time
}

// RecordChargeRequest logs that the owner paid the provider
type RecordChargeRequest struct {
	SubscriptionID string
	// ChargedOn defaults to today
	ChargedOn      time.Time
	PeriodsCovered int
	Method         domain.PaymentMethod
	Note           string
}

// AddContributorRequest attaches a contributor; exactly one of UserID and
// GuestName must be set
type AddContributorRequest struct {
	SubscriptionID string
	UserID         string
	GuestName      string
	Amount         decimal.Decimal
	Method         domain.PaymentMethod
	Note           string
	// PaidOn records a payment already made; nil creates an unpaid pledge
	PaidOn *time.Time
	// PeriodsCovered only applies when PaidOn is set
	PeriodsCovered int
}

// LogContributionPaymentRequest records a contributor payment in place
type LogContributionPaymentRequest struct {
	ContributionID string
	// PaidOn defaults to today
	PaidOn         time.Time
	PeriodsCovered int
	Method         domain.PaymentMethod
	Note           string
	// Amount replaces the per-period amount when set
	Amount *decimal.Decimal
}

// ListSubscriptionsRequest filters an owner's subscriptions
type ListSubscriptionsRequest struct {
	OwnerID string
	// Query matches the name case-insensitively
	Query    string
	Category *domain.Category
	Active   *bool
}

// SubscriptionSummary is one row of the subscription list
type SubscriptionSummary struct {
	Subscription     *domain.Subscription
	ContributorCount int
	HasContributors  bool
	RenewalOverdue   bool
	Renewal          billing.RenewalOutlook
}

// SubscriptionDetail is everything the detail view shows for one subscription
type SubscriptionDetail struct {
	Subscription *domain.Subscription
	AsOf         time.Time
	Financials   billing.Financials
	// Monthly is nil for inactive or incomplete subscriptions
	Monthly      *billing.MonthlyBreakdown
	Contributors []billing.ContributorStatus
	PendingCount int
	Charges      []*domain.Charge
}

// TrackerService defines the port for subscription tracking operations
type TrackerService interface {
	CreateSubscription(ctx context.Context, req *CreateSubscriptionRequest) (*domain.Subscription, error)
	UpdateSubscription(ctx context.Context, req *UpdateSubscriptionRequest) (*domain.Subscription, error)
	SetActive(ctx context.Context, subscriptionID string, active bool) (*domain.Subscription, error)
	DeleteSubscription(ctx context.Context, subscriptionID string) error
	GetSubscriptionDetail(ctx context.Context, subscriptionID string, asOf time.Time) (*SubscriptionDetail, error)
	ListSubscriptions(ctx context.Context, req *ListSubscriptionsRequest) ([]SubscriptionSummary, error)

	RecordCharge(ctx context.Context, req *RecordChargeRequest) (*domain.Charge, *domain.Subscription, error)
	ListCharges(ctx context.Context, subscriptionID string) ([]*domain.Charge, error)

	AddContributor(ctx context.Context, req *AddContributorRequest) (*domain.Contribution, error)
	LogContributionPayment(ctx context.Context, req *LogContributionPaymentRequest) (*domain.Contribution, error)
	ClearContributionPayment(ctx context.Context, contributionID string) (*domain.Contribution, error)
	RemoveContributor(ctx context.Context, contributionID string) error

	GetFinancials(ctx context.Context, subscriptionID string, asOf time.Time) (billing.Financials, error)
	GetOwnerReport(ctx context.Context, ownerID string) (*billing.AggregateReport, error)
}
