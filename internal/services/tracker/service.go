package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kevin07696/subs-tracker/internal/billing"
	"github.com/kevin07696/subs-tracker/internal/domain"
	"github.com/kevin07696/subs-tracker/internal/domain/ports"
	serviceports "github.com/kevin07696/subs-tracker/internal/services/ports"
	"github.com/kevin07696/subs-tracker/pkg/observability"
	"github.com/kevin07696/subs-tracker/pkg/timeutil"
)

var _ serviceports.TrackerService = (*Service)(nil)

// Service implements serviceports.TrackerService
type Service struct {
	db               ports.DBPort
	subRepo          ports.SubscriptionRepository
	contributionRepo ports.ContributionRepository
	chargeRepo       ports.ChargeRepository
	logger           ports.Logger
	today            func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the source of "today"; the result is truncated to a date
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.today = func() time.Time { return timeutil.StartOfDay(now()) }
	}
}

// NewService creates a new tracker service
func NewService(
	db ports.DBPort,
	subRepo ports.SubscriptionRepository,
	contributionRepo ports.ContributionRepository,
	chargeRepo ports.ChargeRepository,
	logger ports.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		db:               db,
		subRepo:          subRepo,
		contributionRepo: contributionRepo,
		chargeRepo:       chargeRepo,
		logger:           logger,
		today:            timeutil.Today,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSubscription creates an active subscription. The first renewal date
// is the first payment date caught up to today.
func (s *Service) CreateSubscription(ctx context.Context, req *serviceports.CreateSubscriptionRequest) (*domain.Subscription, error) {
	if err := validateSubscriptionFields(req.OwnerID, req.Name, req.Price, req.Cycle, req.Category, req.ActivationDate); err != nil {
		return nil, err
	}

	activation := timeutil.CalendarDate(req.ActivationDate)
	firstPayment := activation
	if !req.FirstPaymentDate.IsZero() {
		firstPayment = timeutil.CalendarDate(req.FirstPaymentDate)
	}
	if firstPayment.Before(activation) {
		return nil, domain.ErrValidationFailed.
			WithDetail("first_payment_date", timeutil.FormatDate(firstPayment)).
			WithDetail("reason", "first payment cannot precede activation")
	}

	renewal, err := billing.InitialRenewalDate(firstPayment, req.Cycle, s.today())
	if err != nil {
		return nil, err
	}

	sub := &domain.Subscription{
		ID:              uuid.New().String(),
		OwnerID:         req.OwnerID,
		Name:            strings.TrimSpace(req.Name),
		Price:           req.Price,
		Cycle:           req.Cycle,
		Category:        req.Category,
		ActivationDate:  activation,
		NextRenewalDate: renewal,
		Active:          true,
	}

	if err := s.subRepo.Create(ctx, nil, sub); err != nil {
		s.logger.Error("create subscription failed",
			ports.String("owner_id", req.OwnerID),
			ports.Err(err))
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	s.logger.Info("subscription created",
		ports.String("subscription_id", sub.ID),
		ports.String("owner_id", sub.OwnerID),
		ports.String("cycle", string(sub.Cycle)),
		ports.String("next_renewal", timeutil.FormatDate(sub.NextRenewalDate)))

	return sub, nil
}

// UpdateSubscription edits name, price, cycle, category or activation date.
// The renewal date only moves when charges are recorded.
func (s *Service) UpdateSubscription(ctx context.Context, req *serviceports.UpdateSubscriptionRequest) (*domain.Subscription, error) {
	var updated *domain.Subscription

	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sub, err := s.subRepo.GetByID(ctx, tx, req.SubscriptionID)
		if err != nil {
			return err
		}

		if req.Name != nil {
			sub.Name = strings.TrimSpace(*req.Name)
		}
		if req.Price != nil {
			sub.Price = *req.Price
		}
		if req.Cycle != nil {
			sub.Cycle = *req.Cycle
		}
		if req.Category != nil {
			sub.Category = *req.Category
		}
		if req.ActivationDate != nil {
			sub.ActivationDate = timeutil.CalendarDate(*req.ActivationDate)
		}

		if err := validateSubscriptionFields(sub.OwnerID, sub.Name, sub.Price, sub.Cycle, sub.Category, sub.ActivationDate); err != nil {
			return err
		}
		if sub.NextRenewalDate.Before(sub.ActivationDate) {
			return domain.ErrValidationFailed.
				WithDetail("activation_date", timeutil.FormatDate(sub.ActivationDate)).
				WithDetail("reason", "activation cannot follow the next renewal date")
		}

		if err := s.subRepo.Update(ctx, tx, sub); err != nil {
			return err
		}
		updated = sub
		return nil
	})
	if err != nil {
		s.logger.Warn("update subscription failed",
			ports.String("subscription_id", req.SubscriptionID),
			ports.Err(err))
		return nil, err
	}

	s.logger.Info("subscription updated", ports.String("subscription_id", updated.ID))
	return updated, nil
}

// SetActive toggles the active flag without touching history
func (s *Service) SetActive(ctx context.Context, subscriptionID string, active bool) (*domain.Subscription, error) {
	var updated *domain.Subscription

	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sub, err := s.subRepo.GetByID(ctx, tx, subscriptionID)
		if err != nil {
			return err
		}
		toggled := sub.WithActive(active)
		if err := s.subRepo.Update(ctx, tx, &toggled); err != nil {
			return err
		}
		updated = &toggled
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("subscription activation changed",
		ports.String("subscription_id", subscriptionID),
		ports.Bool("active", active))
	return updated, nil
}

// DeleteSubscription removes contributions and charges, then the subscription,
// in one transaction
func (s *Service) DeleteSubscription(ctx context.Context, subscriptionID string) error {
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := s.subRepo.GetByID(ctx, tx, subscriptionID); err != nil {
			return err
		}
		if err := s.contributionRepo.DeleteBySubscription(ctx, tx, subscriptionID); err != nil {
			return fmt.Errorf("delete contributions: %w", err)
		}
		if err := s.chargeRepo.DeleteBySubscription(ctx, tx, subscriptionID); err != nil {
			return fmt.Errorf("delete charges: %w", err)
		}
		return s.subRepo.Delete(ctx, tx, subscriptionID)
	})
	if err != nil {
		s.logger.Error("delete subscription failed",
			ports.String("subscription_id", subscriptionID),
			ports.Err(err))
		return err
	}

	s.logger.Info("subscription deleted", ports.String("subscription_id", subscriptionID))
	return nil
}

// RecordCharge appends a charge and advances the renewal date by the periods
// it covers, atomically
func (s *Service) RecordCharge(ctx context.Context, req *serviceports.RecordChargeRequest) (*domain.Charge, *domain.Subscription, error) {
	if req.PeriodsCovered < 1 {
		return nil, nil, domain.ErrValidationFailed.WithDetail("periods_covered", req.PeriodsCovered)
	}

	chargedOn := s.today()
	if !req.ChargedOn.IsZero() {
		chargedOn = timeutil.CalendarDate(req.ChargedOn)
	}

	var (
		charge  *domain.Charge
		updated *domain.Subscription
	)
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sub, err := s.subRepo.GetByID(ctx, tx, req.SubscriptionID)
		if err != nil {
			return err
		}

		advanced, err := billing.AdvanceRenewal(*sub, req.PeriodsCovered)
		if err != nil {
			return err
		}

		charge = &domain.Charge{
			ID:             uuid.New().String(),
			SubscriptionID: sub.ID,
			ChargedOn:      chargedOn,
			PeriodsCovered: req.PeriodsCovered,
			Method:         methodOrOther(req.Method),
			Note:           req.Note,
		}
		if err := s.chargeRepo.Create(ctx, tx, charge); err != nil {
			return fmt.Errorf("save charge: %w", err)
		}
		if err := s.subRepo.Update(ctx, tx, &advanced); err != nil {
			return fmt.Errorf("advance renewal: %w", err)
		}
		updated = &advanced
		return nil
	})
	if err != nil {
		s.logger.Error("record charge failed",
			ports.String("subscription_id", req.SubscriptionID),
			ports.Err(err))
		return nil, nil, err
	}

	observability.RecordCharge(string(updated.Cycle), req.PeriodsCovered)
	s.logger.Info("charge recorded",
		ports.String("subscription_id", updated.ID),
		ports.Int("periods_covered", req.PeriodsCovered),
		ports.String("next_renewal", timeutil.FormatDate(updated.NextRenewalDate)))

	return charge, updated, nil
}

// ListCharges returns the charge history, newest first
func (s *Service) ListCharges(ctx context.Context, subscriptionID string) ([]*domain.Charge, error) {
	var charges []*domain.Charge
	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := s.subRepo.GetByID(ctx, tx, subscriptionID); err != nil {
			return err
		}
		var err error
		charges, err = s.chargeRepo.ListBySubscription(ctx, tx, subscriptionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return charges, nil
}

// AddContributor attaches a contribution to a subscription, either as an
// unpaid pledge or with a payment that has already been made
func (s *Service) AddContributor(ctx context.Context, req *serviceports.AddContributorRequest) (*domain.Contribution, error) {
	contributor, err := contributorFor(req.UserID, req.GuestName)
	if err != nil {
		return nil, err
	}

	c := &domain.Contribution{
		ID:             uuid.New().String(),
		SubscriptionID: req.SubscriptionID,
		Contributor:    contributor,
		Amount:         req.Amount,
		Method:         methodOrOther(req.Method),
		Note:           strings.TrimSpace(req.Note),
	}
	if req.PaidOn != nil {
		if req.PeriodsCovered < 1 {
			return nil, domain.ErrValidationFailed.WithDetail("periods_covered", req.PeriodsCovered)
		}
		paidOn := timeutil.CalendarDate(*req.PaidOn)
		c.PaidOn = &paidOn
		c.PeriodsCovered = req.PeriodsCovered
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := s.subRepo.GetByID(ctx, tx, req.SubscriptionID); err != nil {
			return err
		}
		return s.contributionRepo.Create(ctx, tx, c)
	})
	if err != nil {
		s.logger.Warn("add contributor failed",
			ports.String("subscription_id", req.SubscriptionID),
			ports.Err(err))
		return nil, err
	}

	s.logger.Info("contributor added",
		ports.String("subscription_id", req.SubscriptionID),
		ports.String("contribution_id", c.ID),
		ports.Bool("guest", contributor.IsGuest()),
		ports.Bool("paid", c.IsPaid()))
	return c, nil
}

// LogContributionPayment overwrites the contribution's payment state with
// the newly logged payment
func (s *Service) LogContributionPayment(ctx context.Context, req *serviceports.LogContributionPaymentRequest) (*domain.Contribution, error) {
	if req.PeriodsCovered < 1 {
		return nil, domain.ErrValidationFailed.WithDetail("periods_covered", req.PeriodsCovered)
	}

	paidOn := s.today()
	if !req.PaidOn.IsZero() {
		paidOn = timeutil.CalendarDate(req.PaidOn)
	}

	var updated domain.Contribution
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		current, err := s.contributionRepo.GetByID(ctx, tx, req.ContributionID)
		if err != nil {
			return err
		}

		updated = current.WithPayment(paidOn, req.PeriodsCovered, methodOrOther(req.Method), req.Note)
		if req.Amount != nil {
			updated.Amount = *req.Amount
		}
		if err := updated.Validate(); err != nil {
			return err
		}
		return s.contributionRepo.Update(ctx, tx, &updated)
	})
	if err != nil {
		s.logger.Warn("log contribution payment failed",
			ports.String("contribution_id", req.ContributionID),
			ports.Err(err))
		return nil, err
	}

	contributorType := "registered"
	if updated.Contributor.IsGuest() {
		contributorType = "guest"
	}
	observability.RecordContributionPayment(string(updated.Method), contributorType)
	s.logger.Info("contribution payment logged",
		ports.String("contribution_id", updated.ID),
		ports.String("subscription_id", updated.SubscriptionID),
		ports.Int("periods_covered", updated.PeriodsCovered))

	return &updated, nil
}

// ClearContributionPayment reverts a contribution to an unpaid pledge,
// keeping its amount and method
func (s *Service) ClearContributionPayment(ctx context.Context, contributionID string) (*domain.Contribution, error) {
	var updated domain.Contribution
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		current, err := s.contributionRepo.GetByID(ctx, tx, contributionID)
		if err != nil {
			return err
		}
		updated = current.WithoutPayment()
		return s.contributionRepo.Update(ctx, tx, &updated)
	})
	if err != nil {
		s.logger.Warn("clear contribution payment failed",
			ports.String("contribution_id", contributionID),
			ports.Err(err))
		return nil, err
	}

	s.logger.Info("contribution payment cleared",
		ports.String("contribution_id", updated.ID),
		ports.String("subscription_id", updated.SubscriptionID))
	return &updated, nil
}

// RemoveContributor deletes a contribution
func (s *Service) RemoveContributor(ctx context.Context, contributionID string) error {
	if err := s.contributionRepo.Delete(ctx, nil, contributionID); err != nil {
		return err
	}
	s.logger.Info("contributor removed", ports.String("contribution_id", contributionID))
	return nil
}

// ListSubscriptions returns an owner's subscriptions matching the filters,
// each with its contributor count
func (s *Service) ListSubscriptions(ctx context.Context, req *serviceports.ListSubscriptionsRequest) ([]serviceports.SubscriptionSummary, error) {
	if req.OwnerID == "" {
		return nil, domain.ErrValidationMissingField.WithDetail("field", "owner_id")
	}

	today := s.today()
	query := strings.ToLower(strings.TrimSpace(req.Query))
	var summaries []serviceports.SubscriptionSummary

	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		subs, err := s.subRepo.ListByOwner(ctx, tx, req.OwnerID)
		if err != nil {
			return err
		}

		summaries = make([]serviceports.SubscriptionSummary, 0, len(subs))
		for _, sub := range subs {
			if !matchesFilter(sub, query, req.Category, req.Active) {
				continue
			}
			contributions, err := s.contributionRepo.ListBySubscription(ctx, tx, sub.ID)
			if err != nil {
				return err
			}
			outlook, err := billing.ClassifyRenewal(*sub, today)
			if err != nil {
				return err
			}
			summaries = append(summaries, serviceports.SubscriptionSummary{
				Subscription:     sub,
				ContributorCount: len(contributions),
				HasContributors:  len(contributions) > 0,
				RenewalOverdue:   sub.Active && billing.IsStale(*sub, today),
				Renewal:          outlook,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// GetSubscriptionDetail computes financials and contributor statuses as of
// asOf (today when zero) from one consistent snapshot
func (s *Service) GetSubscriptionDetail(ctx context.Context, subscriptionID string, asOf time.Time) (*serviceports.SubscriptionDetail, error) {
	ref := s.referenceDate(asOf)
	detail := &serviceports.SubscriptionDetail{AsOf: ref}

	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sub, err := s.subRepo.GetByID(ctx, tx, subscriptionID)
		if err != nil {
			return err
		}
		contributions, err := s.contributionRepo.ListBySubscription(ctx, tx, subscriptionID)
		if err != nil {
			return err
		}
		charges, err := s.chargeRepo.ListBySubscription(ctx, tx, subscriptionID)
		if err != nil {
			return err
		}

		values := derefContributions(contributions)
		financials, err := billing.ComputeFinancials(*sub, values, ref)
		if err != nil {
			return err
		}
		statuses, err := billing.ClassifyContributions(values, sub.Cycle, ref)
		if err != nil {
			return err
		}

		detail.Subscription = sub
		detail.Financials = financials
		detail.Contributors = statuses
		detail.PendingCount = billing.CountPending(statuses)
		detail.Charges = charges
		if sub.Active && sub.IsComplete() {
			monthly, err := billing.ComputeMonthlyBreakdown(*sub, values)
			if err != nil {
				return err
			}
			detail.Monthly = &monthly
		}
		return nil
	})
	if err != nil {
		s.logEngineError("subscription detail failed", subscriptionID, err)
		return nil, err
	}
	return detail, nil
}

// GetFinancials computes historical gross, received and net as of asOf
func (s *Service) GetFinancials(ctx context.Context, subscriptionID string, asOf time.Time) (billing.Financials, error) {
	ref := s.referenceDate(asOf)
	var financials billing.Financials

	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sub, err := s.subRepo.GetByID(ctx, tx, subscriptionID)
		if err != nil {
			return err
		}
		contributions, err := s.contributionRepo.ListBySubscription(ctx, tx, subscriptionID)
		if err != nil {
			return err
		}
		financials, err = billing.ComputeFinancials(*sub, derefContributions(contributions), ref)
		return err
	})
	if err != nil {
		s.logEngineError("compute financials failed", subscriptionID, err)
		return billing.Financials{}, err
	}
	return financials, nil
}

// GetOwnerReport folds the owner's active subscriptions into monthly totals.
// Subscriptions the engine rejects are logged and reported as skipped.
func (s *Service) GetOwnerReport(ctx context.Context, ownerID string) (*billing.AggregateReport, error) {
	if ownerID == "" {
		return nil, domain.ErrValidationMissingField.WithDetail("field", "owner_id")
	}

	start := time.Now()
	var items []billing.SubscriptionWithContributions

	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		subs, err := s.subRepo.ListByOwner(ctx, tx, ownerID)
		if err != nil {
			return err
		}
		items = make([]billing.SubscriptionWithContributions, 0, len(subs))
		for _, sub := range subs {
			if !sub.Active {
				continue
			}
			contributions, err := s.contributionRepo.ListBySubscription(ctx, tx, sub.ID)
			if err != nil {
				return err
			}
			items = append(items, billing.SubscriptionWithContributions{
				Subscription:  *sub,
				Contributions: derefContributions(contributions),
			})
		}
		return nil
	})
	if err != nil {
		s.logger.Error("load owner report failed", ports.String("owner_id", ownerID), ports.Err(err))
		return nil, err
	}

	report := billing.ComputeAggregateReport(items)
	for _, skipped := range report.Skipped {
		code := domain.GetErrorCode(skipped.Err)
		observability.RecordReportSkipped(string(code))
		s.logger.Warn("subscription skipped in report",
			ports.String("owner_id", ownerID),
			ports.String("subscription_id", skipped.SubscriptionID),
			ports.String("error_code", string(code)),
			ports.Err(skipped.Err))
	}
	observability.RecordReport(time.Since(start).Seconds())

	s.logger.Debug("owner report computed",
		ports.String("owner_id", ownerID),
		ports.Int("included", report.Included),
		ports.Int("skipped", len(report.Skipped)))

	return &report, nil
}

func (s *Service) referenceDate(asOf time.Time) time.Time {
	if asOf.IsZero() {
		return s.today()
	}
	return timeutil.CalendarDate(asOf)
}

func (s *Service) logEngineError(msg, subscriptionID string, err error) {
	if domain.IsEngineError(err) {
		s.logger.Warn(msg,
			ports.String("subscription_id", subscriptionID),
			ports.String("error_code", string(domain.GetErrorCode(err))),
			ports.Err(err))
	}
}
