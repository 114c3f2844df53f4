// Package jobs holds scheduled background work.
package jobs

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/kevin07696/subs-tracker/internal/billing"
	"github.com/kevin07696/subs-tracker/internal/domain"
	"github.com/kevin07696/subs-tracker/internal/domain/ports"
	"github.com/kevin07696/subs-tracker/pkg/observability"
	"github.com/kevin07696/subs-tracker/pkg/timeutil"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ScanResult summarises one overdue scan across all owners
type ScanResult struct {
	Scanned              int
	StaleRenewals        int
	PendingContributions int
	Skipped              int
}

// OverdueScanner counts active subscriptions whose renewal date has passed
// without a recorded charge, and contributions whose coverage has lapsed.
// It only reads; renewal dates move when the owner records a charge.
type OverdueScanner struct {
	db               ports.DBPort
	subRepo          ports.SubscriptionRepository
	contributionRepo ports.ContributionRepository
	logger           *zap.Logger
	today            func() time.Time
}

// NewOverdueScanner creates a new overdue scanner
func NewOverdueScanner(
	db ports.DBPort,
	subRepo ports.SubscriptionRepository,
	contributionRepo ports.ContributionRepository,
	logger *zap.Logger,
) *OverdueScanner {
	return &OverdueScanner{
		db:               db,
		subRepo:          subRepo,
		contributionRepo: contributionRepo,
		logger:           logger,
		today:            timeutil.Today,
	}
}

// Scan runs one pass over every active subscription and publishes the
// totals as gauges. A subscription with an unusable cycle is skipped.
func (s *OverdueScanner) Scan(ctx context.Context) (ScanResult, error) {
	today := s.today()
	var result ScanResult

	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		subs, err := s.subRepo.ListActive(ctx, tx)
		if err != nil {
			return err
		}

		for _, sub := range subs {
			if err := sub.Cycle.Validate(); err != nil {
				s.skip(&result, sub.ID, err)
				continue
			}
			contributions, err := s.contributionRepo.ListBySubscription(ctx, tx, sub.ID)
			if err != nil {
				return err
			}

			statuses, err := billing.ClassifyContributions(derefContributions(contributions), sub.Cycle, today)
			if err != nil {
				s.skip(&result, sub.ID, err)
				continue
			}

			result.Scanned++
			result.PendingContributions += billing.CountPending(statuses)
			if billing.IsStale(*sub, today) {
				result.StaleRenewals++
				s.logger.Debug("Renewal overdue",
					zap.String("subscription_id", sub.ID),
					zap.String("owner_id", sub.OwnerID),
					zap.String("next_renewal", timeutil.FormatDate(sub.NextRenewalDate)))
			}
		}
		return nil
	})
	if err != nil {
		observability.RecordOverdueScan("error")
		s.logger.Error("Overdue scan failed", zap.Error(err))
		return ScanResult{}, err
	}

	observability.UpdateOverdueGauges(result.StaleRenewals, result.PendingContributions)
	observability.RecordOverdueScan("success")
	s.logger.Info("Overdue scan completed",
		zap.Int("scanned", result.Scanned),
		zap.Int("stale_renewals", result.StaleRenewals),
		zap.Int("pending_contributions", result.PendingContributions),
		zap.Int("skipped", result.Skipped))

	return result, nil
}

// Register schedules Scan on c using a standard 5-field cron spec. Each run
// gets its own context bounded by timeout.
func (s *OverdueScanner) Register(c *cron.Cron, spec string, timeout time.Duration) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, _ = s.Scan(ctx)
	})
}

func (s *OverdueScanner) skip(result *ScanResult, subscriptionID string, err error) {
	result.Skipped++
	s.logger.Warn("Skipping subscription in overdue scan",
		zap.String("subscription_id", subscriptionID),
		zap.String("error_code", string(domain.GetErrorCode(err))),
		zap.Error(err))
}

func derefContributions(in []*domain.Contribution) []domain.Contribution {
	out := make([]domain.Contribution, 0, len(in))
	for _, c := range in {
		out = append(out, *c)
	}
	return out
}
