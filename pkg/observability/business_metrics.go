package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chargesRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_charges_recorded_total",
		Help: "Total provider charges recorded against subscriptions",
	}, []string{
		"cycle", // monthly, quarterly, yearly
	})

	chargePeriodsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_charge_periods_total",
		Help: "Total billing periods covered by recorded charges",
	})

	contributionPaymentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_contribution_payments_total",
		Help: "Total contributor payments logged",
	}, []string{
		"method",           // card, transfer, cash, bizum, other
		"contributor_type", // registered, guest
	})

	reportComputationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_report_computations_total",
		Help: "Total aggregate reports computed",
	})

	reportSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_report_skipped_subscriptions_total",
		Help: "Subscriptions left out of an aggregate report because they failed validation",
	}, []string{
		"error_code",
	})

	reportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tracker_report_duration_seconds",
		Help:    "Time to load and fold an owner's aggregate report",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	staleRenewals = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tracker_stale_renewals",
		Help: "Active subscriptions whose next renewal date is in the past, as of the last scan",
	})

	pendingContributions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tracker_pending_contributions",
		Help: "Contributions not covering the scan date, as of the last scan",
	})

	overdueScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_overdue_scans_total",
		Help: "Overdue scanner runs",
	}, []string{
		"status", // success, failed
	})
)

// RecordCharge records a charge that advanced a renewal by periods
func RecordCharge(cycle string, periods int) {
	chargesRecordedTotal.WithLabelValues(cycle).Inc()
	chargePeriodsTotal.Add(float64(periods))
}

// RecordContributionPayment records a logged contributor payment
func RecordContributionPayment(method, contributorType string) {
	contributionPaymentsTotal.WithLabelValues(method, contributorType).Inc()
}

// RecordReport records one aggregate report computation
func RecordReport(durationSeconds float64) {
	reportComputationsTotal.Inc()
	reportDuration.Observe(durationSeconds)
}

// RecordReportSkipped counts a subscription excluded from a report
func RecordReportSkipped(errorCode string) {
	reportSkippedTotal.WithLabelValues(errorCode).Inc()
}

// UpdateOverdueGauges publishes the result of an overdue scan
func UpdateOverdueGauges(stale, pending int) {
	staleRenewals.Set(float64(stale))
	pendingContributions.Set(float64(pending))
}

// RecordOverdueScan counts a scanner run by outcome
func RecordOverdueScan(status string) {
	overdueScansTotal.WithLabelValues(status).Inc()
}
