package tracker

import (
	"time"

	"github.com/kevin07696/subs-tracker/internal/billing"
	"github.com/kevin07696/subs-tracker/internal/domain"
	serviceports "github.com/kevin07696/subs-tracker/internal/services/ports"
	"github.com/kevin07696/subs-tracker/pkg/timeutil"
	"github.com/shopspring/decimal"
)

// moneyPlaces is the only place amounts get rounded
const moneyPlaces = 2

// CreateSubscriptionRequest is the body of POST /owners/{ownerID}/subscriptions
type CreateSubscriptionRequest struct {
	Name             string          `json:"name"`
	Price            decimal.Decimal `json:"price"`
	Cycle            string          `json:"cycle"`
	Category         string          `json:"category"`
	ActivationDate   string          `json:"activation_date"`
	FirstPaymentDate string          `json:"first_payment_date,omitempty"`
}

// UpdateSubscriptionRequest is the body of PATCH /subscriptions/{id}
type UpdateSubscriptionRequest struct {
	Name           *string          `json:"name"`
	Price          *decimal.Decimal `json:"price"`
	Cycle          *string          `json:"cycle"`
	Category       *string          `json:"category"`
	ActivationDate *string          `json:"activation_date"`
}

// SetActiveRequest is the body of POST /subscriptions/{id}/activation
type SetActiveRequest struct {
	Active *bool `json:"active"`
}

// RecordChargeRequest is the body of POST /subscriptions/{id}/charges
type RecordChargeRequest struct {
	ChargedOn      string `json:"charged_on,omitempty"`
	PeriodsCovered *int   `json:"periods_covered"` // defaults to 1
	Method         string `json:"method"`
	Note           string `json:"note"`
}

// AddContributorRequest is the body of POST /subscriptions/{id}/contributions
type AddContributorRequest struct {
	UserID    string          `json:"user_id,omitempty"`
	GuestName string          `json:"guest_name,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Note      string          `json:"note"`
	// PaidOn marks the contribution as already paid on that date
	PaidOn         string `json:"paid_on,omitempty"`
	PeriodsCovered *int   `json:"periods_covered"` // defaults to 1 when paid_on is set
}

// LogPaymentRequest is the body of POST /contributions/{id}/payments
type LogPaymentRequest struct {
	PaidOn         string           `json:"paid_on,omitempty"`
	PeriodsCovered *int             `json:"periods_covered"` // defaults to 1
	Method         string           `json:"method"`
	Note           string           `json:"note"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
}

// SubscriptionResponse is the wire form of a subscription
type SubscriptionResponse struct {
	ID              string `json:"id"`
	OwnerID         string `json:"owner_id"`
	Name            string `json:"name"`
	Price           string `json:"price"`
	Cycle           string `json:"cycle"`
	Category        string `json:"category,omitempty"`
	ActivationDate  string `json:"activation_date"`
	NextRenewalDate string `json:"next_renewal_date"`
	Active          bool   `json:"active"`
}

// SubscriptionSummaryResponse is one row of the subscription list
type SubscriptionSummaryResponse struct {
	SubscriptionResponse
	ContributorCount    int    `json:"contributor_count"`
	HasContributors     bool   `json:"has_contributors"`
	RenewalOverdue      bool   `json:"renewal_overdue"`
	RenewalState        string `json:"renewal_state"`
	DaysUntilRenewal    int    `json:"days_until_renewal"`
	FirstPaymentPending bool   `json:"first_payment_pending"`
}

// ContributionResponse is the wire form of a contribution
type ContributionResponse struct {
	ID             string  `json:"id"`
	SubscriptionID string  `json:"subscription_id"`
	UserID         string  `json:"user_id,omitempty"`
	GuestName      string  `json:"guest_name,omitempty"`
	Label          string  `json:"label"`
	Amount         string  `json:"amount"`
	PaidOn         *string `json:"paid_on"`
	PeriodsCovered int     `json:"periods_covered"`
	Method         string  `json:"method"`
	Note           string  `json:"note,omitempty"`
}

// ContributorStatusResponse adds the payment status to a contribution
type ContributorStatusResponse struct {
	ContributionResponse
	Status       string  `json:"status"`
	CoveredUntil *string `json:"covered_until"`
}

// ChargeResponse is the wire form of a charge
type ChargeResponse struct {
	ID             string `json:"id"`
	SubscriptionID string `json:"subscription_id"`
	ChargedOn      string `json:"charged_on"`
	PeriodsCovered int    `json:"periods_covered"`
	Method         string `json:"method"`
	Note           string `json:"note,omitempty"`
}

// RecordChargeResponse returns the new charge and the advanced subscription
type RecordChargeResponse struct {
	Charge       ChargeResponse       `json:"charge"`
	Subscription SubscriptionResponse `json:"subscription"`
}

// FinancialsResponse is the historical cost picture as of a date
type FinancialsResponse struct {
	SubscriptionID  string `json:"subscription_id"`
	AsOf            string `json:"as_of"`
	ElapsedPeriods  int    `json:"elapsed_periods"`
	GrossHistorical string `json:"gross_historical"`
	TotalReceived   string `json:"total_received"`
	NetHistorical   string `json:"net_historical"`
	Benefit         bool   `json:"benefit"`
}

// MonthlyResponse is a subscription normalised to monthly figures
type MonthlyResponse struct {
	SubscriptionID      string `json:"subscription_id"`
	Name                string `json:"name"`
	Category            string `json:"category,omitempty"`
	ServiceMonthly      string `json:"service_monthly"`
	ContributorsMonthly string `json:"contributors_monthly"`
	OwnerNetMonthly     string `json:"owner_net_monthly"`
}

// SubscriptionDetailResponse is the detail view of one subscription
type SubscriptionDetailResponse struct {
	Subscription SubscriptionResponse        `json:"subscription"`
	Financials   FinancialsResponse          `json:"financials"`
	Monthly      *MonthlyResponse            `json:"monthly"`
	Contributors []ContributorStatusResponse `json:"contributors"`
	PendingCount int                         `json:"pending_count"`
	Charges      []ChargeResponse            `json:"charges"`
}

// SkippedResponse names a subscription the report left out and why
type SkippedResponse struct {
	SubscriptionID string `json:"subscription_id"`
	Name           string `json:"name"`
	ErrorCode      string `json:"error_code"`
}

// ReportResponse is the owner's aggregate report
type ReportResponse struct {
	OwnerID             string            `json:"owner_id"`
	TotalMonthlySpend   string            `json:"total_monthly_spend"`
	TotalMonthlySavings string            `json:"total_monthly_savings"`
	AnnualProjection    string            `json:"annual_projection"`
	CategoryTotals      map[string]string `json:"category_totals"`
	Top                 []MonthlyResponse `json:"top"`
	IncludedCount       int               `json:"included_count"`
	SkippedCount        int               `json:"skipped_count"`
	Skipped             []SkippedResponse `json:"skipped,omitempty"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(moneyPlaces)
}

func optionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := timeutil.FormatDate(*t)
	return &s
}

func toSubscriptionResponse(s *domain.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:              s.ID,
		OwnerID:         s.OwnerID,
		Name:            s.Name,
		Price:           money(s.Price),
		Cycle:           string(s.Cycle),
		Category:        string(s.Category),
		ActivationDate:  timeutil.FormatDate(s.ActivationDate),
		NextRenewalDate: timeutil.FormatDate(s.NextRenewalDate),
		Active:          s.Active,
	}
}

func toSummaryResponses(summaries []serviceports.SubscriptionSummary) []SubscriptionSummaryResponse {
	out := make([]SubscriptionSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, SubscriptionSummaryResponse{
			SubscriptionResponse: toSubscriptionResponse(s.Subscription),
			ContributorCount:     s.ContributorCount,
			HasContributors:      s.HasContributors,
			RenewalOverdue:       s.RenewalOverdue,
			RenewalState:         string(s.Renewal.State),
			DaysUntilRenewal:     s.Renewal.DaysUntil,
			FirstPaymentPending:  s.Renewal.State == billing.RenewalFirstPaymentPending,
		})
	}
	return out
}

func toContributionResponse(c domain.Contribution) ContributionResponse {
	return ContributionResponse{
		ID:             c.ID,
		SubscriptionID: c.SubscriptionID,
		UserID:         c.Contributor.UserID(),
		GuestName:      c.Contributor.GuestName(),
		Label:          c.Contributor.Label(),
		Amount:         money(c.Amount),
		PaidOn:         optionalDate(c.PaidOn),
		PeriodsCovered: c.PeriodsCovered,
		Method:         string(c.Method),
		Note:           c.Note,
	}
}

func toChargeResponse(c *domain.Charge) ChargeResponse {
	return ChargeResponse{
		ID:             c.ID,
		SubscriptionID: c.SubscriptionID,
		ChargedOn:      timeutil.FormatDate(c.ChargedOn),
		PeriodsCovered: c.PeriodsCovered,
		Method:         string(c.Method),
		Note:           c.Note,
	}
}

func toChargeResponses(charges []*domain.Charge) []ChargeResponse {
	out := make([]ChargeResponse, 0, len(charges))
	for _, c := range charges {
		out = append(out, toChargeResponse(c))
	}
	return out
}

func toFinancialsResponse(subscriptionID string, asOf time.Time, f billing.Financials) FinancialsResponse {
	return FinancialsResponse{
		SubscriptionID:  subscriptionID,
		AsOf:            timeutil.FormatDate(asOf),
		ElapsedPeriods:  f.ElapsedPeriods,
		GrossHistorical: money(f.GrossHistorical),
		TotalReceived:   money(f.TotalReceived),
		NetHistorical:   money(f.NetHistorical),
		Benefit:         f.IsBenefit(),
	}
}

func toMonthlyResponse(m billing.MonthlyBreakdown) MonthlyResponse {
	return MonthlyResponse{
		SubscriptionID:      m.SubscriptionID,
		Name:                m.Name,
		Category:            string(m.Category),
		ServiceMonthly:      money(m.ServiceMonthly),
		ContributorsMonthly: money(m.ContributorsMonthly),
		OwnerNetMonthly:     money(m.OwnerNetMonthly),
	}
}

func toDetailResponse(d *serviceports.SubscriptionDetail) SubscriptionDetailResponse {
	resp := SubscriptionDetailResponse{
		Subscription: toSubscriptionResponse(d.Subscription),
		Financials:   toFinancialsResponse(d.Subscription.ID, d.AsOf, d.Financials),
		Contributors: make([]ContributorStatusResponse, 0, len(d.Contributors)),
		PendingCount: d.PendingCount,
		Charges:      toChargeResponses(d.Charges),
	}
	if d.Monthly != nil {
		monthly := toMonthlyResponse(*d.Monthly)
		resp.Monthly = &monthly
	}
	for _, cs := range d.Contributors {
		resp.Contributors = append(resp.Contributors, ContributorStatusResponse{
			ContributionResponse: toContributionResponse(cs.Contribution),
			Status:               string(cs.Status),
			CoveredUntil:         optionalDate(cs.CoveredUntil),
		})
	}
	return resp
}

func toReportResponse(ownerID string, r *billing.AggregateReport) ReportResponse {
	resp := ReportResponse{
		OwnerID:             ownerID,
		TotalMonthlySpend:   money(r.TotalMonthlySpend),
		TotalMonthlySavings: money(r.TotalMonthlySavings),
		AnnualProjection:    money(r.AnnualProjection),
		CategoryTotals:      make(map[string]string, len(r.CategoryTotals)),
		Top:                 make([]MonthlyResponse, 0, len(r.Top)),
		IncludedCount:       r.Included,
		SkippedCount:        len(r.Skipped),
	}
	for category, total := range r.CategoryTotals {
		resp.CategoryTotals[string(category)] = money(total)
	}
	for _, m := range r.Top {
		resp.Top = append(resp.Top, toMonthlyResponse(m))
	}
	for _, s := range r.Skipped {
		resp.Skipped = append(resp.Skipped, SkippedResponse{
			SubscriptionID: s.SubscriptionID,
			Name:           s.Name,
			ErrorCode:      string(domain.GetErrorCode(s.Err)),
		})
	}
	return resp
}
