// Package tracker exposes the subscription tracker over HTTP/JSON.
package tracker

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/kevin07696/subs-tracker/internal/domain"
	serviceports "github.com/kevin07696/subs-tracker/internal/services/ports"
	"github.com/kevin07696/subs-tracker/pkg/timeutil"
	"go.uber.org/zap"
)

// Handler serves the /api/v1 tracker endpoints
type Handler struct {
	service serviceports.TrackerService
	logger  *zap.Logger
}

// NewHandler creates a new tracker HTTP handler
func NewHandler(service serviceports.TrackerService, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes mounts every endpoint under /api/v1 on r
func (h *Handler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/owners/{ownerID}/subscriptions", h.CreateSubscription).Methods(http.MethodPost)
	api.HandleFunc("/owners/{ownerID}/subscriptions", h.ListSubscriptions).Methods(http.MethodGet)
	api.HandleFunc("/owners/{ownerID}/report", h.GetOwnerReport).Methods(http.MethodGet)

	api.HandleFunc("/subscriptions/{id}", h.GetSubscription).Methods(http.MethodGet)
	api.HandleFunc("/subscriptions/{id}", h.UpdateSubscription).Methods(http.MethodPatch)
	api.HandleFunc("/subscriptions/{id}", h.DeleteSubscription).Methods(http.MethodDelete)
	api.HandleFunc("/subscriptions/{id}/activation", h.SetActive).Methods(http.MethodPost)
	api.HandleFunc("/subscriptions/{id}/financials", h.GetFinancials).Methods(http.MethodGet)
	api.HandleFunc("/subscriptions/{id}/charges", h.RecordCharge).Methods(http.MethodPost)
	api.HandleFunc("/subscriptions/{id}/charges", h.ListCharges).Methods(http.MethodGet)
	api.HandleFunc("/subscriptions/{id}/contributions", h.AddContributor).Methods(http.MethodPost)

	api.HandleFunc("/contributions/{id}/payments", h.LogContributionPayment).Methods(http.MethodPost)
	api.HandleFunc("/contributions/{id}/payments", h.ClearContributionPayment).Methods(http.MethodDelete)
	api.HandleFunc("/contributions/{id}", h.RemoveContributor).Methods(http.MethodDelete)
}

// CreateSubscription handles POST /owners/{ownerID}/subscriptions
func (h *Handler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req CreateSubscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	cycle, err := domain.ParseCycle(req.Cycle)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	activation, err := parseDate("activation_date", req.ActivationDate)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	firstPayment, err := parseDate("first_payment_date", req.FirstPaymentDate)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	sub, err := h.service.CreateSubscription(r.Context(), &serviceports.CreateSubscriptionRequest{
		OwnerID:          mux.Vars(r)["ownerID"],
		Name:             req.Name,
		Price:            req.Price,
		Cycle:            cycle,
		Category:         category,
		ActivationDate:   activation,
		FirstPaymentDate: firstPayment,
	})
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, toSubscriptionResponse(sub))
}

// ListSubscriptions handles GET /owners/{ownerID}/subscriptions?q=&category=&active=
func (h *Handler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &serviceports.ListSubscriptionsRequest{
		OwnerID: mux.Vars(r)["ownerID"],
		Query:   query.Get("q"),
	}

	if raw := query.Get("category"); raw != "" {
		category, err := domain.ParseCategory(raw)
		if err != nil {
			h.respondDomainError(w, r, err)
			return
		}
		req.Category = &category
	}
	if raw := query.Get("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "active must be true or false")
			return
		}
		req.Active = &active
	}

	summaries, err := h.service.ListSubscriptions(r.Context(), req)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"subscriptions": toSummaryResponses(summaries),
	})
}

// GetSubscription handles GET /subscriptions/{id}?as_of=YYYY-MM-DD
func (h *Handler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseDate("as_of", r.URL.Query().Get("as_of"))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	detail, err := h.service.GetSubscriptionDetail(r.Context(), mux.Vars(r)["id"], asOf)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toDetailResponse(detail))
}

// UpdateSubscription handles PATCH /subscriptions/{id}
func (h *Handler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	var req UpdateSubscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	update := &serviceports.UpdateSubscriptionRequest{
		SubscriptionID: mux.Vars(r)["id"],
		Name:           req.Name,
		Price:          req.Price,
	}
	if req.Cycle != nil {
		cycle, err := domain.ParseCycle(*req.Cycle)
		if err != nil {
			h.respondDomainError(w, r, err)
			return
		}
		update.Cycle = &cycle
	}
	if req.Category != nil {
		category, err := domain.ParseCategory(*req.Category)
		if err != nil {
			h.respondDomainError(w, r, err)
			return
		}
		update.Category = &category
	}
	if req.ActivationDate != nil {
		activation, err := parseDate("activation_date", *req.ActivationDate)
		if err != nil {
			h.respondDomainError(w, r, err)
			return
		}
		update.ActivationDate = &activation
	}

	sub, err := h.service.UpdateSubscription(r.Context(), update)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toSubscriptionResponse(sub))
}

// DeleteSubscription handles DELETE /subscriptions/{id}
func (h *Handler) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSubscription(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetActive handles POST /subscriptions/{id}/activation
func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	var req SetActiveRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Active == nil {
		h.respondDomainError(w, r, domain.ErrValidationMissingField.WithDetail("field", "active"))
		return
	}

	sub, err := h.service.SetActive(r.Context(), mux.Vars(r)["id"], *req.Active)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toSubscriptionResponse(sub))
}

// GetFinancials handles GET /subscriptions/{id}/financials?as_of=YYYY-MM-DD
func (h *Handler) GetFinancials(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseDate("as_of", r.URL.Query().Get("as_of"))
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	if asOf.IsZero() {
		asOf = timeutil.Today()
	}

	id := mux.Vars(r)["id"]
	financials, err := h.service.GetFinancials(r.Context(), id, asOf)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toFinancialsResponse(id, asOf, financials))
}

// RecordCharge handles POST /subscriptions/{id}/charges
func (h *Handler) RecordCharge(w http.ResponseWriter, r *http.Request) {
	var req RecordChargeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	chargedOn, err := parseDate("charged_on", req.ChargedOn)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	charge, sub, err := h.service.RecordCharge(r.Context(), &serviceports.RecordChargeRequest{
		SubscriptionID: mux.Vars(r)["id"],
		ChargedOn:      chargedOn,
		PeriodsCovered: periodsOrOne(req.PeriodsCovered),
		Method:         parseMethod(req.Method),
		Note:           strings.TrimSpace(req.Note),
	})
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, RecordChargeResponse{
		Charge:       toChargeResponse(charge),
		Subscription: toSubscriptionResponse(sub),
	})
}

// ListCharges handles GET /subscriptions/{id}/charges
func (h *Handler) ListCharges(w http.ResponseWriter, r *http.Request) {
	charges, err := h.service.ListCharges(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"charges": toChargeResponses(charges),
	})
}

// AddContributor handles POST /subscriptions/{id}/contributions
func (h *Handler) AddContributor(w http.ResponseWriter, r *http.Request) {
	var req AddContributorRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	add := &serviceports.AddContributorRequest{
		SubscriptionID: mux.Vars(r)["id"],
		UserID:         req.UserID,
		GuestName:      req.GuestName,
		Amount:         req.Amount,
		Method:         parseMethod(req.Method),
		Note:           strings.TrimSpace(req.Note),
	}
	paidOn, err := parseDate("paid_on", req.PaidOn)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	if !paidOn.IsZero() {
		add.PaidOn = &paidOn
		add.PeriodsCovered = periodsOrOne(req.PeriodsCovered)
	}

	c, err := h.service.AddContributor(r.Context(), add)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, toContributionResponse(*c))
}

// LogContributionPayment handles POST /contributions/{id}/payments
func (h *Handler) LogContributionPayment(w http.ResponseWriter, r *http.Request) {
	var req LogPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	paidOn, err := parseDate("paid_on", req.PaidOn)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	c, err := h.service.LogContributionPayment(r.Context(), &serviceports.LogContributionPaymentRequest{
		ContributionID: mux.Vars(r)["id"],
		PaidOn:         paidOn,
		PeriodsCovered: periodsOrOne(req.PeriodsCovered),
		Method:         parseMethod(req.Method),
		Note:           strings.TrimSpace(req.Note),
		Amount:         req.Amount,
	})
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toContributionResponse(*c))
}

// ClearContributionPayment handles DELETE /contributions/{id}/payments,
// turning the contribution back into an unpaid pledge
func (h *Handler) ClearContributionPayment(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.ClearContributionPayment(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toContributionResponse(*c))
}

// RemoveContributor handles DELETE /contributions/{id}
func (h *Handler) RemoveContributor(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveContributor(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetOwnerReport handles GET /owners/{ownerID}/report
func (h *Handler) GetOwnerReport(w http.ResponseWriter, r *http.Request) {
	ownerID := mux.Vars(r)["ownerID"]

	report, err := h.service.GetOwnerReport(r.Context(), ownerID)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toReportResponse(ownerID, report))
}

// parseDate parses an optional YYYY-MM-DD value; empty yields the zero time
func parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := timeutil.ParseDate(value)
	if err != nil {
		return time.Time{}, domain.ErrValidationFailed.
			WithDetail("field", field).
			WithDetail("value", value)
	}
	return t, nil
}

func parseMethod(s string) domain.PaymentMethod {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return domain.ParsePaymentMethod(s)
}

func periodsOrOne(p *int) int {
	if p == nil {
		return 1
	}
	return *p
}
