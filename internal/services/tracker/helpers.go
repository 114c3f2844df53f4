package tracker

import (
	"slices"
	"strings"
	"time"

	"github.com/kevin07696/subs-tracker/internal/domain"
	"github.com/shopspring/decimal"
)

func validateSubscriptionFields(ownerID, name string, price decimal.Decimal, cycle domain.Cycle, category domain.Category, activation time.Time) error {
	if ownerID == "" {
		return domain.ErrValidationMissingField.WithDetail("field", "owner_id")
	}
	if strings.TrimSpace(name) == "" {
		return domain.ErrValidationMissingField.WithDetail("field", "name")
	}
	if !price.IsPositive() {
		return domain.ErrValidationAmountInvalid.WithDetail("price", price.String())
	}
	if err := cycle.Validate(); err != nil {
		return domain.InvalidCycleInput(string(cycle))
	}
	if category != domain.CategoryNone && !slices.Contains(domain.Categories, category) {
		return domain.ErrValidationFailed.WithDetail("category", string(category))
	}
	if activation.IsZero() {
		return domain.ErrValidationMissingField.WithDetail("field", "activation_date")
	}
	return nil
}

func contributorFor(userID, guestName string) (domain.Contributor, error) {
	userID = strings.TrimSpace(userID)
	guestName = strings.TrimSpace(guestName)

	switch {
	case userID != "" && guestName != "":
		return domain.Contributor{}, domain.ErrValidationFailed.
			WithDetail("reason", "set either user_id or guest_name, not both")
	case userID != "":
		return domain.RegisteredContributor(userID), nil
	case guestName != "":
		return domain.GuestContributor(guestName), nil
	default:
		return domain.Contributor{}, domain.ErrValidationMissingField.WithDetail("field", "contributor")
	}
}

func matchesFilter(sub *domain.Subscription, query string, category *domain.Category, active *bool) bool {
	if query != "" && !strings.Contains(strings.ToLower(sub.Name), query) {
		return false
	}
	if category != nil && sub.Category != *category {
		return false
	}
	if active != nil && sub.Active != *active {
		return false
	}
	return true
}

func derefContributions(in []*domain.Contribution) []domain.Contribution {
	out := make([]domain.Contribution, 0, len(in))
	for _, c := range in {
		out = append(out, *c)
	}
	return out
}

func methodOrOther(m domain.PaymentMethod) domain.PaymentMethod {
	if m == "" {
		return domain.PaymentMethodOther
	}
	return m
}
