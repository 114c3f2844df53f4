package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category is an optional tag used to group spend in reports
type Category string

const (
	CategoryNone      Category = ""
	CategoryLeisure   Category = "leisure"
	CategoryHome      Category = "home"
	CategoryWork      Category = "work"
	CategoryHealth    Category = "health"
	CategoryEducation Category = "education"
)

// Categories lists every assignable category
var Categories = []Category{CategoryLeisure, CategoryHome, CategoryWork, CategoryHealth, CategoryEducation}

// ParseCategory maps user input to a Category. An empty string is CategoryNone.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return CategoryNone, nil
	case "leisure", "ocio":
		return CategoryLeisure, nil
	case "home", "hogar":
		return CategoryHome, nil
	case "work", "trabajo":
		return CategoryWork, nil
	case "health", "salud":
		return CategoryHealth, nil
	case "education", "educacion":
		return CategoryEducation, nil
	}
	return "", ErrValidationFailed.WithDetail("category", s)
}

// PaymentMethod describes how a charge or a contribution was paid
type PaymentMethod string

const (
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodBizum    PaymentMethod = "bizum"
	PaymentMethodOther    PaymentMethod = "other"
)

// ParsePaymentMethod maps user input to a PaymentMethod, defaulting to other
func ParsePaymentMethod(s string) PaymentMethod {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "card", "tarjeta":
		return PaymentMethodCard
	case "transfer", "transferencia":
		return PaymentMethodTransfer
	case "cash", "efectivo":
		return PaymentMethodCash
	case "bizum":
		return PaymentMethodBizum
	}
	return PaymentMethodOther
}

// Subscription is a recurring service paid by its owner
type Subscription struct {
	ActivationDate  time.Time       `json:"activation_date"`
	NextRenewalDate time.Time       `json:"next_renewal_date"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Price           decimal.Decimal `json:"price"`
	ID              string          `json:"id"`
	OwnerID         string          `json:"owner_id"`
	Name            string          `json:"name"`
	Cycle           Cycle           `json:"cycle"`
	Category        Category        `json:"category"`
	Active          bool            `json:"active"`
}

// HasCategory reports whether the subscription participates in per-category totals
func (s Subscription) HasCategory() bool {
	return s.Category != CategoryNone
}

// IsComplete reports whether the mandatory price and activation date are present
func (s Subscription) IsComplete() bool {
	return s.Price.IsPositive() && !s.ActivationDate.IsZero()
}

// WithNextRenewal returns a copy with the renewal date replaced
func (s Subscription) WithNextRenewal(date time.Time) Subscription {
	s.NextRenewalDate = date
	return s
}

// WithActive returns a copy with the active flag replaced
func (s Subscription) WithActive(active bool) Subscription {
	s.Active = active
	return s
}

// Charge records that the owner paid the provider. Charges are never mutated.
type Charge struct {
	ChargedOn      time.Time     `json:"charged_on"`
	CreatedAt      time.Time     `json:"created_at"`
	ID             string        `json:"id"`
	SubscriptionID string        `json:"subscription_id"`
	Method         PaymentMethod `json:"method"`
	Note           string        `json:"note"`
	PeriodsCovered int           `json:"periods_covered"`
}
