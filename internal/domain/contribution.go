package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type contributorKind uint8

const (
	contributorRegistered contributorKind = iota + 1
	contributorGuest
)

// Contributor identifies who co-funds a subscription: either a registered
// user or a free-text guest. The zero value is neither and is invalid.
type Contributor struct {
	userID    string
	guestName string
	kind      contributorKind
}

// RegisteredContributor references a registered user by id
func RegisteredContributor(userID string) Contributor {
	return Contributor{kind: contributorRegistered, userID: userID}
}

// GuestContributor names someone without an account
func GuestContributor(name string) Contributor {
	return Contributor{kind: contributorGuest, guestName: strings.TrimSpace(name)}
}

// IsRegistered reports whether the contributor is a registered user
func (c Contributor) IsRegistered() bool { return c.kind == contributorRegistered }

// IsGuest reports whether the contributor is a guest
func (c Contributor) IsGuest() bool { return c.kind == contributorGuest }

// UserID returns the registered user id, empty for guests
func (c Contributor) UserID() string { return c.userID }

// GuestName returns the guest name, empty for registered users
func (c Contributor) GuestName() string { return c.guestName }

// Label is a display handle: the guest name, or the user id
func (c Contributor) Label() string {
	if c.IsGuest() {
		return c.guestName
	}
	return c.userID
}

// Validate checks that exactly one of the two identities is set
func (c Contributor) Validate() error {
	switch c.kind {
	case contributorRegistered:
		if c.userID == "" {
			return ErrValidationMissingField.WithDetail("field", "contributor_user_id")
		}
	case contributorGuest:
		if c.guestName == "" {
			return ErrValidationMissingField.WithDetail("field", "guest_name")
		}
	default:
		return ErrValidationMissingField.WithDetail("field", "contributor")
	}
	return nil
}

// Contribution is a collaborator's latest co-payment state against a
// subscription. A nil PaidOn means pledged but not yet paid.
type Contribution struct {
	PaidOn         *time.Time      `json:"paid_on"`
	Amount         decimal.Decimal `json:"amount"`
	Contributor    Contributor     `json:"-"`
	ID             string          `json:"id"`
	SubscriptionID string          `json:"subscription_id"`
	Method         PaymentMethod   `json:"method"`
	Note           string          `json:"note"`
	PeriodsCovered int             `json:"periods_covered"`
}

// IsPaid reports whether a payment has been logged
func (c Contribution) IsPaid() bool {
	return c.PaidOn != nil
}

// Validate enforces the record invariants
func (c Contribution) Validate() error {
	if err := c.Contributor.Validate(); err != nil {
		return err
	}
	if c.Amount.IsNegative() {
		return ErrValidationAmountInvalid.WithDetail("amount", c.Amount.String())
	}
	if c.IsPaid() && c.PeriodsCovered < 1 {
		return ErrValidationFailed.WithDetail("periods_covered", c.PeriodsCovered)
	}
	return nil
}

// Received is the total money this record represents: amount per period times
// the periods it covers. Unpaid pledges contribute nothing.
func (c Contribution) Received() decimal.Decimal {
	if !c.IsPaid() {
		return decimal.Zero
	}
	return c.Amount.Mul(decimal.NewFromInt(int64(c.PeriodsCovered)))
}

// WithPayment returns a copy updated in place with a newly logged payment
func (c Contribution) WithPayment(paidOn time.Time, periods int, method PaymentMethod, note string) Contribution {
	c.PaidOn = &paidOn
	c.PeriodsCovered = periods
	c.Method = method
	c.Note = note
	return c
}

// WithoutPayment returns a copy reverted to an unpaid pledge
func (c Contribution) WithoutPayment() Contribution {
	c.PaidOn = nil
	c.PeriodsCovered = 0
	return c
}
