package subscription

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Subscription is a recurring charge owned by one user.
type Subscription struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Currency      Currency        `json:"currency"`
	Frequency     Frequency       `json:"frequency"`
	Category      Category        `json:"category"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Status        Status          `json:"status"`
	StartDate     time.Time       `json:"start_date"`
	RenewalDate   time.Time       `json:"renewal_date"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (s Subscription) IsActive() bool {
	return s.Status == StatusActive
}

func (s Subscription) IsCancelled() bool {
	return s.Status == StatusCancelled
}

func (s Subscription) OwnedBy(userID uuid.UUID) bool {
	return s.UserID == userID
}

// Snapshot is a subscription together with its owner's contact details.
type Snapshot struct {
	Subscription
	OwnerName  string `json:"owner_name"`
	OwnerEmail string `json:"owner_email"`
}

// renewalOffsets maps a frequency to the number of calendar days until renewal.
var renewalOffsets = map[Frequency]int{
	FrequencyDaily:   1,
	FrequencyWeekly:  7,
	FrequencyMonthly: 30,
	FrequencyYearly:  365,
}

// DeriveRenewalDate returns start plus the frequency's offset in calendar days.
// An unknown frequency falls back to the monthly offset.
func DeriveRenewalDate(start time.Time, freq Frequency) time.Time {
	days, ok := renewalOffsets[freq]
	if !ok {
		days = renewalOffsets[DefaultFrequency]
	}
	return start.AddDate(0, 0, days)
}

// CreateParams carries the fields accepted when creating a subscription.
// Empty enum fields take their defaults. A nil RenewalDate is derived.
type CreateParams struct {
	Name          string           `json:"name"`
	Price         *decimal.Decimal `json:"price"`
	Currency      Currency         `json:"currency"`
	Frequency     Frequency        `json:"frequency"`
	Category      Category         `json:"category"`
	PaymentMethod PaymentMethod    `json:"payment_method"`
	StartDate     time.Time        `json:"start_date"`
	RenewalDate   *time.Time       `json:"renewal_date"`
}

// UpdateParams is a partial update. Nil fields keep their stored value.
// Status is not updatable: use Cancel.
type UpdateParams struct {
	Name          *string          `json:"name"`
	Price         *decimal.Decimal `json:"price"`
	Currency      *Currency        `json:"currency"`
	Frequency     *Frequency       `json:"frequency"`
	Category      *Category        `json:"category"`
	PaymentMethod *PaymentMethod   `json:"payment_method"`
	StartDate     *time.Time       `json:"start_date"`
	RenewalDate   *time.Time       `json:"renewal_date"`
}
