package subscriptions

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/subreminder/svc/subscription"
)

// Date accepts "2006-01-02" as well as RFC 3339 timestamps.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

func (d *Date) ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

type createRequest struct {
	Name          string                     `json:"name"`
	Price         *decimal.Decimal           `json:"price"`
	Currency      subscription.Currency      `json:"currency"`
	Frequency     subscription.Frequency     `json:"frequency"`
	Category      subscription.Category      `json:"category"`
	PaymentMethod subscription.PaymentMethod `json:"payment_method"`
	StartDate     Date                       `json:"start_date"`
	RenewalDate   *Date                      `json:"renewal_date"`
}

func (r createRequest) params() subscription.CreateParams {
	return subscription.CreateParams{
		Name:          r.Name,
		Price:         r.Price,
		Currency:      r.Currency,
		Frequency:     r.Frequency,
		Category:      r.Category,
		PaymentMethod: r.PaymentMethod,
		StartDate:     r.StartDate.Time,
		RenewalDate:   r.RenewalDate.ptr(),
	}
}

type updateRequest struct {
	ID            uuid.UUID                   `path:"id" json:"-"`
	Name          *string                     `json:"name"`
	Price         *decimal.Decimal            `json:"price"`
	Currency      *subscription.Currency      `json:"currency"`
	Frequency     *subscription.Frequency     `json:"frequency"`
	Category      *subscription.Category      `json:"category"`
	PaymentMethod *subscription.PaymentMethod `json:"payment_method"`
	StartDate     *Date                       `json:"start_date"`
	RenewalDate   *Date                       `json:"renewal_date"`
}

func (r updateRequest) params() subscription.UpdateParams {
	return subscription.UpdateParams{
		Name:          r.Name,
		Price:         r.Price,
		Currency:      r.Currency,
		Frequency:     r.Frequency,
		Category:      r.Category,
		PaymentMethod: r.PaymentMethod,
		StartDate:     r.StartDate.ptr(),
		RenewalDate:   r.RenewalDate.ptr(),
	}
}

type idRequest struct {
	ID uuid.UUID `path:"id"`
}
