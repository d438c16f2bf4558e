package subscription_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/subreminder/svc/subscription"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDeriveRenewalDate(t *testing.T) {
	t.Parallel()

	start := date(2024, time.January, 1)
	tests := []struct {
		freq subscription.Frequency
		want time.Time
	}{
		{subscription.FrequencyDaily, date(2024, time.January, 2)},
		{subscription.FrequencyWeekly, date(2024, time.January, 8)},
		{subscription.FrequencyMonthly, date(2024, time.January, 31)},
		{subscription.FrequencyYearly, date(2024, time.December, 31)},
		{subscription.Frequency("fortnightly"), date(2024, time.January, 31)},
	}

	for _, tt := range tests {
		t.Run(string(tt.freq), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, subscription.DeriveRenewalDate(start, tt.freq))
		})
	}
}

func TestDeriveStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	renewal := date(2024, time.January, 31)
	before := date(2024, time.January, 30)
	after := date(2024, time.February, 1)

	tests := []struct {
		name    string
		current subscription.Status
		now     time.Time
		want    subscription.Status
	}{
		{"active before renewal", subscription.StatusActive, before, subscription.StatusActive},
		{"active at renewal instant", subscription.StatusActive, renewal, subscription.StatusExpired},
		{"active after renewal", subscription.StatusActive, after, subscription.StatusExpired},
		{"expired with renewal moved ahead", subscription.StatusExpired, before, subscription.StatusActive},
		{"expired stays expired", subscription.StatusExpired, after, subscription.StatusExpired},
		{"cancelled is never expired", subscription.StatusCancelled, after, subscription.StatusCancelled},
		{"cancelled is never reactivated", subscription.StatusCancelled, before, subscription.StatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, subscription.DeriveStatus(ctx, tt.current, renewal, tt.now))
		})
	}
}
