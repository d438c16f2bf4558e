package reminder_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subreminder/pkg/email"
	"github.com/dmitrymomot/subreminder/pkg/logger"
	"github.com/dmitrymomot/subreminder/svc/reminder"
	"github.com/dmitrymomot/subreminder/svc/subscription"
)

type sender struct {
	mu    sync.Mutex
	calls []email.SendEmailParams
	errs  []error
}

func (s *sender) SendEmail(_ context.Context, params email.SendEmailParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, params)
	if len(s.errs) == 0 {
		return nil
	}
	err := s.errs[0]
	s.errs = s.errs[1:]
	return err
}

func newNotifier(s *sender) *reminder.EmailNotifier {
	return reminder.NewEmailNotifier(s, reminder.Config{
		Timezone:     "UTC",
		SendAttempts: 3,
		AppBaseURL:   "https://app.example.com/",
	},
		reminder.WithNotifierLogger(logger.Nop()),
		reminder.WithRetryInterval(time.Millisecond),
	)
}

func reminderFor(name string, days int) reminder.ReminderEmail {
	return reminder.ReminderEmail{
		To:         "jane@example.com",
		Type:       reminder.StepLabel(days),
		DaysBefore: days,
		Subscription: subscription.Snapshot{
			Subscription: subscription.Subscription{
				ID:            uuid.New(),
				Name:          name,
				Price:         decimal.RequireFromString("15.99"),
				Currency:      subscription.CurrencyUSD,
				Frequency:     subscription.FrequencyMonthly,
				PaymentMethod: subscription.PaymentCreditCard,
				RenewalDate:   renewal,
			},
			OwnerName:  "Jane <Doe>",
			OwnerEmail: "jane@example.com",
		},
	}
}

func TestEmailNotifier_SendReminder(t *testing.T) {
	t.Parallel()

	s := &sender{}
	err := newNotifier(s).SendReminder(context.Background(), reminderFor("Netflix Premium", 7))
	require.NoError(t, err)
	require.Len(t, s.calls, 1)

	msg := s.calls[0]
	assert.Equal(t, "jane@example.com", msg.SendTo)
	assert.Equal(t, "Your Netflix Premium subscription renews in 7 days", msg.Subject)
	assert.Equal(t, "reminder-7d", msg.Tag)
	assert.Contains(t, msg.BodyHTML, "Mar 31, 2024")
	assert.Contains(t, msg.BodyHTML, "15.99")
	assert.Contains(t, msg.BodyHTML, "(monthly)")
	assert.Contains(t, msg.BodyHTML, "credit card")
	assert.Contains(t, msg.BodyHTML, `href="https://app.example.com/account"`)
	assert.Contains(t, msg.BodyHTML, "Jane &lt;Doe&gt;")
	assert.NotContains(t, msg.BodyHTML, "<Doe>")
}

func TestEmailNotifier_SingularDay(t *testing.T) {
	t.Parallel()

	s := &sender{}
	require.NoError(t, newNotifier(s).SendReminder(context.Background(), reminderFor("Spotify", 1)))
	assert.Equal(t, "Your Spotify subscription renews in 1 day", s.calls[0].Subject)
	assert.Equal(t, "reminder-1d", s.calls[0].Tag)
}

func TestEmailNotifier_Retries(t *testing.T) {
	t.Parallel()

	t.Run("recovers from transient failures", func(t *testing.T) {
		t.Parallel()

		s := &sender{errs: []error{email.ErrFailedToSendEmail, email.ErrFailedToSendEmail}}
		err := newNotifier(s).SendReminder(context.Background(), reminderFor("Netflix", 5))
		require.NoError(t, err)
		assert.Len(t, s.calls, 3)
	})

	t.Run("gives up after the configured attempts", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("postmark: 503")
		s := &sender{errs: []error{boom, boom, boom, boom}}
		err := newNotifier(s).SendReminder(context.Background(), reminderFor("Netflix", 5))
		assert.ErrorIs(t, err, boom)
		assert.Len(t, s.calls, 3)
	})

	t.Run("invalid params are not retried", func(t *testing.T) {
		t.Parallel()

		s := &sender{errs: []error{errors.Join(email.ErrInvalidParams, errors.New("send_to: invalid"))}}
		err := newNotifier(s).SendReminder(context.Background(), reminderFor("Netflix", 5))
		assert.ErrorIs(t, err, email.ErrInvalidParams)
		assert.Len(t, s.calls, 1)
	})
}

type stalledSender struct {
	calls atomic.Int32
}

func (s *stalledSender) SendEmail(ctx context.Context, _ email.SendEmailParams) error {
	s.calls.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func TestEmailNotifier_SendWindow(t *testing.T) {
	t.Parallel()

	cfg := reminder.Config{
		Timezone:     "UTC",
		SendAttempts: 1000,
		LockTTL:      400 * time.Millisecond,
		AppBaseURL:   "https://app.example.com",
	}

	t.Run("stalled provider is cut off", func(t *testing.T) {
		t.Parallel()

		s := &stalledSender{}
		n := reminder.NewEmailNotifier(s, cfg,
			reminder.WithNotifierLogger(logger.Nop()),
			reminder.WithRetryInterval(time.Millisecond),
		)

		start := time.Now()
		err := n.SendReminder(context.Background(), reminderFor("Netflix", 7))
		require.Error(t, err)
		assert.Less(t, time.Since(start), cfg.LockTTL)
		assert.GreaterOrEqual(t, s.calls.Load(), int32(1))
	})

	t.Run("retries stop before the lock expires", func(t *testing.T) {
		t.Parallel()

		s := &sender{}
		for range 1000 {
			s.errs = append(s.errs, errors.New("postmark: timeout"))
		}
		n := reminder.NewEmailNotifier(s, cfg,
			reminder.WithNotifierLogger(logger.Nop()),
			reminder.WithRetryInterval(5*time.Millisecond),
		)

		start := time.Now()
		err := n.SendReminder(context.Background(), reminderFor("Netflix", 7))
		require.Error(t, err)
		assert.Less(t, time.Since(start), cfg.LockTTL)

		s.mu.Lock()
		defer s.mu.Unlock()
		assert.Less(t, len(s.calls), 1000)
	})
}

func TestEmailNotifier_NoRecipient(t *testing.T) {
	t.Parallel()

	s := &sender{}
	msg := reminderFor("Netflix", 2)
	msg.To = ""
	assert.ErrorIs(t, newNotifier(s).SendReminder(context.Background(), msg), reminder.ErrInvalidRecipient)
	assert.Empty(t, s.calls)
}

func TestFormatPrice(t *testing.T) {
	t.Parallel()

	usd := reminder.FormatPrice(decimal.RequireFromString("15.99"), subscription.CurrencyUSD, subscription.FrequencyMonthly)
	assert.Contains(t, usd, "$")
	assert.Contains(t, usd, "15.99")
	assert.Contains(t, usd, "(monthly)")

	unknown := reminder.FormatPrice(decimal.RequireFromString("3"), subscription.Currency("XX1"), subscription.FrequencyYearly)
	assert.Equal(t, "XX1 3.00 (yearly)", unknown)
}

func TestFormatDate(t *testing.T) {
	t.Parallel()

	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	late := time.Date(2024, time.March, 31, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "Mar 31, 2024", reminder.FormatDate(late, time.UTC))
	assert.Equal(t, "Apr 1, 2024", reminder.FormatDate(late, kolkata))
}
