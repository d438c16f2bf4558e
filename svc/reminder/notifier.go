package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/dmitrymomot/subreminder/pkg/email"
	"github.com/dmitrymomot/subreminder/pkg/email/templates"
	"github.com/dmitrymomot/subreminder/pkg/logger"
	"github.com/dmitrymomot/subreminder/pkg/sanitizer"
	"github.com/dmitrymomot/subreminder/svc/subscription"
)

// ReminderEmail is one reminder to deliver. Type is the step label.
type ReminderEmail struct {
	To           string
	Type         string
	DaysBefore   int
	Subscription subscription.Snapshot
}

// Notifier delivers reminders. A nil error means the provider accepted the message.
type Notifier interface {
	SendReminder(ctx context.Context, msg ReminderEmail) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, msg ReminderEmail) error

func (f NotifierFunc) SendReminder(ctx context.Context, msg ReminderEmail) error {
	return f(ctx, msg)
}

// EmailNotifier renders reminders and sends them through an email.EmailSender,
// retrying transient failures with exponential backoff.
type EmailNotifier struct {
	sender   email.EmailSender
	baseURL  string
	loc      *time.Location
	attempts uint64
	interval time.Duration
	window   time.Duration
	log      *slog.Logger
}

type NotifierOption func(*EmailNotifier)

func WithNotifierLogger(l *slog.Logger) NotifierOption {
	return func(n *EmailNotifier) {
		if l != nil {
			n.log = l
		}
	}
}

// WithRetryInterval sets the initial backoff interval between send attempts.
func WithRetryInterval(d time.Duration) NotifierOption {
	return func(n *EmailNotifier) {
		if d > 0 {
			n.interval = d
		}
	}
}

func NewEmailNotifier(sender email.EmailSender, cfg Config, opts ...NotifierOption) *EmailNotifier {
	if sender == nil {
		panic("reminder: email sender is required")
	}
	n := &EmailNotifier{
		sender:   sender,
		baseURL:  strings.TrimRight(cfg.AppBaseURL, "/"),
		loc:      cfg.Location(),
		attempts: max(cfg.SendAttempts, 1),
		interval: 500 * time.Millisecond,
		window:   sendWindow(cfg.LockTTL),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *EmailNotifier) SendReminder(ctx context.Context, msg ReminderEmail) error {
	if msg.To == "" {
		return ErrInvalidRecipient
	}

	sub := msg.Subscription
	view := reminderView{
		UserName:         sub.OwnerName,
		SubscriptionName: sub.Name,
		RenewalDate:      FormatDate(sub.RenewalDate, n.loc),
		PlanName:         sub.Name,
		Price:            FormatPrice(sub.Price, sub.Currency, sub.Frequency),
		PaymentMethod:    string(sub.PaymentMethod),
		DaysLeft:         msg.DaysBefore,
		AccountURL:       n.baseURL + "/account",
	}

	body, err := templates.Render(ctx, reminderBody(view))
	if err != nil {
		return errors.Join(ErrRenderFailed, err)
	}
	params := email.SendEmailParams{
		SendTo:   msg.To,
		Subject:  reminderSubject(view),
		BodyHTML: body,
		Tag:      fmt.Sprintf("reminder-%dd", msg.DaysBefore),
	}

	// All attempts must finish while the run lock is still held.
	ctx, cancel := context.WithTimeout(ctx, n.window)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = n.interval
	b.MaxElapsedTime = n.window
	policy := backoff.WithContext(backoff.WithMaxRetries(b, n.attempts-1), ctx)

	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		err := n.sender.SendEmail(ctx, params)
		if errors.Is(err, email.ErrInvalidParams) {
			return backoff.Permanent(err)
		}
		if err != nil {
			n.log.WarnContext(ctx, "reminder send attempt failed",
				logger.Component("reminder.notifier"),
				logger.Label(msg.Type),
				logger.RetryCount(attempt),
				logger.Error(err),
			)
		}
		return err
	}, policy)
	if err != nil {
		return err
	}

	n.log.InfoContext(ctx, "reminder sent",
		logger.Component("reminder.notifier"),
		logger.SubscriptionID(sub.ID),
		logger.Label(msg.Type),
		slog.String("to", sanitizer.MaskEmail(msg.To)),
	)
	return nil
}

// sendWindow bounds one SendReminder call to half the run lock TTL.
func sendWindow(lockTTL time.Duration) time.Duration {
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	return lockTTL / 2
}
