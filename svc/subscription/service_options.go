package subscription

import (
	"log/slog"
	"time"
)

// ServiceOption configures a Service instance.
type ServiceOption func(*service)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source used for expiry and date validation.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRunScheduler sets the reminder scheduler called on create and on
// renewal-relevant updates. Without it no runs are scheduled.
func WithRunScheduler(rs RunScheduler) ServiceOption {
	return func(s *service) {
		if rs != nil {
			s.runs = rs
		}
	}
}
