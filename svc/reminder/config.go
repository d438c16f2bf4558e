package reminder

import "time"

const defaultLockTTL = 2 * time.Minute

// Config holds the engine settings. LockTTL must match the TTL of the run
// locker; reminder sends are cut off at half of it.
type Config struct {
	// Timezone decides which calendar day a reminder instant falls on.
	Timezone          string        `env:"REMINDER_TIMEZONE" envDefault:"UTC"`
	RetryDelay        time.Duration `env:"REMINDER_RETRY_DELAY" envDefault:"15m"`
	LockTTL           time.Duration `env:"REMINDER_LOCK_TTL" envDefault:"2m"`
	ReconcileInterval time.Duration `env:"REMINDER_RECONCILE_INTERVAL" envDefault:"15m"`
	Queue             string        `env:"REMINDER_QUEUE" envDefault:"reminders"`
	SendAttempts      uint64        `env:"REMINDER_SEND_ATTEMPTS" envDefault:"3"`
	AppBaseURL        string        `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
}

// Location resolves Timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
