package main

import (
	"time"

	"github.com/dmitrymomot/subreminder/pkg/email"
	"github.com/dmitrymomot/subreminder/pkg/httpserver"
	"github.com/dmitrymomot/subreminder/pkg/jwt"
	"github.com/dmitrymomot/subreminder/pkg/mongo"
	"github.com/dmitrymomot/subreminder/pkg/pg"
	"github.com/dmitrymomot/subreminder/pkg/queue"
	"github.com/dmitrymomot/subreminder/pkg/ratelimiter"
	"github.com/dmitrymomot/subreminder/pkg/redis"
	"github.com/dmitrymomot/subreminder/svc/reminder"
)

// Storage drivers for users and subscriptions. Reminder runs and queue
// tasks always live in Postgres.
const (
	storagePostgres = "pg"
	storageMongo    = "mongo"
)

type appConfig struct {
	Env            string        `env:"APP_ENV" envDefault:"development"`
	ServiceName    string        `env:"SERVICE_NAME" envDefault:"subreminder"`
	StorageDriver  string        `env:"STORAGE_DRIVER" envDefault:"pg"`
	AdminEmails    []string      `env:"ADMIN_EMAILS" envSeparator:","`
	WorkflowSecret string        `env:"WORKFLOW_SECRET"`
	RateLimitPrune time.Duration `env:"RATE_LIMIT_PRUNE_INTERVAL" envDefault:"10m"`

	HTTP      httpserver.Config
	PG        pg.Config
	Redis     redis.Config
	Mongo     mongo.Config
	JWT       jwt.Config
	Email     email.Config
	Queue     queue.Config
	Reminder  reminder.Config
	RateLimit ratelimiter.Config

	// AuthRateLimit applies to sign-up and sign-in on top of RateLimit,
	// read from AUTH_RATE_LIMIT_*.
	AuthRateLimit ratelimiter.Config `envPrefix:"AUTH_"`
}
