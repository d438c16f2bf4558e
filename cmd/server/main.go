// Command server runs the subscription API together with the reminder
// worker and its periodic reconciliation.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/subreminder/internal/app"
	"github.com/dmitrymomot/subreminder/internal/db"
	"github.com/dmitrymomot/subreminder/pkg/config"
	"github.com/dmitrymomot/subreminder/pkg/email"
	"github.com/dmitrymomot/subreminder/pkg/httpserver"
	"github.com/dmitrymomot/subreminder/pkg/jwt"
	"github.com/dmitrymomot/subreminder/pkg/logger"
	"github.com/dmitrymomot/subreminder/pkg/mongo"
	"github.com/dmitrymomot/subreminder/pkg/pg"
	"github.com/dmitrymomot/subreminder/pkg/queue"
	"github.com/dmitrymomot/subreminder/pkg/ratelimiter"
	"github.com/dmitrymomot/subreminder/pkg/redis"
	"github.com/dmitrymomot/subreminder/pkg/requestid"
	"github.com/dmitrymomot/subreminder/svc/account"
	"github.com/dmitrymomot/subreminder/svc/reminder"
	"github.com/dmitrymomot/subreminder/svc/subscription"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Env, cfg.ServiceName),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.PG, db.Migrations, db.MigrationsDir, log); err != nil {
		return err
	}

	checks := map[string]httpserver.Check{"postgres": pg.Healthcheck(pool)}

	var rdb *goredis.Client
	if cfg.Redis.Enabled() {
		rdb, err = redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		checks["redis"] = redis.Healthcheck(rdb)
	}

	var (
		accountStore account.Store
		subStore     subscription.Store
	)
	switch cfg.StorageDriver {
	case storagePostgres:
		accountStore = account.NewPGStore(pool)
		subStore = subscription.NewPGStore(pool)
	case storageMongo:
		mdb, err := mongo.NewWithDatabase(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mdb.Client().Disconnect(ctx)
		}()
		checks["mongo"] = mongo.Healthcheck(mdb.Client())

		users := account.NewMongoStore(mdb)
		subs := subscription.NewMongoStore(mdb)
		if err := errors.Join(users.EnsureIndexes(ctx), subs.EnsureIndexes(ctx)); err != nil {
			return fmt.Errorf("ensure mongo indexes: %w", err)
		}
		accountStore, subStore = users, subs
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	tokens, err := jwt.New(cfg.JWT)
	if err != nil {
		return err
	}
	accounts := account.NewService(accountStore, tokens,
		account.WithLogger(log),
		account.WithAdministrators(cfg.AdminEmails...),
	)

	taskStore, err := queue.NewPGStorage(pool)
	if err != nil {
		return err
	}
	enqueuer, err := queue.NewEnqueuer(taskStore, queue.WithDefaultQueue(cfg.Reminder.Queue))
	if err != nil {
		return err
	}

	sender, err := email.New(cfg.Email)
	if err != nil {
		return err
	}
	if !cfg.Email.PostmarkEnabled() {
		log.Warn("postmark is not configured, reminder emails are written to disk",
			slog.String("dir", cfg.Email.DevOutputDir))
	}

	locker := reminder.PGLocker(pool)
	if rdb != nil {
		locker = reminder.RedisLocker(redis.NewLocker(rdb, cfg.ServiceName+":lock:", cfg.Reminder.LockTTL))
	}

	// The lifecycle service starts runs through the engine, and the engine
	// reads subscriptions through the service.
	var engine *reminder.Engine
	subs := subscription.NewService(subStore, accounts,
		subscription.WithLogger(log),
		subscription.WithRunScheduler(subscription.RunSchedulerFunc(
			func(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
				return engine.ScheduleRun(ctx, id)
			},
		)),
	)
	engine = reminder.NewEngine(
		reminder.NewPGStore(pool),
		subs,
		reminder.NewEmailNotifier(sender, cfg.Reminder, reminder.WithNotifierLogger(log)),
		enqueuer,
		reminder.WithLogger(log),
		reminder.WithLocker(locker),
		reminder.WithConfig(cfg.Reminder),
	)

	worker, err := queue.NewWorker(taskStore,
		queue.WithWorkerConfig(cfg.Queue),
		queue.WithQueues(cfg.Reminder.Queue),
		queue.WithWorkerLogger(log),
	)
	if err != nil {
		return err
	}
	if err := worker.RegisterHandlers(engine.Handlers()...); err != nil {
		return err
	}

	scheduler, err := queue.NewScheduler(taskStore,
		queue.WithCheckInterval(cfg.Queue.SchedulerInterval),
		queue.WithSchedulerLogger(log),
	)
	if err != nil {
		return err
	}
	if err := engine.RegisterSchedule(scheduler); err != nil {
		return err
	}

	apiLimiter, apiStore, err := newLimiter(rdb, cfg.ServiceName+":ratelimit:api:", cfg.RateLimit)
	if err != nil {
		return err
	}
	authLimiter, authStore, err := newLimiter(rdb, cfg.ServiceName+":ratelimit:auth:", cfg.AuthRateLimit)
	if err != nil {
		return err
	}

	router := app.NewRouter(app.Deps{
		Accounts:       accounts,
		Subscriptions:  subs,
		Reminders:      engine,
		Tokens:         tokens,
		APILimiter:     apiLimiter,
		AuthLimiter:    authLimiter,
		WorkflowSecret: cfg.WorkflowSecret,
		HealthChecks:   checks,
		Logger:         log,
	})
	server := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.RunFunc(gctx, router))
	g.Go(worker.Run(gctx))
	g.Go(scheduler.Run(gctx))
	for _, store := range []*ratelimiter.MemoryStore{apiStore, authStore} {
		if store == nil {
			continue
		}
		g.Go(func() error {
			pruneRateLimits(gctx, store, cfg.RateLimitPrune, log)
			return nil
		})
	}

	log.InfoContext(ctx, "subreminder started",
		slog.String("storage", cfg.StorageDriver),
		slog.Bool("redis", rdb != nil),
		slog.Bool("postmark", cfg.Email.PostmarkEnabled()),
	)

	return g.Wait()
}

// newLimiter stores buckets in Redis under prefix when a client is given and
// in process otherwise. The in-process store is returned for pruning.
func newLimiter(rdb *goredis.Client, prefix string, cfg ratelimiter.Config) (*ratelimiter.Bucket, *ratelimiter.MemoryStore, error) {
	if rdb != nil {
		b, err := ratelimiter.NewBucket(ratelimiter.NewRedisStore(rdb, prefix), cfg)
		return b, nil, err
	}
	store := ratelimiter.NewMemoryStore()
	b, err := ratelimiter.NewBucket(store, cfg)
	if err != nil {
		return nil, nil, err
	}
	return b, store, nil
}

// pruneRateLimits drops idle buckets from the in-process store until ctx ends.
func pruneRateLimits(ctx context.Context, store *ratelimiter.MemoryStore, every time.Duration, log *slog.Logger) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Prune(every); n > 0 {
				log.DebugContext(ctx, "pruned idle rate limit buckets", slog.Int("count", n))
			}
		}
	}
}
