package pg

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
	"github.com/pressly/goose/v3/lock"

	"github.com/dmitrymomot/subreminder/pkg/logger"
)

// Migrate applies pending goose migrations found in dir inside fsys.
// cfg.MigrationsPath, when set, replaces fsys with a directory on disk.
// A Postgres session lock keeps concurrent instances from migrating twice.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg Config, fsys fs.FS, dir string, log *slog.Logger) error {
	if log == nil {
		log = logger.Nop()
	}

	migrations, err := migrationsFS(cfg, fsys, dir)
	if err != nil {
		return err
	}

	store, err := database.NewStore(database.DialectPostgres, cfg.MigrationsTable)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	locker, err := lock.NewPostgresSessionLocker()
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	// goose runs on database/sql.
	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		if err := db.Close(); err != nil {
			log.ErrorContext(ctx, "failed to close migration connection", logger.Error(err))
		}
	}()

	provider, err := goose.NewProvider("", db, migrations,
		goose.WithStore(store),
		goose.WithSessionLocker(locker),
	)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	for _, r := range results {
		log.InfoContext(ctx, "migration applied",
			logger.Component("migrations"),
			slog.Int64("version", r.Source.Version),
			slog.String("path", r.Source.Path),
			logger.Duration(r.Duration),
		)
	}
	return nil
}

func migrationsFS(cfg Config, fsys fs.FS, dir string) (fs.FS, error) {
	if cfg.MigrationsPath != "" {
		if _, err := os.Stat(cfg.MigrationsPath); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Join(ErrMigrationsDirNotFound, err)
			}
			return nil, errors.Join(ErrFailedToApplyMigrations, err)
		}
		return os.DirFS(cfg.MigrationsPath), nil
	}
	if fsys == nil {
		return nil, errors.Join(ErrFailedToApplyMigrations, ErrMigrationsDirNotFound)
	}
	if dir == "" || dir == "." {
		return fsys, nil
	}
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return nil, errors.Join(ErrMigrationsDirNotFound, err)
	}
	return sub, nil
}
