// Package pg bootstraps PostgreSQL access on top of jackc/pgx/v5.
//
// Connect opens a *pgxpool.Pool from Config, retrying while the database
// comes up. Migrate applies goose migrations, either from a directory on disk
// or from an embedded fs.FS. WithTx runs a function inside a transaction and
// commits or rolls back depending on the returned error. TryAdvisoryLock takes
// a session level advisory lock on a dedicated pooled connection.
//
// Error helpers such as IsNotFoundError and IsDuplicateKeyError classify pgx
// errors so store implementations can translate them into domain sentinels.
package pg
