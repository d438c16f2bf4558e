package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/subreminder/pkg/pg"
)

// PGStorage persists tasks in the queue_tasks and queue_tasks_dlq tables
// created by the application migrations.
type PGStorage struct {
	pool *pgxpool.Pool
}

func NewPGStorage(pool *pgxpool.Pool) (*PGStorage, error) {
	if pool == nil {
		return nil, ErrRepositoryNil
	}
	return &PGStorage{pool: pool}, nil
}

const taskColumns = `id, queue, task_type, task_name, payload, status, priority, retry_count,
	max_retries, unique_key, scheduled_at, locked_until, locked_by, processed_at, error, created_at`

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	err := row.Scan(
		&t.ID, &t.Queue, &t.TaskType, &t.TaskName, &t.Payload, &t.Status, &t.Priority, &t.RetryCount,
		&t.MaxRetries, &t.UniqueKey, &t.ScheduledAt, &t.LockedUntil, &t.LockedBy, &t.ProcessedAt, &t.Error, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PGStorage) CreateTask(ctx context.Context, task *Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO queue_tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		task.ID, task.Queue, task.TaskType, task.TaskName, task.Payload, task.Status, task.Priority, task.RetryCount,
		task.MaxRetries, task.UniqueKey, task.ScheduledAt, task.LockedUntil, task.LockedBy, task.ProcessedAt, task.Error, task.CreatedAt,
	)
	if pg.IsDuplicateKeyError(err) && task.UniqueKey != nil {
		return ErrDuplicateTask
	}
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// ClaimTask locks the highest-priority due task. Concurrent workers skip rows
// already locked by another transaction.
func (s *PGStorage) ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE queue_tasks
		SET status = 'processing', locked_by = $2, locked_until = now() + $3::interval
		WHERE id = (
			SELECT id FROM queue_tasks
			WHERE queue = ANY($1)
				AND (
					(status = 'pending' AND scheduled_at <= now())
					OR (status = 'processing' AND locked_until < now())
				)
			ORDER BY priority DESC, scheduled_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING `+taskColumns,
		queues, workerID, lockDuration,
	)

	task, err := scanTask(row)
	if pg.IsNotFoundError(err) {
		return nil, ErrNoTaskToClaim
	}
	if err != nil {
		return nil, fmt.Errorf("claim task: %w", err)
	}
	return task, nil
}

func (s *PGStorage) CompleteTask(ctx context.Context, taskID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE queue_tasks
		SET status = 'completed', processed_at = now(), locked_until = NULL, locked_by = NULL
		WHERE id = $1 AND status = 'processing'`,
		taskID,
	)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotProcessing
	}
	return nil
}

func (s *PGStorage) FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE queue_tasks
		SET retry_count = retry_count + 1,
			error = $2,
			locked_until = NULL,
			locked_by = NULL,
			status = CASE WHEN retry_count + 1 >= max_retries THEN 'failed' ELSE 'pending' END,
			scheduled_at = CASE
				WHEN retry_count + 1 >= max_retries THEN scheduled_at
				ELSE now() + (retry_count + 1) * $3::interval
			END
		WHERE id = $1 AND status = 'processing'`,
		taskID, errorMsg, retryBackoff(1),
	)
	if err != nil {
		return fmt.Errorf("fail task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotProcessing
	}
	return nil
}

func (s *PGStorage) MoveToDLQ(ctx context.Context, taskID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		WITH moved AS (
			DELETE FROM queue_tasks WHERE id = $1
			RETURNING id, queue, task_type, task_name, payload, priority, coalesce(error, '') AS error, retry_count, created_at
		)
		INSERT INTO queue_tasks_dlq (id, task_id, queue, task_type, task_name, payload, priority, error, retry_count, failed_at, created_at)
		SELECT $2, id, queue, task_type, task_name, payload, priority, error, retry_count, now(), created_at
		FROM moved`,
		taskID, uuid.New(),
	)
	if err != nil {
		return fmt.Errorf("move task to dlq: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (s *PGStorage) ExtendLock(ctx context.Context, taskID uuid.UUID, duration time.Duration) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE queue_tasks SET locked_until = now() + $2::interval
		WHERE id = $1 AND status = 'processing'`,
		taskID, duration,
	)
	if err != nil {
		return fmt.Errorf("extend lock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotProcessing
	}
	return nil
}

func (s *PGStorage) GetPendingTaskByName(ctx context.Context, taskName string) (*Task, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+taskColumns+` FROM queue_tasks
		WHERE task_name = $1 AND status IN ('pending', 'processing')
		ORDER BY scheduled_at ASC
		LIMIT 1`,
		taskName,
	)

	task, err := scanTask(row)
	if pg.IsNotFoundError(err) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pending task: %w", err)
	}
	return task, nil
}
