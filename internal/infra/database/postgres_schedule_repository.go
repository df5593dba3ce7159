package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"payment_reminder/internal/domain/schedule"

	"github.com/lib/pq" // For pq.Array
)

type PostgresScheduleRepository struct {
	db *sql.DB
}

func NewPostgresScheduleRepository(db *sql.DB) *PostgresScheduleRepository {
	return &PostgresScheduleRepository{db: db}
}

const scheduleColumns = `subscription_id, scheduled_for, payment_due_at, notified_at`

func (r *PostgresScheduleRepository) GetPending(ctx context.Context) ([]*schedule.Entry, error) {
	query := `SELECT ` + scheduleColumns + ` FROM notification_schedule
               WHERE notified_at IS NULL ORDER BY scheduled_for, subscription_id`
	return r.list(ctx, query)
}

func (r *PostgresScheduleRepository) GetBySubscriptionID(ctx context.Context, id string) (*schedule.Entry, error) {
	query := `SELECT ` + scheduleColumns + ` FROM notification_schedule WHERE subscription_id = $1`
	e, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, schedule.ErrEntryNotFound
		}
		return nil, fmt.Errorf("error getting schedule entry: %w", err)
	}
	return e, nil
}

func (r *PostgresScheduleRepository) ListAll(ctx context.Context) ([]*schedule.Entry, error) {
	query := `SELECT ` + scheduleColumns + ` FROM notification_schedule ORDER BY scheduled_for, subscription_id`
	return r.list(ctx, query)
}

// ReplaceAll swaps the whole schedule in one transaction.
func (r *PostgresScheduleRepository) ReplaceAll(ctx context.Context, entries []*schedule.Entry) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	if _, err := txn.ExecContext(ctx, `DELETE FROM notification_schedule`); err != nil {
		return fmt.Errorf("failed to clear schedule: %w", err)
	}

	stmt, err := txn.PrepareContext(ctx, `INSERT INTO notification_schedule (subscription_id, scheduled_for, payment_due_at, notified_at)
               VALUES ($1, $2, $3::date, $4)`)
	if err != nil {
		return fmt.Errorf("failed to prepare schedule insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		var notifiedAt sql.NullTime
		if e.NotifiedAt != nil {
			notifiedAt = sql.NullTime{Time: *e.NotifiedAt, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, e.SubscriptionID, e.ScheduledFor, dateOnly(e.PaymentDueAt), notifiedAt); err != nil {
			return fmt.Errorf("failed to insert schedule entry %s: %w", e.SubscriptionID, err)
		}
	}

	if err := txn.Commit(); err != nil {
		return fmt.Errorf("failed to commit schedule: %w", err)
	}
	return nil
}

// MarkBatchAsNotified stamps the given entries. Rows already stamped keep their original time.
func (r *PostgresScheduleRepository) MarkBatchAsNotified(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE notification_schedule SET notified_at = $1
               WHERE subscription_id = ANY($2) AND notified_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, at, pq.Array(ids)); err != nil {
		return fmt.Errorf("error marking schedule entries as notified: %w", err)
	}
	return nil
}

func (r *PostgresScheduleRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notification_schedule`); err != nil {
		return fmt.Errorf("error clearing schedule: %w", err)
	}
	return nil
}

func (r *PostgresScheduleRepository) list(ctx context.Context, query string, args ...any) ([]*schedule.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing schedule entries: %w", err)
	}
	defer rows.Close()

	var entries []*schedule.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning schedule row: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule rows: %w", err)
	}
	return entries, nil
}

func scanEntry(row rowScanner) (*schedule.Entry, error) {
	e := &schedule.Entry{}
	var notifiedAt sql.NullTime
	if err := row.Scan(&e.SubscriptionID, &e.ScheduledFor, &e.PaymentDueAt, &notifiedAt); err != nil {
		return nil, err
	}
	if notifiedAt.Valid {
		at := notifiedAt.Time
		e.NotifiedAt = &at
	}
	return e, nil
}
