package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"payment_reminder/internal/domain/settings"
)

// PostgresSettingsRepository stores the single settings row (id = 1).
type PostgresSettingsRepository struct {
	db *sql.DB
}

func NewPostgresSettingsRepository(db *sql.DB) *PostgresSettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

// Get returns settings.Default() until the row has been written once.
func (r *PostgresSettingsRepository) Get(ctx context.Context) (*settings.Settings, error) {
	query := `SELECT notifications_enabled, notification_permission, notification_days_before,
                     notification_time, permission_denied_at, updated_at
               FROM notification_settings WHERE id = 1`
	st := &settings.Settings{}
	var permission string
	var deniedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query).Scan(&st.NotificationsEnabled, &permission,
		&st.NotificationDaysBefore, &st.NotificationTime, &deniedAt, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return settings.Default(), nil
		}
		return nil, fmt.Errorf("error getting notification settings: %w", err)
	}
	st.NotificationPermission = settings.Permission(permission)
	if deniedAt.Valid {
		at := deniedAt.Time
		st.PermissionDeniedAt = &at
	}
	return st, nil
}

func (r *PostgresSettingsRepository) Update(ctx context.Context, st *settings.Settings) error {
	query := `INSERT INTO notification_settings (id, notifications_enabled, notification_permission,
                     notification_days_before, notification_time, permission_denied_at, updated_at)
               VALUES (1, $1, $2, $3, $4, $5, NOW())
               ON CONFLICT (id) DO UPDATE
               SET notifications_enabled = EXCLUDED.notifications_enabled,
                   notification_permission = EXCLUDED.notification_permission,
                   notification_days_before = EXCLUDED.notification_days_before,
                   notification_time = EXCLUDED.notification_time,
                   permission_denied_at = EXCLUDED.permission_denied_at,
                   updated_at = NOW()`
	var deniedAt sql.NullTime
	if st.PermissionDeniedAt != nil {
		deniedAt = sql.NullTime{Time: *st.PermissionDeniedAt, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, query, st.NotificationsEnabled, string(st.NotificationPermission),
		st.NotificationDaysBefore, st.NotificationTime, deniedAt)
	if err != nil {
		return fmt.Errorf("error updating notification settings: %w", err)
	}
	return nil
}
