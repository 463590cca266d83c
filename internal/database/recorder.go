package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulsedesk/realtime/internal/notify"
)

// NotificationRecorder persists feed entries to the notifications table.
// It implements notify.Recorder.
type NotificationRecorder struct {
	pool *pgxpool.Pool
}

// NewNotificationRecorder creates a recorder backed by the given pool.
func NewNotificationRecorder(pool *pgxpool.Pool) *NotificationRecorder {
	return &NotificationRecorder{pool: pool}
}

// Record inserts one notification.
func (r *NotificationRecorder) Record(ctx context.Context, n notify.Notification) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO notifications (id, event_type, category, title, body, payload, received_at, read)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.Type, n.Category, n.Title, n.Body, n.Payload, n.ReceivedAt, n.Read,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}
