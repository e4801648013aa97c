package repository

import (
	"context"
	"database/sql"

	"github.com/hemolink/blood-bank-api/internal/model"
)

// NotificationRepo persists the per-user notification feed. Inserts are
// treated as fire-and-forget by callers: the service layer logs failures
// instead of failing the operation that produced the notification.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo returns a new NotificationRepo bound to the given database.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Create inserts one notification row.
func (r *NotificationRepo) Create(ctx context.Context, userID uint64, title, message, kind string) error {
	const q = `INSERT INTO notifications (user_id, title, message, kind) VALUES (?, ?, ?, ?)`
	_, err := exec(ctx, r.db).ExecContext(ctx, q, userID, title, message, kind)
	return err
}

// ListByUser returns the user's notifications, newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Notification, error) {
	const q = `SELECT id, user_id, title, message, kind, is_read, created_at
	           FROM notifications WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := exec(ctx, r.db).QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Kind, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags one of the user's notifications as read. sql.ErrNoRows is
// returned when the notification does not exist or belongs to someone else.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	const q = `UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`
	result, err := exec(ctx, r.db).ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var found uint64
		if err := exec(ctx, r.db).QueryRowContext(ctx,
			`SELECT id FROM notifications WHERE id = ? AND user_id = ?`, id, userID).Scan(&found); err != nil {
			return err
		}
	}
	return nil
}

// MarkAllRead flags every unread notification of the user as read.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) error {
	const q = `UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`
	_, err := exec(ctx, r.db).ExecContext(ctx, q, userID)
	return err
}
