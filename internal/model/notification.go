package model

import "time"

// Notification kinds. Kind is purely presentational for clients.
const (
	NotificationInfo    = "info"
	NotificationSuccess = "success"
	NotificationAlert   = "alert"
)

// Notification is one entry in a user's notification feed. Writes are
// fire-and-forget from the caller's point of view: a failed insert is
// logged but never fails the operation that produced it.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – recipient.
//  Title     – short headline.
//  Message   – human-readable body.
//  Kind      – info | success | alert.
//  Read      – whether the user has seen it.
//  CreatedAt – creation timestamp.
type Notification struct {
	ID        uint64    // notifications.id
	UserID    uint64    // notifications.user_id
	Title     string    // notifications.title
	Message   string    // notifications.message
	Kind      string    // notifications.kind
	Read      bool      // notifications.is_read
	CreatedAt time.Time // notifications.created_at
}
