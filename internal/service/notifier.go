package service

import (
	"context"
	"log"

	"github.com/hemolink/blood-bank-api/internal/repository"
)

// Notifier is the sink for user-facing notifications emitted by the
// appointment operations. Delivery is fire-and-forget: implementations
// must never fail the operation that produced the notification.
type Notifier interface {
	Notify(ctx context.Context, userID uint64, title, message, kind string)
}

// FeedNotifier writes notifications into the users' database feed. Insert
// failures are logged and swallowed.
type FeedNotifier struct {
	repo *repository.NotificationRepo
}

func NewFeedNotifier(repo *repository.NotificationRepo) *FeedNotifier {
	return &FeedNotifier{repo: repo}
}

func (n *FeedNotifier) Notify(ctx context.Context, userID uint64, title, message, kind string) {
	if err := n.repo.Create(ctx, userID, title, message, kind); err != nil {
		log.Printf("notifier: insert failed for user %d: %v", userID, err)
	}
}
