package notification

import (
	"context"
	"time"
)

// Repository records delivered notifications.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*Notification, error)
	// DeleteOlderThan removes records created before the cutoff and reports how many.
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}
