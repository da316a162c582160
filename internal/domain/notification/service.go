package notification

import (
	"context"
)

// Notifier accepts a notification for delivery. Implementations may deliver
// asynchronously; a nil error only means the message was accepted.
type Notifier interface {
	Notify(ctx context.Context, kind Kind, email string, payload Payload) error
}

// Deliverer performs the actual delivery of one message.
type Deliverer interface {
	Deliver(ctx context.Context, msg Message) error
}
