package notification

import "errors"

// Notification domain errors
var (
	ErrInvalidKind      = errors.New("invalid notification kind")
	ErrMissingRecipient = errors.New("notification recipient email is required")
	ErrQueueFull        = errors.New("notification queue is full")
	ErrNotifierStopped  = errors.New("notifier has been stopped")
)
