package notification

import (
	"time"
)

// Kind identifies an attendance notification. The value doubles as the asynq task type.
type Kind string

const (
	KindInsufficientHours Kind = "attendance:insufficient-hours"
	KindUninformedAbsence Kind = "attendance:uninformed-absence"
)

// AllKinds returns all notification kinds
func AllKinds() []Kind {
	return []Kind{
		KindInsufficientHours,
		KindUninformedAbsence,
	}
}

func (k Kind) IsValid() bool {
	for _, known := range AllKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Payload carries what a notification template renders.
type Payload struct {
	EmployeeID      string `json:"employee_id"`
	EmployeeName    string `json:"employee_name"`
	Date            string `json:"date"`
	WorkedSeconds   int64  `json:"worked_seconds,omitempty"`
	RequiredSeconds int64  `json:"required_seconds,omitempty"`
	DisplayTime     string `json:"display_time,omitempty"`
}

// Message is one queued delivery.
type Message struct {
	Kind    Kind    `json:"kind"`
	Email   string  `json:"email"`
	Payload Payload `json:"payload"`
}

// Notification is the persisted record of a delivered message.
type Notification struct {
	ID          string                 `json:"id"`
	RecipientID string                 `json:"recipient_id"`
	Email       string                 `json:"email"`
	Kind        Kind                   `json:"kind"`
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
	Data        map[string]interface{} `json:"data,omitempty"`
	EmailSent   bool                   `json:"email_sent"`
	CreatedAt   time.Time              `json:"created_at"`
}
