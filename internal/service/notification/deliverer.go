package notification

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/email"
	"github.com/google/uuid"
)

// EmailDeliverer sends a message by email and records it.
type EmailDeliverer struct {
	repo  notification.Repository
	email email.EmailService
	clock clock.Clock
}

func NewEmailDeliverer(repo notification.Repository, emailService email.EmailService, c clock.Clock) *EmailDeliverer {
	return &EmailDeliverer{
		repo:  repo,
		email: emailService,
		clock: c,
	}
}

// Deliver implements notification.Deliverer. An email failure is returned so
// the caller may retry; nothing is recorded in that case.
func (d *EmailDeliverer) Deliver(ctx context.Context, msg notification.Message) error {
	if err := validateMessage(msg); err != nil {
		return err
	}

	p := msg.Payload
	var (
		title   string
		message string
		sendErr error
	)
	switch msg.Kind {
	case notification.KindInsufficientHours:
		required := formatHours(p.RequiredSeconds)
		title = "Insufficient working hours"
		message = fmt.Sprintf("You worked %s on %s; a full day is %s hours.", p.DisplayTime, p.Date, required)
		sendErr = d.email.SendInsufficientHours(msg.Email, email.InsufficientHoursData{
			EmployeeName:  p.EmployeeName,
			Date:          p.Date,
			WorkedTime:    p.DisplayTime,
			RequiredHours: required,
		})
	case notification.KindUninformedAbsence:
		title = "Uninformed absence"
		message = fmt.Sprintf("No attendance or approved leave was found for %s.", p.Date)
		sendErr = d.email.SendUninformedAbsence(msg.Email, email.UninformedAbsenceData{
			EmployeeName: p.EmployeeName,
			Date:         p.Date,
		})
	}
	if sendErr != nil {
		return fmt.Errorf("failed to send %s email: %w", msg.Kind, sendErr)
	}

	n := &notification.Notification{
		ID:          uuid.New().String(),
		RecipientID: p.EmployeeID,
		Email:       msg.Email,
		Kind:        msg.Kind,
		Title:       title,
		Message:     message,
		Data: map[string]interface{}{
			"date":             p.Date,
			"worked_seconds":   p.WorkedSeconds,
			"required_seconds": p.RequiredSeconds,
		},
		EmailSent: true,
		CreatedAt: d.clock.Now().UTC(),
	}
	if err := d.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	return nil
}

func validateMessage(msg notification.Message) error {
	if !msg.Kind.IsValid() {
		return fmt.Errorf("%w: %q", notification.ErrInvalidKind, msg.Kind)
	}
	if msg.Email == "" {
		return notification.ErrMissingRecipient
	}
	return nil
}

func formatHours(seconds int64) string {
	h := float64(seconds) / 3600
	if h == math.Trunc(h) {
		return strconv.FormatInt(int64(h), 10)
	}
	return strconv.FormatFloat(h, 'f', 1, 64)
}
