package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
)

const notificationRetentionSpec = "0 3 * * *"

// NotificationJobs prunes delivered notification records past their retention window.
type NotificationJobs struct {
	notifRepo notification.Repository
	clock     clock.Clock
	retention time.Duration
}

func NewNotificationJobs(notifRepo notification.Repository, c clock.Clock, retentionDays int) *NotificationJobs {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &NotificationJobs{
		notifRepo: notifRepo,
		clock:     c,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

func (j *NotificationJobs) RegisterJobs(scheduler *Scheduler) error {
	return scheduler.AddJob("prune_attendance_notifications", notificationRetentionSpec, j.PruneNotifications)
}

func (j *NotificationJobs) PruneNotifications(ctx context.Context) error {
	cutoff := j.clock.Now().UTC().Add(-j.retention)

	deleted, err := j.notifRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune notifications: %w", err)
	}

	if deleted > 0 {
		slog.Info("Cron: pruned attendance notifications", "deleted", deleted, "cutoff", cutoff)
	}
	return nil
}
