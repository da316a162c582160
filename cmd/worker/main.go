package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	_ "time/tzdata"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/email"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/memory"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	notificationService "github.com/cmlabs-hris/hris-attendance-go/internal/service/notification"
	"github.com/hibiken/asynq"
)

// The worker drains the asynq notification queue filled by cmd/api.
func main() {
	if err := run(); err != nil {
		slog.Error("Worker exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.UseRedis() {
		return fmt.Errorf("REDIS_ADDR is required to run the notification worker")
	}

	var notifRepo notification.Repository
	if cfg.Attendance.Store == config.StoreMemory {
		notifRepo = memory.NewNotificationRepository()
	} else {
		db, err := database.NewPostgreSQLDB(context.Background(), cfg.DatabaseURL())
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer db.Close()
		notifRepo = postgresql.NewNotificationRepository(db)
	}

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("initialize email service: %w", err)
	}
	deliverer := notificationService.NewEmailDeliverer(notifRepo, emailService, clock.System())

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: cfg.Notification.AsynqConcurrency,
			Queues:      map[string]int{cfg.Notification.AsynqQueue: 1},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				slog.Error("Notification task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	notificationService.RegisterHandlers(mux, deliverer)

	slog.Info("Notification worker started", "queue", cfg.Notification.AsynqQueue, "concurrency", cfg.Notification.AsynqConcurrency)
	return srv.Run(mux)
}
