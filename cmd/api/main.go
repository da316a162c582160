package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
	appHTTP "github.com/cmlabs-hris/hris-attendance-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/email"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/keylock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/memory"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/mongodb"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-attendance-go/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/hris-attendance-go/internal/service/leave"
	notificationService "github.com/cmlabs-hris/hris-attendance-go/internal/service/notification"
	shiftService "github.com/cmlabs-hris/hris-attendance-go/internal/service/shift"
	"github.com/hibiken/asynq"
)

type repositories struct {
	attendance    attendance.AttendanceRepository
	shifts        shift.Repository
	leaves        leave.LeaveRequestRepository
	employees     employee.Directory
	notifications notification.Repository
}

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(newLogger(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := clock.LoadLocation(cfg.Attendance.BusinessTimezone)
	if err != nil {
		return err
	}
	systemClock := clock.System()
	businessDay := clock.NewBusinessDay(systemClock, loc)

	repos, closeRepos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepos()

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("initialize email service: %w", err)
	}
	deliverer := notificationService.NewEmailDeliverer(repos.notifications, emailService, systemClock)

	var (
		locker   keylock.Locker
		notifier notification.Notifier
	)
	if cfg.UseRedis() {
		redisClient, err := database.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		// The lock must outlive one load and one save.
		locker = keylock.NewRedisLocker(redisClient, "hris:lock", 3*cfg.Attendance.StorageTimeout)

		asynqClient := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer asynqClient.Close()
		notifier = notificationService.NewAsynqNotifier(asynqClient, cfg.Notification.AsynqQueue)
		slog.Info("Using Redis lock and asynq notification queue", "addr", cfg.Redis.Addr)
	} else {
		locker = keylock.NewMemoryLocker()
		queue := notificationService.NewQueueNotifier(deliverer, notificationService.Config{
			WorkerCount:     cfg.Notification.WorkerCount,
			QueueSize:       cfg.Notification.QueueSize,
			DeliveryTimeout: cfg.Notification.DeliveryTimeout,
		})
		defer queue.Stop()
		notifier = queue
		slog.Warn("REDIS_ADDR not set, using in-process lock and notification queue")
	}

	shiftSvc := shiftService.NewShiftService(repos.shifts, systemClock)
	leaveGate := leaveService.NewLeaveGate(repos.leaves, businessDay)
	attendanceSvc := attendanceService.NewAttendanceService(
		repos.attendance,
		shiftSvc,
		leaveGate,
		repos.employees,
		notifier,
		locker,
		businessDay,
		attendanceService.Config{
			LateCorrectionLimit:         cfg.Attendance.LateCorrectionLimit,
			StatusCorrectionLimit:       cfg.Attendance.StatusCorrectionLimit,
			StatusApprovalForcesFullDay: cfg.Attendance.StatusApprovalForcesFullDay,
			StorageTimeout:              cfg.Attendance.StorageTimeout,
			LockTimeout:                 cfg.Attendance.LockTimeout,
		},
	)

	scheduler := cron.NewScheduler(loc)
	if err := cron.NewNotificationJobs(repos.notifications, systemClock, cfg.Notification.RetentionDays).RegisterJobs(scheduler); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)
	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Env:            cfg.App.Env,
			AllowedOrigins: cfg.App.AllowedOrigins,
		},
		JWTService,
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewShiftHandler(shiftSvc),
		appHTTP.NewNotificationHandler(repos.notifications),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "store", cfg.Attendance.Store, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openRepositories(ctx context.Context, cfg *config.Config) (repositories, func(), error) {
	if cfg.Attendance.Store == config.StoreMemory {
		slog.Warn("Using in-memory attendance store; data is lost on restart")
		return repositories{
			attendance:    memory.NewAttendanceRepository(),
			shifts:        memory.NewShiftRepository(),
			leaves:        memory.NewLeaveRequestRepository(),
			employees:     memory.NewEmployeeDirectory(),
			notifications: memory.NewNotificationRepository(),
		}, func() {}, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return repositories{}, nil, fmt.Errorf("connect postgres: %w", err)
	}

	repos := repositories{
		attendance:    postgresql.NewAttendanceRepository(db),
		shifts:        postgresql.NewShiftPolicyRepository(db),
		leaves:        postgresql.NewLeaveRequestRepository(db),
		employees:     postgresql.NewEmployeeRepository(db),
		notifications: postgresql.NewNotificationRepository(db),
	}
	closers := []func(){db.Close}

	if cfg.Attendance.Store == config.StoreMongoDB {
		mongoDB, err := database.NewMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			db.Close()
			return repositories{}, nil, err
		}
		repos.attendance = mongodb.NewAttendanceRepository(mongoDB)
		closers = append(closers, func() {
			if err := mongoDB.Close(context.Background()); err != nil {
				slog.Error("Failed to disconnect MongoDB", "error", err)
			}
		})
	}

	return repos, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).With(
		slog.String("app", "hris-attendance"),
		slog.String("env", cfg.App.Env),
	)
}
