package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/keylock"
)

const lockPrefix = "attendance:"

// Config holds attendance policy switches and resource limits.
type Config struct {
	LateCorrectionLimit   int // default: 3
	StatusCorrectionLimit int // default: 3

	// StatusApprovalForcesFullDay makes an approved status correction mark
	// the day FULL_DAY regardless of worked hours.
	StatusApprovalForcesFullDay bool

	StorageTimeout time.Duration // default: 5 seconds
	LockTimeout    time.Duration // default: 10 seconds
}

func DefaultConfig() Config {
	return Config{
		LateCorrectionLimit:         3,
		StatusCorrectionLimit:       3,
		StatusApprovalForcesFullDay: true,
		StorageTimeout:              5 * time.Second,
		LockTimeout:                 10 * time.Second,
	}
}

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	shifts    shift.Resolver
	leaves    leave.Gate
	employees employee.Directory
	notifier  notification.Notifier
	locker    keylock.Locker
	day       *clock.BusinessDay
	cfg       Config
}

// txResult is what a mutation hands back to withEmployeeLock.
type txResult struct {
	date          string
	changed       bool
	notifications []pendingNotification
}

type mutation func(agg *attendance.Aggregate) (txResult, error)

// withEmployeeLock runs fn against a copy of the employee's aggregate while
// holding the per-employee lock, persists the copy when fn reports a change,
// and dispatches collected notifications after the lock is released.
func (s *AttendanceServiceImpl) withEmployeeLock(ctx context.Context, employeeID string, employeeName string, fn mutation) (attendance.DayResponse, error) {
	resp, pending, err := s.mutateLocked(ctx, employeeID, employeeName, fn)
	if err != nil {
		return attendance.DayResponse{}, err
	}

	s.dispatch(ctx, employeeID, resp.EmployeeName, pending)
	return resp, nil
}

// mutateLocked holds the employee lock for the duration of mutate. The lock
// is released even if fn panics.
func (s *AttendanceServiceImpl) mutateLocked(ctx context.Context, employeeID string, employeeName string, fn mutation) (attendance.DayResponse, []pendingNotification, error) {
	lockCtx, cancelLock := context.WithTimeout(ctx, s.cfg.LockTimeout)
	unlock, err := s.locker.Lock(lockCtx, lockPrefix+employeeID)
	cancelLock()
	if err != nil {
		if errors.Is(err, keylock.ErrLockTimeout) {
			return attendance.DayResponse{}, nil, attendance.ErrConcurrentModification
		}
		return attendance.DayResponse{}, nil, fmt.Errorf("%w: %v", attendance.ErrTransientStorage, err)
	}
	defer unlock()

	return s.mutate(ctx, employeeID, employeeName, fn)
}

func (s *AttendanceServiceImpl) mutate(ctx context.Context, employeeID string, employeeName string, fn mutation) (attendance.DayResponse, []pendingNotification, error) {
	stored, err := s.load(ctx, employeeID)
	if err != nil {
		return attendance.DayResponse{}, nil, err
	}

	var working *attendance.Aggregate
	if stored == nil {
		working = attendance.NewAggregate(employeeID, employeeName)
	} else {
		working = stored.Clone()
	}

	res, err := fn(working)
	if err != nil {
		return attendance.DayResponse{}, nil, err
	}

	if res.changed {
		now := s.day.Now().UTC()
		if working.CreatedAt.IsZero() {
			working.CreatedAt = now
		}
		if employeeName != "" && working.EmployeeName == "" {
			working.EmployeeName = employeeName
		}
		working.UpdatedAt = now

		if err := s.save(ctx, working); err != nil {
			return attendance.DayResponse{}, nil, err
		}
	}

	resp := attendance.DayResponse{
		EmployeeID:   working.EmployeeID,
		EmployeeName: working.EmployeeName,
	}
	if day := working.Day(res.date); day != nil {
		resp.Day = *day
	}
	return resp, res.notifications, nil
}

func (s *AttendanceServiceImpl) load(ctx context.Context, employeeID string) (*attendance.Aggregate, error) {
	sctx, cancel := context.WithTimeout(ctx, s.cfg.StorageTimeout)
	defer cancel()

	agg, err := s.AttendanceRepository.GetByEmployeeID(sctx, employeeID)
	if err != nil {
		return nil, storageError("load attendance", err)
	}
	return agg, nil
}

func (s *AttendanceServiceImpl) save(ctx context.Context, agg *attendance.Aggregate) error {
	sctx, cancel := context.WithTimeout(ctx, s.cfg.StorageTimeout)
	defer cancel()

	if err := s.AttendanceRepository.Save(sctx, agg); err != nil {
		return storageError("save attendance", err)
	}
	return nil
}

// storageError keeps optimistic conflicts distinct and folds everything else
// into ErrTransientStorage.
func storageError(op string, err error) error {
	if errors.Is(err, attendance.ErrConcurrentModification) {
		return attendance.ErrConcurrentModification
	}
	slog.Error("Attendance storage failure", "op", op, "error", err)
	return fmt.Errorf("%w: %s: %v", attendance.ErrTransientStorage, op, err)
}

func (s *AttendanceServiceImpl) correctionLimit(kind attendance.CorrectionKind) int {
	if kind == attendance.CorrectionStatus {
		return s.cfg.StatusCorrectionLimit
	}
	return s.cfg.LateCorrectionLimit
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	shiftResolver shift.Resolver,
	leaveGate leave.Gate,
	employeeDirectory employee.Directory,
	notifier notification.Notifier,
	locker keylock.Locker,
	day *clock.BusinessDay,
	cfg Config,
) attendance.AttendanceService {
	defaults := DefaultConfig()
	if cfg.LateCorrectionLimit <= 0 {
		cfg.LateCorrectionLimit = defaults.LateCorrectionLimit
	}
	if cfg.StatusCorrectionLimit <= 0 {
		cfg.StatusCorrectionLimit = defaults.StatusCorrectionLimit
	}
	if cfg.StorageTimeout <= 0 {
		cfg.StorageTimeout = defaults.StorageTimeout
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = defaults.LockTimeout
	}

	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		shifts:               shiftResolver,
		leaves:               leaveGate,
		employees:            employeeDirectory,
		notifier:             notifier,
		locker:               locker,
		day:                  day,
		cfg:                  cfg,
	}
}
