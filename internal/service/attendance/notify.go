package attendance

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
)

// pendingNotification is collected while the lock is held and sent after commit.
// precheck, when set, runs outside the lock and may veto the send.
type pendingNotification struct {
	kind     notification.Kind
	payload  notification.Payload
	precheck func(ctx context.Context) bool
}

func insufficientHours(agg *attendance.Aggregate, day *attendance.DayRecord, policy shift.Policy) pendingNotification {
	return pendingNotification{
		kind: notification.KindInsufficientHours,
		payload: notification.Payload{
			EmployeeID:      agg.EmployeeID,
			EmployeeName:    agg.EmployeeName,
			Date:            day.Date,
			WorkedSeconds:   day.TotalWorkedSeconds,
			RequiredSeconds: policy.FullDaySeconds(),
			DisplayTime:     day.DisplayTime,
		},
	}
}

// uninformedAbsenceCheck fires when yesterday has no record, was a working
// day, and no approved leave covered it. The leave lookup is deferred to
// dispatch so it happens outside the lock.
func (s *AttendanceServiceImpl) uninformedAbsenceCheck(agg *attendance.Aggregate, policy shift.Policy, today string) []pendingNotification {
	yesterday, err := s.day.PreviousDate(today)
	if err != nil {
		return nil
	}
	if agg.Day(yesterday) != nil {
		return nil
	}
	if weekday, err := s.day.Weekday(yesterday); err != nil || policy.IsWeeklyOff(weekday) {
		return nil
	}

	employeeID := agg.EmployeeID
	return []pendingNotification{{
		kind: notification.KindUninformedAbsence,
		payload: notification.Payload{
			EmployeeID:   employeeID,
			EmployeeName: agg.EmployeeName,
			Date:         yesterday,
		},
		precheck: func(ctx context.Context) bool {
			covered, err := s.leaves.CoveredByLeave(ctx, employeeID, yesterday)
			if err != nil {
				slog.Warn("Skipping uninformed absence notification, leave lookup failed",
					"employee_id", employeeID, "date", yesterday, "error", err)
				return false
			}
			return !covered
		},
	}}
}

// dispatch delivers notifications on a context detached from the request.
// Failures are logged only; the attendance change is already committed.
func (s *AttendanceServiceImpl) dispatch(ctx context.Context, employeeID string, employeeName string, pending []pendingNotification) {
	if len(pending) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)

	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		slog.Error("Failed to resolve notification recipient", "employee_id", employeeID, "error", err)
		return
	}
	if emp.Email == "" {
		slog.Warn("Employee has no email, skipping notifications", "employee_id", employeeID)
		return
	}

	for _, n := range pending {
		if n.precheck != nil && !n.precheck(ctx) {
			continue
		}

		payload := n.payload
		if payload.EmployeeName == "" {
			payload.EmployeeName = employeeName
		}
		if emp.FullName != "" {
			payload.EmployeeName = emp.FullName
		}

		if err := s.notifier.Notify(ctx, n.kind, emp.Email, payload); err != nil {
			slog.Error("Failed to send attendance notification",
				"kind", n.kind, "employee_id", employeeID, "date", payload.Date, "error", err)
			continue
		}
		slog.Info("Attendance notification sent", "kind", n.kind, "employee_id", employeeID, "date", payload.Date)
	}
}
