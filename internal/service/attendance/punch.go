package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/google/uuid"
)

// PunchIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) PunchIn(ctx context.Context, req attendance.PunchInRequest) (attendance.DayResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DayResponse{}, err
	}
	if !req.HasValidCoordinates() {
		return attendance.DayResponse{}, attendance.ErrInvalidCoordinates
	}

	now := s.day.Now()
	today := s.day.DateOf(now)

	if err := s.leaves.CheckPunchInAllowed(ctx, req.EmployeeID, today, now); err != nil {
		if isLeaveDenial(err) {
			return attendance.DayResponse{}, fmt.Errorf("%w: %w", attendance.ErrOnApprovedLeave, err)
		}
		return attendance.DayResponse{}, fmt.Errorf("%w: %v", attendance.ErrTransientStorage, err)
	}

	policy := s.shifts.Resolve(ctx, req.EmployeeID)
	location := &attendance.Location{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Address:   req.Address,
		Timestamp: now.UTC(),
	}

	return s.withEmployeeLock(ctx, req.EmployeeID, req.EmployeeName, func(agg *attendance.Aggregate) (txResult, error) {
		return s.applyPunchIn(agg, policy, today, now, location)
	})
}

func (s *AttendanceServiceImpl) applyPunchIn(agg *attendance.Aggregate, policy shift.Policy, today string, now time.Time, location *attendance.Location) (txResult, error) {
	res := txResult{date: today}

	// A session left open overnight must be punched out before a new one starts.
	yesterday, err := s.day.PreviousDate(today)
	if err != nil {
		return txResult{}, err
	}
	if prev := agg.Day(yesterday); prev != nil && prev.OpenSession() != nil {
		return txResult{}, attendance.ErrAlreadyWorking
	}

	day := agg.Day(today)
	if day == nil {
		// First punch-in of the day; yesterday is judged before today's record exists.
		res.notifications = s.uninformedAbsenceCheck(agg, policy, today)

		record := attendance.NewDayRecord(today)
		record.StartSession(uuid.New().String(), now.UTC())
		record.LoginStatus = s.loginStatus(policy, today, now)
		record.PunchInLocation = location
		record.Recompute()
		agg.AddDay(record)

		res.changed = true
		return res, nil
	}

	switch {
	case day.WorkedStatus == attendance.WorkedFullDay:
		return txResult{}, attendance.ErrAlreadyCompleted
	case day.IsFinalPunchOut:
		return txResult{}, attendance.ErrFinalPunchOutReached
	case day.Status == attendance.StatusWorking || day.OpenSession() != nil:
		return txResult{}, attendance.ErrAlreadyWorking
	}

	// Resume from break.
	if last := day.LastSession(); last != nil && last.PunchOut != nil {
		if gap := now.Sub(*last.PunchOut); gap > 0 {
			day.BreakSeconds += int64(gap / time.Second)
		}
	}
	day.StartSession(uuid.New().String(), now.UTC())
	day.Recompute()

	res.changed = true
	return res, nil
}

// PunchOut implements attendance.AttendanceService. It is the final punch-out of the day.
func (s *AttendanceServiceImpl) PunchOut(ctx context.Context, req attendance.PunchOutRequest) (attendance.DayResponse, error) {
	return s.closeSession(ctx, req, true)
}

// PunchBreak implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) PunchBreak(ctx context.Context, req attendance.PunchOutRequest) (attendance.DayResponse, error) {
	return s.closeSession(ctx, req, false)
}

func (s *AttendanceServiceImpl) closeSession(ctx context.Context, req attendance.PunchOutRequest, final bool) (attendance.DayResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DayResponse{}, err
	}

	now := s.day.Now()
	today := s.day.DateOf(now)

	var location *attendance.Location
	if req.HasLocation() {
		if !validator.IsValidLatitude(*req.Latitude) || !validator.IsValidLongitude(*req.Longitude) {
			return attendance.DayResponse{}, attendance.ErrInvalidCoordinates
		}
		location = &attendance.Location{
			Latitude:  *req.Latitude,
			Longitude: *req.Longitude,
			Address:   req.Address,
			Timestamp: now.UTC(),
		}
	}

	policy := s.shifts.Resolve(ctx, req.EmployeeID)

	return s.withEmployeeLock(ctx, req.EmployeeID, "", func(agg *attendance.Aggregate) (txResult, error) {
		return s.applyPunchOut(agg, policy, today, now, location, final)
	})
}

func (s *AttendanceServiceImpl) applyPunchOut(agg *attendance.Aggregate, policy shift.Policy, today string, now time.Time, location *attendance.Location, final bool) (txResult, error) {
	day := agg.Day(today)
	if day == nil || day.OpenSession() == nil {
		// A session opened before midnight is closed by the next punch-out.
		yesterday, err := s.day.PreviousDate(today)
		if err != nil {
			return txResult{}, err
		}
		if prev := agg.Day(yesterday); prev != nil && prev.OpenSession() != nil {
			day = prev
		}
	}
	if day == nil || day.OpenSession() == nil {
		return txResult{}, attendance.ErrNoOpenSession
	}

	day.OpenSession().Close(now.UTC())
	if final {
		day.IsFinalPunchOut = true
	}
	if location != nil {
		day.PunchOutLocation = location
	}
	reclassify(day, policy)

	res := txResult{date: day.Date, changed: true}
	if final && day.TotalWorkedSeconds < policy.FullDaySeconds() {
		res.notifications = append(res.notifications, insufficientHours(agg, day, policy))
	}
	return res, nil
}

// AdminPunchOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) AdminPunchOut(ctx context.Context, req attendance.AdminPunchOutRequest) (attendance.DayResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DayResponse{}, err
	}

	punchOutAt, err := s.parseInstant(req.Date, req.PunchOutTime)
	if err != nil {
		return attendance.DayResponse{}, err
	}

	policy := s.shifts.Resolve(ctx, req.EmployeeID)
	now := s.day.Now().UTC()

	return s.withEmployeeLock(ctx, req.EmployeeID, "", func(agg *attendance.Aggregate) (txResult, error) {
		day := agg.Day(req.Date)
		if day == nil {
			return txResult{}, attendance.ErrNoAttendanceRecordForDate
		}

		sess := day.OpenSession()
		if sess == nil {
			return txResult{date: req.Date}, nil
		}
		if punchOutAt.Before(sess.PunchIn) {
			return txResult{}, validator.ValidationErrors{{
				Field:   "punch_out_time",
				Message: "punch_out_time must not be before the session punch-in",
			}}
		}

		sess.Close(punchOutAt.UTC())
		day.IsFinalPunchOut = true
		day.AdminPunchOut = true
		day.AdminPunchOutBy = &req.AdminID
		day.AdminPunchOutTimestamp = &now
		reclassify(day, policy)

		return txResult{date: req.Date, changed: true}, nil
	})
}

// parseInstant accepts HH:MM on the given business date or an RFC3339 timestamp.
func (s *AttendanceServiceImpl) parseInstant(date string, value string) (time.Time, error) {
	if validator.IsValidTimeOfDay(value) {
		return s.day.At(date, value)
	}
	if t, ok := validator.IsValidDateTime(value); ok {
		return t, nil
	}
	return time.Time{}, validator.ValidationErrors{{
		Field:   "time",
		Message: "time must be HH:MM or an ISO8601 timestamp",
	}}
}

func isLeaveDenial(err error) bool {
	return errors.Is(err, leave.ErrOnFullDayLeave) ||
		errors.Is(err, leave.ErrOnMorningLeave) ||
		errors.Is(err, leave.ErrOnAfternoonLeave)
}
