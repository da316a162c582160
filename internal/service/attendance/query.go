package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

const defaultHistoryDays = 30

// GetToday implements attendance.AttendanceService. Reads are not serialized
// with writers and may observe a slightly stale record.
func (s *AttendanceServiceImpl) GetToday(ctx context.Context, employeeID string) (attendance.TodayResponse, error) {
	if validator.IsEmpty(employeeID) {
		return attendance.TodayResponse{}, validator.ValidationErrors{{Field: "employee_id", Message: "employee_id is required"}}
	}

	today := s.day.Today()
	resp := attendance.TodayResponse{
		EmployeeID: employeeID,
		Date:       today,
		CanPunchIn: true,
	}

	policy := s.shifts.Resolve(ctx, employeeID)
	if weekday, err := s.day.Weekday(today); err == nil {
		resp.IsWeeklyOff = policy.IsWeeklyOff(weekday)
	}

	agg, err := s.load(ctx, employeeID)
	if err != nil {
		return attendance.TodayResponse{}, err
	}
	if agg == nil {
		return resp, nil
	}

	if yesterday, err := s.day.PreviousDate(today); err == nil {
		if prev := agg.Day(yesterday); prev != nil && prev.OpenSession() != nil {
			resp.CanPunchOut = true
		}
	}

	day := agg.Day(today)
	if day == nil {
		return resp, nil
	}

	record := *day
	resp.HasRecord = true
	resp.Day = &record
	resp.CanPunchIn = day.OpenSession() == nil &&
		!day.IsFinalPunchOut &&
		day.WorkedStatus != attendance.WorkedFullDay
	resp.CanPunchOut = resp.CanPunchOut || day.OpenSession() != nil
	return resp, nil
}

// ListHistory implements attendance.AttendanceService. Without bounds it
// returns the last 30 days up to today.
func (s *AttendanceServiceImpl) ListHistory(ctx context.Context, filter attendance.HistoryFilter) (attendance.HistoryResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.HistoryResponse{}, err
	}

	if filter.EndDate == "" {
		filter.EndDate = s.day.Today()
	}
	if filter.StartDate == "" {
		end, err := time.ParseInLocation(clock.DateLayout, filter.EndDate, s.day.Location())
		if err != nil {
			return attendance.HistoryResponse{}, err
		}
		filter.StartDate = end.AddDate(0, 0, -(defaultHistoryDays - 1)).Format(clock.DateLayout)
	}

	sctx, cancel := context.WithTimeout(ctx, s.cfg.StorageTimeout)
	defer cancel()

	days, err := s.AttendanceRepository.ListDays(sctx, filter.EmployeeID, filter.StartDate, filter.EndDate)
	if err != nil {
		return attendance.HistoryResponse{}, storageError("list attendance history", err)
	}

	resp := attendance.HistoryResponse{
		EmployeeID: filter.EmployeeID,
		StartDate:  filter.StartDate,
		EndDate:    filter.EndDate,
		Days:       days,
	}
	for _, d := range days {
		resp.Summary.TotalDays++
		resp.Summary.TotalWorkedSeconds += d.TotalWorkedSeconds
		switch d.WorkedStatus {
		case attendance.WorkedFullDay:
			resp.Summary.FullDays++
		case attendance.WorkedHalfDay:
			resp.Summary.HalfDays++
		case attendance.WorkedAbsent:
			resp.Summary.AbsentDays++
		}
		if d.LoginStatus == attendance.LoginLate {
			resp.Summary.LateDays++
		}
	}
	return resp, nil
}

// GetQuota implements attendance.AttendanceService. An empty month means the current one.
func (s *AttendanceServiceImpl) GetQuota(ctx context.Context, employeeID string, month string) (attendance.QuotaResponse, error) {
	if month == "" {
		month = s.day.MonthKey()
	}
	if !validator.IsValidMonth(month) {
		return attendance.QuotaResponse{}, validator.ValidationErrors{{Field: "month", Message: "month must be in YYYY-MM format"}}
	}

	agg, err := s.load(ctx, employeeID)
	if err != nil {
		return attendance.QuotaResponse{}, err
	}
	if agg == nil {
		agg = attendance.NewAggregate(employeeID, "")
	}

	return attendance.QuotaResponse{
		EmployeeID: employeeID,
		Month:      month,
		Late:       attendance.NewQuotaView(agg.Quota(attendance.CorrectionLate, month, s.cfg.LateCorrectionLimit)),
		Status:     attendance.NewQuotaView(agg.Quota(attendance.CorrectionStatus, month, s.cfg.StatusCorrectionLimit)),
	}, nil
}
