package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
)

// RequestLateCorrection implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RequestLateCorrection(ctx context.Context, req attendance.CorrectionSubmitRequest) (attendance.DayResponse, error) {
	req.Kind = attendance.CorrectionLate
	return s.requestCorrection(ctx, req)
}

// RequestStatusCorrection implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RequestStatusCorrection(ctx context.Context, req attendance.CorrectionSubmitRequest) (attendance.DayResponse, error) {
	req.Kind = attendance.CorrectionStatus
	return s.requestCorrection(ctx, req)
}

// ApproveLateCorrection implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ApproveLateCorrection(ctx context.Context, req attendance.CorrectionDecisionRequest) (attendance.DayResponse, error) {
	req.Kind = attendance.CorrectionLate
	return s.resolveCorrection(ctx, req, true)
}

// ApproveStatusCorrection implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ApproveStatusCorrection(ctx context.Context, req attendance.CorrectionDecisionRequest) (attendance.DayResponse, error) {
	req.Kind = attendance.CorrectionStatus
	return s.resolveCorrection(ctx, req, true)
}

// RejectLateCorrection implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RejectLateCorrection(ctx context.Context, req attendance.CorrectionDecisionRequest) (attendance.DayResponse, error) {
	req.Kind = attendance.CorrectionLate
	return s.resolveCorrection(ctx, req, false)
}

// RejectStatusCorrection implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RejectStatusCorrection(ctx context.Context, req attendance.CorrectionDecisionRequest) (attendance.DayResponse, error) {
	req.Kind = attendance.CorrectionStatus
	return s.resolveCorrection(ctx, req, false)
}

func (s *AttendanceServiceImpl) requestCorrection(ctx context.Context, req attendance.CorrectionSubmitRequest) (attendance.DayResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DayResponse{}, err
	}

	requested, err := s.day.At(req.Date, req.RequestedTime)
	if err != nil {
		return attendance.DayResponse{}, err
	}

	now := s.day.Now().UTC()
	month := s.day.MonthKey()
	limit := s.correctionLimit(req.Kind)

	return s.withEmployeeLock(ctx, req.EmployeeID, "", func(agg *attendance.Aggregate) (txResult, error) {
		day := agg.Day(req.Date)
		if day == nil {
			return txResult{}, attendance.ErrNoAttendanceRecordForDate
		}

		quota := agg.Quota(req.Kind, month, limit)
		if quota.Exhausted() {
			return txResult{}, attendance.ErrQuotaExceeded
		}
		if day.Correction(req.Kind).IsPending() {
			return txResult{}, attendance.ErrDuplicateCorrectionRequest
		}
		if err := checkCorrectionTime(day, req.Kind, requested, now); err != nil {
			return txResult{}, err
		}

		quota.Used++
		agg.SetQuota(req.Kind, month, quota)
		day.SetCorrection(req.Kind, &attendance.CorrectionRequest{
			HasRequest:    true,
			Status:        attendance.CorrectionPending,
			RequestedTime: requested.UTC(),
			Reason:        req.Reason,
			QuotaMonth:    month,
			RequestedAt:   now,
		})

		return txResult{date: req.Date, changed: true}, nil
	})
}

func (s *AttendanceServiceImpl) resolveCorrection(ctx context.Context, req attendance.CorrectionDecisionRequest, approve bool) (attendance.DayResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DayResponse{}, err
	}

	var policy shift.Policy
	if approve {
		policy = s.shifts.Resolve(ctx, req.EmployeeID)
	}
	now := s.day.Now().UTC()

	return s.withEmployeeLock(ctx, req.EmployeeID, "", func(agg *attendance.Aggregate) (txResult, error) {
		day := agg.Day(req.Date)
		if day == nil {
			return txResult{}, attendance.ErrNoAttendanceRecordForDate
		}

		correction := day.Correction(req.Kind)
		if !correction.IsPending() {
			return txResult{}, attendance.ErrNoPendingCorrection
		}

		if approve {
			if err := s.applyCorrection(day, req.Kind, correction.RequestedTime, policy, now); err != nil {
				return txResult{}, err
			}
			correction.Status = attendance.CorrectionApproved
		} else {
			quota := agg.Quota(req.Kind, correction.QuotaMonth, s.correctionLimit(req.Kind))
			if quota.Used > 0 {
				quota.Used--
			}
			agg.SetQuota(req.Kind, correction.QuotaMonth, quota)
			correction.Status = attendance.CorrectionRejected
		}

		adminID := req.AdminID
		correction.ResolvedAt = &now
		correction.ResolvedBy = &adminID
		correction.AdminComment = req.AdminComment

		return txResult{date: req.Date, changed: true}, nil
	})
}

// applyCorrection rewrites the targeted punch and re-derives the day.
func (s *AttendanceServiceImpl) applyCorrection(day *attendance.DayRecord, kind attendance.CorrectionKind, requested time.Time, policy shift.Policy, now time.Time) error {
	if err := checkCorrectionTime(day, kind, requested, now); err != nil {
		return err
	}

	switch kind {
	case attendance.CorrectionLate:
		day.FirstSession().PunchIn = requested
		day.LoginStatus = s.loginStatus(policy, day.Date, requested)
		reclassify(day, policy)

	case attendance.CorrectionStatus:
		day.LastSession().Close(requested)
		day.IsFinalPunchOut = true
		reclassify(day, policy)
		if s.cfg.StatusApprovalForcesFullDay {
			day.WorkedStatus = attendance.WorkedFullDay
			day.Status = attendance.StatusCompleted
		}
	}
	return nil
}

// checkCorrectionTime keeps every session's punch-in no later than its punch-out,
// and a corrected punch-in no later than now.
func checkCorrectionTime(day *attendance.DayRecord, kind attendance.CorrectionKind, requested time.Time, now time.Time) error {
	switch kind {
	case attendance.CorrectionLate:
		first := day.FirstSession()
		if first == nil || requested.After(now) {
			return attendance.ErrInvalidCorrectionTime
		}
		if first.PunchOut != nil && requested.After(*first.PunchOut) {
			return attendance.ErrInvalidCorrectionTime
		}
	case attendance.CorrectionStatus:
		last := day.LastSession()
		if last == nil || requested.Before(last.PunchIn) {
			return attendance.ErrInvalidCorrectionTime
		}
	}
	return nil
}
