package attendance

import (
	"context"
)

// AttendanceService defines business logic for punch and correction operations
type AttendanceService interface {
	// PunchIn opens a session for today, creating the day record when absent
	PunchIn(ctx context.Context, req PunchInRequest) (DayResponse, error)

	// PunchOut closes the open session and marks the day final
	PunchOut(ctx context.Context, req PunchOutRequest) (DayResponse, error)

	// PunchBreak closes the open session without marking the day final
	PunchBreak(ctx context.Context, req PunchOutRequest) (DayResponse, error)

	// AdminPunchOut closes an open session on any date on behalf of an employee
	AdminPunchOut(ctx context.Context, req AdminPunchOutRequest) (DayResponse, error)

	// Late corrections target the first punch-in of a day
	RequestLateCorrection(ctx context.Context, req CorrectionSubmitRequest) (DayResponse, error)
	ApproveLateCorrection(ctx context.Context, req CorrectionDecisionRequest) (DayResponse, error)
	RejectLateCorrection(ctx context.Context, req CorrectionDecisionRequest) (DayResponse, error)

	// Status corrections target the last punch-out of a day
	RequestStatusCorrection(ctx context.Context, req CorrectionSubmitRequest) (DayResponse, error)
	ApproveStatusCorrection(ctx context.Context, req CorrectionDecisionRequest) (DayResponse, error)
	RejectStatusCorrection(ctx context.Context, req CorrectionDecisionRequest) (DayResponse, error)

	GetToday(ctx context.Context, employeeID string) (TodayResponse, error)
	ListHistory(ctx context.Context, filter HistoryFilter) (HistoryResponse, error)
	GetQuota(ctx context.Context, employeeID string, month string) (QuotaResponse, error)
}
