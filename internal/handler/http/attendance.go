package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	// Employee
	PunchIn(w http.ResponseWriter, r *http.Request)
	PunchOut(w http.ResponseWriter, r *http.Request)
	PunchBreak(w http.ResponseWriter, r *http.Request)
	GetToday(w http.ResponseWriter, r *http.Request)
	GetMyHistory(w http.ResponseWriter, r *http.Request)
	GetMyQuota(w http.ResponseWriter, r *http.Request)
	RequestCorrection(w http.ResponseWriter, r *http.Request)

	// Admin
	AdminPunchOut(w http.ResponseWriter, r *http.Request)
	ApproveCorrection(w http.ResponseWriter, r *http.Request)
	RejectCorrection(w http.ResponseWriter, r *http.Request)
	GetEmployeeToday(w http.ResponseWriter, r *http.Request)
	GetEmployeeHistory(w http.ResponseWriter, r *http.Request)
	GetEmployeeQuota(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// decodeJSON reads an optional JSON body; an empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Error("Failed to decode request body", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// correctionKind maps the {kind} URL segment to a correction kind.
func correctionKind(w http.ResponseWriter, r *http.Request) (attendance.CorrectionKind, bool) {
	switch kind := attendance.CorrectionKind(chi.URLParam(r, "kind")); kind {
	case attendance.CorrectionLate, attendance.CorrectionStatus:
		return kind, true
	default:
		response.NotFound(w, "Unknown correction kind")
		return "", false
	}
}

// PunchIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) PunchIn(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req attendance.PunchInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// Identity always comes from the token
	req.EmployeeID = claims.EmployeeID
	if req.EmployeeName == "" {
		req.EmployeeName = claims.Name
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.PunchIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Punch in successful", result)
}

// PunchOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) PunchOut(w http.ResponseWriter, r *http.Request) {
	h.closeSession(w, r, true)
}

// PunchBreak implements AttendanceHandler.
func (h *attendanceHandlerImpl) PunchBreak(w http.ResponseWriter, r *http.Request) {
	h.closeSession(w, r, false)
}

func (h *attendanceHandlerImpl) closeSession(w http.ResponseWriter, r *http.Request, final bool) {
	claims, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req attendance.PunchOutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.EmployeeID = claims.EmployeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	var result attendance.DayResponse
	if final {
		result, err = h.attendanceService.PunchOut(r.Context(), req)
	} else {
		result, err = h.attendanceService.PunchBreak(r.Context(), req)
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if final {
		response.SuccessWithMessage(w, "Punch out successful", result)
		return
	}
	response.SuccessWithMessage(w, "Break started", result)
}

// GetToday implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetToday(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	h.writeToday(w, r, claims.EmployeeID)
}

// GetMyHistory implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyHistory(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	h.writeHistory(w, r, claims.EmployeeID)
}

// GetMyQuota implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyQuota(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	h.writeQuota(w, r, claims.EmployeeID)
}

// RequestCorrection implements AttendanceHandler.
func (h *attendanceHandlerImpl) RequestCorrection(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	kind, ok := correctionKind(w, r)
	if !ok {
		return
	}

	var req attendance.CorrectionSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode correction request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Kind = kind
	req.EmployeeID = claims.EmployeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	var result attendance.DayResponse
	if kind == attendance.CorrectionLate {
		result, err = h.attendanceService.RequestLateCorrection(r.Context(), req)
	} else {
		result, err = h.attendanceService.RequestStatusCorrection(r.Context(), req)
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Correction request submitted", result)
}

// AdminPunchOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) AdminPunchOut(w http.ResponseWriter, r *http.Request) {
	claims, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req attendance.AdminPunchOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode admin punch out request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.AdminID = claims.UserID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.AdminPunchOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Punch out recorded", result)
}

// ApproveCorrection implements AttendanceHandler.
func (h *attendanceHandlerImpl) ApproveCorrection(w http.ResponseWriter, r *http.Request) {
	h.decideCorrection(w, r, true)
}

// RejectCorrection implements AttendanceHandler.
func (h *attendanceHandlerImpl) RejectCorrection(w http.ResponseWriter, r *http.Request) {
	h.decideCorrection(w, r, false)
}

func (h *attendanceHandlerImpl) decideCorrection(w http.ResponseWriter, r *http.Request, approve bool) {
	claims, err := jwt.ClaimsFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	kind, ok := correctionKind(w, r)
	if !ok {
		return
	}

	var req attendance.CorrectionDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode correction decision", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.Kind = kind
	req.AdminID = claims.UserID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	var result attendance.DayResponse
	switch {
	case approve && kind == attendance.CorrectionLate:
		result, err = h.attendanceService.ApproveLateCorrection(r.Context(), req)
	case approve:
		result, err = h.attendanceService.ApproveStatusCorrection(r.Context(), req)
	case kind == attendance.CorrectionLate:
		result, err = h.attendanceService.RejectLateCorrection(r.Context(), req)
	default:
		result, err = h.attendanceService.RejectStatusCorrection(r.Context(), req)
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if approve {
		response.SuccessWithMessage(w, "Correction request approved", result)
		return
	}
	response.SuccessWithMessage(w, "Correction request rejected", result)
}

// GetEmployeeToday implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetEmployeeToday(w http.ResponseWriter, r *http.Request) {
	h.writeToday(w, r, chi.URLParam(r, "employeeID"))
}

// GetEmployeeHistory implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetEmployeeHistory(w http.ResponseWriter, r *http.Request) {
	h.writeHistory(w, r, chi.URLParam(r, "employeeID"))
}

// GetEmployeeQuota implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetEmployeeQuota(w http.ResponseWriter, r *http.Request) {
	h.writeQuota(w, r, chi.URLParam(r, "employeeID"))
}

func (h *attendanceHandlerImpl) writeToday(w http.ResponseWriter, r *http.Request, employeeID string) {
	result, err := h.attendanceService.GetToday(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *attendanceHandlerImpl) writeHistory(w http.ResponseWriter, r *http.Request, employeeID string) {
	filter := attendance.HistoryFilter{
		EmployeeID: employeeID,
		StartDate:  r.URL.Query().Get("start_date"),
		EndDate:    r.URL.Query().Get("end_date"),
	}

	result, err := h.attendanceService.ListHistory(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *attendanceHandlerImpl) writeQuota(w http.ResponseWriter, r *http.Request, employeeID string) {
	result, err := h.attendanceService.GetQuota(r.Context(), employeeID, r.URL.Query().Get("month"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
