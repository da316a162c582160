package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrEmployeeClaimRequired):
		Forbidden(w, "Employee ID not found in token")
	case errors.Is(err, auth.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Input errors
	case errors.Is(err, attendance.ErrInvalidCoordinates):
		ValidationError(w, map[string]string{"coordinates": err.Error()})
	case errors.Is(err, attendance.ErrInvalidCorrectionTime):
		ValidationError(w, map[string]string{"requested_time": err.Error()})
	case errors.Is(err, shift.ErrConfigurationInvalid):
		ValidationError(w, map[string]string{"policy": err.Error()})

	// Lookups
	case errors.Is(err, attendance.ErrNoAttendanceRecordForDate):
		NotFound(w, "No attendance record for this date")
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// State conflicts
	case errors.Is(err, attendance.ErrOnApprovedLeave):
		Conflict(w, "ON_APPROVED_LEAVE", err.Error())
	case errors.Is(err, attendance.ErrAlreadyWorking):
		Conflict(w, "ALREADY_WORKING", "You already have an open session")
	case errors.Is(err, attendance.ErrAlreadyCompleted):
		Conflict(w, "ALREADY_COMPLETED", "Attendance for today is already completed")
	case errors.Is(err, attendance.ErrFinalPunchOutReached):
		Conflict(w, "FINAL_PUNCH_OUT_REACHED", "Final punch-out already recorded for today")
	case errors.Is(err, attendance.ErrNoOpenSession):
		Conflict(w, "NO_OPEN_SESSION", "No open session to close")
	case errors.Is(err, attendance.ErrDuplicateCorrectionRequest):
		Conflict(w, "DUPLICATE_CORRECTION_REQUEST", "A correction request for this date is already pending")
	case errors.Is(err, attendance.ErrNoPendingCorrection):
		Conflict(w, "NO_PENDING_CORRECTION", "No pending correction request for this date")
	case errors.Is(err, attendance.ErrConcurrentModification):
		RetryableConflict(w, "CONCURRENT_MODIFICATION", "Attendance was modified concurrently, please retry")

	// Quota
	case errors.Is(err, attendance.ErrQuotaExceeded):
		TooManyRequests(w, "Monthly correction request quota exceeded")

	// Infrastructure
	case errors.Is(err, attendance.ErrTransientStorage):
		ServiceUnavailable(w, "Attendance storage is temporarily unavailable")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
