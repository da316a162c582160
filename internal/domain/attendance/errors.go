package attendance

import "errors"

// Attendance domain errors
var (
	// Punch errors
	ErrInvalidCoordinates   = errors.New("latitude must be between -90 and 90 and longitude between -180 and 180")
	ErrOnApprovedLeave      = errors.New("you are on approved leave for this time")
	ErrAlreadyWorking       = errors.New("you already have an open session today")
	ErrAlreadyCompleted     = errors.New("you have already completed a full day today")
	ErrFinalPunchOutReached = errors.New("final punch-out already recorded for today")
	ErrNoOpenSession        = errors.New("no open session to punch out of")

	// Correction errors
	ErrNoAttendanceRecordForDate  = errors.New("no attendance record for this date")
	ErrDuplicateCorrectionRequest = errors.New("a correction request is already pending for this date")
	ErrQuotaExceeded              = errors.New("monthly correction request quota exhausted")
	ErrNoPendingCorrection        = errors.New("no pending correction request for this date")
	ErrInvalidCorrectionTime      = errors.New("requested correction time is inconsistent with the recorded sessions")

	// Storage errors
	ErrTransientStorage       = errors.New("attendance storage temporarily unavailable")
	ErrConcurrentModification = errors.New("attendance record was modified concurrently, please retry")
)

// IsRetryable reports whether err is safe for a client to retry unchanged.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientStorage) || errors.Is(err, ErrConcurrentModification)
}
