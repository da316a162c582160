package leave

import (
	"context"
	"time"
)

// Gate decides whether approved leave blocks attendance.
type Gate interface {
	// CheckPunchInAllowed returns nil when allowed, otherwise an error wrapping
	// one of the ErrOn*Leave reasons.
	CheckPunchInAllowed(ctx context.Context, employeeID string, date string, now time.Time) error

	// CoveredByLeave reports whether any approved leave covers date.
	CoveredByLeave(ctx context.Context, employeeID string, date string) (bool, error)
}
