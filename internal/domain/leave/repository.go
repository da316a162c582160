package leave

import (
	"context"
)

// LeaveRequestRepository - read access to approved leave_requests
type LeaveRequestRepository interface {
	// ListApprovedCovering returns approved leaves whose range includes date.
	ListApprovedCovering(ctx context.Context, employeeID string, date string) ([]ApprovedLeave, error)
}
