package memory

import (
	"context"
	"sync"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
)

type LeaveRequestRepository struct {
	mu      sync.RWMutex
	leaves  []leave.ApprovedLeave
	failErr error
}

func NewLeaveRequestRepository() *LeaveRequestRepository {
	return &LeaveRequestRepository{}
}

// Add records an approved leave.
func (r *LeaveRequestRepository) Add(l leave.ApprovedLeave) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaves = append(r.leaves, l)
}

func (r *LeaveRequestRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failErr = err
}

func (r *LeaveRequestRepository) ListApprovedCovering(ctx context.Context, employeeID string, date string) ([]leave.ApprovedLeave, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	var out []leave.ApprovedLeave
	for _, l := range r.leaves {
		if l.EmployeeID == employeeID && l.Covers(date) {
			out = append(out, l)
		}
	}
	return out, nil
}
