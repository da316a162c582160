package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
)

// GateImpl answers attendance questions from approved leave requests.
type GateImpl struct {
	leave.LeaveRequestRepository
	day *clock.BusinessDay
}

// CheckPunchInAllowed implements leave.Gate.
func (g *GateImpl) CheckPunchInAllowed(ctx context.Context, employeeID string, date string, now time.Time) error {
	leaves, err := g.LeaveRequestRepository.ListApprovedCovering(ctx, employeeID, date)
	if err != nil {
		return fmt.Errorf("failed to load approved leave: %w", err)
	}
	if len(leaves) == 0 {
		return nil
	}

	cutover, err := g.day.At(date, leave.HalfDayCutover)
	if err != nil {
		return fmt.Errorf("failed to compute half-day cutover: %w", err)
	}

	for _, l := range leaves {
		if l.BlocksAt(now, cutover) {
			return denialReason(l.DurationType)
		}
	}
	return nil
}

// CoveredByLeave implements leave.Gate.
func (g *GateImpl) CoveredByLeave(ctx context.Context, employeeID string, date string) (bool, error) {
	leaves, err := g.LeaveRequestRepository.ListApprovedCovering(ctx, employeeID, date)
	if err != nil {
		return false, fmt.Errorf("failed to load approved leave: %w", err)
	}
	return len(leaves) > 0, nil
}

func denialReason(d leave.DurationType) error {
	switch d {
	case leave.DurationHalfDayMorning:
		return leave.ErrOnMorningLeave
	case leave.DurationHalfDayAfternoon:
		return leave.ErrOnAfternoonLeave
	default:
		return leave.ErrOnFullDayLeave
	}
}

func NewLeaveGate(repo leave.LeaveRequestRepository, day *clock.BusinessDay) leave.Gate {
	return &GateImpl{
		LeaveRequestRepository: repo,
		day:                    day,
	}
}
