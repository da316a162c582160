package shift

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
)

type ShiftServiceImpl struct {
	shift.Repository
	clock clock.Clock
}

// Resolve implements shift.Service. Missing, inactive or invalid stored
// policies fall back to shift.Default.
func (s *ShiftServiceImpl) Resolve(ctx context.Context, employeeID string) shift.Policy {
	policy, err := s.Repository.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		if !errors.Is(err, shift.ErrPolicyNotFound) {
			slog.Warn("Failed to load shift policy, using default", "employee_id", employeeID, "error", err)
		}
		return defaultFor(employeeID)
	}

	if !policy.IsActive {
		return defaultFor(employeeID)
	}

	if err := policy.Validate(); err != nil {
		slog.Warn("Stored shift policy is invalid, using default", "employee_id", employeeID, "error", err)
		return defaultFor(employeeID)
	}

	policy.EmployeeID = employeeID
	return policy
}

// Upsert implements shift.Service.
func (s *ShiftServiceImpl) Upsert(ctx context.Context, policy shift.Policy) (shift.Policy, error) {
	if err := policy.Validate(); err != nil {
		return shift.Policy{}, err
	}

	policy.IsDefault = false
	policy.UpdatedAt = s.clock.Now().UTC().Truncate(time.Second)

	saved, err := s.Repository.Upsert(ctx, policy)
	if err != nil {
		return shift.Policy{}, fmt.Errorf("failed to upsert shift policy: %w", err)
	}
	return saved, nil
}

func defaultFor(employeeID string) shift.Policy {
	p := shift.Default()
	p.EmployeeID = employeeID
	return p
}

func NewShiftService(repo shift.Repository, c clock.Clock) shift.Service {
	return &ShiftServiceImpl{
		Repository: repo,
		clock:      c,
	}
}
