package memory

import (
	"context"
	"sync"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
)

type ShiftRepository struct {
	mu       sync.RWMutex
	policies map[string]shift.Policy
	failErr  error
}

func NewShiftRepository() *ShiftRepository {
	return &ShiftRepository{policies: make(map[string]shift.Policy)}
}

func (r *ShiftRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failErr = err
}

func (r *ShiftRepository) GetByEmployeeID(ctx context.Context, employeeID string) (shift.Policy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.failErr != nil {
		return shift.Policy{}, r.failErr
	}
	p, ok := r.policies[employeeID]
	if !ok {
		return shift.Policy{}, shift.ErrPolicyNotFound
	}
	return clonePolicy(p), nil
}

func (r *ShiftRepository) Upsert(ctx context.Context, policy shift.Policy) (shift.Policy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return shift.Policy{}, r.failErr
	}
	r.policies[policy.EmployeeID] = clonePolicy(policy)
	return policy, nil
}

func clonePolicy(p shift.Policy) shift.Policy {
	p.WeeklyOffDays = append([]int(nil), p.WeeklyOffDays...)
	return p
}
