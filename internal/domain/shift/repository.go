package shift

import "context"

// Repository is the shift configuration store.
type Repository interface {
	// GetByEmployeeID returns ErrPolicyNotFound when the employee has no policy row.
	GetByEmployeeID(ctx context.Context, employeeID string) (Policy, error)

	// Upsert writes a policy; callers validate before writing.
	Upsert(ctx context.Context, policy Policy) (Policy, error)
}
