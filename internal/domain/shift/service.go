package shift

import "context"

// Resolver yields the effective policy for an employee. It never fails.
type Resolver interface {
	Resolve(ctx context.Context, employeeID string) Policy
}

// Service adds administrative writes on top of resolution.
type Service interface {
	Resolver
	Upsert(ctx context.Context, policy Policy) (Policy, error)
}
