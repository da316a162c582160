package employee

import "context"

// Directory resolves employees by id.
type Directory interface {
	GetByID(ctx context.Context, id string) (Employee, error)
}
