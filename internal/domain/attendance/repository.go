package attendance

import "context"

// AttendanceRepository persists one Aggregate per employee.
type AttendanceRepository interface {
	// GetByEmployeeID returns nil, nil when the employee has no aggregate yet.
	GetByEmployeeID(ctx context.Context, employeeID string) (*Aggregate, error)

	// Save writes the whole aggregate. A stored version different from
	// agg.Version yields ErrConcurrentModification. On success agg.Version
	// is incremented.
	Save(ctx context.Context, agg *Aggregate) error

	// ListDays returns day records between two dates inclusive, ordered by date.
	ListDays(ctx context.Context, employeeID string, startDate string, endDate string) ([]DayRecord, error)
}
