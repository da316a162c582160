// Package memory holds in-process repositories used in development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
)

type AttendanceRepository struct {
	mu      sync.RWMutex
	byID    map[string]*attendance.Aggregate
	latency time.Duration
	failErr error
}

func NewAttendanceRepository() *AttendanceRepository {
	return &AttendanceRepository{byID: make(map[string]*attendance.Aggregate)}
}

// SetLatency delays every call; a context that ends first aborts the call.
func (r *AttendanceRepository) SetLatency(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latency = d
}

// FailWith makes every call return err until reset with nil.
func (r *AttendanceRepository) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failErr = err
}

func (r *AttendanceRepository) wait(ctx context.Context) error {
	r.mu.RLock()
	latency, failErr := r.latency, r.failErr
	r.mu.RUnlock()

	if failErr != nil {
		return failErr
	}
	if latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetByEmployeeID implements attendance.AttendanceRepository.
func (r *AttendanceRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*attendance.Aggregate, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	agg, ok := r.byID[employeeID]
	if !ok {
		return nil, nil
	}
	return agg.Clone(), nil
}

// Save implements attendance.AttendanceRepository.
func (r *AttendanceRepository) Save(ctx context.Context, agg *attendance.Aggregate) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var stored int64
	if existing, ok := r.byID[agg.EmployeeID]; ok {
		stored = existing.Version
	}
	if stored != agg.Version {
		return attendance.ErrConcurrentModification
	}

	agg.Version++
	r.byID[agg.EmployeeID] = agg.Clone()
	return nil
}

// ListDays implements attendance.AttendanceRepository.
func (r *AttendanceRepository) ListDays(ctx context.Context, employeeID string, startDate string, endDate string) ([]attendance.DayRecord, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	agg, ok := r.byID[employeeID]
	if !ok {
		return []attendance.DayRecord{}, nil
	}
	days := agg.Clone().DaysBetween(startDate, endDate)
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}
