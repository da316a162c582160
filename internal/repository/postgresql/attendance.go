package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// attendanceRepository stores one row per employee with the day records as JSONB.
type attendanceRepository struct {
	db *database.DB
}

// GetByEmployeeID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*attendance.Aggregate, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, employee_name, days, monthly_request_limits, monthly_status_request_limits,
			   version, created_at, updated_at
		FROM attendance_aggregates
		WHERE employee_id = $1
	`

	var (
		agg                          attendance.Aggregate
		days, lateLimits, statusLims []byte
	)
	err := q.QueryRow(ctx, query, employeeID).Scan(
		&agg.EmployeeID, &agg.EmployeeName, &days, &lateLimits, &statusLims,
		&agg.Version, &agg.CreatedAt, &agg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance aggregate: %w", err)
	}

	if err := json.Unmarshal(days, &agg.Days); err != nil {
		return nil, fmt.Errorf("failed to decode attendance days: %w", err)
	}
	if err := json.Unmarshal(lateLimits, &agg.MonthlyRequestLimits); err != nil {
		return nil, fmt.Errorf("failed to decode late correction quotas: %w", err)
	}
	if err := json.Unmarshal(statusLims, &agg.MonthlyStatusRequestLimits); err != nil {
		return nil, fmt.Errorf("failed to decode status correction quotas: %w", err)
	}
	if agg.Days == nil {
		agg.Days = []attendance.DayRecord{}
	}

	return &agg, nil
}

// Save implements attendance.AttendanceRepository.
func (r *attendanceRepository) Save(ctx context.Context, agg *attendance.Aggregate) error {
	q := GetQuerier(ctx, r.db)

	days, err := json.Marshal(agg.Days)
	if err != nil {
		return fmt.Errorf("failed to encode attendance days: %w", err)
	}
	lateLimits, err := json.Marshal(nonNilQuotas(agg.MonthlyRequestLimits))
	if err != nil {
		return fmt.Errorf("failed to encode late correction quotas: %w", err)
	}
	statusLimits, err := json.Marshal(nonNilQuotas(agg.MonthlyStatusRequestLimits))
	if err != nil {
		return fmt.Errorf("failed to encode status correction quotas: %w", err)
	}

	var (
		query string
		args  []interface{}
	)
	if agg.Version == 0 {
		query = `
			INSERT INTO attendance_aggregates (
				employee_id, employee_name, days, monthly_request_limits, monthly_status_request_limits,
				version, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, 1, $6, $7)
			ON CONFLICT (employee_id) DO NOTHING
		`
		args = []interface{}{agg.EmployeeID, agg.EmployeeName, days, lateLimits, statusLimits, agg.CreatedAt, agg.UpdatedAt}
	} else {
		query = `
			UPDATE attendance_aggregates
			SET employee_name = $2,
				days = $3,
				monthly_request_limits = $4,
				monthly_status_request_limits = $5,
				version = version + 1,
				updated_at = $6
			WHERE employee_id = $1 AND version = $7
		`
		args = []interface{}{agg.EmployeeID, agg.EmployeeName, days, lateLimits, statusLimits, agg.UpdatedAt, agg.Version}
	}

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to save attendance aggregate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrConcurrentModification
	}

	agg.Version++
	return nil
}

// ListDays implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListDays(ctx context.Context, employeeID string, startDate string, endDate string) ([]attendance.DayRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT d.value
		FROM attendance_aggregates a
		CROSS JOIN LATERAL jsonb_array_elements(a.days) AS d(value)
		WHERE a.employee_id = $1
		  AND ($2::text = '' OR d.value->>'date' >= $2::text)
		  AND ($3::text = '' OR d.value->>'date' <= $3::text)
		ORDER BY d.value->>'date'
	`

	rows, err := q.Query(ctx, query, employeeID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance days: %w", err)
	}
	defer rows.Close()

	days := make([]attendance.DayRecord, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var day attendance.DayRecord
		if err := json.Unmarshal(raw, &day); err != nil {
			return nil, fmt.Errorf("failed to decode attendance day: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return days, nil
}

func nonNilQuotas(m map[string]attendance.QuotaCounter) map[string]attendance.QuotaCounter {
	if m == nil {
		return map[string]attendance.QuotaCounter{}
	}
	return m
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}
