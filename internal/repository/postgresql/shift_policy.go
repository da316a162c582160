package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type shiftPolicyRepositoryImpl struct {
	db *database.DB
}

// GetByEmployeeID implements shift.Repository.
func (r *shiftPolicyRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string) (shift.Policy, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, shift_start_time, shift_end_time, late_grace_period_minutes,
			   full_day_hours, half_day_hours, quarter_day_hours, weekly_off_days, is_active, updated_at
		FROM shift_policies
		WHERE employee_id = $1
	`

	var p shift.Policy
	err := q.QueryRow(ctx, query, employeeID).Scan(
		&p.EmployeeID, &p.ShiftStartTime, &p.ShiftEndTime, &p.LateGracePeriodMinutes,
		&p.FullDayHours, &p.HalfDayHours, &p.QuarterDayHours, &p.WeeklyOffDays, &p.IsActive, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.Policy{}, shift.ErrPolicyNotFound
		}
		return shift.Policy{}, fmt.Errorf("failed to get shift policy: %w", err)
	}

	return p, nil
}

// Upsert implements shift.Repository. Every write is also appended to
// shift_policy_history in the same transaction.
func (r *shiftPolicyRepositoryImpl) Upsert(ctx context.Context, policy shift.Policy) (shift.Policy, error) {
	if policy.WeeklyOffDays == nil {
		policy.WeeklyOffDays = []int{}
	}

	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		upsert := `
			INSERT INTO shift_policies (
				employee_id, shift_start_time, shift_end_time, late_grace_period_minutes,
				full_day_hours, half_day_hours, quarter_day_hours, weekly_off_days, is_active, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (employee_id) DO UPDATE SET
				shift_start_time = EXCLUDED.shift_start_time,
				shift_end_time = EXCLUDED.shift_end_time,
				late_grace_period_minutes = EXCLUDED.late_grace_period_minutes,
				full_day_hours = EXCLUDED.full_day_hours,
				half_day_hours = EXCLUDED.half_day_hours,
				quarter_day_hours = EXCLUDED.quarter_day_hours,
				weekly_off_days = EXCLUDED.weekly_off_days,
				is_active = EXCLUDED.is_active,
				updated_at = EXCLUDED.updated_at
		`
		if _, err := q.Exec(ctx, upsert,
			policy.EmployeeID, policy.ShiftStartTime, policy.ShiftEndTime, policy.LateGracePeriodMinutes,
			policy.FullDayHours, policy.HalfDayHours, policy.QuarterDayHours, policy.WeeklyOffDays,
			policy.IsActive, policy.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to upsert shift policy: %w", err)
		}

		history := `
			INSERT INTO shift_policy_history (
				employee_id, shift_start_time, shift_end_time, late_grace_period_minutes,
				full_day_hours, half_day_hours, quarter_day_hours, weekly_off_days, is_active, recorded_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		if _, err := q.Exec(ctx, history,
			policy.EmployeeID, policy.ShiftStartTime, policy.ShiftEndTime, policy.LateGracePeriodMinutes,
			policy.FullDayHours, policy.HalfDayHours, policy.QuarterDayHours, policy.WeeklyOffDays,
			policy.IsActive, policy.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to record shift policy history: %w", err)
		}
		return nil
	})
	if err != nil {
		return shift.Policy{}, err
	}

	return policy, nil
}

func NewShiftPolicyRepository(db *database.DB) shift.Repository {
	return &shiftPolicyRepositoryImpl{db: db}
}
