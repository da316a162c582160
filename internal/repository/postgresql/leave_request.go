package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

// ListApprovedCovering implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) ListApprovedCovering(ctx context.Context, employeeID string, date string) ([]leave.ApprovedLeave, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT lr.id, lr.employee_id, COALESCE(lt.name, ''),
			   to_char(lr.start_date, 'YYYY-MM-DD'), to_char(lr.end_date, 'YYYY-MM-DD'), lr.duration_type
		FROM leave_requests lr
		LEFT JOIN leave_types lt ON lr.leave_type_id = lt.id
		WHERE lr.employee_id = $1
		  AND lr.status = 'approved'
		  AND lr.start_date <= $2::date
		  AND lr.end_date >= $2::date
		ORDER BY lr.start_date
	`

	rows, err := q.Query(ctx, query, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved leave: %w", err)
	}
	defer rows.Close()

	var leaves []leave.ApprovedLeave
	for rows.Next() {
		var l leave.ApprovedLeave
		if err := rows.Scan(&l.ID, &l.EmployeeID, &l.LeaveTypeName, &l.StartDate, &l.EndDate, &l.DurationType); err != nil {
			return nil, err
		}
		leaves = append(leaves, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return leaves, nil
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}
