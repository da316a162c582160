package leave

import "time"

// DurationType is how much of a day an approved leave covers.
type DurationType string

const (
	DurationFullDay          DurationType = "full_day"
	DurationHalfDayMorning   DurationType = "half_day_morning"
	DurationHalfDayAfternoon DurationType = "half_day_afternoon"
)

// HalfDayCutover splits morning and afternoon half-day leave, in business time.
const HalfDayCutover = "13:00"

// ApprovedLeave is an approved leave request as seen by attendance.
type ApprovedLeave struct {
	ID            string
	EmployeeID    string
	LeaveTypeName string
	StartDate     string // YYYY-MM-DD
	EndDate       string // YYYY-MM-DD, inclusive
	DurationType  DurationType
}

// Covers reports whether date falls inside the leave range.
func (l ApprovedLeave) Covers(date string) bool {
	return l.StartDate <= date && date <= l.EndDate
}

// BlocksAt reports whether the leave forbids punching in at the given instant.
// cutover is HalfDayCutover on the same business date as at.
func (l ApprovedLeave) BlocksAt(at time.Time, cutover time.Time) bool {
	switch l.DurationType {
	case DurationFullDay:
		return true
	case DurationHalfDayMorning:
		return at.Before(cutover)
	case DurationHalfDayAfternoon:
		return !at.Before(cutover)
	default:
		return false
	}
}
