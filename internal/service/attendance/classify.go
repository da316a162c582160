package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/shift"
)

// classify maps worked seconds onto the policy thresholds. A day that only
// reaches the quarter threshold still counts as HALF_DAY.
func classify(totalSeconds int64, policy shift.Policy) attendance.WorkedStatus {
	switch {
	case totalSeconds >= policy.FullDaySeconds():
		return attendance.WorkedFullDay
	case totalSeconds >= policy.HalfDaySeconds():
		return attendance.WorkedHalfDay
	case totalSeconds >= policy.QuarterDaySeconds():
		return attendance.WorkedHalfDay
	default:
		return attendance.WorkedAbsent
	}
}

// reclassify recomputes totals and, once any session is closed, the worked status.
func reclassify(day *attendance.DayRecord, policy shift.Policy) {
	day.Recompute()
	for _, sess := range day.Sessions {
		if !sess.IsOpen() {
			day.WorkedStatus = classify(day.TotalWorkedSeconds, policy)
			return
		}
	}
}

// loginStatus compares the first punch-in against shift start plus grace.
func (s *AttendanceServiceImpl) loginStatus(policy shift.Policy, date string, punchIn time.Time) attendance.LoginStatus {
	weekday, err := s.day.Weekday(date)
	if err != nil || policy.IsWeeklyOff(weekday) {
		return attendance.LoginNotApplicable
	}

	start, err := s.day.At(date, policy.ShiftStartTime)
	if err != nil {
		return attendance.LoginNotApplicable
	}

	if punchIn.After(start.Add(policy.GracePeriod())) {
		return attendance.LoginLate
	}
	return attendance.LoginOnTime
}
