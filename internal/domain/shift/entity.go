package shift

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// Policy is the effective shift configuration for one employee.
type Policy struct {
	EmployeeID             string    `json:"employee_id" bson:"employee_id"`
	ShiftStartTime         string    `json:"shift_start_time" bson:"shift_start_time" validate:"required,hhmm"`
	ShiftEndTime           string    `json:"shift_end_time" bson:"shift_end_time" validate:"required,hhmm"`
	LateGracePeriodMinutes int       `json:"late_grace_period_minutes" bson:"late_grace_period_minutes" validate:"gte=0"`
	FullDayHours           float64   `json:"full_day_hours" bson:"full_day_hours" validate:"gte=0"`
	HalfDayHours           float64   `json:"half_day_hours" bson:"half_day_hours" validate:"gte=0"`
	QuarterDayHours        float64   `json:"quarter_day_hours" bson:"quarter_day_hours" validate:"gte=0"`
	WeeklyOffDays          []int     `json:"weekly_off_days" bson:"weekly_off_days" validate:"dive,gte=0,lte=6"`
	IsActive               bool      `json:"is_active" bson:"is_active"`
	IsDefault              bool      `json:"is_default" bson:"-"`
	UpdatedAt              time.Time `json:"updated_at,omitempty" bson:"updated_at"`
}

// Default is the system policy used when an employee has no active configuration.
func Default() Policy {
	return Policy{
		ShiftStartTime:         "09:00",
		ShiftEndTime:           "18:00",
		LateGracePeriodMinutes: 15,
		FullDayHours:           8,
		HalfDayHours:           4,
		QuarterDayHours:        2,
		WeeklyOffDays:          []int{int(time.Sunday)},
		IsActive:               true,
		IsDefault:              true,
	}
}

// Validate checks field formats and the threshold ordering
// fullDayHours >= halfDayHours >= quarterDayHours >= 0.
func (p Policy) Validate() error {
	if err := validator.ValidateStruct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigurationInvalid, err)
	}
	if p.FullDayHours < p.HalfDayHours || p.HalfDayHours < p.QuarterDayHours {
		return fmt.Errorf("%w: thresholds must satisfy full_day_hours (%g) >= half_day_hours (%g) >= quarter_day_hours (%g)",
			ErrConfigurationInvalid, p.FullDayHours, p.HalfDayHours, p.QuarterDayHours)
	}
	return nil
}

func (p Policy) IsWeeklyOff(day time.Weekday) bool {
	for _, d := range p.WeeklyOffDays {
		if d == int(day) {
			return true
		}
	}
	return false
}

func (p Policy) GracePeriod() time.Duration {
	return time.Duration(p.LateGracePeriodMinutes) * time.Minute
}

func (p Policy) FullDaySeconds() int64 {
	return hoursToSeconds(p.FullDayHours)
}

func (p Policy) HalfDaySeconds() int64 {
	return hoursToSeconds(p.HalfDayHours)
}

func (p Policy) QuarterDaySeconds() int64 {
	return hoursToSeconds(p.QuarterDayHours)
}

func hoursToSeconds(h float64) int64 {
	return int64(h * 3600)
}
