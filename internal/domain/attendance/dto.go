package attendance

import (
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// ========================================
// PUNCH DTOs
// ========================================

type PunchInRequest struct {
	EmployeeID   string   `json:"-"`
	EmployeeName string   `json:"employee_name,omitempty"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Address      string   `json:"address,omitempty"`
}

func (r *PunchInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if len(r.Address) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "address",
			Message: "address must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// HasValidCoordinates reports whether both coordinates are present and in range.
func (r *PunchInRequest) HasValidCoordinates() bool {
	if r.Latitude == nil || r.Longitude == nil {
		return false
	}
	return validator.IsValidLatitude(*r.Latitude) && validator.IsValidLongitude(*r.Longitude)
}

// PunchOutRequest is shared by punch-out and punch-break. Location is optional.
type PunchOutRequest struct {
	EmployeeID string   `json:"-"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Address    string   `json:"address,omitempty"`
}

func (r *PunchOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if (r.Latitude == nil) != (r.Longitude == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude and longitude must be provided together",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *PunchOutRequest) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}

type AdminPunchOutRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Date       string `json:"date" validate:"required,date"`
	// PunchOutTime accepts HH:MM in business time or an RFC3339 timestamp.
	PunchOutTime string `json:"punch_out_time" validate:"required"`
	AdminID      string `json:"-"`
}

func (r *AdminPunchOutRequest) Validate() error {
	if err := validator.ValidateStruct(r); err != nil {
		return err
	}
	if !validator.IsValidTimeOfDay(r.PunchOutTime) {
		if _, ok := validator.IsValidDateTime(r.PunchOutTime); !ok {
			return validator.ValidationErrors{{
				Field:   "punch_out_time",
				Message: "punch_out_time must be HH:MM or an ISO8601 timestamp",
			}}
		}
	}
	return nil
}

// ========================================
// CORRECTION DTOs
// ========================================

type CorrectionSubmitRequest struct {
	Kind          CorrectionKind `json:"-" validate:"required,oneof=late status"`
	EmployeeID    string         `json:"-" validate:"required"`
	Date          string         `json:"date" validate:"required,date"`
	RequestedTime string         `json:"requested_time" validate:"required,hhmm"`
	Reason        string         `json:"reason" validate:"required,max=500"`
}

func (r *CorrectionSubmitRequest) Validate() error {
	return validator.ValidateStruct(r)
}

type CorrectionDecisionRequest struct {
	Kind         CorrectionKind `json:"-" validate:"required,oneof=late status"`
	EmployeeID   string         `json:"employee_id" validate:"required"`
	Date         string         `json:"date" validate:"required,date"`
	AdminID      string         `json:"-" validate:"required"`
	AdminComment *string        `json:"admin_comment,omitempty" validate:"omitempty,max=500"`
}

func (r *CorrectionDecisionRequest) Validate() error {
	return validator.ValidateStruct(r)
}

// ========================================
// QUERY DTOs
// ========================================

type HistoryFilter struct {
	EmployeeID string `json:"-" validate:"required"`
	StartDate  string `json:"start_date" validate:"omitempty,date"`
	EndDate    string `json:"end_date" validate:"omitempty,date"`
}

func (f *HistoryFilter) Validate() error {
	if err := validator.ValidateStruct(f); err != nil {
		return err
	}
	if f.StartDate != "" && f.EndDate != "" && f.StartDate > f.EndDate {
		return validator.ValidationErrors{{
			Field:   "start_date",
			Message: "start_date must not be after end_date",
		}}
	}
	return nil
}

// ========================================
// RESPONSES
// ========================================

type DayResponse struct {
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name,omitempty"`
	Day          DayRecord `json:"day"`
}

type TodayResponse struct {
	EmployeeID  string     `json:"employee_id"`
	Date        string     `json:"date"`
	HasRecord   bool       `json:"has_record"`
	Day         *DayRecord `json:"day,omitempty"`
	IsWeeklyOff bool       `json:"is_weekly_off"`
	CanPunchIn  bool       `json:"can_punch_in"`
	CanPunchOut bool       `json:"can_punch_out"`
}

type HistorySummary struct {
	TotalDays          int   `json:"total_days"`
	FullDays           int   `json:"full_days"`
	HalfDays           int   `json:"half_days"`
	AbsentDays         int   `json:"absent_days"`
	LateDays           int   `json:"late_days"`
	TotalWorkedSeconds int64 `json:"total_worked_seconds"`
}

type HistoryResponse struct {
	EmployeeID string         `json:"employee_id"`
	StartDate  string         `json:"start_date"`
	EndDate    string         `json:"end_date"`
	Days       []DayRecord    `json:"days"`
	Summary    HistorySummary `json:"summary"`
}

type QuotaView struct {
	Limit     int `json:"limit"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

type QuotaResponse struct {
	EmployeeID string    `json:"employee_id"`
	Month      string    `json:"month"`
	Late       QuotaView `json:"late"`
	Status     QuotaView `json:"status"`
}

func NewQuotaView(q QuotaCounter) QuotaView {
	return QuotaView{Limit: q.Limit, Used: q.Used, Remaining: q.Remaining()}
}
