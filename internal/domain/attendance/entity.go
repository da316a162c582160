package attendance

import (
	"fmt"
	"sort"
	"time"
)

type DayStatus string

const (
	StatusWorking   DayStatus = "WORKING"
	StatusCompleted DayStatus = "COMPLETED"
)

type LoginStatus string

const (
	LoginOnTime        LoginStatus = "ON_TIME"
	LoginLate          LoginStatus = "LATE"
	LoginNotApplicable LoginStatus = "NOT_APPLICABLE"
)

// WorkedStatus is the attendance category derived from worked hours.
type WorkedStatus string

const (
	WorkedFullDay WorkedStatus = "FULL_DAY"
	WorkedHalfDay WorkedStatus = "HALF_DAY"
	WorkedAbsent  WorkedStatus = "ABSENT"
)

// CorrectionState is the lifecycle of one correction request.
type CorrectionState string

const (
	CorrectionPending  CorrectionState = "PENDING"
	CorrectionApproved CorrectionState = "APPROVED"
	CorrectionRejected CorrectionState = "REJECTED"
)

// CorrectionKind selects which punch a correction targets.
type CorrectionKind string

const (
	CorrectionLate   CorrectionKind = "late"   // first punch-in
	CorrectionStatus CorrectionKind = "status" // last punch-out
)

// Session is one continuous punched-in interval.
type Session struct {
	ID              string     `json:"id" bson:"id"`
	PunchIn         time.Time  `json:"punch_in" bson:"punch_in"`
	PunchOut        *time.Time `json:"punch_out" bson:"punch_out"`
	DurationSeconds int64      `json:"duration_seconds" bson:"duration_seconds"`
}

func (s Session) IsOpen() bool {
	return s.PunchOut == nil
}

// Close ends the session at the given instant.
func (s *Session) Close(at time.Time) {
	s.PunchOut = &at
	s.recomputeDuration()
}

func (s *Session) recomputeDuration() {
	if s.PunchOut == nil {
		s.DurationSeconds = 0
		return
	}
	d := int64(s.PunchOut.Sub(s.PunchIn) / time.Second)
	if d < 0 {
		d = 0
	}
	s.DurationSeconds = d
}

type Location struct {
	Latitude  float64   `json:"latitude" bson:"latitude"`
	Longitude float64   `json:"longitude" bson:"longitude"`
	Address   string    `json:"address,omitempty" bson:"address,omitempty"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

type CorrectionRequest struct {
	HasRequest    bool            `json:"has_request" bson:"has_request"`
	Status        CorrectionState `json:"status" bson:"status"`
	RequestedTime time.Time       `json:"requested_time" bson:"requested_time"`
	Reason        string          `json:"reason" bson:"reason"`
	AdminComment  *string         `json:"admin_comment,omitempty" bson:"admin_comment,omitempty"`
	QuotaMonth    string          `json:"quota_month" bson:"quota_month"`
	RequestedAt   time.Time       `json:"requested_at" bson:"requested_at"`
	ResolvedAt    *time.Time      `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
	ResolvedBy    *string         `json:"resolved_by,omitempty" bson:"resolved_by,omitempty"`
}

func (c *CorrectionRequest) IsPending() bool {
	return c != nil && c.HasRequest && c.Status == CorrectionPending
}

// DayRecord is one employee's attendance for one business date.
// The worked* and display fields are derived from Sessions by Recompute.
type DayRecord struct {
	Date            string      `json:"date" bson:"date"`
	Sessions        []Session   `json:"sessions" bson:"sessions"`
	Status          DayStatus   `json:"status" bson:"status"`
	IsFinalPunchOut bool        `json:"is_final_punch_out" bson:"is_final_punch_out"`
	LoginStatus     LoginStatus `json:"login_status" bson:"login_status"`

	WorkedStatus       WorkedStatus `json:"worked_status,omitempty" bson:"worked_status,omitempty"`
	TotalWorkedSeconds int64        `json:"total_worked_seconds" bson:"total_worked_seconds"`
	WorkedHours        int          `json:"worked_hours" bson:"worked_hours"`
	WorkedMinutes      int          `json:"worked_minutes" bson:"worked_minutes"`
	WorkedSeconds      int          `json:"worked_seconds" bson:"worked_seconds"`
	DisplayTime        string       `json:"display_time" bson:"display_time"`
	BreakSeconds       int64        `json:"break_seconds" bson:"break_seconds"`

	LateCorrectionRequest   *CorrectionRequest `json:"late_correction_request,omitempty" bson:"late_correction_request,omitempty"`
	StatusCorrectionRequest *CorrectionRequest `json:"status_correction_request,omitempty" bson:"status_correction_request,omitempty"`

	PunchInLocation  *Location `json:"punch_in_location,omitempty" bson:"punch_in_location,omitempty"`
	PunchOutLocation *Location `json:"punch_out_location,omitempty" bson:"punch_out_location,omitempty"`

	AdminPunchOut          bool       `json:"admin_punch_out" bson:"admin_punch_out"`
	AdminPunchOutBy        *string    `json:"admin_punch_out_by,omitempty" bson:"admin_punch_out_by,omitempty"`
	AdminPunchOutTimestamp *time.Time `json:"admin_punch_out_timestamp,omitempty" bson:"admin_punch_out_timestamp,omitempty"`
}

func NewDayRecord(date string) DayRecord {
	return DayRecord{
		Date:        date,
		Sessions:    []Session{},
		Status:      StatusCompleted,
		LoginStatus: LoginNotApplicable,
		DisplayTime: formatDisplay(0),
	}
}

// OpenSession returns the session without a punch-out, if any.
func (d *DayRecord) OpenSession() *Session {
	for i := range d.Sessions {
		if d.Sessions[i].IsOpen() {
			return &d.Sessions[i]
		}
	}
	return nil
}

func (d *DayRecord) FirstSession() *Session {
	if len(d.Sessions) == 0 {
		return nil
	}
	return &d.Sessions[0]
}

func (d *DayRecord) LastSession() *Session {
	if len(d.Sessions) == 0 {
		return nil
	}
	return &d.Sessions[len(d.Sessions)-1]
}

// StartSession appends an open session. Callers must check OpenSession first.
func (d *DayRecord) StartSession(id string, at time.Time) {
	d.Sessions = append(d.Sessions, Session{ID: id, PunchIn: at})
	d.Status = StatusWorking
}

// Recompute derives totals from closed sessions only.
func (d *DayRecord) Recompute() {
	var total int64
	for i := range d.Sessions {
		s := &d.Sessions[i]
		s.recomputeDuration()
		if !s.IsOpen() {
			total += s.DurationSeconds
		}
	}

	d.TotalWorkedSeconds = total
	d.WorkedHours = int(total / 3600)
	d.WorkedMinutes = int(total % 3600 / 60)
	d.WorkedSeconds = int(total % 60)
	d.DisplayTime = formatDisplay(total)

	if d.OpenSession() != nil {
		d.Status = StatusWorking
	} else {
		d.Status = StatusCompleted
	}
}

// OpenSessionCount is used to assert the single-open-session invariant.
func (d *DayRecord) OpenSessionCount() int {
	n := 0
	for _, s := range d.Sessions {
		if s.IsOpen() {
			n++
		}
	}
	return n
}

func (d *DayRecord) Correction(kind CorrectionKind) *CorrectionRequest {
	if kind == CorrectionStatus {
		return d.StatusCorrectionRequest
	}
	return d.LateCorrectionRequest
}

func (d *DayRecord) SetCorrection(kind CorrectionKind, req *CorrectionRequest) {
	if kind == CorrectionStatus {
		d.StatusCorrectionRequest = req
		return
	}
	d.LateCorrectionRequest = req
}

func formatDisplay(total int64) string {
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}

// QuotaCounter tracks correction requests spent in one month.
type QuotaCounter struct {
	Limit int `json:"limit" bson:"limit"`
	Used  int `json:"used" bson:"used"`
}

func (q QuotaCounter) Exhausted() bool {
	return q.Used >= q.Limit
}

func (q QuotaCounter) Remaining() int {
	if q.Used >= q.Limit {
		return 0
	}
	return q.Limit - q.Used
}

// Aggregate holds every DayRecord of one employee. It is the unit of
// persistence and of serialization.
type Aggregate struct {
	EmployeeID                 string                  `json:"employee_id" bson:"_id"`
	EmployeeName               string                  `json:"employee_name" bson:"employee_name"`
	Days                       []DayRecord             `json:"days" bson:"days"`
	MonthlyRequestLimits       map[string]QuotaCounter `json:"monthly_request_limits" bson:"monthly_request_limits"`
	MonthlyStatusRequestLimits map[string]QuotaCounter `json:"monthly_status_request_limits" bson:"monthly_status_request_limits"`
	Version                    int64                   `json:"version" bson:"version"`
	CreatedAt                  time.Time               `json:"created_at" bson:"created_at"`
	UpdatedAt                  time.Time               `json:"updated_at" bson:"updated_at"`
}

func NewAggregate(employeeID, employeeName string) *Aggregate {
	return &Aggregate{
		EmployeeID:                 employeeID,
		EmployeeName:               employeeName,
		Days:                       []DayRecord{},
		MonthlyRequestLimits:       map[string]QuotaCounter{},
		MonthlyStatusRequestLimits: map[string]QuotaCounter{},
	}
}

// Day returns the record for date, or nil. The pointer is invalidated by AddDay.
func (a *Aggregate) Day(date string) *DayRecord {
	for i := range a.Days {
		if a.Days[i].Date == date {
			return &a.Days[i]
		}
	}
	return nil
}

// AddDay inserts a record keeping Days ordered by date. An existing record
// for the same date is returned unchanged.
func (a *Aggregate) AddDay(day DayRecord) *DayRecord {
	if existing := a.Day(day.Date); existing != nil {
		return existing
	}
	idx := sort.Search(len(a.Days), func(i int) bool { return a.Days[i].Date > day.Date })
	a.Days = append(a.Days, DayRecord{})
	copy(a.Days[idx+1:], a.Days[idx:])
	a.Days[idx] = day
	return &a.Days[idx]
}

// DaysBetween returns copies of records with start <= date <= end; empty bounds are open.
func (a *Aggregate) DaysBetween(start, end string) []DayRecord {
	out := make([]DayRecord, 0)
	for _, d := range a.Days {
		if start != "" && d.Date < start {
			continue
		}
		if end != "" && d.Date > end {
			continue
		}
		out = append(out, d)
	}
	return out
}

func (a *Aggregate) quotas(kind CorrectionKind) map[string]QuotaCounter {
	if kind == CorrectionStatus {
		if a.MonthlyStatusRequestLimits == nil {
			a.MonthlyStatusRequestLimits = map[string]QuotaCounter{}
		}
		return a.MonthlyStatusRequestLimits
	}
	if a.MonthlyRequestLimits == nil {
		a.MonthlyRequestLimits = map[string]QuotaCounter{}
	}
	return a.MonthlyRequestLimits
}

// Quota returns the counter for a month, seeded with defaultLimit when absent.
func (a *Aggregate) Quota(kind CorrectionKind, month string, defaultLimit int) QuotaCounter {
	q, ok := a.quotas(kind)[month]
	if !ok {
		return QuotaCounter{Limit: defaultLimit}
	}
	return q
}

func (a *Aggregate) SetQuota(kind CorrectionKind, month string, q QuotaCounter) {
	a.quotas(kind)[month] = q
}

// Clone returns a deep copy so a failed transition never leaks partial state.
func (a *Aggregate) Clone() *Aggregate {
	if a == nil {
		return nil
	}
	c := *a
	c.Days = make([]DayRecord, len(a.Days))
	for i, d := range a.Days {
		c.Days[i] = d.clone()
	}
	c.MonthlyRequestLimits = cloneQuotas(a.MonthlyRequestLimits)
	c.MonthlyStatusRequestLimits = cloneQuotas(a.MonthlyStatusRequestLimits)
	return &c
}

func (d DayRecord) clone() DayRecord {
	c := d
	c.Sessions = make([]Session, len(d.Sessions))
	for i, s := range d.Sessions {
		c.Sessions[i] = s
		c.Sessions[i].PunchOut = cloneTime(s.PunchOut)
	}
	c.LateCorrectionRequest = d.LateCorrectionRequest.clone()
	c.StatusCorrectionRequest = d.StatusCorrectionRequest.clone()
	if d.PunchInLocation != nil {
		l := *d.PunchInLocation
		c.PunchInLocation = &l
	}
	if d.PunchOutLocation != nil {
		l := *d.PunchOutLocation
		c.PunchOutLocation = &l
	}
	c.AdminPunchOutBy = cloneString(d.AdminPunchOutBy)
	c.AdminPunchOutTimestamp = cloneTime(d.AdminPunchOutTimestamp)
	return c
}

func (c *CorrectionRequest) clone() *CorrectionRequest {
	if c == nil {
		return nil
	}
	cp := *c
	cp.AdminComment = cloneString(c.AdminComment)
	cp.ResolvedAt = cloneTime(c.ResolvedAt)
	cp.ResolvedBy = cloneString(c.ResolvedBy)
	return &cp
}

func cloneQuotas(m map[string]QuotaCounter) map[string]QuotaCounter {
	out := make(map[string]QuotaCounter, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
