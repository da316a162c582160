package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/keylock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/memory"
	leavesvc "github.com/cmlabs-hris/hris-attendance-go/internal/service/leave"
	shiftsvc "github.com/cmlabs-hris/hris-attendance-go/internal/service/shift"
	"github.com/stretchr/testify/require"
)

const testEmployee = "emp-1"

type sentNotification struct {
	Kind    notification.Kind
	Email   string
	Payload notification.Payload
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (r *recordingNotifier) Notify(ctx context.Context, kind notification.Kind, email string, payload notification.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotification{Kind: kind, Email: email, Payload: payload})
	return r.err
}

func (r *recordingNotifier) byKind(kind notification.Kind) []sentNotification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sentNotification
	for _, n := range r.sent {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

type harness struct {
	t        *testing.T
	ctx      context.Context
	clock    *clock.Fixed
	day      *clock.BusinessDay
	repo     *memory.AttendanceRepository
	shifts   *memory.ShiftRepository
	leaves   *memory.LeaveRequestRepository
	notifier *recordingNotifier
	svc      attendance.AttendanceService
}

func newHarness(t *testing.T, opts ...func(*Config)) *harness {
	t.Helper()

	loc, err := clock.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	fixed := clock.NewFixed(time.Date(2025, 3, 10, 3, 30, 0, 0, time.UTC))
	day := clock.NewBusinessDay(fixed, loc)

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &harness{
		t:        t,
		ctx:      context.Background(),
		clock:    fixed,
		day:      day,
		repo:     memory.NewAttendanceRepository(),
		shifts:   memory.NewShiftRepository(),
		leaves:   memory.NewLeaveRequestRepository(),
		notifier: &recordingNotifier{},
	}
	directory := memory.NewEmployeeDirectory(employee.Employee{
		ID:               testEmployee,
		FullName:         "Asha Rao",
		Email:            "asha@example.com",
		EmploymentStatus: employee.EmploymentStatusActive,
	})

	h.svc = NewAttendanceService(
		h.repo,
		shiftsvc.NewShiftService(h.shifts, fixed),
		leavesvc.NewLeaveGate(h.leaves, day),
		directory,
		h.notifier,
		keylock.NewMemoryLocker(),
		day,
		cfg,
	)
	return h
}

// at moves the clock to a business date and HH:MM.
func (h *harness) at(date, hhmm string) {
	h.t.Helper()
	ts, err := h.day.At(date, hhmm)
	require.NoError(h.t, err)
	h.clock.Set(ts)
}

func (h *harness) punchIn() (attendance.DayResponse, error) {
	return h.svc.PunchIn(h.ctx, attendance.PunchInRequest{
		EmployeeID:   testEmployee,
		EmployeeName: "Asha Rao",
		Latitude:     ptr(12.9716),
		Longitude:    ptr(77.5946),
		Address:      "MG Road, Bengaluru",
	})
}

func (h *harness) punchOut() (attendance.DayResponse, error) {
	return h.svc.PunchOut(h.ctx, attendance.PunchOutRequest{EmployeeID: testEmployee})
}

func (h *harness) punchBreak() (attendance.DayResponse, error) {
	return h.svc.PunchBreak(h.ctx, attendance.PunchOutRequest{EmployeeID: testEmployee})
}

func (h *harness) mustPunchIn(date, hhmm string) attendance.DayResponse {
	h.t.Helper()
	h.at(date, hhmm)
	resp, err := h.punchIn()
	require.NoError(h.t, err)
	return resp
}

func (h *harness) mustPunchOut(date, hhmm string) attendance.DayResponse {
	h.t.Helper()
	h.at(date, hhmm)
	resp, err := h.punchOut()
	require.NoError(h.t, err)
	return resp
}

func (h *harness) mustPunchBreak(date, hhmm string) attendance.DayResponse {
	h.t.Helper()
	h.at(date, hhmm)
	resp, err := h.punchBreak()
	require.NoError(h.t, err)
	return resp
}

func (h *harness) aggregate() *attendance.Aggregate {
	h.t.Helper()
	agg, err := h.repo.GetByEmployeeID(h.ctx, testEmployee)
	require.NoError(h.t, err)
	return agg
}

func (h *harness) record(date string) *attendance.DayRecord {
	h.t.Helper()
	agg := h.aggregate()
	require.NotNil(h.t, agg)
	return agg.Day(date)
}

func ptr[T any](v T) *T {
	return &v
}
