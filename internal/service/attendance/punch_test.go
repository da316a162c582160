package attendance

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-03-10 is a Monday; the day before is the default weekly off.
const monday = "2025-03-10"

func TestPunchIn_LoginStatus(t *testing.T) {
	tests := []struct {
		name string
		date string
		at   string
		want attendance.LoginStatus
	}{
		{"inside grace", monday, "09:10", attendance.LoginOnTime},
		{"grace boundary", monday, "09:15", attendance.LoginOnTime},
		{"after grace", monday, "09:20", attendance.LoginLate},
		{"weekly off", "2025-03-09", "11:00", attendance.LoginNotApplicable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			resp := h.mustPunchIn(tt.date, tt.at)

			assert.Equal(t, tt.want, resp.Day.LoginStatus)
			assert.Equal(t, attendance.StatusWorking, resp.Day.Status)
			assert.Len(t, resp.Day.Sessions, 1)
			assert.Equal(t, "Asha Rao", resp.EmployeeName)
			require.NotNil(t, resp.Day.PunchInLocation)
			assert.Equal(t, "MG Road, Bengaluru", resp.Day.PunchInLocation.Address)
		})
	}
}

func TestPunchIn_InvalidCoordinates(t *testing.T) {
	h := newHarness(t)
	h.at(monday, "09:00")

	_, err := h.svc.PunchIn(h.ctx, attendance.PunchInRequest{
		EmployeeID: testEmployee,
		Latitude:   ptr(91.0),
		Longitude:  ptr(77.0),
	})
	assert.ErrorIs(t, err, attendance.ErrInvalidCoordinates)

	_, err = h.svc.PunchIn(h.ctx, attendance.PunchInRequest{EmployeeID: testEmployee})
	assert.ErrorIs(t, err, attendance.ErrInvalidCoordinates)

	assert.Nil(t, h.aggregate())
}

func TestPunchIn_MissingEmployee(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.PunchIn(h.ctx, attendance.PunchInRequest{Latitude: ptr(1.0), Longitude: ptr(1.0)})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "employee_id", verrs[0].Field)
}

func TestPunchIn_AlreadyWorking(t *testing.T) {
	h := newHarness(t)
	h.mustPunchIn(monday, "09:00")
	before := h.aggregate()

	h.at(monday, "09:30")
	_, err := h.punchIn()
	assert.ErrorIs(t, err, attendance.ErrAlreadyWorking)

	after := h.aggregate()
	assert.Equal(t, before.Version, after.Version)
	assert.Equal(t, 1, after.Day(monday).OpenSessionCount())
}

func TestPunch_FullDayAcrossBreak(t *testing.T) {
	h := newHarness(t)
	h.mustPunchIn(monday, "09:00")
	h.mustPunchBreak(monday, "13:00")
	h.mustPunchIn(monday, "13:30")
	resp := h.mustPunchOut(monday, "17:35")

	day := resp.Day
	assert.Equal(t, int64(8*3600+5*60), day.TotalWorkedSeconds)
	assert.Equal(t, 8, day.WorkedHours)
	assert.Equal(t, 5, day.WorkedMinutes)
	assert.Equal(t, "08:05:00", day.DisplayTime)
	assert.Equal(t, int64(30*60), day.BreakSeconds)
	assert.Equal(t, attendance.WorkedFullDay, day.WorkedStatus)
	assert.Equal(t, attendance.StatusCompleted, day.Status)
	assert.True(t, day.IsFinalPunchOut)
	assert.Len(t, day.Sessions, 2)

	assert.Empty(t, h.notifier.byKind(notification.KindInsufficientHours))
}

func TestPunch_FinalBlocksBreakDoesNot(t *testing.T) {
	h := newHarness(t)
	h.mustPunchIn(monday, "09:00")
	h.mustPunchBreak(monday, "10:00")
	h.mustPunchIn(monday, "10:30")
	resp := h.mustPunchOut(monday, "11:00")

	assert.Equal(t, int64(90*60), resp.Day.TotalWorkedSeconds)
	assert.Equal(t, attendance.WorkedAbsent, resp.Day.WorkedStatus)

	h.at(monday, "12:00")
	_, err := h.punchIn()
	assert.ErrorIs(t, err, attendance.ErrFinalPunchOutReached)

	sent := h.notifier.byKind(notification.KindInsufficientHours)
	require.Len(t, sent, 1)
	assert.Equal(t, "asha@example.com", sent[0].Email)
	assert.Equal(t, monday, sent[0].Payload.Date)
	assert.Equal(t, int64(90*60), sent[0].Payload.WorkedSeconds)
	assert.Equal(t, int64(8*3600), sent[0].Payload.RequiredSeconds)
}

func TestPunchBreak_NeverNotifies(t *testing.T) {
	h := newHarness(t)
	h.mustPunchIn(monday, "09:00")
	resp := h.mustPunchBreak(monday, "10:00")

	assert.False(t, resp.Day.IsFinalPunchOut)
	assert.Equal(t, attendance.StatusCompleted, resp.Day.Status)
	assert.Empty(t, h.notifier.byKind(notification.KindInsufficientHours))
}

func TestPunch_Classification(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want attendance.WorkedStatus
	}{
		{"full day", "17:00", attendance.WorkedFullDay},
		{"half day", "13:00", attendance.WorkedHalfDay},
		{"quarter day counts as half", "11:00", attendance.WorkedHalfDay},
		{"below quarter", "10:59", attendance.WorkedAbsent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.mustPunchIn(monday, "09:00")
			resp := h.mustPunchOut(monday, tt.out)
			assert.Equal(t, tt.want, resp.Day.WorkedStatus)
		})
	}
}

func TestPunchIn_AlreadyCompleted(t *testing.T) {
	h := newHarness(t)
	h.mustPunchIn(monday, "09:00")
	h.mustPunchBreak(monday, "17:00")

	h.at(monday, "17:30")
	_, err := h.punchIn()
	assert.ErrorIs(t, err, attendance.ErrAlreadyCompleted)
}

func TestPunchOut_NoOpenSession(t *testing.T) {
	h := newHarness(t)
	h.at(monday, "18:00")
	_, err := h.punchOut()
	assert.ErrorIs(t, err, attendance.ErrNoOpenSession)

	h.mustPunchIn(monday, "09:00")
	h.mustPunchBreak(monday, "12:00")
	h.at(monday, "12:05")
	_, err = h.punchBreak()
	assert.ErrorIs(t, err, attendance.ErrNoOpenSession)
}

func TestPunchOut_ClosesSessionAcrossMidnight(t *testing.T) {
	h := newHarness(t)
	h.mustPunchIn("2025-03-11", "22:00")
	resp := h.mustPunchOut("2025-03-12", "06:00")

	assert.Equal(t, "2025-03-11", resp.Day.Date)
	assert.Equal(t, int64(8*3600), resp.Day.TotalWorkedSeconds)
	assert.Equal(t, attendance.WorkedFullDay, resp.Day.WorkedStatus)
	assert.Nil(t, h.record("2025-03-12"))
}

func TestPunchIn_BlockedWhileOvernightSessionOpen(t *testing.T) {
	h := newHarness(t)
	h.mustPunchIn("2025-03-11", "22:00")

	h.at("2025-03-12", "08:00")
	_, err := h.punchIn()
	assert.ErrorIs(t, err, attendance.ErrAlreadyWorking)
	assert.Nil(t, h.record("2025-03-12"))

	resp := h.mustPunchOut("2025-03-12", "09:00")
	assert.Equal(t, "2025-03-11", resp.Day.Date)
	assert.Equal(t, int64(11*3600), resp.Day.TotalWorkedSeconds)

	h.mustPunchIn("2025-03-12", "10:00")
	assert.Equal(t, 1, h.record("2025-03-12").OpenSessionCount())
	assert.Equal(t, 0, h.record("2025-03-11").OpenSessionCount())
}

func TestPunchIn_OnApprovedLeave(t *testing.T) {
	h := newHarness(t)
	h.leaves.Add(leave.ApprovedLeave{
		ID:           "lv-1",
		EmployeeID:   testEmployee,
		StartDate:    monday,
		EndDate:      monday,
		DurationType: leave.DurationFullDay,
	})

	h.at(monday, "09:00")
	_, err := h.punchIn()
	assert.ErrorIs(t, err, attendance.ErrOnApprovedLeave)
	assert.ErrorIs(t, err, leave.ErrOnFullDayLeave)
	assert.Nil(t, h.aggregate())
}

func TestPunchIn_AfternoonLeaveAllowsMorning(t *testing.T) {
	h := newHarness(t)
	h.leaves.Add(leave.ApprovedLeave{
		EmployeeID:   testEmployee,
		StartDate:    monday,
		EndDate:      monday,
		DurationType: leave.DurationHalfDayAfternoon,
	})

	h.mustPunchIn(monday, "09:00")
	h.mustPunchBreak(monday, "12:30")

	h.at(monday, "13:30")
	_, err := h.punchIn()
	assert.ErrorIs(t, err, attendance.ErrOnApprovedLeave)
}

func TestPunchIn_UninformedAbsence(t *testing.T) {
	// 2025-03-11 is a Tuesday; Monday has no record.
	h := newHarness(t)
	h.mustPunchIn("2025-03-11", "09:00")

	sent := h.notifier.byKind(notification.KindUninformedAbsence)
	require.Len(t, sent, 1)
	assert.Equal(t, "2025-03-10", sent[0].Payload.Date)
	assert.Equal(t, "Asha Rao", sent[0].Payload.EmployeeName)
	assert.Equal(t, "asha@example.com", sent[0].Email)

	h.mustPunchBreak("2025-03-11", "12:00")
	h.mustPunchIn("2025-03-11", "12:30")

	assert.Len(t, h.notifier.byKind(notification.KindUninformedAbsence), 1)
}

func TestPunchIn_NoAbsenceNotification(t *testing.T) {
	t.Run("yesterday on leave", func(t *testing.T) {
		h := newHarness(t)
		h.leaves.Add(leave.ApprovedLeave{EmployeeID: testEmployee, StartDate: "2025-03-10", EndDate: "2025-03-10", DurationType: leave.DurationFullDay})
		h.mustPunchIn("2025-03-11", "09:00")
		assert.Empty(t, h.notifier.byKind(notification.KindUninformedAbsence))
	})

	t.Run("yesterday attended", func(t *testing.T) {
		h := newHarness(t)
		h.mustPunchIn("2025-03-10", "09:00")
		h.mustPunchOut("2025-03-10", "17:00")
		h.mustPunchIn("2025-03-11", "09:00")
		assert.Empty(t, h.notifier.byKind(notification.KindUninformedAbsence))
	})

	t.Run("yesterday weekly off", func(t *testing.T) {
		h := newHarness(t)
		h.mustPunchIn(monday, "09:00")
		assert.Empty(t, h.notifier.byKind(notification.KindUninformedAbsence))
	})

	t.Run("leave lookup failure", func(t *testing.T) {
		h := newHarness(t)
		h.mustPunchIn("2025-03-11", "09:00")
		h.mustPunchOut("2025-03-11", "17:00")

		h.leaves.FailWith(errors.New("leave service down"))
		h.at("2025-03-13", "09:00")
		_, err := h.punchIn()
		assert.ErrorIs(t, err, attendance.ErrTransientStorage)
	})
}

func TestPunch_NotifierFailureDoesNotFailPunch(t *testing.T) {
	h := newHarness(t)
	h.notifier.err = errors.New("smtp unavailable")

	h.mustPunchIn(monday, "09:00")
	resp := h.mustPunchOut(monday, "10:00")

	assert.True(t, resp.Day.IsFinalPunchOut)
	assert.True(t, h.record(monday).IsFinalPunchOut)
	assert.Len(t, h.notifier.byKind(notification.KindInsufficientHours), 1)
}

func TestPunch_StorageTimeout(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.StorageTimeout = 20 * time.Millisecond })
	h.repo.SetLatency(500 * time.Millisecond)

	h.at(monday, "09:00")
	_, err := h.punchIn()
	assert.ErrorIs(t, err, attendance.ErrTransientStorage)
	assert.True(t, attendance.IsRetryable(err))

	h.repo.SetLatency(0)
	assert.Nil(t, h.aggregate())
}

func TestPunchIn_ConcurrentRequestsOpenOneSession(t *testing.T) {
	h := newHarness(t)
	h.at(monday, "09:00")

	const workers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		working   int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.punchIn()
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, attendance.ErrAlreadyWorking):
				working++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, working)
	assert.Equal(t, 1, h.record(monday).OpenSessionCount())
}

func TestAdminPunchOut(t *testing.T) {
	t.Run("missing record", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.svc.AdminPunchOut(h.ctx, attendance.AdminPunchOutRequest{
			EmployeeID: testEmployee, Date: monday, PunchOutTime: "18:00", AdminID: "admin-1",
		})
		assert.ErrorIs(t, err, attendance.ErrNoAttendanceRecordForDate)
	})

	t.Run("closes open session", func(t *testing.T) {
		h := newHarness(t)
		h.mustPunchIn(monday, "09:00")
		h.at("2025-03-11", "10:00")

		resp, err := h.svc.AdminPunchOut(h.ctx, attendance.AdminPunchOutRequest{
			EmployeeID: testEmployee, Date: monday, PunchOutTime: "17:00", AdminID: "admin-1",
		})
		require.NoError(t, err)

		assert.True(t, resp.Day.IsFinalPunchOut)
		assert.True(t, resp.Day.AdminPunchOut)
		require.NotNil(t, resp.Day.AdminPunchOutBy)
		assert.Equal(t, "admin-1", *resp.Day.AdminPunchOutBy)
		require.NotNil(t, resp.Day.AdminPunchOutTimestamp)
		assert.Equal(t, int64(8*3600), resp.Day.TotalWorkedSeconds)
		assert.Equal(t, attendance.WorkedFullDay, resp.Day.WorkedStatus)
		assert.Empty(t, h.notifier.byKind(notification.KindInsufficientHours))
	})

	t.Run("no open session is a no-op", func(t *testing.T) {
		h := newHarness(t)
		h.mustPunchIn(monday, "09:00")
		h.mustPunchBreak(monday, "12:00")
		before := h.aggregate().Version

		resp, err := h.svc.AdminPunchOut(h.ctx, attendance.AdminPunchOutRequest{
			EmployeeID: testEmployee, Date: monday, PunchOutTime: "18:00", AdminID: "admin-1",
		})
		require.NoError(t, err)
		assert.False(t, resp.Day.AdminPunchOut)
		assert.Equal(t, before, h.aggregate().Version)
	})

	t.Run("before punch-in is rejected", func(t *testing.T) {
		h := newHarness(t)
		h.mustPunchIn(monday, "09:00")

		_, err := h.svc.AdminPunchOut(h.ctx, attendance.AdminPunchOutRequest{
			EmployeeID: testEmployee, Date: monday, PunchOutTime: "08:00", AdminID: "admin-1",
		})
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
		assert.Equal(t, 1, h.record(monday).OpenSessionCount())
	})

	t.Run("accepts ISO8601", func(t *testing.T) {
		h := newHarness(t)
		h.mustPunchIn(monday, "09:00")

		resp, err := h.svc.AdminPunchOut(h.ctx, attendance.AdminPunchOutRequest{
			EmployeeID: testEmployee, Date: monday, PunchOutTime: "2025-03-10T13:00:00+05:30", AdminID: "admin-1",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(4*3600), resp.Day.TotalWorkedSeconds)
	})
}

func TestWithEmployeeLock_ReleasesLockOnPanic(t *testing.T) {
	h := newHarness(t, func(c *Config) { c.LockTimeout = 200 * time.Millisecond })
	h.at(monday, "09:00")
	impl := h.svc.(*AttendanceServiceImpl)

	assert.Panics(t, func() {
		_, _ = impl.withEmployeeLock(h.ctx, testEmployee, "", func(agg *attendance.Aggregate) (txResult, error) {
			panic("mutation failed")
		})
	})

	_, err := h.punchIn()
	require.NoError(t, err)
}
