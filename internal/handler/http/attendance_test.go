package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/keylock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/memory"
	attendanceService "github.com/cmlabs-hris/hris-attendance-go/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/hris-attendance-go/internal/service/leave"
	shiftService "github.com/cmlabs-hris/hris-attendance-go/internal/service/shift"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type discardNotifier struct{}

func (discardNotifier) Notify(ctx context.Context, kind notification.Kind, email string, payload notification.Payload) error {
	return nil
}

type handlerTestServer struct {
	t      *testing.T
	router *chi.Mux
	jwt    jwt.Service
	notifs *memory.NotificationRepository
}

func newHandlerTestServer(t *testing.T) *handlerTestServer {
	t.Helper()

	loc, err := clock.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	// Monday 2025-03-10 09:00 IST
	fixed := clock.NewFixed(time.Date(2025, 3, 10, 3, 30, 0, 0, time.UTC))
	day := clock.NewBusinessDay(fixed, loc)

	directory := memory.NewEmployeeDirectory(
		employee.Employee{ID: "emp-1", FullName: "Asha Rao", Email: "asha@example.com", EmploymentStatus: employee.EmploymentStatusActive},
		employee.Employee{ID: "emp-2", FullName: "Ravi Kumar", Email: "ravi@example.com", EmploymentStatus: employee.EmploymentStatusActive},
	)
	shifts := shiftService.NewShiftService(memory.NewShiftRepository(), fixed)
	svc := attendanceService.NewAttendanceService(
		memory.NewAttendanceRepository(),
		shifts,
		leaveService.NewLeaveGate(memory.NewLeaveRequestRepository(), day),
		directory,
		discardNotifier{},
		keylock.NewMemoryLocker(),
		day,
		attendanceService.DefaultConfig(),
	)

	jwtService := jwt.NewJWTService(handlerTestSecret)
	notifs := memory.NewNotificationRepository()
	router := NewRouter(
		RouterOptions{
			Env:            "test",
			AllowedOrigins: []string{"http://localhost:3000"},
			Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		},
		jwtService,
		NewAttendanceHandler(svc),
		NewShiftHandler(shifts),
		NewNotificationHandler(notifs),
	)

	return &handlerTestServer{t: t, router: router, jwt: jwtService, notifs: notifs}
}

func (s *handlerTestServer) token(claims jwt.Claims) string {
	s.t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(claims, time.Hour)
	require.NoError(s.t, err)
	return token
}

func (s *handlerTestServer) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, response.Response) {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp response.Response
	if rec.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec, resp
}

func dataMap(t *testing.T, resp response.Response) map[string]interface{} {
	t.Helper()
	m, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", resp.Data)
	return m
}

func TestAttendanceRoutes_RequireToken(t *testing.T) {
	s := newHandlerTestServer(t)

	rec, _ := s.do(http.MethodPost, "/api/v1/attendance/punch-in", "", map[string]float64{"latitude": 12.9, "longitude": 77.6})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	noEmployee := s.token(jwt.Claims{UserID: "user-9"})
	rec, resp := s.do(http.MethodGet, "/api/v1/attendance/today", noEmployee, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)
}

func TestAttendanceRoutes_PunchFlow(t *testing.T) {
	s := newHandlerTestServer(t)
	token := s.token(jwt.Claims{UserID: "user-1", EmployeeID: "emp-1", Name: "Asha Rao"})
	coords := map[string]float64{"latitude": 12.97, "longitude": 77.59}

	rec, resp := s.do(http.MethodPost, "/api/v1/attendance/punch-in", token, coords)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	day := dataMap(t, resp)["day"].(map[string]interface{})
	assert.Equal(t, "2025-03-10", day["date"])
	assert.Equal(t, "WORKING", day["status"])
	assert.Equal(t, "ON_TIME", day["login_status"])

	rec, resp = s.do(http.MethodPost, "/api/v1/attendance/punch-in", token, coords)
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ALREADY_WORKING", resp.Error.Code)

	rec, resp = s.do(http.MethodPost, "/api/v1/attendance/break", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	day = dataMap(t, resp)["day"].(map[string]interface{})
	assert.Equal(t, "COMPLETED", day["status"])
	assert.Equal(t, false, day["is_final_punch_out"])

	rec, resp = s.do(http.MethodGet, "/api/v1/attendance/today", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	today := dataMap(t, resp)
	assert.Equal(t, true, today["has_record"])
	assert.Equal(t, true, today["can_punch_in"])
	assert.Equal(t, false, today["can_punch_out"])

	rec, resp = s.do(http.MethodPost, "/api/v1/attendance/punch-out", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NO_OPEN_SESSION", resp.Error.Code)
}

func TestAttendanceRoutes_PunchInValidation(t *testing.T) {
	s := newHandlerTestServer(t)
	token := s.token(jwt.Claims{UserID: "user-2", EmployeeID: "emp-2"})

	rec, resp := s.do(http.MethodPost, "/api/v1/attendance/punch-in", token, map[string]float64{"latitude": 120, "longitude": 77})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Details, "coordinates")

	rec, _ = s.do(http.MethodPost, "/api/v1/attendance/corrections/overtime", token, map[string]string{"date": "2025-03-10"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, resp = s.do(http.MethodPost, "/api/v1/attendance/corrections/late", token, map[string]string{
		"date":           "2025-03-10",
		"requested_time": "9am",
		"reason":         "traffic",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Details, "requested_time")
}

func TestAttendanceRoutes_CorrectionLifecycle(t *testing.T) {
	s := newHandlerTestServer(t)
	employeeToken := s.token(jwt.Claims{UserID: "user-1", EmployeeID: "emp-1"})
	adminToken := s.token(jwt.Claims{UserID: "admin-1", IsAdmin: true})

	rec, _ := s.do(http.MethodPost, "/api/v1/attendance/punch-in", employeeToken, map[string]float64{"latitude": 12.97, "longitude": 77.59})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = s.do(http.MethodPost, "/api/v1/attendance/corrections/late", employeeToken, map[string]string{
		"date":           "2025-03-10",
		"requested_time": "08:55",
		"reason":         "badge reader offline",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, resp := s.do(http.MethodGet, "/api/v1/attendance/quota", employeeToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	late := dataMap(t, resp)["late"].(map[string]interface{})
	assert.Equal(t, float64(1), late["used"])
	assert.Equal(t, float64(2), late["remaining"])

	decision := map[string]string{"employee_id": "emp-1", "date": "2025-03-10"}

	rec, _ = s.do(http.MethodPost, "/api/v1/admin/attendance/corrections/late/approve", employeeToken, decision)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = s.do(http.MethodPost, "/api/v1/admin/attendance/corrections/late/reject", adminToken, decision)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	day := dataMap(t, resp)["day"].(map[string]interface{})
	correction := day["late_correction_request"].(map[string]interface{})
	assert.Equal(t, "REJECTED", correction["status"])

	rec, resp = s.do(http.MethodGet, "/api/v1/admin/attendance/employees/emp-1/quota", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	late = dataMap(t, resp)["late"].(map[string]interface{})
	assert.Equal(t, float64(0), late["used"])

	rec, resp = s.do(http.MethodPost, "/api/v1/admin/attendance/corrections/late/approve", adminToken, decision)
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NO_PENDING_CORRECTION", resp.Error.Code)
}

func TestAttendanceRoutes_AdminPunchOutAndPolicy(t *testing.T) {
	s := newHandlerTestServer(t)
	employeeToken := s.token(jwt.Claims{UserID: "user-1", EmployeeID: "emp-1"})
	adminToken := s.token(jwt.Claims{UserID: "admin-1", IsAdmin: true})

	rec, _ := s.do(http.MethodPost, "/api/v1/attendance/punch-in", employeeToken, map[string]float64{"latitude": 12.97, "longitude": 77.59})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp := s.do(http.MethodPost, "/api/v1/admin/attendance/punch-out", adminToken, map[string]string{
		"employee_id":    "emp-1",
		"date":           "2025-03-10",
		"punch_out_time": "18:00",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	day := dataMap(t, resp)["day"].(map[string]interface{})
	assert.Equal(t, true, day["admin_punch_out"])
	assert.Equal(t, "FULL_DAY", day["worked_status"])

	rec, resp = s.do(http.MethodPut, "/api/v1/admin/shift-policies/emp-1", adminToken, map[string]interface{}{
		"shift_start_time":          "10:00",
		"shift_end_time":            "19:00",
		"late_grace_period_minutes": 10,
		"full_day_hours":            4,
		"half_day_hours":            6,
		"quarter_day_hours":         2,
		"weekly_off_days":           []int{0},
		"is_active":                 true,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Details, "policy")

	rec, _ = s.do(http.MethodPut, "/api/v1/admin/shift-policies/emp-1", adminToken, map[string]interface{}{
		"shift_start_time":          "10:00",
		"shift_end_time":            "19:00",
		"late_grace_period_minutes": 10,
		"full_day_hours":            8,
		"half_day_hours":            4,
		"quarter_day_hours":         2,
		"weekly_off_days":           []int{0, 6},
		"is_active":                 true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, resp = s.do(http.MethodGet, "/api/v1/attendance/shift-policy", employeeToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	policy := dataMap(t, resp)
	assert.Equal(t, "10:00", policy["shift_start_time"])
	assert.Equal(t, false, policy["is_default"])
}

func TestNotificationRoutes_ListMine(t *testing.T) {
	s := newHandlerTestServer(t)
	token := s.token(jwt.Claims{UserID: "user-1", EmployeeID: "emp-1"})

	require.NoError(t, s.notifs.Create(context.Background(), &notification.Notification{
		ID:          "n-1",
		RecipientID: "emp-1",
		Kind:        notification.KindInsufficientHours,
		Title:       "Insufficient working hours",
		CreatedAt:   time.Now(),
	}))
	require.NoError(t, s.notifs.Create(context.Background(), &notification.Notification{
		ID:          "n-2",
		RecipientID: "emp-2",
		Kind:        notification.KindUninformedAbsence,
		CreatedAt:   time.Now(),
	}))

	rec, resp := s.do(http.MethodGet, "/api/v1/attendance/notifications?limit=5", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "n-1", list[0].(map[string]interface{})["id"])
}
