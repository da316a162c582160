package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("ATTENDANCE_STORE", "memory")
	t.Setenv("APP_ENV", "test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Attendance.Store)
	assert.Equal(t, 3, cfg.Attendance.LateCorrectionLimit)
	assert.Equal(t, 3, cfg.Attendance.StatusCorrectionLimit)
	assert.True(t, cfg.Attendance.StatusApprovalForcesFullDay)
	assert.Equal(t, 5*time.Second, cfg.Attendance.StorageTimeout)
	assert.Equal(t, 2, cfg.Notification.WorkerCount)
	assert.False(t, cfg.UseRedis())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("ATTENDANCE_STORE", "memory")
	t.Setenv("APP_ENV", "test")
	t.Setenv("STATUS_CORRECTION_FORCES_FULL_DAY", "false")
	t.Setenv("ATTENDANCE_STORAGE_TIMEOUT", "2s")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Attendance.StatusApprovalForcesFullDay)
	assert.Equal(t, 2*time.Second, cfg.Attendance.StorageTimeout)
	assert.True(t, cfg.UseRedis())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.AllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing jwt secret", env: map[string]string{"ATTENDANCE_STORE": "memory"}},
		{name: "unknown store", env: map[string]string{"JWT_SECRET_KEY": "s", "ATTENDANCE_STORE": "sqlite"}},
		{name: "mongo without uri", env: map[string]string{"JWT_SECRET_KEY": "s", "ATTENDANCE_STORE": "mongodb", "DB_PASSWORD": "p"}},
		{name: "bad timezone", env: map[string]string{"JWT_SECRET_KEY": "s", "ATTENDANCE_STORE": "memory", "BUSINESS_TIMEZONE": "Mars/Olympus"}},
		{name: "bad bool", env: map[string]string{"JWT_SECRET_KEY": "s", "ATTENDANCE_STORE": "memory", "STATUS_CORRECTION_FORCES_FULL_DAY": "maybe"}},
		{name: "memory in production", env: map[string]string{"JWT_SECRET_KEY": "s", "ATTENDANCE_STORE": "memory", "APP_ENV": "production"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET_KEY", "")
			t.Setenv("MONGO_URI", "")
			t.Setenv("APP_ENV", "test")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
