package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs only when TEST_MONGO_URI points at a disposable server.
func setupMongo(t *testing.T) *database.MongoDB {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.NewMongoDB(ctx, uri, "attendance_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Database.Drop(context.Background())
		_ = db.Close(context.Background())
	})
	return db
}

func TestAttendanceRepository_SaveAndVersioning(t *testing.T) {
	db := setupMongo(t)
	repo := NewAttendanceRepository(db)
	ctx := context.Background()

	got, err := repo.GetByEmployeeID(ctx, "emp-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	agg := attendance.NewAggregate("emp-1", "Asha Rao")
	agg.AddDay(attendance.NewDayRecord("2025-03-11"))
	agg.AddDay(attendance.NewDayRecord("2025-03-10"))
	require.NoError(t, repo.Save(ctx, agg))
	assert.Equal(t, int64(1), agg.Version)

	stale := agg.Clone()
	require.NoError(t, repo.Save(ctx, agg))
	assert.Equal(t, int64(2), agg.Version)

	err = repo.Save(ctx, stale)
	assert.ErrorIs(t, err, attendance.ErrConcurrentModification)

	dup := attendance.NewAggregate("emp-1", "Asha Rao")
	assert.ErrorIs(t, repo.Save(ctx, dup), attendance.ErrConcurrentModification)

	loaded, err := repo.GetByEmployeeID(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, int64(2), loaded.Version)
	require.Len(t, loaded.Days, 2)
	assert.Equal(t, "2025-03-10", loaded.Days[0].Date)

	days, err := repo.ListDays(ctx, "emp-1", "2025-03-11", "2025-03-31")
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "2025-03-11", days[0].Date)
}
