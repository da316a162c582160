package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const attendanceCollection = "attendance"

type attendanceRepository struct {
	coll *mongo.Collection
}

// NewAttendanceRepository stores one document per employee, keyed by employee id.
func NewAttendanceRepository(db *database.MongoDB) attendance.AttendanceRepository {
	return &attendanceRepository{coll: db.Collection(attendanceCollection)}
}

// GetByEmployeeID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*attendance.Aggregate, error) {
	var agg attendance.Aggregate
	err := r.coll.FindOne(ctx, bson.M{"_id": employeeID}).Decode(&agg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find attendance for employee %s: %w", employeeID, err)
	}
	if agg.Days == nil {
		agg.Days = []attendance.DayRecord{}
	}
	return &agg, nil
}

// Save implements attendance.AttendanceRepository.
func (r *attendanceRepository) Save(ctx context.Context, agg *attendance.Aggregate) error {
	doc := *agg
	doc.Version = agg.Version + 1

	if agg.Version == 0 {
		if _, err := r.coll.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return attendance.ErrConcurrentModification
			}
			return fmt.Errorf("insert attendance for employee %s: %w", agg.EmployeeID, err)
		}
		agg.Version = doc.Version
		return nil
	}

	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": agg.EmployeeID, "version": agg.Version}, doc)
	if err != nil {
		return fmt.Errorf("replace attendance for employee %s: %w", agg.EmployeeID, err)
	}
	if result.MatchedCount == 0 {
		return attendance.ErrConcurrentModification
	}

	agg.Version = doc.Version
	return nil
}

// ListDays implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListDays(ctx context.Context, employeeID string, startDate string, endDate string) ([]attendance.DayRecord, error) {
	dateFilter := bson.M{}
	if startDate != "" {
		dateFilter["$gte"] = startDate
	}
	if endDate != "" {
		dateFilter["$lte"] = endDate
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": employeeID}}},
		{{Key: "$unwind", Value: "$days"}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$days"}}},
	}
	if len(dateFilter) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"date": dateFilter}}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.M{"date": 1}}})

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list attendance days for employee %s: %w", employeeID, err)
	}
	defer cursor.Close(ctx)

	days := make([]attendance.DayRecord, 0)
	if err := cursor.All(ctx, &days); err != nil {
		return nil, fmt.Errorf("decode attendance days: %w", err)
	}
	return days, nil
}
