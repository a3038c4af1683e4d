package mongo

import (
	"bassinifit/coach-app/internal/domain"
	"bassinifit/coach-app/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const checkInCollectionName = "checkins"

type mongoCheckInRepository struct {
	collection *mongo.Collection
}

// NewMongoCheckInRepository creates a new CheckIn repository.
func NewMongoCheckInRepository(db *mongo.Database) repository.CheckInRepository {
	return &mongoCheckInRepository{
		collection: db.Collection(checkInCollectionName),
	}
}

// Upsert writes the check-in keyed by (studentId, entryId, date). Repeated calls overwrite Done.
func (r *mongoCheckInRepository) Upsert(ctx context.Context, checkIn *domain.CheckIn) (*domain.CheckIn, error) {
	if checkIn.StudentID == primitive.NilObjectID || checkIn.EntryID == primitive.NilObjectID || checkIn.Date == "" {
		return nil, errors.New("check-in requires studentId, entryId and date")
	}
	now := time.Now().UTC()

	// 1. Match on the natural key, never on _id
	filter := bson.M{
		"studentId": checkIn.StudentID,
		"entryId":   checkIn.EntryID,
		"date":      checkIn.Date,
	}
	// 2. Only Done changes on repeat; identity and createdAt are set once
	update := bson.M{
		"$set": bson.M{"done": checkIn.Done, "updatedAt": now},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID(),
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	// 3. Return the stored row so callers see its _id
	var stored domain.CheckIn
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return nil, mapWriteError(err)
	}
	return &stored, nil
}

// ListByStudent returns the student's check-ins whose date falls in dates.
func (r *mongoCheckInRepository) ListByStudent(ctx context.Context, studentID primitive.ObjectID, dates repository.DateRange) ([]domain.CheckIn, error) {
	cursor, err := r.collection.Find(ctx, studentDateFilter(studentID, dates),
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	// Decode; decodeAll closes the cursor
	checkIns := []domain.CheckIn{}
	if err := decodeAll(ctx, cursor, &checkIns); err != nil {
		return nil, err
	}
	return checkIns, nil
}

// DeleteByStudent removes the student's check-ins whose date falls in dates.
func (r *mongoCheckInRepository) DeleteByStudent(ctx context.Context, studentID primitive.ObjectID, dates repository.DateRange) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, studentDateFilter(studentID, dates))
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// DeleteByEntry removes every day's check-in of one entry.
func (r *mongoCheckInRepository) DeleteByEntry(ctx context.Context, entryID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"entryId": entryID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func studentDateFilter(studentID primitive.ObjectID, dates repository.DateRange) bson.M {
	filter := bson.M{"studentId": studentID}
	// Dates are YYYY-MM-DD strings, so range bounds compare lexically
	dateFilter := bson.M{}
	if dates.From != "" {
		dateFilter["$gte"] = dates.From
	}
	if dates.To != "" {
		dateFilter["$lte"] = dates.To
	}
	if len(dateFilter) > 0 {
		filter["date"] = dateFilter
	}
	return filter
}

// EnsureCheckInIndexes creates the unique key the upsert relies on.
func EnsureCheckInIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "entryId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "date", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "entryId", Value: 1}},
		},
	})
}
