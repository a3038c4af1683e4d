package mongo

import (
	"bassinifit/coach-app/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type studentCleaner struct {
	db *mongo.Database
}

// NewStudentCleaner removes a student's plans, entries, check-ins and photo records in one transaction.
func NewStudentCleaner(db *mongo.Database) repository.StudentCleaner {
	return &studentCleaner{db: db}
}

func (s *studentCleaner) DeleteStudentData(ctx context.Context, studentID primitive.ObjectID) error {
	plans := s.db.Collection(planCollectionName)
	entries := s.db.Collection(planEntryCollectionName)

	return withTransaction(ctx, s.db, func(ctx context.Context) error {
		// 1. Rows keyed by student
		if _, err := s.db.Collection(checkInCollectionName).DeleteMany(ctx, bson.M{"studentId": studentID}); err != nil {
			return err
		}
		if _, err := s.db.Collection(photoCollectionName).DeleteMany(ctx, bson.M{"studentId": studentID}); err != nil {
			return err
		}

		// 2. Collect plan IDs, entries only know their plan
		cursor, err := plans.Find(ctx, bson.M{"studentId": studentID})
		if err != nil {
			return err
		}
		var rows []struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := decodeAll(ctx, cursor, &rows); err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		planIDs := make([]primitive.ObjectID, len(rows))
		for i, row := range rows {
			planIDs[i] = row.ID
		}
		// 3. Entries, then the plans themselves
		if _, err := entries.DeleteMany(ctx, bson.M{"planId": bson.M{"$in": planIDs}}); err != nil {
			return err
		}
		_, err = plans.DeleteMany(ctx, bson.M{"studentId": studentID})
		return err
	})
}
