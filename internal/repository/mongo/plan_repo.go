// internal/repository/mongo/plan_repo.go
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

const planCollectionName = "plans"

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new Plan repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		db:         db,
		collection: db.Collection(planCollectionName),
	}
}

// Create inserts a new plan. The (studentId, name) unique index turns duplicates into ErrConflict.
func (r *mongoPlanRepository) Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	if plan.StudentID == primitive.NilObjectID || plan.Name == "" {
		return primitive.NilObjectID, errors.New("plan requires studentId and name")
	}
	// Generate ID and timestamps
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, plan); err != nil {
		return primitive.NilObjectID, mapWriteError(err)
	}
	return plan.ID, nil
}

func (r *mongoPlanRepository) findOne(ctx context.Context, filter bson.M) (*domain.Plan, error) {
	var plan domain.Plan
	if err := r.collection.FindOne(ctx, filter).Decode(&plan); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetByID retrieves a single plan by its ID.
func (r *mongoPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoPlanRepository) GetByStudentAndName(ctx context.Context, studentID primitive.ObjectID, name string) (*domain.Plan, error) {
	return r.findOne(ctx, bson.M{"studentId": studentID, "name": name})
}

// ListByStudent returns the student's plans in creation order. Display order is applied by the aggregator.
func (r *mongoPlanRepository) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.Plan, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"studentId": studentID}, findOptions)
	if err != nil {
		return nil, err
	}

	// Decode; decodeAll closes the cursor
	plans := []domain.Plan{}
	if err := decodeAll(ctx, cursor, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// Update overwrites the editable fields. StudentID, DisplayOrder and CreatedAt are left alone.
func (r *mongoPlanRepository) Update(ctx context.Context, plan *domain.Plan) error {
	if plan.ID == primitive.NilObjectID {
		return errors.New("plan ID is required for update")
	}
	plan.UpdatedAt = time.Now().UTC()
	updateDoc := bson.M{
		"$set": bson.M{
			"name":         plan.Name,
			"kind":         plan.Kind,
			"dayType":      plan.DayType,
			"dayOfWeek":    plan.DayOfWeek,
			"muscleGroups": plan.MuscleGroups,
			"notes":        plan.Notes,
			"updatedAt":    plan.UpdatedAt,
		},
	}

	// Renaming onto another plan's name is a conflict
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": plan.ID}, updateDoc)
	if err != nil {
		return mapWriteError(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetDisplayOrder writes only the ordering field.
func (r *mongoPlanRepository) SetDisplayOrder(ctx context.Context, id primitive.ObjectID, order int) error {
	update := bson.M{"$set": bson.M{"displayOrder": order, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteCascade removes check-ins, then entries, then the plan, inside one transaction.
func (r *mongoPlanRepository) DeleteCascade(ctx context.Context, id primitive.ObjectID) error {
	entries := r.db.Collection(planEntryCollectionName)
	checkIns := r.db.Collection(checkInCollectionName)

	return withTransaction(ctx, r.db, func(ctx context.Context) error {
		// 1. Check-ins reference entries, not the plan
		entryIDs, err := entryIDsForPlans(ctx, entries, []primitive.ObjectID{id})
		if err != nil {
			return err
		}
		if len(entryIDs) > 0 {
			if _, err := checkIns.DeleteMany(ctx, bson.M{"entryId": bson.M{"$in": entryIDs}}); err != nil {
				return err
			}
			// 2. Entries
			if _, err := entries.DeleteMany(ctx, bson.M{"planId": id}); err != nil {
				return err
			}
		}
		// 3. The plan; a miss aborts the transaction
		result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if result.DeletedCount == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func entryIDsForPlans(ctx context.Context, entries *mongo.Collection, planIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := entries.Find(ctx, bson.M{"planId": bson.M{"$in": planIDs}},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	// Ensure cursor is closed
	if err := decodeAll(ctx, cursor, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids, nil
}

// EnsurePlanIndexes creates necessary indexes. Call during startup.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			// One plan per name per student; backs upsert-by-name.
			Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "createdAt", Value: 1}},
		},
	})
}
