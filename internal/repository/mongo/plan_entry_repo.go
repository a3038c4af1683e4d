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

const planEntryCollectionName = "plan_entries"

type mongoPlanEntryRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanEntryRepository creates a new PlanEntry repository.
func NewMongoPlanEntryRepository(db *mongo.Database) repository.PlanEntryRepository {
	return &mongoPlanEntryRepository{
		collection: db.Collection(planEntryCollectionName),
	}
}

func (r *mongoPlanEntryRepository) Create(ctx context.Context, entry *domain.PlanEntry) (primitive.ObjectID, error) {
	if entry.PlanID == primitive.NilObjectID || entry.ExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("entry requires planId and exerciseId")
	}
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now().UTC()
	entry.Category = entry.Category.OrDefault()

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return primitive.NilObjectID, err
	}
	return entry.ID, nil
}

func (r *mongoPlanEntryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanEntry, error) {
	var entry domain.PlanEntry
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// ListByPlan returns a plan's entries sorted by position.
func (r *mongoPlanEntryRepository) ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanEntry, error) {
	return r.find(ctx, bson.M{"planId": planID})
}

// ListByPlans returns the entries of several plans, sorted by plan then position.
func (r *mongoPlanEntryRepository) ListByPlans(ctx context.Context, planIDs []primitive.ObjectID) ([]domain.PlanEntry, error) {
	if len(planIDs) == 0 {
		return []domain.PlanEntry{}, nil
	}
	return r.find(ctx, bson.M{"planId": bson.M{"$in": planIDs}})
}

// entryOrder sorts by plan then position. Equal positions fall back to insertion order.
var entryOrder = bson.D{
	{Key: "planId", Value: 1},
	{Key: "position", Value: 1},
	{Key: "createdAt", Value: 1},
	{Key: "_id", Value: 1},
}

func (r *mongoPlanEntryRepository) find(ctx context.Context, filter bson.M) ([]domain.PlanEntry, error) {
	// 1. Query sorted
	findOptions := options.Find().SetSort(entryOrder)
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}

	// 2. Decode, the helper closes the cursor
	entries := []domain.PlanEntry{}
	if err := decodeAll(ctx, cursor, &entries); err != nil {
		return nil, err
	}

	// 3. Rows written before categories existed read as plain exercises
	for i := range entries {
		entries[i].Category = entries[i].Category.OrDefault()
	}
	return entries, nil
}

func (r *mongoPlanEntryRepository) CountByPlan(ctx context.Context, planID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"planId": planID})
}

// Update overwrites the prescription. PlanID and CreatedAt never change.
func (r *mongoPlanEntryRepository) Update(ctx context.Context, entry *domain.PlanEntry) error {
	if entry.ID == primitive.NilObjectID {
		return errors.New("entry ID is required for update")
	}
	update := bson.M{
		"$set": bson.M{
			"exerciseId": entry.ExerciseID,
			"sets":       entry.Sets,
			"reps":       entry.Reps,
			"rest":       entry.Rest,
			"position":   entry.Position,
			"category":   entry.Category.OrDefault(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": entry.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes one entry. Remaining positions are not renumbered.
func (r *mongoPlanEntryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func EnsurePlanEntryIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "planId", Value: 1}, {Key: "position", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "exerciseId", Value: 1}},
		},
	})
}
