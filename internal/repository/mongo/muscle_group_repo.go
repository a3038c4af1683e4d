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

const muscleGroupCollectionName = "muscle_groups"

type mongoMuscleGroupRepository struct {
	collection *mongo.Collection
}

// NewMongoMuscleGroupRepository creates a new MuscleGroup repository.
func NewMongoMuscleGroupRepository(db *mongo.Database) repository.MuscleGroupRepository {
	return &mongoMuscleGroupRepository{
		collection: db.Collection(muscleGroupCollectionName),
	}
}

func (r *mongoMuscleGroupRepository) Create(ctx context.Context, group *domain.MuscleGroup) (primitive.ObjectID, error) {
	if group.Name == "" {
		return primitive.NilObjectID, errors.New("muscle group name is required")
	}
	group.ID = primitive.NewObjectID()
	group.CreatedAt = time.Now().UTC()

	// A duplicate name surfaces as ErrConflict
	if _, err := r.collection.InsertOne(ctx, group); err != nil {
		return primitive.NilObjectID, mapWriteError(err)
	}
	return group.ID, nil
}

func (r *mongoMuscleGroupRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MuscleGroup, error) {
	var group domain.MuscleGroup
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&group); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &group, nil
}

func (r *mongoMuscleGroupRepository) List(ctx context.Context) ([]domain.MuscleGroup, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	// Ensure cursor is closed
	groups := []domain.MuscleGroup{}
	if err := decodeAll(ctx, cursor, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// Update renames the group. Exercises keep their own copy of the name.
func (r *mongoMuscleGroupRepository) Update(ctx context.Context, group *domain.MuscleGroup) error {
	if group.ID == primitive.NilObjectID || group.Name == "" {
		return errors.New("muscle group ID and name are required for update")
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": group.ID}, bson.M{"$set": bson.M{"name": group.Name}})
	if err != nil {
		return mapWriteError(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoMuscleGroupRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureMuscleGroupIndexes makes names unique. Comparison is case-sensitive, as in the vocabulary.
func EnsureMuscleGroupIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
}
