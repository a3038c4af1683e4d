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

const profileCollectionName = "profiles"

type mongoProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoProfileRepository creates a StudentProfile repository backed by MongoDB.
func NewMongoProfileRepository(db *mongo.Database) repository.ProfileRepository {
	return &mongoProfileRepository{
		collection: db.Collection(profileCollectionName),
	}
}

func (r *mongoProfileRepository) Create(ctx context.Context, profile *domain.StudentProfile) (primitive.ObjectID, error) {
	if profile.UserID == primitive.NilObjectID || profile.Name == "" {
		return primitive.NilObjectID, errors.New("profile requires userId and name")
	}
	// Generate ID and timestamps
	profile.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	// A second profile for the same account hits the unique userId index
	if _, err := r.collection.InsertOne(ctx, profile); err != nil {
		return primitive.NilObjectID, mapWriteError(err)
	}
	return profile.ID, nil
}

func (r *mongoProfileRepository) findOne(ctx context.Context, filter bson.M) (*domain.StudentProfile, error) {
	var profile domain.StudentProfile
	if err := r.collection.FindOne(ctx, filter).Decode(&profile); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *mongoProfileRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.StudentProfile, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoProfileRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.StudentProfile, error) {
	return r.findOne(ctx, bson.M{"userId": userID})
}

// List returns every profile sorted by name.
func (r *mongoProfileRepository) List(ctx context.Context) ([]domain.StudentProfile, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	// Ensure cursor is closed
	profiles := []domain.StudentProfile{}
	if err := decodeAll(ctx, cursor, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// Update overwrites the editable fields. UserID and CreatedAt never change.
func (r *mongoProfileRepository) Update(ctx context.Context, profile *domain.StudentProfile) error {
	if profile.ID == primitive.NilObjectID {
		return errors.New("profile ID is required for update")
	}
	profile.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":             profile.Name,
			"sex":              profile.Sex,
			"age":              profile.Age,
			"heightCm":         profile.HeightCM,
			"weightKg":         profile.WeightKG,
			"activityLevel":    profile.ActivityLevel,
			"tmb":              profile.TMB,
			"get":              profile.GET,
			"trainingSequence": profile.TrainingSequence,
			"active":           profile.Active,
			"updatedAt":        profile.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": profile.ID}, update)
	if err != nil {
		return err
	}
	// Check if the document was found
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoProfileRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureProfileIndexes enforces one profile per account.
func EnsureProfileIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "name", Value: 1}},
		},
	})
}
