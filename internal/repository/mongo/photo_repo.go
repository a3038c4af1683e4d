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

const photoCollectionName = "photos"

// mongoPhotoRepository implements repository.PhotoRepository
type mongoPhotoRepository struct {
	collection *mongo.Collection
}

// NewMongoPhotoRepository creates a new Photo repository backed by MongoDB.
func NewMongoPhotoRepository(db *mongo.Database) repository.PhotoRepository {
	return &mongoPhotoRepository{
		collection: db.Collection(photoCollectionName),
	}
}

// Create inserts photo metadata.
func (r *mongoPhotoRepository) Create(ctx context.Context, photo *domain.Photo) (primitive.ObjectID, error) {
	if photo.StudentID == primitive.NilObjectID || photo.ObjectKey == "" {
		return primitive.NilObjectID, errors.New("photo requires studentId and objectKey")
	}
	photo.ID = primitive.NewObjectID()
	photo.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, photo); err != nil {
		return primitive.NilObjectID, err
	}
	return photo.ID, nil
}

// GetByID retrieves one photo record.
func (r *mongoPhotoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Photo, error) {
	var photo domain.Photo
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&photo); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &photo, nil
}

// ListByStudent returns photos newest first, by photo date then upload time.
func (r *mongoPhotoRepository) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.Photo, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "photoDate", Value: -1}, {Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"studentId": studentID}, findOptions)
	if err != nil {
		return nil, err
	}
	// Ensure cursor is closed
	photos := []domain.Photo{}
	if err := decodeAll(ctx, cursor, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

// Delete removes the record only. The stored object is the caller's to delete.
func (r *mongoPhotoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePhotoIndexes creates necessary indexes for the photos collection.
func EnsurePhotoIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "photoDate", Value: -1}, {Key: "createdAt", Value: -1}},
		},
	})
}
