package mongo

import (
	"bassinifit/coach-app/internal/logger"
	"bassinifit/coach-app/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary so an unreachable server fails at startup, not on the first request.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}
	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// NewStore builds every repository on top of db.
func NewStore(db *mongo.Database) repository.Store {
	return repository.Store{
		Users:        NewMongoUserRepository(db),
		Profiles:     NewMongoProfileRepository(db),
		Exercises:    NewMongoExerciseRepository(db),
		MuscleGroups: NewMongoMuscleGroupRepository(db),
		Plans:        NewMongoPlanRepository(db),
		Entries:      NewMongoPlanEntryRepository(db),
		CheckIns:     NewMongoCheckInRepository(db),
		Photos:       NewMongoPhotoRepository(db),
		Cleaner:      NewStudentCleaner(db),
	}
}

// EnsureIndexes creates the indexes of every collection. Unique indexes back the conflict errors.
func EnsureIndexes(ctx context.Context, db *mongo.Database) {
	EnsureUserIndexes(ctx, db.Collection(userCollectionName))
	EnsureProfileIndexes(ctx, db.Collection(profileCollectionName))
	EnsureExerciseIndexes(ctx, db.Collection(exerciseCollectionName))
	EnsureMuscleGroupIndexes(ctx, db.Collection(muscleGroupCollectionName))
	EnsurePlanIndexes(ctx, db.Collection(planCollectionName))
	EnsurePlanEntryIndexes(ctx, db.Collection(planEntryCollectionName))
	EnsureCheckInIndexes(ctx, db.Collection(checkInCollectionName))
	EnsurePhotoIndexes(ctx, db.Collection(photoCollectionName))
}

func createIndexes(ctx context.Context, collection *mongo.Collection, indexes []mongo.IndexModel) {
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warnf("Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}

// mapWriteError turns driver duplicate-key errors into repository.ErrConflict.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrConflict
	}
	return err
}

// illegalOperation is returned by standalone servers, which cannot run multi-document transactions.
const illegalOperation = 20

func transactionsUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == illegalOperation
	}
	return false
}

// withTransaction runs fn inside a transaction. Standalone servers (local development) have no
// transactions, so there fn runs on its own and each step commits separately.
func withTransaction(ctx context.Context, db *mongo.Database, fn func(ctx context.Context) error) error {
	session, err := db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && transactionsUnsupported(err) {
		logger.Warnf("MongoDB transactions unavailable, running steps without a transaction: %v", err)
		return fn(ctx)
	}
	return err
}

// decodeAll drains a cursor into out, closing it.
func decodeAll(ctx context.Context, cursor *mongo.Cursor, out interface{}) error {
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, out); err != nil {
		return err
	}
	return cursor.Err()
}
