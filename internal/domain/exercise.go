// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise is an entry of the admin-managed exercise library.
type Exercise struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
	// MuscleGroup is free text and may hold several comma-separated groups ("Peito, Ombro").
	MuscleGroup string    `bson:"muscleGroup" json:"muscleGroup"`
	Category    string    `bson:"category,omitempty" json:"category,omitempty"`
	VideoURL    string    `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	Notes       string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// MuscleGroup is the controlled vocabulary used when creating exercises. Names are unique.
type MuscleGroup struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
