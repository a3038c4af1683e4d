package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Photo is a progress picture uploaded by a student after a workout.
// The file lives in object storage; this is its metadata.
type Photo struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	StudentID   primitive.ObjectID  `bson:"studentId" json:"studentId"`
	PlanID      *primitive.ObjectID `bson:"planId,omitempty" json:"planId,omitempty"`
	ObjectKey   string              `bson:"objectKey" json:"-"`
	URL         string              `bson:"url" json:"url"`
	ContentType string              `bson:"contentType" json:"contentType"`
	PhotoDate   string              `bson:"photoDate" json:"photoDate"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
}
