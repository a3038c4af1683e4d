package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Sex string

const (
	SexMale   Sex = "masculino"
	SexFemale Sex = "feminino"
)

func (s Sex) Valid() bool { return s == SexMale || s == SexFemale }

// ActivityLevel is one of the five Harris-Benedict activity bands.
type ActivityLevel string

const (
	ActivitySedentary   ActivityLevel = "sedentario"
	ActivityLight       ActivityLevel = "leve"
	ActivityModerate    ActivityLevel = "moderado"
	ActivityIntense     ActivityLevel = "intenso"
	ActivityVeryIntense ActivityLevel = "muito_intenso"
)

// ActivityLevels lists the levels from least to most active.
var ActivityLevels = []ActivityLevel{
	ActivitySedentary, ActivityLight, ActivityModerate, ActivityIntense, ActivityVeryIntense,
}

func (a ActivityLevel) Valid() bool {
	for _, l := range ActivityLevels {
		if a == l {
			return true
		}
	}
	return false
}

// StudentProfile ("aluno") holds biometrics and coaching notes. One per user account.
type StudentProfile struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID `bson:"userId" json:"userId"`
	Name             string             `bson:"name" json:"name"`
	Sex              Sex                `bson:"sex,omitempty" json:"sex,omitempty"`
	Age              *int               `bson:"age,omitempty" json:"age,omitempty"`
	HeightCM         *float64           `bson:"heightCm,omitempty" json:"heightCm,omitempty"`
	WeightKG         *float64           `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	ActivityLevel    ActivityLevel      `bson:"activityLevel,omitempty" json:"activityLevel,omitempty"`
	TMB              *int64             `bson:"tmb,omitempty" json:"tmb,omitempty"`
	GET              *int64             `bson:"get,omitempty" json:"get,omitempty"`
	TrainingSequence string             `bson:"trainingSequence,omitempty" json:"trainingSequence,omitempty"`
	Active           bool               `bson:"active" json:"active"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}
