package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Reserved plan names. A plan carrying one of them is a special block, not a lettered plan.
const (
	WarmupPlanName = "AQUECIMENTO"
	CardioPlanName = "CARDIO"
)

// PlanKind tells normal lettered plans apart from the warm-up and cardio blocks.
type PlanKind string

const (
	PlanKindNormal PlanKind = "normal"
	PlanKindWarmup PlanKind = "warmup"
	PlanKindCardio PlanKind = "cardio"
)

func (k PlanKind) Valid() bool {
	return k == PlanKindNormal || k == PlanKindWarmup || k == PlanKindCardio
}

// IsSpecial reports whether the kind is a warm-up or cardio block.
func (k PlanKind) IsSpecial() bool {
	return k == PlanKindWarmup || k == PlanKindCardio
}

var nameUpper = cases.Upper(language.BrazilianPortuguese)

// PlanKindFromName maps the reserved names to their kind. Matching ignores case and surrounding spaces.
func PlanKindFromName(name string) PlanKind {
	switch nameUpper.String(strings.TrimSpace(name)) {
	case WarmupPlanName:
		return PlanKindWarmup
	case CardioPlanName:
		return PlanKindCardio
	default:
		return PlanKindNormal
	}
}

// DayType is the kind of training day a plan represents.
type DayType string

const (
	DayTypeWorkout      DayType = "treino"
	DayTypeRest         DayType = "descanso"
	DayTypeLightWorkout DayType = "treino_leve"
)

func (d DayType) Valid() bool {
	return d == DayTypeWorkout || d == DayTypeRest || d == DayTypeLightWorkout
}

// Plan ("treino") is a named set of exercise prescriptions for one student.
type Plan struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID primitive.ObjectID `bson:"studentId" json:"studentId"`
	Name      string             `bson:"name" json:"name"` // unique per student
	Kind      PlanKind           `bson:"kind" json:"kind"`
	DayType   DayType            `bson:"dayType" json:"dayType"`
	DayOfWeek string             `bson:"dayOfWeek,omitempty" json:"dayOfWeek,omitempty"` // segunda..domingo, informational
	// MuscleGroups is the stored summary. Normal plans get it derived from their entries on read;
	// the stored value is the fallback when nothing can be derived.
	MuscleGroups string `bson:"muscleGroups,omitempty" json:"muscleGroups,omitempty"`
	Notes        string `bson:"notes,omitempty" json:"notes,omitempty"`
	// DisplayOrder ranks normal plans. Nil means "not ranked yet".
	DisplayOrder *int      `bson:"displayOrder,omitempty" json:"displayOrder,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsRestDay reports whether the plan is a rest day. Clients show no progress for it.
func (p *Plan) IsRestDay() bool {
	return p.DayType == DayTypeRest
}

// EntryCategory tags a prescription inside a plan.
type EntryCategory string

const (
	EntryWarmup   EntryCategory = "warmup"
	EntryExercise EntryCategory = "exercise"
	EntryCardio   EntryCategory = "cardio"
)

func (c EntryCategory) Valid() bool {
	return c == EntryWarmup || c == EntryExercise || c == EntryCardio
}

// OrDefault returns the category, or EntryExercise when it is unset.
func (c EntryCategory) OrDefault() EntryCategory {
	if c == "" {
		return EntryExercise
	}
	return c
}

// PlanEntry ("treino_exercicio") is one exercise prescription within a plan.
type PlanEntry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID     primitive.ObjectID `bson:"planId" json:"planId"`
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Sets       string             `bson:"sets" json:"sets"`         // "4"
	Reps       string             `bson:"reps" json:"reps"`         // "10-12"
	Rest       string             `bson:"rest" json:"rest"`         // "60s"
	Position   int                `bson:"position" json:"position"` // gaps are allowed after deletes
	Category   EntryCategory      `bson:"category" json:"category"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
