package repository

import (
	"bassinifit/coach-app/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// DateRange bounds check-in dates, inclusive on both ends. Empty bounds are open.
type DateRange struct {
	From string
	To   string
}

// Contains reports whether date (YYYY-MM-DD) falls within the range.
func (r DateRange) Contains(date string) bool {
	if r.From != "" && date < r.From {
		return false
	}
	if r.To != "" && date > r.To {
		return false
	}
	return true
}

// UserRepository stores login accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProfileRepository stores student profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.StudentProfile) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.StudentProfile, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.StudentProfile, error)
	List(ctx context.Context) ([]domain.StudentProfile, error)
	Update(ctx context.Context, profile *domain.StudentProfile) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ExerciseRepository stores the exercise library. Names are unique (ErrConflict).
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error)
	List(ctx context.Context) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MuscleGroupRepository stores the muscle group vocabulary. Names are unique (ErrConflict).
type MuscleGroupRepository interface {
	Create(ctx context.Context, group *domain.MuscleGroup) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MuscleGroup, error)
	List(ctx context.Context) ([]domain.MuscleGroup, error)
	Update(ctx context.Context, group *domain.MuscleGroup) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PlanRepository stores plans.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	GetByStudentAndName(ctx context.Context, studentID primitive.ObjectID, name string) (*domain.Plan, error)
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.Plan, error)
	Update(ctx context.Context, plan *domain.Plan) error
	SetDisplayOrder(ctx context.Context, id primitive.ObjectID, order int) error
	// DeleteCascade removes the plan, its entries and their check-ins as one unit.
	DeleteCascade(ctx context.Context, id primitive.ObjectID) error
}

// PlanEntryRepository stores plan entries.
type PlanEntryRepository interface {
	Create(ctx context.Context, entry *domain.PlanEntry) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanEntry, error)
	ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanEntry, error) // ordered by position
	ListByPlans(ctx context.Context, planIDs []primitive.ObjectID) ([]domain.PlanEntry, error)
	CountByPlan(ctx context.Context, planID primitive.ObjectID) (int64, error)
	Update(ctx context.Context, entry *domain.PlanEntry) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CheckInRepository stores daily completion records.
type CheckInRepository interface {
	// Upsert writes the record keyed by (StudentID, EntryID, Date) and returns the stored row.
	Upsert(ctx context.Context, checkIn *domain.CheckIn) (*domain.CheckIn, error)
	ListByStudent(ctx context.Context, studentID primitive.ObjectID, dates DateRange) ([]domain.CheckIn, error)
	DeleteByStudent(ctx context.Context, studentID primitive.ObjectID, dates DateRange) (int64, error)
	DeleteByEntry(ctx context.Context, entryID primitive.ObjectID) (int64, error)
}

// PhotoRepository stores progress-photo metadata.
type PhotoRepository interface {
	Create(ctx context.Context, photo *domain.Photo) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Photo, error)
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.Photo, error) // newest first
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// StudentCleaner removes every row that belongs to a student except the profile and account.
type StudentCleaner interface {
	DeleteStudentData(ctx context.Context, studentID primitive.ObjectID) error
}

// Store groups every repository behind one value, the way main wires them.
type Store struct {
	Users        UserRepository
	Profiles     ProfileRepository
	Exercises    ExerciseRepository
	MuscleGroups MuscleGroupRepository
	Plans        PlanRepository
	Entries      PlanEntryRepository
	CheckIns     CheckInRepository
	Photos       PhotoRepository
	Cleaner      StudentCleaner
}
