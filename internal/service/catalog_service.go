package service

import (
	"context"
	"errors"
	"strings"

	"bassinifit/coach-app/internal/domain"
	"bassinifit/coach-app/internal/logger"
	"bassinifit/coach-app/internal/planning"
	"bassinifit/coach-app/internal/repository"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrMuscleGroupExists = errors.New("a muscle group with this name already exists")
	ErrExerciseExists    = errors.New("an exercise with this name already exists")
)

// ExerciseInput carries the editable fields of an exercise.
type ExerciseInput struct {
	Name        string `json:"name"`
	MuscleGroup string `json:"muscleGroup"`
	Category    string `json:"category"`
	VideoURL    string `json:"videoUrl"`
	Notes       string `json:"notes"`
}

type CatalogService interface {
	CreateMuscleGroup(ctx context.Context, name string) (*domain.MuscleGroup, error)
	ListMuscleGroups(ctx context.Context) ([]domain.MuscleGroup, error)
	RenameMuscleGroup(ctx context.Context, id primitive.ObjectID, name string) (*domain.MuscleGroup, error)
	DeleteMuscleGroup(ctx context.Context, id primitive.ObjectID) error

	CreateExercise(ctx context.Context, in ExerciseInput) (*domain.Exercise, error)
	GetExercise(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	ListExercises(ctx context.Context) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, id primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	// DeleteExercise leaves plan entries that reference the exercise in place.
	DeleteExercise(ctx context.Context, id primitive.ObjectID) error
}

type catalogService struct {
	exerciseRepo    repository.ExerciseRepository
	muscleGroupRepo repository.MuscleGroupRepository
}

func NewCatalogService(exerciseRepo repository.ExerciseRepository, muscleGroupRepo repository.MuscleGroupRepository) CatalogService {
	return &catalogService{
		exerciseRepo:    exerciseRepo,
		muscleGroupRepo: muscleGroupRepo,
	}
}

// === Muscle groups ===

func (s *catalogService) CreateMuscleGroup(ctx context.Context, name string) (*domain.MuscleGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidFields("invalid muscle group", map[string]string{"name": "required"})
	}
	group := &domain.MuscleGroup{Name: name}
	if _, err := s.muscleGroupRepo.Create(ctx, group); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrMuscleGroupExists
		}
		logger.WithFields(logrus.Fields{"action": "create muscle group", "name": name}).WithError(err).Error("Failed to create muscle group")
		return nil, err
	}
	return group, nil
}

func (s *catalogService) ListMuscleGroups(ctx context.Context) ([]domain.MuscleGroup, error) {
	return s.muscleGroupRepo.List(ctx)
}

func (s *catalogService) RenameMuscleGroup(ctx context.Context, id primitive.ObjectID, name string) (*domain.MuscleGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidFields("invalid muscle group", map[string]string{"name": "required"})
	}
	group, err := s.muscleGroupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrMuscleGroupNotFound)
	}
	group.Name = name
	if err := s.muscleGroupRepo.Update(ctx, group); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrMuscleGroupExists
		}
		return nil, notFound(err, ErrMuscleGroupNotFound)
	}
	return group, nil
}

func (s *catalogService) DeleteMuscleGroup(ctx context.Context, id primitive.ObjectID) error {
	return notFound(s.muscleGroupRepo.Delete(ctx, id), ErrMuscleGroupNotFound)
}

// === Exercises ===

func (s *catalogService) CreateExercise(ctx context.Context, in ExerciseInput) (*domain.Exercise, error) {
	in = trimExercise(in)
	if err := s.validateExercise(ctx, primitive.NilObjectID, in); err != nil {
		return nil, err
	}
	exercise := &domain.Exercise{
		Name:        in.Name,
		MuscleGroup: in.MuscleGroup,
		Category:    in.Category,
		VideoURL:    in.VideoURL,
		Notes:       in.Notes,
	}
	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrExerciseExists
		}
		logger.WithFields(logrus.Fields{"action": "create exercise", "name": in.Name}).WithError(err).Error("Failed to create exercise")
		return nil, err
	}
	return s.exerciseRepo.GetByID(ctx, exerciseID)
}

func (s *catalogService) GetExercise(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrExerciseNotFound)
	}
	return exercise, nil
}

func (s *catalogService) ListExercises(ctx context.Context) ([]domain.Exercise, error) {
	return s.exerciseRepo.List(ctx)
}

func (s *catalogService) UpdateExercise(ctx context.Context, id primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	in = trimExercise(in)
	existing, err := s.GetExercise(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateExercise(ctx, id, in); err != nil {
		return nil, err
	}
	existing.Name = in.Name
	existing.MuscleGroup = in.MuscleGroup
	existing.Category = in.Category
	existing.VideoURL = in.VideoURL
	existing.Notes = in.Notes
	if err := s.exerciseRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrExerciseExists
		}
		return nil, notFound(err, ErrExerciseNotFound)
	}
	return s.exerciseRepo.GetByID(ctx, id)
}

func (s *catalogService) DeleteExercise(ctx context.Context, id primitive.ObjectID) error {
	return notFound(s.exerciseRepo.Delete(ctx, id), ErrExerciseNotFound)
}

func trimExercise(in ExerciseInput) ExerciseInput {
	in.Name = strings.TrimSpace(in.Name)
	in.MuscleGroup = strings.Join(planning.SplitMuscleGroups(in.MuscleGroup), ", ")
	in.Category = strings.TrimSpace(in.Category)
	in.VideoURL = strings.TrimSpace(in.VideoURL)
	return in
}

// validateExercise checks required fields, that every named group is in the vocabulary and that no
// other exercise has the same name ignoring case. The store's unique index backs up the name scan.
func (s *catalogService) validateExercise(ctx context.Context, self primitive.ObjectID, in ExerciseInput) error {
	fields := map[string]string{}
	if in.Name == "" {
		fields["name"] = "required"
	}
	if in.MuscleGroup == "" {
		fields["muscleGroup"] = "required"
	}
	if len(fields) > 0 {
		return invalidFields("invalid exercise", fields)
	}

	groups, err := s.muscleGroupRepo.List(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(groups))
	for _, g := range groups {
		known[g.Name] = true
	}
	for _, g := range planning.SplitMuscleGroups(in.MuscleGroup) {
		if !known[g] {
			return invalidFields("invalid exercise", map[string]string{"muscleGroup": "unknown muscle group " + g})
		}
	}

	exercises, err := s.exerciseRepo.List(ctx)
	if err != nil {
		return err
	}
	for _, e := range exercises {
		if e.ID != self && strings.EqualFold(e.Name, in.Name) {
			return ErrExerciseExists
		}
	}
	return nil
}
