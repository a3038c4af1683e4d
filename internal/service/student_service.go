package service

import (
	"context"
	"errors"
	"strings"

	"bassinifit/coach-app/internal/domain"
	"bassinifit/coach-app/internal/logger"
	"bassinifit/coach-app/internal/repository"
	"bassinifit/coach-app/internal/storage"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StudentInput creates a student account and profile in one step.
type StudentInput struct {
	Name             string               `json:"name"`
	Email            string               `json:"email"`
	Password         string               `json:"password"`
	Sex              domain.Sex           `json:"sex"`
	Age              *int                 `json:"age"`
	HeightCM         *float64             `json:"heightCm"`
	WeightKG         *float64             `json:"weightKg"`
	ActivityLevel    domain.ActivityLevel `json:"activityLevel"`
	TrainingSequence string               `json:"trainingSequence"`
}

// StudentUpdate is a partial update; nil fields are left as they are.
type StudentUpdate struct {
	Name             *string               `json:"name"`
	Sex              *domain.Sex           `json:"sex"`
	Age              *int                  `json:"age"`
	HeightCM         *float64              `json:"heightCm"`
	WeightKG         *float64              `json:"weightKg"`
	ActivityLevel    *domain.ActivityLevel `json:"activityLevel"`
	TrainingSequence *string               `json:"trainingSequence"`
	Active           *bool                 `json:"active"`
}

type StudentService interface {
	CreateStudent(ctx context.Context, in StudentInput) (*domain.StudentProfile, error)
	ListStudents(ctx context.Context) ([]domain.StudentProfile, error)
	GetStudent(ctx context.Context, studentID primitive.ObjectID) (*domain.StudentProfile, error)
	GetMyProfile(ctx context.Context, userID primitive.ObjectID) (*domain.StudentProfile, error)
	UpdateStudent(ctx context.Context, studentID primitive.ObjectID, upd StudentUpdate) (*domain.StudentProfile, error)
	// DeleteStudent removes the photos, check-ins, plans, profile and account, in that order.
	DeleteStudent(ctx context.Context, studentID primitive.ObjectID) error
}

type studentService struct {
	auth        AuthService
	profileRepo repository.ProfileRepository
	photoRepo   repository.PhotoRepository
	cleaner     repository.StudentCleaner
	fileStorage storage.FileStorage // nil when photo storage is not configured
}

func NewStudentService(auth AuthService, store repository.Store, fileStorage storage.FileStorage) StudentService {
	return &studentService{
		auth:        auth,
		profileRepo: store.Profiles,
		photoRepo:   store.Photos,
		cleaner:     store.Cleaner,
		fileStorage: fileStorage,
	}
}

func (s *studentService) CreateStudent(ctx context.Context, in StudentInput) (*domain.StudentProfile, error) {
	profile := &domain.StudentProfile{
		Name:             strings.TrimSpace(in.Name),
		Sex:              in.Sex,
		Age:              in.Age,
		HeightCM:         in.HeightCM,
		WeightKG:         in.WeightKG,
		ActivityLevel:    in.ActivityLevel,
		TrainingSequence: in.TrainingSequence,
		Active:           true,
	}
	if err := validateProfile(profile); err != nil {
		return nil, err
	}

	// 1. Account first; its email is the unique key.
	user, err := s.auth.Register(ctx, in.Name, in.Email, in.Password, domain.RoleStudent)
	if err != nil {
		return nil, err
	}

	// 2. Profile linked to the account. Undo the account if this fails.
	profile.UserID = user.ID
	if _, err := s.profileRepo.Create(ctx, profile); err != nil {
		if delErr := s.auth.DeleteUser(ctx, user.ID); delErr != nil {
			logger.WithFields(logrus.Fields{"userId": user.ID.Hex()}).WithError(delErr).
				Error("Failed to remove account after profile creation failed")
		}
		return nil, err
	}

	logger.WithFields(logrus.Fields{"studentId": profile.ID.Hex(), "userId": user.ID.Hex()}).Info("Student created")
	return profile, nil
}

func (s *studentService) ListStudents(ctx context.Context) ([]domain.StudentProfile, error) {
	return s.profileRepo.List(ctx)
}

func (s *studentService) GetStudent(ctx context.Context, studentID primitive.ObjectID) (*domain.StudentProfile, error) {
	profile, err := s.profileRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, notFound(err, ErrStudentNotFound)
	}
	return profile, nil
}

func (s *studentService) GetMyProfile(ctx context.Context, userID primitive.ObjectID) (*domain.StudentProfile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrStudentNotFound)
	}
	return profile, nil
}

func (s *studentService) UpdateStudent(ctx context.Context, studentID primitive.ObjectID, upd StudentUpdate) (*domain.StudentProfile, error) {
	profile, err := s.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		profile.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Sex != nil {
		profile.Sex = *upd.Sex
	}
	if upd.Age != nil {
		profile.Age = upd.Age
	}
	if upd.HeightCM != nil {
		profile.HeightCM = upd.HeightCM
	}
	if upd.WeightKG != nil {
		profile.WeightKG = upd.WeightKG
	}
	if upd.ActivityLevel != nil {
		profile.ActivityLevel = *upd.ActivityLevel
	}
	if upd.TrainingSequence != nil {
		profile.TrainingSequence = *upd.TrainingSequence
	}
	if upd.Active != nil {
		profile.Active = *upd.Active
	}
	if err := validateProfile(profile); err != nil {
		return nil, err
	}
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, notFound(err, ErrStudentNotFound)
	}
	return profile, nil
}

func (s *studentService) DeleteStudent(ctx context.Context, studentID primitive.ObjectID) error {
	profile, err := s.GetStudent(ctx, studentID)
	if err != nil {
		return err
	}
	log := logger.WithFields(logrus.Fields{"studentId": studentID.Hex(), "action": "delete student"})

	// 1. Stored photo files. A missing object is not worth aborting the delete for.
	if s.fileStorage != nil {
		photos, err := s.photoRepo.ListByStudent(ctx, studentID)
		if err != nil {
			return err
		}
		for _, p := range photos {
			if err := s.fileStorage.DeleteObject(ctx, p.ObjectKey); err != nil {
				log.WithError(err).Warnf("Could not delete photo object %s", p.ObjectKey)
			}
		}
	}

	// 2. Rows: check-ins, photos, plans with their entries.
	if err := s.cleaner.DeleteStudentData(ctx, studentID); err != nil {
		log.WithError(err).Error("Failed to delete student data")
		return err
	}

	// 3. Profile and account.
	if err := s.profileRepo.Delete(ctx, studentID); err != nil {
		return notFound(err, ErrStudentNotFound)
	}
	if err := s.auth.DeleteUser(ctx, profile.UserID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.WithError(err).Error("Profile deleted but account removal failed")
		return err
	}

	log.Info("Student deleted")
	return nil
}

func validateProfile(p *domain.StudentProfile) error {
	fields := map[string]string{}
	if p.Name == "" {
		fields["name"] = "required"
	}
	if p.Sex != "" && !p.Sex.Valid() {
		fields["sex"] = "must be masculino or feminino"
	}
	if p.ActivityLevel != "" && !p.ActivityLevel.Valid() {
		fields["activityLevel"] = "unknown activity level"
	}
	if p.Age != nil && *p.Age < 0 {
		fields["age"] = "cannot be negative"
	}
	if p.HeightCM != nil && *p.HeightCM <= 0 {
		fields["heightCm"] = "must be greater than zero"
	}
	if p.WeightKG != nil && *p.WeightKG <= 0 {
		fields["weightKg"] = "must be greater than zero"
	}
	if len(fields) > 0 {
		return invalidFields("invalid student profile", fields)
	}
	return nil
}
