package service

import (
	"context"
	"errors"

	"bassinifit/coach-app/internal/domain"
	"bassinifit/coach-app/internal/logger"
	"bassinifit/coach-app/internal/metabolic"
	"bassinifit/coach-app/internal/repository"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MetabolicService separates calculating from saving, so a trainer can try values without
// touching the student.
type MetabolicService interface {
	Calculate(in metabolic.Input) (*metabolic.Result, error)
	// SaveToStudent recalculates from in and stores the biometrics together with TMB and GET.
	SaveToStudent(ctx context.Context, studentID primitive.ObjectID, in metabolic.Input) (*domain.StudentProfile, error)
}

type metabolicService struct {
	profileRepo repository.ProfileRepository
}

func NewMetabolicService(profileRepo repository.ProfileRepository) MetabolicService {
	return &metabolicService{profileRepo: profileRepo}
}

func (s *metabolicService) Calculate(in metabolic.Input) (*metabolic.Result, error) {
	res, err := metabolic.Calculate(in)
	if err != nil {
		var inputErr *metabolic.InputError
		if errors.As(err, &inputErr) {
			return nil, invalidFields("invalid biometrics", inputErr.Fields)
		}
		return nil, err
	}
	return &res, nil
}

func (s *metabolicService) SaveToStudent(ctx context.Context, studentID primitive.ObjectID, in metabolic.Input) (*domain.StudentProfile, error) {
	res, err := s.Calculate(in)
	if err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, notFound(err, ErrStudentNotFound)
	}

	b := res.Biometrics
	weight := b.WeightKG.InexactFloat64()
	height := b.HeightCM.InexactFloat64()
	age := b.Age
	tmb, get := res.TMB, res.GET
	profile.WeightKG = &weight
	profile.HeightCM = &height
	profile.Age = &age
	profile.Sex = b.Sex
	profile.ActivityLevel = b.ActivityLevel
	profile.TMB = &tmb
	profile.GET = &get

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		logger.WithFields(logrus.Fields{"action": "save metabolic data", "studentId": studentID.Hex()}).
			WithError(err).Error("Failed to save metabolic data")
		return nil, notFound(err, ErrStudentNotFound)
	}
	return profile, nil
}
