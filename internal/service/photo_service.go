package service

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"bassinifit/coach-app/internal/domain"
	"bassinifit/coach-app/internal/logger"
	"bassinifit/coach-app/internal/repository"
	"bassinifit/coach-app/internal/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrStorageDisabled    = errors.New("photo storage is not configured")
	ErrInvalidContentType = errors.New("only image uploads are accepted")
	ErrUploadURLFailed    = errors.New("failed to generate upload URL")
)

// imageExtensions lists the accepted upload content types and the key extension of each.
var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/heic": "heic",
	"image/gif":  "gif",
}

// UploadTicket is handed to the client, which PUTs the file to UploadURL before ExpiresAt.
type UploadTicket struct {
	UploadURL string    `json:"uploadUrl"`
	ObjectKey string    `json:"objectKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PhotoConfirmation records an uploaded object.
type PhotoConfirmation struct {
	ObjectKey   string              `json:"objectKey"`
	ContentType string              `json:"contentType"`
	PlanID      *primitive.ObjectID `json:"planId"`
	PhotoDate   string              `json:"photoDate"` // YYYY-MM-DD, defaults to today
}

type PhotoService interface {
	RequestUpload(ctx context.Context, studentID primitive.ObjectID, contentType string) (*UploadTicket, error)
	Confirm(ctx context.Context, studentID primitive.ObjectID, in PhotoConfirmation) (*domain.Photo, error)
	List(ctx context.Context, studentID primitive.ObjectID) ([]domain.Photo, error)
	Delete(ctx context.Context, studentID, photoID primitive.ObjectID) error
}

type photoService struct {
	photoRepo   repository.PhotoRepository
	planRepo    repository.PlanRepository
	fileStorage storage.FileStorage
	now         Clock
}

// NewPhotoService accepts a nil fileStorage; uploads then fail with ErrStorageDisabled while
// listing keeps working.
func NewPhotoService(store repository.Store, fileStorage storage.FileStorage, now Clock) PhotoService {
	return &photoService{
		photoRepo:   store.Photos,
		planRepo:    store.Plans,
		fileStorage: fileStorage,
		now:         now.orNow(),
	}
}

func photoPrefix(studentID primitive.ObjectID) string {
	return "photos/" + studentID.Hex() + "/"
}

func (s *photoService) RequestUpload(ctx context.Context, studentID primitive.ObjectID, contentType string) (*UploadTicket, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageDisabled
	}
	// 1. Only raster formats from the allowed list
	contentType, _, _ = strings.Cut(contentType, ";")
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, ErrInvalidContentType
	}

	// 2. Presign a PUT for a fresh key under the student's prefix

	objectKey := photoPrefix(studentID) + uuid.New().String() + "." + ext
	url, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		logger.WithFields(logrus.Fields{"action": "request photo upload", "studentId": studentID.Hex()}).
			WithError(err).Error("Failed to presign upload")
		return nil, ErrUploadURLFailed
	}
	return &UploadTicket{
		UploadURL: url,
		ObjectKey: objectKey,
		ExpiresAt: s.now().Add(storage.DefaultPresignedURLExpiry),
	}, nil
}

func (s *photoService) Confirm(ctx context.Context, studentID primitive.ObjectID, in PhotoConfirmation) (*domain.Photo, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageDisabled
	}
	fields := map[string]string{}
	key := path.Clean(strings.TrimSpace(in.ObjectKey))
	if in.ObjectKey == "" || !strings.HasPrefix(key, photoPrefix(studentID)) {
		fields["objectKey"] = "must be a key issued for this student"
	}
	if in.ContentType != "" && !strings.HasPrefix(strings.ToLower(in.ContentType), "image/") {
		fields["contentType"] = "must be an image type"
	}
	date := in.PhotoDate
	if date == "" {
		date = domain.FormatDate(s.now())
	} else if _, err := domain.ParseDate(date); err != nil {
		fields["photoDate"] = "must be YYYY-MM-DD"
	}
	if len(fields) > 0 {
		return nil, invalidFields("invalid photo", fields)
	}

	if in.PlanID != nil {
		plan, err := s.planRepo.GetByID(ctx, *in.PlanID)
		if err != nil {
			return nil, notFound(err, ErrPlanNotFound)
		}
		if plan.StudentID != studentID {
			return nil, ErrPlanAccessDenied
		}
	}

	photo := &domain.Photo{
		StudentID:   studentID,
		PlanID:      in.PlanID,
		ObjectKey:   key,
		URL:         s.fileStorage.PublicURL(key),
		ContentType: strings.ToLower(in.ContentType),
		PhotoDate:   date,
	}
	if _, err := s.photoRepo.Create(ctx, photo); err != nil {
		logger.WithFields(logrus.Fields{"action": "save photo", "studentId": studentID.Hex()}).
			WithError(err).Error("Failed to save photo")
		return nil, err
	}
	return photo, nil
}

func (s *photoService) List(ctx context.Context, studentID primitive.ObjectID) ([]domain.Photo, error) {
	return s.photoRepo.ListByStudent(ctx, studentID)
}

func (s *photoService) Delete(ctx context.Context, studentID, photoID primitive.ObjectID) error {
	photo, err := s.photoRepo.GetByID(ctx, photoID)
	if err != nil {
		return notFound(err, ErrPhotoNotFound)
	}
	if photo.StudentID != studentID {
		return ErrPhotoAccessDenied
	}
	log := logger.WithFields(logrus.Fields{"action": "delete photo", "photoId": photoID.Hex()})
	if s.fileStorage != nil {
		if err := s.fileStorage.DeleteObject(ctx, photo.ObjectKey); err != nil {
			log.WithError(err).Error("Failed to delete photo object")
			return err
		}
	}
	if err := s.photoRepo.Delete(ctx, photoID); err != nil {
		return notFound(err, ErrPhotoNotFound)
	}
	return nil
}
