package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeStorage struct {
	deleted []string
}

func (s *fakeStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, contentType string, _ time.Duration) (string, error) {
	return "https://upload.test/" + objectKey + "?ct=" + contentType, nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://download.test/" + objectKey, nil
}

func (s *fakeStorage) PublicURL(objectKey string) string {
	return "https://cdn.test/" + objectKey
}

func (s *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	return nil
}

func TestPhotos_UploadConfirmListDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	files := &fakeStorage{}
	photos := NewPhotoService(f.store, files, func() time.Time { return wednesday })
	s := f.student(t, "Ana", "ana@example.com")
	other := f.student(t, "Bia", "bia@example.com")
	plan := f.plan(t, s.ID, "A")

	ticket, err := photos.RequestUpload(ctx, s.ID, "image/jpeg")
	if err != nil {
		t.Fatalf("RequestUpload: %v", err)
	}
	if !strings.HasPrefix(ticket.ObjectKey, "photos/"+s.ID.Hex()+"/") || !strings.HasSuffix(ticket.ObjectKey, ".jpg") {
		t.Errorf("object key = %q", ticket.ObjectKey)
	}
	if !ticket.ExpiresAt.After(wednesday) {
		t.Errorf("expiry %v not after now", ticket.ExpiresAt)
	}
	if _, err := photos.RequestUpload(ctx, s.ID, "application/pdf"); !errors.Is(err, ErrInvalidContentType) {
		t.Errorf("pdf upload: got %v, want ErrInvalidContentType", err)
	}

	if _, err := photos.Confirm(ctx, other.ID, PhotoConfirmation{ObjectKey: ticket.ObjectKey}); !IsValidation(err) {
		t.Errorf("confirming another student's key: got %v, want validation error", err)
	}
	if _, err := photos.Confirm(ctx, other.ID, PhotoConfirmation{ObjectKey: "photos/" + other.ID.Hex() + "/x.jpg", PlanID: &plan.ID}); !errors.Is(err, ErrPlanAccessDenied) {
		t.Errorf("tagging another student's plan: got %v, want ErrPlanAccessDenied", err)
	}

	photo, err := photos.Confirm(ctx, s.ID, PhotoConfirmation{ObjectKey: ticket.ObjectKey, ContentType: "image/jpeg", PlanID: &plan.ID})
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if photo.URL != "https://cdn.test/"+ticket.ObjectKey || photo.PhotoDate != "2024-03-13" {
		t.Errorf("unexpected photo: %+v", photo)
	}

	list, err := photos.List(ctx, s.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %d photos, %v", len(list), err)
	}

	if err := photos.Delete(ctx, other.ID, photo.ID); !errors.Is(err, ErrPhotoAccessDenied) {
		t.Errorf("foreign delete: got %v, want ErrPhotoAccessDenied", err)
	}
	if err := photos.Delete(ctx, s.ID, photo.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(files.deleted) != 1 || files.deleted[0] != ticket.ObjectKey {
		t.Errorf("deleted objects = %v", files.deleted)
	}
	if err := photos.Delete(ctx, s.ID, photo.ID); !errors.Is(err, ErrPhotoNotFound) {
		t.Errorf("second delete: got %v, want ErrPhotoNotFound", err)
	}
}

func TestPhotos_UploadContentTypes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	photos := NewPhotoService(f.store, &fakeStorage{}, func() time.Time { return wednesday })
	s := f.student(t, "Ana", "ana@example.com")

	tests := []struct {
		contentType string
		wantExt     string // empty means rejected
	}{
		{"image/png", ".png"},
		{"IMAGE/WEBP", ".webp"},
		{"image/jpeg; charset=binary", ".jpg"},
		{"image/svg+xml", ""},
		{"image/", ""},
		{"image/tiff", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			ticket, err := photos.RequestUpload(ctx, s.ID, tt.contentType)
			if tt.wantExt == "" {
				if !errors.Is(err, ErrInvalidContentType) {
					t.Errorf("RequestUpload(%q) error = %v, want ErrInvalidContentType", tt.contentType, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("RequestUpload(%q) error = %v", tt.contentType, err)
			}
			if !strings.HasSuffix(ticket.ObjectKey, tt.wantExt) {
				t.Errorf("object key = %q, want suffix %q", ticket.ObjectKey, tt.wantExt)
			}
		})
	}
}

func TestPhotos_StorageDisabled(t *testing.T) {
	f := newFixture(t)
	photos := NewPhotoService(f.store, nil, nil)
	id := primitive.NewObjectID()

	if _, err := photos.RequestUpload(context.Background(), id, "image/png"); !errors.Is(err, ErrStorageDisabled) {
		t.Errorf("RequestUpload: got %v, want ErrStorageDisabled", err)
	}
	if list, err := photos.List(context.Background(), id); err != nil || len(list) != 0 {
		t.Errorf("List without storage = %v, %v", list, err)
	}
}
