package service

import (
	"context"
	"errors"
	"testing"

	"bassinifit/coach-app/internal/domain"
	"bassinifit/coach-app/internal/repository"
)

func TestCreateStudent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	age := 31

	p, err := f.students.CreateStudent(ctx, StudentInput{
		Name: "Ana", Email: "ana@example.com", Password: "secret123",
		Sex: domain.SexFemale, Age: &age, ActivityLevel: domain.ActivityLight,
	})
	if err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}
	if !p.Active || p.UserID.IsZero() {
		t.Errorf("unexpected profile: %+v", p)
	}
	mine, err := f.students.GetMyProfile(ctx, p.UserID)
	if err != nil || mine.ID != p.ID {
		t.Errorf("GetMyProfile = %+v, %v", mine, err)
	}
	if _, _, err := f.auth.Login(ctx, "ana@example.com", "secret123"); err != nil {
		t.Errorf("student cannot log in: %v", err)
	}

	if _, err := f.students.CreateStudent(ctx, StudentInput{Name: "Ana B", Email: "ana@example.com", Password: "secret123"}); !errors.Is(err, ErrUserAlreadyExists) {
		t.Errorf("duplicate email: got %v, want ErrUserAlreadyExists", err)
	}
}

func TestUpdateStudent_Partial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.student(t, "Ana", "ana@example.com")

	seq := "A-B-C"
	updated, err := f.students.UpdateStudent(ctx, s.ID, StudentUpdate{TrainingSequence: &seq})
	if err != nil {
		t.Fatalf("UpdateStudent: %v", err)
	}
	if updated.TrainingSequence != seq || updated.Name != "Ana" || updated.Sex != domain.SexFemale {
		t.Errorf("partial update lost fields: %+v", updated)
	}

	bad := domain.ActivityLevel("extremo")
	if _, err := f.students.UpdateStudent(ctx, s.ID, StudentUpdate{ActivityLevel: &bad}); !IsValidation(err) {
		t.Errorf("bad activity level: got %v, want validation error", err)
	}
}

func TestDeleteStudent_RemovesEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.student(t, "Ana", "ana@example.com")
	keep := f.student(t, "Bia", "bia@example.com")
	p, entries := f.planWithEntries(t, s.ID, "A", 1)
	f.planWithEntries(t, keep.ID, "A", 1)
	if _, err := f.progress.ToggleCheckIn(ctx, s.ID, entries[0].ID, "", true); err != nil {
		t.Fatalf("ToggleCheckIn: %v", err)
	}

	if err := f.students.DeleteStudent(ctx, s.ID); err != nil {
		t.Fatalf("DeleteStudent: %v", err)
	}

	if _, err := f.students.GetStudent(ctx, s.ID); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("profile survived: %v", err)
	}
	if _, err := f.store.Plans.GetByID(ctx, p.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("plan survived: %v", err)
	}
	rows, err := f.store.CheckIns.ListByStudent(ctx, s.ID, repository.DateRange{})
	if err != nil || len(rows) != 0 {
		t.Errorf("check-ins survived: %+v, %v", rows, err)
	}
	if _, _, err := f.auth.Login(ctx, "ana@example.com", "secret123"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("account survived: %v", err)
	}
	if plans, err := f.plans.ListPlans(ctx, keep.ID); err != nil || len(plans) != 1 {
		t.Errorf("other student's plans touched: %d, %v", len(plans), err)
	}
}
