package service

import (
	"context"
	"errors"
	"testing"

	"bassinifit/coach-app/internal/domain"
	"bassinifit/coach-app/internal/metabolic"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMetabolicService_Calculate(t *testing.T) {
	svc := NewMetabolicService(nil)

	res, err := svc.Calculate(metabolic.Input{Weight: "80", Height: "175", Age: "30", Sex: domain.SexMale, ActivityLevel: domain.ActivityModerate})
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if res.TMB != 1830 || res.GET != 2836 {
		t.Errorf("got TMB=%d GET=%d, want 1830/2836", res.TMB, res.GET)
	}

	_, err = svc.Calculate(metabolic.Input{Weight: "0", Height: "", Age: "30", Sex: domain.SexMale, ActivityLevel: domain.ActivityModerate})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want *ValidationError", err)
	}
	if _, ok := verr.Fields["weight"]; !ok {
		t.Errorf("weight not reported: %v", verr.Fields)
	}
	if _, ok := verr.Fields["height"]; !ok {
		t.Errorf("height not reported: %v", verr.Fields)
	}
}

func TestMetabolicService_SaveToStudent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.student(t, "Ana", "ana@example.com")
	svc := NewMetabolicService(f.store.Profiles)

	in := metabolic.Input{Weight: "60", Height: "165", Age: "25", Sex: domain.SexFemale, ActivityLevel: domain.ActivitySedentary}
	if _, err := svc.Calculate(in); err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	untouched, _ := f.students.GetStudent(ctx, s.ID)
	if untouched.TMB != nil {
		t.Fatal("Calculate must not write to the profile")
	}

	saved, err := svc.SaveToStudent(ctx, s.ID, in)
	if err != nil {
		t.Fatalf("SaveToStudent: %v", err)
	}
	stored, err := f.students.GetStudent(ctx, s.ID)
	if err != nil {
		t.Fatalf("GetStudent: %v", err)
	}
	for _, p := range []*domain.StudentProfile{saved, stored} {
		if p.TMB == nil || *p.TMB != 1405 || p.GET == nil || *p.GET != 1686 {
			t.Errorf("TMB/GET = %v/%v, want 1405/1686", p.TMB, p.GET)
		}
		if p.WeightKG == nil || *p.WeightKG != 60 || p.Age == nil || *p.Age != 25 {
			t.Errorf("biometrics not stored: %+v", p)
		}
		if p.ActivityLevel != domain.ActivitySedentary {
			t.Errorf("activity level = %q", p.ActivityLevel)
		}
	}

	if _, err := svc.SaveToStudent(ctx, primitive.NewObjectID(), in); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("unknown student: got %v, want ErrStudentNotFound", err)
	}
}
