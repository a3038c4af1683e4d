package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"bassinifit/coach-app/internal/domain"
	"bassinifit/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func tickingStore() repository.Store {
	db := NewDB()
	t0 := time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)
	n := 0
	db.SetClock(func() time.Time {
		n++
		return t0.Add(time.Duration(n) * time.Second)
	})
	return db.Store()
}

func TestUniqueNames(t *testing.T) {
	ctx := context.Background()
	store := tickingStore()
	student := primitive.NewObjectID()

	if _, err := store.Plans.Create(ctx, &domain.Plan{StudentID: student, Name: "A"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Plans.Create(ctx, &domain.Plan{StudentID: student, Name: "A"}); !errors.Is(err, repository.ErrConflict) {
		t.Errorf("duplicate plan name: err = %v, want ErrConflict", err)
	}
	if _, err := store.Plans.Create(ctx, &domain.Plan{StudentID: primitive.NewObjectID(), Name: "A"}); err != nil {
		t.Errorf("same name for another student: %v", err)
	}

	if _, err := store.Exercises.Create(ctx, &domain.Exercise{Name: "Supino Reto"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Exercises.Create(ctx, &domain.Exercise{Name: "supino reto"}); !errors.Is(err, repository.ErrConflict) {
		t.Errorf("exercise names differing in case: err = %v, want ErrConflict", err)
	}
}

func TestCheckInUpsertKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	store := tickingStore()
	student, entry := primitive.NewObjectID(), primitive.NewObjectID()

	first, err := store.CheckIns.Upsert(ctx, &domain.CheckIn{StudentID: student, EntryID: entry, Date: "2024-03-13", Done: true})
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.CheckIns.Upsert(ctx, &domain.CheckIn{StudentID: student, EntryID: entry, Date: "2024-03-13", Done: false})
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID || second.Done {
		t.Errorf("second upsert = %+v, want same row with Done=false", second)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("UpdatedAt not advanced")
	}

	// Another day is another row.
	if _, err := store.CheckIns.Upsert(ctx, &domain.CheckIn{StudentID: student, EntryID: entry, Date: "2024-03-14", Done: true}); err != nil {
		t.Fatal(err)
	}
	rows, _ := store.CheckIns.ListByStudent(ctx, student, repository.DateRange{})
	if len(rows) != 2 || rows[0].Date != "2024-03-13" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestDeleteCascade(t *testing.T) {
	ctx := context.Background()
	store := tickingStore()
	student := primitive.NewObjectID()
	keep := &domain.Plan{StudentID: student, Name: "A"}
	drop := &domain.Plan{StudentID: student, Name: "B"}
	for _, p := range []*domain.Plan{keep, drop} {
		if _, err := store.Plans.Create(ctx, p); err != nil {
			t.Fatal(err)
		}
	}
	keptEntry := &domain.PlanEntry{PlanID: keep.ID, Position: 1}
	droppedEntry := &domain.PlanEntry{PlanID: drop.ID, Position: 1}
	for _, e := range []*domain.PlanEntry{keptEntry, droppedEntry} {
		if _, err := store.Entries.Create(ctx, e); err != nil {
			t.Fatal(err)
		}
		if _, err := store.CheckIns.Upsert(ctx, &domain.CheckIn{StudentID: student, EntryID: e.ID, Date: "2024-03-13", Done: true}); err != nil {
			t.Fatal(err)
		}
	}

	if err := store.Plans.DeleteCascade(ctx, drop.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Entries.GetByID(ctx, droppedEntry.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("entry of deleted plan still present")
	}
	rows, _ := store.CheckIns.ListByStudent(ctx, student, repository.DateRange{})
	if len(rows) != 1 || rows[0].EntryID != keptEntry.ID {
		t.Errorf("remaining check-ins = %+v", rows)
	}
	if err := store.Plans.DeleteCascade(ctx, drop.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestEntriesOrderedByPosition(t *testing.T) {
	ctx := context.Background()
	store := tickingStore()
	plan := primitive.NewObjectID()
	for _, pos := range []int{3, 1, 2, 2} {
		if _, err := store.Entries.Create(ctx, &domain.PlanEntry{PlanID: plan, Position: pos}); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := store.Entries.ListByPlan(ctx, plan)
	if err != nil {
		t.Fatal(err)
	}
	var got []int
	for _, e := range entries {
		got = append(got, e.Position)
		if e.Category != domain.EntryExercise {
			t.Errorf("category = %q, want default %q", e.Category, domain.EntryExercise)
		}
	}
	want := []int{1, 2, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("positions = %v, want %v", got, want)
		}
	}
}

func TestDeleteStudentData(t *testing.T) {
	ctx := context.Background()
	store := tickingStore()
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()
	for _, s := range []primitive.ObjectID{alice, bob} {
		p := &domain.Plan{StudentID: s, Name: "A"}
		if _, err := store.Plans.Create(ctx, p); err != nil {
			t.Fatal(err)
		}
		e := &domain.PlanEntry{PlanID: p.ID, Position: 1}
		if _, err := store.Entries.Create(ctx, e); err != nil {
			t.Fatal(err)
		}
		if _, err := store.CheckIns.Upsert(ctx, &domain.CheckIn{StudentID: s, EntryID: e.ID, Date: "2024-03-13", Done: true}); err != nil {
			t.Fatal(err)
		}
		if _, err := store.Photos.Create(ctx, &domain.Photo{StudentID: s, PhotoDate: "2024-03-13"}); err != nil {
			t.Fatal(err)
		}
	}

	if err := store.Cleaner.DeleteStudentData(ctx, alice); err != nil {
		t.Fatal(err)
	}
	for _, c := range []struct {
		student primitive.ObjectID
		want    int
	}{{alice, 0}, {bob, 1}} {
		plans, _ := store.Plans.ListByStudent(ctx, c.student)
		rows, _ := store.CheckIns.ListByStudent(ctx, c.student, repository.DateRange{})
		photos, _ := store.Photos.ListByStudent(ctx, c.student)
		if len(plans) != c.want || len(rows) != c.want || len(photos) != c.want {
			t.Errorf("student %s: plans=%d checkins=%d photos=%d, want %d each",
				c.student.Hex(), len(plans), len(rows), len(photos), c.want)
		}
	}
}

func TestEntriesWithEqualPositionsKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	frozen := time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)
	db.SetClock(func() time.Time { return frozen })
	store := db.Store()

	plan := &domain.Plan{StudentID: primitive.NewObjectID(), Name: "A"}
	if _, err := store.Plans.Create(ctx, plan); err != nil {
		t.Fatal(err)
	}
	var ids []primitive.ObjectID
	for _, sets := range []string{"1", "2", "3"} {
		e := &domain.PlanEntry{PlanID: plan.ID, ExerciseID: primitive.NewObjectID(), Sets: sets, Position: 1}
		if _, err := store.Entries.Create(ctx, e); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, e.ID)
	}

	for i := 0; i < 5; i++ {
		got, err := store.Entries.ListByPlan(ctx, plan.ID)
		if err != nil || len(got) != 3 {
			t.Fatalf("ListByPlan = %v, %v", got, err)
		}
		for j := range ids {
			if got[j].ID != ids[j] {
				t.Fatalf("read %d: entry %d = %s (sets %s), want insertion order", i, j, got[j].ID.Hex(), got[j].Sets)
			}
		}
	}
}
