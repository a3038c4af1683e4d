package service

import (
	"context"
	"errors"
	"testing"

	"bassinifit/coach-app/internal/domain"
	"bassinifit/coach-app/internal/repository"
	"bassinifit/coach-app/internal/repository/cached"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// planWithEntries creates a plan holding n entries of one exercise.
func (f *fixture) planWithEntries(t *testing.T, studentID primitive.ObjectID, name string, n int) (*domain.Plan, []*domain.PlanEntry) {
	t.Helper()
	exercises, err := f.catalog.ListExercises(context.Background())
	if err != nil || len(exercises) == 0 {
		f.muscleGroups(t, "Peito")
		f.exercise(t, "Supino", "Peito")
		exercises, _ = f.catalog.ListExercises(context.Background())
	}
	p := f.plan(t, studentID, name)
	entries := make([]*domain.PlanEntry, n)
	for i := range entries {
		entries[i] = f.entry(t, p.ID, exercises[0].ID, "")
	}
	return p, entries
}

func TestToggleCheckIn_RepeatedToggleKeepsOneRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.student(t, "Ana", "ana@example.com")
	_, entries := f.planWithEntries(t, s.ID, "A", 1)
	e := entries[0]

	for i := 0; i < 2; i++ {
		if _, err := f.progress.ToggleCheckIn(ctx, s.ID, e.ID, "2024-03-12", true); err != nil {
			t.Fatalf("ToggleCheckIn #%d: %v", i+1, err)
		}
	}
	rows, err := f.store.CheckIns.ListByStudent(ctx, s.ID, repository.DateRange{From: "2024-03-12", To: "2024-03-12"})
	if err != nil {
		t.Fatalf("ListByStudent: %v", err)
	}
	if len(rows) != 1 || !rows[0].Done {
		t.Fatalf("rows = %+v, want one done row", rows)
	}

	row, err := f.progress.ToggleCheckIn(ctx, s.ID, e.ID, "2024-03-12", false)
	if err != nil {
		t.Fatalf("ToggleCheckIn off: %v", err)
	}
	if row.Done || row.ID != rows[0].ID {
		t.Errorf("untoggle should overwrite the same row, got %+v", row)
	}
	done, err := f.progress.EntryCompletion(ctx, s.ID, e.ID, "2024-03-12")
	if err != nil || done {
		t.Errorf("EntryCompletion after untoggle: done=%v err=%v", done, err)
	}
}

func TestToggleCheckIn_DateHandling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.student(t, "Ana", "ana@example.com")
	_, entries := f.planWithEntries(t, s.ID, "A", 1)

	row, err := f.progress.ToggleCheckIn(ctx, s.ID, entries[0].ID, "", true)
	if err != nil {
		t.Fatalf("ToggleCheckIn: %v", err)
	}
	if row.Date != "2024-03-13" {
		t.Errorf("default date = %q, want today", row.Date)
	}
	// Yesterday's state does not carry forward.
	done, err := f.progress.EntryCompletion(ctx, s.ID, entries[0].ID, "2024-03-14")
	if err != nil || done {
		t.Errorf("next day: done=%v err=%v", done, err)
	}
	if _, err := f.progress.ToggleCheckIn(ctx, s.ID, entries[0].ID, "13/03/2024", true); !IsValidation(err) {
		t.Errorf("bad date: got %v, want validation error", err)
	}
}

func TestToggleCheckIn_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.student(t, "Ana", "ana@example.com")
	other := f.student(t, "Bia", "bia@example.com")
	_, entries := f.planWithEntries(t, owner.ID, "A", 1)

	if _, err := f.progress.ToggleCheckIn(ctx, other.ID, entries[0].ID, "", true); !errors.Is(err, ErrEntryAccessDenied) {
		t.Errorf("foreign entry: got %v, want ErrEntryAccessDenied", err)
	}
	if _, err := f.progress.ToggleCheckIn(ctx, owner.ID, primitive.NewObjectID(), "", true); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("unknown entry: got %v, want ErrEntryNotFound", err)
	}
}

type failingUpserts struct {
	repository.CheckInRepository
}

func (failingUpserts) Upsert(context.Context, *domain.CheckIn) (*domain.CheckIn, error) {
	return nil, errors.New("write timeout")
}

func TestToggleCheckIn_FailedWriteRevertsCachedDay(t *testing.T) {
	f := newFixture(t, func(s repository.Store) repository.Store {
		s.CheckIns = failingUpserts{s.CheckIns}
		return s
	})
	ctx := context.Background()
	s := f.student(t, "Ana", "ana@example.com")
	_, entries := f.planWithEntries(t, s.ID, "A", 1)

	// Load the day into the cache.
	if _, err := f.progress.EntryCompletion(ctx, s.ID, entries[0].ID, ""); err != nil {
		t.Fatalf("EntryCompletion: %v", err)
	}
	key := cached.DayKey{StudentID: s.ID, Date: "2024-03-13"}
	if _, ok := f.caches.CheckIns.Get(key); !ok {
		t.Fatal("day was not cached")
	}

	if _, err := f.progress.ToggleCheckIn(ctx, s.ID, entries[0].ID, "", true); err == nil {
		t.Fatal("expected the write error")
	}
	rows, ok := f.caches.CheckIns.Get(key)
	if !ok || len(rows) != 0 {
		t.Errorf("cached day after failed toggle = %+v (cached=%v), want the empty original", rows, ok)
	}
	done, err := f.progress.EntryCompletion(ctx, s.ID, entries[0].ID, "")
	if err != nil || done {
		t.Errorf("EntryCompletion: done=%v err=%v, want false", done, err)
	}
}

func TestPlanDay_Progress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.student(t, "Ana", "ana@example.com")
	full, entries := f.planWithEntries(t, s.ID, "A", 3)
	empty := f.plan(t, s.ID, "B")

	for i, e := range entries {
		if _, err := f.progress.ToggleCheckIn(ctx, s.ID, e.ID, "", true); err != nil {
			t.Fatalf("ToggleCheckIn: %v", err)
		}
		day, err := f.progress.PlanDay(ctx, s.ID, full.ID, "")
		if err != nil {
			t.Fatalf("PlanDay: %v", err)
		}
		if day.Progress.Completed != i+1 || day.Progress.Total != 3 {
			t.Errorf("after %d toggles progress = %+v", i+1, day.Progress)
		}
		if !day.Entries[i].Done {
			t.Errorf("entry %d not marked done", i)
		}
	}

	prog, err := f.progress.PlanProgress(ctx, s.ID, full.ID, "")
	if err != nil {
		t.Fatalf("PlanProgress: %v", err)
	}
	if prog.Percent != 100 || !prog.Complete {
		t.Errorf("full plan progress = %+v, want 100%% complete", prog)
	}

	prog, err = f.progress.PlanProgress(ctx, s.ID, empty.ID, "")
	if err != nil {
		t.Fatalf("PlanProgress empty: %v", err)
	}
	if prog.Percent != 0 || prog.Complete {
		t.Errorf("empty plan progress = %+v, want 0%% incomplete", prog)
	}

	other := f.student(t, "Bia", "bia@example.com")
	if _, err := f.progress.PlanDay(ctx, other.ID, full.ID, ""); !errors.Is(err, ErrPlanAccessDenied) {
		t.Errorf("foreign plan: got %v, want ErrPlanAccessDenied", err)
	}
}

func TestPlanDay_FlagsRestDays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.student(t, "Ana", "ana@example.com")
	workout := f.plan(t, s.ID, "A")
	rest, err := f.plans.UpsertPlan(ctx, s.ID, PlanInput{Name: "Domingo", DayType: domain.DayTypeRest})
	if err != nil {
		t.Fatalf("UpsertPlan: %v", err)
	}

	day, err := f.progress.PlanDay(ctx, s.ID, rest.ID, "")
	if err != nil {
		t.Fatalf("PlanDay rest: %v", err)
	}
	if !day.RestDay {
		t.Error("rest plan not flagged as a rest day")
	}

	day, err = f.progress.PlanDay(ctx, s.ID, workout.ID, "")
	if err != nil {
		t.Fatalf("PlanDay workout: %v", err)
	}
	if day.RestDay {
		t.Error("workout plan flagged as a rest day")
	}
}

func TestWeekOverview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.student(t, "Ana", "ana@example.com")
	_, a := f.planWithEntries(t, s.ID, "A", 1)
	_, b := f.planWithEntries(t, s.ID, "B", 2)
	f.plan(t, s.ID, "AQUECIMENTO")

	ov, err := f.progress.WeekOverview(ctx, s.ID)
	if err != nil {
		t.Fatalf("WeekOverview: %v", err)
	}
	if ov.WeekStart != "2024-03-11" || ov.WeekEnd != "2024-03-17" || ov.Date != "2024-03-13" {
		t.Errorf("week = %s..%s on %s", ov.WeekStart, ov.WeekEnd, ov.Date)
	}
	if len(ov.Plans) != 2 {
		t.Fatalf("got %d plans, want the 2 normal ones", len(ov.Plans))
	}
	if ov.WeekComplete {
		t.Error("week complete without check-ins")
	}

	for _, e := range append(a, b...) {
		if _, err := f.progress.ToggleCheckIn(ctx, s.ID, e.ID, "", true); err != nil {
			t.Fatalf("ToggleCheckIn: %v", err)
		}
	}
	ov, err = f.progress.WeekOverview(ctx, s.ID)
	if err != nil {
		t.Fatalf("WeekOverview: %v", err)
	}
	if !ov.WeekComplete {
		t.Errorf("week not complete after checking every normal entry: %+v", ov.Plans)
	}
}

func TestResetWeek_OnlyTouchesRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.student(t, "Ana", "ana@example.com")
	_, entries := f.planWithEntries(t, s.ID, "A", 1)
	e := entries[0]

	dates := []string{"2024-03-10", "2024-03-11", "2024-03-13", "2024-03-17", "2024-03-18"}
	for _, d := range dates {
		if _, err := f.progress.ToggleCheckIn(ctx, s.ID, e.ID, d, true); err != nil {
			t.Fatalf("ToggleCheckIn %s: %v", d, err)
		}
	}
	// Cache one day inside the range so the reset has to drop it.
	if _, err := f.progress.EntryCompletion(ctx, s.ID, e.ID, "2024-03-13"); err != nil {
		t.Fatalf("EntryCompletion: %v", err)
	}

	n, err := f.progress.ResetWeek(ctx, s.ID, "2024-03-11", "2024-03-17")
	if err != nil {
		t.Fatalf("ResetWeek: %v", err)
	}
	if n != 3 {
		t.Errorf("deleted %d rows, want 3", n)
	}
	for _, d := range dates {
		done, err := f.progress.EntryCompletion(ctx, s.ID, e.ID, d)
		if err != nil {
			t.Fatalf("EntryCompletion %s: %v", d, err)
		}
		want := d < "2024-03-11" || d > "2024-03-17"
		if done != want {
			t.Errorf("%s: done=%v, want %v", d, done, want)
		}
	}
}

func TestResetWeek_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.student(t, "Ana", "ana@example.com")

	tests := []struct{ start, end string }{
		{"", "2024-03-17"},
		{"2024-03-11", "17/03/2024"},
		{"2024-03-17", "2024-03-11"},
	}
	for _, tt := range tests {
		if _, err := f.progress.ResetWeek(ctx, s.ID, tt.start, tt.end); !IsValidation(err) {
			t.Errorf("ResetWeek(%q, %q): got %v, want validation error", tt.start, tt.end, err)
		}
	}
}

func TestResetAllCurrentWeeks_SkipsInactiveStudents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	active := f.student(t, "Ana", "ana@example.com")
	inactive := f.student(t, "Bia", "bia@example.com")
	_, ea := f.planWithEntries(t, active.ID, "A", 1)
	_, eb := f.planWithEntries(t, inactive.ID, "A", 1)
	for _, c := range []struct {
		student primitive.ObjectID
		entry   primitive.ObjectID
	}{{active.ID, ea[0].ID}, {inactive.ID, eb[0].ID}} {
		if _, err := f.progress.ToggleCheckIn(ctx, c.student, c.entry, "", true); err != nil {
			t.Fatalf("ToggleCheckIn: %v", err)
		}
	}
	off := false
	if _, err := f.students.UpdateStudent(ctx, inactive.ID, StudentUpdate{Active: &off}); err != nil {
		t.Fatalf("UpdateStudent: %v", err)
	}

	students, rows, err := f.progress.ResetAllCurrentWeeks(ctx)
	if err != nil {
		t.Fatalf("ResetAllCurrentWeeks: %v", err)
	}
	if students != 1 || rows != 1 {
		t.Errorf("reset %d students / %d rows, want 1 / 1", students, rows)
	}
	done, _ := f.progress.EntryCompletion(ctx, inactive.ID, eb[0].ID, "")
	if !done {
		t.Error("inactive student's check-in was removed")
	}
}
