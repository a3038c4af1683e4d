package planning

import (
	"testing"
	"time"

	"bassinifit/coach-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPlanProgress(t *testing.T) {
	entries := ids(3)
	today := "2026-03-04"
	set := NewCompletionSet([]domain.CheckIn{
		{EntryID: entries[0], Date: today, Done: true},
		{EntryID: entries[1], Date: today, Done: true},
		{EntryID: entries[2], Date: today, Done: true},
	})

	got := PlanProgress(entries, set, today)
	if got.Total != 3 || got.Completed != 3 || got.Percent != 100 || !got.Complete {
		t.Errorf("PlanProgress(all done) = %+v", got)
	}

	got = PlanProgress(nil, set, today)
	if got.Total != 0 || got.Percent != 0 || got.Complete {
		t.Errorf("PlanProgress(no entries) = %+v", got)
	}
}

func TestPlanProgress_OnlyCountsDoneOnDate(t *testing.T) {
	entries := ids(4)
	set := NewCompletionSet([]domain.CheckIn{
		{EntryID: entries[0], Date: "2026-03-04", Done: true},
		{EntryID: entries[1], Date: "2026-03-03", Done: true}, // yesterday does not carry over
		{EntryID: entries[2], Date: "2026-03-04", Done: false},
	})
	got := PlanProgress(entries, set, "2026-03-04")
	if got.Completed != 1 || got.Percent != 25 || got.Complete {
		t.Errorf("PlanProgress() = %+v, want 1/4", got)
	}
}

func TestCompletionSet_Set(t *testing.T) {
	set := NewCompletionSet(nil)
	id := primitive.NewObjectID()
	set.Set(id, "2026-03-04", true)
	if !set.Done(id, "2026-03-04") {
		t.Fatal("entry should be done after Set(true)")
	}
	set.Set(id, "2026-03-04", false)
	if set.Done(id, "2026-03-04") {
		t.Fatal("entry should be unmarked after Set(false)")
	}
}

func TestWeekBounds(t *testing.T) {
	tests := []struct {
		day        time.Time
		start, end string
	}{
		{time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC), "2026-03-02", "2026-03-08"},  // Wednesday
		{time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), "2026-03-02", "2026-03-08"},   // Monday
		{time.Date(2026, 3, 8, 23, 59, 0, 0, time.UTC), "2026-03-02", "2026-03-08"}, // Sunday
		{time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC), "2025-12-29", "2026-01-04"},  // across years
	}
	for _, tt := range tests {
		start, end := WeekBounds(tt.day)
		if domain.FormatDate(start) != tt.start || domain.FormatDate(end) != tt.end {
			t.Errorf("WeekBounds(%s) = %s..%s, want %s..%s", tt.day.Weekday(),
				domain.FormatDate(start), domain.FormatDate(end), tt.start, tt.end)
		}
	}
}

func TestOverview_WeekComplete(t *testing.T) {
	today := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	date := domain.FormatDate(today)
	a, b := ids(2), ids(1)
	warmupEntry := ids(1)

	plans := Aggregate([]PlanInput{
		{Plan: plan("AQUECIMENTO", nil, 0), Entries: []EntryView{{ID: warmupEntry[0]}}},
		{Plan: plan("A", nil, time.Minute), Entries: []EntryView{{ID: a[0]}, {ID: a[1]}}},
		{Plan: plan("B", nil, 2*time.Minute), Entries: []EntryView{{ID: b[0]}}},
	})

	checkIns := []domain.CheckIn{
		{EntryID: a[0], Date: date, Done: true},
		{EntryID: a[1], Date: date, Done: true},
	}
	ov := Overview(plans, NewCompletionSet(checkIns), today)
	if len(ov.Plans) != 2 {
		t.Fatalf("overview has %d plans, want the 2 normal ones", len(ov.Plans))
	}
	if ov.WeekComplete {
		t.Error("week should not be complete while plan B is open")
	}
	if ov.WeekStart != "2026-03-02" || ov.WeekEnd != "2026-03-08" {
		t.Errorf("week = %s..%s", ov.WeekStart, ov.WeekEnd)
	}

	checkIns = append(checkIns, domain.CheckIn{EntryID: b[0], Date: date, Done: true})
	ov = Overview(plans, NewCompletionSet(checkIns), today)
	if !ov.WeekComplete {
		t.Error("week should be complete once every normal plan is done; warm-up does not count")
	}

	if Overview(nil, NewCompletionSet(nil), today).WeekComplete {
		t.Error("a student without normal plans never completes the week")
	}
}
