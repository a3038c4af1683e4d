package planning

import (
	"reflect"
	"testing"
	"time"

	"bassinifit/coach-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var base = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func plan(name string, order *int, createdOffset time.Duration) domain.Plan {
	return domain.Plan{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Kind:         domain.PlanKindFromName(name),
		DayType:      domain.DayTypeWorkout,
		DisplayOrder: order,
		CreatedAt:    base.Add(createdOffset),
	}
}

func intPtr(v int) *int { return &v }

func names(plans []AggregatedPlan) []string {
	out := make([]string, len(plans))
	for i, p := range plans {
		out[i] = p.Plan.Name
	}
	return out
}

func TestAggregate_Ordering(t *testing.T) {
	in := []PlanInput{
		{Plan: plan("CARDIO", nil, 0)},
		{Plan: plan("A", intPtr(2), time.Minute)},
		{Plan: plan("AQUECIMENTO", nil, 2*time.Minute)},
		{Plan: plan("B", intPtr(1), 3*time.Minute)},
	}

	got := names(Aggregate(in))
	want := []string{"AQUECIMENTO", "B", "A", "CARDIO"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Aggregate order = %v, want %v", got, want)
	}
}

func TestAggregate_UnrankedPlansFallBackToCreationTime(t *testing.T) {
	in := []PlanInput{
		{Plan: plan("C", nil, 3*time.Minute)},
		{Plan: plan("A", nil, time.Minute)},
		{Plan: plan("B", nil, 2*time.Minute)},
	}
	got := names(Aggregate(in))
	want := []string{"A", "B", "C"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Aggregate order = %v, want %v", got, want)
	}
}

func TestAggregate_TieOnOrderBrokenByCreationTime(t *testing.T) {
	in := []PlanInput{
		{Plan: plan("late", intPtr(1), 2*time.Minute)},
		{Plan: plan("early", intPtr(1), time.Minute)},
	}
	got := names(Aggregate(in))
	want := []string{"early", "late"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Aggregate order = %v, want %v", got, want)
	}
}

func TestAggregate_MuscleGroupDerivation(t *testing.T) {
	p := plan("A", nil, 0)
	in := []PlanInput{{
		Plan: p,
		Entries: []EntryView{
			{ID: primitive.NewObjectID(), Category: domain.EntryExercise, MuscleGroup: "Peito, Ombro"},
			{ID: primitive.NewObjectID(), Category: domain.EntryWarmup, MuscleGroup: "Perna"},
		},
	}}

	got := Aggregate(in)[0]
	if got.MuscleGroupSummary != "Peito, Ombro" {
		t.Errorf("summary = %q, want %q", got.MuscleGroupSummary, "Peito, Ombro")
	}
	if !reflect.DeepEqual(got.MuscleGroups, []string{"Peito", "Ombro"}) {
		t.Errorf("groups = %v", got.MuscleGroups)
	}
}

func TestDeriveMuscleGroups(t *testing.T) {
	tests := []struct {
		name    string
		kind    domain.PlanKind
		entries []EntryView
		want    []string
	}{
		{
			name: "set union in first-seen order",
			kind: domain.PlanKindNormal,
			entries: []EntryView{
				{Category: domain.EntryExercise, MuscleGroup: "Costas"},
				{Category: domain.EntryExercise, MuscleGroup: " Bíceps ,Costas"},
				{Category: "", MuscleGroup: "Ombro"},
			},
			want: []string{"Costas", "Bíceps", "Ombro"},
		},
		{
			name: "cardio entries ignored",
			kind: domain.PlanKindNormal,
			entries: []EntryView{
				{Category: domain.EntryCardio, MuscleGroup: "Cardio"},
			},
			want: nil,
		},
		{
			name: "special plans derive nothing",
			kind: domain.PlanKindWarmup,
			entries: []EntryView{
				{Category: domain.EntryExercise, MuscleGroup: "Perna"},
			},
			want: nil,
		},
		{
			name:    "empty group strings",
			kind:    domain.PlanKindNormal,
			entries: []EntryView{{Category: domain.EntryExercise, MuscleGroup: " , "}},
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveMuscleGroups(tt.kind, tt.entries)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DeriveMuscleGroups() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestAggregate_FallsBackToStoredSummary(t *testing.T) {
	p := plan("A", nil, 0)
	p.MuscleGroups = "Perna, Glúteo"
	got := Aggregate([]PlanInput{{Plan: p}})[0]
	if got.MuscleGroupSummary != "Perna, Glúteo" {
		t.Errorf("summary = %q, want stored value", got.MuscleGroupSummary)
	}
	if !reflect.DeepEqual(got.MuscleGroups, []string{"Perna", "Glúteo"}) {
		t.Errorf("groups = %v", got.MuscleGroups)
	}

	warmup := plan("AQUECIMENTO", nil, 0)
	warmup.MuscleGroups = "Mobilidade"
	got = Aggregate([]PlanInput{{
		Plan:    warmup,
		Entries: []EntryView{{Category: domain.EntryExercise, MuscleGroup: "Peito"}},
	}})[0]
	if got.MuscleGroupSummary != "Mobilidade" {
		t.Errorf("special plan summary = %q, want stored value", got.MuscleGroupSummary)
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	in := []PlanInput{
		{Plan: plan("CARDIO", nil, 0)},
		{Plan: plan("B", intPtr(1), time.Minute), Entries: []EntryView{
			{ID: primitive.NewObjectID(), Category: domain.EntryExercise, MuscleGroup: "Peito, Tríceps"},
		}},
		{Plan: plan("A", nil, 2*time.Minute)},
		{Plan: plan("AQUECIMENTO", nil, 3*time.Minute)},
	}
	snapshot := make([]PlanInput, len(in))
	copy(snapshot, in)

	first := Aggregate(in)
	second := Aggregate(in)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Aggregate is not idempotent:\n%v\n%v", first, second)
	}
	if !reflect.DeepEqual(in, snapshot) {
		t.Errorf("Aggregate modified its input")
	}

	// Feeding the output back in must not change the order either.
	again := make([]PlanInput, len(first))
	for i, p := range first {
		again[i] = PlanInput{Plan: p.Plan, Entries: in[indexByName(in, p.Plan.Name)].Entries}
	}
	if !reflect.DeepEqual(names(Aggregate(again)), names(first)) {
		t.Errorf("re-aggregating sorted output changed the order")
	}
}

func indexByName(in []PlanInput, name string) int {
	for i, p := range in {
		if p.Plan.Name == name {
			return i
		}
	}
	return -1
}

func TestNormalPlanIDs(t *testing.T) {
	warm, a, cardio := plan("AQUECIMENTO", nil, 0), plan("A", nil, time.Minute), plan("CARDIO", nil, 2*time.Minute)
	got := NormalPlanIDs(Aggregate([]PlanInput{{Plan: cardio}, {Plan: a}, {Plan: warm}}))
	if !reflect.DeepEqual(got, []primitive.ObjectID{a.ID}) {
		t.Errorf("NormalPlanIDs() = %v, want only plan A", got)
	}
}
