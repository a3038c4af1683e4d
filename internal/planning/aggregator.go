// Package planning turns a student's stored plans into the ordered, annotated list shown to
// the trainer and the student, and computes completion from check-ins. Everything here is pure.
package planning

import (
	"sort"
	"strings"

	"bassinifit/coach-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EntryView is the slice of a plan entry the aggregator needs, joined with its exercise.
type EntryView struct {
	ID          primitive.ObjectID
	Category    domain.EntryCategory
	MuscleGroup string // the referenced exercise's group string; empty when the exercise is gone
}

// PlanInput is one plan with its joined entries.
type PlanInput struct {
	Plan    domain.Plan
	Entries []EntryView
}

// AggregatedPlan is a plan ready for display.
type AggregatedPlan struct {
	Plan domain.Plan
	// MuscleGroups are the individual groups ("chips") behind MuscleGroupSummary.
	MuscleGroups       []string
	MuscleGroupSummary string
	EntryIDs           []primitive.ObjectID
}

// Aggregate annotates every plan with its muscle-group summary and sorts the result for display.
// The input is not modified and the same input always gives the same output.
func Aggregate(plans []PlanInput) []AggregatedPlan {
	out := make([]AggregatedPlan, len(plans))
	for i, in := range plans {
		groups := DeriveMuscleGroups(in.Plan.Kind, in.Entries)
		summary := strings.Join(groups, ", ")
		if len(groups) == 0 {
			summary = in.Plan.MuscleGroups
			groups = SplitMuscleGroups(summary)
		}
		ids := make([]primitive.ObjectID, len(in.Entries))
		for j, e := range in.Entries {
			ids[j] = e.ID
		}
		out[i] = AggregatedPlan{
			Plan:               in.Plan,
			MuscleGroups:       groups,
			MuscleGroupSummary: summary,
			EntryIDs:           ids,
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return Less(&out[i].Plan, &out[j].Plan)
	})
	return out
}

// DeriveMuscleGroups returns the distinct groups of the plan's "exercise" entries in first-seen
// order. Special plans derive nothing.
func DeriveMuscleGroups(kind domain.PlanKind, entries []EntryView) []string {
	if kind.IsSpecial() {
		return nil
	}
	seen := map[string]bool{}
	var groups []string
	for _, e := range entries {
		if e.Category.OrDefault() != domain.EntryExercise {
			continue
		}
		for _, g := range SplitMuscleGroups(e.MuscleGroup) {
			if !seen[g] {
				seen[g] = true
				groups = append(groups, g)
			}
		}
	}
	return groups
}

// SplitMuscleGroups splits a comma-separated group string, trimming and dropping empty parts.
func SplitMuscleGroups(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// kindRank puts warm-up first and cardio last.
func kindRank(k domain.PlanKind) int {
	switch k {
	case domain.PlanKindWarmup:
		return 0
	case domain.PlanKindCardio:
		return 2
	default:
		return 1
	}
}

// Less is the display order: warm-up, then normal plans by DisplayOrder (unset counts as 0),
// then by creation time, then cardio.
func Less(a, b *domain.Plan) bool {
	if ra, rb := kindRank(a.Kind), kindRank(b.Kind); ra != rb {
		return ra < rb
	}
	if oa, ob := orderOf(a), orderOf(b); oa != ob {
		return oa < ob
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID.Hex() < b.ID.Hex()
}

func orderOf(p *domain.Plan) int {
	if p.DisplayOrder == nil {
		return 0
	}
	return *p.DisplayOrder
}

// NormalPlanIDs returns the ids of the normal plans in display order, the sequence reordering works on.
func NormalPlanIDs(plans []AggregatedPlan) []primitive.ObjectID {
	var ids []primitive.ObjectID
	for _, p := range plans {
		if !p.Plan.Kind.IsSpecial() {
			ids = append(ids, p.Plan.ID)
		}
	}
	return ids
}
