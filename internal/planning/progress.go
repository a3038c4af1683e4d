package planning

import (
	"time"

	"bassinifit/coach-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CompletionSet answers "was this entry done on this date" from a set of check-ins.
// A missing record means not done.
type CompletionSet map[completionKey]bool

type completionKey struct {
	entry primitive.ObjectID
	date  string
}

// NewCompletionSet indexes check-ins. Only rows with Done set count.
func NewCompletionSet(checkIns []domain.CheckIn) CompletionSet {
	set := make(CompletionSet, len(checkIns))
	for _, c := range checkIns {
		if c.Done {
			set[completionKey{c.EntryID, c.Date}] = true
		}
	}
	return set
}

// Done reports whether entryID has a completed check-in on date.
func (s CompletionSet) Done(entryID primitive.ObjectID, date string) bool {
	return s[completionKey{entryID, date}]
}

// Set records a completion state, as an optimistic toggle would.
func (s CompletionSet) Set(entryID primitive.ObjectID, date string, done bool) {
	if done {
		s[completionKey{entryID, date}] = true
		return
	}
	delete(s, completionKey{entryID, date})
}

// Progress is the completion of one plan on one day.
type Progress struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Percent   float64 `json:"percent"`
	Complete  bool    `json:"complete"`
}

// PlanProgress counts the plan's entries done on date. A plan without entries is never complete.
func PlanProgress(entryIDs []primitive.ObjectID, done CompletionSet, date string) Progress {
	p := Progress{Total: len(entryIDs)}
	for _, id := range entryIDs {
		if done.Done(id, date) {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percent = float64(p.Completed) / float64(p.Total) * 100
		p.Complete = p.Completed == p.Total
	}
	return p
}

// PlanStatus pairs a plan with its progress.
type PlanStatus struct {
	Plan     AggregatedPlan
	Progress Progress
}

// WeekOverview is the student's dashboard state for one day.
type WeekOverview struct {
	Date      string
	WeekStart string
	WeekEnd   string
	Plans     []PlanStatus // normal plans only, in display order
	// WeekComplete is true when there is at least one normal plan and all are complete.
	WeekComplete bool
}

// Overview computes progress of every normal plan on date.
func Overview(plans []AggregatedPlan, done CompletionSet, today time.Time) WeekOverview {
	date := domain.FormatDate(today)
	start, end := WeekBounds(today)
	ov := WeekOverview{
		Date:      date,
		WeekStart: domain.FormatDate(start),
		WeekEnd:   domain.FormatDate(end),
	}
	allComplete := true
	for _, p := range plans {
		if p.Plan.Kind.IsSpecial() {
			continue
		}
		prog := PlanProgress(p.EntryIDs, done, date)
		ov.Plans = append(ov.Plans, PlanStatus{Plan: p, Progress: prog})
		if !prog.Complete {
			allComplete = false
		}
	}
	ov.WeekComplete = len(ov.Plans) > 0 && allComplete
	return ov
}

// WeekBounds returns the Monday on or before day and the Sunday after it, both at midnight in
// day's location.
func WeekBounds(day time.Time) (start, end time.Time) {
	y, m, d := day.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	sinceMonday := (int(midnight.Weekday()) + 6) % 7
	start = midnight.AddDate(0, 0, -sinceMonday)
	end = start.AddDate(0, 0, 6)
	return start, end
}
