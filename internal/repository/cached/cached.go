// Package cached wraps repositories with read-through caches. Every write invalidates exactly the
// keys it can have changed: plan lists by student, entry lists by plan, and a student's check-ins
// by day.
package cached

import (
	"context"
	"time"

	"bassinifit/coach-app/internal/cache"
	"bassinifit/coach-app/internal/domain"
	"bassinifit/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DayKey identifies one student's check-ins on one date.
type DayKey struct {
	StudentID primitive.ObjectID
	Date      string
}

// Caches holds the shared caches. Plan deletes reach into all three.
type Caches struct {
	Plans    *cache.Cache[primitive.ObjectID, []domain.Plan]
	Entries  *cache.Cache[primitive.ObjectID, []domain.PlanEntry]
	CheckIns *cache.Cache[DayKey, []domain.CheckIn]
}

// NewCaches builds the caches with one TTL. A zero TTL gives disabled (nil) caches.
func NewCaches(ttl time.Duration) *Caches {
	return &Caches{
		Plans:    cache.New[primitive.ObjectID, []domain.Plan](ttl),
		Entries:  cache.New[primitive.ObjectID, []domain.PlanEntry](ttl),
		CheckIns: cache.New[DayKey, []domain.CheckIn](ttl),
	}
}

// Wrap returns store with its plan, entry and check-in repositories decorated. The other
// repositories pass through. The student cleaner is wrapped too so a student delete drops their
// cached rows.
func Wrap(store repository.Store, c *Caches) repository.Store {
	plans := store.Plans
	store.Plans = &Plans{next: plans, caches: c}
	store.Entries = &Entries{next: store.Entries, caches: c}
	store.CheckIns = &CheckIns{next: store.CheckIns, caches: c}
	store.Cleaner = &cleaner{next: store.Cleaner, plans: plans, caches: c}
	return store
}

func (c *Caches) dropStudentDays(studentID primitive.ObjectID, dates repository.DateRange) {
	c.CheckIns.InvalidateFunc(func(k DayKey, _ []domain.CheckIn) bool {
		return k.StudentID == studentID && dates.Contains(k.Date)
	})
}

func (c *Caches) dropDaysWithEntries(entryIDs map[primitive.ObjectID]bool) {
	c.CheckIns.InvalidateFunc(func(_ DayKey, rows []domain.CheckIn) bool {
		for _, r := range rows {
			if entryIDs[r.EntryID] {
				return true
			}
		}
		return false
	})
}

// ---- plans ----

// Plans caches ListByStudent per student.
type Plans struct {
	next   repository.PlanRepository
	caches *Caches
}

func (r *Plans) Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	id, err := r.next.Create(ctx, plan)
	if err == nil {
		r.caches.Plans.Invalidate(plan.StudentID)
	}
	return id, err
}

func (r *Plans) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	return r.next.GetByID(ctx, id)
}

func (r *Plans) GetByStudentAndName(ctx context.Context, studentID primitive.ObjectID, name string) (*domain.Plan, error) {
	return r.next.GetByStudentAndName(ctx, studentID, name)
}

func (r *Plans) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]domain.Plan, error) {
	if plans, ok := r.caches.Plans.Get(studentID); ok {
		return clonePlans(plans), nil
	}
	gen := r.caches.Plans.Generation()
	plans, err := r.next.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	r.caches.Plans.SetIfGeneration(studentID, gen, clonePlans(plans))
	return plans, nil
}

func (r *Plans) Update(ctx context.Context, plan *domain.Plan) error {
	err := r.next.Update(ctx, plan)
	if err == nil {
		r.caches.Plans.Invalidate(plan.StudentID)
	}
	return err
}

func (r *Plans) SetDisplayOrder(ctx context.Context, id primitive.ObjectID, order int) error {
	studentID, err := r.ownerOf(ctx, id)
	if err != nil {
		return err
	}
	err = r.next.SetDisplayOrder(ctx, id, order)
	if err == nil {
		r.caches.Plans.Invalidate(studentID)
	}
	return err
}

func (r *Plans) DeleteCascade(ctx context.Context, id primitive.ObjectID) error {
	studentID, err := r.ownerOf(ctx, id)
	if err != nil {
		return err
	}
	if err := r.next.DeleteCascade(ctx, id); err != nil {
		return err
	}
	r.caches.Plans.Invalidate(studentID)
	r.caches.Entries.Invalidate(id)
	r.caches.dropStudentDays(studentID, repository.DateRange{})
	return nil
}

func (r *Plans) ownerOf(ctx context.Context, id primitive.ObjectID) (primitive.ObjectID, error) {
	p, err := r.next.GetByID(ctx, id)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return p.StudentID, nil
}

func clonePlans(in []domain.Plan) []domain.Plan {
	out := make([]domain.Plan, len(in))
	for i, p := range in {
		if p.DisplayOrder != nil {
			o := *p.DisplayOrder
			p.DisplayOrder = &o
		}
		out[i] = p
	}
	return out
}

// ---- entries ----

// Entries caches ListByPlan per plan.
type Entries struct {
	next   repository.PlanEntryRepository
	caches *Caches
}

func (r *Entries) Create(ctx context.Context, entry *domain.PlanEntry) (primitive.ObjectID, error) {
	id, err := r.next.Create(ctx, entry)
	if err == nil {
		r.caches.Entries.Invalidate(entry.PlanID)
	}
	return id, err
}

func (r *Entries) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanEntry, error) {
	return r.next.GetByID(ctx, id)
}

func (r *Entries) ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanEntry, error) {
	if entries, ok := r.caches.Entries.Get(planID); ok {
		return append([]domain.PlanEntry(nil), entries...), nil
	}
	gen := r.caches.Entries.Generation()
	entries, err := r.next.ListByPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	r.caches.Entries.SetIfGeneration(planID, gen, append([]domain.PlanEntry(nil), entries...))
	return entries, nil
}

func (r *Entries) ListByPlans(ctx context.Context, planIDs []primitive.ObjectID) ([]domain.PlanEntry, error) {
	return r.next.ListByPlans(ctx, planIDs)
}

func (r *Entries) CountByPlan(ctx context.Context, planID primitive.ObjectID) (int64, error) {
	return r.next.CountByPlan(ctx, planID)
}

func (r *Entries) Update(ctx context.Context, entry *domain.PlanEntry) error {
	planID, err := r.planOf(ctx, entry.ID)
	if err != nil {
		return err
	}
	err = r.next.Update(ctx, entry)
	if err == nil {
		r.caches.Entries.Invalidate(planID)
	}
	return err
}

func (r *Entries) Delete(ctx context.Context, id primitive.ObjectID) error {
	planID, err := r.planOf(ctx, id)
	if err != nil {
		return err
	}
	err = r.next.Delete(ctx, id)
	if err == nil {
		r.caches.Entries.Invalidate(planID)
	}
	return err
}

func (r *Entries) planOf(ctx context.Context, id primitive.ObjectID) (primitive.ObjectID, error) {
	e, err := r.next.GetByID(ctx, id)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return e.PlanID, nil
}

// ---- check-ins ----

// CheckIns caches single-day ListByStudent reads. Ranges spanning several days are not cached.
type CheckIns struct {
	next   repository.CheckInRepository
	caches *Caches
}

func (r *CheckIns) Upsert(ctx context.Context, checkIn *domain.CheckIn) (*domain.CheckIn, error) {
	stored, err := r.next.Upsert(ctx, checkIn)
	if err == nil {
		r.caches.CheckIns.Invalidate(DayKey{checkIn.StudentID, checkIn.Date})
	}
	return stored, err
}

func (r *CheckIns) ListByStudent(ctx context.Context, studentID primitive.ObjectID, dates repository.DateRange) ([]domain.CheckIn, error) {
	if dates.From == "" || dates.From != dates.To {
		return r.next.ListByStudent(ctx, studentID, dates)
	}
	key := DayKey{studentID, dates.From}
	if rows, ok := r.caches.CheckIns.Get(key); ok {
		return append([]domain.CheckIn(nil), rows...), nil
	}
	gen := r.caches.CheckIns.Generation()
	rows, err := r.next.ListByStudent(ctx, studentID, dates)
	if err != nil {
		return nil, err
	}
	r.caches.CheckIns.SetIfGeneration(key, gen, append([]domain.CheckIn(nil), rows...))
	return rows, nil
}

func (r *CheckIns) DeleteByStudent(ctx context.Context, studentID primitive.ObjectID, dates repository.DateRange) (int64, error) {
	n, err := r.next.DeleteByStudent(ctx, studentID, dates)
	if err == nil {
		r.caches.dropStudentDays(studentID, dates)
	}
	return n, err
}

func (r *CheckIns) DeleteByEntry(ctx context.Context, entryID primitive.ObjectID) (int64, error) {
	n, err := r.next.DeleteByEntry(ctx, entryID)
	if err == nil {
		r.caches.dropDaysWithEntries(map[primitive.ObjectID]bool{entryID: true})
	}
	return n, err
}

// ---- student cleanup ----

type cleaner struct {
	next   repository.StudentCleaner
	plans  repository.PlanRepository
	caches *Caches
}

func (c *cleaner) DeleteStudentData(ctx context.Context, studentID primitive.ObjectID) error {
	plans, err := c.plans.ListByStudent(ctx, studentID)
	if err != nil {
		return err
	}
	if err := c.next.DeleteStudentData(ctx, studentID); err != nil {
		return err
	}
	c.caches.Plans.Invalidate(studentID)
	for _, p := range plans {
		c.caches.Entries.Invalidate(p.ID)
	}
	c.caches.dropStudentDays(studentID, repository.DateRange{})
	return nil
}
