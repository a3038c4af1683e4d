// Package memory keeps every collection in process memory. It backs the "memory" database driver
// for local runs and is the storage double in service tests.
package memory

import (
	"bassinifit/coach-app/internal/domain"
	"bassinifit/coach-app/internal/repository"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DB is the shared state behind all repositories of one store. A single lock makes
// cascades atomic.
type DB struct {
	mu           sync.RWMutex
	users        map[primitive.ObjectID]domain.User
	profiles     map[primitive.ObjectID]domain.StudentProfile
	exercises    map[primitive.ObjectID]domain.Exercise
	muscleGroups map[primitive.ObjectID]domain.MuscleGroup
	plans        map[primitive.ObjectID]domain.Plan
	entries      map[primitive.ObjectID]domain.PlanEntry
	checkIns     map[primitive.ObjectID]domain.CheckIn
	photos       map[primitive.ObjectID]domain.Photo

	// now is the clock used for timestamps; tests replace it to get distinct creation times.
	now func() time.Time
}

func NewDB() *DB {
	return &DB{
		users:        map[primitive.ObjectID]domain.User{},
		profiles:     map[primitive.ObjectID]domain.StudentProfile{},
		exercises:    map[primitive.ObjectID]domain.Exercise{},
		muscleGroups: map[primitive.ObjectID]domain.MuscleGroup{},
		plans:        map[primitive.ObjectID]domain.Plan{},
		entries:      map[primitive.ObjectID]domain.PlanEntry{},
		checkIns:     map[primitive.ObjectID]domain.CheckIn{},
		photos:       map[primitive.ObjectID]domain.Photo{},
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the timestamp source.
func (db *DB) SetClock(now func() time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.now = now
}

// NewStore builds every repository over a fresh DB.
func NewStore() repository.Store {
	return NewDB().Store()
}

// Store returns repositories sharing db.
func (db *DB) Store() repository.Store {
	return repository.Store{
		Users:        &userRepository{db},
		Profiles:     &profileRepository{db},
		Exercises:    &exerciseRepository{db},
		MuscleGroups: &muscleGroupRepository{db},
		Plans:        &planRepository{db},
		Entries:      &entryRepository{db},
		CheckIns:     &checkInRepository{db},
		Photos:       &photoRepository{db},
		Cleaner:      &studentCleaner{db},
	}
}

// ---- users ----

type userRepository struct{ db *DB }

func (r *userRepository) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range r.db.users {
		if u.Email == email {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	user.ID = primitive.NewObjectID()
	user.Email = email
	user.CreatedAt = r.db.now()
	user.UpdatedAt = user.CreatedAt
	r.db.users[user.ID] = *user
	return user.ID, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepository) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var n int64
	for _, u := range r.db.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *userRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.users, id)
	return nil
}

// ---- profiles ----

type profileRepository struct{ db *DB }

func (r *profileRepository) Create(_ context.Context, p *domain.StudentProfile) (primitive.ObjectID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.profiles {
		if existing.UserID == p.UserID {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	p.ID = primitive.NewObjectID()
	p.CreatedAt = r.db.now()
	p.UpdatedAt = p.CreatedAt
	r.db.profiles[p.ID] = *p
	return p.ID, nil
}

func (r *profileRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.StudentProfile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	p, ok := r.db.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *profileRepository) GetByUserID(_ context.Context, userID primitive.ObjectID) (*domain.StudentProfile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, p := range r.db.profiles {
		if p.UserID == userID {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *profileRepository) List(_ context.Context) ([]domain.StudentProfile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]domain.StudentProfile, 0, len(r.db.profiles))
	for _, p := range r.db.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *profileRepository) Update(_ context.Context, p *domain.StudentProfile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.profiles[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	p.UserID = existing.UserID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = r.db.now()
	r.db.profiles[p.ID] = *p
	return nil
}

func (r *profileRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.profiles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.profiles, id)
	return nil
}

// ---- exercises ----

type exerciseRepository struct{ db *DB }

func (r *exerciseRepository) nameTaken(name string, except primitive.ObjectID) bool {
	for id, e := range r.db.exercises {
		if id != except && strings.EqualFold(e.Name, name) {
			return true
		}
	}
	return false
}

func (r *exerciseRepository) Create(_ context.Context, e *domain.Exercise) (primitive.ObjectID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.nameTaken(e.Name, primitive.NilObjectID) {
		return primitive.NilObjectID, repository.ErrConflict
	}
	e.ID = primitive.NewObjectID()
	e.CreatedAt = r.db.now()
	e.UpdatedAt = e.CreatedAt
	r.db.exercises[e.ID] = *e
	return e.ID, nil
}

func (r *exerciseRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	e, ok := r.db.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *exerciseRepository) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Exercise, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []domain.Exercise{}
	for _, id := range ids {
		if e, ok := r.db.exercises[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *exerciseRepository) List(_ context.Context) ([]domain.Exercise, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]domain.Exercise, 0, len(r.db.exercises))
	for _, e := range r.db.exercises {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *exerciseRepository) Update(_ context.Context, e *domain.Exercise) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.exercises[e.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.nameTaken(e.Name, e.ID) {
		return repository.ErrConflict
	}
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = r.db.now()
	r.db.exercises[e.ID] = *e
	return nil
}

func (r *exerciseRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.exercises, id)
	return nil
}

// ---- muscle groups ----

type muscleGroupRepository struct{ db *DB }

func (r *muscleGroupRepository) nameTaken(name string, except primitive.ObjectID) bool {
	for id, g := range r.db.muscleGroups {
		if id != except && g.Name == name {
			return true
		}
	}
	return false
}

func (r *muscleGroupRepository) Create(_ context.Context, g *domain.MuscleGroup) (primitive.ObjectID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.nameTaken(g.Name, primitive.NilObjectID) {
		return primitive.NilObjectID, repository.ErrConflict
	}
	g.ID = primitive.NewObjectID()
	g.CreatedAt = r.db.now()
	r.db.muscleGroups[g.ID] = *g
	return g.ID, nil
}

func (r *muscleGroupRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.MuscleGroup, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	g, ok := r.db.muscleGroups[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func (r *muscleGroupRepository) List(_ context.Context) ([]domain.MuscleGroup, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]domain.MuscleGroup, 0, len(r.db.muscleGroups))
	for _, g := range r.db.muscleGroups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *muscleGroupRepository) Update(_ context.Context, g *domain.MuscleGroup) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.muscleGroups[g.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.nameTaken(g.Name, g.ID) {
		return repository.ErrConflict
	}
	existing.Name = g.Name
	r.db.muscleGroups[g.ID] = existing
	*g = existing
	return nil
}

func (r *muscleGroupRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.muscleGroups[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.muscleGroups, id)
	return nil
}

// ---- plans ----

type planRepository struct{ db *DB }

func (r *planRepository) Create(_ context.Context, p *domain.Plan) (primitive.ObjectID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.plans {
		if existing.StudentID == p.StudentID && existing.Name == p.Name {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	p.ID = primitive.NewObjectID()
	p.CreatedAt = r.db.now()
	p.UpdatedAt = p.CreatedAt
	r.db.plans[p.ID] = clonePlan(*p)
	return p.ID, nil
}

func (r *planRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	p, ok := r.db.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p = clonePlan(p)
	return &p, nil
}

func (r *planRepository) GetByStudentAndName(_ context.Context, studentID primitive.ObjectID, name string) (*domain.Plan, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, p := range r.db.plans {
		if p.StudentID == studentID && p.Name == name {
			p = clonePlan(p)
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *planRepository) ListByStudent(_ context.Context, studentID primitive.ObjectID) ([]domain.Plan, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []domain.Plan{}
	for _, p := range r.db.plans {
		if p.StudentID == studentID {
			out = append(out, clonePlan(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *planRepository) Update(_ context.Context, p *domain.Plan) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.plans[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, other := range r.db.plans {
		if id != p.ID && other.StudentID == existing.StudentID && other.Name == p.Name {
			return repository.ErrConflict
		}
	}
	existing.Name = p.Name
	existing.Kind = p.Kind
	existing.DayType = p.DayType
	existing.DayOfWeek = p.DayOfWeek
	existing.MuscleGroups = p.MuscleGroups
	existing.Notes = p.Notes
	existing.UpdatedAt = r.db.now()
	r.db.plans[p.ID] = existing
	*p = clonePlan(existing)
	return nil
}

func (r *planRepository) SetDisplayOrder(_ context.Context, id primitive.ObjectID, order int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.plans[id]
	if !ok {
		return repository.ErrNotFound
	}
	o := order
	p.DisplayOrder = &o
	p.UpdatedAt = r.db.now()
	r.db.plans[id] = p
	return nil
}

func (r *planRepository) DeleteCascade(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.plans[id]; !ok {
		return repository.ErrNotFound
	}
	r.db.deletePlanLocked(id)
	return nil
}

func (db *DB) deletePlanLocked(planID primitive.ObjectID) {
	for entryID, e := range db.entries {
		if e.PlanID != planID {
			continue
		}
		for checkInID, c := range db.checkIns {
			if c.EntryID == entryID {
				delete(db.checkIns, checkInID)
			}
		}
		delete(db.entries, entryID)
	}
	delete(db.plans, planID)
}

func clonePlan(p domain.Plan) domain.Plan {
	if p.DisplayOrder != nil {
		o := *p.DisplayOrder
		p.DisplayOrder = &o
	}
	return p
}

// ---- plan entries ----

type entryRepository struct{ db *DB }

func (r *entryRepository) Create(_ context.Context, e *domain.PlanEntry) (primitive.ObjectID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	e.ID = primitive.NewObjectID()
	e.CreatedAt = r.db.now()
	e.Category = e.Category.OrDefault()
	r.db.entries[e.ID] = *e
	return e.ID, nil
}

func (r *entryRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.PlanEntry, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	e, ok := r.db.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *entryRepository) ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanEntry, error) {
	return r.ListByPlans(ctx, []primitive.ObjectID{planID})
}

func (r *entryRepository) ListByPlans(_ context.Context, planIDs []primitive.ObjectID) ([]domain.PlanEntry, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	wanted := make(map[primitive.ObjectID]bool, len(planIDs))
	for _, id := range planIDs {
		wanted[id] = true
	}
	out := []domain.PlanEntry{}
	for _, e := range r.db.entries {
		if wanted[e.PlanID] {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlanID != out[j].PlanID {
			return out[i].PlanID.Hex() < out[j].PlanID.Hex()
		}
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (r *entryRepository) CountByPlan(_ context.Context, planID primitive.ObjectID) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var n int64
	for _, e := range r.db.entries {
		if e.PlanID == planID {
			n++
		}
	}
	return n, nil
}

func (r *entryRepository) Update(_ context.Context, e *domain.PlanEntry) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.entries[e.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.ExerciseID = e.ExerciseID
	existing.Sets = e.Sets
	existing.Reps = e.Reps
	existing.Rest = e.Rest
	existing.Position = e.Position
	existing.Category = e.Category.OrDefault()
	r.db.entries[e.ID] = existing
	*e = existing
	return nil
}

func (r *entryRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.entries[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.entries, id)
	return nil
}

// ---- check-ins ----

type checkInRepository struct{ db *DB }

func (r *checkInRepository) Upsert(_ context.Context, c *domain.CheckIn) (*domain.CheckIn, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := r.db.now()
	for id, existing := range r.db.checkIns {
		if existing.StudentID == c.StudentID && existing.EntryID == c.EntryID && existing.Date == c.Date {
			existing.Done = c.Done
			existing.UpdatedAt = now
			r.db.checkIns[id] = existing
			return &existing, nil
		}
	}
	stored := *c
	stored.ID = primitive.NewObjectID()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.db.checkIns[stored.ID] = stored
	return &stored, nil
}

func (r *checkInRepository) ListByStudent(_ context.Context, studentID primitive.ObjectID, dates repository.DateRange) ([]domain.CheckIn, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []domain.CheckIn{}
	for _, c := range r.db.checkIns {
		if c.StudentID == studentID && dates.Contains(c.Date) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *checkInRepository) DeleteByStudent(_ context.Context, studentID primitive.ObjectID, dates repository.DateRange) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, c := range r.db.checkIns {
		if c.StudentID == studentID && dates.Contains(c.Date) {
			delete(r.db.checkIns, id)
			n++
		}
	}
	return n, nil
}

func (r *checkInRepository) DeleteByEntry(_ context.Context, entryID primitive.ObjectID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, c := range r.db.checkIns {
		if c.EntryID == entryID {
			delete(r.db.checkIns, id)
			n++
		}
	}
	return n, nil
}

// ---- photos ----

type photoRepository struct{ db *DB }

func (r *photoRepository) Create(_ context.Context, p *domain.Photo) (primitive.ObjectID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = r.db.now()
	r.db.photos[p.ID] = *p
	return p.ID, nil
}

func (r *photoRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Photo, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	p, ok := r.db.photos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *photoRepository) ListByStudent(_ context.Context, studentID primitive.ObjectID) ([]domain.Photo, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []domain.Photo{}
	for _, p := range r.db.photos {
		if p.StudentID == studentID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PhotoDate != out[j].PhotoDate {
			return out[i].PhotoDate > out[j].PhotoDate
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *photoRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.photos[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.photos, id)
	return nil
}

// ---- student cleanup ----

type studentCleaner struct{ db *DB }

func (c *studentCleaner) DeleteStudentData(_ context.Context, studentID primitive.ObjectID) error {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	for id, ci := range c.db.checkIns {
		if ci.StudentID == studentID {
			delete(c.db.checkIns, id)
		}
	}
	for id, p := range c.db.photos {
		if p.StudentID == studentID {
			delete(c.db.photos, id)
		}
	}
	for id, p := range c.db.plans {
		if p.StudentID == studentID {
			c.db.deletePlanLocked(id)
		}
	}
	return nil
}
