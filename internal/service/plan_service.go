package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"bassinifit/coach-app/internal/domain"
	"bassinifit/coach-app/internal/export"
	"bassinifit/coach-app/internal/logger"
	"bassinifit/coach-app/internal/optimistic"
	"bassinifit/coach-app/internal/planning"
	"bassinifit/coach-app/internal/repository"
	"bassinifit/coach-app/internal/repository/cached"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanNameTaken = errors.New("another plan of this student already has this name")
)

// ReorderError reports a reorder commit that stopped part way. The first Applied plans already
// carry their new rank; nothing is rolled back.
type ReorderError struct {
	Applied int
	Total   int
	Err     error
}

func (e *ReorderError) Error() string {
	return fmt.Sprintf("reorder stopped after %d of %d updates: %v", e.Applied, e.Total, e.Err)
}

func (e *ReorderError) Unwrap() error { return e.Err }

// PlanInput is an upsert request. Without ID, a plan of the same student with the same name is
// updated instead of creating a duplicate.
type PlanInput struct {
	ID           *primitive.ObjectID `json:"id"`
	Name         string              `json:"name"`
	DayType      domain.DayType      `json:"dayType"`
	DayOfWeek    string              `json:"dayOfWeek"`
	MuscleGroups string              `json:"muscleGroups"`
	Notes        string              `json:"notes"`
}

// EntryInput creates or edits a plan entry. On update, a nil ExerciseID or Position keeps the
// stored value.
type EntryInput struct {
	ExerciseID *primitive.ObjectID  `json:"exerciseId"`
	Sets       string               `json:"sets"`
	Reps       string               `json:"reps"`
	Rest       string               `json:"rest"`
	Category   domain.EntryCategory `json:"category"`
	Position   *int                 `json:"position"`
}

// EntryDetail is an entry joined with its exercise. Exercise is nil when it was deleted.
type EntryDetail struct {
	domain.PlanEntry
	Exercise *domain.Exercise `json:"exercise,omitempty"`
}

// PlanDetail is one plan with its joined entries.
type PlanDetail struct {
	Plan               domain.Plan   `json:"plan"`
	MuscleGroups       []string      `json:"muscleGroups"`
	MuscleGroupSummary string        `json:"muscleGroupSummary"`
	Entries            []EntryDetail `json:"entries"`
}

type PlanService interface {
	// ListPlans returns the student's plans annotated and in display order.
	ListPlans(ctx context.Context, studentID primitive.ObjectID) ([]planning.AggregatedPlan, error)
	GetPlan(ctx context.Context, planID primitive.ObjectID) (*PlanDetail, error)
	// GetStudentPlan is GetPlan restricted to plans owned by studentID.
	GetStudentPlan(ctx context.Context, studentID, planID primitive.ObjectID) (*PlanDetail, error)
	UpsertPlan(ctx context.Context, studentID primitive.ObjectID, in PlanInput) (*domain.Plan, error)
	// DeletePlan removes the plan with its entries and their check-ins as one unit.
	DeletePlan(ctx context.Context, planID primitive.ObjectID) error

	ListEntries(ctx context.Context, planID primitive.ObjectID) ([]EntryDetail, error)
	CreateEntry(ctx context.Context, planID primitive.ObjectID, in EntryInput) (*domain.PlanEntry, error)
	UpdateEntry(ctx context.Context, entryID primitive.ObjectID, in EntryInput) (*domain.PlanEntry, error)
	// DeleteEntry removes the entry and its check-ins. Positions of the other entries are kept.
	DeleteEntry(ctx context.Context, entryID primitive.ObjectID) error

	// ReorderPlans ranks the student's normal plans 1..n in the given order, one write per plan.
	ReorderPlans(ctx context.Context, studentID primitive.ObjectID, order []primitive.ObjectID) error
	// MovePlan drops dragID onto the position of overID. It reports whether the order changed.
	MovePlan(ctx context.Context, studentID, dragID, overID primitive.ObjectID) (bool, error)

	ExportPlans(ctx context.Context, studentID primitive.ObjectID, w io.Writer) error
}

type planService struct {
	profileRepo  repository.ProfileRepository
	planRepo     repository.PlanRepository
	entryRepo    repository.PlanEntryRepository
	exerciseRepo repository.ExerciseRepository
	checkInRepo  repository.CheckInRepository
	caches       *cached.Caches
	now          Clock
}

// NewPlanService wires the plan operations. caches may be nil; store should already be wrapped by
// cached.Wrap with the same caches.
func NewPlanService(store repository.Store, caches *cached.Caches, now Clock) PlanService {
	if caches == nil {
		caches = cached.NewCaches(0)
	}
	return &planService{
		profileRepo:  store.Profiles,
		planRepo:     store.Plans,
		entryRepo:    store.Entries,
		exerciseRepo: store.Exercises,
		checkInRepo:  store.CheckIns,
		caches:       caches,
		now:          now.orNow(),
	}
}

// === Plans ===

func (s *planService) ListPlans(ctx context.Context, studentID primitive.ObjectID) ([]planning.AggregatedPlan, error) {
	if _, err := s.profileRepo.GetByID(ctx, studentID); err != nil {
		return nil, notFound(err, ErrStudentNotFound)
	}
	plans, err := s.planRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return []planning.AggregatedPlan{}, nil
	}

	planIDs := make([]primitive.ObjectID, len(plans))
	for i, p := range plans {
		planIDs[i] = p.ID
	}
	entries, err := s.entryRepo.ListByPlans(ctx, planIDs)
	if err != nil {
		return nil, err
	}
	exercises, err := s.exerciseIndex(ctx, entries)
	if err != nil {
		return nil, err
	}

	byPlan := make(map[primitive.ObjectID][]planning.EntryView, len(plans))
	for _, e := range entries {
		byPlan[e.PlanID] = append(byPlan[e.PlanID], entryView(e, exercises))
	}
	inputs := make([]planning.PlanInput, len(plans))
	for i, p := range plans {
		inputs[i] = planning.PlanInput{Plan: p, Entries: byPlan[p.ID]}
	}
	return planning.Aggregate(inputs), nil
}

func (s *planService) GetPlan(ctx context.Context, planID primitive.ObjectID) (*PlanDetail, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, notFound(err, ErrPlanNotFound)
	}
	entries, err := s.ListEntries(ctx, planID)
	if err != nil {
		return nil, err
	}
	views := make([]planning.EntryView, len(entries))
	for i, e := range entries {
		views[i] = planning.EntryView{ID: e.ID, Category: e.Category}
		if e.Exercise != nil {
			views[i].MuscleGroup = e.Exercise.MuscleGroup
		}
	}
	agg := planning.Aggregate([]planning.PlanInput{{Plan: *plan, Entries: views}})[0]
	return &PlanDetail{
		Plan:               agg.Plan,
		MuscleGroups:       agg.MuscleGroups,
		MuscleGroupSummary: agg.MuscleGroupSummary,
		Entries:            entries,
	}, nil
}

func (s *planService) GetStudentPlan(ctx context.Context, studentID, planID primitive.ObjectID) (*PlanDetail, error) {
	detail, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if detail.Plan.StudentID != studentID {
		return nil, ErrPlanAccessDenied
	}
	return detail, nil
}

func (s *planService) UpsertPlan(ctx context.Context, studentID primitive.ObjectID, in PlanInput) (*domain.Plan, error) {
	log := logger.WithFields(logrus.Fields{"action": "save plan", "studentId": studentID.Hex()})

	// 1. Validate and normalize
	in.Name = strings.TrimSpace(in.Name)
	if in.DayType == "" {
		in.DayType = domain.DayTypeWorkout
	}
	fields := map[string]string{}
	if in.Name == "" {
		fields["name"] = "required"
	}
	if !in.DayType.Valid() {
		fields["dayType"] = "must be treino, descanso or treino_leve"
	}
	if len(fields) > 0 {
		return nil, invalidFields("invalid plan", fields)
	}
	kind := domain.PlanKindFromName(in.Name)
	switch kind {
	case domain.PlanKindWarmup:
		in.Name = domain.WarmupPlanName
	case domain.PlanKindCardio:
		in.Name = domain.CardioPlanName
	}

	if _, err := s.profileRepo.GetByID(ctx, studentID); err != nil {
		return nil, notFound(err, ErrStudentNotFound)
	}

	// 2. Find the row to update: explicit id first, then same name.
	var existing *domain.Plan
	if in.ID != nil {
		p, err := s.planRepo.GetByID(ctx, *in.ID)
		if err != nil {
			return nil, notFound(err, ErrPlanNotFound)
		}
		if p.StudentID != studentID {
			return nil, ErrPlanAccessDenied
		}
		existing = p
	} else {
		p, err := s.planRepo.GetByStudentAndName(ctx, studentID, in.Name)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		existing = p
	}

	// 3. Insert
	if existing == nil {
		plan := &domain.Plan{
			StudentID:    studentID,
			Name:         in.Name,
			Kind:         kind,
			DayType:      in.DayType,
			DayOfWeek:    in.DayOfWeek,
			MuscleGroups: in.MuscleGroups,
			Notes:        in.Notes,
		}
		if _, err := s.planRepo.Create(ctx, plan); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return nil, ErrPlanNameTaken
			}
			log.WithError(err).Error("Failed to create plan")
			return nil, err
		}
		log.WithField("planId", plan.ID.Hex()).Info("Plan created")
		return plan, nil
	}

	// 4. Update in place
	existing.Name = in.Name
	existing.Kind = kind
	existing.DayType = in.DayType
	existing.DayOfWeek = in.DayOfWeek
	existing.MuscleGroups = in.MuscleGroups
	existing.Notes = in.Notes
	if err := s.planRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrPlanNameTaken
		}
		log.WithError(err).Error("Failed to update plan")
		return nil, notFound(err, ErrPlanNotFound)
	}
	return existing, nil
}

func (s *planService) DeletePlan(ctx context.Context, planID primitive.ObjectID) error {
	if err := s.planRepo.DeleteCascade(ctx, planID); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.WithFields(logrus.Fields{"action": "delete plan", "planId": planID.Hex()}).WithError(err).Error("Failed to delete plan")
		}
		return notFound(err, ErrPlanNotFound)
	}
	return nil
}

// === Entries ===

func (s *planService) ListEntries(ctx context.Context, planID primitive.ObjectID) ([]EntryDetail, error) {
	entries, err := s.entryRepo.ListByPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	exercises, err := s.exerciseIndex(ctx, entries)
	if err != nil {
		return nil, err
	}
	out := make([]EntryDetail, len(entries))
	for i, e := range entries {
		out[i] = EntryDetail{PlanEntry: e}
		if ex, ok := exercises[e.ExerciseID]; ok {
			ex := ex
			out[i].Exercise = &ex
		}
	}
	return out, nil
}

func (s *planService) CreateEntry(ctx context.Context, planID primitive.ObjectID, in EntryInput) (*domain.PlanEntry, error) {
	if in.ExerciseID == nil || in.ExerciseID.IsZero() {
		return nil, invalidFields("invalid plan entry", map[string]string{"exerciseId": "required"})
	}
	category := in.Category.OrDefault()
	if !category.Valid() {
		return nil, invalidFields("invalid plan entry", map[string]string{"category": "must be warmup, exercise or cardio"})
	}
	if _, err := s.planRepo.GetByID(ctx, planID); err != nil {
		return nil, notFound(err, ErrPlanNotFound)
	}
	if _, err := s.exerciseRepo.GetByID(ctx, *in.ExerciseID); err != nil {
		return nil, notFound(err, ErrExerciseNotFound)
	}

	count, err := s.entryRepo.CountByPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	entry := &domain.PlanEntry{
		PlanID:     planID,
		ExerciseID: *in.ExerciseID,
		Sets:       strings.TrimSpace(in.Sets),
		Reps:       strings.TrimSpace(in.Reps),
		Rest:       strings.TrimSpace(in.Rest),
		Position:   int(count) + 1,
		Category:   category,
	}
	if _, err := s.entryRepo.Create(ctx, entry); err != nil {
		logger.WithFields(logrus.Fields{"action": "add exercise to plan", "planId": planID.Hex()}).WithError(err).Error("Failed to create plan entry")
		return nil, err
	}
	return entry, nil
}

func (s *planService) UpdateEntry(ctx context.Context, entryID primitive.ObjectID, in EntryInput) (*domain.PlanEntry, error) {
	entry, err := s.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, notFound(err, ErrEntryNotFound)
	}
	if in.ExerciseID != nil && *in.ExerciseID != entry.ExerciseID {
		if _, err := s.exerciseRepo.GetByID(ctx, *in.ExerciseID); err != nil {
			return nil, notFound(err, ErrExerciseNotFound)
		}
		entry.ExerciseID = *in.ExerciseID
	}
	if in.Category != "" {
		if !in.Category.Valid() {
			return nil, invalidFields("invalid plan entry", map[string]string{"category": "must be warmup, exercise or cardio"})
		}
		entry.Category = in.Category
	}
	if in.Position != nil {
		if *in.Position < 1 {
			return nil, invalidFields("invalid plan entry", map[string]string{"position": "must be at least 1"})
		}
		entry.Position = *in.Position
	}
	entry.Sets = strings.TrimSpace(in.Sets)
	entry.Reps = strings.TrimSpace(in.Reps)
	entry.Rest = strings.TrimSpace(in.Rest)

	if err := s.entryRepo.Update(ctx, entry); err != nil {
		return nil, notFound(err, ErrEntryNotFound)
	}
	return entry, nil
}

func (s *planService) DeleteEntry(ctx context.Context, entryID primitive.ObjectID) error {
	if _, err := s.entryRepo.GetByID(ctx, entryID); err != nil {
		return notFound(err, ErrEntryNotFound)
	}
	log := logger.WithFields(logrus.Fields{"action": "remove exercise from plan", "entryId": entryID.Hex()})
	if _, err := s.checkInRepo.DeleteByEntry(ctx, entryID); err != nil {
		log.WithError(err).Error("Failed to delete check-ins of entry")
		return err
	}
	if err := s.entryRepo.Delete(ctx, entryID); err != nil {
		log.WithError(err).Error("Failed to delete plan entry")
		return notFound(err, ErrEntryNotFound)
	}
	return nil
}

// === Ordering ===

func (s *planService) ReorderPlans(ctx context.Context, studentID primitive.ObjectID, order []primitive.ObjectID) error {
	plans, err := s.planRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return err
	}
	var current []primitive.ObjectID
	for _, p := range plans {
		if !p.Kind.IsSpecial() {
			current = append(current, p.ID)
		}
	}
	if err := planning.ValidatePermutation(current, order); err != nil {
		return invalid(err.Error())
	}

	rank := make(map[primitive.ObjectID]int, len(order))
	for i, id := range order {
		rank[id] = i + 1
	}

	return optimistic.Mutation{
		Action: "reorder plans",
		Fields: logrus.Fields{"studentId": studentID.Hex()},
		Apply: func() {
			cachedPlans, ok := s.caches.Plans.Get(studentID)
			if !ok {
				return
			}
			next := make([]domain.Plan, len(cachedPlans))
			for i, p := range cachedPlans {
				if r, ok := rank[p.ID]; ok {
					r := r
					p.DisplayOrder = &r
				}
				next[i] = p
			}
			s.caches.Plans.Set(studentID, next)
		},
		Rollback: func() {
			s.caches.Plans.Invalidate(studentID)
		},
		Commit: func(ctx context.Context) error {
			for i, id := range order {
				if err := s.planRepo.SetDisplayOrder(ctx, id, i+1); err != nil {
					return &ReorderError{Applied: i, Total: len(order), Err: err}
				}
			}
			return nil
		},
	}.Run(ctx)
}

func (s *planService) MovePlan(ctx context.Context, studentID, dragID, overID primitive.ObjectID) (bool, error) {
	plans, err := s.ListPlans(ctx, studentID)
	if err != nil {
		return false, err
	}
	session := planning.NewReorderSession(planning.NormalPlanIDs(plans))
	if err := session.Start(dragID); err != nil {
		return false, invalidFields("invalid move", map[string]string{"planId": err.Error()})
	}
	if err := session.DragOver(overID); err != nil {
		session.Cancel()
		return false, invalidFields("invalid move", map[string]string{"overId": err.Error()})
	}
	changed, order := session.Drop()
	if !changed {
		return false, nil
	}
	if err := s.ReorderPlans(ctx, studentID, order); err != nil {
		return false, err
	}
	return true, nil
}

// === Export ===

func (s *planService) ExportPlans(ctx context.Context, studentID primitive.ObjectID, w io.Writer) error {
	profile, err := s.profileRepo.GetByID(ctx, studentID)
	if err != nil {
		return notFound(err, ErrStudentNotFound)
	}
	plans, err := s.ListPlans(ctx, studentID)
	if err != nil {
		return err
	}
	today := domain.FormatDate(s.now())
	checkIns, err := s.checkInRepo.ListByStudent(ctx, studentID, repository.DateRange{From: today, To: today})
	if err != nil {
		return err
	}
	done := planning.NewCompletionSet(checkIns)

	wb := export.Workbook{StudentName: profile.Name, Date: today}
	for _, p := range plans {
		entries, err := s.ListEntries(ctx, p.Plan.ID)
		if err != nil {
			return err
		}
		progress := planning.PlanProgress(p.EntryIDs, done, today)
		sheet := export.Plan{
			Name:         p.Plan.Name,
			DayType:      string(p.Plan.DayType),
			DayOfWeek:    p.Plan.DayOfWeek,
			MuscleGroups: p.MuscleGroupSummary,
			Notes:        p.Plan.Notes,
			Completed:    progress.Completed,
			Total:        progress.Total,
		}
		for _, e := range entries {
			row := export.Entry{Category: string(e.Category), Sets: e.Sets, Reps: e.Reps, Rest: e.Rest}
			if e.Exercise != nil {
				row.Exercise = e.Exercise.Name
				row.MuscleGroup = e.Exercise.MuscleGroup
			}
			sheet.Entries = append(sheet.Entries, row)
		}
		wb.Plans = append(wb.Plans, sheet)
	}
	return export.Write(w, wb)
}

// === Helpers ===

func (s *planService) exerciseIndex(ctx context.Context, entries []domain.PlanEntry) (map[primitive.ObjectID]domain.Exercise, error) {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, e := range entries {
		if !seen[e.ExerciseID] {
			seen[e.ExerciseID] = true
			ids = append(ids, e.ExerciseID)
		}
	}
	index := make(map[primitive.ObjectID]domain.Exercise, len(ids))
	if len(ids) == 0 {
		return index, nil
	}
	exercises, err := s.exerciseRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, ex := range exercises {
		index[ex.ID] = ex
	}
	return index, nil
}

func entryView(e domain.PlanEntry, exercises map[primitive.ObjectID]domain.Exercise) planning.EntryView {
	v := planning.EntryView{ID: e.ID, Category: e.Category}
	if ex, ok := exercises[e.ExerciseID]; ok {
		v.MuscleGroup = ex.MuscleGroup
	}
	return v
}
