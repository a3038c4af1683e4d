package service

import (
	"context"
	"time"

	"bassinifit/coach-app/internal/domain"
	"bassinifit/coach-app/internal/logger"
	"bassinifit/coach-app/internal/optimistic"
	"bassinifit/coach-app/internal/planning"
	"bassinifit/coach-app/internal/repository"
	"bassinifit/coach-app/internal/repository/cached"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DayEntry is a plan entry with its completion on one date.
type DayEntry struct {
	EntryDetail
	Done bool `json:"done"`
}

// PlanDay is what a student sees when opening one plan: the entries with their state for Date.
type PlanDay struct {
	Date               string            `json:"date"`
	Plan               domain.Plan       `json:"plan"`
	MuscleGroupSummary string            `json:"muscleGroupSummary"`
	RestDay            bool              `json:"restDay"`
	Entries            []DayEntry        `json:"entries"`
	Progress           planning.Progress `json:"progress"`
}

type ProgressService interface {
	// EntryCompletion reports whether the student marked the entry done on date. No record means not done.
	EntryCompletion(ctx context.Context, studentID, entryID primitive.ObjectID, date string) (bool, error)
	PlanProgress(ctx context.Context, studentID, planID primitive.ObjectID, date string) (*planning.Progress, error)
	// PlanDay returns one of the student's plans with per-entry completion. An empty date means today.
	PlanDay(ctx context.Context, studentID, planID primitive.ObjectID, date string) (*PlanDay, error)
	WeekOverview(ctx context.Context, studentID primitive.ObjectID) (*planning.WeekOverview, error)
	// ToggleCheckIn sets the completion of one entry on one date. Repeating it overwrites the same row.
	ToggleCheckIn(ctx context.Context, studentID, entryID primitive.ObjectID, date string, done bool) (*domain.CheckIn, error)
	// ResetWeek deletes the student's check-ins dated within [start, end].
	ResetWeek(ctx context.Context, studentID primitive.ObjectID, start, end string) (int64, error)
	ResetCurrentWeek(ctx context.Context, studentID primitive.ObjectID) (int64, error)
	// ResetAllCurrentWeeks runs ResetCurrentWeek for every active student.
	ResetAllCurrentWeeks(ctx context.Context) (students int, rows int64, err error)
}

type progressService struct {
	plans       PlanService
	profileRepo repository.ProfileRepository
	planRepo    repository.PlanRepository
	entryRepo   repository.PlanEntryRepository
	checkInRepo repository.CheckInRepository
	caches      *cached.Caches
	now         Clock
}

func NewProgressService(plans PlanService, store repository.Store, caches *cached.Caches, now Clock) ProgressService {
	if caches == nil {
		caches = cached.NewCaches(0)
	}
	return &progressService{
		plans:       plans,
		profileRepo: store.Profiles,
		planRepo:    store.Plans,
		entryRepo:   store.Entries,
		checkInRepo: store.CheckIns,
		caches:      caches,
		now:         now.orNow(),
	}
}

func (s *progressService) today() string {
	return domain.FormatDate(s.now())
}

// dateOrToday validates a YYYY-MM-DD date, defaulting to today.
func (s *progressService) dateOrToday(field, date string) (string, error) {
	if date == "" {
		return s.today(), nil
	}
	if _, err := domain.ParseDate(date); err != nil {
		return "", invalidFields("invalid date", map[string]string{field: "must be YYYY-MM-DD"})
	}
	return date, nil
}

func (s *progressService) completions(ctx context.Context, studentID primitive.ObjectID, date string) (planning.CompletionSet, error) {
	rows, err := s.checkInRepo.ListByStudent(ctx, studentID, repository.DateRange{From: date, To: date})
	if err != nil {
		return nil, err
	}
	return planning.NewCompletionSet(rows), nil
}

func (s *progressService) EntryCompletion(ctx context.Context, studentID, entryID primitive.ObjectID, date string) (bool, error) {
	date, err := s.dateOrToday("date", date)
	if err != nil {
		return false, err
	}
	done, err := s.completions(ctx, studentID, date)
	if err != nil {
		return false, err
	}
	return done.Done(entryID, date), nil
}

func (s *progressService) PlanProgress(ctx context.Context, studentID, planID primitive.ObjectID, date string) (*planning.Progress, error) {
	day, err := s.PlanDay(ctx, studentID, planID, date)
	if err != nil {
		return nil, err
	}
	return &day.Progress, nil
}

func (s *progressService) PlanDay(ctx context.Context, studentID, planID primitive.ObjectID, date string) (*PlanDay, error) {
	date, err := s.dateOrToday("date", date)
	if err != nil {
		return nil, err
	}
	detail, err := s.plans.GetStudentPlan(ctx, studentID, planID)
	if err != nil {
		return nil, err
	}
	done, err := s.completions(ctx, studentID, date)
	if err != nil {
		return nil, err
	}

	day := &PlanDay{
		Date:               date,
		Plan:               detail.Plan,
		MuscleGroupSummary: detail.MuscleGroupSummary,
		RestDay:            detail.Plan.IsRestDay(),
		Entries:            make([]DayEntry, len(detail.Entries)),
	}
	ids := make([]primitive.ObjectID, len(detail.Entries))
	for i, e := range detail.Entries {
		ids[i] = e.ID
		day.Entries[i] = DayEntry{EntryDetail: e, Done: done.Done(e.ID, date)}
	}
	day.Progress = planning.PlanProgress(ids, done, date)
	return day, nil
}

func (s *progressService) WeekOverview(ctx context.Context, studentID primitive.ObjectID) (*planning.WeekOverview, error) {
	plans, err := s.plans.ListPlans(ctx, studentID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	done, err := s.completions(ctx, studentID, domain.FormatDate(now))
	if err != nil {
		return nil, err
	}
	ov := planning.Overview(plans, done, now)
	return &ov, nil
}

func (s *progressService) ToggleCheckIn(ctx context.Context, studentID, entryID primitive.ObjectID, date string, done bool) (*domain.CheckIn, error) {
	// 1. Validate input and ownership
	date, err := s.dateOrToday("date", date)
	if err != nil {
		return nil, err
	}
	entry, err := s.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, notFound(err, ErrEntryNotFound)
	}
	plan, err := s.planRepo.GetByID(ctx, entry.PlanID)
	if err != nil {
		return nil, notFound(err, ErrPlanNotFound)
	}
	if plan.StudentID != studentID {
		return nil, ErrEntryAccessDenied
	}

	// 2. Optimistically flip the cached day, then write
	key := cached.DayKey{StudentID: studentID, Date: date}
	previous, hadPrevious := s.caches.CheckIns.Get(key)
	var stored *domain.CheckIn

	err = optimistic.Mutation{
		Action: "toggle check-in",
		Fields: logrus.Fields{"studentId": studentID.Hex(), "entryId": entryID.Hex(), "date": date, "done": done},
		Apply: func() {
			if !hadPrevious {
				return
			}
			s.caches.CheckIns.Set(key, withCheckIn(previous, studentID, entryID, date, done, s.now()))
		},
		Rollback: func() {
			if hadPrevious {
				s.caches.CheckIns.Set(key, previous)
				return
			}
			s.caches.CheckIns.Invalidate(key)
		},
		Commit: func(ctx context.Context) error {
			row, err := s.checkInRepo.Upsert(ctx, &domain.CheckIn{
				StudentID: studentID,
				EntryID:   entryID,
				Date:      date,
				Done:      done,
			})
			stored = row
			return err
		},
	}.Run(ctx)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// withCheckIn returns a copy of rows with the (entry, date) row set to done, appending it when missing.
func withCheckIn(rows []domain.CheckIn, studentID, entryID primitive.ObjectID, date string, done bool, now time.Time) []domain.CheckIn {
	out := make([]domain.CheckIn, 0, len(rows)+1)
	found := false
	for _, r := range rows {
		if r.EntryID == entryID && r.Date == date {
			r.Done = done
			r.UpdatedAt = now
			found = true
		}
		out = append(out, r)
	}
	if !found {
		out = append(out, domain.CheckIn{
			StudentID: studentID,
			EntryID:   entryID,
			Date:      date,
			Done:      done,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return out
}

func (s *progressService) ResetWeek(ctx context.Context, studentID primitive.ObjectID, start, end string) (int64, error) {
	fields := map[string]string{}
	if _, err := domain.ParseDate(start); err != nil {
		fields["weekStart"] = "must be YYYY-MM-DD"
	}
	if _, err := domain.ParseDate(end); err != nil {
		fields["weekEnd"] = "must be YYYY-MM-DD"
	}
	if len(fields) == 0 && end < start {
		fields["weekEnd"] = "must not be before weekStart"
	}
	if len(fields) > 0 {
		return 0, invalidFields("invalid week", fields)
	}

	n, err := s.checkInRepo.DeleteByStudent(ctx, studentID, repository.DateRange{From: start, To: end})
	if err != nil {
		logger.WithFields(logrus.Fields{
			"action":    "reset week",
			"studentId": studentID.Hex(),
			"weekStart": start,
			"weekEnd":   end,
		}).WithError(err).Error("Failed to reset week")
		return 0, err
	}
	return n, nil
}

func (s *progressService) ResetCurrentWeek(ctx context.Context, studentID primitive.ObjectID) (int64, error) {
	start, end := planning.WeekBounds(s.now())
	return s.ResetWeek(ctx, studentID, domain.FormatDate(start), domain.FormatDate(end))
}

func (s *progressService) ResetAllCurrentWeeks(ctx context.Context) (int, int64, error) {
	profiles, err := s.profileRepo.List(ctx)
	if err != nil {
		return 0, 0, err
	}
	students := 0
	var rows int64
	for _, p := range profiles {
		if !p.Active {
			continue
		}
		if err := ctx.Err(); err != nil {
			return students, rows, err
		}
		n, err := s.ResetCurrentWeek(ctx, p.ID)
		if err != nil {
			return students, rows, err
		}
		students++
		rows += n
	}
	return students, rows, nil
}
