// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"bassinifit/coach-app/internal/logger"

	"github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

// jobTimeout bounds one run of a job.
const jobTimeout = 2 * time.Minute

// WeekResetter clears the current week's check-ins of every active student.
type WeekResetter interface {
	ResetAllCurrentWeeks(ctx context.Context) (students int, rows int64, err error)
}

// Scheduler owns the cron runner.
type Scheduler struct {
	cron *cron.Cron
	loc  *time.Location
	jobs int
}

// New returns a scheduler that evaluates schedules in loc, the same zone the services use to
// decide which week is current. A nil loc means time.Local.
func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{cron: cron.NewWithLocation(loc), loc: loc}
}

// AddWeeklyReset registers the weekly check-in reset. Specs use robfig/cron syntax with a seconds
// field ("0 0 3 * * MON") or a descriptor ("@weekly"). An empty spec registers nothing.
func (s *Scheduler) AddWeeklyReset(spec string, resetter WeekResetter) error {
	if spec == "" {
		return nil
	}
	sched, err := cron.Parse(spec)
	if err != nil {
		return fmt.Errorf("invalid weekly reset schedule %q: %w", spec, err)
	}
	if err := s.cron.AddFunc(spec, func() { runWeeklyReset(resetter) }); err != nil {
		return err
	}
	s.jobs++
	logger.Infof("Scheduled weekly check-in reset: %s (%s), next run %s",
		spec, s.loc, s.nextRun(sched, time.Now()).Format(time.RFC3339))
	return nil
}

// nextRun is when sched fires after now, read on the scheduler's wall clock.
func (s *Scheduler) nextRun(sched cron.Schedule, now time.Time) time.Time {
	return sched.Next(now.In(s.loc))
}

// Jobs reports how many jobs are registered.
func (s *Scheduler) Jobs() int { return s.jobs }

// Start runs the scheduler in its own goroutine. It does nothing when no job is registered.
func (s *Scheduler) Start() {
	if s.jobs == 0 {
		return
	}
	s.cron.Start()
}

// Stop halts future runs. A job already running is not interrupted.
func (s *Scheduler) Stop() {
	if s.jobs == 0 {
		return
	}
	s.cron.Stop()
}

func runWeeklyReset(resetter WeekResetter) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	students, rows, err := resetter.ResetAllCurrentWeeks(ctx)
	entry := logger.WithFields(logrus.Fields{
		"job":      "weekly_reset",
		"students": students,
		"rows":     rows,
		"took":     time.Since(start).String(),
	})
	if err != nil {
		entry.WithError(err).Error("Weekly check-in reset failed")
		return
	}
	entry.Info("Weekly check-in reset finished")
}
