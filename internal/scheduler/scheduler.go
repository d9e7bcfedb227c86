// Package scheduler runs the recurring lifecycle passes of the booking
// core: reminder dispatch, no-show closure and terminal-row purging.
// Every pass is self-contained and idempotent, and takes a distributed
// lease keyed by its job name before doing anything, so any number of
// service instances can carry the same schedule without double-running.
package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/datatypes"

	"github.com/saliheu/mahkeme-randevu/internal/lock"
	"github.com/saliheu/mahkeme-randevu/internal/model"
	"github.com/saliheu/mahkeme-randevu/internal/notify"
	"github.com/saliheu/mahkeme-randevu/internal/repository"
)

// Job names double as the lock resource keys.
const (
	JobReminder = "appointment_reminder"
	JobSummary  = "daily_court_summary"
	JobNoShow   = "no_show_closure"
	JobPurge    = "terminal_purge"
)

// Config carries the cadence and lease knobs.
type Config struct {
	// Cron expressions (minute-resolution, five fields).
	ReminderSpec string
	SummarySpec  string
	NoShowSpec   string
	PurgeSpec    string

	// Lease TTLs. JobLockTTL bounds one whole pass; ReminderLockTTL
	// bounds the handling of a single appointment.
	JobLockTTL      time.Duration
	ReminderLockTTL time.Duration

	// How long a confirmed appointment may be overdue before the
	// no-show pass closes it.
	NoShowGrace time.Duration

	// Terminal rows older than this are purged.
	RetainTerminal time.Duration
}

// DefaultConfig mirrors the production cadence: reminders hourly,
// no-show closure nightly, purge weekly.
func DefaultConfig() Config {
	return Config{
		ReminderSpec:    "0 * * * *",
		SummarySpec:     "0 7 * * *",
		NoShowSpec:      "0 20 * * *",
		PurgeSpec:       "0 2 * * 0",
		JobLockTTL:      10 * time.Minute,
		ReminderLockTTL: 5 * time.Minute,
		NoShowGrace:     time.Hour,
		RetainTerminal:  365 * 24 * time.Hour,
	}
}

type Scheduler struct {
	cfg      Config
	cron     *cron.Cron
	appts    repository.AppointmentRepository
	users    repository.UserRepository
	courts   repository.CourtRepository
	events   repository.EventRepository
	jobs     repository.JobLogRepository
	locker   lock.Locker
	notifier notify.Notifier
	loc      *time.Location
	now      func() time.Time
}

func New(
	cfg Config,
	appts repository.AppointmentRepository,
	users repository.UserRepository,
	courts repository.CourtRepository,
	events repository.EventRepository,
	jobs repository.JobLogRepository,
	locker lock.Locker,
	notifier notify.Notifier,
	loc *time.Location,
) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cfg:      cfg,
		cron:     cron.New(cron.WithLocation(loc)),
		appts:    appts,
		users:    users,
		courts:   courts,
		events:   events,
		jobs:     jobs,
		locker:   locker,
		notifier: notifier,
		loc:      loc,
		now:      time.Now,
	}
}

// Start registers the cron entries and launches the timer loop.
func (s *Scheduler) Start() error {
	entries := []struct {
		spec string
		name string
		run  func(context.Context) (any, error)
	}{
		{s.cfg.ReminderSpec, JobReminder, func(ctx context.Context) (any, error) {
			st, err := s.RunReminderPass(ctx)
			return st, err
		}},
		{s.cfg.SummarySpec, JobSummary, func(ctx context.Context) (any, error) {
			st, err := s.RunSummaryPass(ctx)
			return st, err
		}},
		{s.cfg.NoShowSpec, JobNoShow, func(ctx context.Context) (any, error) {
			st, err := s.RunNoShowPass(ctx)
			return st, err
		}},
		{s.cfg.PurgeSpec, JobPurge, func(ctx context.Context) (any, error) {
			st, err := s.RunPurgePass(ctx)
			return st, err
		}},
	}

	for _, e := range entries {
		e := e
		if _, err := s.cron.AddFunc(e.spec, func() {
			s.runLocked(context.Background(), e.name, e.run)
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	log.Printf("scheduler started: %s %q, %s %q, %s %q, %s %q",
		JobReminder, s.cfg.ReminderSpec, JobSummary, s.cfg.SummarySpec,
		JobNoShow, s.cfg.NoShowSpec, JobPurge, s.cfg.PurgeSpec)
	return nil
}

// Stop halts the timer loop and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// runLocked guards one pass with the job-level lease and records the
// run in the job log. A busy lease means another instance is already
// on it: the pass is skipped, not failed.
func (s *Scheduler) runLocked(ctx context.Context, name string, run func(context.Context) (any, error)) {
	token, err := s.locker.TryAcquire(ctx, "job:"+name, s.cfg.JobLockTTL)
	if errors.Is(err, lock.ErrLockUnavailable) {
		log.Printf("%s: pass already running elsewhere, skipping", name)
		s.logRun(ctx, name, model.JobSkipped, nil, 0)
		return
	}
	if err != nil {
		log.Printf("%s: acquire job lock: %v", name, err)
		return
	}
	defer func() {
		if _, err := s.locker.Release(ctx, "job:"+name, token); err != nil {
			log.Printf("%s: release job lock: %v", name, err)
		}
	}()

	started := s.now()
	result, runErr := run(ctx)
	elapsed := s.now().Sub(started)

	outcome := model.JobSucceeded
	if runErr != nil {
		outcome = model.JobFailed
		log.Printf("%s: pass failed: %v", name, runErr)
	}
	s.logRun(ctx, name, outcome, result, elapsed)
}

func (s *Scheduler) logRun(ctx context.Context, name string, outcome model.JobOutcome, result any, elapsed time.Duration) {
	var payload datatypes.JSON
	if result != nil {
		if b, err := json.Marshal(result); err == nil {
			payload = b
		}
	}
	entry := &model.JobLog{
		ID:         uuid.New(),
		JobName:    name,
		Outcome:    outcome,
		Result:     payload,
		DurationMS: elapsed.Milliseconds(),
	}
	if err := s.jobs.Create(ctx, entry); err != nil {
		log.Printf("%s: write job log: %v", name, err)
	}
}
