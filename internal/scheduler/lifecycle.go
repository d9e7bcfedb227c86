package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/saliheu/mahkeme-randevu/internal/model"
)

// NoShowStats is the result payload of one no-show closure pass.
type NoShowStats struct {
	Completed int64 `json:"completed"`
}

// PurgeStats is the result payload of one purge pass.
type PurgeStats struct {
	Deleted int64 `json:"deleted"`
}

const autoCompleteNote = "auto-completed: appointment time passed"

// RunNoShowPass completes confirmed appointments whose slot passed more
// than the grace period ago. One bulk conditional update, so a repeat
// run finds nothing left to close.
func (s *Scheduler) RunNoShowPass(ctx context.Context) (NoShowStats, error) {
	var stats NoShowStats

	now := s.now().In(s.loc)
	today := time.Time(model.DateOf(now))

	// The time cutoff only applies to rows dated today. When the grace
	// window reaches back across midnight, nothing from today is
	// overdue yet.
	cutoff := "00:00"
	if edge := now.Add(-s.cfg.NoShowGrace); edge.Day() == now.Day() {
		cutoff = edge.Format("15:04")
	}

	n, err := s.appts.AutoCompletePast(ctx, today, cutoff, autoCompleteNote)
	if err != nil {
		return stats, fmt.Errorf("auto-complete past appointments: %w", err)
	}
	stats.Completed = n
	if n > 0 {
		log.Printf("%s: auto-completed %d overdue appointments", JobNoShow, n)
	}
	return stats, nil
}

// RunPurgePass deletes cancelled and completed appointments older than
// the retention window.
func (s *Scheduler) RunPurgePass(ctx context.Context) (PurgeStats, error) {
	var stats PurgeStats

	now := s.now().In(s.loc)
	cutoff := time.Time(model.DateOf(now.Add(-s.cfg.RetainTerminal)))

	n, err := s.appts.PurgeTerminalBefore(ctx, cutoff)
	if err != nil {
		return stats, fmt.Errorf("purge terminal appointments: %w", err)
	}
	stats.Deleted = n
	if n > 0 {
		log.Printf("%s: purged %d terminal appointments older than %s", JobPurge, n, cutoff.Format("2006-01-02"))
	}
	return stats, nil
}
