package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/saliheu/mahkeme-randevu/internal/lock"
	"github.com/saliheu/mahkeme-randevu/internal/model"
	"github.com/saliheu/mahkeme-randevu/internal/notify"
)

// ReminderStats is the result payload of one reminder pass.
type ReminderStats struct {
	Candidates int    `json:"candidates"`
	Sent       int    `json:"sent"`
	Skipped    int    `json:"skipped"`
	Failed     int    `json:"failed"`
	LastError  string `json:"last_error,omitempty"`
}

// RunReminderPass sends next-day reminders for confirmed appointments
// whose owner's lead time maps to the current hour. Each appointment is
// handled under its own short lease so concurrent instances never
// double-send; delivery failures leave reminder_sent untouched and the
// row is retried on a later pass.
func (s *Scheduler) RunReminderPass(ctx context.Context) (ReminderStats, error) {
	var stats ReminderStats

	now := s.now().In(s.loc)
	tomorrow := time.Time(model.DateOf(now.AddDate(0, 0, 1)))

	candidates, err := s.appts.ListNeedingReminder(ctx, tomorrow, now.Hour())
	if err != nil {
		return stats, fmt.Errorf("list reminder candidates: %w", err)
	}
	stats.Candidates = len(candidates)

	var lastErr error
	for i := range candidates {
		appt := &candidates[i]
		switch err := s.remindOne(ctx, appt); {
		case err == nil:
			stats.Sent++
		case errors.Is(err, lock.ErrLockUnavailable):
			stats.Skipped++
		default:
			stats.Failed++
			lastErr = err
			log.Printf("%s: appointment %s: %v", JobReminder, appt.Code, err)
		}
	}

	if lastErr != nil {
		stats.LastError = lastErr.Error()
		return stats, fmt.Errorf("%d of %d reminders failed, last: %w", stats.Failed, stats.Candidates, lastErr)
	}
	return stats, nil
}

func (s *Scheduler) remindOne(ctx context.Context, appt *model.Appointment) error {
	key := "reminder:" + appt.ID.String()
	token, err := s.locker.TryAcquire(ctx, key, s.cfg.ReminderLockTTL)
	if err != nil {
		return err
	}
	defer func() {
		if _, err := s.locker.Release(ctx, key, token); err != nil {
			log.Printf("%s: release %s: %v", JobReminder, key, err)
		}
	}()

	// Re-read under the lease: another instance may have finished this
	// row between the candidate query and the acquire.
	current, err := s.appts.GetByID(ctx, appt.ID)
	if err != nil {
		return fmt.Errorf("reload appointment: %w", err)
	}
	if current.ReminderSent || current.Status != model.StatusConfirmed {
		return nil
	}

	citizen, err := s.users.GetByID(ctx, current.CitizenID)
	if err != nil {
		return fmt.Errorf("load citizen: %w", err)
	}

	courtName := ""
	if court, err := s.courts.GetByID(ctx, current.CourtID); err == nil {
		courtName = court.Name
	}

	summary := notify.AppointmentSummary{
		Code:      current.Code,
		CourtName: courtName,
		Date:      time.Time(current.Date).Format("2006-01-02"),
		Time:      current.Time,
		Operation: current.Operation,
	}
	to := notify.Recipient{
		Name:         citizen.FullName(),
		Email:        citizen.Email,
		Phone:        citizen.Phone,
		EmailEnabled: citizen.EmailEnabled,
		SMSEnabled:   citizen.SMSEnabled,
	}
	if err := s.notifier.SendAppointmentReminder(ctx, to, summary); err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}

	if err := s.appts.MarkReminderSent(ctx, current.ID); err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}

	apptID := current.ID
	citizenID := current.CitizenID
	event := &model.Event{
		ID:            uuid.New(),
		EventType:     model.EventReminderSent,
		UserID:        &citizenID,
		AppointmentID: &apptID,
		Details:       "reminder sent for " + current.Code,
	}
	if err := s.events.Create(ctx, event); err != nil {
		log.Printf("%s: audit event for %s: %v", JobReminder, current.Code, err)
	}
	return nil
}
