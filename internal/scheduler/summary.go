package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/saliheu/mahkeme-randevu/internal/model"
	"github.com/saliheu/mahkeme-randevu/internal/notify"
	"github.com/saliheu/mahkeme-randevu/internal/repository"
)

// SummaryStats is the result payload of one daily-summary pass.
type SummaryStats struct {
	Courts    int    `json:"courts"`
	Sent      int    `json:"sent"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
	LastError string `json:"last_error,omitempty"`
}

// RunSummaryPass mails every court its digest of the day's confirmed
// appointments. Courts without a staff address are skipped; a failed
// delivery does not stop the remaining courts.
func (s *Scheduler) RunSummaryPass(ctx context.Context) (SummaryStats, error) {
	var stats SummaryStats

	now := s.now().In(s.loc)
	today := time.Time(model.DateOf(now))

	appts, _, err := s.appts.Find(ctx, repository.AppointmentFilter{
		Status:   model.StatusConfirmed,
		DateFrom: &today,
		DateTo:   &today,
	})
	if err != nil {
		return stats, fmt.Errorf("list today's appointments: %w", err)
	}

	// Group by court, keeping the repository's time ordering.
	order := make([]uuid.UUID, 0)
	byCourt := make(map[uuid.UUID][]model.Appointment)
	for _, a := range appts {
		if _, seen := byCourt[a.CourtID]; !seen {
			order = append(order, a.CourtID)
		}
		byCourt[a.CourtID] = append(byCourt[a.CourtID], a)
	}
	stats.Courts = len(order)

	var lastErr error
	for _, courtID := range order {
		if err := s.summarizeCourt(ctx, courtID, today, byCourt[courtID], &stats); err != nil {
			stats.Failed++
			lastErr = err
			log.Printf("%s: court %s: %v", JobSummary, courtID, err)
		}
	}

	if lastErr != nil {
		stats.LastError = lastErr.Error()
		return stats, fmt.Errorf("%d of %d summaries failed, last: %w", stats.Failed, stats.Courts, lastErr)
	}
	return stats, nil
}

func (s *Scheduler) summarizeCourt(
	ctx context.Context,
	courtID uuid.UUID,
	day time.Time,
	appts []model.Appointment,
	stats *SummaryStats,
) error {
	court, err := s.courts.GetByID(ctx, courtID)
	if err != nil {
		return fmt.Errorf("load court: %w", err)
	}
	if court.Email == "" {
		stats.Skipped++
		return nil
	}

	summaries := make([]notify.AppointmentSummary, 0, len(appts))
	for _, a := range appts {
		entry := notify.AppointmentSummary{
			Code:      a.Code,
			CourtName: court.Name,
			Date:      time.Time(a.Date).Format("2006-01-02"),
			Time:      a.Time,
			Operation: a.Operation,
		}
		if citizen, err := s.users.GetByID(ctx, a.CitizenID); err == nil {
			entry.CitizenName = citizen.FullName()
		}
		summaries = append(summaries, entry)
	}

	date := day.Format("2006-01-02")
	if err := s.notifier.SendDailyCourtSummary(ctx, court.Name, court.Email, date, summaries); err != nil {
		return fmt.Errorf("send summary: %w", err)
	}
	stats.Sent++
	return nil
}
