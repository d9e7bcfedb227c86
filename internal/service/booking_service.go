package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saliheu/mahkeme-randevu/internal/calendar"
	"github.com/saliheu/mahkeme-randevu/internal/model"
	"github.com/saliheu/mahkeme-randevu/internal/notify"
	"github.com/saliheu/mahkeme-randevu/internal/repository"
)

// BookingService is the booking transaction manager and appointment
// state machine. All slot-occupancy, daily-limit and code-uniqueness
// checks for one booking attempt run inside a single serializable
// transaction against the authoritative store.
type BookingService struct {
	db       *gorm.DB
	appts    repository.AppointmentRepository
	courts   repository.CourtRepository
	users    repository.UserRepository
	events   repository.EventRepository
	notifier notify.Notifier
	loc      *time.Location
	now      func() time.Time
}

func NewBookingService(
	db *gorm.DB,
	appts repository.AppointmentRepository,
	courts repository.CourtRepository,
	users repository.UserRepository,
	events repository.EventRepository,
	notifier notify.Notifier,
	loc *time.Location,
) *BookingService {
	if loc == nil {
		loc = time.UTC
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier()
	}
	return &BookingService{
		db:       db,
		appts:    appts,
		courts:   courts,
		users:    users,
		events:   events,
		notifier: notifier,
		loc:      loc,
		now:      time.Now,
	}
}

// CreateParams describes one booking attempt.
type CreateParams struct {
	CitizenID uuid.UUID
	CourtID   uuid.UUID
	JudgeID   *uuid.UUID
	Date      time.Time // calendar day; clock part is ignored
	Time      string    // slot start, "HH:MM"
	Operation model.OperationType
	Notes     string
	// Staff-created appointments start confirmed instead of pending.
	StaffBooked bool
}

// Create reserves a slot all-or-nothing. Exactly one of any set of
// concurrent attempts for the same slot succeeds; the rest receive
// ErrSlotTaken.
func (s *BookingService) Create(ctx context.Context, p CreateParams) (*model.Appointment, error) {
	citizen, err := s.validateCitizen(ctx, p.CitizenID)
	if err != nil {
		return nil, err
	}

	day := time.Time(model.DateOf(p.Date))
	if err := s.checkNotPast(day, p.Time); err != nil {
		return nil, err
	}
	if err := s.checkWithinWindow(ctx, s.courts, p.CourtID, p.JudgeID, day, p.Time); err != nil {
		return nil, err
	}

	status := model.StatusPending
	if p.StaffBooked {
		status = model.StatusConfirmed
	}

	appt := &model.Appointment{
		ID:        uuid.New(),
		CitizenID: p.CitizenID,
		CourtID:   p.CourtID,
		JudgeID:   p.JudgeID,
		Date:      model.DateOf(day),
		Time:      p.Time,
		Operation: p.Operation,
		Status:    status,
		SlotKey:   model.SlotKeyFor(p.CourtID, p.JudgeID, day, p.Time),
		Notes:     p.Notes,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.NewGormAppointmentRepository(tx)

		taken, err := r.SlotTaken(ctx, appt.SlotKey, nil)
		if err != nil {
			return err
		}
		if taken {
			return ErrSlotTaken
		}

		active, err := r.CountActiveForCitizen(ctx, p.CitizenID, day)
		if err != nil {
			return err
		}
		if active >= MaxDailyAppointments {
			return ErrDailyLimitExceeded
		}

		code, err := generateUniqueCode(func(c string) (bool, error) {
			return r.CodeExists(ctx, c)
		})
		if err != nil {
			return err
		}
		appt.Code = code

		return r.Create(ctx, appt)
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		if isUniqueViolation(err) {
			// The partial unique index on the slot key fired at commit:
			// a concurrent transaction reserved the slot first.
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	s.audit(ctx, model.EventAppointmentCreated, &p.CitizenID, &appt.ID,
		fmt.Sprintf("code=%s slot=%s", appt.Code, appt.SlotKey))
	s.notifyStatus(ctx, citizen, appt, status)

	return appt, nil
}

// UpdateParams is the patch accepted for an existing appointment.
// Nil fields stay unchanged.
type UpdateParams struct {
	Date      *time.Time
	Time      *string
	Operation model.OperationType
	Notes     *string
}

// Update reschedules or annotates an appointment. Date/time changes
// re-run the window and occupancy checks against the new slot,
// excluding the appointment's own row, inside one transaction.
// Terminal appointments reject every mutation.
func (s *BookingService) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (*model.Appointment, error) {
	var updated *model.Appointment

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repository.NewGormAppointmentRepository(tx)
		// Every read inside the transaction must ride the tx
		// connection, the court lookup included.
		courts := repository.NewGormCourtRepository(tx)

		appt, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if appt.Status.IsTerminal() {
			return ErrInvalidTransition
		}

		day := time.Time(appt.Date)
		hhmm := appt.Time
		if p.Date != nil {
			day = time.Time(model.DateOf(*p.Date))
		}
		if p.Time != nil {
			hhmm = *p.Time
		}

		if p.Date != nil || p.Time != nil {
			if err := s.checkNotPast(day, hhmm); err != nil {
				return err
			}
			if err := s.checkWithinWindow(ctx, courts, appt.CourtID, appt.JudgeID, day, hhmm); err != nil {
				return err
			}
			key := model.SlotKeyFor(appt.CourtID, appt.JudgeID, day, hhmm)
			taken, err := r.SlotTaken(ctx, key, &appt.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrSlotTaken
			}
			if err := r.UpdateSlot(ctx, appt.ID, day, hhmm, key, p.Operation, p.Notes); err != nil {
				return err
			}
		} else if p.Operation != "" || p.Notes != nil {
			if err := r.UpdateSlot(ctx, appt.ID, day, hhmm, appt.SlotKey, p.Operation, p.Notes); err != nil {
				return err
			}
		}

		updated, err = r.GetByID(ctx, appt.ID)
		return err
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	s.audit(ctx, model.EventAppointmentUpdated, nil, &updated.ID,
		fmt.Sprintf("slot=%s", updated.SlotKey))
	return updated, nil
}

// AvailableSlots returns the ordered offerable slot starts for the
// court (or judge) on the given date. Two concurrent callers may see
// the same slot free; Create resolves that race.
func (s *BookingService) AvailableSlots(ctx context.Context, courtID uuid.UUID, judgeID *uuid.UUID, date time.Time) ([]string, error) {
	day := time.Time(model.DateOf(date))

	win, open, err := s.resolveWindow(ctx, s.courts, courtID, judgeID, day)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, nil
	}

	offered := win.Slots(model.SlotStepMinutes)
	taken, err := s.appts.ListBookedTimes(ctx, courtID, judgeID, day)
	if err != nil {
		return nil, err
	}
	return calendar.Subtract(offered, taken), nil
}

// Find lists appointments through the typed filter.
func (s *BookingService) Find(ctx context.Context, f repository.AppointmentFilter) ([]model.Appointment, int64, error) {
	return s.appts.Find(ctx, f)
}

// GetByCode resolves the public status-check lookup.
func (s *BookingService) GetByCode(ctx context.Context, code string) (*model.Appointment, error) {
	return s.appts.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// GetByID returns one appointment.
func (s *BookingService) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.appts.GetByID(ctx, id)
}

// checkNotPast rejects dates before today, and today's slots whose
// start has already passed, in the service's configured timezone.
func (s *BookingService) checkNotPast(day time.Time, hhmm string) error {
	now := s.now().In(s.loc)
	today := time.Time(model.DateOf(now))

	if day.Before(today) {
		return ErrPastDate
	}
	if day.Equal(today) && hhmm <= now.Format("15:04") {
		return ErrPastDate
	}
	return nil
}

// checkWithinWindow verifies the slot start against the working-hours
// window without enumerating every slot. The court repository is a
// parameter so callers inside a transaction can pass a tx-scoped one.
func (s *BookingService) checkWithinWindow(ctx context.Context, courts repository.CourtRepository, courtID uuid.UUID, judgeID *uuid.UUID, day time.Time, hhmm string) error {
	win, open, err := s.resolveWindow(ctx, courts, courtID, judgeID, day)
	if err != nil {
		return err
	}
	if !open || !win.Contains(hhmm, model.SlotStepMinutes) {
		return ErrOutsideWorkingHours
	}
	return nil
}

// resolveWindow picks the judge's working hours when the judge has an
// override, otherwise the court's, and maps them onto the date.
func (s *BookingService) resolveWindow(ctx context.Context, courts repository.CourtRepository, courtID uuid.UUID, judgeID *uuid.UUID, day time.Time) (calendar.Window, bool, error) {
	court, err := courts.GetByID(ctx, courtID)
	if err != nil {
		return calendar.Window{}, false, err
	}

	raw := []byte(court.WorkingHours)
	if judgeID != nil {
		judge, err := courts.GetJudge(ctx, *judgeID)
		if err != nil {
			return calendar.Window{}, false, err
		}
		if len(judge.WorkingHours) > 0 {
			raw = []byte(judge.WorkingHours)
		}
	}

	wh, err := calendar.ParseWorkingHours(raw)
	if err != nil {
		return calendar.Window{}, false, err
	}
	win, open := calendar.DayWindow(wh, day)
	return win, open, nil
}

// generateUniqueCode draws codes until one is unused. With a 36^8 code
// space this terminates on the first draw in practice.
func generateUniqueCode(exists func(string) (bool, error)) (string, error) {
	for {
		code := model.NewCode()
		used, err := exists(code)
		if err != nil {
			return "", err
		}
		if !used {
			return code, nil
		}
	}
}

func (s *BookingService) audit(ctx context.Context, et model.EventType, userID, apptID *uuid.UUID, details string) {
	if s.events == nil {
		return
	}
	ev := &model.Event{ID: uuid.New(), EventType: et, UserID: userID, AppointmentID: apptID, Details: details}
	if err := s.events.Create(ctx, ev); err != nil {
		log.Printf("audit event %s: %v", et, err)
	}
}

// notifyStatus tells the notification collaborator about a status
// change. Failures are logged, never propagated: delivery is not part
// of the booking transaction.
func (s *BookingService) notifyStatus(ctx context.Context, citizen *model.User, appt *model.Appointment, newStatus model.AppointmentStatus) {
	court, err := s.courts.GetByID(ctx, appt.CourtID)
	courtName := ""
	if err == nil {
		courtName = court.Name
	}
	summary := notify.AppointmentSummary{
		Code:      appt.Code,
		CourtName: courtName,
		Date:      time.Time(appt.Date).Format("2006-01-02"),
		Time:      appt.Time,
		Operation: appt.Operation,
	}
	to := notify.Recipient{
		Name:         citizen.FullName(),
		Email:        citizen.Email,
		Phone:        citizen.Phone,
		EmailEnabled: citizen.EmailEnabled,
		SMSEnabled:   citizen.SMSEnabled,
	}
	if err := s.notifier.SendStatusChangeNotice(ctx, to, summary, newStatus); err != nil {
		log.Printf("status notice for %s: %v", appt.Code, err)
	}
}

// isUniqueViolation detects a unique-index conflict across the drivers
// in use (Postgres in production, sqlite in tests).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
