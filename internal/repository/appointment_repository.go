package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saliheu/mahkeme-randevu/internal/model"
)

// AppointmentFilter is the typed replacement for the legacy
// string-assembled listing query. Zero values mean "no constraint".
type AppointmentFilter struct {
	CitizenID *uuid.UUID
	CourtID   *uuid.UUID
	JudgeID   *uuid.UUID
	Status    model.AppointmentStatus
	Operation model.OperationType
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
	Offset    int
}

type AppointmentRepository interface {
	// Get one appointment by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	// Public status lookup by the human-readable code.
	GetByCode(ctx context.Context, code string) (*model.Appointment, error)
	// Filtered listing, ordered by date then time.
	Find(ctx context.Context, f AppointmentFilter) ([]model.Appointment, int64, error)
	// Slot starts already held by non-terminal appointments on the date.
	// With a judge the listing narrows to that judge's rows; without one
	// it covers the whole court, judge-held rows included, so the
	// court-level availability view reflects every booking.
	ListBookedTimes(ctx context.Context, courtID uuid.UUID, judgeID *uuid.UUID, date time.Time) ([]string, error)
	// Whether a non-terminal appointment already occupies the slot key.
	// excludeID skips the caller's own row during a reschedule.
	SlotTaken(ctx context.Context, slotKey string, excludeID *uuid.UUID) (bool, error)
	// Non-terminal appointments a citizen holds on the given date.
	CountActiveForCitizen(ctx context.Context, citizenID uuid.UUID, date time.Time) (int64, error)
	// Whether an appointment code was ever issued.
	CodeExists(ctx context.Context, code string) (bool, error)
	// Insert a fully populated appointment row.
	Create(ctx context.Context, appt *model.Appointment) error
	// Persist new slot coordinates for a reschedule.
	UpdateSlot(ctx context.Context, id uuid.UUID, date time.Time, hhmm, slotKey string, operation model.OperationType, notes *string) error
	// Conditional status transition; returns rows affected (0 means the
	// row was not in the expected status and nothing changed).
	UpdateStatusIf(ctx context.Context, id uuid.UUID, expected []model.AppointmentStatus, to model.AppointmentStatus, extra map[string]any) (int64, error)

	// Scheduler queries.
	ListNeedingReminder(ctx context.Context, date time.Time, currentHour int) ([]model.Appointment, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID) error
	AutoCompletePast(ctx context.Context, today time.Time, cutoff string, note string) (int64, error)
	PurgeTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type GormAppointmentRepository struct {
	db *gorm.DB
}

func NewGormAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{db: db}
}

func (r *GormAppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var a model.Appointment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormAppointmentRepository) GetByCode(ctx context.Context, code string) (*model.Appointment, error) {
	var a model.Appointment
	if err := r.db.WithContext(ctx).First(&a, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormAppointmentRepository) Find(ctx context.Context, f AppointmentFilter) ([]model.Appointment, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Appointment{})

	if f.CitizenID != nil {
		q = q.Where("citizen_id = ?", *f.CitizenID)
	}
	if f.CourtID != nil {
		q = q.Where("court_id = ?", *f.CourtID)
	}
	if f.JudgeID != nil {
		q = q.Where("judge_id = ?", *f.JudgeID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Operation != "" {
		q = q.Where("operation = ?", f.Operation)
	}
	if f.DateFrom != nil {
		q = q.Where("appointment_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("appointment_date <= ?", *f.DateTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	var out []model.Appointment
	if err := q.Order("appointment_date ASC, appointment_time ASC").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

var nonTerminal = []model.AppointmentStatus{model.StatusPending, model.StatusConfirmed}

func (r *GormAppointmentRepository) ListBookedTimes(
	ctx context.Context,
	courtID uuid.UUID,
	judgeID *uuid.UUID,
	date time.Time,
) ([]string, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("court_id = ? AND appointment_date = ? AND status IN ?", courtID, date, nonTerminal)

	if judgeID != nil {
		q = q.Where("judge_id = ?", *judgeID)
	}

	var times []string
	if err := q.Order("appointment_time ASC").Pluck("appointment_time", &times).Error; err != nil {
		return nil, err
	}
	return times, nil
}

func (r *GormAppointmentRepository) SlotTaken(ctx context.Context, slotKey string, excludeID *uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("slot_key = ? AND status IN ?", slotKey, nonTerminal)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormAppointmentRepository) CountActiveForCitizen(
	ctx context.Context,
	citizenID uuid.UUID,
	date time.Time,
) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("citizen_id = ? AND appointment_date = ? AND status IN ?", citizenID, date, nonTerminal).
		Count(&n).Error
	return n, err
}

func (r *GormAppointmentRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("code = ?", code).
		Count(&n).Error
	return n > 0, err
}

func (r *GormAppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	return r.db.WithContext(ctx).Create(appt).Error
}

func (r *GormAppointmentRepository) UpdateSlot(
	ctx context.Context,
	id uuid.UUID,
	date time.Time,
	hhmm, slotKey string,
	operation model.OperationType,
	notes *string,
) error {
	update := map[string]any{
		"appointment_date": date,
		"appointment_time": hhmm,
		"slot_key":         slotKey,
	}
	if operation != "" {
		update["operation"] = operation
	}
	if notes != nil {
		update["notes"] = *notes
	}
	return r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("id = ?", id).
		Updates(update).
		Error
}

func (r *GormAppointmentRepository) UpdateStatusIf(
	ctx context.Context,
	id uuid.UUID,
	expected []model.AppointmentStatus,
	to model.AppointmentStatus,
	extra map[string]any,
) (int64, error) {
	update := map[string]any{"status": to}
	for k, v := range extra {
		update[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("id = ? AND status IN ?", id, expected).
		Updates(update)
	return res.RowsAffected, res.Error
}

// ListNeedingReminder selects confirmed, un-reminded appointments one
// day ahead whose owner's reminder lead time maps to the current hour
// (lead 24h fires at hour 0, lead 12h at hour 12, and so on).
func (r *GormAppointmentRepository) ListNeedingReminder(
	ctx context.Context,
	date time.Time,
	currentHour int,
) ([]model.Appointment, error) {
	var out []model.Appointment
	err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Joins("JOIN users ON users.id = appointments.citizen_id").
		Where("appointments.status = ?", model.StatusConfirmed).
		Where("appointments.reminder_sent = ?", false).
		Where("appointments.appointment_date = ?", date).
		Where("24 - users.reminder_lead_hours = ?", currentHour).
		Order("appointments.appointment_time ASC").
		Find(&out).Error
	return out, err
}

func (r *GormAppointmentRepository) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("id = ?", id).
		Update("reminder_sent", true).
		Error
}

// AutoCompletePast closes out confirmed appointments whose slot passed
// more than the grace period ago. Idempotent: the status predicate
// means a second pass matches nothing.
func (r *GormAppointmentRepository) AutoCompletePast(
	ctx context.Context,
	today time.Time,
	cutoff string,
	note string,
) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("status = ?", model.StatusConfirmed).
		Where("appointment_date < ? OR (appointment_date = ? AND appointment_time < ?)", today, today, cutoff).
		Updates(map[string]any{
			"status": model.StatusCompleted,
			"notes":  gorm.Expr("COALESCE(notes || ?, ?)", "\n"+note, note),
		})
	return res.RowsAffected, res.Error
}

// PurgeTerminalBefore deletes cancelled/completed rows older than the
// cutoff date. The status predicate guarantees live rows are never
// touched.
func (r *GormAppointmentRepository) PurgeTerminalBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("appointment_date < ? AND status IN ?", cutoff,
			[]model.AppointmentStatus{model.StatusCancelled, model.StatusCompleted}).
		Delete(&model.Appointment{})
	return res.RowsAffected, res.Error
}
