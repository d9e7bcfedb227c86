package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saliheu/mahkeme-randevu/internal/model"
)

func createPending(t *testing.T, svc *BookingService, db *gorm.DB) (*model.Appointment, *model.User) {
	t.Helper()
	citizen := seedCitizen(t, db)
	court := seedCourt(t, db)
	appt, err := svc.Create(context.Background(), CreateParams{
		CitizenID: citizen.ID,
		CourtID:   court.ID,
		Date:      nextWednesday(),
		Time:      "10:00",
		Operation: model.OpHearing,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return appt, citizen
}

func TestLifecycle_FullHappyPath(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)
	appt, citizen := createPending(t, svc, db)

	confirmed, err := svc.Confirm(context.Background(), appt.ID, citizen.ID)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if confirmed.Status != model.StatusConfirmed {
		t.Fatalf("status = %s, want %s", confirmed.Status, model.StatusConfirmed)
	}

	completed, err := svc.Complete(context.Background(), appt.ID, citizen.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if completed.Status != model.StatusCompleted {
		t.Fatalf("status = %s, want %s", completed.Status, model.StatusCompleted)
	}
}

func TestLifecycle_CancelFromPendingAndConfirmed(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)

	// pending -> cancelled
	a1, c1 := createPending(t, svc, db)
	cancelled, err := svc.Cancel(context.Background(), a1.ID, c1.ID, "tasindi")
	if err != nil {
		t.Fatalf("Cancel pending: %v", err)
	}
	if cancelled.Status != model.StatusCancelled || cancelled.CancelReason != "tasindi" {
		t.Fatalf("cancelled = %+v", cancelled)
	}

	// confirmed -> cancelled
	a2, c2 := createPending(t, svc, db)
	if _, err := svc.Confirm(context.Background(), a2.ID, c2.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), a2.ID, c2.ID, "mazeret"); err != nil {
		t.Fatalf("Cancel confirmed: %v", err)
	}
}

func TestLifecycle_CancelRequiresReason(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)
	appt, citizen := createPending(t, svc, db)

	for _, reason := range []string{"", "   "} {
		if _, err := svc.Cancel(context.Background(), appt.ID, citizen.ID, reason); !errors.Is(err, ErrReasonRequired) {
			t.Fatalf("Cancel(%q) err = %v, want ErrReasonRequired", reason, err)
		}
	}
}

func TestLifecycle_InvalidTransitionsRejected(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)

	// Completing a pending appointment skips confirmation.
	a1, c1 := createPending(t, svc, db)
	if _, err := svc.Complete(context.Background(), a1.ID, c1.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Complete pending err = %v, want ErrInvalidTransition", err)
	}

	// Terminal states accept nothing.
	a2, c2 := createPending(t, svc, db)
	if _, err := svc.Cancel(context.Background(), a2.ID, c2.ID, "mazeret"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if _, err := svc.Confirm(context.Background(), a2.ID, c2.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Confirm cancelled err = %v, want ErrInvalidTransition", err)
	}
	if _, err := svc.Cancel(context.Background(), a2.ID, c2.ID, "tekrar"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Cancel cancelled err = %v, want ErrInvalidTransition", err)
	}
	if _, err := svc.Complete(context.Background(), a2.ID, c2.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Complete cancelled err = %v, want ErrInvalidTransition", err)
	}

	// Confirming twice is not idempotent: the second call finds no
	// pending row.
	a3, c3 := createPending(t, svc, db)
	if _, err := svc.Confirm(context.Background(), a3.ID, c3.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if _, err := svc.Confirm(context.Background(), a3.ID, c3.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second Confirm err = %v, want ErrInvalidTransition", err)
	}
}

func TestLifecycle_UnknownAppointment(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)

	if _, err := svc.Confirm(context.Background(), uuid.New(), uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("Confirm unknown err = %v, want ErrRecordNotFound", err)
	}
}

func TestLifecycle_WritesAuditEvents(t *testing.T) {
	db := openTestDB(t)
	svc := newTestService(t, db)
	appt, citizen := createPending(t, svc, db)

	if _, err := svc.Confirm(context.Background(), appt.ID, citizen.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	var n int64
	if err := db.Model(&model.Event{}).
		Where("event_type = ? AND appointment_id = ?", model.EventAppointmentConfirmed, appt.ID).
		Count(&n).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if n != 1 {
		t.Fatalf("confirm events = %d, want 1", n)
	}
}
