package service

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/saliheu/mahkeme-randevu/internal/model"
	"github.com/saliheu/mahkeme-randevu/internal/repository"
)

// Minimal sqlite-friendly schema mirroring the production tables,
// including the partial unique index that backs the double-booking
// guarantee.
var testSchema = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		national_id TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		role TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		active BOOLEAN NOT NULL DEFAULT 1,
		reminder_lead_hours INTEGER NOT NULL DEFAULT 24,
		email_enabled BOOLEAN NOT NULL DEFAULT 1,
		sms_enabled BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	);`,
	`CREATE TABLE courts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		address TEXT,
		phone TEXT,
		email TEXT,
		working_hours TEXT,
		capacity INTEGER NOT NULL DEFAULT 100,
		active BOOLEAN NOT NULL DEFAULT 1,
		uyap_code TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`,
	`CREATE TABLE judges (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		court_id TEXT NOT NULL,
		registry_no TEXT NOT NULL UNIQUE,
		title TEXT,
		working_hours TEXT,
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	);`,
	`CREATE TABLE appointments (
		id TEXT PRIMARY KEY,
		citizen_id TEXT NOT NULL,
		court_id TEXT NOT NULL,
		judge_id TEXT,
		appointment_date DATETIME NOT NULL,
		appointment_time TEXT NOT NULL,
		operation TEXT NOT NULL,
		status TEXT NOT NULL,
		slot_key TEXT NOT NULL,
		code TEXT NOT NULL UNIQUE,
		notes TEXT,
		cancel_reason TEXT,
		reminder_sent BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);`,
	`CREATE UNIQUE INDEX uniq_active_slot ON appointments(slot_key)
		WHERE status IN ('pending','confirmed');`,
	`CREATE TABLE events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		created_at DATETIME,
		user_id TEXT,
		appointment_id TEXT,
		details TEXT
	);`,
	`CREATE TABLE job_logs (
		id TEXT PRIMARY KEY,
		job_name TEXT NOT NULL,
		outcome TEXT NOT NULL,
		result TEXT,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME
	);`,
}

// openTestDB opens a file-backed sqlite database capped at one
// connection, so concurrent transactions serialize instead of hitting
// SQLITE_BUSY.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "booking_test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	for _, stmt := range testSchema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

var nationalIDSeq int64

func nextNationalID() string {
	return fmt.Sprintf("%011d", atomic.AddInt64(&nationalIDSeq, 1))
}

func seedCitizen(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()
	u := &model.User{
		ID:                uuid.New(),
		NationalID:        nextNationalID(),
		FirstName:         "Ayse",
		LastName:          "Yilmaz",
		Role:              model.RoleCitizen,
		Email:             "ayse@example.com",
		Phone:             "+905551112233",
		Active:            true,
		ReminderLeadHours: 24,
		EmailEnabled:      true,
		SMSEnabled:        true,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed citizen: %v", err)
	}
	return u
}

const testWorkingHours = `{"weekday":{"start":"09:00","end":"17:00"},"saturday":{"start":"09:00","end":"13:00"}}`

func seedCourt(t *testing.T, db *gorm.DB) *model.Court {
	t.Helper()
	c := &model.Court{
		ID:           uuid.New(),
		Name:         "Ankara 1. Asliye Hukuk Mahkemesi",
		Type:         model.CourtCivil,
		WorkingHours: datatypes.JSON(testWorkingHours),
		Capacity:     100,
		Active:       true,
		UYAPCode:     "ANK-" + uuid.NewString()[:8],
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed court: %v", err)
	}
	return c
}

func seedJudge(t *testing.T, db *gorm.DB, courtID uuid.UUID, hours string) *model.Judge {
	t.Helper()
	owner := seedCitizen(t, db)
	j := &model.Judge{
		ID:         uuid.New(),
		UserID:     owner.ID,
		CourtID:    courtID,
		RegistryNo: "REG-" + uuid.NewString()[:8],
		Title:      "Hakim",
		Active:     true,
	}
	if hours != "" {
		j.WorkingHours = datatypes.JSON(hours)
	}
	if err := db.Create(j).Error; err != nil {
		t.Fatalf("seed judge: %v", err)
	}
	return j
}

// newTestService builds a BookingService over the test database with a
// pinned clock (2026-09-01 08:00 UTC, a Tuesday).
func newTestService(t *testing.T, db *gorm.DB) *BookingService {
	t.Helper()
	svc := NewBookingService(
		db,
		repository.NewGormAppointmentRepository(db),
		repository.NewGormCourtRepository(db),
		repository.NewGormUserRepository(db),
		repository.NewGormEventRepository(db),
		nil,
		time.UTC,
	)
	svc.now = func() time.Time {
		return time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	}
	return svc
}

// nextWednesday is the first bookable weekday after the pinned clock.
func nextWednesday() time.Time {
	return time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
}
