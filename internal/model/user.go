package model

import (
	"time"

	"github.com/google/uuid"
)

// Role of a user in the appointment system.
type UserRole string

const (
	RoleCitizen UserRole = "vatandas"
	RoleLawyer  UserRole = "avukat"
	RoleJudge   UserRole = "hakim"
	RoleStaff   UserRole = "personel"
	RoleAdmin   UserRole = "admin"
)

// users
type User struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	NationalID string   `gorm:"type:varchar(11);not null;uniqueIndex"`
	FirstName  string   `gorm:"type:varchar(100);not null"`
	LastName   string   `gorm:"type:varchar(100);not null"`
	Role       UserRole `gorm:"type:varchar(32);not null;index"`

	Email string `gorm:"type:varchar(255);index"`
	Phone string `gorm:"type:varchar(20)"`

	Active bool `gorm:"not null;default:true;index"`

	// Notification preferences, read by the reminder pass.
	ReminderLeadHours int  `gorm:"not null;default:24"`
	EmailEnabled      bool `gorm:"not null;default:true"`
	SMSEnabled        bool `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

// FullName for notification payloads.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
