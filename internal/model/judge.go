package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// hakimler (judges)
type Judge struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	UserID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CourtID uuid.UUID `gorm:"type:uuid;not null;index"`

	RegistryNo string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Title      string `gorm:"type:varchar(100)"`

	// Overrides the court-wide working hours when set (same JSON shape).
	WorkingHours datatypes.JSON `gorm:"type:jsonb"`

	Active bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Court *Court `gorm:"foreignKey:CourtID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
