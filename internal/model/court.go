package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Court type per the national registry classification.
type CourtType string

const (
	CourtCivil          CourtType = "asliye_hukuk"
	CourtCriminal       CourtType = "asliye_ceza"
	CourtHeavyPenal     CourtType = "agir_ceza"
	CourtPeaceCivil     CourtType = "sulh_hukuk"
	CourtPeaceCriminal  CourtType = "sulh_ceza"
	CourtEnforcement    CourtType = "icra"
	CourtFamily         CourtType = "aile"
	CourtLabor          CourtType = "is"
	CourtCommercial     CourtType = "ticaret"
	CourtIP             CourtType = "fikri_mulkiyet"
	CourtConsumer       CourtType = "tuketici"
	CourtCadastre       CourtType = "kadastro"
	CourtAdministrative CourtType = "idare"
)

// mahkemeler (courts)
type Court struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Name string    `gorm:"type:varchar(255);not null"`
	Type CourtType `gorm:"type:varchar(32);not null;index"`

	// {"il": ..., "ilce": ..., "acik_adres": ...}
	Address datatypes.JSON `gorm:"type:jsonb"`

	Phone string `gorm:"type:varchar(20)"`
	Email string `gorm:"type:varchar(255)"`

	// Working hours by day type, consumed by the slot calendar:
	// {"weekday":{"start":"08:00","end":"17:30"},"saturday":{...}}.
	// Sunday is implicitly closed.
	WorkingHours datatypes.JSON `gorm:"type:jsonb"`

	Capacity int  `gorm:"not null;default:100"`
	Active   bool `gorm:"not null;default:true;index"`

	// External case-management system integration code.
	UYAPCode string `gorm:"type:varchar(50);uniqueIndex"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Judges []Judge `gorm:"foreignKey:CourtID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
