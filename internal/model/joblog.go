package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Outcome of one scheduled job pass.
type JobOutcome string

const (
	JobSucceeded JobOutcome = "basarili"
	JobFailed    JobOutcome = "basarisiz"
	JobSkipped   JobOutcome = "atlandi"
)

// job_log — one row per scheduler pass, for operational visibility.
type JobLog struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	JobName string     `gorm:"type:varchar(64);not null;index"`
	Outcome JobOutcome `gorm:"type:varchar(16);not null;index"`

	// Per-run counters and last error, serialized by the scheduler.
	Result datatypes.JSON `gorm:"type:jsonb"`

	DurationMS int64 `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
}
