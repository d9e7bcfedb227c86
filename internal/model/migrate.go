package model

import "gorm.io/gorm"

// AutoMigrate runs migrations for all scheduling-core entities.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Court{},
		&Judge{},
		&Appointment{},
		&Event{},
		&JobLog{},
	)
}
