package model

import "time"

// Location is one GPS sample reported by a vehicle. Rows are append-only:
// nothing in the service updates or deletes them.
type Location struct {
	ID        int64     `gorm:"primaryKey"`
	VehicleID int64     `gorm:"index;not null"`
	Latitude  float64   `gorm:"not null"`
	Longitude float64   `gorm:"not null"`
	Timestamp time.Time `gorm:"index;not null"`
}
