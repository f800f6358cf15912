package model

// Vehicle represents a tracked vehicle.
type Vehicle struct {
	ID      int64  `gorm:"primaryKey"`
	Name    string `gorm:"uniqueIndex;size:80;not null"`
	RouteID string `gorm:"size:80"`

	// Associations
	Locations []Location `gorm:"foreignKey:VehicleID"`
}
