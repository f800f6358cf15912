package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"fleet-tracker-backend/internal/model"
)

// ErrVehicleNotFound is returned when a referenced vehicle does not exist.
var ErrVehicleNotFound = errors.New("vehicle not found")

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB
	SeedVehicles(ctx context.Context) error
	GetVehicle(ctx context.Context, id int64) (*model.Vehicle, error)
	ListVehicles(ctx context.Context) ([]model.Vehicle, error)
	InsertLocation(ctx context.Context, loc *model.Location) error
	LocationHistory(ctx context.Context, vehicleID int64, day time.Time) ([]model.Location, error)
	StaleVehicles(ctx context.Context, cutoff time.Time) ([]model.Vehicle, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying connection for handlers that query directly.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// SeedVehicles populates the vehicle table on first run. It is a no-op when
// any vehicle already exists, so restarts never duplicate the fleet.
func (s *gormStore) SeedVehicles(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Vehicle{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count vehicles: %w", err)
	}
	if count > 0 {
		log.Println("Vehicle table already populated, skipping seed.")
		return nil
	}

	log.Println("Vehicle table is empty. Seeding initial vehicles...")
	seed := []model.Vehicle{
		{Name: "Bus 101", RouteID: "Route A"},
		{Name: "Bus 102", RouteID: "Route B"},
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&seed).Error; err != nil {
			return fmt.Errorf("failed to seed vehicles: %w", err)
		}
		return nil
	})
}

// GetVehicle fetches a vehicle by id, returning ErrVehicleNotFound when absent.
func (s *gormStore) GetVehicle(ctx context.Context, id int64) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	err := s.db.WithContext(ctx).First(&vehicle, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vehicle %d: %w", id, err)
	}
	return &vehicle, nil
}

func (s *gormStore) ListVehicles(ctx context.Context) ([]model.Vehicle, error) {
	var vehicles []model.Vehicle
	if err := s.db.WithContext(ctx).Order("id").Find(&vehicles).Error; err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	return vehicles, nil
}

// InsertLocation appends one sample. The timestamp is assigned here (UTC)
// when the caller leaves it zero, so insertion order drives sample order.
func (s *gormStore) InsertLocation(ctx context.Context, loc *model.Location) error {
	if loc.Timestamp.IsZero() {
		loc.Timestamp = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(loc).Error; err != nil {
		return fmt.Errorf("failed to insert location for vehicle %d: %w", loc.VehicleID, err)
	}
	return nil
}

// LocationHistory returns a vehicle's samples for one UTC calendar day,
// ascending by timestamp. The window is half-open: [00:00, 00:00 next day).
func (s *gormStore) LocationHistory(ctx context.Context, vehicleID int64, day time.Time) ([]model.Location, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	var locations []model.Location
	err := s.db.WithContext(ctx).
		Where("vehicle_id = ? AND timestamp >= ? AND timestamp < ?", vehicleID, start, end).
		Order("timestamp asc").
		Find(&locations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history for vehicle %d: %w", vehicleID, err)
	}
	return locations, nil
}

// StaleVehicles returns vehicles that have reported at least once but whose
// newest sample is older than cutoff. Vehicles that never reported are not
// considered stale.
func (s *gormStore) StaleVehicles(ctx context.Context, cutoff time.Time) ([]model.Vehicle, error) {
	var vehicles []model.Vehicle
	err := s.db.WithContext(ctx).
		Model(&model.Vehicle{}).
		Select("vehicles.*").
		Joins("JOIN locations ON locations.vehicle_id = vehicles.id").
		Group("vehicles.id").
		Having("MAX(locations.timestamp) < ?", cutoff).
		Find(&vehicles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query stale vehicles: %w", err)
	}
	return vehicles, nil
}
