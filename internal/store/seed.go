package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"grislo/internal/models"
)

// SeedFiles is the bundled read-only tier, consulted only when the remote
// store and the cache are both unavailable or empty. The file shapes match
// the original bootstrap datasets.
type SeedFiles struct {
	dir string
}

func NewSeedFiles(dir string) *SeedFiles {
	return &SeedFiles{dir: dir}
}

func (s *SeedFiles) Name() string { return "seed" }

type seedSchedule struct {
	OperatingDays []models.OperatingDay `json:"operatingDays"`
}

type seedLocations struct {
	Locations []models.PickupLocation `json:"locations"`
}

func (s *SeedFiles) LoadSchedule(ctx context.Context) ([]models.OperatingDay, error) {
	var doc seedSchedule
	if err := s.readJSON("schedule.json", &doc); err != nil {
		return nil, err
	}
	return doc.OperatingDays, nil
}

// LoadReservations always yields an empty set; there is no such thing as a
// seeded reservation.
func (s *SeedFiles) LoadReservations(ctx context.Context) ([]models.Reservation, error) {
	return nil, nil
}

func (s *SeedFiles) LoadLocations(ctx context.Context) ([]models.PickupLocation, error) {
	var doc seedLocations
	if err := s.readJSON("pickup_locations.json", &doc); err != nil {
		return nil, err
	}
	return doc.Locations, nil
}

func (s *SeedFiles) readJSON(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			// A missing seed file means an empty default, not a failure.
			return nil
		}
		return fmt.Errorf("read seed %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse seed %s: %w", name, err)
	}
	return nil
}
