package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"grislo/internal/models"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// SQLiteStore is the remote authoritative tier. The three collections mirror
// the remote query surface: schedule, reservations, pickup_locations.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS schedule (
            date TEXT PRIMARY KEY,
            time_slots TEXT NOT NULL,
            available INTEGER NOT NULL DEFAULT 1,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS reservations (
            id TEXT PRIMARY KEY,
            name TEXT,
            display_name TEXT,
            date TEXT NOT NULL,
            time TEXT NOT NULL,
            pickup_location TEXT NOT NULL,
            notes TEXT,
            status TEXT NOT NULL DEFAULT 'confirmed',
            created_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS pickup_locations (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            address TEXT,
            sort_order INTEGER NOT NULL DEFAULT 0
        )`,

		`CREATE INDEX IF NOT EXISTS idx_reservations_date ON reservations(date)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations(status)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Name() string { return "remote" }

func (s *SQLiteStore) LoadSchedule(ctx context.Context) ([]models.OperatingDay, error) {
	query := `SELECT date, time_slots, available FROM schedule ORDER BY date`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	defer rows.Close()

	var days []models.OperatingDay
	for rows.Next() {
		var day models.OperatingDay
		var slotsJSON string
		if err := rows.Scan(&day.Date, &slotsJSON, &day.Available); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(slotsJSON), &day.TimeSlots); err != nil {
			return nil, fmt.Errorf("corrupt time_slots for %s: %w", day.Date, err)
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

func (s *SQLiteStore) LoadReservations(ctx context.Context) ([]models.Reservation, error) {
	query := `
        SELECT id, name, display_name, date, time, pickup_location, notes, status, created_at
        FROM reservations ORDER BY created_at, id
    `

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load reservations: %w", err)
	}
	defer rows.Close()

	var reservations []models.Reservation
	for rows.Next() {
		var r models.Reservation
		err := rows.Scan(
			&r.ID,
			&r.Name,
			&r.DisplayName,
			&r.Date,
			&r.Time,
			&r.PickupLocation,
			&r.Notes,
			&r.Status,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

func (s *SQLiteStore) LoadLocations(ctx context.Context) ([]models.PickupLocation, error) {
	query := `SELECT id, name, address, sort_order FROM pickup_locations ORDER BY sort_order, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load pickup locations: %w", err)
	}
	defer rows.Close()

	var locations []models.PickupLocation
	for rows.Next() {
		var loc models.PickupLocation
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Address, &loc.SortOrder); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func (s *SQLiteStore) UpsertOperatingDay(ctx context.Context, day models.OperatingDay) error {
	slotsJSON, err := json.Marshal(day.TimeSlots)
	if err != nil {
		return fmt.Errorf("failed to encode time slots: %w", err)
	}

	query := `
        INSERT INTO schedule (date, time_slots, available, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(date) DO UPDATE SET
            time_slots = excluded.time_slots,
            available = excluded.available,
            updated_at = excluded.updated_at
    `
	_, err = s.db.ExecContext(ctx, query, day.Date, string(slotsJSON), day.Available, time.Now())
	return err
}

func (s *SQLiteStore) DeleteOperatingDay(ctx context.Context, date string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM schedule WHERE date = ?`, date)
	return err
}

// InsertReservation writes the record. The id is upserted: a collision of the
// client-generated identifier overwrites, matching the remote collection's
// upsert-by-key behavior. The capacity check lives with the caller; the two
// steps are deliberately not atomic.
func (s *SQLiteStore) InsertReservation(ctx context.Context, r models.Reservation) error {
	query := `
        INSERT OR REPLACE INTO reservations
            (id, name, display_name, date, time, pickup_location, notes, status, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := s.db.ExecContext(ctx, query,
		r.ID,
		r.Name,
		r.DisplayName,
		r.Date,
		r.Time,
		r.PickupLocation,
		r.Notes,
		r.Status,
		r.CreatedAt,
	)
	return err
}

func (s *SQLiteStore) UpdateReservationStatus(ctx context.Context, id, status string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE reservations SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNoRecord
	}
	return nil
}

func (s *SQLiteStore) InsertLocation(ctx context.Context, loc models.PickupLocation) error {
	query := `INSERT INTO pickup_locations (id, name, address, sort_order) VALUES (?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, loc.ID, loc.Name, loc.Address, loc.SortOrder)
	return err
}

func (s *SQLiteStore) DeleteLocation(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pickup_locations WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
