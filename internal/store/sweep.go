package store

import (
	"database/sql"
	"fmt"
)

// SweepStore persists the per-date markers that keep the unpurchased-item
// sweep from reminding about the same date twice.
type SweepStore struct {
	db *sql.DB
}

func NewSweepStore(db *sql.DB) *SweepStore {
	return &SweepStore{db: db}
}

// WasReminded reports whether a sweep notification was already raised for
// the given date.
func (s *SweepStore) WasReminded(date string) (bool, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sweep_markers WHERE date = ?`, date).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check sweep marker: %w", err)
	}
	return count > 0, nil
}

// MarkReminded records that a date has been reminded about. Returns false if
// a marker already existed. Markers are terminal and never removed.
func (s *SweepStore) MarkReminded(date string) (bool, error) {
	result, err := s.db.Exec(`INSERT OR IGNORE INTO sweep_markers (date) VALUES (?)`, date)
	if err != nil {
		return false, fmt.Errorf("set sweep marker: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return count > 0, nil
}

// ListReminded returns all dates that have been swept, newest first.
func (s *SweepStore) ListReminded() ([]string, error) {
	rows, err := s.db.Query(`SELECT date FROM sweep_markers ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sweep markers: %w", err)
	}
	defer rows.Close()
	return scanDates(rows)
}
