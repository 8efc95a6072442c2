package store

import (
	"database/sql"
	"fmt"

	"github.com/mthomps/restock/internal/model"
)

type ReminderStore struct {
	db *sql.DB
}

func NewReminderStore(db *sql.DB) *ReminderStore {
	return &ReminderStore{db: db}
}

func scanReminder(scanner interface{ Scan(...any) error }) (*model.Reminder, error) {
	var r model.Reminder
	err := scanner.Scan(&r.Product, &r.Quantity, &r.Unit, &r.IntervalDays, &r.State, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

const reminderCols = `product, quantity, unit, interval_days, state, created_at, updated_at`

// Put replaces any existing reminder for the same product (last write wins)
// and resets its state to idle.
func (s *ReminderStore) Put(product string, quantity float64, unit string, intervalDays int) (*model.Reminder, error) {
	_, err := s.db.Exec(
		`INSERT INTO reminders (product, quantity, unit, interval_days, state)
		 VALUES (?, ?, ?, ?, 'idle')
		 ON CONFLICT(product) DO UPDATE SET
		   quantity = excluded.quantity,
		   unit = excluded.unit,
		   interval_days = excluded.interval_days,
		   state = 'idle',
		   updated_at = CURRENT_TIMESTAMP`,
		product, quantity, unit, intervalDays,
	)
	if err != nil {
		return nil, fmt.Errorf("put reminder: %w", err)
	}
	return s.Get(product)
}

// Get returns the reminder for a product name, matched case-insensitively.
func (s *ReminderStore) Get(product string) (*model.Reminder, error) {
	row := s.db.QueryRow(`SELECT `+reminderCols+` FROM reminders WHERE product = ?`, product)
	r, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	return r, nil
}

func (s *ReminderStore) List() ([]model.Reminder, error) {
	rows, err := s.db.Query(`SELECT ` + reminderCols + ` FROM reminders ORDER BY product COLLATE NOCASE ASC`)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	var reminders []model.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		reminders = append(reminders, *r)
	}
	return reminders, rows.Err()
}

func (s *ReminderStore) Delete(product string) error {
	_, err := s.db.Exec(`DELETE FROM reminders WHERE product = ?`, product)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return nil
}

// SetState updates the notification lifecycle state of a reminder.
func (s *ReminderStore) SetState(product string, state model.ReminderState) error {
	_, err := s.db.Exec(
		`UPDATE reminders SET state = ?, updated_at = CURRENT_TIMESTAMP WHERE product = ?`,
		state, product,
	)
	if err != nil {
		return fmt.Errorf("set reminder state: %w", err)
	}
	return nil
}
