package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mthomps/restock/internal/model"
)

// NotificationStore is the queue of scheduled one-shot notifications. The
// dispatcher delivers rows whose deliver_at has passed and marks them fired.
type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func scanNotification(scanner interface{ Scan(...any) error }) (*model.ScheduledNotification, error) {
	var n model.ScheduledNotification
	var product sql.NullString
	var deliverAt int64
	var fired int

	err := scanner.Scan(&n.ID, &n.Kind, &product, &n.Payload, &deliverAt, &fired, &n.CreatedAt)
	if err != nil {
		return nil, err
	}

	if product.Valid {
		n.Product = product.String
	}
	n.DeliverAt = time.UnixMilli(deliverAt)
	n.Fired = fired != 0
	return &n, nil
}

const notificationCols = `id, kind, product, payload, deliver_at, fired, created_at`

// Enqueue schedules a one-shot notification for delivery at the given time.
// Timestamps are stored at millisecond precision.
func (s *NotificationStore) Enqueue(kind, product string, payload []byte, deliverAt time.Time) (*model.ScheduledNotification, error) {
	var prod sql.NullString
	if product != "" {
		prod = sql.NullString{String: product, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO scheduled_notifications (kind, product, payload, deliver_at) VALUES (?, ?, ?, ?)`,
		kind, prod, payload, deliverAt.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("enqueue notification: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *NotificationStore) GetByID(id int64) (*model.ScheduledNotification, error) {
	row := s.db.QueryRow(`SELECT `+notificationCols+` FROM scheduled_notifications WHERE id = ?`, id)
	n, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

// ListPending returns all queued notifications not yet delivered.
func (s *NotificationStore) ListPending() ([]model.ScheduledNotification, error) {
	rows, err := s.db.Query(
		`SELECT ` + notificationCols + ` FROM scheduled_notifications WHERE fired = 0 ORDER BY deliver_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending notifications: %w", err)
	}
	defer rows.Close()
	return scanNotifications(rows)
}

// ListPendingByProduct returns queued undelivered notifications whose payload
// identifies the given product (case-insensitive).
func (s *NotificationStore) ListPendingByProduct(product string) ([]model.ScheduledNotification, error) {
	rows, err := s.db.Query(
		`SELECT `+notificationCols+` FROM scheduled_notifications
		 WHERE fired = 0 AND product = ? ORDER BY deliver_at ASC, id ASC`, product,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending notifications by product: %w", err)
	}
	defer rows.Close()
	return scanNotifications(rows)
}

// ListDue returns undelivered notifications whose delivery time has passed.
func (s *NotificationStore) ListDue(now time.Time) ([]model.ScheduledNotification, error) {
	rows, err := s.db.Query(
		`SELECT `+notificationCols+` FROM scheduled_notifications
		 WHERE fired = 0 AND deliver_at <= ? ORDER BY deliver_at ASC, id ASC`,
		now.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("list due notifications: %w", err)
	}
	defer rows.Close()
	return scanNotifications(rows)
}

// CancelByProduct removes any undelivered notification for a product and
// returns how many were cancelled.
func (s *NotificationStore) CancelByProduct(product string) (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM scheduled_notifications WHERE fired = 0 AND product = ?`, product,
	)
	if err != nil {
		return 0, fmt.Errorf("cancel notifications by product: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

// CancelByID removes a single undelivered notification.
func (s *NotificationStore) CancelByID(id int64) error {
	_, err := s.db.Exec(`DELETE FROM scheduled_notifications WHERE fired = 0 AND id = ?`, id)
	if err != nil {
		return fmt.Errorf("cancel notification: %w", err)
	}
	return nil
}

// MarkFired flags a notification as delivered.
func (s *NotificationStore) MarkFired(id int64) error {
	_, err := s.db.Exec(`UPDATE scheduled_notifications SET fired = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark notification fired: %w", err)
	}
	return nil
}

// CleanupFired deletes delivered notifications older than the given time.
func (s *NotificationStore) CleanupFired(before time.Time) error {
	_, err := s.db.Exec(
		`DELETE FROM scheduled_notifications WHERE fired = 1 AND deliver_at < ?`,
		before.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("cleanup fired notifications: %w", err)
	}
	return nil
}

func scanNotifications(rows *sql.Rows) ([]model.ScheduledNotification, error) {
	var notifs []model.ScheduledNotification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifs = append(notifs, *n)
	}
	return notifs, rows.Err()
}
