package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mthomps/restock/internal/model"
)

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

func scanItem(scanner interface{ Scan(...any) error }) (*model.GroceryItem, error) {
	var item model.GroceryItem
	err := scanner.Scan(&item.ID, &item.Name, &item.Quantity, &item.Unit, &item.Shop, &item.Date, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

const itemCols = `id, name, quantity, unit, shop, date, created_at`

func (s *ItemStore) Create(name string, quantity float64, unit, shop, date string) (*model.GroceryItem, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO grocery_items (id, name, quantity, unit, shop, date) VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, quantity, unit, shop, date,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	if err := s.syncShop(shop); err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func (s *ItemStore) GetByID(id string) (*model.GroceryItem, error) {
	row := s.db.QueryRow(`SELECT `+itemCols+` FROM grocery_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (s *ItemStore) ListByDate(date string) ([]model.GroceryItem, error) {
	rows, err := s.db.Query(
		`SELECT `+itemCols+` FROM grocery_items WHERE date = ? ORDER BY created_at ASC, id ASC`, date,
	)
	if err != nil {
		return nil, fmt.Errorf("list items by date: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// ListDates returns the distinct dates that have at least one item, newest first.
func (s *ItemStore) ListDates() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT date FROM grocery_items ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list item dates: %w", err)
	}
	defer rows.Close()
	return scanDates(rows)
}

// ListDatesBefore returns the distinct dates strictly earlier than the given
// date that have at least one item, oldest first.
func (s *ItemStore) ListDatesBefore(date string) ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT date FROM grocery_items WHERE date < ? ORDER BY date ASC`, date)
	if err != nil {
		return nil, fmt.Errorf("list item dates before: %w", err)
	}
	defer rows.Close()
	return scanDates(rows)
}

// ListUnpurchasedByDate returns the items on a date whose product name has no
// purchase record.
func (s *ItemStore) ListUnpurchasedByDate(date string) ([]model.GroceryItem, error) {
	rows, err := s.db.Query(
		`SELECT `+itemCols+` FROM grocery_items
		 WHERE date = ?
		   AND NOT EXISTS (SELECT 1 FROM purchase_records pr WHERE pr.product = grocery_items.name)
		 ORDER BY created_at ASC, id ASC`, date,
	)
	if err != nil {
		return nil, fmt.Errorf("list unpurchased items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func (s *ItemStore) Update(id, name string, quantity float64, unit, shop, date string) (*model.GroceryItem, error) {
	_, err := s.db.Exec(
		`UPDATE grocery_items SET name = ?, quantity = ?, unit = ?, shop = ?, date = ? WHERE id = ?`,
		name, quantity, unit, shop, date, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	if err := s.syncShop(shop); err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// MoveToDate reassigns the given items to another date.
func (s *ItemStore) MoveToDate(ids []string, date string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := `UPDATE grocery_items SET date = ? WHERE id IN (` + placeholders(len(ids)) + `)`
	args := make([]any, 0, len(ids)+1)
	args = append(args, date)
	for _, id := range ids {
		args = append(args, id)
	}
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("move items: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

func (s *ItemStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM grocery_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (s *ItemStore) DeleteMany(ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := `DELETE FROM grocery_items WHERE id IN (` + placeholders(len(ids)) + `)`
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete items: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

// DistinctNames returns the unique item names across all dates, for
// suggestion lookups.
func (s *ItemStore) DistinctNames() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT name FROM grocery_items ORDER BY name COLLATE NOCASE ASC`)
	if err != nil {
		return nil, fmt.Errorf("list item names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan item name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (s *ItemStore) ListShops() ([]model.Shop, error) {
	rows, err := s.db.Query(`SELECT id, name, created_at FROM shops ORDER BY name COLLATE NOCASE ASC`)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	defer rows.Close()

	var shops []model.Shop
	for rows.Next() {
		var sh model.Shop
		if err := rows.Scan(&sh.ID, &sh.Name, &sh.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan shop: %w", err)
		}
		shops = append(shops, sh)
	}
	return shops, rows.Err()
}

// syncShop records a shop name the first time it appears on an item.
func (s *ItemStore) syncShop(shop string) error {
	shop = strings.TrimSpace(shop)
	if shop == "" {
		return nil
	}
	_, err := s.db.Exec(`INSERT OR IGNORE INTO shops (name) VALUES (?)`, shop)
	if err != nil {
		return fmt.Errorf("sync shop: %w", err)
	}
	return nil
}

func scanItems(rows *sql.Rows) ([]model.GroceryItem, error) {
	var items []model.GroceryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func scanDates(rows *sql.Rows) ([]string, error) {
	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
