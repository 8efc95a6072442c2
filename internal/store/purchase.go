package store

import (
	"database/sql"
	"fmt"

	"github.com/mthomps/restock/internal/model"
)

type PurchaseStore struct {
	db *sql.DB
}

func NewPurchaseStore(db *sql.DB) *PurchaseStore {
	return &PurchaseStore{db: db}
}

// Record upserts the last purchase date for a product name.
func (s *PurchaseStore) Record(product, date string) error {
	_, err := s.db.Exec(
		`INSERT INTO purchase_records (product, purchased_on, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(product) DO UPDATE SET purchased_on = excluded.purchased_on, updated_at = CURRENT_TIMESTAMP`,
		product, date,
	)
	if err != nil {
		return fmt.Errorf("record purchase: %w", err)
	}
	return nil
}

// Get returns the purchase record for a product name, matched
// case-insensitively. Returns nil if the product was never purchased.
func (s *PurchaseStore) Get(product string) (*model.PurchaseRecord, error) {
	var rec model.PurchaseRecord
	err := s.db.QueryRow(
		`SELECT product, purchased_on, updated_at FROM purchase_records WHERE product = ?`, product,
	).Scan(&rec.Product, &rec.PurchasedOn, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get purchase record: %w", err)
	}
	return &rec, nil
}

func (s *PurchaseStore) List() ([]model.PurchaseRecord, error) {
	rows, err := s.db.Query(`SELECT product, purchased_on, updated_at FROM purchase_records ORDER BY purchased_on DESC, product ASC`)
	if err != nil {
		return nil, fmt.Errorf("list purchase records: %w", err)
	}
	defer rows.Close()

	var recs []model.PurchaseRecord
	for rows.Next() {
		var rec model.PurchaseRecord
		if err := rows.Scan(&rec.Product, &rec.PurchasedOn, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan purchase record: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *PurchaseStore) Delete(product string) error {
	_, err := s.db.Exec(`DELETE FROM purchase_records WHERE product = ?`, product)
	if err != nil {
		return fmt.Errorf("delete purchase record: %w", err)
	}
	return nil
}

// PruneOrphans deletes purchase records whose product no longer matches any
// item name. Run at startup and after item deletions.
func (s *PurchaseStore) PruneOrphans() (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM purchase_records
		 WHERE NOT EXISTS (SELECT 1 FROM grocery_items gi WHERE purchase_records.product = gi.name)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prune purchase records: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
