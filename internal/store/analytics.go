package store

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/mthomps/restock/internal/model"
)

// AnalyticsStore answers the aggregate queries behind the dashboard charts.
type AnalyticsStore struct {
	db *sql.DB
}

func NewAnalyticsStore(db *sql.DB) *AnalyticsStore {
	return &AnalyticsStore{db: db}
}

// MonthlyCounts returns item counts for the given number of months ending at
// now, oldest first. Months with no items are included with a zero count.
func (s *AnalyticsStore) MonthlyCounts(now time.Time, months int) ([]model.MonthCount, error) {
	if months <= 0 {
		return nil, nil
	}

	counts := make(map[string]int)
	rows, err := s.db.Query(`SELECT substr(date, 1, 7) AS month, COUNT(*) FROM grocery_items GROUP BY month`)
	if err != nil {
		return nil, fmt.Errorf("monthly counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var month string
		var count int
		if err := rows.Scan(&month, &count); err != nil {
			return nil, fmt.Errorf("scan monthly count: %w", err)
		}
		counts[month] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]model.MonthCount, 0, months)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := months - 1; i >= 0; i-- {
		m := first.AddDate(0, -i, 0).Format("2006-01")
		out = append(out, model.MonthCount{Month: m, Count: counts[m]})
	}
	return out, nil
}

// ShopCounts returns item counts per shop, most frequent first. Items with
// no shop are grouped under the empty name.
func (s *AnalyticsStore) ShopCounts() ([]model.ShopCount, error) {
	rows, err := s.db.Query(
		`SELECT shop, COUNT(*) FROM grocery_items GROUP BY shop ORDER BY COUNT(*) DESC, shop ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("shop counts: %w", err)
	}
	defer rows.Close()

	var out []model.ShopCount
	for rows.Next() {
		var sc model.ShopCount
		if err := rows.Scan(&sc.Shop, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan shop count: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// PurchaseBreakdown counts items whose product name has a purchase record
// against those that never got one.
func (s *AnalyticsStore) PurchaseBreakdown() (*model.PurchaseBreakdown, error) {
	var b model.PurchaseBreakdown
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COUNT(CASE WHEN EXISTS (SELECT 1 FROM purchase_records pr WHERE pr.product = gi.name) THEN 1 END)
		 FROM grocery_items gi`,
	).Scan(&b.Total, &b.Purchased)
	if err != nil {
		return nil, fmt.Errorf("purchase breakdown: %w", err)
	}

	b.Unpurchased = b.Total - b.Purchased
	if b.Total > 0 {
		b.MissPct = int(math.Round(float64(b.Unpurchased) / float64(b.Total) * 100))
	}
	return &b, nil
}

// TopItems returns the most frequently listed product names.
func (s *AnalyticsStore) TopItems(limit int) ([]model.ItemFrequency, error) {
	rows, err := s.db.Query(
		`SELECT name, COUNT(*) FROM grocery_items
		 GROUP BY name COLLATE NOCASE ORDER BY COUNT(*) DESC, name COLLATE NOCASE ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("top items: %w", err)
	}
	defer rows.Close()

	var out []model.ItemFrequency
	for rows.Next() {
		var f model.ItemFrequency
		if err := rows.Scan(&f.Name, &f.Count); err != nil {
			return nil, fmt.Errorf("scan item frequency: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
