package model

import "time"

// Unit values accepted for grocery items and reminders.
const (
	UnitKg    = "kg"
	UnitLiter = "liter"
	UnitPiece = "piece"
)

// ValidUnit reports whether u is one of the accepted units.
func ValidUnit(u string) bool {
	return u == UnitKg || u == UnitLiter || u == UnitPiece
}

type GroceryItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Quantity  float64   `json:"quantity"`
	Unit      string    `json:"unit"`
	Shop      string    `json:"shop,omitempty"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

type Shop struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
