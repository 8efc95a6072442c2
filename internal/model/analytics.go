package model

// MonthCount is the number of items added in one calendar month.
type MonthCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int    `json:"count"`
}

// ShopCount is the number of items attributed to one shop.
type ShopCount struct {
	Shop  string `json:"shop"`
	Count int    `json:"count"`
}

// PurchaseBreakdown summarizes how many listed items were ever purchased.
type PurchaseBreakdown struct {
	Total       int `json:"total"`
	Purchased   int `json:"purchased"`
	Unpurchased int `json:"unpurchased"`
	MissPct     int `json:"miss_pct"`
}

// ItemFrequency is how often a product name appears across all lists.
type ItemFrequency struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
