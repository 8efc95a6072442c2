// Package suggest offers item-name completions from the user's own history
// plus a built-in knowledge base of common grocery items.
package suggest

import "strings"

// Suggest returns name completions for a query. History entries come first,
// then knowledge-base entries; matching is case-insensitive substring, de-duped
// case-insensitively, and never echoes an exact match back. Returns at most
// limit results (unlimited if limit <= 0).
func Suggest(query string, history []string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []string
	seen := make(map[string]struct{})
	add := func(name string) bool {
		lower := strings.ToLower(name)
		if lower == q || !strings.Contains(lower, q) {
			return true
		}
		if _, ok := seen[lower]; ok {
			return true
		}
		seen[lower] = struct{}{}
		out = append(out, name)
		return limit <= 0 || len(out) < limit
	}

	for _, name := range history {
		if !add(name) {
			return out
		}
	}
	for _, name := range commonItems {
		if !add(name) {
			return out
		}
	}
	return out
}

var commonItems = []string{
	"Milk", "Eggs", "Bread", "Butter", "Cheese", "Rice", "Wheat", "Flour", "Sugar", "Salt",
	"Potato", "Onion", "Tomato", "Garlic", "Ginger", "Apple", "Banana", "Orange", "Chicken", "Fish", "Oil",
	"Tea", "Coffee", "Yogurt", "Curd", "Paneer", "Spinach", "Carrot", "Beans", "Peas", "Cucumber",
	"Chili", "Coriander", "Lemon", "Biscuit", "Jam", "Honey", "Ketchup", "Soap", "Shampoo", "Toothpaste",
	"Detergent", "Dal", "Lentils", "Pasta", "Noodles", "Mutton", "Beef", "Tofu", "Mushroom", "Capsicum",
	"Pumpkin", "Cabbage", "Cauliflower", "Broccoli", "Grapes", "Papaya", "Pineapple", "Watermelon", "Coconut",
	"Peanut", "Almond", "Cashew", "Raisin", "Dates", "Oats", "Cornflakes", "Cereal", "Ghee",
	"Mustard", "Vinegar", "Soy Sauce", "Sausage", "Bacon", "Ham", "Turkey", "Ice Cream", "Chocolate", "Candy",
	"Juice", "Soda", "Soft Drink", "Mineral Water", "Bottled Water", "Snacks", "Chips", "Namkeen", "Pickle", "Sauce",
	"Mayonnaise", "Vermicelli", "Custard", "Jelly", "Soup", "Soup Mix", "Ready Meal", "Frozen Veg", "Frozen Fruit", "Frozen Meat",
}
