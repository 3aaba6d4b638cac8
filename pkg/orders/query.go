package orders

import (
	"sort"
	"strings"

	"github.com/example/storeadmin/pkg/models"
)

// Counts holds badge counts per display category.
type Counts struct {
	All        int              `json:"all"`
	ByCategory map[Category]int `json:"by_category"`
}

// FilterByCategory returns orders whose status maps to c. CategoryAll
// returns orders unchanged.
func FilterByCategory(orders []models.Order, c Category) []models.Order {
	if c == CategoryAll {
		return orders
	}
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if DisplayCategory(o.Status) == c {
			out = append(out, o)
		}
	}
	return out
}

// Search matches term case-insensitively against the order number and the
// customer's name and email. An empty term matches everything; whitespace is
// part of the term.
func Search(orders []models.Order, term string) []models.Order {
	if term == "" {
		return orders
	}
	term = strings.ToLower(term)
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if strings.Contains(strings.ToLower(o.OrderNumber), term) ||
			strings.Contains(strings.ToLower(o.ShippingAddress.FullName), term) ||
			strings.Contains(strings.ToLower(o.ShippingAddress.Email), term) {
			out = append(out, o)
		}
	}
	return out
}

// CountsByCategory counts orders per display category in one pass.
func CountsByCategory(orders []models.Order) Counts {
	counts := Counts{
		All:        len(orders),
		ByCategory: make(map[Category]int, len(Categories)),
	}
	for _, c := range Categories {
		counts.ByCategory[c] = 0
	}
	for _, o := range orders {
		counts.ByCategory[DisplayCategory(o.Status)]++
	}
	return counts
}

// SortedByRecency returns a copy of orders, newest first. Orders created at
// the same instant keep their relative order.
func SortedByRecency(orders []models.Order) []models.Order {
	out := make([]models.Order, len(orders))
	copy(out, orders)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
