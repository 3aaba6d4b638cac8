package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storeadmin/pkg/models"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func order(id string, status models.Status, age time.Duration) models.Order {
	return models.Order{
		ID:          id,
		OrderNumber: "ORD-" + id,
		Status:      status,
		CreatedAt:   base.Add(-age),
		UpdatedAt:   base.Add(-age),
		Items:       []models.LineItem{},
	}
}

func fixture() []models.Order {
	a := order("1001", models.StatusPending, time.Hour)
	a.ShippingAddress = models.ShippingAddress{FullName: "Rahim Uddin", Email: "rahim@example.com"}
	b := order("1002", models.StatusShipped, 3*time.Hour)
	b.ShippingAddress = models.ShippingAddress{FullName: "Karim Ahmed", Email: "karim@example.com"}
	c := order("1003", models.StatusDelivered, 2*time.Hour)
	c.ShippingAddress = models.ShippingAddress{FullName: "Nusrat Jahan", Email: "nusrat@example.com"}
	d := order("1004", models.StatusConfirmed, 30*time.Minute)
	d.ShippingAddress = models.ShippingAddress{FullName: "Rahima Khatun", Email: "rk@example.com"}
	e := order("1005", "on_hold", 5*time.Hour)
	return []models.Order{a, b, c, d, e}
}

func ids(orders []models.Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.ID
	}
	return out
}

func TestFilterByCategory(t *testing.T) {
	orders := fixture()

	assert.Equal(t, orders, FilterByCategory(orders, CategoryAll))
	assert.Equal(t, []string{"1001", "1004"}, ids(FilterByCategory(orders, CategoryPaymentDue)))
	assert.Equal(t, []string{"1002"}, ids(FilterByCategory(orders, CategoryDispatched)))
	assert.Equal(t, []string{"1005"}, ids(FilterByCategory(orders, CategoryProcessing)))
	assert.Empty(t, FilterByCategory(orders, CategoryReturned))
}

func TestFilterPartitionsOrders(t *testing.T) {
	orders := fixture()

	total := 0
	for _, c := range Categories {
		total += len(FilterByCategory(orders, c))
	}

	assert.Equal(t, len(orders), total)
}

func TestSearch(t *testing.T) {
	orders := fixture()

	tests := []struct {
		name string
		term string
		want []string
	}{
		{"empty matches all", "", ids(orders)},
		{"blank is a literal term", "   ", []string{}},
		{"by name prefix, case insensitive", "RAHIM", []string{"1001", "1004"}},
		{"by email", "karim@", []string{"1002"}},
		{"by order number", "ord-1003", []string{"1003"}},
		{"inner space", "rahim u", []string{"1001"}},
		{"not trimmed", "  nusrat ", []string{}},
		{"unknown", "nomatch__", []string{}},
		{"no match", "zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Search(orders, tt.term)))
		})
	}
}

func TestCountsByCategory(t *testing.T) {
	orders := fixture()

	counts := CountsByCategory(orders)

	assert.Equal(t, 5, counts.All)
	assert.Equal(t, 2, counts.ByCategory[CategoryPaymentDue])
	assert.Equal(t, 1, counts.ByCategory[CategoryDispatched])
	assert.Equal(t, 1, counts.ByCategory[CategoryCompleted])
	assert.Equal(t, 1, counts.ByCategory[CategoryProcessing])
	require.Contains(t, counts.ByCategory, CategoryReturned)
	assert.Equal(t, 0, counts.ByCategory[CategoryReturned])

	sum := 0
	for _, n := range counts.ByCategory {
		sum += n
	}
	assert.Equal(t, counts.All, sum)
}

func TestCountsByCategoryEmpty(t *testing.T) {
	counts := CountsByCategory(nil)

	assert.Equal(t, 0, counts.All)
	assert.Len(t, counts.ByCategory, len(Categories))
}

func TestSortedByRecency(t *testing.T) {
	orders := fixture()

	sorted := SortedByRecency(orders)

	assert.Equal(t, []string{"1004", "1001", "1003", "1002", "1005"}, ids(sorted))
	// Input untouched.
	assert.Equal(t, []string{"1001", "1002", "1003", "1004", "1005"}, ids(orders))
}

func TestSortedByRecencyIsStable(t *testing.T) {
	orders := []models.Order{
		order("a", models.StatusPending, time.Hour),
		order("b", models.StatusPending, time.Hour),
		order("c", models.StatusPending, 0),
		order("d", models.StatusPending, time.Hour),
	}

	assert.Equal(t, []string{"c", "a", "b", "d"}, ids(SortedByRecency(orders)))
}
