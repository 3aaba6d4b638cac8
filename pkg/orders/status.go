package orders

import "github.com/example/storeadmin/pkg/models"

// Category is the coarse admin-facing grouping of a persisted status.
type Category string

const (
	CategoryAll        Category = "all"
	CategoryCompleted  Category = "completed"
	CategoryDispatched Category = "dispatched"
	CategoryPaymentDue Category = "payment_due"
	CategoryCancelled  Category = "cancelled"
	CategoryReturned   Category = "returned"
	CategoryProcessing Category = "processing"
)

// Categories is every value DisplayCategory can return.
var Categories = []Category{
	CategoryCompleted,
	CategoryDispatched,
	CategoryPaymentDue,
	CategoryCancelled,
	CategoryReturned,
	CategoryProcessing,
}

// DisplayCategory is the only place status-to-category semantics live.
// Filtering, counting and status actions all go through it.
func DisplayCategory(status models.Status) Category {
	switch status {
	case models.StatusDelivered:
		return CategoryCompleted
	case models.StatusShipped:
		return CategoryDispatched
	case models.StatusPending, models.StatusConfirmed:
		return CategoryPaymentDue
	case models.StatusCancelled:
		return CategoryCancelled
	case models.StatusReturned:
		return CategoryReturned
	default:
		return CategoryProcessing
	}
}

// ParseCategory accepts "all" and every display category.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	if c == CategoryAll {
		return c, true
	}
	for _, v := range Categories {
		if c == v {
			return c, true
		}
	}
	return "", false
}

// StatusActions returns the statuses an operator is offered for an order
// currently in the given category.
func StatusActions(c Category) []models.Status {
	switch c {
	case CategoryPaymentDue:
		return []models.Status{models.StatusConfirmed, models.StatusShipped, models.StatusCancelled}
	case CategoryProcessing:
		return []models.Status{models.StatusShipped, models.StatusCancelled}
	case CategoryDispatched:
		return []models.Status{models.StatusDelivered, models.StatusReturned}
	case CategoryCompleted:
		return []models.Status{models.StatusReturned}
	case CategoryCancelled, CategoryReturned:
		return []models.Status{models.StatusPending}
	default:
		return nil
	}
}
