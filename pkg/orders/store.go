package orders

//go:generate mockgen -source=store.go -destination=mock_store_test.go -package=orders

import (
	"context"
	"time"

	"github.com/example/storeadmin/pkg/models"
)

// Store is the remote source of truth for orders.
type Store interface {
	// InsertOrder writes one order header. Nested items are ignored.
	InsertOrder(ctx context.Context, rec *models.OrderRecord) error
	// InsertOrderItems writes the line items of an existing header.
	InsertOrderItems(ctx context.Context, items []models.OrderItemRecord) error
	// UpdateOrder sets the given columns on one header. It returns an error
	// matching ErrNotFound when no row has that id.
	UpdateOrder(ctx context.Context, id string, fields map[string]interface{}) error
	// ListOrders returns every header with its items, newest first.
	ListOrders(ctx context.Context) ([]models.OrderRecord, error)
}

// ChangeFeed pushes insert/update/delete notifications for order headers.
type ChangeFeed interface {
	Subscribe(ctx context.Context, handler func(models.ChangeEvent)) (Subscription, error)
}

type Subscription interface {
	Close() error
}

// Notifier delivers order confirmations. Implementations must not block on
// delivery.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, order models.Order) error
}

// AuditEntry describes one lifecycle action for the audit trail.
type AuditEntry struct {
	Action  string                 `json:"action"`
	OrderID string                 `json:"order_id"`
	Data    map[string]interface{} `json:"data"`
	At      time.Time              `json:"at"`
}

type Auditor interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// AuditTrail reads recorded entries back, newest first.
type AuditTrail interface {
	History(ctx context.Context, orderID string, limit int64) ([]AuditEntry, error)
}
