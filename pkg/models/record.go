package models

import (
	"github.com/shopspring/decimal"
)

// TimeLayout is the fixed-width UTC text form used for every timestamp
// column, so lexical order equals chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// OrderRecord is the persisted order header. Every column except id is
// nullable: rows written by older storefront builds may omit them.
type OrderRecord struct {
	ID                     string              `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderNumber            *string             `gorm:"type:varchar(32);uniqueIndex" json:"order_number"`
	Subtotal               decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"subtotal"`
	Tax                    decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"tax"`
	Shipping               decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"shipping"`
	Total                  decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"total"`
	Status                 *string             `gorm:"type:varchar(20);index" json:"status"`
	ShippingFullName       *string             `gorm:"type:varchar(200)" json:"shipping_full_name"`
	ShippingEmail          *string             `gorm:"type:varchar(200)" json:"shipping_email"`
	ShippingPhone          *string             `gorm:"type:varchar(50)" json:"shipping_phone"`
	ShippingAddress        *string             `gorm:"type:text" json:"shipping_address"`
	ShippingCity           *string             `gorm:"type:varchar(100)" json:"shipping_city"`
	ShippingState          *string             `gorm:"type:varchar(100)" json:"shipping_state"`
	ShippingPostalCode     *string             `gorm:"type:varchar(20)" json:"shipping_postal_code"`
	ShippingCountry        *string             `gorm:"type:varchar(100)" json:"shipping_country"`
	PaymentMethod          *string             `gorm:"type:varchar(40)" json:"payment_method"`
	SelectedPaymentAccount *string             `gorm:"type:text" json:"selected_payment_account"`
	TrackingNumber         *string             `gorm:"type:varchar(100)" json:"tracking_number"`
	Notes                  *string             `gorm:"type:text" json:"notes"`
	EstimatedDelivery      *string             `gorm:"type:varchar(32)" json:"estimated_delivery"`
	CreatedAt              *string             `gorm:"type:varchar(32);index" json:"created_at"`
	UpdatedAt              *string             `gorm:"type:varchar(32)" json:"updated_at"`

	Items []OrderItemRecord `gorm:"foreignKey:OrderID;references:ID" json:"order_items"`
}

func (OrderRecord) TableName() string {
	return "orders"
}

// OrderItemRecord is one persisted line item. ID is assigned by the store.
type OrderItemRecord struct {
	ID          uint64              `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     string              `gorm:"type:varchar(36);not null;index" json:"order_id"`
	ProductID   *string             `gorm:"type:varchar(64)" json:"product_id"`
	ProductName *string             `gorm:"type:varchar(255)" json:"product_name"`
	Price       decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"price"`
	Quantity    *int                `json:"quantity"`
	CreatedAt   *string             `gorm:"type:varchar(32)" json:"created_at"`
}

func (OrderItemRecord) TableName() string {
	return "order_items"
}
