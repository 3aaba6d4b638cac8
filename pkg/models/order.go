package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
	StatusReturned  Status = "returned"
)

// Statuses lists every persisted status in workflow order.
var Statuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
	StatusReturned,
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
	PaymentMobileBanking  PaymentMethod = "mobile_banking"
)

// PaymentAccount is a value snapshot of the collection account the customer
// chose at checkout. Later edits to the account do not reach old orders.
type PaymentAccount struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Provider      string `json:"provider"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
}

type PaymentInfo struct {
	Method          PaymentMethod   `json:"method"`
	SelectedAccount *PaymentAccount `json:"selected_account,omitempty"`
}

type ShippingAddress struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// LineItem holds the product name and price as they were when the order was
// placed.
type LineItem struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

type Order struct {
	ID                string          `json:"id"`
	OrderNumber       string          `json:"order_number"`
	Items             []LineItem      `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Tax               decimal.Decimal `json:"tax"`
	Shipping          decimal.Decimal `json:"shipping"`
	Total             decimal.Decimal `json:"total"`
	ShippingAddress   ShippingAddress `json:"shipping_address"`
	PaymentInfo       PaymentInfo     `json:"payment_info"`
	Status            Status          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery,omitempty"`
	TrackingNumber    string          `json:"tracking_number,omitempty"`
	Notes             string          `json:"notes,omitempty"`
}

// Clone returns a deep copy so cache snapshots can be handed to readers.
func (o Order) Clone() Order {
	c := o
	if o.Items != nil {
		c.Items = make([]LineItem, len(o.Items))
		copy(c.Items, o.Items)
	}
	if o.PaymentInfo.SelectedAccount != nil {
		acc := *o.PaymentInfo.SelectedAccount
		c.PaymentInfo.SelectedAccount = &acc
	}
	if o.EstimatedDelivery != nil {
		t := *o.EstimatedDelivery
		c.EstimatedDelivery = &t
	}
	return c
}
