package orders

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/storeadmin/pkg/models"
)

// DefaultCountry fills shipping addresses that carry no country.
const DefaultCountry = "Bangladesh"

// FromRecord converts a persisted header (with nested items) into an Order.
// Missing optional columns are defaulted; only a missing id is fatal.
func FromRecord(rec models.OrderRecord) (models.Order, error) {
	if strings.TrimSpace(rec.ID) == "" {
		return models.Order{}, &MalformedRecordError{Field: "id"}
	}

	o := models.Order{
		ID:          rec.ID,
		OrderNumber: str(rec.OrderNumber),
		Items:       make([]models.LineItem, 0, len(rec.Items)),
		Subtotal:    money(rec.Subtotal),
		Tax:         money(rec.Tax),
		Shipping:    money(rec.Shipping),
		Total:       money(rec.Total),
		ShippingAddress: models.ShippingAddress{
			FullName:   str(rec.ShippingFullName),
			Email:      str(rec.ShippingEmail),
			Phone:      str(rec.ShippingPhone),
			Address:    str(rec.ShippingAddress),
			City:       str(rec.ShippingCity),
			State:      str(rec.ShippingState),
			PostalCode: str(rec.ShippingPostalCode),
			Country:    str(rec.ShippingCountry),
		},
		PaymentInfo: models.PaymentInfo{
			Method: models.PaymentMethod(str(rec.PaymentMethod)),
		},
		Status:         models.Status(str(rec.Status)),
		TrackingNumber: str(rec.TrackingNumber),
		Notes:          str(rec.Notes),
	}
	if o.ShippingAddress.Country == "" {
		o.ShippingAddress.Country = DefaultCountry
	}
	if o.Status == "" {
		o.Status = models.StatusPending
	}
	if o.PaymentInfo.Method == "" {
		o.PaymentInfo.Method = models.PaymentCashOnDelivery
	}
	if s := str(rec.SelectedPaymentAccount); s != "" {
		var acc models.PaymentAccount
		// An unreadable snapshot is dropped rather than failing the order.
		if err := json.Unmarshal([]byte(s), &acc); err == nil {
			o.PaymentInfo.SelectedAccount = &acc
		}
	}

	if t, ok := parseTime(rec.CreatedAt); ok {
		o.CreatedAt = t
	}
	o.UpdatedAt = o.CreatedAt
	if t, ok := parseTime(rec.UpdatedAt); ok && !t.Before(o.CreatedAt) {
		o.UpdatedAt = t
	}
	if t, ok := parseTime(rec.EstimatedDelivery); ok {
		o.EstimatedDelivery = &t
	}

	for _, it := range rec.Items {
		item := models.LineItem{
			ProductID:   str(it.ProductID),
			ProductName: str(it.ProductName),
			Price:       money(it.Price),
			Quantity:    1,
		}
		if it.ID != 0 {
			item.ID = strconv.FormatUint(it.ID, 10)
		}
		if it.Quantity != nil {
			item.Quantity = *it.Quantity
		}
		o.Items = append(o.Items, item)
	}

	return o, nil
}

// ToRecord converts an Order into its persisted header with nested items.
// Line item ids that are not store-assigned numbers are left for the store.
func ToRecord(o models.Order) models.OrderRecord {
	rec := models.OrderRecord{
		ID:                 o.ID,
		OrderNumber:        ptr(o.OrderNumber),
		Subtotal:           decimal.NewNullDecimal(o.Subtotal),
		Tax:                decimal.NewNullDecimal(o.Tax),
		Shipping:           decimal.NewNullDecimal(o.Shipping),
		Total:              decimal.NewNullDecimal(o.Total),
		Status:             ptr(string(o.Status)),
		ShippingFullName:   ptr(o.ShippingAddress.FullName),
		ShippingEmail:      ptr(o.ShippingAddress.Email),
		ShippingPhone:      ptr(o.ShippingAddress.Phone),
		ShippingAddress:    ptr(o.ShippingAddress.Address),
		ShippingCity:       ptr(o.ShippingAddress.City),
		ShippingState:      ptr(o.ShippingAddress.State),
		ShippingPostalCode: ptr(o.ShippingAddress.PostalCode),
		ShippingCountry:    ptr(o.ShippingAddress.Country),
		PaymentMethod:      ptr(string(o.PaymentInfo.Method)),
		TrackingNumber:     ptr(o.TrackingNumber),
		Notes:              ptr(o.Notes),
		CreatedAt:          ptr(FormatTime(o.CreatedAt)),
		UpdatedAt:          ptr(FormatTime(o.UpdatedAt)),
	}
	if o.EstimatedDelivery != nil {
		rec.EstimatedDelivery = ptr(FormatTime(*o.EstimatedDelivery))
	}
	if acc := o.PaymentInfo.SelectedAccount; acc != nil {
		// PaymentAccount holds only strings; Marshal cannot fail.
		data, _ := json.Marshal(acc)
		rec.SelectedPaymentAccount = ptr(string(data))
	}

	rec.Items = make([]models.OrderItemRecord, 0, len(o.Items))
	for _, it := range o.Items {
		item := models.OrderItemRecord{
			OrderID:     o.ID,
			ProductID:   ptr(it.ProductID),
			ProductName: ptr(it.ProductName),
			Price:       decimal.NewNullDecimal(it.Price),
			Quantity:    intPtr(it.Quantity),
			CreatedAt:   rec.CreatedAt,
		}
		if id, err := strconv.ParseUint(it.ID, 10, 64); err == nil {
			item.ID = id
		}
		rec.Items = append(rec.Items, item)
	}

	return rec
}

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(models.TimeLayout)
}

func parseTime(s *string) (time.Time, bool) {
	if s == nil || *s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(models.TimeLayout, *s)
	if err != nil {
		// Rows written by other clients may use plain RFC 3339.
		t, err = time.Parse(time.RFC3339Nano, *s)
		if err != nil {
			return time.Time{}, false
		}
	}
	return t.UTC(), true
}

func money(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}
