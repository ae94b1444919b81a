package domain

import "time"

type OrderStatus string

const (
	OrderStatusNotProcess OrderStatus = "Not Process"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// OrderStatuses lists every accepted status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusNotProcess,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) IsValid() bool {
	for _, status := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ParseOrderStatus matches raw exactly; "shipped" is not "Shipped".
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	status := OrderStatus(raw)
	return status, status.IsValid()
}

type Payment struct {
	Success   bool
	Reference string
}

// LineItem is a product reference with the price captured at checkout.
type LineItem struct {
	ProductID string
	Price     float64
}

type Order struct {
	ID        string
	BuyerID   string
	Items     []LineItem
	Status    OrderStatus
	Payment   Payment
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (o Order) Total() float64 {
	total := 0.0
	for _, item := range o.Items {
		total += item.Price
	}
	return total
}
