package enums

import "fmt"

// OrderStatus tracks the fulfillment lifecycle of an order.
type OrderStatus string

const (
	OrderStatusNew              OrderStatus = "new"
	OrderStatusPaid             OrderStatus = "paid"
	OrderStatusAccepted         OrderStatus = "accepted"
	OrderStatusPreparing        OrderStatus = "preparing"
	OrderStatusReadyForDispatch OrderStatus = "ready_for_dispatch"
	OrderStatusOutForDelivery   OrderStatus = "out_for_delivery"
	OrderStatusDelivered        OrderStatus = "delivered"
	OrderStatusCanceled         OrderStatus = "canceled"
	OrderStatusRefunded         OrderStatus = "refunded"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusPaid,
	OrderStatusAccepted,
	OrderStatusPreparing,
	OrderStatusReadyForDispatch,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCanceled,
	OrderStatusRefunded,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the normal fulfillment flow.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCanceled, OrderStatusRefunded:
		return true
	default:
		return false
	}
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
