package enums

import "fmt"

// OrderStatus tracks an order from creation to approval. Approved is the
// terminal state: approved orders can no longer be updated or deleted.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusCanceled OrderStatus = "canceled"
	OrderStatusApproved OrderStatus = "approved"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusCanceled,
	OrderStatusApproved,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the order is frozen against further mutation.
func (o OrderStatus) IsTerminal() bool {
	return o == OrderStatusApproved
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
