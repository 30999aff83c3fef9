package enums

import "fmt"

// CartStatus tracks where a cart sits in its lifecycle. Completed and
// inactive carts are terminal for item mutation.
type CartStatus string

const (
	CartStatusActive    CartStatus = "active"
	CartStatusInactive  CartStatus = "inactive"
	CartStatusCompleted CartStatus = "completed"
)

var validCartStatuses = []CartStatus{
	CartStatusActive,
	CartStatusInactive,
	CartStatusCompleted,
}

// String implements fmt.Stringer.
func (c CartStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CartStatus.
func (c CartStatus) IsValid() bool {
	for _, candidate := range validCartStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsTerminal reports whether item mutation is disallowed in this state.
func (c CartStatus) IsTerminal() bool {
	return c == CartStatusInactive || c == CartStatusCompleted
}

// ParseCartStatus converts raw input into a CartStatus.
func ParseCartStatus(value string) (CartStatus, error) {
	for _, candidate := range validCartStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart status %q", value)
}
