package enums

import "fmt"

// OrderWarningCode classifies a post-checkout problem attached to an order.
type OrderWarningCode string

const (
	OrderWarningInventorySync OrderWarningCode = "inventory_sync_failed"
	OrderWarningStockClamped  OrderWarningCode = "stock_clamped"
)

var validOrderWarningCodes = []OrderWarningCode{
	OrderWarningInventorySync,
	OrderWarningStockClamped,
}

// String implements fmt.Stringer.
func (o OrderWarningCode) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderWarningCode.
func (o OrderWarningCode) IsValid() bool {
	for _, candidate := range validOrderWarningCodes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderWarningCode converts raw input into a OrderWarningCode.
func ParseOrderWarningCode(value string) (OrderWarningCode, error) {
	for _, candidate := range validOrderWarningCodes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order warning code %q", value)
}
