package enums

import "fmt"

// PaymentMethod describes how a customer tendered a payment.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodMpesa  PaymentMethod = "mpesa"
	PaymentMethodStripe PaymentMethod = "stripe"
	PaymentMethodOther  PaymentMethod = "other"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodCard,
	PaymentMethodMpesa,
	PaymentMethodStripe,
	PaymentMethodOther,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}

// RequiresConfirmation reports whether the method settles asynchronously
// (mobile-money push, hosted card charge) and stays pending until a receipt exists.
func (p PaymentMethod) RequiresConfirmation() bool {
	return p == PaymentMethodMpesa || p == PaymentMethodStripe
}
