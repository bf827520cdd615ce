package enums

import "fmt"

// PaymentTransactionStatus tracks a single recorded payment attempt.
type PaymentTransactionStatus string

const (
	PaymentTransactionPending   PaymentTransactionStatus = "pending"
	PaymentTransactionCompleted PaymentTransactionStatus = "completed"
	PaymentTransactionFailed    PaymentTransactionStatus = "failed"
)

var validPaymentTransactionStatuses = []PaymentTransactionStatus{
	PaymentTransactionPending,
	PaymentTransactionCompleted,
	PaymentTransactionFailed,
}

// String implements fmt.Stringer.
func (p PaymentTransactionStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentTransactionStatus.
func (p PaymentTransactionStatus) IsValid() bool {
	for _, candidate := range validPaymentTransactionStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentTransactionStatus converts raw input into a PaymentTransactionStatus.
func ParsePaymentTransactionStatus(value string) (PaymentTransactionStatus, error) {
	for _, candidate := range validPaymentTransactionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment transaction status %q", value)
}
