package checkout

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
)

// Totals is the priced form of a cart.
type Totals struct {
	Subtotal      decimal.Decimal
	TaxRate       decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	Tendered      decimal.Decimal
	PaymentStatus enums.PaymentStatus
}

// Round2 rounds half away from zero to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineTotal is unit price times quantity, rounded to cents.
func LineTotal(line Line) decimal.Decimal {
	return Round2(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
}

// Subtotal sums the line totals.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(LineTotal(line))
	}
	return sum
}

// Tendered sums the payment amounts.
func Tendered(payments []Payment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount)
	}
	return Round2(sum)
}

// PaymentStatusFor compares the amount tendered with the order total.
func PaymentStatusFor(tendered, total decimal.Decimal) enums.PaymentStatus {
	switch {
	case tendered.GreaterThanOrEqual(total):
		return enums.PaymentStatusPaid
	case tendered.IsPositive():
		return enums.PaymentStatusPartial
	default:
		return enums.PaymentStatusUnpaid
	}
}

// Price computes tax, total and payment status for the cart at rate.
func Price(lines []Line, payments []Payment, rate decimal.Decimal) Totals {
	subtotal := Subtotal(lines)
	tax := Round2(subtotal.Mul(rate))
	total := subtotal.Add(tax)
	tendered := Tendered(payments)
	return Totals{
		Subtotal:      subtotal,
		TaxRate:       rate,
		Tax:           tax,
		Total:         total,
		Tendered:      tendered,
		PaymentStatus: PaymentStatusFor(tendered, total),
	}
}

// ClassifyPayment returns the initial status of a tendered payment. Methods
// that settle asynchronously stay pending until a reference is present.
func ClassifyPayment(method enums.PaymentMethod, reference *string) enums.PaymentTransactionStatus {
	if method.RequiresConfirmation() && (reference == nil || strings.TrimSpace(*reference) == "") {
		return enums.PaymentTransactionPending
	}
	return enums.PaymentTransactionCompleted
}
