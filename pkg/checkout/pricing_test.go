package checkout

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
)

func TestPrice_DefaultRateScenario(t *testing.T) {
	lines := []Line{{ProductID: uuid.New(), Quantity: 2, UnitPrice: decimal.NewFromInt(100)}}
	payments := []Payment{{Method: enums.PaymentMethodCash, Amount: decimal.NewFromInt(232)}}

	totals := Price(lines, payments, decimal.RequireFromString("0.16"))
	if totals.Subtotal.StringFixed(2) != "200.00" {
		t.Fatalf("subtotal %s", totals.Subtotal)
	}
	if totals.Tax.StringFixed(2) != "32.00" {
		t.Fatalf("tax %s", totals.Tax)
	}
	if totals.Total.StringFixed(2) != "232.00" {
		t.Fatalf("total %s", totals.Total)
	}
	if totals.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("payment status %s", totals.PaymentStatus)
	}
}

func TestPrice_RoundsTaxToCents(t *testing.T) {
	lines := []Line{{ProductID: uuid.New(), Quantity: 3, UnitPrice: decimal.RequireFromString("33.33")}}
	totals := Price(lines, nil, decimal.RequireFromString("0.16"))
	// 99.99 * 0.16 = 15.9984
	if totals.Tax.String() != "16" {
		t.Fatalf("expected tax 16, got %s", totals.Tax)
	}
	if totals.Total.StringFixed(2) != "115.99" {
		t.Fatalf("expected total 115.99, got %s", totals.Total.StringFixed(2))
	}
	if totals.PaymentStatus != enums.PaymentStatusUnpaid {
		t.Fatalf("expected unpaid, got %s", totals.PaymentStatus)
	}
}

func TestPaymentStatusFor(t *testing.T) {
	total := decimal.RequireFromString("232")
	cases := []struct {
		tendered string
		want     enums.PaymentStatus
	}{
		{"232", enums.PaymentStatusPaid},
		{"500", enums.PaymentStatusPaid},
		{"100", enums.PaymentStatusPartial},
		{"0", enums.PaymentStatusUnpaid},
	}
	for _, tc := range cases {
		if got := PaymentStatusFor(decimal.RequireFromString(tc.tendered), total); got != tc.want {
			t.Fatalf("tendered %s: expected %s got %s", tc.tendered, tc.want, got)
		}
	}
}

func TestClassifyPayment(t *testing.T) {
	ref := "RCPT-1"
	blank := "  "
	cases := []struct {
		method    enums.PaymentMethod
		reference *string
		want      enums.PaymentTransactionStatus
	}{
		{enums.PaymentMethodCash, nil, enums.PaymentTransactionCompleted},
		{enums.PaymentMethodCard, nil, enums.PaymentTransactionCompleted},
		{enums.PaymentMethodOther, nil, enums.PaymentTransactionCompleted},
		{enums.PaymentMethodMpesa, nil, enums.PaymentTransactionPending},
		{enums.PaymentMethodMpesa, &blank, enums.PaymentTransactionPending},
		{enums.PaymentMethodMpesa, &ref, enums.PaymentTransactionCompleted},
		{enums.PaymentMethodStripe, nil, enums.PaymentTransactionPending},
		{enums.PaymentMethodStripe, &ref, enums.PaymentTransactionCompleted},
	}
	for _, tc := range cases {
		if got := ClassifyPayment(tc.method, tc.reference); got != tc.want {
			t.Fatalf("method %s: expected %s got %s", tc.method, tc.want, got)
		}
	}
}
