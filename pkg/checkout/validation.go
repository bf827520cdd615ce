package checkout

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
	pkgerrors "github.com/DTBbuilds/SmartDuka-sub000/pkg/errors"
)

// Line is one cart line as submitted by the till.
type Line struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Payment is one tendered payment line.
type Payment struct {
	Method    enums.PaymentMethod `json:"method"`
	Amount    decimal.Decimal     `json:"amount"`
	Reference *string             `json:"reference,omitempty"`
}

// Violation names one rejected cart field.
type Violation struct {
	Index   int       `json:"index"`
	Field   string    `json:"field"`
	Product uuid.UUID `json:"productId,omitempty"`
	Reason  string    `json:"reason"`
}

// ValidateCart rejects an empty cart, malformed lines and a non-positive
// subtotal before anything touches the database.
func ValidateCart(lines []Line, payments []Payment, taxRate *decimal.Decimal) error {
	if len(lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	var violations []Violation
	for i, line := range lines {
		if line.ProductID == uuid.Nil {
			violations = append(violations, Violation{Index: i, Field: "productId", Reason: "required"})
		}
		if line.Quantity <= 0 {
			violations = append(violations, Violation{Index: i, Field: "quantity", Product: line.ProductID, Reason: "must be greater than zero"})
		}
		if line.UnitPrice.IsNegative() {
			violations = append(violations, Violation{Index: i, Field: "unitPrice", Product: line.ProductID, Reason: "must not be negative"})
		}
	}
	for i, p := range payments {
		if !p.Method.IsValid() {
			violations = append(violations, Violation{Index: i, Field: "payments.method", Reason: fmt.Sprintf("unknown method %q", p.Method)})
		}
		if !p.Amount.IsPositive() {
			violations = append(violations, Violation{Index: i, Field: "payments.amount", Reason: "must be greater than zero"})
		}
		if p.Reference != nil && len(strings.TrimSpace(*p.Reference)) > 120 {
			violations = append(violations, Violation{Index: i, Field: "payments.reference", Reason: "too long"})
		}
	}
	if taxRate != nil && (taxRate.IsNegative() || taxRate.GreaterThanOrEqual(decimal.NewFromInt(1))) {
		violations = append(violations, Violation{Index: -1, Field: "taxRate", Reason: "must be a fraction between 0 and 1"})
	}
	if len(violations) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%d invalid cart field(s)", len(violations))).
			WithDetails(map[string]any{"violations": violations})
	}

	if !Subtotal(lines).IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "subtotal must be greater than zero")
	}
	return nil
}
