package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgcheckout "github.com/DTBbuilds/SmartDuka-sub000/pkg/checkout"
)

// Input is a cart submitted for checkout.
type Input struct {
	ShopID       uuid.UUID             `json:"-"`
	CashierID    uuid.UUID             `json:"-"`
	BranchID     *string               `json:"branchId,omitempty" validate:"omitempty,max=64"`
	Items        []pkgcheckout.Line    `json:"items" validate:"required,min=1,dive"`
	Payments     []pkgcheckout.Payment `json:"payments,omitempty" validate:"dive"`
	Notes        string                `json:"notes,omitempty" validate:"max=1000"`
	CustomerName string                `json:"customerName,omitempty" validate:"max=120"`
	// TaxRate overrides the shop's configured rate when set.
	TaxRate *decimal.Decimal `json:"taxRate,omitempty"`
}

// VoidInput reverses a completed or pending order.
type VoidInput struct {
	ShopID  uuid.UUID `json:"-"`
	ActorID uuid.UUID `json:"-"`
	OrderID uuid.UUID `json:"-"`
	Reason  string    `json:"reason" validate:"max=500"`
}
