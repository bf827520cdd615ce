package enums

import "fmt"

// StockAdjustmentReason is the reason code recorded on every stock ledger entry.
type StockAdjustmentReason string

const (
	StockReasonSale         StockAdjustmentReason = "sale"
	StockReasonCorrection   StockAdjustmentReason = "correction"
	StockReasonDamage       StockAdjustmentReason = "damage"
	StockReasonLoss         StockAdjustmentReason = "loss"
	StockReasonReturn       StockAdjustmentReason = "return"
	StockReasonTransfer     StockAdjustmentReason = "transfer"
	StockReasonBranchImport StockAdjustmentReason = "branch_import"
	StockReasonRestock      StockAdjustmentReason = "restock"
	StockReasonManual       StockAdjustmentReason = "manual"
)

var validStockAdjustmentReasons = []StockAdjustmentReason{
	StockReasonSale,
	StockReasonCorrection,
	StockReasonDamage,
	StockReasonLoss,
	StockReasonReturn,
	StockReasonTransfer,
	StockReasonBranchImport,
	StockReasonRestock,
	StockReasonManual,
}

// String implements fmt.Stringer.
func (s StockAdjustmentReason) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockAdjustmentReason.
func (s StockAdjustmentReason) IsValid() bool {
	for _, candidate := range validStockAdjustmentReasons {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockAdjustmentReason converts raw input into a StockAdjustmentReason.
func ParseStockAdjustmentReason(value string) (StockAdjustmentReason, error) {
	for _, candidate := range validStockAdjustmentReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock adjustment reason %q", value)
}

// ManualReasons are the reasons an operator may record directly.
var ManualReasons = []StockAdjustmentReason{
	StockReasonCorrection,
	StockReasonDamage,
	StockReasonLoss,
	StockReasonReturn,
	StockReasonRestock,
	StockReasonManual,
}

// IsManual reports whether operators may record the reason directly.
func (s StockAdjustmentReason) IsManual() bool {
	for _, candidate := range ManualReasons {
		if candidate == s {
			return true
		}
	}
	return false
}
