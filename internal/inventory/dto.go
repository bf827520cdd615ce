package inventory

import (
	"github.com/google/uuid"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/db/models"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
)

// LineRequest is one product and quantity to check.
type LineRequest struct {
	ProductID uuid.UUID
	Name      string
	Quantity  int
}

// ValidationResult reports the outcome of ValidateAvailability.
type ValidationResult struct {
	OK     bool
	Issues []StockIssue
}

// Err returns nil when every line passed, otherwise an INSUFFICIENT_STOCK error.
func (r *ValidationResult) Err() error {
	if r == nil || r.OK {
		return nil
	}
	return (&StockValidationError{Issues: r.Issues}).AsAppError()
}

// ApplyDeltaInput describes a single stock change.
type ApplyDeltaInput struct {
	ShopID    uuid.UUID
	ProductID uuid.UUID
	Delta     int
	Reason    enums.StockAdjustmentReason
	ActorID   uuid.UUID
	BranchID  *string
	Reference *string
	Note      string
}

// DeltaResult is the post-write snapshot of an ApplyDelta call.
type DeltaResult struct {
	Product    *models.Product
	Adjustment *models.StockAdjustment
	Clamped    bool
}

// NewStock is the stock value after the write.
func (r *DeltaResult) NewStock() int {
	return r.Adjustment.StockAfter
}

// AdjustStockInput is an operator-recorded adjustment.
type AdjustStockInput struct {
	ShopID         uuid.UUID                   `json:"-"`
	ActorID        uuid.UUID                   `json:"-"`
	ProductID      uuid.UUID                   `json:"productId" validate:"required"`
	QuantityChange int                         `json:"quantityChange" validate:"required"`
	Reason         enums.StockAdjustmentReason `json:"reason" validate:"required"`
	Notes          string                      `json:"notes" validate:"max=500"`
	BranchID       *string                     `json:"branchId,omitempty"`
}

// UpdateStockInput is the plain stock update used by the product screens.
type UpdateStockInput struct {
	ShopID         uuid.UUID `json:"-"`
	ActorID        uuid.UUID `json:"-"`
	ProductID      uuid.UUID `json:"-"`
	QuantityChange int       `json:"quantityChange" validate:"required"`
}

// TransferInput moves branch sub-stock between two branches.
type TransferInput struct {
	ShopID     uuid.UUID `json:"-"`
	ActorID    uuid.UUID `json:"-"`
	ProductID  uuid.UUID `json:"productId" validate:"required"`
	FromBranch string    `json:"fromBranch" validate:"required"`
	ToBranch   string    `json:"toBranch" validate:"required,nefield=FromBranch"`
	Quantity   int       `json:"quantity" validate:"required,gt=0"`
	Note       string    `json:"note" validate:"max=500"`
}

// TransferResult carries the updated product and the ledger entry.
type TransferResult struct {
	Product    *models.Product
	Adjustment *models.StockAdjustment
}

// ReconcileInput records a physical count.
type ReconcileInput struct {
	ShopID        uuid.UUID `json:"-"`
	ActorID       uuid.UUID `json:"-"`
	ProductID     uuid.UUID `json:"productId" validate:"required"`
	PhysicalCount int       `json:"physicalCount" validate:"gte=0"`
	Note          string    `json:"note" validate:"max=500"`
}

// ReconcileResult pairs the reconciliation row with the correction, if any.
type ReconcileResult struct {
	Reconciliation *models.StockReconciliation
	Correction     *DeltaResult
}

// BranchImportRow sets one product's sub-stock at a branch.
type BranchImportRow struct {
	ProductID       uuid.UUID `json:"productId" validate:"required"`
	Stock           int       `json:"stock"`
	ReorderPoint    int       `json:"reorderPoint" validate:"gte=0"`
	ReorderQuantity int       `json:"reorderQuantity" validate:"gte=0"`
}

// ImportBranchStockInput is a bulk branch stock import.
type ImportBranchStockInput struct {
	ShopID   uuid.UUID         `json:"-"`
	ActorID  uuid.UUID         `json:"-"`
	BranchID string            `json:"branchId" validate:"required"`
	Rows     []BranchImportRow `json:"rows" validate:"required,min=1,dive"`
}

// ImportResult reports per-row outcomes. Failed rows never block the rest.
type ImportResult struct {
	Applied int          `json:"applied"`
	Issues  []StockIssue `json:"issues"`
}

// AdjustmentPage is one cursor page of ledger entries, newest first.
type AdjustmentPage struct {
	Items      []models.StockAdjustment `json:"items"`
	NextCursor string                   `json:"nextCursor,omitempty"`
}

// LowStockItem is a product at or under its threshold.
type LowStockItem struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	SKU       *string   `json:"sku,omitempty"`
	Stock     int       `json:"stock"`
	Threshold int       `json:"threshold"`
}
