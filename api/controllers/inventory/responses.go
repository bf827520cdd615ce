package inventory

import (
	"time"

	"github.com/google/uuid"

	internalinventory "github.com/DTBbuilds/SmartDuka-sub000/internal/inventory"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/db/models"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/types"
)

type productResponse struct {
	ID                uuid.UUID             `json:"id"`
	Name              string                `json:"name"`
	SKU               *string               `json:"sku,omitempty"`
	Stock             int                   `json:"stock"`
	LowStockThreshold int                   `json:"lowStockThreshold"`
	LowStock          bool                  `json:"lowStock"`
	BranchInventory   types.BranchInventory `json:"branchInventory,omitempty"`
	UpdatedAt         time.Time             `json:"updatedAt"`
}

func newProductResponse(p *models.Product) *productResponse {
	if p == nil {
		return nil
	}
	return &productResponse{
		ID:                p.ID,
		Name:              p.Name,
		SKU:               p.SKU,
		Stock:             p.Stock,
		LowStockThreshold: p.LowStockThreshold,
		LowStock:          p.IsLowStock(),
		BranchInventory:   p.BranchInventory,
		UpdatedAt:         p.UpdatedAt,
	}
}

type adjustmentResponse struct {
	ID             uuid.UUID                   `json:"id"`
	ProductID      uuid.UUID                   `json:"productId"`
	Delta          int                         `json:"delta"`
	RequestedDelta int                         `json:"requestedDelta"`
	Clamped        bool                        `json:"clamped"`
	StockBefore    int                         `json:"stockBefore"`
	StockAfter     int                         `json:"stockAfter"`
	Reason         enums.StockAdjustmentReason `json:"reason"`
	ActorID        uuid.UUID                   `json:"actorId"`
	BranchID       *string                     `json:"branchId,omitempty"`
	Reference      *string                     `json:"reference,omitempty"`
	Note           *string                     `json:"note,omitempty"`
	CreatedAt      time.Time                   `json:"createdAt"`
}

func newAdjustmentResponse(a *models.StockAdjustment) *adjustmentResponse {
	if a == nil {
		return nil
	}
	return &adjustmentResponse{
		ID:             a.ID,
		ProductID:      a.ProductID,
		Delta:          a.Delta,
		RequestedDelta: a.RequestedDelta,
		Clamped:        a.Clamped(),
		StockBefore:    a.StockBefore,
		StockAfter:     a.StockAfter,
		Reason:         a.Reason,
		ActorID:        a.ActorID,
		BranchID:       a.BranchID,
		Reference:      a.Reference,
		Note:           a.Note,
		CreatedAt:      a.CreatedAt,
	}
}

type adjustmentPageResponse struct {
	Items      []*adjustmentResponse `json:"items"`
	NextCursor string                `json:"nextCursor,omitempty"`
}

func newAdjustmentPageResponse(page *internalinventory.AdjustmentPage) adjustmentPageResponse {
	out := adjustmentPageResponse{Items: []*adjustmentResponse{}}
	if page == nil {
		return out
	}
	for i := range page.Items {
		out.Items = append(out.Items, newAdjustmentResponse(&page.Items[i]))
	}
	out.NextCursor = page.NextCursor
	return out
}

type transferResponse struct {
	Product    *productResponse    `json:"product"`
	Adjustment *adjustmentResponse `json:"adjustment"`
}

type reconciliationResponse struct {
	ID            uuid.UUID           `json:"id"`
	ProductID     uuid.UUID           `json:"productId"`
	SystemCount   int                 `json:"systemCount"`
	PhysicalCount int                 `json:"physicalCount"`
	Variance      int                 `json:"variance"`
	Correction    *adjustmentResponse `json:"correction,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
}

func newReconciliationResponse(result *internalinventory.ReconcileResult) *reconciliationResponse {
	if result == nil || result.Reconciliation == nil {
		return nil
	}
	rec := result.Reconciliation
	out := &reconciliationResponse{
		ID:            rec.ID,
		ProductID:     rec.ProductID,
		SystemCount:   rec.SystemCount,
		PhysicalCount: rec.PhysicalCount,
		Variance:      rec.Variance,
		CreatedAt:     rec.CreatedAt,
	}
	if result.Correction != nil {
		out.Correction = newAdjustmentResponse(result.Correction.Adjustment)
	}
	return out
}
