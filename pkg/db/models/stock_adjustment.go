package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
)

// StockAdjustment is an immutable stock ledger entry. Delta is the change
// actually applied (after clamping); RequestedDelta is what the caller asked for.
type StockAdjustment struct {
	ID             uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID         uuid.UUID                   `gorm:"column:shop_id;type:uuid;not null"`
	ProductID      uuid.UUID                   `gorm:"column:product_id;type:uuid;not null"`
	Delta          int                         `gorm:"column:delta;not null"`
	RequestedDelta int                         `gorm:"column:requested_delta;not null"`
	StockBefore    int                         `gorm:"column:stock_before;not null"`
	StockAfter     int                         `gorm:"column:stock_after;not null"`
	Reason         enums.StockAdjustmentReason `gorm:"column:reason;type:text;not null"`
	ActorID        uuid.UUID                   `gorm:"column:actor_id;type:uuid;not null"`
	BranchID       *string                     `gorm:"column:branch_id"`
	Reference      *string                     `gorm:"column:reference"`
	Note           *string                     `gorm:"column:note"`
	CreatedAt      time.Time                   `gorm:"column:created_at;autoCreateTime"`
}

func (a *StockAdjustment) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Clamped reports whether the applied delta differs from the requested one.
func (a StockAdjustment) Clamped() bool {
	return a.Delta != a.RequestedDelta
}
