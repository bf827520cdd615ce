package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockReconciliation pairs the system count with a physical count.
type StockReconciliation struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID        uuid.UUID  `gorm:"column:shop_id;type:uuid;not null"`
	ProductID     uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	SystemCount   int        `gorm:"column:system_count;not null"`
	PhysicalCount int        `gorm:"column:physical_count;not null"`
	Variance      int        `gorm:"column:variance;not null"`
	AdjustmentID  *uuid.UUID `gorm:"column:adjustment_id;type:uuid"`
	ActorID       uuid.UUID  `gorm:"column:actor_id;type:uuid;not null"`
	Note          *string    `gorm:"column:note"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (r *StockReconciliation) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
