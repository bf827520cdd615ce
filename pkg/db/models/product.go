package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/types"
)

// Product is a per-shop catalog entry. Stock is only mutated through the
// stock ledger and is never persisted negative.
type Product struct {
	ID                uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID            uuid.UUID             `gorm:"column:shop_id;type:uuid;not null"`
	Name              string                `gorm:"column:name;not null"`
	SKU               *string               `gorm:"column:sku"`
	Stock             int                   `gorm:"column:stock;not null;default:0"`
	LowStockThreshold int                   `gorm:"column:low_stock_threshold;not null;default:0"`
	BranchInventory   types.BranchInventory `gorm:"column:branch_inventory;type:jsonb"`
	Cost              decimal.Decimal       `gorm:"column:cost;type:numeric(12,2);not null;default:0"`
	Price             decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null;default:0"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsLowStock reports whether stock is at or under the configured threshold.
func (p Product) IsLowStock() bool {
	return p.LowStockThreshold > 0 && p.Stock <= p.LowStockThreshold
}
