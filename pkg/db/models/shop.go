package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Shop is a tenant. Every other row is scoped by shop_id.
type Shop struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string              `gorm:"column:name;not null"`
	Currency       string              `gorm:"column:currency;not null;default:'KES'"`
	TaxRate        decimal.NullDecimal `gorm:"column:tax_rate;type:numeric(6,4)"`
	LowStockAlerts bool                `gorm:"column:low_stock_alerts;not null"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Shop) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
