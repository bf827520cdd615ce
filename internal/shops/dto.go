package shops

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/db/models"
)

// ShopDTO is the settings view of a shop.
type ShopDTO struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Currency       string           `json:"currency"`
	TaxRate        *decimal.Decimal `json:"taxRate,omitempty"`
	LowStockAlerts bool             `json:"lowStockAlerts"`
}

// FromModel maps a shop row to its DTO.
func FromModel(m *models.Shop) *ShopDTO {
	dto := &ShopDTO{
		ID:             m.ID,
		Name:           m.Name,
		Currency:       m.Currency,
		LowStockAlerts: m.LowStockAlerts,
	}
	if m.TaxRate.Valid {
		rate := m.TaxRate.Decimal
		dto.TaxRate = &rate
	}
	return dto
}

// UpdateSettingsInput carries the optional settings fields. Nil fields are left unchanged.
type UpdateSettingsInput struct {
	Name           *string          `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Currency       *string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	TaxRate        *decimal.Decimal `json:"taxRate,omitempty"`
	ClearTaxRate   bool             `json:"clearTaxRate,omitempty"`
	LowStockAlerts *bool            `json:"lowStockAlerts,omitempty"`
}

// TaxRateSource records where a resolved tax rate came from.
type TaxRateSource string

const (
	TaxRateFromShop    TaxRateSource = "shop"
	TaxRateFromDefault TaxRateSource = "default"
)
