package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
)

// PaymentTransaction records one payment attempt against an order.
type PaymentTransaction struct {
	ID          uuid.UUID                      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID      uuid.UUID                      `gorm:"column:shop_id;type:uuid;not null"`
	OrderID     uuid.UUID                      `gorm:"column:order_id;type:uuid;not null"`
	CashierID   uuid.UUID                      `gorm:"column:cashier_id;type:uuid;not null"`
	Method      enums.PaymentMethod            `gorm:"column:method;type:text;not null"`
	Amount      decimal.Decimal                `gorm:"column:amount;type:numeric(12,2);not null"`
	Reference   *string                        `gorm:"column:reference"`
	Status      enums.PaymentTransactionStatus `gorm:"column:status;type:text;not null"`
	ConfirmedAt *time.Time                     `gorm:"column:confirmed_at"`
	CreatedAt   time.Time                      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                      `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *PaymentTransaction) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
