package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/types"
)

// Order is one checkout. After creation only warnings, notes, status, and
// payment status change; voiding is a status transition.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID        uuid.UUID           `gorm:"column:shop_id;type:uuid;not null"`
	BranchID      *string             `gorm:"column:branch_id"`
	CashierID     uuid.UUID           `gorm:"column:cashier_id;type:uuid;not null"`
	OrderNumber   int64               `gorm:"column:order_number;not null"`
	CustomerName  *string             `gorm:"column:customer_name"`
	Subtotal      decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	TaxRate       decimal.Decimal     `gorm:"column:tax_rate;type:numeric(6,4);not null"`
	Tax           decimal.Decimal     `gorm:"column:tax;type:numeric(12,2);not null"`
	Total         decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	Status        enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'completed'"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`
	Notes         *string             `gorm:"column:notes"`
	Warnings      types.OrderWarnings `gorm:"column:warnings;type:jsonb"`
	Items         []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments      []OrderPayment      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is a priced line with the unit cost captured at sale time.
type OrderItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID  uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name       string          `gorm:"column:name;not null"`
	Quantity   int             `gorm:"column:quantity;not null"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineTotal  decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	CostAtSale decimal.Decimal `gorm:"column:cost_at_sale;type:numeric(12,2);not null;default:0"`
	Position   int             `gorm:"column:position;not null"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// OrderPayment is a tender line embedded in the order document.
type OrderPayment struct {
	ID        uuid.UUID                      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID                      `gorm:"column:order_id;type:uuid;not null"`
	Method    enums.PaymentMethod            `gorm:"column:method;type:text;not null"`
	Amount    decimal.Decimal                `gorm:"column:amount;type:numeric(12,2);not null"`
	Reference *string                        `gorm:"column:reference"`
	Status    enums.PaymentTransactionStatus `gorm:"column:status;type:text;not null"`
	Position  int                            `gorm:"column:position;not null"`
}

func (p *OrderPayment) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
