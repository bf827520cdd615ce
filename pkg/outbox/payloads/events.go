package payloads

import (
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderCreatedEvent is emitted once a checkout has persisted its order.
type OrderCreatedEvent struct {
	OrderID       uuid.UUID           `json:"order_id"`
	ShopID        uuid.UUID           `json:"shop_id"`
	OrderNumber   int64               `json:"order_number"`
	CashierID     uuid.UUID           `json:"cashier_id"`
	Total         decimal.Decimal     `json:"total"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	ItemCount     int                 `json:"item_count"`
	WarningCount  int                 `json:"warning_count"`
}

// OrderVoidedEvent is emitted when an order transitions to void.
type OrderVoidedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	ShopID      uuid.UUID `json:"shop_id"`
	OrderNumber int64     `json:"order_number"`
	VoidedBy    uuid.UUID `json:"voided_by"`
}

// StockAdjustedEvent mirrors a stock ledger entry.
type StockAdjustedEvent struct {
	AdjustmentID   uuid.UUID                   `json:"adjustment_id"`
	ShopID         uuid.UUID                   `json:"shop_id"`
	ProductID      uuid.UUID                   `json:"product_id"`
	Delta          int                         `json:"delta"`
	RequestedDelta int                         `json:"requested_delta"`
	StockAfter     int                         `json:"stock_after"`
	Reason         enums.StockAdjustmentReason `json:"reason"`
}

// LowStockEvent is emitted when a write leaves stock at or under its threshold.
type LowStockEvent struct {
	ShopID    uuid.UUID `json:"shop_id"`
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Stock     int       `json:"stock"`
	Threshold int       `json:"threshold"`
}

// PaymentConfirmedEvent is emitted when a pending payment receives its receipt.
type PaymentConfirmedEvent struct {
	TransactionID uuid.UUID           `json:"transaction_id"`
	OrderID       uuid.UUID           `json:"order_id"`
	ShopID        uuid.UUID           `json:"shop_id"`
	Method        enums.PaymentMethod `json:"method"`
	Amount        decimal.Decimal     `json:"amount"`
	Reference     string              `json:"reference"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
}
