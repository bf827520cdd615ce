package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/db/models"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/types"
)

// ListFilters narrows the order listing. Zero values are ignored.
type ListFilters struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	CashierID     *uuid.UUID
	DateFrom      *time.Time
	DateTo        *time.Time
}

// cacheFilters renders the filter set for the paginated cache key.
func (f ListFilters) cacheFilters() map[string]string {
	out := make(map[string]string, 5)
	if f.Status != nil {
		out["status"] = string(*f.Status)
	}
	if f.PaymentStatus != nil {
		out["paymentStatus"] = string(*f.PaymentStatus)
	}
	if f.CashierID != nil {
		out["cashierId"] = f.CashierID.String()
	}
	if f.DateFrom != nil {
		out["from"] = f.DateFrom.UTC().Format(time.RFC3339)
	}
	if f.DateTo != nil {
		out["to"] = f.DateTo.UTC().Format(time.RFC3339)
	}
	return out
}

// ItemDTO is one priced line of an order.
type ItemDTO struct {
	ProductID  uuid.UUID       `json:"productId"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	LineTotal  decimal.Decimal `json:"lineTotal"`
	CostAtSale decimal.Decimal `json:"costAtSale"`
}

// PaymentDTO is one tender line of an order.
type PaymentDTO struct {
	ID        uuid.UUID                      `json:"id"`
	Method    enums.PaymentMethod            `json:"method"`
	Amount    decimal.Decimal                `json:"amount"`
	Reference *string                        `json:"reference,omitempty"`
	Status    enums.PaymentTransactionStatus `json:"status"`
}

// OrderDTO is the order document returned by checkout and the order reads.
type OrderDTO struct {
	ID            uuid.UUID           `json:"id"`
	ShopID        uuid.UUID           `json:"shopId"`
	BranchID      *string             `json:"branchId,omitempty"`
	CashierID     uuid.UUID           `json:"cashierId"`
	OrderNumber   int64               `json:"orderNumber"`
	CustomerName  *string             `json:"customerName,omitempty"`
	Items         []ItemDTO           `json:"items"`
	Payments      []PaymentDTO        `json:"payments"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	TaxRate       decimal.Decimal     `json:"taxRate"`
	Tax           decimal.Decimal     `json:"tax"`
	Total         decimal.Decimal     `json:"total"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"paymentStatus"`
	Notes         *string             `json:"notes,omitempty"`
	Warnings      types.OrderWarnings `json:"warnings"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// HasWarning reports whether the order carries a warning with the code.
func (o *OrderDTO) HasWarning(code enums.OrderWarningCode) bool {
	for _, w := range o.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// FromModel maps an order row and its children to the DTO.
func FromModel(m *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:            m.ID,
		ShopID:        m.ShopID,
		BranchID:      m.BranchID,
		CashierID:     m.CashierID,
		OrderNumber:   m.OrderNumber,
		CustomerName:  m.CustomerName,
		Items:         make([]ItemDTO, 0, len(m.Items)),
		Payments:      make([]PaymentDTO, 0, len(m.Payments)),
		Subtotal:      m.Subtotal,
		TaxRate:       m.TaxRate,
		Tax:           m.Tax,
		Total:         m.Total,
		Status:        m.Status,
		PaymentStatus: m.PaymentStatus,
		Notes:         m.Notes,
		Warnings:      m.Warnings,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if dto.Warnings == nil {
		dto.Warnings = types.OrderWarnings{}
	}
	for _, item := range m.Items {
		dto.Items = append(dto.Items, ItemDTO{
			ProductID:  item.ProductID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			LineTotal:  item.LineTotal,
			CostAtSale: item.CostAtSale,
		})
	}
	for _, p := range m.Payments {
		dto.Payments = append(dto.Payments, PaymentDTO{
			ID:        p.ID,
			Method:    p.Method,
			Amount:    p.Amount,
			Reference: p.Reference,
			Status:    p.Status,
		})
	}
	return dto
}

// OrderList is one page of orders.
type OrderList struct {
	Orders []OrderDTO `json:"orders"`
	Page   int        `json:"page"`
	Limit  int        `json:"limit"`
	Total  int64      `json:"total"`
}

// Stats summarizes a shop's orders.
type Stats struct {
	OrderCount     int64           `json:"orderCount"`
	CompletedCount int64           `json:"completedCount"`
	PendingCount   int64           `json:"pendingCount"`
	VoidCount      int64           `json:"voidCount"`
	UnpaidCount    int64           `json:"unpaidCount"`
	PartialCount   int64           `json:"partialCount"`
	Revenue        decimal.Decimal `json:"revenue"`
	TaxCollected   decimal.Decimal `json:"taxCollected"`
}

// JoinNotes appends line to existing notes on a new line.
func JoinNotes(existing *string, line string) *string {
	line = strings.TrimSpace(line)
	if line == "" {
		return existing
	}
	if existing == nil || strings.TrimSpace(*existing) == "" {
		return &line
	}
	joined := strings.TrimRight(*existing, "\n") + "\n" + line
	return &joined
}
