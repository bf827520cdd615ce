package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/db/models"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/pagination"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/types"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// NextOrderNumber returns one past the shop's highest order number. Concurrent
// callers can observe the same value; the unique index rejects the loser.
func (r *repository) NextOrderNumber(ctx context.Context, shopID uuid.UUID) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).
		Raw("SELECT COALESCE(MAX(order_number), 0) + 1 FROM orders WHERE shop_id = ?", shopID).
		Scan(&next).Error
	return next, err
}

// Create inserts the order with its items and payment lines.
func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, shopID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.withChildren(r.db.WithContext(ctx)).
		Where("id = ? AND shop_id = ?", orderID, shopID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// AppendWarnings adds warnings and a notes line to an existing order. Other
// fields of the order are left untouched.
func (r *repository) AppendWarnings(ctx context.Context, shopID, orderID uuid.UUID, warnings types.OrderWarnings, note string) (*models.Order, error) {
	order, err := r.FindByID(ctx, shopID, orderID)
	if err != nil {
		return nil, err
	}
	merged := append(types.OrderWarnings{}, order.Warnings...)
	merged = append(merged, warnings...)
	notes := JoinNotes(order.Notes, note)

	err = r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND shop_id = ?", orderID, shopID).
		Updates(map[string]any{"warnings": merged, "notes": notes}).Error
	if err != nil {
		return nil, err
	}
	order.Warnings = merged
	order.Notes = notes
	return order, nil
}

// TransitionStatus moves the order to status `to` when its current status is
// one of from. It reports false when no row matched.
func (r *repository) TransitionStatus(ctx context.Context, shopID, orderID uuid.UUID, from []enums.OrderStatus, to enums.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND shop_id = ? AND status IN ?", orderID, shopID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, shopID, orderID uuid.UUID, status enums.PaymentStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND shop_id = ?", orderID, shopID).
		Update("payment_status", status).Error
}

// UpdatePaymentLine updates the order's copy of a payment line.
func (r *repository) UpdatePaymentLine(ctx context.Context, orderID, paymentID uuid.UUID, status enums.PaymentTransactionStatus, reference *string) error {
	updates := map[string]any{"status": status}
	if reference != nil {
		updates["reference"] = *reference
	}
	return r.db.WithContext(ctx).
		Model(&models.OrderPayment{}).
		Where("id = ? AND order_id = ?", paymentID, orderID).
		Updates(updates).Error
}

func (r *repository) List(ctx context.Context, shopID uuid.UUID, page pagination.Page, filters ListFilters) ([]models.Order, int64, error) {
	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.Order{}).Where("shop_id = ?", shopID), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Order
	err := r.withChildren(r.applyFilters(r.db.WithContext(ctx).Where("shop_id = ?", shopID), filters)).
		Order("created_at DESC").
		Order("order_number DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) Stats(ctx context.Context, shopID uuid.UUID) (*Stats, error) {
	var byStatus []struct {
		Status enums.OrderStatus
		Count  int64
		Total  decimal.Decimal
		Tax    decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total), 0) AS total, COALESCE(SUM(tax), 0) AS tax").
		Where("shop_id = ?", shopID).
		Group("status").
		Scan(&byStatus).Error
	if err != nil {
		return nil, err
	}

	var byPayment []struct {
		PaymentStatus enums.PaymentStatus
		Count         int64
	}
	err = r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("payment_status, COUNT(*) AS count").
		Where("shop_id = ? AND status <> ?", shopID, enums.OrderStatusVoid).
		Group("payment_status").
		Scan(&byPayment).Error
	if err != nil {
		return nil, err
	}

	stats := &Stats{Revenue: decimal.Zero, TaxCollected: decimal.Zero}
	for _, row := range byStatus {
		stats.OrderCount += row.Count
		switch row.Status {
		case enums.OrderStatusCompleted:
			stats.CompletedCount = row.Count
			stats.Revenue = row.Total.Round(2)
			stats.TaxCollected = row.Tax.Round(2)
		case enums.OrderStatusPending:
			stats.PendingCount = row.Count
		case enums.OrderStatusVoid:
			stats.VoidCount = row.Count
		}
	}
	for _, row := range byPayment {
		switch row.PaymentStatus {
		case enums.PaymentStatusUnpaid:
			stats.UnpaidCount = row.Count
		case enums.PaymentStatusPartial:
			stats.PartialCount = row.Count
		}
	}
	return stats, nil
}

func (r *repository) withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

func (r *repository) applyFilters(query *gorm.DB, filters ListFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filters.PaymentStatus)
	}
	if filters.CashierID != nil {
		query = query.Where("cashier_id = ?", *filters.CashierID)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", filters.DateFrom.UTC())
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", filters.DateTo.UTC())
	}
	return query
}
