package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/db/models"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/pagination"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/types"
)

// Repository persists products' stock and the stock ledger.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
// A nil tx keeps the base handle, matching the coordinator's "no session" mode.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindProduct loads a shop's product. lock takes a row lock on postgres inside a transaction.
func (r *Repository) FindProduct(ctx context.Context, shopID, productID uuid.UUID, lock bool) (*models.Product, error) {
	q := r.db.WithContext(ctx)
	if lock && q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var product models.Product
	if err := q.Where("id = ? AND shop_id = ?", productID, shopID).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindProducts loads the listed products of a shop keyed by id. Missing ids are absent from the map.
func (r *Repository) FindProducts(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).
		Where("shop_id = ? AND id IN ?", shopID, ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// SwapStock writes next only while the stored stock still equals expected.
// It reports false when another writer changed the row first.
func (r *Repository) SwapStock(ctx context.Context, shopID, productID uuid.UUID, expected, next int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND shop_id = ? AND stock = ?", productID, shopID, expected).
		Updates(map[string]any{
			"stock":      next,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SaveBranchInventory writes the branch sub-stock document in one update.
func (r *Repository) SaveBranchInventory(ctx context.Context, shopID, productID uuid.UUID, inv types.BranchInventory) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND shop_id = ?", productID, shopID).
		Updates(map[string]any{
			"branch_inventory": inv,
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// InsertAdjustment appends a ledger entry. Entries are never updated.
func (r *Repository) InsertAdjustment(ctx context.Context, adj *models.StockAdjustment) error {
	return r.db.WithContext(ctx).Create(adj).Error
}

// InsertReconciliation stores a physical count record.
func (r *Repository) InsertReconciliation(ctx context.Context, rec *models.StockReconciliation) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// ListAdjustments returns up to limit ledger entries for a product, newest first, after cursor.
func (r *Repository) ListAdjustments(ctx context.Context, shopID, productID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.StockAdjustment, error) {
	q := r.db.WithContext(ctx).
		Where("shop_id = ? AND product_id = ?", shopID, productID)
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var rows []models.StockAdjustment
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListLowStock returns products with a threshold whose stock is at or under it.
func (r *Repository) ListLowStock(ctx context.Context, shopID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	if err := r.db.WithContext(ctx).
		Where("shop_id = ? AND low_stock_threshold > 0 AND stock <= low_stock_threshold", shopID).
		Order("stock ASC").Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SumDeltas totals the applied deltas recorded for a product.
func (r *Repository) SumDeltas(ctx context.Context, shopID, productID uuid.UUID) (int, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.StockAdjustment{}).
		Where("shop_id = ? AND product_id = ?", shopID, productID).
		Select("COALESCE(SUM(delta), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return int(total), nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
