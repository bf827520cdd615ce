package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/db/models"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/pagination"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/types"
)

// Repository defines persistence operations for orders and their children.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	NextOrderNumber(ctx context.Context, shopID uuid.UUID) (int64, error)
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, shopID, orderID uuid.UUID) (*models.Order, error)
	AppendWarnings(ctx context.Context, shopID, orderID uuid.UUID, warnings types.OrderWarnings, note string) (*models.Order, error)
	TransitionStatus(ctx context.Context, shopID, orderID uuid.UUID, from []enums.OrderStatus, to enums.OrderStatus) (bool, error)
	UpdatePaymentStatus(ctx context.Context, shopID, orderID uuid.UUID, status enums.PaymentStatus) error
	UpdatePaymentLine(ctx context.Context, orderID, paymentID uuid.UUID, status enums.PaymentTransactionStatus, reference *string) error
	List(ctx context.Context, shopID uuid.UUID, page pagination.Page, filters ListFilters) ([]models.Order, int64, error)
	Stats(ctx context.Context, shopID uuid.UUID) (*Stats, error)
}
