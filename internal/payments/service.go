package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/DTBbuilds/SmartDuka-sub000/internal/orders"
	"github.com/DTBbuilds/SmartDuka-sub000/internal/txn"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/cache"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/checkout"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/db/models"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
	pkgerrors "github.com/DTBbuilds/SmartDuka-sub000/pkg/errors"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/logger"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/outbox"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/outbox/payloads"
)

type txRunner interface {
	Run(ctx context.Context, work txn.Work, opts ...txn.Option) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service records payment attempts and settles asynchronous ones.
type Service interface {
	RecordCheckoutPayments(ctx context.Context, order *models.Order) ([]models.PaymentTransaction, error)
	ConfirmPayment(ctx context.Context, input SettleInput) (*models.PaymentTransaction, error)
	FailPayment(ctx context.Context, input SettleInput) (*models.PaymentTransaction, error)
	ListByOrder(ctx context.Context, shopID, orderID uuid.UUID) ([]models.PaymentTransaction, error)
}

// SettleInput identifies a pending transaction and the receipt that settles it.
type SettleInput struct {
	ShopID        uuid.UUID `json:"-"`
	ActorID       uuid.UUID `json:"-"`
	TransactionID uuid.UUID `json:"-"`
	Reference     string    `json:"reference" validate:"omitempty,max=120"`
}

type service struct {
	repo   Repository
	orders orders.Repository
	tx     txRunner
	cache  *cache.Cache
	outbox outboxPublisher
	logg   *logger.Logger
	now    func() time.Time
}

// NewService wires the payments service.
func NewService(repo Repository, orderRepo orders.Repository, tx txRunner, c *cache.Cache, publisher outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if c == nil {
		return nil, fmt.Errorf("cache required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:   repo,
		orders: orderRepo,
		tx:     tx,
		cache:  c,
		outbox: publisher,
		logg:   logg,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// RecordCheckoutPayments inserts one transaction per payment line of a
// persisted order. Each transaction shares its id with the order's line.
// Every line is attempted; failures are combined in the returned error.
func (s *service) RecordCheckoutPayments(ctx context.Context, order *models.Order) ([]models.PaymentTransaction, error) {
	if order == nil {
		return nil, fmt.Errorf("order required")
	}
	recorded := make([]models.PaymentTransaction, 0, len(order.Payments))
	var errs error
	for _, line := range order.Payments {
		row := models.PaymentTransaction{
			ID:        line.ID,
			ShopID:    order.ShopID,
			OrderID:   order.ID,
			CashierID: order.CashierID,
			Method:    line.Method,
			Amount:    line.Amount,
			Reference: line.Reference,
			Status:    line.Status,
		}
		if row.Status == enums.PaymentTransactionCompleted {
			confirmed := s.now()
			row.ConfirmedAt = &confirmed
		}
		if err := s.repo.Create(ctx, &row); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("record %s payment %s: %w", line.Method, line.Amount.StringFixed(2), err))
			continue
		}
		recorded = append(recorded, row)
	}
	return recorded, errs
}

func (s *service) ConfirmPayment(ctx context.Context, input SettleInput) (*models.PaymentTransaction, error) {
	if strings.TrimSpace(input.Reference) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference required")
	}
	return s.settle(ctx, input, enums.PaymentTransactionCompleted)
}

func (s *service) FailPayment(ctx context.Context, input SettleInput) (*models.PaymentTransaction, error) {
	return s.settle(ctx, input, enums.PaymentTransactionFailed)
}

func (s *service) settle(ctx context.Context, input SettleInput, status enums.PaymentTransactionStatus) (*models.PaymentTransaction, error) {
	if input.ShopID == uuid.Nil || input.TransactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id and transaction id are required")
	}
	var reference *string
	if ref := strings.TrimSpace(input.Reference); ref != "" {
		reference = &ref
	}

	var (
		settled       *models.PaymentTransaction
		paymentStatus enums.PaymentStatus
	)
	err := s.tx.Run(ctx, func(ctx context.Context, tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)

		current, err := repo.FindByID(ctx, input.ShopID, input.TransactionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "payment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load payment")
		}
		ok, err := repo.Settle(ctx, current.ID, status, reference, s.now())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "settle payment")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payment is not pending").
				WithDetails(map[string]any{"status": current.Status})
		}
		if err := orderRepo.UpdatePaymentLine(ctx, current.OrderID, current.ID, status, reference); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order payment line")
		}

		order, err := orderRepo.FindByID(ctx, input.ShopID, current.OrderID)
		if err != nil {
			return orders.MapLookupError(err)
		}
		paid, err := repo.SumActive(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum payments")
		}
		paymentStatus = checkout.PaymentStatusFor(paid, order.Total)
		if paymentStatus != order.PaymentStatus {
			if err := orderRepo.UpdatePaymentStatus(ctx, input.ShopID, order.ID, paymentStatus); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order payment status")
			}
		}

		settled, err = repo.FindByID(ctx, input.ShopID, current.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload payment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	shopKey := input.ShopID.String()
	s.cache.Invalidate(ctx, cache.OrderPatterns(shopKey)...)

	fields := map[string]any{
		"shop_id":        shopKey,
		"order_id":       settled.OrderID.String(),
		"transaction_id": settled.ID.String(),
		"status":         settled.Status,
		"payment_status": paymentStatus,
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), "payment settled")

	if status == enums.PaymentTransactionCompleted {
		event := outbox.DomainEvent{
			EventType:     enums.EventPaymentConfirmed,
			AggregateType: enums.AggregatePayment,
			AggregateID:   settled.ID,
			ShopID:        input.ShopID,
			Actor:         &outbox.ActorRef{UserID: input.ActorID, ShopID: &input.ShopID},
			Data: payloads.PaymentConfirmedEvent{
				TransactionID: settled.ID,
				OrderID:       settled.OrderID,
				ShopID:        input.ShopID,
				Method:        settled.Method,
				Amount:        settled.Amount,
				Reference:     input.Reference,
				PaymentStatus: paymentStatus,
			},
		}
		if err := s.outbox.Emit(ctx, nil, event); err != nil {
			s.logg.WarnErr(s.logg.WithFields(ctx, fields), "failed to queue payment event", err)
		}
	}
	return settled, nil
}

func (s *service) ListByOrder(ctx context.Context, shopID, orderID uuid.UUID) ([]models.PaymentTransaction, error) {
	if _, err := s.orders.FindByID(ctx, shopID, orderID); err != nil {
		return nil, orders.MapLookupError(err)
	}
	txns, err := s.repo.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payments")
	}
	return txns, nil
}
