package checkout

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/DTBbuilds/SmartDuka-sub000/internal/inventory"
	"github.com/DTBbuilds/SmartDuka-sub000/internal/orders"
	"github.com/DTBbuilds/SmartDuka-sub000/internal/shops"
	"github.com/DTBbuilds/SmartDuka-sub000/internal/txn"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/cache"
	pkgcheckout "github.com/DTBbuilds/SmartDuka-sub000/pkg/checkout"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/db"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/db/models"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
	pkgerrors "github.com/DTBbuilds/SmartDuka-sub000/pkg/errors"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/logger"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/metrics"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/outbox"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/outbox/payloads"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/types"
)

// maxOrderNumberAttempts bounds retries when a concurrent checkout takes the
// same order number.
const maxOrderNumberAttempts = 3

// Checkout outcomes recorded on the checkout metrics.
const (
	outcomeCompleted    = "completed"
	outcomeWithWarnings = "completed_with_warnings"
	outcomeRejected     = "rejected"
	outcomeFailed       = "failed"
)

type txRunner interface {
	Run(ctx context.Context, work txn.Work, opts ...txn.Option) error
}

type stockLedger interface {
	ValidateAvailability(ctx context.Context, shopID uuid.UUID, lines []inventory.LineRequest) (*inventory.ValidationResult, error)
	ApplyDelta(ctx context.Context, tx *gorm.DB, input inventory.ApplyDeltaInput) (*inventory.DeltaResult, error)
}

type productCatalog interface {
	FindProducts(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

type taxResolver interface {
	ResolveTaxRate(ctx context.Context, shopID uuid.UUID) (decimal.Decimal, shops.TaxRateSource)
}

type paymentRecorder interface {
	RecordCheckoutPayments(ctx context.Context, order *models.Order) ([]models.PaymentTransaction, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service turns a cart into a durable order and keeps stock in step with it.
type Service interface {
	Checkout(ctx context.Context, input Input) (*orders.OrderDTO, error)
	VoidOrder(ctx context.Context, input VoidInput) (*orders.OrderDTO, error)
}

// Deps lists the collaborators of the checkout service. Metrics may be nil.
type Deps struct {
	Tx       txRunner
	Orders   orders.Repository
	Stock    stockLedger
	Catalog  productCatalog
	Tax      taxResolver
	Payments paymentRecorder
	Cache    *cache.Cache
	Outbox   outboxPublisher
	Logger   *logger.Logger
	Metrics  *metrics.CoreMetrics
}

type service struct {
	tx       txRunner
	orders   orders.Repository
	stock    stockLedger
	catalog  productCatalog
	tax      taxResolver
	payments paymentRecorder
	cache    *cache.Cache
	outbox   outboxPublisher
	logg     *logger.Logger
	metrics  *metrics.CoreMetrics
	now      func() time.Time
}

// NewService builds the checkout service.
func NewService(deps Deps) (Service, error) {
	switch {
	case deps.Tx == nil:
		return nil, fmt.Errorf("tx runner required")
	case deps.Orders == nil:
		return nil, fmt.Errorf("orders repository required")
	case deps.Stock == nil:
		return nil, fmt.Errorf("stock ledger required")
	case deps.Catalog == nil:
		return nil, fmt.Errorf("product catalog required")
	case deps.Tax == nil:
		return nil, fmt.Errorf("tax resolver required")
	case deps.Payments == nil:
		return nil, fmt.Errorf("payment recorder required")
	case deps.Cache == nil:
		return nil, fmt.Errorf("cache required")
	case deps.Outbox == nil:
		return nil, fmt.Errorf("outbox publisher required")
	case deps.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:       deps.Tx,
		orders:   deps.Orders,
		stock:    deps.Stock,
		catalog:  deps.Catalog,
		tax:      deps.Tax,
		payments: deps.Payments,
		cache:    deps.Cache,
		outbox:   deps.Outbox,
		logg:     deps.Logger,
		metrics:  deps.Metrics,
		now:      time.Now,
	}, nil
}

// Checkout validates the cart, checks stock, prices it and persists the order.
// Only those steps can fail the call. Stock decrements, payment recording and
// the activity event run after the order exists and are best effort: their
// failures are logged and surfaced as warnings on the returned order.
func (s *service) Checkout(ctx context.Context, input Input) (*orders.OrderDTO, error) {
	started := s.now()
	if input.ShopID == uuid.Nil || input.CashierID == uuid.Nil {
		return nil, s.reject(started, pkgerrors.New(pkgerrors.CodeValidation, "shop id and cashier id are required"))
	}
	ctx = s.logg.WithShopID(ctx, input.ShopID.String())
	ctx = s.logg.WithUserID(ctx, input.CashierID.String())

	if err := pkgcheckout.ValidateCart(input.Items, input.Payments, input.TaxRate); err != nil {
		return nil, s.reject(started, err)
	}

	requests := make([]inventory.LineRequest, 0, len(input.Items))
	for _, line := range input.Items {
		requests = append(requests, inventory.LineRequest{ProductID: line.ProductID, Name: line.Name, Quantity: line.Quantity})
	}
	availability, err := s.stock.ValidateAvailability(ctx, input.ShopID, requests)
	if err != nil {
		return nil, s.fail(ctx, started, err, "stock check failed")
	}
	if err := availability.Err(); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "issues", len(availability.Issues)), "checkout rejected for insufficient stock")
		return nil, s.reject(started, err)
	}

	order, err := s.buildOrder(ctx, input)
	if err != nil {
		return nil, s.fail(ctx, started, err, "checkout pricing failed")
	}
	if err := s.persist(ctx, order); err != nil {
		return nil, s.fail(ctx, started, err, "order write failed")
	}

	warnings := s.reduceInventory(ctx, order)
	if len(warnings) > 0 {
		s.annotate(ctx, order, warnings, syncNote(warnings))
	}

	if _, err := s.payments.RecordCheckoutPayments(ctx, order); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "order_id", order.ID.String()), "failed to record checkout payments", err)
	}

	s.cache.Invalidate(ctx, cache.OrderPatterns(input.ShopID.String())...)
	s.emitOrderCreated(ctx, order)

	outcome := outcomeCompleted
	if len(order.Warnings) > 0 {
		outcome = outcomeWithWarnings
	}
	s.metrics.ObserveCheckout(outcome, s.now().Sub(started))

	fields := map[string]any{
		"order_id":       order.ID.String(),
		"order_number":   order.OrderNumber,
		"total":          order.Total.StringFixed(2),
		"payment_status": order.PaymentStatus,
		"warnings":       len(order.Warnings),
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), "checkout completed")
	return orders.FromModel(order), nil
}

// buildOrder prices the cart and snapshots names and unit costs.
func (s *service) buildOrder(ctx context.Context, input Input) (*models.Order, error) {
	var rate decimal.Decimal
	if input.TaxRate != nil {
		rate = *input.TaxRate
	} else {
		rate, _ = s.tax.ResolveTaxRate(ctx, input.ShopID)
	}
	totals := pkgcheckout.Price(input.Items, input.Payments, rate)

	ids := make([]uuid.UUID, 0, len(input.Items))
	for _, line := range input.Items {
		ids = append(ids, line.ProductID)
	}
	products, err := s.catalog.FindProducts(ctx, input.ShopID, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products for pricing")
	}

	order := &models.Order{
		ShopID:        input.ShopID,
		BranchID:      input.BranchID,
		CashierID:     input.CashierID,
		CustomerName:  optionalString(input.CustomerName),
		Subtotal:      totals.Subtotal,
		TaxRate:       totals.TaxRate,
		Tax:           totals.Tax,
		Total:         totals.Total,
		Status:        enums.OrderStatusCompleted,
		PaymentStatus: totals.PaymentStatus,
		Notes:         optionalString(input.Notes),
		Warnings:      types.OrderWarnings{},
		Items:         make([]models.OrderItem, 0, len(input.Items)),
		Payments:      make([]models.OrderPayment, 0, len(input.Payments)),
	}
	for i, line := range input.Items {
		name := strings.TrimSpace(line.Name)
		cost := decimal.Zero
		if product, ok := products[line.ProductID]; ok {
			if name == "" {
				name = product.Name
			}
			cost = product.Cost
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID:  line.ProductID,
			Name:       name,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			LineTotal:  pkgcheckout.LineTotal(line),
			CostAtSale: cost,
			Position:   i,
		})
	}
	for i, p := range input.Payments {
		reference := p.Reference
		if reference != nil && strings.TrimSpace(*reference) == "" {
			reference = nil
		}
		order.Payments = append(order.Payments, models.OrderPayment{
			Method:    p.Method,
			Amount:    p.Amount,
			Reference: reference,
			Status:    pkgcheckout.ClassifyPayment(p.Method, reference),
			Position:  i,
		})
	}
	return order, nil
}

// persist writes the order and its children as one unit. A unique violation
// on the order number means another checkout won the number; take the next one.
func (s *service) persist(ctx context.Context, order *models.Order) error {
	var err error
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		err = s.tx.Run(ctx, func(ctx context.Context, tx *gorm.DB) error {
			repo := s.orders.WithTx(tx)
			number, err := repo.NextOrderNumber(ctx, order.ShopID)
			if err != nil {
				return err
			}
			order.OrderNumber = number
			return repo.Create(ctx, order)
		})
		if err == nil {
			return nil
		}
		if !db.IsUniqueViolation(err, "") {
			break
		}
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"attempt": attempt, "order_number": order.OrderNumber}), "order number taken, retrying")
	}
	return pkgerrors.Ensure(err, pkgerrors.CodeInternal, "create order")
}

// reduceInventory decrements stock for every line. A failing line never stops
// the remaining lines; each failure and each clamp becomes a warning.
func (s *service) reduceInventory(ctx context.Context, order *models.Order) types.OrderWarnings {
	reference := strconv.FormatInt(order.OrderNumber, 10)
	note := fmt.Sprintf("Sale: order #%d", order.OrderNumber)

	var (
		warnings types.OrderWarnings
		errs     error
	)
	for _, item := range order.Items {
		productID := item.ProductID
		result, err := s.stock.ApplyDelta(ctx, nil, inventory.ApplyDeltaInput{
			ShopID:    order.ShopID,
			ProductID: productID,
			Delta:     -item.Quantity,
			Reason:    enums.StockReasonSale,
			ActorID:   order.CashierID,
			BranchID:  order.BranchID,
			Reference: &reference,
			Note:      note,
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", item.Name, err))
			s.metrics.IncSyncFailure()
			warnings = append(warnings, types.OrderWarning{
				Code:        enums.OrderWarningInventorySync,
				ProductID:   &productID,
				ProductName: item.Name,
				Requested:   item.Quantity,
				Message:     fmt.Sprintf("stock not reduced: %v", err),
			})
			continue
		}
		if result.Clamped {
			applied := result.Adjustment.Delta
			warnings = append(warnings, types.OrderWarning{
				Code:        enums.OrderWarningStockClamped,
				ProductID:   &productID,
				ProductName: item.Name,
				Requested:   item.Quantity,
				Applied:     applied,
				Message:     fmt.Sprintf("sold %d but only %d were on hand; stock set to zero", item.Quantity, -applied),
			})
		}
	}
	if errs != nil {
		fields := map[string]any{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
			"failed_lines": len(multierr.Errors(errs)),
		}
		s.logg.Error(s.logg.WithFields(ctx, fields), "inventory sync failed for order", errs)
	}
	return warnings
}

// annotate appends warnings and a notes line to the persisted order. The
// in-memory order is updated even when the write fails so the caller still
// sees the warnings.
func (s *service) annotate(ctx context.Context, order *models.Order, warnings types.OrderWarnings, note string) {
	order.Warnings = append(order.Warnings, warnings...)
	order.Notes = orders.JoinNotes(order.Notes, note)
	if _, err := s.orders.AppendWarnings(ctx, order.ShopID, order.ID, warnings, note); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "order_id", order.ID.String()), "failed to record order warnings", err)
	}
}

func (s *service) emitOrderCreated(ctx context.Context, order *models.Order) {
	event := outbox.DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		ShopID:        order.ShopID,
		Actor:         &outbox.ActorRef{UserID: order.CashierID, ShopID: &order.ShopID},
		Data: payloads.OrderCreatedEvent{
			OrderID:       order.ID,
			ShopID:        order.ShopID,
			OrderNumber:   order.OrderNumber,
			CashierID:     order.CashierID,
			Total:         order.Total,
			PaymentStatus: order.PaymentStatus,
			ItemCount:     len(order.Items),
			WarningCount:  len(order.Warnings),
		},
	}
	if err := s.outbox.Emit(ctx, nil, event); err != nil {
		s.logg.WarnErr(s.logg.WithField(ctx, "order_id", order.ID.String()), "failed to queue order created event", err)
	}
}

// VoidOrder moves a completed or pending order to void and returns its stock.
// Lines whose sale decrement never happened are not restocked, and clamped
// lines return only what was deducted.
func (s *service) VoidOrder(ctx context.Context, input VoidInput) (*orders.OrderDTO, error) {
	if input.ShopID == uuid.Nil || input.OrderID == uuid.Nil || input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id, order id and actor id are required")
	}
	ctx = s.logg.WithShopID(ctx, input.ShopID.String())

	order, err := s.orders.FindByID(ctx, input.ShopID, input.OrderID)
	if err != nil {
		return nil, orders.MapLookupError(err)
	}
	if order.Status == enums.OrderStatusVoid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already void")
	}
	ok, err := s.orders.TransitionStatus(ctx, input.ShopID, order.ID,
		[]enums.OrderStatus{enums.OrderStatusCompleted, enums.OrderStatusPending}, enums.OrderStatusVoid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "void order")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already void")
	}
	order.Status = enums.OrderStatusVoid

	warnings := s.restock(ctx, order, input.ActorID)
	note := fmt.Sprintf("Voided by %s", input.ActorID)
	if reason := strings.TrimSpace(input.Reason); reason != "" {
		note += ": " + reason
	}
	if len(warnings) > 0 {
		note += "\n" + syncNote(warnings)
	}
	s.annotate(ctx, order, warnings, note)

	s.cache.Invalidate(ctx, cache.OrderPatterns(input.ShopID.String())...)
	event := outbox.DomainEvent{
		EventType:     enums.EventOrderVoided,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		ShopID:        order.ShopID,
		Actor:         &outbox.ActorRef{UserID: input.ActorID, ShopID: &order.ShopID},
		Data: payloads.OrderVoidedEvent{
			OrderID:     order.ID,
			ShopID:      order.ShopID,
			OrderNumber: order.OrderNumber,
			VoidedBy:    input.ActorID,
		},
	}
	if err := s.outbox.Emit(ctx, nil, event); err != nil {
		s.logg.WarnErr(s.logg.WithField(ctx, "order_id", order.ID.String()), "failed to queue order voided event", err)
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"order_id": order.ID.String(), "order_number": order.OrderNumber}), "order voided")
	return orders.FromModel(order), nil
}

func (s *service) restock(ctx context.Context, order *models.Order, actorID uuid.UUID) types.OrderWarnings {
	skipped := map[uuid.UUID]bool{}
	clamped := map[uuid.UUID]int{}
	for _, w := range order.Warnings {
		if w.ProductID == nil {
			continue
		}
		switch w.Code {
		case enums.OrderWarningInventorySync:
			skipped[*w.ProductID] = true
		case enums.OrderWarningStockClamped:
			clamped[*w.ProductID] += -w.Applied
		}
	}

	reference := strconv.FormatInt(order.OrderNumber, 10)
	note := fmt.Sprintf("Void: order #%d", order.OrderNumber)
	var warnings types.OrderWarnings
	for _, item := range order.Items {
		productID := item.ProductID
		if skipped[productID] {
			continue
		}
		qty := item.Quantity
		if deducted, ok := clamped[productID]; ok {
			qty = deducted
			delete(clamped, productID)
		}
		if qty <= 0 {
			continue
		}
		_, err := s.stock.ApplyDelta(ctx, nil, inventory.ApplyDeltaInput{
			ShopID:    order.ShopID,
			ProductID: productID,
			Delta:     qty,
			Reason:    enums.StockReasonReturn,
			ActorID:   actorID,
			BranchID:  order.BranchID,
			Reference: &reference,
			Note:      note,
		})
		if err != nil {
			s.metrics.IncSyncFailure()
			s.logg.Error(s.logg.WithField(ctx, "product_id", productID.String()), "failed to restock voided line", err)
			warnings = append(warnings, types.OrderWarning{
				Code:        enums.OrderWarningInventorySync,
				ProductID:   &productID,
				ProductName: item.Name,
				Requested:   qty,
				Message:     fmt.Sprintf("stock not returned: %v", err),
			})
		}
	}
	return warnings
}

// syncNote renders the operator-facing summary line for a set of warnings.
func syncNote(warnings types.OrderWarnings) string {
	var failed, clamped []string
	for _, w := range warnings {
		switch w.Code {
		case enums.OrderWarningInventorySync:
			failed = append(failed, w.ProductName)
		case enums.OrderWarningStockClamped:
			clamped = append(clamped, fmt.Sprintf("%s (requested %d, deducted %d)", w.ProductName, w.Requested, -w.Applied))
		}
	}
	var parts []string
	if len(failed) > 0 {
		parts = append(parts, "Inventory sync warning: stock was not updated for "+strings.Join(failed, ", ")+". Reconcile manually.")
	}
	if len(clamped) > 0 {
		parts = append(parts, "Stock clamped at zero for "+strings.Join(clamped, ", ")+".")
	}
	return strings.Join(parts, " ")
}

func (s *service) reject(started time.Time, err error) error {
	s.metrics.ObserveCheckout(outcomeRejected, s.now().Sub(started))
	return err
}

func (s *service) fail(ctx context.Context, started time.Time, err error, msg string) error {
	s.metrics.ObserveCheckout(outcomeFailed, s.now().Sub(started))
	s.logg.Error(ctx, msg, err)
	return pkgerrors.Ensure(err, pkgerrors.CodeInternal, msg)
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
