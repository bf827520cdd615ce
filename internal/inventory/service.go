package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DTBbuilds/SmartDuka-sub000/internal/txn"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/cache"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/db/models"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
	pkgerrors "github.com/DTBbuilds/SmartDuka-sub000/pkg/errors"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/logger"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/metrics"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/outbox"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/outbox/payloads"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/pagination"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/types"
)

type txRunner interface {
	Run(ctx context.Context, work txn.Work, opts ...txn.Option) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// AlertPolicy decides whether low-stock events are raised for a shop.
// tx is the caller's session, or nil outside one.
type AlertPolicy interface {
	LowStockAlertsEnabled(ctx context.Context, tx *gorm.DB, shopID uuid.UUID) bool
}

// AlertsFunc adapts a function to AlertPolicy.
type AlertsFunc func(ctx context.Context, tx *gorm.DB, shopID uuid.UUID) bool

func (f AlertsFunc) LowStockAlertsEnabled(ctx context.Context, tx *gorm.DB, shopID uuid.UUID) bool {
	return f(ctx, tx, shopID)
}

// Service is the single authority for on-hand stock and its ledger.
type Service interface {
	ValidateAvailability(ctx context.Context, shopID uuid.UUID, lines []LineRequest) (*ValidationResult, error)
	ApplyDelta(ctx context.Context, tx *gorm.DB, input ApplyDeltaInput) (*DeltaResult, error)
	AdjustStock(ctx context.Context, input AdjustStockInput) (*models.StockAdjustment, error)
	UpdateStock(ctx context.Context, input UpdateStockInput) (*models.Product, error)
	TransferBetweenBranches(ctx context.Context, input TransferInput) (*TransferResult, error)
	Reconcile(ctx context.Context, input ReconcileInput) (*ReconcileResult, error)
	ImportBranchStock(ctx context.Context, input ImportBranchStockInput) (*ImportResult, error)
	ListAdjustments(ctx context.Context, shopID, productID uuid.UUID, params pagination.Params) (*AdjustmentPage, error)
	ListLowStock(ctx context.Context, shopID uuid.UUID) ([]LowStockItem, error)
	LedgerSum(ctx context.Context, shopID, productID uuid.UUID) (int, error)
	InvalidateStock(ctx context.Context, shopID uuid.UUID)
}

type service struct {
	repo    *Repository
	tx      txRunner
	cache   *cache.Cache
	outbox  outboxPublisher
	alerts  AlertPolicy
	logg    *logger.Logger
	metrics *metrics.CoreMetrics
}

// NewService wires the stock ledger. alerts and m may be nil.
func NewService(
	repo *Repository,
	tx txRunner,
	c *cache.Cache,
	publisher outboxPublisher,
	alerts AlertPolicy,
	logg *logger.Logger,
	m *metrics.CoreMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
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
	if alerts == nil {
		alerts = AlertsFunc(func(context.Context, *gorm.DB, uuid.UUID) bool { return true })
	}
	return &service{
		repo:    repo,
		tx:      tx,
		cache:   c,
		outbox:  publisher,
		alerts:  alerts,
		logg:    logg,
		metrics: m,
	}, nil
}

// ValidateAvailability checks every line against current stock without reserving it.
func (s *service) ValidateAvailability(ctx context.Context, shopID uuid.UUID, lines []LineRequest) (*ValidationResult, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	products, err := s.repo.FindProducts(ctx, shopID, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products for stock check")
	}

	// Lines for the same product draw on one stock figure, so they are checked as a total.
	type demand struct {
		line  LineRequest
		total int
		bad   bool
	}
	order := make([]uuid.UUID, 0, len(lines))
	demands := make(map[uuid.UUID]*demand, len(lines))
	for _, line := range lines {
		d, ok := demands[line.ProductID]
		if !ok {
			d = &demand{line: line}
			demands[line.ProductID] = d
			order = append(order, line.ProductID)
		}
		if line.Quantity <= 0 {
			d.bad = true
			d.line.Quantity = line.Quantity
			continue
		}
		d.total += line.Quantity
	}

	result := &ValidationResult{OK: true}
	for _, id := range order {
		d := demands[id]
		product, found := products[id]
		name := d.line.Name
		if found && product.Name != "" {
			name = product.Name
		}
		switch {
		case d.bad:
			result.Issues = append(result.Issues, newIssue(IssueInvalidQuantity, id, name, product.Stock, d.line.Quantity))
		case !found:
			result.Issues = append(result.Issues, newIssue(IssueProductNotFound, id, name, 0, d.total))
		case product.Stock <= 0:
			result.Issues = append(result.Issues, newIssue(IssueOutOfStock, id, name, 0, d.total))
		case product.Stock < d.total:
			result.Issues = append(result.Issues, newIssue(IssueInsufficientQuantity, id, name, product.Stock, d.total))
		}
	}
	result.OK = len(result.Issues) == 0
	return result, nil
}

// ApplyDelta changes stock by delta, clamping at zero, and appends one ledger entry.
// With a nil tx the change runs as its own coordinator unit; otherwise it joins
// tx and its events are queued on the same session. A caller passing tx must
// call InvalidateStock once tx has committed.
func (s *service) ApplyDelta(ctx context.Context, tx *gorm.DB, input ApplyDeltaInput) (*DeltaResult, error) {
	if err := validateDeltaInput(input); err != nil {
		return nil, err
	}

	var result *DeltaResult
	if tx != nil {
		res, err := s.applyDelta(ctx, tx, input)
		if err != nil {
			return nil, err
		}
		result = res
	} else {
		err := s.tx.Run(ctx, func(ctx context.Context, tx *gorm.DB) error {
			res, err := s.applyDelta(ctx, tx, input)
			if err != nil {
				return err
			}
			result = res
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	s.afterDelta(ctx, tx, input, result)
	if tx == nil {
		s.invalidate(ctx, input.ShopID)
	}
	return result, nil
}

func validateDeltaInput(input ApplyDeltaInput) error {
	switch {
	case input.ShopID == uuid.Nil:
		return pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	case input.ProductID == uuid.Nil:
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	case input.ActorID == uuid.Nil:
		return pkgerrors.New(pkgerrors.CodeValidation, "actor id required")
	case input.Delta == 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity change must be non-zero")
	case !input.Reason.IsValid():
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stock adjustment reason %q", input.Reason))
	}
	return nil
}

// stockSwapAttempts bounds how often applyDelta re-reads a row another writer moved.
const stockSwapAttempts = 5

// applyDelta performs the write inside tx, which may be nil when the store has no transactions.
func (s *service) applyDelta(ctx context.Context, tx *gorm.DB, input ApplyDeltaInput) (*DeltaResult, error) {
	repo := s.repo.WithTx(tx)

	var (
		product *models.Product
		before  int
		after   int
	)
	for attempt := 1; ; attempt++ {
		current, err := repo.FindProduct(ctx, input.ShopID, input.ProductID, true)
		if err != nil {
			if isNotFound(err) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}
		next := current.Stock + input.Delta
		if next < 0 {
			next = 0
		}
		swapped, err := repo.SwapStock(ctx, input.ShopID, input.ProductID, current.Stock, next)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update stock")
		}
		if swapped {
			product, before, after = current, current.Stock, next
			break
		}
		if attempt == stockSwapAttempts {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "stock changed concurrently; retry").
				WithDetails(map[string]any{"productId": input.ProductID, "attempts": attempt})
		}
	}
	applied := after - before
	clamped := applied != input.Delta

	adj := &models.StockAdjustment{
		ShopID:         input.ShopID,
		ProductID:      input.ProductID,
		Delta:          applied,
		RequestedDelta: input.Delta,
		StockBefore:    before,
		StockAfter:     after,
		Reason:         input.Reason,
		ActorID:        input.ActorID,
		BranchID:       input.BranchID,
		Reference:      input.Reference,
		Note:           optionalString(input.Note),
	}
	if err := repo.InsertAdjustment(ctx, adj); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append stock ledger entry")
	}

	product.Stock = after
	return &DeltaResult{Product: product, Adjustment: adj, Clamped: clamped}, nil
}

// afterDelta reports clamps and queues events once the write is done. Cache
// invalidation is left to the caller so it can follow the commit.
func (s *service) afterDelta(ctx context.Context, tx *gorm.DB, input ApplyDeltaInput, result *DeltaResult) {
	adj := result.Adjustment
	if result.Clamped {
		fields := map[string]any{
			"shop_id":         input.ShopID.String(),
			"product_id":      input.ProductID.String(),
			"requested_delta": adj.RequestedDelta,
			"applied_delta":   adj.Delta,
			"stock_before":    adj.StockBefore,
			"reason":          adj.Reason,
		}
		s.logg.Warn(s.logg.WithFields(ctx, fields), "stock clamped at zero")
		s.metrics.IncStockClamp()
	}

	s.emit(ctx, tx, input.ShopID, input.ActorID, enums.EventStockAdjusted, input.ProductID, payloads.StockAdjustedEvent{
		AdjustmentID:   adj.ID,
		ShopID:         input.ShopID,
		ProductID:      input.ProductID,
		Delta:          adj.Delta,
		RequestedDelta: adj.RequestedDelta,
		StockAfter:     adj.StockAfter,
		Reason:         adj.Reason,
	})

	if adj.Delta < 0 && result.Product.IsLowStock() && s.alerts.LowStockAlertsEnabled(ctx, tx, input.ShopID) {
		s.emit(ctx, tx, input.ShopID, input.ActorID, enums.EventLowStock, input.ProductID, payloads.LowStockEvent{
			ShopID:    input.ShopID,
			ProductID: input.ProductID,
			Name:      result.Product.Name,
			Stock:     result.Product.Stock,
			Threshold: result.Product.LowStockThreshold,
		})
	}
}

// AdjustStock records an operator adjustment with one of the manual reasons.
func (s *service) AdjustStock(ctx context.Context, input AdjustStockInput) (*models.StockAdjustment, error) {
	if !input.Reason.IsManual() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("reason %q cannot be recorded manually", input.Reason))
	}
	res, err := s.ApplyDelta(ctx, nil, ApplyDeltaInput{
		ShopID:    input.ShopID,
		ProductID: input.ProductID,
		Delta:     input.QuantityChange,
		Reason:    input.Reason,
		ActorID:   input.ActorID,
		BranchID:  input.BranchID,
		Note:      input.Notes,
	})
	if err != nil {
		return nil, err
	}
	return res.Adjustment, nil
}

// UpdateStock applies a plain quantity change and returns the updated product.
func (s *service) UpdateStock(ctx context.Context, input UpdateStockInput) (*models.Product, error) {
	res, err := s.ApplyDelta(ctx, nil, ApplyDeltaInput{
		ShopID:    input.ShopID,
		ProductID: input.ProductID,
		Delta:     input.QuantityChange,
		Reason:    enums.StockReasonManual,
		ActorID:   input.ActorID,
	})
	if err != nil {
		return nil, err
	}
	return res.Product, nil
}

// TransferBetweenBranches moves branch sub-stock in one document write. Total stock is unchanged.
func (s *service) TransferBetweenBranches(ctx context.Context, input TransferInput) (*TransferResult, error) {
	from := strings.TrimSpace(input.FromBranch)
	to := strings.TrimSpace(input.ToBranch)
	switch {
	case input.ShopID == uuid.Nil || input.ProductID == uuid.Nil || input.ActorID == uuid.Nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop, product and actor are required")
	case from == "" || to == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "source and destination branches are required")
	case from == to:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "source and destination branches must differ")
	case input.Quantity <= 0:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer quantity must be positive")
	}

	var result *TransferResult
	err := s.tx.Run(ctx, func(ctx context.Context, tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.FindProduct(ctx, input.ShopID, input.ProductID, true)
		if err != nil {
			if isNotFound(err) {
				return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}

		inv := product.BranchInventory.Clone()
		source := inv[from]
		if source.Stock < input.Quantity {
			issue := newIssue(IssueInsufficientQuantity, product.ID, product.Name, source.Stock, input.Quantity)
			return (&StockValidationError{Issues: []StockIssue{issue}}).AsAppError()
		}
		dest := inv[to]
		source.Stock -= input.Quantity
		dest.Stock += input.Quantity
		inv[from] = source
		inv[to] = dest

		if err := repo.SaveBranchInventory(ctx, input.ShopID, input.ProductID, inv); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save branch inventory")
		}

		note := fmt.Sprintf("transfer %d from %s to %s", input.Quantity, from, to)
		if extra := strings.TrimSpace(input.Note); extra != "" {
			note += ": " + extra
		}
		adj := &models.StockAdjustment{
			ShopID:      input.ShopID,
			ProductID:   input.ProductID,
			StockBefore: product.Stock,
			StockAfter:  product.Stock,
			Reason:      enums.StockReasonTransfer,
			ActorID:     input.ActorID,
			BranchID:    &from,
			Reference:   &to,
			Note:        &note,
		}
		if err := repo.InsertAdjustment(ctx, adj); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append stock ledger entry")
		}

		product.BranchInventory = inv
		result = &TransferResult{Product: product, Adjustment: adj}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, input.ShopID)
	s.emit(ctx, nil, input.ShopID, input.ActorID, enums.EventStockAdjusted, input.ProductID, payloads.StockAdjustedEvent{
		AdjustmentID: result.Adjustment.ID,
		ShopID:       input.ShopID,
		ProductID:    input.ProductID,
		StockAfter:   result.Product.Stock,
		Reason:       enums.StockReasonTransfer,
	})
	return result, nil
}

// Reconcile records a physical count and corrects stock by the variance.
func (s *service) Reconcile(ctx context.Context, input ReconcileInput) (*ReconcileResult, error) {
	switch {
	case input.ShopID == uuid.Nil || input.ProductID == uuid.Nil || input.ActorID == uuid.Nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop, product and actor are required")
	case input.PhysicalCount < 0:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "physical count cannot be negative")
	}

	var (
		result     *ReconcileResult
		correction ApplyDeltaInput
	)
	err := s.tx.Run(ctx, func(ctx context.Context, tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.FindProduct(ctx, input.ShopID, input.ProductID, true)
		if err != nil {
			if isNotFound(err) {
				return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}

		variance := input.PhysicalCount - product.Stock
		rec := &models.StockReconciliation{
			ShopID:        input.ShopID,
			ProductID:     input.ProductID,
			SystemCount:   product.Stock,
			PhysicalCount: input.PhysicalCount,
			Variance:      variance,
			ActorID:       input.ActorID,
			Note:          optionalString(input.Note),
		}
		res := &ReconcileResult{Reconciliation: rec}

		if variance != 0 {
			note := fmt.Sprintf("reconciliation: system %d, physical %d", product.Stock, input.PhysicalCount)
			if extra := strings.TrimSpace(input.Note); extra != "" {
				note += ": " + extra
			}
			correction = ApplyDeltaInput{
				ShopID:    input.ShopID,
				ProductID: input.ProductID,
				Delta:     variance,
				Reason:    enums.StockReasonCorrection,
				ActorID:   input.ActorID,
				Note:      note,
			}
			delta, err := s.applyDelta(ctx, tx, correction)
			if err != nil {
				return err
			}
			res.Correction = delta
			rec.AdjustmentID = &delta.Adjustment.ID
		}

		if err := repo.InsertReconciliation(ctx, rec); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save reconciliation")
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Correction != nil {
		s.afterDelta(ctx, nil, correction, result.Correction)
		s.invalidate(ctx, input.ShopID)
	}
	return result, nil
}

// ImportBranchStock sets branch sub-stock row by row. Each row is its own unit;
// bad rows are reported as issues and the rest still apply.
func (s *service) ImportBranchStock(ctx context.Context, input ImportBranchStockInput) (*ImportResult, error) {
	branch := strings.TrimSpace(input.BranchID)
	if input.ShopID == uuid.Nil || input.ActorID == uuid.Nil || branch == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop, actor and branch are required")
	}

	result := &ImportResult{Issues: []StockIssue{}}
	for _, row := range input.Rows {
		if row.Stock < 0 || row.ReorderPoint < 0 || row.ReorderQuantity < 0 {
			result.Issues = append(result.Issues, newIssue(IssueInvalidQuantity, row.ProductID, "", 0, row.Stock))
			continue
		}

		var (
			delta   *DeltaResult
			applied ApplyDeltaInput
		)
		err := s.tx.Run(ctx, func(ctx context.Context, tx *gorm.DB) error {
			delta = nil
			repo := s.repo.WithTx(tx)
			product, err := repo.FindProduct(ctx, input.ShopID, row.ProductID, true)
			if err != nil {
				return err
			}
			inv := product.BranchInventory.Clone()
			previous := inv[branch].Stock
			inv[branch] = types.BranchStock{
				Stock:           row.Stock,
				ReorderPoint:    row.ReorderPoint,
				ReorderQuantity: row.ReorderQuantity,
			}
			if err := repo.SaveBranchInventory(ctx, input.ShopID, row.ProductID, inv); err != nil {
				return err
			}
			change := row.Stock - previous
			if change == 0 {
				return nil
			}
			applied = ApplyDeltaInput{
				ShopID:    input.ShopID,
				ProductID: row.ProductID,
				Delta:     change,
				Reason:    enums.StockReasonBranchImport,
				ActorID:   input.ActorID,
				BranchID:  &branch,
				Note:      fmt.Sprintf("branch %s import: %d -> %d", branch, previous, row.Stock),
			}
			delta, err = s.applyDelta(ctx, tx, applied)
			return err
		})
		if err != nil {
			if isNotFound(err) {
				result.Issues = append(result.Issues, newIssue(IssueProductNotFound, row.ProductID, "", 0, row.Stock))
				continue
			}
			return result, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "import branch stock")
		}

		result.Applied++
		if delta != nil {
			s.afterDelta(ctx, nil, applied, delta)
		}
		s.invalidate(ctx, input.ShopID)
	}
	return result, nil
}

// ListAdjustments pages through a product's ledger, newest first.
func (s *service) ListAdjustments(ctx context.Context, shopID, productID uuid.UUID, params pagination.Params) (*AdjustmentPage, error) {
	if shopID == uuid.Nil || productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop and product are required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListAdjustments(ctx, shopID, productID, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stock adjustments")
	}

	page := &AdjustmentPage{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		last := page.Items[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

// ListLowStock returns products at or under their threshold, cached per shop.
func (s *service) ListLowStock(ctx context.Context, shopID uuid.UUID) ([]LowStockItem, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	key := cache.Key(shopID.String(), cache.ResourceLowStock)
	return cache.GetOrSet(ctx, s.cache, key, cache.TTLMedium, func(ctx context.Context) ([]LowStockItem, error) {
		products, err := s.repo.ListLowStock(ctx, shopID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list low stock")
		}
		items := make([]LowStockItem, 0, len(products))
		for _, p := range products {
			items = append(items, LowStockItem{
				ProductID: p.ID,
				Name:      p.Name,
				SKU:       p.SKU,
				Stock:     p.Stock,
				Threshold: p.LowStockThreshold,
			})
		}
		return items, nil
	})
}

// LedgerSum totals the applied deltas for a product. For a product created at
// zero stock it equals the current stock.
func (s *service) LedgerSum(ctx context.Context, shopID, productID uuid.UUID) (int, error) {
	total, err := s.repo.SumDeltas(ctx, shopID, productID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum stock ledger")
	}
	return total, nil
}

// InvalidateStock drops a shop's cached stock views. Call it after committing a
// session that passed through ApplyDelta.
func (s *service) InvalidateStock(ctx context.Context, shopID uuid.UUID) {
	s.invalidate(ctx, shopID)
}

func (s *service) invalidate(ctx context.Context, shopID uuid.UUID) {
	s.cache.Invalidate(ctx, cache.StockPatterns(shopID.String())...)
}

// emit queues an activity event on tx, or directly when tx is nil. Failures are logged only.
func (s *service) emit(ctx context.Context, tx *gorm.DB, shopID, actorID uuid.UUID, eventType enums.OutboxEventType, productID uuid.UUID, data any) {
	event := outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateProduct,
		AggregateID:   productID,
		ShopID:        shopID,
		Actor:         &outbox.ActorRef{UserID: actorID, ShopID: &shopID},
		Data:          data,
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		fields := map[string]any{
			"shop_id":    shopID.String(),
			"product_id": productID.String(),
			"event_type": eventType,
		}
		s.logg.WarnErr(s.logg.WithFields(ctx, fields), "failed to queue stock event", err)
	}
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
