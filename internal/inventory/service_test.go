package inventory

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/DTBbuilds/SmartDuka-sub000/internal/txn"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/cache"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/db/dbtest"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/db/models"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
	pkgerrors "github.com/DTBbuilds/SmartDuka-sub000/pkg/errors"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/logger"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/metrics"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/outbox"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/pagination"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/types"
)

type testEnv struct {
	db    *gorm.DB
	svc   Service
	cache *cache.Cache
	reg   *prometheus.Registry
	shop  *models.Shop
	actor uuid.UUID
}

func newTestEnv(t *testing.T, transactional bool) *testEnv {
	t.Helper()
	db := dbtest.Open(t)
	logg := logger.New(logger.Options{ServiceName: "inventory-test", Output: io.Discard})
	reg := prometheus.NewRegistry()
	m := metrics.NewCoreMetrics(reg)

	coord, err := txn.NewCoordinator(txn.Config{DB: db, Prober: txn.Static(transactional), Logger: logg, Metrics: m})
	require.NoError(t, err)

	c := cache.New(cache.Options{Logger: logg, Metrics: m})
	svc, err := NewService(NewRepository(db), coord, c, outbox.NewService(outbox.NewRepository(db), logg), nil, logg, m)
	require.NoError(t, err)

	shop := &models.Shop{Name: "Duka"}
	require.NoError(t, db.Create(shop).Error)
	return &testEnv{db: db, svc: svc, cache: c, reg: reg, shop: shop, actor: uuid.New()}
}

func (e *testEnv) product(t *testing.T, name string, stock, threshold int) *models.Product {
	t.Helper()
	p := &models.Product{
		ShopID:            e.shop.ID,
		Name:              name,
		Stock:             stock,
		LowStockThreshold: threshold,
		Cost:              decimal.NewFromInt(50),
		Price:             decimal.NewFromInt(100),
	}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var p models.Product
	require.NoError(t, e.db.First(&p, "id = ?", id).Error)
	return p.Stock
}

func (e *testEnv) adjustments(t *testing.T, id uuid.UUID) []models.StockAdjustment {
	t.Helper()
	var rows []models.StockAdjustment
	require.NoError(t, e.db.Where("product_id = ?", id).Order("created_at ASC").Find(&rows).Error)
	return rows
}

func (e *testEnv) events(t *testing.T, eventType enums.OutboxEventType) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.OutboxEvent{}).Where("event_type = ?", eventType).Count(&n).Error)
	return n
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	total := 0.0
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, m := range fam.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func appCode(t *testing.T, err error) pkgerrors.Code {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	return typed.Code()
}

func TestValidateAvailabilityReportsEachIssueKind(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	plenty := env.product(t, "Sugar 1kg", 10, 0)
	empty := env.product(t, "Milk 500ml", 0, 0)
	few := env.product(t, "Bread", 2, 0)
	missing := uuid.New()

	res, err := env.svc.ValidateAvailability(ctx, env.shop.ID, []LineRequest{
		{ProductID: plenty.ID, Quantity: 3},
		{ProductID: empty.ID, Quantity: 1},
		{ProductID: few.ID, Quantity: 5},
		{ProductID: missing, Name: "Ghost", Quantity: 1},
		{ProductID: plenty.ID, Quantity: 0},
	})
	require.NoError(t, err)
	require.False(t, res.OK)
	require.Len(t, res.Issues, 4)

	kinds := map[IssueKind]StockIssue{}
	for _, issue := range res.Issues {
		kinds[issue.Kind] = issue
	}
	require.Equal(t, empty.ID, kinds[IssueOutOfStock].ProductID)
	require.Equal(t, 2, kinds[IssueInsufficientQuantity].Available)
	require.Equal(t, 5, kinds[IssueInsufficientQuantity].Requested)
	require.Contains(t, kinds[IssueInsufficientQuantity].Message, "only 2 of Bread available")
	require.Equal(t, "Ghost", kinds[IssueProductNotFound].Name)
	require.Equal(t, 0, kinds[IssueInvalidQuantity].Requested)

	err = res.Err()
	require.Equal(t, pkgerrors.CodeOutOfStock, appCode(t, err))
	var sve *StockValidationError
	require.ErrorAs(t, err, &sve)
	require.True(t, sve.Has(IssueOutOfStock))
	require.Equal(t, 10, env.stock(t, plenty.ID), "validation must not reserve stock")
}

func TestValidateAvailabilityPassesWhenStocked(t *testing.T) {
	env := newTestEnv(t, true)
	p := env.product(t, "Rice", 5, 0)

	res, err := env.svc.ValidateAvailability(context.Background(), env.shop.ID, []LineRequest{{ProductID: p.ID, Quantity: 5}})
	require.NoError(t, err)
	require.True(t, res.OK)
	require.NoError(t, res.Err())
}

func TestValidateAvailabilityIsShopScoped(t *testing.T) {
	env := newTestEnv(t, true)
	p := env.product(t, "Rice", 5, 0)

	res, err := env.svc.ValidateAvailability(context.Background(), uuid.New(), []LineRequest{{ProductID: p.ID, Quantity: 1}})
	require.NoError(t, err)
	require.False(t, res.OK)
	require.Equal(t, IssueProductNotFound, res.Issues[0].Kind)
}

func TestValidateAvailabilityTotalsRepeatedProduct(t *testing.T) {
	env := newTestEnv(t, true)
	sugar := env.product(t, "Sugar 1kg", 5, 0)
	bread := env.product(t, "Bread", 4, 0)

	res, err := env.svc.ValidateAvailability(context.Background(), env.shop.ID, []LineRequest{
		{ProductID: sugar.ID, Quantity: 3},
		{ProductID: bread.ID, Quantity: 2},
		{ProductID: sugar.ID, Quantity: 3},
		{ProductID: bread.ID, Quantity: 2},
	})
	require.NoError(t, err)
	require.False(t, res.OK)
	require.Len(t, res.Issues, 1, "bread totals 4 of 4 and passes")

	issue := res.Issues[0]
	require.Equal(t, IssueInsufficientQuantity, issue.Kind)
	require.Equal(t, sugar.ID, issue.ProductID)
	require.Equal(t, 5, issue.Available)
	require.Equal(t, 6, issue.Requested)
}

func TestApplyDeltaClampsAtZero(t *testing.T) {
	for _, transactional := range []bool{true, false} {
		t.Run(fmt.Sprintf("transactional=%v", transactional), func(t *testing.T) {
			env := newTestEnv(t, transactional)
			ctx := context.Background()
			p := env.product(t, "Soap", 3, 0)

			res, err := env.svc.ApplyDelta(ctx, nil, ApplyDeltaInput{
				ShopID:    env.shop.ID,
				ProductID: p.ID,
				Delta:     -10,
				Reason:    enums.StockReasonSale,
				ActorID:   env.actor,
				Note:      "Order #1",
			})
			require.NoError(t, err)
			require.True(t, res.Clamped)
			require.Equal(t, 0, res.NewStock())
			require.Equal(t, 0, res.Product.Stock)
			require.Equal(t, 0, env.stock(t, p.ID))

			adj := res.Adjustment
			require.Equal(t, -3, adj.Delta)
			require.Equal(t, -10, adj.RequestedDelta)
			require.Equal(t, 3, adj.StockBefore)
			require.Equal(t, 0, adj.StockAfter)
			require.True(t, adj.Clamped())
			require.Equal(t, 1.0, counterValue(t, env.reg, "stock_clamped_total"))
		})
	}
}

func TestApplyDeltaNeverGoesNegativeAcrossManyWrites(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	p := env.product(t, "Matches", 0, 0)

	deltas := []int{5, -2, -7, 4, -1, -10, 3}
	for _, d := range deltas {
		res, err := env.svc.ApplyDelta(ctx, nil, ApplyDeltaInput{
			ShopID: env.shop.ID, ProductID: p.ID, Delta: d, Reason: enums.StockReasonManual, ActorID: env.actor,
		})
		require.NoError(t, err)
		require.GreaterOrEqual(t, res.NewStock(), 0)
	}

	rows := env.adjustments(t, p.ID)
	require.Len(t, rows, len(deltas), "one ledger entry per call")

	sum, err := env.svc.LedgerSum(ctx, env.shop.ID, p.ID)
	require.NoError(t, err)
	require.Equal(t, env.stock(t, p.ID), sum)
	require.Equal(t, 3, sum)
}

func TestApplyDeltaLedgerMatchesStockWhenSaleInterleaves(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()
	p := env.product(t, "Sugar 1kg", 5, 0)

	// A second till sells 4 between the first sale's read and its write.
	fired := false
	require.NoError(t, env.db.Callback().Update().Before("gorm:update").Register("test:interleaved_sale", func(*gorm.DB) {
		if fired {
			return
		}
		fired = true
		_, err := env.svc.ApplyDelta(ctx, nil, ApplyDeltaInput{
			ShopID: env.shop.ID, ProductID: p.ID, Delta: -4, Reason: enums.StockReasonSale, ActorID: env.actor, Note: "Order #2",
		})
		require.NoError(t, err)
	}))

	res, err := env.svc.ApplyDelta(ctx, nil, ApplyDeltaInput{
		ShopID: env.shop.ID, ProductID: p.ID, Delta: -3, Reason: enums.StockReasonSale, ActorID: env.actor, Note: "Order #1",
	})
	require.NoError(t, err)
	require.True(t, fired)

	require.True(t, res.Clamped)
	require.Equal(t, 1, res.Adjustment.StockBefore)
	require.Equal(t, 0, res.Adjustment.StockAfter)
	require.Equal(t, -1, res.Adjustment.Delta)
	require.Equal(t, -3, res.Adjustment.RequestedDelta)
	require.Equal(t, 1.0, counterValue(t, env.reg, "stock_clamped_total"))

	final := env.stock(t, p.ID)
	require.Equal(t, 0, final)
	sum, err := env.svc.LedgerSum(ctx, env.shop.ID, p.ID)
	require.NoError(t, err)
	require.Equal(t, final-5, sum)
	require.Len(t, env.adjustments(t, p.ID), 2)
}

func TestApplyDeltaGivesUpWhenStockKeepsMoving(t *testing.T) {
	env := newTestEnv(t, false)
	p := env.product(t, "Tea", 5, 0)

	require.NoError(t, env.db.Callback().Update().Before("gorm:update").Register("test:restless_stock", func(*gorm.DB) {
		require.NoError(t, env.db.Exec("UPDATE products SET stock = stock + 1 WHERE id = ?", p.ID).Error)
	}))

	_, err := env.svc.ApplyDelta(context.Background(), nil, ApplyDeltaInput{
		ShopID: env.shop.ID, ProductID: p.ID, Delta: -1, Reason: enums.StockReasonSale, ActorID: env.actor,
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, appCode(t, err))
	require.Empty(t, env.adjustments(t, p.ID))
	require.Equal(t, 5+stockSwapAttempts, env.stock(t, p.ID))
}

func TestApplyDeltaValidation(t *testing.T) {
	env := newTestEnv(t, true)
	p := env.product(t, "Tea", 5, 0)

	cases := map[string]ApplyDeltaInput{
		"zero delta":    {ShopID: env.shop.ID, ProductID: p.ID, Delta: 0, Reason: enums.StockReasonManual, ActorID: env.actor},
		"bad reason":    {ShopID: env.shop.ID, ProductID: p.ID, Delta: 1, Reason: "gift", ActorID: env.actor},
		"missing actor": {ShopID: env.shop.ID, ProductID: p.ID, Delta: 1, Reason: enums.StockReasonManual},
	}
	for name, input := range cases {
		_, err := env.svc.ApplyDelta(context.Background(), nil, input)
		require.Error(t, err, name)
		require.Equal(t, pkgerrors.CodeValidation, appCode(t, err), name)
	}

	_, err := env.svc.ApplyDelta(context.Background(), nil, ApplyDeltaInput{
		ShopID: env.shop.ID, ProductID: uuid.New(), Delta: 1, Reason: enums.StockReasonManual, ActorID: env.actor,
	})
	require.Equal(t, pkgerrors.CodeNotFound, appCode(t, err))
	require.Empty(t, env.adjustments(t, p.ID))
}

func TestApplyDeltaInsideOuterSession(t *testing.T) {
	env := newTestEnv(t, true)
	p := env.product(t, "Flour", 4, 0)

	err := env.db.Transaction(func(tx *gorm.DB) error {
		_, err := env.svc.ApplyDelta(context.Background(), tx, ApplyDeltaInput{
			ShopID: env.shop.ID, ProductID: p.ID, Delta: -1, Reason: enums.StockReasonSale, ActorID: env.actor,
		})
		require.NoError(t, err)
		return fmt.Errorf("abort")
	})
	require.Error(t, err)
	require.Equal(t, 4, env.stock(t, p.ID), "outer rollback discards the delta")
	require.Empty(t, env.adjustments(t, p.ID))
}

func TestApplyDeltaInOuterSessionLeavesCacheUntilCommit(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	p := env.product(t, "Flour", 4, 5)

	items, err := env.svc.ListLowStock(ctx, env.shop.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	key := cache.Key(env.shop.ID.String(), cache.ResourceLowStock)

	err = env.db.Transaction(func(tx *gorm.DB) error {
		_, err := env.svc.ApplyDelta(ctx, tx, ApplyDeltaInput{
			ShopID: env.shop.ID, ProductID: p.ID, Delta: -1, Reason: enums.StockReasonSale, ActorID: env.actor,
		})
		require.NoError(t, err)
		var cached []LowStockItem
		require.True(t, env.cache.Get(ctx, key, &cached), "cache must survive until the session commits")
		return nil
	})
	require.NoError(t, err)

	env.svc.InvalidateStock(ctx, env.shop.ID)
	items, err = env.svc.ListLowStock(ctx, env.shop.ID)
	require.NoError(t, err)
	require.Equal(t, 3, items[0].Stock)
}

func TestApplyDeltaEmitsStockAndLowStockEvents(t *testing.T) {
	env := newTestEnv(t, true)
	p := env.product(t, "Salt", 6, 5)

	_, err := env.svc.ApplyDelta(context.Background(), nil, ApplyDeltaInput{
		ShopID: env.shop.ID, ProductID: p.ID, Delta: -2, Reason: enums.StockReasonSale, ActorID: env.actor,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, env.events(t, enums.EventStockAdjusted))
	require.EqualValues(t, 1, env.events(t, enums.EventLowStock))
}

func TestLowStockEventsRespectAlertPolicy(t *testing.T) {
	db := dbtest.Open(t)
	logg := logger.New(logger.Options{Output: io.Discard})
	coord, err := txn.NewCoordinator(txn.Config{DB: db, Prober: txn.Static(true)})
	require.NoError(t, err)
	off := AlertsFunc(func(context.Context, *gorm.DB, uuid.UUID) bool { return false })
	svc, err := NewService(NewRepository(db), coord, cache.New(cache.Options{}), outbox.NewService(outbox.NewRepository(db), logg), off, logg, nil)
	require.NoError(t, err)

	shop := &models.Shop{Name: "Quiet"}
	require.NoError(t, db.Create(shop).Error)
	p := &models.Product{ShopID: shop.ID, Name: "Oil", Stock: 2, LowStockThreshold: 5}
	require.NoError(t, db.Create(p).Error)

	_, err = svc.ApplyDelta(context.Background(), nil, ApplyDeltaInput{
		ShopID: shop.ID, ProductID: p.ID, Delta: -1, Reason: enums.StockReasonSale, ActorID: uuid.New(),
	})
	require.NoError(t, err)

	var n int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).Where("event_type = ?", enums.EventLowStock).Count(&n).Error)
	require.Zero(t, n)
}

func TestReconcileCorrectsVariance(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	p := env.product(t, "Cooking Fat", 50, 0)

	res, err := env.svc.Reconcile(ctx, ReconcileInput{
		ShopID: env.shop.ID, ProductID: p.ID, PhysicalCount: 47, ActorID: env.actor, Note: "monthly count",
	})
	require.NoError(t, err)
	require.Equal(t, 47, env.stock(t, p.ID))

	rec := res.Reconciliation
	require.Equal(t, 50, rec.SystemCount)
	require.Equal(t, 47, rec.PhysicalCount)
	require.Equal(t, -3, rec.Variance)
	require.NotNil(t, rec.AdjustmentID)

	require.NotNil(t, res.Correction)
	adj := res.Correction.Adjustment
	require.Equal(t, *rec.AdjustmentID, adj.ID)
	require.Equal(t, enums.StockReasonCorrection, adj.Reason)
	require.Equal(t, -3, adj.Delta)
	require.Equal(t, 50, adj.StockBefore)
	require.Equal(t, 47, adj.StockAfter)

	var stored models.StockReconciliation
	require.NoError(t, env.db.First(&stored, "id = ?", rec.ID).Error)
	require.Equal(t, -3, stored.Variance)
}

func TestReconcileWithoutVarianceStillRecords(t *testing.T) {
	env := newTestEnv(t, true)
	p := env.product(t, "Beans", 12, 0)

	res, err := env.svc.Reconcile(context.Background(), ReconcileInput{
		ShopID: env.shop.ID, ProductID: p.ID, PhysicalCount: 12, ActorID: env.actor,
	})
	require.NoError(t, err)
	require.Nil(t, res.Correction)
	require.Nil(t, res.Reconciliation.AdjustmentID)
	require.Empty(t, env.adjustments(t, p.ID))

	var n int64
	require.NoError(t, env.db.Model(&models.StockReconciliation{}).Where("product_id = ?", p.ID).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestTransferBetweenBranches(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	p := env.product(t, "Soda", 10, 0)
	require.NoError(t, env.db.Model(p).Update("branch_inventory", types.BranchInventory{
		"main": {Stock: 6, ReorderPoint: 2},
		"east": {Stock: 4},
	}).Error)

	_, err := env.svc.TransferBetweenBranches(ctx, TransferInput{
		ShopID: env.shop.ID, ProductID: p.ID, FromBranch: "east", ToBranch: "main", Quantity: 5, ActorID: env.actor,
	})
	require.Equal(t, pkgerrors.CodeOutOfStock, appCode(t, err))

	res, err := env.svc.TransferBetweenBranches(ctx, TransferInput{
		ShopID: env.shop.ID, ProductID: p.ID, FromBranch: "main", ToBranch: "west", Quantity: 4, ActorID: env.actor,
	})
	require.NoError(t, err)
	require.Equal(t, 2, res.Product.BranchInventory["main"].Stock)
	require.Equal(t, 2, res.Product.BranchInventory["main"].ReorderPoint)
	require.Equal(t, 4, res.Product.BranchInventory["west"].Stock)

	var stored models.Product
	require.NoError(t, env.db.First(&stored, "id = ?", p.ID).Error)
	require.Equal(t, 10, stored.Stock, "transfers leave total stock unchanged")
	require.Equal(t, 2, stored.BranchInventory["main"].Stock)
	require.Equal(t, 4, stored.BranchInventory["east"].Stock)
	require.Equal(t, 4, stored.BranchInventory["west"].Stock)

	rows := env.adjustments(t, p.ID)
	require.Len(t, rows, 1)
	require.Equal(t, enums.StockReasonTransfer, rows[0].Reason)
	require.Zero(t, rows[0].Delta)
	require.Equal(t, "main", *rows[0].BranchID)
}

func TestTransferRejectsSameBranch(t *testing.T) {
	env := newTestEnv(t, true)
	p := env.product(t, "Soda", 10, 0)
	_, err := env.svc.TransferBetweenBranches(context.Background(), TransferInput{
		ShopID: env.shop.ID, ProductID: p.ID, FromBranch: "main", ToBranch: "main", Quantity: 1, ActorID: env.actor,
	})
	require.Equal(t, pkgerrors.CodeValidation, appCode(t, err))
}

func TestImportBranchStock(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	p := env.product(t, "Maize Flour", 10, 0)
	require.NoError(t, env.db.Model(p).Update("branch_inventory", types.BranchInventory{"main": {Stock: 10}}).Error)

	res, err := env.svc.ImportBranchStock(ctx, ImportBranchStockInput{
		ShopID:   env.shop.ID,
		ActorID:  env.actor,
		BranchID: "east",
		Rows: []BranchImportRow{
			{ProductID: p.ID, Stock: 7, ReorderPoint: 3, ReorderQuantity: 10},
			{ProductID: uuid.New(), Stock: 1},
			{ProductID: p.ID, Stock: -1},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Applied)
	require.Len(t, res.Issues, 2)
	require.Equal(t, IssueProductNotFound, res.Issues[0].Kind)
	require.Equal(t, IssueInvalidQuantity, res.Issues[1].Kind)

	var stored models.Product
	require.NoError(t, env.db.First(&stored, "id = ?", p.ID).Error)
	require.Equal(t, 17, stored.Stock)
	require.Equal(t, types.BranchStock{Stock: 7, ReorderPoint: 3, ReorderQuantity: 10}, stored.BranchInventory["east"])

	rows := env.adjustments(t, p.ID)
	require.Len(t, rows, 1)
	require.Equal(t, enums.StockReasonBranchImport, rows[0].Reason)
	require.Equal(t, 7, rows[0].Delta)
}

func TestAdjustStockRejectsSystemReasons(t *testing.T) {
	env := newTestEnv(t, true)
	p := env.product(t, "Candles", 8, 0)

	_, err := env.svc.AdjustStock(context.Background(), AdjustStockInput{
		ShopID: env.shop.ID, ActorID: env.actor, ProductID: p.ID, QuantityChange: -1, Reason: enums.StockReasonSale,
	})
	require.Equal(t, pkgerrors.CodeValidation, appCode(t, err))

	adj, err := env.svc.AdjustStock(context.Background(), AdjustStockInput{
		ShopID: env.shop.ID, ActorID: env.actor, ProductID: p.ID, QuantityChange: -2, Reason: enums.StockReasonDamage, Notes: "water damage",
	})
	require.NoError(t, err)
	require.Equal(t, enums.StockReasonDamage, adj.Reason)
	require.Equal(t, "water damage", *adj.Note)
	require.Equal(t, 6, env.stock(t, p.ID))
}

func TestUpdateStockReturnsProduct(t *testing.T) {
	env := newTestEnv(t, false)
	p := env.product(t, "Batteries", 1, 0)

	updated, err := env.svc.UpdateStock(context.Background(), UpdateStockInput{
		ShopID: env.shop.ID, ActorID: env.actor, ProductID: p.ID, QuantityChange: 9,
	})
	require.NoError(t, err)
	require.Equal(t, 10, updated.Stock)
}

func TestListLowStockIsCachedAndInvalidated(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	low := env.product(t, "Yeast", 2, 5)
	ok := env.product(t, "Vinegar", 20, 5)

	items, err := env.svc.ListLowStock(ctx, env.shop.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, low.ID, items[0].ProductID)

	// direct write bypasses invalidation, so the cached list is still served
	require.NoError(t, env.db.Model(&models.Product{}).Where("id = ?", ok.ID).Update("stock", 1).Error)
	items, err = env.svc.ListLowStock(ctx, env.shop.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = env.svc.ApplyDelta(ctx, nil, ApplyDeltaInput{
		ShopID: env.shop.ID, ProductID: low.ID, Delta: -1, Reason: enums.StockReasonSale, ActorID: env.actor,
	})
	require.NoError(t, err)
	items, err = env.svc.ListLowStock(ctx, env.shop.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestListAdjustmentsPaginates(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	p := env.product(t, "Pens", 0, 0)
	for i := 1; i <= 3; i++ {
		_, err := env.svc.ApplyDelta(ctx, nil, ApplyDeltaInput{
			ShopID: env.shop.ID, ProductID: p.ID, Delta: i, Reason: enums.StockReasonRestock, ActorID: env.actor,
		})
		require.NoError(t, err)
	}

	first, err := env.svc.ListAdjustments(ctx, env.shop.ID, p.ID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.NextCursor)
	require.Equal(t, 3, first.Items[0].Delta)

	second, err := env.svc.ListAdjustments(ctx, env.shop.ID, p.ID, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	require.Empty(t, second.NextCursor)
	require.Equal(t, 1, second.Items[0].Delta)

	_, err = env.svc.ListAdjustments(ctx, env.shop.ID, p.ID, pagination.Params{Cursor: "%%%"})
	require.Equal(t, pkgerrors.CodeValidation, appCode(t, err))
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	_, err := NewService(nil, nil, nil, nil, nil, nil, nil)
	require.Error(t, err)
}
