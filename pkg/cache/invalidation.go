package cache

// Invalidation sites. Every write that can change a cached read must delete
// the affected prefixes. Keep this list current when adding write paths.
//
//	OrderPatterns:
//	  internal/checkout.Service.Checkout     new order
//	  internal/checkout.Service.VoidOrder    status transition
//	  internal/payments.Service.ConfirmPayment  payment status change
//	  internal/payments.Service.FailPayment     payment status change
//	StockPatterns:
//	  internal/inventory.Service.ApplyDelta              every stock delta (sale, return, correction, adjustment)
//	  internal/inventory.Service.TransferBetweenBranches branch sub-stock
//	  internal/inventory.Service.ImportBranchStock       branch sub-stock
//	  internal/inventory.Service.Reconcile               via ApplyDelta, plus the reconciliation row
//	Key(shop, ResourceSettings):
//	  internal/shops.Service.UpdateSettings  tax rate and alert flag
//
// Cached reads:
//
//	shop:<id>:orders:<page>:<limit>:<filters>  internal/orders.Service.List   TTLShort
//	shop:<id>:stats:orders                     internal/orders.Service.Stats  TTLStats
//	shop:<id>:products:low-stock               internal/inventory.Service.ListLowStock  TTLMedium
//	shop:<id>:settings                         internal/shops.Service.GetByID  TTLLong
//	shop:<id>:replay:<hash>                    api/middleware.Idempotency  24h or 7d, expiry only

// OrderPatterns returns the prefixes affected by an order write.
func OrderPatterns(shopID string) []string {
	return []string{
		ShopPattern(shopID, ResourceOrders),
		ShopPattern(shopID, ResourceStats),
	}
}

// StockPatterns returns the prefixes affected by a stock write.
func StockPatterns(shopID string) []string {
	return []string{
		ShopPattern(shopID, ResourceProducts),
		ShopPattern(shopID, ResourceStats),
	}
}
