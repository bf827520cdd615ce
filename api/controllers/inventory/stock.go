package inventory

import (
	"net/http"
	"strings"

	"github.com/DTBbuilds/SmartDuka-sub000/api/controllers"
	"github.com/DTBbuilds/SmartDuka-sub000/api/responses"
	"github.com/DTBbuilds/SmartDuka-sub000/api/validators"
	internalinventory "github.com/DTBbuilds/SmartDuka-sub000/internal/inventory"
	pkgerrors "github.com/DTBbuilds/SmartDuka-sub000/pkg/errors"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/logger"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/pagination"
)

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
}

// UpdateStock applies a plain quantity change from the product screens.
func UpdateStock(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		scope, err := controllers.RequestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := controllers.PathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input internalinventory.UpdateStockInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.ShopID = scope.ShopID
		input.ActorID = scope.UserID
		input.ProductID = productID

		product, err := svc.UpdateStock(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProductResponse(product))
	}
}

// Adjust records an operator adjustment with a reason.
func Adjust(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		scope, err := controllers.RequestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input internalinventory.AdjustStockInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.ShopID = scope.ShopID
		input.ActorID = scope.UserID
		input.Notes = validators.SanitizeString(input.Notes, 500)

		adjustment, err := svc.AdjustStock(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newAdjustmentResponse(adjustment))
	}
}

// ListAdjustments pages a product's ledger, newest first.
func ListAdjustments(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		scope, err := controllers.RequestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := controllers.PathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListAdjustments(r.Context(), scope.ShopID, productID, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAdjustmentPageResponse(page))
	}
}

// Transfer moves branch sub-stock without changing the product total.
func Transfer(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		scope, err := controllers.RequestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input internalinventory.TransferInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.ShopID = scope.ShopID
		input.ActorID = scope.UserID
		input.Note = validators.SanitizeString(input.Note, 500)

		result, err := svc.TransferBetweenBranches(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, transferResponse{
			Product:    newProductResponse(result.Product),
			Adjustment: newAdjustmentResponse(result.Adjustment),
		})
	}
}

// Reconcile records a physical count and corrects any variance.
func Reconcile(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		scope, err := controllers.RequestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input internalinventory.ReconcileInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.ShopID = scope.ShopID
		input.ActorID = scope.UserID
		input.Note = validators.SanitizeString(input.Note, 500)

		result, err := svc.Reconcile(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newReconciliationResponse(result))
	}
}

// ImportBranch sets branch sub-stock in bulk. Bad rows are reported, not fatal.
func ImportBranch(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		scope, err := controllers.RequestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input internalinventory.ImportBranchStockInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.ShopID = scope.ShopID
		input.ActorID = scope.UserID

		result, err := svc.ImportBranchStock(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// LowStock lists products at or under their alert threshold.
func LowStock(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		scope, err := controllers.RequestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.ListLowStock(r.Context(), scope.ShopID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if items == nil {
			items = []internalinventory.LowStockItem{}
		}
		responses.WriteSuccess(w, items)
	}
}
