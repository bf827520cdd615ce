package checkout

import (
	"net/http"

	"github.com/DTBbuilds/SmartDuka-sub000/api/controllers"
	"github.com/DTBbuilds/SmartDuka-sub000/api/responses"
	"github.com/DTBbuilds/SmartDuka-sub000/api/validators"
	checkoutsvc "github.com/DTBbuilds/SmartDuka-sub000/internal/checkout"
	pkgerrors "github.com/DTBbuilds/SmartDuka-sub000/pkg/errors"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/logger"
)

// Create turns the submitted cart into a persisted order. Post-persist
// problems come back as warnings on a 201, never as an error.
func Create(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		scope, err := controllers.RequestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input checkoutsvc.Input
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.ShopID = scope.ShopID
		input.CashierID = scope.UserID
		input.Notes = validators.SanitizeString(input.Notes, 1000)
		input.CustomerName = validators.SanitizeString(input.CustomerName, 120)

		order, err := svc.Checkout(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// Void reverses a completed or pending order and restocks its lines.
func Void(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		scope, err := controllers.RequestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := controllers.PathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input checkoutsvc.VoidInput
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &input); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		input.ShopID = scope.ShopID
		input.ActorID = scope.UserID
		input.OrderID = orderID
		input.Reason = validators.SanitizeString(input.Reason, 500)

		order, err := svc.VoidOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
