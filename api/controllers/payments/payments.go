package payments

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DTBbuilds/SmartDuka-sub000/api/controllers"
	"github.com/DTBbuilds/SmartDuka-sub000/api/responses"
	"github.com/DTBbuilds/SmartDuka-sub000/api/validators"
	internalpayments "github.com/DTBbuilds/SmartDuka-sub000/internal/payments"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/db/models"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
	pkgerrors "github.com/DTBbuilds/SmartDuka-sub000/pkg/errors"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/logger"
)

type transactionResponse struct {
	ID          uuid.UUID                      `json:"id"`
	OrderID     uuid.UUID                      `json:"orderId"`
	CashierID   uuid.UUID                      `json:"cashierId"`
	Method      enums.PaymentMethod            `json:"method"`
	Amount      decimal.Decimal                `json:"amount"`
	Reference   *string                        `json:"reference,omitempty"`
	Status      enums.PaymentTransactionStatus `json:"status"`
	ConfirmedAt *time.Time                     `json:"confirmedAt,omitempty"`
	CreatedAt   time.Time                      `json:"createdAt"`
}

func newTransactionResponse(tx models.PaymentTransaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		OrderID:     tx.OrderID,
		CashierID:   tx.CashierID,
		Method:      tx.Method,
		Amount:      tx.Amount,
		Reference:   tx.Reference,
		Status:      tx.Status,
		ConfirmedAt: tx.ConfirmedAt,
		CreatedAt:   tx.CreatedAt,
	}
}

// Confirm settles a pending mobile-money or card payment with its receipt reference.
func Confirm(svc internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg)
	}
	return settle(logg, svc.ConfirmPayment)
}

// Fail marks a pending payment as failed, downgrading the order's payment status.
func Fail(svc internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	if svc == nil {
		return unavailable(logg)
	}
	return settle(logg, svc.FailPayment)
}

func unavailable(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
	}
}

type settleFunc func(ctx context.Context, input internalpayments.SettleInput) (*models.PaymentTransaction, error)

func settle(logg *logger.Logger, op settleFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := controllers.RequestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		txID, err := controllers.PathUUID(r, "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input internalpayments.SettleInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.ShopID = scope.ShopID
		input.ActorID = scope.UserID
		input.TransactionID = txID
		input.Reference = validators.SanitizeString(input.Reference, 120)

		tx, err := op(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newTransactionResponse(*tx))
	}
}

// ListByOrder returns every payment recorded against an order.
func ListByOrder(svc internalpayments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(logg)(w, r)
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
		rows, err := svc.ListByOrder(r.Context(), scope.ShopID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]transactionResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, newTransactionResponse(row))
		}
		responses.WriteSuccess(w, out)
	}
}
