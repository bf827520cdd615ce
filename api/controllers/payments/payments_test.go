package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DTBbuilds/SmartDuka-sub000/api/middleware"
	internalpayments "github.com/DTBbuilds/SmartDuka-sub000/internal/payments"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/auth"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/db/models"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
	pkgerrors "github.com/DTBbuilds/SmartDuka-sub000/pkg/errors"
)

type stubPaymentsService struct {
	internalpayments.Service
	confirm func(ctx context.Context, input internalpayments.SettleInput) (*models.PaymentTransaction, error)
	fail    func(ctx context.Context, input internalpayments.SettleInput) (*models.PaymentTransaction, error)
}

func (s stubPaymentsService) ConfirmPayment(ctx context.Context, input internalpayments.SettleInput) (*models.PaymentTransaction, error) {
	return s.confirm(ctx, input)
}

func (s stubPaymentsService) FailPayment(ctx context.Context, input internalpayments.SettleInput) (*models.PaymentTransaction, error) {
	return s.fail(ctx, input)
}

func settleRequest(action string, txID uuid.UUID, body string) (*http.Request, *auth.AccessTokenClaims) {
	claims := &auth.AccessTokenClaims{UserID: uuid.New(), ShopID: uuid.New(), Role: enums.MemberRoleCashier}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/"+txID.String()+"/"+action, strings.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("paymentId", txID.String())
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	return req.WithContext(middleware.WithClaims(ctx, claims)), claims
}

func TestConfirmReturnsSettledTransaction(t *testing.T) {
	txID := uuid.New()
	req, claims := settleRequest("confirm", txID, `{"reference":" QKX12ABC "}`)

	svc := stubPaymentsService{confirm: func(_ context.Context, input internalpayments.SettleInput) (*models.PaymentTransaction, error) {
		if input.ShopID != claims.ShopID || input.TransactionID != txID {
			t.Fatalf("unexpected input %+v", input)
		}
		ref := input.Reference
		return &models.PaymentTransaction{ID: txID, Method: enums.PaymentMethodMpesa, Amount: decimal.NewFromInt(116), Reference: &ref, Status: enums.PaymentTransactionCompleted}, nil
	}}

	resp := httptest.NewRecorder()
	Confirm(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data transactionResponse `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Status != enums.PaymentTransactionCompleted {
		t.Fatalf("unexpected status %s", envelope.Data.Status)
	}
	if envelope.Data.Reference == nil || *envelope.Data.Reference != "QKX12ABC" {
		t.Fatalf("expected trimmed reference, got %v", envelope.Data.Reference)
	}
}

func TestFailMapsStateConflict(t *testing.T) {
	req, _ := settleRequest("fail", uuid.New(), `{}`)
	svc := stubPaymentsService{fail: func(context.Context, internalpayments.SettleInput) (*models.PaymentTransaction, error) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment is not pending")
	}}
	resp := httptest.NewRecorder()
	Fail(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestConfirmWithoutService(t *testing.T) {
	req, _ := settleRequest("confirm", uuid.New(), `{}`)
	resp := httptest.NewRecorder()
	Confirm(nil, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
