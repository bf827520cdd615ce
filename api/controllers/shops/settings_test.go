package shops

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DTBbuilds/SmartDuka-sub000/api/middleware"
	internalshops "github.com/DTBbuilds/SmartDuka-sub000/internal/shops"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/auth"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
)

type stubShopService struct {
	internalshops.Service
	gotID    uuid.UUID
	gotInput internalshops.UpdateSettingsInput
}

func (s *stubShopService) GetByID(_ context.Context, id uuid.UUID) (*internalshops.ShopDTO, error) {
	s.gotID = id
	return &internalshops.ShopDTO{ID: id, Name: "Duka Moja", Currency: "KES", LowStockAlerts: true}, nil
}

func (s *stubShopService) UpdateSettings(_ context.Context, id uuid.UUID, input internalshops.UpdateSettingsInput) (*internalshops.ShopDTO, error) {
	s.gotID = id
	s.gotInput = input
	return &internalshops.ShopDTO{ID: id, Name: "Duka Moja", Currency: "KES", TaxRate: input.TaxRate}, nil
}

func scoped(req *http.Request, role enums.MemberRole) (*http.Request, *auth.AccessTokenClaims) {
	claims := &auth.AccessTokenClaims{UserID: uuid.New(), ShopID: uuid.New(), Role: role}
	return req.WithContext(middleware.WithClaims(req.Context(), claims)), claims
}

func TestGetSettingsUsesTokenShop(t *testing.T) {
	svc := &stubShopService{}
	req, claims := scoped(httptest.NewRequest(http.MethodGet, "/api/v1/shop/settings", nil), enums.MemberRoleCashier)
	resp := httptest.NewRecorder()

	GetSettings(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.gotID != claims.ShopID {
		t.Fatalf("expected lookup for token shop %s, got %s", claims.ShopID, svc.gotID)
	}
	var body struct {
		Data internalshops.ShopDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Currency != "KES" || !body.Data.LowStockAlerts {
		t.Fatalf("unexpected body %+v", body.Data)
	}
}

func TestUpdateSettingsDecodesTaxRate(t *testing.T) {
	svc := &stubShopService{}
	req, claims := scoped(httptest.NewRequest(http.MethodPatch, "/api/v1/shop/settings", strings.NewReader(`{"taxRate":"0.08"}`)), enums.MemberRoleOwner)
	resp := httptest.NewRecorder()

	UpdateSettings(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.gotID != claims.ShopID {
		t.Fatalf("expected update for token shop")
	}
	if svc.gotInput.TaxRate == nil || !svc.gotInput.TaxRate.Equal(decimal.RequireFromString("0.08")) {
		t.Fatalf("unexpected tax rate %v", svc.gotInput.TaxRate)
	}
}

func TestUpdateSettingsRejectsInvalidBody(t *testing.T) {
	cases := map[string]string{
		"unknown field":   `{"vat":"0.1"}`,
		"bad currency":    `{"currency":"KSHS"}`,
		"empty name":      `{"name":""}`,
		"malformed input": `{"name":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req, _ := scoped(httptest.NewRequest(http.MethodPatch, "/api/v1/shop/settings", strings.NewReader(body)), enums.MemberRoleOwner)
			resp := httptest.NewRecorder()
			UpdateSettings(&stubShopService{}, nil).ServeHTTP(resp, req)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", resp.Code)
			}
		})
	}
}

func TestSettingsWithoutClaimsIsForbidden(t *testing.T) {
	resp := httptest.NewRecorder()
	GetSettings(&stubShopService{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/shop/settings", nil))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}
