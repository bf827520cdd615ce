package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/auth"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/config"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
	"github.com/google/uuid"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "smartduka", ExpirationMinutes: 60}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	Auth(testJWT, nil)(okHandler()).ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	Auth(testJWT, nil)(okHandler()).ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthSeedsShopScope(t *testing.T) {
	shopID := uuid.New()
	userID := uuid.New()
	token := mintTestToken(t, userID, shopID, enums.MemberRoleCashier)

	var gotShop, gotUser uuid.UUID
	var gotRole string
	handler := Auth(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotShop = ShopIDFromContext(r.Context())
		gotUser = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotShop != shopID || gotUser != userID {
		t.Fatalf("unexpected scope shop=%s user=%s", gotShop, gotUser)
	}
	if gotRole != string(enums.MemberRoleCashier) {
		t.Fatalf("expected cashier role got %s", gotRole)
	}
}

func TestRequireStockManager(t *testing.T) {
	cases := map[enums.MemberRole]int{
		enums.MemberRoleCashier: http.StatusForbidden,
		enums.MemberRoleManager: http.StatusOK,
		enums.MemberRoleOwner:   http.StatusOK,
	}
	for role, want := range cases {
		token := mintTestToken(t, uuid.New(), uuid.New(), role)
		handler := Auth(testJWT, nil)(RequireStockManager(nil)(okHandler()))
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != want {
			t.Fatalf("%s: expected %d got %d", role, want, resp.Code)
		}
	}

	resp := httptest.NewRecorder()
	RequireStockManager(nil)(okHandler()).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", nil))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without claims got %d", resp.Code)
	}
}

func mintTestToken(t *testing.T, userID, shopID uuid.UUID, role enums.MemberRole) string {
	t.Helper()
	token, err := auth.MintAccessToken(testJWT, time.Now(), auth.AccessTokenPayload{UserID: userID, ShopID: shopID, Role: role})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}
