package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/auth"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/cache"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
	pkgerrors "github.com/DTBbuilds/SmartDuka-sub000/pkg/errors"
)

func scopedRequest(method, url string, body io.Reader, claims *auth.AccessTokenClaims) *http.Request {
	req := httptest.NewRequest(method, url, body)
	if claims != nil {
		req = req.WithContext(WithClaims(req.Context(), claims))
	}
	return req
}

func cashier() *auth.AccessTokenClaims {
	return &auth.AccessTokenClaims{UserID: uuid.New(), ShopID: uuid.New(), Role: enums.MemberRoleCashier}
}

func TestRouteTTLSelection(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		path    string
		want    time.Duration
		ok      bool
	}{
		{"checkout", http.MethodPost, "/api/v1/checkout", criticalIdempotencyTTL, true},
		{"void", http.MethodPost, "/api/v1/orders/5f0c/void", criticalIdempotencyTTL, true},
		{"confirm", http.MethodPost, "/api/v1/payments/77ab/confirm", criticalIdempotencyTTL, true},
		{"stock patch", http.MethodPatch, "/api/v1/products/9d1e/stock", defaultIdempotencyTTL, true},
		{"transfer", http.MethodPost, "/api/v1/stock/transfers", defaultIdempotencyTTL, true},
		{"order list", http.MethodGet, "/api/v1/orders", 0, false},
	}

	for _, tt := range tests {
		ttl, ok := routeTTL(tt.method, tt.path)
		if ok != tt.ok {
			t.Fatalf("%s: expected ok=%v got %v", tt.name, tt.ok, ok)
		}
		if ok && ttl != tt.want {
			t.Fatalf("%s: expected ttl=%v got %v", tt.name, tt.want, ttl)
		}
	}
}

func TestIdempotencyPassesThroughWithoutHeader(t *testing.T) {
	mw := Idempotency(cache.New(cache.Options{}), nil)
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	})

	claims := cashier()
	for i := 0; i < 2; i++ {
		req := scopedRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{}`), claims)
		mw(handler).ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Fatalf("expected both requests to reach the handler, got %d", calls)
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	mw := Idempotency(cache.New(cache.Options{}), nil)
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"orderNumber":1}}`))
	})

	claims := cashier()
	send := func() *httptest.ResponseRecorder {
		req := scopedRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"items":[]}`), claims)
		req.Header.Set(IdempotencyHeader, "till-7-0001")
		rec := httptest.NewRecorder()
		mw(handler).ServeHTTP(rec, req)
		return rec
	}

	first := send()
	if first.Code != http.StatusCreated {
		t.Fatalf("expected first response 201 got %d", first.Code)
	}
	replay := send()
	if replay.Code != http.StatusCreated {
		t.Fatalf("expected replay status 201 got %d", replay.Code)
	}
	if replay.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatal("expected replay marker header")
	}
	if replay.Header().Get("Content-Type") != "application/json" {
		t.Fatal("expected content-type preserved")
	}
	if strings.TrimSpace(replay.Body.String()) != `{"data":{"orderNumber":1}}` {
		t.Fatalf("expected stored body got %s", replay.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler executed %d times, expected 1", calls)
	}
}

func TestIdempotencyScopesKeysPerCashier(t *testing.T) {
	mw := Idempotency(cache.New(cache.Options{}), nil)
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	})

	for _, claims := range []*auth.AccessTokenClaims{cashier(), cashier()} {
		req := scopedRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{}`), claims)
		req.Header.Set(IdempotencyHeader, "same-key")
		mw(handler).ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls != 2 {
		t.Fatalf("expected distinct cashiers not to share keys, got %d calls", calls)
	}
}

func TestIdempotencyDoesNotRecordServerErrors(t *testing.T) {
	mw := Idempotency(cache.New(cache.Options{}), nil)
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	claims := cashier()
	var last *httptest.ResponseRecorder
	for i := 0; i < 2; i++ {
		req := scopedRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{}`), claims)
		req.Header.Set(IdempotencyHeader, "retry-me")
		last = httptest.NewRecorder()
		mw(handler).ServeHTTP(last, req)
	}
	if calls != 2 || last.Code != http.StatusCreated {
		t.Fatalf("expected retry to reach handler, calls=%d code=%d", calls, last.Code)
	}
}

func TestIdempotencyDetectsBodyChange(t *testing.T) {
	mw := Idempotency(cache.New(cache.Options{}), nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	claims := cashier()
	req := scopedRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"foo":"bar"}`), claims)
	req.Header.Set(IdempotencyHeader, "xyz")
	mw(handler).ServeHTTP(httptest.NewRecorder(), req)

	replay := scopedRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"foo":"diff"}`), claims)
	replay.Header.Set(IdempotencyHeader, "xyz")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, replay)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeConflict) {
		t.Fatalf("expected error code %s got %s", pkgerrors.CodeConflict, payload.Error.Code)
	}
}
