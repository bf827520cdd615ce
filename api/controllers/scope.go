package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/DTBbuilds/SmartDuka-sub000/api/middleware"
	pkgerrors "github.com/DTBbuilds/SmartDuka-sub000/pkg/errors"
)

// Scope is the authenticated caller of a shop-scoped request.
type Scope struct {
	ShopID uuid.UUID
	UserID uuid.UUID
}

// RequestScope reads the shop and user from verified token claims.
func RequestScope(r *http.Request) (Scope, error) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil || claims.ShopID == uuid.Nil {
		return Scope{}, pkgerrors.New(pkgerrors.CodeForbidden, "shop context missing")
	}
	return Scope{ShopID: claims.ShopID, UserID: claims.UserID}, nil
}

// PathUUID parses a chi URL parameter as a UUID.
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+name).WithDetails(map[string]any{"field": name})
	}
	return id, nil
}
