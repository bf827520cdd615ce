package orders

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DTBbuilds/SmartDuka-sub000/api/controllers"
	"github.com/DTBbuilds/SmartDuka-sub000/api/responses"
	"github.com/DTBbuilds/SmartDuka-sub000/api/validators"
	internalorders "github.com/DTBbuilds/SmartDuka-sub000/internal/orders"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
	pkgerrors "github.com/DTBbuilds/SmartDuka-sub000/pkg/errors"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/logger"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/pagination"
)

const maxPage = 10000

// List returns one page of the shop's orders, newest first.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		scope, err := controllers.RequestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, maxPage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := buildFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), scope.ShopID, pagination.NormalizePage(page, limit), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Stats returns the shop's order counters and revenue.
func Stats(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		scope, err := controllers.RequestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		stats, err := svc.Stats(r.Context(), scope.ShopID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// Detail returns a single order with items, payments and warnings.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
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
		order, err := svc.Get(r.Context(), scope.ShopID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func buildFilters(r *http.Request) (internalorders.ListFilters, error) {
	q := r.URL.Query()
	var filters internalorders.ListFilters

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, invalidQuery("status", err)
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(q.Get("paymentStatus")); raw != "" {
		status, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return filters, invalidQuery("paymentStatus", err)
		}
		filters.PaymentStatus = &status
	}
	if raw := strings.TrimSpace(q.Get("cashierId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, invalidQuery("cashierId", err)
		}
		filters.CashierID = &id
	}

	from, err := parseDate(q.Get("from"), false)
	if err != nil {
		return filters, invalidQuery("from", err)
	}
	to, err := parseDate(q.Get("to"), true)
	if err != nil {
		return filters, invalidQuery("to", err)
	}
	if from != nil && to != nil && to.Before(*from) {
		return filters, pkgerrors.New(pkgerrors.CodeValidation, "to must not precede from")
	}
	filters.DateFrom = from
	filters.DateTo = to
	return filters, nil
}

// parseDate accepts RFC3339 or a bare date. A bare end date covers the whole day.
func parseDate(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func invalidQuery(field string, err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid query parameter").WithDetails(map[string]any{"field": field})
}
