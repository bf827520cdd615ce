package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/cache"
	pkgerrors "github.com/DTBbuilds/SmartDuka-sub000/pkg/errors"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/pagination"
)

// Service exposes the cached order reads. Writes go through checkout and payments.
type Service interface {
	Get(ctx context.Context, shopID, orderID uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, shopID uuid.UUID, page pagination.Page, filters ListFilters) (*OrderList, error)
	Stats(ctx context.Context, shopID uuid.UUID) (*Stats, error)
}

type service struct {
	repo  Repository
	cache *cache.Cache
}

// NewService builds the order read service.
func NewService(repo Repository, c *cache.Cache) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if c == nil {
		return nil, fmt.Errorf("cache required")
	}
	return &service{repo: repo, cache: c}, nil
}

func (s *service) Get(ctx context.Context, shopID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, shopID, orderID)
	if err != nil {
		return nil, MapLookupError(err)
	}
	return FromModel(order), nil
}

func (s *service) List(ctx context.Context, shopID uuid.UUID, page pagination.Page, filters ListFilters) (*OrderList, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	page = pagination.NormalizePage(page.Number, page.Limit)
	key := cache.PaginatedKey(shopID.String(), cache.ResourceOrders, page.Number, page.Limit, filters.cacheFilters())

	return cache.GetOrSet(ctx, s.cache, key, cache.TTLShort, func(ctx context.Context) (*OrderList, error) {
		rows, total, err := s.repo.List(ctx, shopID, page, filters)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
		}
		list := &OrderList{
			Orders: make([]OrderDTO, 0, len(rows)),
			Page:   page.Number,
			Limit:  page.Limit,
			Total:  total,
		}
		for i := range rows {
			list.Orders = append(list.Orders, *FromModel(&rows[i]))
		}
		return list, nil
	})
}

func (s *service) Stats(ctx context.Context, shopID uuid.UUID) (*Stats, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	key := cache.Key(shopID.String(), cache.ResourceStats, cache.ResourceOrders)
	return cache.GetOrSet(ctx, s.cache, key, cache.TTLStats, func(ctx context.Context) (*Stats, error) {
		stats, err := s.repo.Stats(ctx, shopID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "order stats")
		}
		return stats, nil
	})
}

// MapLookupError converts a repository lookup failure into an API error.
func MapLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
}
