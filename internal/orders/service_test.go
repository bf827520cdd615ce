package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/cache"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/db/dbtest"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/enums"
	pkgerrors "github.com/DTBbuilds/SmartDuka-sub000/pkg/errors"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/pagination"
)

func TestServiceListIsCachedUntilInvalidated(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	c := cache.New(cache.Options{})
	svc, err := NewService(repo, c)
	require.NoError(t, err)

	ctx := context.Background()
	shopID := seedShop(t, conn)
	newOrder(t, repo, shopID, "10", enums.OrderStatusCompleted, enums.PaymentStatusPaid)

	first, err := svc.List(ctx, shopID, pagination.Page{Number: 1, Limit: 20}, ListFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Total)

	newOrder(t, repo, shopID, "12", enums.OrderStatusCompleted, enums.PaymentStatusPaid)

	cached, err := svc.List(ctx, shopID, pagination.Page{Number: 1, Limit: 20}, ListFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), cached.Total, "listing should be served from cache")

	paid := enums.PaymentStatusPaid
	filtered, err := svc.List(ctx, shopID, pagination.Page{Number: 1, Limit: 20}, ListFilters{PaymentStatus: &paid})
	require.NoError(t, err)
	assert.Equal(t, int64(2), filtered.Total, "distinct filters use distinct keys")

	c.Invalidate(ctx, cache.OrderPatterns(shopID.String())...)

	fresh, err := svc.List(ctx, shopID, pagination.Page{Number: 1, Limit: 20}, ListFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.Total)
	require.Len(t, fresh.Orders, 2)
	assert.Equal(t, int64(2), fresh.Orders[0].OrderNumber)
}

func TestServiceStatsCached(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	c := cache.New(cache.Options{})
	svc, err := NewService(repo, c)
	require.NoError(t, err)

	ctx := context.Background()
	shopID := seedShop(t, conn)
	newOrder(t, repo, shopID, "232", enums.OrderStatusCompleted, enums.PaymentStatusPaid)

	stats, err := svc.Stats(ctx, shopID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.OrderCount)
	assert.Equal(t, "232", stats.Revenue.String())

	newOrder(t, repo, shopID, "10", enums.OrderStatusCompleted, enums.PaymentStatusPaid)
	stats, err = svc.Stats(ctx, shopID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.OrderCount)

	c.Invalidate(ctx, cache.OrderPatterns(shopID.String())...)
	stats, err = svc.Stats(ctx, shopID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.OrderCount)
}

func TestServiceGetNotFound(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn), cache.New(cache.Options{}))
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	_, err := NewService(nil, cache.New(cache.Options{}))
	assert.Error(t, err)
	_, err = NewService(NewRepository(nil), nil)
	assert.Error(t, err)
}

func TestJoinNotes(t *testing.T) {
	existing := "customer asked for receipt"
	assert.Equal(t, "customer asked for receipt\nsync warning", *JoinNotes(&existing, "sync warning"))
	assert.Equal(t, "sync warning", *JoinNotes(nil, "sync warning"))
	assert.Same(t, &existing, JoinNotes(&existing, "  "))
}
