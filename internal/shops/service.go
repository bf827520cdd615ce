package shops

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/DTBbuilds/SmartDuka-sub000/pkg/cache"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/config"
	pkgerrors "github.com/DTBbuilds/SmartDuka-sub000/pkg/errors"
	"github.com/DTBbuilds/SmartDuka-sub000/pkg/logger"
)

// Service exposes tenant settings read by checkout and the stock ledger.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ShopDTO, error)
	UpdateSettings(ctx context.Context, id uuid.UUID, input UpdateSettingsInput) (*ShopDTO, error)
	ResolveTaxRate(ctx context.Context, id uuid.UUID) (decimal.Decimal, TaxRateSource)
	LowStockAlertsEnabled(ctx context.Context, tx *gorm.DB, id uuid.UUID) bool
}

type service struct {
	repo     *Repository
	cache    *cache.Cache
	checkout config.CheckoutConfig
	logg     *logger.Logger
}

// NewService builds the shop settings service.
func NewService(repo *Repository, c *cache.Cache, checkout config.CheckoutConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shop repository required")
	}
	if c == nil {
		return nil, fmt.Errorf("cache required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, cache: c, checkout: checkout, logg: logg}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*ShopDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	key := cache.Key(id.String(), cache.ResourceSettings)
	return cache.GetOrSet(ctx, s.cache, key, cache.TTLLong, func(ctx context.Context) (*ShopDTO, error) {
		shop, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, mapLookupError(err)
		}
		return FromModel(shop), nil
	})
}

func (s *service) UpdateSettings(ctx context.Context, id uuid.UUID, input UpdateSettingsInput) (*ShopDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	if input.TaxRate != nil && (input.TaxRate.IsNegative() || input.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1))) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tax rate must be a fraction between 0 and 1")
	}

	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}
	if input.Name != nil {
		shop.Name = strings.TrimSpace(*input.Name)
	}
	if input.Currency != nil {
		shop.Currency = strings.ToUpper(strings.TrimSpace(*input.Currency))
	}
	switch {
	case input.ClearTaxRate:
		shop.TaxRate = decimal.NullDecimal{}
	case input.TaxRate != nil:
		shop.TaxRate = decimal.NewNullDecimal(*input.TaxRate)
	}
	if input.LowStockAlerts != nil {
		shop.LowStockAlerts = *input.LowStockAlerts
	}

	if err := s.repo.Update(ctx, shop); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update shop settings")
	}
	s.cache.Delete(ctx, cache.Key(id.String(), cache.ResourceSettings))
	return FromModel(shop), nil
}

// ResolveTaxRate returns the shop's configured rate, or the system default
// when the shop has none or the lookup fails.
func (s *service) ResolveTaxRate(ctx context.Context, id uuid.UUID) (decimal.Decimal, TaxRateSource) {
	shop, err := s.GetByID(ctx, id)
	if err != nil {
		s.logg.WarnErr(s.logg.WithShopID(ctx, id.String()), "shop settings lookup failed, using default tax rate", err)
		return s.checkout.TaxRate(), TaxRateFromDefault
	}
	if shop.TaxRate == nil {
		return s.checkout.TaxRate(), TaxRateFromDefault
	}
	return *shop.TaxRate, TaxRateFromShop
}

// LowStockAlertsEnabled combines the global switch with the shop flag. Lookup
// failures fall back to the global switch.
func (s *service) LowStockAlertsEnabled(ctx context.Context, tx *gorm.DB, id uuid.UUID) bool {
	if !s.checkout.LowStockAlerts {
		return false
	}
	if tx != nil {
		shop, err := s.repo.WithTx(tx).FindByID(ctx, id)
		if err != nil {
			return true
		}
		return shop.LowStockAlerts
	}
	shop, err := s.GetByID(ctx, id)
	if err != nil {
		return true
	}
	return shop.LowStockAlerts
}

func mapLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "shop not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load shop")
}
