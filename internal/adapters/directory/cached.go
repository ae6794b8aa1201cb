package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"feedback-platform/internal/domain"
)

// CachedCatalog кэширует ответы справочника в TTL-хранилище.
// Кэш — необязательное ускорение: любая его ошибка игнорируется,
// и запрос уходит в справочник напрямую.
type CachedCatalog struct {
	catalog domain.PricingCatalog
	cache   domain.Cache
	ttl     time.Duration
	log     zerolog.Logger
}

var _ domain.PricingCatalog = (*CachedCatalog)(nil)

// NewCachedCatalog оборачивает справочник кэшем.
func NewCachedCatalog(catalog domain.PricingCatalog, cache domain.Cache, ttl time.Duration, logger zerolog.Logger) *CachedCatalog {
	return &CachedCatalog{catalog: catalog, cache: cache, ttl: ttl, log: logger}
}

// Company возвращает компанию, сначала заглядывая в кэш.
func (c *CachedCatalog) Company(ctx context.Context, id int) (domain.Company, error) {
	key := fmt.Sprintf("directory:company:%d", id)
	var company domain.Company
	if c.fromCache(ctx, key, &company) {
		return company, nil
	}
	company, err := c.catalog.Company(ctx, id)
	if err != nil {
		return domain.Company{}, err
	}
	c.toCache(ctx, key, company)
	return company, nil
}

// Subscription возвращает тариф, сначала заглядывая в кэш.
func (c *CachedCatalog) Subscription(ctx context.Context, id int) (domain.SubscriptionTier, error) {
	key := fmt.Sprintf("directory:subscription:%d", id)
	var tier domain.SubscriptionTier
	if c.fromCache(ctx, key, &tier) {
		return tier, nil
	}
	tier, err := c.catalog.Subscription(ctx, id)
	if err != nil {
		return domain.SubscriptionTier{}, err
	}
	c.toCache(ctx, key, tier)
	return tier, nil
}

func (c *CachedCatalog) fromCache(ctx context.Context, key string, out any) bool {
	data, err := c.cache.Get(ctx, key)
	if err != nil || len(data) == 0 {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func (c *CachedCatalog) toCache(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.log.Debug().Err(err).Str("key", key).Msg("directory: кэш недоступен")
	}
}
