package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"feedback-platform/internal/domain"
)

type countingCatalog struct {
	company           domain.Company
	tier              domain.SubscriptionTier
	companyCalls      int
	subscriptionCalls int
}

func (c *countingCatalog) Company(_ context.Context, _ int) (domain.Company, error) {
	c.companyCalls++
	return c.company, nil
}

func (c *countingCatalog) Subscription(_ context.Context, _ int) (domain.SubscriptionTier, error) {
	c.subscriptionCalls++
	return c.tier, nil
}

type mapCache struct {
	values map[string][]byte
	getErr error
	setErr error
}

func newMapCache() *mapCache { return &mapCache{values: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.values[key], nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.values[key] = value
	return nil
}

func TestCachedCatalogHitsCacheOnSecondLookup(t *testing.T) {
	inner := &countingCatalog{company: domain.Company{ID: 7, Name: "Acme", SubscriptionID: 3}}
	catalog := NewCachedCatalog(inner, newMapCache(), time.Minute, zerolog.Nop())

	for i := 0; i < 3; i++ {
		company, err := catalog.Company(context.Background(), 7)
		if err != nil {
			t.Fatalf("не ожидали ошибку: %v", err)
		}
		if company.Name != "Acme" {
			t.Fatalf("компания из кэша разобрана неверно: %+v", company)
		}
	}
	if inner.companyCalls != 1 {
		t.Fatalf("ожидали один запрос к справочнику, получили %d", inner.companyCalls)
	}
}

func TestCachedCatalogSurvivesCacheFailure(t *testing.T) {
	inner := &countingCatalog{tier: domain.SubscriptionTier{ID: 3, Name: "Premium"}}
	brokenCache := newMapCache()
	brokenCache.getErr = errors.New("redis down")
	brokenCache.setErr = errors.New("redis down")
	catalog := NewCachedCatalog(inner, brokenCache, time.Minute, zerolog.Nop())

	for i := 0; i < 2; i++ {
		tier, err := catalog.Subscription(context.Background(), 3)
		if err != nil {
			t.Fatalf("ошибка кэша не должна ломать запрос: %v", err)
		}
		if tier.Name != "Premium" {
			t.Fatalf("тариф разобран неверно: %+v", tier)
		}
	}
	if inner.subscriptionCalls != 2 {
		t.Fatalf("при недоступном кэше каждый запрос идёт в справочник")
	}
}
