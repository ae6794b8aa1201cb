package domain

import (
	"context"
	"time"
)

// PricingCatalog — внешний справочник компаний и тарифов.
// Отсутствие записи — обычный результат (ErrCompanyNotFound,
// ErrSubscriptionNotFound), а не сбой; сетевые ошибки справочника
// адаптер тоже отображает в "не найдено" (см. adapters/directory).
type PricingCatalog interface {
	Company(ctx context.Context, id int) (Company, error)
	Subscription(ctx context.Context, id int) (SubscriptionTier, error)
}

// FeedbackStore — долговременное хранилище отзывов,
// партиционированное по компании.
type FeedbackStore interface {
	Put(ctx context.Context, record FeedbackRecord) error
	QueryByCompany(ctx context.Context, companyID int) ([]FeedbackRecord, error)
	GetByID(ctx context.Context, id string, companyID int) (FeedbackRecord, error)
}

// FollowUpQueue — канал доставки follow-up событий с гарантией
// at-least-once.
type FollowUpQueue interface {
	Publish(ctx context.Context, event FollowUpEvent) error
}

// LedgerStore — версионированное блоб-хранилище журналов. Хранилище
// умеет только полное чтение и полную условную перезапись объекта.
// Пустой токен версии означает, что объект ещё не существует;
// ConditionalWrite возвращает false при несовпадении токена.
type LedgerStore interface {
	Read(ctx context.Context, key string) (content string, version string, err error)
	ConditionalWrite(ctx context.Context, key, content, expectedVersion string) (bool, error)
}

// Cache — простое TTL-хранилище для кэширования ответов справочника.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
