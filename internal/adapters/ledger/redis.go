package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"feedback-platform/internal/domain"
	"feedback-platform/internal/infra/metrics"
)

// casScript сравнивает токен версии и заменяет содержимое атомарно на
// стороне Redis. Пустой ожидаемый токен означает, что объекта ещё нет.
var casScript = redis.NewScript(`
local version = redis.call('HGET', KEYS[1], 'version')
if version == false then
  version = ''
end
if version ~= ARGV[1] then
  return 0
end
redis.call('HSET', KEYS[1], 'content', ARGV[2], 'version', ARGV[3])
return 1
`)

// Redis реализует domain.LedgerStore: журнал компании хранится в хэше
// {content, version}, условная запись выполняется Lua-скриптом.
type Redis struct {
	client *redis.Client
	prefix string
}

var _ domain.LedgerStore = (*Redis)(nil)

// NewRedis создаёт хранилище журналов.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "ledger:"
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) storageKey(key string) string {
	return r.prefix + key
}

// Read возвращает содержимое журнала и токен версии; пустой токен —
// объект не существует.
func (r *Redis) Read(ctx context.Context, key string) (string, string, error) {
	start := time.Now()
	values, err := r.client.HMGet(ctx, r.storageKey(key), "content", "version").Result()
	metrics.ObserveNetworkRequest("redis", "ledger_read", "ledger", start, err)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", domain.ErrDependencyUnavailable, err)
	}
	content, _ := values[0].(string)
	version, _ := values[1].(string)
	return content, version, nil
}

// ConditionalWrite перезаписывает журнал, только если токен версии
// не изменился с момента чтения. Новый токен генерируется на каждую
// успешную запись.
func (r *Redis) ConditionalWrite(ctx context.Context, key, content, expectedVersion string) (bool, error) {
	start := time.Now()
	res, err := casScript.Run(ctx, r.client, []string{r.storageKey(key)}, expectedVersion, content, uuid.NewString()).Int()
	metrics.ObserveNetworkRequest("redis", "ledger_write", "ledger", start, err)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrDependencyUnavailable, err)
	}
	return res == 1, nil
}
