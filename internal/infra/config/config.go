package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	Port        int    `envconfig:"PORT" default:"8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	PGDSN     string `envconfig:"PG_DSN"`
	RedisAddr string `envconfig:"REDIS_ADDR"`
	RabbitURL string `envconfig:"RABBITMQ_URL"`

	Directory struct {
		BaseURL  string        `envconfig:"DIRECTORY_BASE_URL"`
		Timeout  time.Duration `envconfig:"DIRECTORY_TIMEOUT" default:"10s"`
		CacheTTL time.Duration `envconfig:"DIRECTORY_CACHE_TTL" default:"5m"`
	} `envconfig:""`

	Queues struct {
		FollowUp string `envconfig:"FOLLOWUP_QUEUE_KEY" default:"followup_events"`
	} `envconfig:""`

	Ledger struct {
		KeyPrefix    string        `envconfig:"LEDGER_KEY_PREFIX" default:"ledger:"`
		MaxAttempts  int           `envconfig:"LEDGER_MAX_ATTEMPTS" default:"5"`
		RetryBackoff time.Duration `envconfig:"LEDGER_RETRY_BACKOFF" default:"50ms"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
