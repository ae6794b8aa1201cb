package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	ledgeradapter "feedback-platform/internal/adapters/ledger"
	"feedback-platform/internal/infra/config"
	applog "feedback-platform/internal/infra/log"
	"feedback-platform/internal/infra/metrics"
	"feedback-platform/internal/infra/queue"
	"feedback-platform/internal/usecase/followup"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), cfg.MetricsAddr)

	if cfg.RedisAddr == "" {
		logger.Fatal().Msg("worker: не указан адрес Redis (REDIS_ADDR)")
	}
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	ledgerStore := ledgeradapter.NewRedis(redisClient, cfg.Ledger.KeyPrefix)
	appender := followup.NewAppender(ledgerStore, followup.Config{
		MaxAttempts:  cfg.Ledger.MaxAttempts,
		RetryBackoff: cfg.Ledger.RetryBackoff,
	}, logger.With().Str("component", "followup").Logger())

	if cfg.RabbitURL == "" {
		logger.Fatal().Msg("worker: не указан адрес RabbitMQ (RABBITMQ_URL)")
	}
	followUpQueue, err := queue.NewRabbitFollowUpQueue(cfg.RabbitURL, cfg.Queues.FollowUp, logger.With().Str("component", "queue").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: не удалось инициализировать очередь RabbitMQ")
	}
	defer followUpQueue.Close()

	logger.Info().Str("queue", cfg.Queues.FollowUp).Msg("worker: потребление follow-up событий запущено")
	if err := followUpQueue.Consume(ctx, appender.Append); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: потребление остановлено")
	}
}
