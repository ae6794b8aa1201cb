package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"feedback-platform/internal/adapters/directory"
	"feedback-platform/internal/adapters/repo"
	"feedback-platform/internal/infra/cache"
	"feedback-platform/internal/infra/config"
	"feedback-platform/internal/infra/db"
	httpinfra "feedback-platform/internal/infra/http"
	applog "feedback-platform/internal/infra/log"
	"feedback-platform/internal/infra/metrics"
	"feedback-platform/internal/infra/queue"
	feedbackusecase "feedback-platform/internal/usecase/feedback"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, logger.With().Str("component", "metrics").Logger(), cfg.MetricsAddr)

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: нет подключения к БД")
	}
	defer pool.Close()

	if cfg.RedisAddr == "" {
		logger.Fatal().Msg("api: не указан адрес Redis (REDIS_ADDR)")
	}
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	if cfg.RabbitURL == "" {
		logger.Fatal().Msg("api: не указан адрес RabbitMQ (RABBITMQ_URL)")
	}
	followUpQueue, err := queue.NewRabbitFollowUpQueue(cfg.RabbitURL, cfg.Queues.FollowUp, logger.With().Str("component", "queue").Logger())
	if err != nil {
		logger.Fatal().Err(err).Msg("api: не удалось инициализировать очередь RabbitMQ")
	}
	defer followUpQueue.Close()

	if cfg.Directory.BaseURL == "" {
		logger.Fatal().Msg("api: не указан адрес справочника (DIRECTORY_BASE_URL)")
	}
	directoryClient := directory.NewClient(cfg.Directory.BaseURL, cfg.Directory.Timeout, logger.With().Str("component", "directory").Logger())
	catalog := directory.NewCachedCatalog(directoryClient, cache.NewRedis(redisClient), cfg.Directory.CacheTTL, logger.With().Str("component", "directory_cache").Logger())

	feedbackStore := repo.NewPostgres(pool)
	service := feedbackusecase.NewService(catalog, feedbackStore, followUpQueue, logger.With().Str("component", "feedback").Logger())

	srv := httpinfra.NewServer(logger.With().Str("component", "http").Logger())
	srv.Router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	registerRoutes(srv.Router, service, directoryClient)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("api: graceful shutdown failed")
		}
	}()

	if err := srv.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("api: сервер остановлен")
	}
}
