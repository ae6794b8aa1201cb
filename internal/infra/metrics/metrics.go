package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	SubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feedback_submissions_total",
		Help: "Количество обработанных отзывов по результату",
	}, []string{"outcome"})

	FollowUpPublishedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "followup_published_total",
		Help: "Опубликованные follow-up события",
	})

	FollowUpPublishErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "followup_publish_errors_total",
		Help: "Ошибки публикации follow-up событий",
	})

	LedgerAppendSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ledger_append_seconds",
		Help:    "Время дозаписи строки журнала",
		Buckets: prometheus.DefBuckets,
	})

	LedgerConflictsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_conflicts_total",
		Help: "Конфликты версий при записи журнала",
	})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		SubmissionsTotal,
		FollowUpPublishedTotal,
		FollowUpPublishErrors,
		LedgerAppendSeconds,
		LedgerConflictsTotal,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
	}()
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// IncSubmission увеличивает счётчик обработанных отзывов.
func IncSubmission(outcome string) {
	SubmissionsTotal.WithLabelValues(outcome).Inc()
}

// IncFollowUpPublished увеличивает счётчик опубликованных событий.
func IncFollowUpPublished() {
	FollowUpPublishedTotal.Inc()
}

// IncFollowUpPublishError увеличивает счётчик ошибок публикации.
func IncFollowUpPublishError() {
	FollowUpPublishErrors.Inc()
}

// ObserveLedgerAppend записывает длительность дозаписи в журнал.
func ObserveLedgerAppend(start time.Time) {
	LedgerAppendSeconds.Observe(time.Since(start).Seconds())
}

// IncLedgerConflict увеличивает счётчик конфликтов версий журнала.
func IncLedgerConflict() {
	LedgerConflictsTotal.Inc()
}
