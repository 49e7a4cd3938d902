package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/api"
	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/service/idempotency"
	"github.com/vladislavdragonenkov/storefront/internal/service/outbox"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

const (
	envHTTPAddr     = "STOREFRONT_HTTP_ADDR"
	envMetricsAddr  = "STOREFRONT_METRICS_ADDR"
	envKafkaBrokers = "KAFKA_BROKERS"
)

const (
	healthMaxOutboxPending = 1000
	healthMaxOutboxAge     = 5 * time.Minute
)

// Config описывает минимальные настройки запуска приложения.
type Config struct {
	HTTPAddr     string
	MetricsAddr  string
	KafkaBrokers string
}

// DefaultConfig возвращает базовые адреса HTTP API и метрик.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":8080",
		MetricsAddr: ":9090",
	}
}

// ConfigFromEnv накладывает переменные окружения поверх базового конфига.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if addr := os.Getenv(envHTTPAddr); addr != "" {
		cfg.HTTPAddr = addr
	}
	if addr := os.Getenv(envMetricsAddr); addr != "" {
		cfg.MetricsAddr = addr
	}
	cfg.KafkaBrokers = os.Getenv(envKafkaBrokers)
	return cfg
}

// Run собирает зависимости и держит серверы до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(logger)
	if err != nil {
		return err
	}

	kafkaProducer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)

	var svc checkout.Service
	if kafkaProducer != nil {
		svc = checkout.NewServiceWithKafka(
			deps.Store,
			deps.ReceiptRepo,
			deps.TimelineRepo,
			deps.OutboxRepo,
			kafkaProducer,
			logger.WithField("layer", "checkout"),
		)
	} else {
		svc = checkout.NewService(
			deps.Store,
			deps.ReceiptRepo,
			deps.TimelineRepo,
			deps.OutboxRepo,
			logger.WithField("layer", "checkout"),
		)
	}

	// Outbox worker публикует события заказов, если Kafka настроен.
	if kafkaProducer != nil {
		publisher := kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicOrderEvents)
		dlqPublisher := kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicDeadLetterQueue)
		worker := outbox.NewWorker(
			deps.OutboxRepo,
			publisher,
			outbox.WithDLQPublisher(dlqPublisher),
			outbox.WithLogger(logger.WithField("layer", "outbox")),
		)
		go worker.Run(ctx)
	}

	cleanupWorker := idempotency.NewCleanupWorker(
		deps.IdemRepo,
		idempotency.WithLogger(logger.WithField("layer", "idempotency")),
	)
	go cleanupWorker.Run(ctx)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("outbox", healthcheck.NewOutboxBacklogChecker(deps.OutboxRepo, healthMaxOutboxPending, healthMaxOutboxAge))
	healthHandler.RegisterChecker("catalog", healthcheck.NewSimpleChecker("catalog", func() error {
		if len(deps.Store.Products()) == 0 {
			return errors.New("catalog is empty")
		}
		return nil
	}))

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	apiServer := api.NewServer(svc, deps.IdemRepo, logger.WithField("layer", "http"))
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: apiServer.Routes()}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.HTTPAddr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(httpSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		closeKafka(kafkaProducer, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		closeKafka(kafkaProducer, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает HTTP-обработчики /metrics и health-проб.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
