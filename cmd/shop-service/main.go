package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/minishop/backend/internal/config"
	"github.com/minishop/backend/pkg/idempotency"
	"github.com/minishop/backend/pkg/logging"
	"github.com/minishop/backend/pkg/outbox"
	"github.com/minishop/backend/pkg/shutdown"
	"github.com/minishop/backend/pkg/tracing"

	catalogapp "github.com/minishop/backend/internal/catalog/application"
	cataloghttp "github.com/minishop/backend/internal/catalog/infrastructure/http"
	catalogpg "github.com/minishop/backend/internal/catalog/infrastructure/postgres"
	orderapp "github.com/minishop/backend/internal/order/application"
	orderhttp "github.com/minishop/backend/internal/order/infrastructure/http"
	orderkafka "github.com/minishop/backend/internal/order/infrastructure/kafka"
	orderpg "github.com/minishop/backend/internal/order/infrastructure/postgres"
	storagepg "github.com/minishop/backend/internal/storage/postgres"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, "shop-service", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	// Postgres
	pool, err := pgxpool.New(ctx, cfg.PGURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := storagepg.Migrate(ctx, pool); err != nil {
		log.Error("schema migrate failed", "err", err)
		os.Exit(1)
	}

	// Kafka producer + outbox relay
	writer := orderkafka.NewWriter(cfg.KafkaBrokers)
	defer writer.Close()

	store := orderpg.NewOutboxStore(log, pool)
	dispatch := outbox.NewDispatcher(log, writer, cfg.OutboxTopic)
	relay := outbox.NewRelay(log, store, dispatch, "shop-service-"+uuid.NewString())

	// Optional redis-backed idempotency guard
	var idem *idempotency.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		idem = idempotency.NewStore(rdb, 24*time.Hour)
	}

	// Services
	catalogRepo := catalogpg.NewRepository(log, pool)
	catalogSvc := catalogapp.NewService(log, catalogRepo)

	orderRepo := orderpg.NewRepository(log, pool)
	orderSvc := orderapp.NewService(log, orderRepo, catalogRepo)

	// HTTP server
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Route("/api", func(r chi.Router) {
		cataloghttp.NewHandler(log, catalogSvc).Register(r)
		orderhttp.NewHandler(log, orderSvc, idem).Register(r)
	})
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := relay.Run(ctx); err != nil {
			log.Error("relay stopped with error", "err", err)
		}
	}()

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	log.Info("shop-service shutdown complete")
}
