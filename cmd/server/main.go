package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"ebirth/internal/platform/config"
	"ebirth/internal/platform/httpserver"
	"ebirth/internal/platform/logger"
	"ebirth/internal/platform/metrics"
	platformredis "ebirth/internal/platform/redis"
	registry "ebirth/internal/registry/service"
	"ebirth/internal/registry/store"
	"ebirth/internal/sms"
	httptransport "ebirth/internal/transport/http"
	"ebirth/internal/ussd/engine"
	"ebirth/internal/ussd/handler"
	ussd "ebirth/internal/ussd/service"
	audit "ebirth/pkg/platform/audit"
	auditkafka "ebirth/pkg/platform/audit/kafka"
	auditmem "ebirth/pkg/platform/audit/store/memory"
	"ebirth/pkg/platform/audit/publisher"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal services packages.
func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("fatal", "error", err.Error())
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	m := metrics.New()
	checks := map[string]func() error{}

	// Registration store: in-memory unless postgres is configured, with
	// redis optionally taking over sequence allocation.
	var regStore store.Store = store.NewInMemory()
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		pg := store.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		regStore = pg
		checks["postgres"] = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(pingCtx)
		}
		log.Info("registration store", "backend", "postgres")
	} else {
		log.Info("registration store", "backend", "memory")
	}

	rdb, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		regStore = store.WithRedisSequences(regStore, rdb.Client)
		checks["redis"] = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return rdb.Health(pingCtx)
		}
		log.Info("sequence allocation", "backend", "redis")
	}

	// Audit trail: Kafka when brokers are configured, process memory
	// otherwise. Either way registration emits compliance events.
	var sink audit.Appender = auditmem.NewInMemoryStore()
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := auditkafka.NewSink(ctx, cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("audit sink", "backend", "kafka", "topic", cfg.AuditTopic)
	}
	auditPub := publisher.NewPublisher(sink, publisher.WithAsyncBuffer(256))
	defer auditPub.Close()

	var notifier sms.Notifier = sms.NewLogNotifier(log)
	if cfg.SMSGatewayURL != "" {
		notifier = sms.NewGateway(cfg.SMSGatewayURL)
	}

	registrar, err := registry.New(regStore,
		registry.WithLogger(log),
		registry.WithNotifier(notifier),
		registry.WithAuditPublisher(auditPub),
		registry.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	turns, err := ussd.New(engine.New(), registrar,
		ussd.WithLogger(log),
		ussd.WithMetrics(m),
		ussd.WithAuditPublisher(auditPub),
	)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(handler.New(turns, log, m), checks)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
