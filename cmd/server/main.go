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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"caseseal/internal/audit"
	audithandler "caseseal/internal/audit/handler"
	"caseseal/internal/audit/outbox"
	"caseseal/internal/audit/outbox/worker"
	"caseseal/internal/audit/pseudonym"
	auditmemory "caseseal/internal/audit/store/memory"
	auditpostgres "caseseal/internal/audit/store/postgres"
	"caseseal/internal/cases"
	caseshandler "caseseal/internal/cases/handler"
	casesmemory "caseseal/internal/cases/store/memory"
	casespostgres "caseseal/internal/cases/store/postgres"
	"caseseal/internal/disclosure"
	disclosurehandler "caseseal/internal/disclosure/handler"
	"caseseal/internal/identity"
	"caseseal/internal/identity/revocation"
	"caseseal/internal/opening"
	openinghandler "caseseal/internal/opening/handler"
	openingmemory "caseseal/internal/opening/store/memory"
	openingpostgres "caseseal/internal/opening/store/postgres"
	"caseseal/internal/platform/config"
	"caseseal/internal/platform/database"
	"caseseal/internal/platform/httpserver"
	"caseseal/internal/platform/kafka/producer"
	"caseseal/internal/platform/logger"
	"caseseal/internal/platform/metrics"
	"caseseal/internal/platform/middleware"
	platformredis "caseseal/internal/platform/redis"
	"caseseal/internal/transport/http/shared"
)

const (
	bearerTokenTTL  = time.Hour
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage backends. An empty DATABASE_URL selects in-memory stores so the
	// server runs without infrastructure for local development.
	pool, err := database.New(cfg.Database)
	if err != nil {
		fatal(log, "connect database", err)
	}
	defer pool.Close() //nolint:errcheck // best-effort on shutdown

	var (
		caseStore    cases.Store
		openingStore opening.Store
		auditStore   audit.Store
		outboxStore  outbox.Store
	)
	if pool != nil {
		caseStore = casespostgres.New(pool.DB())
		openingStore = openingpostgres.New(pool.DB())
		auditStore = auditpostgres.New(pool.DB())
		outboxStore = outbox.NewPostgresStore(pool.DB())
		log.Info("using postgres stores")
	} else {
		caseStore = casesmemory.New()
		openingStore = openingmemory.New()
		auditStore = auditmemory.New()
		outboxStore = outbox.NewMemoryStore()
		log.Info("using in-memory stores")
	}

	// Token revocation list: Redis when configured, process-local otherwise.
	var trl identity.RevocationChecker
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		fatal(log, "connect redis", err)
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck // best-effort on shutdown
		trl = revocation.NewRedisTRL(redisClient.Client)
		log.Info("using redis token revocation list")
	} else {
		trl = revocation.NewMemoryTRL()
	}

	// Kafka mirroring of the auditor projection is optional. Without brokers
	// the outbox still records entries; nothing drains it.
	var outboxWorker *worker.Worker
	if cfg.Kafka.Brokers != "" {
		prod, err := producer.New(producer.Config{
			Brokers:         cfg.Kafka.Brokers,
			Retries:         5,
			DeliveryTimeout: 10 * time.Second,
		}, log)
		if err != nil {
			fatal(log, "create kafka producer", err)
		}
		defer prod.Close() //nolint:errcheck // best-effort on shutdown

		if err := prod.EnsureTopic(ctx, cfg.Kafka.Topic); err != nil {
			fatal(log, "ensure kafka topic", err)
		}

		outboxWorker = worker.New(outboxStore, prod, cfg.Kafka.Topic, log)
		log.Info("kafka audit mirroring enabled", "topic", cfg.Kafka.Topic)
	}

	m := metrics.New()

	sink := audit.NewSink(auditStore, pseudonym.New(cfg.MasterKey), outboxStore, m, log)

	users := identity.NewInMemoryStore()
	if _, err := identity.Seed(ctx, users, identity.DefaultSeedUsers()); err != nil {
		fatal(log, "seed identities", err)
	}
	tokens := identity.NewTokenService(cfg.JWTSigningKey, bearerTokenTTL)

	caseService := cases.NewService(caseStore, users, sink, log)
	openingService := opening.NewService(openingStore, caseService, sink, m, log)
	disclosureService := disclosure.NewService(openingStore, caseService, users, sink, m, log, cfg.ViewTokenTTL)

	router := chi.NewRouter()
	router.Use(
		middleware.Recovery(log),
		middleware.RequestID,
		middleware.Logger(log),
		middleware.Timeout(requestTimeout),
		middleware.ClientMetadata(cfg.TrustedProxies),
		middleware.ContentTypeJSON,
	)

	router.Get("/healthz", healthHandler(pool, redisClient))
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(identity.RequirePrincipal(tokens, trl, log))
		caseshandler.New(caseService, log).Register(r)
		openinghandler.New(openingService, log).Register(r)
		disclosurehandler.New(disclosureService, log).Register(r)
		audithandler.New(sink, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	if outboxWorker != nil {
		outboxWorker.Start(ctx)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting caseseal server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")

		if outboxWorker != nil {
			outboxWorker.Stop()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		fatal(log, "server exited", err)
	}
	log.Info("server stopped")
}

// healthHandler reports readiness of the configured backends. Unconfigured
// backends are skipped rather than failed.
func healthHandler(pool *database.Pool, redisClient *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		checks := map[string]string{"status": "ok"}

		if pool != nil {
			if err := pool.Health(ctx); err != nil {
				checks["status"] = "degraded"
				checks["database"] = err.Error()
			} else {
				checks["database"] = "ok"
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				checks["status"] = "degraded"
				checks["redis"] = err.Error()
			} else {
				checks["redis"] = "ok"
			}
		}

		status := http.StatusOK
		if checks["status"] != "ok" {
			status = http.StatusServiceUnavailable
		}
		shared.WriteJSON(w, status, checks)
	}
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
