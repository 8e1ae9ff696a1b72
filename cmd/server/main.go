package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"meridian/internal/approval"
	approvalhandler "meridian/internal/approval/handler"
	"meridian/internal/approval/progress"
	"meridian/internal/audit"
	audithandler "meridian/internal/audit/handler"
	auditmetrics "meridian/internal/audit/metrics"
	auditmemory "meridian/internal/audit/store/memory"
	auditpostgres "meridian/internal/audit/store/postgres"
	auditstream "meridian/internal/audit/stream"
	journeyhandler "meridian/internal/journey/handler"
	journeymetrics "meridian/internal/journey/metrics"
	journeyservice "meridian/internal/journey/service"
	journeystore "meridian/internal/journey/store"
	"meridian/internal/jwttoken"
	"meridian/internal/platform/config"
	"meridian/internal/platform/httpserver"
	"meridian/internal/platform/logger"
	platformredis "meridian/internal/platform/redis"
	"meridian/internal/rbac"
	httptransport "meridian/internal/transport/http"
	"meridian/internal/workflow"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gate := rbac.NewGate(rbac.DefaultMatrix())

	engine, err := workflow.NewEngine(workflow.JourneyTable(), gate)
	if err != nil {
		log.Error("invalid journey workflow table", "error", err)
		os.Exit(1)
	}

	resolver, err := approval.NewResolver(approval.DefaultChains())
	if err != nil {
		log.Error("invalid approval chain configuration", "error", err)
		os.Exit(1)
	}

	// Audit store: postgres when configured, otherwise in-memory.
	var auditStore audit.Store
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to open postgres pool", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("postgres ping failed", "error", err)
			os.Exit(1)
		}
		// Idempotent DDL; real deployments run migrations instead.
		if _, err := db.ExecContext(ctx, auditpostgres.Schema); err != nil {
			log.Error("failed to ensure audit schema", "error", err)
			os.Exit(1)
		}
		auditStore = auditpostgres.New(db)
	} else {
		auditStore = auditmemory.NewInMemoryStore()
	}

	ledgerOpts := []audit.Option{
		audit.WithWriteMode(audit.WriteMode(cfg.AuditWriteMode)),
		audit.WithMetrics(auditmetrics.New()),
	}
	var streamPublisher *auditstream.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		streamPublisher, err = auditstream.New(cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			log.Error("failed to connect audit stream", "error", err)
			os.Exit(1)
		}
		ledgerOpts = append(ledgerOpts, audit.WithStream(streamPublisher))
	}
	ledger, err := audit.NewLedger(auditStore, log, ledgerOpts...)
	if err != nil {
		log.Error("failed to construct audit ledger", "error", err)
		os.Exit(1)
	}

	// Approval progress: redis when configured, otherwise in-memory.
	var progressStore progress.Store = progress.NewInMemoryStore()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		progressStore = progress.NewRedisStore(redisClient.Client)
	}

	journeys := journeystore.NewInMemoryStore()
	grants := journeystore.NewInMemoryGrantStore()
	journeySvc, err := journeyservice.New(journeys, grants, gate, engine, resolver, progressStore, ledger,
		journeyservice.WithLogger(log),
		journeyservice.WithMetrics(journeymetrics.New()),
	)
	if err != nil {
		log.Error("failed to construct journey service", "error", err)
		os.Exit(1)
	}

	jwtService := jwttoken.NewService(cfg.JWTSigningKey, "meridian", "meridian-api")
	router := httptransport.NewRouter(jwttoken.NewServiceAdapter(jwtService), log,
		journeyhandler.New(journeySvc, log),
		audithandler.New(ledger, gate, log),
		approvalhandler.New(resolver),
	)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting meridian", "addr", cfg.Addr, "audit_write_mode", cfg.AuditWriteMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if streamPublisher != nil {
			if err := streamPublisher.Close(shutdownCtx); err != nil {
				log.Warn("audit stream close failed", "error", err)
			}
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
