package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"tracker/internal/audit"
	"tracker/internal/cache"
	"tracker/internal/events"
	"tracker/internal/notify"
	"tracker/internal/overdue"
	"tracker/internal/platform/config"
	"tracker/internal/platform/httpserver"
	"tracker/internal/platform/logger"
	platformredis "tracker/internal/platform/redis"
	"tracker/internal/tasks"
	httptransport "tracker/internal/transport/http"
)

// main wires the event bus, its subscribers and the overdue scanner, then
// runs everything under one errgroup. Redis and Postgres are optional: when
// unconfigured the process falls back to in-memory implementations, which
// keeps local development dependency-free.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	// Cache: Redis when configured, in-memory otherwise.
	var cacheClient cache.Cache = cache.NewMemoryCache()
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		return
	}
	if redisClient != nil {
		cacheClient = cache.NewRedisCache(redisClient.Client)
		defer redisClient.Close()
		log.Info("cache backend: redis")
	} else {
		log.Info("cache backend: memory")
	}

	// Stores: Postgres when configured, in-memory otherwise.
	var (
		auditStore audit.Store = audit.NewInMemoryStore()
		taskStore  tasks.Store = tasks.NewInMemoryStore()
	)
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("open postgres", "error", err)
			return
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Error("postgres ping failed", "error", err)
			return
		}
		auditStore = audit.NewPostgresStore(db)
		taskStore = tasks.NewPostgresStore(db)
		log.Info("store backend: postgres")
	} else {
		log.Info("store backend: memory")
	}

	mailer, err := notify.NewSMTPMailer(cfg.SMTP)
	if err != nil {
		log.Error("mailer init failed", "error", err)
		return
	}

	// Bus and subscribers. Registration happens once, before any publish.
	bus := events.NewBus(log)
	defer bus.Close()

	cache.NewCoherence(cacheClient, log).Register(bus)
	recorder := audit.NewRecorder(auditStore, log)
	recorder.Register(bus)
	notify.NewDispatcher(taskStore, mailer, log).Register(bus)

	ledger := overdue.NewLedger(cfg.LedgerMaxEntries)
	scanner := overdue.NewScanner(taskStore, ledger, bus, log,
		overdue.WithInterval(cfg.ScanInterval),
		overdue.WithPageSize(cfg.ScanPageSize),
	)

	handler := httptransport.NewHandler(scanner, auditStore, recorder, log)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting tracker consistency service", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := scanner.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("service exited with error", "error", err)
	}
}
