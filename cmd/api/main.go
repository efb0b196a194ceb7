package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eventsphere/server/internal/cache"
	"github.com/eventsphere/server/internal/config"
	"github.com/eventsphere/server/internal/db"
	httpx "github.com/eventsphere/server/internal/http"
	"github.com/eventsphere/server/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()

	if err != nil {
		// logger depends on config, so this one goes to stderr raw
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)

	// tracing is opt-in: no endpoint, no exporter
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(context.Background(), "eventsphere-api", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}

		defer func() {
			ctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()

			if err := shutdownTracer(ctx); err != nil {
				log.Error("tracer shutdown failed", "err", err)
			}
		}()
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("database connection failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	bootCtx, cancelBoot := config.WithTimeout(15 * time.Second)
	defer cancelBoot()

	if err := db.EnsureSchema(bootCtx, pool); err != nil {
		log.Error("schema bootstrap failed", "err", err)
		os.Exit(1)
	}

	seeded, err := db.EnsureDefaultAdmin(bootCtx, pool, cfg)

	if err != nil {
		log.Error("default admin seed failed", "err", err)
		os.Exit(1)
	}

	if seeded {
		log.Info("default admin created", "email", cfg.AdminEmail)
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(promReg)

	var store cache.Store

	if cfg.RedisAddr != "" {
		redisStore := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      5 * time.Second,
		})

		pingCtx, cancelPing := config.WithTimeout(2 * time.Second)

		if err := redisStore.Ping(pingCtx); err != nil {
			log.Error("redis connection failed", "err", err, "addr", cfg.RedisAddr)
			cancelPing()
			os.Exit(1)
		}

		cancelPing()
		defer redisStore.Close()

		store = redisStore
		log.Info("redis cache enabled", "addr", cfg.RedisAddr)
	} else {
		store = cache.NewMemory(5 * time.Second)
	}

	router := httpx.NewRouter(log, pool, cfg, prom, promReg, store, time.Now())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
