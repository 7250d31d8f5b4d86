package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	discoveryhandler "dsarhub/internal/discovery/handler"
	discoveryservice "dsarhub/internal/discovery/service"
	rulestore "dsarhub/internal/discovery/store/rules"
	systemstore "dsarhub/internal/discovery/store/systems"
	identityhandler "dsarhub/internal/identity/handler"
	identityservice "dsarhub/internal/identity/service"
	graphstore "dsarhub/internal/identity/store/graph"
	"dsarhub/internal/jwttoken"
	"dsarhub/internal/platform/config"
	"dsarhub/internal/platform/httpserver"
	"dsarhub/internal/platform/logger"
	"dsarhub/internal/platform/metrics"
	"dsarhub/internal/platform/postgres"
	platformredis "dsarhub/internal/platform/redis"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	db, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		log.Error("postgres connection failed", "error", err.Error())
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	cache, err := platformredis.New(cfg.Redis())
	if err != nil {
		log.Error("redis connection failed", "error", err.Error())
		os.Exit(1)
	}
	if cache != nil {
		defer cache.Close()
	}

	var graphs identityservice.GraphStore
	var rules discoveryservice.RuleStore
	var systems discoveryservice.SystemStore
	if db != nil {
		graphs = graphstore.NewPostgres(db)
		rules = rulestore.NewPostgres(db)
		systems = systemstore.NewPostgres(db)
	} else {
		log.Warn("POSTGRES_DSN not set, using in-memory stores")
		graphs = graphstore.NewInMemoryStore()
		rules = rulestore.NewInMemoryStore()
		systems = systemstore.NewInMemoryStore()
	}

	m := metrics.New()

	identitySvc, err := identityservice.New(graphs,
		identityservice.WithLogger(log),
		identityservice.WithMetrics(m),
	)
	if err != nil {
		log.Error("identity service init failed", "error", err.Error())
		os.Exit(1)
	}

	discoveryOpts := []discoveryservice.Option{
		discoveryservice.WithLogger(log),
		discoveryservice.WithMetrics(m),
	}
	if cache != nil {
		discoveryOpts = append(discoveryOpts, discoveryservice.WithCache(cache))
	}
	discoverySvc, err := discoveryservice.New(rules, systems, discoveryOpts...)
	if err != nil {
		log.Error("discovery service init failed", "error", err.Error())
		os.Exit(1)
	}

	jwtSvc := jwttoken.NewJWTService(cfg.AdminJWTSigningKey, "dsarhub")

	router := chi.NewRouter()
	identityhandler.New(identitySvc, log, m, cfg.ConnectorKeys).Register(router)
	discoveryhandler.New(discoverySvc, log, m, jwtSvc).Register(router)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting dsarhub", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
}
