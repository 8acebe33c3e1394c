package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Skotchmaster/fashion_store/internal/config"
	"github.com/Skotchmaster/fashion_store/internal/httpserver"
	"github.com/Skotchmaster/fashion_store/internal/repo"
	"github.com/Skotchmaster/fashion_store/internal/search"
	"github.com/Skotchmaster/fashion_store/internal/service"
	pkgdb "github.com/Skotchmaster/fashion_store/pkg/db"
	"github.com/Skotchmaster/fashion_store/pkg/events"
	"github.com/Skotchmaster/fashion_store/pkg/logging"
	authmw "github.com/Skotchmaster/fashion_store/pkg/middleware/auth"
	"github.com/Skotchmaster/fashion_store/pkg/middleware/metrics"
)

func main() {
	cfg := config.MustLoad()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db open: %v", err)
	}
	store := repo.New(db)
	if err := store.Migrate(ctx); err != nil {
		cancel()
		log.Fatalf("db migrate: %v", err)
	}
	cancel()

	var pub events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		prod, err := events.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		pub = prod
	} else {
		logger.Info("kafka disabled, events are dropped")
	}

	var index service.ProductIndex
	if cfg.ESURL != "" {
		esCtx, esCancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := search.NewClient(esCtx, cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		esCancel()
		if err != nil {
			logger.Warn("elasticsearch unavailable, using database search", "error", err)
		} else {
			index = search.NewIndex(client, cfg.ESIndex)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(reg)

	authSvc := &service.AuthService{
		Repo:      store,
		Events:    pub,
		JWTSecret: cfg.JWTSecret,
		AccessTTL: cfg.AccessTokenTTL,
	}
	catalogSvc := &service.CatalogService{Repo: store, Index: index, Events: pub}
	cartSvc := &service.CartService{
		Repo:    store,
		Policy:  service.StockPolicy(cfg.StockPolicy),
		Events:  pub,
		Metrics: service.NewCartMetrics(reg),
	}
	contactSvc := &service.ContactService{Repo: store, Events: pub}

	e := httpserver.New(logger, httpMetrics, cfg.CORSOrigins)
	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalogSvc},
		CartHandler:    &httpserver.CartHTTP{Svc: cartSvc},
		ContactHandler: &httpserver.ContactHTTP{Svc: contactSvc},
		BearerAuth:     authmw.NewBearerAuth(cfg.JWTSecret, authSvc),
		Metrics:        httpMetrics,
		Ready:          store.Ping,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr, "db_driver", cfg.DBDriver, "stock_policy", cfg.StockPolicy)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := pub.Close(); err != nil {
		logger.Error("kafka close", "error", err)
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db close", "error", err)
	}

	logger.Info("shutdown complete")
}
