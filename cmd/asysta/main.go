package main

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asysta-erp/asysta-erp/internal/app"
	"github.com/asysta-erp/asysta-erp/internal/catalog"
	"github.com/asysta-erp/asysta-erp/internal/classify"
	"github.com/asysta-erp/asysta-erp/internal/reorder"
	"github.com/asysta-erp/asysta-erp/internal/requests"
	"github.com/asysta-erp/asysta-erp/internal/simulate"
	"github.com/asysta-erp/asysta-erp/internal/supplier"
	"github.com/asysta-erp/asysta-erp/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	store := catalog.NewStore(cfg.DataDir, cfg.OrdersDir, logger)
	if err := store.Load(); err != nil {
		logger.Error("load data tables", slog.Any("error", err))
		os.Exit(1)
	}

	seed := cfg.SimSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	simulator := simulate.NewSimulator(cfg.DataDir, store, rand.New(rand.NewSource(seed)), logger)
	store.SetClock(simulator.Today)

	var gotenberg *report.Client
	if cfg.GotenbergURL != "" {
		gotenberg = report.NewClient(cfg.GotenbergURL)
		if err := gotenberg.Ping(ctx); err != nil {
			logger.Warn("gotenberg ping", slog.Any("error", err))
		}
	}
	renderer := report.NewRenderer(cfg.OrdersDir, gotenberg, logger)
	renderer.SetClock(simulator.Today)

	classifier := classify.New(store.Products())
	resolver := supplier.NewResolver(store, logger)
	engine := reorder.NewEngine(store, resolver, simulator, renderer, logger)
	requestService := requests.NewService(store, classifier, resolver, renderer, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		CatalogHandler:  catalog.NewHandler(logger, store),
		RequestsHandler: requests.NewHandler(logger, requestService),
		SupplierHandler: supplier.NewHandler(logger, resolver),
		ReorderHandler:  reorder.NewHandler(logger, engine),
		SimulateHandler: simulate.NewHandler(logger, simulator),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
