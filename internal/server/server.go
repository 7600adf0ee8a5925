// Package server boots the Mandi engine: config, logging, the key-value
// store, archive disks, queue workers, the change-watch bridge and the
// HTTP surface.
package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/mandi/app/routes"
	"github.com/shashiranjanraj/mandi/app/services"
	"github.com/shashiranjanraj/mandi/config"
	"github.com/shashiranjanraj/mandi/pkg/event"
	"github.com/shashiranjanraj/mandi/pkg/logger"
	"github.com/shashiranjanraj/mandi/pkg/metrics"
	"github.com/shashiranjanraj/mandi/pkg/middleware"
	"github.com/shashiranjanraj/mandi/pkg/notification"
	"github.com/shashiranjanraj/mandi/pkg/queue"
	"github.com/shashiranjanraj/mandi/pkg/reqid"
	"github.com/shashiranjanraj/mandi/pkg/router"
	"github.com/shashiranjanraj/mandi/pkg/schedule"
	"github.com/shashiranjanraj/mandi/pkg/storage"
	"github.com/shashiranjanraj/mandi/pkg/store"
)

// Start boots every subsystem and serves HTTP until SIGINT or SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	if uri := config.MongoURI(); uri != "" {
		if _, err := logger.AttachMongoSink(uri, config.MongoLogDB(), config.MongoLogCollection()); err != nil {
			logger.Warn("mongo log sink unavailable", "error", err)
		}
	}

	if err := store.Connect(); err != nil {
		return err
	}
	storage.Connect()
	notification.SetSlackWebhook(config.Get("SLACK_WEBHOOK", ""))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bridgeStoreChanges(ctx, store.Default())

	queue.Register("*services.ExportOrdersJob", func() queue.Job { return &services.ExportOrdersJob{} })
	queue.UseStore(store.Default())
	queue.StartWorkers(ctx, 2)

	// Nightly CSV snapshot onto the configured archive disk.
	schedule.Cron("0 3 * * *").Name("orders:archive").WithoutOverlapping().Run(func() {
		if err := queue.Dispatch(&services.ExportOrdersJob{}); err != nil {
			logger.Error("nightly export dispatch failed", "error", err)
		}
	})
	schedule.Start(ctx)

	r := router.New()
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))

	routes.RegisterAPI(r, store.Default())

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mandi listening", "addr", srv.Addr, "env", config.AppEnv(), "store", config.StoreDriver())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	event.Flush()
	return nil
}

// bridgeStoreChanges relays cross-process store changes onto the in-process
// bus so open SSE and WebSocket feeds learn about writes made by other
// engine instances sharing the same store.
func bridgeStoreChanges(ctx context.Context, st store.Store) {
	keys, err := st.Watch(ctx)
	if err != nil {
		logger.Warn("store watch unavailable", "error", err)
		return
	}
	go func() {
		for key := range keys {
			event.Fire(services.EventStoreChanged, key)
		}
	}()
}
