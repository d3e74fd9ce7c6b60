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

	"taskdeck/internal/api"
	"taskdeck/internal/config"
	"taskdeck/internal/pkg/logger"
	"taskdeck/internal/pkg/notify"
	"taskdeck/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.NewDefault(cfg.LogLevel)

	mailer := notify.NewEmailNotifier(cfg.SMTP, log)
	server, err := api.NewServer(cfg, log, mailer)
	if err != nil {
		log.Error("server init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer server.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler := service.NewSchedulerService(time.Local)
	retention := server.Retention()
	if retention.Enabled() {
		if _, err := scheduler.ScheduleDaily(cfg.SweepAt, func() {
			retention.Sweep(context.Background())
		}); err != nil {
			log.Error("retention schedule failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		scheduler.Start()
		defer scheduler.Stop()
		log.Info("retention sweep scheduled",
			slog.String("at", cfg.SweepAt),
			slog.Duration("window", cfg.Retention))
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http server listening", slog.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", slog.String("error", err.Error()))
	}
}
