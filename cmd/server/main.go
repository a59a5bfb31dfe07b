package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/beeconnect/server/internal/config"
	"github.com/beeconnect/server/internal/repository/driver"
	"github.com/beeconnect/server/internal/repository/sheets"
	"github.com/beeconnect/server/internal/scheduler"
	"github.com/beeconnect/server/internal/server/handlers"
	"github.com/beeconnect/server/internal/server/router"
	"github.com/beeconnect/server/internal/service/apiaries"
	"github.com/beeconnect/server/internal/service/harvest"
	"github.com/beeconnect/server/internal/service/ledger"
	"github.com/beeconnect/server/internal/service/reminders"
	"github.com/beeconnect/server/internal/service/visits"
	"github.com/beeconnect/server/pkg/clients/push"
	"github.com/beeconnect/server/pkg/clients/weather"
	"github.com/beeconnect/server/pkg/clients/whatsapp"
	"github.com/beeconnect/server/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := cfg.Calendar.Location()
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}
	weekStart, err := cfg.Calendar.FirstWeekday()
	if err != nil {
		baseLogger.Fatal("invalid week start", zap.Error(err))
	}

	store, err := driver.Open(context.Background(), cfg)
	if err != nil {
		baseLogger.Fatal("failed to open store", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close store", zap.Error(err))
		}
	}()
	baseLogger.Info("store ready", zap.String("driver", cfg.Storage.Driver))

	sched := scheduler.NewScheduler(loc, baseLogger.Named("scheduler"))

	var channels reminders.Fanout
	if cfg.Push.Enabled() {
		pushClient, err := push.NewClient(context.Background(), cfg.Push)
		if err != nil {
			baseLogger.Fatal("failed to init push client", zap.Error(err))
		}
		channels = append(channels, pushClient)
	}
	if cfg.WhatsApp.Enabled() {
		channels = append(channels, whatsapp.NewClient(cfg.WhatsApp))
	}
	var sender reminders.Sender
	switch len(channels) {
	case 0:
		baseLogger.Warn("no notification channel configured, visit reminders disabled")
	case 1:
		sender = channels[0]
	default:
		sender = channels
	}
	reminderSvc := reminders.NewService(store, sender, sched, baseLogger.Named("svc.reminders"))

	var mirror harvest.Mirror
	if cfg.Sheets.Enabled() {
		m, err := sheets.NewHarvestMirror(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets mirror", zap.Error(err))
		}
		mirror = m
	}

	var weatherClient handlers.WeatherClient
	if cfg.Weather.Enabled() {
		weatherClient = weather.NewClient(cfg.Weather)
	} else {
		baseLogger.Warn("weather api key missing, weather endpoint disabled")
	}

	apiarySvc := apiaries.NewService(store, loc, baseLogger.Named("svc.apiaries"))
	ledgerSvc := ledger.NewService(store, store, reminderSvc, ledger.Options{
		Location: loc,
		PageSize: cfg.Calendar.PageSize,
	}, baseLogger.Named("svc.ledger"))
	visitSvc := visits.NewAggregator(store, visits.Options{
		Location:  loc,
		WeekStart: weekStart,
	}, baseLogger.Named("svc.visits"))
	harvestSvc := harvest.NewService(store, mirror, loc, baseLogger.Named("svc.harvest"))

	engine := router.New(router.Handlers{
		Apiaries:    handlers.NewApiaryHandler(apiarySvc, baseLogger.Named("handlers.apiaries")),
		Inspections: handlers.NewInspectionHandler(ledgerSvc, apiarySvc, baseLogger.Named("handlers.inspections")),
		Calendar:    handlers.NewCalendarHandler(visitSvc, loc, baseLogger.Named("handlers.calendar")),
		Harvests:    handlers.NewHarvestHandler(harvestSvc, loc, baseLogger.Named("handlers.harvests")),
		Weather:     handlers.NewWeatherHandler(weatherClient, apiarySvc, baseLogger.Named("handlers.weather")),
	}, baseLogger.Named("router"))

	if sender != nil {
		restoreCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		n, err := reminderSvc.Restore(restoreCtx)
		cancel()
		if err != nil {
			baseLogger.Error("failed to restore reminders", zap.Error(err))
		} else {
			baseLogger.Info("pending reminders restored", zap.Int("count", n))
		}

		if _, err := sched.Every(cfg.Reminders.SweepSchedule, "reminder sweep", reminderSvc.Sweep); err != nil {
			baseLogger.Fatal("failed to schedule reminder sweep", zap.Error(err))
		}
	}

	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
