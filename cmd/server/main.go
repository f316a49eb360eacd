package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/msallal/yawmia/internal/config"
	"github.com/msallal/yawmia/internal/repository/mongodb"
	"github.com/msallal/yawmia/internal/scheduler"
	"github.com/msallal/yawmia/internal/server/handlers"
	"github.com/msallal/yawmia/internal/server/router"
	accountssvc "github.com/msallal/yawmia/internal/service/accounts"
	authsvc "github.com/msallal/yawmia/internal/service/auth"
	"github.com/msallal/yawmia/internal/service/authz"
	ledgersvc "github.com/msallal/yawmia/internal/service/ledger"
	reportingsvc "github.com/msallal/yawmia/internal/service/reporting"
	"github.com/msallal/yawmia/pkg/clients/notify"
	"github.com/msallal/yawmia/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := mongodb.New(context.Background(), cfg.Mongo.URI, cfg.Mongo.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var notifier notify.Client
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookClient(cfg.Notify.WebhookURL)
		baseLogger.Info("admin event webhook enabled")
	} else {
		baseLogger.Warn("admin webhook url missing, admin event notifications disabled")
	}

	guard := authz.NewGuard(store)
	authSvc := authsvc.NewService(store, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, baseLogger.Named("svc.auth"))
	ledgerSvc := ledgersvc.NewService(store, guard, baseLogger.Named("svc.ledger"))
	reportingSvc := reportingsvc.NewService(store, guard, baseLogger.Named("svc.reporting"))
	accountsSvc := accountssvc.NewService(store, guard, notifier, baseLogger.Named("svc.accounts"))

	authHandler := handlers.NewAuthHandler(authSvc, baseLogger.Named("handlers.auth"))
	profileHandler := handlers.NewProfileHandler(accountsSvc, baseLogger.Named("handlers.profile"))
	ledgerHandler := handlers.NewLedgerHandler(ledgerSvc, baseLogger.Named("handlers.ledger"))
	adminHandler := handlers.NewAdminHandler(accountsSvc, reportingSvc, baseLogger.Named("handlers.admin"))

	engine := router.New(authHandler, profileHandler, ledgerHandler, adminHandler, authSvc, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reconcile, ledgerSvc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
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
