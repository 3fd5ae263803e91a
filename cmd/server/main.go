package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/apollostores/poplanner/internal/config"
	"github.com/apollostores/poplanner/internal/planner"
	"github.com/apollostores/poplanner/internal/repository/mongodb"
	"github.com/apollostores/poplanner/internal/repository/sheets"
	"github.com/apollostores/poplanner/internal/repository/spreadsheet"
	"github.com/apollostores/poplanner/internal/scheduler"
	"github.com/apollostores/poplanner/internal/server/handlers"
	"github.com/apollostores/poplanner/internal/server/router"
	notifysvc "github.com/apollostores/poplanner/internal/service/notify"
	planningsvc "github.com/apollostores/poplanner/internal/service/planning"
	"github.com/apollostores/poplanner/pkg/clients/fetch"
	"github.com/apollostores/poplanner/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := spreadsheet.NewStore(cfg.Storage.DataDir, baseLogger.Named("repo.spreadsheet"))
	if err != nil {
		baseLogger.Fatal("failed to init spreadsheet store", zap.Error(err))
	}

	var sheetRepo sheets.Repository
	if cfg.SheetSourceEnabled() {
		sheetRepo, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		baseLogger.Info("google sheet history source enabled")
	}

	var historyRepo mongodb.Repository
	if cfg.MongoDB.URI != "" {
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		historyRepo = mongoRepo
		baseLogger.Info("dispatch history store enabled")
	}

	engine := planner.NewEngine(time.Now)
	planningSvc := planningsvc.NewService(store, sheetRepo, engine, baseLogger.Named("svc.planning"))

	var notifySvc *notifysvc.Service
	if cfg.DispatchEnabled() {
		mailer := notifysvc.NewSMTPMailer(cfg.SMTP)
		notifySvc = notifysvc.NewService(planningSvc, store, mailer, historyRepo, time.Now, baseLogger.Named("svc.notify"))
	} else {
		baseLogger.Warn("smtp host missing, daily dispatch disabled")
	}

	planHandler := handlers.NewPlanHandler(planningSvc, store, notifySvc, fetch.NewClient(), baseLogger.Named("handlers.plan"))
	ginEngine := router.New(planHandler, baseLogger.Named("router"))

	if notifySvc != nil {
		runner := scheduler.RunnerFunc(func(ctx context.Context) error {
			_, err := notifySvc.Dispatch(ctx)
			return err
		})
		sched, err := scheduler.New(cfg.Dispatch, runner, baseLogger.Named("scheduler"))
		if err != nil {
			baseLogger.Fatal("failed to init scheduler", zap.Error(err))
		}
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      ginEngine,
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
