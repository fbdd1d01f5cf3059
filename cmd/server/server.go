package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/PepegaBoss/foodgram-project-react/internal/repositories"
	"github.com/PepegaBoss/foodgram-project-react/internal/router"
	"github.com/PepegaBoss/foodgram-project-react/pkg/config"
	"github.com/PepegaBoss/foodgram-project-react/pkg/firebase"
	"github.com/PepegaBoss/foodgram-project-react/pkg/logger"
	"github.com/PepegaBoss/foodgram-project-react/pkg/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func serve(cliCtx *cli.Context, cfg *config.Config) error {
	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	images, err := storage.New(cfg.Media, db.Mongo)
	if err != nil {
		return err
	}

	deps := router.Dependencies{
		Config:   cfg,
		Postgres: db.Postgres,
		Redis:    db.Redis,
		Images:   images,
	}
	firebaseApp, err := firebase.InitFirebase(cliCtx.Context, cfg.FirebaseCredentialsPath)
	if err != nil {
		return err
	}
	if firebaseApp != nil {
		deps.Firebase = firebaseApp.AuthClient
	}

	e, err := router.New(deps)
	if err != nil {
		return err
	}
	metrics := http.NewServeMux()
	metrics.Handle("/metrics", promhttp.Handler())
	metrics.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	servers := []*http.Server{
		{Addr: ":" + cfg.Port, Handler: e, ReadHeaderTimeout: 10 * time.Second},
		{Addr: ":" + cfg.MetricsPort, Handler: metrics, ReadHeaderTimeout: 10 * time.Second},
	}

	ctx, stop := signal.NotifyContext(cliCtx.Context, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	eg, groupCtx := errgroup.WithContext(ctx)

	for _, srv := range servers {
		srv := srv
		eg.Go(func() error {
			logger.L.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	eg.Go(func() error {
		<-groupCtx.Done()
		logger.L.Info("server stopping")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.L.Warn("graceful shutdown failed", zap.String("addr", srv.Addr), zap.Error(err))
			}
		}
		return nil
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func migrate(cfg *config.Config) error {
	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	if err := repositories.Migrate(db.Postgres); err != nil {
		return err
	}
	logger.L.Info("schema is up to date")
	return nil
}
