package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"harcama/internal/config"
	"harcama/internal/db"
	"harcama/internal/logger"
	"harcama/internal/router"
	"harcama/internal/services"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.LoadConfig()

	log := logger.InitLogger()
	log.Info().Msg("Uygulama başlıyor")

	database := db.InitDB(cfg)
	defer database.Close()

	db.RunMigrations(cfg)

	r := router.SetupRouter(database, log)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ledgerService := services.NewLedgerService(database, log)
	reconciler := services.NewReconciler(ledgerService, cfg.ReconcileInterval, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Msgf("Sunucu %s portunda çalışıyor", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return reconciler.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("Kapatma sinyali alındı...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Sunucu hatası")
	}

	log.Info().Msg("Sunucu kapatıldı")
}
