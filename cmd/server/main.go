package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"barbershop/internal/config"
	"barbershop/internal/db"
	"barbershop/internal/handlers"
	"barbershop/internal/logger"
	"barbershop/internal/schedule"
	"barbershop/internal/services"
	"barbershop/internal/store"
	"barbershop/internal/websocket"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		panic(err)
	}
	defer logger.Log.Sync()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatalw("database connection failed", "error", err)
	}
	defer database.Close()

	txRunner := db.NewTxRunner(database)
	users := store.NewUserStore(database)
	wallets := store.NewWalletStore(database)
	ledger := store.NewLedgerStore(database)
	bookings := store.NewBookingStore(database)
	schedules := store.NewScheduleStore(database)
	catalog := store.NewServiceStore(database)

	hub := websocket.NewHub()
	resolver := schedule.NewResolver(schedules, bookings, cfg.MinLeadTime)
	policy := services.Policy{
		CommissionRate:      cfg.CommissionRate,
		LateFeeRate:         cfg.LateFeeRate,
		LateCancelThreshold: cfg.LateCancelThreshold,
		MinLeadTime:         cfg.MinLeadTime,
	}
	bookingSvc := services.NewBookingService(txRunner, bookings, wallets, ledger, catalog, hub, policy)
	walletSvc := services.NewWalletService(txRunner, wallets, ledger, hub, cfg.MinTopUpMinor)

	handler := handlers.New(cfg, txRunner, users, wallets, catalog, bookings, resolver, bookingSvc, walletSvc, hub)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Log.Infow("server listening", "port", cfg.Port, "env", cfg.AppEnv)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalw("server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Log.Errorw("shutdown failed", "error", err)
	}
}
