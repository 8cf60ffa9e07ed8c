package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hamedAligholizade/ajiro/internal/config"
	"github.com/hamedAligholizade/ajiro/internal/db"
	"github.com/hamedAligholizade/ajiro/internal/handler"
	"github.com/hamedAligholizade/ajiro/internal/notify"
	"github.com/hamedAligholizade/ajiro/internal/repository"
	"github.com/hamedAligholizade/ajiro/internal/server"
	"github.com/hamedAligholizade/ajiro/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	// repositories
	gateway := repository.NewGateway(pg)
	productRepo := repository.NewProductRepository(pg)
	customerRepo := repository.NewCustomerRepository(pg)
	txRepo := repository.NewTransactionRepository(pg)
	statsRepo := repository.NewStatsRepository(pg)

	// services
	sms := notify.NewSMSClient(cfg.SMSGatewayURL, cfg.SMSAPIKey)
	saleSvc := service.SaleService{Gateway: gateway, Notifier: sms, Currency: cfg.DefaultCurrency, Logger: logger}
	loyaltySvc := service.LoyaltyService{Gateway: gateway, Logger: logger}

	// handlers
	healthHandler := handler.HealthHandler{DB: pg}
	productHandler := handler.ProductHandler{Repo: productRepo, Currency: cfg.DefaultCurrency}
	customerHandler := handler.CustomerHandler{Repo: customerRepo, Loyalty: &loyaltySvc}
	transactionHandler := handler.TransactionHandler{Repo: txRepo, Sales: &saleSvc}
	loyaltyHandler := handler.LoyaltyHandler{Loyalty: &loyaltySvc}
	statsHandler := handler.StatsHandler{Repo: statsRepo}

	router := server.NewRouter(cfg, logger,
		healthHandler,
		productHandler,
		customerHandler,
		transactionHandler,
		loyaltyHandler,
		statsHandler,
	)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}
