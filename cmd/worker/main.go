package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dropsync/internal/config"
	"dropsync/internal/database"
	"dropsync/internal/logger"
	"dropsync/internal/services/shopify"
	"dropsync/internal/services/supplier"
	"dropsync/internal/syncer"
	"dropsync/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}

	// Supplier side
	store := supplier.NewTokenStore(cfg.SupplierTokenPath)
	client, err := supplier.NewClient(cfg.SupplierAPIURL, cfg.SupplierAppKey, cfg.SupplierAppSecret, store, logger)
	if err != nil {
		logger.Fatal("Failed to initialize supplier client: %v", err)
	}
	probePacer := syncer.NewIntervalPacer(time.Duration(cfg.ProbeDelayMs) * time.Millisecond)
	resolver := supplier.NewResolver(client, cfg.ProbeCountries, cfg.ProbeCurrency, cfg.ProbeLanguage, probePacer, logger)

	// Commerce side
	graphql := shopify.NewGraphQLClient(cfg.ShopifyShopDomain, cfg.ShopifyAccessToken, cfg.ShopifyAPIVersion, logger)
	legacy := shopify.NewClient(cfg.ShopifyShopDomain, cfg.ShopifyAccessToken, cfg.ShopifyAPIVersion, logger)
	mutatePacer := syncer.NewIntervalPacer(time.Duration(cfg.MutateDelayMs) * time.Millisecond)
	engine := syncer.NewEngine(graphql, legacy, cfg.ShopifyPublicationID, mutatePacer, logger)

	// Run events for downstream consumers
	events := syncer.NewEventWriter(cfg.KafkaBrokers, logger)
	defer events.Close()

	controller := syncer.NewController(engine, resolver, db, events, logger)

	// Initialize worker
	w := worker.New(cfg, logger, controller)

	// Start worker
	logger.Info("Starting worker...")
	go w.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	w.Stop()
}
