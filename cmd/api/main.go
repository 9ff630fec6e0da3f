package main

import (
	"log"
	"time"

	"dropsync/internal/api"
	"dropsync/internal/config"
	"dropsync/internal/database"
	"dropsync/internal/logger"
	"dropsync/internal/services/shopify"
	"dropsync/internal/services/supplier"
	"dropsync/internal/syncer"
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
	controller := syncer.NewController(engine, resolver, db, nil, logger)

	// Initialize API server
	server := api.New(cfg, logger, db, controller)

	// Start server
	logger.Info("Starting API server on port " + cfg.APIPort)
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
