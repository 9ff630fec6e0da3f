package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
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
)

const usage = `Usage: sync [flags] <operation> [product-id]

Operations:
  publish-sweep        publish every active product to the storefront channel
  audit                report publication status without mutating anything
  repair               fix the doubled-phrase defect in product descriptions
  availability <id>    probe candidate countries for one supplier product

Flags:
`

func main() {
	dryRun := flag.Bool("dry-run", false, "compute and report, never mutate")
	limit := flag.Int("limit", 0, "cap on items processed (0 = no cap)")
	probeDelay := flag.Int("probe-delay", 0, "override probe pacing in ms")
	mutateDelay := flag.Int("mutate-delay", 0, "override mutation pacing in ms")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	operation := flag.Arg(0)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if *probeDelay > 0 {
		cfg.ProbeDelayMs = *probeDelay
	}
	if *mutateDelay > 0 {
		cfg.MutateDelayMs = *mutateDelay
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Run history persistence is best-effort for CLI runs
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Warn("Run history disabled: %v", err)
		db = nil
	}

	// The supplier side is only wired for availability diagnostics
	var resolver *supplier.Resolver
	if operation == syncer.OpAvailability {
		store := supplier.NewTokenStore(cfg.SupplierTokenPath)
		client, err := supplier.NewClient(cfg.SupplierAPIURL, cfg.SupplierAppKey, cfg.SupplierAppSecret, store, logger)
		if err != nil {
			logger.Fatal("Failed to initialize supplier client: %v", err)
		}
		probePacer := syncer.NewIntervalPacer(time.Duration(cfg.ProbeDelayMs) * time.Millisecond)
		resolver = supplier.NewResolver(client, cfg.ProbeCountries, cfg.ProbeCurrency, cfg.ProbeLanguage, probePacer, logger)
	}

	graphql := shopify.NewGraphQLClient(cfg.ShopifyShopDomain, cfg.ShopifyAccessToken, cfg.ShopifyAPIVersion, logger)
	legacy := shopify.NewClient(cfg.ShopifyShopDomain, cfg.ShopifyAccessToken, cfg.ShopifyAPIVersion, logger)
	mutatePacer := syncer.NewIntervalPacer(time.Duration(cfg.MutateDelayMs) * time.Millisecond)
	engine := syncer.NewEngine(graphql, legacy, cfg.ShopifyPublicationID, mutatePacer, logger)
	controller := syncer.NewController(engine, resolver, db, nil, logger)

	// An interrupt ends the run at the current item boundary
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if operation == syncer.OpAvailability {
		if flag.NArg() < 2 {
			flag.Usage()
			os.Exit(2)
		}
		resolution, err := controller.DiagnoseAvailability(ctx, flag.Arg(1))
		if err != nil {
			logger.Error("Availability diagnosis failed: %v", err)
			os.Exit(1)
		}
		out, _ := json.MarshalIndent(resolution, "", "  ")
		fmt.Println(string(out))
		return
	}

	_, err = controller.RunOperation(ctx, operation, syncer.Options{
		DryRun: *dryRun,
		Limit:  *limit,
	})
	if err != nil {
		// Summary already logged; a fatal/aborted run is the only
		// non-zero exit
		os.Exit(1)
	}
}
