package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/aalabort/Grocefy/internal/config"
	"github.com/aalabort/Grocefy/internal/csvio"
	"github.com/aalabort/Grocefy/internal/ledger"
	"github.com/aalabort/Grocefy/internal/logger"
	"github.com/aalabort/Grocefy/internal/memory"
	"github.com/aalabort/Grocefy/internal/optimizer"
	"github.com/aalabort/Grocefy/internal/scrape"
	"github.com/aalabort/Grocefy/internal/telegram"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	// Secrets (bot token, chat ID) come from the environment; .env is
	// optional and absent in production.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	runID := uuid.New().String()
	logger.Info("Starting grocery optimization run %s", runID)

	products, err := csvio.ReadProducts(cfg.Paths.ProductsCSV)
	if err != nil {
		logger.Fatal("Failed to read products: %v", err)
	}
	if len(products) == 0 {
		logger.Fatal("No products found in %s", cfg.Paths.ProductsCSV)
	}
	logger.Info("Loaded %d products from %s", len(products), cfg.Paths.ProductsCSV)

	store := ledger.NewStore(cfg.Paths.HistoryDir, 0, 0)
	memoryService := memory.NewService(store)
	engine := optimizer.New(optimizer.Config{
		UseMembershipForCurrent: cfg.Optimizer.UseMembershipPriceForCurrent,
	}, memoryService)

	scrapeClient := scrape.NewClient(
		cfg.Scrape.BaseURL,
		cfg.Scrape.Timeout,
		cfg.Scrape.MaxRetries,
		cfg.Scrape.RetryDelayBase,
	)
	coordinator := scrape.NewCoordinator(
		scrapeClient,
		cfg.Supermarkets,
		cfg.Scrape.BatchSize,
		cfg.Scrape.BatchDelay,
	)

	var telegramClient *telegram.Client
	if cfg.Telegram.Enabled {
		telegramClient, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		logger.Info("Telegram client initialized successfully")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cancelling run...")
		cancel()
	}()

	// 1. Gather observations (fan-out per product across supermarkets).
	observations := coordinator.Run(ctx, products)
	logger.Info("Collected %d price observations", len(observations))

	// 2. Optimize against the memory of past runs.
	records := optimizer.BuildRecords(products, observations)
	results := engine.Optimize(records)
	logger.Info("Optimization produced %d results for %d products", len(results), len(products))

	summary := optimizer.Summarize(results)
	for _, line := range summary.Lines {
		logger.Info("%s", line)
	}
	logger.Info("Total savings vs current supermarkets: %s", summary.TotalSavings.String())

	// 3. Persist results.
	if err := os.MkdirAll(filepath.Dir(cfg.Paths.ResultsCSV), 0o755); err != nil {
		logger.Error("Failed to create results directory: %v", err)
	} else if err := csvio.WriteResults(cfg.Paths.ResultsCSV, results); err != nil {
		logger.Error("Failed to write results: %v", err)
	} else {
		logger.Info("Results written to %s", cfg.Paths.ResultsCSV)
	}

	// 4. Record today's prices in the historical ledger. Done after
	// optimization so memory warnings compare against previous runs only.
	masterProducts := make([]string, 0, len(products))
	for _, p := range products {
		masterProducts = append(masterProducts, p.Name)
	}
	today := time.Now().Format("2006-01-02")
	for _, updateErr := range store.Update(today, masterProducts, observations) {
		logger.Error("%v", updateErr)
	}
	logger.Info("Historical ledger updated for %s", today)

	// 5. Notify.
	if telegramClient != nil {
		if err := telegramClient.SendSummary(summary); err != nil {
			logger.Warn("Failed to send Telegram summary: %v", err)
		}
	}

	logger.Info("Run %s complete", runID)
}
