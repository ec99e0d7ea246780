package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"duit/internal/alert"
	"duit/internal/amqp"
	"duit/internal/anomaly"
	"duit/internal/budget"
	"duit/internal/cache"
	"duit/internal/classify"
	"duit/internal/config"
	"duit/internal/evaluator"
	"duit/internal/ledger"
	gsheet "duit/internal/ledger/google"
	"duit/internal/ledger/memory"
	"duit/internal/storage"
	"duit/internal/worker"
)

const (
	ledgerCacheSize = 512
	ledgerCacheTTL  = 5 * time.Minute
	gatePruneEvery  = time.Hour
	gateMaxAge      = 7 * 24 * time.Hour
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting duit-worker")

	// Load configuration
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	loc := cfg.Location()
	norm := ledger.NewNormalizer(loc)

	// SQLite holds budgets for every backend and is the default ledger
	sqliteRepo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, norm)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer sqliteRepo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Select the ledger backend
	var (
		reader   ledger.Reader
		appender ledger.Appender
		users    worker.UserLister
	)
	switch cfg.LedgerBackend {
	case "sheets":
		sheetsClient, err := gsheet.NewFromEnv(ctx, norm)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets ledger", "error", err)
			os.Exit(1)
		}
		reader, appender, users = sheetsClient, sheetsClient, sheetsClient
		logger.Info("Using Google Sheets ledger", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	case "memory":
		memStore := memory.New(norm)
		reader, appender, users = memStore, memStore, memStore
		logger.Info("Using in-memory ledger (transactions are not persisted)")
	default:
		reader, appender, users = sqliteRepo, sqliteRepo, sqliteRepo
		logger.Info("Using SQLite ledger", "path", cfg.SQLiteDBPath)
	}

	cached := cache.NewLedgerReader(reader, ledgerCacheSize, ledgerCacheTTL)
	budgets := budget.NewStore(sqliteRepo)

	var classifier classify.Classifier = classify.NewKeyword()
	if cfg.ClassifierBackend == "delegated" {
		// The remote classifier arrives over its own transport; until one is
		// wired the delegating classifier would only ever hit its fallback.
		logger.Warn("Delegated classifier has no remote endpoint, using keyword rules")
	}

	eval := evaluator.New(cached, budgets, evaluator.Options{
		Thresholds: thresholdsFromConfig(cfg),
		Cooldowns:  cooldownsFromConfig(cfg),
		Location:   loc,
	})

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPIngressQueue, cfg.AMQPAlertQueue, cfg.AMQPReportQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	evalWorker := worker.NewEvalWorker(appender, cached, classifier, eval, amqpClient, users, loc)

	g, ctx := errgroup.WithContext(ctx)

	// Consume recorded transactions, reconnecting on broker failures
	g.Go(func() error {
		err := amqpClient.ConsumeTransactionsWithReconnect(ctx, func(msg *amqp.TransactionRecordedMessage) error {
			return evalWorker.HandleTransactionMessage(ctx, msg)
		})
		if err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", "error", err)
			return err
		}
		return nil
	})

	// Periodic digest pass: daily summaries always, weekly and monthly
	// digests when their day comes around; day-keyed gates keep repeats out
	g.Go(func() error {
		ticker := time.NewTicker(cfg.DigestInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := evalWorker.RunDigests(ctx, time.Now().In(loc)); err != nil {
					logger.Error("Digest pass failed", "error", err)
				}
			}
		}
	})

	// Drop stale cooldown anchors so the gate does not grow unbounded
	g.Go(func() error {
		ticker := time.NewTicker(gatePruneEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				removed := eval.Gate().Prune(time.Now(), gateMaxAge)
				if removed > 0 {
					logger.Info("Pruned alert cooldown entries", "removed", removed)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("duit-worker stopped")
}

// thresholdsFromConfig applies the configured overrides on top of the stock
// detector tuning. Zero values keep the defaults.
func thresholdsFromConfig(cfg *config.Config) anomaly.Thresholds {
	t := anomaly.DefaultThresholds()
	if cfg.OutlierZScore > 0 {
		t.OutlierZ = cfg.OutlierZScore
	}
	if cfg.BurstCount > 0 {
		t.BurstCount = cfg.BurstCount
	}
	if cfg.CategoryShiftRecent > 0 {
		t.ShiftRecentShare = cfg.CategoryShiftRecent
	}
	if cfg.CategoryShiftHistory > 0 {
		t.ShiftHistoryShare = cfg.CategoryShiftHistory
	}
	return t
}

func cooldownsFromConfig(cfg *config.Config) alert.Cooldowns {
	c := alert.DefaultCooldowns()
	if cfg.BudgetCooldown > 0 {
		c.Budget = cfg.BudgetCooldown
	}
	if cfg.AnomalyCooldown > 0 {
		c.Anomaly = cfg.AnomalyCooldown
	}
	return c
}
