// One-shot digest runner for cron-style scheduling. It performs a single
// digest pass and exits. The gates that keep the long-running worker from
// repeating a digest live in memory, so schedule this at most once per day.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"duit/internal/amqp"
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

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting duit-digest")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	loc := cfg.Location()
	norm := ledger.NewNormalizer(loc)

	sqliteRepo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, norm)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer sqliteRepo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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
	case "memory":
		memStore := memory.New(norm)
		reader, appender, users = memStore, memStore, memStore
	default:
		reader, appender, users = sqliteRepo, sqliteRepo, sqliteRepo
	}

	cached := cache.NewLedgerReader(reader, 128, time.Minute)
	budgets := budget.NewStore(sqliteRepo)

	eval := evaluator.New(cached, budgets, evaluator.Options{Location: loc})

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPIngressQueue, cfg.AMQPAlertQueue, cfg.AMQPReportQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	evalWorker := worker.NewEvalWorker(appender, cached, classify.NewKeyword(), eval, amqpClient, users, loc)

	if err := evalWorker.RunDigests(ctx, time.Now().In(loc)); err != nil {
		logger.Error("Digest pass failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Digest pass complete")
}
