package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/finkraft/expense-exporter/internal/application/pipeline"
	"github.com/finkraft/expense-exporter/internal/infrastructure/cache"
	"github.com/finkraft/expense-exporter/internal/infrastructure/config"
	"github.com/finkraft/expense-exporter/internal/infrastructure/download"
	"github.com/finkraft/expense-exporter/internal/infrastructure/logger"
	"github.com/finkraft/expense-exporter/internal/infrastructure/persistence"
	"github.com/finkraft/expense-exporter/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting invoice exporter",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("client", cfg.Pipeline.Client),
		zap.Bool("dry_run", cfg.Pipeline.DryRun),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := run(ctx, cfg, log)
	if err != nil {
		log.Error("Batch failed", zap.Error(err))
		os.Exit(1)
	}

	fmt.Printf("Processed %d rows: %d succeeded, %d duplicates, %d failed (%.0f%% handled) in %s\n",
		report.TotalRows, report.Succeeded, report.Duplicates, report.Failed,
		report.SuccessRate()*100, report.Elapsed.Round(1e7))
	fmt.Println("Output written to", report.OutputPath)
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) (*pipeline.Report, error) {
	gormLog := logger.NewGormLogger(log, gormlogger.Warn)

	invoiceDB, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		return nil, fmt.Errorf("relational store: %w", err)
	}
	defer invoiceDB.Close()

	documentDB, err := persistence.NewDatabaseWithLogger(&cfg.DocumentDB, gormLog)
	if err != nil {
		return nil, fmt.Errorf("document store: %w", err)
	}
	defer documentDB.Close()

	objectStore, err := storage.New(&cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}

	var fingerprintCache pipeline.FingerprintCache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisFingerprintCache(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("fingerprint cache: %w", err)
		}
		defer redisCache.Close()
		fingerprintCache = redisCache
	} else {
		fingerprintCache = cache.NewInMemoryFingerprintCache()
	}

	httpFetcher := download.NewHTTPFetcher(cfg.Download.Timeout, cfg.Download.MaxAttempts, log)
	var fetcher pipeline.Fetcher = httpFetcher
	if len(cfg.Download.BrowserPatterns) > 0 {
		browserFetcher := download.NewBrowserFetcher(&download.BrowserFetcherConfig{
			Timeout:   cfg.Download.Timeout,
			Selector:  cfg.Download.BrowserSelector,
			NoSandbox: cfg.Download.NoSandbox,
			Logger:    log,
		})
		defer browserFetcher.Close()
		fetcher = download.NewDispatcher(httpFetcher, browserFetcher, cfg.Download.BrowserPatterns)
	}

	// Each run gets its own scratch namespace so concurrent runs never
	// collide on downloaded file names.
	scratchDir := filepath.Join(cfg.Download.Dir, uuid.New().String())
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return nil, fmt.Errorf("scratch directory: %w", err)
	}

	documents := persistence.NewGormInvoiceDocumentRepository(documentDB.DB)
	records := persistence.NewGormInvoiceRecordRepository(invoiceDB.DB)

	rowContext := pipeline.RowContext{
		Source:     cfg.Pipeline.Source,
		ClientName: cfg.Pipeline.Client,
	}

	orchestrator := pipeline.NewOrchestrator(pipeline.OrchestratorParams{
		Fetcher:    fetcher,
		Gate:       pipeline.NewDedupGate(fingerprintCache, documents, log),
		Writer:     pipeline.NewRecordWriter(documents, records, objectStore, log),
		Storage:    objectStore,
		RowContext: rowContext,
		BaseURL:    cfg.Pipeline.BaseURL,
		ScratchDir: scratchDir,
		DryRun:     cfg.Pipeline.DryRun,
		Logger:     log,
	})

	runner := pipeline.NewRunner(pipeline.RunnerParams{
		Orchestrator:     orchestrator,
		Storage:          objectStore,
		AttachmentColumn: cfg.Pipeline.AttachmentColumn,
		InputPath:        cfg.Pipeline.InputPath,
		OutputPath:       cfg.Pipeline.OutputPath,
		RowContext:       rowContext,
		DryRun:           cfg.Pipeline.DryRun,
		Logger:           log,
	})

	return runner.Run(ctx)
}
