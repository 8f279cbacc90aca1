package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/quotadesk/quotadesk/internal/app"
	"github.com/quotadesk/quotadesk/internal/customers"
	"github.com/quotadesk/quotadesk/internal/export"
	"github.com/quotadesk/quotadesk/internal/platform/cache"
	"github.com/quotadesk/quotadesk/internal/platform/db"
	"github.com/quotadesk/quotadesk/internal/products"
	"github.com/quotadesk/quotadesk/internal/quotations"
	"github.com/quotadesk/quotadesk/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = redisClient.Close() }()

	customerService := customers.NewService(customers.NewRepository(pool))
	productCache := cache.NewJSONCache(redisClient, "product", 10*time.Minute)
	productService := products.NewService(products.NewRepository(pool), productCache)

	renderer, err := export.NewHTMLRenderer()
	if err != nil {
		logger.Error("parse export templates", slog.Any("error", err))
		os.Exit(1)
	}
	capturer := export.NewChromeCapturer()
	capturer.ExecPath = cfg.ChromePath

	pdfExporter := export.NewPDFExporter(renderer, capturer, logger)
	if cfg.TermsPDFPath != "" {
		terms, err := os.ReadFile(cfg.TermsPDFPath)
		if err != nil {
			logger.Warn("terms pdf unavailable", slog.Any("error", err))
		} else {
			pdfExporter.TermsPDF = terms
		}
	}
	excelExporter := export.NewExcelExporter(logger)

	branding := quotations.Branding{
		BrandLine: cfg.BrandLine,
		LogoURL:   cfg.LogoURL,
		Bank: export.BankDetails{
			AccountHolder: cfg.BankAccountHolder,
			BankName:      cfg.BankName,
			AccountNumber: cfg.BankAccountNumber,
			BranchIFSC:    cfg.BankBranchIFSC,
			PAN:           cfg.BankPAN,
		},
		Declaration: cfg.Declaration,
	}
	quotationService := quotations.NewService(
		quotations.NewRepository(pool), customerService, productService, branding,
	)

	store, err := jobs.NewArtifactStore(cfg.ArtifactDir)
	if err != nil {
		logger.Error("init artifact store", slog.Any("error", err))
		os.Exit(1)
	}
	processor := jobs.NewExportProcessor(quotationService, pdfExporter, excelExporter, store, logger)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Processor: processor,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("export worker started")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
