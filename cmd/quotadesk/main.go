package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
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
		// Product lookups fall back to Postgres and async exports are
		// unavailable without Redis; the synchronous API still works.
		logger.Warn("redis unavailable", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func() { _ = redisClient.Close() }()
	}

	validate := validator.New()

	customerRepo := customers.NewRepository(pool)
	customerService := customers.NewService(customerRepo)
	customerHandler := customers.NewHandler(logger, customerService, validate)

	productRepo := products.NewRepository(pool)
	productCache := cache.NewJSONCache(redisClient, "product", 10*time.Minute)
	productService := products.NewService(productRepo, productCache)
	productHandler := products.NewHandler(logger, productService, validate)

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

	quotationRepo := quotations.NewRepository(pool)
	quotationService := quotations.NewService(quotationRepo, customerService, productService, branding)

	var (
		queue       quotations.ExportQueue
		jobsHandler *jobs.Handler
	)
	if redisClient != nil {
		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		client := jobs.NewClient(redisOpts)
		defer func() { _ = client.Close() }()
		queue = client

		store, err := jobs.NewArtifactStore(cfg.ArtifactDir)
		if err != nil {
			logger.Error("init artifact store", slog.Any("error", err))
			os.Exit(1)
		}
		jobsHandler = jobs.NewHandler(asynq.NewInspector(redisOpts), store, logger)
	} else {
		queue = unavailableQueue{}
	}

	quotationHandler := quotations.NewHandler(
		logger, quotationService, validate, pdfExporter, excelExporter, renderer, queue,
	)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		CustomersHandler:  customerHandler,
		ProductsHandler:   productHandler,
		QuotationsHandler: quotationHandler,
		JobsHandler:       jobsHandler,
	})

	srv := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
	}
}

// unavailableQueue stands in when Redis is down so async export requests
// fail cleanly instead of panicking.
type unavailableQueue struct{}

func (unavailableQueue) Enqueue(context.Context, int64, string) (string, error) {
	return "", errors.New("background exports unavailable: redis not connected")
}
