package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/moneyex/compliance-service/internal/api"
	"github.com/moneyex/compliance-service/internal/clients"
	"github.com/moneyex/compliance-service/internal/compliance"
	"github.com/moneyex/compliance-service/internal/config"
	"github.com/moneyex/compliance-service/internal/notify"
	"github.com/moneyex/compliance-service/internal/pkg/logger"
	"github.com/moneyex/compliance-service/internal/pkg/telemetry"
	"github.com/moneyex/compliance-service/internal/rates"
	"github.com/moneyex/compliance-service/internal/reporting"
	"github.com/moneyex/compliance-service/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Telemetry.ServiceName, cfg.Telemetry.Environment, cfg.Telemetry.Environment != "production")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, &cfg.Telemetry)
	if err != nil {
		log.Warn("tracing disabled", logger.ErrorField(err))
		shutdownTracing = func(context.Context) error { return nil }
	}

	// Postgres
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.User, cfg.Database.Password, cfg.Database.Host,
		cfg.Database.Port, cfg.Database.Database, cfg.Database.SSLMode)
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatal("failed to connect to postgres", logger.ErrorField(err))
	}
	defer pool.Close()

	reportStore := postgres.NewReportStore(pool)
	if err := reportStore.Migrate(ctx); err != nil {
		log.Fatal("failed to migrate schema", logger.ErrorField(err))
	}
	ledger := postgres.NewLedger(pool)

	// Redis-backed rate cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	defer redisClient.Close()

	rateSource := rates.NewCachedSource(rates.NewStaticSource(&cfg.Rates), redisClient, cfg.Redis.RateCacheTTL, log)
	converter := rates.NewConverter(rateSource, &cfg.Rates)

	// Kafka notifier for reported transactions
	notifier, err := notify.NewKafkaNotifier(&cfg.Kafka, log)
	if err != nil {
		log.Fatal("failed to start kafka producer", logger.ErrorField(err))
	}
	defer notifier.Close()

	// External collaborators: the transaction, customer and document
	// services
	transactions := clients.NewTransactionClient(&cfg.Collaborators)
	customers := clients.NewCustomerClient(&cfg.Collaborators)
	documents := clients.NewDocumentClient(&cfg.Collaborators)

	assessor := compliance.NewComplianceAssessor(
		compliance.NewTransactionClassifier(&cfg.Compliance),
		compliance.NewDueDiligenceChecker(),
		compliance.NewSuspiciousActivityScreener(&cfg.Screening),
		compliance.NewDeadlineCalculator(&cfg.Compliance),
		compliance.NewRiskScorer(&cfg.Compliance),
		transactions, customers, documents, converter,
		&cfg.Compliance, log,
	)

	lifecycle := reporting.NewReportLifecycleManager(
		reportStore, ledger, transactions, customers, converter, notifier,
		&cfg.Compliance, log,
	)

	auditor := reporting.NewComplianceAuditReporter(ledger, &cfg.Compliance, log)

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Security.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	handler := api.NewHandler(assessor, lifecycle, auditor, &cfg.Compliance, log)
	handler.Register(e, cfg.Security.JWTSecret)

	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		if err := e.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("server stopped", logger.ErrorField(err))
		}
	}()
	log.Info("server started", zap.String("addr", serverAddr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", logger.ErrorField(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracer shutdown failed", logger.ErrorField(err))
	}

	log.Info("server exited")
}
