package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	appinvoicing "github.com/mhpos/backend/internal/application/invoicing"
	"github.com/mhpos/backend/internal/domain/invoicing/acl"
	"github.com/mhpos/backend/internal/infrastructure/config"
	"github.com/mhpos/backend/internal/infrastructure/event"
	"github.com/mhpos/backend/internal/infrastructure/jobs"
	"github.com/mhpos/backend/internal/infrastructure/logger"
	"github.com/mhpos/backend/internal/infrastructure/notification"
	"github.com/mhpos/backend/internal/infrastructure/persistence"
	"github.com/mhpos/backend/internal/interfaces/http/handler"
	"github.com/mhpos/backend/internal/interfaces/http/middleware"
	"github.com/mhpos/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting invoicing backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Redis backs the distributed job leases
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	log.Info("Redis connected successfully", zap.String("addr", cfg.Redis.Addr()))

	// Initialize repositories and cross-context adapters
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)
	customerDirectory := persistence.NewGormCustomerDirectory(db.DB)
	productCatalog := persistence.NewGormProductCatalog(db.DB)

	// Initialize event bus with the audit trail subscriber
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))

	// Reminder dispatch goes to the configured webhook, or nowhere
	notifier := newNotifier(cfg, log)

	// Initialize application services
	invoiceService := appinvoicing.NewInvoiceService(invoiceRepo, customerDirectory, productCatalog, eventBus)
	paymentService := appinvoicing.NewPaymentService(invoiceRepo, eventBus, cfg.Invoicing.PaymentRetryAttempts)
	recurringService := appinvoicing.NewRecurringService(invoiceRepo, eventBus, log, cfg.Invoicing.PaymentTermDays)
	reminderService := appinvoicing.NewReminderService(
		invoiceRepo, notifier, eventBus, log,
		cfg.Invoicing.ReminderGrace, cfg.Invoicing.ReminderCooldown,
	)
	reportService := appinvoicing.NewReportService(reportRepo)

	// The locker serializes sweeps across instances, for both scheduled
	// ticks and on-demand HTTP triggers
	locker := jobs.NewRedisLocker(rdb)

	if cfg.Jobs.Enabled {
		runner := jobs.NewRunner(locker, cfg.Jobs.LeaseTTL, log)
		runner.Register(jobs.Job{
			Name:     "recurring-invoices",
			Interval: cfg.Jobs.RecurringInterval,
			Run: func(ctx context.Context) error {
				result, err := recurringService.GenerateRecurringInvoices(ctx)
				if err != nil {
					return err
				}
				log.Info("recurring invoice sweep finished",
					zap.Int("generated", result.GeneratedCount),
					zap.Int("errors", len(result.Errors)),
				)
				return nil
			},
		})
		runner.Register(jobs.Job{
			Name:     "overdue-reminders",
			Interval: cfg.Jobs.ReminderInterval,
			Run: func(ctx context.Context) error {
				result, err := reminderService.SendAutomatedReminders(ctx)
				if err != nil {
					return err
				}
				log.Info("reminder sweep finished",
					zap.Int("sent", result.SentCount),
					zap.Int("errors", len(result.Errors)),
				)
				return nil
			},
		})
		runner.Start(context.Background())
		defer runner.Stop()
	}

	// Initialize HTTP handlers
	invoiceHandler := handler.NewInvoiceHandler(
		invoiceService, paymentService, recurringService, reminderService,
		locker, cfg.Jobs.LeaseTTL,
	)
	reportHandler := handler.NewReportHandler(reportService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(reportHandler).
		Register(invoiceHandler).
		Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newNotifier selects the reminder delivery channel from config
func newNotifier(cfg *config.Config, log *zap.Logger) acl.Notifier {
	if cfg.Notification.WebhookURL == "" {
		return notification.NewNoopNotifier(log)
	}
	return notification.NewWebhookNotifier(cfg.Notification.WebhookURL, cfg.Notification.Timeout, log)
}
