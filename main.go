package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/fenilmodi00/closet-backend/config"
	"github.com/fenilmodi00/closet-backend/database"
	"github.com/fenilmodi00/closet-backend/handlers"
	"github.com/fenilmodi00/closet-backend/jobs"
	"github.com/fenilmodi00/closet-backend/services"
	"github.com/fenilmodi00/closet-backend/shared"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load config
	cfg := config.LoadConfig()
	unified := cfg.UnifiedConfiguration()
	shared.ConfigureLogging(unified.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Outbound retailer access
	timeout := unified.Service.HTTPRequestTimeout
	clientFactory := shared.NewHTTPClientFactory(timeout)
	defer clientFactory.CleanupAllClients()
	httpClient := clientFactory.CreateOptimizedHTTPClient(timeout)
	rateLimiter := shared.NewHTTPRequestRateLimiter(unified.Service.RequestsPerSecond)

	probe := services.NewCommerceAPIProbe(httpClient, rateLimiter)
	fetcher := services.NewProductPageFetcher(httpClient, timeout, unified.Service.MaxPageBodyBytes, rateLimiter)

	var browser services.PageFetcher
	if unified.Service.BrowserFallback {
		browser = services.NewBrowserPageFetcher(3*timeout, rateLimiter)
	}

	extractionMetrics := shared.NewServiceMetrics("ProductExtractionService")
	extractionService := services.NewProductExtractionService(
		config.DefaultBrandProfiles(), probe, fetcher, browser, extractionMetrics,
	)

	logrus.WithFields(logrus.Fields{
		"fetch_timeout":       timeout,
		"requests_per_second": unified.Service.RequestsPerSecond,
		"browser_fallback":    unified.Service.BrowserFallback,
	}).Info("Product extraction service initialized")

	routes := &handlers.Routes{
		Product: handlers.NewProductHandler(extractionService),
	}

	// Closet store is optional
	var db *sql.DB
	var closetMetrics *shared.ServiceMetrics
	if cfg.DatabaseURL != "" {
		if err := database.ConnectWithConfig(cfg.DatabaseURL, &unified.Database); err != nil {
			logrus.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()
		db = database.DB

		if err := database.Migrate("database/schema.sql"); err != nil {
			logrus.Warnf("Migration warning: %v", err)
		}
		if err := database.ValidateClosetSchema(); err != nil {
			logrus.Warnf("Schema validation warning: %v", err)
		}

		closetService := services.NewClosetService(db, extractionService)
		closetMetrics = closetService.GetServiceMetrics()
		routes.Closet = handlers.NewClosetHandler(closetService)

		refreshJob := jobs.NewClosetRefreshJob(closetService, cfg.GetClosetRefreshInterval())
		refreshJob.Start(ctx)
		routes.Admin = handlers.NewAdminHandler(refreshJob)
	} else {
		logrus.Info("DATABASE_URL not set, closet endpoints disabled")
	}

	routes.Metrics = handlers.NewMetricsHandler(db, extractionMetrics, closetMetrics, rateLimiter)

	// Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	routes.Register(app)

	go func() {
		<-ctx.Done()
		logrus.Info("Shutting down server")
		extractionMetrics.LogSummary()
		if err := app.Shutdown(); err != nil {
			logrus.WithError(err).Error("Server shutdown failed")
		}
	}()

	// Start server
	logrus.Infof("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logrus.Fatalf("Server failed to start: %v", err)
	}
}
