package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"catalog/internal/config"
	"catalog/internal/handlers"
	"catalog/internal/middleware"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/pkg/database"
	"catalog/pkg/imageprovider"
	"catalog/pkg/logger"
	"catalog/pkg/rabbitmq"
	"catalog/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

// appDeps are the collaborators the HTTP application is built from.
type appDeps struct {
	products handlers.ProductService
	pingDB   handlers.PingFunc
	registry *prometheus.Registry
}

// newApp assembles the Fiber application: middleware, health, metrics and the
// product API under both /products and /api/products.
func newApp(deps appDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "product-catalog",
		ErrorHandler: handlers.ErrorHandler,
	})

	// --- Middleware ---
	app.Use(requestid.New())
	app.Use(middleware.Tracing())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.Metrics(deps.registry))
	app.Use(recover.New())
	app.Use(cors.New())

	// --- Health & Metrics ---
	handlers.NewHealthHandler(deps.pingDB).RegisterRoutes(app)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.registry, promhttp.HandlerOpts{})))

	// --- API Routes ---
	productHandler := handlers.NewProductHandler(deps.products)
	productHandler.RegisterRoutes(app)
	productHandler.RegisterRoutes(app.Group("/api"))

	return app
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.ServiceName, cfg.LogPretty)
	logger.SetLevel(cfg.LogLevel)

	ctx := context.Background()

	// --- Tracing ---
	tp, err := tracing.Init(ctx, tracing.Config{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracing")
	}

	// --- Database ---
	db, err := database.Open(cfg.Database)
	if err != nil {
		logger.Logger.Fatal().
			Err(err).
			Str("host", cfg.Database.Host).
			Str("database", cfg.Database.DBName).
			Msg("Failed to connect to database")
	}
	if err := repositories.Migrate(db); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to migrate database")
	}

	// --- Services ---
	productRepo := repositories.NewTracingProductRepository(repositories.NewGORMProductRepository(db))
	images := imageprovider.NewClient(cfg.Image)

	opts := []services.Option{services.WithQueryTimeout(cfg.QueryTimeout)}

	var mqClient *rabbitmq.Client
	if cfg.EventsEnabled() {
		mqClient, err = rabbitmq.NewClient(cfg.RabbitMQ)
		if err != nil {
			// Events are optional; the catalog keeps serving without them.
			logger.Logger.Warn().Err(err).Msg("RabbitMQ unavailable, product events disabled")
		} else {
			opts = append(opts, services.WithEventPublisher(mqClient))
			logger.Logger.Info().Str("queue", cfg.RabbitMQ.Queue).Msg("Product events enabled")
		}
	}

	productService := services.NewProductService(productRepo, images, opts...)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app := newApp(appDeps{
		products: productService,
		pingDB: func(ctx context.Context) error {
			return database.Ping(ctx, db)
		},
		registry: registry,
	})

	// --- Start HTTP Server ---
	go func() {
		logger.Logger.Info().Str("addr", cfg.ListenAddr()).Msg("Starting server")
		if err := app.Listen(cfg.ListenAddr()); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Logger.Info().Msg("Shutting down server...")

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Logger.Error().Err(err).Msg("Error during Fiber shutdown")
	}

	if mqClient != nil {
		if err := mqClient.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Error closing RabbitMQ client")
		}
	}

	if err := database.Close(db); err != nil {
		logger.Logger.Error().Err(err).Msg("Error closing database")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
		logger.Logger.Error().Err(err).Msg("Error shutting down tracer provider")
	}

	logger.Logger.Info().Msg("Server gracefully stopped")
}
