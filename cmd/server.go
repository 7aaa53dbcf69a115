package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gatehouse-dev/gatehouse/pkg/authz"
	"github.com/gatehouse-dev/gatehouse/pkg/config"
	"github.com/gatehouse-dev/gatehouse/pkg/errx"
	"github.com/gatehouse-dev/gatehouse/pkg/logx"
)

func main() {
	// 1. Load and validate configuration
	cfg := config.Load()

	// 2. Initialize logger
	initLogger(cfg.Log)

	logx.Info("🚀 Starting Gatehouse Auth Server...")

	if err := cfg.Validate(); err != nil {
		logx.Fatalf("Invalid configuration: %v", err)
	}

	// 3. Initialize dependency container
	container := NewContainer(cfg)
	defer container.Cleanup()

	// 4. Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:               "Gatehouse Auth Server",
		DisableStartupMessage: true,
		ErrorHandler:          globalErrorHandler,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
	})

	// 5. Global middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return uuid.NewString()
		},
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:  getEnv("CORS_ORIGINS", "*"),
		AllowHeaders:  "Origin, Content-Type, Accept, X-Request-ID",
		AllowMethods:  "GET, POST, HEAD, OPTIONS",
		ExposeHeaders: "X-Request-ID",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${reqHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	// 6. Health & metrics endpoints
	app.Get("/health", healthCheckHandler(container))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(
		container.Prometheus,
		promhttp.HandlerOpts{},
	)))

	// 7. Mount the auth views and session middleware
	container.Gatehouse.Attach(app)
	logx.Info("✓ Gatehouse routes registered")

	// 8. Demo protected route
	app.Get("/me", container.Gatehouse.RequireAuthenticated(), meHandler)

	// 9. 404 handler
	app.Use(notFoundHandler)

	// 10. Start server with graceful shutdown
	startServer(app, container)
}

func initLogger(cfg config.LogConfig) {
	switch cfg.Level {
	case "debug":
		logx.SetLevel(logx.LevelDebug)
	case "warn":
		logx.SetLevel(logx.LevelWarn)
	case "error":
		logx.SetLevel(logx.LevelError)
	default:
		logx.SetLevel(logx.LevelInfo)
	}
}

// ============================================================================
// Handler Functions
// ============================================================================

// healthCheckHandler reports process health plus backing-store reachability.
func healthCheckHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := fiber.Map{
			"status":  "healthy",
			"service": "gatehouse-auth",
			"version": getEnv("APP_VERSION", "1.0.0"),
		}

		if _, err := container.Redis.Ping(c.Context()).Result(); err != nil {
			health["redis"] = "unhealthy"
			health["redis_error"] = err.Error()
			health["status"] = "degraded"
		} else {
			health["redis"] = "healthy"
		}

		if container.DB != nil {
			if err := container.DB.Ping(); err != nil {
				health["db"] = "unhealthy"
				health["db_error"] = err.Error()
				health["status"] = "degraded"
			} else {
				health["db"] = "healthy"
			}
		}

		status := fiber.StatusOK
		if health["status"] == "degraded" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(health)
	}
}

// meHandler returns the authenticated account. The guard upstream already
// rejected anonymous requests.
func meHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"account": authz.PrincipalFromCtx(c),
	})
}

// notFoundHandler handles 404 errors
func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error":      "Route not found",
		"code":       "NOT_FOUND",
		"path":       c.Path(),
		"method":     c.Method(),
		"request_id": c.Get("X-Request-ID"),
	})
}

// ============================================================================
// Error Handler
// ============================================================================

// globalErrorHandler converts internal errors to standard HTTP responses
func globalErrorHandler(c *fiber.Ctx, err error) error {
	logx.WithFields(logx.Fields{
		"path":       c.Path(),
		"method":     c.Method(),
		"ip":         c.IP(),
		"request_id": c.Get("X-Request-ID"),
		"user_agent": c.Get("User-Agent"),
	}).Errorf("Request error: %v", err)

	// If it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(fiber.Map{
			"error":      e.Message,
			"code":       "FIBER_ERROR",
			"status":     e.Code,
			"request_id": c.Get("X-Request-ID"),
		})
	}

	// If it's our custom errx.Error
	if e, ok := err.(*errx.Error); ok {
		response := fiber.Map{
			"error":      e.Message,
			"code":       e.Code,
			"type":       string(e.Type),
			"status":     e.HTTPStatus,
			"request_id": c.Get("X-Request-ID"),
		}
		if len(e.Details) > 0 {
			response["details"] = e.Details
		}
		if getEnv("DEBUG", "false") == "true" && e.Err != nil {
			response["underlying_error"] = e.Err.Error()
		}
		return c.Status(e.HTTPStatus).JSON(response)
	}

	// Default unknown error
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":      "Internal Server Error",
		"type":       "INTERNAL",
		"code":       "INTERNAL_ERROR",
		"request_id": c.Get("X-Request-ID"),
	})
}

// ============================================================================
// Server Lifecycle
// ============================================================================

// startServer starts the server with graceful shutdown
func startServer(app *fiber.App, container *Container) {
	port := container.Config.Server.Port

	go func() {
		logx.Infof("🚀 Server listening on port %d", port)
		logx.Infof("💚 Health Check: http://localhost:%d/health", port)
		logx.Infof("📈 Metrics: http://localhost:%d/metrics", port)

		if err := app.Listen(fmt.Sprintf(":%d", port)); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	gracefulShutdown(app, container)
}

// gracefulShutdown handles graceful server shutdown
func gracefulShutdown(app *fiber.App, container *Container) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logx.Infof("🛑 Received signal: %v", sig)
	logx.Info("Shutting down gracefully...")

	if err := app.ShutdownWithTimeout(container.Config.Server.ShutdownTimeout); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}

	logx.Info("✅ Server exited successfully")
}
