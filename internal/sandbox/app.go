package sandbox

import (
	"github.com/birbparty/dandb-go/internal/telemetry"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// NewApp builds the sandbox Fiber app. Request metrics go to metrics and
// the metrics endpoint serves gatherer.
func NewApp(cfg *Config, store *Store, metrics *telemetry.Metrics, gatherer prometheus.Gatherer) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "DandB Sandbox",
		ErrorHandler:          errorHandler,
		ReadTimeout:           cfg.RequestTimeout,
		WriteTimeout:          cfg.RequestTimeout,
		DisableStartupMessage: true,
		// Parsed values outlive the request in the store
		Immutable: true,
	})

	app.Use(requestid.New())
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, x-access-token, user-token",
	}))
	app.Use(timingMiddleware())
	app.Use(telemetry.FiberLoggingMiddleware())
	app.Use(telemetry.FiberMetricsMiddleware(metrics))

	promHandler := fasthttpadaptor.NewFastHTTPHandler(telemetry.PrometheusHandler(gatherer))
	app.Get(cfg.MetricsPath, func(c *fiber.Ctx) error {
		promHandler(c.Context())
		return nil
	})

	SetupRoutes(app, NewHandler(cfg, store))
	return app
}
