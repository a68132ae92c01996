// Package main is the entrypoint for the entryd API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/entryd/entryd/internal/apidoc"
	"github.com/entryd/entryd/internal/config"
	"github.com/entryd/entryd/internal/handler"
	"github.com/entryd/entryd/internal/metrics"
	"github.com/entryd/entryd/internal/middleware"
	"github.com/entryd/entryd/internal/repository"
	"github.com/entryd/entryd/internal/server"
	"github.com/entryd/entryd/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Open the collection
	coll, err := repository.Open(ctx, storageOptions(cfg))
	if err != nil {
		logger.Error(
			"failed to open collection",
			slog.String("driver", cfg.StorageDriver),
			slog.String("collection", cfg.CollectionName),
			slog.String("error", sanitizeError(err, cfg.DatabaseURL, cfg.RedisURL)),
			slog.String("url", redactURL(storageURL(cfg))),
		)
		os.Exit(1)
	}
	logger.Info("collection ready",
		"driver", cfg.StorageDriver,
		"collection", coll.Name(),
	)

	// Metrics
	var (
		recorder metrics.Recorder = metrics.NewNoop()
		gatherer prometheus.Gatherer
	)
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder = metrics.NewPrometheus(reg)
		gatherer = reg
	}

	// Services and handlers
	entryService := service.NewEntryService(coll, recorder)
	entryHandler := handler.NewEntryHandler(entryService, logger, recorder)
	routes := handler.EntryRoutes(entryHandler)

	doc, err := apidoc.Build(ctx, apidoc.Info{
		Title:       "entryd",
		Version:     handler.Version,
		Description: "Validated CRUD over the " + coll.Name() + " collection.",
		MountPath:   cfg.MountPath,
	}, routes)
	if err != nil {
		logger.Error("failed to build openapi document", "error", err)
		os.Exit(1)
	}

	var metricsHandler *handler.MetricsHandler
	if cfg.MetricsEnabled {
		metricsHandler = handler.NewMetricsHandler(gatherer)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	r := server.NewRouter(server.RouterConfig{
		Logger:             logger,
		MountPath:          cfg.MountPath,
		EntryRoutes:        routes,
		Base:               handler.New(coll.Name(), cfg.MountPath),
		Health:             handler.NewHealthHandler(coll, cfg.StorageDriver),
		Metrics:            metricsHandler,
		OpenAPI:            apidoc.Handler(doc),
		IsDevelopment:      cfg.IsDevelopment(),
		CORS:               cors,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})

	// Create and run server
	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)
	srv.OnShutdown("storage", func(ctx context.Context) error {
		return coll.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"mount_path", cfg.MountPath,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "entryd")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func storageOptions(cfg *config.Config) repository.Options {
	return repository.Options{
		Driver:      cfg.StorageDriver,
		Collection:  cfg.CollectionName,
		DatabaseURL: cfg.DatabaseURL,
		RedisURL:    cfg.RedisURL,
		SQLitePath:  cfg.SQLitePath,
	}
}

// storageURL returns the connection setting of the selected driver.
func storageURL(cfg *config.Config) string {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		return cfg.DatabaseURL
	case config.DriverRedis:
		return cfg.RedisURL
	case config.DriverSQLite:
		return cfg.SQLitePath
	default:
		return ""
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

// redactURL strips the password from a connection URL.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

// sanitizeError replaces every secret in the error text with its redacted
// form.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
