package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/erazemk/foodbank/internal/api"
	"github.com/erazemk/foodbank/internal/config"
	"github.com/erazemk/foodbank/internal/db"
	"github.com/erazemk/foodbank/internal/events"
	"github.com/erazemk/foodbank/internal/logger"
	"github.com/erazemk/foodbank/internal/metrics"
	"github.com/erazemk/foodbank/internal/monitor"
	"github.com/erazemk/foodbank/internal/store"
)

func main() {
	fs := flag.NewFlagSet("foodbank", flag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", "", "")
	fs.StringVar(&configPath, "c", "", "")

	var addr string
	fs.StringVar(&addr, "addr", "", "")
	fs.StringVar(&addr, "a", "", "")

	var dsn string
	fs.StringVar(&dsn, "db", "", "")
	fs.StringVar(&dsn, "d", "", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	var adminEmail string
	fs.StringVar(&adminEmail, "email", "", "")
	fs.StringVar(&adminEmail, "e", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: foodbank [flags]

Flags:
  -c, -config <path>      YAML config file (default: none, built-in defaults)
  -a, -addr <host:port>   listen address (default: :4545)
  -d, -db <dsn>           database path or DSN for the configured driver (default: foodbank.sqlite3)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -e, -email <address>    admin email on first run (default: admin@foodbank.local)
  -h, -help               show this help and exit

Environment variables (PORT, DATABASE_URL, JWT_SECRET, AMQP_URL, ...) and ./.env
override the config file; flags override both.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	// Flags override the file and environment, and are validated with them.
	var overrides config.Overrides
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a", "addr":
			overrides.Addr = &addr
		case "d", "db":
			overrides.DSN = &dsn
		case "l", "log":
			overrides.LogFile = &logPath
		case "e", "email":
			overrides.AdminEmail = &adminEmail
		}
	})
	if err := cfg.Apply(overrides); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := logger.Setup(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg); err != nil {
		slog.Error("fatal", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	database, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.Migrate(database.DB, cfg.Database.Driver); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	slog.Info("database ready", "driver", cfg.Database.Driver)

	st := store.New(database)

	created, err := bootstrap(ctx, st, cfg.Bootstrap)
	if err != nil {
		return fmt.Errorf("bootstrapping: %w", err)
	}
	if created != nil {
		printBootstrapResult(created)
	}

	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		// Generated on first run and kept in the database.
		if jwtSecret, err = st.Settings.JWTSecret(ctx); err != nil {
			return fmt.Errorf("loading JWT secret: %w", err)
		}
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.Events.AMQPURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
		if err != nil {
			return fmt.Errorf("connecting to broker: %w", err)
		}
		publisher = amqpPub
		slog.Info("publishing events", "exchange", cfg.Events.Exchange)
	}
	defer publisher.Close()

	m := metrics.New()

	if cfg.AllowTestHeader() {
		slog.Warn("test auth header enabled", "header", api.TestUserHeader)
	}
	apiRouter := api.NewRouter(st, api.Options{
		JWTSecret:       jwtSecret,
		AllowTestHeader: cfg.AllowTestHeader(),
		Events:          publisher,
		Metrics:         m,
	})

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", m.Handler())
	mux.Handle("/", apiRouter)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", api.TestUserHeader},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
	})
	handler := api.LoggingMiddleware(corsHandler.Handler(mux))

	var mon *monitor.Monitor
	if cfg.Monitor.Schedule != "" {
		mon = monitor.New(st, publisher, m)
		if err := mon.Schedule(cfg.Monitor.Schedule); err != nil {
			return err
		}
		mon.Start()
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	if mon != nil {
		mon.Stop()
	}
	slog.Info("server stopped, closing database")
	return nil
}
