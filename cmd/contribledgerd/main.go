package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"contribledger/config"
	"contribledger/core"
	"contribledger/fulfillment"
	"contribledger/observability"
	"contribledger/observability/logging"
	telemetry "contribledger/observability/otel"
	"contribledger/rpc"
	"contribledger/storage"
)

const (
	envEnvironment       = "LEDGER_ENV"
	envFulfillmentSecret = "LEDGER_FULFILLMENT_SECRET"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "contribledgerd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv(envEnvironment))

	cfg, err := config.Load(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if env == "" {
		env = cfg.Environment
	}
	logger := logging.Setup("contribledgerd", env, cfg.LogFile)

	shutdownTelemetry, err := initTelemetry(env)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if shutdownTelemetry != nil {
			_ = shutdownTelemetry(context.Background())
		}
	}()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	db, err := storage.NewBoltDB(filepath.Join(cfg.DataDir, "ledger.db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	node, err := core.NewNode(db, cfg.OwnerAccount, cfg.InitialSupply)
	if err != nil {
		return fmt.Errorf("initialise ledger: %w", err)
	}
	node.SetEmitter(observability.NewEmitter(logger))
	if supply, err := node.Supply(); err == nil {
		observability.Ledger().SetSupply(supply)
	}

	if cfg.FulfillmentRoutes != "" {
		routes, err := fulfillment.LoadRoutes(cfg.FulfillmentRoutes)
		if err != nil {
			return fmt.Errorf("load fulfillment routes: %w", err)
		}
		secret := strings.TrimSpace(os.Getenv(envFulfillmentSecret))
		if secret == "" {
			return fmt.Errorf("%s must be set when fulfillment routes are configured", envFulfillmentSecret)
		}
		dispatcher, err := fulfillment.NewDispatcher(routes, []byte(secret))
		if err != nil {
			return fmt.Errorf("start fulfillment dispatcher: %w", err)
		}
		defer dispatcher.Close()
		node.SetFulfiller(dispatcher)
		logger.Info("fulfillment dispatcher ready", slog.String("defaultEndpoint", routes.DefaultEndpoint))
	} else {
		logger.Warn("no fulfillment routes configured, benefit deliveries are dropped")
	}

	server := rpc.NewServer(node, rpc.WithRateLimit(cfg.RateLimitPerMinute, cfg.RateLimitBurst))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting JSON-RPC server", slog.String("address", cfg.RPCAddress))
		errCh <- server.Start(cfg.RPCAddress)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", slog.String("signal", sig.String()))
		return nil
	case err := <-errCh:
		return fmt.Errorf("rpc server: %w", err)
	}
}

func initTelemetry(env string) (telemetry.ShutdownFunc, error) {
	endpoint := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	if endpoint == "" {
		return nil, nil
	}
	insecure := true
	if value := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE")); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			insecure = parsed
		}
	}
	return telemetry.Init(context.Background(), telemetry.Config{
		ServiceName: "contribledgerd",
		Environment: env,
		Endpoint:    endpoint,
		Insecure:    insecure,
		Headers:     telemetry.ParseHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")),
		Metrics:     true,
		Traces:      true,
	})
}
