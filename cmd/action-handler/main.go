package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	logger "github.com/sirupsen/logrus"

	"github.com/cchalm/ghcommit/internal"
	"github.com/cchalm/ghcommit/internal/action"
	"github.com/cchalm/ghcommit/internal/actionsenv"
	"github.com/cchalm/ghcommit/internal/config"
	"github.com/cchalm/ghcommit/internal/logging"
	"github.com/cchalm/ghcommit/internal/telemetry"
)

// Version is set by ldflags during build
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up graceful shutdown on interrupt
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		logger.Warn("Interrupt signal detected, shutting down gracefully. Interrupt again to force shutdown")
		cancel()
		<-interrupt
		logger.Fatal("Forcing shutdown")
	}()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables")
	}

	env := actionsenv.New(nil, nil)

	base, err := config.Load()
	if err != nil {
		return env.Report(failed(err))
	}
	cfg := env.Config(base)
	env.Mask(cfg.GitHubToken)

	closer := logging.Setup(logging.Options{Verbose: cfg.Verbose, File: cfg.LogFile})
	defer closer.Close()

	if err := cfg.Validate(); err != nil {
		return env.Report(failed(err))
	}

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.TelemetryEnabled,
		Endpoint:       cfg.OTLPEndpoint,
		ServiceVersion: Version,
	})
	if err != nil {
		return env.Report(failed(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("Failed to shut down telemetry: %v", err)
		}
	}()

	runner, err := internal.BuildRunner(cfg, env, tp)
	if err != nil {
		return env.Report(failed(err))
	}
	inputs, err := internal.NewInputs(cfg)
	if err != nil {
		return env.Report(failed(err))
	}

	return env.Report(runner.Run(ctx, inputs))
}

// failed reports a setup error that happened before the run could start
func failed(err error) action.Outcome {
	return action.Outcome{Kind: action.OutcomeFailed, Failure: action.FailureLocal, Err: err}
}
