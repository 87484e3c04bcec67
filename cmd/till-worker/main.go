package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"till/internal/amqp"
	"till/internal/backend"
	"till/internal/cli"
	"till/internal/log"
	"till/internal/report"
	"till/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		log.Default().Error("Configuration validation failed", log.FieldError, err)
		return 1
	}
	logger := cli.SetupLogger(cfg).WithComponent(log.ComponentWorker)
	logger.Info("Starting till-worker")

	if !cfg.MirrorEnabled() {
		logger.Error("GOOGLE_SPREADSHEET_ID is required to run the mirror worker")
		return 1
	}

	ctx, _ := cli.GracefulShutdown(logger, shutdownTimeout, nil)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		return 1
	}
	// The worker only reads the ledger; it never publishes events.
	backendCfg.AMQPURL = ""
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err)
		return 1
	}
	defer result.Cleanup()

	sheetsClient, err := cli.NewMirrorClient(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		return 1
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	engine := report.NewEngine(result.Ledger, nil)
	mirror := worker.NewMirrorWorker(engine, sheetsClient, worker.MirrorConfig{Interval: cfg.MirrorInterval}, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := mirror.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return mirror.Stop(stopCtx)
	})

	if cfg.EventsEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			return 1
		}
		defer amqpClient.Close()

		g.Go(func() error {
			return amqpClient.ConsumeLedgerEvents(gctx, mirror.HandleLedgerEvent)
		})
	} else {
		logger.Info("AMQP_URL not set, mirroring on interval only", "interval", cfg.MirrorInterval)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		return 1
	}
	logger.Info("Worker shutdown complete")
	return 0
}
