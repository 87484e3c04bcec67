package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/google/subcommands"

	"till/internal/backend"
	"till/internal/cli"
	"till/internal/config"
	"till/internal/export/xlsx"
	"till/internal/log"
	"till/internal/report"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load .env file for local development (ignore errors in production)
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return int(subcommands.ExitUsageError)
	}
	logger := cli.SetupLogger(cfg).WithComponent(log.ComponentCLI)

	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		return int(subcommands.ExitFailure)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return int(subcommands.ExitFailure)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Warn("Cleanup failed", log.FieldError, err)
		}
	}()

	app := &cli.App{
		Ledger:     result.Ledger,
		Reports:    report.NewEngine(result.Ledger, xlsx.NewWriter()),
		Mirror:     mirrorFactory(cfg),
		ExportPath: cfg.ExportPath,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range cli.Commands(app) {
		commander.Register(c, "ledger")
	}

	flag.Parse()
	return int(commander.Execute(log.NewContext(ctx, logger)))
}

func mirrorFactory(cfg *config.Config) func(context.Context) (report.Writer, error) {
	return func(ctx context.Context) (report.Writer, error) {
		client, err := cli.NewMirrorClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, errors.New("GOOGLE_SPREADSHEET_ID is not set")
		}
		return client, nil
	}
}
