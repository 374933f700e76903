package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"dlmm-binscan/internal/observability"
	"dlmm-binscan/internal/report"
	"dlmm-binscan/internal/scan"
	"dlmm-binscan/internal/solana"
)

func main() {
	// Load .env if present; real environment variables take precedence.
	_ = godotenv.Load()

	logger := log.New(os.Stderr, "[binscan] ", log.LstdFlags)

	cfg, err := parseConfig(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		logger.Fatalf("Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout, logger); err != nil {
		logger.Fatalf("Error: %v", err)
	}
}

// run performs one scan, or one inspection when cfg.Account is set.
func run(ctx context.Context, cfg *config, stdout io.Writer, logger *log.Logger) error {
	rpc := solana.NewHTTPClient(cfg.RPCURL,
		solana.WithTimeout(cfg.Timeout),
		solana.WithCommitment(cfg.Commitment),
		solana.WithMaxRetries(cfg.MaxRetries),
	)

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	var err error
	if cfg.Account != "" {
		err = runInspect(ctx, cfg, rpc, stdout)
	} else {
		err = runScan(ctx, cfg, rpc, stdout, logger)
	}

	if cfg.MetricsFile != "" {
		if werr := observability.WriteTextfile(cfg.MetricsFile); werr != nil {
			logger.Printf("Failed to write metrics file %s: %v", cfg.MetricsFile, werr)
		}
	}

	return err
}

func runScan(ctx context.Context, cfg *config, rpc *solana.HTTPClient, stdout io.Writer, logger *log.Logger) error {
	scanner := scan.NewScanner(scan.Options{
		Source:         rpc,
		ProgramID:      cfg.ProgramID,
		Policy:         cfg.Policy,
		Workers:        cfg.Workers,
		VerifyAddress:  cfg.VerifyAddress,
		DataSizeFilter: cfg.DataSizeFilter,
		WithContext:    cfg.Format != report.FormatText,
		Logger:         logger,
	})

	logger.Printf("Fetching all Meteora DLMM BinArray accounts from program %s (commitment %s)...",
		cfg.ProgramID, cfg.Commitment)

	result, err := scanner.Run(ctx)
	if err != nil {
		return err
	}

	logger.Printf("Scan complete: %d accounts, %d decoded, %d failed, %d with zero price in %v",
		result.Total, result.Decoded, len(result.Failures), result.ZeroPriceCount(), result.Duration)

	return report.Write(stdout, cfg.Format, result)
}

func runInspect(ctx context.Context, cfg *config, rpc *solana.HTTPClient, stdout io.Writer) error {
	insp, err := scan.Inspect(ctx, rpc, cfg.ProgramID, cfg.Account)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", cfg.Account, err)
	}
	return report.WriteInspection(stdout, insp)
}
