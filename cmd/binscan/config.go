package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"dlmm-binscan/internal/dlmm"
	"dlmm-binscan/internal/report"
	"dlmm-binscan/internal/scan"
	"dlmm-binscan/internal/solana"
)

// rpcURLEnv names the environment variable holding the RPC endpoint.
const rpcURLEnv = "RPC_URL"

type config struct {
	RPCURL         string
	ProgramID      solana.PublicKey
	Commitment     solana.Commitment
	Timeout        time.Duration
	MaxRetries     int
	Policy         scan.Policy
	Workers        int
	VerifyAddress  bool
	DataSizeFilter bool
	Format         report.Format
	MetricsFile    string
	Account        string
}

// parseConfig reads flags from args. getenv supplies the RPC_URL default.
func parseConfig(args []string, getenv func(string) string, output io.Writer) (*config, error) {
	fs := flag.NewFlagSet("binscan", flag.ContinueOnError)
	fs.SetOutput(output)

	rpcURL := fs.String("rpc-url", getenv(rpcURLEnv), "Solana RPC HTTP endpoint (default $"+rpcURLEnv+")")
	program := fs.String("program", dlmm.ProgramID, "DLMM program ID")
	commitment := fs.String("commitment", string(solana.DefaultCommitment), "Commitment: processed, confirmed or finalized")
	timeout := fs.Duration("timeout", solana.DefaultTimeout, "RPC request timeout")
	maxRetries := fs.Int("max-retries", solana.DefaultMaxRetries, "Transport retries for the RPC call")
	policy := fs.String("policy", string(scan.PolicySkip), "Per-account failure policy: skip or abort")
	workers := fs.Int("workers", 1, "Parallel account decoders")
	verifyAddress := fs.Bool("verify-address", false, "Check each account address against its bin array PDA")
	dataSizeFilter := fs.Bool("data-size-filter", false, "Ask the node to drop accounts that are not bin array sized")
	format := fs.String("format", string(report.FormatText), "Output format: text, table or json")
	metricsFile := fs.String("metrics-file", "", "Write Prometheus metrics to this file after the scan")
	account := fs.String("account", "", "Inspect a single bin array account instead of scanning")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *rpcURL == "" {
		return nil, errors.New("--rpc-url or " + rpcURLEnv + " must be set")
	}

	cfg := &config{
		RPCURL:         *rpcURL,
		Commitment:     solana.Commitment(*commitment),
		Timeout:        *timeout,
		MaxRetries:     *maxRetries,
		Workers:        *workers,
		VerifyAddress:  *verifyAddress,
		DataSizeFilter: *dataSizeFilter,
		MetricsFile:    *metricsFile,
		Account:        *account,
	}

	var err error
	if cfg.ProgramID, err = solana.ParsePublicKey(*program); err != nil {
		return nil, fmt.Errorf("--program: %w", err)
	}
	if !cfg.Commitment.IsValid() {
		return nil, fmt.Errorf("--commitment: unknown commitment %q", *commitment)
	}
	if cfg.Policy, err = scan.ParsePolicy(*policy); err != nil {
		return nil, fmt.Errorf("--policy: %w", err)
	}
	if cfg.Format, err = report.ParseFormat(*format); err != nil {
		return nil, fmt.Errorf("--format: %w", err)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("--timeout must be positive")
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("--max-retries must not be negative")
	}

	return cfg, nil
}
