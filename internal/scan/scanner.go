// Package scan fetches DLMM bin array accounts and reports the ones holding a
// zero price bin.
package scan

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"dlmm-binscan/internal/dlmm"
	"dlmm-binscan/internal/observability"
	"dlmm-binscan/internal/solana"
)

// Policy decides what a per-account failure does to the batch.
type Policy string

const (
	// PolicySkip records the failure and keeps scanning.
	PolicySkip Policy = "skip"
	// PolicyAbort stops at the first failure in result order.
	PolicyAbort Policy = "abort"
)

// ParsePolicy parses a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicySkip, PolicyAbort:
		return p, nil
	}
	return "", fmt.Errorf("unknown failure policy %q (want skip or abort)", s)
}

// AccountSource fetches program accounts.
type AccountSource interface {
	GetProgramAccounts(ctx context.Context, programID string, opts *solana.ProgramAccountsOpts) (*solana.ProgramAccounts, error)
}

// Options configures a Scanner.
type Options struct {
	Source    AccountSource
	ProgramID solana.PublicKey

	Policy  Policy // Defaults to PolicySkip
	Workers int    // Parallel decoders, <= 1 decodes sequentially

	// VerifyAddress checks each account against its derived PDA.
	VerifyAddress bool

	// DataSizeFilter adds a dataSize filter so the node drops accounts of the wrong size.
	DataSizeFilter bool

	// WithContext requests the context slot along with the accounts.
	WithContext bool

	Logger *log.Logger
}

// Finding is a bin array with at least one zero price bin.
type Finding struct {
	Address     string           `json:"address"`
	LbPair      solana.PublicKey `json:"lbPair"`
	Index       int64            `json:"index"`
	Version     uint8            `json:"version"`
	BinPosition int              `json:"binPosition"` // First zero price bin, 0..69
	BinID       int64            `json:"binId"`
}

// Failure is an account that could not be decoded.
type Failure struct {
	Position int
	Address  string
	Err      error
}

// Reason returns the failure classification.
func (f Failure) Reason() string {
	return Reason(f.Err)
}

// Result summarizes one scan.
type Result struct {
	ProgramID solana.PublicKey
	Slot      int64
	Total     int
	Decoded   int
	Findings  []Finding
	Failures  []Failure
	Duration  time.Duration
}

// ZeroPriceCount returns the number of bin arrays with a zero price bin.
func (r *Result) ZeroPriceCount() int {
	return len(r.Findings)
}

// Scanner runs a single bin array scan.
type Scanner struct {
	opts   Options
	logger *log.Logger
}

// NewScanner creates a new Scanner.
func NewScanner(opts Options) *Scanner {
	if opts.Policy == "" {
		opts.Policy = PolicySkip
	}
	if opts.ProgramID.IsZero() {
		opts.ProgramID = solana.MustPublicKey(dlmm.ProgramID)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Scanner{opts: opts, logger: logger}
}

// outcome is the per-account result of inspect.
type outcome struct {
	finding *Finding
	err     error
}

// Run fetches every bin array account and scans it.
// A fetch error aborts the run and no result is returned.
func (s *Scanner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	accounts, err := s.fetch(ctx)
	if err != nil {
		observability.RecordScanRun("error", time.Since(start).Seconds(), 0, 0)
		return nil, fmt.Errorf("fetch program accounts: %w", err)
	}

	observability.RecordAccountsFetched(len(accounts.Accounts))
	s.logger.Printf("Fetched %d bin array accounts", len(accounts.Accounts))

	outcomes, err := s.inspectAll(ctx, accounts.Accounts)
	if err != nil {
		observability.RecordScanRun("error", time.Since(start).Seconds(), 0, 0)
		return nil, err
	}

	result := &Result{
		ProgramID: s.opts.ProgramID,
		Slot:      accounts.Slot,
		Total:     len(accounts.Accounts),
	}

	for i, out := range outcomes {
		address := accounts.Accounts[i].Pubkey

		if out.err != nil {
			observability.RecordDecodeFailure(Reason(out.err))
			if s.opts.Policy == PolicyAbort {
				s.logger.Printf("Aborting scan at account %s: %v", address, out.err)
				observability.RecordScanRun("aborted", time.Since(start).Seconds(), 0, 0)
				return nil, &AccountError{Position: i, Address: address, Err: out.err}
			}
			s.logger.Printf("Skipping account %s: %v", address, out.err)
			result.Failures = append(result.Failures, Failure{Position: i, Address: address, Err: out.err})
			continue
		}

		result.Decoded++
		observability.RecordAccountDecoded()

		if out.finding != nil {
			observability.RecordZeroPrice()
			result.Findings = append(result.Findings, *out.finding)
		}
	}

	result.Duration = time.Since(start)
	observability.RecordScanRun("success", result.Duration.Seconds(), result.Slot, time.Now().Unix())

	return result, nil
}

func (s *Scanner) fetch(ctx context.Context) (*solana.ProgramAccounts, error) {
	filters := []solana.Filter{
		solana.MemcmpFilter(0, dlmm.BinArrayDiscriminator.Bytes()),
	}
	if s.opts.DataSizeFilter {
		filters = append(filters, solana.DataSizeFilter(dlmm.AccountSize))
	}

	return s.opts.Source.GetProgramAccounts(ctx, s.opts.ProgramID.String(), &solana.ProgramAccountsOpts{
		Filters:     filters,
		WithContext: s.opts.WithContext,
	})
}

// inspectAll decodes every account. Each worker writes only its own slot, so
// the reduction in Run sees the same order regardless of Workers.
func (s *Scanner) inspectAll(ctx context.Context, accounts []solana.KeyedAccount) ([]outcome, error) {
	outcomes := make([]outcome, len(accounts))

	if s.opts.Workers <= 1 {
		for i := range accounts {
			outcomes[i] = s.inspect(accounts[i])
		}
		return outcomes, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for i := range accounts {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = s.inspect(accounts[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (s *Scanner) inspect(account solana.KeyedAccount) outcome {
	data, err := account.Account.DecodeData()
	if err != nil {
		return outcome{err: fmt.Errorf("%w: %v", ErrEncoding, err)}
	}

	ba, err := dlmm.ParseBinArray(data)
	if err != nil {
		return outcome{err: err}
	}

	if s.opts.VerifyAddress {
		if err := s.verifyAddress(account.Pubkey, ba); err != nil {
			return outcome{err: err}
		}
	}

	var out outcome
	if pos, ok := dlmm.FirstZeroPrice(ba); ok {
		out.finding = &Finding{
			Address:     account.Pubkey,
			LbPair:      ba.LbPair,
			Index:       ba.Index,
			Version:     ba.Version,
			BinPosition: pos,
			BinID:       ba.BinID(pos),
		}
	}
	return out
}

func (s *Scanner) verifyAddress(address string, ba *dlmm.BinArray) error {
	want, err := dlmm.DeriveBinArrayAddress(s.opts.ProgramID, ba.LbPair, ba.Index)
	if err != nil {
		return fmt.Errorf("derive bin array address: %w", err)
	}
	if want.String() != address {
		return fmt.Errorf("%w: derived %s", ErrAddressMismatch, want)
	}
	return nil
}
