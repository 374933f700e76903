package solana

import "context"

// RPCClient defines the subset of the Solana JSON-RPC HTTP interface used for
// account scans.
type RPCClient interface {
	// GetProgramAccounts returns every account owned by programID that matches opts.
	GetProgramAccounts(ctx context.Context, programID string, opts *ProgramAccountsOpts) (*ProgramAccounts, error)

	// GetAccountInfo retrieves a single account. Returns nil if the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)

	// GetSlot retrieves the current slot at the client's commitment.
	GetSlot(ctx context.Context) (int64, error)
}

// Commitment is the bank state a query is evaluated against.
type Commitment string

const (
	CommitmentProcessed Commitment = "processed"
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

// IsValid checks if the commitment is a known level.
func (c Commitment) IsValid() bool {
	switch c {
	case CommitmentProcessed, CommitmentConfirmed, CommitmentFinalized:
		return true
	}
	return false
}

// String returns the string representation of Commitment.
func (c Commitment) String() string {
	return string(c)
}
