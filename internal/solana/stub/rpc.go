package stub

import (
	"bytes"
	"context"
	"encoding/base64"

	"dlmm-binscan/internal/solana"
)

// RPCClient implements solana.RPCClient for testing.
type RPCClient struct {
	Accounts map[string]solana.AccountInfo
	Order    []string // Insertion order of Accounts
	Slot     int64

	// Err, when set, is returned from every call.
	Err error

	// Calls counts GetProgramAccounts invocations.
	Calls int
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Accounts: make(map[string]solana.AccountInfo),
	}
}

// AddAccount stores raw account data owned by owner under pubkey.
func (c *RPCClient) AddAccount(pubkey, owner string, data []byte) {
	if _, ok := c.Accounts[pubkey]; !ok {
		c.Order = append(c.Order, pubkey)
	}
	c.Accounts[pubkey] = solana.AccountInfo{
		Lamports: 1,
		Owner:    owner,
		Data:     base64.StdEncoding.EncodeToString(data),
		Space:    uint64(len(data)),
	}
}

// AddRawAccount stores an account with an already encoded data field.
func (c *RPCClient) AddRawAccount(pubkey string, info solana.AccountInfo) {
	if _, ok := c.Accounts[pubkey]; !ok {
		c.Order = append(c.Order, pubkey)
	}
	c.Accounts[pubkey] = info
}

// GetProgramAccounts returns stored accounts owned by programID that pass every filter.
// Accounts are returned in insertion order.
func (c *RPCClient) GetProgramAccounts(_ context.Context, programID string, opts *solana.ProgramAccountsOpts) (*solana.ProgramAccounts, error) {
	c.Calls++
	if c.Err != nil {
		return nil, c.Err
	}

	out := &solana.ProgramAccounts{}
	if opts != nil && opts.WithContext {
		out.Slot = c.Slot
	}

	for _, pubkey := range c.Order {
		info := c.Accounts[pubkey]
		if info.Owner != programID {
			continue
		}
		if opts != nil && !matches(info, opts.Filters) {
			continue
		}
		out.Accounts = append(out.Accounts, solana.KeyedAccount{Pubkey: pubkey, Account: info})
	}

	return out, nil
}

// GetAccountInfo retrieves an account from the stub store.
func (c *RPCClient) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	info, ok := c.Accounts[pubkey]
	if !ok {
		return nil, nil
	}
	return &info, nil
}

// GetSlot returns the configured slot.
func (c *RPCClient) GetSlot(_ context.Context) (int64, error) {
	if c.Err != nil {
		return 0, c.Err
	}
	return c.Slot, nil
}

func matches(info solana.AccountInfo, filters []solana.Filter) bool {
	if len(filters) == 0 {
		return true
	}

	// Undecodable data only passes when no filter inspects it.
	data, err := info.DecodeData()
	if err != nil {
		return false
	}

	for _, f := range filters {
		switch {
		case f.Memcmp != nil:
			end := f.Memcmp.Offset + uint64(len(f.Memcmp.Bytes))
			if end > uint64(len(data)) || !bytes.Equal(data[f.Memcmp.Offset:end], f.Memcmp.Bytes) {
				return false
			}
		case f.DataSize != nil:
			if uint64(len(data)) != *f.DataSize {
				return false
			}
		}
	}
	return true
}
