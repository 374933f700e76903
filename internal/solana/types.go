package solana

import (
	"encoding/base64"
	"fmt"
)

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       string `json:"data"` // base64 encoded
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
	Space      uint64 `json:"space"`
}

// DecodeData returns the raw account bytes.
func (a *AccountInfo) DecodeData() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(a.Data)
	if err != nil {
		return nil, fmt.Errorf("decode account data: %w", err)
	}
	return data, nil
}

// KeyedAccount pairs an account with its address.
type KeyedAccount struct {
	Pubkey  string
	Account AccountInfo
}

// ProgramAccounts is the result of getProgramAccounts.
type ProgramAccounts struct {
	Slot     int64 // Context slot, 0 unless WithContext was requested
	Accounts []KeyedAccount
}

// Memcmp matches accounts whose data at Offset equals Bytes.
type Memcmp struct {
	Offset uint64
	Bytes  []byte
}

// Filter is a single getProgramAccounts filter. Exactly one field is set.
type Filter struct {
	Memcmp   *Memcmp
	DataSize *uint64
}

// MemcmpFilter returns a memcmp filter.
func MemcmpFilter(offset uint64, b []byte) Filter {
	return Filter{Memcmp: &Memcmp{Offset: offset, Bytes: b}}
}

// DataSizeFilter returns a dataSize filter.
func DataSizeFilter(size uint64) Filter {
	return Filter{DataSize: &size}
}

// DataSlice limits the returned account data.
type DataSlice struct {
	Offset uint64
	Length uint64
}

// ProgramAccountsOpts defines optional parameters for getProgramAccounts.
type ProgramAccountsOpts struct {
	Filters     []Filter
	DataSlice   *DataSlice
	WithContext bool
	Commitment  Commitment // Overrides the client commitment when set
}
