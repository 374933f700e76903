package scan

import (
	"context"
	"fmt"

	"dlmm-binscan/internal/dlmm"
	"dlmm-binscan/internal/solana"
)

// AccountFetcher retrieves a single account.
type AccountFetcher interface {
	GetAccountInfo(ctx context.Context, pubkey string) (*solana.AccountInfo, error)
}

// Inspection is the decoded state of one bin array account.
type Inspection struct {
	Address    string
	BinArray   *dlmm.BinArray
	ZeroPrices []int // Positions of every zero price bin
}

// Inspect fetches and decodes a single bin array account owned by programID.
func Inspect(ctx context.Context, src AccountFetcher, programID solana.PublicKey, address string) (*Inspection, error) {
	info, err := src.GetAccountInfo(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("get account info: %w", err)
	}
	if info == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}
	if info.Owner != programID.String() {
		return nil, fmt.Errorf("%w: %s owned by %s", ErrWrongOwner, address, info.Owner)
	}

	data, err := info.DecodeData()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	ba, err := dlmm.ParseBinArray(data)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", address, err)
	}

	insp := &Inspection{Address: address, BinArray: ba}
	for i := range ba.Bins {
		if ba.Bins[i].Price.IsZero() {
			insp.ZeroPrices = append(insp.ZeroPrices, i)
		}
	}
	return insp, nil
}
