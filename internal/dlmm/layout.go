// Package dlmm decodes Meteora DLMM program accounts.
//
// Accounts are an 8-byte discriminator followed by a fixed little-endian
// layout. Decoding always copies into owned structs.
package dlmm

import "dlmm-binscan/internal/solana"

// ProgramID is the Meteora DLMM program.
const ProgramID = "LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo"

// MaxBinPerArray is the number of bins in one BinArray.
const MaxBinPerArray = 70

// NumRewards is the number of reward channels tracked per bin.
const NumRewards = 2

// BinArray field offsets, relative to the end of the discriminator.
const (
	offIndex   = 0
	offVersion = 8
	offPadding = 9
	offLbPair  = 16
	offBins    = offLbPair + solana.PublicKeySize
)

// Bin field offsets, relative to the start of the bin.
const (
	binOffAmountX                  = 0
	binOffAmountY                  = 8
	binOffPrice                    = 16
	binOffLiquiditySupply          = 32
	binOffRewardPerTokenStored     = 48
	binOffFeeAmountXPerTokenStored = binOffRewardPerTokenStored + NumRewards*16
	binOffFeeAmountYPerTokenStored = binOffFeeAmountXPerTokenStored + 16
	binOffAmountXIn                = binOffFeeAmountYPerTokenStored + 16
	binOffAmountYIn                = binOffAmountXIn + 16
)

// Layout sizes.
const (
	BinSize      = binOffAmountYIn + 16
	BinArraySize = offBins + MaxBinPerArray*BinSize
	AccountSize  = DiscriminatorSize + BinArraySize
)
