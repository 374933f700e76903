package dlmm

import (
	"encoding/binary"

	"lukechampine.com/uint128"

	"dlmm-binscan/internal/solana"
)

// Bin is the per-price-slot accounting state.
type Bin struct {
	AmountX                  uint64 // Token X, protocol fees excluded
	AmountY                  uint64 // Token Y, protocol fees excluded
	Price                    uint128.Uint128
	LiquiditySupply          uint128.Uint128 // LP supply, q-number
	RewardPerTokenStored     [NumRewards]uint128.Uint128
	FeeAmountXPerTokenStored uint128.Uint128
	FeeAmountYPerTokenStored uint128.Uint128
	AmountXIn                uint128.Uint128 // Tracking only
	AmountYIn                uint128.Uint128 // Tracking only
}

// BinArray is a decoded BinArray account without its discriminator.
type BinArray struct {
	Index   int64
	Version uint8
	Padding [7]byte
	LbPair  solana.PublicKey
	Bins    [MaxBinPerArray]Bin
}

// Decode unpacks a BinArray payload. buf must be exactly BinArraySize bytes.
func Decode(buf []byte) (*BinArray, error) {
	if len(buf) != BinArraySize {
		return nil, &DecodeError{
			Err:  ErrSizeMismatch,
			What: "bin array",
			Want: BinArraySize,
			Got:  len(buf),
		}
	}

	ba := &BinArray{
		Index:   int64(binary.LittleEndian.Uint64(buf[offIndex:])),
		Version: buf[offVersion],
	}
	copy(ba.Padding[:], buf[offPadding:offLbPair])
	copy(ba.LbPair[:], buf[offLbPair:offBins])

	for i := range ba.Bins {
		start := offBins + i*BinSize
		decodeBin(buf[start:start+BinSize], &ba.Bins[i])
	}

	return ba, nil
}

func decodeBin(b []byte, bin *Bin) {
	bin.AmountX = binary.LittleEndian.Uint64(b[binOffAmountX:])
	bin.AmountY = binary.LittleEndian.Uint64(b[binOffAmountY:])
	bin.Price = uint128.FromBytes(b[binOffPrice:])
	bin.LiquiditySupply = uint128.FromBytes(b[binOffLiquiditySupply:])
	for r := range bin.RewardPerTokenStored {
		bin.RewardPerTokenStored[r] = uint128.FromBytes(b[binOffRewardPerTokenStored+r*16:])
	}
	bin.FeeAmountXPerTokenStored = uint128.FromBytes(b[binOffFeeAmountXPerTokenStored:])
	bin.FeeAmountYPerTokenStored = uint128.FromBytes(b[binOffFeeAmountYPerTokenStored:])
	bin.AmountXIn = uint128.FromBytes(b[binOffAmountXIn:])
	bin.AmountYIn = uint128.FromBytes(b[binOffAmountYIn:])
}

// Encode packs the BinArray into its BinArraySize-byte layout.
func (ba *BinArray) Encode() []byte {
	buf := make([]byte, BinArraySize)
	binary.LittleEndian.PutUint64(buf[offIndex:], uint64(ba.Index))
	buf[offVersion] = ba.Version
	copy(buf[offPadding:offLbPair], ba.Padding[:])
	copy(buf[offLbPair:offBins], ba.LbPair[:])

	for i := range ba.Bins {
		start := offBins + i*BinSize
		encodeBin(buf[start:start+BinSize], &ba.Bins[i])
	}
	return buf
}

// EncodeAccount returns the full account data, discriminator included.
func (ba *BinArray) EncodeAccount() []byte {
	return append(BinArrayDiscriminator.Bytes(), ba.Encode()...)
}

func encodeBin(b []byte, bin *Bin) {
	binary.LittleEndian.PutUint64(b[binOffAmountX:], bin.AmountX)
	binary.LittleEndian.PutUint64(b[binOffAmountY:], bin.AmountY)
	bin.Price.PutBytes(b[binOffPrice:])
	bin.LiquiditySupply.PutBytes(b[binOffLiquiditySupply:])
	for r := range bin.RewardPerTokenStored {
		bin.RewardPerTokenStored[r].PutBytes(b[binOffRewardPerTokenStored+r*16:])
	}
	bin.FeeAmountXPerTokenStored.PutBytes(b[binOffFeeAmountXPerTokenStored:])
	bin.FeeAmountYPerTokenStored.PutBytes(b[binOffFeeAmountYPerTokenStored:])
	bin.AmountXIn.PutBytes(b[binOffAmountXIn:])
	bin.AmountYIn.PutBytes(b[binOffAmountYIn:])
}

// LowerBinID returns the id of the first bin covered by this array.
func (ba *BinArray) LowerBinID() int64 {
	return ba.Index * MaxBinPerArray
}

// BinID returns the pool-wide bin id of the bin at position i.
func (ba *BinArray) BinID(i int) int64 {
	return ba.LowerBinID() + int64(i)
}

// FirstZeroPrice returns the position of the first bin whose price is zero.
func FirstZeroPrice(ba *BinArray) (int, bool) {
	for i := range ba.Bins {
		if ba.Bins[i].Price.IsZero() {
			return i, true
		}
	}
	return -1, false
}

// HasZeroPrice reports whether any bin has a zero price.
func HasZeroPrice(ba *BinArray) bool {
	_, ok := FirstZeroPrice(ba)
	return ok
}

// BinArrayPDASeeds returns the seeds of the BinArray address for lbPair and index.
func BinArrayPDASeeds(lbPair solana.PublicKey, index int64) [][]byte {
	idx := make([]byte, 8)
	binary.LittleEndian.PutUint64(idx, uint64(index))
	return [][]byte{[]byte("bin_array"), lbPair[:], idx}
}

// DeriveBinArrayAddress returns the canonical BinArray address.
func DeriveBinArrayAddress(programID, lbPair solana.PublicKey, index int64) (solana.PublicKey, error) {
	pk, _, err := solana.FindProgramAddress(BinArrayPDASeeds(lbPair, index), programID)
	return pk, err
}
