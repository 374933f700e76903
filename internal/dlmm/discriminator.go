package dlmm

import (
	"encoding/hex"
	"fmt"
)

// DiscriminatorSize is the length of the account type tag.
const DiscriminatorSize = 8

// Discriminator is the type tag that prefixes every program account.
type Discriminator [DiscriminatorSize]byte

// BinArrayDiscriminator tags BinArray accounts.
var BinArrayDiscriminator = Discriminator{92, 142, 92, 220, 5, 148, 70, 181}

// String returns the hex encoding.
func (d Discriminator) String() string {
	return hex.EncodeToString(d[:])
}

// Bytes returns a copy of the tag.
func (d Discriminator) Bytes() []byte {
	b := make([]byte, DiscriminatorSize)
	copy(b, d[:])
	return b
}

// SplitDiscriminator separates the type tag from the payload.
// The payload aliases data.
func SplitDiscriminator(data []byte) (Discriminator, []byte, error) {
	var d Discriminator
	if len(data) < DiscriminatorSize {
		return d, nil, &DecodeError{
			Err:  ErrSizeMismatch,
			What: "discriminator",
			Want: DiscriminatorSize,
			Got:  len(data),
		}
	}
	copy(d[:], data[:DiscriminatorSize])
	return d, data[DiscriminatorSize:], nil
}

// ParseBinArray validates the BinArray tag and decodes the payload.
func ParseBinArray(data []byte) (*BinArray, error) {
	tag, payload, err := SplitDiscriminator(data)
	if err != nil {
		return nil, err
	}
	if tag != BinArrayDiscriminator {
		return nil, &DecodeError{
			Err:  ErrDiscriminatorMismatch,
			What: fmt.Sprintf("discriminator %s, want %s", tag, BinArrayDiscriminator),
		}
	}
	return Decode(payload)
}
