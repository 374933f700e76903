package solana

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// PublicKeySize is the length of an ed25519 public key or program address.
const PublicKeySize = 32

// PublicKey is a 32-byte Solana address.
type PublicKey [PublicKeySize]byte

// ParsePublicKey decodes a base58 address.
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	b, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("decode public key %q: %w", s, err)
	}
	if len(b) != PublicKeySize {
		return pk, fmt.Errorf("public key %q: expected %d bytes, got %d", s, PublicKeySize, len(b))
	}
	copy(pk[:], b)
	return pk, nil
}

// MustPublicKey is like ParsePublicKey but panics on error.
// Intended for package-level constants.
func MustPublicKey(s string) PublicKey {
	pk, err := ParsePublicKey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// String returns the base58 encoding.
func (k PublicKey) String() string {
	return base58.Encode(k[:])
}

// IsZero reports whether every byte is zero.
func (k PublicKey) IsZero() bool {
	return k == PublicKey{}
}

// MarshalText implements encoding.TextMarshaler.
func (k PublicKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *PublicKey) UnmarshalText(text []byte) error {
	pk, err := ParsePublicKey(string(text))
	if err != nil {
		return err
	}
	*k = pk
	return nil
}
