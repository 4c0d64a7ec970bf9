/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// preimage.go: Canonical preimage encoding and generation for go-wskdf
package core

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/wskdf/go-wskdf/internal/crypto"
)

const (
	// MinBits is the smallest supported preimage bit length.
	MinBits = 1

	// MaxBits is the largest supported preimage bit length. The cap at 63
	// (not 64) keeps preimage values representable in signed 64-bit
	// integers and preserves compatibility with existing preimage files.
	MaxBits = 63

	// PreimageSize is the fixed serialized width of a preimage in bytes.
	// Preimages are always written as 8 big-endian bytes regardless of
	// their bit length, so serialization never depends on n.
	PreimageSize = 8

	// PreimageHexLen is the length of a hex-encoded preimage.
	PreimageHexLen = 2 * PreimageSize

	// SaltSize is the required salt size in bytes.
	SaltSize = 16

	// SaltHexLen is the length of a hex-encoded salt.
	SaltHexLen = 2 * SaltSize
)

// ValidateBits checks that a preimage bit length is in [MinBits, MaxBits].
func ValidateBits(bits int) error {
	if bits < MinBits || bits > MaxBits {
		return fmt.Errorf("%w: bit length must be between %d and %d, got %d",
			crypto.ErrInvalidBits, MinBits, MaxBits, bits)
	}
	return nil
}

// PreimageRange returns the half-open interval [lo, hi) of valid preimages
// for the given bit length: all values with bit bits-1 set and no higher
// bit set.
func PreimageRange(bits int) (lo, hi uint64) {
	return 1 << (bits - 1), 1 << bits
}

// EncodePreimage serializes a preimage as 8 big-endian bytes. The same byte
// string is used both for preimage files and as the Argon2id password input.
func EncodePreimage(preimage uint64) []byte {
	buf := make([]byte, PreimageSize)
	binary.BigEndian.PutUint64(buf, preimage)
	return buf
}

// PreimageHex renders a preimage as exactly 16 lowercase hex characters.
func PreimageHex(preimage uint64) string {
	return hex.EncodeToString(EncodePreimage(preimage))
}

// ParsePreimageHex parses the 16-hex-character representation produced by
// PreimageHex back into an integer.
func ParsePreimageHex(s string) (uint64, error) {
	if len(s) != PreimageHexLen {
		return 0, fmt.Errorf("%w: preimage must be %d hex characters, got %d",
			crypto.ErrInvalidEncoding, PreimageHexLen, len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", crypto.ErrInvalidEncoding, err)
	}
	return binary.BigEndian.Uint64(raw), nil
}

// RandomPreimage draws a uniform preimage from [2^(bits-1), 2^bits) using
// the system entropy source: a fresh 64-bit value with bits >= n masked off
// and bit n-1 forced on.
func RandomPreimage(bits int) (uint64, error) {
	if err := ValidateBits(bits); err != nil {
		return 0, err
	}

	var buf [PreimageSize]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("failed to generate random preimage: %w", err)
	}
	v := binary.BigEndian.Uint64(buf[:])

	mask := uint64(1)<<bits - 1
	msb := uint64(1) << (bits - 1)
	return v&mask | msb, nil
}

// GenerateSalt generates a cryptographically secure random 16-byte salt.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// ValidateSalt checks that a salt has exactly the required size.
func ValidateSalt(salt []byte) error {
	if len(salt) != SaltSize {
		return fmt.Errorf("%w: salt must be exactly %d bytes, got %d",
			crypto.ErrInvalidSalt, SaltSize, len(salt))
	}
	return nil
}
