/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// derive.go: Argon2id key derivation for go-wskdf
package core

import (
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/wskdf/go-wskdf/internal/crypto"
)

const (
	// KeySize is the derived key size in bytes.
	KeySize = 32

	// KeyHexLen is the length of a hex-encoded key.
	KeyHexLen = 2 * KeySize

	// DefaultOpsLimit is the default Argon2id iteration count. Together
	// with DefaultMemLimitKiB it yields roughly 30 seconds per derivation
	// on a 16-core desktop.
	DefaultOpsLimit = 7

	// DefaultMemLimitKiB is the default Argon2id memory cost: 4 GiB.
	DefaultMemLimitKiB = 4 * 1024 * 1024

	// Lanes is the Argon2id parallelism degree. It is fixed at 1 — the
	// single-lane layout libsodium's argon2id uses — and is deliberately
	// not configurable: keys derived with a different lane count are
	// different keys, so this value must never change.
	Lanes = 1

	// MinMemLimitKiB is the smallest memory cost Argon2id accepts with a
	// single lane (8 KiB per lane).
	MinMemLimitKiB = 8 * Lanes
)

// Cost holds the Argon2id cost parameters for a derivation.
type Cost struct {
	// OpsLimit is the iteration (time) cost. Must be at least 1.
	OpsLimit uint32

	// MemLimitKiB is the memory cost in kibibytes.
	MemLimitKiB uint32
}

// DefaultCost returns the release-mode cost parameters.
func DefaultCost() Cost {
	return Cost{OpsLimit: DefaultOpsLimit, MemLimitKiB: DefaultMemLimitKiB}
}

// Validate checks the cost parameters against the Argon2id minimums.
func (c Cost) Validate() error {
	if c.OpsLimit < 1 {
		return fmt.Errorf("%w: ops limit must be at least 1, got %d",
			crypto.ErrCostTooLow, c.OpsLimit)
	}
	if c.MemLimitKiB < MinMemLimitKiB {
		return fmt.Errorf("%w: memory limit must be at least %d KiB, got %d",
			crypto.ErrCostTooLow, MinMemLimitKiB, c.MemLimitKiB)
	}
	return nil
}

// DeriveKey derives the 32-byte key for a preimage with Argon2id.
//
// The password input is the 8-byte big-endian encoding of the preimage, the
// salt is the fixed 16-byte salt, and parallelism is fixed at Lanes. The
// function is pure: identical (preimage, salt, cost) inputs always produce
// identical key bytes, across platforms and thread counts.
//
// The caller should wipe the returned key with crypto.Wipe once done.
func DeriveKey(preimage uint64, salt []byte, cost Cost) ([]byte, error) {
	if err := ValidateSalt(salt); err != nil {
		return nil, err
	}
	if err := cost.Validate(); err != nil {
		return nil, err
	}

	key := argon2.IDKey(EncodePreimage(preimage), salt, cost.OpsLimit, cost.MemLimitKiB, Lanes, KeySize)
	return key, nil
}
