/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package wskdf implements deliberately weak and slow key derivation: a
// 32-byte symmetric key is derived from a short n-bit secret (the
// "preimage") with Argon2id tuned so each derivation takes tens of seconds.
//
// The point of being weak on purpose is recoverability. With a known
// preimage the key costs one derivation; with a lost preimage the key is
// still reachable by exhaustive search over the 2^(n-1) valid preimages,
// and the wall-clock cost of that search is predictable from n, the
// Argon2id cost parameters, and the available parallelism.
//
// # Deriving a key
//
//	salt, _ := wskdf.GenerateSalt()
//	preimage, _ := wskdf.RandomPreimage(20)
//
//	key, err := wskdf.DeriveKey(preimage, salt, wskdf.DefaultCost())
//	if err != nil {
//	    return err
//	}
//	defer wskdf.ZeroKey(key)
//
// Derivation is deterministic: the same (preimage, salt, cost) always
// yields the same key, with Argon2id parallelism pinned to a single lane
// so keys stay portable across machines and thread counts.
//
// # Finding a lost key
//
// The search engine drives a pool of workers over the preimage space,
// deriving each candidate's key and handing it to an oracle — typically an
// external command that tries the key against the ciphertext and answers
// through its exit status:
//
//	searcher := &wskdf.Searcher{
//	    Bits:     20,
//	    Threads:  8,
//	    Salt:     salt,
//	    Cost:     wskdf.DefaultCost(),
//	    Strategy: wskdf.StrategySystematic,
//	    Oracle:   wskdf.NewCommandOracle("./try-decrypt.sh", logger),
//	}
//	result, err := searcher.Search(ctx)
//	if err != nil {
//	    return err
//	}
//	defer result.Close()
//
// Systematic search partitions the space so no candidate is tried twice;
// random search samples independently per worker and suits uncoordinated
// machines. EstimateTable projects expected and percentile completion
// times for either strategy from a measured per-derivation time.
//
// # Security considerations
//
// This is not peer-reviewed cryptography and the derived keys are only as
// strong as 2^(n-1) Argon2id evaluations. Always zero key material after
// use, and size Threads*MemLimitKiB to the machine: every concurrent
// derivation allocates the full Argon2id memory cost.
package wskdf

import (
	"github.com/wskdf/go-wskdf/internal/core"
	"github.com/wskdf/go-wskdf/internal/crypto"
	"github.com/wskdf/go-wskdf/internal/oracle"
)

// Cost holds the Argon2id cost parameters (re-exported from internal/core).
type Cost = core.Cost

// Searcher runs the parallel preimage search (re-exported from internal/core).
type Searcher = core.Searcher

// Result is a successful search outcome (re-exported from internal/core).
type Result = core.Result

// Oracle decides whether a candidate key is correct (re-exported from internal/core).
type Oracle = core.Oracle

// OracleFunc adapts a function to the Oracle interface (re-exported from internal/core).
type OracleFunc = core.OracleFunc

// Strategy selects systematic or random search (re-exported from internal/core).
type Strategy = core.Strategy

// Estimate projects search cost for one bit length (re-exported from internal/core).
type Estimate = core.Estimate

const (
	StrategySystematic = core.StrategySystematic
	StrategyRandom     = core.StrategyRandom
)

// Re-export derivation constants from internal/core
const (
	MinBits            = core.MinBits
	MaxBits            = core.MaxBits
	SaltSize           = core.SaltSize
	KeySize            = core.KeySize
	DefaultOpsLimit    = core.DefaultOpsLimit
	DefaultMemLimitKiB = core.DefaultMemLimitKiB
	Lanes              = core.Lanes
)

// DefaultCost returns the release-mode Argon2id cost parameters.
var DefaultCost = core.DefaultCost

// DeriveKey derives the 32-byte key for a preimage (re-exported from internal/core).
var DeriveKey = core.DeriveKey

// RandomPreimage draws a uniform preimage from [2^(n-1), 2^n) (re-exported from internal/core).
var RandomPreimage = core.RandomPreimage

// GenerateSalt generates a random 16-byte salt (re-exported from internal/core).
var GenerateSalt = core.GenerateSalt

// PreimageHex renders a preimage as 16 lowercase hex characters (re-exported from internal/core).
var PreimageHex = core.PreimageHex

// ParsePreimageHex parses the 16-hex-character preimage form (re-exported from internal/core).
var ParsePreimageHex = core.ParsePreimageHex

// EstimateBits projects the search cost of one bit length (re-exported from internal/core).
var EstimateBits = core.EstimateBits

// EstimateTable projects the search cost of every bit length up to a maximum
// (re-exported from internal/core).
var EstimateTable = core.EstimateTable

// CommandOracle runs an external command per candidate key (re-exported from
// internal/oracle).
type CommandOracle = oracle.Command

// NewCommandOracle builds an oracle that pipes each candidate key to a shell
// command and reads the verdict from its exit status (re-exported from
// internal/oracle).
var NewCommandOracle = oracle.New

// ZeroKey securely zeroes key material. Always use defer ZeroKey(key) after derivation.
var ZeroKey = crypto.Wipe
