/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// search.go: Parallel brute-force preimage search for go-wskdf
package core

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	mathrand "math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/wskdf/go-wskdf/internal/crypto"
)

// Oracle decides whether a candidate key is the right one. TryKey receives
// the 64-hex-character key and reports acceptance; a non-nil error means the
// oracle itself failed (could not spawn, died on a signal), not a rejection.
type Oracle interface {
	TryKey(ctx context.Context, keyHex string) (accepted bool, err error)
}

// OracleFunc adapts a plain function to the Oracle interface.
type OracleFunc func(ctx context.Context, keyHex string) (bool, error)

func (f OracleFunc) TryKey(ctx context.Context, keyHex string) (bool, error) {
	return f(ctx, keyHex)
}

// Strategy selects how the candidate space is iterated.
type Strategy int

const (
	// StrategySystematic partitions the space into contiguous per-worker
	// ranges; no candidate is ever evaluated twice.
	StrategySystematic Strategy = iota

	// StrategyRandom has each worker sample candidates independently and
	// uniformly, with replacement. Duplicate work is possible, but workers
	// need no coordination and the strategy decomposes across machines.
	StrategyRandom
)

// String returns the strategy name as accepted by ParseStrategy.
func (s Strategy) String() string {
	switch s {
	case StrategySystematic:
		return "systematic"
	case StrategyRandom:
		return "random"
	default:
		return "unknown"
	}
}

// ParseStrategy parses a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "systematic":
		return StrategySystematic, nil
	case "random":
		return StrategyRandom, nil
	default:
		return 0, fmt.Errorf("unknown search strategy %q (want systematic or random)", s)
	}
}

// DefaultOracleErrorThreshold is the number of consecutive oracle failures
// at which a worker aborts the run as unreliable. One-off crashes
// are absorbed as rejections; a systemic failure must not silently turn
// every candidate into a false negative.
const DefaultOracleErrorThreshold = 16

// Result is a successful search outcome. The key lives in locked memory;
// call Close once the key has been copied out or written.
type Result struct {
	Preimage uint64

	key *crypto.KeyBuffer
}

// Key returns the 32-byte derived key. The slice aliases locked memory owned
// by the Result; it is all zeros after Close.
func (r *Result) Key() []byte {
	return r.key.Bytes()
}

// Close zeroes and releases the key material.
func (r *Result) Close() {
	if r.key != nil {
		r.key.Wipe()
	}
}

// Searcher runs the parallel brute-force search over the preimage space
// [2^(Bits-1), 2^Bits).
//
// A random-strategy search never terminates on its own: the space is sampled
// with replacement and exhaustion cannot be detected. Callers must bound it
// with the context (timeout or signal).
type Searcher struct {
	// Bits is the preimage bit length, in [MinBits, MaxBits].
	Bits int

	// Threads is the number of parallel workers. Each concurrent
	// derivation allocates Cost.MemLimitKiB of memory, so the operator
	// must keep Threads*MemLimitKiB within available RAM.
	Threads int

	// Salt is the shared 16-byte salt.
	Salt []byte

	// Cost holds the Argon2id cost parameters.
	Cost Cost

	// Strategy selects systematic partitioning or random sampling.
	Strategy Strategy

	// Oracle is consulted once per candidate key.
	Oracle Oracle

	// Logger receives progress output. Defaults to slog.Default.
	Logger *slog.Logger

	// ErrorThreshold overrides DefaultOracleErrorThreshold when positive.
	ErrorThreshold int
}

// searchState is the shared state of one Search run: the derived context
// that stops all workers, the first-writer-wins outcome slot, and the cheap
// found flag workers poll between steps.
type searchState struct {
	cfg     *Searcher
	ctx     context.Context
	cancel  context.CancelFunc
	log     *slog.Logger
	salt    *crypto.KeyBuffer
	outcome atomic.Pointer[Result]
	found   atomic.Bool
}

// Search runs the search until a key is found, the space is exhausted
// (systematic only), the oracle proves unreliable, or ctx is cancelled.
func (s *Searcher) Search(ctx context.Context) (*Result, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	saltBuf := crypto.HoldSalt(s.Salt)
	defer saltBuf.Wipe()

	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	st := &searchState{
		cfg:    s,
		ctx:    searchCtx,
		cancel: cancel,
		log:    logger,
		salt:   saltBuf,
	}

	logger.Info(fmt.Sprintf("Using %d worker threads", s.Threads))
	logger.Info("Starting parallel search",
		"bits", s.Bits, "strategy", s.Strategy.String())

	lo, hi := PreimageRange(s.Bits)
	parts := partitions(lo, hi, s.Threads)

	var wg sync.WaitGroup
	errCh := make(chan error, s.Threads)
	for w := 0; w < s.Threads; w++ {
		next, err := s.candidateSource(parts[w])
		if err != nil {
			cancel()
			wg.Wait()
			return nil, err
		}

		wg.Add(1)
		go func(w int, next func() (uint64, bool)) {
			defer wg.Done()
			if err := st.worker(w, next); err != nil {
				errCh <- err
			}
		}(w, next)
	}
	wg.Wait()
	close(errCh)

	// Found takes precedence over every other terminal condition.
	if res := st.outcome.Load(); res != nil {
		return res, nil
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %v", crypto.ErrCancelled, ctx.Err())
	}
	return nil, fmt.Errorf("%w: all %d candidates rejected",
		crypto.ErrExhausted, hi-lo)
}

func (s *Searcher) validate() error {
	if err := ValidateBits(s.Bits); err != nil {
		return err
	}
	if err := ValidateSalt(s.Salt); err != nil {
		return err
	}
	if err := s.Cost.Validate(); err != nil {
		return err
	}
	if s.Threads < 1 {
		return fmt.Errorf("thread count must be at least 1, got %d", s.Threads)
	}
	if s.Oracle == nil {
		return fmt.Errorf("no oracle configured")
	}

	// Refuse configurations whose aggregate allocation cannot possibly
	// fit an address space; anything subtler is the operator's call.
	memKiB := uint64(s.Cost.MemLimitKiB)
	if memKiB > 0 && uint64(s.Threads) > (math.MaxInt64/1024)/memKiB {
		return fmt.Errorf("%w: %d threads x %d KiB exceeds addressable memory",
			crypto.ErrOutOfMemory, s.Threads, s.Cost.MemLimitKiB)
	}
	return nil
}

func (s *Searcher) errorThreshold() int {
	if s.ErrorThreshold > 0 {
		return s.ErrorThreshold
	}
	return DefaultOracleErrorThreshold
}

// candidateSource builds a worker's candidate iterator: a range cursor for
// the systematic strategy, an independent ChaCha8 sampler for the random
// strategy. Each source is owned by exactly one worker.
func (s *Searcher) candidateSource(part partition) (func() (uint64, bool), error) {
	switch s.Strategy {
	case StrategySystematic:
		cur := part.lo
		return func() (uint64, bool) {
			if cur >= part.hi {
				return 0, false
			}
			p := cur
			cur++
			return p, true
		}, nil

	case StrategyRandom:
		var seed [32]byte
		if _, err := rand.Read(seed[:]); err != nil {
			return nil, crypto.WrapError("seed worker generator", err)
		}
		rng := mathrand.NewChaCha8(seed)
		mask := uint64(1)<<s.Bits - 1
		msb := uint64(1) << (s.Bits - 1)
		return func() (uint64, bool) {
			return rng.Uint64()&mask | msb, true
		}, nil

	default:
		return nil, fmt.Errorf("unknown search strategy %d", s.Strategy)
	}
}

// worker is the per-thread search loop: pull a candidate, derive, consult
// the oracle, and either publish the result or move on. Returning nil means
// the worker stopped cleanly (found elsewhere, cancelled, or partition
// exhausted); a non-nil return is a terminal error that stops the run.
func (st *searchState) worker(w int, next func() (uint64, bool)) error {
	errStreak := 0
	for {
		if st.found.Load() || st.ctx.Err() != nil {
			return nil
		}

		candidate, ok := next()
		if !ok {
			// Partition exhausted; other workers may still be running.
			return nil
		}

		st.log.Info("Deriving key for " + PreimageHex(candidate))
		key, err := DeriveKey(candidate, st.salt.Bytes(), st.cfg.Cost)
		if err != nil {
			st.cancel()
			return crypto.NewSearchError("derive", w, err)
		}

		// Re-check before the expensive blocking oracle call; a peer may
		// have won during the derivation.
		if st.found.Load() {
			crypto.Wipe(key)
			return nil
		}

		keyHex := hex.EncodeToString(key)
		accepted, oerr := st.cfg.Oracle.TryKey(st.ctx, keyHex)

		switch {
		case oerr != nil && st.ctx.Err() != nil:
			// Cancelled while the oracle was running; verdict discarded.
			crypto.Wipe(key)
			return nil

		case oerr != nil:
			crypto.Wipe(key)
			errStreak++
			st.log.Warn("oracle failed, treating as reject",
				"worker", w, "consecutive", errStreak, "err", oerr)
			if errStreak >= st.cfg.errorThreshold() {
				st.cancel()
				return crypto.NewSearchError("oracle", w,
					fmt.Errorf("%w: %d consecutive failures, last: %v",
						crypto.ErrOracleUnreliable, errStreak, oerr))
			}

		case accepted:
			// HoldKey wipes the worker's copy; the Result owns the only
			// live one from here.
			res := &Result{Preimage: candidate, key: crypto.HoldKey(key)}
			if st.outcome.CompareAndSwap(nil, res) {
				st.found.Store(true)
				st.log.Info("Found key!")
				st.cancel()
			} else {
				// A peer won the swap first; this duplicate is dropped.
				res.Close()
			}
			return nil

		default:
			crypto.Wipe(key)
			errStreak = 0
		}
	}
}

// partition is a worker's contiguous half-open candidate range.
type partition struct {
	lo, hi uint64
}

// partitions splits [lo, hi) into n contiguous ranges whose sizes differ by
// at most one, covering the interval exactly with no overlap. Ranges beyond
// the interval size come out empty.
func partitions(lo, hi uint64, n int) []partition {
	size := hi - lo
	base := size / uint64(n)
	rem := size % uint64(n)

	out := make([]partition, n)
	start := lo
	for i := range out {
		count := base
		if uint64(i) < rem {
			count++
		}
		out[i] = partition{lo: start, hi: start + count}
		start += count
	}
	return out
}
