/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// benchmark.go: Derivation throughput measurement for go-wskdf
package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wskdf/go-wskdf/internal/crypto"
)

// BenchResult is the outcome of a benchmark run: iterations*threads
// derivations executed on threads parallel workers.
type BenchResult struct {
	Iterations int
	Threads    int
	Cost       Cost

	// Total is the wall-clock time for the whole run.
	Total time.Duration

	// PerDerivation is the observed wall-clock cost of one derivation at
	// this concurrency level (Total / Iterations). This is the `t` the
	// estimator expects.
	PerDerivation time.Duration
}

// Derivations returns the total number of derivations performed.
func (r *BenchResult) Derivations() int {
	return r.Iterations * r.Threads
}

// PerHour returns the sustained derivation throughput per hour.
func (r *BenchResult) PerHour() float64 {
	if r.Total <= 0 {
		return 0
	}
	return float64(r.Derivations()) / r.Total.Hours()
}

// RunBenchmark measures derivation throughput: each of threads workers
// derives keys for iterations random preimages with the given cost, all in
// parallel, and the wall-clock total is divided back down to a
// per-derivation figure. Random preimages keep the memory access patterns
// honest; the derived keys are discarded and zeroed.
func RunBenchmark(ctx context.Context, iterations, threads int, cost Cost, logger *slog.Logger) (*BenchResult, error) {
	if iterations < 1 {
		return nil, fmt.Errorf("iterations must be at least 1, got %d", iterations)
	}
	if threads < 1 {
		return nil, fmt.Errorf("thread count must be at least 1, got %d", threads)
	}
	if err := cost.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	salt, err := GenerateSalt()
	if err != nil {
		return nil, err
	}

	// Benchmark preimages use the widest space so candidate values are
	// representative of any bit length.
	const benchBits = MaxBits

	logger.Info("Benchmarking key derivation",
		"iterations", iterations, "threads", threads,
		"ops_limit", cost.OpsLimit, "mem_limit_kib", cost.MemLimitKiB)

	start := time.Now()

	var wg sync.WaitGroup
	errCh := make(chan error, threads)
	for w := 0; w < threads; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				if ctx.Err() != nil {
					errCh <- fmt.Errorf("%w: %v", crypto.ErrCancelled, ctx.Err())
					return
				}
				preimage, err := RandomPreimage(benchBits)
				if err != nil {
					errCh <- crypto.NewSearchError("benchmark", w, err)
					return
				}
				key, err := DeriveKey(preimage, salt, cost)
				if err != nil {
					errCh <- crypto.NewSearchError("benchmark", w, err)
					return
				}
				crypto.Wipe(key)
				logger.Debug("benchmark derivation done", "worker", w, "iteration", i)
			}
		}(w)
	}
	wg.Wait()
	close(errCh)
	if err := <-errCh; err != nil {
		return nil, err
	}

	total := time.Since(start)
	return &BenchResult{
		Iterations:    iterations,
		Threads:       threads,
		Cost:          cost,
		Total:         total,
		PerDerivation: total / time.Duration(iterations),
	}, nil
}
