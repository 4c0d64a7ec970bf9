/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package core

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/wskdf/go-wskdf/internal/crypto"
)

func TestRunBenchmark(t *testing.T) {
	result, err := RunBenchmark(context.Background(), 2, 2, testCost, testLogger(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("RunBenchmark failed: %v", err)
	}

	if result.Derivations() != 4 {
		t.Errorf("Derivations() = %d, want 4", result.Derivations())
	}
	if result.Total <= 0 {
		t.Error("total duration not positive")
	}
	if result.PerDerivation <= 0 {
		t.Error("per-derivation duration not positive")
	}
	if result.PerHour() <= 0 {
		t.Error("throughput not positive")
	}
}

func TestRunBenchmark_InvalidArguments(t *testing.T) {
	logger := testLogger(&bytes.Buffer{})

	if _, err := RunBenchmark(context.Background(), 0, 1, testCost, logger); err == nil {
		t.Error("zero iterations accepted")
	}
	if _, err := RunBenchmark(context.Background(), 1, 0, testCost, logger); err == nil {
		t.Error("zero threads accepted")
	}
	if _, err := RunBenchmark(context.Background(), 1, 1, Cost{}, logger); !errors.Is(err, crypto.ErrCostTooLow) {
		t.Errorf("zero cost error = %v, want ErrCostTooLow", err)
	}
}

func TestRunBenchmark_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := RunBenchmark(ctx, 100, 2, testCost, testLogger(&bytes.Buffer{})); !errors.Is(err, crypto.ErrCancelled) {
		t.Errorf("cancelled benchmark error = %v, want ErrCancelled", err)
	}
}
