/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package config

import (
	"os"
	"testing"

	"github.com/wskdf/go-wskdf/internal/core"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"WSKDF_OPS_LIMIT", "WSKDF_MEM_LIMIT_KBYTES", "WSKDF_MEM_LIMIT",
		"WSKDF_THREADS", "WSKDF_VERBOSITY",
	} {
		// t.Setenv registers the restore; Unsetenv leaves the variable
		// genuinely absent for the test body.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.OpsLimit != core.DefaultOpsLimit {
		t.Errorf("ops limit = %d, want %d", cfg.OpsLimit, core.DefaultOpsLimit)
	}
	if cfg.MemLimitKiB != core.DefaultMemLimitKiB {
		t.Errorf("mem limit = %d, want %d", cfg.MemLimitKiB, core.DefaultMemLimitKiB)
	}
	if cfg.Threads < 1 {
		t.Errorf("threads = %d, want at least 1", cfg.Threads)
	}
	if cfg.Verbosity != "info" {
		t.Errorf("verbosity = %q, want info", cfg.Verbosity)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("WSKDF_OPS_LIMIT", "3")
	t.Setenv("WSKDF_MEM_LIMIT_KBYTES", "65536")
	t.Setenv("WSKDF_THREADS", "12")
	t.Setenv("WSKDF_VERBOSITY", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cost := cfg.Cost()
	if cost.OpsLimit != 3 || cost.MemLimitKiB != 65536 {
		t.Errorf("cost = %+v, want ops 3 / mem 65536", cost)
	}
	if cfg.Threads != 12 {
		t.Errorf("threads = %d, want 12", cfg.Threads)
	}
	if cfg.Verbosity != "debug" {
		t.Errorf("verbosity = %q, want debug", cfg.Verbosity)
	}
}

func TestLoad_HumanReadableMemLimit(t *testing.T) {
	clearEnv(t)
	t.Setenv("WSKDF_MEM_LIMIT", "64MiB")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MemLimitKiB != 64*1024 {
		t.Errorf("mem limit = %d KiB, want %d", cfg.MemLimitKiB, 64*1024)
	}
}

func TestLoad_BadMemLimit(t *testing.T) {
	clearEnv(t)
	t.Setenv("WSKDF_MEM_LIMIT", "lots")

	if _, err := Load(); err == nil {
		t.Error("Load accepted an unparseable WSKDF_MEM_LIMIT")
	}
}
