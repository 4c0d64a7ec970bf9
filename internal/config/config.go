/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package config loads environment-variable defaults for the CLI. Flags
// always win; these only replace the built-in defaults.
package config

import (
	"fmt"
	"math"
	"os"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/kelseyhightower/envconfig"

	"github.com/wskdf/go-wskdf/internal/core"
)

// Config carries the tunable defaults.
type Config struct {
	OpsLimit    uint32 `envconfig:"WSKDF_OPS_LIMIT"`
	MemLimitKiB uint32 `envconfig:"WSKDF_MEM_LIMIT_KBYTES"`
	Threads     int    `envconfig:"WSKDF_THREADS"`
	Verbosity   string `envconfig:"WSKDF_VERBOSITY" default:"info"`
}

// Load reads the environment and fills in release defaults for anything
// unset. WSKDF_MEM_LIMIT accepts a human-readable size ("4GiB") and takes
// precedence over WSKDF_MEM_LIMIT_KBYTES.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.OpsLimit == 0 {
		cfg.OpsLimit = core.DefaultOpsLimit
	}
	if cfg.MemLimitKiB == 0 {
		cfg.MemLimitKiB = core.DefaultMemLimitKiB
	}
	if cfg.Threads == 0 {
		cfg.Threads = runtime.NumCPU()
	}

	if env, exists := os.LookupEnv("WSKDF_MEM_LIMIT"); exists {
		size, err := humanize.ParseBytes(env)
		if err != nil {
			return nil, fmt.Errorf("WSKDF_MEM_LIMIT: %w", err)
		}
		kib := size / 1024
		if kib == 0 || kib > math.MaxUint32 {
			return nil, fmt.Errorf("WSKDF_MEM_LIMIT out of range: %s", env)
		}
		cfg.MemLimitKiB = uint32(kib)
	}

	return cfg, nil
}

// Cost returns the configured Argon2id cost parameters.
func (c *Config) Cost() core.Cost {
	return core.Cost{OpsLimit: c.OpsLimit, MemLimitKiB: c.MemLimitKiB}
}
