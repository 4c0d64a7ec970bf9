/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/wskdf/go-wskdf/internal/config"
	"github.com/wskdf/go-wskdf/internal/core"
	"github.com/wskdf/go-wskdf/internal/crypto"
	"github.com/wskdf/go-wskdf/internal/keyfile"
	"github.com/wskdf/go-wskdf/internal/oracle"
)

func costFlags(cfg *config.Config) []cli.Flag {
	return []cli.Flag{
		&cli.UintFlag{
			Name:    "ops-limit",
			Usage:   "Argon2id iteration count",
			Value:   uint(cfg.OpsLimit),
			EnvVars: []string{"WSKDF_OPS_LIMIT"},
		},
		&cli.UintFlag{
			Name:    "mem-limit-kbytes",
			Usage:   "Argon2id memory cost in KiB",
			Value:   uint(cfg.MemLimitKiB),
			EnvVars: []string{"WSKDF_MEM_LIMIT_KBYTES"},
		},
	}
}

func costFromFlags(cliCtx *cli.Context) core.Cost {
	return core.Cost{
		OpsLimit:    uint32(cliCtx.Uint("ops-limit")),
		MemLimitKiB: uint32(cliCtx.Uint("mem-limit-kbytes")),
	}
}

func generateSaltCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "generate-salt",
		Usage: "generate a random 16-byte salt",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "output",
				Usage:    "salt output path, - for stdout",
				Required: true,
			},
		},
		Action: func(cliCtx *cli.Context) error {
			salt, err := core.GenerateSalt()
			if err != nil {
				return err
			}
			return keyfile.WriteSalt(cliCtx.String("output"), salt)
		},
	}
}

func outputRandomKeyCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "output-random-key",
		Usage: "draw a random n-bit preimage and derive its key",
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:     "n-bits",
				Aliases:  []string{"n"},
				Usage:    "preimage bit length (1-63)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "preimage-output",
				Usage:    "preimage output path, - for stdout",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "key-output",
				Usage:    "key output path, - for stdout",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "salt-input",
				Usage:    "salt input path, - for stdin",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "params-output",
				Usage: "optional JSON parameter file output path",
			},
		}, costFlags(cfg)...),
		Action: func(cliCtx *cli.Context) error {
			logger, err := newLogger(cliCtx)
			if err != nil {
				return err
			}

			bits := cliCtx.Int("n-bits")
			cost := costFromFlags(cliCtx)
			salt, err := keyfile.ReadSalt(cliCtx.String("salt-input"))
			if err != nil {
				return err
			}

			preimage, err := core.RandomPreimage(bits)
			if err != nil {
				return err
			}

			logger.Info("Deriving key for " + core.PreimageHex(preimage))
			key, err := core.DeriveKey(preimage, salt, cost)
			if err != nil {
				return err
			}
			defer crypto.Wipe(key)

			if err := keyfile.WritePreimage(cliCtx.String("preimage-output"), preimage); err != nil {
				return err
			}
			if err := keyfile.WriteKey(cliCtx.String("key-output"), key); err != nil {
				return err
			}
			if path := cliCtx.String("params-output"); path != "" {
				params := keyfile.Params{
					NBits:       bits,
					OpsLimit:    cost.OpsLimit,
					MemLimitKiB: cost.MemLimitKiB,
					SaltHex:     hex.EncodeToString(salt),
				}
				if err := keyfile.WriteParams(path, params); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func deriveKeyCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "derive-key",
		Usage: "derive the key for an existing preimage",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "preimage-input",
				Usage:    "preimage input path, - for stdin",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "key-output",
				Usage:    "key output path, - for stdout",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "salt-input",
				Usage:    "salt input path, - for stdin",
				Required: true,
			},
		}, costFlags(cfg)...),
		Action: func(cliCtx *cli.Context) error {
			logger, err := newLogger(cliCtx)
			if err != nil {
				return err
			}

			salt, err := keyfile.ReadSalt(cliCtx.String("salt-input"))
			if err != nil {
				return err
			}
			preimage, err := keyfile.ReadPreimage(cliCtx.String("preimage-input"))
			if err != nil {
				return err
			}

			logger.Info("Deriving key for " + core.PreimageHex(preimage))
			key, err := core.DeriveKey(preimage, salt, costFromFlags(cliCtx))
			if err != nil {
				return err
			}
			defer crypto.Wipe(key)

			return keyfile.WriteKey(cliCtx.String("key-output"), key)
		},
	}
}

func findKeyCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "find-key",
		Usage: "brute-force the preimage space until the oracle accepts a key",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "command",
				Usage:    "oracle command run per candidate; gets the hex key on stdin, exit 0 accepts",
				Required: true,
			},
			&cli.IntFlag{
				Name:     "n-bits",
				Aliases:  []string{"n"},
				Usage:    "preimage bit length (1-63)",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "threads",
				Aliases: []string{"t"},
				Usage:   "number of parallel workers",
				Value:   cfg.Threads,
				EnvVars: []string{"WSKDF_THREADS"},
			},
			&cli.StringFlag{
				Name:  "strategy",
				Usage: "search strategy: systematic or random",
				Value: core.StrategySystematic.String(),
			},
			&cli.StringFlag{
				Name:     "preimage-output",
				Usage:    "found preimage output path, - for stdout",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "key-output",
				Usage:    "found key output path, - for stdout",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "salt-input",
				Usage:    "salt input path, - for stdin",
				Required: true,
			},
		}, costFlags(cfg)...),
		Action: func(cliCtx *cli.Context) error {
			logger, err := newLogger(cliCtx)
			if err != nil {
				return err
			}

			strategy, err := core.ParseStrategy(cliCtx.String("strategy"))
			if err != nil {
				return err
			}
			salt, err := keyfile.ReadSalt(cliCtx.String("salt-input"))
			if err != nil {
				return err
			}

			searcher := &core.Searcher{
				Bits:     cliCtx.Int("n-bits"),
				Threads:  cliCtx.Int("threads"),
				Salt:     salt,
				Cost:     costFromFlags(cliCtx),
				Strategy: strategy,
				Oracle:   oracle.New(cliCtx.String("command"), logger),
				Logger:   logger,
			}

			result, err := searcher.Search(cliCtx.Context)
			if err != nil {
				return err
			}
			defer result.Close()

			if err := keyfile.WritePreimage(cliCtx.String("preimage-output"), result.Preimage); err != nil {
				return err
			}
			return keyfile.WriteKey(cliCtx.String("key-output"), result.Key())
		},
	}
}

func benchmarkCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "benchmark",
		Usage: "measure derivation throughput and project search times",
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:    "iterations",
				Aliases: []string{"i"},
				Usage:   "derivations per worker",
				Value:   1,
			},
			&cli.IntFlag{
				Name:    "threads",
				Aliases: []string{"t"},
				Usage:   "number of parallel workers",
				Value:   cfg.Threads,
				EnvVars: []string{"WSKDF_THREADS"},
			},
			&cli.IntFlag{
				Name:  "max-bits",
				Usage: "largest bit length in the projection table",
				Value: 32,
			},
		}, costFlags(cfg)...),
		Action: func(cliCtx *cli.Context) error {
			logger, err := newLogger(cliCtx)
			if err != nil {
				return err
			}
			if err := core.ValidateBits(cliCtx.Int("max-bits")); err != nil {
				return err
			}

			result, err := core.RunBenchmark(
				cliCtx.Context,
				cliCtx.Int("iterations"),
				cliCtx.Int("threads"),
				costFromFlags(cliCtx),
				logger,
			)
			if err != nil {
				return err
			}

			fmt.Printf("%s derivations on %d threads in %s (%s each, %s/hour)\n",
				humanize.Comma(int64(result.Derivations())),
				result.Threads,
				core.FormatSeconds(result.Total.Seconds()),
				core.FormatSeconds(result.PerDerivation.Seconds()),
				humanize.CommafWithDigits(result.PerHour(), 1),
			)
			fmt.Println()
			return core.WriteTable(os.Stdout, result.PerDerivation,
				cliCtx.Int("threads"), cliCtx.Int("max-bits"))
		},
	}
}
