/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/wskdf/go-wskdf/internal/config"
	"github.com/wskdf/go-wskdf/internal/crypto"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

// Exit code classes. Zero is success; everything else tells scripts what
// went wrong without parsing stderr.
const (
	exitFailure    = 1
	exitUsage      = 2
	exitIO         = 3
	exitDerivation = 4
	exitOracle     = 5
	exitExhausted  = 6
	exitCancelled  = 7
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "wskdf: %v\n", err)
		os.Exit(exitUsage)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := newApp(cfg)
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "wskdf: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func newApp(cfg *config.Config) *cli.App {
	app := cli.NewApp()
	app.Name = "wskdf"
	app.Version = versionString()
	app.Usage = "weak and slow key derivation"
	app.Description = "Derives symmetric keys from short n-bit secrets with Argon2id, " +
		"slow enough that a lost preimage stays recoverable by exhaustive search " +
		"in predictable time."
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "verbosity",
			Usage:   "log level: debug, info, warn or error",
			Value:   cfg.Verbosity,
			EnvVars: []string{"WSKDF_VERBOSITY"},
		},
	}
	app.Commands = []*cli.Command{
		generateSaltCommand(cfg),
		outputRandomKeyCommand(cfg),
		deriveKeyCommand(cfg),
		findKeyCommand(cfg),
		benchmarkCommand(cfg),
	}
	return app
}

func versionString() string {
	v := Version
	if GitCommit != "" {
		v = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	}
	return v
}

// newLogger builds the stderr logger for a command invocation.
func newLogger(cliCtx *cli.Context) (*slog.Logger, error) {
	var level slog.Level
	switch v := cliCtx.String("verbosity"); v {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown verbosity %q", v)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

func exitCode(err error) int {
	var pathErr *fs.PathError
	switch {
	case errors.Is(err, crypto.ErrInvalidEncoding),
		errors.Is(err, crypto.ErrInvalidBits),
		errors.Is(err, crypto.ErrInvalidSalt):
		return exitUsage
	case errors.As(err, &pathErr),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, fs.ErrPermission):
		return exitIO
	case errors.Is(err, crypto.ErrCostTooLow),
		errors.Is(err, crypto.ErrOutOfMemory):
		return exitDerivation
	case errors.Is(err, crypto.ErrOracleSpawn),
		errors.Is(err, crypto.ErrOracleUnreliable):
		return exitOracle
	case errors.Is(err, crypto.ErrExhausted):
		return exitExhausted
	case errors.Is(err, crypto.ErrCancelled),
		errors.Is(err, context.Canceled):
		return exitCancelled
	default:
		return exitFailure
	}
}
