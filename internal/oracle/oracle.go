/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package oracle runs the user-supplied external command that decides
// whether a candidate key is correct.
//
// The protocol is deliberately minimal: the command receives the
// 64-hex-character key plus a trailing newline on its standard input and
// answers through its exit status. Exit 0 accepts, any other exit rejects.
// The command inherits the parent environment, so callers typically export
// INPUT_FILE and OUTPUT_FILE to point it at ciphertext and plaintext paths.
// Whatever the command prints is forwarded to the logger at debug level and
// never interpreted.
package oracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/wskdf/go-wskdf/internal/crypto"
)

// DefaultGracePeriod is how long a cancelled oracle child gets between the
// termination signal and a hard kill.
const DefaultGracePeriod = 5 * time.Second

// Command is an external accept/reject oracle. It satisfies the search
// engine's Oracle interface. The zero value is not usable; construct with
// New.
type Command struct {
	// Line is the shell command executed per candidate, via /bin/sh -c.
	Line string

	// GracePeriod overrides DefaultGracePeriod when positive.
	GracePeriod time.Duration

	logger *slog.Logger
}

// New returns a Command oracle running line through the shell.
func New(line string, logger *slog.Logger) *Command {
	if logger == nil {
		logger = slog.Default()
	}
	return &Command{Line: line, logger: logger}
}

func (c *Command) gracePeriod() time.Duration {
	if c.GracePeriod > 0 {
		return c.GracePeriod
	}
	return DefaultGracePeriod
}

// TryKey runs one oracle invocation for the given hex-encoded key.
//
// Acceptance is (true, nil), rejection (false, nil). A non-nil error means
// the oracle itself failed: it could not be spawned, or it died on a
// signal. When ctx is cancelled mid-run the child is sent the termination
// signal (killed after the grace period) and ctx's error is returned.
func (c *Command) TryKey(ctx context.Context, keyHex string) (bool, error) {
	if strings.TrimSpace(c.Line) == "" {
		return false, fmt.Errorf("%w: empty command", crypto.ErrOracleSpawn)
	}

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", c.Line)
	cmd.Cancel = func() error {
		return terminate(cmd.Process)
	}
	cmd.WaitDelay = c.gracePeriod()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return false, fmt.Errorf("%w: %v", crypto.ErrOracleSpawn, err)
	}

	if err := cmd.Start(); err != nil {
		return false, fmt.Errorf("%w: %v", crypto.ErrOracleSpawn, err)
	}

	// A rejecting oracle may exit without reading its input; the broken
	// pipe on this write is not a verdict.
	if _, err := io.WriteString(stdin, keyHex+"\n"); err != nil {
		c.logger.Debug("oracle stdin write failed", "err", err)
	}
	if err := stdin.Close(); err != nil {
		c.logger.Debug("oracle stdin close failed", "err", err)
	}

	waitErr := cmd.Wait()
	c.logOutput(&stdout, "stdout")
	c.logOutput(&stderr, "stderr")

	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if waitErr == nil {
		return true, nil
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		if exitErr.ExitCode() > 0 {
			return false, nil
		}
		// Negative exit code: the child died on a signal.
		return false, fmt.Errorf("oracle terminated abnormally: %v", waitErr)
	}
	return false, fmt.Errorf("oracle wait failed: %w", waitErr)
}

func (c *Command) logOutput(buf *bytes.Buffer, stream string) {
	if buf.Len() == 0 {
		return
	}
	c.logger.Debug("oracle output",
		"stream", stream, "output", strings.TrimRight(buf.String(), "\n"))
}
