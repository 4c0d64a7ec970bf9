//go:build unix || darwin

/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package oracle

import (
	"os"
	"syscall"
)

// terminate asks an oracle child to exit with SIGTERM so it can clean up;
// exec.Cmd.WaitDelay escalates to SIGKILL if it lingers.
func terminate(p *os.Process) error {
	if p == nil {
		return nil
	}
	return p.Signal(syscall.SIGTERM)
}
