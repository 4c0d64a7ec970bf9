//go:build windows

/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package oracle

import "os"

// terminate kills the oracle child; Windows has no SIGTERM equivalent for
// arbitrary console processes.
func terminate(p *os.Process) error {
	if p == nil {
		return nil
	}
	return p.Kill()
}
